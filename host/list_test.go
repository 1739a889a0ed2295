package host

import "testing"

func TestSplitList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"   ", nil},
		{"a b c", []string{"a", "b", "c"}},
		{"  a\tb\nc  ", []string{"a", "b", "c"}},
		{"a {b c} d", []string{"a", "b c", "d"}},
		{"{a {b} c}", []string{"a {b} c"}},
		{"{}", []string{""}},
		{`"a b" c`, []string{"a b", "c"}},
		{`"say \"hi\"" x`, []string{`say "hi"`, "x"}},
		{`"back\\slash"`, []string{`back\slash`}},
	}
	for _, tt := range tests {
		got, err := SplitList(tt.in)
		if err != nil {
			t.Errorf("SplitList(%q): %v", tt.in, err)
			continue
		}
		if len(got) != len(tt.want) {
			t.Errorf("SplitList(%q) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("SplitList(%q)[%d] = %q, want %q", tt.in, i, got[i], tt.want[i])
			}
		}
	}
}

func TestSplitListErrors(t *testing.T) {
	for _, in := range []string{"{a b", `"a b`, "{a}x", `"a"x`} {
		if _, err := SplitList(in); err == nil {
			t.Errorf("SplitList(%q) expected error", in)
		}
	}
}

func TestJoinList(t *testing.T) {
	tests := []struct {
		in   []string
		want string
	}{
		{nil, ""},
		{[]string{"a", "b"}, "a b"},
		{[]string{"a b", "c"}, "{a b} c"},
		{[]string{""}, "{}"},
		{[]string{"semi;colon"}, "{semi;colon}"},
	}
	for _, tt := range tests {
		if got := JoinList(tt.in); got != tt.want {
			t.Errorf("JoinList(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestJoinSplitRoundTrip(t *testing.T) {
	elems := []string{"plain", "two words", "", "tab\there"}
	got, err := SplitList(JoinList(elems))
	if err != nil {
		t.Fatalf("SplitList: %v", err)
	}
	if len(got) != len(elems) {
		t.Fatalf("round trip = %v, want %v", got, elems)
	}
	for i := range elems {
		if got[i] != elems[i] {
			t.Errorf("round trip[%d] = %q, want %q", i, got[i], elems[i])
		}
	}
}
