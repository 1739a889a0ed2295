package host

import "testing"

func TestParseArgSpec(t *testing.T) {
	tests := []struct {
		spec     string
		usage    string
		params   int
		catchAll bool
	}{
		{"", "", 0, false},
		{"x", "x", 1, false},
		{"x y", "x y", 2, false},
		{"{x 1}", "?x?", 1, false},
		{"x {y 2} args", "x ?y? ?arg arg ...?", 2, true},
		{"args", "?arg arg ...?", 0, true},
	}
	for _, tt := range tests {
		al, usage, err := ParseArgSpec(tt.spec)
		if err != nil {
			t.Errorf("ParseArgSpec(%q): %v", tt.spec, err)
			continue
		}
		if usage != tt.usage {
			t.Errorf("ParseArgSpec(%q) usage = %q, want %q", tt.spec, usage, tt.usage)
		}
		if len(al.Params) != tt.params {
			t.Errorf("ParseArgSpec(%q) params = %d, want %d", tt.spec, len(al.Params), tt.params)
		}
		if al.CatchAll != tt.catchAll {
			t.Errorf("ParseArgSpec(%q) catchAll = %v, want %v", tt.spec, al.CatchAll, tt.catchAll)
		}
	}
}

func TestParseArgSpecDefaults(t *testing.T) {
	al, _, err := ParseArgSpec("a {b two}")
	if err != nil {
		t.Fatalf("ParseArgSpec: %v", err)
	}
	if al.Params[0].HasDefault {
		t.Error("a should have no default")
	}
	if !al.Params[1].HasDefault || al.Params[1].Default != "two" {
		t.Errorf("b default = %q (has=%v), want two", al.Params[1].Default, al.Params[1].HasDefault)
	}
}

func TestParseArgSpecErrors(t *testing.T) {
	for _, spec := range []string{
		"args x",  // catch-all not last
		"x x",     // duplicate name
		"{a b c}", // too many fields
		"{a b",    // unbalanced braces
	} {
		if _, _, err := ParseArgSpec(spec); err == nil {
			t.Errorf("ParseArgSpec(%q) expected error", spec)
		}
	}
}
