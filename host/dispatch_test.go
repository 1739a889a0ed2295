package host

import (
	"errors"
	"strings"
	"testing"
)

func newEnsembleFixture(t *testing.T) *Interp {
	t.Helper()
	in := NewInterp()
	for _, name := range []string{"start", "stop", "status"} {
		name := name
		if _, err := in.CreateCommand("::impl::"+name, func(in *Interp, argv []string) (string, error) {
			return name + ":" + strings.Join(argv[1:], ","), nil
		}, nil, nil); err != nil {
			t.Fatalf("CreateCommand(%q): %v", name, err)
		}
	}
	cmd, err := in.CreateEnsembleCommand("svc", "", nil, nil)
	if err != nil {
		t.Fatalf("CreateEnsembleCommand: %v", err)
	}
	for _, name := range []string{"start", "stop", "status"} {
		if err := SetEnsembleMapping(cmd, name, "::impl::"+name); err != nil {
			t.Fatalf("SetEnsembleMapping(%q): %v", name, err)
		}
	}
	return in
}

func TestEnsembleDispatchExact(t *testing.T) {
	in := newEnsembleFixture(t)
	got, err := in.Invoke("svc", "start", "now")
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if got != "start:now" {
		t.Errorf("result = %q, want %q", got, "start:now")
	}
}

func TestEnsembleDispatchPrefix(t *testing.T) {
	in := newEnsembleFixture(t)

	// "sta" is shared by start and status; "sto" is unique.
	if _, err := in.Invoke("svc", "sta"); err == nil {
		t.Error("ambiguous prefix should not dispatch")
	}
	got, err := in.Invoke("svc", "sto")
	if err != nil {
		t.Fatalf("Invoke(sto): %v", err)
	}
	if got != "stop:" {
		t.Errorf("result = %q, want %q", got, "stop:")
	}
}

func TestEnsembleDispatchNoHandler(t *testing.T) {
	in := newEnsembleFixture(t)

	_, err := in.Invoke("svc")
	if err == nil {
		t.Fatal("expected wrong # args error")
	}
	if got, want := err.Error(), `wrong # args: should be "svc subcommand ?arg ...?"`; got != want {
		t.Errorf("error = %q, want %q", got, want)
	}

	_, err = in.Invoke("svc", "nosuch")
	if err == nil {
		t.Fatal("expected unknown subcommand error")
	}
	if got, want := err.Error(), `unknown subcommand "nosuch": must be start, status, stop`; got != want {
		t.Errorf("error = %q, want %q", got, want)
	}
}

func TestEnsembleUnknownRedirect(t *testing.T) {
	in := newEnsembleFixture(t)
	// The unknown handler redirects every unresolved subcommand to
	// "status" with the offending name as an argument.
	if _, err := in.CreateCommand("::fallback", func(in *Interp, argv []string) (string, error) {
		return JoinList([]string{argv[1], "status", argv[2]}), nil
	}, nil, nil); err != nil {
		t.Fatalf("CreateCommand: %v", err)
	}
	cmd := in.FindCommand("svc")
	cmd.unknown = "::fallback"

	got, err := in.Invoke("svc", "bogus")
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if got != "status:bogus" {
		t.Errorf("result = %q, want %q", got, "status:bogus")
	}
}

func TestEnsembleUnknownErrorPropagates(t *testing.T) {
	in := newEnsembleFixture(t)
	if _, err := in.CreateCommand("::failing", func(in *Interp, argv []string) (string, error) {
		return "", errors.New("handler refused")
	}, nil, nil); err != nil {
		t.Fatalf("CreateCommand: %v", err)
	}
	cmd := in.FindCommand("svc")
	cmd.unknown = "::failing"

	_, err := in.Invoke("svc", "bogus")
	if err == nil {
		t.Fatal("expected error from unknown handler")
	}
	if err.Error() != "handler refused" {
		t.Errorf("error = %q, want handler refused", err.Error())
	}
}

func TestEnsembleMappingAccessors(t *testing.T) {
	in := NewInterp()
	cmd, err := in.CreateEnsembleCommand("tool", "::unknown", nil, nil)
	if err != nil {
		t.Fatalf("CreateEnsembleCommand: %v", err)
	}
	if !IsEnsembleCommand(cmd) {
		t.Error("IsEnsembleCommand = false")
	}
	SetEnsembleMapping(cmd, "a", "::impl::a")
	SetEnsembleMapping(cmd, "b", "impl-b")

	m := EnsembleMapping(cmd)
	if m["a"] != "::impl::a" || m["b"] != "::impl-b" {
		t.Errorf("mapping = %v", m)
	}
	// The copy does not alias the live table.
	m["a"] = "clobbered"
	if EnsembleMapping(cmd)["a"] != "::impl::a" {
		t.Error("EnsembleMapping returned the live table")
	}

	UnsetEnsembleMapping(cmd, "a")
	if _, ok := EnsembleMapping(cmd)["a"]; ok {
		t.Error("mapping survived unset")
	}

	plain, _ := in.CreateCommand("plain", nil, nil, nil)
	if IsEnsembleCommand(plain) {
		t.Error("plain command reported as ensemble")
	}
	if err := SetEnsembleMapping(plain, "x", "y"); err == nil {
		t.Error("SetEnsembleMapping on a plain command should fail")
	}
	if EnsembleMapping(plain) != nil {
		t.Error("EnsembleMapping on a plain command should be nil")
	}
}

func TestEnsembleBadRedirectRejected(t *testing.T) {
	in := newEnsembleFixture(t)
	if _, err := in.CreateCommand("::badredir", func(in *Interp, argv []string) (string, error) {
		return JoinList([]string{argv[1], "unmapped", "x"}), nil
	}, nil, nil); err != nil {
		t.Fatalf("CreateCommand: %v", err)
	}
	cmd := in.FindCommand("svc")
	cmd.unknown = "::badredir"

	_, err := in.Invoke("svc", "bogus")
	if err == nil {
		t.Fatal("expected error for redirect to unmapped subcommand")
	}
	if !strings.Contains(err.Error(), "unmapped") {
		t.Errorf("error = %q", err.Error())
	}
}
