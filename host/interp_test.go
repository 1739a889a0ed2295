package host

import (
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// Command lifecycle
// ---------------------------------------------------------------------------

func TestCreateAndInvokeCommand(t *testing.T) {
	in := NewInterp()
	if _, err := in.CreateCommand("hello", func(in *Interp, argv []string) (string, error) {
		return "hi " + strings.Join(argv[1:], " "), nil
	}, nil, nil); err != nil {
		t.Fatalf("CreateCommand: %v", err)
	}

	got, err := in.Invoke("hello", "there")
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if got != "hi there" {
		t.Errorf("result = %q, want %q", got, "hi there")
	}
	if in.Result() != "hi there" || in.IsError() {
		t.Errorf("interp state = %q (err=%v), want mirrored result", in.Result(), in.IsError())
	}
}

func TestInvokeUnknownCommand(t *testing.T) {
	in := NewInterp()
	_, err := in.Invoke("ghost")
	if err == nil {
		t.Fatal("expected error")
	}
	want := `invalid command name "ghost"`
	if err.Error() != want {
		t.Errorf("error = %q, want %q", err.Error(), want)
	}
	if !in.IsError() || in.Result() != want {
		t.Errorf("interp state = %q (err=%v), want mirrored error", in.Result(), in.IsError())
	}
}

func TestQualifiedNames(t *testing.T) {
	in := NewInterp()
	cmd, err := in.CreateCommand("::a::b::run", func(in *Interp, argv []string) (string, error) {
		return "ran", nil
	}, nil, nil)
	if err != nil {
		t.Fatalf("CreateCommand: %v", err)
	}
	if cmd.Name() != "::a::b::run" {
		t.Errorf("Name = %q", cmd.Name())
	}
	if cmd.ShortName() != "run" {
		t.Errorf("ShortName = %q", cmd.ShortName())
	}
	if in.FindNamespace("::a::b") == nil {
		t.Error("containing namespace not created")
	}
	if in.FindCommand("::a::b::run") != cmd {
		t.Error("FindCommand does not resolve the qualified name")
	}

	// Unqualified names anchor at the root.
	plain, _ := in.CreateCommand("top", nil, nil, nil)
	if plain.Name() != "::top" {
		t.Errorf("unqualified name stored as %q, want ::top", plain.Name())
	}
	if in.FindCommand("top") != plain || in.FindCommand("::top") != plain {
		t.Error("top and ::top should resolve to the same command")
	}
}

func TestDeleteCommandRunsDeleteProcOnce(t *testing.T) {
	in := NewInterp()
	runs := 0
	if _, err := in.CreateCommand("tmp", nil, "payload", func(clientData any) {
		runs++
		if clientData != "payload" {
			t.Errorf("clientData = %v, want payload", clientData)
		}
		// Reentrant deletion of the same command must be a no-op.
		in.DeleteCommand("tmp")
	}); err != nil {
		t.Fatalf("CreateCommand: %v", err)
	}

	if err := in.DeleteCommand("tmp"); err != nil {
		t.Fatalf("DeleteCommand: %v", err)
	}
	if runs != 1 {
		t.Errorf("delete proc ran %d times, want 1", runs)
	}
	if in.FindCommand("tmp") != nil {
		t.Error("command still resolvable after deletion")
	}

	if err := in.DeleteCommand("tmp"); err == nil {
		t.Error("expected error deleting a missing command")
	}
}

func TestCreateCommandReplacesExisting(t *testing.T) {
	in := NewInterp()
	oldDeleted := false
	in.CreateCommand("x", nil, nil, func(any) { oldDeleted = true })
	newCmd, err := in.CreateCommand("x", nil, nil, nil)
	if err != nil {
		t.Fatalf("CreateCommand: %v", err)
	}
	if !oldDeleted {
		t.Error("old command's delete proc did not run")
	}
	if in.FindCommand("x") != newCmd {
		t.Error("name does not resolve to the replacement")
	}
}

func TestCommandInfo(t *testing.T) {
	in := NewInterp()
	cmd, _ := in.CreateCommand("::ns::c", nil, "cd", func(any) {})

	info := in.CommandInfo(cmd)
	if info == nil {
		t.Fatal("CommandInfo = nil for live command")
	}
	if info.Name != "::ns::c" || info.Namespace != "::ns" {
		t.Errorf("info = %+v", info)
	}
	if info.ClientData != "cd" || !info.HasDeleteProc {
		t.Errorf("info = %+v", info)
	}
	if info.Cmd() != cmd {
		t.Error("info does not point back at the command")
	}

	in.DeleteCommand("::ns::c")
	if in.CommandInfo(cmd) != nil {
		t.Error("CommandInfo should be nil for a deleted command")
	}
	if in.CommandInfo(nil) != nil {
		t.Error("CommandInfo(nil) should be nil")
	}
}

// ---------------------------------------------------------------------------
// Result state
// ---------------------------------------------------------------------------

func TestSaveRestoreState(t *testing.T) {
	in := NewInterp()
	in.setResult("before")

	state := in.SaveState()
	in.setError("probe failed")
	in.RestoreState(state)

	if in.Result() != "before" || in.IsError() {
		t.Errorf("state = %q (err=%v), want restored", in.Result(), in.IsError())
	}
}

// ---------------------------------------------------------------------------
// Namespaces
// ---------------------------------------------------------------------------

func TestNamespaceFullName(t *testing.T) {
	in := NewInterp()
	if got := in.GlobalNamespace().FullName(); got != "::" {
		t.Errorf("root FullName = %q, want ::", got)
	}
	ns, err := in.CreateNamespace("::a::b::c")
	if err != nil {
		t.Fatalf("CreateNamespace: %v", err)
	}
	if got := ns.FullName(); got != "::a::b::c" {
		t.Errorf("FullName = %q, want ::a::b::c", got)
	}
	if in.FindNamespace("::a::b") == nil {
		t.Error("intermediate namespace not created")
	}
	if in.FindNamespace("::a::missing") != nil {
		t.Error("FindNamespace resolved a missing path")
	}
}

func TestCreateNamespaceIdempotent(t *testing.T) {
	in := NewInterp()
	first, _ := in.CreateNamespace("::x")
	second, _ := in.CreateNamespace("::x")
	if first != second {
		t.Error("recreating a namespace should return the existing node")
	}
	if _, err := in.CreateNamespace("::a::::b"); err == nil {
		t.Error("expected error for malformed path")
	}
}

func TestDeleteNamespaceSubtree(t *testing.T) {
	in := NewInterp()
	deleted := []string{}
	for _, name := range []string{"::z::one", "::z::deep::two"} {
		name := name
		if _, err := in.CreateCommand(name, nil, nil, func(any) {
			deleted = append(deleted, name)
		}); err != nil {
			t.Fatalf("CreateCommand(%q): %v", name, err)
		}
	}

	if err := in.DeleteNamespace(in.FindNamespace("::z")); err != nil {
		t.Fatalf("DeleteNamespace: %v", err)
	}
	if len(deleted) != 2 {
		t.Errorf("delete procs ran for %v, want both commands", deleted)
	}
	if in.FindNamespace("::z") != nil {
		t.Error("namespace still resolvable after deletion")
	}
	if in.FindCommand("::z::one") != nil {
		t.Error("contained command still resolvable after deletion")
	}

	if err := in.DeleteNamespace(in.GlobalNamespace()); err == nil {
		t.Error("deleting the root namespace should fail")
	}
}
