package host

import (
	"fmt"
	"strings"
)

// ---------------------------------------------------------------------------
// Interp: single-context command runtime
// ---------------------------------------------------------------------------

// Handler is the native implementation of a command. argv[0] is the name
// the command was invoked under; the remaining elements are its arguments.
type Handler func(in *Interp, argv []string) (string, error)

// DeleteProc releases a command's client data when the command is
// destroyed. It runs exactly once per command.
type DeleteProc func(clientData any)

// Command is a named callable registered in an Interp.
type Command struct {
	name       string // fully qualified, e.g. "::ensembles::3::area"
	ns         *Namespace
	handler    Handler
	clientData any
	deleteProc DeleteProc
	deleted    bool

	// Ensemble dispatch state; nil/empty for plain commands.
	ensemble bool
	mapping  map[string]string
	unknown  string
}

// Name returns the command's fully qualified name.
func (c *Command) Name() string {
	return c.name
}

// ShortName returns the command's name without its namespace qualifier.
func (c *Command) ShortName() string {
	if i := strings.LastIndex(c.name, "::"); i >= 0 {
		return c.name[i+2:]
	}
	return c.name
}

// ClientData returns the opaque data attached at creation time.
func (c *Command) ClientData() any {
	return c.clientData
}

// CmdInfo is the queryable description of a command, analogous to what
// a host exposes for "is this callable one of mine" checks.
type CmdInfo struct {
	Name          string
	Namespace     string
	ClientData    any
	HasDeleteProc bool

	cmd *Command
}

// Cmd returns the underlying command the info describes.
func (ci *CmdInfo) Cmd() *Command {
	return ci.cmd
}

// Interp owns a command table and a namespace tree. It is not safe for
// concurrent use; callers keep one Interp per execution context.
type Interp struct {
	global   *Namespace
	commands map[string]*Command

	result  string
	isError bool

	// ProcBody evaluates the body of a stored procedure. When nil,
	// invocation falls back to plain $param substitution.
	ProcBody ProcBodyHandler
}

// NewInterp creates an empty interp with a root namespace.
func NewInterp() *Interp {
	return &Interp{
		global:   newNamespace("", nil),
		commands: make(map[string]*Command),
	}
}

// Qualify converts a command name to its fully qualified form, anchoring
// unqualified names at the root namespace.
func Qualify(name string) string {
	if strings.HasPrefix(name, "::") {
		return name
	}
	return "::" + name
}

func namespaceOf(qualified string) (nsPath, short string) {
	i := strings.LastIndex(qualified, "::")
	if i <= 0 {
		return "::", strings.TrimPrefix(qualified, "::")
	}
	return qualified[:i], qualified[i+2:]
}

// CreateCommand registers a command under the given name. The containing
// namespace is created if needed. If a command already exists under the
// name, it is deleted first (and its delete proc runs).
func (in *Interp) CreateCommand(name string, handler Handler, clientData any, deleteProc DeleteProc) (*Command, error) {
	qualified := Qualify(name)
	nsPath, short := namespaceOf(qualified)
	if short == "" {
		return nil, fmt.Errorf("invalid command name %q", name)
	}
	ns, err := in.CreateNamespace(nsPath)
	if err != nil {
		return nil, err
	}
	if old := in.commands[qualified]; old != nil {
		in.deleteCommand(old)
	}
	cmd := &Command{
		name:       qualified,
		ns:         ns,
		handler:    handler,
		clientData: clientData,
		deleteProc: deleteProc,
	}
	in.commands[qualified] = cmd
	ns.commands[short] = cmd
	return cmd, nil
}

// FindCommand resolves a name to a registered command, or nil.
func (in *Interp) FindCommand(name string) *Command {
	return in.commands[Qualify(name)]
}

// CommandInfo returns the queryable info for a command, or nil for a
// nil or deleted command.
func (in *Interp) CommandInfo(cmd *Command) *CmdInfo {
	if cmd == nil || cmd.deleted {
		return nil
	}
	return &CmdInfo{
		Name:          cmd.name,
		Namespace:     cmd.ns.FullName(),
		ClientData:    cmd.clientData,
		HasDeleteProc: cmd.deleteProc != nil,
		cmd:           cmd,
	}
}

// DeleteCommand destroys the named command, running its delete proc.
// Deleting an unknown name is an error.
func (in *Interp) DeleteCommand(name string) error {
	cmd := in.commands[Qualify(name)]
	if cmd == nil {
		return fmt.Errorf("can't delete %q: command doesn't exist", name)
	}
	in.deleteCommand(cmd)
	return nil
}

// deleteCommand unregisters first, then runs the delete proc, so
// cascading deletes triggered by the proc cannot observe the command.
func (in *Interp) deleteCommand(cmd *Command) {
	if cmd.deleted {
		return
	}
	cmd.deleted = true
	delete(in.commands, cmd.name)
	if cmd.ns != nil {
		if cmd.ns.commands[cmd.ShortName()] == cmd {
			delete(cmd.ns.commands, cmd.ShortName())
		}
	}
	if cmd.deleteProc != nil {
		cmd.deleteProc(cmd.clientData)
	}
}

// Invoke calls a command by name with the given arguments. For ensemble
// commands this routes through the dispatch primitive; for plain
// commands the handler receives argv with argv[0] set to the invoked
// name. The command's result is mirrored into the interp result state.
func (in *Interp) Invoke(name string, args ...string) (string, error) {
	cmd := in.FindCommand(name)
	if cmd == nil {
		err := fmt.Errorf("invalid command name %q", name)
		in.setError(err.Error())
		return "", err
	}
	return in.invokeCommand(cmd, name, args)
}

func (in *Interp) invokeCommand(cmd *Command, name string, args []string) (string, error) {
	if cmd.ensemble {
		return in.dispatchEnsemble(cmd, name, args)
	}
	argv := make([]string, 0, len(args)+1)
	argv = append(argv, name)
	argv = append(argv, args...)
	res, err := cmd.handler(in, argv)
	if err != nil {
		in.setError(err.Error())
		return "", err
	}
	in.setResult(res)
	return res, nil
}

// ---------------------------------------------------------------------------
// Result state
// ---------------------------------------------------------------------------

// InterpState is a snapshot of the interp's result state, used to keep
// probing lookups from leaving error traces behind.
type InterpState struct {
	result  string
	isError bool
}

// SaveState captures the current result state.
func (in *Interp) SaveState() InterpState {
	return InterpState{result: in.result, isError: in.isError}
}

// RestoreState puts back a previously saved result state, discarding
// whatever happened in between.
func (in *Interp) RestoreState(s InterpState) {
	in.result = s.result
	in.isError = s.isError
}

// Result returns the interp's current result string.
func (in *Interp) Result() string {
	return in.result
}

// IsError reports whether the current result is an error message.
func (in *Interp) IsError() bool {
	return in.isError
}

func (in *Interp) setResult(s string) {
	in.result = s
	in.isError = false
}

func (in *Interp) setError(msg string) {
	in.result = msg
	in.isError = true
}
