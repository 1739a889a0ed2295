package ensemble

import (
	"fmt"
	"strings"

	"github.com/cmdkit/ensemble/host"
)

// Namespace layout for generated commands. Every top-level ensemble
// gets its own numbered namespace under the registry root; gateway
// commands for sub-ensembles live under "subensembles" keyed by the
// parent's id, so generated names can never collide with user commands.
const (
	registryNamespace     = "::ensembles"
	subEnsembleNamespace  = registryNamespace + "::subensembles"
	unknownHandlerCommand = registryNamespace + "::unknown"
)

// ---------------------------------------------------------------------------
// Ensemble
// ---------------------------------------------------------------------------

// Ensemble is a named collection of parts with an identity, a namespace
// for its generated per-part commands, and an optional gateway part
// linking it into a parent ensemble.
type Ensemble struct {
	id     int
	parts  PartStore
	parent *Part
	cmd    *host.Command
	ns     *host.Namespace
	reg    *Registry
}

// ID returns the ensemble's unique, never-reused id.
func (e *Ensemble) ID() int {
	return e.id
}

// Parts returns the ensemble's part store.
func (e *Ensemble) Parts() *PartStore {
	return &e.parts
}

// ParentPart returns the gateway part in the parent ensemble, or nil
// for a top-level ensemble.
func (e *Ensemble) ParentPart() *Part {
	return e.parent
}

// Command returns the host command users invoke to reach the ensemble.
func (e *Ensemble) Command() *host.Command {
	return e.cmd
}

// Namespace returns the namespace holding the ensemble's generated
// per-part commands.
func (e *Ensemble) Namespace() *host.Namespace {
	return e.ns
}

// FindPart resolves a part name or unambiguous abbreviation within the
// ensemble. A missing name returns (nil, nil); an ambiguous prefix
// returns ErrAmbiguousPart carrying the candidate list and a message
// enumerating each candidate's usage line.
func (e *Ensemble) FindPart(name string) (*Part, error) {
	part, candidates := e.parts.FindByPrefix(name)
	if part != nil {
		return part, nil
	}
	if len(candidates) < 2 {
		return nil, nil
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "ambiguous option %q: should be one of...", name)
	names := make([]string, len(candidates))
	for i, c := range candidates {
		sb.WriteString("\n  ")
		sb.WriteString(renderPartUsage(c))
		names[i] = c.Name
	}
	return nil, &Error{Kind: ErrAmbiguousPart, Msg: sb.String(), Candidates: names}
}

// ---------------------------------------------------------------------------
// Registry
// ---------------------------------------------------------------------------

// Registry is the per-interp home of every live ensemble: it maps
// access commands to their ensemble records, allocates ensemble ids,
// and tracks generated sub-ensemble command names. Like its interp, a
// Registry is single-threaded state.
type Registry struct {
	interp   *host.Interp
	byHandle map[*host.Command]*Ensemble
	nextID   int
	subNames map[string]bool
}

// NewRegistry binds a registry to an interp, creating the registry
// namespace and installing the shared unknown handler.
func NewRegistry(in *host.Interp) (*Registry, error) {
	r := &Registry{
		interp:   in,
		byHandle: make(map[*host.Command]*Ensemble),
		subNames: make(map[string]bool),
	}
	if _, err := in.CreateNamespace(registryNamespace); err != nil {
		return nil, wrapErr(ErrInstallError, err, "cannot create registry namespace")
	}
	if _, err := in.CreateCommand(unknownHandlerCommand, r.unknownHandler, nil, nil); err != nil {
		return nil, wrapErr(ErrInstallError, err, "cannot install unknown handler")
	}
	return r, nil
}

// Interp returns the host interp the registry is bound to.
func (r *Registry) Interp() *host.Interp {
	return r.interp
}

// TopLevelNames returns the short names of all live top-level
// ensembles, unordered.
func (r *Registry) TopLevelNames() []string {
	var names []string
	for cmd, ens := range r.byHandle {
		if ens.parent == nil {
			names = append(names, cmd.ShortName())
		}
	}
	return names
}

// CreateEnsemble creates or extends an ensemble tree along a
// space-separated path: every component but the last must already
// resolve to an ensemble chain; the last names the new (sub-)ensemble.
func (r *Registry) CreateEnsemble(path string) error {
	names, err := host.SplitList(path)
	if err != nil {
		return wrapErr(ErrMalformedPath, err, "invalid ensemble name %q", path)
	}
	if len(names) < 1 {
		return newErrf(ErrMalformedPath, "invalid ensemble name %q", path)
	}

	var parent *Ensemble
	if len(names) > 1 {
		parent, err = r.FindEnsemble(names[:len(names)-1])
		if err != nil {
			return err
		}
	}
	_, err = r.createEnsemble(parent, names[len(names)-1])
	return err
}

// createEnsemble allocates an ensemble record, its namespace, and its
// access command. With a nil parent it installs a top-level command
// (replacing any command of that name); otherwise it creates a gateway
// part in the parent, installs the generated sub-ensemble command, and
// maps the part name to it in the parent's dispatch table. Partial
// state is rolled back on installation failure.
func (r *Registry) createEnsemble(parent *Ensemble, name string) (*Ensemble, error) {
	r.nextID++
	ens := &Ensemble{id: r.nextID, reg: r}

	ns, err := r.interp.CreateNamespace(fmt.Sprintf("%s::%d", registryNamespace, ens.id))
	if err != nil {
		return nil, wrapErr(ErrInstallError, err, "cannot create namespace for ensemble %q", name)
	}
	ens.ns = ns

	if parent == nil {
		cmd, err := r.interp.CreateEnsembleCommand(name, unknownHandlerCommand,
			ens, r.ensembleDeleteProc)
		if err != nil {
			r.interp.DeleteNamespace(ns)
			return nil, wrapErr(ErrInstallError, err, "cannot create ensemble %q", name)
		}
		ens.cmd = cmd
		r.byHandle[cmd] = ens
		return ens, nil
	}

	part, err := parent.parts.Insert(name)
	if err != nil {
		r.interp.DeleteNamespace(ns)
		return nil, err
	}
	part.owner = parent

	subName := fmt.Sprintf("%s::%d::%s", subEnsembleNamespace, parent.id, name)
	cmd, err := r.interp.CreateEnsembleCommand(subName, unknownHandlerCommand,
		ens, r.ensembleDeleteProc)
	if err != nil {
		parent.parts.RemoveExact(name)
		r.interp.DeleteNamespace(ns)
		return nil, wrapErr(ErrInstallError, err, "cannot create sub-ensemble %q", name)
	}
	r.subNames[subName] = true

	part.cmd = cmd
	part.child = ens
	ens.cmd = cmd
	ens.parent = part
	r.byHandle[cmd] = ens
	host.SetEnsembleMapping(parent.cmd, name, subName)
	return ens, nil
}

// FindEnsemble resolves a path of names to an ensemble: the first name
// must be a registered top-level ensemble command, and each subsequent
// name a part (abbreviations allowed) whose target is itself a
// registered ensemble.
func (r *Registry) FindEnsemble(names []string) (*Ensemble, error) {
	if len(names) < 1 {
		return nil, newErrf(ErrMalformedPath, `invalid ensemble name ""`)
	}
	cmd := r.interp.FindCommand(names[0])
	if cmd == nil {
		return nil, newErrf(ErrNotAnEnsemble, "command %q is not an ensemble", names[0])
	}
	ens, ok := r.byHandle[cmd]
	if !ok {
		return nil, newErrf(ErrNotAnEnsemble, "command %q is not an ensemble", names[0])
	}

	for i := 1; i < len(names); i++ {
		part, err := ens.FindPart(names[i])
		if err != nil {
			return nil, err
		}
		if part == nil {
			return nil, newErrf(ErrNotFound, "invalid ensemble name %q", strings.Join(names[:i+1], " "))
		}
		if part.cmd == nil {
			return nil, newErrf(ErrNotAnEnsemble, "part %q is not an ensemble", names[i])
		}
		child, ok := r.byHandle[part.cmd]
		if !ok {
			return nil, newErrf(ErrNotAnEnsemble, "part %q is not an ensemble", names[i])
		}
		ens = child
	}
	return ens, nil
}

// FindEnsemblePath splits a space-separated path and resolves it.
func (r *Registry) FindEnsemblePath(path string) (*Ensemble, error) {
	names, err := host.SplitList(path)
	if err != nil {
		return nil, wrapErr(ErrMalformedPath, err, "invalid ensemble name %q", path)
	}
	return r.FindEnsemble(names)
}

// IsEnsemble reports whether a command described by info is a live
// ensemble access command in this registry.
func (r *Registry) IsEnsemble(info *host.CmdInfo) bool {
	if info == nil {
		return false
	}
	_, ok := r.byHandle[info.Cmd()]
	return ok
}

// ensembleDeleteProc is the delete proc installed on every ensemble
// access command: deleting the command cascades through the ensemble's
// parts and tears the record down.
func (r *Registry) ensembleDeleteProc(clientData any) {
	ens, ok := clientData.(*Ensemble)
	if !ok || ens == nil {
		return
	}
	r.deleteEnsemble(ens)
}

// deleteEnsemble removes every part (each part removes itself from the
// store, so the first part is deleted until none remain), releases the
// ensemble's namespace, and drops the record from the handle map. A
// sub-ensemble also detaches its gateway part from the parent store.
func (r *Registry) deleteEnsemble(ens *Ensemble) {
	if ens.cmd != nil {
		delete(r.byHandle, ens.cmd)
	}
	for ens.parts.Len() > 0 {
		r.deletePart(ens.parts.At(0))
	}
	if ens.ns != nil {
		r.interp.DeleteNamespace(ens.ns)
		ens.ns = nil
	}
	if ens.parent != nil {
		gateway := ens.parent
		ens.parent = nil
		gateway.child = nil
		gateway.cmd = nil
		if gateway.owner != nil {
			gateway.owner.parts.RemoveExact(gateway.Name)
			host.UnsetEnsembleMapping(gateway.owner.cmd, gateway.Name)
			gateway.owner = nil
		}
	}
	ens.cmd = nil
}
