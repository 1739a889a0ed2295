package ensemble

import (
	"github.com/cmdkit/ensemble/host"
)

// ---------------------------------------------------------------------------
// Part lifecycle and the public registry surface
// ---------------------------------------------------------------------------

// AddPart inserts a part into an ensemble and installs its dispatch
// shim at <ensemble-namespace>::<name>, recording the mapping in the
// ensemble's dispatch table. The inserted part is rolled back if the
// host cannot create the shim command.
func (r *Registry) AddPart(ens *Ensemble, name, usage string, handler Handler,
	clientData any, deleteProc host.DeleteProc, flags PartFlags, proc *host.Proc) (*Part, error) {

	part, err := ens.parts.Insert(name)
	if err != nil {
		return nil, err
	}
	part.owner = ens
	part.Usage = usage
	part.handler = handler
	part.clientData = clientData
	part.deleteProc = deleteProc
	part.flags = flags
	part.proc = proc

	target := ens.ns.FullName() + "::" + name
	cmd, err := r.interp.CreateCommand(target, r.partHandler(part), part, r.partDeleteProc(part))
	if err != nil {
		ens.parts.RemoveExact(name)
		return nil, wrapErr(ErrInstallError, err, "cannot install part %q", name)
	}
	part.cmd = cmd
	host.SetEnsembleMapping(ens.cmd, name, target)
	return part, nil
}

// AddEnsemblePart registers a native part on the ensemble named by a
// space-separated path.
func (r *Registry) AddEnsemblePart(ensPath, partName, usage string, handler Handler,
	clientData any, deleteProc host.DeleteProc) (*Part, error) {

	ens, err := r.FindEnsemblePath(ensPath)
	if err != nil {
		return nil, err
	}
	return r.AddPart(ens, partName, usage, handler, clientData, deleteProc, PartNative, nil)
}

// AddScriptPart registers a scripted part: the argument spec is parsed
// into a usage string, and a stored procedure built from the spec and
// body, scoped to the ensemble's namespace, becomes the part's target.
func (r *Registry) AddScriptPart(ens *Ensemble, partName, argSpec, body string) (*Part, error) {
	proc, err := r.interp.CreateProc(ens.ns, partName, argSpec, body)
	if err != nil {
		return nil, wrapErr(ErrInstallError, err, "cannot create part %q", partName)
	}
	return r.AddPart(ens, partName, proc.Usage, nil, nil, nil, PartScripted, proc)
}

// RemovePart deletes a single part: its shim command is destroyed
// (running the part's delete proc, or cascading through a nested
// ensemble for a gateway part) and the part leaves its store.
func (r *Registry) RemovePart(part *Part) {
	r.deletePart(part)
}

// deletePart destroys the part's installed command first; for gateway
// parts that cascades into the child ensemble's teardown, which also
// detaches the part from its store. Whatever is still attached
// afterwards is detached here.
func (r *Registry) deletePart(p *Part) {
	if p.cmd != nil {
		cmd := p.cmd
		p.cmd = nil
		r.interp.DeleteCommand(cmd.Name())
	}
	if p.owner != nil {
		p.owner.parts.RemoveExact(p.Name)
		host.UnsetEnsembleMapping(p.owner.cmd, p.Name)
		p.owner = nil
	}
}

// GetEnsemblePart looks for a part within an ensemble and returns the
// host's info for its command. It is a probing lookup: the interp
// state is saved before and restored after, so a failed probe leaves
// no error trace, and failures report ok=false instead of an error.
func (r *Registry) GetEnsemblePart(ensPath, partName string) (*host.CmdInfo, bool) {
	state := r.interp.SaveState()
	defer r.interp.RestoreState(state)

	ens, err := r.FindEnsemblePath(ensPath)
	if err != nil {
		return nil, false
	}
	part, err := ens.FindPart(partName)
	if err != nil || part == nil {
		return nil, false
	}
	info := r.interp.CommandInfo(part.cmd)
	if info == nil {
		return nil, false
	}
	return info, true
}

// GetEnsembleUsage renders the usage summary for the ensemble named by
// a space-separated path. Probing: reports ok=false on any failure and
// leaves the interp state untouched.
func (r *Registry) GetEnsembleUsage(ensPath string) (string, bool) {
	state := r.interp.SaveState()
	defer r.interp.RestoreState(state)

	ens, err := r.FindEnsemblePath(ensPath)
	if err != nil {
		return "", false
	}
	return renderEnsembleUsage(ens), true
}

// UsageForCommand renders the usage summary for an ensemble identified
// by its access command's info, for callers holding a command rather
// than a path.
func (r *Registry) UsageForCommand(info *host.CmdInfo) (string, bool) {
	if info == nil {
		return "", false
	}
	ens, ok := r.byHandle[info.Cmd()]
	if !ok {
		return "", false
	}
	return renderEnsembleUsage(ens), true
}
