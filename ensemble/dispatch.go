package ensemble

import (
	"fmt"

	"github.com/cmdkit/ensemble/host"
)

// ---------------------------------------------------------------------------
// Dispatch shims and the shared unknown handler
// ---------------------------------------------------------------------------

// partHandler builds the host handler installed for a part. Scripted
// parts route through the host's namespace-scoped procedure invocation
// with the part's own name for self-identification; native parts call
// the registered callback with its client data.
func (r *Registry) partHandler(p *Part) host.Handler {
	return func(in *host.Interp, argv []string) (string, error) {
		if p.flags&PartScripted != 0 {
			if p.proc == nil {
				return "", newErrf(ErrInternal, "part %q has no stored procedure", p.Name)
			}
			return in.InvokeNamespaceProc(p.proc, p.proc.Namespace(), p.Name, argv)
		}
		if p.handler == nil {
			return "", newErrf(ErrInternal, "part %q has no handler", p.Name)
		}
		return p.handler(in, p.clientData, argv)
	}
}

// partDeleteProc releases a native part's client data through its
// registered delete proc when the shim command is destroyed.
func (r *Registry) partDeleteProc(p *Part) host.DeleteProc {
	return func(any) {
		if p.deleteProc != nil {
			dp := p.deleteProc
			p.deleteProc = nil
			dp(p.clientData)
		}
	}
}

// unknownHandler is installed once per registry and shared by every
// ensemble access command. argv is (handlerName, ensembleName,
// partName, rest...). With no part name it reports a usage summary.
// Otherwise, an @error part redirects the invocation there; without
// one, a bad-option error enumerates the valid parts.
func (r *Registry) unknownHandler(in *host.Interp, argv []string) (string, error) {
	if len(argv) < 2 {
		return "", newErrf(ErrInternal, "unknown handler invoked without an ensemble")
	}
	cmd := in.FindCommand(argv[1])
	if cmd == nil {
		return "", newErrf(ErrNotAnEnsemble, "command %q is not an ensemble", argv[1])
	}
	ens, ok := r.byHandle[cmd]
	if !ok {
		return "", newErrf(ErrNotAnEnsemble, "command %q is not an ensemble", argv[1])
	}

	if len(argv) < 3 {
		return "", fmt.Errorf("wrong # args: should be one of...\n%s", renderEnsembleUsage(ens))
	}

	errPart, err := ens.FindPart("@error")
	if err != nil {
		return "", err
	}
	if errPart != nil {
		// Redirect the host at the @error part; not an error itself.
		return host.JoinList([]string{argv[1], "@error", argv[2]}), nil
	}
	return "", fmt.Errorf("bad option %q: should be one of...\n%s", argv[2], renderEnsembleUsage(ens))
}
