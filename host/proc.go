package host

import (
	"fmt"
	"strings"
)

// ---------------------------------------------------------------------------
// Stored procedures
// ---------------------------------------------------------------------------

// Proc is a stored procedure: a parsed argument list and a body, scoped
// to a home namespace. Procs are not commands; they are only reachable
// through whatever dispatch structure holds them.
type Proc struct {
	Name    string
	ArgSpec string
	Args    *ArgList
	Usage   string
	Body    string
	ns      *Namespace
}

// Namespace returns the proc's home namespace.
func (p *Proc) Namespace() *Namespace {
	return p.ns
}

// ProcBodyHandler evaluates a proc body after argument binding. env maps
// parameter names (plus "self") to their bound values; argv is the raw
// argument vector the proc was invoked with.
type ProcBodyHandler func(in *Interp, p *Proc, env map[string]string, argv []string) (string, error)

// CreateProc parses the argument spec and builds a stored procedure
// scoped to the given namespace.
func (in *Interp) CreateProc(ns *Namespace, name, argSpec, body string) (*Proc, error) {
	args, usage, err := ParseArgSpec(argSpec)
	if err != nil {
		return nil, err
	}
	return &Proc{
		Name:    name,
		ArgSpec: argSpec,
		Args:    args,
		Usage:   usage,
		Body:    body,
		ns:      ns,
	}, nil
}

// InvokeNamespaceProc binds argv[1:] to the proc's parameters and
// evaluates the body. selfName identifies the name the proc was reached
// under (bound as "self" in the environment). Arity violations report
// the standard wrong-number-of-arguments message.
func (in *Interp) InvokeNamespaceProc(p *Proc, ns *Namespace, selfName string, argv []string) (string, error) {
	if p == nil {
		return "", fmt.Errorf("internal error: nil proc for %q", selfName)
	}
	args := argv[1:]
	env := make(map[string]string, len(p.Args.Params)+2)
	env["self"] = selfName

	required := 0
	for _, param := range p.Args.Params {
		if !param.HasDefault {
			required++
		}
	}
	if len(args) < required || (!p.Args.CatchAll && len(args) > len(p.Args.Params)) {
		err := fmt.Errorf("wrong # args: should be %q", strings.TrimSpace(selfName+" "+p.Usage))
		in.setError(err.Error())
		return "", err
	}

	for i, param := range p.Args.Params {
		if i < len(args) {
			env[param.Name] = args[i]
		} else {
			env[param.Name] = param.Default
		}
	}
	if p.Args.CatchAll {
		var rest []string
		if len(args) > len(p.Args.Params) {
			rest = args[len(p.Args.Params):]
		}
		env["args"] = JoinList(rest)
	}

	handler := in.ProcBody
	if handler == nil {
		handler = substituteBody
	}
	res, err := handler(in, p, env, argv)
	if err != nil {
		in.setError(err.Error())
		return "", err
	}
	in.setResult(res)
	return res, nil
}

// substituteBody is the default body evaluator: every $name occurrence
// is replaced with the bound value. Longest parameter names substitute
// first so $ab is not clobbered by $a.
func substituteBody(in *Interp, p *Proc, env map[string]string, argv []string) (string, error) {
	names := make([]string, 0, len(env))
	for name := range env {
		names = append(names, name)
	}
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			if len(names[j]) > len(names[i]) {
				names[i], names[j] = names[j], names[i]
			}
		}
	}
	body := p.Body
	for _, name := range names {
		body = strings.ReplaceAll(body, "$"+name, env[name])
	}
	return strings.TrimSpace(body), nil
}
