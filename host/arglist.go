package host

import (
	"fmt"
	"strings"
)

// ---------------------------------------------------------------------------
// Argument-spec parsing
// ---------------------------------------------------------------------------

// Param is one formal parameter of a stored procedure.
type Param struct {
	Name       string
	Default    string
	HasDefault bool
}

// ArgList is a parsed argument specification. CatchAll is set when the
// spec ends with the special "args" parameter, which collects any
// remaining arguments at call time.
type ArgList struct {
	Params   []Param
	CatchAll bool
}

// ParseArgSpec parses a Tcl-style argument specification such as
// "x {y 2} args" into an ArgList plus a rendered usage string:
// required parameters appear bare, defaulted ones as ?name?, and the
// catch-all as ?arg arg ...?.
func ParseArgSpec(spec string) (*ArgList, string, error) {
	words, err := SplitList(spec)
	if err != nil {
		return nil, "", fmt.Errorf("bad argument list %q: %w", spec, err)
	}

	al := &ArgList{}
	var usage []string
	seen := make(map[string]bool)
	for i, w := range words {
		fields, err := SplitList(w)
		if err != nil {
			return nil, "", fmt.Errorf("bad argument specifier %q: %w", w, err)
		}
		if len(fields) == 0 {
			return nil, "", fmt.Errorf("argument with no name in %q", spec)
		}
		if len(fields) > 2 {
			return nil, "", fmt.Errorf("too many fields in argument specifier %q", w)
		}
		name := fields[0]
		if seen[name] {
			return nil, "", fmt.Errorf("duplicate argument name %q", name)
		}
		seen[name] = true

		if name == "args" && len(fields) == 1 {
			if i != len(words)-1 {
				return nil, "", fmt.Errorf(`"args" must be the last argument`)
			}
			al.CatchAll = true
			usage = append(usage, "?arg arg ...?")
			continue
		}

		p := Param{Name: name}
		if len(fields) == 2 {
			p.Default = fields[1]
			p.HasDefault = true
			usage = append(usage, "?"+name+"?")
		} else {
			usage = append(usage, name)
		}
		al.Params = append(al.Params, p)
	}
	return al, strings.Join(usage, " "), nil
}
