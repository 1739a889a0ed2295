package ensemble

import (
	"errors"
	"fmt"
)

// ---------------------------------------------------------------------------
// Definition language
// ---------------------------------------------------------------------------
//
// A restricted command grammar for defining ensembles declaratively:
//
//   ensemble <name> {
//       part <name> <args> <body>
//       option <name> <args> <body>
//       ensemble <name> { ... }
//   }
//
// The "current ensemble" context is threaded explicitly through the
// recursive evaluation, so nested definitions save and restore it like
// a stack frame and the evaluator is safe to re-enter.

// DefineEnsemble finds or creates a top-level ensemble and evaluates
// its definition. A single argument is treated as a multi-line body
// (errors are annotated with their body line); multiple arguments form
// one definition command.
func (r *Registry) DefineEnsemble(name string, args ...string) error {
	return r.evalEnsembleVerb(nil, name, args)
}

// EvalDefinition evaluates a script of top-level definition commands.
// Only the "ensemble" verb is valid at the top level.
func (r *Registry) EvalDefinition(source string) error {
	cmds, err := scanDefinition(source)
	if err != nil {
		return err
	}
	for _, cmd := range cmds {
		if err := r.evalWords(nil, cmd.words); err != nil {
			return annotateLine(err, cmd.line)
		}
	}
	return nil
}

// evalEnsembleVerb resolves or creates the ensemble named under the
// current context and evaluates its definition against it.
func (r *Registry) evalEnsembleVerb(cur *Ensemble, name string, args []string) error {
	var ens *Ensemble

	if cur != nil {
		// Nested: the name is a part of the current ensemble, created
		// as a sub-ensemble when missing.
		part, err := cur.FindPart(name)
		if err != nil {
			part = nil
		}
		if part == nil {
			if _, err := r.createEnsemble(cur, name); err != nil {
				return err
			}
			part, err = cur.FindPart(name)
			if err != nil || part == nil {
				return newErrf(ErrInternal, "cannot create ensemble %q", name)
			}
		}
		child, ok := r.byHandle[part.cmd]
		if !ok {
			return newErrf(ErrNotAnEnsemble, "part %q is not an ensemble", name)
		}
		ens = child
	} else {
		// Top level: the name is an access command, created when
		// missing.
		cmd := r.interp.FindCommand(name)
		if cmd == nil {
			if _, err := r.createEnsemble(nil, name); err != nil {
				return err
			}
			cmd = r.interp.FindCommand(name)
		}
		var ok bool
		ens, ok = r.byHandle[cmd]
		if !ok {
			return newErrf(ErrNotAnEnsemble, "command %q is not an ensemble", name)
		}
	}

	switch {
	case len(args) == 0:
		return nil
	case len(args) == 1:
		cmds, err := scanDefinition(args[0])
		if err != nil {
			return err
		}
		for _, cmd := range cmds {
			if err := r.evalWords(ens, cmd.words); err != nil {
				return annotateLine(err, cmd.line)
			}
		}
		return nil
	default:
		// Explicit argument list: a single definition command.
		return r.evalWords(ens, args)
	}
}

// evalWords executes one definition command against the current
// ensemble context (nil at the top level).
func (r *Registry) evalWords(cur *Ensemble, words []string) error {
	if len(words) == 0 {
		return nil
	}
	switch words[0] {
	case "ensemble":
		if len(words) < 2 {
			return newErrf(ErrUnknownVerb,
				"wrong # args: should be \"ensemble name ?command arg arg...?\"")
		}
		return r.evalEnsembleVerb(cur, words[1], words[2:])

	case "part", "option":
		if cur == nil {
			return newErrf(ErrUnknownVerb, "%q is only valid inside an ensemble definition", words[0])
		}
		if len(words) != 4 {
			return newErrf(ErrUnknownVerb,
				"wrong # args: should be \"%s name args body\"", words[0])
		}
		_, err := r.AddScriptPart(cur, words[1], words[2], words[3])
		return err

	default:
		return newErrf(ErrUnknownVerb, "unknown verb %q in ensemble definition", words[0])
	}
}

// annotateLine tags an error from a body-form definition with the line
// the failing command started on. An error that already carries a body
// line passes through untouched, so nested bodies report the innermost
// line only.
func annotateLine(err error, line int) error {
	var tagged *bodyLineError
	if errors.As(err, &tagged) {
		return err
	}
	return &bodyLineError{err: err, line: line}
}

type bodyLineError struct {
	err  error
	line int
}

func (e *bodyLineError) Error() string {
	return fmt.Sprintf("%s\n    (\"ensemble\" body line %d)", e.err, e.line)
}

func (e *bodyLineError) Unwrap() error {
	return e.err
}

// ---------------------------------------------------------------------------
// Definition scanner
// ---------------------------------------------------------------------------

// defCommand is one scanned definition command and the line it starts
// on (1-based, within the body it was scanned from).
type defCommand struct {
	words []string
	line  int
}

// scanDefinition splits definition source into commands. Commands are
// separated by newlines or semicolons; words are bare, brace-wrapped
// (nesting, content taken verbatim), or double-quoted (with backslash
// escapes). A "#" at the start of a command begins a comment running
// to the end of the line.
func scanDefinition(src string) ([]defCommand, error) {
	var cmds []defCommand
	line := 1
	i, n := 0, len(src)

	for i < n {
		for i < n && (src[i] == ' ' || src[i] == '\t' || src[i] == '\r' || src[i] == '\n' || src[i] == ';') {
			if src[i] == '\n' {
				line++
			}
			i++
		}
		if i >= n {
			break
		}
		if src[i] == '#' {
			for i < n && src[i] != '\n' {
				i++
			}
			continue
		}

		cmdLine := line
		var words []string
		for i < n && src[i] != '\n' && src[i] != ';' {
			for i < n && (src[i] == ' ' || src[i] == '\t' || src[i] == '\r') {
				i++
			}
			if i >= n || src[i] == '\n' || src[i] == ';' {
				break
			}
			word, next, nl, err := scanWord(src, i, line)
			if err != nil {
				return nil, err
			}
			words = append(words, word)
			i = next
			line = nl
		}
		if len(words) > 0 {
			cmds = append(cmds, defCommand{words: words, line: cmdLine})
		}
	}
	return cmds, nil
}

// scanWord consumes one word starting at i, returning the word, the
// position after it, and the updated line count.
func scanWord(src string, i, line int) (string, int, int, error) {
	n := len(src)
	switch src[i] {
	case '{':
		depth := 0
		j := i
		for ; j < n; j++ {
			switch src[j] {
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					return src[i+1 : j], j + 1, line, nil
				}
			case '\n':
				line++
			}
		}
		return "", 0, 0, newErrf(ErrMalformedPath, "unmatched open brace in ensemble body")
	case '"':
		var out []byte
		j := i + 1
		for ; j < n; j++ {
			if src[j] == '\\' && j+1 < n {
				j++
				out = append(out, src[j])
				continue
			}
			if src[j] == '"' {
				return string(out), j + 1, line, nil
			}
			if src[j] == '\n' {
				line++
			}
			out = append(out, src[j])
		}
		return "", 0, 0, newErrf(ErrMalformedPath, "unmatched open quote in ensemble body")
	default:
		j := i
		for j < n && src[j] != ' ' && src[j] != '\t' && src[j] != '\r' && src[j] != '\n' && src[j] != ';' {
			j++
		}
		return src[i:j], j, line, nil
	}
}
