package host

import (
	"fmt"
	"strings"
)

// ---------------------------------------------------------------------------
// List splitting and joining
// ---------------------------------------------------------------------------

// SplitList breaks a Tcl-style list string into its elements. Elements
// are separated by runs of whitespace; an element may be wrapped in
// braces (which nest, and are stripped from the result) or in double
// quotes (stripped, with backslash escapes for `\"` and `\\`).
func SplitList(s string) ([]string, error) {
	var words []string
	i := 0
	n := len(s)
	for {
		for i < n && isListSpace(s[i]) {
			i++
		}
		if i >= n {
			return words, nil
		}
		switch s[i] {
		case '{':
			depth := 0
			j := i
			for ; j < n; j++ {
				if s[j] == '{' {
					depth++
				} else if s[j] == '}' {
					depth--
					if depth == 0 {
						break
					}
				}
			}
			if depth != 0 {
				return nil, fmt.Errorf("unmatched open brace in list")
			}
			words = append(words, s[i+1:j])
			i = j + 1
			if i < n && !isListSpace(s[i]) {
				return nil, fmt.Errorf("list element in braces followed by %q instead of space", s[i])
			}
		case '"':
			var sb strings.Builder
			j := i + 1
			for ; j < n; j++ {
				if s[j] == '\\' && j+1 < n {
					j++
					sb.WriteByte(s[j])
					continue
				}
				if s[j] == '"' {
					break
				}
				sb.WriteByte(s[j])
			}
			if j >= n {
				return nil, fmt.Errorf("unmatched open quote in list")
			}
			words = append(words, sb.String())
			i = j + 1
			if i < n && !isListSpace(s[i]) {
				return nil, fmt.Errorf("list element in quotes followed by %q instead of space", s[i])
			}
		default:
			j := i
			for j < n && !isListSpace(s[j]) {
				j++
			}
			words = append(words, s[i:j])
			i = j
		}
	}
}

// JoinList renders elements back into a list string, bracing any
// element containing whitespace or an empty element.
func JoinList(elems []string) string {
	parts := make([]string, len(elems))
	for i, e := range elems {
		if e == "" || strings.ContainsAny(e, " \t\n;") {
			parts[i] = "{" + e + "}"
		} else {
			parts[i] = e
		}
	}
	return strings.Join(parts, " ")
}

func isListSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
