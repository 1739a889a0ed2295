package ensemble

import (
	"strings"

	"github.com/cmdkit/ensemble/host"
)

// ---------------------------------------------------------------------------
// Usage rendering
// ---------------------------------------------------------------------------

// openEndedSuffix is appended to an ensemble summary when the ensemble
// carries an @error part: the custom handler implies there are more
// options than the summary can enumerate.
const openEndedSuffix = "\n...and others described on the man page"

// partTrail walks from a part up through each gateway to the top-level
// ensemble, returning the full invocation path: the top-level access
// name first, then each sub-ensemble part name, then the part itself.
func partTrail(p *Part) []string {
	var parts []*Part
	for cur := p; cur != nil; cur = cur.owner.parent {
		parts = append(parts, cur)
	}

	top := p.owner
	for top.parent != nil {
		top = top.parent.owner
	}

	trail := make([]string, 0, len(parts)+1)
	trail = append(trail, top.cmd.ShortName())
	for i := len(parts) - 1; i >= 0; i-- {
		trail = append(trail, parts[i].Name)
	}
	return trail
}

// renderPartUsage renders one part's usage line: the invocation trail,
// then the stored usage string, or the fixed option summary when the
// part is itself an ensemble with no usage of its own.
func renderPartUsage(p *Part) string {
	var sb strings.Builder
	sb.WriteString(strings.Join(partTrail(p), " "))
	if p.Usage != "" {
		sb.WriteString(" ")
		sb.WriteString(p.Usage)
	} else if host.IsEnsembleCommand(p.cmd) {
		sb.WriteString(" option ?arg arg ...?")
	}
	return sb.String()
}

// renderEnsembleUsage summarizes every part of an ensemble, one per
// line, in store (lexicographic) order. Service parts named with a
// leading "@" are suppressed; "@error" additionally marks the summary
// open-ended.
func renderEnsembleUsage(ens *Ensemble) string {
	var sb strings.Builder
	spaces := "  "
	openEnded := false
	for i := 0; i < ens.parts.Len(); i++ {
		part := ens.parts.At(i)
		if strings.HasPrefix(part.Name, "@") {
			if part.Name == "@error" {
				openEnded = true
			}
			continue
		}
		sb.WriteString(spaces)
		sb.WriteString(renderPartUsage(part))
		spaces = "\n  "
	}
	if openEnded {
		sb.WriteString(openEndedSuffix)
	}
	return sb.String()
}
