package verify

import (
	"fmt"

	"github.com/sarchlab/arconv/config"
	"github.com/sarchlab/arconv/core"
)

// RunLint performs static lint checks on a code tree.
// Returns a list of issues found in source order, or an empty list if there
// are none.
func RunLint(prog *core.Program, opts config.Options) []Issue {
	var issues []Issue

	_ = prog.Walk(func(_ core.NodeID, n *core.Node, _ int) error {
		// REPEAT: zero-length repeat
		if n.Kind == core.Repeat && n.Cnt.IsZero() && !opts.SuppressZeroRepeatWarning {
			issues = append(issues, Issue{
				Type:    IssueRepeat,
				Line:    n.Line,
				Op:      n.Name(),
				Message: "REPT with length zero isn't properly defined",
			})
		}

		// PSEUDO: fields emitted verbatim
		issues = append(issues, pseudoIssues(n)...)
		return nil
	})

	// ENDALL: the last statement in pre-order must be EndAll
	if !opts.SuppressMissingEndAllWarning {
		last := prog.Last()
		if last == nil || !last.Is(core.EndAll) {
			issue := Issue{
				Type:    IssueEndAll,
				Message: "Code does not end with an EndAll operation",
			}
			if last != nil {
				issue.Line = last.Line
				issue.Op = last.Name()
			}
			issues = append(issues, issue)
		}
	}

	return issues
}

func pseudoIssues(n *core.Node) []Issue {
	var issues []Issue

	layout, _ := n.Layout()
	for _, f := range layout.Fields() {
		l, ok := n.Field(f)
		if !ok || !l.IsPseudo() {
			continue
		}
		issues = append(issues, Issue{
			Type:    IssuePseudo,
			Line:    n.Line,
			Op:      n.Name(),
			Message: fmt.Sprintf("%s holds pseudo-value %s, copied as is", f, l),
			Details: map[string]interface{}{"field": f.String(), "digits": l.String()},
		})
	}

	for i, v := range n.Values {
		if !v.IsPseudo() {
			continue
		}
		issues = append(issues, Issue{
			Type:    IssuePseudo,
			Line:    n.Line,
			Op:      n.Name(),
			Message: fmt.Sprintf("byte %d holds pseudo-value %s, copied as is", i, v),
			Details: map[string]interface{}{"byte": i, "digits": v.String()},
		})
	}

	return issues
}
