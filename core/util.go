package core

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/sarchlab/arconv/number"
)

// LevelTrace ranks the per-line records just above Info: an Info handler
// shows them and a Warn handler hides them.
const (
	LevelTrace slog.Level = slog.LevelInfo + 1
)

// Trace logs msg at LevelTrace. A nil logger means slog.Default().
func Trace(logger *slog.Logger, msg string, args ...any) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Log(context.Background(), LevelTrace, msg, args...)
}

// PrintProgram dumps the tree as a table, one row per node in pre-order.
func PrintProgram(w io.Writer, p *Program) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(fmt.Sprintf("Program (%d nodes)", p.Len()))
	t.AppendHeader(table.Row{"#", "Line", "Op", "Loc", "Val", "Mask", "Cnt", "Values"})

	_ = p.Walk(func(id NodeID, n *Node, depth int) error {
		op := strings.Repeat("  ", depth) + n.Name()
		if n.IsBlock() {
			op += fmt.Sprintf(" {%d}", len(n.Children))
		}
		t.AppendRow(table.Row{
			int(id), n.Line, op,
			cell(n.Loc), cell(n.Val), cell(n.Mask), cell(n.Cnt),
			valuesCell(n),
		})
		return nil
	})

	t.Render()
}

// LogProgram writes a debug record per node to logger, or to slog.Default()
// when logger is nil.
func LogProgram(logger *slog.Logger, p *Program) {
	if logger == nil {
		logger = slog.Default()
	}
	_ = p.Walk(func(id NodeID, n *Node, depth int) error {
		logger.Debug("Node",
			"ID", int(id),
			"Line", n.Line,
			"Op", n.Name(),
			"Depth", depth,
			"Loc", n.Loc.String(),
			"Val", n.Val.String(),
			"Mask", n.Mask.String(),
			"Cnt", n.Cnt.String(),
			"Block", n.IsBlock(),
		)
		return nil
	})
}

func cell(l number.Literal) string {
	if !l.Valid() {
		return ""
	}
	return l.String()
}

func valuesCell(n *Node) string {
	if len(n.Values) == 0 {
		return ""
	}
	parts := make([]string, len(n.Values))
	for i, v := range n.Values {
		parts[i] = v.String()
	}
	return strings.Join(parts, " ")
}
