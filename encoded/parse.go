// Package encoded reads and writes the device form of cheat codes: lines of
// two 8-digit hex words, "XXXXXXXX YYYYYYYY".
//
// The first digit selects the operation, and for extended operations (D) the
// second digit selects the sub-operation. Everything else is sliced according
// to core.LayoutOf. A value block (E) is followed by raw data lines holding up
// to eight bytes each, filled from the right.
package encoded

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/sarchlab/arconv/core"
	"github.com/sarchlab/arconv/number"
)

// Columns are sliced by byte, so words are restricted to printable ASCII.
// Anything besides hex digits is a pseudo-value and is kept verbatim.
var lineShape = regexp.MustCompile(`^\s*[!-~]{8}\s+[!-~]{8}\s*$`)

// Parser is the encoded front-end.
type Parser struct{}

// NewParser creates an encoded line parser.
func NewParser() *Parser {
	return &Parser{}
}

// TranscodeLine decodes one encoded line. While a value block is pending, the
// line is taken as raw data for it.
func (p *Parser) TranscodeLine(line string, ctx core.Context) (core.Step, error) {
	digits, err := compact(line)
	if err != nil {
		return core.Step{}, core.AtLine(ctx.Line, err)
	}

	if ctx.State.Mode == core.ValueBlockLine {
		return p.valueLine(digits, ctx), nil
	}

	step, err := p.structuralLine(digits, ctx)
	if err != nil {
		return core.Step{}, core.AtLine(ctx.Line, err)
	}
	return step, nil
}

func compact(line string) (string, error) {
	if !lineShape.MatchString(line) {
		return "", fmt.Errorf("%q is not of the form XXXXXXXX YYYYYYYY: %w",
			strings.TrimSpace(line), core.ErrMalformedLine)
	}
	return strings.ToUpper(strings.Join(strings.Fields(line), "")), nil
}

func (p *Parser) structuralLine(digits string, ctx core.Context) (core.Step, error) {
	n := &core.Node{Line: ctx.Line}

	kind, err := strconv.ParseUint(digits[:1], 16, 8)
	if err != nil {
		return core.Step{}, fmt.Errorf("%q: %w", digits[:1], core.ErrInvalidOpcode)
	}
	n.Kind = core.Kind(kind)

	if n.Kind == core.Extended {
		ex, err := strconv.ParseUint(digits[1:2], 16, 8)
		if err != nil || !core.ExKind(ex).Valid() {
			return core.Step{}, fmt.Errorf("%q: %w", digits[1:2], core.ErrInvalidExtendedOpcode)
		}
		n.Ex = core.ExKind(ex)
	}

	layout, _ := n.Layout()
	for _, f := range layout.Fields() {
		start, end, _ := layout.Columns(f)
		n.SetField(f, number.FromDigits(digits[start:end], (end-start)*4))
	}

	switch {
	case n.Kind.IsConditional():
		n.RelativeToOffset = n.Loc.IsZero()
		return core.Step{Node: n, Move: core.MoveChild, State: ctx.State}, nil
	case n.Kind == core.Repeat:
		if n.Cnt.IsZero() {
			return core.Step{Node: n, Move: core.MoveSibling, State: ctx.State}, nil
		}
		return core.Step{Node: n, Move: core.MoveChild, State: ctx.State}, nil
	case n.Kind == core.WriteValues:
		return openValueBlock(n)
	case n.Kind == core.Extended && n.Ex.IsCloser():
		move, err := core.CheckCloser(n.Ex, ctx.Enclosing)
		if err != nil {
			return core.Step{}, err
		}
		return core.Step{Node: n, Move: move, State: ctx.State}, nil
	}

	return core.Step{Node: n, Move: core.MoveSibling, State: ctx.State}, nil
}

func openValueBlock(n *core.Node) (core.Step, error) {
	cnt, err := n.Cnt.Uint()
	if err != nil {
		return core.Step{}, fmt.Errorf("value block size must be a number: %w", err)
	}
	if cnt == 0 {
		return core.Step{}, fmt.Errorf("value blocks cannot have zero values: %w",
			core.ErrEmptyValueBlock)
	}

	n.Values = make([]number.Literal, 0, min(cnt, core.ValueLineBytes))
	return core.Step{
		Move:  core.MoveNone,
		State: core.LineState{Mode: core.ValueBlockLine, Pending: n},
	}, nil
}

// valueLine takes up to eight bytes, rightmost first, into the pending block.
func (p *Parser) valueLine(digits string, ctx core.Context) core.Step {
	pending := ctx.State.Pending
	take := min(ctx.State.Remaining(), core.ValueLineBytes)

	for i := 0; i < take; i++ {
		end := core.LineDigits - 2*i
		pending.Values = append(pending.Values, number.FromDigits(digits[end-2:end], 8))
	}

	if ctx.State.Remaining() > 0 {
		return core.Step{Move: core.MoveNone, State: ctx.State}
	}
	return core.Step{Node: pending, Move: core.MoveSibling, State: core.LineState{}}
}
