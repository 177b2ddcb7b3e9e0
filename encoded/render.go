package encoded

import (
	"fmt"
	"strings"

	"github.com/sarchlab/arconv/core"
	"github.com/sarchlab/arconv/number"
)

// Printer is the encoded back-end.
type Printer struct {
	filler byte
}

// NewPrinter creates an encoded printer. Filler columns are written as 0 when
// zeroFiller is set and as ? otherwise.
func NewPrinter(zeroFiller bool) *Printer {
	p := &Printer{filler: '?'}
	if zeroFiller {
		p.filler = '0'
	}
	return p
}

// TranscodeTree renders the program in pre-order, one or more lines per node.
func (p *Printer) TranscodeTree(prog *core.Program) ([]string, error) {
	var lines []string
	err := prog.Walk(func(_ core.NodeID, n *core.Node, _ int) error {
		nodeLines, err := p.RenderNode(n)
		if err != nil {
			return err
		}
		lines = append(lines, nodeLines...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return lines, nil
}

// RenderNode renders the encoded lines of a single node.
func (p *Printer) RenderNode(n *core.Node) ([]string, error) {
	layout, ok := n.Layout()
	if !ok {
		return nil, renderError(n, fmt.Errorf("no layout for %s", n.Name()))
	}

	var sb strings.Builder
	for _, s := range layout {
		switch s.Type {
		case core.SegmentOpcode:
			sb.WriteString(s.Text)
		case core.SegmentFiller:
			sb.WriteString(strings.Repeat(string(p.filler), s.Digits))
		case core.SegmentField:
			l, ok := n.Field(s.Field)
			if !ok {
				return nil, renderError(n, fmt.Errorf("%s has no %s", n.Name(), s.Field))
			}
			digits, err := number.Format(l, s.Digits)
			if err != nil {
				return nil, renderError(n, fmt.Errorf("%s of %s: %w", s.Field, n.Name(), err))
			}
			sb.WriteString(digits)
		}
	}

	lines := []string{split(sb.String())}
	if n.Kind != core.WriteValues {
		return lines, nil
	}

	valueLines, err := p.valueLines(n)
	if err != nil {
		return nil, err
	}
	return append(lines, valueLines...), nil
}

// valueLines packs the bytes of a value block eight per line, right to left.
func (p *Printer) valueLines(n *core.Node) ([]string, error) {
	cnt, err := n.Cnt.Uint()
	if err != nil || int(cnt) != len(n.Values) {
		return nil, renderError(n, fmt.Errorf("value block declares %s bytes but holds %d",
			n.Cnt, len(n.Values)))
	}

	var lines []string
	for start := 0; start < len(n.Values); start += core.ValueLineBytes {
		chunk := n.Values[start:min(start+core.ValueLineBytes, len(n.Values))]

		buf := []byte(strings.Repeat(string(p.filler), core.LineDigits))
		for i, v := range chunk {
			digits, err := number.Format(v, 2)
			if err != nil {
				return nil, renderError(n, fmt.Errorf("byte %d: %w", start+i, err))
			}
			end := core.LineDigits - 2*i
			copy(buf[end-2:end], digits)
		}
		lines = append(lines, split(string(buf)))
	}
	return lines, nil
}

func split(digits string) string {
	return digits[:8] + " " + digits[8:]
}

func renderError(n *core.Node, err error) error {
	return &core.InternalError{Line: n.Line, Op: "render encoded", Err: err}
}
