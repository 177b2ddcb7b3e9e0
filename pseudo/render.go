package pseudo

import (
	"fmt"
	"strings"

	"github.com/sarchlab/arconv/core"
)

// placeholder names a value substituted into a template.
type placeholder uint8

const (
	phText placeholder = iota
	phLoc
	phVal
	phMask
	phCnt
	phPtr    // conditional pointer: "offset" or 0x-prefixed loc
	phValues // space-separated bytes of a value block
)

var placeholderNames = map[string]placeholder{
	"loc":    phLoc,
	"val":    phVal,
	"mask":   phMask,
	"cnt":    phCnt,
	"ptr":    phPtr,
	"values": phValues,
}

type part struct {
	ph   placeholder
	text string
}

type template []part

// compile splits "If [32: {ptr}] < 0x{val}" into literal and placeholder
// parts.
func compile(s string) template {
	var t template
	for s != "" {
		open := strings.IndexByte(s, '{')
		if open < 0 {
			t = append(t, part{ph: phText, text: s})
			break
		}
		if open > 0 {
			t = append(t, part{ph: phText, text: s[:open]})
		}
		end := strings.IndexByte(s[open:], '}')
		ph, ok := placeholderNames[s[open+1:open+end]]
		if !ok {
			panic(fmt.Sprintf("unknown placeholder in %q", s))
		}
		t = append(t, part{ph: ph})
		s = s[open+end+1:]
	}
	return t
}

var kindTemplates = [...]template{
	core.WriteImm32:  compile("[32: offset + 0x{loc}] = 0x{val}"),
	core.WriteImm16:  compile("[16: offset + 0x{loc}] = 0x{val}"),
	core.WriteImm8:   compile("[ 8: offset + 0x{loc}] = 0x{val}"),
	core.IfLT32:      compile("If [32: {ptr}] < 0x{val}"),
	core.IfGT32:      compile("If [32: {ptr}] > 0x{val}"),
	core.IfEQ32:      compile("If [32: {ptr}] == 0x{val}"),
	core.IfNE32:      compile("If [32: {ptr}] != 0x{val}"),
	core.IfLT16:      compile("If [16: {ptr}] & ~0x{mask} < 0x{val}"),
	core.IfGT16:      compile("If [16: {ptr}] & ~0x{mask} > 0x{val}"),
	core.IfEQ16:      compile("If [16: {ptr}] & ~0x{mask} == 0x{val}"),
	core.IfNE16:      compile("If [16: {ptr}] & ~0x{mask} != 0x{val}"),
	core.LoadOffset:  compile("offset = [32: offset + 0x{loc}]"),
	core.Repeat:      compile("Rept 0x{cnt}"),
	core.Extended:    nil,
	core.WriteValues: compile("[bytes: offset + 0x{loc}] = {values}"),
	core.MemCopy:     compile("Copy 0x{cnt} to 0x{loc}"),
}

var exTemplates = [...]template{
	core.EndIf:        compile("EndIf"),
	core.EndRepeat:    compile("EndRept"),
	core.EndAll:       compile("EndAll"),
	core.SetOffset:    compile("offset = 0x{val}"),
	core.AddStored:    compile("stored += 0x{val}"),
	core.SetStored:    compile("stored = 0x{val}"),
	core.StoreInc32:   compile("[32+: ofs + 0x{loc}] = stored"),
	core.StoreInc16:   compile("[16+: ofs + 0x{loc}] = stored"),
	core.StoreInc8:    compile("[ 8+: ofs + 0x{loc}] = stored"),
	core.LoadStored32: compile("stored = [32: offset + 0x{loc}]"),
	core.LoadStored16: compile("stored = [16: offset + 0x{loc}]"),
	core.LoadStored8:  compile("stored = [ 8: offset + 0x{loc}]"),
	core.AddOffset:    compile("offset += 0x{val}"),
}

const indentUnit = "  "

// Printer is the pseudocode back-end.
type Printer struct{}

// NewPrinter creates a pseudocode printer.
func NewPrinter() *Printer {
	return &Printer{}
}

// TranscodeTree renders every node of p as one pseudocode line, nested blocks
// indented by two spaces per level.
func (pr *Printer) TranscodeTree(p *core.Program) ([]string, error) {
	var lines []string
	err := p.Walk(func(_ core.NodeID, n *core.Node, depth int) error {
		line, err := RenderNode(n)
		if err != nil {
			return err
		}
		lines = append(lines, strings.Repeat(indentUnit, depth)+line)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return lines, nil
}

// RenderNode renders a single node without indentation.
func RenderNode(n *core.Node) (string, error) {
	t, err := templateOf(n)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, p := range t {
		s, err := substitute(n, p)
		if err != nil {
			return "", err
		}
		sb.WriteString(s)
	}
	return sb.String(), nil
}

func templateOf(n *core.Node) (template, error) {
	switch {
	case n.Kind == core.Extended && n.Ex.Valid():
		return exTemplates[n.Ex], nil
	case n.Kind.Valid() && n.Kind != core.Extended:
		return kindTemplates[n.Kind], nil
	}
	return nil, &core.InternalError{
		Line: n.Line,
		Op:   "render pseudocode",
		Err:  fmt.Errorf("no template for %s/%s", n.Kind, n.Ex),
	}
}

func substitute(n *core.Node, p part) (string, error) {
	switch p.ph {
	case phText:
		return p.text, nil
	case phPtr:
		if n.RelativeToOffset {
			return "offset", nil
		}
		loc, err := field(n, core.FieldLoc)
		return "0x" + loc, err
	case phValues:
		if len(n.Values) == 0 {
			return "", missing(n, "values")
		}
		parts := make([]string, len(n.Values))
		for i, v := range n.Values {
			parts[i] = "0x" + v.String()
		}
		return strings.Join(parts, " "), nil
	case phLoc:
		return field(n, core.FieldLoc)
	case phVal:
		return field(n, core.FieldVal)
	case phMask:
		return field(n, core.FieldMask)
	case phCnt:
		return field(n, core.FieldCnt)
	}
	return "", missing(n, "placeholder")
}

func field(n *core.Node, f core.Field) (string, error) {
	l, ok := n.Field(f)
	if !ok {
		return "", missing(n, f.String())
	}
	return l.String(), nil
}

func missing(n *core.Node, what string) error {
	return &core.InternalError{
		Line: n.Line,
		Op:   "render pseudocode",
		Err:  fmt.Errorf("%s has no %s", n.Name(), what),
	}
}
