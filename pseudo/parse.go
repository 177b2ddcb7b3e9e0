// Package pseudo reads and writes the human-readable pseudocode form of cheat
// codes.
//
// A program is one statement per line. Indentation is cosmetic. Keywords and
// hex digits are case-insensitive.
//
//	[32: offset + 0x4] = 0x12345678
//	If [16: 0x2000000] & 0x00FF == 0x12
//	  Rept 0x10
//	    stored += 0x1
//	  EndRept
//	EndIf
//	EndAll
package pseudo

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/sarchlab/arconv/core"
	"github.com/sarchlab/arconv/number"
)

var (
	writeRe       = regexp.MustCompile(`(?i)^\[\s*(8|16|32)\s*:\s*(.+?)\s*\]\s*=\s*(.+?)$`)
	ifRe          = regexp.MustCompile(`(?i)^if\s*(.+?)\s*(<|>|==|!=)\s*(.+?)$`)
	loadOffsetRe  = regexp.MustCompile(`(?i)^(?:offset|ofs)\s*=\s*\[\s*32\s*:\s*(.+?)\s*\]$`)
	reptRe        = regexp.MustCompile(`(?i)^rept\s+(.+?)$`)
	valuesRe      = regexp.MustCompile(`(?i)^\[\s*bytes\s*:\s*(.+?)\s*\]\s*=\s*(.+?)$`)
	copyRe        = regexp.MustCompile(`(?i)^copy\s+(.+?)\s+to\s+(.+?)$`)
	endRe         = regexp.MustCompile(`(?i)^end(if|rept|all)$`)
	offsetImmRe   = regexp.MustCompile(`(?i)^(?:offset|ofs)\s*(\+?)=\s*(.+?)$`)
	storedImmRe   = regexp.MustCompile(`(?i)^stored\s*(\+?)=\s*([^\[\s].*?)$`)
	storeStoredRe = regexp.MustCompile(`(?i)^\[\s*(8|16|32)\s*\+\s*:\s*(.+?)\s*\]\s*=\s*stored$`)
	loadStoredRe  = regexp.MustCompile(`(?i)^stored\s*=\s*\[\s*(8|16|32)\s*:\s*(.+?)\s*\]$`)

	offsetPtrRe  = regexp.MustCompile(`(?i)^(?:offset|ofs)(?:\s*\+\s*(.+?))?$`)
	offsetWordRe = regexp.MustCompile(`(?i)^(?:offset|ofs)$`)
	condPtrRe    = regexp.MustCompile(
		`(?i)^(?:\[\s*32\s*:\s*(.+?)\s*\]|\[\s*16\s*:\s*(.+?)\s*\](?:\s*&\s*(~)?\s*(.+))?)$`)
)

type rule struct {
	re    *regexp.Regexp
	apply func(n *core.Node, m []string, ctx core.Context) (core.Move, error)
}

// Primary forms are tried first, in order, then the extended ones.
var primaryRules = []rule{
	{writeRe, parseWrite},
	{ifRe, parseIf},
	{loadOffsetRe, parseLoadOffset},
	{reptRe, parseRept},
	{valuesRe, parseValues},
	{copyRe, parseCopy},
}

var extendedRules = []rule{
	{endRe, parseEnd},
	{offsetImmRe, parseOffsetImm},
	{storedImmRe, parseStoredImm},
	{storeStoredRe, parseStoreStored},
	{loadStoredRe, parseLoadStored},
}

// Parser is the pseudocode front-end. It turns one statement into a node.
type Parser struct{}

// NewParser creates a pseudocode parser.
func NewParser() *Parser {
	return &Parser{}
}

// TranscodeLine parses one pseudocode line.
func (p *Parser) TranscodeLine(line string, ctx core.Context) (core.Step, error) {
	text := strings.TrimSpace(line)
	n := &core.Node{Line: ctx.Line}

	for _, rules := range [][]rule{primaryRules, extendedRules} {
		for _, r := range rules {
			m := r.re.FindStringSubmatch(text)
			if m == nil {
				continue
			}

			move, err := r.apply(n, m, ctx)
			if err != nil {
				return core.Step{}, core.AtLine(ctx.Line, err)
			}

			return core.Step{Node: n, Move: move, State: ctx.State}, nil
		}
	}

	return core.Step{}, core.AtLine(ctx.Line,
		fmt.Errorf("couldn't determine operation type for %q: %w", text, core.ErrSyntax))
}

func widthIndex(w string) int {
	switch w {
	case "32":
		return 0
	case "16":
		return 1
	default:
		return 2
	}
}

func setField(n *core.Node, f core.Field, text string) error {
	l, err := number.Parse(text, n.Bits(f))
	if err != nil {
		return fmt.Errorf("%s of %s: %w", f, n.Name(), err)
	}
	n.SetField(f, l)
	return nil
}

// setOffsetPointer reads "offset" or "offset + N" into loc.
func setOffsetPointer(n *core.Node, ptr, what string) error {
	m := offsetPtrRe.FindStringSubmatch(ptr)
	if m == nil {
		return fmt.Errorf("%s must be an offset-relative pointer, got %q: %w",
			what, ptr, core.ErrSyntax)
	}
	if m[1] == "" {
		n.Loc = number.FromUint(0, n.Bits(core.FieldLoc))
		return nil
	}
	return setField(n, core.FieldLoc, m[1])
}

func parseWrite(n *core.Node, m []string, _ core.Context) (core.Move, error) {
	n.Kind = core.WriteImm32 + core.Kind(widthIndex(m[1]))
	if err := setField(n, core.FieldVal, m[3]); err != nil {
		return core.MoveNone, err
	}
	if err := setOffsetPointer(n, m[2], "left operand to immediate write"); err != nil {
		return core.MoveNone, err
	}
	return core.MoveSibling, nil
}

func parseIf(n *core.Node, m []string, _ core.Context) (core.Move, error) {
	cmp, _ := core.ComparisonFromSymbol(m[2])
	ptrText, valText := m[1], m[3]

	pm := condPtrRe.FindStringSubmatch(ptrText)
	if pm == nil {
		// The pointer is the right operand: swap both sides.
		cmp = cmp.Flip()
		ptrText, valText = valText, ptrText
		pm = condPtrRe.FindStringSubmatch(ptrText)
		if pm == nil {
			return core.MoveNone, fmt.Errorf("one of the operands to If must be a pointer: %w",
				core.ErrSyntax)
		}
	}

	var loc string
	if pm[1] != "" {
		n.Kind = core.ConditionalKind(cmp, false)
		loc = pm[1]
	} else {
		n.Kind = core.ConditionalKind(cmp, true)
		loc = pm[2]
		if err := setMask(n, pm[3] != "", pm[4]); err != nil {
			return core.MoveNone, err
		}
	}

	if offsetWordRe.MatchString(loc) {
		n.Loc = number.FromUint(0, n.Bits(core.FieldLoc))
	} else if err := setField(n, core.FieldLoc, loc); err != nil {
		return core.MoveNone, err
	}
	n.RelativeToOffset = n.Loc.IsZero()

	if err := setField(n, core.FieldVal, valText); err != nil {
		return core.MoveNone, err
	}

	return core.MoveChild, nil
}

// setMask stores the mask the way the device wants it: inverted. A mask
// written with ~ is already inverted. No mask at all means compare every bit.
func setMask(n *core.Node, inverted bool, text string) error {
	if text == "" {
		n.Mask = number.FromUint(0, 16)
		return nil
	}
	if err := setField(n, core.FieldMask, text); err != nil {
		return err
	}
	if inverted {
		return nil
	}

	mask, err := n.Mask.Invert()
	if err != nil {
		return fmt.Errorf("masks are stored inverted, and %s cannot be inverted automatically (write & ~0x... instead): %w",
			text, core.ErrNonInvertibleMask)
	}
	n.Mask = mask
	return nil
}

func parseLoadOffset(n *core.Node, m []string, _ core.Context) (core.Move, error) {
	n.Kind = core.LoadOffset
	if err := setOffsetPointer(n, m[1], "offset load source"); err != nil {
		return core.MoveNone, err
	}
	return core.MoveSibling, nil
}

func parseRept(n *core.Node, m []string, _ core.Context) (core.Move, error) {
	n.Kind = core.Repeat
	if err := setField(n, core.FieldCnt, m[1]); err != nil {
		return core.MoveNone, err
	}
	// A zero-length repeat is not a block; lint reports it.
	if n.Cnt.IsZero() {
		return core.MoveSibling, nil
	}
	return core.MoveChild, nil
}

func parseValues(n *core.Node, m []string, _ core.Context) (core.Move, error) {
	n.Kind = core.WriteValues
	if err := setOffsetPointer(n, m[1], "value block destination"); err != nil {
		return core.MoveNone, err
	}

	items := strings.FieldsFunc(m[2], func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	if len(items) == 0 {
		return core.MoveNone, fmt.Errorf("value blocks cannot have zero values: %w",
			core.ErrEmptyValueBlock)
	}

	n.Values = make([]number.Literal, 0, len(items))
	for i, item := range items {
		v, err := number.Parse(item, 8)
		if err != nil {
			return core.MoveNone, fmt.Errorf("byte %d of value block: %w", i, err)
		}
		n.Values = append(n.Values, v)
	}
	n.Cnt = number.FromUint(uint64(len(n.Values)), n.Bits(core.FieldCnt))

	return core.MoveSibling, nil
}

func parseCopy(n *core.Node, m []string, _ core.Context) (core.Move, error) {
	n.Kind = core.MemCopy
	if err := setField(n, core.FieldCnt, m[1]); err != nil {
		return core.MoveNone, err
	}
	if err := setField(n, core.FieldLoc, m[2]); err != nil {
		return core.MoveNone, err
	}
	return core.MoveSibling, nil
}

func parseEnd(n *core.Node, m []string, ctx core.Context) (core.Move, error) {
	n.Kind = core.Extended
	switch strings.ToLower(m[1]) {
	case "if":
		n.Ex = core.EndIf
	case "rept":
		n.Ex = core.EndRepeat
	default:
		n.Ex = core.EndAll
	}
	return core.CheckCloser(n.Ex, ctx.Enclosing)
}

func parseOffsetImm(n *core.Node, m []string, _ core.Context) (core.Move, error) {
	n.Kind = core.Extended
	n.Ex = core.SetOffset
	if m[1] != "" {
		n.Ex = core.AddOffset
	}
	if err := setField(n, core.FieldVal, m[2]); err != nil {
		return core.MoveNone, err
	}
	return core.MoveSibling, nil
}

func parseStoredImm(n *core.Node, m []string, _ core.Context) (core.Move, error) {
	n.Kind = core.Extended
	n.Ex = core.SetStored
	if m[1] != "" {
		n.Ex = core.AddStored
	}
	if err := setField(n, core.FieldVal, m[2]); err != nil {
		return core.MoveNone, err
	}
	return core.MoveSibling, nil
}

func parseStoreStored(n *core.Node, m []string, _ core.Context) (core.Move, error) {
	n.Kind = core.Extended
	n.Ex = core.StoreInc32 + core.ExKind(widthIndex(m[1]))
	if err := setOffsetPointer(n, m[2], "left operand to stored stores"); err != nil {
		return core.MoveNone, err
	}
	return core.MoveSibling, nil
}

func parseLoadStored(n *core.Node, m []string, _ core.Context) (core.Move, error) {
	n.Kind = core.Extended
	n.Ex = core.LoadStored32 + core.ExKind(widthIndex(m[1]))
	if err := setOffsetPointer(n, m[2], "source of stored gets"); err != nil {
		return core.MoveNone, err
	}
	return core.MoveSibling, nil
}
