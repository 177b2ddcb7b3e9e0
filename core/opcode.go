package core

import "fmt"

// Kind is the primary opcode of a code line. Its value is the hex digit found
// in column 0 of the encoded line.
type Kind uint8

const (
	WriteImm32 Kind = iota
	WriteImm16
	WriteImm8
	IfLT32
	IfGT32
	IfEQ32
	IfNE32
	IfLT16
	IfGT16
	IfEQ16
	IfNE16
	LoadOffset
	Repeat
	Extended
	WriteValues
	MemCopy

	// KindRoot marks the container at the top of a program tree.
	KindRoot Kind = 0xFF
)

var kindNames = [...]string{
	WriteImm32:  "WriteImm32",
	WriteImm16:  "WriteImm16",
	WriteImm8:   "WriteImm8",
	IfLT32:      "IfLT32",
	IfGT32:      "IfGT32",
	IfEQ32:      "IfEQ32",
	IfNE32:      "IfNE32",
	IfLT16:      "IfLT16",
	IfGT16:      "IfGT16",
	IfEQ16:      "IfEQ16",
	IfNE16:      "IfNE16",
	LoadOffset:  "LoadOffset",
	Repeat:      "Repeat",
	Extended:    "Extended",
	WriteValues: "WriteValues",
	MemCopy:     "MemCopy",
}

func (k Kind) String() string {
	if k == KindRoot {
		return "Root"
	}
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Valid reports whether k is one of the 16 primary opcodes.
func (k Kind) Valid() bool {
	return k <= MemCopy
}

// IsConditional reports whether k opens an If block.
func (k Kind) IsConditional() bool {
	return k >= IfLT32 && k <= IfNE16
}

// Is16BitConditional reports whether k is a masked 16-bit comparison.
func (k Kind) Is16BitConditional() bool {
	return k >= IfLT16 && k <= IfNE16
}

// Comparison returns the comparison performed by a conditional kind.
func (k Kind) Comparison() Comparison {
	if k.Is16BitConditional() {
		return Comparison(k - IfLT16)
	}
	return Comparison(k - IfLT32)
}

// Comparison is the operator of a conditional line.
type Comparison uint8

const (
	Less Comparison = iota
	Greater
	Equal
	NotEqual
)

var comparisonSymbols = [...]string{"<", ">", "==", "!="}

// ComparisonFromSymbol maps "<", ">", "==" and "!=" to a Comparison.
func ComparisonFromSymbol(sym string) (Comparison, bool) {
	for i, s := range comparisonSymbols {
		if s == sym {
			return Comparison(i), true
		}
	}
	return 0, false
}

func (c Comparison) String() string {
	return comparisonSymbols[c]
}

// Flip returns the operator to use once both operands are swapped.
func (c Comparison) Flip() Comparison {
	switch c {
	case Less:
		return Greater
	case Greater:
		return Less
	default:
		return c
	}
}

// ConditionalKind returns the kind comparing with c at the given width.
func ConditionalKind(c Comparison, wide16 bool) Kind {
	if wide16 {
		return IfLT16 + Kind(c)
	}
	return IfLT32 + Kind(c)
}

// ExKind is the sub-opcode of an Extended line, found in column 1.
type ExKind uint8

const (
	EndIf ExKind = iota
	EndRepeat
	EndAll
	SetOffset
	AddStored
	SetStored
	StoreInc32
	StoreInc16
	StoreInc8
	LoadStored32
	LoadStored16
	LoadStored8
	// AddOffset is undocumented: DC000000 YYYYYYYY adds YYYYYYYY to the
	// offset register.
	AddOffset
)

var exKindNames = [...]string{
	EndIf:        "EndIf",
	EndRepeat:    "EndRepeat",
	EndAll:       "EndAll",
	SetOffset:    "SetOffset",
	AddStored:    "AddStored",
	SetStored:    "SetStored",
	StoreInc32:   "StoreInc32",
	StoreInc16:   "StoreInc16",
	StoreInc8:    "StoreInc8",
	LoadStored32: "LoadStored32",
	LoadStored16: "LoadStored16",
	LoadStored8:  "LoadStored8",
	AddOffset:    "AddOffset",
}

func (e ExKind) String() string {
	if int(e) < len(exKindNames) {
		return exKindNames[e]
	}
	return fmt.Sprintf("ExKind(%d)", uint8(e))
}

// Valid reports whether e is a known sub-opcode.
func (e ExKind) Valid() bool {
	return e <= AddOffset
}

// IsCloser reports whether e terminates a block.
func (e ExKind) IsCloser() bool {
	return e <= EndAll
}

// Field names a numeric field of a node.
type Field uint8

const (
	FieldNone Field = iota
	FieldLoc
	FieldVal
	FieldMask
	FieldCnt
)

var fieldNames = [...]string{"none", "loc", "val", "mask", "cnt"}

func (f Field) String() string {
	return fieldNames[f]
}

// SegmentType tells how the columns of a Segment are filled.
type SegmentType uint8

const (
	SegmentOpcode SegmentType = iota
	SegmentField
	SegmentFiller
)

// Segment is a run of columns in an encoded line.
type Segment struct {
	Type   SegmentType
	Text   string // opcode digits, for SegmentOpcode
	Field  Field  // for SegmentField
	Digits int
}

// Layout lists the segments that make up the 16 hex columns of a line.
type Layout []Segment

// Columns returns the half-open column range holding f.
func (l Layout) Columns(f Field) (start, end int, ok bool) {
	col := 0
	for _, s := range l {
		if s.Type == SegmentField && s.Field == f {
			return col, col + s.Digits, true
		}
		col += s.Digits
	}
	return 0, 0, false
}

// Bits returns the declared bit width of f, or 0 when the layout lacks it.
func (l Layout) Bits(f Field) int {
	start, end, ok := l.Columns(f)
	if !ok {
		return 0
	}
	return (end - start) * 4
}

// Fields lists the fields of the layout in column order.
func (l Layout) Fields() []Field {
	var fields []Field
	for _, s := range l {
		if s.Type == SegmentField {
			fields = append(fields, s.Field)
		}
	}
	return fields
}

func opcode(digits string) Segment {
	return Segment{Type: SegmentOpcode, Text: digits, Digits: len(digits)}
}

func field(f Field, digits int) Segment {
	return Segment{Type: SegmentField, Field: f, Digits: digits}
}

func filler(digits int) Segment {
	return Segment{Type: SegmentFiller, Digits: digits}
}

var layouts = [...]Layout{
	WriteImm32:  {opcode("0"), field(FieldLoc, 7), field(FieldVal, 8)},
	WriteImm16:  {opcode("1"), field(FieldLoc, 7), filler(4), field(FieldVal, 4)},
	WriteImm8:   {opcode("2"), field(FieldLoc, 7), filler(6), field(FieldVal, 2)},
	IfLT32:      {opcode("3"), field(FieldLoc, 7), field(FieldVal, 8)},
	IfGT32:      {opcode("4"), field(FieldLoc, 7), field(FieldVal, 8)},
	IfEQ32:      {opcode("5"), field(FieldLoc, 7), field(FieldVal, 8)},
	IfNE32:      {opcode("6"), field(FieldLoc, 7), field(FieldVal, 8)},
	IfLT16:      {opcode("7"), field(FieldLoc, 7), field(FieldMask, 4), field(FieldVal, 4)},
	IfGT16:      {opcode("8"), field(FieldLoc, 7), field(FieldMask, 4), field(FieldVal, 4)},
	IfEQ16:      {opcode("9"), field(FieldLoc, 7), field(FieldMask, 4), field(FieldVal, 4)},
	IfNE16:      {opcode("A"), field(FieldLoc, 7), field(FieldMask, 4), field(FieldVal, 4)},
	LoadOffset:  {opcode("B"), field(FieldLoc, 7), filler(8)},
	Repeat:      {opcode("C"), filler(7), field(FieldCnt, 8)},
	Extended:    nil,
	WriteValues: {opcode("E"), field(FieldLoc, 7), field(FieldCnt, 8)},
	MemCopy:     {opcode("F"), field(FieldLoc, 7), field(FieldCnt, 8)},
}

var exLayouts = [...]Layout{
	EndIf:        {opcode("D0"), filler(14)},
	EndRepeat:    {opcode("D1"), filler(14)},
	EndAll:       {opcode("D2"), filler(14)},
	SetOffset:    {opcode("D3"), filler(6), field(FieldVal, 8)},
	AddStored:    {opcode("D4"), filler(6), field(FieldVal, 8)},
	SetStored:    {opcode("D5"), filler(6), field(FieldVal, 8)},
	StoreInc32:   {opcode("D6"), filler(6), field(FieldLoc, 8)},
	StoreInc16:   {opcode("D7"), filler(6), field(FieldLoc, 8)},
	StoreInc8:    {opcode("D8"), filler(6), field(FieldLoc, 8)},
	LoadStored32: {opcode("D9"), filler(6), field(FieldLoc, 8)},
	LoadStored16: {opcode("DA"), filler(6), field(FieldLoc, 8)},
	LoadStored8:  {opcode("DB"), filler(6), field(FieldLoc, 8)},
	AddOffset:    {opcode("DC"), filler(6), field(FieldVal, 8)},
}

// ValueLineBytes is the number of raw bytes carried by one value line.
const ValueLineBytes = 8

// LineDigits is the number of hex digits in an encoded line, whitespace aside.
const LineDigits = 16

// LayoutOf returns the layout of a kind, or of ex when k is Extended.
func LayoutOf(k Kind, ex ExKind) (Layout, bool) {
	if !k.Valid() {
		return nil, false
	}
	if k == Extended {
		if !ex.Valid() {
			return nil, false
		}
		return exLayouts[ex], true
	}
	return layouts[k], true
}

// FieldBits returns the declared bit width of f for the given opcode, or 0.
func FieldBits(k Kind, ex ExKind, f Field) int {
	l, ok := LayoutOf(k, ex)
	if !ok {
		return 0
	}
	return l.Bits(f)
}
