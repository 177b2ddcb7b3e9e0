package core

import (
	"fmt"

	"github.com/sarchlab/arconv/number"
)

// NodeID addresses a node inside a Program.
type NodeID int

const (
	// RootID is the container at the top of every program.
	RootID NodeID = 0
	// NoNode is returned when a move does not attach anything.
	NoNode NodeID = -1
)

// Node is a single program element.
type Node struct {
	Kind Kind
	Ex   ExKind // only meaningful when Kind is Extended

	Loc  number.Literal
	Val  number.Literal
	Mask number.Literal // stored inverted, as in the encoded line
	Cnt  number.Literal

	// Values holds the raw bytes of a WriteValues node in memory order.
	Values []number.Literal

	// RelativeToOffset marks a conditional whose loc is zero, which the
	// device reads as "at the offset register".
	RelativeToOffset bool

	// Line is the source line that produced the node.
	Line int

	Children []NodeID
	block    bool
}

// IsBlock reports whether the node opened a block, even an empty one.
func (n *Node) IsBlock() bool {
	return n.block
}

// Is reports whether n is the extended operation ex.
func (n *Node) Is(ex ExKind) bool {
	return n.Kind == Extended && n.Ex == ex
}

// Layout returns the encoded layout of the node.
func (n *Node) Layout() (Layout, bool) {
	return LayoutOf(n.Kind, n.Ex)
}

// Field returns the value of f and whether the node holds it.
func (n *Node) Field(f Field) (number.Literal, bool) {
	var l number.Literal
	switch f {
	case FieldLoc:
		l = n.Loc
	case FieldVal:
		l = n.Val
	case FieldMask:
		l = n.Mask
	case FieldCnt:
		l = n.Cnt
	}
	return l, l.Valid()
}

// SetField stores l into f.
func (n *Node) SetField(f Field, l number.Literal) {
	switch f {
	case FieldLoc:
		n.Loc = l
	case FieldVal:
		n.Val = l
	case FieldMask:
		n.Mask = l
	case FieldCnt:
		n.Cnt = l
	default:
		panic(fmt.Sprintf("cannot set field %s", f))
	}
}

// Bits returns the declared width of f for this node's opcode.
func (n *Node) Bits(f Field) int {
	return FieldBits(n.Kind, n.Ex, f)
}

// Name returns a short name of the operation.
func (n *Node) Name() string {
	if n.Kind == Extended {
		return n.Ex.String()
	}
	return n.Kind.String()
}

func (n *Node) String() string {
	return fmt.Sprintf("%s@%d", n.Name(), n.Line)
}

// Program is a code tree. Nodes live in an arena and refer to their children
// by index.
type Program struct {
	nodes []Node
}

// NewProgram returns a program holding only the root.
func NewProgram() *Program {
	return &Program{
		nodes: []Node{{Kind: KindRoot, Children: []NodeID{}, block: true}},
	}
}

// Root returns the root container.
func (p *Program) Root() *Node {
	return &p.nodes[RootID]
}

// Node returns the node with the given id.
func (p *Program) Node(id NodeID) *Node {
	return &p.nodes[id]
}

// Len returns the number of nodes, root excluded.
func (p *Program) Len() int {
	return len(p.nodes) - 1
}

// Walk visits every node below the root in pre-order. depth is 0 for the
// children of the root.
func (p *Program) Walk(fn func(id NodeID, n *Node, depth int) error) error {
	return p.walk(RootID, 0, fn)
}

func (p *Program) walk(
	parent NodeID,
	depth int,
	fn func(id NodeID, n *Node, depth int) error,
) error {
	for _, id := range p.nodes[parent].Children {
		if err := fn(id, &p.nodes[id], depth); err != nil {
			return err
		}
		if p.nodes[id].block {
			if err := p.walk(id, depth+1, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

// Last returns the final statement of the program in pre-order, or nil for an
// empty program.
func (p *Program) Last() *Node {
	cur := RootID
	for {
		children := p.nodes[cur].Children
		if len(children) == 0 {
			if cur == RootID {
				return nil
			}
			return &p.nodes[cur]
		}
		cur = children[len(children)-1]
	}
}

func (p *Program) add(parent NodeID, n Node) NodeID {
	id := NodeID(len(p.nodes))
	p.nodes = append(p.nodes, n)
	p.nodes[parent].Children = append(p.nodes[parent].Children, id)
	return id
}

// Move tells the cursor where to attach a node and where to go next.
type Move uint8

const (
	// MoveNone leaves the tree untouched.
	MoveNone Move = iota
	// MoveSibling attaches the node under the current parent.
	MoveSibling
	// MoveChild attaches the node and makes it the new parent.
	MoveChild
	// MoveParent attaches the node and closes the innermost block.
	MoveParent
	// MoveRoot attaches the node and closes every open block.
	MoveRoot
)

var moveNames = [...]string{"none", "sibling", "child", "parent", "root"}

func (m Move) String() string {
	return moveNames[m]
}

// Cursor tracks where the next node goes while a tree is being built.
type Cursor struct {
	prog *Program
	open []NodeID
}

// NewCursor returns a cursor positioned at the root of p.
func NewCursor(p *Program) *Cursor {
	return &Cursor{prog: p}
}

// Parent returns the node that receives the next sibling.
func (c *Cursor) Parent() NodeID {
	if len(c.open) == 0 {
		return RootID
	}
	return c.open[len(c.open)-1]
}

// Enclosing returns the innermost open block, or nil at the root.
func (c *Cursor) Enclosing() *Node {
	if len(c.open) == 0 {
		return nil
	}
	return c.prog.Node(c.Parent())
}

// Depth returns the number of open blocks.
func (c *Cursor) Depth() int {
	return len(c.open)
}

// Apply attaches n according to m and moves the cursor.
func (c *Cursor) Apply(n *Node, m Move) (NodeID, error) {
	switch m {
	case MoveNone:
		return NoNode, nil
	case MoveSibling:
		return c.prog.add(c.Parent(), *n), nil
	case MoveChild:
		block := *n
		block.block = true
		block.Children = []NodeID{}
		id := c.prog.add(c.Parent(), block)
		c.open = append(c.open, id)
		return id, nil
	case MoveParent:
		if len(c.open) == 0 {
			return NoNode, fmt.Errorf("%s closes no block: %w",
				n.Name(), ErrUnmatchedBlockCloser)
		}
		id := c.prog.add(c.Parent(), *n)
		c.open = c.open[:len(c.open)-1]
		return id, nil
	case MoveRoot:
		id := c.prog.add(c.Parent(), *n)
		c.open = c.open[:0]
		return id, nil
	default:
		panic(fmt.Sprintf("unknown move %d", m))
	}
}

// CheckCloser validates a block terminator against the innermost open block
// and returns the move that closes it.
func CheckCloser(ex ExKind, enclosing *Node) (Move, error) {
	switch ex {
	case EndIf:
		if enclosing == nil || !enclosing.Kind.IsConditional() {
			return MoveNone, fmt.Errorf("encountered EndIf without being in If: %w",
				ErrUnmatchedBlockCloser)
		}
		return MoveParent, nil
	case EndRepeat:
		if enclosing == nil || enclosing.Kind != Repeat {
			return MoveNone, fmt.Errorf("encountered EndRept without being in Rept: %w",
				ErrUnmatchedBlockCloser)
		}
		return MoveParent, nil
	case EndAll:
		return MoveRoot, nil
	default:
		return MoveSibling, nil
	}
}

// Mode is the kind of line the state machine expects next.
type Mode uint8

const (
	StructuralLine Mode = iota
	ValueBlockLine
)

func (m Mode) String() string {
	if m == ValueBlockLine {
		return "values"
	}
	return "structural"
}

// LineState is carried from one input line to the next.
type LineState struct {
	Mode Mode
	// Pending is the WriteValues node being filled in ValueBlockLine mode.
	Pending *Node
}

// Remaining returns how many bytes the pending value block still expects.
func (s LineState) Remaining() int {
	if s.Pending == nil {
		return 0
	}
	want, err := s.Pending.Cnt.Uint()
	if err != nil {
		return 0
	}
	return int(want) - len(s.Pending.Values)
}

// Context is what a front-end sees of the driver when handed a line.
type Context struct {
	Line      int
	Enclosing *Node // nil at the root
	State     LineState
}

// Step is what a front-end yields for one line.
type Step struct {
	Node  *Node
	Move  Move
	State LineState
}

// LineTranscoder turns one input line into a tree step.
type LineTranscoder interface {
	TranscodeLine(line string, ctx Context) (Step, error)
}

// TreeTranscoder renders a whole tree into output lines.
type TreeTranscoder interface {
	TranscodeTree(p *Program) ([]string, error)
}
