package pseudo_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/arconv/core"
	"github.com/sarchlab/arconv/number"
	"github.com/sarchlab/arconv/pseudo"
)

// build feeds lines to the parser the way the converter does.
func build(lines ...string) (*core.Program, error) {
	prog := core.NewProgram()
	cursor := core.NewCursor(prog)
	parser := pseudo.NewParser()
	state := core.LineState{}

	for i, line := range lines {
		step, err := parser.TranscodeLine(line, core.Context{
			Line:      i + 1,
			Enclosing: cursor.Enclosing(),
			State:     state,
		})
		if err != nil {
			return nil, err
		}
		if _, err := cursor.Apply(step.Node, step.Move); err != nil {
			return nil, core.AtLine(i+1, err)
		}
		state = step.State
	}
	return prog, nil
}

func parseOne(line string) (*core.Node, core.Move, error) {
	step, err := pseudo.NewParser().TranscodeLine(line, core.Context{Line: 1})
	return step.Node, step.Move, err
}

var _ = Describe("Parser", func() {
	It("should parse an immediate write", func() {
		n, move, err := parseOne("[32: offset + 0x4] = 0x12345678")
		Expect(err).NotTo(HaveOccurred())
		Expect(move).To(Equal(core.MoveSibling))
		Expect(n.Kind).To(Equal(core.WriteImm32))
		Expect(n.Loc.String()).To(Equal("0000004"))
		Expect(n.Val.String()).To(Equal("12345678"))
	})

	It("should accept ofs, odd case and a bare offset", func() {
		n, _, err := parseOne("  [ 8:OFS] = 255 ")
		Expect(err).NotTo(HaveOccurred())
		Expect(n.Kind).To(Equal(core.WriteImm8))
		Expect(n.Loc.IsZero()).To(BeTrue())
		Expect(n.Val.String()).To(Equal("FF"))
	})

	It("should enforce field widths", func() {
		_, _, err := parseOne("[16: offset + 0x4] = 0x12345")
		Expect(errors.Is(err, number.ErrTooLarge)).To(BeTrue())
		Expect(core.LineOf(err)).To(Equal(1))

		_, _, err = parseOne("[32: offset + 0x12345678] = 0x1")
		Expect(errors.Is(err, number.ErrTooLarge)).To(BeTrue())
	})

	It("should keep pseudo-values verbatim", func() {
		n, _, err := parseOne("[32: offset + 0x4] = 0x????abcd")
		Expect(err).NotTo(HaveOccurred())
		Expect(n.Val.String()).To(Equal("????ABCD"))
		Expect(n.Val.IsPseudo()).To(BeTrue())
	})

	It("should reject a write through an absolute pointer", func() {
		_, _, err := parseOne("[32: 0x2000000] = 0x1")
		Expect(errors.Is(err, core.ErrSyntax)).To(BeTrue())
	})

	Context("conditionals", func() {
		It("should open a block", func() {
			n, move, err := parseOne("If [32: 0x2000000] == 0x1")
			Expect(err).NotTo(HaveOccurred())
			Expect(move).To(Equal(core.MoveChild))
			Expect(n.Kind).To(Equal(core.IfEQ32))
			Expect(n.RelativeToOffset).To(BeFalse())
		})

		It("should invert a literal mask", func() {
			n, _, err := parseOne("If [16: 0x2000000] & 0x00FF == 0x12")
			Expect(err).NotTo(HaveOccurred())
			Expect(n.Kind).To(Equal(core.IfEQ16))
			Expect(n.Mask.String()).To(Equal("FF00"))
			Expect(n.Val.String()).To(Equal("0012"))
		})

		It("should store a ~ mask as written", func() {
			n, _, err := parseOne("If [16: 0x2000000] & ~0xFF00 != 0x12")
			Expect(err).NotTo(HaveOccurred())
			Expect(n.Kind).To(Equal(core.IfNE16))
			Expect(n.Mask.String()).To(Equal("FF00"))
		})

		It("should compare every bit without a mask", func() {
			n, _, err := parseOne("If [16: 0x2000000] < 0x12")
			Expect(err).NotTo(HaveOccurred())
			Expect(n.Kind).To(Equal(core.IfLT16))
			Expect(n.Mask.String()).To(Equal("0000"))
		})

		It("should refuse to invert a pseudo mask", func() {
			_, _, err := parseOne("If [16: 0x2000000] & 0x??FF == 0x12")
			Expect(errors.Is(err, core.ErrNonInvertibleMask)).To(BeTrue())

			n, _, err := parseOne("If [16: 0x2000000] & ~0x??FF == 0x12")
			Expect(err).NotTo(HaveOccurred())
			Expect(n.Mask.String()).To(Equal("??FF"))
		})

		It("should swap operands and flip the comparison", func() {
			n, _, err := parseOne("If 0x10 < [32: 0x2000000]")
			Expect(err).NotTo(HaveOccurred())
			Expect(n.Kind).To(Equal(core.IfGT32))
			Expect(n.Val.String()).To(Equal("00000010"))
			Expect(n.Loc.String()).To(Equal("2000000"))

			n, _, err = parseOne("If 0x10 == [32: 0x2000000]")
			Expect(err).NotTo(HaveOccurred())
			Expect(n.Kind).To(Equal(core.IfEQ32))
		})

		It("should read a zero pointer as the offset register", func() {
			n, _, err := parseOne("If [32: offset] > 0x5")
			Expect(err).NotTo(HaveOccurred())
			Expect(n.Kind).To(Equal(core.IfGT32))
			Expect(n.RelativeToOffset).To(BeTrue())
		})

		It("should need a pointer operand", func() {
			_, _, err := parseOne("If 0x1 == 0x2")
			Expect(errors.Is(err, core.ErrSyntax)).To(BeTrue())
		})
	})

	It("should parse an offset load", func() {
		n, _, err := parseOne("offset = [32: offset + 0x10]")
		Expect(err).NotTo(HaveOccurred())
		Expect(n.Kind).To(Equal(core.LoadOffset))
		Expect(n.Loc.String()).To(Equal("0000010"))
	})

	It("should open a repeat block", func() {
		n, move, err := parseOne("Rept 0x10")
		Expect(err).NotTo(HaveOccurred())
		Expect(move).To(Equal(core.MoveChild))
		Expect(n.Cnt.String()).To(Equal("00000010"))
	})

	It("should not open a zero-length repeat", func() {
		n, move, err := parseOne("rept 0x0")
		Expect(err).NotTo(HaveOccurred())
		Expect(n.Kind).To(Equal(core.Repeat))
		Expect(move).To(Equal(core.MoveSibling))
	})

	It("should parse a value block", func() {
		n, _, err := parseOne("[bytes: offset + 0x20] = 0x11, 0x22 0x33")
		Expect(err).NotTo(HaveOccurred())
		Expect(n.Kind).To(Equal(core.WriteValues))
		Expect(n.Values).To(HaveLen(3))
		Expect(n.Values[2].String()).To(Equal("33"))
		Expect(n.Cnt.String()).To(Equal("00000003"))
	})

	It("should reject bytes wider than eight bits", func() {
		_, _, err := parseOne("[bytes: offset] = 0x100")
		Expect(errors.Is(err, number.ErrTooLarge)).To(BeTrue())
	})

	It("should parse a copy", func() {
		n, _, err := parseOne("Copy 0x10 to 0x2000000")
		Expect(err).NotTo(HaveOccurred())
		Expect(n.Kind).To(Equal(core.MemCopy))
		Expect(n.Cnt.String()).To(Equal("00000010"))
		Expect(n.Loc.String()).To(Equal("2000000"))
	})

	DescribeTable("extended forms",
		func(line string, ex core.ExKind, field core.Field, digits string) {
			n, move, err := parseOne(line)
			Expect(err).NotTo(HaveOccurred())
			Expect(move).To(Equal(core.MoveSibling))
			Expect(n.Is(ex)).To(BeTrue(), "got %s", n.Name())
			l, ok := n.Field(field)
			Expect(ok).To(BeTrue())
			Expect(l.String()).To(Equal(digits))
		},
		Entry("set offset", "offset = 0x2000000", core.SetOffset, core.FieldVal, "02000000"),
		Entry("add offset", "ofs += 0x10", core.AddOffset, core.FieldVal, "00000010"),
		Entry("set stored", "stored = 0x5", core.SetStored, core.FieldVal, "00000005"),
		Entry("add stored", "stored += 0x5", core.AddStored, core.FieldVal, "00000005"),
		Entry("store 32", "[32+: ofs + 0x4] = stored", core.StoreInc32, core.FieldLoc, "00000004"),
		Entry("store 8", "[8+: offset] = stored", core.StoreInc8, core.FieldLoc, "00000000"),
		Entry("load 16", "stored = [16: offset + 0x8]", core.LoadStored16, core.FieldLoc, "00000008"),
	)

	It("should report unknown statements with their line", func() {
		_, err := build("[32: offset] = 0x1", "jump 0x10")
		Expect(errors.Is(err, core.ErrSyntax)).To(BeTrue())
		Expect(core.LineOf(err)).To(Equal(2))
	})

	Context("block closers", func() {
		It("should close nested blocks", func() {
			prog, err := build(
				"If [32: 0x2000000] == 0x1",
				"Rept 0x2",
				"stored += 0x1",
				"EndRept",
				"EndIf",
				"EndAll",
			)
			Expect(err).NotTo(HaveOccurred())
			Expect(prog.Root().Children).To(HaveLen(2))
			Expect(prog.Last().Is(core.EndAll)).To(BeTrue())
		})

		It("should reject EndIf outside a conditional", func() {
			_, err := build("EndIf")
			Expect(errors.Is(err, core.ErrUnmatchedBlockCloser)).To(BeTrue())
			Expect(core.LineOf(err)).To(Equal(1))
		})

		It("should reject EndIf closing a repeat", func() {
			_, err := build("Rept 0x2", "EndIf")
			Expect(errors.Is(err, core.ErrUnmatchedBlockCloser)).To(BeTrue())
			Expect(core.LineOf(err)).To(Equal(2))
		})

		It("should reject EndRept closing a conditional", func() {
			_, err := build("If [32: offset] == 0x1", "EndRept")
			Expect(errors.Is(err, core.ErrUnmatchedBlockCloser)).To(BeTrue())
		})

		It("should close everything with EndAll", func() {
			prog, err := build("If [32: offset] == 0x1", "Rept 0x3", "EndAll")
			Expect(err).NotTo(HaveOccurred())
			Expect(prog.Root().Children).To(HaveLen(1))
		})
	})
})
