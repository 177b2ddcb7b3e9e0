package encoded_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/arconv/core"
	"github.com/sarchlab/arconv/encoded"
	"github.com/sarchlab/arconv/number"
)

// decode feeds lines to the parser the way the converter does.
func decode(lines ...string) (*core.Program, core.LineState, error) {
	prog := core.NewProgram()
	cursor := core.NewCursor(prog)
	parser := encoded.NewParser()
	state := core.LineState{}

	for i, line := range lines {
		step, err := parser.TranscodeLine(line, core.Context{
			Line:      i + 1,
			Enclosing: cursor.Enclosing(),
			State:     state,
		})
		if err != nil {
			return nil, state, err
		}
		if _, err := cursor.Apply(step.Node, step.Move); err != nil {
			return nil, state, core.AtLine(i+1, err)
		}
		state = step.State
	}
	return prog, state, nil
}

func first(prog *core.Program) *core.Node {
	return prog.Node(prog.Root().Children[0])
}

var _ = Describe("Parser", func() {
	It("should slice an immediate write", func() {
		prog, _, err := decode("00000004 12345678")
		Expect(err).NotTo(HaveOccurred())
		n := first(prog)
		Expect(n.Kind).To(Equal(core.WriteImm32))
		Expect(n.Loc).To(Equal(number.FromDigits("0000004", 28)))
		Expect(n.Val).To(Equal(number.FromDigits("12345678", 32)))
	})

	It("should tolerate surrounding whitespace and lower case", func() {
		prog, _, err := decode("  2000abcd\t000000ef ")
		Expect(err).NotTo(HaveOccurred())
		n := first(prog)
		Expect(n.Kind).To(Equal(core.WriteImm8))
		Expect(n.Loc.String()).To(Equal("000ABCD"))
		Expect(n.Val.String()).To(Equal("EF"))
	})

	It("should read the mask of a 16-bit conditional", func() {
		prog, _, err := decode("92000000 FF000012", "D0000000 00000000")
		Expect(err).NotTo(HaveOccurred())
		n := first(prog)
		Expect(n.Kind).To(Equal(core.IfEQ16))
		Expect(n.Mask.String()).To(Equal("FF00"))
		Expect(n.Val.String()).To(Equal("0012"))
		Expect(n.Children).To(HaveLen(1))
	})

	It("should mark a zero pointer as relative to the offset", func() {
		prog, _, err := decode("50000000 00000001", "D2000000 00000000")
		Expect(err).NotTo(HaveOccurred())
		Expect(first(prog).RelativeToOffset).To(BeTrue())
	})

	It("should not open a zero-length repeat", func() {
		prog, _, err := decode("C0000000 00000000", "00000000 00000001")
		Expect(err).NotTo(HaveOccurred())
		Expect(prog.Root().Children).To(HaveLen(2))
		Expect(first(prog).IsBlock()).To(BeFalse())
	})

	It("should read extended operations", func() {
		prog, _, err := decode("D3000000 02000000", "DC000000 00000010", "DA000000 00000004")
		Expect(err).NotTo(HaveOccurred())
		children := prog.Root().Children
		Expect(prog.Node(children[0]).Is(core.SetOffset)).To(BeTrue())
		Expect(prog.Node(children[0]).Val.String()).To(Equal("02000000"))
		Expect(prog.Node(children[1]).Is(core.AddOffset)).To(BeTrue())
		Expect(prog.Node(children[2]).Is(core.LoadStored16)).To(BeTrue())
		Expect(prog.Node(children[2]).Loc.String()).To(Equal("00000004"))
	})

	Context("value blocks", func() {
		It("should collect bytes right to left across lines", func() {
			prog, state, err := decode(
				"E0000010 0000000A",
				"88776655 44332211",
				"00000000 0000BBAA",
			)
			Expect(err).NotTo(HaveOccurred())
			Expect(state.Mode).To(Equal(core.StructuralLine))

			n := first(prog)
			Expect(n.Kind).To(Equal(core.WriteValues))
			Expect(n.Values).To(HaveLen(10))
			Expect(n.Values[0].String()).To(Equal("11"))
			Expect(n.Values[7].String()).To(Equal("88"))
			Expect(n.Values[9].String()).To(Equal("BB"))
		})

		It("should stay in value mode until the count is reached", func() {
			prog, state, err := decode("E0000010 00000009", "88776655 44332211")
			Expect(err).NotTo(HaveOccurred())
			Expect(prog.Len()).To(Equal(0))
			Expect(state.Mode).To(Equal(core.ValueBlockLine))
			Expect(state.Remaining()).To(Equal(1))
		})

		It("should take a line starting with an opcode digit as data", func() {
			prog, _, err := decode("E0000000 00000002", "D2000000 0000C0FF")
			Expect(err).NotTo(HaveOccurred())
			Expect(prog.Len()).To(Equal(1))
			Expect(first(prog).Values).To(HaveLen(2))
		})

		It("should refuse an empty block", func() {
			_, _, err := decode("E0000000 00000000")
			Expect(errors.Is(err, core.ErrEmptyValueBlock)).To(BeTrue())
			Expect(core.LineOf(err)).To(Equal(1))
		})

		It("should refuse a pseudo count", func() {
			_, _, err := decode("E0000000 000000??")
			Expect(errors.Is(err, number.ErrPseudo)).To(BeTrue())
		})
	})

	DescribeTable("errors",
		func(line string, sentinel error) {
			_, _, err := decode("00000000 00000000", line)
			Expect(errors.Is(err, sentinel)).To(BeTrue(), "%v", err)
			Expect(core.LineOf(err)).To(Equal(2))
		},
		Entry("short word", "0000000 00000000", core.ErrMalformedLine),
		Entry("single word", "0000000000000000", core.ErrMalformedLine),
		Entry("three words", "00000000 00000000 0", core.ErrMalformedLine),
		Entry("bad opcode", "G0000000 00000000", core.ErrInvalidOpcode),
		Entry("bad extended opcode", "DD000000 00000000", core.ErrInvalidExtendedOpcode),
		Entry("stray EndIf", "D0000000 00000000", core.ErrUnmatchedBlockCloser),
		Entry("stray EndRept", "D1000000 00000000", core.ErrUnmatchedBlockCloser),
		Entry("accented digit", "1234567é 00000000", core.ErrMalformedLine),
		Entry("dotless i", "0000000ı 00000000", core.ErrMalformedLine),
		Entry("non-ASCII first word", "é0000000 00000000", core.ErrMalformedLine),
		Entry("full-width digit", "0000000０ 00000000", core.ErrMalformedLine),
	)

	It("should refuse non-ASCII data in a value block", func() {
		_, _, err := decode("E0000000 00000002", "0000000é 00000000")
		Expect(errors.Is(err, core.ErrMalformedLine)).To(BeTrue())
		Expect(core.LineOf(err)).To(Equal(2))
	})

	It("should check closers against the open block", func() {
		_, _, err := decode("C0000000 00000002", "D0000000 00000000")
		Expect(errors.Is(err, core.ErrUnmatchedBlockCloser)).To(BeTrue())
	})
})
