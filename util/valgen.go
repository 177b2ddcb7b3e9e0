// Some helpers using closures to generate random cheat code programs
package valgen

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// MakeUintGen returns a generator of random values that fit in bits.
func MakeUintGen(r *rand.Rand, bits int) func() uint64 {
	return func() uint64 {
		if bits >= 64 {
			return r.Uint64()
		}
		return r.Uint64N(uint64(1) << uint(bits))
	}
}

// MakeHexGen is like MakeUintGen but yields 0x-prefixed literals.
func MakeHexGen(r *rand.Rand, bits int) func() string {
	gen := MakeUintGen(r, bits)
	return func() string {
		return fmt.Sprintf("0x%X", gen())
	}
}

// MakeProgramGen returns a generator of random, well-formed pseudocode
// programs of at most n statements, blocks nested at most three deep. Every
// program ends with EndAll.
func MakeProgramGen(seed uint64, n int) func() string {
	r := rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15))
	loc28 := MakeHexGen(r, 28)
	loc32 := MakeHexGen(r, 32)
	val32 := MakeHexGen(r, 32)
	val16 := MakeHexGen(r, 16)
	val8 := MakeHexGen(r, 8)
	width := func() string { return [...]string{"32", "16", "8"}[r.IntN(3)] }

	simple := []func() string{
		func() string { return fmt.Sprintf("[32: offset + %s] = %s", loc28(), val32()) },
		func() string { return fmt.Sprintf("[16: offset + %s] = %s", loc28(), val16()) },
		func() string { return fmt.Sprintf("[8: offset + %s] = %s", loc28(), val8()) },
		func() string { return fmt.Sprintf("offset = [32: offset + %s]", loc28()) },
		func() string { return fmt.Sprintf("offset = %s", val32()) },
		func() string { return fmt.Sprintf("offset += %s", val32()) },
		func() string { return fmt.Sprintf("stored = %s", val32()) },
		func() string { return fmt.Sprintf("stored += %s", val32()) },
		func() string { return fmt.Sprintf("[%s+: offset + %s] = stored", width(), loc32()) },
		func() string { return fmt.Sprintf("stored = [%s: offset + %s]", width(), loc32()) },
		func() string { return fmt.Sprintf("Copy %s to %s", val32(), loc28()) },
		func() string {
			bytes := make([]string, 1+r.IntN(20))
			for i := range bytes {
				bytes[i] = val8()
			}
			return fmt.Sprintf("[bytes: offset + %s] = %s", loc28(), strings.Join(bytes, " "))
		},
	}
	cmps := [...]string{"<", ">", "==", "!="}

	return func() string {
		var lines, open []string

		for i := 0; i < n; i++ {
			switch k := r.IntN(10); {
			case k == 0 && len(open) < 3:
				lines = append(lines, fmt.Sprintf("If [32: %s] %s %s",
					loc28(), cmps[r.IntN(4)], val32()))
				open = append(open, "EndIf")
			case k == 1 && len(open) < 3:
				lines = append(lines, fmt.Sprintf("If [16: %s] & ~%s %s %s",
					loc28(), val16(), cmps[r.IntN(4)], val16()))
				open = append(open, "EndIf")
			case k == 2 && len(open) < 3:
				lines = append(lines, fmt.Sprintf("Rept 0x%X", 1+r.IntN(0xFF)))
				open = append(open, "EndRept")
			case k == 3 && len(open) > 0:
				lines = append(lines, open[len(open)-1])
				open = open[:len(open)-1]
			default:
				lines = append(lines, simple[r.IntN(len(simple))]())
			}
		}

		lines = append(lines, "EndAll")
		return strings.Join(lines, "\n")
	}
}
