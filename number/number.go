// Package number parses and formats the fixed-width numeric fields of cheat
// code lines.
//
// A field is kept as upper-case hex digits padded to the declared width, not as
// an integer, because hex input is taken verbatim: authors may write
// pseudo-values such as 0x????XXXX that are meaningful to the cheat device
// tooling but are not numbers.
package number

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// ErrMalformed is returned when a text matches none of the literal forms.
	ErrMalformed = errors.New("malformed number")
	// ErrTooLarge is returned when a value has more significant hex digits
	// than its width allows.
	ErrTooLarge = errors.New("number too large")
	// ErrPseudo is returned when an arithmetic operation is requested on a
	// pseudo-value.
	ErrPseudo = errors.New("pseudo-value is not a number")
)

var literalPattern = regexp.MustCompile(`(?i)^(?:0x[!-~]+|0b[01]+|0|[1-9][0-9]*)$`)

// Literal is a numeric field of a declared bit width.
type Literal struct {
	digits string
	bits   int
}

// Parse parses a decimal, 0b-prefixed binary or 0x-prefixed hex literal into a
// field of the given bit width.
func Parse(text string, bits int) (Literal, error) {
	text = strings.TrimSpace(text)
	if !literalPattern.MatchString(text) {
		return Literal{}, fmt.Errorf(
			"cannot parse %q as a number (hexadecimal pseudo-numbers are accepted): %w",
			text, ErrMalformed)
	}

	var hex string
	switch prefix := strings.ToLower(text[:min(2, len(text))]); prefix {
	case "0x":
		hex = text[2:]
	case "0b":
		v, err := strconv.ParseUint(text[2:], 2, 64)
		if err != nil {
			return Literal{}, tooLarge(text, bits)
		}
		hex = strconv.FormatUint(v, 16)
	default:
		v, err := strconv.ParseUint(text, 10, 64)
		if err != nil {
			return Literal{}, tooLarge(text, bits)
		}
		hex = strconv.FormatUint(v, 16)
	}

	trimmed := strings.TrimLeft(strings.ToUpper(hex), "0")
	if len(trimmed) > bits/4 {
		return Literal{}, tooLarge(text, bits)
	}

	return Literal{digits: pad(trimmed, bits/4), bits: bits}, nil
}

// MustParse is like Parse but panics on error. It is meant for tables and tests.
func MustParse(text string, bits int) Literal {
	l, err := Parse(text, bits)
	if err != nil {
		panic(err)
	}
	return l
}

// FromDigits wraps hex digits sliced out of an encoded line.
func FromDigits(digits string, bits int) Literal {
	return Literal{digits: strings.ToUpper(digits), bits: bits}
}

// FromUint builds a literal from an integer. A value wider than bits is kept
// as is and is reported by Format.
func FromUint(v uint64, bits int) Literal {
	return Literal{digits: fmt.Sprintf("%0*X", bits/4, v), bits: bits}
}

// Format renders l with exactly digits hex digits.
func Format(l Literal, digits int) (string, error) {
	trimmed := strings.TrimLeft(l.digits, "0")
	if len(trimmed) > digits {
		return "", fmt.Errorf("%s does not fit in %d hex digits: %w",
			l.digits, digits, ErrTooLarge)
	}
	return pad(trimmed, digits), nil
}

// Valid reports whether l holds a value at all.
func (l Literal) Valid() bool {
	return l.bits > 0
}

// Bits returns the declared width.
func (l Literal) Bits() int {
	return l.bits
}

// String returns the canonical zero-padded upper-case digits.
func (l Literal) String() string {
	return l.digits
}

// IsPseudo reports whether the digits contain anything other than hex digits.
func (l Literal) IsPseudo() bool {
	for _, r := range l.digits {
		if !isHexDigit(r) {
			return true
		}
	}
	return false
}

// IsZero reports whether l is a literal zero.
func (l Literal) IsZero() bool {
	return l.Valid() && strings.TrimLeft(l.digits, "0") == ""
}

// Uint returns the integer value. It fails for pseudo-values.
func (l Literal) Uint() (uint64, error) {
	if l.IsPseudo() {
		return 0, fmt.Errorf("%s: %w", l.digits, ErrPseudo)
	}
	if l.digits == "" {
		return 0, nil
	}
	return strconv.ParseUint(l.digits, 16, 64)
}

// Invert returns the bitwise complement of l within its width.
func (l Literal) Invert() (Literal, error) {
	v, err := l.Uint()
	if err != nil {
		return Literal{}, err
	}
	mask := uint64(1)<<uint(l.bits) - 1
	return FromUint(^v&mask, l.bits), nil
}

// Equal reports whether two literals hold the same digits at the same width.
func (l Literal) Equal(o Literal) bool {
	return l.bits == o.bits && l.digits == o.digits
}

func tooLarge(text string, bits int) error {
	return fmt.Errorf("%s is too large for %d bits: %w", text, bits, ErrTooLarge)
}

func pad(digits string, width int) string {
	if len(digits) >= width {
		return digits
	}
	return strings.Repeat("0", width-len(digits)) + digits
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'A' && r <= 'F') || (r >= 'a' && r <= 'f')
}
