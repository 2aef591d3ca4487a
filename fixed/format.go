package fixed

import (
	"fmt"
	"math"

	"golang.org/x/xerrors"
)

var (
	// S1615 is the signed 16.15 format that the hardware uses for ranks
	// and rank accumulators.
	S1615 = Format{TotalBits: 32, FracBits: 15, Signed: true}

	// U032 is the unsigned pure-fraction format of message payloads.
	U032 = Format{TotalBits: 32, FracBits: 32}

	// S3132 is a wide signed format for host-side computations that should
	// not lose precision to the rank format.
	S3132 = Format{TotalBits: 64, FracBits: 32, Signed: true}

	// U32 is a plain unsigned 32-bit integer.
	U32 = Format{TotalBits: 32}
)

// Format describes the bit layout of a fixed-point number.
type Format struct {
	// The total number of bits, including the sign bit for signed formats.
	TotalBits uint8

	// The number of bits after the binary point.
	FracBits uint8

	// Signed formats use two's complement encoding.
	Signed bool
}

// Validate returns an error if the format cannot be represented by a Value.
func (f Format) Validate() error {
	switch {
	case f.TotalBits == 0:
		return xerrors.Errorf("format %s: total bits must be positive", f)
	case f.Signed && f.TotalBits > 64:
		return xerrors.Errorf("format %s: signed formats support at most 64 bits", f)
	case !f.Signed && f.TotalBits > 63:
		return xerrors.Errorf("format %s: unsigned formats support at most 63 bits", f)
	case f.FracBits > f.TotalBits:
		return xerrors.Errorf("format %s: fraction bits exceed total bits", f)
	}
	return nil
}

// IntBits returns the number of integer bits, excluding the sign bit.
func (f Format) IntBits() int {
	n := int(f.TotalBits) - int(f.FracBits)
	if f.Signed {
		n--
	}
	return n
}

// String returns the format in S<int>.<frac> or U<int>.<frac> notation.
func (f Format) String() string {
	prefix := "U"
	if f.Signed {
		prefix = "S"
	}
	return fmt.Sprintf("%s%d.%d", prefix, f.IntBits(), f.FracBits)
}

// Resolution returns the value of one unit in the last place.
func (f Format) Resolution() float64 {
	return math.Ldexp(1, -int(f.FracBits))
}

// wrap truncates raw to the format's bit width, discarding any overflow the
// way the hardware does.
func (f Format) wrap(raw int64) int64 {
	if f.TotalBits >= 64 {
		return raw
	}

	mask := uint64(1)<<f.TotalBits - 1
	u := uint64(raw) & mask
	if f.Signed && u&(uint64(1)<<(f.TotalBits-1)) != 0 {
		return int64(u | ^mask)
	}
	return int64(u)
}

// rawBounds returns the representable raw range [lo, hi) as floats.
func (f Format) rawBounds() (lo, hi float64) {
	if f.Signed {
		half := float64(uint64(1) << (f.TotalBits - 1))
		return -half, half
	}
	return 0, float64(uint64(1) << f.TotalBits)
}

func (f Format) mustMatch(op string, o Format) {
	if f != o {
		panic(fmt.Sprintf("fixed: %s of mismatched formats %s and %s", op, f, o))
	}
}

// ParseFormat parses a format in the notation produced by String, e.g.
// "S16.15" or "U0.32".
func ParseFormat(s string) (Format, error) {
	var (
		sign      rune
		intBits   int
		fracBits  int
		signedAdj int
	)
	if _, err := fmt.Sscanf(s, "%c%d.%d", &sign, &intBits, &fracBits); err != nil {
		return Format{}, xerrors.Errorf("parse format %q: %w", s, err)
	}
	switch sign {
	case 'S', 's':
		signedAdj = 1
	case 'U', 'u':
	default:
		return Format{}, xerrors.Errorf("parse format %q: prefix must be S or U", s)
	}
	if intBits < 0 || fracBits < 0 || intBits+fracBits+signedAdj > 64 {
		return Format{}, xerrors.Errorf("parse format %q: bit widths out of range", s)
	}

	f := Format{
		TotalBits: uint8(intBits + fracBits + signedAdj),
		FracBits:  uint8(fracBits),
		Signed:    signedAdj == 1,
	}
	if err := f.Validate(); err != nil {
		return Format{}, err
	}
	return f, nil
}
