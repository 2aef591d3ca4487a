package fixed

import (
	"fmt"
	"math"
	"math/big"

	"golang.org/x/xerrors"
)

// ErrRange is returned when a value cannot be represented in a format.
var ErrRange = xerrors.New("value out of range for fixed-point format")

// Value is an exact fixed-point number. The zero Value is not usable; obtain
// values through FromFloat, FromRaw or One.
//
// Arithmetic wraps around on overflow instead of saturating. Operations that
// combine two values require both to share the same format and panic
// otherwise; Mul takes the target format explicitly.
type Value struct {
	raw int64
	f   Format
}

// FromFloat converts x to the nearest value in format f, rounding half away
// from zero. It returns ErrRange if x is not finite or its integer part does
// not fit into f.
func FromFloat(x float64, f Format) (Value, error) {
	if err := f.Validate(); err != nil {
		return Value{}, err
	}
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return Value{}, xerrors.Errorf("convert %v to %s: %w", x, f, ErrRange)
	}

	scaled := math.Ldexp(x, int(f.FracBits))
	rounded := math.Round(scaled)
	lo, hi := f.rawBounds()
	if rounded == hi && scaled < hi {
		// Rounding pushed an in-range fraction past the top of the format.
		rounded = math.Nextafter(hi, lo)
		rounded = math.Floor(rounded)
	}
	if rounded < lo || rounded >= hi {
		return Value{}, xerrors.Errorf("convert %v to %s: %w", x, f, ErrRange)
	}

	return Value{raw: int64(rounded), f: f}, nil
}

// MustFromFloat is like FromFloat but panics on error. It is intended for
// constants that are known to fit.
func MustFromFloat(x float64, f Format) Value {
	v, err := FromFloat(x, f)
	if err != nil {
		panic(err)
	}
	return v
}

// FromRaw returns the value whose raw encoding is raw, wrapped to f.
func FromRaw(raw int64, f Format) Value {
	return Value{raw: f.wrap(raw), f: f}
}

// One returns 1.0 in format f. Formats without integer bits wrap it.
func One(f Format) Value {
	return FromRaw(int64(1)<<f.FracBits, f)
}

// Zero returns 0 in format f.
func Zero(f Format) Value {
	return Value{f: f}
}

// Format returns the value's format.
func (v Value) Format() Format { return v.f }

// Raw returns the raw integer encoding, sign-extended for signed formats.
func (v Value) Raw() int64 { return v.raw }

// Bits returns the raw encoding as it would appear in a TotalBits-wide
// register.
func (v Value) Bits() uint64 {
	if v.f.TotalBits >= 64 {
		return uint64(v.raw)
	}
	return uint64(v.raw) & (uint64(1)<<v.f.TotalBits - 1)
}

// Float returns the value as a float64. The conversion is exact whenever the
// raw value needs no more than 53 significant bits.
func (v Value) Float() float64 {
	return math.Ldexp(float64(v.raw), -int(v.f.FracBits))
}

// String implements fmt.Stringer.
func (v Value) String() string {
	return fmt.Sprintf("%g(%s)", v.Float(), v.f)
}

// IsNegative reports whether v is below zero.
func (v Value) IsNegative() bool { return v.raw < 0 }

// Add returns v+o.
func (v Value) Add(o Value) Value {
	v.f.mustMatch("add", o.f)
	return FromRaw(v.raw+o.raw, v.f)
}

// Sub returns v-o.
func (v Value) Sub(o Value) Value {
	v.f.mustMatch("subtract", o.f)
	return FromRaw(v.raw-o.raw, v.f)
}

// Abs returns |v|.
func (v Value) Abs() Value {
	if v.raw < 0 {
		return FromRaw(-v.raw, v.f)
	}
	return v
}

// Compare returns -1, 0 or +1 depending on whether v is less than, equal to
// or greater than o.
func (v Value) Compare(o Value) int {
	v.f.mustMatch("compare", o.f)
	switch {
	case v.raw < o.raw:
		return -1
	case v.raw > o.raw:
		return 1
	default:
		return 0
	}
}

// Mul returns v*o in the target format. The exact product is shifted to the
// target's fraction width (flooring any discarded bits) and then wrapped.
func (v Value) Mul(o Value, target Format) Value {
	p := new(big.Int).Mul(big.NewInt(v.raw), big.NewInt(o.raw))
	shift := int(v.f.FracBits) + int(o.f.FracBits) - int(target.FracBits)
	if shift > 0 {
		p.Rsh(p, uint(shift))
	} else if shift < 0 {
		p.Lsh(p, uint(-shift))
	}

	// big.Int bitwise operations use two's complement semantics so masking
	// keeps exactly the low bits of negative products too.
	mask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 64), big.NewInt(1))
	low := new(big.Int).And(p, mask).Uint64()
	return FromRaw(int64(low), target)
}

// DivInt returns v/n, truncating toward zero like the hardware's integer
// division. It panics if n is zero.
func (v Value) DivInt(n int64) Value {
	if n == 0 {
		panic("fixed: division by zero")
	}
	return FromRaw(v.raw/n, v.f)
}

// Convert re-encodes v in the target format. Dropped fraction bits are
// floored and integer overflow wraps.
func (v Value) Convert(target Format) Value {
	shift := int(target.FracBits) - int(v.f.FracBits)
	raw := v.raw
	switch {
	case shift > 0:
		raw <<= uint(shift)
	case shift < 0:
		raw >>= uint(-shift)
	}
	return FromRaw(raw, target)
}

// TruncateLowBits zeroes exactly the n least significant bits of the raw
// encoding. This models the hardware's lossy payload compression; it never
// rounds. It panics if n exceeds the number of fraction bits.
func (v Value) TruncateLowBits(n uint) Value {
	if n > uint(v.f.FracBits) {
		panic(fmt.Sprintf("fixed: cannot truncate %d bits of a %s value", n, v.f))
	}
	if n == 0 {
		return v
	}
	return FromRaw(v.raw&^(int64(1)<<n-1), v.f)
}

// RightShiftThenLeftShift drops the n low bits by shifting them out and back
// in. For two's complement values this matches TruncateLowBits.
func (v Value) RightShiftThenLeftShift(n uint) Value {
	if n > uint(v.f.FracBits) {
		panic(fmt.Sprintf("fixed: cannot shift out %d bits of a %s value", n, v.f))
	}
	if n == 0 {
		return v
	}
	return FromRaw((v.raw>>n)<<n, v.f)
}
