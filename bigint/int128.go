// Copyright 2024-2025 The COWEL Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package bigint

import (
	"math/big"
	"math/bits"
)

// Int128 is a signed 128-bit integer in two's complement representation.
// It is the inline fast path of BigInt.
type Int128 struct {
	Hi int64
	Lo uint64
}

// MinInt128 and MaxInt128 bound the Int128 range.
var (
	MinInt128 = Int128{Hi: -1 << 63, Lo: 0}
	MaxInt128 = Int128{Hi: 1<<63 - 1, Lo: ^uint64(0)}
)

// Int128From64 sign-extends a 64-bit integer.
func Int128From64(x int64) Int128 {
	hi := int64(0)
	if x < 0 {
		hi = -1
	}
	return Int128{Hi: hi, Lo: uint64(x)}
}

// IsZero reports whether x is zero.
func (x Int128) IsZero() bool {
	return x.Hi == 0 && x.Lo == 0
}

// Sign returns -1, 0, or 1.
func (x Int128) Sign() int {
	switch {
	case x.Hi < 0:
		return -1
	case x.Hi == 0 && x.Lo == 0:
		return 0
	default:
		return 1
	}
}

// Cmp compares x and y, returning -1, 0, or 1.
func (x Int128) Cmp(y Int128) int {
	if x.Hi != y.Hi {
		if x.Hi < y.Hi {
			return -1
		}
		return 1
	}
	if x.Lo != y.Lo {
		if x.Lo < y.Lo {
			return -1
		}
		return 1
	}
	return 0
}

// Fits64 reports whether x is representable as int64.
func (x Int128) Fits64() bool {
	return x.Hi == 0 && x.Lo <= 1<<63-1 || x.Hi == -1 && x.Lo >= 1<<63
}

// Int64 truncates x to 64 bits.
func (x Int128) Int64() int64 {
	return int64(x.Lo)
}

// AddChecked returns x+y and whether the sum is representable.
func (x Int128) AddChecked(y Int128) (Int128, bool) {
	lo, carry := bits.Add64(x.Lo, y.Lo, 0)
	hiu, _ := bits.Add64(uint64(x.Hi), uint64(y.Hi), carry)
	hi := int64(hiu)
	// Signed overflow occurred iff both operands have the same sign and the
	// result sign differs.
	overflow := (x.Hi^hi)&(y.Hi^hi) < 0
	return Int128{Hi: hi, Lo: lo}, !overflow
}

// SubChecked returns x-y and whether the difference is representable.
func (x Int128) SubChecked(y Int128) (Int128, bool) {
	lo, borrow := bits.Sub64(x.Lo, y.Lo, 0)
	hiu, _ := bits.Sub64(uint64(x.Hi), uint64(y.Hi), borrow)
	hi := int64(hiu)
	overflow := (x.Hi^y.Hi)&(x.Hi^hi) < 0
	return Int128{Hi: hi, Lo: lo}, !overflow
}

// NegChecked returns -x and whether the negation is representable.
// Negating MinInt128 is the only failure.
func (x Int128) NegChecked() (Int128, bool) {
	return Int128{}.SubChecked(x)
}

// MulChecked returns x*y and whether the product is representable.
func (x Int128) MulChecked(y Int128) (Int128, bool) {
	negative := false
	xa, ok := x.abs()
	if !ok {
		// |MinInt128| overflows only when y is neither 0 nor 1.
		if y.IsZero() {
			return Int128{}, true
		}
		if y.Hi == 0 && y.Lo == 1 {
			return x, true
		}
		return Int128{}, false
	}
	if x.Sign() < 0 {
		negative = !negative
	}
	ya, ok := y.abs()
	if !ok {
		if x.IsZero() {
			return Int128{}, true
		}
		if x.Hi == 0 && x.Lo == 1 {
			return y, true
		}
		return Int128{}, false
	}
	if y.Sign() < 0 {
		negative = !negative
	}

	// Unsigned 128x128 -> 256 product; any bit above 127 overflows.
	xhi, xlo := uint64(xa.Hi), xa.Lo
	yhi, ylo := uint64(ya.Hi), ya.Lo
	if xhi != 0 && yhi != 0 {
		return Int128{}, false
	}
	hi1, lo := bits.Mul64(xlo, ylo)
	hi2, mid1 := bits.Mul64(xhi, ylo)
	hi3, mid2 := bits.Mul64(xlo, yhi)
	if hi2 != 0 || hi3 != 0 {
		return Int128{}, false
	}
	hi, carry := bits.Add64(hi1, mid1, 0)
	if carry != 0 {
		return Int128{}, false
	}
	hi, carry = bits.Add64(hi, mid2, 0)
	if carry != 0 {
		return Int128{}, false
	}
	if negative {
		// Representable iff the magnitude is at most 2^127.
		if hi > 1<<63 || (hi == 1<<63 && lo != 0) {
			return Int128{}, false
		}
		lo2, borrow := bits.Sub64(0, lo, 0)
		hi2, _ := bits.Sub64(0, hi, borrow)
		return Int128{Hi: int64(hi2), Lo: lo2}, true
	}
	if hi >= 1<<63 {
		return Int128{}, false
	}
	return Int128{Hi: int64(hi), Lo: lo}, true
}

func (x Int128) abs() (Int128, bool) {
	if x.Sign() < 0 {
		return x.NegChecked()
	}
	return x, true
}

// Not returns the bitwise complement of x.
func (x Int128) Not() Int128 {
	return Int128{Hi: ^x.Hi, Lo: ^x.Lo}
}

// And returns x & y.
func (x Int128) And(y Int128) Int128 {
	return Int128{Hi: x.Hi & y.Hi, Lo: x.Lo & y.Lo}
}

// Or returns x | y.
func (x Int128) Or(y Int128) Int128 {
	return Int128{Hi: x.Hi | y.Hi, Lo: x.Lo | y.Lo}
}

// Xor returns x ^ y.
func (x Int128) Xor(y Int128) Int128 {
	return Int128{Hi: x.Hi ^ y.Hi, Lo: x.Lo ^ y.Lo}
}

// ShlChecked returns x << s and whether the result is representable.
// s must be in [0, 128).
func (x Int128) ShlChecked(s uint) (Int128, bool) {
	if s == 0 {
		return x, true
	}
	var r Int128
	if s >= 64 {
		r = Int128{Hi: int64(x.Lo << (s - 64)), Lo: 0}
	} else {
		r = Int128{Hi: x.Hi<<s | int64(x.Lo>>(64-s)), Lo: x.Lo << s}
	}
	// Verify by shifting back.
	if r.Shr(s) != x {
		return Int128{}, false
	}
	return r, true
}

// Shr returns x >> s (arithmetic). s must be in [0, 128); shifting by 127 or
// more yields 0 or -1 depending on the sign.
func (x Int128) Shr(s uint) Int128 {
	if s == 0 {
		return x
	}
	if s >= 128 {
		s = 127
	}
	if s >= 64 {
		return Int128{Hi: x.Hi >> 63, Lo: uint64(x.Hi >> (s - 64))}
	}
	return Int128{Hi: x.Hi >> s, Lo: x.Lo>>s | uint64(x.Hi)<<(64-s)}
}

// TwosWidth returns the number of bits needed to represent x in two's
// complement, including the sign bit. TwosWidth(0) is 1.
func (x Int128) TwosWidth() int {
	if x.Sign() < 0 {
		// For negative x, the width is bitlen(-x-1) + 1.
		m := x.Not() // -x-1
		return m.bitLen() + 1
	}
	return x.bitLen() + 1
}

// OnesWidth returns the number of bits needed to represent x in
// sign-magnitude, including the sign bit. OnesWidth(0) is 1.
func (x Int128) OnesWidth() int {
	if x.IsZero() {
		return 1
	}
	a, ok := x.abs()
	if !ok {
		// |MinInt128| = 2^127.
		return 129
	}
	return a.bitLen() + 1
}

func (x Int128) bitLen() int {
	if x.Hi != 0 {
		return 64 + bits.Len64(uint64(x.Hi))
	}
	return bits.Len64(x.Lo)
}

// Big returns x as a new big.Int.
func (x Int128) Big() *big.Int {
	b := new(big.Int)
	if x.Sign() >= 0 {
		b.SetUint64(uint64(x.Hi))
		b.Lsh(b, 64)
		return b.Or(b, new(big.Int).SetUint64(x.Lo))
	}
	n, _ := x.NegChecked()
	if x == MinInt128 {
		b.SetInt64(1)
		return b.Neg(b.Lsh(b, 127))
	}
	return b.Neg(n.Big())
}

// Int128FromBig converts b, reporting whether it is representable.
func Int128FromBig(b *big.Int) (Int128, bool) {
	if b.BitLen() > 128 {
		return Int128{}, false
	}
	neg := b.Sign() < 0
	abs := new(big.Int).Abs(b)
	if abs.BitLen() > 127 {
		// Only -2^127 itself fits.
		if neg && abs.BitLen() == 128 && abs.TrailingZeroBits() == 127 {
			return MinInt128, true
		}
		return Int128{}, false
	}
	lo := new(big.Int).And(abs, maxUint64Big).Uint64()
	hi := new(big.Int).Rsh(abs, 64).Uint64()
	r := Int128{Hi: int64(hi), Lo: lo}
	if neg {
		r, _ = r.NegChecked()
	}
	return r, true
}

var maxUint64Big = new(big.Int).SetUint64(^uint64(0))
