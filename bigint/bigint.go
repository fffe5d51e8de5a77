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

// Package bigint implements the arbitrary-precision integers of the COWEL
// value sublanguage.
//
// A BigInt is cheap to copy. Values representable as signed 128-bit integers
// are stored inline without allocation; larger values share an immutable
// *big.Int payload. Every operation normalizes its result, so a value is
// stored inline whenever it fits.
//
// The zero value of BigInt is zero.
package bigint

import (
	"errors"
	"math"
	"math/big"
	"strings"
)

// DivRounding selects the rounding mode of Div, Rem, and DivRem.
type DivRounding uint8

const (
	// ToZero truncates the quotient towards zero.
	ToZero DivRounding = iota
	// ToNegInf rounds the quotient towards negative infinity (floor).
	ToNegInf
	// ToPosInf rounds the quotient towards positive infinity (ceiling).
	ToPosInf
)

// ErrSyntax is returned by FromString for malformed digit strings.
var ErrSyntax = errors.New("bigint: invalid digit string")

// ErrBase is returned by FromString and ToString for bases outside [2, 36].
var ErrBase = errors.New("bigint: base out of range")

// BigInt is an arbitrary-precision signed integer.
//
// The host field, when non-nil, holds the value and is treated as immutable;
// copies of a BigInt share it. When host is nil, the value is the inline
// Int128.
type BigInt struct {
	small Int128
	host  *big.Int
}

// FromInt64 returns x as a BigInt.
func FromInt64(x int64) BigInt {
	return BigInt{small: Int128From64(x)}
}

// FromInt128 returns x as a BigInt.
func FromInt128(x Int128) BigInt {
	return BigInt{small: x}
}

// FromBig returns a BigInt holding the value of b. The result does not alias
// b unless the value exceeds the inline range, in which case b must not be
// mutated afterwards.
func FromBig(b *big.Int) BigInt {
	return normalizeBig(b)
}

// Pow2 returns 2^n. n must be non-negative.
func Pow2(n uint) BigInt {
	if n < 127 {
		r, _ := Int128{Lo: 1}.ShlChecked(n)
		return BigInt{small: r}
	}
	b := big.NewInt(1)
	return BigInt{host: b.Lsh(b, n)}
}

// FromString parses a digit string with an optional leading sign in the
// given base, which must be in [2, 36]. Letter digits are accepted in either
// case.
func FromString(s string, base int) (BigInt, error) {
	if base < 2 || base > 36 {
		return BigInt{}, ErrBase
	}
	if s == "" {
		return BigInt{}, ErrSyntax
	}
	b, ok := new(big.Int).SetString(s, base)
	if !ok {
		return BigInt{}, ErrSyntax
	}
	return normalizeBig(b), nil
}

func normalizeBig(b *big.Int) BigInt {
	if small, ok := Int128FromBig(b); ok {
		return BigInt{small: small}
	}
	return BigInt{host: b}
}

// IsSmall reports whether the value is stored inline.
func (x BigInt) IsSmall() bool {
	return x.host == nil
}

// Small returns the inline value. Valid only when IsSmall reports true.
func (x BigInt) Small() Int128 {
	return x.small
}

// Big returns the value as a big.Int. The result must not be mutated.
func (x BigInt) Big() *big.Int {
	if x.host != nil {
		return x.host
	}
	return x.small.Big()
}

// Int64 returns the value as int64 and whether it is representable.
func (x BigInt) Int64() (int64, bool) {
	if x.host != nil {
		return 0, false
	}
	if !x.small.Fits64() {
		return 0, false
	}
	return x.small.Int64(), true
}

// IsZero reports whether x is zero.
func (x BigInt) IsZero() bool {
	return x.host == nil && x.small.IsZero()
}

// Sign returns -1, 0, or 1.
func (x BigInt) Sign() int {
	if x.host != nil {
		return x.host.Sign()
	}
	return x.small.Sign()
}

// Cmp compares x and y, returning -1, 0, or 1.
func (x BigInt) Cmp(y BigInt) int {
	if x.host == nil && y.host == nil {
		return x.small.Cmp(y.small)
	}
	return x.Big().Cmp(y.Big())
}

// Eq reports whether x and y hold the same value.
func (x BigInt) Eq(y BigInt) bool {
	return x.Cmp(y) == 0
}

// Add returns x + y.
func (x BigInt) Add(y BigInt) BigInt {
	if x.host == nil && y.host == nil {
		if r, ok := x.small.AddChecked(y.small); ok {
			return BigInt{small: r}
		}
	}
	return normalizeBig(new(big.Int).Add(x.Big(), y.Big()))
}

// Sub returns x - y.
func (x BigInt) Sub(y BigInt) BigInt {
	if x.host == nil && y.host == nil {
		if r, ok := x.small.SubChecked(y.small); ok {
			return BigInt{small: r}
		}
	}
	return normalizeBig(new(big.Int).Sub(x.Big(), y.Big()))
}

// Mul returns x * y.
func (x BigInt) Mul(y BigInt) BigInt {
	if x.host == nil && y.host == nil {
		if r, ok := x.small.MulChecked(y.small); ok {
			return BigInt{small: r}
		}
	}
	return normalizeBig(new(big.Int).Mul(x.Big(), y.Big()))
}

// Neg returns -x.
func (x BigInt) Neg() BigInt {
	if x.host == nil {
		if r, ok := x.small.NegChecked(); ok {
			return BigInt{small: r}
		}
	}
	return normalizeBig(new(big.Int).Neg(x.Big()))
}

// Abs returns the absolute value of x.
func (x BigInt) Abs() BigInt {
	if x.Sign() < 0 {
		return x.Neg()
	}
	return x
}

// Not returns the bitwise complement ^x, i.e. -x-1.
func (x BigInt) Not() BigInt {
	if x.host == nil {
		return BigInt{small: x.small.Not()}
	}
	return normalizeBig(new(big.Int).Not(x.host))
}

// Inc returns x + 1.
func (x BigInt) Inc() BigInt {
	return x.Add(FromInt64(1))
}

// Dec returns x - 1.
func (x BigInt) Dec() BigInt {
	return x.Sub(FromInt64(1))
}

// And returns x & y in two's complement semantics.
func (x BigInt) And(y BigInt) BigInt {
	if x.host == nil && y.host == nil {
		return BigInt{small: x.small.And(y.small)}
	}
	return normalizeBig(new(big.Int).And(x.Big(), y.Big()))
}

// Or returns x | y in two's complement semantics.
func (x BigInt) Or(y BigInt) BigInt {
	if x.host == nil && y.host == nil {
		return BigInt{small: x.small.Or(y.small)}
	}
	return normalizeBig(new(big.Int).Or(x.Big(), y.Big()))
}

// Xor returns x ^ y in two's complement semantics.
func (x BigInt) Xor(y BigInt) BigInt {
	if x.host == nil && y.host == nil {
		return BigInt{small: x.small.Xor(y.small)}
	}
	return normalizeBig(new(big.Int).Xor(x.Big(), y.Big()))
}

// Shl returns x * 2^s rounded towards negative infinity. A negative shift
// amount reflects into a right shift.
func (x BigInt) Shl(s int) BigInt {
	if s < 0 {
		return x.Shr(-s)
	}
	if x.host == nil && s < 128 {
		if r, ok := x.small.ShlChecked(uint(s)); ok {
			return BigInt{small: r}
		}
	}
	return normalizeBig(new(big.Int).Lsh(x.Big(), uint(s)))
}

// Shr returns x / 2^s rounded towards negative infinity. A negative shift
// amount reflects into a left shift.
func (x BigInt) Shr(s int) BigInt {
	if s < 0 {
		return x.Shl(-s)
	}
	if x.host == nil {
		return BigInt{small: x.small.Shr(uint(s))}
	}
	return normalizeBig(new(big.Int).Rsh(x.host, uint(s)))
}

// DivRem returns the quotient and remainder of x / y under the given
// rounding mode, satisfying q*y + r == x. Division by zero is a precondition
// violation and panics; callers must check.
func (x BigInt) DivRem(y BigInt, rounding DivRounding) (BigInt, BigInt) {
	if y.IsZero() {
		panic("bigint: division by zero")
	}
	if x.host == nil && y.host == nil && x.small.Fits64() && y.small.Fits64() {
		a, b := x.small.Int64(), y.small.Int64()
		// MinInt64 / -1 overflows int64; let the host path promote it.
		if a != math.MinInt64 || b != -1 {
			q, r := a/b, a%b
			if r != 0 {
				switch rounding {
				case ToZero:
				case ToNegInf:
					if (r < 0) != (b < 0) {
						q--
						r += b
					}
				case ToPosInf:
					if (r < 0) == (b < 0) {
						q++
						r -= b
					}
				}
			}
			return FromInt64(q), FromInt64(r)
		}
	}
	xb, yb := x.Big(), y.Big()
	q, r := new(big.Int).QuoRem(xb, yb, new(big.Int))
	if r.Sign() != 0 {
		switch rounding {
		case ToZero:
		case ToNegInf:
			if (r.Sign() < 0) != (yb.Sign() < 0) {
				q.Sub(q, oneBig)
				r.Add(r, yb)
			}
		case ToPosInf:
			if (r.Sign() < 0) == (yb.Sign() < 0) {
				q.Add(q, oneBig)
				r.Sub(r, yb)
			}
		}
	}
	return normalizeBig(q), normalizeBig(r)
}

// Div returns the quotient of x / y under the given rounding mode.
func (x BigInt) Div(y BigInt, rounding DivRounding) BigInt {
	q, _ := x.DivRem(y, rounding)
	return q
}

// Rem returns the remainder of x / y under the given rounding mode.
func (x BigInt) Rem(y BigInt, rounding DivRounding) BigInt {
	_, r := x.DivRem(y, rounding)
	return r
}

// Pow returns x raised to the power of y; y must be non-negative.
// Pow(0, 0) is defined as 0, acting as a sentinel for "undefined" that
// callers detect.
func (x BigInt) Pow(y int) BigInt {
	if y < 0 {
		panic("bigint: negative exponent")
	}
	if x.IsZero() {
		return BigInt{}
	}
	r := new(big.Int).Exp(x.Big(), big.NewInt(int64(y)), nil)
	return normalizeBig(r)
}

// Signum returns the sign of x as a BigInt.
func (x BigInt) Signum() BigInt {
	return FromInt64(int64(x.Sign()))
}

// TwosWidth returns the number of bits needed to represent x in two's
// complement, including the sign bit. TwosWidth(0) is 1.
func (x BigInt) TwosWidth() int {
	if x.host == nil {
		return x.small.TwosWidth()
	}
	if x.host.Sign() < 0 {
		m := new(big.Int).Not(x.host) // -x-1
		return m.BitLen() + 1
	}
	return x.host.BitLen() + 1
}

// OnesWidth returns the number of bits needed to represent x in
// sign-magnitude, including the sign bit. OnesWidth(0) is 1.
func (x BigInt) OnesWidth() int {
	if x.host == nil {
		return x.small.OnesWidth()
	}
	return new(big.Int).Abs(x.host).BitLen() + 1
}

// ToString formats x in the given base, which must be in [2, 36].
// Letter digits are lowercase unless upper is set.
func (x BigInt) ToString(base int, upper bool) (string, error) {
	if base < 2 || base > 36 {
		return "", ErrBase
	}
	s := x.Big().Text(base)
	if upper {
		s = strings.ToUpper(s)
	}
	return s, nil
}

// String formats x in base 10.
func (x BigInt) String() string {
	return x.Big().String()
}

var oneBig = big.NewInt(1)
