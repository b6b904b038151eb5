/*
 * rvcore - 16-bit IEEE-754 binary16 (Fp16) value type.
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package fp16 implements the RISC-V Zfh/Zvfh 16-bit floating point types:
// Fp16 (IEEE-754 binary16) and BFloat16 (truncated binary32, Zfbfmin/Zvfbfmin).
//
// Both are packed 16-bit-wide wrappers, never structs with a native half
// type, so the bit pattern held is always exactly the architectural one.
package fp16

import "math"

// RoundingMode selects the IEEE rounding attribute applied by narrowing
// conversions. Values mirror the RISC-V FRM encoding order.
type RoundingMode uint8

const (
	RoundNearestEven RoundingMode = iota
	RoundTowardZero
	RoundDown
	RoundUp
	RoundNearestMax // round to nearest, ties away from zero (RMM)
)

// Flags records the sticky exception bits raised by a conversion, using the
// same bit positions as the RISC-V FCSR.FFLAGS field (NV/DZ/OF/UF/NX).
type Flags uint8

const (
	FlagInexact   Flags = 1 << 0
	FlagUnderflow Flags = 1 << 1
	FlagOverflow  Flags = 1 << 2
	FlagDivByZero Flags = 1 << 3
	FlagInvalid   Flags = 1 << 4
)

// Fp16 is a 16-bit IEEE-754 binary16 value: 1 sign, 5 exponent, 10 significand
// bits. The zero value is +0.0.
type Fp16 uint16

const (
	fp16SignShift = 15
	fp16ExpShift  = 10
	fp16ExpBits   = 5
	fp16SigBits   = 10
	fp16ExpMask   = 0x1f
	fp16SigMask   = 0x3ff
	fp16ExpBias   = 15
)

// FromBits reinterprets a raw 16-bit pattern as an Fp16 (no conversion).
func FromBits(bits uint16) Fp16 { return Fp16(bits) }

// Bits returns the raw 16-bit pattern (no conversion).
func (h Fp16) Bits() uint16 { return uint16(h) }

// SignBit returns 0 or 1.
func (h Fp16) SignBit() uint32 { return uint32(h>>fp16SignShift) & 1 }

// ExpBits returns the raw 5-bit biased exponent field.
func (h Fp16) ExpBits() uint32 { return uint32(h>>fp16ExpShift) & fp16ExpMask }

// SigBits returns the raw 10-bit significand field.
func (h Fp16) SigBits() uint32 { return uint32(h) & fp16SigMask }

// IsZero reports whether h is +0 or -0.
func (h Fp16) IsZero() bool { return h.ExpBits() == 0 && h.SigBits() == 0 }

// IsSubnormal reports whether h is a non-zero subnormal.
func (h Fp16) IsSubnormal() bool { return h.ExpBits() == 0 && h.SigBits() != 0 }

// IsInf reports whether h is +Inf or -Inf.
func (h Fp16) IsInf() bool { return h.ExpBits() == fp16ExpMask && h.SigBits() == 0 }

// IsNaN reports whether h encodes any NaN, signaling or quiet.
func (h Fp16) IsNaN() bool { return h.ExpBits() == fp16ExpMask && h.SigBits() != 0 }

// IsSNaN reports whether h encodes a signaling NaN: all-ones exponent, the
// most-significant significand bit (the "is-quiet" bit) clear, and a
// non-zero significand.
func (h Fp16) IsSNaN() bool {
	return h.ExpBits() == fp16ExpMask && h.SigBits() != 0 && (h.SigBits()&0x200) == 0
}

// IsQNaN reports whether h encodes a quiet NaN.
func (h Fp16) IsQNaN() bool {
	return h.ExpBits() == fp16ExpMask && (h.SigBits()&0x200) != 0
}

// Negate flips the sign bit, leaving the magnitude untouched.
func (h Fp16) Negate() Fp16 { return h ^ (1 << fp16SignShift) }

// CopySign returns a value with the magnitude of h and the sign of sign.
func (h Fp16) CopySign(sign Fp16) Fp16 {
	return (h &^ (1 << fp16SignShift)) | (sign & (1 << fp16SignShift))
}

// QuietNaN returns the canonical RISC-V quiet NaN: sign 0, exponent all
// ones, significand with only the top bit set.
func QuietNaN() Fp16 { return Fp16(0x7e00) }

// ToQuiet returns h with its is-quiet bit forced set; used when an SNaN
// operand must be quieted before being propagated as a result.
func (h Fp16) ToQuiet() Fp16 { return h | 0x0200 }

// ToFloat32 widens h to float32. Every binary16 value, including subnormals,
// is exactly representable in binary32, so this conversion never rounds; the
// bit pattern of a NaN, signaling or quiet, is preserved as-is.
func (h Fp16) ToFloat32() float32 {
	bits, _ := widen(uint32(h.SignBit()), h.ExpBits(), h.SigBits(), fp16ExpBias, fp16SigBits)
	return math.Float32frombits(bits)
}

// ToFloat32Checked widens h to float32 the way an FCVT instruction does:
// a signaling NaN is quieted and raises the invalid flag.
func (h Fp16) ToFloat32Checked() (float32, Flags) {
	bits, isNaN := widen(uint32(h.SignBit()), h.ExpBits(), h.SigBits(), fp16ExpBias, fp16SigBits)
	if isNaN && h.IsSNaN() {
		bits |= 1 << 22
		return math.Float32frombits(bits), FlagInvalid
	}
	return math.Float32frombits(bits), 0
}

// Float32ToFp16 narrows f to Fp16 under rounding mode rm, returning the
// result and any exception flags raised (invalid for an SNaN operand,
// overflow/underflow/inexact per IEEE 754 §7).
func Float32ToFp16(f float32, rm RoundingMode) (Fp16, Flags) {
	sign, exp, sig, flags := narrowRM(math.Float32bits(f), fp16ExpBias, fp16SigBits, rm)
	return Fp16(sign)<<fp16SignShift | Fp16(exp)<<fp16ExpShift | Fp16(sig), flags
}
