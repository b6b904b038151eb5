/*
 * rvcore - BFloat16 (truncated binary32) value type.
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

package fp16

import "math"

// BFloat16 is the truncated-binary32 format: 1 sign, 8 exponent (same bias
// and width as binary32), 7 significand bits. It shares widen/narrowRM with
// Fp16, since the two formats differ only in field widths.
type BFloat16 uint16

const (
	bf16SignShift = 15
	bf16ExpShift  = 7
	bf16ExpBits   = 8
	bf16SigBits   = 7
	bf16ExpMask   = 0xff
	bf16SigMask   = 0x7f
	bf16ExpBias   = f32Bias
)

// BFloat16FromBits reinterprets a raw 16-bit pattern (no conversion).
func BFloat16FromBits(bits uint16) BFloat16 { return BFloat16(bits) }

// Bits returns the raw 16-bit pattern (no conversion).
func (h BFloat16) Bits() uint16 { return uint16(h) }

// SignBit returns 0 or 1.
func (h BFloat16) SignBit() uint32 { return uint32(h>>bf16SignShift) & 1 }

// ExpBits returns the raw 8-bit biased exponent field.
func (h BFloat16) ExpBits() uint32 { return uint32(h>>bf16ExpShift) & bf16ExpMask }

// SigBits returns the raw 7-bit significand field.
func (h BFloat16) SigBits() uint32 { return uint32(h) & bf16SigMask }

// IsZero reports whether h is +0 or -0.
func (h BFloat16) IsZero() bool { return h.ExpBits() == 0 && h.SigBits() == 0 }

// IsSubnormal reports whether h is a non-zero subnormal.
func (h BFloat16) IsSubnormal() bool { return h.ExpBits() == 0 && h.SigBits() != 0 }

// IsInf reports whether h is +Inf or -Inf.
func (h BFloat16) IsInf() bool { return h.ExpBits() == bf16ExpMask && h.SigBits() == 0 }

// IsNaN reports whether h encodes any NaN, signaling or quiet.
func (h BFloat16) IsNaN() bool { return h.ExpBits() == bf16ExpMask && h.SigBits() != 0 }

// IsSNaN reports whether h encodes a signaling NaN: all-ones exponent, the
// is-quiet bit (bit 6 of the significand) clear, non-zero significand.
func (h BFloat16) IsSNaN() bool {
	return h.ExpBits() == bf16ExpMask && h.SigBits() != 0 && (h.SigBits()&0x40) == 0
}

// IsQNaN reports whether h encodes a quiet NaN.
func (h BFloat16) IsQNaN() bool {
	return h.ExpBits() == bf16ExpMask && (h.SigBits()&0x40) != 0
}

// Negate flips the sign bit, leaving the magnitude untouched.
func (h BFloat16) Negate() BFloat16 { return h ^ (1 << bf16SignShift) }

// CopySign returns a value with the magnitude of h and the sign of sign.
func (h BFloat16) CopySign(sign BFloat16) BFloat16 {
	return (h &^ (1 << bf16SignShift)) | (sign & (1 << bf16SignShift))
}

// BFloat16QuietNaN returns the canonical quiet NaN: sign 0, exponent all ones,
// significand with only the top bit set.
func BFloat16QuietNaN() BFloat16 { return BFloat16(0x7fc0) }

// ToQuiet returns h with its is-quiet bit forced set.
func (h BFloat16) ToQuiet() BFloat16 { return h | 0x0040 }

// ToFloat32 widens h to float32. Because BFloat16 shares binary32's exponent
// range and bias, this is exactly a 16-bit left shift with no rounding; NaN
// bit patterns (signaling or quiet) are preserved as-is.
func (h BFloat16) ToFloat32() float32 {
	bits, _ := widen(uint32(h.SignBit()), h.ExpBits(), h.SigBits(), bf16ExpBias, bf16SigBits)
	return math.Float32frombits(bits)
}

// ToFloat32Checked widens h to float32 the way an FCVT instruction does:
// a signaling NaN is quieted and raises the invalid flag.
func (h BFloat16) ToFloat32Checked() (float32, Flags) {
	bits, isNaN := widen(uint32(h.SignBit()), h.ExpBits(), h.SigBits(), bf16ExpBias, bf16SigBits)
	if isNaN && h.IsSNaN() {
		bits |= 1 << 22
		return math.Float32frombits(bits), FlagInvalid
	}
	return math.Float32frombits(bits), 0
}

// Float32ToBFloat16 narrows f to BFloat16 under rounding mode rm. Since the
// exponent range matches binary32 exactly, only the 16 low mantissa bits are
// ever at stake: overflow/underflow can still occur at the extremes of the
// narrowed significand, but never solely from the exponent range shrinking.
func Float32ToBFloat16(f float32, rm RoundingMode) (BFloat16, Flags) {
	sign, exp, sig, flags := narrowRM(math.Float32bits(f), bf16ExpBias, bf16SigBits, rm)
	return BFloat16(sign)<<bf16SignShift | BFloat16(exp)<<bf16ExpShift | BFloat16(sig), flags
}
