/*
 * rvcore - shared narrow/widen conversion core for the 16-bit FP types.
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

// Fp16 and BFloat16 differ only in exponent width / bias and significand
// width; widen/narrow implement the shared conversion-to/from-binary32 core
// once, parameterized on (bias, sigBits), instead of duplicating a rounder
// per type.

const (
	f32SigBits = 23
	f32Bias    = 127
)

// widen promotes a narrow (sign, exp, sig) triple with the given bias and
// significand width to binary32 bits. Every narrow value (including
// subnormals) is exactly representable in binary32, so no rounding occurs.
func widen(sign, exp, sig uint32, bias, sigBits int) (bits uint32, isNaN bool) {
	maxExp := uint32(2*bias + 1)
	shift := uint(f32SigBits - sigBits)

	switch {
	case exp == 0 && sig == 0:
		return sign << 31, false
	case exp == 0:
		if bias == f32Bias {
			// Same exponent range as binary32: the subnormal stays subnormal.
			return (sign << 31) | (sig << shift), false
		}
		// Subnormal: normalize into binary32's wider exponent range.
		e := -bias + 1
		for sig&(1<<uint(sigBits)) == 0 {
			sig <<= 1
			e--
		}
		sig &= (1 << uint(sigBits)) - 1
		biased := uint32(int32(f32Bias) + int32(e))
		return (sign << 31) | (biased << f32SigBits) | (sig << shift), false
	case exp == maxExp:
		if sig == 0 {
			return (sign << 31) | (0xff << f32SigBits), false
		}
		return (sign << 31) | (0xff << f32SigBits) | (sig << shift), true
	default:
		biased := exp - uint32(bias) + f32Bias
		return (sign << 31) | (biased << f32SigBits) | (sig << shift), false
	}
}

// narrowRM rounds binary32 bits down to a (sign, exp, sig) triple of the
// given bias and significand width under rm, returning exception flags.
func narrowRM(bits32 uint32, bias, sigBits int, rm RoundingMode) (sign, exp, sig uint32, flags Flags) {
	sign = (bits32 >> 31) & 1
	rawExp := (bits32 >> f32SigBits) & 0xff
	rawSig := bits32 & ((1 << f32SigBits) - 1)

	maxExp := uint32(2*bias + 1)

	if rawExp == 0xff {
		if rawSig == 0 {
			return sign, maxExp, 0, 0
		}
		isSignaling := rawSig&(1<<(f32SigBits-1)) == 0
		outSig := rawSig >> uint(f32SigBits-sigBits)
		outSig |= 1 << uint(sigBits-1) // force quiet bit so the NaN never degrades to infinity
		if isSignaling {
			return sign, maxExp, outSig, FlagInvalid
		}
		return sign, maxExp, outSig, 0
	}

	if rawExp == 0 && rawSig == 0 {
		return sign, 0, 0, 0
	}

	// Reconstruct true (unbiased) exponent and 24-bit significand with
	// implicit leading bit (binary32 subnormals have none).
	var e int32
	var full uint32
	if rawExp == 0 {
		e = 1 - f32Bias
		full = rawSig
	} else {
		e = int32(rawExp) - f32Bias
		full = rawSig | (1 << f32SigBits)
	}

	targetExp := e + int32(bias)
	shift := uint(f32SigBits - sigBits)

	// A binary32 subnormal has no implicit bit; with binary32's bias it maps
	// to a target subnormal (targetExp 1, no extra shift).
	if targetExp <= 0 || (rawExp == 0 && targetExp == 1) {
		shift += uint(1 - targetExp)
		targetExp = 0
	} else if targetExp >= int32(maxExp) {
		return roundToOverflow(sign, maxExp, sigBits, rm)
	}

	mant, inexact := shiftRound(full, shift, rm, sign != 0)
	if inexact {
		flags |= FlagInexact
		if targetExp == 0 {
			flags |= FlagUnderflow
		}
	}

	// A carry past the implicit-bit position means rounding produced exactly
	// the next power of two: bump the exponent and restart as 1.000...
	carryBit := uint32(1) << uint(sigBits+1)
	if mant&carryBit != 0 {
		targetExp++
		mant = 1 << uint(sigBits)
	}

	// mant's bit `sigBits` is the implicit leading one. For a normal result
	// it is always set and dropped before storage; for what started as a
	// subnormal target, seeing it set means rounding carried into the
	// smallest normal value.
	implicitBit := uint32(1) << uint(sigBits)
	if mant&implicitBit != 0 {
		if targetExp == 0 {
			targetExp = 1
		}
		mant &^= implicitBit
	}

	if targetExp >= int32(maxExp) {
		s2, e2, sg2, f2 := roundToOverflow(sign, maxExp, sigBits, rm)
		return s2, e2, sg2, f2 | flags
	}

	return sign, uint32(targetExp), mant, flags
}

// shiftRound right-shifts full by shift bits using round/sticky bits and the
// requested rounding mode, returning the rounded mantissa (which may carry
// one bit past the target width) and whether the result was inexact.
func shiftRound(full uint32, shift uint, rm RoundingMode, negative bool) (uint32, bool) {
	if shift == 0 {
		return full, false
	}
	if shift >= 32 {
		mant := uint32(0)
		inexact := full != 0
		roundUp := false
		switch rm {
		case RoundDown:
			roundUp = inexact && negative
		case RoundUp:
			roundUp = inexact && !negative
		}
		if roundUp {
			mant = 1
		}
		return mant, inexact
	}

	mant := full >> shift
	rem := full & ((uint32(1) << shift) - 1)
	half := uint32(1) << (shift - 1)
	guard := rem&half != 0
	sticky := rem&(half-1) != 0
	inexact := guard || sticky

	roundUp := false
	switch rm {
	case RoundNearestEven:
		roundUp = guard && (sticky || mant&1 != 0)
	case RoundTowardZero:
		roundUp = false
	case RoundDown:
		roundUp = inexact && negative
	case RoundUp:
		roundUp = inexact && !negative
	case RoundNearestMax:
		roundUp = guard
	}
	if roundUp {
		mant++
	}
	return mant, inexact
}

func roundToOverflow(sign, maxExp uint32, sigBits int, rm RoundingMode) (uint32, uint32, uint32, Flags) {
	roundToInf := true
	switch rm {
	case RoundTowardZero:
		roundToInf = false
	case RoundDown:
		roundToInf = sign != 0
	case RoundUp:
		roundToInf = sign == 0
	}
	if roundToInf {
		return sign, maxExp, 0, FlagOverflow | FlagInexact
	}
	return sign, maxExp - 1, (1 << uint(sigBits)) - 1, FlagOverflow | FlagInexact
}
