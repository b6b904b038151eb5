/*
 * rvcore - PMACFG encoding and legalisation.
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

package pma

// Unpacked is the decoded form of one PMACFG entry.
type Unpacked struct {
	Base  uint64
	Size  uint64 // region length in bytes, 0 if disabled
	Attr  Pma
	IsIo  bool
}

// LegalizePmacfg validates a candidate PMACFG write against prev, returning
// the value that should actually be stored. Reserved encodings, RWX
// combinations other than 000/111, and inconsistent IO/cacheable attribute
// combinations all cause the previous value to be retained.
func LegalizePmacfg(prev, next uint64) uint64 {
	n := (next >> 58) & 0x3f
	if n > 0 && n < 12 {
		return prev
	}

	r := next&1 != 0
	w := next&2 != 0
	x := next&4 != 0
	if (r || w || x) && !(r && w && x) {
		return prev
	}

	memType := (next >> 3) & 3
	isIo := memType != 0
	amo := (next >> 5) & 3
	cacheable := next&(1<<7) != 0
	coherent := next&(1<<8) != 0

	if isIo {
		if amo != 0 {
			return prev
		}
		if w && !r {
			return prev
		}
		if coherent {
			return prev
		}
	} else {
		if cacheable {
			if amo != 1 { // arithmetic class required
				return prev
			}
			if !coherent {
				return prev
			}
		} else if amo != 0 {
			return prev
		}
	}

	return next
}

// UnpackPmacfg derives the region base/size/attribute triple encoded by a
// legalised PMACFG value.
func UnpackPmacfg(value uint64) Unpacked {
	n := (value >> 58) & 0x3f
	if n == 0 {
		return Unpacked{}
	}

	base := (value << 8) >> 8
	base &^= (uint64(1) << n) - 1

	var attr Attrib
	if value&1 != 0 {
		attr |= Read
	}
	if value&2 != 0 {
		attr |= Write
	}
	if value&4 != 0 {
		attr |= Exec
	}

	memType := (value >> 3) & 3
	isIo := memType != 0
	amo := (value >> 5) & 3
	cacheable := value&(1<<7) != 0
	coherent := value&(1<<8) != 0

	if isIo {
		attr |= Io
	} else {
		attr |= Idempotent
		if cacheable && coherent {
			attr |= Cacheable
			attr |= AmoSwap | AmoLogical | AmoOther
		}
		_ = amo
	}

	return Unpacked{
		Base: base,
		Size: uint64(1) << n,
		Attr: New(attr),
		IsIo: isIo,
	}
}
