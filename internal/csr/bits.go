/*
 * rvcore - Named bit positions used by the propagator and topi resolver.
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

package csr

const (
	bitSSIP = 1
	bitSTIP = 5
	bitSEIP = 9

	bitVSSIP = 2
	bitVSTIP = 6
	bitVSEIP = 10

	bitSGEIP = 12

	lcofBit = 13

	hieMask = 0x1444 // low-13-bit mirror mask used by HIP<->MIP mirroring

	shadowSieMask = (1 << bitSSIP) | (1 << bitSTIP) | (1 << bitSEIP)

	hvictlVTI    = 1 << 30
	hvictlDPR    = 1 << 9
	hvictlIPRIOM = 1 << 8
	hvictlIIDMask = 0xfff
	hvictlIIDShift = 16
	hvictlIPRIOMask = 0xff

	henvcfgSTCE = 1 << 63
	menvcfgSTCE = 1 << 63

	midelegForceOnes = (1 << bitVSSIP) | (1 << bitVSTIP) | (1 << bitVSEIP) | (1 << bitSGEIP)
)

// sInterruptToVs shifts S-level interrupt bits (SSIP=1, STIP=5, SEIP=9) up
// by one to the corresponding VS bits.
func sInterruptToVs(v uint64) uint64 {
	var out uint64
	for _, b := range []int{bitSSIP, bitSTIP, bitSEIP} {
		if v&(1<<uint(b)) != 0 {
			out |= 1 << uint(b+1)
		}
	}
	return out
}

// vsInterruptToS is the inverse of sInterruptToVs.
func vsInterruptToS(v uint64) uint64 {
	var out uint64
	for _, b := range []int{bitVSSIP, bitVSTIP, bitVSEIP} {
		if v&(1<<uint(b)) != 0 {
			out |= 1 << uint(b-1)
		}
	}
	return out
}
