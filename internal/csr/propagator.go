/*
 * rvcore - delegation/aliasing propagator (hyperWrite/hyperPoke).
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

// propagate is hyperWrite: the single fan-out entry point write() and
// poke() call on the canonical CSR that just mutated. It walks the
// dependency table in architectural order, stopping once the mutated CSR has
// no further dependents.
func (f *File) propagate(from Number) {
	if !f.caps.Hypervisor {
		return
	}
	switch from {
	case Hideleg, Mvien:
		f.updateVsieVsipMasks()
	case Mip:
		f.mirrorMipToHip()
	case Hip:
		f.mirrorHipToMip()
	case Hvip:
		f.mirrorHvipToHip()
	case Hgeip, Hgeie, Hstatus:
		f.recomputeHip()
	case Vsip:
		f.injectVsip()
	case Hie:
		f.mirrorHieOut()
	case Mie:
		f.mirrorMieOut()
	case Vsie:
		f.mirrorVsieOut()
	}
}

// updateVsieVsipMasks is 4.3.A: recompute VSIE/VSIP's effective read/write
// masks from HIDELEG, HVIEN, and whether Sscofpmf's LCOF cause is delegated.
func (f *File) updateVsieVsipMasks() {
	hideleg := f.entries[Hideleg].value
	hvien := f.hvien()

	mask := (hideleg & 0x1fff) >> 1
	mask |= hideleg &^ uint64(0x1fff)
	mask |= hvien &^ uint64(0x1fff)

	lcofMask := uint64(1) << lcofBit
	if f.caps.Sscofpmf && hvien&lcofMask != 0 {
		mask |= lcofMask
	} else {
		mask &^= lcofMask
	}

	vsie := f.entries[Vsie]
	vsie.writeMask, vsie.readMask = mask, mask
	vsip := f.entries[Vsip]
	vsip.writeMask, vsip.readMask = mask, mask
}

// hvien reads the VS-level interrupt-enable delegation word. This core
// models a single VS guest, so HVIEN shares MVIEN's storage rather than
// getting a distinct CSR number.
func (f *File) hvien() uint64 { return f.entries[Mvien].value }

func (f *File) mirrorMipToHip() {
	hip := f.entries[Hip]
	mip := f.entries[Mip]
	const vssipBit = uint64(1) << bitVSSIP
	if mip.value&(1<<2) != 0 {
		hip.value |= vssipBit
	} else {
		hip.value &^= vssipBit
	}
}

func (f *File) mirrorHipToMip() {
	hip := f.entries[Hip]
	mip := f.entries[Mip]
	mip.value = (mip.value &^ hieMask) | (hip.value & hieMask)
}

func (f *File) mirrorHvipToHip() {
	hvip := f.entries[Hvip]
	hip := f.entries[Hip]
	const vssipBit = uint64(1) << bitVSSIP
	if hvip.value&(1<<2) != 0 {
		hip.value |= vssipBit
	} else {
		hip.value &^= vssipBit
	}
}

// recomputeHip folds in SGEIP from HGEIP & HGEIE. HSTATUS.VGEIN is not
// consulted: VSEIP is not recomputed here.
func (f *File) recomputeHip() {
	hgeip := f.entries[Hgeip].value
	hgeie := f.entries[Hgeie].value
	hip := f.entries[Hip]
	const sgeipBit = uint64(1) << bitSGEIP
	if hgeip&hgeie != 0 {
		hip.value |= sgeipBit
	} else {
		hip.value &^= sgeipBit
	}
}

// injectVsip is 4.3.B: a VSIP write fans into HIP (VSSIP, gated by HIDELEG),
// SIP (gated by HIDELEG bits 13+), and HVIP (gated by HVIEN and the
// complement of HIDELEG).
func (f *File) injectVsip() {
	hideleg := f.entries[Hideleg].value
	hvien := f.hvien()
	vsip := f.entries[Vsip]
	value := vsip.value

	hip := f.entries[Hip]
	hipMask := uint64(0x4) & hideleg
	hip.value = (hip.value &^ hipMask) | (sInterruptToVs(value) & hipMask)

	mvipMask := ^uint64(0x1fff) & hideleg & vsip.writeMask
	sip := f.entries[Sip]
	sip.value = (value & mvipMask) | (sip.value &^ mvipMask)

	hvipMask := ^uint64(0x1fff) & vsip.writeMask &^ hideleg & hvien
	hvip := f.entries[Hvip]
	hvip.value = (hvip.value &^ hvipMask) | (value & hvipMask)
}

func (f *File) mirrorHieOut() {
	hie := f.entries[Hie].value
	f.entries[Mie].value |= hie & hieMask
	f.entries[Vsie].value |= vsInterruptToS(hie) // best-effort low-13 fold
}

func (f *File) mirrorMieOut() {
	mie := f.entries[Mie].value
	f.entries[Hie].value = (f.entries[Hie].value &^ hieMask) | (mie & hieMask)
	f.entries[Vsie].value = (f.entries[Vsie].value &^ f.entries[Vsie].writeMask) |
		(vsInterruptToS(mie) & f.entries[Vsie].writeMask)
}

func (f *File) mirrorVsieOut() {
	vsie := f.entries[Vsie].value
	s := sInterruptToVs(vsie)
	f.entries[Mie].value |= s
	f.entries[Hie].value |= s
	const bit13plus = ^uint64(0x1fff)
	sie := f.entries[Sie]
	sie.value = (sie.value &^ bit13plus) | (vsie & bit13plus)
}

// writeSip is the SIP write-side adjuster (4.3.C): bits for which MIDELEG is
// clear but MVIEN is set redirect into MVIP instead of MIP; bits 5 (STIP)
// and 9 (SEIP) are always read-only in SIP.
func (f *File) writeSip(value uint64) {
	sip := f.entries[Sip]
	wmask := sip.writeMask &^ ((1 << bitSTIP) | (1 << bitSEIP))

	mideleg := f.entries[Mideleg].value
	mvien := f.entries[Mvien].value
	redirect := wmask &^ mideleg & mvien
	direct := wmask &^ redirect

	if direct != 0 {
		mip := f.entries[Mip]
		mip.value = (mip.value &^ direct) | (value & direct)
		sip.value = (sip.value &^ direct) | (value & direct)
	}
	if redirect != 0 {
		mvip := f.entries[Mvip]
		mvip.value = (mvip.value &^ redirect) | (value & redirect)
		sip.value = (sip.value &^ redirect) | (value & redirect)
	}
}

// writeSie maintains the private shadow_sie word (4.3.D): bits decoupled
// from MIE by MVIEN live only in the shadow, the rest mirror into MIE.
func (f *File) writeSie(value uint64) {
	sie := f.entries[Sie]
	mvien := f.entries[Mvien].value

	f.shadowSie = (f.shadowSie &^ sie.writeMask) | (value & sie.writeMask & mvien)

	direct := sie.writeMask &^ mvien
	sie.value = (sie.value &^ direct) | (value & direct)
	mie := f.entries[Mie]
	mie.value = (mie.value &^ direct) | (value & direct)
}

// writeVsip stores the raw VSIP bits under its current (mask-computed)
// write mask; propagate(Vsip) then runs the 4.3.B fan-out.
func (f *File) writeVsip(value uint64) {
	e := f.entries[Vsip]
	e.value = (e.value &^ e.writeMask) | (value & e.writeMask)
}

// writeMvip is 4.3.C: bits {1,5} may shadow MIP depending on MVIEN, bit 9 is
// always writeable (MIP.SEIP aliasing happens on MIP's own read path).
func (f *File) writeMvip(value uint64) {
	mvip := f.entries[Mvip]
	mvien := f.entries[Mvien].value
	mip := f.entries[Mip]

	const bit1 = uint64(1) << 1
	const bit5 = uint64(1) << bitSTIP
	const bit9 = uint64(1) << bitSEIP

	wmask := mvip.writeMask
	mvip.value = (mvip.value &^ wmask) | (value & wmask)

	if f.caps.WriteMvipAlwaysWritesBit1 || mvien&bit1 == 0 {
		if value&bit1 != 0 {
			mip.value |= bit1
		} else {
			mip.value &^= bit1
		}
	}
	if mvien&bit5 == 0 && mip.writeMask&bit5 != 0 {
		if value&bit5 != 0 {
			mip.value |= bit5
		} else {
			mip.value &^= bit5
		}
	}
	_ = bit9 // SEIP aliasing is applied when MIP itself is read, not here.
}
