/*
 * rvcore - per-CSR read/write adjusters (spec 4.1).
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

import "github.com/rcornwell/rvcore/internal/pma"

// readValue is the read side of the CSR number switch, dispatching to a
// specialised adjuster where one is named in the component design, falling
// through to a raw masked read otherwise.
func (f *File) readValue(e *entry, virt bool) uint64 {
	num := e.num

	if f.trigger != nil && num >= Tdata1 && num <= Tinfo {
		if v, ok := f.trigger.Read(num); ok {
			return v
		}
	}

	switch num {
	case Fflags:
		return f.entries[Fcsr].value & 0x1f
	case Frm:
		return (f.entries[Fcsr].value >> 5) & 0x7
	}

	if f.imsic != nil {
		switch num {
		case Mireg:
			return uint64(f.imsic.TopId(0))
		case Sireg:
			return uint64(f.imsic.TopId(0))
		case Vsireg:
			return uint64(f.imsic.TopId(f.vgein()))
		}
	}

	switch num {
	case Sip, Sie, Vsip, Mvip, Hip:
		return f.specialisedRead(num)
	}

	switch num {
	case Mtopei, Stopei, Vstopei:
		if f.imsic == nil {
			return 0
		}
		guest := 0
		if num == Vstopei {
			guest = f.vgein()
		}
		id := f.imsic.TopId(guest)
		return uint64(id)<<16 | uint64(id)
	}

	switch num {
	case Mtopi:
		return f.readTopiM()
	case Stopi:
		if virt {
			return f.readTopiVs()
		}
		return f.readTopiS()
	case Vstopi:
		return f.readTopiVs()
	}

	v := e.rawRead(f) & e.readMask

	switch num {
	case Time:
		if virt {
			delta := f.entries[Htimedelta].value
			return f.simTime + delta
		}
		return f.simTime
	case Timeh:
		if virt {
			delta := (f.simTime + f.entries[Htimedelta].value) >> 32
			return delta
		}
		return f.simTime >> 32
	}

	if num >= Pmpaddr0 && num < Pmpaddr0+64 && f.pmp != nil {
		bits := f.pmp.ImplementedBits()
		if bits < 64 {
			v &= (uint64(1) << uint(bits)) - 1
		}
		return v
	}

	switch num {
	case Sstateen0, Sstateen1, Sstateen2, Sstateen3:
		idx := int(num - Sstateen0)
		v &= f.entries[Mstateen0+Number(idx)].value
		if virt && f.caps.Hypervisor {
			v &= f.entries[Hstateen0+Number(idx)].value
		}
		return v
	case Hstateen0, Hstateen1, Hstateen2, Hstateen3:
		idx := int(num - Hstateen0)
		v &= f.entries[Mstateen0+Number(idx)].value
		return v
	case Scountovf:
		v &= f.entries[Mcounteren].value
		if virt {
			v &= f.entries[Hcounteren].value
		}
		return v
	}

	return v
}

// specialisedRead implements the SIP/SIE/VSIP/MVIP/HIP readers: these CSRs
// hold independent storage synchronised by the propagator rather than a
// simple tie, so reads return that storage directly (already kept coherent
// by propagate()).
func (f *File) specialisedRead(num Number) uint64 {
	e := f.entries[num]
	v := e.value & e.readMask
	if num == Sie {
		v |= f.shadowSie & f.entries[Mvien].value &^ f.entries[Mideleg].value
	}
	return v
}

func (f *File) vgein() int {
	hstatus := f.entries[Hstatus].value
	return int((hstatus >> 12) & 0x3f)
}

// applyWrite is the write side: legalise the incoming value per the
// component design's ordered write adjusters, then commit it.
func (f *File) applyWrite(e *entry, value uint64) {
	num := e.num

	if f.trigger != nil && num >= Tdata1 && num <= Tinfo {
		f.trigger.Write(num, value)
		return
	}

	switch num {
	case Fflags:
		fcsr := f.entries[Fcsr]
		fcsr.value = (fcsr.value &^ 0x1f) | (value & 0x1f)
		return
	case Frm:
		fcsr := f.entries[Fcsr]
		fcsr.value = (fcsr.value &^ (0x7 << 5)) | ((value & 0x7) << 5)
		return
	}

	switch num {
	case Mstatus, Sstatus, Vsstatus:
		e.rawWrite(f, legaliseStatus(e.rawRead(f), value, e.writeMask))
		return
	case Misa:
		e.rawWrite(f, legaliseMisa(value))
		return
	case Menvcfg, Henvcfg, Senvcfg:
		old := e.rawRead(f)
		if (value>>4)&0x3 == 2 && (old>>4)&0x3 != 2 {
			value = (value &^ (0x3 << 4)) | (old & (0x3 << 4))
		}
		e.rawWrite(f, value)
		return
	case Mnstatus:
		old := e.rawRead(f)
		const nmieBit = 1 << 3
		if old&nmieBit != 0 && value&nmieBit == 0 {
			value = (value &^ nmieBit) | nmieBit
		}
		e.rawWrite(f, value)
		return
	case Tselect:
		if f.trigger != nil {
			if _, ok := f.trigger.Read(Tselect); !ok {
				return
			}
		}
		e.rawWrite(f, value)
		return
	case Pmpcfg0, Pmpcfg0 + 1, Pmpcfg0 + 2, Pmpcfg0 + 3, Pmpcfg0 + 4, Pmpcfg0 + 5,
		Pmpcfg0 + 6, Pmpcfg0 + 7, Pmpcfg0 + 8, Pmpcfg0 + 9, Pmpcfg0 + 10,
		Pmpcfg0 + 11, Pmpcfg0 + 12, Pmpcfg0 + 13, Pmpcfg0 + 14, Pmpcfg0 + 15:
		e.rawWrite(f, legalisePmpcfgWord(e.rawRead(f), value))
		return
	case Pmacfg0, Pmacfg0 + 1, Pmacfg0 + 2, Pmacfg0 + 3, Pmacfg0 + 4, Pmacfg0 + 5,
		Pmacfg0 + 6, Pmacfg0 + 7, Pmacfg0 + 8, Pmacfg0 + 9, Pmacfg0 + 10,
		Pmacfg0 + 11, Pmacfg0 + 12, Pmacfg0 + 13, Pmacfg0 + 14, Pmacfg0 + 15:
		e.rawWrite(f, pma.LegalizePmacfg(e.rawRead(f), value))
		return
	case Srmcfg:
		e.rawWrite(f, value) // written as-is under the write mask; no per-field width check
		return
	case Mvip:
		f.writeMvip(value)
		return
	case Sip:
		f.writeSip(value)
		return
	case Sie:
		f.writeSie(value)
		return
	case Vsip:
		f.writeVsip(value)
		return
	}

	if num >= Pmpaddr0 && num < Pmpaddr0+64 && f.pmp != nil {
		idx := int(num - Pmpaddr0)
		if f.pmp.ConfigByte(idx)&0x80 != 0 {
			return // locked entry
		}
		if idx+1 < 64 {
			next := f.pmp.ConfigByte(idx + 1)
			if next&0x80 != 0 && (next>>3)&0x3 == 1 {
				return // base address of a locked TOR entry
			}
		}
	}

	e.rawWrite(f, value)
}

// legaliseStatus legalises MPP/SPP/SD per the component design; MPP may
// only hold an implemented privilege level (reserved values drop to the
// lowest implemented mode), SD mirrors FS/VS/XS "dirty" status.
func legaliseStatus(old, next, wmask uint64) uint64 {
	merged := (old &^ wmask) | (next & wmask)

	const mppShift = 11
	const mppMask = 0x3
	mpp := (merged >> mppShift) & mppMask
	if mpp == 0x2 { // reserved encoding
		merged &^= mppMask << mppShift
	}

	const fsShift = 13
	const vsShift = 9
	const xsShift = 15
	fs := (merged >> fsShift) & 0x3
	vs := (merged >> vsShift) & 0x3
	xs := (merged >> xsShift) & 0x3
	const sdBit = uint64(1) << 63
	if fs == 0x3 || vs == 0x3 || xs == 0x3 {
		merged |= sdBit
	} else {
		merged &^= sdBit
	}

	return merged
}

// legaliseMisa enforces E<=>~I, D=>F, V=>D=>F, S=>U.
func legaliseMisa(v uint64) uint64 {
	const (
		bitA = 1 << 0
		bitD = 1 << 3
		bitE = 1 << 4
		bitF = 1 << 5
		bitI = 1 << 8
		bitS = 1 << 18
		bitU = 1 << 20
		bitV = 1 << 21
	)
	_ = bitA
	if v&bitE != 0 {
		v &^= bitI
	}
	if v&bitI != 0 {
		v &^= bitE
	}
	if v&bitD != 0 {
		v |= bitF
	}
	if v&bitV != 0 {
		v |= bitD | bitF
	}
	if v&bitS != 0 {
		v |= bitU
	}
	return v
}

// legalisePmpcfgWord legalises one packed PMPCFG word: reserved bits 5/6 of
// each byte are forced to zero; bit 7 (lock) sticks once set; a locked
// byte is left unchanged.
func legalisePmpcfgWord(old, next uint64) uint64 {
	var result uint64
	for i := 0; i < 8; i++ {
		shift := uint(i * 8)
		oldByte := byte(old >> shift)
		newByte := byte(next >> shift)

		if oldByte&0x80 != 0 { // locked: immutable
			result |= uint64(oldByte) << shift
			continue
		}

		newByte &^= 0x60 // reserved bits 5,6
		if oldByte&0x80 != 0 {
			newByte |= 0x80
		}
		result |= uint64(newByte) << shift
	}
	return result
}
