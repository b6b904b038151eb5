/*
 * rvcore - AIA topi (top interrupt) priority resolver.
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

// initPriorityTables installs the three per-privilege interrupt cause lists
// in descending architectural priority, per the AIA default priority order.
func (f *File) initPriorityTables() {
	f.mInterrupts = []int{11, 3, 7, 9, 1, 5, 13}
	f.sInterrupts = []int{9, 1, 5, 13}
	f.vsInterrupts = []int{9, 1, 5}
}

// highestIidPrio returns the first cause in table whose bit is set in
// pending, or 0 if none are.
func highestIidPrio(pending uint64, table []int) int {
	for _, iid := range table {
		if pending&(1<<uint(iid)) != 0 {
			return iid
		}
	}
	return 0
}

func (f *File) readTopiM() uint64 {
	pending := f.entries[Mip].value & f.entries[Mie].value &^ f.entries[Mideleg].value
	iid := highestIidPrio(pending, f.mInterrupts)
	if iid == 0 {
		return 0
	}
	return uint64(iid)<<16 | 1
}

func (f *File) readTopiS() uint64 {
	hideleg := uint64(0)
	pending := f.entries[Sip].value & f.entries[Sie].value
	if f.caps.Hypervisor {
		hideleg = f.entries[Hideleg].value
		pending |= f.entries[Hip].value & f.entries[Hie].value
	}
	pending &^= hideleg
	iid := highestIidPrio(pending, f.sInterrupts)
	if iid == 0 {
		return 0
	}
	return uint64(iid)<<16 | 1
}

// readTopiVs implements the five-case AIA 6.3.3 algorithm shared by STOPI
// in virt mode and VSTOPI.
func (f *File) readTopiVs() uint64 {
	value, _ := f.resolveVsTopi()
	hvictl := f.entries[Hvictl].value
	if hvictl&hvictlIPRIOM == 0 && value != 0 {
		value = (value &^ 0xff) | 1
	}
	return value
}

func (f *File) resolveVsTopi() (uint64, bool) {
	const seieBit = 1 << bitSEIP
	vsip := f.entries[Vsip].value
	vsie := f.entries[Vsie].value
	hvictl := f.entries[Hvictl].value
	vgein := f.vgein()

	topId := uint32(0)
	if f.imsic != nil && vgein != 0 && vgein <= f.imsic.GuestCount() {
		topId = f.imsic.TopId(vgein)
	}

	seieSet := vsip&vsie&seieBit != 0
	var bestPrio int
	var bestValue uint64

	switch {
	case seieSet && vgein != 0 && topId != 0:
		// Case A: the IMSIC's top pending id becomes VSEI's (iid 9) priority.
		prio := int(topId)
		if prio > 255 {
			prio = 255
		}
		bestPrio, bestValue = prio, uint64(9)<<16|uint64(prio)
	case (hvictl>>hvictlIIDShift)&hvictlIIDMask == 9 && hvictl&hvictlIPRIOMask != 0:
		// Case B.
		prio := int(hvictl & hvictlIPRIOMask)
		bestPrio, bestValue = prio, uint64(9)<<16|uint64(prio)
	default:
		// Case C: nothing vectored through iid 9; bestPrio stays a sentinel
		// worse than any real priority byte so Case D can still win, but the
		// reported value is 0 ("nothing pending") absent a Case D match.
		bestPrio, bestValue = 256, 0
	}

	if hvictl&hvictlVTI == 0 {
		// Case D: compare against the best non-SEIE pending VS interrupt.
		pending := vsip & vsie &^ seieBit
		if iid := highestIidPrio(pending, f.vsInterrupts); iid != 0 {
			for rank, id := range f.vsInterrupts {
				if id == iid {
					prio := rank + 1
					if prio < bestPrio {
						bestValue = uint64(iid)<<16 | uint64(prio)
					}
					break
				}
			}
		}
		return bestValue, false
	}

	// Case E: HVICTL drives the vector directly for a non-SEIE IID.
	iid := (hvictl >> hvictlIIDShift) & hvictlIIDMask
	if iid != 9 {
		prio := hvictl & hvictlIPRIOMask
		if hvictl&hvictlDPR != 0 && prio == 0 {
			prio = 256
		}
		return uint64(iid)<<16 | prio, true
	}

	return bestValue, false
}
