/*
 * rvcore - AIA topi resolver test set.
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

import "testing"

func aiaFile() *File {
	return newTestFile(Capabilities{Supervisor: true, Hypervisor: true, AIA: true})
}

func TestReadTopiMNoPendingReturnsZero(t *testing.T) {
	f := aiaFile()
	v, _ := f.Read(Mtopi, Machine, false)
	if v != 0 {
		t.Errorf("Mtopi = %#x, want 0 with nothing pending", v)
	}
}

func TestReadTopiMHighestPriorityWins(t *testing.T) {
	f := aiaFile()
	// MEIE(11) and MSIE(3) both enabled and pending; 11 is higher priority.
	f.Poke(Mie, (1<<11)|(1<<3), false)
	f.Poke(Mip, (1<<11)|(1<<3), false)
	v, _ := f.Read(Mtopi, Machine, false)
	iid := v >> 16
	if iid != 11 {
		t.Errorf("Mtopi iid = %d, want 11 (MEI outranks MSI)", iid)
	}
}

// Case B of the five-case VS topi algorithm: HVICTL names IID 9 with a
// nonzero IPRIO field, which the resolver must surface directly.
func TestReadTopiVsCaseBHvictlDrivesSeiVector(t *testing.T) {
	f := aiaFile()
	hvictl := uint64(9)<<hvictlIIDShift | 0x20 | hvictlIPRIOM
	f.Write(Hvictl, Supervisor, false, hvictl)
	v, _ := f.Read(Vstopi, Supervisor, true)
	iid := v >> 16
	prio := v & 0xff
	if iid != 9 {
		t.Errorf("Vstopi iid = %d, want 9", iid)
	}
	if prio != 0x20 {
		t.Errorf("Vstopi priority = %#x, want 0x20", prio)
	}
}

func TestReadTopiVsIpriomZeroForcesPriorityOne(t *testing.T) {
	f := aiaFile()
	hvictl := uint64(9)<<hvictlIIDShift | 0x20 // IPRIOM bit clear
	f.Write(Hvictl, Supervisor, false, hvictl)
	v, _ := f.Read(Vstopi, Supervisor, true)
	prio := v & 0xff
	if prio != 1 {
		t.Errorf("Vstopi priority = %#x, want 1 when HVICTL.IPRIOM is clear", prio)
	}
	if iid := v >> 16; iid != 9 {
		t.Errorf("Vstopi iid = %d, want 9 (IPRIOM forcing must not disturb the IID field)", iid)
	}
}

// Case E: HVICTL.VTI set with a non-9 IID drives the vector directly, with
// DPR gating the sentinel when IPRIO is zero.
func TestReadTopiVsCaseEHvictlDprSentinel(t *testing.T) {
	f := aiaFile()
	hvictl := uint64(2)<<hvictlIIDShift | hvictlVTI | hvictlDPR
	f.Write(Hvictl, Supervisor, false, hvictl)
	v, _ := f.Read(Vstopi, Supervisor, true)
	prio := v & 0xff
	if prio != 1 { // forced low-byte-to-1 since IPRIOM defaults clear
		t.Errorf("Vstopi priority = %#x, want 1 (DPR sentinel forced through IPRIOM==0 rule)", prio)
	}
	if iid := v >> 16; iid != 2 {
		t.Errorf("Vstopi iid = %d, want 2", iid)
	}
}

func TestHighestIidPrioReturnsFirstMatch(t *testing.T) {
	table := []int{11, 3, 7, 9, 1, 5, 13}
	got := highestIidPrio(1<<3, table)
	if got != 3 {
		t.Errorf("highestIidPrio = %d, want 3", got)
	}
}

func TestHighestIidPrioNoneSetReturnsZero(t *testing.T) {
	table := []int{11, 3}
	if got := highestIidPrio(0, table); got != 0 {
		t.Errorf("highestIidPrio = %d, want 0", got)
	}
}
