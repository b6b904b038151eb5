/*
 * rvcore - PMA manager test set.
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

import "testing"

func TestGetPmaDefaultWithinMemory(t *testing.T) {
	m := NewManager(0x10000)
	p := m.GetPma(0x100)
	if !p.IsMapped() {
		t.Errorf("default region within memory should be mapped")
	}
}

func TestGetPmaOutOfRange(t *testing.T) {
	m := NewManager(0x1000)
	p := m.GetPma(0x2000)
	if p.IsMapped() {
		t.Errorf("address beyond memory size should not be mapped")
	}
}

func TestDefineRegionFirstMatchWins(t *testing.T) {
	m := NewManager(0x10000)
	if !m.DefineRegion(0, 0x1000, 0x1fff, New(Read)) {
		t.Fatalf("DefineRegion(0) failed")
	}
	if !m.DefineRegion(1, 0x1000, 0x1fff, New(Read|Write|Exec)) {
		t.Fatalf("DefineRegion(1) failed")
	}
	p := m.GetPma(0x1004)
	if p.IsWrite() {
		t.Errorf("first matching region should have won, got writable")
	}
}

func TestInvalidateEntry(t *testing.T) {
	m := NewManager(0x10000)
	m.DefineRegion(0, 0x1000, 0x1fff, New(Read))
	m.InvalidateEntry(0)
	p := m.GetPma(0x1004)
	if !p.IsWrite() {
		t.Errorf("invalidated region should no longer apply; want the default (writable) attributes")
	}
}

func TestMemMappedRegRead(t *testing.T) {
	m := NewManager(0x10000)
	m.DefineRegion(0, 0x2000, 0x2fff, New(Read|Write|MemMapped))
	m.DefineMemMappedReg(0x2000, 0xffff_ffff, Size4, New(Read|Write))
	if !m.WriteRegister(0x2000, 0x1234) {
		t.Fatalf("WriteRegister failed")
	}
	v, ok := m.ReadRegister(0x2000)
	if !ok || v != 0x1234 {
		t.Errorf("ReadRegister = (%v, %v), want (0x1234, true)", v, ok)
	}
}

func TestMemMappedRegMaskedBitsReadOnly(t *testing.T) {
	m := NewManager(0x10000)
	m.DefineMemMappedReg(0x3000, 0x0000_00ff, Size4, New(Read|Write))
	m.WriteRegister(0x3000, 0xffff_ffff)
	v, _ := m.ReadRegister(0x3000)
	if v != 0xff {
		t.Errorf("masked write left value %#x, want 0xff", v)
	}
}

func TestOverlapsMemMappedRegs(t *testing.T) {
	m := NewManager(0x10000)
	m.DefineMemMappedReg(0x4000, 0xffff_ffff, Size4, New(Read))
	if !m.OverlapsMemMappedRegs(0x3ffc, 0x4002) {
		t.Errorf("expected overlap")
	}
	if m.OverlapsMemMappedRegs(0x5000, 0x5fff) {
		t.Errorf("expected no overlap")
	}
}

func TestLegalizePmacfgReservedSizeKeepsPrevious(t *testing.T) {
	prev := uint64(0x1234)
	next := (uint64(5) << 58) | 0x7 // n=5 is in the reserved 1..11 range
	got := LegalizePmacfg(prev, next)
	if got != prev {
		t.Errorf("reserved size encoding should retain previous value")
	}
}

func TestLegalizePmacfgBadRwxKeepsPrevious(t *testing.T) {
	prev := uint64(0xabcd)
	next := (uint64(12) << 58) | 0x2 // write-only, not 000/111
	got := LegalizePmacfg(prev, next)
	if got != prev {
		t.Errorf("non-000/111 RWX should retain previous value")
	}
}

func TestLegalizePmacfgIoWriteWithoutReadKeepsPrevious(t *testing.T) {
	prev := uint64(0)
	next := (uint64(12) << 58) | (1 << 3) | 0x2 // IO, write set, read clear
	got := LegalizePmacfg(prev, next)
	if got != prev {
		t.Errorf("IO write-without-read should retain previous value")
	}
}

func TestLegalizePmacfgCacheableRequiresCoherentArith(t *testing.T) {
	prev := uint64(0)
	// Cacheable bit set, but amo class not arithmetic (0) and not coherent.
	next := (uint64(12) << 58) | 0x7 | (1 << 7)
	got := LegalizePmacfg(prev, next)
	if got != prev {
		t.Errorf("cacheable region without coherent arithmetic amo should retain previous value")
	}
}

func TestLegalizePmacfgValidMemoryRegionAccepted(t *testing.T) {
	prev := uint64(0)
	next := (uint64(12) << 58) | 0x7 | (1 << 7) | (1 << 8) | (1 << 5)
	got := LegalizePmacfg(prev, next)
	if got != next {
		t.Errorf("valid cacheable+coherent+arith region should be accepted")
	}
}

func TestUnpackPmacfgDisabled(t *testing.T) {
	u := UnpackPmacfg(0)
	if u.Size != 0 {
		t.Errorf("disabled PMACFG should have Size 0")
	}
}

func TestUnpackPmacfgBaseAndSize(t *testing.T) {
	value := (uint64(12) << 58) | (0x1000 << 12) | 0x7
	u := UnpackPmacfg(value)
	if u.Size != 1<<12 {
		t.Errorf("Size = %#x, want %#x", u.Size, uint64(1)<<12)
	}
	if u.Base&((1<<12)-1) != 0 {
		t.Errorf("Base %#x not aligned to region size", u.Base)
	}
}
