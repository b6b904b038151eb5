/*
 * rvcore - Vector register file test set.
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

package vector

import "testing"

func newTestFile(t *testing.T) *File {
	f := NewFile()
	if !f.Configure(Config{BytesPerReg: 64, MinElemBytes: 1, MaxElemBytes: 8}) {
		t.Fatalf("Configure failed")
	}
	return f
}

func TestLegalityMatrix(t *testing.T) {
	f := newTestFile(t)
	for _, l := range allLmuls {
		for _, s := range allSews {
			want := int(s) >= 1 && int(s) <= 8 && l.x8() >= (8*1)/8
			got := f.LegalConfig(s, l)
			if got != want {
				t.Errorf("LegalConfig(%v,%v) = %v, want %v", s, l, got, want)
			}
		}
	}
}

func TestSetVlClampsToVlmax(t *testing.T) {
	f := newTestFile(t)
	vl, ok := f.SetVl(SewWord, LmulTwo, 40, true)
	if !ok {
		t.Fatalf("SetVl failed")
	}
	if vl != 32 {
		t.Errorf("vl = %d, want 32 (vlmax for SEW=32,LMUL=2,bytesPerReg=64)", vl)
	}
	if f.vtype.Illegal {
		t.Errorf("vtype.vill set for a legal configuration")
	}
}

func TestSetVlIllegalConfigSetsVill(t *testing.T) {
	f := NewFile()
	f.Configure(Config{BytesPerReg: 64, MinElemBytes: 4, MaxElemBytes: 8})
	_, ok := f.SetVl(SewByte, LmulEighth, 10, true)
	if ok {
		t.Fatalf("SetVl should fail for an illegal (SEW,LMUL) combination")
	}
	if !f.vtype.Illegal {
		t.Errorf("vtype.vill not set after illegal configuration")
	}
}

func TestSetVlAvlBeyondVlmaxWithoutLegalizeTraps(t *testing.T) {
	f := newTestFile(t)
	_, ok := f.SetVl(SewByte, LmulEighth, 10, false)
	if ok {
		t.Fatalf("expected trap (ok=false) for avl beyond vlmax without legalization")
	}
}

func TestReadWriteRoundTrip(t *testing.T) {
	f := newTestFile(t)
	f.WriteU32(2, 3, 8, 0xdeadbeef)
	if got := f.ReadU32(2, 3, 8); got != 0xdeadbeef {
		t.Errorf("ReadU32 = %#x, want 0xdeadbeef", got)
	}
}

func TestInvalidIndexPanics(t *testing.T) {
	f := newTestFile(t)
	defer func() {
		if recover() == nil {
			t.Errorf("expected panic for out-of-range element index")
		}
	}()
	f.ReadU64(0, 100, 8)
}

func TestMaskBitAccess(t *testing.T) {
	f := newTestFile(t)
	f.WriteMaskBit(0, 5, true)
	if !f.ReadMaskBit(0, 5) {
		t.Errorf("mask bit 5 should read back set")
	}
	f.WriteMaskBit(0, 5, false)
	if f.ReadMaskBit(0, 5) {
		t.Errorf("mask bit 5 should read back clear")
	}
}

func TestIsDestActiveTailPolicy(t *testing.T) {
	f := newTestFile(t)
	f.SetVl(SewByte, LmulOne, 4, true)
	f.ConfigurePolicies(true, true)

	active, fill, overwrite := f.IsDestActive(0, 10, false)
	if active {
		t.Errorf("element beyond vl should not be active")
	}
	if !overwrite || fill != 0xff {
		t.Errorf("tail-agnostic policy should overwrite with 0xff")
	}
}

func TestIsDestActiveMaskedInactive(t *testing.T) {
	f := newTestFile(t)
	f.SetVl(SewByte, LmulOne, 8, true)
	f.ConfigurePolicies(false, false)
	f.WriteMaskBit(0, 2, false)

	active, _, overwrite := f.IsDestActive(0, 2, true)
	if active {
		t.Errorf("masked-inactive element should not be active")
	}
	if overwrite {
		t.Errorf("mask-undisturbed policy should not request an overwrite")
	}
}

func TestUpdateTracking(t *testing.T) {
	f := newTestFile(t)
	f.WriteU32(1, 0, 8, 1)
	f.WriteU32(1, 1, 8, 2)
	reg, groupX8, snap := f.LastWritten()
	if reg != 1 || groupX8 != 8 {
		t.Errorf("LastWritten = (%d,%d), want (1,8)", reg, groupX8)
	}
	if len(snap) != f.cfg.BytesPerReg {
		t.Errorf("snapshot length %d, want %d (captured by the first write)", len(snap), f.cfg.BytesPerReg)
	}
	f.ClearTraceData()
	reg, _, snap = f.LastWritten()
	if reg != -1 || snap != nil {
		t.Errorf("ClearTraceData did not reset tracking state")
	}
}
