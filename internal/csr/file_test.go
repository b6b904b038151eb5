/*
 * rvcore - CSR file access engine test set.
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

func newTestFile(caps Capabilities) *File {
	f := NewFile(caps, nil)
	f.Reset()
	return f
}

func TestUnimplementedCsrNotReadable(t *testing.T) {
	f := newTestFile(Capabilities{})
	if _, ok := f.Read(Hstatus, Machine, false); ok {
		t.Errorf("Hstatus should not be readable without hypervisor capability")
	}
}

func TestMachineCsrReadableFromMachineOnly(t *testing.T) {
	f := newTestFile(Capabilities{})
	if _, ok := f.Read(Mscratch, Supervisor, false); ok {
		t.Errorf("Mscratch should not be readable from Supervisor")
	}
	if _, ok := f.Read(Mscratch, Machine, false); !ok {
		t.Errorf("Mscratch should be readable from Machine")
	}
}

func TestSupervisorCsrReadableFromSupervisorAndAbove(t *testing.T) {
	f := newTestFile(Capabilities{Supervisor: true})
	if _, ok := f.Read(Sscratch, User, false); ok {
		t.Errorf("Sscratch should not be readable from User")
	}
	if _, ok := f.Read(Sscratch, Supervisor, false); !ok {
		t.Errorf("Sscratch should be readable from Supervisor")
	}
	if _, ok := f.Read(Sscratch, Machine, false); !ok {
		t.Errorf("Sscratch should be readable from Machine")
	}
}

// Hstatus is a Supervisor-privilege CSR (the hypervisor's reserved "10"
// number encoding remaps to Supervisor per 6.1): genuine HS-mode access,
// passed to Read as pm=Supervisor, must be allowed once hypervisor mode is
// enabled.
func TestHypervisorCsrReachableFromSupervisorPrivilege(t *testing.T) {
	f := newTestFile(Capabilities{Supervisor: true, Hypervisor: true})
	if _, ok := f.Read(Hstatus, Supervisor, false); !ok {
		t.Errorf("Hstatus should be readable at Supervisor privilege once hypervisor mode is enabled")
	}
	if _, ok := f.Read(Vsstatus, Supervisor, false); !ok {
		t.Errorf("Vsstatus should be readable at Supervisor privilege once hypervisor mode is enabled")
	}
}

func TestWriteThenReadRoundTrips(t *testing.T) {
	f := newTestFile(Capabilities{})
	if !f.Write(Mscratch, Machine, false, 0xdead_beef) {
		t.Fatalf("Write(Mscratch) failed")
	}
	v, ok := f.Read(Mscratch, Machine, false)
	if !ok || v != 0xdead_beef {
		t.Errorf("Read(Mscratch) = (%#x, %v), want (0xdeadbeef, true)", v, ok)
	}
}

func TestReadOnlyCsrRejectsWrite(t *testing.T) {
	f := newTestFile(Capabilities{AIA: true})
	if f.Write(Mtopi, Machine, false, 0xff) {
		t.Errorf("Mtopi has writeMask 0 and should reject writes")
	}
}

func TestSstatusTiedToMstatus(t *testing.T) {
	f := newTestFile(Capabilities{Supervisor: true})
	if !f.Write(Mstatus, Machine, false, 1<<1) { // SIE bit
		t.Fatalf("Write(Mstatus) failed")
	}
	v, ok := f.Read(Sstatus, Supervisor, false)
	if !ok || v&(1<<1) == 0 {
		t.Errorf("Sstatus should reflect Mstatus's SIE bit via the tie")
	}
}

func TestPeekIgnoresPrivilege(t *testing.T) {
	f := newTestFile(Capabilities{})
	if _, ok := f.Read(Mscratch, User, false); ok {
		t.Fatalf("Read from User should have failed")
	}
	if _, ok := f.Peek(Mscratch, false); !ok {
		t.Errorf("Peek should succeed regardless of privilege")
	}
}

func TestPokeBypassesPrivilege(t *testing.T) {
	f := newTestFile(Capabilities{})
	if !f.Poke(Mscratch, 0x42, false) {
		t.Fatalf("Poke(Mscratch) failed")
	}
	v, _ := f.Peek(Mscratch, false)
	if v != 0x42 {
		t.Errorf("Peek(Mscratch) = %#x, want 0x42", v)
	}
}

func TestPokeUnimplementedCsrFails(t *testing.T) {
	f := newTestFile(Capabilities{})
	if f.Poke(Hstatus, 1, false) {
		t.Errorf("Poke on an unimplemented CSR should fail")
	}
}

func TestDebugCsrGatedByDebugMode(t *testing.T) {
	f := newTestFile(Capabilities{Sdtrig: true})
	if _, ok := f.Read(Tselect, Machine, false); ok {
		t.Errorf("Tselect should not be readable outside debug mode")
	}
	f.SetDebugMode(true)
	if _, ok := f.Read(Tselect, Machine, false); !ok {
		t.Errorf("Tselect should be readable once debug mode is enabled")
	}
}

func TestImplementedNumbersExcludesDisabledExtensions(t *testing.T) {
	f := newTestFile(Capabilities{})
	for _, num := range f.ImplementedNumbers() {
		if num == Hstatus {
			t.Errorf("Hstatus should not be implemented without hypervisor capability")
		}
	}
}

func TestResetAppliesMidelegForceOnesUnderHypervisor(t *testing.T) {
	f := newTestFile(Capabilities{Hypervisor: true})
	v, ok := f.Peek(Mideleg, false)
	if !ok || v&midelegForceOnes != midelegForceOnes {
		t.Errorf("Mideleg forced-one bits should be set after Reset under hypervisor mode")
	}
}

func TestTieSharedCsrsToAliasesStorage(t *testing.T) {
	a := newTestFile(Capabilities{})
	b := newTestFile(Capabilities{})
	a.TieSharedCsrsTo(b, []Number{Mtvec})

	if !b.Write(Mtvec, Machine, false, 0x8000) {
		t.Fatalf("Write(Mtvec) on b failed")
	}
	v, ok := a.Peek(Mtvec, false)
	if !ok || v != 0x8000 {
		t.Errorf("a's Mtvec should alias b's storage, got %#x", v)
	}
}

func TestTakeLastWrittenDrains(t *testing.T) {
	f := newTestFile(Capabilities{})
	f.Write(Mscratch, Machine, false, 1)
	f.Write(Mepc, Machine, false, 2)
	written := f.TakeLastWritten()
	if len(written) != 2 {
		t.Fatalf("TakeLastWritten returned %d entries, want 2", len(written))
	}
	if len(f.TakeLastWritten()) != 0 {
		t.Errorf("TakeLastWritten should drain on each call")
	}
}
