/*
 * rvcore - Smstateen access gate test set.
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

func TestStateEnableBlocksUngatedSupervisorAccess(t *testing.T) {
	f := newTestFile(Capabilities{Supervisor: true, AIA: true, Smstateen: true})
	// MSTATEEN0 bit for the CSR-indirect category starts clear, so Supervisor
	// access to Siselect should be blocked.
	if _, ok := f.Read(Siselect, Supervisor, false); ok {
		t.Errorf("Siselect should be blocked while MSTATEEN0's CSRIND bit is clear")
	}
}

func TestStateEnableAllowsOnceBitSet(t *testing.T) {
	f := newTestFile(Capabilities{Supervisor: true, AIA: true, Smstateen: true})
	f.Write(Mstateen0, Machine, false, 1<<seBitCsrind)
	if _, ok := f.Read(Siselect, Supervisor, false); !ok {
		t.Errorf("Siselect should be readable once MSTATEEN0's CSRIND bit is set")
	}
}

func TestStateEnableNeverGatesMachineMode(t *testing.T) {
	f := newTestFile(Capabilities{AIA: true, Smstateen: true})
	if _, ok := f.Read(Miselect, Machine, false); !ok {
		t.Errorf("Machine-mode access should never be subject to the state-enable gate")
	}
}

func TestStateEnableDisabledCapabilityAllowsAll(t *testing.T) {
	f := newTestFile(Capabilities{Supervisor: true, AIA: true})
	if _, ok := f.Read(Siselect, Supervisor, false); !ok {
		t.Errorf("without Smstateen capability the gate should never block access")
	}
}

func TestStateEnableVirtAlsoRequiresHstateen(t *testing.T) {
	f := newTestFile(Capabilities{Supervisor: true, Hypervisor: true, AIA: true, Smstateen: true})
	// SEO grants HS-mode access to Hstateen0 itself.
	f.Write(Mstateen0, Machine, false, 1<<seBitCsrind|1<<seBitSEO)
	if _, ok := f.Read(Vsiselect, Supervisor, true); ok {
		t.Errorf("virtual-mode access should also require HSTATEEN0's CSRIND bit")
	}
	f.Write(Hstateen0, Supervisor, false, 1<<seBitCsrind)
	if _, ok := f.Read(Vsiselect, Supervisor, true); !ok {
		t.Errorf("virtual-mode access should succeed once both MSTATEEN0 and HSTATEEN0 gate bits are set")
	}
}

func TestStateEnableBitForUngatedCsrReturnsAllow(t *testing.T) {
	f := newTestFile(Capabilities{Supervisor: true, Smstateen: true})
	if !f.stateEnableAllows(Sscratch, Supervisor, false) {
		t.Errorf("Sscratch carries no state-enable category and should never be gated")
	}
}
