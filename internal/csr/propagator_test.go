/*
 * rvcore - delegation/aliasing propagator test set.
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

func hvFile() *File {
	return newTestFile(Capabilities{Supervisor: true, Hypervisor: true, Sscofpmf: true})
}

func TestSstcDelegationVstimecmpBlockedUnderHvictlVti(t *testing.T) {
	// hvictl is implemented only when AIA is enabled alongside H.
	f := newTestFile(Capabilities{Supervisor: true, Hypervisor: true, Sscofpmf: true, AIA: true})
	f.Write(Hvictl, Supervisor, false, hvictlVTI)
	if f.Write(Vstimecmp, Supervisor, true, 0x1000) {
		t.Errorf("Vstimecmp write should be blocked while HVICTL.VTI is set")
	}
	f.Write(Hvictl, Supervisor, false, 0)
	if !f.Write(Vstimecmp, Supervisor, true, 0x1000) {
		t.Errorf("Vstimecmp write should succeed once HVICTL.VTI is clear")
	}
}

func TestMvipBit1AliasesMipWhenMvienClear(t *testing.T) {
	f := hvFile()
	f.Write(Mvip, Machine, false, 1<<1)
	v, _ := f.Peek(Mip, false)
	if v&(1<<1) == 0 {
		t.Errorf("MVIP bit 1 should alias into MIP when MVIEN bit 1 is clear")
	}
}

func TestMvipBit1DecoupledWhenMvienSet(t *testing.T) {
	f := hvFile()
	f.Write(Mvien, Machine, false, 1<<1)
	f.Write(Mip, Machine, false, 0)
	f.Write(Mvip, Machine, false, 1<<1)
	v, _ := f.Peek(Mip, false)
	if v&(1<<1) != 0 {
		t.Errorf("MVIP bit 1 should not alias into MIP once MVIEN decouples it")
	}
}

func TestVsieVsipMaskTracksHideleg(t *testing.T) {
	f := hvFile()
	before := f.Write(Vsie, Supervisor, true, 1<<2)
	f.Write(Hideleg, Supervisor, false, 0x1fff) // delegate every low-13 S-level interrupt
	after := f.Write(Vsie, Supervisor, true, 1<<2)
	if before {
		t.Errorf("Vsie should start with an empty mask before any Hideleg delegation")
	}
	if !after {
		t.Errorf("Vsie bit 2 should become writeable once Hideleg delegates its full low-13 mask")
	}
}

func TestSieReflectsMvienDecoupledShadowBits(t *testing.T) {
	f := hvFile()
	f.Write(Mvien, Machine, false, 1<<1) // decouple SSIE from MIE
	f.Write(Sie, Supervisor, false, 1<<1)
	v, _ := f.Peek(Sie, false)
	if v&(1<<1) == 0 {
		t.Errorf("Sie should report the shadow_sie bit for an MVIEN-decoupled SSIE")
	}
	mie, _ := f.Peek(Mie, false)
	if mie&(1<<1) != 0 {
		t.Errorf("Mie should not have been touched by a decoupled Sie write")
	}
}

func TestHieMirrorsIntoMie(t *testing.T) {
	f := hvFile()
	f.Write(Hie, Supervisor, false, hieMask)
	mie, _ := f.Peek(Mie, false)
	if mie&hieMask != hieMask {
		t.Errorf("Hie write should mirror into Mie's hieMask bits")
	}
}

func TestHypervisorDisabledPropagateIsNoOp(t *testing.T) {
	f := newTestFile(Capabilities{})
	f.propagate(Mip) // must not panic even though Hip/Hie/etc. are undefined here
}
