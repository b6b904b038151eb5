/*
 * rvcore - CSR definition schedule and capability wiring.
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

const allOnes64 = ^uint64(0)

// define registers a CSR at construction time. Re-defining a number already
// present is a configuration error and is ignored, matching the "mandatory
// schedule, defined once" lifecycle rule.
func (f *File) define(name string, num Number, priv Privilege, reset, wmask, rmask, pmask uint64, mandatory bool) *entry {
	if _, exists := f.entries[num]; exists {
		f.log("duplicate CSR definition ignored", "csr", name, "num", num)
		return f.entries[num]
	}
	e := newEntry(name, num, priv, reset, wmask, rmask, pmask)
	e.mandatory = mandatory
	f.entries[num] = e
	return e
}

// tie marks `num`'s entry as tied to master's storage: reads return the
// master's bits, writes apply num's own masks into the master's value.
func (f *File) tie(num, master Number) {
	if e, ok := f.entries[num]; ok {
		e.tied = true
		e.tiedTo = master
	}
}

// defineAll installs the fixed construction-time schedule: machine,
// supervisor, user, hypervisor, debug, vector, fp, aia, stateen, pma CSRs.
func (f *File) defineAll() {
	// Machine mode -- always present, several mandatory.
	f.define("mstatus", Mstatus, Machine, 0, allOnes64, allOnes64, allOnes64, true)
	f.define("misa", Misa, Machine, 0, allOnes64, allOnes64, allOnes64, true)
	f.define("medeleg", Medeleg, Machine, 0, allOnes64, allOnes64, allOnes64, true)
	f.define("mideleg", Mideleg, Machine, 0, allOnes64, allOnes64, allOnes64, true)
	f.define("mie", Mie, Machine, 0, allOnes64, allOnes64, allOnes64, true)
	f.define("mtvec", Mtvec, Machine, 0, allOnes64, allOnes64, allOnes64, true)
	f.define("mcounteren", Mcounteren, Machine, 0, allOnes64, allOnes64, allOnes64, true)
	f.define("menvcfg", Menvcfg, Machine, 0, allOnes64, allOnes64, allOnes64, true)
	f.define("menvcfgh", Menvcfgh, Machine, 0, 0, 0, 0, true)
	f.define("mstateen0", Mstateen0, Machine, 0, allOnes64, allOnes64, allOnes64, false)
	f.define("mstateen1", Mstateen1, Machine, 0, allOnes64, allOnes64, allOnes64, false)
	f.define("mstateen2", Mstateen2, Machine, 0, allOnes64, allOnes64, allOnes64, false)
	f.define("mstateen3", Mstateen3, Machine, 0, allOnes64, allOnes64, allOnes64, false)
	f.define("mnstatus", Mnstatus, Machine, 0, allOnes64, allOnes64, allOnes64, false)
	f.define("mscratch", Mscratch, Machine, 0, allOnes64, allOnes64, allOnes64, true)
	f.define("mepc", Mepc, Machine, 0, allOnes64, allOnes64, allOnes64, true)
	f.define("mcause", Mcause, Machine, 0, allOnes64, allOnes64, allOnes64, true)
	f.define("mtval", Mtval, Machine, 0, allOnes64, allOnes64, allOnes64, true)
	f.define("mip", Mip, Machine, 0, allOnes64, allOnes64, allOnes64, true)
	f.define("mtinst", Mtinst, Machine, 0, allOnes64, allOnes64, allOnes64, true)
	f.define("mtval2", Mtval2, Machine, 0, allOnes64, allOnes64, allOnes64, true)
	f.define("mseccfg", Mseccfg, Machine, 0, allOnes64, allOnes64, allOnes64, true)
	f.define("srmcfg", Srmcfg, Machine, 0, allOnes64, allOnes64, allOnes64, true)
	f.define("mcycle", Mcycle, Machine, 0, allOnes64, allOnes64, allOnes64, true)
	f.define("minstret", Minstret, Machine, 0, allOnes64, allOnes64, allOnes64, true)
	f.define("miselect", Miselect, Machine, 0, allOnes64, allOnes64, allOnes64, false)
	f.define("mireg", Mireg, Machine, 0, allOnes64, allOnes64, allOnes64, false)
	f.define("mtopei", Mtopei, Machine, 0, 0, allOnes64, 0, false)
	f.define("mtopi", Mtopi, Machine, 0, 0, allOnes64, 0, false)
	for i := 0; i < 16; i++ {
		f.define("pmpcfg"+pmpName(i), Pmpcfg0+Number(i), Machine, 0, allOnes64, allOnes64, allOnes64, true)
	}
	for i := 0; i < 64; i++ {
		f.define("pmpaddr"+pmpName(i), Pmpaddr0+Number(i), Machine, 0, allOnes64, allOnes64, allOnes64, true)
	}
	for i := 0; i < 16; i++ {
		f.define("pmacfg"+pmpName(i), Pmacfg0+Number(i), Machine, 0, allOnes64, allOnes64, allOnes64, true)
	}
	f.define("time", Time, User, 0, 0, allOnes64, 0, false)
	f.define("timeh", Timeh, User, 0, 0, allOnes64, 0, false)

	// Supervisor mode (installed but not implemented until enabled).
	// sstatus is a genuine architectural tie: it shares mstatus's backing
	// storage and is never a distinct write target for the propagator.
	f.define("sstatus", Sstatus, Supervisor, 0, allOnes64, allOnes64, allOnes64, false)
	f.tie(Sstatus, Mstatus)
	// sie/sip keep independent storage: the propagator (not a tie) mirrors
	// bits into/out of mie/mip, since their bit layouts and masks diverge.
	f.define("sie", Sie, Supervisor, 0, allOnes64, allOnes64, allOnes64, false)
	f.define("stvec", Stvec, Supervisor, 0, allOnes64, allOnes64, allOnes64, false)
	f.define("scounteren", Scounteren, Supervisor, 0, allOnes64, allOnes64, allOnes64, false)
	f.define("senvcfg", Senvcfg, Supervisor, 0, allOnes64, allOnes64, allOnes64, false)
	f.define("sscratch", Sscratch, Supervisor, 0, allOnes64, allOnes64, allOnes64, false)
	f.define("sepc", Sepc, Supervisor, 0, allOnes64, allOnes64, allOnes64, false)
	f.define("scause", Scause, Supervisor, 0, allOnes64, allOnes64, allOnes64, false)
	f.define("stval", Stval, Supervisor, 0, allOnes64, allOnes64, allOnes64, false)
	f.define("sip", Sip, Supervisor, 0, allOnes64, allOnes64, allOnes64, false)
	se := f.entries[Sip]
	se.mapsToVirtual = true
	f.define("stimecmp", Stimecmp, Supervisor, 0, allOnes64, allOnes64, allOnes64, false)
	f.define("satp", Satp, Supervisor, 0, allOnes64, allOnes64, allOnes64, false)
	f.define("scountovf", Scountovf, Supervisor, 0, 0, allOnes64, 0, false)

	sieEntry := f.entries[Sie]
	sieEntry.mapsToVirtual = true
	stvecEntry := f.entries[Stvec]
	stvecEntry.mapsToVirtual = true
	stimecmpEntry := f.entries[Stimecmp]
	stimecmpEntry.mapsToVirtual = true
	satpEntry := f.entries[Satp]
	satpEntry.mapsToVirtual = true

	// Virtual-mode siblings (S-CSR number + 0x100), installed but only
	// implemented once hypervisor mode is enabled.
	f.define("vsstatus", Vsstatus, Supervisor, 0, allOnes64, allOnes64, allOnes64, false)
	f.define("vsie", Vsie, Supervisor, 0, 0, 0, allOnes64, false)
	f.define("vstvec", Vstvec, Supervisor, 0, allOnes64, allOnes64, allOnes64, false)
	f.define("vsscratch", Vsscratch, Supervisor, 0, allOnes64, allOnes64, allOnes64, false)
	f.define("vsepc", Vsepc, Supervisor, 0, allOnes64, allOnes64, allOnes64, false)
	f.define("vscause", Vscause, Supervisor, 0, allOnes64, allOnes64, allOnes64, false)
	f.define("vstval", Vstval, Supervisor, 0, allOnes64, allOnes64, allOnes64, false)
	f.define("vsip", Vsip, Supervisor, 0, 0, 0, allOnes64, false)
	f.define("vstimecmp", Vstimecmp, Supervisor, 0, allOnes64, allOnes64, allOnes64, false)
	f.define("vsatp", Vsatp, Supervisor, 0, allOnes64, allOnes64, allOnes64, false)
	f.define("vsiselect", Vsiselect, Supervisor, 0, allOnes64, allOnes64, allOnes64, false)
	f.define("vsireg", Vsireg, Supervisor, 0, allOnes64, allOnes64, allOnes64, false)
	f.define("vstopei", Vstopei, Supervisor, 0, 0, allOnes64, 0, false)
	f.define("vstopi", Vstopi, Supervisor, 0, 0, allOnes64, 0, false)

	// Hypervisor-extension machine/S-mode CSRs.
	f.define("hstatus", Hstatus, Supervisor, 0, allOnes64, allOnes64, allOnes64, false)
	f.define("hedeleg", Hedeleg, Supervisor, 0, allOnes64, allOnes64, allOnes64, false)
	f.define("hideleg", Hideleg, Supervisor, 0, allOnes64, allOnes64, allOnes64, false)
	f.define("hie", Hie, Supervisor, 0, allOnes64, allOnes64, allOnes64, false)
	f.define("hcounteren", Hcounteren, Supervisor, 0, allOnes64, allOnes64, allOnes64, false)
	f.define("hgeie", Hgeie, Supervisor, 0, allOnes64, allOnes64, allOnes64, false)
	f.define("henvcfg", Henvcfg, Supervisor, 0, allOnes64, allOnes64, allOnes64, false)
	f.define("henvcfgh", Henvcfgh, Supervisor, 0, 0, 0, 0, false)
	f.define("hvictl", Hvictl, Supervisor, 0, allOnes64, allOnes64, allOnes64, false)
	f.define("htval", Htval, Supervisor, 0, allOnes64, allOnes64, allOnes64, false)
	f.define("hip", Hip, Supervisor, 0, allOnes64, allOnes64, allOnes64, false)
	f.define("hvip", Hvip, Supervisor, 0, allOnes64, allOnes64, allOnes64, false)
	f.define("htinst", Htinst, Supervisor, 0, allOnes64, allOnes64, allOnes64, false)
	f.define("hgatp", Hgatp, Supervisor, 0, allOnes64, allOnes64, allOnes64, false)
	f.define("htimedelta", Htimedelta, Supervisor, 0, allOnes64, allOnes64, allOnes64, false)
	f.define("htimedeltah", Htimedeltah, Supervisor, 0, 0, 0, 0, false)
	f.define("hgeip", Hgeip, Supervisor, 0, 0, allOnes64, 0, false)
	f.define("mvien", Mvien, Machine, 0, allOnes64, allOnes64, allOnes64, false)
	f.define("mvip", Mvip, Machine, 0, allOnes64, allOnes64, allOnes64, false)

	// State-enable extension.
	f.define("sstateen0", Sstateen0, Supervisor, 0, allOnes64, allOnes64, allOnes64, false)
	f.define("sstateen1", Sstateen1, Supervisor, 0, allOnes64, allOnes64, allOnes64, false)
	f.define("sstateen2", Sstateen2, Supervisor, 0, allOnes64, allOnes64, allOnes64, false)
	f.define("sstateen3", Sstateen3, Supervisor, 0, allOnes64, allOnes64, allOnes64, false)
	f.define("hstateen0", Hstateen0, Supervisor, 0, allOnes64, allOnes64, allOnes64, false)
	f.define("hstateen1", Hstateen1, Supervisor, 0, allOnes64, allOnes64, allOnes64, false)
	f.define("hstateen2", Hstateen2, Supervisor, 0, allOnes64, allOnes64, allOnes64, false)
	f.define("hstateen3", Hstateen3, Supervisor, 0, allOnes64, allOnes64, allOnes64, false)
	f.define("hstateen0h", Hstateen0h, Supervisor, 0, 0, 0, 0, false)

	// Indirect AIA access.
	f.define("siselect", Siselect, Supervisor, 0, allOnes64, allOnes64, allOnes64, false)
	f.define("sireg", Sireg, Supervisor, 0, allOnes64, allOnes64, allOnes64, false)
	f.define("stopei", Stopei, Supervisor, 0, 0, allOnes64, 0, false)
	f.define("stopi", Stopi, Supervisor, 0, 0, allOnes64, 0, false)

	// Floating point.
	f.define("fflags", Fflags, User, 0, 0x1f, 0x1f, 0x1f, false)
	f.define("frm", Frm, User, 0, 0x7, 0x7, 0x7, false)
	f.define("fcsr", Fcsr, User, 0, 0xff, 0xff, 0xff, false)

	// Debug module.
	f.define("tselect", Tselect, Machine, 0, allOnes64, allOnes64, allOnes64, false)
	f.define("tdata1", Tdata1, Machine, 0, allOnes64, allOnes64, allOnes64, false)
	f.define("tdata2", Tdata2, Machine, 0, allOnes64, allOnes64, allOnes64, false)
	f.define("tdata3", Tdata3, Machine, 0, allOnes64, allOnes64, allOnes64, false)
	f.define("tinfo", Tinfo, Machine, 0, 0, allOnes64, 0, false)

	// Vector.
	f.define("vstart", Vstart, User, 0, allOnes64, allOnes64, allOnes64, false)
	f.define("vtype", Vtype, User, 0, 0, allOnes64, allOnes64, false)
	f.define("vl", Vl, User, 0, 0, allOnes64, 0, false)
	f.define("vlenb", Vlenb, User, 0, 0, allOnes64, 0, false)

	// All CSRs above start un-implemented except the mandatory machine set
	// and time/timeh/mnstatus; applyCapabilities flips on the ones the
	// configured profile wants.
	for num, e := range f.entries {
		if !e.mandatory {
			e.implemented = num == Time || num == Timeh || num == Mnstatus
		}
	}
}

func pmpName(i int) string {
	digits := "0123456789abcdef"
	if i < 16 {
		return string(digits[i])
	}
	return string(digits[i/16]) + string(digits[i%16])
}

// applyCapabilities wires the enableX methods from the Capabilities the File
// was constructed with.
func (f *File) applyCapabilities() {
	f.enableSupervisorMode(f.caps.Supervisor)
	f.enableHypervisorMode(f.caps.Hypervisor)
	f.enableAia(f.caps.AIA)
	f.enableSscofpmf(f.caps.Sscofpmf)
	f.enableSmstateen(f.caps.Smstateen)
	f.enableSdtrig(f.caps.Sdtrig)
	f.enableRvf(f.caps.Rvf)
	f.enableVector(f.caps.Vector)
}

func (f *File) setImplemented(nums []Number, v bool) {
	for _, n := range nums {
		if e, ok := f.entries[n]; ok {
			e.implemented = v
		}
	}
}

// enableSupervisorMode wires in S-mode CSRs. Idempotent.
func (f *File) enableSupervisorMode(on bool) {
	f.caps.Supervisor = on
	f.setImplemented([]Number{
		Sstatus, Sie, Stvec, Scounteren, Senvcfg, Sscratch, Sepc, Scause,
		Stval, Sip, Stimecmp, Satp, Siselect, Sireg, Stopei, Stopi,
		Sstateen0, Sstateen1, Sstateen2, Sstateen3,
	}, on)
}

// enableHypervisorMode wires in the H-extension CSRs and their VS-mode
// siblings. Idempotent.
func (f *File) enableHypervisorMode(on bool) {
	f.caps.Hypervisor = on
	f.setImplemented([]Number{
		Hstatus, Hedeleg, Hideleg, Hie, Hcounteren, Hgeie, Henvcfg, Henvcfgh,
		Hvictl, Htval, Hip, Hvip, Htinst, Hgatp, Htimedelta, Htimedeltah,
		Hgeip, Mvien, Mvip,
		Vsstatus, Vsie, Vstvec, Vsscratch, Vsepc, Vscause, Vstval, Vsip,
		Vstimecmp, Vsatp, Vsiselect, Vsireg, Vstopei, Vstopi,
		Hstateen0, Hstateen1, Hstateen2, Hstateen3, Hstateen0h,
	}, on)
	if on {
		if e, ok := f.entries[Mideleg]; ok {
			e.value |= midelegForceOnes
		}
	}
}

// enableAia wires in the AIA indirect-access and topi CSRs. Idempotent.
func (f *File) enableAia(on bool) {
	f.caps.AIA = on
	f.setImplemented([]Number{Miselect, Mireg, Mtopei, Mtopi}, on)
	if f.caps.Supervisor {
		f.setImplemented([]Number{Siselect, Sireg, Stopei, Stopi}, on)
	}
	if f.caps.Hypervisor {
		f.setImplemented([]Number{Vsiselect, Vsireg, Vstopei, Vstopi, Hvictl}, on)
	}
}

// enableSscofpmf wires in the local-counter-overflow interrupt cause and
// SCOUNTOVF. Idempotent.
func (f *File) enableSscofpmf(on bool) {
	f.caps.Sscofpmf = on
	if f.caps.Supervisor {
		f.setImplemented([]Number{Scountovf}, on)
	}
}

// enableSmstateen wires in the MSTATEEN/HSTATEEN/SSTATEEN register banks.
// Idempotent.
func (f *File) enableSmstateen(on bool) {
	f.caps.Smstateen = on
	f.setImplemented([]Number{Mstateen0, Mstateen1, Mstateen2, Mstateen3}, on)
	if f.caps.Supervisor {
		f.setImplemented([]Number{Sstateen0, Sstateen1, Sstateen2, Sstateen3}, on)
	}
	if f.caps.Hypervisor {
		f.setImplemented([]Number{Hstateen0, Hstateen1, Hstateen2, Hstateen3, Hstateen0h}, on)
	}
}

// enableSdtrig wires in the trigger-module CSRs. Idempotent.
func (f *File) enableSdtrig(on bool) {
	f.caps.Sdtrig = on
	f.setImplemented([]Number{Tselect, Tdata1, Tdata2, Tdata3, Tinfo}, on)
}

// enableRvf wires in the single-precision floating point status CSRs.
// Idempotent.
func (f *File) enableRvf(on bool) {
	f.caps.Rvf = on
	f.setImplemented([]Number{Fflags, Frm, Fcsr}, on)
}

// enableVector flips the cached flag and the vstart/vtype/vl/vlenb CSR
// wiring; the vector register file itself lives in
// the sibling vector package and is configured independently.
func (f *File) enableVector(on bool) {
	f.caps.Vector = on
	f.setImplemented([]Number{Vstart, Vtype, Vl, Vlenb}, on)
}
