/*
 * rvcore - CSR number space.
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

// Package csr implements the privileged CSR file: storage, the read/write/
// peek/poke engine, the delegation/aliasing propagator, and the AIA topi
// priority resolver.
package csr

// Number is a 12-bit CSR address.
type Number uint16

// Privilege is the minimum privilege level required to access a CSR.
type Privilege int

const (
	User Privilege = iota
	Supervisor
	HypervisorBit // encoded 10, remapped to Supervisor elsewhere per 6.1
	Machine
)

// PrivilegeOf derives the privilege encoded in bits 9:8 of a CSR number. The
// reserved "10" encoding is remapped to Supervisor, per spec.
func PrivilegeOf(num Number) Privilege {
	switch (num >> 8) & 0x3 {
	case 0:
		return User
	case 1:
		return Supervisor
	case 2:
		return Supervisor // reserved encoding remapped
	default:
		return Machine
	}
}

// VirtualAlias returns the virtual-mode alias address of an S-mode CSR.
func VirtualAlias(num Number) Number { return num + 0x100 }

// The CSR numbers this core defines. Not every architected CSR is named
// here -- only those exercised by the engine, propagator, and topi resolver.
const (
	Fflags Number = 0x001
	Frm    Number = 0x002
	Fcsr   Number = 0x003

	Vstart Number = 0x008
	Vtype  Number = 0xc21
	Vl     Number = 0xc20
	Vlenb  Number = 0xc22

	Sstatus    Number = 0x100
	Sie        Number = 0x104
	Stvec      Number = 0x105
	Scounteren Number = 0x106
	Senvcfg    Number = 0x10a
	Sscratch   Number = 0x140
	Sepc       Number = 0x141
	Scause     Number = 0x142
	Stval      Number = 0x143
	Sip        Number = 0x144
	Stimecmp   Number = 0x14d
	Satp       Number = 0x180
	Scountovf  Number = 0xda0

	Vsstatus  Number = 0x200
	Vsie      Number = 0x204
	Vstvec    Number = 0x205
	Vsscratch Number = 0x240
	Vsepc     Number = 0x241
	Vscause   Number = 0x242
	Vstval    Number = 0x243
	Vsip      Number = 0x244
	Vstimecmp Number = 0x24d
	Vsatp     Number = 0x280

	Hstatus     Number = 0x600
	Hedeleg     Number = 0x602
	Hideleg     Number = 0x603
	Hie         Number = 0x604
	Hcounteren  Number = 0x606
	Hgeie       Number = 0x607
	Henvcfg     Number = 0x60a
	Henvcfgh    Number = 0x61a
	Hvictl      Number = 0x609
	Htval       Number = 0x643
	Hip         Number = 0x644
	Hvip        Number = 0x645
	Htinst      Number = 0x64a
	Hgatp       Number = 0x680
	Htimedelta  Number = 0x605
	Htimedeltah Number = 0x615

	Hgeip Number = 0xe12

	Sstateen0 Number = 0x10c
	Sstateen1 Number = 0x10d
	Sstateen2 Number = 0x10e
	Sstateen3 Number = 0x10f

	Hstateen0  Number = 0x60c
	Hstateen1  Number = 0x60d
	Hstateen2  Number = 0x60e
	Hstateen3  Number = 0x60f
	Hstateen0h Number = 0x61c

	Mstatus    Number = 0x300
	Misa       Number = 0x301
	Medeleg    Number = 0x302
	Mideleg    Number = 0x303
	Mie        Number = 0x304
	Mtvec      Number = 0x305
	Mcounteren Number = 0x306
	Menvcfg    Number = 0x30a
	Menvcfgh   Number = 0x31a
	Mstateen0  Number = 0x30c
	Mstateen1  Number = 0x30d
	Mstateen2  Number = 0x30e
	Mstateen3  Number = 0x30f
	Mnstatus   Number = 0x744
	Mscratch   Number = 0x340
	Mepc       Number = 0x341
	Mcause     Number = 0x342
	Mtval      Number = 0x343
	Mip        Number = 0x344
	Mtinst     Number = 0x34a
	Mtval2     Number = 0x34b
	Mseccfg    Number = 0x747
	Srmcfg     Number = 0x181

	Mcycle   Number = 0xb00
	Minstret Number = 0xb02

	Miselect  Number = 0x350
	Mireg     Number = 0x351
	Siselect  Number = 0x150
	Sireg     Number = 0x151
	Vsiselect Number = 0x250
	Vsireg    Number = 0x251

	Mtopei  Number = 0x35c
	Stopei  Number = 0x15c
	Vstopei Number = 0x25c
	Mtopi   Number = 0xfb0
	Stopi   Number = 0xdb0
	Vstopi  Number = 0xeb0

	Pmpcfg0  Number = 0x3a0
	Pmpaddr0 Number = 0x3b0

	Pmacfg0 Number = 0x3c0

	Tselect Number = 0x7a0
	Tdata1  Number = 0x7a1
	Tdata2  Number = 0x7a2
	Tdata3  Number = 0x7a3
	Tinfo   Number = 0x7a4

	Time  Number = 0xc01
	Timeh Number = 0xc81

	Mvien Number = 0x308
	Mvip  Number = 0x309
)

func isDebug(num Number) bool { return num >= 0x7a0 && num <= 0x7af }
func isHighHalf(num Number) bool {
	switch num {
	case Menvcfgh, Henvcfgh, Timeh, Htimedeltah, Hstateen0h:
		return true
	}
	return false
}
