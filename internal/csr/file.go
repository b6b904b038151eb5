/*
 * rvcore - CSR read/write/peek/poke engine.
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

import (
	"log/slog"
	"sort"
)

// Imsic is the narrow capability surface the engine consumes from the
// incoming-MSI controller. A nil Imsic behaves as "no external interrupt
// pending" rather than panicking.
type Imsic interface {
	TopId(guest int) uint32
	GuestCount() int
	SetPending(id uint32, guest int)
	ClearPending(id uint32, guest int)
}

// Pmp is the narrow capability surface consumed for PMPADDR read masking
// and lock propagation. Reads are masked to ImplementedBits only; the
// entry's NAPOT encoding is not expanded.
type Pmp interface {
	ConfigByte(entry int) uint8
	ImplementedBits() int
}

// Trigger is the narrow capability surface consumed for TDATA1..TINFO.
type Trigger interface {
	Read(num Number) (uint64, bool)
	Write(num Number, value uint64) bool
}

// Capabilities selects which optional extensions are wired in; see the
// enableX methods in capabilities.go.
type Capabilities struct {
	XLEN           int
	Hypervisor     bool
	Supervisor     bool
	AIA            bool
	Sscofpmf       bool
	Smstateen      bool
	Sdtrig         bool
	Rvf            bool
	Vector         bool
	LegalizeVsetvl bool
	// WriteMvipAlwaysWritesBit1 preserves the RTL quirk ("bug 4248") where
	// writeMvip always writes bit 1 of MVIP regardless of MVIEN aliasing.
	// Gated behind this flag since it is a deliberate divergence from the
	// architecture.
	WriteMvipAlwaysWritesBit1 bool
}

// File is the CSR storage and access engine for one hart. Not
// goroutine-safe: exactly one hart steps it at a time.
type File struct {
	caps Capabilities

	entries map[Number]*entry

	imsic   Imsic
	pmp     Pmp
	trigger Trigger

	shadowSie uint64

	simTime uint64

	debugMode bool

	lastWritten []Number

	logger *slog.Logger

	mInterrupts  []int
	sInterrupts  []int
	vsInterrupts []int
}

// NewFile constructs a CSR file with every entry this core defines, wired
// per caps, and no collaborators attached.
func NewFile(caps Capabilities, logger *slog.Logger) *File {
	if caps.XLEN == 0 {
		caps.XLEN = 64
	}
	f := &File{
		caps:    caps,
		entries: make(map[Number]*entry),
		logger:  logger,
	}
	f.defineAll()
	f.applyCapabilities()
	f.initPriorityTables()
	return f
}

// SetCollaborators attaches the out-of-scope capability implementations.
// Any of them may be nil.
func (f *File) SetCollaborators(imsic Imsic, pmp Pmp, trig Trigger) {
	f.imsic = imsic
	f.pmp = pmp
	f.trigger = trig
}

// SetSimTime feeds the simulated mtime value consumed by TIME/TIMEH and the
// Sstc comparator adjusters.
func (f *File) SetSimTime(t uint64) { f.simTime = t }

// SetDebugMode controls whether debug-range CSRs are accessible.
func (f *File) SetDebugMode(v bool) { f.debugMode = v }

func (f *File) log(msg string, args ...any) {
	if f.logger != nil {
		f.logger.Debug(msg, args...)
	}
}

// resolveAlias redirects number to its virtual-mode alias when the CSR maps
// to a virtual sibling and virt mode is active.
func (f *File) resolveAlias(num Number, virt bool) Number {
	if e, ok := f.entries[num]; ok && e.mapsToVirtual && virt {
		return VirtualAlias(num)
	}
	return num
}

func (f *File) lookup(num Number) (*entry, bool) {
	e, ok := f.entries[num]
	return e, ok
}

// isReadable implements the §4.2 accessibility rule.
func (f *File) isReadable(e *entry, pm Privilege, virt bool) bool {
	if !e.implemented {
		return false
	}
	if pm < e.privilege {
		return false
	}
	if pm != Machine && !f.stateEnableAllows(e.num, pm, virt) {
		return false
	}
	if e.isDebug && !f.debugMode {
		return false
	}
	if pm == Supervisor && virt && (e.num == Sip || e.num == Sie) {
		if hvictl, ok := f.entries[Hvictl]; ok && hvictl.value&hvictlVTI != 0 {
			return false
		}
	}
	return true
}

func (f *File) isWriteable(e *entry, pm Privilege, virt bool) bool {
	if !f.isReadable(e, pm, virt) {
		return false
	}
	if e.writeMask == 0 {
		return false
	}
	if e.num == Vstimecmp && virt {
		if hvictl, ok := f.entries[Hvictl]; ok && hvictl.value&hvictlVTI != 0 {
			return false
		}
	}
	return true
}

// Read implements the full privileged/virtualization-gated read pipeline.
func (f *File) Read(num Number, pm Privilege, virt bool) (uint64, bool) {
	num = f.resolveAlias(num, virt)
	e, ok := f.lookup(num)
	if !ok {
		return 0, false
	}
	if !f.isReadable(e, pm, virt) {
		return 0, false
	}
	return f.readValue(e, virt), true
}

// Peek reads ignoring privilege and state-enable gates, for the simulator
// front end's persistence path.
func (f *File) Peek(num Number, virt bool) (uint64, bool) {
	num = f.resolveAlias(num, virt)
	e, ok := f.lookup(num)
	if !ok || !e.implemented {
		return 0, false
	}
	return f.readValue(e, virt), true
}

// Write implements the full privileged/virtualization-gated write pipeline,
// running the write adjusters and then fanning out the propagator.
func (f *File) Write(num Number, pm Privilege, virt bool, value uint64) bool {
	num = f.resolveAlias(num, virt)
	e, ok := f.lookup(num)
	if !ok {
		return false
	}
	if !f.isWriteable(e, pm, virt) {
		return false
	}
	f.applyWrite(e, value)
	f.recordWrite(num)
	f.propagate(num)
	return true
}

// Poke writes using poke_mask, bypassing privilege checks and mandatory-CSR
// policy violations.
func (f *File) Poke(num Number, value uint64, virt bool) bool {
	num = f.resolveAlias(num, virt)
	e, ok := f.lookup(num)
	if !ok || !e.implemented {
		return false
	}
	e.rawPoke(f, value)
	f.propagate(num)
	return true
}

func (f *File) recordWrite(num Number) {
	f.lastWritten = append(f.lastWritten, num)
}

// TakeLastWritten drains and returns the CSRs touched since the previous
// call, the trace the front end consumes.
func (f *File) TakeLastWritten() []Number {
	out := f.lastWritten
	f.lastWritten = nil
	return out
}

// ConfigCsr sets implementation/reset/masks for a CSR by number. It refuses
// to un-implement a mandatory CSR.
func (f *File) ConfigCsr(num Number, implemented bool, reset, wmask, pmask uint64, shared bool) bool {
	e, ok := f.lookup(num)
	if !ok {
		return false
	}
	if e.mandatory && !implemented {
		f.log("refusing to un-implement mandatory CSR", "csr", e.name)
		return false
	}
	e.implemented = implemented
	e.resetValue = reset
	e.writeMask = wmask
	e.pokeMask = pmask
	e.shared = shared
	return true
}

// ConfigCsrByUser is ConfigCsr keyed by name instead of number.
func (f *File) ConfigCsrByUser(name string, implemented bool, reset, wmask, pmask uint64, shared bool) bool {
	for num, e := range f.entries {
		if e.name == name {
			return f.ConfigCsr(num, implemented, reset, wmask, pmask, shared)
		}
	}
	return false
}

// Reset restores every implemented CSR to its reset value, then applies the
// hyper-enabled MIDELEG force-ones fixup.
func (f *File) Reset() {
	for _, e := range f.entries {
		if e.implemented {
			e.value = e.resetValue
		}
	}
	f.shadowSie = 0
	if f.caps.Hypervisor {
		if e, ok := f.entries[Mideleg]; ok {
			e.value |= midelegForceOnes
		}
	}
}

// ImplementedNumbers returns every implemented CSR number in ascending
// order, the enumeration the front end's persisted-state dump walks (6.3:
// peek emits only implemented CSRs).
func (f *File) ImplementedNumbers() []Number {
	out := make([]Number, 0, len(f.entries))
	for num, e := range f.entries {
		if e.implemented {
			out = append(out, num)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Name returns the registered mnemonic for num, or "" if undefined.
func (f *File) Name(num Number) string {
	if e, ok := f.entries[num]; ok {
		return e.name
	}
	return ""
}

// TieSharedCsrsTo makes this file's copies of nums share backing storage
// with other's: both files' maps point at the same *entry, so a write
// through either hart is immediately visible to the other. Safe without
// locks because the top-level simulator steps one hart to completion before
// moving to the next.
func (f *File) TieSharedCsrsTo(other *File, nums []Number) {
	for _, n := range nums {
		if oe, ok := other.lookup(n); ok {
			f.entries[n] = oe
		}
	}
}
