/*
 * rvcore - Physical Memory Attribute manager.
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

// Package pma models the Physical Memory Attribute rule database: an ordered
// region list plus a table of memory-mapped registers that narrow a region's
// attributes at specific aligned addresses.
package pma

const maxRegions = 128

// Attrib is a bit-set of physical memory attributes.
type Attrib uint32

const (
	Read Attrib = 1 << iota
	Write
	Exec
	Idempotent
	AmoSwap
	AmoLogical
	AmoOther
	MemMapped
	Rsrv
	Io
	Cacheable
	MisalOk
	MisalAccFault
)

// Mapped is the bit-set tested by IsMapped.
const Mapped = Read | Write | Exec

// Amo is every amo-capable attribute bit.
const Amo = AmoSwap | AmoLogical | AmoOther

// Default is the attribute set used for ordinary RAM.
const Default = Read | Write | Exec | Idempotent | Amo | Rsrv | MisalOk

// Pma is the attribute set associated with one address.
type Pma struct {
	attrib Attrib
}

// New returns a Pma carrying the given attribute bits.
func New(a Attrib) Pma { return Pma{attrib: a} }

func (p Pma) Attrib() Attrib { return p.attrib }

func (p Pma) IsMapped() bool        { return p.attrib&Mapped != 0 }
func (p Pma) HasMemMappedReg() bool { return p.attrib&MemMapped != 0 }
func (p Pma) IsIdempotent() bool    { return p.attrib&Idempotent != 0 }
func (p Pma) IsCacheable() bool     { return p.attrib&Cacheable != 0 }
func (p Pma) IsRead() bool          { return p.attrib&Read != 0 }
func (p Pma) IsWrite() bool         { return p.attrib&Write != 0 }
func (p Pma) IsExec() bool          { return p.attrib&Exec != 0 }
func (p Pma) IsIo() bool            { return p.attrib&Io != 0 }
func (p Pma) IsAmo() bool           { return p.attrib&Amo != 0 }

// And intersects two attribute sets; used when a region's base attributes are
// narrowed by an overlapping memory-mapped register's own attributes.
func (p Pma) And(o Pma) Pma { return Pma{attrib: p.attrib & o.attrib} }

// Region is one entry of the ordered rule list.
type Region struct {
	First Uint64Addr
	Last  Uint64Addr
	Pma   Pma
	Valid bool
}

// Uint64Addr is a plain address; named for readability at call sites that
// shuttle both word and double-word accesses through the same table.
type Uint64Addr = uint64

func (r Region) overlaps(addr uint64) bool {
	return r.Valid && addr >= r.First && addr <= r.Last
}

// regSize is the memory-mapped-register access width in bytes.
type regSize int

const (
	Size4 regSize = 4
	Size8 regSize = 8
)

// MemMappedReg is one memory-mapped-register window.
type MemMappedReg struct {
	Value uint64
	Mask  uint64
	Size  regSize
	Pma   Pma
}

// Manager is the PMA rule database for one hart's address space.
type Manager struct {
	memSize    uint64
	regions    [maxRegions]Region
	regionTop  int
	mmrs       map[uint64]*MemMappedReg
	defaultPma Pma
	noAccess   Pma
}

// NewManager constructs a Manager over a memory of the given size in bytes.
func NewManager(memSize uint64) *Manager {
	return &Manager{
		memSize:    memSize,
		mmrs:       make(map[uint64]*MemMappedReg),
		defaultPma: New(Default),
		noAccess:   New(MisalOk),
	}
}

// GetPma returns the attribute set covering the word-aligned address
// containing addr.
func (m *Manager) GetPma(addr uint64) Pma {
	addr &^= 3 // word-align

	for i := 0; i < m.regionTop; i++ {
		r := m.regions[i]
		if r.overlaps(addr) {
			if !r.Pma.HasMemMappedReg() {
				return r.Pma
			}
			return m.memMappedPma(r.Pma, addr)
		}
	}

	if addr < m.memSize {
		return m.defaultPma
	}
	return m.noAccess
}

func (m *Manager) memMappedPma(base Pma, addr uint64) Pma {
	if reg, ok := m.mmrs[addr&^7]; ok {
		return base.And(reg.Pma)
	}
	if reg, ok := m.mmrs[addr]; ok {
		return base.And(reg.Pma)
	}
	return base
}

// DefineRegion sets entry ix of the ordered list (ix must be < maxRegions).
func (m *Manager) DefineRegion(ix int, first, last uint64, p Pma) bool {
	if ix < 0 || ix >= maxRegions {
		return false
	}
	m.regions[ix] = Region{First: first, Last: last, Pma: p, Valid: true}
	if ix+1 > m.regionTop {
		m.regionTop = ix + 1
	}
	return true
}

// InvalidateEntry marks entry ix unused without disturbing neighboring
// entries' ordering.
func (m *Manager) InvalidateEntry(ix int) {
	if ix < 0 || ix >= maxRegions {
		return
	}
	m.regions[ix].Valid = false
}

// DefineMemMappedReg registers an MMR window. addr must be aligned to size.
func (m *Manager) DefineMemMappedReg(addr, mask uint64, size regSize, p Pma) bool {
	if size != Size4 && size != Size8 {
		return false
	}
	if addr%uint64(size) != 0 {
		return false
	}
	m.mmrs[addr] = &MemMappedReg{Mask: mask, Size: size, Pma: p}
	return true
}

// ReadRegister returns the value of the MMR defined at addr. It takes no
// access width: two adjacent 4-byte registers are not concatenated into an
// 8-byte value, and an address with no register of its own reads as absent.
func (m *Manager) ReadRegister(addr uint64) (uint64, bool) {
	if reg, ok := m.mmrs[addr]; ok {
		return reg.Value, true
	}
	lo, okLo := m.mmrs[addr]
	hi, okHi := m.mmrs[addr+4]
	if okLo && okHi {
		return (hi.Value << 32) | (lo.Value & 0xffff_ffff), true
	}
	return 0, false
}

// WriteRegister writes an MMR, honoring its mask: bits with mask=0 are
// read-only and retain their previous value.
func (m *Manager) WriteRegister(addr, value uint64) bool {
	reg, ok := m.mmrs[addr]
	if !ok {
		return false
	}
	reg.Value = (reg.Value &^ reg.Mask) | (value & reg.Mask)
	return true
}

// OverlapsMemMappedRegs reports whether [lo, hi] intersects any registered
// MMR window.
func (m *Manager) OverlapsMemMappedRegs(lo, hi uint64) bool {
	for addr, reg := range m.mmrs {
		regHi := addr + uint64(reg.Size) - 1
		if lo <= regHi && addr <= hi {
			return true
		}
	}
	return false
}
