/*
 * rvcore - CSR storage entry.
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

// Field names one (name, width) bitfield of a CSR, kept only for
// disassembly/debug front ends.
type Field struct {
	Name  string
	Width int
}

// entry is the storage and metadata for one architected CSR number.
type entry struct {
	name string
	num  Number

	defined      bool
	implemented  bool
	mandatory    bool
	shared       bool
	userDisabled bool

	isDebug       bool
	privilege     Privilege
	mapsToVirtual bool
	isAIA         bool
	isHighHalf    bool
	isLowHalf     bool
	highHalfNum   Number
	lowHalfNum    Number
	hasHighHalf   bool
	hasLowHalf    bool

	value      uint64
	resetValue uint64
	writeMask  uint64
	readMask   uint64
	pokeMask   uint64

	// tiedTo, when tied is set, names the entry whose `value` backs this one:
	// reads return the master's bits, writes apply this entry's masks but
	// store into the master.
	tiedTo Number
	tied   bool

	fields []Field
}

func newEntry(name string, num Number, priv Privilege, reset, wmask, rmask, pmask uint64) *entry {
	return &entry{
		name:        name,
		num:         num,
		defined:     true,
		implemented: true,
		privilege:   priv,
		isDebug:     isDebug(num),
		isHighHalf:  isHighHalf(num),
		resetValue:  reset,
		value:       reset,
		writeMask:   wmask,
		readMask:    rmask,
		pokeMask:    pmask,
	}
}

// rawRead returns the entry's raw bits, following a tie if one exists.
func (e *entry) rawRead(file *File) uint64 {
	if e.tied {
		if master, ok := file.entries[e.tiedTo]; ok {
			return master.value
		}
	}
	return e.value
}

// rawWrite applies write_mask-gated bits, writing through a tie to the
// master's storage.
func (e *entry) rawWrite(file *File, v uint64) {
	if e.tied {
		if master, ok := file.entries[e.tiedTo]; ok {
			master.value = (master.value &^ e.writeMask) | (v & e.writeMask)
			return
		}
	}
	e.value = (e.value &^ e.writeMask) | (v & e.writeMask)
}

// rawPoke applies poke_mask-gated bits, ignoring write_mask, writing through
// a tie.
func (e *entry) rawPoke(file *File, v uint64) {
	if e.tied {
		if master, ok := file.entries[e.tiedTo]; ok {
			master.value = (master.value &^ e.pokeMask) | (v & e.pokeMask)
			return
		}
	}
	e.value = (e.value &^ e.pokeMask) | (v & e.pokeMask)
}
