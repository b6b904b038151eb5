/*
 * rvcore - Vector register file.
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

// Package vector models the Vector Register File: a fixed-width byte array
// with a cached vtype/vl/vstart and a legality matrix gating SEW x LMUL
// combinations.
package vector

import (
	"encoding/binary"
	"fmt"
)

const RegCount = 32

// Lmul is the group multiplier, encoded the way vtype.vlmul is: eighth
// through half are negative "fractional" settings.
type Lmul int

const (
	LmulEighth Lmul = -3 + iota
	LmulQuarter
	LmulHalf
	LmulOne
	LmulTwo
	LmulFour
	LmulEight
)

// x8 returns the group multiplier scaled by 8, so it is always an integer:
// LmulEighth -> 1, LmulOne -> 8, LmulEight -> 64.
func (l Lmul) x8() int {
	if l >= LmulOne {
		return 8 << uint(l-LmulOne)
	}
	return 8 >> uint(LmulOne-l)
}

// Sew is the selected element width in bytes.
type Sew int

const (
	SewByte   Sew = 1
	SewHalf   Sew = 2
	SewWord   Sew = 4
	SewDouble Sew = 8
)

func (s Sew) bits() int { return int(s) * 8 }

// VType is the decoded vtype CSR.
type VType struct {
	Sew           Sew
	Lmul          Lmul
	TailAgnostic  bool
	MaskAgnostic  bool
	Illegal       bool
}

// Config describes the legality matrix boundaries, mirroring the
// constructor arguments of the reference vector unit.
type Config struct {
	BytesPerReg   int
	MinElemBytes  int
	MaxElemBytes  int
	MinSewPerLmul map[Lmul]Sew
	MaxSewPerLmul map[Lmul]Sew
}

// File is one hart's vector register file.
type File struct {
	cfg         Config
	data        []byte
	legal       map[Lmul]map[Sew]bool
	vtype       VType
	vl          uint64
	vstart      uint64
	maskAllOnes bool
	tailAllOnes bool

	lastWrittenReg   int
	lastGroupX8      int
	lastSnapshotTook bool
	lastSnapshot     []byte
}

// allLmuls enumerates every representable group multiplier for legality-
// matrix construction.
var allLmuls = []Lmul{LmulEighth, LmulQuarter, LmulHalf, LmulOne, LmulTwo, LmulFour, LmulEight}
var allSews = []Sew{SewByte, SewHalf, SewWord, SewDouble}

// NewFile builds an unconfigured vector file; Configure must be called before
// any element access.
func NewFile() *File {
	return &File{lastWrittenReg: -1}
}

// Configure validates cfg and (re)allocates the backing byte array. Illegal
// (SEW, LMUL) pairs simply have their legality flag left false; Configure
// itself only fails (returning false, leaving prior state untouched) for
// structurally invalid parameters.
func (f *File) Configure(cfg Config) bool {
	if !isPowerOfTwo(cfg.BytesPerReg) || cfg.BytesPerReg < 4 || cfg.BytesPerReg > 4096 {
		return false
	}
	if !isPowerOfTwo(cfg.MinElemBytes) || !isPowerOfTwo(cfg.MaxElemBytes) {
		return false
	}
	if cfg.MinElemBytes > cfg.MaxElemBytes || cfg.MaxElemBytes > cfg.BytesPerReg {
		return false
	}

	f.cfg = cfg
	f.data = make([]byte, RegCount*cfg.BytesPerReg)
	f.legal = make(map[Lmul]map[Sew]bool, len(allLmuls))

	for _, l := range allLmuls {
		f.legal[l] = make(map[Sew]bool, len(allSews))
		for _, s := range allSews {
			f.legal[l][s] = f.computeLegal(l, s)
		}
	}
	return true
}

func (f *File) computeLegal(l Lmul, s Sew) bool {
	min, max := f.cfg.MinElemBytes, f.cfg.MaxElemBytes
	if lo, ok := f.cfg.MinSewPerLmul[l]; ok {
		if int(s) < int(lo) {
			return false
		}
	}
	if hi, ok := f.cfg.MaxSewPerLmul[l]; ok {
		if int(s) > int(hi) {
			return false
		}
	}
	if int(s) < min || int(s) > max {
		return false
	}
	return l.x8() >= (8*min)/max
}

// LegalConfig reports whether (sew, lmul) is a legal vector configuration.
func (f *File) LegalConfig(s Sew, l Lmul) bool {
	row, ok := f.legal[l]
	if !ok {
		return false
	}
	return row[s]
}

func isPowerOfTwo(v int) bool { return v > 0 && v&(v-1) == 0 }

// BytesPerReg returns the configured per-register width.
func (f *File) BytesPerReg() int { return f.cfg.BytesPerReg }

// Vlmax returns the maximum element count for a group multiplier scaled by
// 8 and an element width in bits.
func (f *File) Vlmax(lmulX8 int, sewBits int) uint64 {
	return uint64(lmulX8) * uint64(f.cfg.BytesPerReg) / uint64(sewBits)
}

// ElemCount returns the cached vl.
func (f *File) ElemCount() uint64 { return f.vl }

// VType returns the cached vtype.
func (f *File) VType() VType { return f.vtype }

// VStart returns the cached vstart.
func (f *File) VStart() uint64 { return f.vstart }

// SetVStart sets the cached vstart (from a write to the vstart CSR).
func (f *File) SetVStart(v uint64) { f.vstart = v }

// ConfigurePolicies sets whether tail/mask-agnostic destinations are filled
// with all-ones (true) or left undisturbed (false).
func (f *File) ConfigurePolicies(tailAllOnes, maskAllOnes bool) {
	f.tailAllOnes = tailAllOnes
	f.maskAllOnes = maskAllOnes
}

// SetVl applies vsetvli semantics: computes vlmax for the requested
// (sew, lmul), clamps avl to it when legalizeAvl is true (otherwise an
// illegal avl sets vtype.vill), and caches the result.
func (f *File) SetVl(s Sew, l Lmul, avl uint64, legalizeAvl bool) (vl uint64, ok bool) {
	if !f.LegalConfig(s, l) {
		f.vtype = VType{Illegal: true}
		f.vl = 0
		return 0, false
	}

	vlmax := f.Vlmax(l.x8(), s.bits())

	switch {
	case avl <= vlmax:
		vl = avl
	case legalizeAvl:
		vl = vlmax
	default:
		f.vtype = VType{Illegal: true}
		f.vl = 0
		return 0, false
	}

	f.vtype = VType{Sew: s, Lmul: l, TailAgnostic: false, MaskAgnostic: false}
	f.vl = vl
	f.vstart = 0
	return vl, true
}

func (f *File) validIndex(regNum int, elemIx uint64, groupX8 int, elemSize int) bool {
	if regNum < 0 || regNum >= RegCount {
		return false
	}
	limit := uint64((f.cfg.BytesPerReg*groupX8)>>3) - uint64(elemSize)
	if elemIx*uint64(elemSize) > limit {
		return false
	}
	offset := uint64(regNum)*uint64(f.cfg.BytesPerReg) + elemIx*uint64(elemSize)
	return offset+uint64(elemSize) <= uint64(len(f.data))
}

func (f *File) offset(regNum int, elemIx uint64, elemSize int) int {
	return regNum*f.cfg.BytesPerReg + int(elemIx)*elemSize
}

// ReadU8/16/32/64 read one element of a vector register group. A read with
// an out-of-range index panics with InvalidIndex, matching the
// fail-loudly-on-programmer-error contract of the reference implementation.
func (f *File) ReadU8(reg int, elemIx uint64, groupX8 int) uint8 {
	f.checkIndex(reg, elemIx, groupX8, 1)
	return f.data[f.offset(reg, elemIx, 1)]
}

func (f *File) ReadU16(reg int, elemIx uint64, groupX8 int) uint16 {
	f.checkIndex(reg, elemIx, groupX8, 2)
	o := f.offset(reg, elemIx, 2)
	return binary.LittleEndian.Uint16(f.data[o : o+2])
}

func (f *File) ReadU32(reg int, elemIx uint64, groupX8 int) uint32 {
	f.checkIndex(reg, elemIx, groupX8, 4)
	o := f.offset(reg, elemIx, 4)
	return binary.LittleEndian.Uint32(f.data[o : o+4])
}

func (f *File) ReadU64(reg int, elemIx uint64, groupX8 int) uint64 {
	f.checkIndex(reg, elemIx, groupX8, 8)
	o := f.offset(reg, elemIx, 8)
	return binary.LittleEndian.Uint64(f.data[o : o+8])
}

func (f *File) WriteU8(reg int, elemIx uint64, groupX8 int, v uint8) {
	f.checkIndex(reg, elemIx, groupX8, 1)
	f.snapshot(reg, groupX8)
	f.data[f.offset(reg, elemIx, 1)] = v
}

func (f *File) WriteU16(reg int, elemIx uint64, groupX8 int, v uint16) {
	f.checkIndex(reg, elemIx, groupX8, 2)
	f.snapshot(reg, groupX8)
	o := f.offset(reg, elemIx, 2)
	binary.LittleEndian.PutUint16(f.data[o:o+2], v)
}

func (f *File) WriteU32(reg int, elemIx uint64, groupX8 int, v uint32) {
	f.checkIndex(reg, elemIx, groupX8, 4)
	f.snapshot(reg, groupX8)
	o := f.offset(reg, elemIx, 4)
	binary.LittleEndian.PutUint32(f.data[o:o+4], v)
}

func (f *File) WriteU64(reg int, elemIx uint64, groupX8 int, v uint64) {
	f.checkIndex(reg, elemIx, groupX8, 8)
	f.snapshot(reg, groupX8)
	o := f.offset(reg, elemIx, 8)
	binary.LittleEndian.PutUint64(f.data[o:o+8], v)
}

// ReadIndexReg is a zero-extending read for index registers, with eew given
// in bytes independent of the currently configured SEW.
func (f *File) ReadIndexReg(reg int, elemIx uint64, eew int, groupX8 int) uint64 {
	switch eew {
	case 1:
		return uint64(f.ReadU8(reg, elemIx, groupX8))
	case 2:
		return uint64(f.ReadU16(reg, elemIx, groupX8))
	case 4:
		return uint64(f.ReadU32(reg, elemIx, groupX8))
	case 8:
		return f.ReadU64(reg, elemIx, groupX8)
	default:
		panic(fmt.Sprintf("vector: invalid index element width %d", eew))
	}
}

func (f *File) checkIndex(reg int, elemIx uint64, groupX8, elemSize int) {
	if !f.validIndex(reg, elemIx, groupX8, elemSize) {
		panic(fmt.Sprintf("vector: invalid index reg=%d elemIx=%d groupX8=%d elemSize=%d", reg, elemIx, groupX8, elemSize))
	}
}

// ReadMaskBit reads bit i of mask register reg (byte i/8, bit i%8).
func (f *File) ReadMaskBit(reg int, i uint64) bool {
	o := reg*f.cfg.BytesPerReg + int(i/8)
	return f.data[o]&(1<<(i%8)) != 0
}

// WriteMaskBit writes bit i of mask register reg.
func (f *File) WriteMaskBit(reg int, i uint64, v bool) {
	o := reg*f.cfg.BytesPerReg + int(i/8)
	if v {
		f.data[o] |= 1 << (i % 8)
	} else {
		f.data[o] &^= 1 << (i % 8)
	}
}

// IsDestActive implements the tail/mask-agnostic destination policy for
// element i of a write to vd: it reports whether the computed value should
// actually be committed, and if not, what value (if any) should be written
// instead under the configured all-ones policies.
func (f *File) IsDestActive(maskReg int, i uint64, masked bool) (active bool, fill byte, overwrite bool) {
	if i >= f.vl {
		if f.tailAllOnes {
			return false, 0xff, true
		}
		return false, 0, false
	}
	if masked && !f.ReadMaskBit(maskReg, i) {
		if f.maskAllOnes {
			return false, 0xff, true
		}
		return false, 0, false
	}
	return true, 0, false
}

func (f *File) snapshot(reg int, groupX8 int) {
	f.lastWrittenReg = reg
	f.lastGroupX8 = groupX8
	if f.lastSnapshotTook {
		return
	}
	span := (f.cfg.BytesPerReg * groupX8) / 8
	start := reg * f.cfg.BytesPerReg
	end := start + span
	if end > len(f.data) {
		end = len(f.data)
	}
	f.lastSnapshot = append([]byte(nil), f.data[start:end]...)
	f.lastSnapshotTook = true
}

// ClearTraceData resets the update-tracking state captured since the last
// call, re-arming snapshot capture for the next write.
func (f *File) ClearTraceData() {
	f.lastWrittenReg = -1
	f.lastGroupX8 = 0
	f.lastSnapshotTook = false
	f.lastSnapshot = nil
}

// LastWritten returns the register, scaled group multiplier, and byte
// snapshot captured by the first write since the last ClearTraceData.
func (f *File) LastWritten() (reg int, groupX8 int, snapshot []byte) {
	return f.lastWrittenReg, f.lastGroupX8, f.lastSnapshot
}
