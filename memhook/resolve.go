// Package memhook locates and decodes the lyric line a media player keeps in
// its own memory.
//
// The player exposes no API for its desktop lyric. Instead, the text buffer is
// found by following a fixed chain of pointers from the base of the module
// that draws the lyric, in the same way a cheat-engine pointer map is read.
package memhook

import (
	"encoding/binary"
	"fmt"

	"github.com/pkg/errors"
)

// PointerSize is the width of a pointer in the target. The supported player
// build is a 32-bit process.
const PointerSize = 4

var (
	// ErrPointerReadFailure indicates one of the hops of a pointer chain could
	// not be read.
	ErrPointerReadFailure = errors.New("pointer read failed")
	// ErrInvalidChain indicates an offset chain with no offsets.
	ErrInvalidChain = errors.New("offset chain has no offsets")
)

// PointerReader is the part of procmem.Process the resolver needs.
type PointerReader interface {
	ReadBytes(addr uint64, size int) ([]byte, error)
}

// OffsetChain is a pointer path from a module base to a value.
type OffsetChain struct {
	BaseOffset int64
	Offsets    []int64
}

// DefaultChain leads from the base of UIDeskLyric.dll to the current lyric
// line.
var DefaultChain = OffsetChain{
	BaseOffset: 0x2B7B8,
	Offsets:    []int64{0x8, 0x1F4, 0x0},
}

// PlaybackChain leads to a 4 byte counter the player updates while a track is
// playing.
var PlaybackChain = OffsetChain{
	BaseOffset: 0x23874,
	Offsets:    []int64{0x7FC},
}

func (c OffsetChain) String() string {
	s := fmt.Sprintf("[%#x]", c.BaseOffset)
	for _, off := range c.Offsets {
		s += fmt.Sprintf(" -> %#x", off)
	}
	return s
}

// Resolve walks chain starting at base and returns the final address.
//
// The pointer at base+BaseOffset is read first. Every offset but the last is
// added to the current pointer and the result dereferenced. The last offset is
// only added: the address it produces is the result, not another pointer.
// Resolution stops at the first read that fails.
func Resolve(r PointerReader, base uint64, chain OffsetChain) (uint64, error) {
	if len(chain.Offsets) == 0 {
		return 0, ErrInvalidChain
	}

	addr, err := readPointer(r, base+uint64(chain.BaseOffset))
	if err != nil {
		return 0, err
	}
	last := len(chain.Offsets) - 1
	for _, off := range chain.Offsets[:last] {
		if addr, err = readPointer(r, addr+uint64(off)); err != nil {
			return 0, err
		}
	}
	return addr + uint64(chain.Offsets[last]), nil
}

func readPointer(r PointerReader, addr uint64) (uint64, error) {
	v, err := ReadUint32(r, addr)
	if err != nil {
		return 0, errors.Wrapf(ErrPointerReadFailure, "at %#x: %v", addr, err)
	}
	return uint64(v), nil
}

// ReadUint32 reads a little endian uint32 at addr.
func ReadUint32(r PointerReader, addr uint64) (uint32, error) {
	b, err := r.ReadBytes(addr, PointerSize)
	if err != nil {
		return 0, err
	}
	if len(b) < PointerSize {
		return 0, errors.Errorf("short read at %#x: got %d bytes", addr, len(b))
	}
	return binary.LittleEndian.Uint32(b), nil
}
