// Copyright © 2020-2022 Wei Shen <shenwei356@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package merylkmer

import (
	"fmt"
	"math/bits"

	"github.com/pkg/errors"
)

// Block magic numbers, little-endian on disk, spelling "merylDat" / "aFile00\n".
// BitStream fields are most-significant-bit first, so the header codec
// byte-swaps these two words on write and on read.
const (
	magic1 uint64 = 0x7461446c7972656d
	magic2 uint64 = 0x0a3030656c694661
)

// kCode/cCode values. Only these are defined; any other value on load is
// fatal, per the "reserve explicit enum values" design note.
const (
	kCodeUnaryBinary uint8 = 1

	cCode32 uint8 = 1
	cCode64 uint8 = 2
)

// ErrBadMagic is returned when a block's leading magic numbers don't match.
var ErrBadMagic = errors.New("merylkmer: block magic number mismatch")

// ErrUnknownKCode is returned for a suffix encoding this package doesn't implement.
var ErrUnknownKCode = errors.New("merylkmer: unknown kCode")

// ErrUnknownCCode is returned for a value encoding this package doesn't implement.
var ErrUnknownCCode = errors.New("merylkmer: unknown cCode")

// BlockHeader is the fixed-width metadata that precedes a block's suffix
// and value streams.
type BlockHeader struct {
	Prefix     uint64
	NKmers     uint64
	KCode      uint8
	UnaryBits  uint32
	BinaryBits uint32
	K1         uint64 // reserved
	CCode      uint8
	C1         uint64 // unused
	C2         uint64 // unused
}

// chooseBinaryBits picks the binary-field width that minimizes the combined
// unary+binary length for nKmers suffixes spread over suffixBits bits, per
// spec.md §4.3: binaryBits = max(0, suffixBits - ceil(log2(nKmers+1))).
func chooseBinaryBits(nKmers uint64, suffixBits uint32) uint32 {
	if nKmers == 0 {
		return suffixBits
	}
	ceilLog2 := uint32(bits.Len64(nKmers)) // ceil(log2(nKmers+1)) == bit-length of nKmers
	if ceilLog2 > suffixBits {
		return 0
	}
	return suffixBits - ceilLog2
}

// chooseCCode picks the smallest value encoding that can hold every value.
func chooseCCode(values []uint64) uint8 {
	for _, v := range values {
		if v > 0xffffffff {
			return cCode64
		}
	}
	return cCode32
}

// EncodeBlock writes one block: header, then suffixes (unary-high +
// binary-low), then values, into a fresh BitStream. suffixes must be
// non-decreasing and aligned 1:1 with values; suffixBits is the width of the
// suffix space (2K - prefixSize). Equal consecutive suffixes are allowed
// (encoded via a zero-length unary gap) so multi-set datasets can preserve
// duplicate k-mers; a decrease is still rejected.
func EncodeBlock(prefix uint64, suffixes, values []uint64, suffixBits uint32) (*BitStream, error) {
	if len(suffixes) != len(values) {
		return nil, errors.Errorf("merylkmer: suffixes/values length mismatch (%d != %d)", len(suffixes), len(values))
	}

	nKmers := uint64(len(suffixes))
	binaryBits := chooseBinaryBits(nKmers, suffixBits)
	unaryBits := suffixBits - binaryBits
	_ = unaryBits // not stored directly as a width; kept in header for documentation/debugging

	cCode := chooseCCode(values)

	h := BlockHeader{
		Prefix:     prefix,
		NKmers:     nKmers,
		KCode:      kCodeUnaryBinary,
		UnaryBits:  suffixBits - binaryBits,
		BinaryBits: binaryBits,
		CCode:      cCode,
	}

	bs := NewBitStream()
	writeMagicAndHeader(bs, h)

	var prevHigh uint64
	binaryMask := uint64Mask(int(binaryBits))
	for i, suf := range suffixes {
		if i > 0 && suf < suffixes[i-1] {
			return nil, errors.Errorf("merylkmer: suffixes not non-decreasing at index %d", i)
		}
		high := suf >> binaryBits
		low := suf & binaryMask
		bs.PutUnary(high - prevHigh)
		bs.PutBinary(low, uint(binaryBits))
		prevHigh = high
	}

	switch cCode {
	case cCode32:
		for _, v := range values {
			bs.PutBinary(v, 32)
		}
	case cCode64:
		for _, v := range values {
			bs.PutBinary(v, 64)
		}
	}

	return bs, nil
}

func writeMagicAndHeader(bs *BitStream, h BlockHeader) {
	bs.PutBinary(bits.ReverseBytes64(magic1), 64)
	bs.PutBinary(bits.ReverseBytes64(magic2), 64)
	bs.PutBinary(h.Prefix, 64)
	bs.PutBinary(h.NKmers, 64)
	bs.PutBinary(uint64(h.KCode), 8)
	bs.PutBinary(uint64(h.UnaryBits), 32)
	bs.PutBinary(uint64(h.BinaryBits), 32)
	bs.PutBinary(h.K1, 64)
	bs.PutBinary(uint64(h.CCode), 8)
	bs.PutBinary(h.C1, 64)
	bs.PutBinary(h.C2, 64)
}

// DecodeHeader reads the magic numbers and fixed-width header fields from
// the front of bs. The caller must have positioned bs's read cursor at the
// start of the block (normally 0, for a freshly loaded block BitStream).
func DecodeHeader(bs *BitStream) (BlockHeader, error) {
	m1 := bits.ReverseBytes64(bs.GetBinary(64))
	m2 := bits.ReverseBytes64(bs.GetBinary(64))
	if m1 != magic1 || m2 != magic2 {
		return BlockHeader{}, errors.Wrapf(ErrBadMagic, "got 0x%016x 0x%016x", m1, m2)
	}

	var h BlockHeader
	h.Prefix = bs.GetBinary(64)
	h.NKmers = bs.GetBinary(64)
	h.KCode = uint8(bs.GetBinary(8))
	h.UnaryBits = uint32(bs.GetBinary(32))
	h.BinaryBits = uint32(bs.GetBinary(32))
	h.K1 = bs.GetBinary(64)
	h.CCode = uint8(bs.GetBinary(8))
	h.C1 = bs.GetBinary(64)
	h.C2 = bs.GetBinary(64)
	return h, nil
}

// DecodeBlock reads a full block (header already consumed by the caller via
// DecodeHeader, or not — DecodeBlock re-reads from the start) and returns
// the aligned suffix and value arrays.
func DecodeBlock(bs *BitStream) (BlockHeader, []uint64, []uint64, error) {
	bs.SeekRead(0)
	h, err := DecodeHeader(bs)
	if err != nil {
		return h, nil, nil, err
	}

	if h.KCode != kCodeUnaryBinary {
		return h, nil, nil, errors.Wrapf(ErrUnknownKCode, "kCode=%d", h.KCode)
	}

	suffixes := make([]uint64, h.NKmers)
	values := make([]uint64, h.NKmers)

	var running uint64
	for i := uint64(0); i < h.NKmers; i++ {
		running += bs.GetUnary()
		low := bs.GetBinary(uint(h.BinaryBits))
		suffixes[i] = (running << h.BinaryBits) | low
	}

	switch h.CCode {
	case cCode32:
		for i := uint64(0); i < h.NKmers; i++ {
			values[i] = bs.GetBinary(32)
		}
	case cCode64:
		for i := uint64(0); i < h.NKmers; i++ {
			values[i] = bs.GetBinary(64)
		}
	default:
		return h, nil, nil, errors.Wrapf(ErrUnknownCCode, "cCode=%d", h.CCode)
	}

	return h, suffixes, values, nil
}

func (h BlockHeader) String() string {
	return fmt.Sprintf("block prefix=0x%x nKmers=%d kCode=%d unaryBits=%d binaryBits=%d cCode=%d",
		h.Prefix, h.NKmers, h.KCode, h.UnaryBits, h.BinaryBits, h.CCode)
}
