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
	"encoding/binary"
	"fmt"
	"io"
)

// BitStream is a growable byte buffer with independent read and write bit
// cursors, used as the payload container for a Block (header + suffix
// stream + value stream). Bits are packed most-significant-bit first within
// each byte.
type BitStream struct {
	data    []byte
	wbitpos uint64 // write cursor, in bits
	rbitpos uint64 // read cursor, in bits
}

// NewBitStream returns an empty BitStream ready for writing.
func NewBitStream() *BitStream {
	return &BitStream{data: make([]byte, 0, 64)}
}

// NewBitStreamFromBytes wraps existing bytes for reading.
func NewBitStreamFromBytes(b []byte) *BitStream {
	return &BitStream{data: b}
}

// Bytes returns the underlying byte slice, sized to cover all written bits.
func (bs *BitStream) Bytes() []byte {
	n := (bs.wbitpos + 7) / 8
	if uint64(len(bs.data)) < n {
		n = uint64(len(bs.data))
	}
	return bs.data[:n]
}

func (bs *BitStream) ensure(extraBits uint64) {
	need := (bs.wbitpos + extraBits + 7) / 8
	if uint64(len(bs.data)) >= need {
		return
	}
	grown := make([]byte, need)
	copy(grown, bs.data)
	bs.data = grown
}

// PutBinary appends the low width bits of v (width in [0,64]) to the
// stream, most-significant-bit first.
func (bs *BitStream) PutBinary(v uint64, width uint) {
	if width == 0 {
		return
	}
	bs.ensure(uint64(width))
	for i := int(width) - 1; i >= 0; i-- {
		bit := byte((v >> uint(i)) & 1)
		bs.putBit(bit)
	}
}

func (bs *BitStream) putBit(bit byte) {
	byteIdx := bs.wbitpos / 8
	bitIdx := 7 - (bs.wbitpos % 8)
	if bit != 0 {
		bs.data[byteIdx] |= 1 << bitIdx
	} else {
		bs.data[byteIdx] &^= 1 << bitIdx
	}
	bs.wbitpos++
}

// GetBinary reads width bits (width in [0,64]) and returns them as a uint64.
func (bs *BitStream) GetBinary(width uint) uint64 {
	var v uint64
	for i := uint(0); i < width; i++ {
		v = (v << 1) | uint64(bs.getBit())
	}
	return v
}

func (bs *BitStream) getBit() byte {
	byteIdx := bs.rbitpos / 8
	bitIdx := 7 - (bs.rbitpos % 8)
	bs.rbitpos++
	if int(byteIdx) >= len(bs.data) {
		return 0
	}
	return (bs.data[byteIdx] >> bitIdx) & 1
}

// PutUnary appends n one-bits followed by a terminating zero-bit.
func (bs *BitStream) PutUnary(n uint64) {
	bs.ensure(n + 1)
	for i := uint64(0); i < n; i++ {
		bs.putBit(1)
	}
	bs.putBit(0)
}

// GetUnary consumes one-bits until a terminating zero-bit and returns the
// count of one-bits read.
func (bs *BitStream) GetUnary() uint64 {
	var n uint64
	for bs.getBit() == 1 {
		n++
	}
	return n
}

// Position returns the current write-bit position, usable with Restore to
// implement header-then-body protocols (e.g. patching a length field).
func (bs *BitStream) Position() uint64 { return bs.wbitpos }

// ReadPosition returns the current read-bit position.
func (bs *BitStream) ReadPosition() uint64 { return bs.rbitpos }

// Restore rewinds the write cursor to a position previously returned by
// Position, without truncating the underlying buffer.
func (bs *BitStream) Restore(pos uint64) { bs.wbitpos = pos }

// SeekRead repositions the read cursor to an absolute bit offset.
func (bs *BitStream) SeekRead(pos uint64) { bs.rbitpos = pos }

// Dump writes the stream to w as a little-endian length-prefixed byte blob:
// an 8-byte length followed by that many bytes.
func (bs *BitStream) Dump(w io.Writer) error {
	payload := bs.Bytes()
	var lenBuf [8]byte
	binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(payload)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

// Load reads a length-prefixed byte blob previously written by Dump,
// replacing the stream's contents and resetting both cursors. It returns
// (false, nil) on a clean EOF (no more blocks), and a non-nil error for any
// other failure, including a truncated read.
func Load(r io.Reader) (*BitStream, bool, error) {
	var lenBuf [8]byte
	n, err := io.ReadFull(r, lenBuf[:])
	if err != nil {
		if err == io.EOF && n == 0 {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("merylkmer: truncated block length prefix: %w", err)
	}
	size := binary.LittleEndian.Uint64(lenBuf[:])
	payload := make([]byte, size)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, false, fmt.Errorf("merylkmer: truncated block payload (%d bytes expected): %w", size, err)
	}
	return NewBitStreamFromBytes(payload), true, nil
}
