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

import "github.com/pkg/errors"

// wordArray is a dense array of fixed-width (1..64 bit) unsigned integers
// packed into a uint64 backing store, the same representation kmers.H uses
// for kmerCountExactLookup's suffix and value tables. It trades the 8x (or
// worse) overhead of a []uint64-per-entry array for exactly width bits per
// entry, at the cost of a shift/mask on every access.
type wordArray struct {
	width uint
	n     uint64
	words []uint64
}

// newWordArray allocates a wordArray holding n entries of width bits each.
func newWordArray(width uint, n uint64) (*wordArray, error) {
	if width == 0 || width > 64 {
		return nil, errors.Errorf("merylkmer: wordArray width %d out of range [1,64]", width)
	}
	totalBits := n * uint64(width)
	numWords := (totalBits + 63) / 64
	return &wordArray{width: width, n: n, words: make([]uint64, numWords)}, nil
}

// Get returns the value at index i.
func (a *wordArray) Get(i uint64) uint64 {
	bitPos := i * uint64(a.width)
	wordIdx := bitPos >> 6
	bitOff := uint(bitPos & 63)

	lo := a.words[wordIdx] >> bitOff
	if bitOff+a.width <= 64 {
		return lo & a.mask()
	}
	// Value straddles two words.
	hi := a.words[wordIdx+1] << (64 - bitOff)
	return (lo | hi) & a.mask()
}

// Set stores value at index i, truncated to the array's bit width.
func (a *wordArray) Set(i uint64, value uint64) {
	value &= a.mask()
	bitPos := i * uint64(a.width)
	wordIdx := bitPos >> 6
	bitOff := uint(bitPos & 63)

	a.words[wordIdx] &^= a.mask() << bitOff
	a.words[wordIdx] |= value << bitOff

	if bitOff+a.width > 64 {
		spill := bitOff + a.width - 64
		a.words[wordIdx+1] &^= (uint64(1)<<spill - 1)
		a.words[wordIdx+1] |= value >> (a.width - spill)
	}
}

// Len returns the number of entries the array holds.
func (a *wordArray) Len() uint64 { return a.n }

// SizeBytes reports the backing store's footprint, for memory accounting.
func (a *wordArray) SizeBytes() int64 { return int64(len(a.words)) * 8 }

func (a *wordArray) mask() uint64 {
	if a.width == 64 {
		return ^uint64(0)
	}
	return uint64(1)<<a.width - 1
}
