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

// KmerIterator slides a window of the active K over a caller-owned ASCII
// base buffer, producing the forward k-mer and its reverse complement at
// each position. It is stack-scope: rebind it to a new buffer with Reset
// rather than allocating a new one per sequence.
type KmerIterator struct {
	buffer []byte
	pos    int

	loaded uint32 // valid bases accumulated since the last invalid base, capped at needed
	needed uint32 // K - 1; once loaded has reached it, each further valid base completes a k-mer

	fmer Kmer
	rmer Kmer
}

// NewKmerIterator creates an iterator bound to buffer, in the not-yet-valid
// state. SetK must have been called already.
func NewKmerIterator(buffer []byte) *KmerIterator {
	it := &KmerIterator{}
	it.Reset(buffer)
	return it
}

// Reset rebinds the iterator to a new buffer (or the same one, to restart),
// clearing the loaded-base count without otherwise retaining state.
func (it *KmerIterator) Reset(buffer []byte) {
	it.buffer = buffer
	it.pos = 0
	it.loaded = 0
	it.needed = kSize - 1
	it.fmer = 0
	it.rmer = 0
}

// Next consumes bases until a full k-mer ends at the current position and
// then returns true, making it available via Fmer/Rmer. A byte outside [ACGTacgt] resets the
// window: the next K consecutive valid bases are required before Next
// reports true again. Next returns false once the buffer is exhausted.
func (it *KmerIterator) Next() bool {
	for it.pos < len(it.buffer) {
		b := it.buffer[it.pos]
		it.pos++

		if baseToCode[b] == invalidBase {
			it.loaded = 0
			continue
		}

		it.fmer.PushRight(b)
		it.rmer.PushLeft(b)

		if it.loaded < it.needed {
			it.loaded++
			continue
		}

		return true
	}
	return false
}

// Fmer returns the forward k-mer ending at the iterator's current position.
// Valid only immediately after Next returns true.
func (it *KmerIterator) Fmer() Kmer { return it.fmer }

// Rmer returns the reverse-complement k-mer ending at the iterator's
// current position. Valid only immediately after Next returns true.
func (it *KmerIterator) Rmer() Kmer { return it.rmer }

// Canonical returns the canonical (smaller) of Fmer and Rmer.
func (it *KmerIterator) Canonical() Kmer {
	if it.fmer <= it.rmer {
		return it.fmer
	}
	return it.rmer
}
