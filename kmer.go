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

import "fmt"

// MaxK is the largest k-mer length this package supports: a k-mer must fit
// in the low 2*K bits of a uint64.
const MaxK = 32

// baseToCode maps an ASCII base to its 2-bit code under the non-standard
// encoding A=00, C=01, G=11, T=10, chosen so complement is XOR 0b10.
// invalidBase marks any byte that is not in [ACGTacgt].
const invalidBase = 0xff

var baseToCode [256]byte

// codeToBase maps a 2-bit code directly back to its base character, the
// inverse of baseToCode: A=00, C=01, G=11, T=10.
var codeToBase = [4]byte{'A', 'C', 'T', 'G'}

func init() {
	for i := range baseToCode {
		baseToCode[i] = invalidBase
	}
	baseToCode['A'], baseToCode['a'] = 0x0, 0x0
	baseToCode['C'], baseToCode['c'] = 0x1, 0x1
	baseToCode['G'], baseToCode['g'] = 0x3, 0x3
	baseToCode['T'], baseToCode['t'] = 0x2, 0x2

	codeToBase[0x0] = 'A'
	codeToBase[0x1] = 'C'
	codeToBase[0x3] = 'G'
	codeToBase[0x2] = 'T'
}

// K is the process-wide active k-mer length, in bases. It must be set once
// via SetK before any Kmer or KmerIterator operation and never changed
// afterwards; changing it mid-run is undefined, per the source this package
// is modeled on (meryl's kmerTiny::setSize).
var (
	kSize       uint32
	kFullMask   uint64
	kLeftMask   uint64
	kLeftShift  uint32
	kShiftAlign uint32 // 64 - 2K, used to re-align after the reverse swap cascade
)

// SetK sets the process-wide k-mer length. k must be in [1, MaxK].
// Call it once, before constructing any Kmer or KmerIterator.
func SetK(k int) error {
	if k < 1 || k > MaxK {
		return fmt.Errorf("merylkmer: k-mer length %d out of range [1,%d]", k, MaxK)
	}
	kSize = uint32(k)
	kFullMask = uint64Mask(k * 2)
	kLeftMask = uint64Mask(k*2 - 2)
	kLeftShift = uint32((2*k - 2) % 64)
	kShiftAlign = uint32(64 - k*2)
	return nil
}

// K returns the currently active k-mer length.
func K() int { return int(kSize) }

func uint64Mask(bits int) uint64 {
	if bits <= 0 {
		return 0
	}
	if bits >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << uint(bits)) - 1
}

// Kmer is a compact 2-bit-per-base encoding of up to MaxK bases, low-order
// bit aligned. The encoding is A=00, C=01, G=11, T=10 so that complementing
// a base is XOR 0b10 on its 2-bit code.
type Kmer uint64

// PushRight appends base (an ASCII byte) to the low end of the k-mer,
// shifting existing bases left (growing the forward k-mer as a sequence is
// scanned left to right). Returns false if base is not in [ACGTacgt]; the
// receiver is unmodified in that case.
func (k *Kmer) PushRight(base byte) bool {
	code := baseToCode[base]
	if code == invalidBase {
		return false
	}
	*k = Kmer((uint64(*k)<<2)&kFullMask | uint64(code))
	return true
}

// PushLeft inserts the complement of base at the high end of the k-mer,
// shifting existing bases right (growing the reverse-complement k-mer as a
// sequence is scanned left to right). Returns false if base is invalid.
func (k *Kmer) PushLeft(base byte) bool {
	code := baseToCode[base]
	if code == invalidBase {
		return false
	}
	*k = Kmer((uint64(*k)>>2)&kLeftMask | (uint64(code)^0x2)<<kLeftShift)
	return true
}

// complementMask is 0xAAAA...AA truncated to the active 2K bits: XOR with it
// complements every base in the k-mer (since 00<->10 and 01<->11 under
// A=00 C=01 G=11 T=10).
func complementMask() uint64 {
	return 0xAAAAAAAAAAAAAAAA & kFullMask
}

// ReverseComplement returns the reverse complement of k under the active K.
func (k Kmer) ReverseComplement() Kmer {
	m := uint64(k) ^ complementMask()

	m = ((m >> 2) & 0x3333333333333333) | ((m << 2) & 0xcccccccccccccccc)
	m = ((m >> 4) & 0x0f0f0f0f0f0f0f0f) | ((m << 4) & 0xf0f0f0f0f0f0f0f0)
	m = ((m >> 8) & 0x00ff00ff00ff00ff) | ((m << 8) & 0xff00ff00ff00ff00)
	m = ((m >> 16) & 0x0000ffff0000ffff) | ((m << 16) & 0xffff0000ffff0000)
	m = ((m >> 32) & 0x00000000ffffffff) | ((m << 32) & 0xffffffff00000000)

	m >>= kShiftAlign
	m &= kFullMask

	return Kmer(m)
}

// IsCanonical reports whether k is its own canonical representative, i.e.
// k <= reverse_complement(k).
func (k Kmer) IsCanonical() bool {
	return k <= k.ReverseComplement()
}

// IsPalindrome reports whether k equals its own reverse complement.
func (k Kmer) IsPalindrome() bool {
	return k == k.ReverseComplement()
}

// Canonical returns the canonical representative of k: the smaller of k and
// its reverse complement.
func (k Kmer) Canonical() Kmer {
	rc := k.ReverseComplement()
	if k <= rc {
		return k
	}
	return rc
}

// SetPrefixSuffix constructs a Kmer from a prefix occupying the high bits
// and a suffix occupying the low width bits: mer = (prefix << width) | suffix.
func SetPrefixSuffix(prefix, suffix uint64, width uint) Kmer {
	return Kmer((prefix << width) | suffix)
}

// Split divides the k-mer's 2K bits into a high-order prefix of prefixBits
// bits and a low-order suffix of the remaining bits.
func (k Kmer) Split(prefixBits uint) (prefix, suffix uint64) {
	suffixBits := uint(kSize)*2 - prefixBits
	mask := uint64Mask(int(suffixBits))
	return uint64(k) >> suffixBits, uint64(k) & mask
}

// String renders the k-mer as an uppercase base string of length K, most
// significant base first.
func (k Kmer) String() string {
	buf := make([]byte, kSize)
	for i := uint32(0); i < kSize; i++ {
		code := (uint64(k) >> (2 * i)) & 0x3
		buf[kSize-i-1] = codeToBase[code]
	}
	return string(buf)
}

// ParseKmer encodes an ASCII base string of length K into a Kmer. It
// returns an error if s has the wrong length or contains an invalid base.
func ParseKmer(s string) (Kmer, error) {
	if uint32(len(s)) != kSize {
		return 0, fmt.Errorf("merylkmer: expected %d bases, got %d", kSize, len(s))
	}
	var k Kmer
	for i := 0; i < len(s); i++ {
		if !k.PushRight(s[i]) {
			return 0, fmt.Errorf("merylkmer: invalid base %q at position %d", s[i], i)
		}
	}
	return k, nil
}
