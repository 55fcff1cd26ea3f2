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
	"math/bits"

	"github.com/pkg/errors"
)

// ExactLookup is a packed, read-only, in-memory index over an entire
// dataset: every (suffix,value) pair bucketed by prefix, sorted ascending
// within a bucket so Value can binary-search it. It is built in two full
// passes over the dataset (count, then load) so the packed arrays can be
// sized exactly once, the way kmers.H's kmerCountExactLookup does, rather
// than growing a slice and over-allocating.
type ExactLookup struct {
	k          int
	prefixSize uint32
	suffixBits uint32

	minValue uint64
	maxValue uint64 // 0 means unbounded

	suffixBgn []uint64 // length numPrefixes+1; bucket [suffixBgn[p], suffixBgn[p+1])

	sufData *wordArray
	valData *wordArray

	nKmers        uint64
	nKmersTooLow  uint64
	nKmersTooHigh uint64
}

// binarySearchCutover is the bucket size below which Value falls back to a
// linear scan instead of continuing to bisect, per kmers.H's
// kmerCountExactLookup::value(): past a certain point the branch
// mispredicts of binary search cost more than just scanning.
const binarySearchCutover = 8

// BuildExactLookup reads the dataset at dir twice and builds an ExactLookup
// over every k-mer whose value falls in [minValue, maxValue]. maxValue==0
// means unbounded. K-mers outside the range are counted but not indexed;
// see NumTooLow and NumTooHigh.
func BuildExactLookup(dir string, minValue, maxValue uint64) (*ExactLookup, error) {
	countR, err := OpenReader(dir)
	if err != nil {
		return nil, err
	}
	defer countR.Close()

	if err := SetK(countR.K()); err != nil {
		return nil, err
	}

	el := &ExactLookup{
		k:          countR.K(),
		prefixSize: countR.PrefixSize(),
		suffixBits: countR.SuffixSize(),
		minValue:   minValue,
		maxValue:   maxValue,
	}

	numPrefixes := uint64(1) << el.prefixSize
	counts := make([]uint64, numPrefixes)
	var maxStoredValue uint64

	for countR.Next() {
		v := countR.TheValue()
		if v < minValue {
			el.nKmersTooLow++
			continue
		}
		if maxValue != 0 && v > maxValue {
			el.nKmersTooHigh++
			continue
		}
		prefix, _ := countR.TheFMer().Split(uint(el.prefixSize))
		counts[prefix]++
		el.nKmers++
		if v-minValue > maxStoredValue {
			maxStoredValue = v - minValue
		}
	}

	el.suffixBgn = make([]uint64, numPrefixes+1)
	for p := uint64(0); p < numPrefixes; p++ {
		el.suffixBgn[p+1] = el.suffixBgn[p] + counts[p]
	}

	sufWidth := uint(el.suffixBits)
	if sufWidth == 0 {
		sufWidth = 1
	}
	valWidth := uint(bits.Len64(maxStoredValue))
	if valWidth == 0 {
		valWidth = 1
	}

	sufData, err := newWordArray(sufWidth, el.nKmers)
	if err != nil {
		return nil, errors.Wrap(err, "merylkmer: allocating suffix table")
	}
	valData, err := newWordArray(valWidth, el.nKmers)
	if err != nil {
		return nil, errors.Wrap(err, "merylkmer: allocating value table")
	}
	el.sufData = sufData
	el.valData = valData

	loadR, err := OpenReader(dir)
	if err != nil {
		return nil, err
	}
	defer loadR.Close()

	cursor := make([]uint64, numPrefixes)
	copy(cursor, el.suffixBgn[:numPrefixes])

	for loadR.Next() {
		v := loadR.TheValue()
		if v < minValue {
			continue
		}
		if maxValue != 0 && v > maxValue {
			continue
		}
		prefix, suffix := loadR.TheFMer().Split(uint(el.prefixSize))
		pos := cursor[prefix]
		cursor[prefix]++
		el.sufData.Set(pos, suffix)
		el.valData.Set(pos, v-minValue)
	}

	return el, nil
}

// Value returns the stored value for k and whether k was present (within
// the build's [minValue,maxValue] range).
func (el *ExactLookup) Value(k Kmer) (uint64, bool) {
	prefix, suffix := k.Split(uint(el.prefixSize))
	lo := el.suffixBgn[prefix]
	hi := el.suffixBgn[prefix+1]

	for hi-lo > binarySearchCutover {
		mid := lo + (hi-lo)/2
		if el.sufData.Get(mid) > suffix {
			hi = mid
		} else {
			lo = mid
		}
	}
	for i := lo; i < hi; i++ {
		if el.sufData.Get(i) == suffix {
			return el.valData.Get(i) + el.minValue, true
		}
	}
	return 0, false
}

// Exists reports whether k is present in the lookup table.
func (el *ExactLookup) Exists(k Kmer) bool {
	_, ok := el.Value(k)
	return ok
}

// K returns the k-mer length this lookup table was built with.
func (el *ExactLookup) K() int { return el.k }

// NumKmers returns the number of k-mers indexed (within range).
func (el *ExactLookup) NumKmers() uint64 { return el.nKmers }

// NumTooLow returns the number of k-mers skipped for having a value below
// the build's minValue.
func (el *ExactLookup) NumTooLow() uint64 { return el.nKmersTooLow }

// NumTooHigh returns the number of k-mers skipped for having a value above
// the build's maxValue (0 if maxValue was unbounded).
func (el *ExactLookup) NumTooHigh() uint64 { return el.nKmersTooHigh }

// SizeBytes reports the packed tables' combined memory footprint.
func (el *ExactLookup) SizeBytes() int64 {
	return el.sufData.SizeBytes() + el.valData.SizeBytes() + int64(len(el.suffixBgn))*8
}
