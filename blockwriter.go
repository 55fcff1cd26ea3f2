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
	"sort"

	"github.com/twotwotwo/sorts"
)

// blockWriterSortThreshold is the prefix-bucket size above which Finish
// reaches for the parallel sort instead of sort.Slice, mirroring kmcp's use
// of github.com/twotwotwo/sorts for its own big in-memory sorts.
const blockWriterSortThreshold = 1 << 16

// BlockWriter batches (kmer,value) pairs from arbitrary call order, bucketed
// by prefix, and defers sorting/encoding to Finish. Add is safe to call from
// a single goroutine only; separate BlockWriter instances (e.g. one per
// caller-assigned file range) may run concurrently against the same Writer.
type BlockWriter struct {
	w       *Writer
	buckets map[uint64][]kvPair
}

// Add records one (kmer,value) pair for later encoding.
func (bw *BlockWriter) Add(k Kmer, value uint64) {
	prefix, suffix := k.Split(uint(bw.w.prefixSize))
	bw.buckets[prefix] = append(bw.buckets[prefix], kvPair{suffix: suffix, value: value})
}

// Finish sorts each prefix's accumulated pairs ascending by suffix,
// collapses duplicates by summation (unless the dataset is multi-set, in
// which case duplicates are kept and emitted in sorted-by-suffix order),
// and writes one block per non-empty prefix.
func (bw *BlockWriter) Finish() error {
	prefixes := make([]uint64, 0, len(bw.buckets))
	for p := range bw.buckets {
		prefixes = append(prefixes, p)
	}
	sort.Slice(prefixes, func(i, j int) bool { return prefixes[i] < prefixes[j] })

	for _, prefix := range prefixes {
		pairs := bw.buckets[prefix]
		delete(bw.buckets, prefix)
		if len(pairs) == 0 {
			continue
		}

		if len(pairs) >= blockWriterSortThreshold {
			sorts.ByUint64(kvPairsBySuffix(pairs))
		} else {
			sort.Slice(pairs, func(i, j int) bool { return pairs[i].suffix < pairs[j].suffix })
		}

		suffixes, values := collapse(pairs, bw.w.isMultiSet)

		if err := bw.w.writeBlock(prefix, suffixes, values); err != nil {
			return err
		}
	}
	return nil
}

// collapse splits sorted pairs into aligned suffix/value arrays. In
// single-set mode, consecutive equal suffixes are summed into one entry; in
// multi-set mode every pair survives, in its sorted-by-suffix order.
func collapse(pairs []kvPair, isMultiSet bool) (suffixes, values []uint64) {
	if isMultiSet {
		suffixes = make([]uint64, len(pairs))
		values = make([]uint64, len(pairs))
		for i, p := range pairs {
			suffixes[i] = p.suffix
			values[i] = p.value
		}
		return suffixes, values
	}

	suffixes = make([]uint64, 0, len(pairs))
	values = make([]uint64, 0, len(pairs))
	for _, p := range pairs {
		if len(suffixes) > 0 && suffixes[len(suffixes)-1] == p.suffix {
			values[len(values)-1] += p.value
			continue
		}
		suffixes = append(suffixes, p.suffix)
		values = append(values, p.value)
	}
	return suffixes, values
}

// kvPairsBySuffix adapts a []kvPair to sorts.Uint64Interface for
// github.com/twotwotwo/sorts's parallel radix/merge sort.
type kvPairsBySuffix []kvPair

func (s kvPairsBySuffix) Len() int           { return len(s) }
func (s kvPairsBySuffix) Less(i, j int) bool { return s[i].suffix < s[j].suffix }
func (s kvPairsBySuffix) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }
func (s kvPairsBySuffix) Key(i int) uint64   { return s[i].suffix }
