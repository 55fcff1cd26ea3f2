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

import "sort"

// defaultHistMax is the size of the dense low-value tail of the histogram;
// values at or above it are tracked in the sparse tail map instead.
const defaultHistMax = 1 << 16

// CountStats is an aggregated histogram of k-mer values: how many k-mers
// are unique (value==1), how many distinct k-mers are present (value>0),
// and the sum of all values, plus a dense-then-sparse histogram of value
// occurrences.
type CountStats struct {
	numUnique   uint64
	numDistinct uint64
	numTotal    uint64

	histMax uint32
	hist    []uint64          // dense tail, index by value, length histMax
	histBig map[uint64]uint64 // sparse tail, value -> occurrences

	// Populated by unpack, after loading from disk.
	histVs []uint64
	histOs []uint64
}

// NewCountStats returns an empty CountStats with the default dense-tail size.
func NewCountStats() *CountStats {
	return &CountStats{
		histMax: defaultHistMax,
		hist:    make([]uint64, defaultHistMax),
		histBig: make(map[uint64]uint64),
	}
}

// AddValue folds one k-mer's stored value into the aggregate. A value of
// zero is ignored (it represents "absent", not "present with count zero").
func (s *CountStats) AddValue(value uint64) {
	if value == 0 {
		return
	}
	if value == 1 {
		s.numUnique++
	}
	s.numDistinct++
	s.numTotal += value

	if value < uint64(s.histMax) {
		s.hist[value]++
	} else {
		s.histBig[value]++
	}
}

// NumUnique returns the number of k-mers with value exactly 1.
func (s *CountStats) NumUnique() uint64 { return s.numUnique }

// NumDistinct returns the number of k-mers with a nonzero value.
func (s *CountStats) NumDistinct() uint64 { return s.numDistinct }

// NumTotal returns the sum of all stored values.
func (s *CountStats) NumTotal() uint64 { return s.numTotal }

// unpack flattens the dense+sparse histogram into two parallel ascending
// arrays (histVs[i], histOs[i]): the i-th observed value and its occurrence
// count. Called after AddValue calls are done, or after loading from disk.
func (s *CountStats) unpack() {
	vs := make([]uint64, 0, len(s.histBig)+64)
	os := make([]uint64, 0, len(s.histBig)+64)

	for v, n := range s.hist {
		if n == 0 {
			continue
		}
		vs = append(vs, uint64(v))
		os = append(os, n)
	}
	bigVs := make([]uint64, 0, len(s.histBig))
	for v := range s.histBig {
		bigVs = append(bigVs, v)
	}
	sort.Slice(bigVs, func(i, j int) bool { return bigVs[i] < bigVs[j] })
	for _, v := range bigVs {
		vs = append(vs, v)
		os = append(os, s.histBig[v])
	}

	s.histVs = vs
	s.histOs = os
}

// HistogramLength returns the number of (value, occurrences) pairs after
// unpacking.
func (s *CountStats) HistogramLength() int {
	if s.histVs == nil {
		s.unpack()
	}
	return len(s.histVs)
}

// HistogramValue returns the i-th observed value, ascending.
func (s *CountStats) HistogramValue(i int) uint64 {
	if s.histVs == nil {
		s.unpack()
	}
	return s.histVs[i]
}

// HistogramOccurrences returns the number of k-mers with HistogramValue(i).
func (s *CountStats) HistogramOccurrences(i int) uint64 {
	if s.histOs == nil {
		s.unpack()
	}
	return s.histOs[i]
}

// Merge folds another CountStats's observations into s, used when combining
// per-file statistics gathered by parallel block writers.
func (s *CountStats) Merge(o *CountStats) {
	s.numUnique += o.numUnique
	s.numDistinct += o.numDistinct
	s.numTotal += o.numTotal
	for v, n := range o.hist {
		s.hist[v] += n
	}
	for v, n := range o.histBig {
		s.histBig[v] += n
	}
	s.histVs, s.histOs = nil, nil
}
