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

import "testing"

func TestCountStatsBasic(t *testing.T) {
	s := NewCountStats()
	s.AddValue(1)
	s.AddValue(1)
	s.AddValue(2)
	s.AddValue(5)
	s.AddValue(0) // ignored

	if s.NumUnique() != 2 {
		t.Errorf("NumUnique() = %d, want 2", s.NumUnique())
	}
	if s.NumDistinct() != 4 {
		t.Errorf("NumDistinct() = %d, want 4", s.NumDistinct())
	}
	if s.NumTotal() != 1+1+2+5 {
		t.Errorf("NumTotal() = %d, want %d", s.NumTotal(), 1+1+2+5)
	}
}

func TestCountStatsHistogramAscending(t *testing.T) {
	s := NewCountStats()
	for _, v := range []uint64{5, 1, 1, 3, 100000, 100000, 100000} {
		s.AddValue(v)
	}

	n := s.HistogramLength()
	if n == 0 {
		t.Fatal("expected a non-empty histogram")
	}
	var last uint64
	for i := 0; i < n; i++ {
		v := s.HistogramValue(i)
		if i > 0 && v <= last {
			t.Fatalf("histogram values not strictly ascending at index %d: %d <= %d", i, v, last)
		}
		last = v
	}

	// value 100000 exceeds the dense histogram's default size, so it must
	// land in the sparse tail but still appear in the unpacked histogram.
	found := false
	for i := 0; i < n; i++ {
		if s.HistogramValue(i) == 100000 {
			found = true
			if s.HistogramOccurrences(i) != 3 {
				t.Errorf("occurrences for value 100000 = %d, want 3", s.HistogramOccurrences(i))
			}
		}
	}
	if !found {
		t.Error("sparse-tail value 100000 missing from unpacked histogram")
	}
}

func TestCountStatsMerge(t *testing.T) {
	a := NewCountStats()
	a.AddValue(1)
	a.AddValue(2)

	b := NewCountStats()
	b.AddValue(1)
	b.AddValue(3)

	a.Merge(b)

	if a.NumDistinct() != 4 {
		t.Errorf("NumDistinct() after merge = %d, want 4", a.NumDistinct())
	}
	if a.NumUnique() != 2 {
		t.Errorf("NumUnique() after merge = %d, want 2", a.NumUnique())
	}
	if a.NumTotal() != 1+2+1+3 {
		t.Errorf("NumTotal() after merge = %d, want %d", a.NumTotal(), 1+2+1+3)
	}
}
