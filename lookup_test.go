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

// buildLookupFixture writes a small dataset with k-mers AAAA(1), AAAC(5),
// AAAG(50), AAAT(500) and returns its directory.
func buildLookupFixture(t *testing.T) string {
	t.Helper()
	if err := SetK(4); err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()

	w, err := NewWriter(dir, 4, 0, 2, false)
	if err != nil {
		t.Fatal(err)
	}
	bw := w.NewBlockWriter()

	values := map[string]uint64{"AAAA": 1, "AAAC": 5, "AAAG": 50, "AAAT": 500}
	for s, v := range values {
		k, err := ParseKmer(s)
		if err != nil {
			t.Fatal(err)
		}
		bw.Add(k, v)
	}
	if err := bw.Finish(); err != nil {
		t.Fatal(err)
	}
	if err := w.Finish(); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestExactLookupFindsEveryKmer(t *testing.T) {
	dir := buildLookupFixture(t)

	el, err := BuildExactLookup(dir, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := SetK(el.K()); err != nil {
		t.Fatal(err)
	}

	cases := map[string]uint64{"AAAA": 1, "AAAC": 5, "AAAG": 50, "AAAT": 500}
	for s, want := range cases {
		k, err := ParseKmer(s)
		if err != nil {
			t.Fatal(err)
		}
		got, ok := el.Value(k)
		if !ok {
			t.Errorf("%s: not found", s)
			continue
		}
		if got != want {
			t.Errorf("%s: Value() = %d, want %d", s, got, want)
		}
	}
	if el.NumKmers() != 4 {
		t.Errorf("NumKmers() = %d, want 4", el.NumKmers())
	}

	other, err := ParseKmer("CCCC")
	if err != nil {
		t.Fatal(err)
	}
	if el.Exists(other) {
		t.Error("CCCC should not exist in the lookup table")
	}
}

func TestExactLookupRangeFiltering(t *testing.T) {
	dir := buildLookupFixture(t)

	el, err := BuildExactLookup(dir, 10, 100)
	if err != nil {
		t.Fatal(err)
	}
	if err := SetK(el.K()); err != nil {
		t.Fatal(err)
	}

	// Only AAAG(50) falls within [10,100]; AAAA(1) and AAAC(5) are too low,
	// AAAT(500) is too high.
	if el.NumKmers() != 1 {
		t.Errorf("NumKmers() = %d, want 1", el.NumKmers())
	}
	if el.NumTooLow() != 2 {
		t.Errorf("NumTooLow() = %d, want 2", el.NumTooLow())
	}
	if el.NumTooHigh() != 1 {
		t.Errorf("NumTooHigh() = %d, want 1", el.NumTooHigh())
	}

	k, err := ParseKmer("AAAG")
	if err != nil {
		t.Fatal(err)
	}
	v, ok := el.Value(k)
	if !ok || v != 50 {
		t.Errorf("AAAG: got (%d,%v), want (50,true)", v, ok)
	}

	low, err := ParseKmer("AAAA")
	if err != nil {
		t.Fatal(err)
	}
	if el.Exists(low) {
		t.Error("AAAA should be excluded by the min-value filter")
	}
}

func TestExactLookupLargeBucketBinarySearch(t *testing.T) {
	if err := SetK(6); err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()

	w, err := NewWriter(dir, 6, 0, 0, false)
	if err != nil {
		t.Fatal(err)
	}
	bw := w.NewBlockWriter()

	// A single prefix bucket (numBlocksBits=0) with more than
	// binarySearchCutover entries, to exercise the bisection path.
	n := uint64(200)
	for i := uint64(0); i < n; i++ {
		bw.Add(Kmer(i), i+1)
	}
	if err := bw.Finish(); err != nil {
		t.Fatal(err)
	}
	if err := w.Finish(); err != nil {
		t.Fatal(err)
	}

	el, err := BuildExactLookup(dir, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if el.NumKmers() != n {
		t.Fatalf("NumKmers() = %d, want %d", el.NumKmers(), n)
	}
	for i := uint64(0); i < n; i++ {
		v, ok := el.Value(Kmer(i))
		if !ok || v != i+1 {
			t.Errorf("Value(%d) = (%d,%v), want (%d,true)", i, v, ok, i+1)
		}
	}
	if _, ok := el.Value(Kmer(n + 1000)); ok {
		t.Error("out-of-range k-mer unexpectedly found")
	}
}
