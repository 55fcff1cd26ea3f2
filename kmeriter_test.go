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

func TestKmerIteratorEmitsFiveFourMersFromEightBases(t *testing.T) {
	if err := SetK(4); err != nil {
		t.Fatal(err)
	}
	it := NewKmerIterator([]byte("ACGTACGT"))
	var got []string
	for it.Next() {
		got = append(got, it.Fmer().String())
	}
	want := []string{"ACGT", "CGTA", "GTAC", "TACG", "ACGT"}
	if len(got) != len(want) {
		t.Fatalf("got %d k-mers %v, want %d %v", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("k-mer %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestKmerIteratorResetsOnInvalidBase(t *testing.T) {
	if err := SetK(3); err != nil {
		t.Fatal(err)
	}
	it := NewKmerIterator([]byte("ACxGTA"))
	var got []string
	for it.Next() {
		got = append(got, it.Fmer().String())
	}
	want := []string{"GTA"}
	if len(got) != len(want) {
		t.Fatalf("got %d k-mers %v, want %d %v", len(got), got, len(want), want)
	}
	if got[0] != want[0] {
		t.Errorf("k-mer = %s, want %s", got[0], want[0])
	}
}

func TestKmerIteratorEmptyBuffer(t *testing.T) {
	if err := SetK(3); err != nil {
		t.Fatal(err)
	}
	it := NewKmerIterator([]byte(""))
	if it.Next() {
		t.Error("Next should return false on an empty buffer")
	}
}

func TestKmerIteratorTooShortBuffer(t *testing.T) {
	if err := SetK(5); err != nil {
		t.Fatal(err)
	}
	it := NewKmerIterator([]byte("ACG"))
	if it.Next() {
		t.Error("Next should never return true when the buffer is shorter than K")
	}
}

func TestKmerIteratorRmerIsReverseComplementOfFmer(t *testing.T) {
	if err := SetK(4); err != nil {
		t.Fatal(err)
	}
	it := NewKmerIterator([]byte("ACGTACGT"))
	for it.Next() {
		if it.Rmer() != it.Fmer().ReverseComplement() {
			t.Fatalf("Rmer() = %v, want reverse complement of Fmer() = %v", it.Rmer(), it.Fmer().ReverseComplement())
		}
	}
}

func TestKmerIteratorReset(t *testing.T) {
	if err := SetK(4); err != nil {
		t.Fatal(err)
	}
	it := NewKmerIterator([]byte("ACGTACGT"))
	var first []string
	for it.Next() {
		first = append(first, it.Fmer().String())
	}

	it.Reset([]byte("ACGTACGT"))
	var second []string
	for it.Next() {
		second = append(second, it.Fmer().String())
	}

	if len(first) != len(second) {
		t.Fatalf("reset iteration produced a different length: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("k-mer %d differs after reset: %s vs %s", i, first[i], second[i])
		}
	}
}
