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

func TestParseKmerAndString(t *testing.T) {
	if err := SetK(4); err != nil {
		t.Fatal(err)
	}
	k, err := ParseKmer("ACGT")
	if err != nil {
		t.Fatal(err)
	}
	if got := k.String(); got != "ACGT" {
		t.Errorf("String() = %q, want ACGT", got)
	}
}

func TestParseKmerWrongLength(t *testing.T) {
	if err := SetK(4); err != nil {
		t.Fatal(err)
	}
	if _, err := ParseKmer("ACG"); err == nil {
		t.Error("expected an error for a too-short k-mer string")
	}
}

func TestParseKmerInvalidBase(t *testing.T) {
	if err := SetK(3); err != nil {
		t.Fatal(err)
	}
	if _, err := ParseKmer("ACx"); err == nil {
		t.Error("expected an error for an invalid base")
	}
}

func TestReverseComplementRoundTrip(t *testing.T) {
	for k := 1; k <= MaxK; k++ {
		if err := SetK(k); err != nil {
			t.Fatal(err)
		}
		seen := make(map[Kmer]bool)
		n := uint64(1) << uint(2*k)
		if n > 4096 {
			n = 4096 // keep the sweep cheap for larger k
		}
		for i := uint64(0); i < n; i++ {
			km := Kmer(i)
			rc := km.ReverseComplement()
			if rc.ReverseComplement() != km {
				t.Fatalf("k=%d: reverse complement is not its own inverse for %d", k, i)
			}
			seen[rc] = true
		}
	}
}

func TestReverseComplementKnownValue(t *testing.T) {
	if err := SetK(4); err != nil {
		t.Fatal(err)
	}
	k, err := ParseKmer("ACGT")
	if err != nil {
		t.Fatal(err)
	}
	// complement of ACGT is TGCA, reversed is ACGT: ACGT is a palindrome.
	if !k.IsPalindrome() {
		t.Errorf("ACGT should be its own reverse complement, got %s", k.ReverseComplement())
	}
}

func TestCanonicalIsSmaller(t *testing.T) {
	if err := SetK(5); err != nil {
		t.Fatal(err)
	}
	k, err := ParseKmer("AAAAA")
	if err != nil {
		t.Fatal(err)
	}
	c := k.Canonical()
	rc := k.ReverseComplement()
	if c != k && c != rc {
		t.Fatalf("canonical value %v is neither the k-mer nor its reverse complement", c)
	}
	if c > k || c > rc {
		t.Errorf("canonical value should be the minimum of the two")
	}
}

func TestSplitAndSetPrefixSuffix(t *testing.T) {
	if err := SetK(6); err != nil {
		t.Fatal(err)
	}
	k, err := ParseKmer("ACGTAC")
	if err != nil {
		t.Fatal(err)
	}
	prefix, suffix := k.Split(4)
	rebuilt := SetPrefixSuffix(prefix, suffix, uint(2*K()-4))
	if rebuilt != k {
		t.Errorf("Split/SetPrefixSuffix round trip failed: got %v, want %v", rebuilt, k)
	}
}

func TestPushRightRejectsInvalidBase(t *testing.T) {
	if err := SetK(3); err != nil {
		t.Fatal(err)
	}
	var k Kmer
	if k.PushRight('N') {
		t.Error("PushRight should reject an N base")
	}
}
