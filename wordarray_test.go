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

func TestWordArrayGetSetAcrossWidths(t *testing.T) {
	for _, width := range []uint{1, 3, 7, 13, 31, 47, 64} {
		a, err := newWordArray(width, 100)
		if err != nil {
			t.Fatalf("width %d: %v", width, err)
		}
		var mask uint64
		if width == 64 {
			mask = ^uint64(0)
		} else {
			mask = uint64(1)<<width - 1
		}
		for i := uint64(0); i < 100; i++ {
			v := (i * 2654435761) & mask
			a.Set(i, v)
		}
		for i := uint64(0); i < 100; i++ {
			want := (i * 2654435761) & mask
			if got := a.Get(i); got != want {
				t.Fatalf("width %d, index %d: Get() = %d, want %d", width, i, got, want)
			}
		}
	}
}

func TestWordArrayRejectsBadWidth(t *testing.T) {
	if _, err := newWordArray(0, 10); err == nil {
		t.Error("expected an error for width 0")
	}
	if _, err := newWordArray(65, 10); err == nil {
		t.Error("expected an error for width 65")
	}
}

func TestWordArraySizeBytes(t *testing.T) {
	a, err := newWordArray(1, 65)
	if err != nil {
		t.Fatal(err)
	}
	// 65 bits need 2 uint64 words.
	if a.SizeBytes() != 16 {
		t.Errorf("SizeBytes() = %d, want 16", a.SizeBytes())
	}
}
