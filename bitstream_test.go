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
	"bytes"
	"testing"
)

func TestBitStreamBinaryRoundTrip(t *testing.T) {
	bs := NewBitStream()
	values := []struct {
		v     uint64
		width uint
	}{
		{0, 1}, {1, 1}, {5, 3}, {1023, 10}, {0xdeadbeef, 32}, {^uint64(0), 64}, {0, 0},
	}
	for _, e := range values {
		bs.PutBinary(e.v, e.width)
	}

	for _, e := range values {
		got := bs.GetBinary(e.width)
		want := e.v
		if e.width < 64 {
			want &= (uint64(1) << e.width) - 1
		}
		if e.width == 0 {
			want = 0
		}
		if got != want {
			t.Errorf("GetBinary(%d) = %d, want %d", e.width, got, want)
		}
	}
}

func TestBitStreamUnaryRoundTrip(t *testing.T) {
	bs := NewBitStream()
	ns := []uint64{0, 1, 2, 7, 100}
	for _, n := range ns {
		bs.PutUnary(n)
	}
	for _, n := range ns {
		if got := bs.GetUnary(); got != n {
			t.Errorf("GetUnary() = %d, want %d", got, n)
		}
	}
}

func TestBitStreamMixedUnaryBinary(t *testing.T) {
	bs := NewBitStream()
	bs.PutUnary(3)
	bs.PutBinary(0b101, 3)
	bs.PutUnary(0)
	bs.PutBinary(0b11111111, 8)

	if got := bs.GetUnary(); got != 3 {
		t.Fatalf("GetUnary() = %d, want 3", got)
	}
	if got := bs.GetBinary(3); got != 0b101 {
		t.Fatalf("GetBinary(3) = %b, want 101", got)
	}
	if got := bs.GetUnary(); got != 0 {
		t.Fatalf("GetUnary() = %d, want 0", got)
	}
	if got := bs.GetBinary(8); got != 0xff {
		t.Fatalf("GetBinary(8) = %x, want ff", got)
	}
}

func TestBitStreamDumpLoadRoundTrip(t *testing.T) {
	bs := NewBitStream()
	bs.PutBinary(0x1234, 16)
	bs.PutUnary(5)

	var buf bytes.Buffer
	if err := bs.Dump(&buf); err != nil {
		t.Fatal(err)
	}

	loaded, ok, err := Load(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("Load reported no data for a stream that was written")
	}
	if loaded.GetBinary(16) != 0x1234 {
		t.Error("loaded binary field mismatch")
	}
	if loaded.GetUnary() != 5 {
		t.Error("loaded unary field mismatch")
	}
}

func TestBitStreamLoadCleanEOF(t *testing.T) {
	var buf bytes.Buffer
	_, ok, err := Load(&buf)
	if err != nil {
		t.Fatalf("expected a clean EOF, got error: %v", err)
	}
	if ok {
		t.Error("Load should report false for an empty reader")
	}
}

func TestBitStreamLoadTruncated(t *testing.T) {
	buf := bytes.NewBuffer([]byte{1, 2, 3})
	_, _, err := Load(buf)
	if err == nil {
		t.Error("Load should error on a truncated length prefix")
	}
}
