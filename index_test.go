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

func TestMasterIndexWriteReadRoundTrip(t *testing.T) {
	stats := NewCountStats()
	stats.AddValue(1)
	stats.AddValue(1)
	stats.AddValue(3)

	m := &MasterIndex{
		K:             21,
		PrefixSize:    10,
		NumFilesBits:  2,
		NumBlocksBits: 8,
		IsMultiSet:    true,
		BlockIndex: []BlockIndexEntry{
			{Prefix: 0, FileOffset: 0, NumKmers: 5},
			{Prefix: 1, FileOffset: 40, NumKmers: 7},
		},
		Stats:         stats,
		FileChecksums: []uint64{111, 222, 333, 444},
	}

	var buf bytes.Buffer
	if err := m.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}

	got, err := ReadMasterIndex(&buf)
	if err != nil {
		t.Fatal(err)
	}

	if got.K != m.K || got.PrefixSize != m.PrefixSize ||
		got.NumFilesBits != m.NumFilesBits || got.NumBlocksBits != m.NumBlocksBits ||
		got.IsMultiSet != m.IsMultiSet {
		t.Fatalf("header mismatch: got %+v", got)
	}
	if got.SourceVersion != currentIndexVersion {
		t.Errorf("SourceVersion = %d, want %d", got.SourceVersion, currentIndexVersion)
	}
	if len(got.BlockIndex) != len(m.BlockIndex) {
		t.Fatalf("BlockIndex length = %d, want %d", len(got.BlockIndex), len(m.BlockIndex))
	}
	for i := range m.BlockIndex {
		if got.BlockIndex[i] != m.BlockIndex[i] {
			t.Errorf("BlockIndex[%d] = %+v, want %+v", i, got.BlockIndex[i], m.BlockIndex[i])
		}
	}
	if len(got.FileChecksums) != len(m.FileChecksums) {
		t.Fatalf("FileChecksums length = %d, want %d", len(got.FileChecksums), len(m.FileChecksums))
	}
	for i := range m.FileChecksums {
		if got.FileChecksums[i] != m.FileChecksums[i] {
			t.Errorf("FileChecksums[%d] = %d, want %d", i, got.FileChecksums[i], m.FileChecksums[i])
		}
	}
	if got.NumFiles() != 4 || got.NumBlocks() != 256 {
		t.Errorf("NumFiles/NumBlocks = %d/%d, want 4/256", got.NumFiles(), got.NumBlocks())
	}
	if got.Stats.NumUnique() != 2 || got.Stats.NumDistinct() != 3 {
		t.Errorf("Stats round trip mismatch: NumUnique=%d NumDistinct=%d", got.Stats.NumUnique(), got.Stats.NumDistinct())
	}
}

func TestMasterIndexRejectsBadMagic(t *testing.T) {
	buf := bytes.NewBufferString("not an index at all, just garbage bytes")
	_, err := ReadMasterIndex(buf)
	if err != ErrInvalidIndexFormat {
		t.Errorf("got err=%v, want ErrInvalidIndexFormat", err)
	}
}

func TestMasterIndexSlotOf(t *testing.T) {
	m := &MasterIndex{NumFilesBits: 2, NumBlocksBits: 3}
	// prefix 0b10_101 -> file 0b10=2, block 0b101=5, slot = 2*8+5 = 21.
	prefix := uint64(0b10101)
	if got := m.FileOf(prefix); got != 2 {
		t.Errorf("FileOf = %d, want 2", got)
	}
	if got := m.BlockOf(prefix); got != 5 {
		t.Errorf("BlockOf = %d, want 5", got)
	}
	if got := m.SlotOf(prefix); got != 21 {
		t.Errorf("SlotOf = %d, want 21", got)
	}
}

func TestBlockIndexEntrySetAccumulates(t *testing.T) {
	var e BlockIndexEntry
	e.Set(7, 100, 3)
	e.Set(7, 100, 4)
	if e.NumKmers != 7 {
		t.Errorf("NumKmers = %d, want 7", e.NumKmers)
	}
	if e.FileOffset != 100 {
		t.Errorf("FileOffset = %d, want 100", e.FileOffset)
	}
}

func TestBlockIndexEntrySetPanicsOnPrefixMismatch(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected a panic on mismatched prefix")
		}
	}()
	var e BlockIndexEntry
	e.Set(7, 100, 3)
	e.Set(8, 100, 1)
}
