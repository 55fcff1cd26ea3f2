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
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// masterMagic leads every master index file, regardless of version.
var masterMagic = [8]byte{'m', 'e', 'r', 'y', 'l', 'i', 'd', 'x'}

// Master index format versions. v01..v03 are legacy layouts this package
// can still read; v04 is the newest, always written, and additionally
// stores a per-data-file content checksum (see Writer.Finish).
const (
	indexV01 uint8 = 1
	indexV02 uint8 = 2
	indexV03 uint8 = 3
	indexV04 uint8 = 4

	currentIndexVersion = indexV04
)

// ErrInvalidIndexFormat means the master index's magic number didn't match.
var ErrInvalidIndexFormat = errors.New("merylkmer: invalid master index format")

// ErrUnsupportedIndexVersion means the version tag is not one this package understands.
var ErrUnsupportedIndexVersion = errors.New("merylkmer: unsupported master index version")

// BlockIndexEntry records where one prefix's block(s) live within a data
// file. Appending a block with the same prefix as the slot's current
// contents accumulates NumKmers and keeps the earliest FileOffset.
type BlockIndexEntry struct {
	Prefix     uint64
	FileOffset uint64
	NumKmers   uint64
}

// Set records (or accumulates into) this slot's entry for prefix. It is a
// fatal (panicking) invariant violation to call Set with a different prefix
// than one already recorded in a non-empty slot, or with a file offset
// smaller than the one already recorded — both indicate programmer error in
// the writer.
func (e *BlockIndexEntry) Set(prefix, fileOffset, numKmers uint64) {
	if e.NumKmers == 0 && e.FileOffset == 0 && e.Prefix == 0 {
		e.Prefix = prefix
		e.FileOffset = fileOffset
		e.NumKmers = numKmers
		return
	}
	if e.Prefix != prefix {
		panic(errors.Errorf("merylkmer: block index prefix mismatch: slot has 0x%x, got 0x%x", e.Prefix, prefix))
	}
	if fileOffset < e.FileOffset {
		panic(errors.Errorf("merylkmer: block index offsets went backwards: slot at %d, got %d", e.FileOffset, fileOffset))
	}
	e.NumKmers += numKmers
}

// MasterIndex is the on-disk table of contents for a dataset: how the
// prefix space is partitioned across files and blocks, whether duplicate
// k-mers were preserved (multi-set mode), the full block index, and the
// aggregated CountStats.
type MasterIndex struct {
	K              int
	PrefixSize     uint32
	NumFilesBits   uint32
	NumBlocksBits  uint32
	IsMultiSet     bool
	BlockIndex     []BlockIndexEntry // length NumFiles() * NumBlocks()
	Stats          *CountStats
	FileChecksums  []uint64 // xxh3-64 per data file; nil unless loaded from a v04 index
	SourceVersion  uint8
}

// NumFiles returns 2^NumFilesBits.
func (m *MasterIndex) NumFiles() uint32 { return 1 << m.NumFilesBits }

// NumBlocks returns 2^NumBlocksBits.
func (m *MasterIndex) NumBlocks() uint32 { return 1 << m.NumBlocksBits }

// FileOf returns the data file index holding prefix.
func (m *MasterIndex) FileOf(prefix uint64) uint32 {
	return uint32(prefix >> m.NumBlocksBits)
}

// BlockOf returns the in-file block slot holding prefix.
func (m *MasterIndex) BlockOf(prefix uint64) uint32 {
	return uint32(prefix) & (m.NumBlocks() - 1)
}

// SlotOf returns the flat BlockIndex slot for prefix: file-major, block-minor.
func (m *MasterIndex) SlotOf(prefix uint64) uint32 {
	return m.FileOf(prefix)*m.NumBlocks() + m.BlockOf(prefix)
}

func uint64ToBytes(v uint64) [8]byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return b
}

// WriteTo serializes the master index in the newest (v04) format.
func (m *MasterIndex) WriteTo(w io.Writer) error {
	if _, err := w.Write(masterMagic[:]); err != nil {
		return err
	}
	header := []byte{
		currentIndexVersion,
		uint8(m.K),
		uint8(m.NumFilesBits),
		uint8(m.NumBlocksBits),
		boolToByte(m.IsMultiSet),
	}
	if _, err := w.Write(header); err != nil {
		return err
	}
	if err := writeU32(w, m.PrefixSize); err != nil {
		return err
	}

	if err := writeU32(w, uint32(len(m.BlockIndex))); err != nil {
		return err
	}
	for _, e := range m.BlockIndex {
		if err := writeU64s(w, e.Prefix, e.FileOffset, e.NumKmers); err != nil {
			return err
		}
	}

	if err := writeStats(w, m.Stats); err != nil {
		return err
	}

	// v04 extension: per-file checksums.
	if err := writeU32(w, uint32(len(m.FileChecksums))); err != nil {
		return err
	}
	for _, c := range m.FileChecksums {
		if err := writeU64s(w, c); err != nil {
			return err
		}
	}

	return nil
}

// ReadMasterIndex reads a master index of any supported version (v01..v04).
func ReadMasterIndex(r io.Reader) (*MasterIndex, error) {
	var magic [8]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, errors.Wrap(err, "merylkmer: reading master index magic")
	}
	if magic != masterMagic {
		return nil, ErrInvalidIndexFormat
	}

	header := make([]byte, 5)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, errors.Wrap(err, "merylkmer: reading master index header")
	}
	version := header[0]
	if version < indexV01 || version > indexV04 {
		return nil, errors.Wrapf(ErrUnsupportedIndexVersion, "version %d", version)
	}

	m := &MasterIndex{
		K:             int(header[1]),
		NumFilesBits:  uint32(header[2]),
		NumBlocksBits: uint32(header[3]),
		IsMultiSet:    header[4] != 0,
		SourceVersion: version,
	}

	prefixSize, err := readU32(r)
	if err != nil {
		return nil, err
	}
	m.PrefixSize = prefixSize

	n, err := readU32(r)
	if err != nil {
		return nil, err
	}
	m.BlockIndex = make([]BlockIndexEntry, n)
	for i := range m.BlockIndex {
		vals, err := readU64s(r, 3)
		if err != nil {
			return nil, err
		}
		m.BlockIndex[i] = BlockIndexEntry{Prefix: vals[0], FileOffset: vals[1], NumKmers: vals[2]}
	}

	stats, err := readStats(r)
	if err != nil {
		return nil, err
	}
	m.Stats = stats

	if version >= indexV04 {
		nc, err := readU32(r)
		if err != nil {
			return nil, err
		}
		checksums := make([]uint64, nc)
		for i := range checksums {
			vals, err := readU64s(r, 1)
			if err != nil {
				return nil, err
			}
			checksums[i] = vals[0]
		}
		m.FileChecksums = checksums
	}

	return m, nil
}

func writeStats(w io.Writer, s *CountStats) error {
	if s == nil {
		s = NewCountStats()
	}
	if err := writeU64s(w, s.numUnique, s.numDistinct, s.numTotal); err != nil {
		return err
	}
	length := s.HistogramLength()
	if err := writeU32(w, uint32(length)); err != nil {
		return err
	}
	for i := 0; i < length; i++ {
		if err := writeU64s(w, s.HistogramValue(i), s.HistogramOccurrences(i)); err != nil {
			return err
		}
	}
	return nil
}

func readStats(r io.Reader) (*CountStats, error) {
	vals, err := readU64s(r, 3)
	if err != nil {
		return nil, err
	}
	s := NewCountStats()
	s.numUnique, s.numDistinct, s.numTotal = vals[0], vals[1], vals[2]

	n, err := readU32(r)
	if err != nil {
		return nil, err
	}
	vs := make([]uint64, n)
	os := make([]uint64, n)
	for i := uint32(0); i < n; i++ {
		pair, err := readU64s(r, 2)
		if err != nil {
			return nil, err
		}
		vs[i], os[i] = pair[0], pair[1]
		if pair[0] < uint64(s.histMax) {
			s.hist[pair[0]] = pair[1]
		} else {
			s.histBig[pair[0]] = pair[1]
		}
	}
	s.histVs, s.histOs = vs, os
	return s, nil
}

func boolToByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

func writeU32(w io.Writer, v uint32) error {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func readU32(r io.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, errors.Wrap(err, "merylkmer: reading uint32 field")
	}
	return binary.BigEndian.Uint32(b[:]), nil
}

func writeU64s(w io.Writer, vs ...uint64) error {
	buf := make([]byte, 8*len(vs))
	for i, v := range vs {
		b := uint64ToBytes(v)
		copy(buf[i*8:], b[:])
	}
	_, err := w.Write(buf)
	return err
}

func readU64s(r io.Reader, n int) ([]uint64, error) {
	buf := make([]byte, 8*n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, errors.Wrap(err, "merylkmer: reading uint64 field(s)")
	}
	out := make([]uint64, n)
	for i := range out {
		out[i] = binary.BigEndian.Uint64(buf[i*8:])
	}
	return out, nil
}
