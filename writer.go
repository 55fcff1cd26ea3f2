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
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"github.com/zeebo/xxh3"
)

// IndexFileName is the name of a dataset's master index file.
const IndexFileName = "merylIndex"

// dataFileName returns the name of data file ff within a dataset directory.
func dataFileName(ff uint32) string {
	return fmt.Sprintf("%04d.dat", ff)
}

// Writer owns a dataset directory, its prefix-space partitioning, and the
// per-file block index being built up. It is the shared, immutable (after
// construction) configuration that BlockWriter and StreamWriter sub-writers
// read without owning.
type Writer struct {
	dir string
	k   int

	prefixSize    uint32
	numFilesBits  uint32
	numBlocksBits uint32
	isMultiSet    bool

	mu         sync.Mutex // guards blockIndex, stats, files, fileMu, hashers
	blockIndex []BlockIndexEntry
	stats      *CountStats
	files      map[uint32]*os.File
	fileMu     map[uint32]*sync.Mutex
	hashers    map[uint32]*xxh3.Hasher

	finished bool
}

// NewWriter creates a Writer for a new dataset directory. numFilesBits and
// numBlocksBits together determine prefixSize = numFilesBits+numBlocksBits,
// the number of high-order k-mer bits used to route a k-mer to a file and
// block slot.
func NewWriter(dir string, k int, numFilesBits, numBlocksBits uint32, isMultiSet bool) (*Writer, error) {
	if numFilesBits+numBlocksBits > uint32(2*k) {
		return nil, errors.Errorf("merylkmer: prefixSize (%d) exceeds 2K (%d)", numFilesBits+numBlocksBits, 2*k)
	}
	if err := os.MkdirAll(dir, 0777); err != nil {
		return nil, errors.Wrapf(err, "merylkmer: creating dataset directory %s", dir)
	}

	w := &Writer{
		dir:           dir,
		k:             k,
		prefixSize:    numFilesBits + numBlocksBits,
		numFilesBits:  numFilesBits,
		numBlocksBits: numBlocksBits,
		isMultiSet:    isMultiSet,
		stats:         NewCountStats(),
		files:         make(map[uint32]*os.File),
		fileMu:        make(map[uint32]*sync.Mutex),
		hashers:       make(map[uint32]*xxh3.Hasher),
	}
	numFiles := uint32(1) << numFilesBits
	numBlocks := uint32(1) << numBlocksBits
	w.blockIndex = make([]BlockIndexEntry, numFiles*numBlocks)
	return w, nil
}

// NumFiles returns the number of data files this writer partitions across.
func (w *Writer) NumFiles() uint32 { return 1 << w.numFilesBits }

// NumBlocks returns the number of block slots per data file.
func (w *Writer) NumBlocks() uint32 { return 1 << w.numBlocksBits }

// fileOf returns the data file index for prefix.
func (w *Writer) fileOf(prefix uint64) uint32 { return uint32(prefix >> w.numBlocksBits) }

// blockSlotOf returns the flat block-index slot for prefix.
func (w *Writer) blockSlotOf(prefix uint64) uint32 {
	fileIdx := w.fileOf(prefix)
	blockIdx := uint32(prefix) & (w.NumBlocks() - 1)
	return fileIdx*w.NumBlocks() + blockIdx
}

// fileHandle lazily opens (for writing) and returns the data file, along
// with the per-file mutex that serializes writes into it and the running
// content hasher used to compute Writer.Finish's per-file checksum.
func (w *Writer) fileHandle(fileIdx uint32) (*os.File, *sync.Mutex, *xxh3.Hasher, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if f, ok := w.files[fileIdx]; ok {
		return f, w.fileMu[fileIdx], w.hashers[fileIdx], nil
	}

	path := filepath.Join(w.dir, dataFileName(fileIdx))
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, nil, errors.Wrapf(err, "merylkmer: creating data file %s", path)
	}
	w.files[fileIdx] = f
	w.fileMu[fileIdx] = &sync.Mutex{}
	w.hashers[fileIdx] = xxh3.New()
	return f, w.fileMu[fileIdx], w.hashers[fileIdx], nil
}

// writeBlock encodes and appends one block to the file owning prefix, and
// records the block's position in the shared block index.
func (w *Writer) writeBlock(prefix uint64, suffixes, values []uint64) error {
	suffixBits := uint32(2*w.k) - w.prefixSize
	bs, err := EncodeBlock(prefix, suffixes, values, suffixBits)
	if err != nil {
		return errors.Wrapf(err, "merylkmer: encoding block for prefix 0x%x", prefix)
	}

	fileIdx := w.fileOf(prefix)
	f, fmu, hasher, err := w.fileHandle(fileIdx)
	if err != nil {
		return err
	}

	fmu.Lock()
	defer fmu.Unlock()

	offset, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return errors.Wrap(err, "merylkmer: seeking data file")
	}

	countingWriter := &teeWriter{w: f, h: hasher}
	if err := bs.Dump(countingWriter); err != nil {
		return errors.Wrap(err, "merylkmer: writing block")
	}

	w.mu.Lock()
	slot := w.blockSlotOf(prefix)
	w.blockIndex[slot].Set(prefix, uint64(offset), uint64(len(suffixes)))
	for _, v := range values {
		w.stats.AddValue(v)
	}
	w.mu.Unlock()

	return nil
}

// teeWriter forwards writes to w while also folding the bytes into h, so a
// block's checksum contribution is tracked without a second read pass.
type teeWriter struct {
	w interface {
		Write([]byte) (int, error)
	}
	h *xxh3.Hasher
}

func (t *teeWriter) Write(p []byte) (int, error) {
	t.h.Write(p)
	return t.w.Write(p)
}

// NewBlockWriter returns a BlockWriter sub-writer: callers add (kmer,value)
// pairs in arbitrary order; sorting and deduplication happen at Finish.
func (w *Writer) NewBlockWriter() *BlockWriter {
	return &BlockWriter{w: w, buckets: make(map[uint64][]kvPair)}
}

// NewStreamWriter returns a StreamWriter sub-writer bound to one data file;
// callers must feed it k-mers in ascending order.
func (w *Writer) NewStreamWriter(fileIdx uint32) (*StreamWriter, error) {
	if fileIdx >= w.NumFiles() {
		return nil, errors.Errorf("merylkmer: file index %d out of range [0,%d)", fileIdx, w.NumFiles())
	}
	return &StreamWriter{w: w, fileIdx: fileIdx, started: false}, nil
}

// Finish writes the master index and closes all open data files. It must
// be called once, after every sub-writer has itself been finished; later
// calls return nil without doing anything. The master index is written to a
// temporary file and renamed into place only once it is complete, so it
// never leaves a half-written master index in place. On an I/O error Finish
// returns without publishing a master index: the block index entries
// recorded so far are not flushed, and calling Finish again does not retry.
func (w *Writer) Finish() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.finished {
		return nil
	}
	w.finished = true

	checksums := make([]uint64, w.NumFiles())
	for fileIdx, f := range w.files {
		if err := f.Close(); err != nil {
			return errors.Wrapf(err, "merylkmer: closing data file %s", f.Name())
		}
		checksums[fileIdx] = w.hashers[fileIdx].Sum64()
	}

	m := &MasterIndex{
		K:             w.k,
		PrefixSize:    w.prefixSize,
		NumFilesBits:  w.numFilesBits,
		NumBlocksBits: w.numBlocksBits,
		IsMultiSet:    w.isMultiSet,
		BlockIndex:    w.blockIndex,
		Stats:         w.stats,
		FileChecksums: checksums,
	}

	path := filepath.Join(w.dir, IndexFileName)
	tmp := path + ".tmp"
	out, err := os.Create(tmp)
	if err != nil {
		return errors.Wrapf(err, "merylkmer: creating master index %s", tmp)
	}
	if err := m.WriteTo(out); err != nil {
		out.Close()
		os.Remove(tmp)
		return errors.Wrap(err, "merylkmer: writing master index")
	}
	if err := out.Close(); err != nil {
		return errors.Wrap(err, "merylkmer: closing master index")
	}
	return os.Rename(tmp, path)
}

type kvPair struct {
	suffix uint64
	value  uint64
}
