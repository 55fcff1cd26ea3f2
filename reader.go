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
	"io"
	"os"
	"path/filepath"

	"github.com/edsrzf/mmap-go"
	"github.com/pkg/errors"
)

// Reader demultiplexes a dataset's data files, lazily loading and decoding
// blocks, and yields k-mers in ascending order (prefix-major, suffix within
// prefix). A Reader is single-threaded; open separate Readers (with
// EnableThreads restricting each to a disjoint file) to parallelize.
type Reader struct {
	dir    string
	master *MasterIndex

	suffixBits uint32

	threadRestricted bool
	startFile        uint32

	activeFile uint32
	numFiles   uint32

	useMMap  bool
	mmapHdl  mmap.MMap
	source   io.Reader
	osHandle *os.File

	blockPrefix   uint64
	blockSuffixes []uint64
	blockValues   []uint64
	idx           int

	curKmer  Kmer
	curValue uint64

	done bool
}

// OpenReader opens the dataset in dir by reading its master index.
func OpenReader(dir string) (*Reader, error) {
	path := filepath.Join(dir, IndexFileName)
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "merylkmer: opening master index %s", path)
	}
	defer f.Close()

	m, err := ReadMasterIndex(f)
	if err != nil {
		return nil, errors.Wrapf(err, "merylkmer: reading master index %s", path)
	}

	r := &Reader{
		dir:        dir,
		master:     m,
		suffixBits: uint32(2*m.K) - m.PrefixSize,
		numFiles:   m.NumFiles(),
	}
	if err := r.openFile(0); err != nil {
		return nil, err
	}
	return r, nil
}

// EnableThreads restricts this Reader to a single data file, so that
// independent Readers can cover disjoint prefixes in parallel without
// contending over file handles.
func (r *Reader) EnableThreads(fileIdx uint32) error {
	if fileIdx >= r.numFiles {
		return errors.Errorf("merylkmer: file index %d out of range [0,%d)", fileIdx, r.numFiles)
	}
	r.threadRestricted = true
	r.startFile = fileIdx
	return r.openFile(fileIdx)
}

// EnableMMap switches block loading to memory-mapped file access instead of
// buffered os.File reads. Call it before the first Next.
func (r *Reader) EnableMMap() error {
	r.useMMap = true
	start := uint32(0)
	if r.threadRestricted {
		start = r.startFile
	}
	return r.openFile(start)
}

func (r *Reader) closeCurrent() {
	if r.mmapHdl != nil {
		r.mmapHdl.Unmap()
		r.mmapHdl = nil
	}
	if r.osHandle != nil {
		r.osHandle.Close()
		r.osHandle = nil
	}
	r.source = nil
}

func (r *Reader) openFile(fileIdx uint32) error {
	r.closeCurrent()
	r.activeFile = fileIdx
	r.blockSuffixes = nil
	r.blockValues = nil
	r.idx = 0

	path := filepath.Join(r.dir, dataFileName(fileIdx))
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			// A data file with no blocks may not have been created.
			r.source = bytes.NewReader(nil)
			return nil
		}
		return errors.Wrapf(err, "merylkmer: opening data file %s", path)
	}

	if r.useMMap {
		defer f.Close()
		info, serr := f.Stat()
		if serr != nil {
			return errors.Wrap(serr, "merylkmer: statting data file")
		}
		if info.Size() == 0 {
			r.source = bytes.NewReader(nil)
			return nil
		}
		m, merr := mmap.Map(f, mmap.RDONLY, 0)
		if merr != nil {
			return errors.Wrapf(merr, "merylkmer: mmapping data file %s", path)
		}
		r.mmapHdl = m
		r.source = bytes.NewReader([]byte(m))
		return nil
	}

	r.osHandle = f
	r.source = f
	return nil
}

// loadNextBlock reads and decodes the next block from the active file.
// It returns false (no error) when the active file has no more blocks.
func (r *Reader) loadNextBlock() (bool, error) {
	bs, ok, err := Load(r.source)
	if err != nil {
		return false, newMalformedBlockError(dataFileName(r.activeFile), r.activeFile, 0, err)
	}
	if !ok {
		return false, nil
	}

	header, suffixes, values, err := DecodeBlock(bs)
	if err != nil {
		return false, newMalformedBlockError(dataFileName(r.activeFile), r.activeFile, bs.ReadPosition(), err)
	}

	r.blockPrefix = header.Prefix
	r.blockSuffixes = suffixes
	r.blockValues = values
	r.idx = 0
	return true, nil
}

// Next advances to the next k-mer in ascending order. It returns false once
// every block in the reader's active range (one file if thread-restricted,
// otherwise all files) has been exhausted.
func (r *Reader) Next() bool {
	if r.done {
		return false
	}
	for {
		if r.idx < len(r.blockSuffixes) {
			suffix := r.blockSuffixes[r.idx]
			r.curValue = r.blockValues[r.idx]
			r.idx++
			r.curKmer = Kmer((r.blockPrefix << r.suffixBits) | suffix)
			return true
		}

		ok, err := r.loadNextBlock()
		if err != nil {
			log.Errorf("merylkmer: %s", err)
			r.done = true
			return false
		}
		if ok {
			continue
		}

		// Current file exhausted.
		if r.threadRestricted {
			r.done = true
			return false
		}
		next := r.activeFile + 1
		if next >= r.numFiles {
			r.done = true
			return false
		}
		if err := r.openFile(next); err != nil {
			log.Errorf("merylkmer: %s", err)
			r.done = true
			return false
		}
	}
}

// TheFMer returns the current k-mer. Valid only immediately after Next
// returns true.
func (r *Reader) TheFMer() Kmer { return r.curKmer }

// TheValue returns the current k-mer's stored value. Valid only
// immediately after Next returns true.
func (r *Reader) TheValue() uint64 { return r.curValue }

// IsMultiSet reports whether the dataset preserves duplicate k-mers.
func (r *Reader) IsMultiSet() bool { return r.master.IsMultiSet }

// PrefixSize returns the number of high-order k-mer bits used for routing.
func (r *Reader) PrefixSize() uint32 { return r.master.PrefixSize }

// SuffixSize returns the number of low-order k-mer bits stored per block.
func (r *Reader) SuffixSize() uint32 { return r.suffixBits }

// K returns the k-mer length this dataset was built with.
func (r *Reader) K() int { return r.master.K }

// Stats returns the dataset's aggregated CountStats.
func (r *Reader) Stats() *CountStats { return r.master.Stats }

// MasterIndex exposes the parsed master index, e.g. for block-level tools.
func (r *Reader) MasterIndex() *MasterIndex { return r.master }

// Close releases the reader's open file or memory mapping.
func (r *Reader) Close() error {
	r.closeCurrent()
	return nil
}
