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

import "github.com/pkg/errors"

// StreamWriter writes one data file at a time, flushing a block as soon as
// the caller's (already-sorted) input moves to a new prefix. Its memory use
// is bounded by the largest single-prefix run, rather than the whole
// dataset as BlockWriter's is.
type StreamWriter struct {
	w       *Writer
	fileIdx uint32

	started    bool
	curPrefix  uint64
	curSuffix  []uint64
	curValue   []uint64
	lastSuffix uint64
}

// Add records the next (kmer,value) pair. The caller must present k-mers in
// ascending order; Add does not re-sort or validate this beyond detecting a
// prefix that doesn't belong to this writer's assigned file.
func (sw *StreamWriter) Add(k Kmer, value uint64) error {
	prefix, suffix := k.Split(uint(sw.w.prefixSize))
	if sw.w.fileOf(prefix) != sw.fileIdx {
		return errors.Errorf("merylkmer: prefix 0x%x does not belong to file %d", prefix, sw.fileIdx)
	}

	if !sw.started {
		sw.started = true
		sw.curPrefix = prefix
	} else if prefix != sw.curPrefix {
		if err := sw.flush(); err != nil {
			return err
		}
		sw.curPrefix = prefix
	} else if !sw.w.isMultiSet && len(sw.curSuffix) > 0 && suffix == sw.lastSuffix {
		sw.curValue[len(sw.curValue)-1] += value
		return nil
	}

	sw.curSuffix = append(sw.curSuffix, suffix)
	sw.curValue = append(sw.curValue, value)
	sw.lastSuffix = suffix
	return nil
}

func (sw *StreamWriter) flush() error {
	if len(sw.curSuffix) == 0 {
		return nil
	}
	if err := sw.w.writeBlock(sw.curPrefix, sw.curSuffix, sw.curValue); err != nil {
		return err
	}
	sw.curSuffix = nil
	sw.curValue = nil
	return nil
}

// Finish flushes any buffered block. It does not close the Writer; call
// Writer.Finish once every sub-writer has finished.
func (sw *StreamWriter) Finish() error {
	return sw.flush()
}
