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

// MalformedBlockError wraps a fatal parse failure encountered while loading
// a block, carrying the file, which of the dataset's files it was, the bit
// offset within the block, and the underlying cause.
type MalformedBlockError struct {
	File       string
	ActiveFile uint32
	BitPos     uint64
	Cause      error
}

func (e *MalformedBlockError) Error() string {
	return errors.Wrapf(e.Cause, "merylkmer: malformed block in %s (file %d, bit position %d)",
		e.File, e.ActiveFile, e.BitPos).Error()
}

func (e *MalformedBlockError) Unwrap() error { return e.Cause }

// newMalformedBlockError builds a MalformedBlockError. bitPos is the read
// cursor's position in the block's BitStream at the point of failure.
func newMalformedBlockError(file string, activeFile uint32, bitPos uint64, cause error) error {
	return &MalformedBlockError{File: file, ActiveFile: activeFile, BitPos: bitPos, Cause: cause}
}
