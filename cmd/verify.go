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

package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/zeebo/xxh3"

	"github.com/shenwei356/merylkmer"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify a dataset's data files against their master-index checksums",
	Long: `Verify a dataset's data files against their master-index checksums

Datasets written by this program's current version record an xxh3-64
checksum per data file (master index v04). Datasets written by an older
version (v01-v03) carry no checksums; verify then only confirms every data
file decodes without error.

`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)
		if len(args) != 1 {
			checkError(fmt.Errorf("verify requires exactly one dataset directory argument"))
		}
		dir := expandPath(args[0])

		indexFile, err := os.Open(filepath.Join(dir, merylkmer.IndexFileName))
		checkError(err)
		m, err := merylkmer.ReadMasterIndex(indexFile)
		indexFile.Close()
		checkError(err)

		hasChecksums := len(m.FileChecksums) == int(m.NumFiles())
		if !hasChecksums && opt.Verbose {
			log.Warningf("master index has no per-file checksums (version %d); verifying decodability only", m.SourceVersion)
		}

		var nBad int
		for ff := uint32(0); ff < m.NumFiles(); ff++ {
			path := filepath.Join(dir, fmt.Sprintf("%04d.dat", ff))
			f, err := os.Open(path)
			if err != nil {
				if os.IsNotExist(err) {
					continue
				}
				checkError(err)
			}

			if hasChecksums {
				h := xxh3.New()
				if _, err := io.Copy(h, f); err != nil {
					log.Errorf("%s: %s", path, err)
					nBad++
					f.Close()
					continue
				}
				if h.Sum64() != m.FileChecksums[ff] {
					log.Errorf("%s: checksum mismatch", path)
					nBad++
				} else if opt.Verbose {
					log.Infof("%s: OK", path)
				}
			}
			f.Close()
		}

		r, err := merylkmer.OpenReader(dir)
		checkError(err)
		defer r.Close()
		var n uint64
		for r.Next() {
			n++
		}
		// Reader.Next stops at the first undecodable block, so a short count
		// means some data did not decode.
		var want uint64
		for _, e := range m.BlockIndex {
			want += e.NumKmers
		}
		if n != want {
			checkError(errors.Errorf("decoded %d k-mers, but the master index records %d", n, want))
		}

		if nBad > 0 {
			checkError(errors.Errorf("%d of %d data file(s) failed verification", nBad, m.NumFiles()))
		}
		if opt.Verbose {
			log.Infof("verified %d data file(s), %d k-mers decoded OK", m.NumFiles(), n)
		}
	},
}

func init() {
	RootCmd.AddCommand(verifyCmd)
}
