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
	"regexp"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/shenwei356/bio/seqio/fastx"
	"github.com/spf13/cobra"

	"github.com/shenwei356/merylkmer"
)

// seqFilePattern matches the sequence-file extensions build accepts when
// expanding a directory argument into its contained files.
var seqFilePattern = regexp.MustCompile(`(?i)\.(fa|fasta|fq|fastq)(\.gz)?$`)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build a k-mer dataset from FASTA/Q sequences",
	Long: `Build a k-mer dataset from FASTA/Q sequences

Every sequence in the input files is scanned for k-mers with -k; a k-mer's
value is the number of times it (or, with --canonical, its canonical form)
occurs across all input. The result is a dataset directory holding one or
more block-structured data files plus a master index.

`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)

		timeStart := time.Now()
		defer func() {
			if opt.Verbose {
				log.Infof("elapsed time: %s", time.Since(timeStart))
			}
		}()

		k := getFlagPositiveInt(cmd, "kmer-len")
		checkError(merylkmer.SetK(k))

		canonical := getFlagBool(cmd, "canonical")
		multiSet := getFlagBool(cmd, "multi-set")
		numFilesBits := uint32(getFlagNonNegativeInt(cmd, "files-bits"))
		numBlocksBits := uint32(getFlagNonNegativeInt(cmd, "blocks-bits"))

		outDir := expandPath(getFlagString(cmd, "out-dir"))
		force := getFlagBool(cmd, "force")
		if outDir == "" {
			checkError(fmt.Errorf("flag -O/--out-dir is required"))
		}
		makeOutDir(outDir, force)

		files := getFileListFromArgsAndFile(cmd, args, true, "infile-list", true)
		files = expandFileList(files, seqFilePattern, opt.NumCPUs)
		if opt.Verbose {
			log.Infof("%d input file(s) given", len(files))
			log.Infof("k: %d, canonical: %v, multi-set: %v", k, canonical, multiSet)
		}

		w, err := merylkmer.NewWriter(outDir, k, numFilesBits, numBlocksBits, multiSet)
		checkError(err)
		bw := w.NewBlockWriter()

		var nSeqs, nKmers uint64
		for _, file := range files {
			if opt.Verbose {
				log.Infof("processing file: %s", file)
			}

			reader, err := fastx.NewDefaultReader(file)
			checkError(errors.Wrap(err, file))

			var it *merylkmer.KmerIterator
			for {
				record, err := reader.Read()
				if err != nil {
					if err == io.EOF {
						break
					}
					checkError(errors.Wrap(err, file))
					break
				}
				nSeqs++

				it = merylkmer.NewKmerIterator(record.Seq.Seq)
				for it.Next() {
					kmer := it.Fmer()
					if canonical {
						kmer = it.Canonical()
					}
					bw.Add(kmer, 1)
					nKmers++
				}
			}
		}

		checkError(bw.Finish())
		checkError(w.Finish())

		if opt.Verbose {
			log.Infof("scanned %s sequences, %s k-mers", humanize.Comma(int64(nSeqs)), humanize.Comma(int64(nKmers)))
			log.Infof("dataset written to: %s", outDir)
		}
	},
}

func init() {
	RootCmd.AddCommand(buildCmd)

	buildCmd.Flags().IntP("kmer-len", "k", 21, "k-mer length")
	buildCmd.Flags().BoolP("canonical", "C", false, "count canonical k-mers instead of forward k-mers")
	buildCmd.Flags().BoolP("multi-set", "m", false, "preserve duplicate k-mers instead of summing their values")
	buildCmd.Flags().IntP("files-bits", "F", 0, "log2 of the number of data files to partition across")
	buildCmd.Flags().IntP("blocks-bits", "B", 8, "log2 of the number of block slots per data file")
	buildCmd.Flags().StringP("out-dir", "O", "", "output dataset directory")
	buildCmd.Flags().BoolP("force", "f", false, "overwrite a non-empty output directory")
}
