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
	"strings"
	"time"

	"github.com/shenwei356/breader"
	"github.com/spf13/cobra"

	"github.com/shenwei356/merylkmer"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup",
	Short: "Look up k-mers' values in a dataset via an in-memory exact-lookup table",
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)
		if len(args) < 1 {
			checkError(fmt.Errorf("lookup requires a dataset directory argument"))
		}
		dir := expandPath(args[0])
		queryFile := getFlagString(cmd, "query-file")
		minValue := uint64(getFlagNonNegativeInt(cmd, "min-value"))
		maxValue := uint64(getFlagNonNegativeInt(cmd, "max-value"))
		outFile := getFlagString(cmd, "out-file")

		timeStart := time.Now()
		el, err := merylkmer.BuildExactLookup(dir, minValue, maxValue)
		checkError(err)
		checkError(merylkmer.SetK(el.K()))
		if opt.Verbose {
			log.Infof("indexed %d k-mers (%d too low, %d too high) in %s", el.NumKmers(), el.NumTooLow(), el.NumTooHigh(), time.Since(timeStart))
		}

		queries := args[1:]
		if queryFile != "" {
			fn := func(line string) (interface{}, bool, error) {
				line = strings.TrimSpace(line)
				if line == "" {
					return nil, false, nil
				}
				return line, true, nil
			}
			reader, err := breader.NewBufferedReader(queryFile, opt.NumCPUs, 100, fn)
			checkError(err)
			for chunk := range reader.Ch {
				checkError(chunk.Err)
				for _, data := range chunk.Data {
					queries = append(queries, data.(string))
				}
			}
		}

		out, err := outWriter(outFile)
		checkError(err)
		defer out.Close()

		for _, q := range queries {
			kmer, err := merylkmer.ParseKmer(q)
			if err != nil {
				fmt.Fprintf(out, "%s\tNA\n", q)
				continue
			}
			if v, ok := el.Value(kmer); ok {
				fmt.Fprintf(out, "%s\t%d\n", q, v)
			} else {
				fmt.Fprintf(out, "%s\t0\n", q)
			}
		}
	},
}

func init() {
	RootCmd.AddCommand(lookupCmd)
	lookupCmd.Flags().StringP("query-file", "Q", "", "file of k-mers to query, one per line")
	lookupCmd.Flags().IntP("min-value", "", 1, "skip k-mers with a value below this when building the lookup table")
	lookupCmd.Flags().IntP("max-value", "", 0, "skip k-mers with a value above this when building the lookup table (0 for unbounded)")
	lookupCmd.Flags().StringP("out-file", "o", "-", "output file ('-' for stdout)")
}
