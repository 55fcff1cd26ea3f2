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

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/tatsushid/go-prettytable"

	"github.com/shenwei356/merylkmer"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print a dataset's summary statistics and value histogram",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			checkError(fmt.Errorf("stats requires exactly one dataset directory argument"))
		}
		dir := expandPath(args[0])
		top := getFlagNonNegativeInt(cmd, "top")

		r, err := merylkmer.OpenReader(dir)
		checkError(err)
		defer r.Close()

		m := r.MasterIndex()
		stats := r.Stats()

		fmt.Printf("k-mer length (k):     %d\n", m.K)
		fmt.Printf("multi-set:            %v\n", m.IsMultiSet)
		fmt.Printf("data files:           %s\n", humanize.Comma(int64(m.NumFiles())))
		fmt.Printf("block slots per file: %s\n", humanize.Comma(int64(m.NumBlocks())))
		fmt.Printf("unique k-mers:        %s\n", humanize.Comma(int64(stats.NumUnique())))
		fmt.Printf("distinct k-mers:      %s\n", humanize.Comma(int64(stats.NumDistinct())))
		fmt.Printf("total value sum:      %s\n", humanize.Comma(int64(stats.NumTotal())))

		n := stats.HistogramLength()
		if top > 0 && top < n {
			n = top
		}

		columns := []prettytable.Column{
			{Header: "value", AlignRight: true},
			{Header: "n-kmers", AlignRight: true},
		}
		tbl, err := prettytable.NewTable(columns...)
		checkError(err)
		tbl.Separator = "  "
		for i := 0; i < n; i++ {
			tbl.AddRow(
				humanize.Comma(int64(stats.HistogramValue(i))),
				humanize.Comma(int64(stats.HistogramOccurrences(i))),
			)
		}
		fmt.Print(string(tbl.Bytes()))
	},
}

func init() {
	RootCmd.AddCommand(statsCmd)
	statsCmd.Flags().IntP("top", "n", 20, "number of histogram rows to print (0 for all)")
}
