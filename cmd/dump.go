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

	"github.com/spf13/cobra"

	"github.com/shenwei356/merylkmer"
)

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Dump a dataset's k-mers and values as tab-separated text",
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)
		if len(args) != 1 {
			checkError(fmt.Errorf("dump requires exactly one dataset directory argument"))
		}
		dir := expandPath(args[0])

		outFile := getFlagString(cmd, "out-file")

		r, err := merylkmer.OpenReader(dir)
		checkError(err)
		defer r.Close()

		checkError(merylkmer.SetK(r.K()))

		out, err := outWriter(outFile)
		checkError(err)
		defer out.Close()

		var n uint64
		for r.Next() {
			fmt.Fprintf(out, "%s\t%d\n", r.TheFMer(), r.TheValue())
			n++
		}

		if opt.Verbose {
			log.Infof("dumped %d k-mers from %s", n, dir)
		}
	},
}

func init() {
	RootCmd.AddCommand(dumpCmd)
	dumpCmd.Flags().StringP("out-file", "o", "-", "output file ('-' for stdout)")
}
