// Copyright © 2024 Wei Shen <shenwei356@gmail.com>
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

// Package fasta is the minimal record reader the sigalign CLI commands need
// to get bytes off disk. Full FASTA/FASTQ parsing is an external
// collaborator's job (spec §1's Non-goals); this just splits '>'-delimited
// records well enough to drive the reference builder and the aligner CLI.
package fasta

import (
	"bufio"
	"io"
	"strings"
)

// Record is one '>'-delimited FASTA entry.
type Record struct {
	Label string
	Seq   []byte
}

// Read scans r for FASTA records, stripping whitespace from sequence
// lines and taking the label as the first whitespace-delimited token
// after '>'.
func Read(r io.Reader) ([]Record, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<30)

	var records []Record
	var cur *Record
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line[0] == '>' {
			records = append(records, Record{Label: firstToken(line[1:])})
			cur = &records[len(records)-1]
			continue
		}
		if cur == nil {
			continue
		}
		cur.Seq = append(cur.Seq, []byte(line)...)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func firstToken(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, " \t"); i >= 0 {
		return s[:i]
	}
	return s
}
