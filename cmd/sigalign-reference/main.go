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

// Command sigalign-reference builds a sigalign reference container from one
// or more FASTA files (spec §6's CLI surface).
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/shenwei356/sigalign/internal/fasta"
	"github.com/shenwei356/sigalign/reference"
	"github.com/shenwei356/sigalign/seqindex"
)

var version = "0.1.0"

func main() {
	os.Exit(run())
}

func run() int {
	app := filepath.Base(os.Args[0])
	usage := fmt.Sprintf(`
sigalign-reference: build a sigalign reference container

Version: v%s

Usage:
  %s -i <fasta>... -o <path> [-w] [-m MAXLEN]

Options:
`, version, app)
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}

	var inputs multiFlag
	flag.Var(&inputs, "i", "input FASTA file (repeatable)")
	outPath := flag.String("o", "", "output reference container path")
	estimateOnly := flag.Bool("w", false, "estimate memory only; do not build or write the index")
	maxLookupMiB := flag.Int("m", 200, "lookup table max size in MiB")
	blockSize := flag.Int("b", 128, "bwt block size, 64 or 128")
	saRatio := flag.Int("sa", 32, "suffix array sampling ratio")
	kmerSize := flag.Int("k", 12, "lookup table kmer size")
	proteinAlphabet := flag.Bool("protein", false, "index protein sequences instead of nucleotide")
	allowAmbiguous := flag.Bool("ambiguous", false, "allow N (nucleotide) / X (protein) ambiguity codes")
	batchLocator := flag.Bool("batch-locate", false, "prefer the Aho-Corasick batch locate path for anchoring")
	flag.Parse()

	if len(inputs) == 0 || (*outPath == "" && !*estimateOnly) {
		flag.Usage()
		return 1
	}

	var targets []reference.Target
	for _, path := range inputs {
		f, err := os.Open(path)
		if err != nil {
			log.Printf("sigalign-reference: %v", err)
			return 2
		}
		records, err := fasta.Read(f)
		f.Close()
		if err != nil {
			log.Printf("sigalign-reference: reading %s: %v", path, err)
			return 2
		}
		for _, r := range records {
			targets = append(targets, reference.Target{Label: r.Label, Seq: r.Seq})
		}
	}
	if len(targets) == 0 {
		log.Printf("sigalign-reference: no sequences found in input")
		return 2
	}

	alphabet := seqindex.NucleotideN
	switch {
	case *proteinAlphabet && *allowAmbiguous:
		alphabet = seqindex.ProteinX
	case *proteinAlphabet:
		alphabet = seqindex.Protein
	case *allowAmbiguous:
		alphabet = seqindex.NucleotideN
	default:
		alphabet = seqindex.Nucleotide
	}

	opts := reference.BuildOptions{
		Alphabet:                 alphabet,
		BWTBlockSize:             *blockSize,
		SuffixArraySamplingRatio: *saRatio,
		LookupTableKmerSize:      *kmerSize,
		LookupTableMaxBytes:      *maxLookupMiB << 20,
		UseBatchLocator:          *batchLocator,
	}

	if *estimateOnly {
		fmt.Printf("estimated index size: %d bytes\n", reference.EstimateMemory(targets, opts))
		return 0
	}

	ref, err := reference.Build(targets, opts)
	if err != nil {
		log.Printf("sigalign-reference: %v", err)
		return 3
	}

	out, err := os.Create(*outPath)
	if err != nil {
		log.Printf("sigalign-reference: %v", err)
		return 2
	}
	defer out.Close()

	if err := reference.Save(ref, out); err != nil {
		log.Printf("sigalign-reference: %v", err)
		return 2
	}
	return 0
}

// multiFlag collects repeated -i flags into a slice.
type multiFlag []string

func (m *multiFlag) String() string { return fmt.Sprint([]string(*m)) }
func (m *multiFlag) Set(v string) error {
	*m = append(*m, v)
	return nil
}
