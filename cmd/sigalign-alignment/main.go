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

// Command sigalign-alignment aligns FASTA queries against a prebuilt
// reference container (spec §6's CLI surface).
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/profile"

	"github.com/shenwei356/sigalign/align"
	"github.com/shenwei356/sigalign/internal/fasta"
	"github.com/shenwei356/sigalign/reference"
)

var version = "0.1.0"

func main() {
	os.Exit(run())
}

func run() int {
	app := filepath.Base(os.Args[0])
	usage := fmt.Sprintf(`
sigalign-alignment: align FASTA queries against a sigalign reference

Version: v%s

Usage:
  %s -i <query.fasta> -r <ref> -p "X O E" -c "MINL MAXP" [-l LIMIT] [--semi_global] [-t THREADS]

Options:
`, version, app)
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}

	infile := flag.String("i", "", "query FASTA file")
	refPath := flag.String("r", "", "reference container path")
	penaltyArg := &penaltyFlag{}
	flag.Var(penaltyArg, "p", "mismatch, gap-open, gap-extend penalties: \"-p X O E\"")
	cutoffArg := &cutoffFlag{}
	flag.Var(cutoffArg, "c", "minimum length and max penalty ratio: \"-c MINL MAXP\"")
	limit := flag.Int("l", 0, "max alignments per target, 0 = unlimited")
	semiGlobal := flag.Bool("semi_global", false, "use semi-global mode instead of local")
	threads := flag.Int("t", 1, "number of worker goroutines")
	cpuProfile := flag.Bool("cpuprofile", false, "write a cpu.pprof profile")
	memProfile := flag.Bool("memprofile", false, "write a mem.pprof profile")
	flag.Parse()

	if *infile == "" || *refPath == "" || !penaltyArg.set || !cutoffArg.set {
		flag.Usage()
		return 1
	}
	x, o, e := penaltyArg.x, penaltyArg.o, penaltyArg.e
	minl, maxp := cutoffArg.minl, cutoffArg.maxp

	if *cpuProfile {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	} else if *memProfile {
		defer profile.Start(profile.MemProfile, profile.ProfilePath(".")).Stop()
	}

	refFile, err := os.Open(*refPath)
	if err != nil {
		log.Printf("sigalign-alignment: %v", err)
		return 2
	}
	ref, err := reference.Load(refFile)
	refFile.Close()
	if err != nil {
		log.Printf("sigalign-alignment: %v", err)
		return 2
	}

	mode := align.Local
	if *semiGlobal {
		mode = align.SemiGlobal
	}
	aligner, err := align.New(align.Options{
		Mismatch: x, GapOpen: o, GapExtend: e,
		MinLength: minl, MaxPenaltyRatio: maxp,
		Mode:                   mode,
		MaxAlignmentsPerTarget: *limit,
	})
	if err != nil {
		log.Printf("sigalign-alignment: %v", err)
		return 3
	}

	qf, err := os.Open(*infile)
	if err != nil {
		log.Printf("sigalign-alignment: %v", err)
		return 2
	}
	records, err := fasta.Read(qf)
	qf.Close()
	if err != nil {
		log.Printf("sigalign-alignment: %v", err)
		return 2
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()
	var outMu sync.Mutex

	jobs := make(chan fasta.Record, *threads*8)
	var wg sync.WaitGroup
	n := *threads
	if n < 1 {
		n = 1
	}
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for rec := range jobs {
				result, err := aligner.AlignLabeled(ref, rec.Seq)
				if err != nil {
					log.Printf("sigalign-alignment: %s: %v", rec.Label, err)
					continue
				}
				outMu.Lock()
				for _, ta := range result {
					for _, a := range ta.Alignments {
						fmt.Fprintf(out, "%s\t%s\t%d\t%d\t%d\t%d\t%d\t%s\n",
							rec.Label, ta.Label, a.QueryStart, a.QueryEnd,
							a.TargetStart, a.TargetEnd, a.Penalty, a.Cigar())
					}
				}
				outMu.Unlock()
			}
		}()
	}
	for _, rec := range records {
		jobs <- rec
	}
	close(jobs)
	wg.Wait()

	return 0
}

// penaltyFlag parses "-p X O E" into the three affine-gap penalty values.
type penaltyFlag struct {
	x, o, e uint32
	set     bool
}

func (p *penaltyFlag) String() string {
	if !p.set {
		return ""
	}
	return fmt.Sprintf("%d %d %d", p.x, p.o, p.e)
}

func (p *penaltyFlag) Set(v string) error {
	if _, err := fmt.Sscanf(v, "%d %d %d", &p.x, &p.o, &p.e); err != nil {
		return fmt.Errorf("-p expects \"X O E\": %w", err)
	}
	p.set = true
	return nil
}

// cutoffFlag parses "-c MINL MAXP" into the minimum length and max
// penalty-per-length ratio.
type cutoffFlag struct {
	minl uint32
	maxp float64
	set  bool
}

func (c *cutoffFlag) String() string {
	if !c.set {
		return ""
	}
	return fmt.Sprintf("%d %g", c.minl, c.maxp)
}

func (c *cutoffFlag) Set(v string) error {
	if _, err := fmt.Sscanf(v, "%d %f", &c.minl, &c.maxp); err != nil {
		return fmt.Errorf("-c expects \"MINL MAXP\": %w", err)
	}
	c.set = true
	return nil
}
