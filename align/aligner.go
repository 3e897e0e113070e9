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

package align

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/shenwei356/sigalign/regulator"
	"github.com/shenwei356/sigalign/seqindex"
)

// Mode selects which alignment driver Align runs (spec §4.7).
type Mode int

const (
	SemiGlobal Mode = iota
	Local
	Chaining
)

// Options configures an Aligner.
type Options struct {
	Mismatch, GapOpen, GapExtend uint32
	MinLength                   uint32
	MaxPenaltyRatio             float64

	Mode Mode

	// MaxAlignmentsPerTarget bounds how many alignments Align reports for
	// a single target id; 0 means unlimited (the "Limit variant", §4.7).
	MaxAlignmentsPerTarget int

	// ChainingCutoffs is required when Mode is Chaining: a strict-to-lenient
	// sequence of cutoffs tried in order as local hits get masked out.
	ChainingCutoffs []regulator.Cutoff

	// AllowedTargetIDs restricts anchoring to these target ids when
	// non-empty (locate_restricted_to, spec §4.2/§6).
	AllowedTargetIDs []uint32

	UseBatchLocator bool
}

// ErrInvalidOptions is returned by New when Options cannot produce a usable
// Aligner.
var ErrInvalidOptions = errors.New("align: invalid options")

// Aligner is an immutable, concurrency-safe alignment engine: build one per
// (penalty, cutoff, mode) combination and reuse it across many queries.
type Aligner struct {
	reg  *regulator.Regulator
	opts Options
}

// New validates opts and derives the pattern size via regulator.New.
func New(opts Options) (*Aligner, error) {
	reg, err := regulator.New(opts.Mismatch, opts.GapOpen, opts.GapExtend, opts.MinLength, opts.MaxPenaltyRatio)
	if err != nil {
		return nil, errors.Wrap(err, "align.New")
	}
	if opts.Mode == Chaining {
		if len(opts.ChainingCutoffs) == 0 {
			return nil, errors.Wrap(ErrInvalidOptions, "chaining mode requires at least one cutoff")
		}
		for i := 1; i < len(opts.ChainingCutoffs); i++ {
			prev, cur := opts.ChainingCutoffs[i-1], opts.ChainingCutoffs[i]
			if cur.MaxpScaled <= prev.MaxpScaled || cur.Minl > prev.Minl {
				return nil, errors.Wrap(ErrInvalidOptions, "chaining cutoffs must run strict to lenient: each later cutoff needs a larger maxp and no longer minl")
			}
		}
		opts.ChainingCutoffs = append([]regulator.Cutoff(nil), opts.ChainingCutoffs...)
	}
	return &Aligner{reg: reg, opts: opts}, nil
}

// PatternSize returns the pattern window size this aligner's regulator
// derived; seqindex.BuildAnchorTable needs it verbatim.
func (a *Aligner) PatternSize() uint32 { return a.reg.PatternSize }

// Align anchors query against idx and extends every anchor into a full
// alignment under the configured mode.
func (a *Aligner) Align(idx *seqindex.PatternIndex, query []byte) ([]Alignment, error) {
	if len(query) == 0 {
		return nil, errors.Wrap(ErrInvalidOptions, "query must not be empty")
	}
	table := seqindex.BuildAnchorTable(idx, query, a.reg.PatternSize, a.reg.Cutoff, a.reg.MinPenaltyForPattern, a.opts.AllowedTargetIDs)

	var out []Alignment
	switch a.opts.Mode {
	case SemiGlobal:
		out = a.alignSemiGlobal(idx, query, table)
	case Local:
		out = a.alignLocal(idx, query, table)
	case Chaining:
		out = a.alignChaining(idx, query, table)
	default:
		return nil, errors.Wrapf(ErrInvalidOptions, "unknown mode %d", a.opts.Mode)
	}

	if a.opts.MaxAlignmentsPerTarget > 0 {
		out = limitPerTarget(out, a.opts.MaxAlignmentsPerTarget)
	}
	sortByTargetThenPosition(out)
	return out, nil
}

// sortByTargetThenPosition orders alignments ascending by target id and
// then by query position, the stable emission order spec §5 requires.
func sortByTargetThenPosition(alignments []Alignment) {
	sort.SliceStable(alignments, func(i, j int) bool {
		if alignments[i].TargetID != alignments[j].TargetID {
			return alignments[i].TargetID < alignments[j].TargetID
		}
		if alignments[i].QueryStart != alignments[j].QueryStart {
			return alignments[i].QueryStart < alignments[j].QueryStart
		}
		return alignments[i].TargetStart < alignments[j].TargetStart
	})
}

// limitPerTarget keeps at most n alignments per target id, preferring the
// lowest-penalty ones (the "Limit variant", spec §4.7).
func limitPerTarget(alignments []Alignment, n int) []Alignment {
	sort.SliceStable(alignments, func(i, j int) bool {
		if alignments[i].TargetID != alignments[j].TargetID {
			return alignments[i].TargetID < alignments[j].TargetID
		}
		return alignments[i].Penalty < alignments[j].Penalty
	})
	counts := map[uint32]int{}
	out := alignments[:0]
	for _, a := range alignments {
		if counts[a.TargetID] >= n {
			continue
		}
		counts[a.TargetID]++
		out = append(out, a)
	}
	return out
}
