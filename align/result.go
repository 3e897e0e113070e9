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

// Package align orchestrates anchors from seqindex and extensions from
// wavefront into whole-query alignments, in semi-global, local, or
// chaining mode (spec §4.7).
package align

import (
	"fmt"
	"strings"

	"github.com/shenwei356/sigalign/regulator"
	"github.com/shenwei356/sigalign/sigutil"
	"github.com/shenwei356/sigalign/wavefront"
)

// Alignment is one reported alignment of a query against one target.
type Alignment struct {
	TargetID uint32

	QueryStart, QueryEnd   uint32
	TargetStart, TargetEnd uint32

	// Penalty is in the caller's original (uncompressed) penalty scale.
	Penalty uint32
	Length  uint32

	Ops []wavefront.Run
}

// Cigar renders Ops as a standard run-length CIGAR string ("12M1X3D...").
func (a Alignment) Cigar() string {
	var b strings.Builder
	for _, op := range a.Ops {
		fmt.Fprintf(&b, "%d%c", op.N, byte(op.Op))
	}
	return b.String()
}

// Identity returns the fraction of Length that is an exact match.
func (a Alignment) Identity() float64 {
	if a.Length == 0 {
		return 0
	}
	var matched uint32
	for _, op := range a.Ops {
		if op.Op == wavefront.OpMatch {
			matched += op.N
		}
	}
	return float64(matched) / float64(a.Length)
}

// assembled is the mutable builder used while stitching a left extension,
// an anchor, and a right extension into one Alignment.
type assembled struct {
	targetID               uint32
	queryStart, queryEnd   uint32
	targetStart, targetEnd uint32
	penalty                uint32
	ops                    []wavefront.Run
}

// reverseRuns reverses run order without mutating the source slice, used
// when a leftward extension was computed on reversed sequences and its
// runs must be re-ordered (not reversed byte-wise, only run-order-wise) to
// read left-to-right again.
func reverseRuns(runs []wavefront.Run) []wavefront.Run {
	out := make([]wavefront.Run, len(runs))
	for i, r := range runs {
		out[len(runs)-1-i] = r
	}
	return out
}

// appendMerging appends src to dst, coalescing a matching run boundary.
func appendMerging(dst []wavefront.Run, src []wavefront.Run) []wavefront.Run {
	for _, r := range src {
		if n := len(dst); n > 0 && dst[n-1].Op == r.Op {
			dst[n-1].N += r.N
			continue
		}
		dst = append(dst, r)
	}
	return dst
}

func (a *assembled) finalize(gcd uint32) Alignment {
	var length uint32
	for _, op := range a.ops {
		length += op.N
	}
	return Alignment{
		TargetID:    a.targetID,
		QueryStart:  a.queryStart,
		QueryEnd:    a.queryEnd,
		TargetStart: a.targetStart,
		TargetEnd:   a.targetEnd,
		Penalty:     a.penalty * gcd,
		Length:      length,
		Ops:         a.ops,
	}
}

// withinCutoff reports whether penalty/length satisfies cutoff, matching
// regulator's fixed-point comparison exactly.
func withinCutoff(cutoff regulator.Cutoff, penalty, length uint32) bool {
	if length < cutoff.Minl {
		return false
	}
	return !sigutil.PenaltyPerLengthExceeds(uint64(penalty), uint64(length), cutoff.MaxpScaled)
}
