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
	"github.com/shenwei356/sigalign/regulator"
	"github.com/shenwei356/sigalign/seqindex"
	"github.com/shenwei356/sigalign/wavefront"
)

// localCutoffFor scales the aligner's cutoff down to one side of an anchor:
// the side is judged against the cutoff as if the anchor plus that side
// alone made the whole alignment, since the two sides are optimized
// independently (spec §4.6's per-direction VPC search).
func localCutoffFor(cutoff regulator.Cutoff, anchorLen uint32) regulator.Cutoff {
	if cutoff.Minl > anchorLen {
		return regulator.Cutoff{Minl: cutoff.Minl - anchorLen, MaxpScaled: cutoff.MaxpScaled}
	}
	return regulator.Cutoff{Minl: 0, MaxpScaled: cutoff.MaxpScaled}
}

// extendAnchorLocal finds, independently for each side of anchor, the
// extension length that maximizes combined query+target length while
// staying within the cutoff (the VPC search, spec §4.6), then stitches the
// two optimal cuts into one Alignment.
func (a *Aligner) extendAnchorLocal(idx *seqindex.PatternIndex, query []byte, anchor seqindex.Anchor) (Alignment, bool) {
	boundaries := idx.TargetBoundaries()
	text := idx.Text()
	targetStart := boundaries[anchor.TargetID]
	targetEnd := boundaries[anchor.TargetID+1]
	target := text[targetStart:targetEnd]

	anchorLen := anchor.Length(a.reg.PatternSize)
	localTargetPos := uint32(anchor.TargetPos - targetStart)
	sideCutoff := localCutoffFor(a.reg.Cutoff, anchorLen)

	leftQuery := reversed(query[:anchor.QueryPos])
	leftTarget := reversed(target[:localTargetPos])
	rightQuery := query[anchor.QueryPos+anchorLen:]
	rightTarget := target[localTargetPos+anchorLen:]

	// As in the semi-global driver, the right side is extended (and its
	// optimal VPC picked) first, seeded from the anchor's precomputed
	// left-of-anchor determinant; the left side's budget is then seeded from
	// the right side's own realized maximum margin (spec §4.5, §4.6).
	rightBudget := wavefront.SparePenalty(a.reg.Penalty, sideCutoff, anchor.SparePenaltyDeterminantOfLeft, anchorLen, uint32(len(rightQuery)), uint32(len(rightTarget)))
	rightRes, rightOK, rightVPCs := optimalSide(a.reg.Penalty, sideCutoff, rightQuery, rightTarget, rightBudget)
	if !rightOK {
		rightRes = &wavefront.Result{}
	}

	determinantOfRight := wavefront.MaxMargin(rightVPCs)
	leftBudget := wavefront.SparePenalty(a.reg.Penalty, sideCutoff, determinantOfRight, anchorLen, uint32(len(leftQuery)), uint32(len(leftTarget)))
	leftRes, leftOK, _ := optimalSide(a.reg.Penalty, sideCutoff, leftQuery, leftTarget, leftBudget)
	if !leftOK {
		leftRes = &wavefront.Result{}
	}

	asm := &assembled{
		targetID:    anchor.TargetID,
		queryStart:  anchor.QueryPos - leftRes.QueryConsumed,
		queryEnd:    anchor.QueryPos + anchorLen + rightRes.QueryConsumed,
		targetStart: localTargetPos - leftRes.TargetConsumed,
		targetEnd:   localTargetPos + anchorLen + rightRes.TargetConsumed,
		penalty:     leftRes.Penalty + rightRes.Penalty,
	}
	asm.ops = append(asm.ops, reverseRuns(leftRes.Ops)...)
	asm.ops = appendMerging(asm.ops, []wavefront.Run{{N: anchorLen, Op: wavefront.OpMatch}})
	asm.ops = appendMerging(asm.ops, rightRes.Ops)

	alignment := asm.finalize(a.reg.Gcd())
	if !withinCutoff(a.reg.Cutoff, asm.penalty, alignment.Length) {
		return Alignment{}, false
	}
	return alignment, true
}

// optimalSide runs one side's extension with VPC collection enabled and
// backtraces from whichever candidate maximizes combined length within
// sideCutoff, instead of the extension's final (possibly overextended)
// stopping point. It also returns the VPCs the run collected, so a caller
// can derive the realized determinant for seeding the opposite side's
// budget (spec §4.5) even though the backtraced Result itself doesn't carry
// them forward.
func optimalSide(penalty regulator.Penalty, sideCutoff regulator.Cutoff, query, target []byte, budget uint32) (*wavefront.Result, bool, []wavefront.VPC) {
	e := wavefront.NewExtender(penalty)
	e.Reset()
	e.EnableVPCCollection(sideCutoff)
	res := e.Run(query, target, budget)
	vpcs := res.VPCs

	front := wavefront.SortedFront(vpcs)
	best, ok := wavefront.OptimalPosition(front)
	if !ok {
		e.Release()
		return res, true, vpcs
	}
	out := e.ResultAt(best.Score, best.K, len(query), len(target))
	e.Release()
	return out, true, vpcs
}

// alignLocal runs the per-anchor local VPC search and deduplicates
// resulting spans, mirroring alignSemiGlobal's anchor-level dedup.
func (a *Aligner) alignLocal(idx *seqindex.PatternIndex, query []byte, table *seqindex.AnchorTable) []Alignment {
	seen := map[[3]uint32]bool{}
	var out []Alignment
	for _, anchor := range table.Anchors {
		alignment, ok := a.extendAnchorLocal(idx, query, anchor)
		if !ok {
			continue
		}
		key := [3]uint32{alignment.TargetID, alignment.QueryStart, alignment.TargetStart}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, alignment)
	}
	return out
}
