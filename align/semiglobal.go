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

// reversed returns a newly allocated, byte-reversed copy of b.
func reversed(b []byte) []byte {
	out := make([]byte, len(b))
	for i, c := range b {
		out[len(b)-1-i] = c
	}
	return out
}

// extendAnchor grows anchor in both directions under the aligner's own
// cutoff and keeps the result only when each end reaches an end of the
// query or of the target.
func (a *Aligner) extendAnchor(idx *seqindex.PatternIndex, query []byte, anchor seqindex.Anchor) (Alignment, bool) {
	alignment, ok := a.extendAnchorUnderCutoff(idx, query, anchor, a.reg.Cutoff)
	if !ok {
		return Alignment{}, false
	}
	boundaries := idx.TargetBoundaries()
	targetLen := uint32(boundaries[anchor.TargetID+1] - boundaries[anchor.TargetID])
	if alignment.QueryStart != 0 && alignment.TargetStart != 0 {
		return Alignment{}, false
	}
	if alignment.QueryEnd != uint32(len(query)) && alignment.TargetEnd != targetLen {
		return Alignment{}, false
	}
	return alignment, true
}

// extendAnchorUnderCutoff grows anchor in both directions, spending a
// budget derived from cutoff and accepting the result only if it satisfies
// cutoff: the chaining driver calls this once per cutoff tier instead of
// relying on the aligner's own fixed cutoff.
func (a *Aligner) extendAnchorUnderCutoff(idx *seqindex.PatternIndex, query []byte, anchor seqindex.Anchor, cutoff regulator.Cutoff) (Alignment, bool) {
	boundaries := idx.TargetBoundaries()
	text := idx.Text()
	targetStart := boundaries[anchor.TargetID]
	targetEnd := boundaries[anchor.TargetID+1]
	target := text[targetStart:targetEnd]

	anchorLen := anchor.Length(a.reg.PatternSize)
	localTargetPos := uint32(anchor.TargetPos - targetStart)

	leftQuery := reversed(query[:anchor.QueryPos])
	leftTarget := reversed(target[:localTargetPos])
	rightQuery := query[anchor.QueryPos+anchorLen:]
	rightTarget := target[localTargetPos+anchorLen:]

	// The right side is extended first, seeded by the precomputed determinant
	// for the pattern windows to the anchor's left; the left side then reuses
	// the right extension's realized maximum margin as its own seed, instead
	// of splitting one flat budget between the two sides (spec §4.5).
	rightBudget := wavefront.SparePenalty(a.reg.Penalty, cutoff, anchor.SparePenaltyDeterminantOfLeft, anchorLen, uint32(len(rightQuery)), uint32(len(rightTarget)))
	rightExt := wavefront.NewExtender(a.reg.Penalty)
	rightExt.Reset()
	rightExt.EnableVPCCollection(cutoff)
	rightRes := rightExt.Run(rightQuery, rightTarget, rightBudget)
	rightExt.Release()

	determinantOfRight := wavefront.MaxMargin(rightRes.VPCs)
	leftBudget := wavefront.SparePenalty(a.reg.Penalty, cutoff, determinantOfRight, anchorLen, uint32(len(leftQuery)), uint32(len(leftTarget)))
	leftExt := wavefront.NewExtender(a.reg.Penalty)
	leftExt.Reset()
	leftRes := leftExt.Run(leftQuery, leftTarget, leftBudget)
	leftExt.Release()

	asm := &assembled{
		targetID:    anchor.TargetID,
		queryStart:  anchor.QueryPos - leftRes.QueryConsumed,
		queryEnd:    anchor.QueryPos + anchorLen + rightRes.QueryConsumed,
		targetStart: localTargetPos - leftRes.TargetConsumed,
		targetEnd:   localTargetPos + anchorLen + rightRes.TargetConsumed,
		penalty:     leftRes.Penalty + rightRes.Penalty,
	}
	asm.ops = append(asm.ops, reverseRuns(leftRes.Ops)...)
	asm.ops = appendMerging(asm.ops, []wavefront.Run{{N: uint32(anchorLen), Op: wavefront.OpMatch}})
	asm.ops = appendMerging(asm.ops, rightRes.Ops)

	alignment := asm.finalize(a.reg.Gcd())
	if !withinCutoff(cutoff, asm.penalty, alignment.Length) {
		return Alignment{}, false
	}
	return alignment, true
}

// alignSemiGlobal extends every anchor toward both sequence ends (bounded
// by the cutoff budget) and keeps whichever extensions reach an end on
// both sides and still satisfy the cutoff, deduplicating anchors that land
// on the same final span.
func (a *Aligner) alignSemiGlobal(idx *seqindex.PatternIndex, query []byte, table *seqindex.AnchorTable) []Alignment {
	seen := map[[3]uint32]bool{}
	var out []Alignment
	for _, anchor := range table.Anchors {
		alignment, ok := a.extendAnchor(idx, query, anchor)
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
