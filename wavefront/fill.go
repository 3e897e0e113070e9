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

package wavefront

import (
	"math/bits"

	"github.com/shenwei356/sigalign/regulator"
)

// Diagonal convention: offset is the target position reached on diagonal k;
// the query position reached is offset-k. A deletion (gap in the query)
// advances the target only, so it increases offset and k together; an
// insertion (gap in the target) advances the query only, so it leaves
// offset fixed and decreases k.

// Extender runs the WF_NEXT recurrence and match-extension for one anchor
// side, against a penalty budget (the spare penalty, spec §4.5).
type Extender struct {
	penalty regulator.Penalty
	m, i, d *Component

	collectVPC bool
	vpcCutoff  regulator.Cutoff
	vpcs       []VPC
}

// NewExtender returns an Extender for the given penalty set. Call Reset
// before each anchor side and Release once its Result has been consumed.
func NewExtender(p regulator.Penalty) *Extender {
	return &Extender{penalty: p}
}

// EnableVPCCollection makes Run record a valid-position-candidate point at
// every M cell it fills, scored against cutoff. Local-mode callers use the
// resulting Result.VPCs to find the true optimal (possibly short of the
// full extension) endpoint through this anchor (spec §4.6).
func (e *Extender) EnableVPCCollection(cutoff regulator.Cutoff) {
	e.collectVPC = true
	e.vpcCutoff = cutoff
}

// Reset acquires fresh, pooled components for a new extension run.
func (e *Extender) Reset() {
	e.m = getComponent()
	e.i = getComponent()
	e.d = getComponent()
	e.vpcs = e.vpcs[:0]
}

// Release returns the components to their pools. The Result from the last
// Run is no longer valid after this call.
func (e *Extender) Release() {
	putComponent(e.m)
	putComponent(e.i)
	putComponent(e.d)
	e.m, e.i, e.d = nil, nil, nil
}

// Op is a single CIGAR-style alignment operation.
type Op byte

const (
	OpMatch    Op = 'M'
	OpMismatch Op = 'X'
	OpInsert   Op = 'I' // gap in target, consumes query only
	OpDelete   Op = 'D' // gap in query, consumes target only
)

// Run is one run-length encoded stretch of a single Op.
type Run struct {
	N  uint32
	Op Op
}

// Result is the outcome of extending one side of an anchor.
type Result struct {
	Penalty        uint32
	QueryConsumed  uint32
	TargetConsumed uint32
	Ops            []Run // ordered from the anchor outward
	// VPCs is populated only when EnableVPCCollection was called before Run.
	VPCs []VPC
}

// Run extends query/target starting at the anchor boundary, spending at
// most maxPenalty, and stops as soon as either sequence is exhausted
// (semi-global termination, spec §4.4) or the budget runs out, whichever
// happens first. query and target must already be sliced and, for a
// leftward extension, reversed so that index 0 is adjacent to the anchor.
func (e *Extender) Run(query, target []byte, maxPenalty uint32) *Result {
	qn, tn := len(query), len(target)

	lo, hi := 0, 0
	offset := extendMatch(query, target, 0, 0)
	e.m.Ensure(0, 0, 0).Set(0, offset, markerMatch)
	e.recordVPC(0, 0, offset)
	if reachedEnd(offset, 0, qn, tn) {
		return e.finish(e.backtrace(0, 0, qn, tn))
	}

	for score := uint32(1); score <= maxPenalty; score++ {
		lo--
		hi++
		mwf := e.m.Ensure(score, lo, hi)
		iwf := e.i.Ensure(score, lo, hi)
		dwf := e.d.Ensure(score, lo, hi)

		for k := lo; k <= hi; k++ {
			// Insertion: gap in the target, offset unchanged, diagonal k-1.
			if off, ok := e.openOrExtend(k, -1, score, e.penalty.O+e.penalty.E, e.penalty.E, false); ok {
				marker := markerInsertExt
				if off.fromOpen {
					marker = markerInsertOpen
				}
				iwf.Set(k, off.offset, marker)
			}

			// Deletion: gap in the query, offset+1, diagonal k+1.
			if off, ok := e.openOrExtend(k, 1, score, e.penalty.O+e.penalty.E, e.penalty.E, true); ok {
				marker := markerDeleteExt
				if off.fromOpen {
					marker = markerDeleteOpen
				}
				dwf.Set(k, off.offset, marker)
			}

			best, bestMarker, any := uint32(0), markerNone, false

			if iwf.InRange(k) {
				v, m := iwf.Get(k)
				best, bestMarker, any = v, m, true
			}
			if dwf.InRange(k) {
				v, m := dwf.Get(k)
				if !any || v > best {
					best, bestMarker, any = v, m, true
				}
			}
			if xScore := int(score) - int(e.penalty.X); xScore >= 0 {
				if pm := e.m.At(uint32(xScore)); pm.InRange(k) {
					v, _ := pm.Get(k)
					if !any || v+1 > best {
						best, bestMarker, any = v+1, markerMismatch, true
					}
				}
			}
			if !any {
				continue
			}
			best = extendMatch(query, target, best, k)
			mwf.Set(k, best, bestMarker)
			e.recordVPC(score, k, best)

			if reachedEnd(best, k, qn, tn) {
				return e.finish(e.backtrace(score, k, qn, tn))
			}
		}
	}
	// Budget exhausted without reaching either end: report the best
	// (deepest) M reached at the final score as a partial extension.
	return e.finish(e.bestPartial(maxPenalty, qn, tn))
}

// recordVPC appends a VPC candidate for the M cell just filled, when VPC
// collection is enabled.
func (e *Extender) recordVPC(score uint32, k int, offset uint32) {
	if !e.collectVPC {
		return
	}
	queryLen := uint32(int(offset) - k)
	targetLen := offset
	e.vpcs = append(e.vpcs, VPC{
		QueryLength:  queryLen,
		TargetLength: targetLen,
		Penalty:      score,
		Score:        score,
		K:            k,
		ScaledMargin: Margin(e.vpcCutoff, queryLen+targetLen, score),
	})
}

// finish attaches the collected VPCs, if any, to res before returning it.
func (e *Extender) finish(res *Result) *Result {
	if e.collectVPC {
		res.VPCs = append([]VPC(nil), e.vpcs...)
	}
	return res
}

type openExtOffset struct {
	offset   uint32
	fromOpen bool
}

// openOrExtend resolves the gap recurrence for diagonal k+delta, choosing
// whichever of "open from M" or "extend from the same component" reaches
// further. consumesOffset is true for deletions (offset advances).
func (e *Extender) openOrExtend(k, delta int, score, openCost, extCost uint32, consumesOffset bool) (openExtOffset, bool) {
	srcK := k + delta
	any := false
	var bestOff uint32
	fromOpen := false

	if openCost <= score {
		if pm := e.m.At(score - openCost); pm.InRange(srcK) {
			v, _ := pm.Get(srcK)
			if consumesOffset {
				v++
			}
			if !any || v > bestOff {
				bestOff, any, fromOpen = v, true, true
			}
		}
	}
	if extCost <= score {
		comp := e.i
		if consumesOffset {
			comp = e.d
		}
		if pw := comp.At(score - extCost); pw.InRange(srcK) {
			v, _ := pw.Get(srcK)
			if consumesOffset {
				v++
			}
			if !any || v > bestOff {
				bestOff, any, fromOpen = v, true, false
			}
		}
	}
	return openExtOffset{offset: bestOff, fromOpen: fromOpen}, any
}

// reachedEnd reports whether diagonal k at offset has exhausted the query
// or the target, the semi-global stopping condition.
func reachedEnd(offset uint32, k, qn, tn int) bool {
	queryPos := int(offset) - k
	targetPos := int(offset)
	return targetPos >= tn || queryPos >= qn
}

// extendMatch walks diagonal k forward from offset while query and target
// agree, comparing 8 bytes at a time the way the teacher's extend() does,
// using the trailing-zero count of the XOR of two little-endian words to
// find the first mismatching byte without a per-byte loop in the common
// case.
func extendMatch(query, target []byte, offset uint32, k int) uint32 {
	qp := int(offset) - k
	tp := int(offset)
	qn, tn := len(query), len(target)

	for qp+8 <= qn && tp+8 <= tn {
		a := leU64(query[qp : qp+8])
		b := leU64(target[tp : tp+8])
		x := a ^ b
		if x == 0 {
			qp += 8
			tp += 8
			continue
		}
		same := bits.TrailingZeros64(x) / 8
		qp += same
		tp += same
		return uint32(tp)
	}
	for qp < qn && tp < tn && query[qp] == target[tp] {
		qp++
		tp++
	}
	return uint32(tp)
}

func leU64(b []byte) uint64 {
	var v uint64
	for i := 0; i < 8; i++ {
		v |= uint64(b[i]) << (8 * i)
	}
	return v
}
