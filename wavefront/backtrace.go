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

// ResultAt backtraces from an arbitrary (score, k) cell already filled by a
// prior Run call, letting a caller materialize the CIGAR for one of the
// VPC candidates Run collected rather than only its final stopping point.
// It must be called before Release.
func (e *Extender) ResultAt(score uint32, k int, qn, tn int) *Result {
	return e.backtrace(score, k, qn, tn)
}

// backtrace walks the marker trail from (score, k) in the M component back
// to the (0,0) anchor cell, emitting CIGAR-style runs from the anchor
// outward. Only M ever stores a post-extension offset; I and D always hold
// the raw, unextended offset the recurrence produced, so the gap between an
// M cell's stored offset and the offset of whatever it sourced from is
// exactly the free match run the extension absorbed.
func (e *Extender) backtrace(score uint32, k int, qn, tn int) *Result {
	type step struct {
		op Op
		n  uint32
	}
	originalScore := score
	var reversedOps []step

	for score > 0 {
		mwf := e.m.At(score)
		finalOffset, marker := mwf.Get(k)

		var preOffset uint32
		var nextScore uint32
		var nextK int
		var op Op

		switch marker {
		case markerMismatch:
			prevWF := e.m.At(score - e.penalty.X)
			prevOffset, _ := prevWF.Get(k)
			preOffset = prevOffset + 1
			nextScore, nextK = score-e.penalty.X, k
			op = OpMismatch
		case markerInsertOpen:
			raw, _ := e.i.At(score).Get(k)
			preOffset = raw
			nextScore, nextK = score-(e.penalty.O+e.penalty.E), k-1
			op = OpInsert
		case markerInsertExt:
			raw, _ := e.i.At(score).Get(k)
			preOffset = raw
			nextScore, nextK = score-e.penalty.E, k-1
			op = OpInsert
		case markerDeleteOpen:
			raw, _ := e.d.At(score).Get(k)
			preOffset = raw
			nextScore, nextK = score-(e.penalty.O+e.penalty.E), k+1
			op = OpDelete
		case markerDeleteExt:
			raw, _ := e.d.At(score).Get(k)
			preOffset = raw
			nextScore, nextK = score-e.penalty.E, k+1
			op = OpDelete
		default:
			// Unreachable for score>0: every cell beyond the initial one
			// was produced by exactly one of the five recurrence arrows.
			nextScore, nextK = 0, 0
		}

		if matchLen := finalOffset - preOffset; matchLen > 0 {
			reversedOps = append(reversedOps, step{OpMatch, matchLen})
		}
		reversedOps = append(reversedOps, step{op, 1})

		score, k = nextScore, nextK
	}

	finalOffset0, _ := e.m.At(0).Get(0)
	if finalOffset0 > 0 {
		reversedOps = append(reversedOps, step{OpMatch, finalOffset0})
	}

	res := &Result{Penalty: originalScore}
	ops := make([]Run, 0, len(reversedOps))
	for i := len(reversedOps) - 1; i >= 0; i-- {
		s := reversedOps[i]
		if n := len(ops); n > 0 && ops[n-1].Op == s.op {
			ops[n-1].N += s.n
			continue
		}
		ops = append(ops, Run{N: s.n, Op: s.op})
	}

	var qc, tc uint32
	for _, r := range ops {
		switch r.Op {
		case OpMatch, OpMismatch:
			qc += r.N
			tc += r.N
		case OpInsert:
			qc += r.N
		case OpDelete:
			tc += r.N
		}
	}
	res.Ops = ops
	res.QueryConsumed = qc
	res.TargetConsumed = tc
	return res
}

// bestPartial is used when the penalty budget is exhausted before either
// sequence end is reached: it picks the diagonal in the final score's M
// wavefront with the greatest combined query+target progress and
// backtraces from there, producing the best alignment the budget allowed.
func (e *Extender) bestPartial(maxPenalty uint32, qn, tn int) *Result {
	mwf := e.m.At(maxPenalty)
	if mwf == nil {
		return &Result{}
	}
	bestK := mwf.Lo
	bestProgress := -1
	found := false
	for k := mwf.Lo; k <= mwf.Hi; k++ {
		off, _ := mwf.Get(k)
		qp, tp := int(off)-k, int(off)
		if qp < 0 || tp < 0 || qp > qn || tp > tn {
			continue
		}
		if progress := qp + tp; progress > bestProgress {
			bestProgress, bestK, found = progress, k, true
		}
	}
	if !found {
		return &Result{}
	}
	res := e.backtrace(maxPenalty, bestK, qn, tn)
	res.Penalty = maxPenalty
	return res
}
