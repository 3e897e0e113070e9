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
	"github.com/shenwei356/sigalign/regulator"
	"github.com/shenwei356/sigalign/sigutil"
)

// SparePenalty computes the penalty budget available to extend a single
// anchor side (spec §4.5): returns one more than the largest penalty u
// for which one gap of penalty u (a gap-open plus (u-O)/E extends) over
// the anchor and the shorter of the two remaining slice lengths keeps
// PrecScale·u ≤ maxpScaled·(anchorLength+sideLength+(u-O)/E) + determinant,
// where determinant is maxpScaled·length_so_far -
// PrecScale·penalty_so_far already proven achievable by the rest of the
// alignment (the precomputed left-of-anchor pattern existence for a right
// extension, or the other side's realized point-of-maximum-length for a
// left extension). Never returns less than a single gap-open, matching
// original_source's Anchor::spare_penalty.
func SparePenalty(penalty regulator.Penalty, cutoff regulator.Cutoff, determinant int64, anchorLength, sideQueryLength, sideTargetLength uint32) uint32 {
	sideLength := sideQueryLength
	if sideTargetLength < sideLength {
		sideLength = sideTargetLength
	}

	denom := int64(sigutil.PrecScale)*int64(penalty.E) - int64(cutoff.MaxpScaled)
	if denom <= 0 {
		return penalty.O
	}

	numer := int64(penalty.E)*determinant +
		int64(cutoff.MaxpScaled)*(int64(penalty.E)*int64(anchorLength+sideLength)-int64(penalty.O))
	budget := numer/denom + 1

	if budget < int64(penalty.O) {
		budget = int64(penalty.O)
	}
	if budget < 0 {
		budget = 0
	}
	return uint32(budget)
}
