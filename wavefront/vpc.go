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
	"math"
	"sort"

	"github.com/shenwei356/sigalign/regulator"
	"github.com/shenwei356/sigalign/sigutil"
)

// VPC ("valid position candidate") is one point a local-mode extension
// passed through: the query/target length reached and the penalty spent to
// reach it, at some intermediate score during the fill (spec §4.6). Not
// every point the wavefront visits is interesting, only the ones that could
// be the true endpoint of the best-scoring local alignment through this
// anchor.
type VPC struct {
	QueryLength  uint32
	TargetLength uint32
	Penalty      uint32
	Score        uint32
	K            int
	// ScaledMargin is MaxpScaled*length - Penalty*PrecScale: positive means
	// this point is still within the cutoff, negative means it has already
	// crossed the line.
	ScaledMargin int64
}

// Margin computes the ScaledMargin for a candidate of the given length and
// penalty under cutoff.
func Margin(cutoff regulator.Cutoff, length, penalty uint32) int64 {
	return int64(cutoff.MaxpScaled)*int64(length) - int64(penalty)*int64(sigutil.PrecScale)
}

// SortedFront reduces candidates to their Pareto front, returned in
// ascending query length with strictly decreasing margin. A dropped
// candidate is dominated: some kept candidate reaches at least as far with
// at least as good a margin, so it can never be the true optimal endpoint.
func SortedFront(candidates []VPC) []VPC {
	sorted := append([]VPC(nil), candidates...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].QueryLength != sorted[j].QueryLength {
			return sorted[i].QueryLength > sorted[j].QueryLength
		}
		return sorted[i].ScaledMargin > sorted[j].ScaledMargin
	})

	front := make([]VPC, 0, len(sorted))
	maxMargin := int64(math.MinInt64)
	for _, c := range sorted {
		if c.ScaledMargin > maxMargin {
			front = append(front, c)
			maxMargin = c.ScaledMargin
		}
	}
	for i, j := 0, len(front)-1; i < j; i, j = i+1, j-1 {
		front[i], front[j] = front[j], front[i]
	}
	return front
}

// MaxMargin returns the greatest ScaledMargin among candidates, or
// math.MinInt64 if candidates is empty. Unlike OptimalPosition, it does not
// discard points that have already crossed the cutoff line: it is used to
// seed the other side's spare penalty determinant, not to pick a reportable
// endpoint (spec §4.5's "point of maximum length" feeding the opposite
// side's budget).
func MaxMargin(candidates []VPC) int64 {
	max := int64(math.MinInt64)
	for _, c := range candidates {
		if c.ScaledMargin > max {
			max = c.ScaledMargin
		}
	}
	return max
}

// OptimalPosition returns the candidate on front with the greatest combined
// query+target length among those still within the cutoff (non-negative
// margin). It reports false when no candidate qualifies.
func OptimalPosition(front []VPC) (VPC, bool) {
	var best VPC
	found := false
	for _, c := range front {
		if c.ScaledMargin < 0 {
			continue
		}
		if !found || int64(c.QueryLength)+int64(c.TargetLength) > int64(best.QueryLength)+int64(best.TargetLength) {
			best, found = c, true
		}
	}
	return best, found
}
