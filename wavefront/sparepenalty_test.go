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
	"testing"

	"github.com/shenwei356/sigalign/regulator"
)

func TestSparePenaltyNeverGoesBelowGapOpen(t *testing.T) {
	p := regulator.Penalty{X: 4, O: 6, E: 2}
	cutoff := regulator.Cutoff{Minl: 50, MaxpScaled: 10000}
	budget := SparePenalty(p, cutoff, 0, 10, 5, 5)
	if budget < p.O {
		t.Fatalf("expected at least the gap-open cost %d, got %d", p.O, budget)
	}
}

func TestSparePenaltyGrowsWithRemainingLength(t *testing.T) {
	p := regulator.Penalty{X: 4, O: 6, E: 2}
	cutoff := regulator.Cutoff{Minl: 0, MaxpScaled: 10000}
	short := SparePenalty(p, cutoff, 0, 10, 5, 5)
	long := SparePenalty(p, cutoff, 0, 10, 50, 50)
	if long <= short {
		t.Fatalf("expected a longer remaining side to widen the budget: short=%d long=%d", short, long)
	}
}

func TestSparePenaltyTightensWithLowerDeterminant(t *testing.T) {
	p := regulator.Penalty{X: 4, O: 2, E: 2}
	cutoff := regulator.Cutoff{Minl: 0, MaxpScaled: 50000}
	generous := SparePenalty(p, cutoff, 0, 10, 20, 20)
	tight := SparePenalty(p, cutoff, -200000, 10, 20, 20)
	if tight >= generous {
		t.Fatalf("a negative determinant should shrink the budget: generous=%d tight=%d", generous, tight)
	}
}

func TestMaxMarginPicksGreatestAndHandlesEmpty(t *testing.T) {
	if got := MaxMargin(nil); got != math.MinInt64 {
		t.Fatalf("expected math.MinInt64 for no candidates, got %d", got)
	}
	vpcs := []VPC{{ScaledMargin: 5}, {ScaledMargin: 100}, {ScaledMargin: -10}}
	if got := MaxMargin(vpcs); got != 100 {
		t.Fatalf("expected 100, got %d", got)
	}
}
