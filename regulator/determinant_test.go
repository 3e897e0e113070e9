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

package regulator

import "testing"

func TestSparePenaltyDeterminantsStartsAtZero(t *testing.T) {
	mpp := MinPenaltyForPattern{Odd: 6, Even: 4}
	cutoff := Cutoff{Minl: 100, MaxpScaled: 1000}
	out := SparePenaltyDeterminants(10, 25, cutoff, mpp, []int{2, 3, 5, 9})
	if len(out) != 10 {
		t.Fatalf("expected one entry per pattern, got %d", len(out))
	}
	if out[0] != 0 {
		t.Fatalf("the first pattern has nothing to its left, expected 0, got %d", out[0])
	}
}

func TestSparePenaltyDeterminantsAllMatchedIsLinear(t *testing.T) {
	mpp := MinPenaltyForPattern{Odd: 6, Even: 4}
	cutoff := Cutoff{Minl: 100, MaxpScaled: 1000}
	matched := []int{0, 1, 2, 3, 4}
	out := SparePenaltyDeterminants(5, 25, cutoff, mpp, matched)
	for i := 1; i < len(out); i++ {
		want := int64(i) * int64(25) * int64(1000)
		if out[i] != want {
			t.Fatalf("entry %d: got %d, want %d (every window to the left is a free exact hit)", i, out[i], want)
		}
	}
}

func TestSparePenaltyDeterminantsPenalizesGaps(t *testing.T) {
	mpp := MinPenaltyForPattern{Odd: 6, Even: 4}
	cutoff := Cutoff{Minl: 100, MaxpScaled: 1000}
	allMatched := SparePenaltyDeterminants(6, 25, cutoff, mpp, []int{0, 1, 2, 3, 4, 5})
	oneGap := SparePenaltyDeterminants(6, 25, cutoff, mpp, []int{0, 1, 3, 4, 5})
	if oneGap[5] >= allMatched[5] {
		t.Fatalf("an unmatched window should lower the determinant at every later index: gap=%d full=%d", oneGap[5], allMatched[5])
	}
}

func TestSparePenaltyDeterminantsEmpty(t *testing.T) {
	if out := SparePenaltyDeterminants(0, 25, Cutoff{}, MinPenaltyForPattern{}, nil); out != nil {
		t.Fatalf("expected nil for zero patterns, got %v", out)
	}
}
