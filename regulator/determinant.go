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

import "github.com/shenwei356/sigalign/sigutil"

// SparePenaltyDeterminants precomputes, for every pattern window index p in
// [0, totalPatterns), the spare penalty determinant (scaled margin,
// maxpScaled*length - PrecScale*penalty) accumulated by the pattern windows
// strictly to p's left that matchedPatterns does not list as hit. A matched
// window is free (it is an exact k-length hit); an unmatched window cannot
// be, so it costs at least MinPenaltyForPattern.Odd alone or .Even when it
// pairs with an adjacent unmatched window, whichever keeps the running
// determinant higher. The result bounds how much of the penalty budget an
// anchor starting at pattern p may assume was already spent to its left,
// rather than treating the whole unanchored prefix as free (spec §4.5).
//
// matchedPatterns must be sorted ascending with values in [0, totalPatterns).
// Ported from original_source's SparePenaltyDeterminantPerPattern::new.
func SparePenaltyDeterminants(totalPatterns int, patternSize uint32, cutoff Cutoff, mpp MinPenaltyForPattern, matchedPatterns []int) []int64 {
	if totalPatterns <= 0 {
		return nil
	}

	existence := make([]bool, totalPatterns)
	for _, p := range matchedPatterns {
		if p >= 0 && p < totalPatterns {
			existence[p] = true
		}
	}
	// The last pattern index never becomes the left-neighbour of any anchor
	// start, so it contributes nothing to the table.
	existence = existence[:totalPatterns-1]

	scaledOdd := int64(mpp.Odd) * int64(sigutil.PrecScale)
	scaledEven := int64(mpp.Even) * int64(sigutil.PrecScale)

	penaltyPerScale := int64(cutoff.MaxpScaled)
	forMatched := int64(patternSize) * penaltyPerScale
	toRightBeforePrev := forMatched - penaltyPerScale
	continuedToPrev := forMatched + penaltyPerScale

	out := make([]int64, totalPatterns)
	out[0] = 0

	determinant := int64(0)
	// usedEven tracks whether the consecutive run of unmatched patterns
	// ending at the previous index has even length (0 counts as even).
	usedEven := true
	for i, matched := range existence {
		if matched {
			determinant += forMatched
			usedEven = true
		} else if usedEven {
			// The run ending here was even (0, 2, 4, ...); adding one more
			// makes it odd, costing at least one more mismatch.
			continued := determinant + continuedToPrev - scaledOdd
			if continued < toRightBeforePrev {
				determinant, usedEven = toRightBeforePrev, true
			} else {
				determinant, usedEven = continued, false
			}
		} else {
			// The run ending here was odd; adding one more makes it even,
			// which can share a single gap-open across the pair.
			continued := determinant + continuedToPrev - scaledEven
			if continued < toRightBeforePrev {
				determinant = toRightBeforePrev
			} else {
				determinant = continued
			}
			usedEven = true
		}
		out[i+1] = determinant
	}
	return out
}
