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

// Package regulator owns the immutable alignment parameters: the affine-gap
// Penalty, the (minl, maxp) Cutoff, and the pattern size k derived from them.
package regulator

import (
	"github.com/pkg/errors"

	"github.com/shenwei356/sigalign/sigutil"
)

// Penalty is the gap-affine penalty set. Match costs 0. Mismatch costs X,
// opening a gap costs O+E, every additional gap step costs E.
type Penalty struct {
	X uint32
	O uint32
	E uint32
}

// Cutoff is the compiled, fixed-point acceptance threshold: length must be
// at least Minl and penalty*PrecScale must not exceed MaxpScaled*length.
type Cutoff struct {
	Minl       uint32
	MaxpScaled uint32
}

// MinPenaltyForPattern is the minimum penalty achievable inside one
// k-length window by introducing a single mismatch (Odd) or a single
// gap-open plus one-or-two gap-extends (Even).
type MinPenaltyForPattern struct {
	Odd  uint32
	Even uint32
}

// ErrInvalidRegulator is returned by New when (x,o,e,minl,maxp) cannot
// produce a usable pattern size.
var ErrInvalidRegulator = errors.New("regulator: invalid parameters")

// Regulator bundles the compressed penalty, the cutoff, the per-pattern
// minimum-penalty table and the derived pattern size k. It is immutable
// once constructed and safe to share across many Aligner instances.
type Regulator struct {
	rawPenalty Penalty
	gcd        uint32

	Penalty              Penalty
	Cutoff               Cutoff
	MinPenaltyForPattern MinPenaltyForPattern
	PatternSize          uint32
}

// New validates (x,o,e,minl,maxp) and derives the pattern size k by binary
// search, per spec §4.1. maxp must lie in (0,1], e must be at least 1, and
// the derived k must be at least 4.
func New(x, o, e, minl uint32, maxp float64) (*Regulator, error) {
	if maxp <= 0 || maxp > 1 {
		return nil, errors.Wrapf(ErrInvalidRegulator, "maxp must be in (0,1], got %v", maxp)
	}
	if e == 0 {
		return nil, errors.Wrap(ErrInvalidRegulator, "gap extend penalty e must not be 0")
	}

	g := sigutil.Gcd3(x, o, e)
	if g == 0 {
		g = 1
	}
	rawPenalty := Penalty{X: x, O: o, E: e}
	compressed := Penalty{X: x / g, O: o / g, E: e / g}

	maxpScaled := sigutil.RoundScaled(maxp)
	cutoff := Cutoff{Minl: minl, MaxpScaled: maxpScaled}
	mpp := newMinPenaltyForPattern(compressed)

	k := calculateMaxPatternSize(compressed, cutoff, mpp)
	if k < 4 {
		return nil, errors.Wrapf(ErrInvalidRegulator, "derived pattern size %d is below the minimum of 4", k)
	}

	return &Regulator{
		rawPenalty:           rawPenalty,
		gcd:                  g,
		Penalty:              compressed,
		Cutoff:               cutoff,
		MinPenaltyForPattern: mpp,
		PatternSize:          k,
	}, nil
}

// RawPenalty returns the uncompressed penalty set as supplied to New.
func (r *Regulator) RawPenalty() Penalty { return r.rawPenalty }

// Gcd returns the divisor used to compress Penalty from RawPenalty.
func (r *Regulator) Gcd() uint32 { return r.gcd }

// Uncompress multiplies a compressed-scale penalty back to the caller's
// original scale.
func (r *Regulator) Uncompress(penalty uint32) uint32 { return penalty * r.gcd }

// newMinPenaltyForPattern ports alignment_condition.rs's MinPenaltyForPattern::new:
// when a single mismatch is cheaper than opening a gap, that bounds the odd
// case, and the even case is the cheaper of "two mismatches" or "one
// gap-open plus two gap-extends minus a mismatch" (the cell can always
// fall back to matching one base for free). Otherwise a gap is always
// cheaper than a mismatch and both bounds come from the gap cost.
func newMinPenaltyForPattern(p Penalty) MinPenaltyForPattern {
	var odd, even uint32
	if p.X <= p.O+p.E {
		odd = p.X
		if p.X*2 <= p.O+p.E*2 {
			even = p.X
		} else {
			even = p.O + p.E*2 - p.X
		}
	} else {
		odd = p.O + p.E
		even = p.E
	}
	return MinPenaltyForPattern{Odd: odd, Even: even}
}

// calculateMaxPatternSize performs the binary search over k in [1, upperK],
// ported from original_source's pattern_size.rs: each candidate k is
// validated by inspecting six boundary (length, min_penalty) points that
// straddle the cutoff line near minl and on through the next run of
// patterns.
func calculateMaxPatternSize(p Penalty, cutoff Cutoff, mpp MinPenaltyForPattern) uint32 {
	lowerK := uint32(1)
	upperK := upperValueOfK(cutoff, mpp)

	result := lowerK
	for lowerK <= upperK {
		midK := lowerK + (upperK-lowerK)/2
		if checkK(midK, p, cutoff, mpp) {
			result = midK
			lowerK = midK + 1
		} else {
			if midK == 0 {
				break
			}
			upperK = midK - 1
		}
	}
	return result
}

func upperValueOfK(cutoff Cutoff, mpp MinPenaltyForPattern) uint32 {
	if cutoff.MaxpScaled == 0 {
		return 0
	}
	v1 := sigutil.DivFloor(uint32(sigutil.PrecScale)*(mpp.Odd+mpp.Even), 2*cutoff.MaxpScaled)
	v2 := sigutil.DivCeil(cutoff.Minl+2, 2)
	if v2 == 0 {
		return 0
	}
	v2--
	return sigutil.MinU32(v1, v2)
}

func checkK(k uint32, p Penalty, cutoff Cutoff, mpp MinPenaltyForPattern) bool {
	m := calculateM(k, cutoff.Minl)
	caseNumber, ok := validateMinimumLengthPoint(k, m, p, cutoff, mpp)
	if !ok {
		return false
	}
	if m == 0 {
		m = 1
	}
	return validateNextFivePoints(caseNumber, k, m, p, cutoff, mpp)
}

func calculateM(k, minl uint32) uint32 {
	if k > minl+2 {
		return 0
	}
	return sigutil.DivFloor(minl+2-k, 2*k)
}

// validateMinimumLengthPoint classifies (k, minl) into one of six cases
// identical to the original's if_k_is_valid_when_the_length_is_minimum_length,
// returning the case number (1..6) when the boundary point stays strictly
// below the cutoff line.
func validateMinimumLengthPoint(k, m uint32, p Penalty, cutoff Cutoff, mpp MinPenaltyForPattern) (uint32, bool) {
	if m == 0 {
		// minl+2 is shorter than 3k: the minimum-length point itself can't be
		// reached, so it trivially stays off the cutoff line. Proceed
		// straight to the next-five-points check with m treated as 1.
		return 1, true
	}
	minl := cutoff.Minl
	pc := pC(p)

	var caseNumber uint32
	var minPenalty uint32

	switch {
	case minl == 2*m*k+k-2: // Case 1
		caseNumber = 1
		minPenalty = m*mpp.Odd + (m-1)*mpp.Even
	case minl == 2*m*k+k-1: // Case 2
		caseNumber = 2
		minPenalty = m*mpp.Odd + (m-1)*mpp.Even + p.O + p.E - mpp.Odd
	case minl <= 2*m*k+2*k-2: // Case 3
		caseNumber = 3
		useOneMore := m*mpp.Odd + m*mpp.Even
		if minl+1 < 2*m*k+k {
			minPenalty = useOneMore
		} else {
			fromPrev := m*mpp.Odd + (m-1)*mpp.Even + p.O + p.E - mpp.Odd + p.E*(minl+1-2*m*k-k)
			minPenalty = sigutil.MinU32(useOneMore, fromPrev)
		}
	case minl == 2*m*k+2*k-1: // Case 4
		caseNumber = 4
		minPenalty = m*mpp.Odd + m*mpp.Even + p.O + p.E - mpp.Even
	case minl == 2*m*k+2*k: // Case 5
		caseNumber = 5
		minPenalty = m*mpp.Odd + m*mpp.Even + p.O + p.E - mpp.Even + pc
	default: // Case 6
		caseNumber = 6
		useOneMore := (m+1)*mpp.Odd + m*mpp.Even
		if minl < 2*m*k+2*k {
			minPenalty = useOneMore
		} else {
			fromPrev := m*mpp.Odd + m*mpp.Even + p.O + p.E - mpp.Even + pc + p.E*(minl-2*m*k-2*k)
			minPenalty = sigutil.MinU32(useOneMore, fromPrev)
		}
	}

	if notTouchingCutoffLine(minPenalty, minl, cutoff) {
		return caseNumber, true
	}
	return 0, false
}

func validateNextFivePoints(caseNumber, k, m uint32, p Penalty, cutoff Cutoff, mpp MinPenaltyForPattern) bool {
	// Point 1
	{
		l := 2*m*k + k - 2
		pen := m*mpp.Odd + (m-1)*mpp.Even
		if caseNumber > 1 {
			l += 2 * k
			pen += mpp.Odd + mpp.Even
		}
		if !notTouchingCutoffLine(pen, l, cutoff) {
			return false
		}
	}
	// Point 2
	{
		l := 2*m*k + k - 1
		pen := m*mpp.Odd + (m-1)*mpp.Even + p.O + p.E - mpp.Odd
		if caseNumber > 2 {
			l += 2 * k
			pen += mpp.Odd + mpp.Even
		}
		if !notTouchingCutoffLine(pen, l, cutoff) {
			return false
		}
	}
	// Point 3
	{
		l := 2*m*k + 2*k - 2
		pen := m*mpp.Odd + m*mpp.Even
		if caseNumber > 3 {
			l += 2 * k
			pen += p.O + p.E - mpp.Even
		}
		if !notTouchingCutoffLine(pen, l, cutoff) {
			return false
		}
	}
	// Point 4
	{
		l := 2*m*k + 2*k - 1
		pen := m*mpp.Odd + m*mpp.Even + p.O + p.E - mpp.Even
		if caseNumber > 4 {
			l += 2 * k
			pen += mpp.Even
		}
		if !notTouchingCutoffLine(pen, l, cutoff) {
			return false
		}
	}
	// Point 5
	{
		l := 2*m*k + 2*k
		pen := m*mpp.Odd + m*mpp.Even + p.O + p.E - mpp.Even + pC(p)
		if caseNumber > 5 {
			l += 2 * k
			pen += mpp.Even
		}
		if !notTouchingCutoffLine(pen, l, cutoff) {
			return false
		}
	}
	return true
}

func notTouchingCutoffLine(penalty, length uint32, cutoff Cutoff) bool {
	return sigutil.PenaltyPerLengthExceeds(uint64(penalty), uint64(length), cutoff.MaxpScaled)
}

func pC(p Penalty) uint32 {
	if p.O+p.E <= p.X {
		return 0
	}
	return p.E
}
