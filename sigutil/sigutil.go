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

// Package sigutil holds the small gcd and fixed-point helpers shared by
// every sigalign package, factored out of the places that would otherwise
// duplicate them.
package sigutil

// PrecScale is the fixed-point denominator used throughout the engine so
// that a penalty-per-length cutoff can be compared with integer arithmetic
// instead of floating point.
const PrecScale uint64 = 100_000

// Gcd3 returns the greatest common divisor of a, b, c (0 is treated as the
// neutral element). Panics never occur: Gcd(0,0,0) returns 0.
func Gcd3(a, b, c uint32) uint32 {
	return gcd(gcd(a, b), c)
}

func gcd(a, b uint32) uint32 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// RoundScaled rounds maxp*PrecScale to the nearest integer, matching the
// regulator's "maxp_scaled = round(maxp*PREC_SCALE)" requirement.
func RoundScaled(maxp float64) uint32 {
	return uint32(maxp*float64(PrecScale) + 0.5)
}

// PenaltyPerLengthExceeds reports whether penalty/length is strictly greater
// than maxpScaled/PrecScale, computed as a cross-multiplication so no
// division or floating point is involved.
func PenaltyPerLengthExceeds(penalty, length uint64, maxpScaled uint32) bool {
	return penalty*PrecScale > uint64(maxpScaled)*length
}

// DivCeil computes ceil(a/b) for non-negative integers.
func DivCeil(a, b uint32) uint32 {
	if b == 0 {
		return 0
	}
	return (a + b - 1) / b
}

// DivFloor computes floor(a/b) for non-negative integers.
func DivFloor(a, b uint32) uint32 {
	if b == 0 {
		return 0
	}
	return a / b
}

// MinU32 and MaxU32 avoid importing the generic "min"/"max" builtins at
// call sites that need an explicit uint32 signature.
func MinU32(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}

func MaxU32(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}
