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

func TestNewRejectsBadParams(t *testing.T) {
	cases := []struct {
		name         string
		x, o, e, minl uint32
		maxp         float64
	}{
		{"zero maxp", 4, 6, 2, 50, 0},
		{"negative-equivalent maxp", 4, 6, 2, 50, -0.1},
		{"maxp over 1", 4, 6, 2, 50, 1.5},
		{"zero gap extend", 4, 6, 0, 50, 0.1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := New(c.x, c.o, c.e, c.minl, c.maxp); err == nil {
				t.Fatalf("expected an error")
			}
		})
	}
}

func TestNewDerivesUsablePatternSize(t *testing.T) {
	r, err := New(4, 6, 2, 100, 0.2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.PatternSize < 4 {
		t.Fatalf("pattern size %d must be at least 4", r.PatternSize)
	}
	if r.Cutoff.Minl != 100 {
		t.Fatalf("cutoff minl not preserved: %d", r.Cutoff.Minl)
	}
}

func TestNewFailsWhenKBelowFour(t *testing.T) {
	// An extremely strict cutoff on a short minimum length leaves no room
	// for a pattern size of at least 4.
	if _, err := New(4, 6, 2, 4, 0.001); err == nil {
		t.Fatalf("expected derived k < 4 to fail construction")
	}
}

func TestUncompressReversesGcd(t *testing.T) {
	r, err := New(8, 12, 4, 100, 0.2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Gcd() != 4 {
		t.Fatalf("expected gcd 4, got %d", r.Gcd())
	}
	if r.Penalty.X != 2 || r.Penalty.O != 3 || r.Penalty.E != 1 {
		t.Fatalf("unexpected compressed penalty: %+v", r.Penalty)
	}
	if r.Uncompress(r.Penalty.X) != 8 {
		t.Fatalf("uncompress did not restore the raw mismatch penalty")
	}
	if r.RawPenalty().X != 8 {
		t.Fatalf("raw penalty not preserved")
	}
}

func TestCalculateMaxPatternSizeNeverPanics(t *testing.T) {
	for x := uint32(1); x < 6; x++ {
		for o := uint32(0); o < 6; o++ {
			for e := uint32(1); e < 6; e++ {
				for minl := uint32(50); minl < 80; minl += 10 {
					for _, maxp := range []float64{0.01, 0.05, 0.1, 0.2, 0.5} {
						_, _ = New(x, o, e, minl, maxp)
					}
				}
			}
		}
	}
}
