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

package seqindex

import (
	"testing"

	"github.com/shenwei356/sigalign/regulator"
)

var testCutoff = regulator.Cutoff{Minl: 0, MaxpScaled: 100000}
var testMPP = regulator.MinPenaltyForPattern{Odd: 4, Even: 6}

func buildTestIndex(t *testing.T, targets [][]byte) (*PatternIndex, []uint64) {
	t.Helper()
	var text []byte
	boundaries := []uint64{0}
	for _, tgt := range targets {
		text = append(text, tgt...)
		boundaries = append(boundaries, uint64(len(text)))
	}
	idx, err := New(text, boundaries, Options{Alphabet: Nucleotide, SASamplingRatio: 4, LookupTableKmerSize: 3})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return idx, boundaries
}

func TestLocateFindsExactOccurrences(t *testing.T) {
	idx, _ := buildTestIndex(t, [][]byte{[]byte("ACGTACGTACGT")})
	hits := idx.Locate([]byte("ACGT"))
	want := []uint64{0, 4, 8}
	if len(hits) != len(want) {
		t.Fatalf("got %v, want %v", hits, want)
	}
	for i := range want {
		if hits[i] != want[i] {
			t.Fatalf("got %v, want %v", hits, want)
		}
	}
}

func TestLocateRestrictedToSplitsByTarget(t *testing.T) {
	idx, _ := buildTestIndex(t, [][]byte{[]byte("AAACCCGGG"), []byte("TTTAAACCC")})
	hits := idx.LocateRestrictedTo([]byte("AAA"), nil)
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits across both targets, got %d: %+v", len(hits), hits)
	}
	seen := map[uint32]uint64{}
	for _, h := range hits {
		seen[h.TargetID] = h.Offset
	}
	if off, ok := seen[0]; !ok || off != 0 {
		t.Fatalf("target 0 hit wrong: %+v", seen)
	}
	if off, ok := seen[1]; !ok || off != 3 {
		t.Fatalf("target 1 hit wrong: %+v", seen)
	}
}

func TestLocateRestrictedToFiltersAllowedTargets(t *testing.T) {
	idx, _ := buildTestIndex(t, [][]byte{[]byte("AAACCCGGG"), []byte("TTTAAACCC")})
	hits := idx.LocateRestrictedTo([]byte("AAA"), []uint32{1})
	if len(hits) != 1 || hits[0].TargetID != 1 {
		t.Fatalf("expected only target 1, got %+v", hits)
	}
}

func TestBuildAnchorTableMergesConsecutivePatterns(t *testing.T) {
	// A single target that repeats the query verbatim: the two 3-base
	// pattern windows land on a contiguous diagonal and fold into one
	// anchor with PatternCount 2. ACG also occurs at target offsets 0 and 3
	// off that diagonal (window 0 at 3, window 1 at 0), which stay as two
	// single-pattern anchors.
	idx, _ := buildTestIndex(t, [][]byte{[]byte("ACGACGTTTT")})
	query := []byte("ACGACG")
	tbl := BuildAnchorTable(idx, query, 3, testCutoff, testMPP, nil)
	if len(tbl.Anchors) != 3 {
		t.Fatalf("expected the merged anchor plus two off-diagonal anchors, got %d: %+v", len(tbl.Anchors), tbl.Anchors)
	}
	a := tbl.Anchors[0]
	if a.PatternCount != 2 {
		t.Fatalf("expected PatternCount 2, got %d", a.PatternCount)
	}
	if a.TargetPos != 0 || a.QueryPos != 0 {
		t.Fatalf("unexpected anchor start: %+v", a)
	}
	if a.Length(3) != 6 {
		t.Fatalf("unexpected anchor length: %d", a.Length(3))
	}
}

func TestBuildAnchorTableKeepsBrokenDiagonalsSeparate(t *testing.T) {
	idx, _ := buildTestIndex(t, [][]byte{[]byte("ACGTTTACG")})
	query := []byte("ACGACG")
	tbl := BuildAnchorTable(idx, query, 3, testCutoff, testMPP, nil)
	if len(tbl.Anchors) != 4 {
		t.Fatalf("expected four independent anchors, got %d: %+v", len(tbl.Anchors), tbl.Anchors)
	}
	for _, a := range tbl.Anchors {
		if a.PatternCount != 1 {
			t.Fatalf("anchors should not merge across a broken diagonal: %+v", a)
		}
	}
}
