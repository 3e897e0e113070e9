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
	"sort"

	"github.com/shenwei356/sigalign/regulator"
)

// Anchor is one ungapped seed shared by the query and a target: PatternCount
// consecutive, diagonal-consistent pattern hits folded into a single span
// (spec §4.3).
type Anchor struct {
	TargetID     uint32
	TargetPos    uint64
	QueryPos     uint32
	PatternCount uint32

	// SparePenaltyDeterminantOfLeft is the precomputed spare penalty
	// determinant (spec §4.5) for the pattern windows strictly to the left
	// of this anchor's first pattern, against the owning target.
	SparePenaltyDeterminantOfLeft int64
}

// Length returns the number of query/target bases this anchor covers.
func (a Anchor) Length(k uint32) uint32 { return a.PatternCount * k }

// AnchorTable is the full set of anchors derived from slicing a query into
// non-overlapping, pattern-size windows and locating each window against a
// PatternIndex.
type AnchorTable struct {
	K       uint32
	Anchors []Anchor
}

type anchorKey struct {
	targetID  uint32
	targetPos uint64
}

// BuildAnchorTable slices query into floor(len(query)/k) non-overlapping
// patterns, locates each one, and folds consecutive diagonal-consistent hits
// into single anchors, mirroring the reference pos_table merge: the fold
// runs from the last pattern back to the first, so an anchor only ever
// extends backward into an earlier pattern, never forward past where a
// later diagonal broke.
func BuildAnchorTable(idx *PatternIndex, query []byte, k uint32, cutoff regulator.Cutoff, mpp regulator.MinPenaltyForPattern, allowedTargetIDs []uint32) *AnchorTable {
	numPatterns := len(query) / int(k)
	table := &AnchorTable{K: k}
	if numPatterns == 0 {
		return table
	}

	hitsByPattern := locatePatterns(idx, query, k, numPatterns, allowedTargetIDs)
	determinants := sparePenaltyDeterminantsByTarget(hitsByPattern, numPatterns, k, cutoff, mpp)

	layer := make(map[anchorKey]Anchor)
	var finished []Anchor
	for p := numPatterns - 1; p >= 0; p-- {
		queryPos := uint32(p) * k
		hits := hitsByPattern[p]

		next := make(map[anchorKey]Anchor, len(hits))
		for _, h := range hits {
			determinant := determinants[h.TargetID][p]
			if existing, ok := layer[forwardKeyOf(h, k)]; ok {
				next[anchorKey{targetID: h.TargetID, targetPos: h.Offset}] = Anchor{
					TargetID:                      h.TargetID,
					TargetPos:                     h.Offset,
					QueryPos:                      queryPos,
					PatternCount:                  existing.PatternCount + 1,
					SparePenaltyDeterminantOfLeft: determinant,
				}
				delete(layer, forwardKeyOf(h, k))
			} else {
				next[anchorKey{targetID: h.TargetID, targetPos: h.Offset}] = Anchor{
					TargetID:                      h.TargetID,
					TargetPos:                     h.Offset,
					QueryPos:                      queryPos,
					PatternCount:                  1,
					SparePenaltyDeterminantOfLeft: determinant,
				}
			}
		}
		// Anything left in layer belongs to a diagonal that pattern p did
		// not continue; it is already final and is set aside untouched.
		for _, anchor := range layer {
			finished = append(finished, anchor)
		}
		layer = next
	}

	table.Anchors = make([]Anchor, 0, len(finished)+len(layer))
	table.Anchors = append(table.Anchors, finished...)
	for _, a := range layer {
		table.Anchors = append(table.Anchors, a)
	}
	sort.Slice(table.Anchors, func(i, j int) bool {
		if table.Anchors[i].QueryPos != table.Anchors[j].QueryPos {
			return table.Anchors[i].QueryPos < table.Anchors[j].QueryPos
		}
		if table.Anchors[i].TargetID != table.Anchors[j].TargetID {
			return table.Anchors[i].TargetID < table.Anchors[j].TargetID
		}
		return table.Anchors[i].TargetPos < table.Anchors[j].TargetPos
	})
	return table
}

func forwardKeyOf(h TargetHit, k uint32) anchorKey {
	return anchorKey{targetID: h.TargetID, targetPos: h.Offset + uint64(k)}
}

// sparePenaltyDeterminantsByTarget derives, for every target that any
// pattern window hit, the per-pattern-index spare penalty determinant table
// (spec §4.5), keyed so an anchor can look up the determinant for its own
// starting pattern index against the target it hit.
func sparePenaltyDeterminantsByTarget(hitsByPattern [][]TargetHit, numPatterns int, k uint32, cutoff regulator.Cutoff, mpp regulator.MinPenaltyForPattern) map[uint32][]int64 {
	matchedByTarget := make(map[uint32][]int)
	for p, hits := range hitsByPattern {
		seen := make(map[uint32]bool)
		for _, h := range hits {
			if !seen[h.TargetID] {
				seen[h.TargetID] = true
				matchedByTarget[h.TargetID] = append(matchedByTarget[h.TargetID], p)
			}
		}
	}
	out := make(map[uint32][]int64, len(matchedByTarget))
	for tid, matched := range matchedByTarget {
		out[tid] = regulator.SparePenaltyDeterminants(numPatterns, k, cutoff, mpp, matched)
	}
	return out
}

// locatePatterns resolves every pattern window's target hits, preferring a
// single Aho-Corasick scan over the whole target text when the index was
// configured for it and falling back to one FM-index search per window
// otherwise (or if the automaton fails to build, which only ever happens
// when a pattern is empty).
func locatePatterns(idx *PatternIndex, query []byte, k uint32, numPatterns int, allowedTargetIDs []uint32) [][]TargetHit {
	windows := make([][]byte, numPatterns)
	for p := 0; p < numPatterns; p++ {
		windows[p] = query[uint32(p)*k : uint32(p)*k+k]
	}

	out := make([][]TargetHit, numPatterns)
	if !idx.UseBatchLocator() {
		for p, w := range windows {
			out[p] = idx.LocateRestrictedTo(w, allowedTargetIDs)
		}
		return out
	}

	bl, err := NewBatchLocator(windows)
	if err != nil {
		for p, w := range windows {
			out[p] = idx.LocateRestrictedTo(w, allowedTargetIDs)
		}
		return out
	}

	for _, hit := range bl.LocateAll(idx.Text()) {
		tid := idx.targetIndexOf(hit.Offset)
		if tid < 0 {
			continue
		}
		if hit.Offset+uint64(len(hit.Text)) > idx.targetBoundaries[tid+1] {
			continue // pattern would run past the owning target's end
		}
		if len(allowedTargetIDs) > 0 && !containsSorted(allowedTargetIDs, uint32(tid)) {
			continue
		}
		th := TargetHit{TargetID: uint32(tid), Offset: hit.Offset - idx.targetBoundaries[tid]}
		for p, w := range windows {
			if string(w) == string(hit.Text) {
				out[p] = append(out[p], th)
			}
		}
	}
	for p := range out {
		sort.Slice(out[p], func(i, j int) bool {
			if out[p][i].TargetID != out[p][j].TargetID {
				return out[p][i].TargetID < out[p][j].TargetID
			}
			return out[p][i].Offset < out[p][j].Offset
		})
	}
	return out
}
