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

package align

import (
	"sort"

	"github.com/shenwei356/sigalign/seqindex"
)

// interval is a half-open [start, end) query range already claimed by an
// accepted alignment, used to keep looser cutoff tiers from re-reporting a
// region a stricter tier already aligned.
type interval struct{ start, end uint32 }

// mask tracks claimed query intervals per target id. It is intentionally a
// plain sorted slice per target rather than a tree: the number of accepted
// alignments for one query is small enough that linear scans are cheap and
// the code stays easy to follow.
type mask struct {
	byTarget map[uint32][]interval
}

func newMask() *mask { return &mask{byTarget: make(map[uint32][]interval)} }

// overlaps reports whether [start,end) intersects any interval already
// claimed for targetID.
func (m *mask) overlaps(targetID uint32, start, end uint32) bool {
	for _, iv := range m.byTarget[targetID] {
		if start < iv.end && iv.start < end {
			return true
		}
	}
	return false
}

func (m *mask) claim(targetID uint32, start, end uint32) {
	ivs := m.byTarget[targetID]
	i := sort.Search(len(ivs), func(i int) bool { return ivs[i].start >= start })
	ivs = append(ivs, interval{})
	copy(ivs[i+1:], ivs[i:])
	ivs[i] = interval{start, end}
	m.byTarget[targetID] = ivs
}

// alignChaining runs the cutoff tiers from strictest to most lenient
// (Options.ChainingCutoffs, in the order New checked runs strict to lenient):
// an anchor accepted under a stricter tier masks its query span out of every
// looser tier, so a region already explained by a tight alignment is never
// re-reported as a sloppier one (spec §4.7's "Chaining" mode).
func (a *Aligner) alignChaining(idx *seqindex.PatternIndex, query []byte, table *seqindex.AnchorTable) []Alignment {
	m := newMask()
	var out []Alignment

	for _, cutoff := range a.opts.ChainingCutoffs {
		for _, anchor := range table.Anchors {
			anchorLen := anchor.Length(a.reg.PatternSize)
			if m.overlaps(anchor.TargetID, anchor.QueryPos, anchor.QueryPos+anchorLen) {
				continue
			}
			alignment, ok := a.extendAnchorUnderCutoff(idx, query, anchor, cutoff)
			if !ok {
				continue
			}
			if m.overlaps(alignment.TargetID, alignment.QueryStart, alignment.QueryEnd) {
				continue
			}
			m.claim(alignment.TargetID, alignment.QueryStart, alignment.QueryEnd)
			out = append(out, alignment)
		}
	}
	return out
}
