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

import "github.com/shenwei356/sigalign/reference"

// TargetAlignment groups the alignments found against one target id.
type TargetAlignment struct {
	TargetID   uint32
	Alignments []Alignment
}

// LabeledTargetAlignment is a TargetAlignment carrying the target's stored
// label string, so a caller formatting results does not need to keep the
// Reference around just to resolve an id back to a name.
type LabeledTargetAlignment struct {
	TargetAlignment
	Label string
}

// groupByTarget buckets a flat alignment slice by TargetID, preserving the
// ascending TargetID-then-insertion order Align already produces.
func groupByTarget(alignments []Alignment) []TargetAlignment {
	var out []TargetAlignment
	var cur *TargetAlignment
	for _, a := range alignments {
		if cur == nil || cur.TargetID != a.TargetID {
			out = append(out, TargetAlignment{TargetID: a.TargetID})
			cur = &out[len(out)-1]
		}
		cur.Alignments = append(cur.Alignments, a)
	}
	return out
}

// AlignLabeled runs Align against ref and wraps each resulting
// TargetAlignment with the target's stored label (spec §6's
// align_labeled).
func (a *Aligner) AlignLabeled(ref *reference.Reference, query []byte) ([]LabeledTargetAlignment, error) {
	alignments, err := a.Align(ref.Index, query)
	if err != nil {
		return nil, err
	}
	grouped := groupByTarget(alignments)
	out := make([]LabeledTargetAlignment, len(grouped))
	for i, g := range grouped {
		out[i] = LabeledTargetAlignment{TargetAlignment: g, Label: ref.Label(g.TargetID)}
	}
	return out, nil
}
