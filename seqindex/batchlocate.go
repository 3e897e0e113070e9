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
	"github.com/coregx/ahocorasick"
	"github.com/pkg/errors"
)

// BatchLocator locates every pattern drawn from one query in a single pass
// over the concatenated target text, instead of one FM-index backward
// search per pattern. It trades the FM-index's sublinear-in-text-size
// search for a single linear scan that amortizes across however many
// patterns a query splits into; BuildAnchorTable reaches for it only when
// seqindex.Options.UseBatchLocator is set, since for a handful of
// patterns the per-pattern FM-index search is cheaper.
type BatchLocator struct {
	automaton *ahocorasick.Automaton
	// order[i] is the pattern bytes registered at automaton pattern id i,
	// so a reported match can be mapped back to its query window.
	order [][]byte
}

// NewBatchLocator builds an Aho-Corasick automaton over the distinct byte
// patterns supplied; duplicate patterns are registered once and fan out to
// every caller-side occurrence via LocateAll.
func NewBatchLocator(patterns [][]byte) (*BatchLocator, error) {
	builder := ahocorasick.NewBuilder()
	seen := map[string]bool{}
	var order [][]byte
	for _, p := range patterns {
		if seen[string(p)] {
			continue
		}
		seen[string(p)] = true
		order = append(order, p)
		builder.AddPattern(p)
	}
	automaton, err := builder.Build()
	if err != nil {
		return nil, errors.Wrap(err, "seqindex: build Aho-Corasick automaton")
	}
	return &BatchLocator{automaton: automaton, order: order}, nil
}

// Hit is one occurrence of pattern Text at Offset within the scanned text.
type Hit struct {
	Offset uint64
	Text   []byte
}

// LocateAll scans text once and returns every occurrence of every
// registered pattern, in ascending offset order. The registered patterns
// share one length (a query's pattern windows), so at most one of them
// starts at any offset and the scan resumes one byte past each match start.
func (b *BatchLocator) LocateAll(text []byte) []Hit {
	var hits []Hit
	at := 0
	for at <= len(text) {
		m := b.automaton.Find(text, at)
		if m == nil {
			break
		}
		hits = append(hits, Hit{Offset: uint64(m.Start), Text: text[m.Start:m.End]})
		at = m.Start + 1
	}
	return hits
}
