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

package wavefront

import (
	"testing"

	"github.com/shenwei356/sigalign/regulator"
)

func runExtension(t *testing.T, query, target []byte, budget uint32) *Result {
	t.Helper()
	e := NewExtender(regulator.Penalty{X: 4, O: 6, E: 2})
	e.Reset()
	defer e.Release()
	return e.Run(query, target, budget)
}

func TestExtendIdenticalSequencesIsPureMatch(t *testing.T) {
	res := runExtension(t, []byte("ACGTACGTAC"), []byte("ACGTACGTAC"), 20)
	if res.Penalty != 0 {
		t.Fatalf("expected a free alignment, got penalty %d", res.Penalty)
	}
	if len(res.Ops) != 1 || res.Ops[0].Op != OpMatch || res.Ops[0].N != 10 {
		t.Fatalf("unexpected ops: %+v", res.Ops)
	}
}

func TestExtendSingleMismatch(t *testing.T) {
	res := runExtension(t, []byte("ACGTTCGTAC"), []byte("ACGTACGTAC"), 20)
	if res.Penalty != 4 {
		t.Fatalf("expected penalty 4 for a single mismatch, got %d", res.Penalty)
	}
	if res.QueryConsumed != 10 || res.TargetConsumed != 10 {
		t.Fatalf("unexpected consumed lengths: q=%d t=%d", res.QueryConsumed, res.TargetConsumed)
	}
}

func TestExtendRespectsBudget(t *testing.T) {
	res := runExtension(t, []byte("AAAAAAAAAA"), []byte("TTTTTTTTTT"), 1)
	if res.Penalty > 1 {
		t.Fatalf("extension exceeded its budget: %d", res.Penalty)
	}
}

func TestExtendSingleDeletion(t *testing.T) {
	// Target carries one extra base relative to the query: a single gap in
	// the query (a deletion from the query's perspective).
	res := runExtension(t, []byte("ACGTCGTAC"), []byte("ACGTACGTAC"), 20)
	var gapOps int
	for _, op := range res.Ops {
		if op.Op == OpDelete {
			gapOps++
		}
	}
	if gapOps == 0 {
		t.Fatalf("expected at least one delete run, got ops %+v", res.Ops)
	}
	if res.TargetConsumed != 10 {
		t.Fatalf("expected the whole target consumed, got %d", res.TargetConsumed)
	}
}
