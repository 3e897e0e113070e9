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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shenwei356/sigalign/reference"
	"github.com/shenwei356/sigalign/regulator"
	"github.com/shenwei356/sigalign/seqindex"
)

func buildIndex(t *testing.T, targets ...string) *seqindex.PatternIndex {
	t.Helper()
	var text []byte
	boundaries := []uint64{0}
	for _, s := range targets {
		text = append(text, s...)
		boundaries = append(boundaries, uint64(len(text)))
	}
	idx, err := seqindex.New(text, boundaries, seqindex.Options{Alphabet: seqindex.NucleotideN})
	require.NoError(t, err)
	return idx
}

func TestSemiGlobalExactMatch(t *testing.T) {
	idx := buildIndex(t, "AAAAA")
	a, err := New(Options{Mismatch: 4, GapOpen: 6, GapExtend: 2, MinLength: 3, MaxPenaltyRatio: 0.2, Mode: SemiGlobal})
	require.NoError(t, err)

	out, err := a.Align(idx, []byte("AAAAA"))
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.EqualValues(t, 0, out[0].Penalty)
	require.EqualValues(t, 5, out[0].Length)
	require.Equal(t, "5M", out[0].Cigar())
}

func TestSemiGlobalSingleMismatch(t *testing.T) {
	idx := buildIndex(t, "AAATAAA")
	a, err := New(Options{Mismatch: 4, GapOpen: 6, GapExtend: 2, MinLength: 7, MaxPenaltyRatio: 0.2, Mode: SemiGlobal})
	require.NoError(t, err)

	out, err := a.Align(idx, []byte("AAACAAA"))
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.EqualValues(t, 4, out[0].Penalty)
	require.EqualValues(t, 7, out[0].Length)
}

func TestSemiGlobalRejectsBelowCutoff(t *testing.T) {
	idx := buildIndex(t, "TTTT")
	a, err := New(Options{Mismatch: 4, GapOpen: 6, GapExtend: 2, MinLength: 3, MaxPenaltyRatio: 0.1, Mode: SemiGlobal})
	require.NoError(t, err)

	out, err := a.Align(idx, []byte("AAAA"))
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestAlignRejectsEmptyQuery(t *testing.T) {
	idx := buildIndex(t, "AAAA")
	a, err := New(Options{Mismatch: 4, GapOpen: 6, GapExtend: 2, MinLength: 3, MaxPenaltyRatio: 0.2, Mode: SemiGlobal})
	require.NoError(t, err)

	_, err = a.Align(idx, nil)
	require.Error(t, err)
}

func TestLocalFindsEmbeddedMatch(t *testing.T) {
	idx := buildIndex(t, "GGGGAAAAAAAAAAGGGG")
	a, err := New(Options{Mismatch: 4, GapOpen: 6, GapExtend: 2, MinLength: 8, MaxPenaltyRatio: 0.05, Mode: Local})
	require.NoError(t, err)

	out, err := a.Align(idx, []byte("AAAAAAAAAA"))
	require.NoError(t, err)
	require.NotEmpty(t, out)
	for _, al := range out {
		require.GreaterOrEqual(t, al.Length, uint32(8))
	}
}

func TestChainingRejectsNonMonotonicCutoffs(t *testing.T) {
	_, err := New(Options{
		Mismatch: 4, GapOpen: 6, GapExtend: 2, MinLength: 20, MaxPenaltyRatio: 0.2, Mode: Chaining,
		ChainingCutoffs: []regulator.Cutoff{
			{Minl: 50, MaxpScaled: 10_000},
			{Minl: 100, MaxpScaled: 5_000},
		},
	})
	require.Error(t, err)
}

func TestChainingMasksStricterHitsFromLooserTiers(t *testing.T) {
	target := "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"
	idx := buildIndex(t, target)
	a, err := New(Options{
		Mismatch: 4, GapOpen: 6, GapExtend: 2, MinLength: 20, MaxPenaltyRatio: 0.2, Mode: Chaining,
		ChainingCutoffs: []regulator.Cutoff{
			{Minl: 50, MaxpScaled: 5_000},
			{Minl: 20, MaxpScaled: 20_000},
		},
	})
	require.NoError(t, err)

	out, err := a.Align(idx, []byte(target))
	require.NoError(t, err)
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			overlap := out[i].QueryStart < out[j].QueryEnd && out[j].QueryStart < out[i].QueryEnd
			require.False(t, overlap, "chained alignments must cover disjoint query ranges")
		}
	}
}

func TestAlignLabeledAttachesTargetLabel(t *testing.T) {
	ref, err := reference.Build([]reference.Target{
		{Label: "seqA", Seq: []byte("AAAAAAAAAA")},
		{Label: "seqB", Seq: []byte("CCCCCCCCCC")},
	}, reference.BuildOptions{Alphabet: seqindex.NucleotideN})
	require.NoError(t, err)

	a, err := New(Options{Mismatch: 4, GapOpen: 6, GapExtend: 2, MinLength: 5, MaxPenaltyRatio: 0.1, Mode: Local})
	require.NoError(t, err)

	out, err := a.AlignLabeled(ref, []byte("AAAAAAAAAA"))
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, "seqA", out[0].Label)
	require.EqualValues(t, 0, out[0].TargetID)
}
