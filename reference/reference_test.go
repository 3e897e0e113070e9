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

package reference

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shenwei356/sigalign/seqindex"
)

func testTargets() []Target {
	return []Target{
		{Label: "chr1", Seq: []byte("ACGTACGTACGTACGTACGT")},
		{Label: "chr2", Seq: []byte("TTTTGGGGCCCCAAAATTTT")},
	}
}

func TestBuildIndexesAllTargets(t *testing.T) {
	ref, err := Build(testTargets(), BuildOptions{Alphabet: seqindex.NucleotideN})
	require.NoError(t, err)
	require.Equal(t, 2, ref.NumTargets())
	require.Equal(t, "chr1", ref.Label(0))
	require.Equal(t, "chr2", ref.Label(1))

	hits := ref.Index.LocateRestrictedTo([]byte("GGGG"), nil)
	require.Len(t, hits, 1)
	require.EqualValues(t, 1, hits[0].TargetID)
}

func TestBuildRejectsEmptyTargetList(t *testing.T) {
	_, err := Build(nil, BuildOptions{})
	require.Error(t, err)
}

func TestBuildRejectsBadBlockSize(t *testing.T) {
	_, err := Build(testTargets(), BuildOptions{BWTBlockSize: 7})
	require.Error(t, err)
}

func TestSaveLoadRoundTrips(t *testing.T) {
	ref, err := Build(testTargets(), BuildOptions{Alphabet: seqindex.NucleotideN, SuffixArraySamplingRatio: 4})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Save(ref, &buf))

	restored, err := Load(&buf)
	require.NoError(t, err)
	require.Equal(t, ref.Labels, restored.Labels)
	require.Equal(t, ref.Index.TargetBoundaries(), restored.Index.TargetBoundaries())
	require.Equal(t, ref.Index.Text(), restored.Index.Text())

	hits := restored.Index.LocateRestrictedTo([]byte("GGGG"), nil)
	require.Len(t, hits, 1)
}

func TestLoadRejectsCorruptedChecksum(t *testing.T) {
	ref, err := Build(testTargets(), BuildOptions{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Save(ref, &buf))
	corrupted := buf.Bytes()
	corrupted[0] ^= 0xFF

	_, err = Load(bytes.NewReader(corrupted))
	require.ErrorIs(t, err, ErrContainer)
}

func TestEstimateMemoryScalesWithTotalLength(t *testing.T) {
	small := EstimateMemory(testTargets()[:1], BuildOptions{})
	big := EstimateMemory(testTargets(), BuildOptions{})
	require.Greater(t, big, small)
}
