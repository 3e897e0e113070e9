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

// Package reference builds and persists the immutable container of indexed
// target sequences that many Aligner instances share by reference (spec §5,
// §6): the concatenated target text, per-target boundaries and labels, and
// the FM-index built over them.
package reference

import (
	"github.com/pkg/errors"

	"github.com/shenwei356/sigalign/seqindex"
)

// BuildOptions configures how a Reference's FM-index is constructed
// (spec §6's "Recognized reference builder options").
type BuildOptions struct {
	Alphabet seqindex.AlphabetKind

	// BWTBlockSize is recorded alongside the index for documentation and
	// container-format compatibility; the Go FM-index itself samples by
	// SuffixArraySamplingRatio rather than a blocked bitvector, so only
	// {64,128} are accepted but neither changes runtime behavior here.
	BWTBlockSize int

	SuffixArraySamplingRatio int
	LookupTableKmerSize      int

	// LookupTableMaxBytes bounds the lookup table's memory; defaults to
	// 200 MiB per spec §6 when 0.
	LookupTableMaxBytes int

	// SafeGuard is recorded and saved with the container. Build does not
	// read it: seqindex.New validates every target byte against Alphabet
	// whether or not it is set.
	SafeGuard bool

	UseBatchLocator bool
}

const defaultLookupTableMaxBytes = 200 << 20

func (o BuildOptions) normalized() BuildOptions {
	if o.BWTBlockSize == 0 {
		o.BWTBlockSize = 128
	}
	if o.LookupTableMaxBytes <= 0 {
		o.LookupTableMaxBytes = defaultLookupTableMaxBytes
	}
	return o
}

// ErrInvalidBuildOptions is returned by Build when BuildOptions cannot be
// honored.
var ErrInvalidBuildOptions = errors.New("reference: invalid build options")

// Target is one named input sequence handed to Build.
type Target struct {
	Label string
	Seq   []byte
}

// Reference is the immutable, shareable container of indexed target
// sequences: the concatenated text, its FM-index, and per-target metadata.
// Many Aligner instances may hold the same *Reference concurrently (spec
// §5); nothing on Reference is mutated after Build/Load returns.
type Reference struct {
	Index   *seqindex.PatternIndex
	Labels  []string
	Options BuildOptions
}

// Build concatenates targets in order, constructs the FM-index over the
// result, and records per-target boundaries and labels.
func Build(targets []Target, opts BuildOptions) (*Reference, error) {
	if len(targets) == 0 {
		return nil, errors.Wrap(ErrInvalidBuildOptions, "at least one target is required")
	}
	opts = opts.normalized()
	if opts.BWTBlockSize != 64 && opts.BWTBlockSize != 128 {
		return nil, errors.Wrap(ErrInvalidBuildOptions, "bwt_block_size must be 64 or 128")
	}

	boundaries := make([]uint64, 0, len(targets)+1)
	labels := make([]string, 0, len(targets))
	var total uint64
	boundaries = append(boundaries, 0)
	for _, t := range targets {
		total += uint64(len(t.Seq))
		boundaries = append(boundaries, total)
		labels = append(labels, t.Label)
	}

	text := make([]byte, 0, total)
	for _, t := range targets {
		text = append(text, t.Seq...)
	}

	idx, err := seqindex.New(text, boundaries, seqindex.Options{
		Alphabet:            opts.Alphabet,
		SASamplingRatio:     opts.SuffixArraySamplingRatio,
		LookupTableKmerSize: opts.LookupTableKmerSize,
		LookupTableMaxBytes: opts.LookupTableMaxBytes,
		UseBatchLocator:     opts.UseBatchLocator,
	})
	if err != nil {
		return nil, errors.Wrap(err, "reference.Build")
	}

	return &Reference{Index: idx, Labels: labels, Options: opts}, nil
}

// NumTargets returns the number of indexed targets.
func (r *Reference) NumTargets() int { return len(r.Labels) }

// Label returns the stored label of target id, used by AlignLabeled.
func (r *Reference) Label(targetID uint32) string {
	if int(targetID) >= len(r.Labels) {
		return ""
	}
	return r.Labels[targetID]
}

// EstimateMemory reports the approximate byte footprint Build would
// allocate for targets under opts, without constructing the FM-index: the
// two-step estimate-then-align workflow from the original implementation's
// two_step_alignment mode, so a caller can size a build before paying for
// it.
func EstimateMemory(targets []Target, opts BuildOptions) uint64 {
	opts = opts.normalized()
	var total uint64
	for _, t := range targets {
		total += uint64(len(t.Seq))
	}
	// Rough per-byte budget: suffix array (8) + BWT (1) + rank checkpoints
	// (amortized ~1 byte/symbol/checkpoint stride) + sampled SA entries,
	// plus the lookup table's own bound.
	perByte := uint64(8 + 1 + 1)
	ratio := uint64(opts.SuffixArraySamplingRatio)
	if ratio == 0 {
		ratio = 32
	}
	estimate := total*perByte + total/ratio*8
	return estimate + uint64(opts.LookupTableMaxBytes)
}
