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

// Package seqindex locates a byte pattern against the concatenation of all
// indexed target sequences (spec §4.2) and folds per-query pattern hits
// into the anchor table consumed by the wavefront extension (spec §4.3).
package seqindex

import (
	"sort"
	"sync"

	farm "github.com/dgryski/go-farm"
	"github.com/pkg/errors"
)

// sentinel terminates the concatenated text for suffix array construction.
// It must never appear in an indexed alphabet.
const sentinel byte = 0x00

// ErrIndexBuild is returned by New when the index cannot be constructed.
var ErrIndexBuild = errors.New("seqindex: index build failed")

// Options configures PatternIndex construction (spec §6).
type Options struct {
	Alphabet AlphabetKind
	// SASamplingRatio bounds how many full suffix-array values are kept;
	// unsampled ones are recovered by walking the LF-mapping. Must be a
	// positive integer; defaults to 32 when 0.
	SASamplingRatio int
	// LookupTableKmerSize is the prefix length memoized by the count
	// lookup table; defaults to 12 when 0.
	LookupTableKmerSize int
	// LookupTableMaxBytes bounds the memoized-entry count (24 bytes/entry
	// budgeted); defaults to 64MiB when 0.
	LookupTableMaxBytes int
	// UseBatchLocator routes BuildAnchorTable through a single
	// Aho-Corasick scan over the target text instead of one FM-index
	// backward search per pattern window; worthwhile once a query splits
	// into many patterns.
	UseBatchLocator bool
}

func (o Options) normalized() Options {
	if o.SASamplingRatio <= 0 {
		o.SASamplingRatio = 32
	}
	if o.LookupTableKmerSize <= 0 {
		o.LookupTableKmerSize = 12
	}
	if o.LookupTableMaxBytes <= 0 {
		o.LookupTableMaxBytes = 64 << 20
	}
	return o
}

// PatternIndex is an FM-index (BWT + sampled suffix array + rank
// checkpoints) over the concatenation of every target sequence, plus the
// per-target boundary table needed to split a hit back into
// (target_id, offset_in_target).
type PatternIndex struct {
	opts Options

	text []byte // the original concatenated text, sentinel-free

	n   int    // len(text) + 1 sentinel
	bwt []byte // Burrows-Wheeler transform of text+sentinel

	symbols []byte           // sorted distinct bytes appearing in bwt
	cTable  map[byte]uint32  // cumulative count of bytes < c
	ranks   map[byte][]int32 // per-symbol rank checkpoints, sampled at opts.SASamplingRatio

	saSamples map[int]uint32 // SA index -> text offset, for offsets divisible by the sampling ratio

	targetBoundaries []uint64 // length T+1, boundaries[0]=0, boundaries[T]=total length

	lookupMu    sync.Mutex
	lookupTable map[uint64][2]int // farm hash of a length-K prefix -> [lo,hi) in SA, memoized lazily
	lookupCap   int
}

// New builds a PatternIndex over concatenatedText, whose target boundaries
// are given by targetBoundaries (length T+1, ascending, boundaries[0]==0
// and boundaries[T]==len(concatenatedText)).
func New(concatenatedText []byte, targetBoundaries []uint64, opts Options) (*PatternIndex, error) {
	if len(targetBoundaries) < 2 {
		return nil, errors.Wrap(ErrIndexBuild, "targetBoundaries must contain at least [0, len(text)]")
	}
	if targetBoundaries[0] != 0 || targetBoundaries[len(targetBoundaries)-1] != uint64(len(concatenatedText)) {
		return nil, errors.Wrap(ErrIndexBuild, "targetBoundaries must start at 0 and end at len(concatenatedText)")
	}
	opts = opts.normalized()

	if err := validateSymbols(opts.Alphabet, concatenatedText); err != nil {
		return nil, errors.Wrap(err, "seqindex.New")
	}

	full := make([]byte, len(concatenatedText)+1)
	copy(full, concatenatedText)
	full[len(full)-1] = sentinel
	n := len(full)

	sa := buildSuffixArray(full)

	bwt := make([]byte, n)
	for i, s := range sa {
		if s == 0 {
			bwt[i] = full[n-1]
		} else {
			bwt[i] = full[s-1]
		}
	}

	symbolSet := map[byte]bool{}
	for _, b := range bwt {
		symbolSet[b] = true
	}
	symbols := make([]byte, 0, len(symbolSet))
	for b := range symbolSet {
		symbols = append(symbols, b)
	}
	sort.Slice(symbols, func(i, j int) bool { return symbols[i] < symbols[j] })

	counts := map[byte]uint32{}
	for _, b := range bwt {
		counts[b]++
	}
	cTable := map[byte]uint32{}
	var running uint32
	for _, s := range symbols {
		cTable[s] = running
		running += counts[s]
	}

	ratio := opts.SASamplingRatio
	nCheckpoints := n/ratio + 2
	ranks := make(map[byte][]int32, len(symbols))
	for _, s := range symbols {
		ranks[s] = make([]int32, nCheckpoints)
	}
	running2 := map[byte]int32{}
	for i := 0; i < n; i++ {
		if i%ratio == 0 {
			cp := i / ratio
			for _, s := range symbols {
				ranks[s][cp] = running2[s]
			}
		}
		running2[bwt[i]]++
	}
	lastCp := (n-1)/ratio + 1
	for _, s := range symbols {
		ranks[s][lastCp] = running2[s]
	}

	saSamples := make(map[int]uint32)
	for i, s := range sa {
		if s%ratio == 0 {
			saSamples[i] = uint32(s)
		}
	}

	idx := &PatternIndex{
		opts:             opts,
		text:             append([]byte(nil), concatenatedText...),
		n:                n,
		bwt:              bwt,
		symbols:          symbols,
		cTable:           cTable,
		ranks:            ranks,
		saSamples:        saSamples,
		targetBoundaries: append([]uint64(nil), targetBoundaries...),
		lookupTable:      make(map[uint64][2]int),
		lookupCap:        opts.LookupTableMaxBytes / 24,
	}
	return idx, nil
}

// rank returns the number of occurrences of symbol c in bwt[0:i).
func (idx *PatternIndex) rank(c byte, i int) int32 {
	ratio := idx.opts.SASamplingRatio
	cp := i / ratio
	r := idx.ranks[c][cp]
	for j := cp * ratio; j < i; j++ {
		if idx.bwt[j] == c {
			r++
		}
	}
	return r
}

// lf maps an SA index backward one step in the original text.
func (idx *PatternIndex) lf(i int) int {
	c := idx.bwt[i]
	return int(idx.cTable[c]) + int(idx.rank(c, i))
}

// textOffset resolves the text offset for suffix array index i by walking
// the LF-mapping until a sampled offset is found.
func (idx *PatternIndex) textOffset(i int) uint64 {
	steps := 0
	cur := i
	for {
		if v, ok := idx.saSamples[cur]; ok {
			return (uint64(v) + uint64(steps)) % uint64(idx.n)
		}
		cur = idx.lf(cur)
		steps++
	}
}

// Locate returns the sorted ascending list of starting offsets of pattern
// within the concatenated text (spec §4.2). An empty, non-nil slice is
// returned for a pattern containing an unsupported symbol or no hits.
func (idx *PatternIndex) Locate(pattern []byte) []uint64 {
	lo, hi, ok := idx.backwardSearch(pattern)
	if !ok || lo >= hi {
		return []uint64{}
	}
	hits := make([]uint64, 0, hi-lo)
	for i := lo; i < hi; i++ {
		hits = append(hits, idx.textOffset(i))
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i] < hits[j] })
	return hits
}

// backwardSearch performs standard FM-index backward search, consulting the
// lookup table to skip the trailing lookupTableKmerSize characters when a
// memoized range exists.
func (idx *PatternIndex) backwardSearch(pattern []byte) (int, int, bool) {
	if len(pattern) == 0 {
		return 0, idx.n, true
	}
	lo, hi := 0, idx.n
	start := len(pattern) - 1

	k := idx.opts.LookupTableKmerSize
	if len(pattern) >= k && k > 0 {
		suffix := pattern[len(pattern)-k:]
		if rng, ok := idx.lookupHit(suffix); ok {
			lo, hi = rng[0], rng[1]
			start = len(pattern) - k - 1
			if lo >= hi {
				return lo, hi, true
			}
		} else {
			lo, hi = 0, idx.n
			for i := len(pattern) - 1; i >= len(pattern)-k; i-- {
				c := pattern[i]
				if _, known := idx.cTable[c]; !known {
					return 0, 0, false
				}
				lo = int(idx.cTable[c]) + int(idx.rank(c, lo))
				hi = int(idx.cTable[c]) + int(idx.rank(c, hi))
				if lo >= hi {
					idx.lookupStore(suffix, [2]int{lo, hi})
					return lo, hi, true
				}
			}
			idx.lookupStore(suffix, [2]int{lo, hi})
			start = len(pattern) - k - 1
		}
	}

	for i := start; i >= 0; i-- {
		c := pattern[i]
		if _, known := idx.cTable[c]; !known {
			return 0, 0, false
		}
		lo = int(idx.cTable[c]) + int(idx.rank(c, lo))
		hi = int(idx.cTable[c]) + int(idx.rank(c, hi))
		if lo >= hi {
			return lo, hi, true
		}
	}
	return lo, hi, true
}

func (idx *PatternIndex) lookupHit(suffix []byte) ([2]int, bool) {
	h := farm.Hash64(suffix)
	idx.lookupMu.Lock()
	rng, ok := idx.lookupTable[h]
	idx.lookupMu.Unlock()
	return rng, ok
}

func (idx *PatternIndex) lookupStore(suffix []byte, rng [2]int) {
	if idx.lookupCap <= 0 {
		return
	}
	h := farm.Hash64(suffix)
	idx.lookupMu.Lock()
	if len(idx.lookupTable) < idx.lookupCap {
		idx.lookupTable[h] = rng
	}
	idx.lookupMu.Unlock()
}

// TargetHit is one (target_id, offset_in_target) result of LocateRestrictedTo.
type TargetHit struct {
	TargetID uint32
	Offset   uint64
}

// LocateRestrictedTo locates pattern and splits each hit into
// (target_id, offset_in_target), discarding hits whose target id is not in
// sortedAllowedTargetIDs when that slice is non-empty (spec §4.2).
func (idx *PatternIndex) LocateRestrictedTo(pattern []byte, sortedAllowedTargetIDs []uint32) []TargetHit {
	hits := idx.Locate(pattern)
	if len(hits) == 0 {
		return nil
	}
	patLen := uint64(len(pattern))
	out := make([]TargetHit, 0, len(hits))
	for _, offset := range hits {
		tid := idx.targetIndexOf(offset)
		if tid < 0 {
			continue // pattern hit crosses the sentinel; never emitted
		}
		if offset+patLen > idx.targetBoundaries[tid+1] {
			continue // pattern would run past the owning target's end
		}
		if len(sortedAllowedTargetIDs) > 0 && !containsSorted(sortedAllowedTargetIDs, uint32(tid)) {
			continue
		}
		out = append(out, TargetHit{
			TargetID: uint32(tid),
			Offset:   offset - idx.targetBoundaries[tid],
		})
	}
	return out
}

// targetIndexOf returns the target id owning text offset, or -1 if offset
// itself falls outside every target's span. It does not know the caller's
// pattern length; LocateRestrictedTo separately rejects any hit whose
// pattern would run past the owning target's end.
func (idx *PatternIndex) targetIndexOf(offset uint64) int {
	// boundaries[i] <= offset < boundaries[i+1]
	i := sort.Search(len(idx.targetBoundaries), func(i int) bool {
		return idx.targetBoundaries[i] > offset
	})
	if i == 0 || i >= len(idx.targetBoundaries) {
		return -1
	}
	return i - 1
}

func containsSorted(xs []uint32, v uint32) bool {
	i := sort.Search(len(xs), func(i int) bool { return xs[i] >= v })
	return i < len(xs) && xs[i] == v
}

// TargetBoundaries returns the boundary table (length T+1) supplied at
// construction.
func (idx *PatternIndex) TargetBoundaries() []uint64 {
	return append([]uint64(nil), idx.targetBoundaries...)
}

// Text returns the original concatenated target text (sentinel-free).
func (idx *PatternIndex) Text() []byte { return idx.text }

// UseBatchLocator reports whether this index was configured to prefer the
// Aho-Corasick batch path in BuildAnchorTable.
func (idx *PatternIndex) UseBatchLocator() bool { return idx.opts.UseBatchLocator }

// buildSuffixArray constructs the suffix array of data (which must already
// include a unique, minimal sentinel byte) with the classic O(n log² n)
// prefix-doubling rank-sort algorithm.
func buildSuffixArray(data []byte) []int {
	n := len(data)
	sa := make([]int, n)
	rank := make([]int, n)
	tmp := make([]int, n)
	for i := 0; i < n; i++ {
		sa[i] = i
		rank[i] = int(data[i])
	}

	for k := 1; ; k *= 2 {
		keyAt := func(i, shift int) int {
			if i+shift < n {
				return rank[i+shift]
			}
			return -1
		}
		sort.Slice(sa, func(i, j int) bool {
			a, b := sa[i], sa[j]
			if rank[a] != rank[b] {
				return rank[a] < rank[b]
			}
			return keyAt(a, k) < keyAt(b, k)
		})

		tmp[sa[0]] = 0
		for i := 1; i < n; i++ {
			tmp[sa[i]] = tmp[sa[i-1]]
			prevDiff := rank[sa[i-1]] != rank[sa[i]] || keyAt(sa[i-1], k) != keyAt(sa[i], k)
			if prevDiff {
				tmp[sa[i]]++
			}
		}
		copy(rank, tmp)

		if rank[sa[n-1]] == n-1 {
			break
		}
	}
	return sa
}
