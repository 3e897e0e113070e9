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

import "sync"

const offsetsBaseSize = 256

// WaveFront holds one row of the WFA DP: the packed (offset, marker) value
// for every diagonal k in [Lo, Hi], stored densely via k2i.
type WaveFront struct {
	Lo, Hi  int
	offsets []uint32
}

var waveFrontPool = sync.Pool{New: func() any { return &WaveFront{} }}

// k2i maps a diagonal index (which ranges over negative and non-negative
// integers) to a dense, non-negative slice index: non-negative diagonals
// take the even slots, negative diagonals the odd ones, so the whole [Lo,
// Hi] range packs into a contiguous slice without a sign-handling branch at
// every access.
func k2i(k int) int {
	if k >= 0 {
		return k << 1
	}
	return -k<<1 - 1
}

func getWaveFront(lo, hi int) *WaveFront {
	wf := waveFrontPool.Get().(*WaveFront)
	wf.Lo, wf.Hi = lo, hi
	need := k2i(lo)
	if h := k2i(hi); h > need {
		need = h
	}
	need++
	if cap(wf.offsets) < need {
		size := offsetsBaseSize
		for size < need {
			size *= 2
		}
		wf.offsets = make([]uint32, size)
	} else {
		wf.offsets = wf.offsets[:cap(wf.offsets)]
		for i := range wf.offsets {
			wf.offsets[i] = 0
		}
	}
	return wf
}

func putWaveFront(wf *WaveFront) {
	waveFrontPool.Put(wf)
}

// InRange reports whether diagonal k falls inside [Lo, Hi].
func (wf *WaveFront) InRange(k int) bool {
	return wf != nil && k >= wf.Lo && k <= wf.Hi
}

// Get returns the unpacked (offset, marker) at diagonal k. The pair
// (offset 0, markerNone) is returned when k is out of range; callers
// must check InRange first whenever 0 is a valid offset.
func (wf *WaveFront) Get(k int) (uint32, backtraceMarker) {
	if !wf.InRange(k) {
		return 0, markerNone
	}
	return unpackOffset(wf.offsets[k2i(k)])
}

// Set stores (offset, marker) at diagonal k, growing the backing slice if k
// extends the previously allocated range. The caller must already have
// widened wf.Lo/wf.Hi before calling Set outside the original range.
func (wf *WaveFront) Set(k int, offset uint32, marker backtraceMarker) {
	i := k2i(k)
	if i >= len(wf.offsets) {
		grown := make([]uint32, i+1)
		copy(grown, wf.offsets)
		wf.offsets = grown
	}
	wf.offsets[i] = packOffset(offset, marker)
}
