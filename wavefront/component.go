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

// Package wavefront implements the bounded wavefront extension that grows
// an anchor into a full alignment in both directions (spec §4.4): the
// WF_NEXT recurrence over affine-gap components, match extension, and the
// marker-walk backtrace that turns a penalty-indexed wavefront into a
// CIGAR.
package wavefront

import "sync"

// backtraceMarker packs the operation that produced an offset alongside the
// offset itself, exactly as the teacher's WFA implementation does: the low
// markerBits bits hold the op, the rest the offset.
type backtraceMarker = uint8

const (
	markerInsertOpen backtraceMarker = iota
	markerInsertExt
	markerDeleteOpen
	markerDeleteExt
	markerMismatch
	markerMatch
	markerNone // only ever seen at an uninitialized cell
)

const markerBits = 3
const markerMask = uint32(1)<<markerBits - 1

func packOffset(offset uint32, marker backtraceMarker) uint32 {
	return offset<<markerBits | uint32(marker)
}

func unpackOffset(v uint32) (offset uint32, marker backtraceMarker) {
	return v >> markerBits, backtraceMarker(v & markerMask)
}

// componentBaseSize is the initial capacity reserved for a Component's
// WaveFront slice, mirroring the teacher's WAVEFRONTS_BASE_SIZE.
const componentBaseSize = 256

// Component holds, for one of {M, I, D}, one WaveFront per penalty score
// reached so far during the fill.
type Component struct {
	waveFronts []*WaveFront
}

var componentPool = sync.Pool{New: func() any { return &Component{} }}

func getComponent() *Component {
	c := componentPool.Get().(*Component)
	if cap(c.waveFronts) < componentBaseSize {
		c.waveFronts = make([]*WaveFront, 0, componentBaseSize)
	} else {
		c.waveFronts = c.waveFronts[:0]
	}
	return c
}

func putComponent(c *Component) {
	for _, wf := range c.waveFronts {
		if wf != nil {
			putWaveFront(wf)
		}
	}
	componentPool.Put(c)
}

// HasScore reports whether a wavefront has been recorded for penalty score.
func (c *Component) HasScore(score uint32) bool {
	return int(score) < len(c.waveFronts) && c.waveFronts[score] != nil
}

// At returns the WaveFront for score, or nil.
func (c *Component) At(score uint32) *WaveFront {
	if !c.HasScore(score) {
		return nil
	}
	return c.waveFronts[score]
}

// Ensure grows the component so that score is addressable and returns its
// (possibly freshly allocated) WaveFront for diagonal range [lo, hi].
func (c *Component) Ensure(score uint32, lo, hi int) *WaveFront {
	for len(c.waveFronts) <= int(score) {
		c.waveFronts = append(c.waveFronts, nil)
	}
	wf := c.waveFronts[score]
	if wf == nil {
		wf = getWaveFront(lo, hi)
		c.waveFronts[score] = wf
	}
	return wf
}
