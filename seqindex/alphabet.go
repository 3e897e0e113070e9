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
	"github.com/biogo/biogo/alphabet"
	"github.com/pkg/errors"
)

// AlphabetKind selects one of the four alphabets recognized by the
// reference builder (spec §6).
type AlphabetKind int

const (
	Nucleotide AlphabetKind = iota
	NucleotideN
	Protein
	ProteinX
)

// ErrUnsupportedSymbol is returned by New when a target byte does not
// belong to the configured alphabet. Query bytes are not checked: a pattern
// window holding such a byte simply has no hits.
var ErrUnsupportedSymbol = errors.New("seqindex: unsupported symbol")

// backingAlphabet returns the biogo alphabet.Alphabet that validates bytes
// for the given kind. Only membership is checked against biogo (its
// gapped/redundant alphabets reserve a code for '-' that this engine never
// stores); the dense rank alphabet is built locally from the observed bytes.
func backingAlphabet(kind AlphabetKind) alphabet.Alphabet {
	switch kind {
	case Nucleotide:
		return alphabet.DNA
	case NucleotideN:
		return alphabet.DNAredundant
	case Protein:
		return alphabet.Protein
	case ProteinX:
		return alphabet.ProteinRedundant
	default:
		return alphabet.DNA
	}
}

// validateSymbols reports the first unsupported byte in seq, if any.
func validateSymbols(kind AlphabetKind, seq []byte) error {
	a := backingAlphabet(kind)
	for i, b := range seq {
		if !a.IsValid(alphabet.Letter(b)) {
			return errors.Wrapf(ErrUnsupportedSymbol, "byte %q at offset %d is not in the configured alphabet", b, i)
		}
	}
	return nil
}
