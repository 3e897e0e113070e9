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
	"encoding/binary"
	"io"
	"os"

	"blainsmith.com/go/seahash"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/shenwei356/sigalign/seqindex"
)

// be matches the teacher's own big-endian convention for on-disk integers
// (wfa.go's package-level be).
var be = binary.BigEndian

// magic identifies a sigalign reference container; version allows the
// layout to change without silently misreading an older file.
const (
	magic         = uint32(0x5349_4741) // "SIGA"
	formatVersion = uint32(1)
)

// ErrContainer is returned by Load when the blob is truncated, has a bad
// magic/version, or fails its checksum.
var ErrContainer = errors.New("reference: malformed container")

// Save writes a self-describing binary blob to w: header, build options,
// target boundaries and labels, and the zstd-compressed concatenated
// target text, trailed by a whole-blob seahash checksum (spec §6's
// persistence contract).
func Save(r *Reference, w io.Writer) error {
	var body bytes.Buffer

	if err := writeUint32(&body, magic); err != nil {
		return err
	}
	if err := writeUint32(&body, formatVersion); err != nil {
		return err
	}
	if err := writeOptions(&body, r.Options); err != nil {
		return err
	}

	boundaries := r.Index.TargetBoundaries()
	if err := writeUint32(&body, uint32(len(boundaries))); err != nil {
		return err
	}
	for _, b := range boundaries {
		if err := writeUint64(&body, b); err != nil {
			return err
		}
	}

	if err := writeUint32(&body, uint32(len(r.Labels))); err != nil {
		return err
	}
	for _, label := range r.Labels {
		if err := writeUint32(&body, uint32(len(label))); err != nil {
			return err
		}
		if _, err := body.WriteString(label); err != nil {
			return errors.Wrap(err, "reference.Save")
		}
	}

	enc, err := zstd.NewWriter(&body)
	if err != nil {
		return errors.Wrap(err, "reference.Save")
	}
	text := r.Index.Text()
	if err := writeUint64(&body, uint64(len(text))); err != nil {
		return err
	}
	compressed, err := enc.EncodeAll(text, nil)
	if err != nil {
		enc.Close()
		return errors.Wrap(err, "reference.Save")
	}
	enc.Close()
	if err := writeUint64(&body, uint64(len(compressed))); err != nil {
		return err
	}
	if _, err := body.Write(compressed); err != nil {
		return errors.Wrap(err, "reference.Save")
	}

	sum := seahash.Sum64(body.Bytes())
	if err := writeUint64(&body, sum); err != nil {
		return err
	}

	_, err = w.Write(body.Bytes())
	return errors.Wrap(err, "reference.Save")
}

// Load reads back a blob written by Save, verifying its checksum before
// reconstructing the Reference (rebuilding the FM-index from the restored
// text and boundaries).
func Load(r io.Reader) (*Reference, error) {
	blob, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "reference.Load")
	}
	return loadBlob(blob)
}

// LoadFile mmaps path read-only and decodes it in place, avoiding a copy
// of the (possibly large) compressed blob before decompression.
func LoadFile(path string) (*Reference, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "reference.LoadFile")
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, errors.Wrap(err, "reference.LoadFile")
	}
	if fi.Size() == 0 {
		return nil, errors.Wrap(ErrContainer, "empty file")
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(fi.Size()), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, errors.Wrap(err, "reference.LoadFile")
	}
	defer unix.Munmap(data)

	return loadBlob(data)
}

func loadBlob(blob []byte) (*Reference, error) {
	if len(blob) < 8 {
		return nil, errors.Wrap(ErrContainer, "blob too short")
	}
	sum := be.Uint64(blob[len(blob)-8:])
	payload := blob[:len(blob)-8]
	if seahash.Sum64(payload) != sum {
		return nil, errors.Wrap(ErrContainer, "checksum mismatch")
	}

	buf := bytes.NewReader(payload)
	gotMagic, err := readUint32(buf)
	if err != nil || gotMagic != magic {
		return nil, errors.Wrap(ErrContainer, "bad magic")
	}
	version, err := readUint32(buf)
	if err != nil || version != formatVersion {
		return nil, errors.Wrapf(ErrContainer, "unsupported format version %d", version)
	}

	opts, err := readOptions(buf)
	if err != nil {
		return nil, err
	}

	nBoundaries, err := readUint32(buf)
	if err != nil {
		return nil, err
	}
	boundaries := make([]uint64, nBoundaries)
	for i := range boundaries {
		if boundaries[i], err = readUint64(buf); err != nil {
			return nil, err
		}
	}

	nLabels, err := readUint32(buf)
	if err != nil {
		return nil, err
	}
	labels := make([]string, nLabels)
	for i := range labels {
		n, err := readUint32(buf)
		if err != nil {
			return nil, err
		}
		lbl := make([]byte, n)
		if _, err := io.ReadFull(buf, lbl); err != nil {
			return nil, errors.Wrap(ErrContainer, "truncated label")
		}
		labels[i] = string(lbl)
	}

	rawLen, err := readUint64(buf)
	if err != nil {
		return nil, err
	}
	compLen, err := readUint64(buf)
	if err != nil {
		return nil, err
	}
	if uint64(buf.Len()) < compLen {
		return nil, errors.Wrap(ErrContainer, "truncated text block")
	}
	start := len(payload) - buf.Len()
	compressed := payload[start : start+int(compLen)]

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, errors.Wrap(err, "reference.Load")
	}
	defer dec.Close()
	text, err := dec.DecodeAll(compressed, make([]byte, 0, rawLen))
	if err != nil {
		return nil, errors.Wrap(ErrContainer, "zstd decode failed")
	}

	idx, err := seqindex.New(text, boundaries, seqindex.Options{
		Alphabet:            opts.Alphabet,
		SASamplingRatio:     opts.SuffixArraySamplingRatio,
		LookupTableKmerSize: opts.LookupTableKmerSize,
		LookupTableMaxBytes: opts.LookupTableMaxBytes,
		UseBatchLocator:     opts.UseBatchLocator,
	})
	if err != nil {
		return nil, errors.Wrap(err, "reference.Load: rebuilding FM-index")
	}

	return &Reference{Index: idx, Labels: labels, Options: opts}, nil
}

func writeOptions(w io.Writer, o BuildOptions) error {
	fields := []uint32{
		uint32(o.Alphabet),
		uint32(o.BWTBlockSize),
		uint32(o.SuffixArraySamplingRatio),
		uint32(o.LookupTableKmerSize),
		uint32(o.LookupTableMaxBytes),
		boolToUint32(o.SafeGuard),
		boolToUint32(o.UseBatchLocator),
	}
	for _, f := range fields {
		if err := writeUint32(w, f); err != nil {
			return err
		}
	}
	return nil
}

func readOptions(r io.Reader) (BuildOptions, error) {
	var o BuildOptions
	vals := make([]uint32, 7)
	for i := range vals {
		v, err := readUint32(r)
		if err != nil {
			return o, err
		}
		vals[i] = v
	}
	o.Alphabet = seqindex.AlphabetKind(vals[0])
	o.BWTBlockSize = int(vals[1])
	o.SuffixArraySamplingRatio = int(vals[2])
	o.LookupTableKmerSize = int(vals[3])
	o.LookupTableMaxBytes = int(vals[4])
	o.SafeGuard = vals[5] != 0
	o.UseBatchLocator = vals[6] != 0
	return o, nil
}

func boolToUint32(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

func writeUint32(w io.Writer, v uint32) error {
	var b [4]byte
	be.PutUint32(b[:], v)
	_, err := w.Write(b[:])
	return errors.Wrap(err, "reference: write")
}

func writeUint64(w io.Writer, v uint64) error {
	var b [8]byte
	be.PutUint64(b[:], v)
	_, err := w.Write(b[:])
	return errors.Wrap(err, "reference: write")
}

func readUint32(r io.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, errors.Wrap(ErrContainer, "truncated uint32 field")
	}
	return be.Uint32(b[:]), nil
}

func readUint64(r io.Reader) (uint64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, errors.Wrap(ErrContainer, "truncated uint64 field")
	}
	return be.Uint64(b[:]), nil
}
