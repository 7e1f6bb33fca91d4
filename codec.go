package rlimage

import (
	"bytes"
	"encoding/binary"

	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
)

// Binary form of an Image: a raw payload of magic, big-endian dimensions
// and per-row run tables, wrapped in a zstd frame. The run tables are
// written straight from the compressed rows; the dense form is never built.
//
// Payload layout (all integers uint32 big-endian):
//
//	magic "RLIF" | width | height | per row: runCount, then (start, end) pairs

const magic = "RLIF"

var (
	// ErrInvalidMagic is returned when decoded data does not start with the
	// RLIF magic.
	ErrInvalidMagic = errors.New("rlimage: invalid magic")

	// ErrCorruptPayload is returned when a payload is truncated or its run
	// tables break the row encoding invariants.
	ErrCorruptPayload = errors.New("rlimage: corrupt payload")
)

func mustNewZstdEncoder() *zstd.Encoder {
	enc, err := zstd.NewWriter(
		nil,
		zstd.WithEncoderConcurrency(1),
		zstd.WithEncoderLevel(zstd.SpeedBetterCompression),
		zstd.WithLowerEncoderMem(true),
	)
	if err != nil {
		panic(err)
	}
	return enc
}

func mustNewZstdDecoder() *zstd.Decoder {
	dec, err := zstd.NewReader(
		nil,
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderLowmem(true),
	)
	if err != nil {
		panic(err)
	}
	return dec
}

var (
	zenc = mustNewZstdEncoder()
	zdec = mustNewZstdDecoder()
)

func writeU32BE(b *bytes.Buffer, v uint32) {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	b.Write(tmp[:])
}

// MarshalBinary serializes the image to its compressed binary form.
func (img *Image) MarshalBinary() ([]byte, error) {
	raw := bytes.NewBuffer(make([]byte, 0, 4+8+8*img.height))
	raw.WriteString(magic)
	writeU32BE(raw, uint32(img.width))
	writeU32BE(raw, uint32(img.height))
	for _, runs := range img.rows {
		writeU32BE(raw, uint32(len(runs)))
		for _, r := range runs {
			writeU32BE(raw, uint32(r.Start))
			writeU32BE(raw, uint32(r.End))
		}
	}
	return zenc.EncodeAll(raw.Bytes(), nil), nil
}

// UnmarshalBinary decodes data produced by MarshalBinary. Every run table
// is validated against the row encoding invariants while reading, so a
// decoded image is always canonical.
func UnmarshalBinary(data []byte) (*Image, error) {
	payload, err := zdec.DecodeAll(data, nil)
	if err != nil {
		return nil, errors.Wrap(ErrCorruptPayload, "zstd decode")
	}
	r := payloadReader{buf: payload}

	m := r.bytes(len(magic))
	if m == nil || string(m) != magic {
		return nil, ErrInvalidMagic
	}
	width, height := int(r.u32()), int(r.u32())
	if r.err != nil {
		return nil, errors.Wrap(ErrCorruptPayload, "short header")
	}
	// Each row carries at least its run count; reject dimension fields that
	// promise more rows than the payload can hold before allocating.
	if height*4 > len(payload)-r.pos {
		return nil, errors.Wrap(ErrCorruptPayload, "height exceeds payload")
	}

	rows := make([][]Run, height)
	for i := 0; i < height; i++ {
		n := int(r.u32())
		if r.err != nil || n > width {
			return nil, errors.Wrapf(ErrCorruptPayload, "row %d run count", i)
		}
		var runs []Run
		if n > 0 {
			runs = make([]Run, n)
		}
		for k := 0; k < n; k++ {
			runs[k] = Run{Start: int(r.u32()), End: int(r.u32())}
		}
		if r.err != nil || !validRuns(runs, width) {
			return nil, errors.Wrapf(ErrCorruptPayload, "row %d run table", i)
		}
		rows[i] = runs
	}
	if r.pos != len(payload) {
		return nil, errors.Wrapf(ErrCorruptPayload, "%d trailing bytes", len(payload)-r.pos)
	}
	return &Image{width: width, height: height, rows: rows}, nil
}

// payloadReader reads big-endian fields from a decoded payload, latching
// the first short read instead of erroring on every call.
type payloadReader struct {
	buf []byte
	pos int
	err error
}

func (r *payloadReader) bytes(n int) []byte {
	if r.err != nil || r.pos+n > len(r.buf) {
		r.err = ErrCorruptPayload
		return nil
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b
}

func (r *payloadReader) u32() uint32 {
	b := r.bytes(4)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint32(b)
}
