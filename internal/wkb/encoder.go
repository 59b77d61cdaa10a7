package wkb

import (
	"encoding/binary"
	"math"

	"github.com/wegman-software/gpkg2road/internal/geom"
)

// WKB type constants (ISO SQL/MM specification)
const (
	wkbLineString = 2

	// Z-presence flag in the high bit of the WKB type word
	wkbZFlag = 0x80000000
)

// Encoder encodes linestrings as GeoPackage v0 binary blobs:
// an envelope-free GeoPackage header followed by little-endian WKB.
type Encoder struct {
	buf   []byte
	srsID int32
}

// NewEncoder creates an encoder with a pre-allocated buffer and SRS id 0,
// the GeoPackage "undefined cartesian" reference system.
func NewEncoder(initialSize int) *Encoder {
	return &Encoder{buf: make([]byte, 0, initialSize)}
}

// NewEncoderWithSRS creates an encoder writing the given SRS id into headers.
func NewEncoderWithSRS(initialSize int, srsID int) *Encoder {
	return &Encoder{buf: make([]byte, 0, initialSize), srsID: int32(srsID)}
}

// Reset clears the buffer for reuse.
func (e *Encoder) Reset() {
	e.buf = e.buf[:0]
}

// Bytes returns the encoded blob.
func (e *Encoder) Bytes() []byte {
	return e.buf
}

// EncodeLineString encodes a 3D linestring. With hasZ false only X and Y
// are written and the decoder will restore Z = 0.
func (e *Encoder) EncodeLineString(points geom.LineString, hasZ bool) []byte {
	e.Reset()
	stride := 16
	if hasZ {
		stride = 24
	}
	// Header 8 + byte order 1 + type 4 + count 4 + payload
	e.ensureCapacity(17 + len(points)*stride)

	// GeoPackage header: magic, version 0, flags byte 0x01 (little-endian
	// header values, no envelope), SRS id.
	e.buf = append(e.buf, 'G', 'P', 0, 0x01)
	e.appendUint32(uint32(e.srsID))

	// WKB body, little-endian
	e.buf = append(e.buf, 0x01)
	wkbType := uint32(wkbLineString)
	if hasZ {
		wkbType |= wkbZFlag
	}
	e.appendUint32(wkbType)
	e.appendUint32(uint32(len(points)))

	for _, p := range points {
		e.appendFloat64(p.X)
		e.appendFloat64(p.Y)
		if hasZ {
			e.appendFloat64(p.Z)
		}
	}
	return e.buf
}

func (e *Encoder) ensureCapacity(n int) {
	if cap(e.buf) < n {
		e.buf = make([]byte, 0, n)
	}
}

func (e *Encoder) appendUint32(v uint32) {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	e.buf = append(e.buf, b...)
}

func (e *Encoder) appendFloat64(v float64) {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, math.Float64bits(v))
	e.buf = append(e.buf, b...)
}
