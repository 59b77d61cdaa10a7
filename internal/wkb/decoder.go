package wkb

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/wegman-software/gpkg2road/internal/geom"
)

// ErrFormat reports a malformed or unsupported GeoPackage geometry blob.
var ErrFormat = errors.New("invalid geometry format")

// gpkgHeaderSize is the fixed part of the GeoPackage binary header:
// 2-byte magic + version + flags + 4-byte SRS id.
const gpkgHeaderSize = 8

// maxPoints bounds the declared point count so a corrupt blob cannot
// drive a multi-gigabyte allocation.
const maxPoints = 1_000_000

// envelopeSizes maps the envelope indicator (bits 1-3 of the flags byte)
// to the envelope length in bytes: none, XY, XYZ, XYM, XYZM.
var envelopeSizes = [5]int{0, 32, 48, 48, 64}

// DecodeGeometry decodes a GeoPackage v0 binary geometry blob into a 3D
// linestring. The blob layout is the 8-byte GeoPackage header, an optional
// envelope, and a little-endian WKB LINESTRING body (XY or XYZ). Planar
// geometries get Z = 0.
func DecodeGeometry(data []byte) (geom.LineString, error) {
	if len(data) < gpkgHeaderSize {
		return nil, fmt.Errorf("%w: blob of %d bytes is shorter than the GeoPackage header", ErrFormat, len(data))
	}

	if data[0] != 'G' || data[1] != 'P' {
		return nil, fmt.Errorf("%w: bad magic 0x%02x%02x", ErrFormat, data[0], data[1])
	}
	if version := data[2]; version != 0 {
		return nil, fmt.Errorf("%w: unsupported GeoPackage version %d", ErrFormat, version)
	}
	flags := data[3]
	// Bytes 4-7 hold the SRS id; it is consumed but not validated.

	envelope := int(flags>>1) & 0x07
	if envelope >= len(envelopeSizes) {
		return nil, fmt.Errorf("%w: bad envelope indicator %d", ErrFormat, envelope)
	}
	cursor := gpkgHeaderSize + envelopeSizes[envelope]
	if cursor >= len(data) {
		return nil, fmt.Errorf("%w: envelope overruns blob", ErrFormat)
	}

	// WKB body. Only little-endian is produced by conforming writers.
	switch order := data[cursor]; order {
	case 1:
	case 0:
		return nil, fmt.Errorf("%w: big-endian WKB unsupported", ErrFormat)
	default:
		return nil, fmt.Errorf("%w: bad WKB byte order %d", ErrFormat, order)
	}
	cursor++

	if cursor+4 > len(data) {
		return nil, fmt.Errorf("%w: truncated WKB geometry type", ErrFormat)
	}
	wkbType := binary.LittleEndian.Uint32(data[cursor:])
	cursor += 4

	hasZ := wkbType&wkbZFlag != 0
	if base := wkbType & 0x0FFFFFFF; base != wkbLineString {
		return nil, fmt.Errorf("%w: unsupported WKB type %d, only LINESTRING is handled", ErrFormat, base)
	}

	if cursor+4 > len(data) {
		return nil, fmt.Errorf("%w: truncated WKB point count", ErrFormat)
	}
	count := binary.LittleEndian.Uint32(data[cursor:])
	cursor += 4

	if count > maxPoints {
		return nil, fmt.Errorf("%w: point count %d exceeds limit", ErrFormat, count)
	}
	stride := 16
	if hasZ {
		stride = 24
	}
	if cursor+int(count)*stride > len(data) {
		return nil, fmt.Errorf("%w: truncated point data, need %d bytes but %d remain", ErrFormat, int(count)*stride, len(data)-cursor)
	}

	points := make(geom.LineString, 0, count)
	for i := uint32(0); i < count; i++ {
		p := geom.Point{
			X: math.Float64frombits(binary.LittleEndian.Uint64(data[cursor:])),
			Y: math.Float64frombits(binary.LittleEndian.Uint64(data[cursor+8:])),
		}
		cursor += 16
		if hasZ {
			p.Z = math.Float64frombits(binary.LittleEndian.Uint64(data[cursor:]))
			cursor += 8
		}
		points = append(points, p)
	}
	return points, nil
}
