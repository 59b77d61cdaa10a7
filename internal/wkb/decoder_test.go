package wkb

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wegman-software/gpkg2road/internal/geom"
)

func TestDecodeRoundTrip(t *testing.T) {
	cases := []struct {
		name   string
		points geom.LineString
		hasZ   bool
	}{
		{"empty", geom.LineString{}, false},
		{"planar pair", geom.LineString{{X: 0, Y: 3.5}, {X: 100, Y: 3.5}}, false},
		{"planar many", geom.LineString{{X: -1.5, Y: 2}, {X: 0, Y: 0}, {X: 12.25, Y: -7}, {X: 1e6, Y: 1e-6}}, false},
		{"xyz pair", geom.LineString{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 2, Z: 3}}, true},
		{"xyz many", geom.LineString{{X: 1, Y: 2, Z: 3}, {X: 4, Y: 5, Z: 6}, {X: 7, Y: 8, Z: 9}}, true},
	}

	encoder := NewEncoder(256)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			blob := encoder.EncodeLineString(tc.points, tc.hasZ)
			decoded, err := DecodeGeometry(blob)
			require.NoError(t, err)
			require.Len(t, decoded, len(tc.points))
			for i, p := range tc.points {
				assert.Equal(t, p.X, decoded[i].X)
				assert.Equal(t, p.Y, decoded[i].Y)
				if tc.hasZ {
					assert.Equal(t, p.Z, decoded[i].Z)
				} else {
					assert.Zero(t, decoded[i].Z)
				}
			}
		})
	}
}

func TestDecodeXYZLineString(t *testing.T) {
	blob := NewEncoder(64).EncodeLineString(geom.LineString{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 2, Z: 3}}, true)

	decoded, err := DecodeGeometry(blob)
	require.NoError(t, err)
	assert.Equal(t, geom.LineString{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 2, Z: 3}}, decoded)
}

func TestDecodePlanarRestoresZeroZ(t *testing.T) {
	blob := NewEncoder(64).EncodeLineString(geom.LineString{{X: 4, Y: 5, Z: 42}}, false)

	decoded, err := DecodeGeometry(blob)
	require.NoError(t, err)
	assert.Equal(t, geom.LineString{{X: 4, Y: 5, Z: 0}}, decoded)
}

func TestDecodeSkipsEnvelope(t *testing.T) {
	points := geom.LineString{{X: 1, Y: 2}, {X: 3, Y: 4}}
	blob := append([]byte(nil), NewEncoder(64).EncodeLineString(points, false)...)

	// Rewrite the flags byte to declare an XY envelope and splice in the
	// 32-byte envelope region after the header.
	blob[3] = 0x01 | (1 << 1)
	withEnvelope := append(append(append([]byte(nil), blob[:8]...), make([]byte, 32)...), blob[8:]...)

	decoded, err := DecodeGeometry(withEnvelope)
	require.NoError(t, err)
	assert.Equal(t, geom.LineString{{X: 1, Y: 2}, {X: 3, Y: 4}}, decoded)
}

func TestDecodeErrors(t *testing.T) {
	valid := func() []byte {
		return append([]byte(nil), NewEncoder(64).EncodeLineString(geom.LineString{{X: 1, Y: 2}, {X: 3, Y: 4}}, false)...)
	}

	cases := []struct {
		name string
		blob func() []byte
	}{
		{"too short", func() []byte { return []byte{'G', 'P', 0} }},
		{"bad magic", func() []byte {
			b := valid()
			b[0], b[1] = 'X', 'X'
			return b
		}},
		{"bad version", func() []byte {
			b := valid()
			b[2] = 1
			return b
		}},
		{"bad envelope indicator", func() []byte {
			b := valid()
			b[3] = 5 << 1
			return b
		}},
		{"envelope overruns blob", func() []byte {
			b := valid()
			b[3] = 4 << 1 // declares a 64-byte XYZM envelope that is not there
			return b[:20]
		}},
		{"big-endian body", func() []byte {
			b := valid()
			b[8] = 0
			return b
		}},
		{"bad byte order", func() []byte {
			b := valid()
			b[8] = 7
			return b
		}},
		{"unsupported type", func() []byte {
			b := valid()
			binary.LittleEndian.PutUint32(b[9:], 1) // POINT
			return b
		}},
		{"truncated payload", func() []byte {
			b := valid()
			return b[:len(b)-8]
		}},
		{"oversized count", func() []byte {
			b := valid()
			binary.LittleEndian.PutUint32(b[13:], 2_000_000)
			return b
		}},
		{"nil blob", func() []byte { return nil }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeGeometry(tc.blob())
			require.ErrorIs(t, err, ErrFormat)
		})
	}
}
