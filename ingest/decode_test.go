package ingest_test

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/arclight/tlrouter/ingest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func be(vals ...any) []byte {
	var buf bytes.Buffer
	for _, v := range vals {
		if err := binary.Write(&buf, binary.BigEndian, v); err != nil {
			panic(err)
		}
	}
	return buf.Bytes()
}

func withSize(payload []byte) []byte {
	return append(be(int32(len(payload))), payload...)
}

func TestDecodeTrafficLights(t *testing.T) {
	record := withSize(be(int32(7), int32(0xAA), float64(1.5), float64(2.5)))
	buf := append(be(int32(1)), record...)

	lights, err := ingest.DecodeTrafficLights(bytes.NewReader(buf))
	require.NoError(t, err)
	require.Len(t, lights, 1)
	assert.EqualValues(t, 7, lights[0].ID)
	assert.EqualValues(t, 0xAA, lights[0].Flag)
	assert.Equal(t, 1.5, lights[0].Pos.X)
	assert.Equal(t, 2.5, lights[0].Pos.Y)
}

func TestDecodeTrafficLightsTruncatedReturnsUnexpectedEOF(t *testing.T) {
	buf := be(int32(1))[:3] // incomplete count field
	_, err := ingest.DecodeTrafficLights(bytes.NewReader(buf))
	require.Error(t, err)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestDecodeSuburbs(t *testing.T) {
	name := []byte("riverside")
	payload := be(int32(3), int32(len(name)), int32(2),
		float64(0), float64(0), float64(1), float64(1))
	payload = append(payload, name...)
	payload = append(payload, be(float64(0), float64(0), float64(1), float64(1))...)
	record := withSize(payload)
	buf := append(be(int32(1)), record...)

	suburbs, err := ingest.DecodeSuburbs(bytes.NewReader(buf))
	require.NoError(t, err)
	require.Len(t, suburbs, 1)
	assert.EqualValues(t, 3, suburbs[0].ID)
	assert.Equal(t, []float64{0, 1}, suburbs[0].XPoints)
	assert.Equal(t, []float64{0, 1}, suburbs[0].YPoints)
	assert.Equal(t, 0.0, suburbs[0].Boundary.Min.X)
	assert.Equal(t, 1.0, suburbs[0].Boundary.Max.Y)
}

func TestDecodeNodesCurrentFormat(t *testing.T) {
	payload := be(int32(0), float64(1), float64(2), int32(80), int32(1), int32(9), float64(3.5))
	record := withSize(payload)
	buf := append(be(int32(1)), record...)

	nodes, err := ingest.DecodeNodes(bytes.NewReader(buf), ingest.NodeFormatCurrent)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.EqualValues(t, 0, nodes[0].Index)
	assert.Equal(t, 1.0, nodes[0].Pos.X)
	require.Len(t, nodes[0].Connections, 1)
	assert.EqualValues(t, 9, nodes[0].Connections[0].Target)
	assert.EqualValues(t, 80, nodes[0].Connections[0].Speed)
	assert.InDelta(t, 3.5, nodes[0].Connections[0].DistanceCost, 1e-6)
}

func TestDecodeNodesLegacyFormatUsesDefaultSpeed(t *testing.T) {
	payload := be(int32(0), float64(1), float64(2), float64(999) /* discarded */, int32(-1) /* discarded */, int32(1), int32(9), float64(3.5))
	record := withSize(payload)
	buf := append(be(int32(1)), record...)

	nodes, err := ingest.DecodeNodes(bytes.NewReader(buf), ingest.NodeFormatLegacy)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.EqualValues(t, ingest.DefaultLegacySpeed, nodes[0].Connections[0].Speed)
}

func TestDecodeNodesNegativeConnectionCountIsMalformed(t *testing.T) {
	payload := be(int32(0), float64(1), float64(2), int32(80), int32(-3))
	record := withSize(payload)
	buf := append(be(int32(1)), record...)

	_, err := ingest.DecodeNodes(bytes.NewReader(buf), ingest.NodeFormatCurrent)
	assert.ErrorIs(t, err, ingest.ErrMalformed)
}
