package engine_test

import (
	"bytes"
	"encoding/binary"
	"testing"
	"time"

	"github.com/arclight/tlrouter/config"
	"github.com/arclight/tlrouter/engine"
	"github.com/arclight/tlrouter/geom"
	"github.com/arclight/tlrouter/network"
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

type nodeSpec struct {
	id    int32
	x, y  float64
	speed int32
	conns []connSpec
}

type connSpec struct {
	target int32
	cost   float64
}

func nodesWire(specs ...nodeSpec) []byte {
	buf := be(int32(len(specs)))
	for _, n := range specs {
		payload := be(n.id, n.x, n.y, n.speed, int32(len(n.conns)))
		for _, c := range n.conns {
			payload = append(payload, be(c.target, c.cost)...)
		}
		buf = append(buf, withSize(payload)...)
	}
	return buf
}

type lightSpec struct {
	id   int32
	flag int32
	x, y float64
}

func lightsWire(specs ...lightSpec) []byte {
	buf := be(int32(len(specs)))
	for _, l := range specs {
		payload := be(l.id, l.flag, l.x, l.y)
		buf = append(buf, withSize(payload)...)
	}
	return buf
}

type suburbSpec struct {
	id                     int32
	minX, minY, maxX, maxY float64
	xs, ys                 []float64
}

func suburbsWire(specs ...suburbSpec) []byte {
	buf := be(int32(len(specs)))
	for _, s := range specs {
		payload := be(s.id, int32(0), int32(len(s.xs)), s.minX, s.minY, s.maxX, s.maxY)
		for i := range s.xs {
			payload = append(payload, be(s.xs[i], s.ys[i])...)
		}
		buf = append(buf, withSize(payload)...)
	}
	return buf
}

// straightLineEngine ingests 3 nodes A(0,0)-B(1,0)-C(2,0), each hop
// distance 1 at speed 60, no traffic lights or suburbs.
func straightLineEngine(t *testing.T) *engine.Engine {
	t.Helper()
	e := engine.New(config.Default(), nil)
	wire := nodesWire(
		nodeSpec{id: 0, x: 0, y: 0, speed: 60, conns: []connSpec{{target: 1, cost: 1}}},
		nodeSpec{id: 1, x: 1, y: 0, speed: 60, conns: []connSpec{{target: 2, cost: 1}}},
		nodeSpec{id: 2, x: 2, y: 0, speed: 60},
	)
	require.NoError(t, e.SendNodes(bytes.NewReader(wire)))
	return e
}

func TestFindPathResolvesNearestNodesAndRunsToCompletion(t *testing.T) {
	e := straightLineEngine(t)
	h := e.BuildSolver(network.Fastest)
	require.NotEqual(t, engine.InvalidHandle, h)

	path, err := e.FindPath(h, geom.Position{X: 0, Y: 0}, geom.Position{X: 2, Y: 0})
	require.NoError(t, err)
	require.True(t, path.Found())
	assert.Equal(t, []uint32{0, 1, 2}, path.Indices)
	assert.InDelta(t, 2.0, path.Distance, 1e-9)
}

func TestFindPathUnresolvableEndpointYieldsEmptyPathNoError(t *testing.T) {
	e := straightLineEngine(t)
	h := e.BuildSolver(network.Fastest)

	path, err := e.FindPath(h, geom.Position{X: 1000, Y: 1000}, geom.Position{X: 2, Y: 0})
	require.NoError(t, err)
	assert.False(t, path.Found())
}

func TestFindPathUnknownHandleReturnsError(t *testing.T) {
	e := straightLineEngine(t)
	_, err := e.FindPath(engine.Handle(99), geom.Position{}, geom.Position{})
	assert.ErrorIs(t, err, engine.ErrUnknownHandle)
}

func TestBuildSolverPoolExhaustionAndRelease(t *testing.T) {
	cfg := config.Default()
	cfg.SolverPoolSize = 1
	e := engine.New(cfg, nil)
	wire := nodesWire(nodeSpec{id: 0, x: 0, y: 0, speed: 60})
	require.NoError(t, e.SendNodes(bytes.NewReader(wire)))

	h1 := e.BuildSolver(network.Fastest)
	require.NotEqual(t, engine.InvalidHandle, h1)

	h2 := e.BuildSolver(network.Fastest)
	assert.Equal(t, engine.InvalidHandle, h2)

	e.DestroySolver(h1)
	h3 := e.BuildSolver(network.Shortest)
	assert.NotEqual(t, engine.InvalidHandle, h3)
}

func TestSetSearchMethodUnknownHandle(t *testing.T) {
	e := straightLineEngine(t)
	err := e.SetSearchMethod(engine.Handle(5), network.Avoid)
	assert.ErrorIs(t, err, engine.ErrUnknownHandle)
}

func TestAssociateLightsToNodesClassifiesAndUpdateFlagsReclassifies(t *testing.T) {
	e := straightLineEngine(t)
	require.NoError(t, e.SendTrafficLights(bytes.NewReader(lightsWire(
		lightSpec{id: 7, flag: 0, x: 1, y: 0}, // sits exactly on node B
	))))
	e.AssociateLightsToNodes()

	h := e.BuildSolver(network.Fastest)
	path, err := e.FindPath(h, geom.Position{X: 0, Y: 0}, geom.Position{X: 2, Y: 0})
	require.NoError(t, err)
	require.True(t, path.Found())
	// No shedding bit set (flag 0): no traffic-light penalty regardless of
	// node classification.
	assert.InDelta(t, 2.0/60.0, path.Time, 1e-9)

	require.NoError(t, e.UpdateLightFlags([]uint32{0xFFFFFFFF}))
	h2 := e.BuildSolver(network.Fastest)
	path2, err := e.FindPath(h2, geom.Position{X: 0, Y: 0}, geom.Position{X: 2, Y: 0})
	require.NoError(t, err)
	require.True(t, path2.Found())
	assert.Greater(t, path2.Time, path.Time)
}

func TestUpdateLightFlagsCountMismatch(t *testing.T) {
	e := straightLineEngine(t)
	require.NoError(t, e.SendTrafficLights(bytes.NewReader(lightsWire(lightSpec{id: 1, x: 1, y: 0}))))
	err := e.UpdateLightFlags([]uint32{1, 2})
	assert.ErrorIs(t, err, engine.ErrFlagCountMismatch)
}

func TestComputeMapsLightsToSmallestContainingSuburb(t *testing.T) {
	e := engine.New(config.Default(), nil)
	require.NoError(t, e.SendTrafficLights(bytes.NewReader(lightsWire(
		lightSpec{id: 1, x: 0.5, y: 0.5},
		lightSpec{id: 2, x: 5, y: 5},
	))))
	require.NoError(t, e.SendSuburbs(bytes.NewReader(suburbsWire(
		suburbSpec{id: 10, minX: 0, minY: 0, maxX: 1, maxY: 1, xs: []float64{0, 1, 1, 0}, ys: []float64{0, 0, 1, 1}},
		suburbSpec{id: 11, minX: -1, minY: -1, maxX: 2, maxY: 2, xs: []float64{-1, 2, 2, -1}, ys: []float64{-1, -1, 2, 2}},
	))))

	pairs, err := e.Compute()
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, engine.LightSuburb{LightID: 1, SuburbID: 10}, pairs[0])
}

func TestBackgroundWorkerRunsToCompletion(t *testing.T) {
	e := straightLineEngine(t)
	h := e.BuildSolver(network.Fastest)

	w, err := e.RunBackground(h, geom.Position{X: 0, Y: 0}, geom.Position{X: 2, Y: 0})
	require.NoError(t, err)

	time.Sleep(100 * time.Millisecond)
	w.Stop()

	path, ok := w.Path()
	require.True(t, ok)
	assert.Equal(t, []uint32{0, 1, 2}, path.Indices)
}

func TestRunBackgroundUnresolvableEndpointNeverFindsPath(t *testing.T) {
	e := straightLineEngine(t)
	h := e.BuildSolver(network.Fastest)

	w, err := e.RunBackground(h, geom.Position{X: 1000, Y: 1000}, geom.Position{X: 2, Y: 0})
	require.NoError(t, err)
	w.Stop()

	_, ok := w.Path()
	assert.False(t, ok)
}
