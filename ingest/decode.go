// Package ingest decodes the big-endian, length-prefixed wire formats
// spec.md §6 documents for traffic lights, suburbs, and nodes. It is
// deliberately the least-engineered package in the module: plain
// encoding/binary reads off an io.Reader, no streaming cleverness, no
// buffering strategy beyond what bufio already gives a caller that wants
// it. The only requirement is decoding the documented formats correctly
// and failing loud (wrapped io.ErrUnexpectedEOF) on truncation.
package ingest

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/arclight/tlrouter/geom"
	"github.com/arclight/tlrouter/network"
)

// NodeFormat selects which node-record wire shape DecodeNodes reads.
// Earlier producers wrote an extra f64 and i32 between the node's y
// coordinate and its per-node speed/connection-count fields (grounded on
// original_source/src/objects/pathing/node.rs's from_bytes, which
// skip_f64/skip_i32 past exactly that gap); spec.md §6 requires tolerance
// for that header rather than guessing the format from record size, since
// a size-based sniff is unreliable once record shapes collide. The caller
// (engine config) picks the format; DecodeNodes never sniffs it.
type NodeFormat int

const (
	// NodeFormatCurrent is id, x, y, speed, conn_count, connections.
	NodeFormatCurrent NodeFormat = iota
	// NodeFormatLegacy is id, x, y, <f64 discarded>, <i32 discarded>,
	// conn_count, connections — no usable per-node speed on the wire, so
	// decoded connections get DefaultLegacySpeed.
	NodeFormatLegacy
)

// DefaultLegacySpeed is the posted speed assigned to every connection
// decoded from a NodeFormatLegacy record, since that format predates
// speed-aware weighting and carries no usable speed value on the wire.
// Matches the speed used throughout spec.md's own worked examples.
const DefaultLegacySpeed = 60

func readI32(r io.Reader) (int32, error) {
	var v int32
	if err := binary.Read(r, binary.BigEndian, &v); err != nil {
		return 0, err
	}
	return v, nil
}

func readF64(r io.Reader) (float64, error) {
	var v float64
	if err := binary.Read(r, binary.BigEndian, &v); err != nil {
		return 0, err
	}
	return v, nil
}

func skip(r io.Reader, n int64) error {
	_, err := io.CopyN(io.Discard, r, n)
	return err
}

func wrapEOF(context string, err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return fmt.Errorf("ingest: %s: %w", context, io.ErrUnexpectedEOF)
	}
	return fmt.Errorf("ingest: %s: %w", context, err)
}

// DecodeTrafficLights reads spec.md §6's traffic-light collection:
// i32 count, then count records of (i32 size, i32 id, i32 flag, f64 x,
// f64 y). The decoded Flag is the light's initial value; Engine.
// UpdateLightFlags overwrites it later from the host's side channel, per
// spec.md's update_light_flags API entry.
func DecodeTrafficLights(r io.Reader) ([]network.TrafficLight, error) {
	count, err := readI32(r)
	if err != nil {
		return nil, wrapEOF("traffic light count", err)
	}
	if count < 0 {
		return nil, fmt.Errorf("%w: negative traffic light count %d", ErrMalformed, count)
	}

	lights := make([]network.TrafficLight, 0, count)
	for i := int32(0); i < count; i++ {
		if _, err := readI32(r); err != nil { // record size, unused by this decoder
			return nil, wrapEOF("traffic light record size", err)
		}
		id, err := readI32(r)
		if err != nil {
			return nil, wrapEOF("traffic light id", err)
		}
		flag, err := readI32(r)
		if err != nil {
			return nil, wrapEOF("traffic light flag", err)
		}
		x, err := readF64(r)
		if err != nil {
			return nil, wrapEOF("traffic light x", err)
		}
		y, err := readF64(r)
		if err != nil {
			return nil, wrapEOF("traffic light y", err)
		}
		lights = append(lights, network.TrafficLight{
			ID:   uint32(id),
			Pos:  geom.Position{X: x, Y: y},
			Flag: uint32(flag),
		})
	}
	return lights, nil
}

// DecodeSuburbs reads spec.md §6's suburb collection: i32 count, then
// records of (i32 size, i32 id, i32 name_len, i32 coord_count, f64 min_x,
// f64 min_y, f64 max_x, f64 max_y, name_len bytes (skipped),
// coord_count × (f64 x, f64 y)).
func DecodeSuburbs(r io.Reader) ([]network.Suburb, error) {
	count, err := readI32(r)
	if err != nil {
		return nil, wrapEOF("suburb count", err)
	}
	if count < 0 {
		return nil, fmt.Errorf("%w: negative suburb count %d", ErrMalformed, count)
	}

	suburbs := make([]network.Suburb, 0, count)
	for i := int32(0); i < count; i++ {
		if _, err := readI32(r); err != nil {
			return nil, wrapEOF("suburb record size", err)
		}
		id, err := readI32(r)
		if err != nil {
			return nil, wrapEOF("suburb id", err)
		}
		nameLen, err := readI32(r)
		if err != nil {
			return nil, wrapEOF("suburb name length", err)
		}
		coordCount, err := readI32(r)
		if err != nil {
			return nil, wrapEOF("suburb coord count", err)
		}
		minX, err := readF64(r)
		if err != nil {
			return nil, wrapEOF("suburb min_x", err)
		}
		minY, err := readF64(r)
		if err != nil {
			return nil, wrapEOF("suburb min_y", err)
		}
		maxX, err := readF64(r)
		if err != nil {
			return nil, wrapEOF("suburb max_x", err)
		}
		maxY, err := readF64(r)
		if err != nil {
			return nil, wrapEOF("suburb max_y", err)
		}
		if nameLen < 0 || coordCount < 0 {
			return nil, fmt.Errorf("%w: suburb %d has negative name/coord length", ErrMalformed, id)
		}
		if err := skip(r, int64(nameLen)); err != nil {
			return nil, wrapEOF("suburb name", err)
		}

		xs := make([]float64, coordCount)
		ys := make([]float64, coordCount)
		for c := int32(0); c < coordCount; c++ {
			x, err := readF64(r)
			if err != nil {
				return nil, wrapEOF("suburb coordinate x", err)
			}
			y, err := readF64(r)
			if err != nil {
				return nil, wrapEOF("suburb coordinate y", err)
			}
			xs[c] = x
			ys[c] = y
		}

		suburbs = append(suburbs, network.Suburb{
			ID: uint32(id),
			Boundary: geom.Boundary{
				Min: geom.Position{X: minX, Y: minY},
				Max: geom.Position{X: maxX, Y: maxY},
			},
			XPoints: xs,
			YPoints: ys,
		})
	}
	return suburbs, nil
}

// DecodeNodes reads spec.md §6's node collection under the given format.
// Returned nodes are not yet position-indexed for solver use — the
// caller (engine) is responsible for placing each at nodes[n.Index] so
// solver.New's "nodes[i].Index == i" precondition holds. Nodes are
// returned by pointer, never by value: network.Node carries atomic
// Type/Flag fields, and copying one (as a []network.Node slice would
// invite) defeats their purpose.
func DecodeNodes(r io.Reader, format NodeFormat) ([]*network.Node, error) {
	count, err := readI32(r)
	if err != nil {
		return nil, wrapEOF("node count", err)
	}
	if count < 0 {
		return nil, fmt.Errorf("%w: negative node count %d", ErrMalformed, count)
	}

	nodes := make([]*network.Node, 0, count)
	for i := int32(0); i < count; i++ {
		if _, err := readI32(r); err != nil {
			return nil, wrapEOF("node record size", err)
		}
		id, err := readI32(r)
		if err != nil {
			return nil, wrapEOF("node id", err)
		}
		x, err := readF64(r)
		if err != nil {
			return nil, wrapEOF("node x", err)
		}
		y, err := readF64(r)
		if err != nil {
			return nil, wrapEOF("node y", err)
		}

		speed := int32(DefaultLegacySpeed)
		if format == NodeFormatLegacy {
			if err := skip(r, 8); err != nil { // discarded f64
				return nil, wrapEOF("node legacy header f64", err)
			}
			if _, err := readI32(r); err != nil { // discarded i32
				return nil, wrapEOF("node legacy header i32", err)
			}
		} else {
			speed, err = readI32(r)
			if err != nil {
				return nil, wrapEOF("node speed", err)
			}
		}

		connCount, err := readI32(r)
		if err != nil {
			return nil, wrapEOF("node connection count", err)
		}
		if connCount < 0 {
			return nil, fmt.Errorf("%w: node %d has negative connection count", ErrMalformed, id)
		}

		conns := make([]network.Connection, connCount)
		for c := int32(0); c < connCount; c++ {
			target, err := readI32(r)
			if err != nil {
				return nil, wrapEOF("connection target", err)
			}
			cost, err := readF64(r)
			if err != nil {
				return nil, wrapEOF("connection cost", err)
			}
			conns[c] = network.Connection{
				Target:       uint32(target),
				DistanceCost: float32(cost),
				Speed:        uint16(speed),
			}
		}

		nodes = append(nodes, network.NewNode(uint32(id), geom.Position{X: x, Y: y}, network.Normal, 0, conns))
	}
	return nodes, nil
}
