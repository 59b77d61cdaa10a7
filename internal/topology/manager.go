package topology

import (
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/wegman-software/gpkg2road/internal/geom"
	"github.com/wegman-software/gpkg2road/internal/gpkg"
	"github.com/wegman-software/gpkg2road/internal/logger"
)

var (
	// ErrReference reports a dangling foreign key between raw records:
	// lane to segment, lane to boundary, segment to junction, or
	// branch-point lane to lane.
	ErrReference = errors.New("dangling reference")

	// ErrTopology reports a malformed enumerated value or an empty lane
	// boundary in the parsed road network.
	ErrTopology = errors.New("malformed topology")
)

// RoadTopology is the assembled road network: junctions of segments of
// ordered lanes, plus the deduplicated lane-end connection list. It is
// built eagerly by Build and immutable afterwards.
type RoadTopology struct {
	junctions   map[string]*Junction
	connections []Connection
}

// Junctions returns the junction mapping keyed by junction id.
func (t *RoadTopology) Junctions() map[string]*Junction { return t.junctions }

// Connections returns the canonical connection list, sorted by
// (from.lane_id, from.end, to.lane_id, to.end) with duplicates removed.
func (t *RoadTopology) Connections() []Connection { return t.connections }

// Build assembles the topologically linked road network from the parsed
// GeoPackage tables. Construction is all-or-nothing: any dangling
// reference or malformed enumerated value discards the partial result.
func Build(p *gpkg.Parser) (*RoadTopology, error) {
	lanes, err := buildLanes(p)
	if err != nil {
		return nil, err
	}
	if err := resolveBranchPoints(p, lanes); err != nil {
		return nil, err
	}
	segments, err := buildSegments(p, lanes)
	if err != nil {
		return nil, err
	}
	junctions, err := buildJunctions(p, segments)
	if err != nil {
		return nil, err
	}

	topo := &RoadTopology{junctions: junctions}
	topo.connections = collectConnections(junctions)

	logger.Get().Debug("Road topology assembled",
		zap.Int("junctions", len(topo.junctions)),
		zap.Int("lanes", len(lanes)),
		zap.Int("connections", len(topo.connections)),
	)
	return topo, nil
}

// buildLanes constructs one Lane per raw lane record: boundary geometry
// with inversion applied, left/right adjacency, empty connection maps.
func buildLanes(p *gpkg.Parser) (map[string]*Lane, error) {
	rawLanes := p.Lanes()
	boundaries := p.LaneBoundaries()
	segments := p.Segments()

	lanes := make(map[string]*Lane, len(rawLanes))
	for _, laneID := range sortedKeys(rawLanes) {
		raw := rawLanes[laneID]

		if _, ok := segments[raw.SegmentID]; !ok {
			return nil, fmt.Errorf("%w: lane %q references missing segment %q", ErrReference, laneID, raw.SegmentID)
		}

		left, err := boundaryGeometry(boundaries, raw.LeftBoundaryID, raw.LeftBoundaryInverted)
		if err != nil {
			return nil, fmt.Errorf("lane %q: %w", laneID, err)
		}
		right, err := boundaryGeometry(boundaries, raw.RightBoundaryID, raw.RightBoundaryInverted)
		if err != nil {
			return nil, fmt.Errorf("lane %q: %w", laneID, err)
		}
		if len(left) == 0 || len(right) == 0 {
			return nil, fmt.Errorf("%w: lane %q has an empty boundary polyline", ErrTopology, laneID)
		}

		lane := &Lane{
			ID:            laneID,
			LeftBoundary:  left,
			RightBoundary: right,
			Predecessors:  make(map[string]LaneEnd),
			Successors:    make(map[string]LaneEnd),
		}

		for _, adj := range p.AdjacentLanes()[laneID] {
			switch adj.Side {
			case "left":
				lane.LeftLaneID = adj.AdjacentLaneID
			case "right":
				lane.RightLaneID = adj.AdjacentLaneID
			default:
				return nil, fmt.Errorf("%w: lane %q has adjacency side %q, want left or right", ErrTopology, laneID, adj.Side)
			}
		}

		lanes[laneID] = lane
	}
	return lanes, nil
}

func boundaryGeometry(boundaries map[string]gpkg.RawLaneBoundary, boundaryID string, inverted bool) (geom.LineString, error) {
	boundary, ok := boundaries[boundaryID]
	if !ok {
		return nil, fmt.Errorf("%w: missing boundary %q", ErrReference, boundaryID)
	}
	if inverted {
		return boundary.Geometry.Reversed(), nil
	}
	// Copy so the assembled lane never aliases the parser's raw record.
	return append(geom.LineString(nil), boundary.Geometry...), nil
}

// resolveBranchPoints expands each branch point's bipartite a/b lane-end
// sets into symmetric predecessor/successor links on both lanes of every
// (a, b) pair. A branch point with all entries on one side contributes
// nothing.
func resolveBranchPoints(p *gpkg.Parser, lanes map[string]*Lane) error {
	branchPoints := p.BranchPointLanes()
	for _, bpID := range sortedKeys(branchPoints) {
		var sideA, sideB []gpkg.RawBranchPointLane
		for _, bpl := range branchPoints[bpID] {
			switch bpl.Side {
			case "a":
				sideA = append(sideA, bpl)
			case "b":
				sideB = append(sideB, bpl)
			}
		}

		for _, la := range sideA {
			for _, lb := range sideB {
				endA, err := parseWhich(la.LaneEnd)
				if err != nil {
					return fmt.Errorf("branch point %q: %w", bpID, err)
				}
				endB, err := parseWhich(lb.LaneEnd)
				if err != nil {
					return fmt.Errorf("branch point %q: %w", bpID, err)
				}

				laneA, ok := lanes[la.LaneID]
				if !ok {
					return fmt.Errorf("%w: branch point %q references missing lane %q", ErrReference, bpID, la.LaneID)
				}
				laneB, ok := lanes[lb.LaneID]
				if !ok {
					return fmt.Errorf("%w: branch point %q references missing lane %q", ErrReference, bpID, lb.LaneID)
				}

				link(laneA, endA, LaneEnd{LaneID: lb.LaneID, End: endB})
				link(laneB, endB, LaneEnd{LaneID: la.LaneID, End: endA})
			}
		}
	}
	return nil
}

// link records peer as connected at the given end of lane.
func link(lane *Lane, end Which, peer LaneEnd) {
	if end == Start {
		lane.Predecessors[peer.LaneID] = peer
	} else {
		lane.Successors[peer.LaneID] = peer
	}
}

func parseWhich(s string) (Which, error) {
	switch s {
	case "start":
		return Start, nil
	case "finish":
		return Finish, nil
	default:
		return Start, fmt.Errorf("%w: lane end %q, want start or finish", ErrTopology, s)
	}
}

// buildSegments buckets lanes by segment and orders each bucket
// right-to-left. Adjacency references leaving the segment are cleared so
// neighbor ids always resolve within the owning segment.
func buildSegments(p *gpkg.Parser, lanes map[string]*Lane) (map[string]*Segment, error) {
	bySegment := make(map[string][]*Lane)
	for _, laneID := range sortedKeys(lanes) {
		segmentID := p.Lanes()[laneID].SegmentID
		bySegment[segmentID] = append(bySegment[segmentID], lanes[laneID])
	}

	segments := make(map[string]*Segment, len(p.Segments()))
	for _, segmentID := range sortedKeys(p.Segments()) {
		inSegment := make(map[string]bool, len(bySegment[segmentID]))
		for _, lane := range bySegment[segmentID] {
			inSegment[lane.ID] = true
		}
		for _, lane := range bySegment[segmentID] {
			if lane.LeftLaneID != "" && !inSegment[lane.LeftLaneID] {
				lane.LeftLaneID = ""
			}
			if lane.RightLaneID != "" && !inSegment[lane.RightLaneID] {
				lane.RightLaneID = ""
			}
		}

		segments[segmentID] = &Segment{
			ID:    segmentID,
			Lanes: sortLanes(bySegment[segmentID]),
		}
	}
	return segments, nil
}

// sortLanes orders a segment's lanes right-to-left: walks start at lanes
// with no right neighbor in the segment and follow left-neighbor links.
// Lanes unreachable from any start (broken chains, cycles) are appended in
// enumeration order so every lane appears exactly once.
func sortLanes(lanes []*Lane) []*Lane {
	if len(lanes) == 0 {
		return lanes
	}

	index := make(map[string]int, len(lanes))
	for i, lane := range lanes {
		index[lane.ID] = i
	}

	var starts []int
	for i, lane := range lanes {
		if lane.RightLaneID == "" {
			starts = append(starts, i)
		}
	}
	// A pure cycle has no start; break it at the first lane.
	if len(starts) == 0 {
		starts = append(starts, 0)
	}

	sorted := make([]*Lane, 0, len(lanes))
	placed := make([]bool, len(lanes))
	for _, start := range starts {
		for current := start; !placed[current]; {
			placed[current] = true
			sorted = append(sorted, lanes[current])

			next, ok := index[lanes[current].LeftLaneID]
			if !ok {
				break
			}
			current = next
		}
	}

	for i, lane := range lanes {
		if !placed[i] {
			sorted = append(sorted, lane)
		}
	}
	return sorted
}

// buildJunctions buckets segments into their junctions. Junctions without
// segments are still emitted.
func buildJunctions(p *gpkg.Parser, segments map[string]*Segment) (map[string]*Junction, error) {
	junctions := make(map[string]*Junction, len(p.Junctions()))
	for junctionID := range p.Junctions() {
		junctions[junctionID] = &Junction{
			ID:       junctionID,
			Segments: make(map[string]*Segment),
		}
	}

	for _, segmentID := range sortedKeys(segments) {
		junctionID := p.Segments()[segmentID].JunctionID
		junction, ok := junctions[junctionID]
		if !ok {
			return nil, fmt.Errorf("%w: segment %q references missing junction %q", ErrReference, segmentID, junctionID)
		}
		junction.Segments[segmentID] = segments[segmentID]
	}
	return junctions, nil
}

// collectConnections walks every lane in junction, segment, lane order and
// emits one connection per predecessor and successor edge, then sorts and
// deduplicates the list.
func collectConnections(junctions map[string]*Junction) []Connection {
	var connections []Connection
	for _, junctionID := range sortedKeys(junctions) {
		junction := junctions[junctionID]
		for _, segmentID := range sortedKeys(junction.Segments) {
			for _, lane := range junction.Segments[segmentID].Lanes {
				for _, peerID := range sortedKeys(lane.Predecessors) {
					connections = append(connections, Connection{
						From: lane.Predecessors[peerID],
						To:   LaneEnd{LaneID: lane.ID, End: Start},
					})
				}
				for _, peerID := range sortedKeys(lane.Successors) {
					connections = append(connections, Connection{
						From: LaneEnd{LaneID: lane.ID, End: Finish},
						To:   lane.Successors[peerID],
					})
				}
			}
		}
	}

	sort.Slice(connections, func(i, j int) bool {
		return lessConnection(connections[i], connections[j])
	})

	deduped := connections[:0]
	for _, c := range connections {
		if len(deduped) == 0 || c != deduped[len(deduped)-1] {
			deduped = append(deduped, c)
		}
	}
	return deduped
}

func lessConnection(a, b Connection) bool {
	if a.From.LaneID != b.From.LaneID {
		return a.From.LaneID < b.From.LaneID
	}
	if a.From.End != b.From.End {
		return a.From.End < b.From.End
	}
	if a.To.LaneID != b.To.LaneID {
		return a.To.LaneID < b.To.LaneID
	}
	return a.To.End < b.To.End
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
