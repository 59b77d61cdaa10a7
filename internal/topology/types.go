package topology

import "github.com/wegman-software/gpkg2road/internal/geom"

// Which identifies one terminus of a lane.
type Which int

const (
	// Start is the beginning of a lane's longitudinal extent.
	Start Which = iota
	// Finish is the end of a lane's longitudinal extent.
	Finish
)

func (w Which) String() string {
	if w == Start {
		return "start"
	}
	return "finish"
}

// LaneEnd identifies a lane terminus, the endpoint type of connections.
type LaneEnd struct {
	LaneID string
	End    Which
}

// Lane is a drivable strip bounded by two polylines. Neighbor lanes and
// connected lane ends are referenced by id; they resolve to the lanes held
// in the topology's junctions and segments.
type Lane struct {
	ID            string
	LeftBoundary  geom.LineString
	RightBoundary geom.LineString

	// LeftLaneID / RightLaneID name the adjacent lane on each side, or are
	// empty when there is none inside the segment.
	LeftLaneID  string
	RightLaneID string

	// Predecessors and Successors map a peer lane id to the peer's lane
	// end connected at this lane's start / finish.
	Predecessors map[string]LaneEnd
	Successors   map[string]LaneEnd
}

// Segment is a bundle of parallel lanes, ordered right-to-left: the
// rightmost lane comes first.
type Segment struct {
	ID    string
	Lanes []*Lane
}

// Junction groups the segments that share topology.
type Junction struct {
	ID       string
	Segments map[string]*Segment
}

// Connection records that motion between two lane ends is topologically
// continuous.
type Connection struct {
	From LaneEnd
	To   LaneEnd
}
