package gpkg

import "github.com/wegman-software/gpkg2road/internal/geom"

// Raw records mirroring the GeoPackage tables. The parser materializes
// every table fully before the topology stage runs.

// RawJunction is a row of the junctions table.
type RawJunction struct {
	Name string
}

// RawSegment is a row of the segments table.
type RawSegment struct {
	JunctionID string
	Name       string
}

// RawLaneBoundary is a row of the lane_boundaries table with its geometry
// blob already decoded.
type RawLaneBoundary struct {
	Geometry geom.LineString
}

// RawLane is a row of the lanes table.
type RawLane struct {
	SegmentID             string
	LaneType              string
	Direction             string
	LeftBoundaryID        string
	LeftBoundaryInverted  bool
	RightBoundaryID       string
	RightBoundaryInverted bool
}

// RawBranchPointLane is a row of the branch_point_lanes table. Side is
// "a" or "b"; LaneEnd is "start" or "finish".
type RawBranchPointLane struct {
	LaneID  string
	Side    string
	LaneEnd string
}

// RawAdjacentLane is a row of the view_adjacent_lanes view. Side is
// "left" or "right".
type RawAdjacentLane struct {
	AdjacentLaneID string
	Side           string
}
