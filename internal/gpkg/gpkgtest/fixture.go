// Package gpkgtest authors small GeoPackage road-network files for tests.
package gpkgtest

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/wegman-software/gpkg2road/internal/geom"
	"github.com/wegman-software/gpkg2road/internal/wkb"
)

// Junction is a junctions table row.
type Junction struct {
	ID   string
	Name string
}

// Segment is a segments table row.
type Segment struct {
	ID         string
	JunctionID string
	Name       string
}

// Boundary is a lane_boundaries table row; Points is encoded into a
// GeoPackage blob unless a raw blob override is registered for the ID.
type Boundary struct {
	ID     string
	Points geom.LineString
	HasZ   bool
}

// Lane is a lanes table row.
type Lane struct {
	ID              string
	SegmentID       string
	LaneType        string
	Direction       string
	LeftBoundaryID  string
	LeftInverted    bool
	RightBoundaryID string
	RightInverted   bool
}

// BranchPointLane is a branch_point_lanes table row.
type BranchPointLane struct {
	BranchPointID string
	LaneID        string
	Side          string
	LaneEnd       string
}

// AdjacentLane is a view_adjacent_lanes row.
type AdjacentLane struct {
	LaneID         string
	AdjacentLaneID string
	Side           string
}

// Fixture describes the contents of a GeoPackage file to author.
type Fixture struct {
	Metadata         map[string]string
	Junctions        []Junction
	Segments         []Segment
	Boundaries       []Boundary
	Lanes            []Lane
	BranchPointLanes []BranchPointLane
	AdjacentLanes    []AdjacentLane

	// RawBlobs overrides the encoded geometry for a boundary id, letting
	// tests plant malformed blobs.
	RawBlobs map[string][]byte
}

const schema = `
CREATE TABLE maliput_metadata (key TEXT, value TEXT);
CREATE TABLE junctions (junction_id TEXT PRIMARY KEY, name TEXT);
CREATE TABLE segments (segment_id TEXT PRIMARY KEY, junction_id TEXT, name TEXT);
CREATE TABLE lane_boundaries (boundary_id TEXT PRIMARY KEY, geometry BLOB);
CREATE TABLE lanes (
    lane_id TEXT PRIMARY KEY,
    segment_id TEXT,
    lane_type TEXT,
    direction TEXT,
    left_boundary_id TEXT,
    left_boundary_inverted INTEGER,
    right_boundary_id TEXT,
    right_boundary_inverted INTEGER
);
CREATE TABLE branch_point_lanes (branch_point_id TEXT, lane_id TEXT, side TEXT, lane_end TEXT);
CREATE TABLE view_adjacent_lanes (lane_id TEXT, adjacent_lane_id TEXT, side TEXT);
`

// Write authors the fixture into a fresh GeoPackage under t.TempDir and
// returns its path.
func (f Fixture) Write(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "road_network.gpkg")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open fixture database: %v", err)
	}
	defer func() { _ = db.Close() }()

	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("create fixture schema: %v", err)
	}

	exec := func(query string, args ...any) {
		t.Helper()
		if _, err := db.Exec(query, args...); err != nil {
			t.Fatalf("fixture insert %q: %v", query, err)
		}
	}

	for key, value := range f.Metadata {
		exec("INSERT INTO maliput_metadata (key, value) VALUES (?, ?)", key, value)
	}
	for _, j := range f.Junctions {
		exec("INSERT INTO junctions (junction_id, name) VALUES (?, ?)", j.ID, j.Name)
	}
	for _, s := range f.Segments {
		exec("INSERT INTO segments (segment_id, junction_id, name) VALUES (?, ?, ?)", s.ID, s.JunctionID, s.Name)
	}

	encoder := wkb.NewEncoder(256)
	for _, b := range f.Boundaries {
		blob, ok := f.RawBlobs[b.ID]
		if !ok {
			blob = append([]byte(nil), encoder.EncodeLineString(b.Points, b.HasZ)...)
		}
		exec("INSERT INTO lane_boundaries (boundary_id, geometry) VALUES (?, ?)", b.ID, blob)
	}

	for _, l := range f.Lanes {
		exec(
			"INSERT INTO lanes (lane_id, segment_id, lane_type, direction, left_boundary_id, left_boundary_inverted, "+
				"right_boundary_id, right_boundary_inverted) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
			l.ID, l.SegmentID, l.LaneType, l.Direction, l.LeftBoundaryID, flag(l.LeftInverted), l.RightBoundaryID, flag(l.RightInverted),
		)
	}
	for _, bpl := range f.BranchPointLanes {
		exec("INSERT INTO branch_point_lanes (branch_point_id, lane_id, side, lane_end) VALUES (?, ?, ?, ?)",
			bpl.BranchPointID, bpl.LaneID, bpl.Side, bpl.LaneEnd)
	}
	for _, adj := range f.AdjacentLanes {
		exec("INSERT INTO view_adjacent_lanes (lane_id, adjacent_lane_id, side) VALUES (?, ?, ?)",
			adj.LaneID, adj.AdjacentLaneID, adj.Side)
	}

	return path
}

// flag renders a bool as the 0/1 INTEGER convention of the schema.
func flag(b bool) int {
	if b {
		return 1
	}
	return 0
}

// TwoLaneRoad is a straight two-lane road inside a single junction and
// segment: lane_1 on the left of lane_2, both 100 m long, with start and
// finish branch points whose entries all sit on side a.
func TwoLaneRoad() Fixture {
	return Fixture{
		Metadata: map[string]string{
			"schema_version":   "1",
			"linear_tolerance": "0.01",
		},
		Junctions: []Junction{{ID: "j1", Name: "Main Junction"}},
		Segments:  []Segment{{ID: "seg1", JunctionID: "j1", Name: "Straight Segment"}},
		Boundaries: []Boundary{
			{ID: "b_left_outer", Points: geom.LineString{{X: 0, Y: 3.5}, {X: 100, Y: 3.5}}},
			{ID: "b_center", Points: geom.LineString{{X: 0, Y: 0}, {X: 100, Y: 0}}},
			{ID: "b_right_outer", Points: geom.LineString{{X: 0, Y: -3.5}, {X: 100, Y: -3.5}}},
		},
		Lanes: []Lane{
			{ID: "lane_1", SegmentID: "seg1", LaneType: "driving", Direction: "forward",
				LeftBoundaryID: "b_left_outer", RightBoundaryID: "b_center"},
			{ID: "lane_2", SegmentID: "seg1", LaneType: "driving", Direction: "forward",
				LeftBoundaryID: "b_center", RightBoundaryID: "b_right_outer"},
		},
		BranchPointLanes: []BranchPointLane{
			{BranchPointID: "bp_start", LaneID: "lane_1", Side: "a", LaneEnd: "start"},
			{BranchPointID: "bp_start", LaneID: "lane_2", Side: "a", LaneEnd: "start"},
			{BranchPointID: "bp_end", LaneID: "lane_1", Side: "a", LaneEnd: "finish"},
			{BranchPointID: "bp_end", LaneID: "lane_2", Side: "a", LaneEnd: "finish"},
		},
		AdjacentLanes: []AdjacentLane{
			{LaneID: "lane_1", AdjacentLaneID: "lane_2", Side: "right"},
			{LaneID: "lane_2", AdjacentLaneID: "lane_1", Side: "left"},
		},
	}
}
