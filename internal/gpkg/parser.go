package gpkg

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/wegman-software/gpkg2road/internal/logger"
	"github.com/wegman-software/gpkg2road/internal/wkb"
)

// Parser loads a GeoPackage road-network file and materializes every table
// into flat record collections. The database is opened read-only, fully
// consumed during NewParser, and closed before it returns; a Parser is
// immutable afterwards.
type Parser struct {
	metadata         map[string]string
	junctions        map[string]RawJunction
	segments         map[string]RawSegment
	laneBoundaries   map[string]RawLaneBoundary
	lanes            map[string]RawLane
	branchPointLanes map[string][]RawBranchPointLane
	adjacentLanes    map[string][]RawAdjacentLane
}

// NewParser opens the GeoPackage at gpkgFile and parses all tables.
// Any open, query, or geometry decode failure aborts the whole parse.
func NewParser(gpkgFile string) (*Parser, error) {
	log := logger.Get()
	log.Debug("Parsing GeoPackage file", zap.String("path", gpkgFile))

	db, err := OpenDatabase(gpkgFile)
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }()

	p := &Parser{}

	log.Debug("Parsing GeoPackage metadata")
	if p.metadata, err = parseMetadata(db); err != nil {
		return nil, err
	}
	log.Debug("Parsing GeoPackage junctions")
	if p.junctions, err = parseJunctions(db); err != nil {
		return nil, err
	}
	log.Debug("Parsing GeoPackage segments")
	if p.segments, err = parseSegments(db); err != nil {
		return nil, err
	}
	log.Debug("Parsing GeoPackage lane boundaries")
	if p.laneBoundaries, err = parseBoundaries(db); err != nil {
		return nil, err
	}
	log.Debug("Parsing GeoPackage lanes")
	if p.lanes, err = parseLanes(db); err != nil {
		return nil, err
	}
	log.Debug("Parsing GeoPackage branch point lanes")
	if p.branchPointLanes, err = parseBranchPoints(db); err != nil {
		return nil, err
	}
	log.Debug("Parsing GeoPackage adjacent lanes")
	if p.adjacentLanes, err = parseAdjacentLanes(db); err != nil {
		return nil, err
	}

	return p, nil
}

// Metadata returns the key-value pairs of the maliput_metadata table.
func (p *Parser) Metadata() map[string]string { return p.metadata }

// Junctions returns the junctions table keyed by junction_id.
func (p *Parser) Junctions() map[string]RawJunction { return p.junctions }

// Segments returns the segments table keyed by segment_id.
func (p *Parser) Segments() map[string]RawSegment { return p.segments }

// LaneBoundaries returns the lane_boundaries table keyed by boundary_id.
func (p *Parser) LaneBoundaries() map[string]RawLaneBoundary { return p.laneBoundaries }

// Lanes returns the lanes table keyed by lane_id.
func (p *Parser) Lanes() map[string]RawLane { return p.lanes }

// BranchPointLanes returns branch_point_lanes rows grouped by branch_point_id.
func (p *Parser) BranchPointLanes() map[string][]RawBranchPointLane { return p.branchPointLanes }

// AdjacentLanes returns view_adjacent_lanes rows grouped by lane_id.
func (p *Parser) AdjacentLanes() map[string][]RawAdjacentLane { return p.adjacentLanes }

// text unwraps a nullable text column; NULL becomes the empty string.
func text(s sql.NullString) string {
	if s.Valid {
		return s.String
	}
	return ""
}

func parseMetadata(db *Database) (map[string]string, error) {
	metadata := make(map[string]string)
	err := db.Each("SELECT key, value FROM maliput_metadata", func(rows *sql.Rows) error {
		var key, value sql.NullString
		if err := rows.Scan(&key, &value); err != nil {
			return fmt.Errorf("%w: scanning maliput_metadata: %v", ErrQuery, err)
		}
		metadata[text(key)] = text(value)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return metadata, nil
}

func parseJunctions(db *Database) (map[string]RawJunction, error) {
	junctions := make(map[string]RawJunction)
	err := db.Each("SELECT junction_id, name FROM junctions", func(rows *sql.Rows) error {
		var id, name sql.NullString
		if err := rows.Scan(&id, &name); err != nil {
			return fmt.Errorf("%w: scanning junctions: %v", ErrQuery, err)
		}
		junctions[text(id)] = RawJunction{Name: text(name)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return junctions, nil
}

func parseSegments(db *Database) (map[string]RawSegment, error) {
	segments := make(map[string]RawSegment)
	err := db.Each("SELECT segment_id, junction_id, name FROM segments", func(rows *sql.Rows) error {
		var id, junctionID, name sql.NullString
		if err := rows.Scan(&id, &junctionID, &name); err != nil {
			return fmt.Errorf("%w: scanning segments: %v", ErrQuery, err)
		}
		segments[text(id)] = RawSegment{JunctionID: text(junctionID), Name: text(name)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return segments, nil
}

func parseBoundaries(db *Database) (map[string]RawLaneBoundary, error) {
	boundaries := make(map[string]RawLaneBoundary)
	err := db.Each("SELECT boundary_id, geometry FROM lane_boundaries", func(rows *sql.Rows) error {
		var id sql.NullString
		var blob []byte
		if err := rows.Scan(&id, &blob); err != nil {
			return fmt.Errorf("%w: scanning lane_boundaries: %v", ErrQuery, err)
		}
		geometry, err := wkb.DecodeGeometry(blob)
		if err != nil {
			return fmt.Errorf("boundary %q: %w", text(id), err)
		}
		boundaries[text(id)] = RawLaneBoundary{Geometry: geometry}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return boundaries, nil
}

func parseLanes(db *Database) (map[string]RawLane, error) {
	lanes := make(map[string]RawLane)
	err := db.Each(
		"SELECT lane_id, segment_id, lane_type, direction, left_boundary_id, left_boundary_inverted, "+
			"right_boundary_id, right_boundary_inverted FROM lanes",
		func(rows *sql.Rows) error {
			var id, segmentID, laneType, direction, leftID, rightID sql.NullString
			var leftInverted, rightInverted sql.NullInt64
			if err := rows.Scan(&id, &segmentID, &laneType, &direction, &leftID, &leftInverted, &rightID, &rightInverted); err != nil {
				return fmt.Errorf("%w: scanning lanes: %v", ErrQuery, err)
			}
			lanes[text(id)] = RawLane{
				SegmentID:             text(segmentID),
				LaneType:              text(laneType),
				Direction:             text(direction),
				LeftBoundaryID:        text(leftID),
				LeftBoundaryInverted:  leftInverted.Int64 != 0,
				RightBoundaryID:       text(rightID),
				RightBoundaryInverted: rightInverted.Int64 != 0,
			}
			return nil
		})
	if err != nil {
		return nil, err
	}
	return lanes, nil
}

func parseBranchPoints(db *Database) (map[string][]RawBranchPointLane, error) {
	branchPoints := make(map[string][]RawBranchPointLane)
	err := db.Each("SELECT branch_point_id, lane_id, side, lane_end FROM branch_point_lanes", func(rows *sql.Rows) error {
		var id, laneID, side, laneEnd sql.NullString
		if err := rows.Scan(&id, &laneID, &side, &laneEnd); err != nil {
			return fmt.Errorf("%w: scanning branch_point_lanes: %v", ErrQuery, err)
		}
		branchPoints[text(id)] = append(branchPoints[text(id)], RawBranchPointLane{
			LaneID:  text(laneID),
			Side:    text(side),
			LaneEnd: text(laneEnd),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return branchPoints, nil
}

func parseAdjacentLanes(db *Database) (map[string][]RawAdjacentLane, error) {
	adjacent := make(map[string][]RawAdjacentLane)
	err := db.Each("SELECT lane_id, adjacent_lane_id, side FROM view_adjacent_lanes", func(rows *sql.Rows) error {
		var laneID, adjacentID, side sql.NullString
		if err := rows.Scan(&laneID, &adjacentID, &side); err != nil {
			return fmt.Errorf("%w: scanning view_adjacent_lanes: %v", ErrQuery, err)
		}
		adjacent[text(laneID)] = append(adjacent[text(laneID)], RawAdjacentLane{
			AdjacentLaneID: text(adjacentID),
			Side:           text(side),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return adjacent, nil
}
