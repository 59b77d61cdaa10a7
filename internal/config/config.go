package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/wegman-software/gpkg2road/internal/geom"
)

// Configuration keys recognized by the builder. Keys not listed here are
// forwarded untouched to the downstream road-network loader.
const (
	KeyGpkgFile                          = "gpkg_file"
	KeyRoadGeometryID                    = "road_geometry_id"
	KeyLinearTolerance                   = "linear_tolerance"
	KeyAngularTolerance                  = "angular_tolerance"
	KeyScaleLength                       = "scale_length"
	KeyInertialToBackendFrameTranslation = "inertial_to_backend_frame_translation"
	KeyRoadRuleBook                      = "road_rule_book"
	KeyRuleRegistry                      = "rule_registry"
	KeyTrafficLightBook                  = "traffic_light_book"
	KeyPhaseRingBook                     = "phase_ring_book"
	KeyIntersectionBook                  = "intersection_book"
)

// Builder holds the resolved road-network builder configuration.
// Book paths are optional; empty means the downstream loader skips them.
type Builder struct {
	GpkgFile                          string
	RoadGeometryID                    string  `validate:"required"`
	LinearTolerance                   float64 `validate:"gt=0"`
	AngularTolerance                  float64 `validate:"gt=0"`
	ScaleLength                       float64 `validate:"gt=0"`
	InertialToBackendFrameTranslation geom.Point
	RoadRuleBook                      string
	RuleRegistry                      string
	TrafficLightBook                  string
	PhaseRingBook                     string
	IntersectionBook                  string

	// Extra carries unrecognized keys, forwarded to the downstream loader.
	Extra map[string]string
}

// DefaultBuilder returns the builder configuration defaults.
func DefaultBuilder() Builder {
	return Builder{
		RoadGeometryID:   "maliput_sparse",
		LinearTolerance:  1e-3,
		AngularTolerance: 1e-3,
		ScaleLength:      1.0,
	}
}

// FromMap resolves a flat string-to-string configuration mapping over the
// defaults. Unknown keys are collected in Extra rather than rejected.
func FromMap(m map[string]string) (Builder, error) {
	cfg := DefaultBuilder()

	for key, value := range m {
		var err error
		switch key {
		case KeyGpkgFile:
			cfg.GpkgFile = value
		case KeyRoadGeometryID:
			cfg.RoadGeometryID = value
		case KeyLinearTolerance:
			cfg.LinearTolerance, err = strconv.ParseFloat(value, 64)
		case KeyAngularTolerance:
			cfg.AngularTolerance, err = strconv.ParseFloat(value, 64)
		case KeyScaleLength:
			cfg.ScaleLength, err = strconv.ParseFloat(value, 64)
		case KeyInertialToBackendFrameTranslation:
			cfg.InertialToBackendFrameTranslation, err = ParseTranslation(value)
		case KeyRoadRuleBook:
			cfg.RoadRuleBook = value
		case KeyRuleRegistry:
			cfg.RuleRegistry = value
		case KeyTrafficLightBook:
			cfg.TrafficLightBook = value
		case KeyPhaseRingBook:
			cfg.PhaseRingBook = value
		case KeyIntersectionBook:
			cfg.IntersectionBook = value
		default:
			if cfg.Extra == nil {
				cfg.Extra = make(map[string]string)
			}
			cfg.Extra[key] = value
		}
		if err != nil {
			return Builder{}, fmt.Errorf("invalid value %q for key %q: %w", value, key, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return Builder{}, err
	}
	return cfg, nil
}

// ToStringMap serializes the configuration back into the flat mapping
// accepted by FromMap. Optional book paths are emitted even when empty so
// the round-trip is lossless.
func (c Builder) ToStringMap() map[string]string {
	m := map[string]string{
		KeyGpkgFile:                          c.GpkgFile,
		KeyRoadGeometryID:                    c.RoadGeometryID,
		KeyLinearTolerance:                   strconv.FormatFloat(c.LinearTolerance, 'g', -1, 64),
		KeyAngularTolerance:                  strconv.FormatFloat(c.AngularTolerance, 'g', -1, 64),
		KeyScaleLength:                       strconv.FormatFloat(c.ScaleLength, 'g', -1, 64),
		KeyInertialToBackendFrameTranslation: FormatTranslation(c.InertialToBackendFrameTranslation),
		KeyRoadRuleBook:                      c.RoadRuleBook,
		KeyRuleRegistry:                      c.RuleRegistry,
		KeyTrafficLightBook:                  c.TrafficLightBook,
		KeyPhaseRingBook:                     c.PhaseRingBook,
		KeyIntersectionBook:                  c.IntersectionBook,
	}
	for key, value := range c.Extra {
		m[key] = value
	}
	return m
}

// Validate checks the configuration invariants.
func (c Builder) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid builder configuration: %w", err)
	}
	return nil
}

// ParseTranslation parses a 3D translation vector serialized as
// "{x, y, z}".
func ParseTranslation(s string) (geom.Point, error) {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "{") || !strings.HasSuffix(trimmed, "}") {
		return geom.Point{}, fmt.Errorf("translation %q is not wrapped in braces", s)
	}
	parts := strings.Split(trimmed[1:len(trimmed)-1], ",")
	if len(parts) != 3 {
		return geom.Point{}, fmt.Errorf("translation %q must have 3 components", s)
	}
	var coords [3]float64
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return geom.Point{}, fmt.Errorf("invalid translation component %q: %w", part, err)
		}
		coords[i] = v
	}
	return geom.Point{X: coords[0], Y: coords[1], Z: coords[2]}, nil
}

// FormatTranslation serializes a translation vector as "{x, y, z}".
func FormatTranslation(p geom.Point) string {
	return fmt.Sprintf("{%s, %s, %s}",
		strconv.FormatFloat(p.X, 'g', -1, 64),
		strconv.FormatFloat(p.Y, 'g', -1, 64),
		strconv.FormatFloat(p.Z, 'g', -1, 64),
	)
}

// LoadMapFromYAML reads a flat string-to-string configuration mapping from
// a YAML file, the on-disk form of the builder configuration.
func LoadMapFromYAML(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var m map[string]string
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return m, nil
}
