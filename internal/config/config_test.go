package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wegman-software/gpkg2road/internal/config"
	"github.com/wegman-software/gpkg2road/internal/geom"
)

func TestDefaults(t *testing.T) {
	cfg := config.DefaultBuilder()

	assert.Empty(t, cfg.GpkgFile)
	assert.Equal(t, "maliput_sparse", cfg.RoadGeometryID)
	assert.Equal(t, 1e-3, cfg.LinearTolerance)
	assert.Equal(t, 1e-3, cfg.AngularTolerance)
	assert.Equal(t, 1.0, cfg.ScaleLength)
	assert.Equal(t, geom.Point{}, cfg.InertialToBackendFrameTranslation)
	assert.Empty(t, cfg.RoadRuleBook)
	assert.Empty(t, cfg.RuleRegistry)
	assert.Empty(t, cfg.TrafficLightBook)
	assert.Empty(t, cfg.PhaseRingBook)
	assert.Empty(t, cfg.IntersectionBook)
}

func TestFromMapWithAllParameters(t *testing.T) {
	cfg, err := config.FromMap(map[string]string{
		config.KeyGpkgFile:                          "/path/to/road_network.gpkg",
		config.KeyRoadGeometryID:                    "my_road_geometry",
		config.KeyLinearTolerance:                   "0.01",
		config.KeyAngularTolerance:                  "0.02",
		config.KeyScaleLength:                       "2.0",
		config.KeyInertialToBackendFrameTranslation: "{1., 2., 3.}",
		config.KeyRoadRuleBook:                      "/path/to/road_rule_book.yaml",
		config.KeyRuleRegistry:                      "/path/to/rule_registry.yaml",
		config.KeyTrafficLightBook:                  "/path/to/traffic_light_book.yaml",
		config.KeyPhaseRingBook:                     "/path/to/phase_ring_book.yaml",
		config.KeyIntersectionBook:                  "/path/to/intersection_book.yaml",
	})
	require.NoError(t, err)

	assert.Equal(t, "/path/to/road_network.gpkg", cfg.GpkgFile)
	assert.Equal(t, "my_road_geometry", cfg.RoadGeometryID)
	assert.Equal(t, 0.01, cfg.LinearTolerance)
	assert.Equal(t, 0.02, cfg.AngularTolerance)
	assert.Equal(t, 2.0, cfg.ScaleLength)
	assert.Equal(t, geom.Point{X: 1, Y: 2, Z: 3}, cfg.InertialToBackendFrameTranslation)
	assert.Equal(t, "/path/to/road_rule_book.yaml", cfg.RoadRuleBook)
	assert.Equal(t, "/path/to/rule_registry.yaml", cfg.RuleRegistry)
	assert.Equal(t, "/path/to/traffic_light_book.yaml", cfg.TrafficLightBook)
	assert.Equal(t, "/path/to/phase_ring_book.yaml", cfg.PhaseRingBook)
	assert.Equal(t, "/path/to/intersection_book.yaml", cfg.IntersectionBook)
}

func TestFromMapWithOnlyGpkgFile(t *testing.T) {
	cfg, err := config.FromMap(map[string]string{
		config.KeyGpkgFile: "/path/to/road_network.gpkg",
	})
	require.NoError(t, err)

	assert.Equal(t, "/path/to/road_network.gpkg", cfg.GpkgFile)
	assert.Equal(t, "maliput_sparse", cfg.RoadGeometryID)
	assert.Equal(t, 1e-3, cfg.LinearTolerance)
	assert.Equal(t, 1e-3, cfg.AngularTolerance)
}

func TestFromMapWithEmptyMap(t *testing.T) {
	cfg, err := config.FromMap(map[string]string{})
	require.NoError(t, err)

	assert.Empty(t, cfg.GpkgFile)
	assert.Equal(t, "maliput_sparse", cfg.RoadGeometryID)
}

func TestFromMapForwardsUnknownKeys(t *testing.T) {
	cfg, err := config.FromMap(map[string]string{
		"custom_downstream_key": "42",
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"custom_downstream_key": "42"}, cfg.Extra)
}

func TestFromMapRejectsBadValues(t *testing.T) {
	cases := map[string]map[string]string{
		"non-numeric tolerance": {config.KeyLinearTolerance: "very small"},
		"negative tolerance":    {config.KeyLinearTolerance: "-0.5"},
		"zero scale length":     {config.KeyScaleLength: "0"},
		"bad translation":       {config.KeyInertialToBackendFrameTranslation: "1, 2, 3"},
		"short translation":     {config.KeyInertialToBackendFrameTranslation: "{1., 2.}"},
	}
	for name, m := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := config.FromMap(m)
			require.Error(t, err)
		})
	}
}

func TestRoundTripFromMapToStringMap(t *testing.T) {
	original := map[string]string{
		config.KeyGpkgFile:        "/path/to/road_network.gpkg",
		config.KeyRoadGeometryID:  "my_road_geometry",
		config.KeyLinearTolerance: "0.01",
		config.KeyScaleLength:     "2",
		"custom_downstream_key":   "42",
	}

	cfg, err := config.FromMap(original)
	require.NoError(t, err)

	m := cfg.ToStringMap()
	assert.Equal(t, "/path/to/road_network.gpkg", m[config.KeyGpkgFile])
	assert.Equal(t, "my_road_geometry", m[config.KeyRoadGeometryID])
	assert.Equal(t, "0.01", m[config.KeyLinearTolerance])
	assert.Equal(t, "2", m[config.KeyScaleLength])
	assert.Equal(t, "42", m["custom_downstream_key"])

	// Feeding the serialized map back must resolve identically.
	again, err := config.FromMap(m)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestTranslationRoundTrip(t *testing.T) {
	p, err := config.ParseTranslation("{1.5, -2, 0.25}")
	require.NoError(t, err)
	assert.Equal(t, geom.Point{X: 1.5, Y: -2, Z: 0.25}, p)

	back, err := config.ParseTranslation(config.FormatTranslation(p))
	require.NoError(t, err)
	assert.Equal(t, p, back)
}

func TestLoadMapFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	content := "gpkg_file: /data/road.gpkg\nlinear_tolerance: 0.05\nroad_geometry_id: test_geometry\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	m, err := config.LoadMapFromYAML(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/road.gpkg", m["gpkg_file"])
	assert.Equal(t, "0.05", m["linear_tolerance"])

	cfg, err := config.FromMap(m)
	require.NoError(t, err)
	assert.Equal(t, 0.05, cfg.LinearTolerance)
	assert.Equal(t, "test_geometry", cfg.RoadGeometryID)
}

func TestLoadMapFromYAMLMissingFile(t *testing.T) {
	_, err := config.LoadMapFromYAML(filepath.Join(t.TempDir(), "absent.yml"))
	require.Error(t, err)
}
