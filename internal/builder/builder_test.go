package builder_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wegman-software/gpkg2road/internal/builder"
	"github.com/wegman-software/gpkg2road/internal/config"
	"github.com/wegman-software/gpkg2road/internal/gpkg"
	"github.com/wegman-software/gpkg2road/internal/gpkg/gpkgtest"
)

type recordingLoader struct {
	result *builder.Result
	err    error
}

func (l *recordingLoader) Load(result *builder.Result) error {
	l.result = result
	return l.err
}

func TestBuildTwoLaneRoad(t *testing.T) {
	path := gpkgtest.TwoLaneRoad().Write(t)

	result, err := builder.New(map[string]string{
		config.KeyGpkgFile:        path,
		config.KeyRoadGeometryID:  "two_lane_road",
		config.KeyLinearTolerance: "0.01",
	}).Build()
	require.NoError(t, err)

	assert.Equal(t, "two_lane_road", result.Config.RoadGeometryID)
	assert.Equal(t, 0.01, result.Config.LinearTolerance)
	assert.Equal(t, "1", result.Metadata["schema_version"])

	require.Len(t, result.Topology.Junctions(), 1)
	segment := result.Topology.Junctions()["j1"].Segments["seg1"]
	require.NotNil(t, segment)
	require.Len(t, segment.Lanes, 2)
	assert.Equal(t, "lane_2", segment.Lanes[0].ID)
	assert.Empty(t, result.Topology.Connections())
}

func TestBuildRequiresGpkgFile(t *testing.T) {
	_, err := builder.New(map[string]string{}).Build()
	require.ErrorIs(t, err, builder.ErrMissingGpkgFile)
}

func TestBuildRejectsBadConfiguration(t *testing.T) {
	_, err := builder.New(map[string]string{
		config.KeyGpkgFile:        "/irrelevant.gpkg",
		config.KeyLinearTolerance: "not a number",
	}).Build()
	require.Error(t, err)
}

func TestBuildPropagatesOpenFailure(t *testing.T) {
	_, err := builder.New(map[string]string{
		config.KeyGpkgFile: "/no/such/road_network.gpkg",
	}).Build()
	require.ErrorIs(t, err, gpkg.ErrDatabaseOpen)
}

func TestBuildDelegatesToLoader(t *testing.T) {
	path := gpkgtest.TwoLaneRoad().Write(t)
	loader := &recordingLoader{}

	result, err := builder.New(map[string]string{config.KeyGpkgFile: path}).
		WithLoader(loader).
		Build()
	require.NoError(t, err)
	assert.Same(t, result, loader.result)
}

func TestBuildSurfacesLoaderError(t *testing.T) {
	path := gpkgtest.TwoLaneRoad().Write(t)
	loader := &recordingLoader{err: assert.AnError}

	_, err := builder.New(map[string]string{config.KeyGpkgFile: path}).
		WithLoader(loader).
		Build()
	require.ErrorIs(t, err, assert.AnError)
}
