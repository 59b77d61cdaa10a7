package cmd

import (
	"os"
	"sort"

	geojson "github.com/paulmach/go.geojson"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wegman-software/gpkg2road/internal/geom"
	"github.com/wegman-software/gpkg2road/internal/gpkg"
	"github.com/wegman-software/gpkg2road/internal/logger"
	"github.com/wegman-software/gpkg2road/internal/topology"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export <file.gpkg>",
	Short: "Export lane boundaries as GeoJSON",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.Get()

		parser, err := gpkg.NewParser(args[0])
		if err != nil {
			exitWithError("Failed to parse GeoPackage", err)
		}
		topo, err := topology.Build(parser)
		if err != nil {
			exitWithError("Failed to build road topology", err)
		}

		fc := geojson.NewFeatureCollection()
		junctions := topo.Junctions()
		junctionIDs := make([]string, 0, len(junctions))
		for id := range junctions {
			junctionIDs = append(junctionIDs, id)
		}
		sort.Strings(junctionIDs)

		for _, junctionID := range junctionIDs {
			junction := junctions[junctionID]
			segmentIDs := make([]string, 0, len(junction.Segments))
			for id := range junction.Segments {
				segmentIDs = append(segmentIDs, id)
			}
			sort.Strings(segmentIDs)

			for _, segmentID := range segmentIDs {
				for _, lane := range junction.Segments[segmentID].Lanes {
					fc.AddFeature(boundaryFeature(lane.LeftBoundary, junctionID, segmentID, lane.ID, "left"))
					fc.AddFeature(boundaryFeature(lane.RightBoundary, junctionID, segmentID, lane.ID, "right"))
				}
			}
		}

		data, err := fc.MarshalJSON()
		if err != nil {
			exitWithError("Failed to encode GeoJSON", err)
		}
		if err := os.WriteFile(exportOutput, data, 0o644); err != nil {
			exitWithError("Failed to write GeoJSON file", err)
		}
		log.Info("Lane boundaries exported",
			zap.String("output", exportOutput),
			zap.Int("features", len(fc.Features)),
		)
	},
}

func boundaryFeature(boundary geom.LineString, junctionID, segmentID, laneID, side string) *geojson.Feature {
	coords := make([][]float64, len(boundary))
	for i, p := range boundary {
		coords[i] = []float64{p.X, p.Y, p.Z}
	}
	f := geojson.NewLineStringFeature(coords)
	f.SetProperty("junction_id", junctionID)
	f.SetProperty("segment_id", segmentID)
	f.SetProperty("lane_id", laneID)
	f.SetProperty("side", side)
	return f
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "lane_boundaries.geojson", "Output GeoJSON file")
	rootCmd.AddCommand(exportCmd)
}
