package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wegman-software/gpkg2road/internal/builder"
	"github.com/wegman-software/gpkg2road/internal/config"
	"github.com/wegman-software/gpkg2road/internal/logger"
	"github.com/wegman-software/gpkg2road/internal/metrics"
)

var (
	loadConfigFile       string
	loadRoadGeometryID   string
	loadLinearTolerance  string
	loadAngularTolerance string
	loadScaleLength      string
)

var loadCmd = &cobra.Command{
	Use:   "load <file.gpkg>",
	Short: "Build the road topology from a GeoPackage",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.Get()

		configMap := map[string]string{}
		if loadConfigFile != "" {
			m, err := config.LoadMapFromYAML(loadConfigFile)
			if err != nil {
				exitWithError("Failed to load configuration file", err)
			}
			configMap = m
		}
		configMap[config.KeyGpkgFile] = args[0]
		if cmd.Flags().Changed("road-geometry-id") {
			configMap[config.KeyRoadGeometryID] = loadRoadGeometryID
		}
		if cmd.Flags().Changed("linear-tolerance") {
			configMap[config.KeyLinearTolerance] = loadLinearTolerance
		}
		if cmd.Flags().Changed("angular-tolerance") {
			configMap[config.KeyAngularTolerance] = loadAngularTolerance
		}
		if cmd.Flags().Changed("scale-length") {
			configMap[config.KeyScaleLength] = loadScaleLength
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		if metricsInterval > 0 {
			go metrics.NewCollector(metricsInterval, log).Start(ctx)
		}

		result, err := builder.New(configMap).Build()
		if err != nil {
			exitWithError("Failed to build road topology", err)
		}

		segments, lanes := 0, 0
		for _, junction := range result.Topology.Junctions() {
			segments += len(junction.Segments)
			for _, segment := range junction.Segments {
				lanes += len(segment.Lanes)
			}
		}
		log.Info("Road topology built",
			zap.String("road_geometry_id", result.Config.RoadGeometryID),
			zap.Int("junctions", len(result.Topology.Junctions())),
			zap.Int("segments", segments),
			zap.Int("lanes", lanes),
			zap.Int("connections", len(result.Topology.Connections())),
			zap.String("schema_version", result.Metadata["schema_version"]),
		)
	},
}

func init() {
	loadCmd.Flags().StringVar(&loadConfigFile, "config", "", "YAML file with builder configuration keys")
	loadCmd.Flags().StringVar(&loadRoadGeometryID, "road-geometry-id", "", "Road geometry id forwarded to the loader")
	loadCmd.Flags().StringVar(&loadLinearTolerance, "linear-tolerance", "", "Linear tolerance forwarded to the loader")
	loadCmd.Flags().StringVar(&loadAngularTolerance, "angular-tolerance", "", "Angular tolerance forwarded to the loader")
	loadCmd.Flags().StringVar(&loadScaleLength, "scale-length", "", "Scale length forwarded to the loader")
	rootCmd.AddCommand(loadCmd)
}
