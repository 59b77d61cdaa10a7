package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wegman-software/gpkg2road/internal/gpkg"
	"github.com/wegman-software/gpkg2road/internal/logger"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.gpkg>",
	Short: "Parse a GeoPackage and report its contents",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.Get()

		parser, err := gpkg.NewParser(args[0])
		if err != nil {
			exitWithError("Failed to parse GeoPackage", err)
		}

		log.Info("GeoPackage parsed",
			zap.Int("junctions", len(parser.Junctions())),
			zap.Int("segments", len(parser.Segments())),
			zap.Int("lane_boundaries", len(parser.LaneBoundaries())),
			zap.Int("lanes", len(parser.Lanes())),
			zap.Int("branch_points", len(parser.BranchPointLanes())),
		)

		metadata := parser.Metadata()
		keys := make([]string, 0, len(metadata))
		for k := range metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("%s = %s\n", k, metadata[k])
		}
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
