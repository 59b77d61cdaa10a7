package cmd

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wegman-software/gpkg2road/internal/logger"
)

var (
	verbose         bool
	logFile         string
	metricsInterval time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "gpkg2road",
	Short: "Road-network GeoPackage loader",
	Long: `gpkg2road loads a road network authored as a GeoPackage (SQLite)
and materializes it into a topologically linked model of junctions,
segments, and lanes with ordered siblings and lane-end connections.

Commands:
  inspect  parse the file and report metadata and table counts
  load     build the full road topology and report a summary
  export   write lane boundaries as GeoJSON for debugging`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if logFile != "" {
			logger.InitWithFile(verbose, logFile)
		} else {
			logger.Init(verbose)
		}
	},
}

func Execute() error {
	defer logger.Sync()
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Path to log file for persistent logging (JSON format)")
	rootCmd.PersistentFlags().DurationVar(&metricsInterval, "metrics-interval", 0, "Interval for system metrics logging, 0 disables (e.g., 10s, 1m)")
}

func exitWithError(msg string, err error) {
	log := logger.Get()
	if err != nil {
		log.Error(msg, zap.Error(err))
	} else {
		log.Error(msg)
	}
	os.Exit(1)
}
