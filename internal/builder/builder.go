package builder

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/wegman-software/gpkg2road/internal/config"
	"github.com/wegman-software/gpkg2road/internal/gpkg"
	"github.com/wegman-software/gpkg2road/internal/logger"
	"github.com/wegman-software/gpkg2road/internal/topology"
)

// ErrMissingGpkgFile reports that the configuration mapping has no
// gpkg_file key; the key is required and has no default.
var ErrMissingGpkgFile = errors.New("gpkg_file configuration key is required")

// Result is what a build produces: the assembled topology, the metadata
// table of the source file, and the resolved configuration.
type Result struct {
	Topology *topology.RoadTopology
	Metadata map[string]string
	Config   config.Builder
}

// RoadNetworkLoader turns a built road topology into a full road network
// with rulebooks, phase rings, and intersection books. Implementations
// live downstream of this module; the builder only delegates.
type RoadNetworkLoader interface {
	Load(result *Result) error
}

// RoadNetworkBuilder parses a flat configuration mapping, loads the
// GeoPackage it names, assembles the road topology, and hands the result
// to the downstream loader when one is attached.
type RoadNetworkBuilder struct {
	configMap map[string]string
	loader    RoadNetworkLoader
}

// New creates a builder over the given configuration mapping.
func New(configMap map[string]string) *RoadNetworkBuilder {
	return &RoadNetworkBuilder{configMap: configMap}
}

// WithLoader attaches the downstream road-network loader.
func (b *RoadNetworkBuilder) WithLoader(loader RoadNetworkLoader) *RoadNetworkBuilder {
	b.loader = loader
	return b
}

// Build runs the pipeline: configuration, parser, topology, loader.
func (b *RoadNetworkBuilder) Build() (*Result, error) {
	log := logger.Get()

	cfg, err := config.FromMap(b.configMap)
	if err != nil {
		return nil, err
	}
	if cfg.GpkgFile == "" {
		return nil, ErrMissingGpkgFile
	}

	log.Info("Loading GeoPackage from file", zap.String("path", cfg.GpkgFile))
	parser, err := gpkg.NewParser(cfg.GpkgFile)
	if err != nil {
		return nil, err
	}

	log.Debug("Building road topology")
	topo, err := topology.Build(parser)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Topology: topo,
		Metadata: parser.Metadata(),
		Config:   cfg,
	}

	if b.loader != nil {
		if err := b.loader.Load(result); err != nil {
			return nil, fmt.Errorf("road network loader: %w", err)
		}
	}
	return result, nil
}
