package regiontext

import (
	"github.com/tsawler/regiontext/assign"
	"github.com/tsawler/regiontext/config"
	"github.com/tsawler/regiontext/model"
	"github.com/tsawler/regiontext/regions"
)

// ProcessOptions holds per-run settings of a Processor.
type ProcessOptions struct {
	// Region filter
	filter regions.FilterConfig

	// Worker count, 0 means GOMAXPROCS
	workers int

	// Final region ordering
	order         regions.OrderPolicy
	lineTolerance float64

	// Spatial lookup for assignment
	assign assign.Options

	// Detector dimensions for pages that lack them
	imageSizeFallback    model.Size
	hasImageSizeFallback bool

	pruneNested bool
}

// optionsFromConfig builds options from a validated configuration.
func optionsFromConfig(cfg *config.Config) (ProcessOptions, error) {
	fc, err := cfg.FilterConfig()
	if err != nil {
		return ProcessOptions{}, err
	}
	opts := ProcessOptions{
		filter:        fc,
		workers:       cfg.Workers,
		order:         cfg.OrderPolicy(),
		lineTolerance: cfg.LineTolerance,
		assign:        cfg.AssignOptions(),
		pruneNested:   cfg.PruneNestedEmpty,
	}
	opts.imageSizeFallback, opts.hasImageSizeFallback = cfg.FallbackImageSize()
	return opts, nil
}

// clone creates a deep copy of ProcessOptions.
func (o ProcessOptions) clone() ProcessOptions {
	newOpts := o

	// Deep copy the unwanted label slice; the taxonomy is immutable
	if o.filter.Unwanted != nil {
		newOpts.filter.Unwanted = make([]string, len(o.filter.Unwanted))
		copy(newOpts.filter.Unwanted, o.filter.Unwanted)
	}

	return newOpts
}
