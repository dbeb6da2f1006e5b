// Package config loads the YAML configuration of the region text pipeline.
package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tsawler/regiontext/assign"
	"github.com/tsawler/regiontext/model"
	"github.com/tsawler/regiontext/regions"
)

// EnvVar names the environment variable the CLI reads a config path from.
const EnvVar = "REGIONTEXT_CONFIG"

// Config holds the full pipeline configuration.
type Config struct {
	Threshold      float64  `yaml:"threshold"`
	UnwantedLabels []string `yaml:"unwanted_labels"`
	Labels         Labels   `yaml:"labels"`

	Order         string  `yaml:"order"`          // detection | geometric
	LineTolerance float64 `yaml:"line_tolerance"` // points
	Workers       int     `yaml:"workers"`        // 0 = GOMAXPROCS
	Index         string  `yaml:"index"`          // auto | linear | rtree

	// ImageSizeFallback is used for pages whose detector dimensions are
	// missing. Without it such pages are skipped.
	ImageSizeFallback []float64 `yaml:"image_size_fallback"`

	// PruneNestedEmpty keeps only the innermost of nested empty regions.
	PruneNestedEmpty bool `yaml:"prune_nested_empty"`

	Fallback FallbackConfig `yaml:"fallback"`
}

// Labels are the three label taxonomies.
type Labels struct {
	Text  []string `yaml:"text"`
	Table []string `yaml:"table"`
	Math  []string `yaml:"math"`
}

// FallbackConfig configures cropping and recognition of empty regions.
type FallbackConfig struct {
	MinHeight   int      `yaml:"min_height"` // pixels
	Padding     float64  `yaml:"padding"`    // points
	Languages   []string `yaml:"languages"`
	PageSegMode int      `yaml:"page_seg_mode"`
}

// Default returns a fresh default configuration.
func Default() *Config {
	return &Config{
		Threshold: regions.DefaultThreshold,
		UnwantedLabels: []string{
			"aside_text", "header_image", "footer_image", "formula_number", "number",
			"seal", "image", "content", "footnote", "chart",
		},
		Labels: Labels{
			Text: []string{
				"text", "title", "reference", "paragraph", "header", "abstract",
				"table_caption", "table_footnote", "formula_caption", "figure_title",
				"paragraph_title", "doc_title",
			},
			Table: []string{"table"},
			Math:  []string{"formula", "equation", "inline_formula", "displayed_formula"},
		},
		Order:         regions.OrderDetection.String(),
		LineTolerance: regions.DefaultLineTolerance,
		Index:         assign.Auto.String(),
		Fallback: FallbackConfig{
			MinHeight:   48,
			Languages:   []string{"eng"},
			PageSegMode: 6,
		},
	}
}

// Load reads a YAML file and overlays it on Default.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks that values are usable. Errors are *model.ConfigurationError.
func (c *Config) Validate() error {
	if math.IsNaN(c.Threshold) || c.Threshold < 0 || c.Threshold > 1 {
		return configErr("threshold", "%v is outside [0, 1]", c.Threshold)
	}
	if _, err := c.Taxonomy(); err != nil {
		return err
	}
	if _, err := regions.ParseOrderPolicy(c.Order); err != nil {
		return err
	}
	if _, err := assign.ParseStrategy(c.Index); err != nil {
		return configErr("index", "%v", err)
	}
	if c.LineTolerance < 0 {
		return configErr("line_tolerance", "must be >= 0")
	}
	if c.Workers < 0 {
		return configErr("workers", "must be >= 0")
	}
	if c.ImageSizeFallback != nil {
		if _, ok := c.FallbackImageSize(); !ok {
			return configErr("image_size_fallback", "want two positive values, got %v", c.ImageSizeFallback)
		}
	}
	if c.Fallback.MinHeight < 0 {
		return configErr("fallback.min_height", "must be >= 0")
	}
	return nil
}

// Taxonomy builds the label taxonomy.
func (c *Config) Taxonomy() (regions.Taxonomy, error) {
	return regions.NewTaxonomy(c.Labels.Text, c.Labels.Table, c.Labels.Math)
}

// FilterConfig returns the region filter's configuration.
func (c *Config) FilterConfig() (regions.FilterConfig, error) {
	tax, err := c.Taxonomy()
	if err != nil {
		return regions.FilterConfig{}, err
	}
	return regions.FilterConfig{
		Threshold: c.Threshold,
		Unwanted:  append([]string(nil), c.UnwantedLabels...),
		Taxonomy:  tax,
	}, nil
}

// OrderPolicy returns the parsed order policy, defaulting to detection order.
func (c *Config) OrderPolicy() regions.OrderPolicy {
	p, _ := regions.ParseOrderPolicy(c.Order)
	return p
}

// AssignOptions returns the assigner's options, defaulting to the auto strategy.
func (c *Config) AssignOptions() assign.Options {
	s, err := assign.ParseStrategy(c.Index)
	if err != nil {
		s = assign.Auto
	}
	return assign.Options{Strategy: s}
}

// FallbackImageSize returns the configured fallback detector dimensions.
func (c *Config) FallbackImageSize() (model.Size, bool) {
	if len(c.ImageSizeFallback) != 2 {
		return model.Size{}, false
	}
	s := model.Size{Width: c.ImageSizeFallback[0], Height: c.ImageSizeFallback[1]}
	return s, s.IsValid()
}

func configErr(field, format string, args ...any) error {
	return &model.ConfigurationError{Page: -1, Field: field, Reason: fmt.Sprintf(format, args...)}
}
