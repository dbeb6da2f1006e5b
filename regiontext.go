// Package regiontext reconciles layout regions found by a detector on page
// images with the words of the document's native text layer, producing
// normalized text per region and the list of regions left empty.
//
// Basic usage:
//
//	proc := regiontext.New(config.Default())
//	res, warnings, err := proc.Process(ctx, pages)
//	if err != nil {
//	    // invalid configuration or ctx done
//	}
//	if len(warnings) > 0 {
//	    log.Println("Warnings:", regiontext.FormatWarnings(warnings))
//	}
//
// With options:
//
//	res, _, err := regiontext.New(cfg).
//	    Workers(4).
//	    Order(regions.OrderGeometric).
//	    Index(assign.RTree).
//	    Process(ctx, pages)
//
// Each page goes through the same sequence: detector boxes are scaled to
// document points, filtered by score and label into text, table and math
// buckets, text tokens are assigned to the text regions by
// intersection-over-word-area, the assembled text is normalized, and regions
// with no text are collected in [Result.Empty] for a fallback recognizer.
// Recognized text is merged back with [MergeFallback].
//
// Pages are independent. A page with unusable dimensions is skipped and a
// malformed region or token record is dropped; both produce a [Warning] and
// never affect other pages.
package regiontext

import (
	"log/slog"

	"github.com/tsawler/regiontext/config"
	"github.com/tsawler/regiontext/normalize"
)

// New returns a Processor for cfg. A nil cfg means config.Default(). An
// invalid configuration is recorded and returned by Process, so calls can be
// chained without intermediate error checks.
//
// Example:
//
//	res, warnings, err := regiontext.New(nil).Process(ctx, pages)
func New(cfg *config.Config) *Processor {
	if cfg == nil {
		cfg = config.Default()
	}
	p := &Processor{
		normalizer: normalize.New(),
		logger:     slog.Default(),
	}
	if err := cfg.Validate(); err != nil {
		p.err = err
		return p
	}
	opts, err := optionsFromConfig(cfg)
	if err != nil {
		p.err = err
		return p
	}
	p.options = opts
	return p
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	cfg := regiontext.Must(config.Load("regiontext.yaml"))
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// MustResult is a helper that wraps a call to Process and panics if the
// error is non-nil. It discards warnings and returns just the result.
//
// Example:
//
//	res := regiontext.MustResult(regiontext.New(nil).Process(ctx, pages))
func MustResult[T any](val T, _ []Warning, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
