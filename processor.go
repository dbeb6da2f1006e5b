package regiontext

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/tsawler/regiontext/assign"
	"github.com/tsawler/regiontext/coords"
	"github.com/tsawler/regiontext/fallback"
	"github.com/tsawler/regiontext/model"
	"github.com/tsawler/regiontext/normalize"
	"github.com/tsawler/regiontext/regions"
)

// Processor runs the per-page pipeline. Configuration methods return a new
// Processor and leave the receiver unchanged, so a Processor can be shared
// and specialized freely.
type Processor struct {
	options    ProcessOptions
	normalizer *normalize.Normalizer
	logger     *slog.Logger

	// Deferred configuration error, returned by Process
	err error
}

// clone creates a shallow copy of the Processor with a deep copy of options.
func (p *Processor) clone() *Processor {
	return &Processor{
		options:    p.options.clone(),
		normalizer: p.normalizer,
		logger:     p.logger,
		err:        p.err,
	}
}

// Workers sets the number of pages processed concurrently. Zero or less
// means runtime.GOMAXPROCS(0).
func (p *Processor) Workers(n int) *Processor {
	newProc := p.clone()
	newProc.options.workers = n
	return newProc
}

// Order sets the policy used to order each page's final region list.
func (p *Processor) Order(policy regions.OrderPolicy) *Processor {
	newProc := p.clone()
	newProc.options.order = policy
	return newProc
}

// LineTolerance sets the same-line tolerance, in points, of geometric ordering.
func (p *Processor) LineTolerance(points float64) *Processor {
	newProc := p.clone()
	newProc.options.lineTolerance = points
	return newProc
}

// Index selects the candidate lookup used by the spatial assigner.
func (p *Processor) Index(strategy assign.Strategy) *Processor {
	newProc := p.clone()
	newProc.options.assign.Strategy = strategy
	return newProc
}

// PruneNested toggles keeping only the innermost of nested empty regions.
func (p *Processor) PruneNested(enabled bool) *Processor {
	newProc := p.clone()
	newProc.options.pruneNested = enabled
	return newProc
}

// Logger sets the structured logger. A nil logger restores slog.Default().
func (p *Processor) Logger(logger *slog.Logger) *Processor {
	newProc := p.clone()
	if logger == nil {
		logger = slog.Default()
	}
	newProc.logger = logger
	return newProc
}

// Err returns the configuration error recorded by New, if any.
func (p *Processor) Err() error {
	return p.err
}

func (p *Processor) workers() int {
	if p.options.workers > 0 {
		return p.options.workers
	}
	return runtime.GOMAXPROCS(0)
}

// Process runs every page through the pipeline with a bounded worker pool
// and returns the results in page order.
//
// Problems confined to a page never fail the run: they are returned as
// warnings and reflected in the page's Status. The error is non-nil only
// for an invalid Processor configuration or when ctx is done. On
// cancellation no further pages are scheduled and the Result holds the
// pages that finished.
func (p *Processor) Process(ctx context.Context, inputs []PageInput) (*Result, []Warning, error) {
	if p.err != nil {
		return nil, nil, p.err
	}

	results := make([]PageResult, len(inputs))
	empties := make([]fallback.EmptyPage, len(inputs))
	pageWarnings := make([][]Warning, len(inputs))
	done := make([]bool, len(inputs))

	var g errgroup.Group
	g.SetLimit(p.workers())
	for i := range inputs {
		if ctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			results[i], empties[i], pageWarnings[i] = p.safeProcessPage(inputs[i])
			done[i] = true
			return nil
		})
	}
	_ = g.Wait()

	res := &Result{Pages: make([]PageResult, 0, len(inputs))}
	for i := range inputs {
		if !done[i] {
			continue
		}
		res.Pages = append(res.Pages, results[i])
		if len(empties[i].Regions) > 0 {
			res.Empty = append(res.Empty, empties[i])
		}
	}
	sort.SliceStable(res.Pages, func(i, j int) bool {
		return res.Pages[i].Index < res.Pages[j].Index
	})
	fallback.SortPages(res.Empty)

	// Warnings follow page order too
	order := make([]int, len(inputs))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return inputs[order[a]].Index < inputs[order[b]].Index
	})
	var warnings []Warning
	for _, i := range order {
		warnings = append(warnings, pageWarnings[i]...)
	}

	if err := ctx.Err(); err != nil {
		return res, warnings, fmt.Errorf("process pages: %w", err)
	}
	return res, warnings, nil
}

// safeProcessPage turns a panic on one page into a skipped page.
func (p *Processor) safeProcessPage(in PageInput) (res PageResult, empty fallback.EmptyPage, warnings []Warning) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("page %d: internal error: %v", in.Index, r)
			p.logger.Error("page processing panicked", "page", in.Index, "panic", r)
			res = PageResult{Page: in.Page, Status: StatusSkipped}
			empty = fallback.EmptyPage{}
			warnings = append(warnings, newWarning(in.Index, err))
		}
	}()
	return p.ProcessPage(in)
}

// ProcessPage runs one page through coordinate conversion, filtering,
// token assignment, normalization and empty-region tracking. It does not
// consult ctx or other pages and is safe for concurrent use.
func (p *Processor) ProcessPage(in PageInput) (PageResult, fallback.EmptyPage, []Warning) {
	page := in.Page
	if in.decodeErr != nil {
		p.logger.Warn("page skipped", "page", page.Index, "error", in.decodeErr)
		return PageResult{Page: page, Status: StatusSkipped}, fallback.EmptyPage{}, []Warning{newWarning(page.Index, in.decodeErr)}
	}

	var warnings []Warning

	if !page.ImageSize.IsValid() && p.options.hasImageSizeFallback {
		warnings = append(warnings, newWarningf(page.Index, "detector dimensions %gx%g invalid, using %gx%g",
			page.ImageSize.Width, page.ImageSize.Height,
			p.options.imageSizeFallback.Width, p.options.imageSizeFallback.Height))
		page.ImageSize = p.options.imageSizeFallback
	}

	res := PageResult{Page: page}
	skip := func(err error) (PageResult, fallback.EmptyPage, []Warning) {
		p.logger.Warn("page skipped", "page", page.Index, "error", err)
		res.Status = StatusSkipped
		return res, fallback.EmptyPage{}, append(warnings, newWarning(page.Index, err))
	}

	tr, err := coords.NewTransform(page)
	if err != nil {
		return skip(err)
	}

	detected := make([]model.Region, 0, len(in.Regions))
	for i, raw := range in.Regions {
		r, err := raw.Region(page.Index, i)
		if err != nil {
			p.logger.Warn("region dropped", "page", page.Index, "index", i, "error", err)
			warnings = append(warnings, newWarning(page.Index, err))
			res.Stats.DroppedRegions++
			continue
		}
		detected = append(detected, r)
	}
	res.Stats.Regions = len(detected)

	tokens := make([]model.Token, 0, len(in.Tokens))
	for i, raw := range in.Tokens {
		t, err := raw.Token(page.Index, i)
		if err != nil {
			p.logger.Warn("token dropped", "page", page.Index, "index", i, "error", err)
			warnings = append(warnings, newWarning(page.Index, err))
			res.Stats.DroppedTokens++
			continue
		}
		tokens = append(tokens, t)
	}
	res.Stats.Tokens = len(tokens)

	classified, err := regions.Filter(page, tr.Regions(detected), p.options.filter)
	if err != nil {
		return skip(err)
	}

	a := assign.Assign(classified.Text, tokens, p.options.assign)
	res.Stats.Assigned = a.Assigned()
	res.Stats.Unassigned = a.Dropped()

	text := classified.Text
	for i := range text {
		text[i].Text = p.normalizer.Normalize(a.Text(i))
	}

	res.Regions = regions.Sort(text, p.options.order, p.options.lineTolerance)
	res.Tables = regions.Sort(classified.Table, p.options.order, p.options.lineTolerance)
	res.Math = regions.Sort(classified.Math, p.options.order, p.options.lineTolerance)

	empty := fallback.Track(page, res.Regions)
	res.Stats.Empty = len(empty.Regions)
	if p.options.pruneNested {
		empty.Regions = fallback.PruneNested(empty.Regions)
	}

	if len(warnings) > 0 {
		res.Status = StatusPartial
	}

	p.logger.Debug("page processed",
		"page", page.Index,
		"regions", len(res.Regions),
		"tokens", len(tokens),
		"assigned", res.Stats.Assigned,
		"empty", res.Stats.Empty,
	)
	return res, empty, warnings
}
