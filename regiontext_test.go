package regiontext

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/tsawler/regiontext/assign"
	"github.com/tsawler/regiontext/config"
	"github.com/tsawler/regiontext/fallback"
	"github.com/tsawler/regiontext/model"
	"github.com/tsawler/regiontext/regions"
)

func quietProcessor(cfg *config.Config) *Processor {
	return New(cfg).Logger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func input(index int, img, pdf float64, regs []model.RawRegion, toks []model.RawToken) PageInput {
	return PageInput{
		Page: model.Page{
			Index:     index,
			ImageSize: model.Size{Width: img, Height: img},
			PDFSize:   model.Size{Width: pdf, Height: pdf},
		},
		Regions: regs,
		Tokens:  toks,
	}
}

func raw(order int, x0, y0, x1, y1 float64, label string, score float64) model.RawRegion {
	return model.NewRawRegion(order, model.NewRect(x0, y0, x1, y1), label, score)
}

func word(x0, y0, x1, y1 float64, text string) model.RawToken {
	return model.NewRawToken(model.NewRect(x0, y0, x1, y1), text)
}

func process(t *testing.T, proc *Processor, inputs ...PageInput) (*Result, []Warning) {
	t.Helper()
	res, warnings, err := proc.Process(context.Background(), inputs)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	return res, warnings
}

// ============================================================================
// Pipeline Tests
// ============================================================================

func TestProcessSingleRegion(t *testing.T) {
	in := input(0, 200, 400,
		[]model.RawRegion{raw(0, 0, 0, 100, 100, "text", 0.9)},
		[]model.RawToken{word(10, 10, 30, 30, "Hello")},
	)

	res, warnings := process(t, quietProcessor(nil), in)
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", FormatWarnings(warnings))
	}
	if len(res.Pages) != 1 {
		t.Fatalf("len(Pages) = %d, want 1", len(res.Pages))
	}

	page := res.Pages[0]
	if page.Status != StatusOK {
		t.Errorf("Status = %v, want ok", page.Status)
	}
	if len(page.Regions) != 1 {
		t.Fatalf("len(Regions) = %d, want 1", len(page.Regions))
	}
	r := page.Regions[0]
	if r.Text != "Hello" {
		t.Errorf("Text = %q, want %q", r.Text, "Hello")
	}
	if r.PDFBox != model.NewRect(0, 0, 200, 200) {
		t.Errorf("PDFBox = %v, want [0 0 200 200]", r.PDFBox)
	}
	if len(res.Empty) != 0 || res.EmptyCount() != 0 {
		t.Errorf("Empty = %+v, want none", res.Empty)
	}
	if page.Stats.Assigned != 1 || page.Stats.Unassigned != 0 {
		t.Errorf("Stats = %+v", page.Stats)
	}
}

func TestProcessNestedRegionWins(t *testing.T) {
	// identity scale; the outer region comes first in detection order
	in := input(0, 100, 100,
		[]model.RawRegion{
			raw(0, 0, 0, 20, 20, "paragraph", 0.95),
			raw(1, 0, 0, 10, 10, "text", 0.7),
		},
		[]model.RawToken{word(2, 2, 8, 8, "inner")},
	)

	res, _ := process(t, quietProcessor(nil), in)
	regs := res.Pages[0].Regions
	if regs[0].Text != "" || regs[1].Text != "inner" {
		t.Errorf("texts = %q, %q; want nested region to win", regs[0].Text, regs[1].Text)
	}
	if len(res.Empty) != 1 || res.Empty[0].Regions[0].Order != 0 {
		t.Errorf("Empty = %+v, want the outer region", res.Empty)
	}
}

func TestProcessNormalizesText(t *testing.T) {
	in := input(0, 100, 100,
		[]model.RawRegion{raw(0, 0, 0, 100, 100, "text", 0.9)},
		[]model.RawToken{
			word(1, 1, 5, 5, "An"),
			word(6, 1, 10, 5, "exam-"),
			word(11, 1, 15, 5, "ple"),
			word(16, 1, 20, 5, "“quoted”"),
			word(21, 1, 25, 5, "."),
		},
	)

	res, _ := process(t, quietProcessor(nil), in)
	if got, want := res.Pages[0].Regions[0].Text, `An example "quoted".`; got != want {
		t.Errorf("Text = %q, want %q", got, want)
	}
}

func TestProcessBuckets(t *testing.T) {
	in := input(0, 100, 100,
		[]model.RawRegion{
			raw(0, 0, 0, 50, 10, "doc_title", 0.9),
			raw(1, 0, 20, 50, 40, "table", 0.9),
			raw(2, 0, 50, 50, 60, "formula", 0.9),
			raw(3, 0, 70, 50, 80, "seal", 0.99),
			raw(4, 0, 90, 50, 95, "text", 0.3),
			raw(5, 60, 0, 90, 10, "unknown_label", 0.9),
		},
		[]model.RawToken{
			word(1, 1, 5, 5, "Title"),
			word(1, 21, 5, 25, "cell"),
		},
	)

	res, _ := process(t, quietProcessor(nil), in)
	page := res.Pages[0]
	if len(page.Regions) != 1 || page.Regions[0].Text != "Title" {
		t.Errorf("Regions = %+v", page.Regions)
	}
	if len(page.Tables) != 1 || page.Tables[0].Text != "" {
		t.Errorf("Tables = %+v, want one table without text", page.Tables)
	}
	if len(page.Math) != 1 || page.Math[0].Order != 2 {
		t.Errorf("Math = %+v", page.Math)
	}
	// the token inside the table is not assigned to any text region
	if page.Stats.Unassigned != 1 {
		t.Errorf("Unassigned = %d, want 1", page.Stats.Unassigned)
	}
}

// ============================================================================
// Failure isolation Tests
// ============================================================================

func TestProcessSkipsBadDimensions(t *testing.T) {
	good := input(1, 200, 400,
		[]model.RawRegion{raw(0, 0, 0, 100, 100, "text", 0.9)},
		[]model.RawToken{word(10, 10, 30, 30, "Hello")},
	)
	bad := input(0, 0, 400, good.Regions, good.Tokens)

	res, warnings := process(t, quietProcessor(nil), good, bad)

	if len(res.Pages) != 2 {
		t.Fatalf("len(Pages) = %d, want 2", len(res.Pages))
	}
	if res.Pages[0].Index != 0 || res.Pages[0].Status != StatusSkipped {
		t.Errorf("page 0 = %+v, want skipped", res.Pages[0])
	}
	if res.Pages[1].Status != StatusOK || res.Pages[1].Regions[0].Text != "Hello" {
		t.Errorf("page 1 = %+v, want unaffected", res.Pages[1])
	}
	if len(warnings) != 1 || !errors.Is(warnings[0], model.ErrConfiguration) {
		t.Errorf("warnings = %v, want one configuration warning", warnings)
	}
}

func TestProcessImageSizeFallback(t *testing.T) {
	cfg := config.Default()
	cfg.ImageSizeFallback = []float64{200, 200}

	in := input(0, 0, 400,
		[]model.RawRegion{raw(0, 0, 0, 100, 100, "text", 0.9)},
		[]model.RawToken{word(10, 10, 30, 30, "Hello")},
	)

	res, warnings := process(t, quietProcessor(cfg), in)
	page := res.Pages[0]
	if page.Status != StatusPartial {
		t.Errorf("Status = %v, want partial", page.Status)
	}
	if page.ImageSize != (model.Size{Width: 200, Height: 200}) {
		t.Errorf("ImageSize = %+v, want fallback", page.ImageSize)
	}
	if page.Regions[0].Text != "Hello" {
		t.Errorf("Text = %q", page.Regions[0].Text)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0].Message, "using 200x200") {
		t.Errorf("warnings = %v", warnings)
	}
}

func TestProcessDropsMalformedRecords(t *testing.T) {
	label := "text"
	in := input(3, 100, 100,
		[]model.RawRegion{
			raw(0, 0, 0, 100, 100, "text", 0.9),
			{Box: []float64{0, 0, 10, 10}, Label: &label},
		},
		[]model.RawToken{
			word(10, 10, 30, 30, "kept"),
			{Box: []float64{1, 1, 2, 2}},
		},
	)

	res, warnings := process(t, quietProcessor(nil), in)
	page := res.Pages[0]
	if page.Status != StatusPartial {
		t.Errorf("Status = %v, want partial", page.Status)
	}
	if page.Stats.DroppedRegions != 1 || page.Stats.DroppedTokens != 1 {
		t.Errorf("Stats = %+v", page.Stats)
	}
	if page.Regions[0].Text != "kept" {
		t.Errorf("Text = %q, want kept", page.Regions[0].Text)
	}
	if len(warnings) != 2 {
		t.Fatalf("len(warnings) = %d, want 2", len(warnings))
	}
	for _, w := range warnings {
		var derr *model.DataIntegrityError
		if !errors.As(w, &derr) || derr.Page != 3 {
			t.Errorf("warning %v, want data integrity error on page 3", w)
		}
	}
}

func TestProcessZeroRegions(t *testing.T) {
	in := input(0, 100, 100, nil, []model.RawToken{word(1, 1, 2, 2, "orphan")})
	res, warnings := process(t, quietProcessor(nil), in)
	if len(warnings) != 0 || res.Pages[0].Status != StatusOK {
		t.Errorf("page = %+v, warnings = %v", res.Pages[0], warnings)
	}
	if res.Pages[0].Stats.Unassigned != 1 {
		t.Errorf("Unassigned = %d, want 1", res.Pages[0].Stats.Unassigned)
	}
}

// ============================================================================
// Concurrency and ordering Tests
// ============================================================================

func TestProcessPageOrder(t *testing.T) {
	var inputs []PageInput
	for _, idx := range []int{4, 2, 0, 3, 1} {
		inputs = append(inputs, input(idx, 100, 100,
			[]model.RawRegion{raw(0, 0, 0, 50, 50, "text", 0.9), raw(1, 60, 60, 90, 90, "text", 0.9)},
			[]model.RawToken{word(1, 1, 5, 5, "w")},
		))
	}

	res, _ := process(t, quietProcessor(nil).Workers(3), inputs...)
	for i, p := range res.Pages {
		if p.Index != i {
			t.Errorf("Pages[%d].Index = %d", i, p.Index)
		}
	}
	for i, ep := range res.Empty {
		if ep.Index != i || len(ep.Regions) != 1 || ep.Regions[0].Order != 1 {
			t.Errorf("Empty[%d] = %+v", i, ep)
		}
	}
}

func TestProcessEmptyCompleteness(t *testing.T) {
	in := input(0, 100, 100,
		[]model.RawRegion{
			raw(0, 0, 0, 40, 40, "text", 0.9),
			raw(1, 50, 0, 90, 40, "text", 0.9),
			raw(2, 0, 50, 40, 90, "text", 0.9),
		},
		[]model.RawToken{
			word(1, 1, 5, 5, "a"),
			word(51, 51, 55, 55, "\u200b"), // outside any region
			word(1, 51, 5, 55, "\u00ad"),   // normalizes to nothing
		},
	)

	res, _ := process(t, quietProcessor(nil), in)
	emptyOrders := map[int]bool{}
	for _, r := range res.Empty[0].Regions {
		emptyOrders[r.Order] = true
	}
	for _, r := range res.Pages[0].Regions {
		if (r.Text == "") != emptyOrders[r.Order] {
			t.Errorf("region %d text %q, in empty set = %v", r.Order, r.Text, emptyOrders[r.Order])
		}
	}
	if len(emptyOrders) != 2 {
		t.Errorf("empty regions = %v, want 1 and 2", emptyOrders)
	}
}

func TestProcessGeometricOrder(t *testing.T) {
	in := input(0, 100, 100,
		[]model.RawRegion{
			raw(0, 0, 60, 90, 80, "text", 0.9),
			raw(1, 0, 0, 90, 20, "title", 0.9),
		},
		nil,
	)

	detection, _ := process(t, quietProcessor(nil), in)
	geometric, _ := process(t, quietProcessor(nil).Order(regions.OrderGeometric), in)

	if detection.Pages[0].Regions[0].Order != 0 {
		t.Errorf("detection order first = %d, want 0", detection.Pages[0].Regions[0].Order)
	}
	if geometric.Pages[0].Regions[0].Order != 1 {
		t.Errorf("geometric order first = %d, want 1", geometric.Pages[0].Regions[0].Order)
	}
}

func TestProcessPruneNested(t *testing.T) {
	in := input(0, 100, 100,
		[]model.RawRegion{
			raw(0, 0, 0, 80, 80, "text", 0.9),
			raw(1, 10, 10, 20, 20, "text", 0.9),
		},
		nil,
	)

	res, _ := process(t, quietProcessor(nil).PruneNested(true), in)
	if got := res.Empty[0].Regions; len(got) != 1 || got[0].Order != 1 {
		t.Errorf("Empty = %+v, want only the inner region", got)
	}
	if res.Pages[0].Stats.Empty != 2 {
		t.Errorf("Stats.Empty = %d, want 2", res.Pages[0].Stats.Empty)
	}
}

func TestProcessStrategiesAgree(t *testing.T) {
	var regs []model.RawRegion
	var toks []model.RawToken
	for i := 0; i < 60; i++ {
		x := float64(i%10) * 10
		y := float64(i/10) * 10
		regs = append(regs, raw(i, x, y, x+12, y+12, "text", 0.9))
		toks = append(toks, word(x+5, y+5, x+11, y+9, "t"))
	}
	in := input(0, 100, 100, regs, toks)

	linear, _ := process(t, quietProcessor(nil).Index(assign.Linear), in)
	tree, _ := process(t, quietProcessor(nil).Index(assign.RTree), in)
	for i := range linear.Pages[0].Regions {
		if linear.Pages[0].Regions[i].Text != tree.Pages[0].Regions[i].Text {
			t.Fatalf("region %d differs between strategies", i)
		}
	}
}

func TestDecodePages(t *testing.T) {
	data := []byte(`[
		{"page_idx": 0, "image_size": [200, 200], "pdf_size": [400, 400],
		 "boxes": [{"order": 0, "box_pixel": [0, 0, 100, 100], "label": "text", "score": 0.9}],
		 "tokens": [{"box_point": [10, 10, 30, 30], "text": "Hello"}]},
		{"page_idx": 1, "image_size": null, "pdf_size": [400, 400]},
		{"page_idx": 7, "image_size": [200], "pdf_size": [400, 400]},
		"not a page"
	]`)

	inputs, err := DecodePages(data)
	if err != nil {
		t.Fatalf("DecodePages() error = %v", err)
	}
	if len(inputs) != 4 {
		t.Fatalf("len(inputs) = %d, want 4", len(inputs))
	}

	res, warnings := process(t, quietProcessor(nil), inputs...)
	if res.Pages[0].Status != StatusOK || res.Pages[0].Regions[0].Text != "Hello" {
		t.Errorf("page 0 = %+v, want ok with Hello", res.Pages[0])
	}

	wantIndex := []int{0, 1, 3, 7}
	for i, p := range res.Pages {
		if p.Index != wantIndex[i] {
			t.Errorf("Pages[%d].Index = %d, want %d", i, p.Index, wantIndex[i])
		}
		if i > 0 && p.Status != StatusSkipped {
			t.Errorf("page %d status = %v, want skipped", p.Index, p.Status)
		}
	}

	if len(warnings) != 3 {
		t.Fatalf("len(warnings) = %d, want 3: %v", len(warnings), warnings)
	}
	if !errors.Is(warnings[0], model.ErrConfiguration) {
		t.Errorf("null size warning = %v, want ErrConfiguration", warnings[0])
	}
	for _, w := range warnings[1:] {
		if !errors.Is(w, model.ErrDataIntegrity) {
			t.Errorf("malformed page warning = %v, want ErrDataIntegrity", w)
		}
	}

	if _, err := DecodePages([]byte(`{"page_idx": 0}`)); err == nil {
		t.Error("expected error when input is not an array")
	}
}

func TestProcessCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, _, err := quietProcessor(nil).Process(ctx, []PageInput{input(0, 1, 1, nil, nil)})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Process() error = %v, want context.Canceled", err)
	}
	if res == nil || len(res.Pages) != 0 {
		t.Errorf("Process() result = %+v, want empty result", res)
	}
}

// cancelOnPage cancels the run once the first page reports completion.
type cancelOnPage struct {
	cancel context.CancelFunc
}

func (h cancelOnPage) Enabled(context.Context, slog.Level) bool { return true }

func (h cancelOnPage) Handle(_ context.Context, r slog.Record) error {
	if r.Message == "page processed" {
		h.cancel()
	}
	return nil
}

func (h cancelOnPage) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h cancelOnPage) WithGroup(string) slog.Handler      { return h }

func TestProcessCancelledKeepsFinishedPages(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	proc := New(nil).Workers(1).Logger(slog.New(cancelOnPage{cancel: cancel}))
	inputs := []PageInput{
		input(0, 200, 400, []model.RawRegion{raw(0, 0, 0, 100, 100, "text", 0.9)}, []model.RawToken{word(10, 10, 30, 30, "Hello")}),
		input(1, 200, 400, nil, nil),
		input(2, 200, 400, nil, nil),
	}

	res, _, err := proc.Process(ctx, inputs)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Process() error = %v, want context.Canceled", err)
	}
	if res == nil || len(res.Pages) == 0 {
		t.Fatal("expected the finished page in the result")
	}
	if len(res.Pages) == len(inputs) {
		t.Errorf("len(Pages) = %d, want fewer than %d after cancellation", len(res.Pages), len(inputs))
	}
	if res.Pages[0].Index != 0 || res.Pages[0].Regions[0].Text != "Hello" {
		t.Errorf("Pages[0] = %+v, want page 0 with Hello", res.Pages[0])
	}
}

// ============================================================================
// Processor configuration Tests
// ============================================================================

func TestInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Threshold = 2

	proc := New(cfg)
	if !errors.Is(proc.Err(), model.ErrConfiguration) {
		t.Errorf("Err() = %v", proc.Err())
	}
	_, _, err := proc.Workers(2).Process(context.Background(), nil)
	if !errors.Is(err, model.ErrConfiguration) {
		t.Errorf("Process() error = %v, want ErrConfiguration", err)
	}
}

func TestChainImmutability(t *testing.T) {
	base := New(nil)
	geo := base.Order(regions.OrderGeometric).Workers(7)

	if base.options.order != regions.OrderDetection || base.options.workers != 0 {
		t.Error("base processor should be unchanged")
	}
	if geo.options.order != regions.OrderGeometric || geo.options.workers != 7 {
		t.Error("derived processor should carry its options")
	}

	geo.options.filter.Unwanted[0] = "changed"
	if base.options.filter.Unwanted[0] == "changed" {
		t.Error("options share the unwanted label slice")
	}
}

func TestMust(t *testing.T) {
	if got := Must(42, nil); got != 42 {
		t.Errorf("Must() = %d, want 42", got)
	}

	defer func() {
		if recover() == nil {
			t.Error("MustResult should panic on error")
		}
	}()
	MustResult(New(&config.Config{}).Process(context.Background(), nil))
}

// ============================================================================
// Fallback merge and output Tests
// ============================================================================

func TestMergeFallback(t *testing.T) {
	in := input(0, 100, 100,
		[]model.RawRegion{
			raw(0, 0, 0, 40, 40, "text", 0.9),
			raw(1, 50, 0, 90, 40, "text", 0.9),
			raw(2, 0, 50, 40, 90, "text", 0.9),
		},
		[]model.RawToken{word(1, 1, 5, 5, "native")},
	)
	res, _ := process(t, quietProcessor(nil), in)
	if res.EmptyCount() != 2 {
		t.Fatalf("EmptyCount() = %d, want 2", res.EmptyCount())
	}

	n := MergeFallback(res, []fallback.Filled{
		{Page: 0, Order: 1, Label: "text", Text: "recognized"},
		{Page: 0, Order: 0, Text: "ignored, region has text"},
		{Page: 5, Order: 1, Text: "no such page"},
	})
	if n != 1 {
		t.Errorf("MergeFallback() = %d, want 1", n)
	}

	regs := res.Pages[0].Regions
	if regs[0].Text != "native" || regs[1].Text != "recognized" {
		t.Errorf("texts = %q, %q", regs[0].Text, regs[1].Text)
	}
	if res.EmptyCount() != 1 || res.Empty[0].Regions[0].Order != 2 {
		t.Errorf("Empty = %+v, want only region 2", res.Empty)
	}
	if res.Pages[0].Stats.Empty != 1 {
		t.Errorf("Stats.Empty = %d, want 1", res.Pages[0].Stats.Empty)
	}

	MergeFallback(res, []fallback.Filled{{Page: 0, Order: 2, Text: "last"}})
	if len(res.Empty) != 0 {
		t.Errorf("Empty = %+v, want none", res.Empty)
	}
}

func TestFormatWarnings(t *testing.T) {
	if FormatWarnings(nil) != "" {
		t.Error("FormatWarnings(nil) should be empty")
	}
	got := FormatWarnings([]Warning{
		newWarningf(1, "first"),
		newWarning(2, &model.DataIntegrityError{Page: 2, Kind: "token", Index: 0, Field: "text"}),
	})
	want := "- page 1: first\n- page 2: token 0: missing or malformed text"
	if got != want {
		t.Errorf("FormatWarnings() = %q, want %q", got, want)
	}
}

func TestPageResultJSON(t *testing.T) {
	in := input(0, 200, 400,
		[]model.RawRegion{raw(0, 0, 0, 100, 100, "text", 0.9)},
		[]model.RawToken{word(10, 10, 30, 30, "Hello")},
	)
	res, _ := process(t, quietProcessor(nil), in)

	data, err := json.Marshal(res.Pages[0])
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	for _, want := range []string{`"page_idx":0`, `"image_size":[200,200]`, `"status":"ok"`, `"pdf_bbox":[0,0,200,200]`, `"text":"Hello"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("JSON %s missing %s", data, want)
		}
	}

	var back PageResult
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if back.Status != StatusOK || back.Regions[0].Text != "Hello" {
		t.Errorf("round trip = %+v", back)
	}
}
