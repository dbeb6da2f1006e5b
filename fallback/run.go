package fallback

import (
	"context"
	"fmt"
	"image"
	"log/slog"

	"github.com/tsawler/regiontext/model"
	"github.com/tsawler/regiontext/normalize"
)

// Recognizer turns an encoded region image into text. The ocr package's
// Client satisfies it.
type Recognizer interface {
	RecognizeImage(imageData []byte) (string, error)
}

// Request pairs a page's empty regions with a rendering of that page.
type Request struct {
	Page   EmptyPage
	Raster image.Image
}

// Filled is recognized text for one previously empty region.
type Filled struct {
	Page  int    `json:"page_idx"`
	Order int    `json:"order"`
	Label string `json:"label"`
	Text  string `json:"text"`
}

// Runner drives a Recognizer over empty regions. Recognizers are usually not
// safe for concurrent use, so regions are processed one at a time.
type Runner struct {
	Recognizer Recognizer
	Cropper    *Cropper
	Normalizer *normalize.Normalizer
	Logger     *slog.Logger
}

func (r *Runner) defaults() {
	if r.Cropper == nil {
		r.Cropper = NewCropper()
	}
	if r.Normalizer == nil {
		r.Normalizer = normalize.New()
	}
	if r.Logger == nil {
		r.Logger = slog.Default()
	}
}

// Run recognizes every region of every request. Failures are reported per
// region and do not stop the run; cancellation stops it between regions.
// Regions whose recognized text normalizes to "" are not returned.
func (r *Runner) Run(ctx context.Context, reqs []Request) ([]Filled, []error) {
	r.defaults()
	if r.Recognizer == nil {
		return nil, []error{fmt.Errorf("fallback: no recognizer configured")}
	}

	var filled []Filled
	var errs []error
	for _, req := range reqs {
		for _, region := range req.Page.Regions {
			if err := ctx.Err(); err != nil {
				return filled, append(errs, err)
			}

			text, err := r.recognize(req.Raster, req.Page.Page, region)
			if err != nil {
				r.Logger.Warn("fallback recognition failed", "page", req.Page.Index, "order", region.Order, "error", err)
				errs = append(errs, err)
				continue
			}
			if text == "" {
				continue
			}
			filled = append(filled, Filled{Page: req.Page.Index, Order: region.Order, Label: region.Label, Text: text})
		}
	}
	return filled, errs
}

func (r *Runner) recognize(raster image.Image, page model.Page, region model.Region) (string, error) {
	data, err := r.Cropper.PNG(raster, page, region)
	if err != nil {
		return "", err
	}
	text, err := r.Recognizer.RecognizeImage(data)
	if err != nil {
		return "", fmt.Errorf("page %d region %d: %w", page.Index, region.Order, err)
	}
	return r.Normalizer.Normalize(text), nil
}
