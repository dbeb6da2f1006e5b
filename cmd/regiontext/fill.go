package main

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tsawler/regiontext"
	"github.com/tsawler/regiontext/fallback"
	"github.com/tsawler/regiontext/ocr"
)

var (
	fillResultsPath string
	fillEmptyPath   string
	imagesDir       string
	imagePattern    string
	cropsDir        string
	ocrLanguages    []string
)

var fillCmd = &cobra.Command{
	Use:   "ocr",
	Short: "Recognize empty regions with Tesseract and merge the text back",
	Long: `Crop every region listed in the empty-coordinates file out of its page
image, recognize it with Tesseract and merge the text into the results file.
Both files are rewritten in place.

Page images are looked up in --images using --pattern, formatted with the
page index. Requires a build with the "ocr" tag.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger()

		var pages []regiontext.PageResult
		if err := readJSON(fillResultsPath, &pages); err != nil {
			return err
		}
		var empty []fallback.EmptyPage
		if err := readJSON(fillEmptyPath, &empty); err != nil {
			return err
		}

		cropper := &fallback.Cropper{MinHeight: cfg.Fallback.MinHeight, Padding: cfg.Fallback.Padding}

		var reqs []fallback.Request
		for _, ep := range empty {
			path := filepath.Join(imagesDir, fmt.Sprintf(imagePattern, ep.Index))
			raster, err := loadImage(path)
			if err != nil {
				logger.Warn("page image unavailable", "page", ep.Index, "error", err)
				continue
			}
			if cropsDir != "" {
				if err := saveCrops(cropper, raster, ep); err != nil {
					return err
				}
			}
			reqs = append(reqs, fallback.Request{Page: ep, Raster: raster})
		}

		langs := ocrLanguages
		if !cmd.Flags().Changed("lang") {
			langs = cfg.Fallback.Languages
		}
		client, err := ocr.New(
			ocr.WithLanguages(langs...),
			ocr.WithPageSegMode(ocr.PageSegMode(cfg.Fallback.PageSegMode)),
		)
		if err != nil {
			return err
		}
		defer client.Close()

		runner := &fallback.Runner{Recognizer: client, Cropper: cropper, Logger: logger}
		filled, errs := runner.Run(cmd.Context(), reqs)

		res := &regiontext.Result{Pages: pages, Empty: empty}
		requested := res.EmptyCount()
		merged := regiontext.MergeFallback(res, filled)

		if err := writeJSON(fillResultsPath, res.Pages); err != nil {
			return err
		}
		remaining := res.Empty
		if remaining == nil {
			remaining = []fallback.EmptyPage{}
		}
		if err := writeJSON(fillEmptyPath, remaining); err != nil {
			return err
		}

		printFallbackSummary(cmd.ErrOrStderr(), requested, merged, len(errs), res.EmptyCount())
		return cmd.Context().Err()
	},
}

func init() {
	fillCmd.Flags().StringVar(&fillResultsPath, "results", "", "Results JSON written by run")
	fillCmd.Flags().StringVar(&fillEmptyPath, "empty", "", "Empty coordinates JSON written by run")
	fillCmd.Flags().StringVar(&imagesDir, "images", ".", "Directory of rendered page images")
	fillCmd.Flags().StringVar(&imagePattern, "pattern", "page_%d.png", "Page image file name, formatted with the page index")
	fillCmd.Flags().StringVar(&cropsDir, "crops", "", "Also save region crops to this directory")
	fillCmd.Flags().StringSliceVar(&ocrLanguages, "lang", []string{"eng"}, "Tesseract languages (default from config)")
	_ = fillCmd.MarkFlagRequired("results")
	_ = fillCmd.MarkFlagRequired("empty")

	rootCmd.AddCommand(fillCmd)
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

func saveCrops(cropper *fallback.Cropper, raster image.Image, ep fallback.EmptyPage) error {
	if err := os.MkdirAll(cropsDir, 0o755); err != nil {
		return fmt.Errorf("create crops dir: %w", err)
	}
	for _, r := range ep.Regions {
		data, err := cropper.PNG(raster, ep.Page, r)
		if err != nil {
			continue
		}
		path := filepath.Join(cropsDir, fallback.CropName(ep.Page, r)+".png")
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write crop: %w", err)
		}
	}
	return nil
}
