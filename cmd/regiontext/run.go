package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tsawler/regiontext"
	"github.com/tsawler/regiontext/assign"
	"github.com/tsawler/regiontext/fallback"
	"github.com/tsawler/regiontext/regions"
	"github.com/tsawler/regiontext/textlayer"
)

var (
	detectionsPath string
	tokensPath     string
	pdfPath        string
	hocrPath       string
	textLayerPath  string
	outDir         string
	outName        string
	workers        int
	orderFlag      string
	indexFlag      string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Assign text-layer words to detected regions",
	Long: `Read detected regions (JSON array of pages with "boxes") and a text layer
from --text-layer (or explicitly --tokens, --pdf, --hocr), then write <name>_text_results.json and
<name>_text_empty_coordinates.json to the output directory.

Tokens embedded in the detections file are used when no text layer source
is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger()

		inputs, err := readDetections(detectionsPath)
		if err != nil {
			return err
		}

		layer, err := readTextLayer()
		if err != nil {
			return err
		}
		if layer != nil {
			if !textlayer.HasText(layer) {
				logger.Warn("document has no text layer, every region will be empty")
			}
			mergeTextLayer(inputs, layer)
		}

		proc := regiontext.New(cfg).Logger(logger)
		if cmd.Flags().Changed("workers") {
			proc = proc.Workers(workers)
		}
		if orderFlag != "" {
			policy, err := regions.ParseOrderPolicy(orderFlag)
			if err != nil {
				return err
			}
			proc = proc.Order(policy)
		}
		if indexFlag != "" {
			strategy, err := assign.ParseStrategy(indexFlag)
			if err != nil {
				return err
			}
			proc = proc.Index(strategy)
		}

		res, warnings, err := proc.Process(cmd.Context(), inputs)
		if err != nil {
			return err
		}

		name := outName
		if name == "" {
			name = strings.TrimSuffix(filepath.Base(detectionsPath), filepath.Ext(detectionsPath))
		}
		resultsPath, emptyPath, err := writeResults(outDir, name, res)
		if err != nil {
			return err
		}

		printSummary(cmd.ErrOrStderr(), res, warnings, resultsPath, emptyPath)
		if verbose && len(warnings) > 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), regiontext.FormatWarnings(warnings))
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringVarP(&detectionsPath, "detections", "d", "", "Detected regions JSON")
	runCmd.Flags().StringVar(&tokensPath, "tokens", "", "Text layer tokens JSON")
	runCmd.Flags().StringVar(&pdfPath, "pdf", "", "Read the text layer from this PDF")
	runCmd.Flags().StringVar(&hocrPath, "hocr", "", "Read the text layer from this hOCR file")
	runCmd.Flags().StringVarP(&outDir, "out", "o", ".", "Output directory")
	runCmd.Flags().StringVar(&outName, "name", "", "Output file stem (default: detections file name)")
	runCmd.Flags().IntVarP(&workers, "workers", "w", 0, "Pages processed concurrently (0 = all cores)")
	runCmd.Flags().StringVar(&orderFlag, "order", "", "Region order: detection or geometric (default from config)")
	runCmd.Flags().StringVar(&indexFlag, "index", "", "Candidate lookup: auto, linear or rtree (default from config)")
	runCmd.Flags().StringVarP(&textLayerPath, "text-layer", "t", "", "Text layer file, format detected from content (PDF, hOCR or JSON)")
	runCmd.MarkFlagsMutuallyExclusive("tokens", "pdf", "hocr", "text-layer")
	_ = runCmd.MarkFlagRequired("detections")

	rootCmd.AddCommand(runCmd)
}

func readDetections(path string) ([]regiontext.PageInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read detections %s: %w", path, err)
	}
	inputs, err := regiontext.DecodePages(data)
	if err != nil {
		return nil, fmt.Errorf("parse detections %s: %w", path, err)
	}
	if pdfPath != "" {
		for i := range inputs {
			if inputs[i].Input == "" {
				inputs[i].Input = pdfPath
			}
		}
	}
	return inputs, nil
}

func readTextLayer() ([]textlayer.Page, error) {
	switch {
	case pdfPath != "":
		return textlayer.ReadPDF(pdfPath)
	case hocrPath != "":
		f, err := os.Open(hocrPath)
		if err != nil {
			return nil, fmt.Errorf("open hocr %s: %w", hocrPath, err)
		}
		defer f.Close()
		return textlayer.ReadHOCR(f)
	case textLayerPath != "":
		return textlayer.Read(textLayerPath)
	case tokensPath != "":
		f, err := os.Open(tokensPath)
		if err != nil {
			return nil, fmt.Errorf("open tokens %s: %w", tokensPath, err)
		}
		defer f.Close()
		return textlayer.ReadJSON(f)
	}
	return nil, nil
}

// mergeTextLayer fills each page's tokens, and its document size when
// missing, from the text layer page with the same index.
func mergeTextLayer(inputs []regiontext.PageInput, layer []textlayer.Page) {
	byIndex := textlayer.ByIndex(layer)
	for i := range inputs {
		tl, ok := byIndex[inputs[i].Index]
		if !ok {
			continue
		}
		inputs[i].Tokens = tl.Tokens
		if !inputs[i].PDFSize.IsValid() {
			inputs[i].PDFSize = tl.Size
		}
	}
}

func writeResults(dir, name string, res *regiontext.Result) (string, string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("create output dir: %w", err)
	}
	resultsPath := filepath.Join(dir, name+"_text_results.json")
	emptyPath := filepath.Join(dir, name+"_text_empty_coordinates.json")

	if err := writeJSON(resultsPath, res.Pages); err != nil {
		return "", "", err
	}
	empty := res.Empty
	if empty == nil {
		empty = []fallback.EmptyPage{}
	}
	if err := writeJSON(emptyPath, empty); err != nil {
		return "", "", err
	}
	return resultsPath, emptyPath, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
