package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/tsawler/regiontext"
)

var (
	// labelStyle for muted field names
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	// valueStyle for highlighted counts
	valueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("81"))

	// okStyle for success indicators
	okStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	// warnStyle for partial pages and warnings
	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220"))

	// errStyle for skipped pages
	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	// summaryBoxStyle for the run summary with rounded border
	summaryBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("81")).
			Padding(0, 1)
)

// printSummary renders the run summary box
func printSummary(w io.Writer, res *regiontext.Result, warnings []regiontext.Warning, resultsPath, emptyPath string) {
	counts := res.StatusCounts()

	regionCount, assigned, unassigned := 0, 0, 0
	for _, p := range res.Pages {
		regionCount += len(p.Regions)
		assigned += p.Stats.Assigned
		unassigned += p.Stats.Unassigned
	}

	line1 := fmt.Sprintf("%s %s  %s %s  %s %s  %s %s",
		labelStyle.Render("Pages:"), valueStyle.Render(fmt.Sprint(len(res.Pages))),
		labelStyle.Render("ok"), okStyle.Render(fmt.Sprint(counts[regiontext.StatusOK])),
		labelStyle.Render("partial"), warnStyle.Render(fmt.Sprint(counts[regiontext.StatusPartial])),
		labelStyle.Render("skipped"), errStyle.Render(fmt.Sprint(counts[regiontext.StatusSkipped])),
	)
	line2 := fmt.Sprintf("%s %s  %s %s  %s %s",
		labelStyle.Render("Text regions:"), valueStyle.Render(fmt.Sprint(regionCount)),
		labelStyle.Render("Empty:"), warnStyle.Render(fmt.Sprint(res.EmptyCount())),
		labelStyle.Render("Warnings:"), warnStyle.Render(fmt.Sprint(len(warnings))),
	)
	line3 := fmt.Sprintf("%s %s  %s %s",
		labelStyle.Render("Words assigned:"), valueStyle.Render(fmt.Sprint(assigned)),
		labelStyle.Render("unassigned:"), labelStyle.Render(fmt.Sprint(unassigned)),
	)

	content := line1 + "\n" + line2 + "\n" + line3
	if resultsPath != "" {
		content += fmt.Sprintf("\n%s %s", labelStyle.Render("Results:"), resultsPath)
	}
	if emptyPath != "" {
		content += fmt.Sprintf("\n%s %s", labelStyle.Render("Empty:"), emptyPath)
	}

	fmt.Fprintln(w, summaryBoxStyle.Render(content))
}

// printFallbackSummary renders the OCR fallback summary box
func printFallbackSummary(w io.Writer, requested, filled, failed, remaining int) {
	status := okStyle.Render("OK")
	if failed > 0 {
		status = warnStyle.Render(fmt.Sprintf("%d failed", failed))
	}
	content := fmt.Sprintf("%s %s  %s %s  %s %s  %s",
		labelStyle.Render("Regions:"), valueStyle.Render(fmt.Sprint(requested)),
		labelStyle.Render("Filled:"), okStyle.Render(fmt.Sprint(filled)),
		labelStyle.Render("Still empty:"), warnStyle.Render(fmt.Sprint(remaining)),
		status,
	)
	fmt.Fprintln(w, summaryBoxStyle.Render(content))
}
