// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/predict-service/internal/features"
	"github.com/jonathan/predict-service/internal/inference"
	"github.com/jonathan/predict-service/internal/model"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// writeList appends up to maxItemsToShow items under a heading.
func writeList(sb *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(fmt.Sprintf("%s (%d):\n", heading, len(items)))
	count := min(len(items), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s\n", items[i]))
	}
	if len(items) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-maxItemsToShow))
	}
}

// PrintBundle outputs a summary of a loaded model bundle.
func (p *Printer) PrintBundle(b *model.Bundle) {
	if b == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Name:      %s\n", b.Name))
	if b.Version != "" {
		sb.WriteString(fmt.Sprintf("Version:   %s\n", b.Version))
	}
	sb.WriteString(fmt.Sprintf("Model:     %s\n", b.Model.Type))
	if clf := b.Classifier(); clf != nil {
		sb.WriteString(fmt.Sprintf("Inputs:    %d columns\n", clf.Width()))
	}
	if b.Model.Type == model.TypeTreeEnsemble {
		sb.WriteString(fmt.Sprintf("Trees:     %d\n", len(b.Model.Trees)))
	}
	if threshold, ok := b.DecisionThreshold(); ok {
		sb.WriteString(fmt.Sprintf("Threshold: %.4f\n", threshold))
	}

	if schema := b.Schema(); schema != nil {
		sb.WriteString("\n")
		writeList(&sb, "Features", schema.Names())
	}
	if vec := b.DictVectorizer(); vec != nil {
		sb.WriteString("\n")
		writeList(&sb, "Vectorizer columns", vec.FeatureNames())
	}

	p.printBox("MODEL BUNDLE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintChecked outputs the request fields the gate accepted and ignored.
func (p *Printer) PrintChecked(checked *features.Checked) {
	if checked == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Input row: %d values\n", len(checked.Vector)))
	if len(checked.Extras) > 0 || len(checked.Dropped) > 0 {
		sb.WriteString("\n")
	}
	writeList(&sb, "Ignored extra keys", checked.Extras)
	writeList(&sb, "Dropped labels", checked.Dropped)

	p.printBox("VALIDATED REQUEST", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintMissing outputs the schema features a request lacks.
func (p *Printer) PrintMissing(err *features.MissingFeaturesError) {
	if err == nil || len(err.Missing) == 0 {
		return
	}

	var sb strings.Builder
	writeList(&sb, "Missing features", err.Missing)
	p.printBox("REQUEST REJECTED", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintPrediction outputs the thresholded prediction.
func (p *Printer) PrintPrediction(result inference.Result) {
	verdict := "not bankrupt"
	if result.Bankrupt {
		verdict = "BANKRUPT"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Prediction:  %d (%s)\n", result.Prediction, verdict))
	sb.WriteString(fmt.Sprintf("Probability: %.4f\n", result.Probability))
	sb.WriteString(fmt.Sprintf("Threshold:   %.4f", result.Threshold))

	p.printBox("PREDICTION", sb.String())
}
