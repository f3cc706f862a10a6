// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package text

import (
	"fmt"
	"strings"

	"reasonable-redactor/internal/formatters"

	"github.com/fatih/color"
)

// Formatter implements the console output of a run
type Formatter struct {
	colors map[string]*color.Color
}

// NewFormatter creates a new text formatter
func NewFormatter() *Formatter {
	return &Formatter{
		colors: map[string]*color.Color{
			"green":  color.New(color.FgGreen),
			"yellow": color.New(color.FgYellow),
			"red":    color.New(color.FgRed),
			"cyan":   color.New(color.FgCyan),
			"white":  color.New(color.FgWhite, color.Bold),
		},
	}
}

func (f *Formatter) Name() string {
	return "text"
}

func (f *Formatter) Description() string {
	return "Human-readable text output with colors"
}

func (f *Formatter) FileExtension() string {
	return ".txt"
}

// Format renders the whole run: header, one line per file, summary
func (f *Formatter) Format(report *formatters.Report, options formatters.FormatterOptions) (string, error) {
	if options.NoColor {
		color.NoColor = true
	}

	var sb strings.Builder
	sb.WriteString(f.Header(report.Tool))
	for _, entry := range report.Files {
		sb.WriteString(f.Entry(entry))
	}
	sb.WriteString(f.Summary(report))
	return sb.String(), nil
}

// Header returns the banner printed before the first file
func (f *Formatter) Header(tool string) string {
	return "\n" + f.colors["white"].Sprintf("== %s processing ==", tool) + "\n"
}

// Entry returns the OK or FAIL line of one file
func (f *Formatter) Entry(entry formatters.FileEntry) string {
	if entry.Status != formatters.StatusOK {
		return fmt.Sprintf("%s %s | %s\n", f.colors["red"].Sprint("FAIL:"), entry.Input, entry.Error)
	}
	line := fmt.Sprintf("%s %s -> %s | redactions=%d pages=%d\n",
		f.colors["green"].Sprint("OK:"), entry.Input, entry.Output, entry.Hits, entry.Pages)
	for _, w := range entry.Warnings {
		line += "  " + f.Warning("%s", w)
	}
	return line
}

// Summary returns the totals printed after the last file
func (f *Formatter) Summary(report *formatters.Report) string {
	var sb strings.Builder
	sb.WriteString("\n" + f.colors["white"].Sprint("== Done ==") + "\n")

	failed := fmt.Sprintf("%d failed", report.Failed)
	if report.Failed > 0 {
		failed = f.colors["red"].Sprint(failed)
	}
	fmt.Fprintf(&sb, "Processed: %s, %s\n", f.colors["green"].Sprintf("%d ok", report.OK), failed)
	fmt.Fprintf(&sb, "Total redactions: %d across %d page(s)\n", report.Hits, report.Pages)
	fmt.Fprintf(&sb, "Output folder: %s\n", f.colors["cyan"].Sprint(report.OutputDir))
	return sb.String()
}

// Warning formats a non-fatal problem such as an unreadable settings file
func (f *Formatter) Warning(format string, args ...interface{}) string {
	return f.colors["yellow"].Sprintf("Warning: "+format, args...) + "\n"
}

func init() {
	formatters.Register(NewFormatter())
}
