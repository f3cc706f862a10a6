// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package formatters

import (
	"path/filepath"

	"reasonable-redactor/internal/batch"
)

const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Report is the record of one batch run. Email addresses never appear in it;
// only file names and counts do.
type Report struct {
	Tool      string      `json:"tool" yaml:"tool"`
	Version   string      `json:"version" yaml:"version"`
	Stamp     string      `json:"stamp" yaml:"stamp"`
	InputDir  string      `json:"input_dir" yaml:"input_dir"`
	OutputDir string      `json:"output_dir" yaml:"output_dir"`
	Files     []FileEntry `json:"files" yaml:"files"`
	OK        int         `json:"ok" yaml:"ok"`
	Failed    int         `json:"failed" yaml:"failed"`
	Hits      int         `json:"redactions" yaml:"redactions"`
	Pages     int         `json:"pages" yaml:"pages"`
}

// FileEntry is the outcome of one input file
type FileEntry struct {
	Input     string      `json:"input" yaml:"input"`
	Output    string      `json:"output,omitempty" yaml:"output,omitempty"`
	Status    string      `json:"status" yaml:"status"`
	Hits      int         `json:"redactions" yaml:"redactions"`
	Pages     int         `json:"pages" yaml:"pages"`
	PageCount int         `json:"page_count,omitempty" yaml:"page_count,omitempty"`
	PageHits  []PageEntry `json:"page_hits,omitempty" yaml:"page_hits,omitempty"`
	Warnings  []string    `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	ErrorType string      `json:"error_type,omitempty" yaml:"error_type,omitempty"`
	Error     string      `json:"error,omitempty" yaml:"error,omitempty"`
}

// PageEntry is the redaction count of one flattened page
type PageEntry struct {
	Page     int `json:"page" yaml:"page"`
	BccLines int `json:"bcc_lines" yaml:"bcc_lines"`
	Emails   int `json:"emails" yaml:"emails"`
}

// NewReport creates an empty report for a run
func NewReport(tool, version, inputDir, outputDir string) *Report {
	return &Report{
		Tool:      tool,
		Version:   version,
		InputDir:  inputDir,
		OutputDir: outputDir,
		Files:     []FileEntry{},
	}
}

// EntryFor converts a batch outcome into a report entry
func EntryFor(o batch.Outcome) FileEntry {
	entry := FileEntry{Input: filepath.Base(o.InputPath)}
	if !o.OK() {
		entry.Status = StatusFailed
		if o.Err != nil {
			entry.ErrorType = o.Err.Type.String()
			entry.Error = o.Err.Error()
		}
		return entry
	}

	res := o.Result
	entry.Status = StatusOK
	entry.Output = filepath.Base(res.RedactedFilePath)
	entry.Hits = res.Hits
	entry.Pages = res.Pages
	entry.PageCount = res.PageCount
	for _, ph := range res.PageHits {
		entry.PageHits = append(entry.PageHits, PageEntry{Page: ph.Page, BccLines: ph.BccRects, Emails: ph.Emails})
	}
	entry.Warnings = append(entry.Warnings, res.Warnings...)
	return entry
}

// Add records an outcome and updates the totals
func (r *Report) Add(o batch.Outcome) FileEntry {
	entry := EntryFor(o)
	r.Files = append(r.Files, entry)
	if entry.Status == StatusOK {
		r.OK++
		r.Hits += entry.Hits
		r.Pages += entry.Pages
	} else {
		r.Failed++
	}
	return entry
}
