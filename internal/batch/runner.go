// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package batch redacts every PDF of an input folder into an output folder.
package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"reasonable-redactor/internal/observability"
	"reasonable-redactor/internal/redactors"
)

// ErrNoInput is returned by Run when the input folder holds no PDFs
var ErrNoInput = errors.New("no PDF files found")

// Outcome is the result of one input file
type Outcome struct {
	InputPath  string
	OutputPath string
	Result     *redactors.RedactionResult
	Err        *redactors.RedactionError
}

// OK reports whether the document was redacted and written
func (o Outcome) OK() bool {
	return o.Err == nil && o.Result != nil
}

// Summary aggregates the outcomes of a run
type Summary struct {
	OK     int
	Failed int
	Hits   int
	Pages  int

	// Stamp is the batch start time shared by all output names
	Stamp string

	Errors *redactors.RedactionErrorCollection
}

func (s *Summary) add(o Outcome) {
	if !o.OK() {
		s.Failed++
		s.Errors.Add(o.Err)
		return
	}
	s.OK++
	s.Hits += o.Result.Hits
	s.Pages += o.Result.Pages
}

// Runner redacts the PDFs of InputDir
type Runner struct {
	InputDir string
	Output   *redactors.OutputManager
	Redactor redactors.Redactor

	// Workers is the number of documents processed at once; below 2 runs sequentially
	Workers int

	// Report is called on the calling goroutine once per file, in input order
	Report func(Outcome)

	Observer *observability.StandardObserver

	// Now returns the batch start time; nil uses time.Now
	Now func() time.Time
}

// FindPDFs returns the sorted .pdf files (any case) directly inside dir
func FindPDFs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// Run processes every input file. Per-file failures are reported and
// counted, never returned. The returned error is ErrNoInput, a file system
// failure before any document was started, or the context error when the
// run was cancelled between documents.
func (r *Runner) Run(ctx context.Context) (summary Summary, err error) {
	summary.Errors = redactors.NewRedactionErrorCollection()
	observer := r.Observer
	if observer == nil {
		observer = observability.Nop()
	}
	finishTiming := observer.StartTiming(observability.ComponentBatchRunner, "run", r.InputDir)
	defer func() {
		meta := map[string]interface{}{
			"ok":     summary.OK,
			"failed": summary.Failed,
			"hits":   summary.Hits,
			"pages":  summary.Pages,
		}
		if err != nil {
			meta["error"] = err.Error()
		}
		finishTiming(err == nil, meta)
	}()

	if r.Redactor == nil || r.Output == nil {
		return summary, redactors.NewRedactionError(redactors.ErrorConfiguration,
			"runner needs a redactor and an output manager", r.InputDir, observability.ComponentBatchRunner, nil)
	}

	files, err := FindPDFs(r.InputDir)
	if err != nil {
		return summary, redactors.NewRedactionError(redactors.ErrorFileSystem,
			"failed to list input folder", r.InputDir, observability.ComponentBatchRunner, err)
	}
	if len(files) == 0 {
		return summary, ErrNoInput
	}
	if err := r.Output.EnsureOutputDir(); err != nil {
		return summary, err
	}

	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	summary.Stamp = now().Format(redactors.StampLayout)

	jobs := make([]Job, len(files))
	for i, f := range files {
		jobs[i] = Job{Index: i, InputPath: f, OutputPath: r.Output.PathFor(f, summary.Stamp)}
	}

	report := func(o Outcome) {
		summary.add(o)
		if r.Report != nil {
			r.Report(o)
		}
	}

	if r.Workers < 2 {
		for _, job := range jobs {
			if err := ctx.Err(); err != nil {
				return summary, fmt.Errorf("batch cancelled: %w", err)
			}
			report(redactOne(r.Redactor, job))
		}
		return summary, nil
	}
	return r.runParallel(ctx, jobs, observer, report, &summary)
}

// runParallel fans jobs out to a WorkerPool and reports results in input order.
func (r *Runner) runParallel(ctx context.Context, jobs []Job, observer *observability.StandardObserver, report func(Outcome), summary *Summary) (Summary, error) {
	pool := NewWorkerPool(r.Workers, r.Redactor, observer)
	pool.Start()

	go func() {
		defer pool.Close()
		for _, job := range jobs {
			if ctx.Err() != nil || !pool.Submit(ctx, job) {
				return
			}
		}
	}()

	pending := make(map[int]Outcome)
	next := 0
	for res := range pool.Results() {
		pending[res.Job.Index] = res.Outcome
		for {
			o, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			report(o)
			next++
		}
	}

	if next < len(jobs) {
		if err := ctx.Err(); err != nil {
			return *summary, fmt.Errorf("batch cancelled: %w", err)
		}
	}
	return *summary, nil
}
