// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package batch

import (
	"context"
	"sync"
	"time"

	"reasonable-redactor/internal/observability"
	"reasonable-redactor/internal/redactors"
)

// Job is one document to redact
type Job struct {
	Index      int
	InputPath  string
	OutputPath string
}

// Result is the outcome of a Job
type Result struct {
	Job      Job
	Outcome  Outcome
	Duration time.Duration
}

// WorkerPool redacts whole documents on a fixed number of goroutines.
// A document is only ever handled by the worker that received its job.
type WorkerPool struct {
	workers  int
	jobs     chan Job
	results  chan Result
	wg       sync.WaitGroup
	redactor redactors.Redactor
	observer *observability.StandardObserver
}

// NewWorkerPool creates a pool of workers goroutines sharing redactor
func NewWorkerPool(workers int, redactor redactors.Redactor, observer *observability.StandardObserver) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	if observer == nil {
		observer = observability.Nop()
	}
	return &WorkerPool{
		workers:  workers,
		jobs:     make(chan Job, workers*2),
		results:  make(chan Result, workers*2),
		redactor: redactor,
		observer: observer,
	}
}

// Start launches the worker goroutines
func (wp *WorkerPool) Start() {
	for i := 0; i < wp.workers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

// Submit queues a job. It returns false when ctx is done first.
func (wp *WorkerPool) Submit(ctx context.Context, job Job) bool {
	select {
	case wp.jobs <- job:
		return true
	case <-ctx.Done():
		return false
	}
}

// Close stops accepting jobs, waits for the workers and closes Results
func (wp *WorkerPool) Close() {
	close(wp.jobs)
	wp.wg.Wait()
	close(wp.results)
}

// Results returns the results channel
func (wp *WorkerPool) Results() <-chan Result {
	return wp.results
}

func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	for job := range wp.jobs {
		start := time.Now()
		finishTiming := wp.observer.StartTiming("worker_pool", "process_job", job.InputPath)
		outcome := redactOne(wp.redactor, job)
		meta := map[string]interface{}{"worker": id}
		if outcome.Err != nil {
			meta["error"] = outcome.Err.Error()
		} else if outcome.Result != nil {
			meta["hits"] = outcome.Result.Hits
		}
		finishTiming(outcome.OK(), meta)

		wp.results <- Result{Job: job, Outcome: outcome, Duration: time.Since(start)}
	}
}

// redactOne runs the redactor and converts any failure into a RedactionError
func redactOne(r redactors.Redactor, job Job) Outcome {
	outcome := Outcome{InputPath: job.InputPath, OutputPath: job.OutputPath}
	res, err := r.RedactDocument(job.InputPath, job.OutputPath)
	if err != nil {
		outcome.Err = redactors.AsRedactionError(err, job.InputPath, observability.ComponentBatchRunner)
		return outcome
	}
	outcome.Result = res
	return outcome
}
