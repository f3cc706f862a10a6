// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package observability

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// DebugObserver prints an indented trace of processing steps
type DebugObserver struct {
	*StandardObserver
	indent int
}

// NewDebugObserver creates a debug observer and links it to its StandardObserver
func NewDebugObserver(writer io.Writer) *DebugObserver {
	d := &DebugObserver{
		StandardObserver: NewStandardObserver(ObservabilityDebug, writer),
	}
	d.StandardObserver.DebugObserver = d
	return d
}

func (d *DebugObserver) printf(format string, args ...interface{}) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fmt.Fprintf(d.writer, strings.Repeat("  ", d.indent)+format, args...)
}

// StartStep begins a processing step with indentation
func (d *DebugObserver) StartStep(component, step, filePath string) func(success bool, details string) {
	start := time.Now()
	d.printf("🔄 %s: %s (%s)\n", component, step, filePath)
	d.mu.Lock()
	d.indent++
	d.mu.Unlock()

	return func(success bool, details string) {
		d.mu.Lock()
		d.indent--
		d.mu.Unlock()

		ms := time.Since(start).Milliseconds()
		if success {
			d.printf("✅ %s: %s completed (%dms) %s\n", component, step, ms, details)
		} else {
			d.printf("❌ %s: %s failed (%dms) %s\n", component, step, ms, details)
		}
	}
}

// LogDetail logs a detail within the current step
func (d *DebugObserver) LogDetail(component, detail string) {
	d.printf("   → %s: %s\n", component, detail)
}

// LogMetric logs a metric value
func (d *DebugObserver) LogMetric(component, metric string, value interface{}) {
	d.printf("   📊 %s: %s = %v\n", component, metric, value)
}
