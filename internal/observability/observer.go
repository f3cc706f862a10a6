// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package observability

import (
	"encoding/json"
	"io"
	"sync"
	"time"
)

// StandardObserver records timed operations as JSON lines.
// It is safe for concurrent use.
type StandardObserver struct {
	mu            sync.Mutex
	level         ObservabilityLevel
	writer        io.Writer
	DebugObserver *DebugObserver // set when the run is in debug mode
}

type ObservabilityLevel int

const (
	ObservabilityOff     ObservabilityLevel = 0
	ObservabilityMetrics ObservabilityLevel = 1
	ObservabilityDebug   ObservabilityLevel = 2
)

// NewStandardObserver creates an observer writing to writer. A nil writer discards.
func NewStandardObserver(level ObservabilityLevel, writer io.Writer) *StandardObserver {
	if writer == nil {
		writer = io.Discard
	}
	return &StandardObserver{
		level:  level,
		writer: writer,
	}
}

// Nop returns an observer that records nothing
func Nop() *StandardObserver {
	return NewStandardObserver(ObservabilityOff, nil)
}

// Level returns the configured level
func (o *StandardObserver) Level() ObservabilityLevel {
	return o.level
}

// StartTiming returns a function to complete timing. The metadata keys
// "error" and "hits" are lifted into the record.
func (o *StandardObserver) StartTiming(component, operation, filePath string) func(success bool, metadata map[string]interface{}) {
	start := time.Now()

	return func(success bool, metadata map[string]interface{}) {
		data := StandardObservabilityData{
			Component:  component,
			Operation:  operation,
			FilePath:   filePath,
			DurationMs: time.Since(start).Milliseconds(),
			Success:    success,
			Metadata:   metadata,
		}
		if e, ok := metadata["error"].(string); ok {
			data.Error = e
		}
		if hits, ok := metadata["hits"].(int); ok {
			data.MatchCount = hits
		}

		o.LogOperation(data)
	}
}

// Warning records a condition that did not fail the operation. The debug
// observer, when set, prints it as well.
func (o *StandardObserver) Warning(component, filePath, message string) {
	if o.DebugObserver != nil {
		o.DebugObserver.LogDetail(component, "warning: "+message)
	}
	o.LogOperation(StandardObservabilityData{
		Component: component,
		Operation: "warning",
		FilePath:  filePath,
		Success:   true,
		Metadata:  map[string]interface{}{"warning": message},
	})
}

// LogOperation logs operation data
func (o *StandardObserver) LogOperation(data StandardObservabilityData) {
	if o.level == ObservabilityOff {
		return
	}

	data.RequestID = "req-" + time.Now().Format("20060102-150405")

	// Only log JSON in debug mode
	if o.level == ObservabilityDebug {
		o.mu.Lock()
		defer o.mu.Unlock()
		json.NewEncoder(o.writer).Encode(data)
	}
}

// StandardObservabilityData is one JSON line
type StandardObservabilityData struct {
	Component  string                 `json:"component"`
	Operation  string                 `json:"operation"`
	RequestID  string                 `json:"request_id"`
	FilePath   string                 `json:"file_path,omitempty"`
	DurationMs int64                  `json:"duration_ms,omitempty"`
	Success    bool                   `json:"success"`
	Error      string                 `json:"error,omitempty"`
	MatchCount int                    `json:"match_count,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}
