// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package redactors

import (
	"errors"
	"fmt"
	"time"
)

// RedactionErrorType classifies where in the pipeline a redaction failed
type RedactionErrorType int

const (
	// ErrorDocumentOpen means the input could not be opened or parsed as a PDF
	ErrorDocumentOpen RedactionErrorType = iota

	// ErrorDocumentProcessing means a page could not be scanned or flattened
	ErrorDocumentProcessing

	// ErrorSave means the redacted document could not be written
	ErrorSave

	// ErrorConfiguration means the settings file could not be used
	ErrorConfiguration

	// ErrorFileSystem means a directory or file operation failed
	ErrorFileSystem
)

// String returns the string representation of the error type
func (ret RedactionErrorType) String() string {
	switch ret {
	case ErrorDocumentOpen:
		return "document_open"
	case ErrorDocumentProcessing:
		return "document_processing"
	case ErrorSave:
		return "save"
	case ErrorConfiguration:
		return "configuration"
	case ErrorFileSystem:
		return "file_system"
	default:
		return "unknown"
	}
}

// RedactionError is a failure tied to one input file and component
type RedactionError struct {
	Type      RedactionErrorType
	Message   string
	FilePath  string
	Component string

	// Recoverable is true when the batch can move on to the next document
	Recoverable bool

	Timestamp time.Time
	Cause     error
}

// Error implements the error interface
func (re *RedactionError) Error() string {
	msg := re.Message
	if re.Cause != nil {
		msg = fmt.Sprintf("%s: %v", re.Message, re.Cause)
	}
	if re.FilePath != "" {
		return fmt.Sprintf("[%s] %s (file: %s, component: %s)", re.Type, msg, re.FilePath, re.Component)
	}
	return fmt.Sprintf("[%s] %s (component: %s)", re.Type, msg, re.Component)
}

// Unwrap returns the underlying error for error unwrapping
func (re *RedactionError) Unwrap() error {
	return re.Cause
}

// NewRedactionError creates a new RedactionError
func NewRedactionError(errorType RedactionErrorType, message, filePath, component string, cause error) *RedactionError {
	return &RedactionError{
		Type:        errorType,
		Message:     message,
		FilePath:    filePath,
		Component:   component,
		Recoverable: errorType != ErrorConfiguration,
		Timestamp:   time.Now(),
		Cause:       cause,
	}
}

// AsRedactionError returns err as a RedactionError, wrapping anything else
// as a processing failure of filePath.
func AsRedactionError(err error, filePath, component string) *RedactionError {
	var re *RedactionError
	if errors.As(err, &re) {
		return re
	}
	return NewRedactionError(ErrorDocumentProcessing, "redaction failed", filePath, component, err)
}

// RedactionErrorCollection accumulates the failures of a batch run.
// It is not safe for concurrent use.
type RedactionErrorCollection struct {
	errors []*RedactionError
}

// NewRedactionErrorCollection creates a new error collection
func NewRedactionErrorCollection() *RedactionErrorCollection {
	return &RedactionErrorCollection{}
}

// Add adds an error to the collection
func (rec *RedactionErrorCollection) Add(err *RedactionError) {
	if err != nil {
		rec.errors = append(rec.errors, err)
	}
}

// Errors returns the collected errors in insertion order
func (rec *RedactionErrorCollection) Errors() []*RedactionError {
	return rec.errors
}

// HasErrors returns true if the collection contains any errors
func (rec *RedactionErrorCollection) HasErrors() bool {
	return len(rec.errors) > 0
}

// ByType returns all errors of the specified type
func (rec *RedactionErrorCollection) ByType(errorType RedactionErrorType) []*RedactionError {
	var result []*RedactionError
	for _, err := range rec.errors {
		if err.Type == errorType {
			result = append(result, err)
		}
	}
	return result
}

// Count returns the number of errors in the collection
func (rec *RedactionErrorCollection) Count() int {
	return len(rec.errors)
}
