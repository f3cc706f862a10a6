// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package redactors

import (
	"time"
)

// Redactor creates redacted copies of documents
type Redactor interface {
	// GetName returns the name of the redactor
	GetName() string

	// GetSupportedTypes returns the file extensions this redactor can handle
	GetSupportedTypes() []string

	// RedactDocument writes a redacted copy of originalPath to outputPath.
	// Nothing is written to outputPath when an error is returned.
	RedactDocument(originalPath string, outputPath string) (*RedactionResult, error)

	// GetComponentName returns the component name for observability
	GetComponentName() string
}

// PageHit is the redaction count of one page that was flattened
type PageHit struct {
	Page int

	// BccRects is the number of Bcc header and continuation lines covered
	BccRects int

	// Emails is the number of email tokens masked
	Emails int
}

// Hits returns the total redactions on the page
func (ph PageHit) Hits() int {
	return ph.BccRects + ph.Emails
}

// RedactionResult contains the result of redacting one document
type RedactionResult struct {
	// OriginalPath is the input document
	OriginalPath string

	// RedactedFilePath is where the redacted copy was written
	RedactedFilePath string

	// Hits is the total number of redaction marks across all pages
	Hits int

	// Pages is the number of pages that received at least one mark
	Pages int

	// PageHits lists the pages that received marks, in page order
	PageHits []PageHit

	// PageCount is the number of pages in the document
	PageCount int

	// Warnings lists conditions that limited the scan, such as text the
	// engine cannot reach. They never contain email addresses.
	Warnings []string

	ProcessingTime time.Duration
}
