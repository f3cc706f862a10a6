// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package observability

// Observable interface for all components that need observability
type Observable interface {
	// GetComponentName returns the component identifier
	GetComponentName() string
}

// Component names used in observability records
const (
	ComponentDocumentRedactor = "document_redactor"
	ComponentPageRedactor     = "page_redactor"
	ComponentPDFEngine        = "pdf_engine"
	ComponentBatchRunner      = "batch_runner"
	ComponentOutputManager    = "output_manager"
	ComponentConfig           = "config"
)
