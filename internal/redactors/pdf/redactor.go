// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package pdf

import (
	"fmt"
	"path/filepath"
	"time"

	"reasonable-redactor/internal/config"
	"reasonable-redactor/internal/observability"
	"reasonable-redactor/internal/pdfengine"
	"reasonable-redactor/internal/redactors"
)

// DocumentRedactor redacts whole PDF documents page by page
type DocumentRedactor struct {
	opener        pdfengine.Opener
	pages         *PageRedactor
	outputManager *redactors.OutputManager
	observer      *observability.StandardObserver
	saveOptions   pdfengine.SaveOptions
}

// NewDocumentRedactor creates a DocumentRedactor. A nil opener uses the
// pdfcpu engine; a nil outputManager writes next to each output path.
func NewDocumentRedactor(settings config.Settings, opener pdfengine.Opener, outputManager *redactors.OutputManager, observer *observability.StandardObserver) *DocumentRedactor {
	if observer == nil {
		observer = observability.Nop()
	}
	if opener == nil {
		opener = pdfengine.DefaultOpener
	}
	return &DocumentRedactor{
		opener:        opener,
		pages:         NewPageRedactor(settings, observer),
		outputManager: outputManager,
		observer:      observer,
		saveOptions:   pdfengine.DefaultSaveOptions(),
	}
}

// GetName returns the name of the redactor
func (dr *DocumentRedactor) GetName() string {
	return "pdf_redactor"
}

// GetSupportedTypes returns the file types this redactor can handle
func (dr *DocumentRedactor) GetSupportedTypes() []string {
	return []string{".pdf"}
}

// GetComponentName returns the component name for observability
func (dr *DocumentRedactor) GetComponentName() string {
	return observability.ComponentDocumentRedactor
}

// RedactDocument redacts every page of originalPath and atomically writes the
// result to outputPath.
func (dr *DocumentRedactor) RedactDocument(originalPath string, outputPath string) (result *redactors.RedactionResult, err error) {
	startTime := time.Now()
	finishTiming := dr.observer.StartTiming(dr.GetComponentName(), "redact_document", originalPath)
	var debugDone func(bool, string)
	if dbg := dr.observer.DebugObserver; dbg != nil {
		debugDone = dbg.StartStep(dr.GetComponentName(), "redact_document", originalPath)
	}
	defer func() {
		meta := map[string]interface{}{"output_path": outputPath}
		details := ""
		if result != nil {
			meta["hits"] = result.Hits
			meta["pages"] = result.Pages
			details = fmt.Sprintf("hits=%d pages=%d", result.Hits, result.Pages)
		}
		if err != nil {
			meta["error"] = err.Error()
			details = err.Error()
		}
		finishTiming(err == nil, meta)
		if debugDone != nil {
			debugDone(err == nil, details)
		}
	}()

	doc, err := dr.opener.Open(originalPath)
	if err != nil {
		return nil, redactors.NewRedactionError(redactors.ErrorDocumentOpen,
			"failed to open document", originalPath, dr.GetComponentName(), err)
	}
	defer doc.Close()

	res := &redactors.RedactionResult{
		OriginalPath: originalPath,
		PageCount:    doc.PageCount(),
	}

	for n := 1; n <= doc.PageCount(); n++ {
		page, err := doc.Page(n)
		if err != nil {
			return nil, redactors.NewRedactionError(redactors.ErrorDocumentProcessing,
				fmt.Sprintf("failed to load page %d", n), originalPath, dr.GetComponentName(), err)
		}
		outcome, err := dr.pages.Redact(page)
		if err != nil {
			return nil, redactors.NewRedactionError(redactors.ErrorDocumentProcessing,
				fmt.Sprintf("failed to redact page %d", n), originalPath, dr.GetComponentName(), err)
		}
		for _, w := range outcome.Warnings() {
			res.Warnings = append(res.Warnings, w)
			dr.observer.Warning(dr.GetComponentName(), originalPath, w)
		}
		if outcome.State != PageFlattened {
			continue
		}
		res.Pages++
		res.Hits += outcome.Hits()
		res.PageHits = append(res.PageHits, outcome.PageHit)
		if dbg := dr.observer.DebugObserver; dbg != nil {
			dbg.LogDetail(dr.GetComponentName(), fmt.Sprintf("page %d: bcc=%d emails=%d", n, outcome.BccRects, outcome.Emails))
		}
	}

	om := dr.outputManager
	if om == nil {
		if om, err = redactors.NewOutputManager(filepath.Dir(outputPath), dr.observer); err != nil {
			return nil, redactors.NewRedactionError(redactors.ErrorSave,
				"invalid output path", originalPath, dr.GetComponentName(), err)
		}
	}
	err = om.WriteAtomic(outputPath, func(tmpPath string) error {
		return doc.Save(tmpPath, dr.saveOptions)
	})
	if err != nil {
		return nil, redactors.AsRedactionError(err, originalPath, dr.GetComponentName())
	}

	res.RedactedFilePath = outputPath
	res.ProcessingTime = time.Since(startTime)
	return res, nil
}
