// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package pdf

import (
	"errors"
	"fmt"

	"reasonable-redactor/internal/config"
	"reasonable-redactor/internal/observability"
	"reasonable-redactor/internal/pdfengine"
	"reasonable-redactor/internal/policy"
	"reasonable-redactor/internal/redactors"
)

// PageState is the progress of one page through the redactor
type PageState int

const (
	PageScanning PageState = iota
	PageMarked
	PageFlattened
)

// String returns the string representation of the state
func (ps PageState) String() string {
	switch ps {
	case PageScanning:
		return "scanning"
	case PageMarked:
		return "marked"
	case PageFlattened:
		return "flattened"
	default:
		return "unknown"
	}
}

// ErrMarkWithoutText is returned when a flattened mark removed no glyph from
// the page content. The text it was placed over is still in the file.
var ErrMarkWithoutText = errors.New("redaction mark removed no text")

// PageOutcome reports what happened to one page
type PageOutcome struct {
	redactors.PageHit
	State PageState

	// RemovedGlyphs is the number of glyphs taken out of the page content
	RemovedGlyphs int

	// FormXObjects is the number of Form XObjects the page paints. Text
	// inside them is neither scanned nor removed.
	FormXObjects int
}

// Warnings describes the conditions on the page that limit what was scanned
func (po PageOutcome) Warnings() []string {
	if po.FormXObjects == 0 {
		return nil
	}
	return []string{fmt.Sprintf("page %d draws %d form XObject(s); text inside them was not scanned", po.Page, po.FormXObjects)}
}

// PageRedactor marks and flattens the Bcc blocks and emails of single pages
type PageRedactor struct {
	settings   config.Settings
	classifier *Classifier
	stamper    Stamper
	observer   *observability.StandardObserver
}

// NewPageRedactor creates a PageRedactor for settings
func NewPageRedactor(settings config.Settings, observer *observability.StandardObserver) *PageRedactor {
	if observer == nil {
		observer = observability.Nop()
	}
	settings = settings.Normalize()
	return &PageRedactor{
		settings: settings,
		classifier: &Classifier{
			Grammar:  NewRegexGrammar(),
			Policy:   policy.New(settings),
			MaskUser: settings.MaskUser,
		},
		stamper:  NewStamper(settings.Style),
		observer: observer,
	}
}

// WithGrammar replaces the email grammar
func (pr *PageRedactor) WithGrammar(g EmailGrammar) *PageRedactor {
	pr.classifier.Grammar = g
	return pr
}

// Redact stamps the page and flattens it when at least one mark was added.
// Pages without marks are left untouched.
func (pr *PageRedactor) Redact(page pdfengine.Page) (outcome PageOutcome, err error) {
	outcome.Page = page.Number()
	finishTiming := pr.observer.StartTiming(observability.ComponentPageRedactor, "redact_page", "")
	defer func() {
		meta := map[string]interface{}{
			"page":  outcome.Page,
			"state": outcome.State.String(),
			"hits":  outcome.Hits(),
		}
		if outcome.RemovedGlyphs > 0 {
			meta["removed_glyphs"] = outcome.RemovedGlyphs
		}
		if outcome.FormXObjects > 0 {
			meta["form_xobjects"] = outcome.FormXObjects
		}
		if err != nil {
			meta["error"] = err.Error()
		}
		finishTiming(err == nil, meta)
	}()

	tp, err := page.StructuredText()
	if err != nil {
		return outcome, fmt.Errorf("failed to read structure of page %d: %w", outcome.Page, err)
	}
	outcome.FormXObjects = tp.FormXObjects
	blocks := LocateBccBlocks(ReconstructLines(tp))
	bccRects := blocks.Rects()

	for i, rect := range bccRects {
		var text *string
		if i == 0 {
			text = &pr.settings.BccReplacement
		}
		if err := pr.stamper.Stamp(page, rect, text); err != nil {
			return outcome, fmt.Errorf("failed to mark Bcc line on page %d: %w", outcome.Page, err)
		}
		outcome.BccRects++
	}

	words, err := page.Words()
	if err != nil {
		return outcome, fmt.Errorf("failed to read words of page %d: %w", outcome.Page, err)
	}
	exclusions := bccRects
	if !pr.settings.SkipEmailMaskInsideBcc {
		exclusions = nil
	}
	for _, hit := range pr.classifier.Classify(words, exclusions) {
		replacement := hit.Replacement
		if err := pr.stamper.Stamp(page, hit.Rect, &replacement); err != nil {
			return outcome, fmt.Errorf("failed to mark email on page %d: %w", outcome.Page, err)
		}
		outcome.Emails++
	}

	if outcome.Hits() == 0 {
		return outcome, nil
	}
	outcome.State = PageMarked

	applied, err := page.ApplyRedactions(pdfengine.ImagesNone)
	if err != nil {
		return outcome, fmt.Errorf("failed to flatten page %d: %w", outcome.Page, err)
	}
	outcome.RemovedGlyphs = applied.RemovedGlyphs
	if applied.EmptyMarks > 0 {
		return outcome, fmt.Errorf("page %d: %d of %d marks: %w", outcome.Page, applied.EmptyMarks, applied.Marks, ErrMarkWithoutText)
	}
	outcome.State = PageFlattened
	return outcome, nil
}
