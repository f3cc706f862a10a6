// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package pdf

import (
	"reasonable-redactor/internal/config"
	"reasonable-redactor/internal/geometry"
	"reasonable-redactor/internal/pdfengine"
)

// MarkFontSize is the font size of replacement text
const MarkFontSize = 9

// MarkTarget receives redaction marks
type MarkTarget interface {
	AddRedaction(mark pdfengine.RedactMark) error
}

// Stamper turns rects into redaction marks in one visual style
type Stamper struct {
	Style    config.Style
	FontSize float64
}

// NewStamper returns a Stamper for style with the default font size
func NewStamper(style config.Style) Stamper {
	return Stamper{Style: style, FontSize: MarkFontSize}
}

// Colors returns the fill and text colours of the style
func (s Stamper) Colors() (fill, text pdfengine.Color) {
	if s.Style == config.StyleBlackout {
		return pdfengine.Black, pdfengine.White
	}
	return pdfengine.White, pdfengine.Black
}

// Stamp registers a mark over rect. A nil text wipes the rect.
func (s Stamper) Stamp(target MarkTarget, rect geometry.Rect, text *string) error {
	fill, textColor := s.Colors()
	mark := pdfengine.RedactMark{Rect: rect, Fill: fill}
	if text != nil {
		t := *text
		mark.Text = &t
		mark.TextColor = textColor
		mark.FontSize = s.FontSize
	}
	return target.AddRedaction(mark)
}
