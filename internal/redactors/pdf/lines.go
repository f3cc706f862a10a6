// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package pdf

import (
	"strings"

	"reasonable-redactor/internal/geometry"
	"reasonable-redactor/internal/pdfengine"
)

// Line is one visual line of a text block
type Line struct {
	// Text is the normalized text, used only for header matching
	Text string

	// Raw is the span text as drawn
	Raw string

	Rect geometry.Rect

	// Block is the index of the text block the line belongs to
	Block int
}

// ReconstructLines flattens the text blocks of a page into ordered lines.
// Image blocks are skipped.
func ReconstructLines(tp *pdfengine.TextPage) []Line {
	if tp == nil {
		return nil
	}

	var lines []Line
	for bi, block := range tp.Blocks {
		if block.Type != pdfengine.BlockText {
			continue
		}
		for _, tl := range block.Lines {
			var raw strings.Builder
			for _, span := range tl.Spans {
				raw.WriteString(span.Text)
			}
			lines = append(lines, Line{
				Text:  normalize(raw.String()),
				Raw:   raw.String(),
				Rect:  tl.Rect,
				Block: bi,
			})
		}
	}
	return lines
}

// normalize collapses whitespace runs, trims and lower-cases s
func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
