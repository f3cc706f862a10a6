// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package pdfengine

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"

	"reasonable-redactor/internal/geometry"
)

// Glyph extents relative to the baseline, as fractions of the font size.
const (
	ascentFactor  = 0.78
	descentFactor = 0.21
)

// LayoutOptions tunes how glyphs are grouped into words, lines and blocks.
// All values are multiples of the font size.
type LayoutOptions struct {
	RowTolerance   float64 // baseline difference still considered the same row
	WordGap        float64 // horizontal gap that separates two words
	ColumnGap      float64 // horizontal gap that splits a row into two lines
	BlockLineSpace float64 // maximum baseline distance between lines of one block
}

// DefaultLayoutOptions returns the grouping thresholds used by Open
func DefaultLayoutOptions() LayoutOptions {
	return LayoutOptions{
		RowTolerance:   0.4,
		WordGap:        0.2,
		ColumnGap:      3.0,
		BlockLineSpace: 2.0,
	}
}

// layoutLine is a line with the glyphs it was built from
type layoutLine struct {
	glyphs   []pdf.Text
	baseline float64
	size     float64
	rect     geometry.Rect
}

// Layout is the grouped text of one page
type Layout struct {
	Page  TextPage
	Words []Word
}

// BuildLayout groups glyphs into blocks, lines, spans and words.
func BuildLayout(glyphs []pdf.Text, width, height float64, opts LayoutOptions) *Layout {
	rows := groupRows(glyphs, opts)

	var lines []*layoutLine
	for _, row := range rows {
		lines = append(lines, splitRow(row, opts)...)
	}

	blocks := groupBlocks(lines, opts)

	layout := &Layout{Page: TextPage{Width: width, Height: height}}
	for bi, block := range blocks {
		tb := Block{Type: BlockText}
		for li, line := range block {
			tb.Rect = tb.Rect.Union(line.rect)
			tb.Lines = append(tb.Lines, TextLine{Rect: line.rect, Spans: buildSpans(line, opts)})
			for wi, w := range buildWords(line, opts) {
				w.Block, w.Line, w.Index = bi, li, wi
				layout.Words = append(layout.Words, w)
			}
		}
		layout.Page.Blocks = append(layout.Page.Blocks, tb)
	}
	return layout
}

func glyphSize(g pdf.Text) float64 {
	size := math.Abs(g.FontSize)
	if size == 0 {
		size = 12
	}
	return size
}

func isSpace(g pdf.Text) bool {
	return strings.TrimFunc(g.S, unicode.IsSpace) == ""
}

// groupRows buckets glyphs by baseline, top row first, each row sorted by X.
func groupRows(glyphs []pdf.Text, opts LayoutOptions) [][]pdf.Text {
	type bucket struct {
		y      float64
		glyphs []pdf.Text
	}
	var buckets []*bucket

	for _, g := range glyphs {
		if g.S == "" {
			continue
		}
		tol := glyphSize(g) * opts.RowTolerance
		var found *bucket
		for _, b := range buckets {
			if math.Abs(b.y-g.Y) <= tol {
				found = b
				break
			}
		}
		if found == nil {
			found = &bucket{y: g.Y}
			buckets = append(buckets, found)
		}
		found.glyphs = append(found.glyphs, g)
	}

	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].y > buckets[j].y
	})

	rows := make([][]pdf.Text, 0, len(buckets))
	for _, b := range buckets {
		sort.SliceStable(b.glyphs, func(i, j int) bool {
			return b.glyphs[i].X < b.glyphs[j].X
		})
		rows = append(rows, b.glyphs)
	}
	return rows
}

// splitRow cuts a row into lines where the horizontal gap is column-sized.
func splitRow(row []pdf.Text, opts LayoutOptions) []*layoutLine {
	var lines []*layoutLine
	var current []pdf.Text
	lastEnd := math.Inf(-1)

	flush := func() {
		if line := newLayoutLine(current); line != nil {
			lines = append(lines, line)
		}
		current = nil
	}

	for _, g := range row {
		if len(current) > 0 && !isSpace(g) && g.X-lastEnd > glyphSize(g)*opts.ColumnGap {
			flush()
		}
		current = append(current, g)
		if !isSpace(g) {
			lastEnd = math.Max(lastEnd, g.X+g.W)
		}
	}
	flush()
	return lines
}

// newLayoutLine trims surrounding whitespace glyphs and computes the line box.
func newLayoutLine(glyphs []pdf.Text) *layoutLine {
	start, end := 0, len(glyphs)
	for start < end && isSpace(glyphs[start]) {
		start++
	}
	for end > start && isSpace(glyphs[end-1]) {
		end--
	}
	if start == end {
		return nil
	}
	glyphs = glyphs[start:end]

	line := &layoutLine{glyphs: glyphs, baseline: glyphs[0].Y}
	for _, g := range glyphs {
		line.size = math.Max(line.size, glyphSize(g))
	}
	line.rect = geometry.Rect{
		X0: glyphs[0].X,
		Y0: line.baseline - descentFactor*line.size,
		X1: glyphs[0].X + glyphs[0].W,
		Y1: line.baseline + ascentFactor*line.size,
	}
	for _, g := range glyphs {
		line.rect.X0 = math.Min(line.rect.X0, g.X)
		line.rect.X1 = math.Max(line.rect.X1, g.X+g.W)
	}
	return line
}

// groupBlocks attaches each line to the block whose last line sits directly
// above it and overlaps it horizontally. Lines arrive top to bottom.
func groupBlocks(lines []*layoutLine, opts LayoutOptions) [][]*layoutLine {
	var blocks [][]*layoutLine
	for _, line := range lines {
		placed := false
		for i := len(blocks) - 1; i >= 0; i-- {
			last := blocks[i][len(blocks[i])-1]
			dy := last.baseline - line.baseline
			if dy <= 0 || dy > opts.BlockLineSpace*math.Max(last.size, line.size) {
				continue
			}
			if line.rect.X0 >= last.rect.X1 || last.rect.X0 >= line.rect.X1 {
				continue
			}
			blocks[i] = append(blocks[i], line)
			placed = true
			break
		}
		if !placed {
			blocks = append(blocks, []*layoutLine{line})
		}
	}
	return blocks
}

// buildSpans splits a line into font runs, inserting a single space wherever
// the glyphs are visibly apart.
func buildSpans(line *layoutLine, opts LayoutOptions) []Span {
	var spans []Span
	var text strings.Builder
	var cur *pdf.Text
	pendingSpace := false
	prevEnd := math.Inf(-1)

	flush := func() {
		if cur != nil && text.Len() > 0 {
			spans = append(spans, Span{Text: text.String(), Font: cur.Font, FontSize: glyphSize(*cur), Rect: line.rect})
		}
		text.Reset()
	}

	for i := range line.glyphs {
		g := line.glyphs[i]
		if isSpace(g) {
			pendingSpace = true
			continue
		}
		if g.X-prevEnd > glyphSize(g)*opts.WordGap {
			pendingSpace = pendingSpace || cur != nil
		}
		if cur == nil || cur.Font != g.Font || cur.FontSize != g.FontSize {
			flush()
			cur = &line.glyphs[i]
		}
		if pendingSpace && (text.Len() > 0 || len(spans) > 0) {
			text.WriteByte(' ')
		}
		pendingSpace = false
		text.WriteString(g.S)
		prevEnd = g.X + g.W
	}
	flush()
	return spans
}

// buildWords splits a line at whitespace glyphs and word-sized gaps.
func buildWords(line *layoutLine, opts LayoutOptions) []Word {
	var words []Word
	var text strings.Builder
	var rect geometry.Rect
	prevEnd := math.Inf(-1)

	flush := func() {
		if text.Len() > 0 {
			words = append(words, Word{Rect: rect, Text: text.String()})
		}
		text.Reset()
	}

	for _, g := range line.glyphs {
		if isSpace(g) {
			flush()
			continue
		}
		if text.Len() > 0 && g.X-prevEnd > glyphSize(g)*opts.WordGap {
			flush()
		}
		if text.Len() == 0 {
			rect = geometry.Rect{X0: g.X, Y0: line.rect.Y0, X1: g.X + g.W, Y1: line.rect.Y1}
		}
		text.WriteString(g.S)
		rect.X0 = math.Min(rect.X0, g.X)
		rect.X1 = math.Max(rect.X1, g.X+g.W)
		prevEnd = g.X + g.W
	}
	flush()
	return words
}
