// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package pdf

import (
	"errors"
	"os"
	"strings"

	"reasonable-redactor/internal/geometry"
	"reasonable-redactor/internal/pdfengine"
)

const (
	fakeCharWidth = 5.0
	fakeLeading   = 12.0
	fakeBlockGap  = 100.0
)

// fakePage lays out text blocks with fixed-width glyphs
type fakePage struct {
	number   int
	tp       *pdfengine.TextPage
	words    []pdfengine.Word
	pending  []pdfengine.RedactMark
	applied  []pdfengine.RedactMark
	applies  int
	applyErr error
	// emptyMarks is reported by ApplyRedactions as marks over no text
	emptyMarks int
}

func lineRect(y float64, from, n int) geometry.Rect {
	x := 72 + float64(from)*fakeCharWidth
	return geometry.NewRect(x, y-2.1, x+float64(n)*fakeCharWidth, y+7.8)
}

// newFakePage builds a page with one text block per entry of blocks
func newFakePage(number int, blocks ...[]string) *fakePage {
	p := &fakePage{number: number, tp: &pdfengine.TextPage{Width: 612, Height: 792}}
	y := 700.0
	for bi, lines := range blocks {
		block := pdfengine.Block{Type: pdfengine.BlockText}
		for li, text := range lines {
			rect := lineRect(y, 0, len(text))
			block.Lines = append(block.Lines, pdfengine.TextLine{
				Rect:  rect,
				Spans: []pdfengine.Span{{Text: text, Font: "Helvetica", FontSize: 10, Rect: rect}},
			})
			block.Rect = block.Rect.Union(rect)

			offset := 0
			for wi, token := range strings.Fields(text) {
				at := strings.Index(text[offset:], token) + offset
				p.words = append(p.words, pdfengine.Word{
					Rect:  lineRect(y, at, len(token)),
					Text:  token,
					Block: bi,
					Line:  li,
					Index: wi,
				})
				offset = at + len(token)
			}
			y -= fakeLeading
		}
		p.tp.Blocks = append(p.tp.Blocks, block)
		y -= fakeBlockGap
	}
	return p
}

func (p *fakePage) Number() int { return p.number }

func (p *fakePage) StructuredText() (*pdfengine.TextPage, error) { return p.tp, nil }

func (p *fakePage) Words() ([]pdfengine.Word, error) { return p.words, nil }

func (p *fakePage) AddRedaction(mark pdfengine.RedactMark) error {
	p.pending = append(p.pending, mark)
	return nil
}

func (p *fakePage) PendingRedactions() int { return len(p.pending) }

func (p *fakePage) ApplyRedactions(images pdfengine.ImagePolicy) (pdfengine.ApplyResult, error) {
	if images != pdfengine.ImagesNone {
		return pdfengine.ApplyResult{}, pdfengine.ErrUnsupportedImagePolicy
	}
	if p.applyErr != nil {
		return pdfengine.ApplyResult{}, p.applyErr
	}
	res := pdfengine.ApplyResult{Marks: len(p.pending), EmptyMarks: p.emptyMarks}
	for _, m := range p.pending {
		res.RemovedGlyphs += int(m.Rect.Width() / fakeCharWidth)
	}
	p.applies++
	p.applied = append(p.applied, p.pending...)
	p.pending = nil
	return res, nil
}

// fakeDocument writes a marker file on Save
type fakeDocument struct {
	pages   []*fakePage
	saveErr error
	saved   []string
	closed  bool
}

func (d *fakeDocument) PageCount() int { return len(d.pages) }

func (d *fakeDocument) Page(n int) (pdfengine.Page, error) {
	if n < 1 || n > len(d.pages) {
		return nil, errors.New("page out of range")
	}
	return d.pages[n-1], nil
}

func (d *fakeDocument) Save(path string, opts pdfengine.SaveOptions) error {
	if !opts.Compress || !opts.Garbage {
		return errors.New("expected compressed, garbage collected output")
	}
	if err := os.WriteFile(path, []byte("%PDF-fake"), 0600); err != nil {
		return err
	}
	if d.saveErr != nil {
		return d.saveErr
	}
	d.saved = append(d.saved, path)
	return nil
}

func (d *fakeDocument) Close() error {
	d.closed = true
	return nil
}
