// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package pdfengine

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"reasonable-redactor/internal/geometry"
)

// Fallback page size (US Letter) when no MediaBox can be found
const (
	defaultPageWidth  = 612.0
	defaultPageHeight = 792.0
)

// pdfcpu must not create or read its own config file in the user's home.
func init() {
	api.DisableConfigDir()
}

// DefaultOpener opens documents with the pdfcpu engine and default layout options
var DefaultOpener Opener = OpenerFunc(Open)

// pdfDocument pairs the pdfcpu context that is read and rewritten with the
// ledongthuc reader whose font encodings turn character codes into text.
type pdfDocument struct {
	path   string
	ctx    *model.Context
	file   *os.File
	reader *pdf.Reader
	layout LayoutOptions
	pages  map[int]*pdfPage
	closed bool
}

// Open reads and validates the document at path with default layout options
func Open(path string) (Document, error) {
	return OpenWithLayout(path, DefaultLayoutOptions())
}

// OpenWithLayout reads and validates the document at path
func OpenWithLayout(path string, opts LayoutOptions) (Document, error) {
	ctx, err := api.ReadContextFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF: %w", err)
	}

	ctx.Configuration.ValidationMode = model.ValidationRelaxed
	if err := api.ValidateContext(ctx); err != nil {
		return nil, fmt.Errorf("invalid PDF: %w", err)
	}

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF for text extraction: %w", err)
	}

	return &pdfDocument{
		path:   path,
		ctx:    ctx,
		file:   f,
		reader: r,
		layout: opts,
		pages:  make(map[int]*pdfPage),
	}, nil
}

func (d *pdfDocument) PageCount() int {
	return d.ctx.PageCount
}

func (d *pdfDocument) Page(n int) (Page, error) {
	if d.closed {
		return nil, fmt.Errorf("document %s is closed", d.path)
	}
	if n < 1 || n > d.ctx.PageCount {
		return nil, fmt.Errorf("page %d out of range 1..%d", n, d.ctx.PageCount)
	}
	if p, ok := d.pages[n]; ok {
		return p, nil
	}
	p := &pdfPage{doc: d, number: n}
	d.pages[n] = p
	return p, nil
}

// Save writes the document to path. Marks that were never applied are not written.
func (d *pdfDocument) Save(path string, opts SaveOptions) error {
	if d.closed {
		return errors.New("document is closed")
	}
	if opts.Garbage {
		if err := api.OptimizeContext(d.ctx); err != nil {
			return fmt.Errorf("failed to optimize PDF: %w", err)
		}
	}
	d.ctx.Configuration.WriteObjectStream = opts.Compress
	d.ctx.Configuration.WriteXRefStream = opts.Compress

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := api.WriteContext(d.ctx, f); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("failed to close output file: %w", err)
	}
	return nil
}

func (d *pdfDocument) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	return d.file.Close()
}

// pageSize returns the MediaBox dimensions of page n
func (d *pdfDocument) pageSize(n int) (float64, float64) {
	pd, _, inh, err := d.ctx.PageDict(n, false)
	if err != nil || pd == nil {
		return defaultPageWidth, defaultPageHeight
	}
	if box, err := d.ctx.DereferenceArray(pd["MediaBox"]); err == nil && len(box) == 4 {
		x0, _ := d.number(box[0])
		y0, _ := d.number(box[1])
		x1, _ := d.number(box[2])
		y1, _ := d.number(box[3])
		r := geometry.NewRect(x0, y0, x1, y1)
		if !r.IsEmpty() {
			return r.Width(), r.Height()
		}
	}
	if inh != nil && inh.MediaBox != nil {
		return inh.MediaBox.Width(), inh.MediaBox.Height()
	}
	return defaultPageWidth, defaultPageHeight
}

// number resolves o to a float when it is an integer or real
func (d *pdfDocument) number(o types.Object) (float64, bool) {
	o, err := d.ctx.Dereference(o)
	if err != nil {
		return 0, false
	}
	switch v := o.(type) {
	case types.Integer:
		return float64(v), true
	case types.Float:
		return float64(v), true
	}
	return 0, false
}

// pageDict returns the page dictionary of page n
func (d *pdfDocument) pageDict(n int) (types.Dict, error) {
	pd, _, _, err := d.ctx.PageDict(n, false)
	if err != nil {
		return nil, fmt.Errorf("failed to read page %d: %w", n, err)
	}
	if pd == nil {
		return nil, fmt.Errorf("page %d not found", n)
	}
	return pd, nil
}

// pageContent returns the decoded content of a page. The streams of a
// Contents array are joined with a newline so a token at the end of one
// stream never runs into the first token of the next.
func (d *pdfDocument) pageContent(pd types.Dict) ([]byte, error) {
	o, err := d.ctx.Dereference(pd["Contents"])
	if err != nil {
		return nil, fmt.Errorf("failed to read page contents: %w", err)
	}
	streams := []types.Object{o}
	switch v := o.(type) {
	case nil:
		return nil, nil
	case types.Array:
		streams = v
	}

	var buf bytes.Buffer
	for i, s := range streams {
		content, err := d.streamContent(s)
		if err != nil {
			return nil, fmt.Errorf("content stream %d: %w", i, err)
		}
		if i > 0 {
			buf.WriteByte('\n')
		}
		buf.Write(content)
	}
	return buf.Bytes(), nil
}

func (d *pdfDocument) streamContent(o types.Object) ([]byte, error) {
	if o == nil {
		return nil, nil
	}
	sd, _, err := d.ctx.DereferenceStreamDict(o)
	if err != nil {
		return nil, err
	}
	if sd == nil {
		return nil, nil
	}
	if err := sd.Decode(); err != nil {
		return nil, fmt.Errorf("failed to decode: %w", err)
	}
	return sd.Content, nil
}

// lookupResources returns the resources in effect for a page: its own, or
// the nearest ones inherited from the page tree.
func (d *pdfDocument) lookupResources(pd types.Dict) types.Dict {
	const maxDepth = 64
	node := pd
	for depth := 0; node != nil && depth < maxDepth; depth++ {
		if o, ok := node["Resources"]; ok {
			if res, err := d.ctx.DereferenceDict(o); err == nil && res != nil {
				return res
			}
		}
		parent, err := d.ctx.DereferenceDict(node["Parent"])
		if err != nil {
			return nil
		}
		node = parent
	}
	return nil
}

// baseFont returns the BaseFont of a font resource without its subset tag
func (d *pdfDocument) baseFont(o types.Object) string {
	fd, err := d.ctx.DereferenceDict(o)
	if err != nil || fd == nil {
		return ""
	}
	base, _ := fd["BaseFont"].(types.Name)
	return baseFontName(string(base))
}

// isForm reports whether o resolves to a Form XObject
func (d *pdfDocument) isForm(o types.Object) bool {
	if o == nil {
		return false
	}
	sd, _, err := d.ctx.DereferenceStreamDict(o)
	if err != nil || sd == nil {
		return false
	}
	subtype, _ := sd.Dict["Subtype"].(types.Name)
	return subtype == "Form"
}

// fontEncoder returns the text decoding of a page font, or nil when the
// reader cannot build one.
func fontEncoder(page pdf.Page, name string) (enc pdf.TextEncoding) {
	defer func() {
		if recover() != nil {
			enc = nil
		}
	}()
	f := page.Font(name)
	if f.V.IsNull() {
		return nil
	}
	return f.Encoder()
}

// pdfPage is a page of a pdfDocument
type pdfPage struct {
	doc    *pdfDocument
	number int
	layout *Layout
	marks  []RedactMark
}

func (p *pdfPage) Number() int {
	return p.number
}

func (p *pdfPage) StructuredText() (*TextPage, error) {
	l, err := p.ensureLayout()
	if err != nil {
		return nil, err
	}
	return &l.Page, nil
}

func (p *pdfPage) Words() ([]Word, error) {
	l, err := p.ensureLayout()
	if err != nil {
		return nil, err
	}
	return l.Words, nil
}

// ensureLayout groups the page glyphs once. Geometry always reflects the
// source file, so it is unaffected by applied redactions.
func (p *pdfPage) ensureLayout() (*Layout, error) {
	if p.layout != nil {
		return p.layout, nil
	}
	if p.doc.closed {
		return nil, errors.New("document is closed")
	}

	text, err := p.extract()
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", p.number, err)
	}

	w, h := p.doc.pageSize(p.number)
	p.layout = BuildLayout(text.glyphs, w, h, p.doc.layout)
	p.layout.Page.FormXObjects = text.forms
	return p.layout, nil
}

// extract interprets the page content with the page resources. Glyph
// advances come from the font dictionaries and text from the reader's
// font encodings.
func (p *pdfPage) extract() (pageText, error) {
	d := p.doc
	pd, err := d.pageDict(p.number)
	if err != nil {
		return pageText{}, err
	}
	content, err := d.pageContent(pd)
	if err != nil {
		return pageText{}, err
	}

	res := d.lookupResources(pd)
	fonts, _ := d.ctx.DereferenceDict(res["Font"])
	xobjects, _ := d.ctx.DereferenceDict(res["XObject"])

	var lp pdf.Page
	if p.number <= d.reader.NumPage() {
		lp = d.reader.Page(p.number)
	}

	return extractText(content, textSource{
		metrics: d.fontResolver(fonts),
		encoder: func(font string) pdf.TextEncoding {
			if lp.V.IsNull() {
				return nil
			}
			return fontEncoder(lp, font)
		},
		baseFont: func(font string) string {
			return d.baseFont(fonts[font])
		},
		isForm: func(name string) bool {
			return d.isForm(xobjects[name])
		},
	})
}

func (p *pdfPage) AddRedaction(mark RedactMark) error {
	r := geometry.NewRect(mark.Rect.X0, mark.Rect.Y0, mark.Rect.X1, mark.Rect.Y1)
	if r.IsEmpty() {
		return fmt.Errorf("redaction rect %s has no area", mark.Rect)
	}
	mark.Rect = r
	p.marks = append(p.marks, mark)
	return nil
}

func (p *pdfPage) PendingRedactions() int {
	return len(p.marks)
}

// ApplyRedactions removes the glyphs under every pending mark from the page
// content and draws the marks on top. The original content is kept inside
// a saved graphics state so the overlay starts from a clean state.
func (p *pdfPage) ApplyRedactions(images ImagePolicy) (ApplyResult, error) {
	var result ApplyResult
	if images != ImagesNone {
		return result, fmt.Errorf("%w: %s", ErrUnsupportedImagePolicy, images)
	}
	if len(p.marks) == 0 {
		return result, nil
	}
	ctx := p.doc.ctx

	pd, err := p.doc.pageDict(p.number)
	if err != nil {
		return result, err
	}
	original, err := p.doc.pageContent(pd)
	if err != nil {
		return result, fmt.Errorf("failed to read content of page %d: %w", p.number, err)
	}

	res, err := p.resources(pd)
	if err != nil {
		return result, err
	}
	fonts, err := ctx.DereferenceDict(res["Font"])
	if err != nil {
		return result, fmt.Errorf("failed to read fonts of page %d: %w", p.number, err)
	}

	regions := make([]geometry.Rect, len(p.marks))
	for i, m := range p.marks {
		regions[i] = m.Rect
	}
	scrubbed, err := scrubContent(original, regions, p.doc.fontResolver(fonts))
	if err != nil {
		return result, fmt.Errorf("page %d: %w", p.number, err)
	}
	result.Marks = len(p.marks)
	result.RemovedGlyphs = scrubbed.removed
	for _, n := range scrubbed.perRegion {
		if n == 0 {
			result.EmptyMarks++
		}
	}

	overlay, usesFont := buildOverlay(p.marks)
	if usesFont {
		if fonts == nil {
			fonts = types.NewDict()
			res["Font"] = fonts
		}
		if _, ok := fonts[overlayFontName]; !ok {
			ir, err := ctx.IndRefForNewObject(types.Dict{
				"Type":     types.Name("Font"),
				"Subtype":  types.Name("Type1"),
				"BaseFont": types.Name(overlayBaseFont),
				"Encoding": types.Name("WinAnsiEncoding"),
			})
			if err != nil {
				return result, fmt.Errorf("failed to add overlay font: %w", err)
			}
			fonts[overlayFontName] = *ir
		}
	}

	var buf bytes.Buffer
	buf.WriteString("q\n")
	buf.Write(scrubbed.content)
	buf.WriteString("\nQ\n")
	buf.Write(overlay)

	sd, err := ctx.NewStreamDictForBuf(buf.Bytes())
	if err != nil {
		return result, fmt.Errorf("failed to build content stream: %w", err)
	}
	if err := sd.Encode(); err != nil {
		return result, fmt.Errorf("failed to encode content stream: %w", err)
	}
	ir, err := ctx.IndRefForNewObject(*sd)
	if err != nil {
		return result, fmt.Errorf("failed to add content stream: %w", err)
	}
	pd["Contents"] = *ir

	p.marks = nil
	return result, nil
}

// resources returns the page resource dictionary, copying inherited
// resources onto the page so additions stay local to it.
func (p *pdfPage) resources(pd types.Dict) (types.Dict, error) {
	if o, ok := pd["Resources"]; ok {
		res, err := p.doc.ctx.DereferenceDict(o)
		if err != nil {
			return nil, fmt.Errorf("failed to read resources of page %d: %w", p.number, err)
		}
		if res != nil {
			return res, nil
		}
	}
	res := types.NewDict()
	for k, v := range p.doc.lookupResources(pd) {
		res[k] = v
	}
	if fonts, err := p.doc.ctx.DereferenceDict(res["Font"]); err == nil && fonts != nil {
		local := types.NewDict()
		for k, v := range fonts {
			local[k] = v
		}
		res["Font"] = local
	}
	pd["Resources"] = res
	return res, nil
}
