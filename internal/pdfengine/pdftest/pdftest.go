// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package pdftest builds small uncompressed PDFs for tests.
package pdftest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Text layout of generated pages
const (
	FontSize   = 10.0
	GlyphWidth = 500.0 // every glyph of F1 with FontWidths, in 1/1000 em
	CIDWidth   = 600.0 // every printable glyph of F1 with FontType0
	Leading    = 14.0
	StartX     = 72.0
	StartY     = 700.0
	PageWidth  = 612.0
	PageHeight = 792.0
	firstChar  = 32
	lastChar   = 255
)

// FontKind selects the F1 font resource of a generated document
type FontKind int

const (
	// FontWidths is a Type1 font with a Widths array of GlyphWidth
	FontWidths FontKind = iota
	// FontHelvetica is the standard 14 Helvetica without Widths
	FontHelvetica
	// FontTimes is the standard 14 Times-Roman without Widths
	FontTimes
	// FontCourier is the standard 14 Courier without Widths
	FontCourier
	// FontType0 is an Identity-H composite font with two byte codes,
	// CIDWidth advances and a ToUnicode CMap
	FontType0
)

// Options controls the objects of a generated document
type Options struct {
	Font FontKind
	// InheritResources puts the font resources on the page tree node
	// instead of on each page.
	InheritResources bool
	// FormXObject, when set, is the content of a Form XObject available
	// to every page as FormName.
	FormXObject string
}

// FormName is the resource name of Options.FormXObject
const FormName = "Fm1"

// Page is one generated page. Each entry of Streams becomes a separate
// content stream; a page with more than one gets a Contents array.
type Page struct {
	Streams []string
}

// Build returns a PDF with one page per entry of pages. Each page draws its
// lines in font F1 at FontSize, starting at StartX,StartY and moving down
// Leading points per line.
func Build(pages ...[]string) []byte {
	doc := make([]Page, len(pages))
	for i, lines := range pages {
		doc[i] = Page{Streams: []string{Lines(FontWidths, lines...)}}
	}
	return BuildDoc(Options{}, doc...)
}

type objects struct {
	list []string
}

func (o *objects) reserve() int {
	o.list = append(o.list, "")
	return len(o.list)
}

func (o *objects) set(n int, obj string) {
	o.list[n-1] = obj
}

func (o *objects) add(obj string) int {
	n := o.reserve()
	o.set(n, obj)
	return n
}

func stream(content string) string {
	return fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content)
}

// BuildDoc returns a PDF with the given font setup and pages
func BuildDoc(opts Options, pages ...Page) []byte {
	var objs objects
	catalog := objs.reserve()
	tree := objs.reserve()
	objs.set(catalog, fmt.Sprintf("<< /Type /Catalog /Pages %d 0 R >>", tree))

	font := addFont(&objs, opts.Font)
	xobjects := ""
	if opts.FormXObject != "" {
		form := objs.add(fmt.Sprintf("<< /Type /XObject /Subtype /Form /BBox [0 0 %d %d] /Length %d >>\nstream\n%s\nendstream",
			int(PageWidth), int(PageHeight), len(opts.FormXObject), opts.FormXObject))
		xobjects = fmt.Sprintf(" /XObject << /%s %d 0 R >>", FormName, form)
	}
	resources := fmt.Sprintf("/Resources << /Font << /F1 %d 0 R >>%s >>", font, xobjects)

	var kids []string
	for _, p := range pages {
		page := objs.reserve()
		kids = append(kids, fmt.Sprintf("%d 0 R", page))

		var contents []string
		for _, s := range p.Streams {
			contents = append(contents, fmt.Sprintf("%d 0 R", objs.add(stream(s))))
		}
		contentsEntry := ""
		switch len(contents) {
		case 0:
		case 1:
			contentsEntry = "/Contents " + contents[0]
		default:
			contentsEntry = "/Contents [" + strings.Join(contents, " ") + "]"
		}
		pageResources := resources
		if opts.InheritResources {
			pageResources = ""
		}
		objs.set(page, fmt.Sprintf("<< /Type /Page /Parent %d 0 R /MediaBox [0 0 %d %d] %s %s >>",
			tree, int(PageWidth), int(PageHeight), pageResources, contentsEntry))
	}

	treeResources := ""
	if opts.InheritResources {
		treeResources = " " + resources
	}
	objs.set(tree, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d%s >>", strings.Join(kids, " "), len(pages), treeResources))

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n")
	offsets := make([]int, len(objs.list))
	for i, obj := range objs.list {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objs.list)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root %d 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs.list)+1, catalog, xref)
	return buf.Bytes()
}

const toUnicode = `/CIDInit /ProcSet findresource begin
12 dict begin
begincmap
/CIDSystemInfo << /Registry (Adobe) /Ordering (UCS) /Supplement 0 >> def
/CMapName /Adobe-Identity-UCS def
/CMapType 2 def
1 begincodespacerange
<0000> <FFFF>
endcodespacerange
1 beginbfrange
<0020> <007E> <0020>
endbfrange
endcmap
CMapName currentdict /CMapName defineresource pop
end
end`

func addFont(objs *objects, kind FontKind) int {
	switch kind {
	case FontHelvetica:
		return objs.add("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")
	case FontTimes:
		return objs.add("<< /Type /Font /Subtype /Type1 /BaseFont /Times-Roman /Encoding /WinAnsiEncoding >>")
	case FontCourier:
		return objs.add("<< /Type /Font /Subtype /Type1 /BaseFont /Courier /Encoding /WinAnsiEncoding >>")
	case FontType0:
		descriptor := objs.add("<< /Type /FontDescriptor /FontName /ABCDEF+TestSans /Flags 32 " +
			"/FontBBox [0 -200 1000 900] /ItalicAngle 0 /Ascent 900 /Descent -200 /CapHeight 700 /StemV 80 >>")
		cid := objs.add(fmt.Sprintf("<< /Type /Font /Subtype /CIDFontType2 /BaseFont /ABCDEF+TestSans "+
			"/CIDSystemInfo << /Registry (Adobe) /Ordering (Identity) /Supplement 0 >> "+
			"/FontDescriptor %d 0 R /DW 1000 /W [32 126 %d] /CIDToGIDMap /Identity >>", descriptor, int(CIDWidth)))
		cmap := objs.add(stream(toUnicode))
		return objs.add(fmt.Sprintf("<< /Type /Font /Subtype /Type0 /BaseFont /ABCDEF+TestSans /Encoding /Identity-H "+
			"/DescendantFonts [%d 0 R] /ToUnicode %d 0 R >>", cid, cmap))
	default:
		widths := strings.TrimSpace(strings.Repeat(fmt.Sprintf("%d ", int(GlyphWidth)), lastChar-firstChar+1))
		return objs.add(fmt.Sprintf(
			"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding /FirstChar %d /LastChar %d /Widths [%s] >>",
			firstChar, lastChar, widths))
	}
}

// Lines returns a content stream drawing lines in F1, one per Leading
func Lines(kind FontKind, lines ...string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "BT /F1 %d Tf %d TL %d %d Td\n", int(FontSize), int(Leading), int(StartX), int(StartY))
	for i, line := range lines {
		if i > 0 {
			b.WriteString("T*\n")
		}
		fmt.Fprintf(&b, "%s Tj\n", Str(kind, line))
	}
	b.WriteString("ET")
	return b.String()
}

// Str returns s as a string operand for F1 of the given kind
func Str(kind FontKind, s string) string {
	if kind != FontType0 {
		return "(" + escape(s) + ")"
	}
	var b strings.Builder
	b.WriteByte('<')
	for _, r := range s {
		fmt.Fprintf(&b, "%04X", r)
	}
	b.WriteByte('>')
	return b.String()
}

func escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, "(", `\(`, ")", `\)`)
	return r.Replace(s)
}

// WriteFile writes Build(pages...) into dir/name and returns the path
func WriteFile(t testing.TB, dir, name string, pages ...[]string) string {
	t.Helper()
	return write(t, dir, name, Build(pages...))
}

// WriteDoc writes BuildDoc(opts, pages...) into dir/name and returns the path
func WriteDoc(t testing.TB, dir, name string, opts Options, pages ...Page) string {
	t.Helper()
	return write(t, dir, name, BuildDoc(opts, pages...))
}

func write(t testing.TB, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatalf("failed to write test PDF: %v", err)
	}
	return path
}

// Baseline returns the baseline y of line i on a generated page
func Baseline(i int) float64 {
	return StartY - float64(i)*Leading
}
