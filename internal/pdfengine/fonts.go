// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package pdfengine

import (
	"strings"
	"sync"

	pdffont "github.com/pdfcpu/pdfcpu/pkg/font"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// FontMetrics holds the glyph advances of one font resource in 1/1000 em
type FontMetrics struct {
	TwoByte      bool
	FirstChar    int
	Widths       []float64
	CIDWidths    map[int]float64
	MissingWidth float64
}

func (fm *FontMetrics) width(code int) float64 {
	if fm.TwoByte {
		if w, ok := fm.CIDWidths[code]; ok {
			return w
		}
		return fm.MissingWidth
	}
	i := code - fm.FirstChar
	if i >= 0 && i < len(fm.Widths) && fm.Widths[i] > 0 {
		return fm.Widths[i]
	}
	return fm.MissingWidth
}

// defaultMetrics is used for fonts the page resources cannot describe
var defaultMetrics = &FontMetrics{MissingWidth: 500}

// fontResolver maps a font resource name to its metrics; nil means unknown
type fontResolver func(name string) *FontMetrics

// coreAliases maps common TrueType names to the standard 14 font a viewer
// substitutes for them.
var coreAliases = map[string]string{
	"Arial":                        "Helvetica",
	"ArialMT":                      "Helvetica",
	"Arial,Bold":                   "Helvetica-Bold",
	"Arial-BoldMT":                 "Helvetica-Bold",
	"Arial,Italic":                 "Helvetica-Oblique",
	"Arial-ItalicMT":               "Helvetica-Oblique",
	"Arial,BoldItalic":             "Helvetica-BoldOblique",
	"Arial-BoldItalicMT":           "Helvetica-BoldOblique",
	"TimesNewRoman":                "Times-Roman",
	"TimesNewRomanPSMT":            "Times-Roman",
	"TimesNewRoman,Bold":           "Times-Bold",
	"TimesNewRomanPS-BoldMT":       "Times-Bold",
	"TimesNewRoman,Italic":         "Times-Italic",
	"TimesNewRomanPS-ItalicMT":     "Times-Italic",
	"TimesNewRoman,BoldItalic":     "Times-BoldItalic",
	"TimesNewRomanPS-BoldItalicMT": "Times-BoldItalic",
	"CourierNew":                   "Courier",
	"CourierNewPSMT":               "Courier",
	"CourierNew,Bold":              "Courier-Bold",
	"CourierNewPS-BoldMT":          "Courier-Bold",
	"CourierNew,Italic":            "Courier-Oblique",
	"CourierNew,BoldItalic":        "Courier-BoldOblique",
}

var (
	coreMu    sync.Mutex
	coreCache = make(map[string]*FontMetrics)
)

// baseFontName strips the six letter subset tag of an embedded font name
func baseFontName(name string) string {
	if i := strings.IndexByte(name, '+'); i == 6 {
		return name[i+1:]
	}
	return name
}

// coreMetrics returns the AFM advances of a standard 14 font for the
// WinAnsi codes 32..255, or nil when name is not one of them.
func coreMetrics(name string) *FontMetrics {
	name = baseFontName(name)
	if alias, ok := coreAliases[name]; ok {
		name = alias
	}
	if !pdffont.IsCoreFont(name) {
		return nil
	}

	coreMu.Lock()
	defer coreMu.Unlock()
	if fm, ok := coreCache[name]; ok {
		return fm
	}
	fm := &FontMetrics{FirstChar: ' ', Widths: make([]float64, 256-' ')}
	for i := range fm.Widths {
		fm.Widths[i] = float64(pdffont.CharWidth(name, rune(' '+i)))
	}
	fm.MissingWidth = fm.Widths[0]
	coreCache[name] = fm
	return fm
}

// fontResolver returns a cached metrics lookup over a page font dictionary
func (d *pdfDocument) fontResolver(fonts types.Dict) fontResolver {
	cache := make(map[string]*FontMetrics)
	return func(name string) *FontMetrics {
		if fm, ok := cache[name]; ok {
			return fm
		}
		var fm *FontMetrics
		if fonts != nil {
			fm = d.readFont(fonts[name])
		}
		cache[name] = fm
		return fm
	}
}

func (d *pdfDocument) readFont(o types.Object) *FontMetrics {
	fd, err := d.ctx.DereferenceDict(o)
	if err != nil || fd == nil {
		return nil
	}

	if subtype, _ := fd["Subtype"].(types.Name); subtype == "Type0" {
		fm := &FontMetrics{TwoByte: true, CIDWidths: make(map[int]float64), MissingWidth: 1000}
		descendants, _ := d.ctx.DereferenceArray(fd["DescendantFonts"])
		if len(descendants) == 0 {
			return fm
		}
		cid, _ := d.ctx.DereferenceDict(descendants[0])
		if cid == nil {
			return fm
		}
		if dw, ok := d.number(cid["DW"]); ok {
			fm.MissingWidth = dw
		}
		w, _ := d.ctx.DereferenceArray(cid["W"])
		d.readCIDWidths(w, fm.CIDWidths)
		return fm
	}

	widths, _ := d.ctx.DereferenceArray(fd["Widths"])
	if len(widths) == 0 {
		base, _ := fd["BaseFont"].(types.Name)
		return coreMetrics(string(base))
	}

	fm := &FontMetrics{MissingWidth: defaultMetrics.MissingWidth}
	if fc, ok := d.number(fd["FirstChar"]); ok {
		fm.FirstChar = int(fc)
	}
	for _, w := range widths {
		v, _ := d.number(w)
		fm.Widths = append(fm.Widths, v)
	}
	if desc, _ := d.ctx.DereferenceDict(fd["FontDescriptor"]); desc != nil {
		if mw, ok := d.number(desc["MissingWidth"]); ok && mw > 0 {
			fm.MissingWidth = mw
		}
	}
	return fm
}

// readCIDWidths decodes a CIDFont W array: [c [w1 w2 ...]] and [cfirst clast w].
func (d *pdfDocument) readCIDWidths(w types.Array, out map[int]float64) {
	const maxRange = 0xFFFF
	for i := 0; i+1 < len(w); {
		first, ok := d.number(w[i])
		if !ok {
			return
		}
		next, err := d.ctx.Dereference(w[i+1])
		if err != nil {
			return
		}
		if arr, ok := next.(types.Array); ok {
			for j, e := range arr {
				v, _ := d.number(e)
				out[int(first)+j] = v
			}
			i += 2
			continue
		}
		if i+2 >= len(w) {
			return
		}
		last, _ := d.number(w[i+1])
		v, _ := d.number(w[i+2])
		if last-first > maxRange {
			return
		}
		for c := int(first); c <= int(last); c++ {
			out[c] = v
		}
		i += 3
	}
}
