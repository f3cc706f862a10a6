// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package pdfengine

import (
	"fmt"
	"math"

	"github.com/ledongthuc/pdf"
)

// pageText is what one pass of the interpreter reads off a page
type pageText struct {
	glyphs []pdf.Text
	forms  int
}

// textSource resolves the resources a content stream refers to. Any of the
// lookups may be nil.
type textSource struct {
	metrics  fontResolver
	encoder  func(font string) pdf.TextEncoding
	baseFont func(font string) string
	isForm   func(xobject string) bool
}

// extractText runs the same interpreter the scrubber uses over content and
// returns every glyph in page space, together with the number of Form
// XObjects the content paints.
func extractText(content []byte, src textSource) (pageText, error) {
	var out pageText
	ops, err := parseContent(content)
	if err != nil {
		return out, fmt.Errorf("failed to parse content stream: %w", err)
	}

	encoders := make(map[string]pdf.TextEncoding)
	names := make(map[string]string)
	encoderFor := func(font string) pdf.TextEncoding {
		enc, ok := encoders[font]
		if !ok && src.encoder != nil {
			enc = src.encoder(font)
			encoders[font] = enc
		}
		return enc
	}
	nameOf := func(font string) string {
		name, ok := names[font]
		if !ok {
			name = font
			if src.baseFont != nil {
				if base := src.baseFont(font); base != "" {
					name = base
				}
			}
			names[font] = name
		}
		return name
	}

	in := newInterpreter(src.metrics)
	for _, op := range ops {
		if op.operator == "Do" {
			if len(op.operands) == 1 && op.operands[0].kind == operandName &&
				src.isForm != nil && src.isForm(string(op.operands[0].str)) {
				out.forms++
			}
			continue
		}
		ts, ok := in.step(op)
		if !ok {
			continue
		}
		in.show(ts.elems, nil, func(g glyph) {
			enc := encoderFor(g.font)
			out.glyphs = append(out.glyphs, pdf.Text{
				Font:     nameOf(g.font),
				FontSize: math.Hypot(g.trm[2], g.trm[3]),
				X:        g.trm[4],
				Y:        g.trm[5],
				W:        g.w0 * math.Hypot(g.trm[0], g.trm[1]),
				S:        decodeGlyph(enc, g),
			})
		})
	}
	return out, nil
}

// decodeGlyph maps the character code of g to text. Encoders built from
// malformed CMaps panic on some inputs.
func decodeGlyph(enc pdf.TextEncoding, g glyph) (s string) {
	if enc == nil {
		return fallbackText(g)
	}
	defer func() {
		if recover() != nil {
			s = fallbackText(g)
		}
	}()
	return enc.Decode(string(g.raw))
}

func fallbackText(g glyph) string {
	if len(g.raw) == 2 {
		return string(rune(g.code))
	}
	return decodeWinAnsi(g.raw)
}
