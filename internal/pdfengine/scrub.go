// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package pdfengine

import (
	"bytes"
	"fmt"

	"reasonable-redactor/internal/geometry"
)

// scrubResult is a rewritten content stream and what was taken out of it
type scrubResult struct {
	content []byte
	removed int
	// perRegion counts the glyphs removed under each region. A glyph under
	// two overlapping regions counts for both.
	perRegion []int
}

// scrubber removes glyphs whose centre falls in one of the regions,
// replacing them with an equivalent TJ displacement.
type scrubber struct {
	*interpreter
	regions   []geometry.Rect
	perRegion []int
	removed   int
}

// scrubContent returns src with every glyph under a region removed.
// Operators that draw no text are copied verbatim.
func scrubContent(src []byte, regions []geometry.Rect, fonts fontResolver) (scrubResult, error) {
	res := scrubResult{content: src, perRegion: make([]int, len(regions))}
	if len(regions) == 0 {
		return res, nil
	}
	ops, err := parseContent(src)
	if err != nil {
		return res, fmt.Errorf("failed to parse content stream: %w", err)
	}

	s := &scrubber{
		interpreter: newInterpreter(fonts),
		regions:     regions,
		perRegion:   res.perRegion,
	}

	var out bytes.Buffer
	last := 0
	for _, op := range ops {
		ts, ok := s.step(op)
		if !ok {
			continue
		}
		replacement, changed := s.rewrite(ts)
		if !changed {
			continue
		}
		out.Write(src[last:op.start])
		out.WriteString(replacement)
		last = op.end
	}
	if s.removed == 0 {
		return res, nil
	}
	out.Write(src[last:])
	res.content = out.Bytes()
	res.removed = s.removed
	return res, nil
}

// tjItem is one element of a rewritten TJ array
type tjItem struct {
	glyphs []byte
	adjust float64
}

// rewrite shows ts and reports a replacement TJ when at least one glyph
// lands inside a region.
func (s *scrubber) rewrite(ts textShow) (string, bool) {
	fs := s.gs.size
	var items []tjItem
	removedHere := 0

	keep := func(code []byte) {
		if n := len(items); n > 0 && items[n-1].glyphs != nil {
			items[n-1].glyphs = append(items[n-1].glyphs, code...)
			return
		}
		items = append(items, tjItem{glyphs: append([]byte{}, code...)})
	}
	shift := func(n float64) {
		if n == 0 {
			return
		}
		if k := len(items); k > 0 && items[k-1].glyphs == nil {
			items[k-1].adjust += n
			return
		}
		items = append(items, tjItem{adjust: n})
	}

	s.show(ts.elems, shift, func(g glyph) {
		if fs != 0 && s.covered(g) {
			removedHere++
			shift(-g.advance * 1000 / fs)
			return
		}
		keep(g.raw)
	})

	if removedHere == 0 {
		return "", false
	}
	s.removed += removedHere

	var b bytes.Buffer
	b.WriteString(ts.prefix)
	b.WriteByte('[')
	for i, it := range items {
		if i > 0 {
			b.WriteByte(' ')
		}
		if it.glyphs != nil {
			b.WriteString(hexString(it.glyphs))
		} else {
			b.WriteString(formatNumber(it.adjust))
		}
	}
	b.WriteString("] TJ")
	return b.String(), true
}

// covered reports whether the centre of g lies in a region, counting it
// against every region that contains it.
func (s *scrubber) covered(g glyph) bool {
	x, y := g.centre()
	hit := false
	for i, r := range s.regions {
		if r.Contains(x, y) {
			s.perRegion[i]++
			hit = true
		}
	}
	return hit
}
