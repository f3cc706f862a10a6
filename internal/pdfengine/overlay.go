// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package pdfengine

import (
	"fmt"
	"strings"
)

// overlayFontName is the resource name of the Helvetica font used for
// replacement text.
const overlayFontName = "RRHelv"

const overlayBaseFont = "Helvetica"

const (
	defaultMarkFontSize = 9.0
	minMarkFontSize     = 2.0
)

func colorOp(c Color, op string) string {
	return fmt.Sprintf("%s %s %s %s", formatNumber(c.R), formatNumber(c.G), formatNumber(c.B), op)
}

// fitFontSize shrinks size until codes fit into width
func fitFontSize(codes []byte, size, width float64) float64 {
	if size <= 0 {
		size = defaultMarkFontSize
	}
	w := textWidth(codes, size)
	if w > width && w > 0 {
		size = size * width / w
	}
	return size
}

// buildOverlay renders the fills and replacement text of marks.
// It reports whether any mark needs the overlay font.
func buildOverlay(marks []RedactMark) ([]byte, bool) {
	var b strings.Builder
	usesFont := false

	b.WriteString("q\n")
	for _, m := range marks {
		r := m.Rect
		if r.IsEmpty() {
			continue
		}
		b.WriteString(colorOp(m.Fill, "rg"))
		b.WriteByte('\n')
		fmt.Fprintf(&b, "%s %s %s %s re f\n",
			formatNumber(r.X0), formatNumber(r.Y0), formatNumber(r.Width()), formatNumber(r.Height()))

		if m.Text == nil || *m.Text == "" {
			continue
		}
		codes := encodeWinAnsi(*m.Text)
		size := fitFontSize(codes, m.FontSize, r.Width())
		if size < minMarkFontSize {
			continue
		}
		usesFont = true

		// centre the text box vertically in the mark
		y := r.Y0 + (r.Height()-size*(ascentFactor+descentFactor))/2 + size*descentFactor
		b.WriteString("BT\n")
		fmt.Fprintf(&b, "/%s %s Tf\n", overlayFontName, formatNumber(size))
		b.WriteString(colorOp(m.TextColor, "rg"))
		b.WriteByte('\n')
		fmt.Fprintf(&b, "%s %s Td\n", formatNumber(r.X0), formatNumber(y))
		fmt.Fprintf(&b, "%s Tj\n", hexString(codes))
		b.WriteString("ET\n")
	}
	b.WriteString("Q\n")
	return []byte(b.String()), usesFont
}
