// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package pdfengine

import "strings"

// winAnsiSpecials maps the non-Latin-1 runes WinAnsiEncoding places in 0x80..0x9F
var winAnsiSpecials = map[rune]byte{
	'€': 0x80, '‚': 0x82, '„': 0x84, '…': 0x85, '‘': 0x91, '’': 0x92,
	'“': 0x93, '”': 0x94, '•': 0x95, '–': 0x96, '—': 0x97, '™': 0x99,
}

// encodeWinAnsi converts s to single-byte WinAnsi codes. Runes with no code
// become '?'.
func encodeWinAnsi(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 32 && r <= 126, r >= 160 && r <= 255:
			out = append(out, byte(r))
		default:
			if b, ok := winAnsiSpecials[r]; ok {
				out = append(out, b)
			} else {
				out = append(out, '?')
			}
		}
	}
	return out
}

// decodeWinAnsi is the text of single byte codes in a font that carries
// no usable encoding.
func decodeWinAnsi(codes []byte) string {
	var b strings.Builder
	for _, c := range codes {
		switch {
		case c >= 32 && c <= 126, c >= 160:
			b.WriteRune(rune(c))
		default:
			for r, code := range winAnsiSpecials {
				if code == c {
					b.WriteRune(r)
				}
			}
		}
	}
	return b.String()
}

// textWidth returns the width of WinAnsi codes in Helvetica at size fs
func textWidth(codes []byte, fs float64) float64 {
	fm := coreMetrics(overlayBaseFont)
	total := 0.0
	for _, c := range codes {
		total += fm.width(int(c))
	}
	return total / 1000 * fs
}
