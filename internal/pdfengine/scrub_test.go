// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package pdfengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reasonable-redactor/internal/geometry"
)

// testFonts knows F1 with 'a' = 500 and 'b' = 600 units
func testFonts(name string) *FontMetrics {
	if name != "F1" {
		return nil
	}
	return &FontMetrics{FirstChar: 'a', Widths: []float64{500, 600}, MissingWidth: 250}
}

func TestScrubContent(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		region  geometry.Rect
		want    string
		removed int
	}{
		{
			name:    "first glyph of Tj",
			src:     "BT /F1 10 Tf 100 700 Td (ab) Tj ET",
			region:  geometry.NewRect(101, 695, 104, 710),
			want:    "BT /F1 10 Tf 100 700 Td [-500 <62>] TJ ET",
			removed: 1,
		},
		{
			name:    "kerned TJ merges displacements",
			src:     "BT /F1 10 Tf 100 700 Td [(a) -200 (b)] TJ ET",
			region:  geometry.NewRect(109, 695, 111, 710),
			want:    "BT /F1 10 Tf 100 700 Td [<61> -800] TJ ET",
			removed: 1,
		},
		{
			name:    "cm applies and Q restores",
			src:     "q 2 0 0 2 0 0 cm BT /F1 10 Tf 50 350 Td (a) Tj ET Q BT /F1 10 Tf 50 350 Td (a) Tj ET",
			region:  geometry.NewRect(104, 700, 106, 710),
			want:    "q 2 0 0 2 0 0 cm BT /F1 10 Tf 50 350 Td [-500] TJ ET Q BT /F1 10 Tf 50 350 Td (a) Tj ET",
			removed: 1,
		},
		{
			name:    "quote moves to next line",
			src:     "BT /F1 10 Tf 14 TL 100 714 Td (a) ' ET",
			region:  geometry.NewRect(101, 695, 104, 710),
			want:    "BT /F1 10 Tf 14 TL 100 714 Td T* [-500] TJ ET",
			removed: 1,
		},
		{
			name:    "word spacing shifts later glyphs",
			src:     "BT /F1 10 Tf 5 Tw 100 700 Td (a b) Tj ET",
			region:  geometry.NewRect(114, 695, 117, 710),
			want:    "BT /F1 10 Tf 5 Tw 100 700 Td [<6120> -600] TJ ET",
			removed: 1,
		},
		{
			name:    "unknown font uses default widths",
			src:     "BT /F9 10 Tf 100 700 Td (xx) Tj ET",
			region:  geometry.NewRect(106, 695, 109, 710),
			want:    "BT /F9 10 Tf 100 700 Td [<78> -500] TJ ET",
			removed: 1,
		},
		{
			name:    "no glyph under region",
			src:     "BT /F1 10 Tf 100 700 Td (ab) Tj ET",
			region:  geometry.NewRect(300, 300, 310, 310),
			want:    "BT /F1 10 Tf 100 700 Td (ab) Tj ET",
			removed: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := scrubContent([]byte(tt.src), []geometry.Rect{tt.region}, testFonts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(res.content))
			assert.Equal(t, tt.removed, res.removed)
			assert.Equal(t, []int{tt.removed}, res.perRegion)
		})
	}
}

func TestScrubContent_NoRegions(t *testing.T) {
	src := []byte("this is not even a valid stream (")
	res, err := scrubContent(src, nil, testFonts)
	require.NoError(t, err)
	assert.Equal(t, src, res.content)
	assert.Zero(t, res.removed)
	assert.Empty(t, res.perRegion)
}

func TestScrubContent_CountsPerRegion(t *testing.T) {
	src := []byte("BT /F1 10 Tf 100 700 Td (aab) Tj ET")
	regions := []geometry.Rect{
		geometry.NewRect(101, 695, 104, 710), // first a
		geometry.NewRect(101, 695, 109, 710), // both a
		geometry.NewRect(300, 300, 310, 310), // nothing
	}
	res, err := scrubContent(src, regions, testFonts)
	require.NoError(t, err)
	assert.Equal(t, 2, res.removed)
	assert.Equal(t, []int{1, 2, 0}, res.perRegion)
	assert.Equal(t, "BT /F1 10 Tf 100 700 Td [-1000 <62>] TJ ET", string(res.content))
}

func TestScrubContent_ParseError(t *testing.T) {
	_, err := scrubContent([]byte("BT (a Tj"), []geometry.Rect{geometry.NewRect(0, 0, 10, 10)}, testFonts)
	assert.Error(t, err)
}

func TestFontMetricsWidth(t *testing.T) {
	fm := &FontMetrics{FirstChar: 32, Widths: []float64{278, 0}, MissingWidth: 400}
	assert.Equal(t, 278.0, fm.width(32))
	assert.Equal(t, 400.0, fm.width(33), "zero width falls back")
	assert.Equal(t, 400.0, fm.width(10))

	cid := &FontMetrics{TwoByte: true, CIDWidths: map[int]float64{0x0102: 700}, MissingWidth: 1000}
	assert.Equal(t, 700.0, cid.width(0x0102))
	assert.Equal(t, 1000.0, cid.width(5))
}

func TestCoreMetrics(t *testing.T) {
	tests := []struct {
		name  string
		font  string
		space float64
		a     float64
	}{
		{"helvetica", "Helvetica", 278, 556},
		{"subset prefix", "ABCDEF+Helvetica", 278, 556},
		{"arial alias", "ArialMT", 278, 556},
		{"times", "Times-Roman", 250, 444},
		{"courier", "Courier", 600, 600},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fm := coreMetrics(tt.font)
			require.NotNil(t, fm)
			assert.Equal(t, tt.space, fm.width(' '))
			assert.Equal(t, tt.a, fm.width('a'))
		})
	}
	assert.Nil(t, coreMetrics("Garamond"))
}

func TestMatrixMul(t *testing.T) {
	m := translate(10, 20).mul(matrix{2, 0, 0, 2, 0, 0})
	x, y := m.apply(1, 1)
	assert.Equal(t, 22.0, x)
	assert.Equal(t, 42.0, y)
	assert.Equal(t, identity, identity.mul(identity))
}
