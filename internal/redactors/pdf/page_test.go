// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package pdf

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reasonable-redactor/internal/config"
	"reasonable-redactor/internal/pdfengine"
)

func headerPage() *fakePage {
	return newFakePage(1, []string{
		"From: Sender <sender@example.com>",
		"To: carol@foo.com",
		"Bcc: one@a.com, two@b.com,",
		"three@c.com,",
		"four@d.com",
		"Subject: hello",
	})
}

func markTexts(marks []pdfengine.RedactMark) []string {
	var out []string
	for _, m := range marks {
		if m.Text == nil {
			out = append(out, "<wipe>")
		} else {
			out = append(out, *m.Text)
		}
	}
	return out
}

func TestPageRedactor_BccBlockAndEmails(t *testing.T) {
	page := headerPage()
	pr := NewPageRedactor(config.Defaults(), nil)

	outcome, err := pr.Redact(page)
	require.NoError(t, err)

	assert.Equal(t, PageFlattened, outcome.State)
	assert.Equal(t, 3, outcome.BccRects)
	assert.Equal(t, 2, outcome.Emails)
	assert.Equal(t, 5, outcome.Hits())
	assert.Equal(t, 1, page.applies)
	assert.Zero(t, page.PendingRedactions())

	assert.Equal(t, []string{
		"Bcc: [redacted]",
		"<wipe>",
		"<wipe>",
		"<[redacted]@example.com>",
		"[redacted]@foo.com",
	}, markTexts(page.applied))

	lines := ReconstructLines(page.tp)
	assert.Equal(t, lines[2].Rect, page.applied[0].Rect)
	assert.Equal(t, lines[3].Rect, page.applied[1].Rect)
	assert.Equal(t, lines[4].Rect, page.applied[2].Rect)
}

func TestPageRedactor_EmailsInsideBccWhenNotSkipped(t *testing.T) {
	s := config.Defaults()
	s.SkipEmailMaskInsideBcc = false
	page := headerPage()

	outcome, err := NewPageRedactor(s, nil).Redact(page)
	require.NoError(t, err)
	assert.Equal(t, 3, outcome.BccRects)
	assert.Equal(t, 6, outcome.Emails, "sender, carol and the four Bcc recipients")
}

func TestPageRedactor_SkipInsideBcc(t *testing.T) {
	page := headerPage()
	_, err := NewPageRedactor(config.Defaults(), nil).Redact(page)
	require.NoError(t, err)

	bcc := LocateBccBlocks(ReconstructLines(page.tp)).Rects()
	for _, m := range page.applied {
		if m.Text == nil || *m.Text == "Bcc: [redacted]" {
			continue
		}
		assert.False(t, m.Rect.IntersectsAny(bcc), "email mark %q inside Bcc block", *m.Text)
	}
}

func TestPageRedactor_BlackoutColours(t *testing.T) {
	s := config.Defaults()
	s.Style = config.StyleBlackout
	page := newFakePage(1, []string{"Reach me at alice@example.com"})

	_, err := NewPageRedactor(s, nil).Redact(page)
	require.NoError(t, err)
	require.Len(t, page.applied, 1)
	assert.Equal(t, pdfengine.Black, page.applied[0].Fill)
	assert.Equal(t, pdfengine.White, page.applied[0].TextColor)
	assert.Equal(t, float64(MarkFontSize), page.applied[0].FontSize)
}

func TestPageRedactor_UntouchedPage(t *testing.T) {
	page := newFakePage(3, []string{"Just a paragraph", "with no addresses at all"})

	outcome, err := NewPageRedactor(config.Defaults(), nil).Redact(page)
	require.NoError(t, err)
	assert.Equal(t, PageScanning, outcome.State)
	assert.Equal(t, 3, outcome.Page)
	assert.Zero(t, outcome.Hits())
	assert.Zero(t, page.applies, "a page without marks must not be flattened")
}

func TestPageRedactor_EmptyPersonalScopeIsNoOp(t *testing.T) {
	s := config.Defaults()
	s.MaskScope = config.ScopePersonal
	page := newFakePage(1, []string{"From: alice@example.com", "To: bob@test.org"})

	pr := NewPageRedactor(s, nil)
	for pass := 0; pass < 2; pass++ {
		outcome, err := pr.Redact(page)
		require.NoError(t, err)
		assert.Zero(t, outcome.Hits(), "pass %d", pass)
	}
	assert.Zero(t, page.applies)
}

func TestPageRedactor_ApplyFailure(t *testing.T) {
	page := newFakePage(2, []string{"alice@example.com"})
	page.applyErr = errors.New("broken content stream")

	outcome, err := NewPageRedactor(config.Defaults(), nil).Redact(page)
	require.Error(t, err)
	assert.ErrorIs(t, err, page.applyErr)
	assert.Equal(t, PageMarked, outcome.State)
}

func TestPageRedactor_MarkWithoutTextFailsPage(t *testing.T) {
	page := newFakePage(4, []string{"Reach me at alice@example.com"})
	page.emptyMarks = 1

	outcome, err := NewPageRedactor(config.Defaults(), nil).Redact(page)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMarkWithoutText)
	assert.Contains(t, err.Error(), "page 4: 1 of 1 marks")
	assert.Equal(t, PageMarked, outcome.State)
	assert.Equal(t, 1, page.applies)
}

func TestPageRedactor_RemovedGlyphs(t *testing.T) {
	page := newFakePage(1, []string{"Reach me at alice@example.com"})

	outcome, err := NewPageRedactor(config.Defaults(), nil).Redact(page)
	require.NoError(t, err)
	assert.Equal(t, PageFlattened, outcome.State)
	assert.Positive(t, outcome.RemovedGlyphs)
}

func TestPageRedactor_FormXObjectWarning(t *testing.T) {
	page := newFakePage(2, []string{"Reach me at alice@example.com"})
	page.tp.FormXObjects = 3

	outcome, err := NewPageRedactor(config.Defaults(), nil).Redact(page)
	require.NoError(t, err)
	assert.Equal(t, 3, outcome.FormXObjects)
	assert.Equal(t, []string{"page 2 draws 3 form XObject(s); text inside them was not scanned"}, outcome.Warnings())

	clean := newFakePage(1, []string{"nothing here"})
	outcome, err = NewPageRedactor(config.Defaults(), nil).Redact(clean)
	require.NoError(t, err)
	assert.Empty(t, outcome.Warnings())
}

func TestStamper(t *testing.T) {
	page := newFakePage(1)
	st := NewStamper(config.StyleClean)
	rect := lineRect(100, 0, 4)

	require.NoError(t, st.Stamp(page, rect, nil))
	text := "hi"
	require.NoError(t, st.Stamp(page, rect, &text))
	text = "changed"

	require.Len(t, page.pending, 2)
	assert.Nil(t, page.pending[0].Text)
	assert.Equal(t, pdfengine.White, page.pending[0].Fill)
	assert.Equal(t, "hi", *page.pending[1].Text, "mark keeps its own copy of the text")
	assert.Equal(t, pdfengine.Black, page.pending[1].TextColor)
}
