// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package pdf

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	lpdf "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reasonable-redactor/internal/config"
	"reasonable-redactor/internal/pdfengine"
	"reasonable-redactor/internal/pdfengine/pdftest"
	"reasonable-redactor/internal/redactors"
)

var _ redactors.Redactor = (*DocumentRedactor)(nil)

func fakeOpener(doc *fakeDocument, err error) pdfengine.Opener {
	return pdfengine.OpenerFunc(func(string) (pdfengine.Document, error) {
		if err != nil {
			return nil, err
		}
		return doc, nil
	})
}

func TestDocumentRedactor_CountsFlattenedPages(t *testing.T) {
	doc := &fakeDocument{pages: []*fakePage{
		headerPage(),
		newFakePage(2, []string{"nothing here"}),
		newFakePage(3, []string{"ping alice@example.com"}),
	}}
	out := filepath.Join(t.TempDir(), "out", "a-redacted.pdf")

	dr := NewDocumentRedactor(config.Defaults(), fakeOpener(doc, nil), nil, nil)
	res, err := dr.RedactDocument("in/a.pdf", out)
	require.NoError(t, err)

	assert.Equal(t, 6, res.Hits)
	assert.Equal(t, 2, res.Pages)
	assert.Equal(t, 3, res.PageCount)
	require.Len(t, res.PageHits, 2)
	assert.Equal(t, 1, res.PageHits[0].Page)
	assert.Equal(t, 3, res.PageHits[1].Page)
	assert.Equal(t, out, res.RedactedFilePath)
	assert.True(t, doc.closed)
	assert.FileExists(t, out)
}

func TestDocumentRedactor_OpenFailure(t *testing.T) {
	dir := t.TempDir()
	dr := NewDocumentRedactor(config.Defaults(), fakeOpener(nil, errors.New("not a PDF")), nil, nil)

	_, err := dr.RedactDocument("in/broken.pdf", filepath.Join(dir, "broken-redacted.pdf"))
	var re *redactors.RedactionError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, redactors.ErrorDocumentOpen, re.Type)
	assert.Equal(t, "in/broken.pdf", re.FilePath)

	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries)
}

func TestDocumentRedactor_PageFailureWritesNothing(t *testing.T) {
	bad := newFakePage(1, []string{"alice@example.com"})
	bad.applyErr = errors.New("cannot flatten")
	doc := &fakeDocument{pages: []*fakePage{bad}}
	dir := t.TempDir()

	dr := NewDocumentRedactor(config.Defaults(), fakeOpener(doc, nil), nil, nil)
	_, err := dr.RedactDocument("in/a.pdf", filepath.Join(dir, "a-redacted.pdf"))

	var re *redactors.RedactionError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, redactors.ErrorDocumentProcessing, re.Type)
	assert.True(t, doc.closed)
	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries)
}

func TestDocumentRedactor_MarkWithoutTextWritesNothing(t *testing.T) {
	page := newFakePage(1, []string{"alice@example.com"})
	page.emptyMarks = 1
	doc := &fakeDocument{pages: []*fakePage{page}}
	dir := t.TempDir()

	dr := NewDocumentRedactor(config.Defaults(), fakeOpener(doc, nil), nil, nil)
	_, err := dr.RedactDocument("in/a.pdf", filepath.Join(dir, "a-redacted.pdf"))

	var re *redactors.RedactionError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, redactors.ErrorDocumentProcessing, re.Type)
	assert.ErrorIs(t, err, ErrMarkWithoutText)
	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries)
}

func TestDocumentRedactor_CollectsWarnings(t *testing.T) {
	withForm := newFakePage(2, []string{"nothing here"})
	withForm.tp.FormXObjects = 1
	doc := &fakeDocument{pages: []*fakePage{newFakePage(1, []string{"ping alice@example.com"}), withForm}}

	dr := NewDocumentRedactor(config.Defaults(), fakeOpener(doc, nil), nil, nil)
	res, err := dr.RedactDocument("in/a.pdf", filepath.Join(t.TempDir(), "a-redacted.pdf"))
	require.NoError(t, err)
	assert.Equal(t, []string{"page 2 draws 1 form XObject(s); text inside them was not scanned"}, res.Warnings)
	assert.Equal(t, 1, res.Hits)
}

func TestDocumentRedactor_SaveFailureLeavesNoPartialFile(t *testing.T) {
	doc := &fakeDocument{
		pages:   []*fakePage{newFakePage(1, []string{"alice@example.com"})},
		saveErr: errors.New("disk full"),
	}
	dir := t.TempDir()
	om, err := redactors.NewOutputManager(dir, nil)
	require.NoError(t, err)

	dr := NewDocumentRedactor(config.Defaults(), fakeOpener(doc, nil), om, nil)
	_, err = dr.RedactDocument("in/a.pdf", om.PathFor("in/a.pdf", "20240101-000000"))

	var re *redactors.RedactionError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, redactors.ErrorSave, re.Type)
	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries, "temporary output must be removed")
}

func TestDocumentRedactor_RealPDF(t *testing.T) {
	dir := t.TempDir()
	in := pdftest.WriteFile(t, dir, "mail.pdf",
		[]string{
			"From: alice@example.com",
			"To: Bob <bob@test.org>,",
			"Bcc: hidden@secret.org,",
			"other@secret.org",
			"Subject: lunch",
		},
		[]string{"No addresses on this page"},
	)
	out := filepath.Join(dir, "out", "mail-redacted.pdf")

	dr := NewDocumentRedactor(config.Defaults(), nil, nil, nil)
	res, err := dr.RedactDocument(in, out)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Hits, "two Bcc lines and two emails")
	assert.Equal(t, 1, res.Pages)
	assert.Equal(t, 2, res.PageCount)

	ctx, err := api.ReadContextFile(out)
	require.NoError(t, err)
	r, err := pdfcpu.ExtractPageContent(ctx, 1)
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	content := string(data)

	for _, gone := range []string{"alice", "bob@", "hidden", "other"} {
		assert.NotContains(t, content, gone)
		assert.NotContains(t, content, hexOf(gone))
	}
	assert.Contains(t, content, hexOf("Bcc: [redacted]"))
	assert.Contains(t, content, hexOf("[redacted]@example.com"))
	assert.Contains(t, content, hexOf("<[redacted]@test.org>,"))
	assert.Contains(t, content, "(Subject: lunch) Tj")

	r2, err := pdfcpu.ExtractPageContent(ctx, 2)
	require.NoError(t, err)
	data2, err := io.ReadAll(r2)
	require.NoError(t, err)
	assert.Contains(t, string(data2), "(No addresses on this page) Tj")
}

func TestDocumentRedactor_RealPDFEmptyPersonalScopeTwice(t *testing.T) {
	dir := t.TempDir()
	in := pdftest.WriteFile(t, dir, "mail.pdf", []string{"From: alice@example.com", "To: bob@test.org"})

	s := config.Defaults()
	s.MaskScope = config.ScopePersonal
	dr := NewDocumentRedactor(s, nil, nil, nil)

	first := filepath.Join(dir, "pass1.pdf")
	res, err := dr.RedactDocument(in, first)
	require.NoError(t, err)
	assert.Zero(t, res.Hits)
	assert.Zero(t, res.Pages)

	res, err = dr.RedactDocument(first, filepath.Join(dir, "pass2.pdf"))
	require.NoError(t, err)
	assert.Zero(t, res.Hits)
	assert.Zero(t, res.Pages)
}

// pageText returns the words of page n of path joined by spaces, and the
// plain text of the whole file as the ledongthuc reader sees it.
func pageText(t *testing.T, path string, n int) (string, string) {
	t.Helper()
	doc, err := pdfengine.Open(path)
	require.NoError(t, err)
	defer doc.Close()
	page, err := doc.Page(n)
	require.NoError(t, err)
	words, err := page.Words()
	require.NoError(t, err)
	var texts []string
	for _, w := range words {
		texts = append(texts, w.Text)
	}

	f, r, err := lpdf.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rd, err := r.GetPlainText()
	require.NoError(t, err)
	plain, err := io.ReadAll(rd)
	require.NoError(t, err)
	return strings.Join(texts, " "), string(plain)
}

func TestDocumentRedactor_RealPDFStreamsAndStandardFont(t *testing.T) {
	dir := t.TempDir()
	in := pdftest.WriteDoc(t, dir, "mail.pdf", pdftest.Options{Font: pdftest.FontHelvetica}, pdftest.Page{Streams: []string{
		"BT /F1 10 Tf 14 TL 72 700 Td [(ali) -20 (ce@example.com)] TJ",
		"T* (Bcc: hidden@secret.org) Tj ET",
	}})
	out := filepath.Join(dir, "out", "mail-redacted.pdf")

	res, err := NewDocumentRedactor(config.Defaults(), nil, nil, nil).RedactDocument(in, out)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Hits, "the Bcc line and the email above it")

	words, plain := pageText(t, out, 1)
	for _, gone := range []string{"alice", "hidden"} {
		assert.NotContains(t, words, gone)
		assert.NotContains(t, plain, gone)
	}
	for _, kept := range []string{"[redacted]@example.com", "Bcc: [redacted]"} {
		assert.Contains(t, plain, kept)
	}
}

func TestDocumentRedactor_RealPDFType0Font(t *testing.T) {
	dir := t.TempDir()
	in := pdftest.WriteDoc(t, dir, "mail.pdf", pdftest.Options{Font: pdftest.FontType0}, pdftest.Page{Streams: []string{
		pdftest.Lines(pdftest.FontType0, "From: alice@example.com", "Subject: lunch"),
	}})
	out := filepath.Join(dir, "mail-redacted.pdf")

	res, err := NewDocumentRedactor(config.Defaults(), nil, nil, nil).RedactDocument(in, out)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Hits)

	words, plain := pageText(t, out, 1)
	assert.NotContains(t, words, "alice")
	assert.NotContains(t, plain, "alice")
	assert.Contains(t, words, "Subject: lunch")
	assert.Contains(t, plain, "[redacted]@example.com")
}

func hexOf(s string) string {
	const digits = "0123456789ABCDEF"
	out := []byte{'<'}
	for i := 0; i < len(s); i++ {
		out = append(out, digits[s[i]>>4], digits[s[i]&0x0f])
	}
	return string(append(out, '>'))
}
