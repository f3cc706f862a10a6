// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package pdfengine exposes PDF pages as words, lines and spans with geometry,
// accepts redaction marks and burns them into the page content.
//
// Text geometry is read with ledongthuc/pdf, the document object model is
// owned by pdfcpu. A Document and its pages must be used from one goroutine.
package pdfengine

import (
	"errors"

	"reasonable-redactor/internal/geometry"
)

// ErrUnsupportedImagePolicy is returned by ApplyRedactions for image policies
// other than ImagesNone.
var ErrUnsupportedImagePolicy = errors.New("unsupported image redaction policy")

// ImagePolicy controls what happens to images under a redaction mark
type ImagePolicy int

const (
	// ImagesNone leaves every image untouched
	ImagesNone ImagePolicy = iota
	// ImagesRemove drops images overlapping a mark (not supported)
	ImagesRemove
	// ImagesPixels blanks overlapping pixels (not supported)
	ImagesPixels
)

// String returns the string representation of the image policy
func (ip ImagePolicy) String() string {
	switch ip {
	case ImagesNone:
		return "none"
	case ImagesRemove:
		return "remove"
	case ImagesPixels:
		return "pixels"
	default:
		return "unknown"
	}
}

// BlockType distinguishes text blocks from image blocks in a TextPage
type BlockType int

const (
	// BlockText holds lines of text
	BlockText BlockType = iota
	// BlockImage marks an image region and carries no lines
	BlockImage
)

// Color is an RGB colour with components in [0,1]
type Color struct {
	R, G, B float64
}

var (
	// Black is the blackout fill colour
	Black = Color{0, 0, 0}
	// White is the clean fill colour
	White = Color{1, 1, 1}
)

// Span is a run of text sharing one font inside a line.
// Rect is the bounding box of the line the span belongs to.
type Span struct {
	Text     string
	Font     string
	FontSize float64
	Rect     geometry.Rect
}

// TextLine is one visual line of text
type TextLine struct {
	Rect  geometry.Rect
	Spans []Span
}

// Block groups consecutive lines that belong together on the page
type Block struct {
	Type  BlockType
	Rect  geometry.Rect
	Lines []TextLine
}

// TextPage is the structured text of one page in reading order
type TextPage struct {
	Width  float64
	Height float64
	Blocks []Block
	// FormXObjects counts the Form XObjects the page content paints.
	// Their text is neither extracted nor removed.
	FormXObjects int
}

// Word is a whitespace-delimited token with its bounding box
type Word struct {
	Rect  geometry.Rect
	Text  string
	Block int
	Line  int
	Index int
}

// RedactMark is a pending request to obscure a region of a page.
// A nil Text wipes the region without drawing anything back.
type RedactMark struct {
	Rect      geometry.Rect
	Fill      Color
	Text      *string
	TextColor Color
	FontSize  float64
}

// ApplyResult reports what ApplyRedactions removed from a page
type ApplyResult struct {
	Marks         int
	RemovedGlyphs int
	// EmptyMarks counts marks under which no glyph was found. Their
	// overlay is still drawn.
	EmptyMarks int
}

// SaveOptions controls document serialization
type SaveOptions struct {
	// Compress flate-encodes content streams
	Compress bool
	// Garbage drops unused and duplicate objects before writing
	Garbage bool
}

// DefaultSaveOptions compresses and collects garbage
func DefaultSaveOptions() SaveOptions {
	return SaveOptions{Compress: true, Garbage: true}
}

// Page is a handle to one page of an open document
type Page interface {
	// Number returns the 1-based page number
	Number() int

	// StructuredText returns blocks of lines of spans
	StructuredText() (*TextPage, error)

	// Words returns the word tokens of the page
	Words() ([]Word, error)

	// AddRedaction registers a mark without applying it
	AddRedaction(mark RedactMark) error

	// PendingRedactions returns the number of registered, unapplied marks
	PendingRedactions() int

	// ApplyRedactions flattens all registered marks into the page content
	ApplyRedactions(images ImagePolicy) (ApplyResult, error)
}

// Document is an open PDF document
type Document interface {
	// PageCount returns the number of pages
	PageCount() int

	// Page returns the handle for the 1-based page number n
	Page(n int) (Page, error)

	// Save writes the document to path
	Save(path string, opts SaveOptions) error

	// Close releases the underlying file handles
	Close() error
}

// Opener opens documents. It lets callers substitute the engine in tests.
type Opener interface {
	Open(path string) (Document, error)
}

// OpenerFunc adapts a function to the Opener interface
type OpenerFunc func(path string) (Document, error)

// Open calls f(path)
func (f OpenerFunc) Open(path string) (Document, error) {
	return f(path)
}
