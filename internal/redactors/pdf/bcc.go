// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package pdf

import (
	"strings"

	"reasonable-redactor/internal/geometry"
)

const bccPrefix = "bcc:"

// headerPrefixes are the normalized labels that end a Bcc block
var headerPrefixes = []string{
	"to:", "cc:", "bcc:", "from:", "subject:", "date:", "sent:", "reply-to:", "attachments:",
}

func isHeader(normalized string) bool {
	for _, p := range headerPrefixes {
		if strings.HasPrefix(normalized, p) {
			return true
		}
	}
	return false
}

// BccBlock is a Bcc header line plus the wrapped lines of its value
type BccBlock struct {
	Header        geometry.Rect
	Continuations []geometry.Rect
}

// Rects returns the header rect followed by the continuation rects
func (b BccBlock) Rects() []geometry.Rect {
	return append([]geometry.Rect{b.Header}, b.Continuations...)
}

// BccBlocks are the blocks found on one page
type BccBlocks []BccBlock

// Rects flattens all blocks in page order
func (bs BccBlocks) Rects() []geometry.Rect {
	var out []geometry.Rect
	for _, b := range bs {
		out = append(out, b.Rects()...)
	}
	return out
}

type scanState int

const (
	outsideHeader scanState = iota
	insideBcc
)

// LocateBccBlocks scans lines for Bcc headers. A block collects the lines
// following its header until another header line or the end of the text
// block. The terminating line is scanned again, so it can open a new block.
func LocateBccBlocks(lines []Line) BccBlocks {
	var blocks BccBlocks
	state := outsideHeader
	var current *BccBlock

	closeBlock := func() {
		if current != nil {
			blocks = append(blocks, *current)
		}
		current = nil
		state = outsideHeader
	}

	for i, line := range lines {
		if state == insideBcc {
			if isHeader(line.Text) || line.Block != lines[i-1].Block {
				closeBlock()
			} else {
				current.Continuations = append(current.Continuations, line.Rect)
				continue
			}
		}

		if strings.HasPrefix(line.Text, bccPrefix) {
			current = &BccBlock{Header: line.Rect}
			state = insideBcc
		}
	}
	closeBlock()
	return blocks
}
