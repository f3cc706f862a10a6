// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package pdfengine

import (
	"fmt"
	"strconv"
	"strings"
)

type operandKind int

const (
	operandNumber operandKind = iota
	operandString
	operandName
	operandArray
	operandDict
	operandKeyword
)

// operand is one argument of a content stream operator
type operand struct {
	kind  operandKind
	num   float64
	str   []byte // decoded bytes for strings, name text for names
	elems []operand
}

// contentOp is an operator with its operands and its byte span in the source
type contentOp struct {
	operator string
	operands []operand
	start    int
	end      int
}

// contentLexer tokenizes a decoded page content stream
type contentLexer struct {
	src []byte
	pos int
}

func isWhite(c byte) bool {
	switch c {
	case 0, '\t', '\n', '\f', '\r', ' ':
		return true
	}
	return false
}

func isDelim(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

// parseContent splits src into operators. Inline images are returned as a
// single "BI" operator spanning BI through EI.
func parseContent(src []byte) ([]contentOp, error) {
	lx := &contentLexer{src: src}
	var ops []contentOp
	var operands []operand
	opStart := -1

	for {
		lx.skipWhite()
		if lx.pos >= len(lx.src) {
			break
		}
		if opStart < 0 {
			opStart = lx.pos
		}

		c := lx.src[lx.pos]
		if isDelim(c) || c == '+' || c == '-' || c == '.' || (c >= '0' && c <= '9') {
			o, err := lx.readOperand()
			if err != nil {
				return nil, err
			}
			operands = append(operands, o)
			continue
		}

		word := lx.readRegular()
		switch word {
		case "true", "false", "null":
			operands = append(operands, operand{kind: operandKeyword, str: []byte(word)})
			continue
		case "BI":
			if err := lx.skipInlineImage(); err != nil {
				return nil, err
			}
		}
		ops = append(ops, contentOp{operator: word, operands: operands, start: opStart, end: lx.pos})
		operands = nil
		opStart = -1
	}

	if len(operands) > 0 {
		return nil, fmt.Errorf("content stream ends with %d dangling operands", len(operands))
	}
	return ops, nil
}

func (lx *contentLexer) skipWhite() {
	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]
		if c == '%' {
			for lx.pos < len(lx.src) && lx.src[lx.pos] != '\n' && lx.src[lx.pos] != '\r' {
				lx.pos++
			}
			continue
		}
		if !isWhite(c) {
			return
		}
		lx.pos++
	}
}

func (lx *contentLexer) readRegular() string {
	start := lx.pos
	for lx.pos < len(lx.src) && !isWhite(lx.src[lx.pos]) && !isDelim(lx.src[lx.pos]) {
		lx.pos++
	}
	return string(lx.src[start:lx.pos])
}

func (lx *contentLexer) readOperand() (operand, error) {
	c := lx.src[lx.pos]
	switch {
	case c == '(':
		s, err := lx.readLiteralString()
		return operand{kind: operandString, str: s}, err
	case c == '<' && lx.pos+1 < len(lx.src) && lx.src[lx.pos+1] == '<':
		return lx.readDict()
	case c == '<':
		s, err := lx.readHexString()
		return operand{kind: operandString, str: s}, err
	case c == '/':
		lx.pos++
		return operand{kind: operandName, str: []byte(lx.readRegular())}, nil
	case c == '[':
		return lx.readArray()
	case c == '{' || c == '}':
		lx.pos++
		return operand{kind: operandKeyword, str: []byte{c}}, nil
	case c == ')' || c == '>' || c == ']':
		return operand{}, fmt.Errorf("unexpected %q at offset %d", c, lx.pos)
	default:
		word := lx.readRegular()
		n, err := strconv.ParseFloat(word, 64)
		if err != nil {
			return operand{}, fmt.Errorf("invalid number %q at offset %d", word, lx.pos)
		}
		return operand{kind: operandNumber, num: n}, nil
	}
}

func (lx *contentLexer) readArray() (operand, error) {
	lx.pos++ // [
	arr := operand{kind: operandArray}
	for {
		lx.skipWhite()
		if lx.pos >= len(lx.src) {
			return arr, fmt.Errorf("unterminated array")
		}
		if lx.src[lx.pos] == ']' {
			lx.pos++
			return arr, nil
		}
		c := lx.src[lx.pos]
		if !isDelim(c) && c != '+' && c != '-' && c != '.' && (c < '0' || c > '9') {
			arr.elems = append(arr.elems, operand{kind: operandKeyword, str: []byte(lx.readRegular())})
			continue
		}
		o, err := lx.readOperand()
		if err != nil {
			return arr, err
		}
		arr.elems = append(arr.elems, o)
	}
}

func (lx *contentLexer) readDict() (operand, error) {
	lx.pos += 2 // <<
	dict := operand{kind: operandDict}
	for {
		lx.skipWhite()
		if lx.pos+1 >= len(lx.src) {
			return dict, fmt.Errorf("unterminated dictionary")
		}
		if lx.src[lx.pos] == '>' && lx.src[lx.pos+1] == '>' {
			lx.pos += 2
			return dict, nil
		}
		c := lx.src[lx.pos]
		if !isDelim(c) && c != '+' && c != '-' && c != '.' && (c < '0' || c > '9') {
			dict.elems = append(dict.elems, operand{kind: operandKeyword, str: []byte(lx.readRegular())})
			continue
		}
		o, err := lx.readOperand()
		if err != nil {
			return dict, err
		}
		dict.elems = append(dict.elems, o)
	}
}

func (lx *contentLexer) readLiteralString() ([]byte, error) {
	lx.pos++ // (
	var out []byte
	depth := 1
	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]
		lx.pos++
		switch c {
		case '(':
			depth++
			out = append(out, c)
		case ')':
			depth--
			if depth == 0 {
				return out, nil
			}
			out = append(out, c)
		case '\\':
			if lx.pos >= len(lx.src) {
				return out, fmt.Errorf("unterminated escape")
			}
			e := lx.src[lx.pos]
			lx.pos++
			switch e {
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			case 'b':
				out = append(out, '\b')
			case 'f':
				out = append(out, '\f')
			case '\r':
				if lx.pos < len(lx.src) && lx.src[lx.pos] == '\n' {
					lx.pos++
				}
			case '\n':
			default:
				if e >= '0' && e <= '7' {
					v := int(e - '0')
					for i := 0; i < 2 && lx.pos < len(lx.src) && lx.src[lx.pos] >= '0' && lx.src[lx.pos] <= '7'; i++ {
						v = v*8 + int(lx.src[lx.pos]-'0')
						lx.pos++
					}
					out = append(out, byte(v))
				} else {
					out = append(out, e)
				}
			}
		default:
			out = append(out, c)
		}
	}
	return out, fmt.Errorf("unterminated string")
}

func (lx *contentLexer) readHexString() ([]byte, error) {
	lx.pos++ // <
	var digits []byte
	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]
		lx.pos++
		if c == '>' {
			if len(digits)%2 == 1 {
				digits = append(digits, '0')
			}
			out := make([]byte, len(digits)/2)
			for i := range out {
				out[i] = unhex(digits[2*i])<<4 | unhex(digits[2*i+1])
			}
			return out, nil
		}
		if isWhite(c) {
			continue
		}
		if unhex(c) == 0xff {
			return nil, fmt.Errorf("invalid hex digit %q", c)
		}
		digits = append(digits, c)
	}
	return nil, fmt.Errorf("unterminated hex string")
}

func unhex(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	}
	return 0xff
}

// skipInlineImage advances past the image data following BI up to and
// including the EI operator.
func (lx *contentLexer) skipInlineImage() error {
	for {
		lx.skipWhite()
		if lx.pos >= len(lx.src) {
			return fmt.Errorf("inline image without ID")
		}
		c := lx.src[lx.pos]
		if isDelim(c) || c == '+' || c == '-' || c == '.' || (c >= '0' && c <= '9') {
			if _, err := lx.readOperand(); err != nil {
				return fmt.Errorf("inline image dictionary: %w", err)
			}
			continue
		}
		if lx.readRegular() == "ID" {
			break
		}
	}

	i := lx.pos
	if i < len(lx.src) && isWhite(lx.src[i]) {
		i++
	}
	for ; i+1 < len(lx.src); i++ {
		if lx.src[i] == 'E' && lx.src[i+1] == 'I' && i > 0 && isWhite(lx.src[i-1]) &&
			(i+2 == len(lx.src) || isWhite(lx.src[i+2]) || isDelim(lx.src[i+2])) {
			lx.pos = i + 2
			return nil
		}
	}
	return fmt.Errorf("inline image without EI")
}

// formatNumber renders n the way content streams expect: no exponent, trimmed zeros.
func formatNumber(n float64) string {
	s := strconv.FormatFloat(n, 'f', 4, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimSuffix(strings.TrimRight(s, "0"), ".")
	}
	if s == "-0" || s == "" {
		s = "0"
	}
	return s
}

// hexString renders b as a PDF hex string
func hexString(b []byte) string {
	const digits = "0123456789ABCDEF"
	out := make([]byte, 0, 2*len(b)+2)
	out = append(out, '<')
	for _, c := range b {
		out = append(out, digits[c>>4], digits[c&0x0f])
	}
	return string(append(out, '>'))
}
