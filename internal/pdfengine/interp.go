// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package pdfengine

// matrix is a PDF transformation matrix [a b c d e f]
type matrix [6]float64

var identity = matrix{1, 0, 0, 1, 0, 0}

func translate(tx, ty float64) matrix {
	return matrix{1, 0, 0, 1, tx, ty}
}

// mul returns m × n
func (m matrix) mul(n matrix) matrix {
	return matrix{
		m[0]*n[0] + m[1]*n[2],
		m[0]*n[1] + m[1]*n[3],
		m[2]*n[0] + m[3]*n[2],
		m[2]*n[1] + m[3]*n[3],
		m[4]*n[0] + m[5]*n[2] + n[4],
		m[4]*n[1] + m[5]*n[3] + n[5],
	}
}

func (m matrix) apply(x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

type graphicsState struct {
	ctm  matrix
	font string
	size float64
	tc   float64
	tw   float64
	tz   float64
	tl   float64
	ts   float64
}

// glyph is one character code about to be painted by a text showing operator
type glyph struct {
	raw     []byte
	code    int
	font    string
	w0      float64 // glyph space width, in text space units per unit font size
	advance float64 // text space advance before horizontal scaling
	trm     matrix  // text rendering matrix at the glyph origin
}

// centre is the page space point that decides whether a region covers the glyph
func (g glyph) centre() (float64, float64) {
	return g.trm.apply(g.w0/2, (ascentFactor-descentFactor)/2)
}

// textShow is a text showing operator in TJ form. prefix re-creates the line
// move and spacing changes of the ' and " operators.
type textShow struct {
	elems  []operand
	prefix string
}

// interpreter tracks the graphics and text state of a content stream. The
// layout extractor and the scrubber share it so both see the same glyphs.
type interpreter struct {
	fonts fontResolver
	gs    graphicsState
	stack []graphicsState
	tm    matrix
	tlm   matrix
}

func newInterpreter(fonts fontResolver) *interpreter {
	return &interpreter{
		fonts: fonts,
		gs:    graphicsState{ctm: identity, tz: 100},
		tm:    identity,
		tlm:   identity,
	}
}

func nums(op contentOp) ([]float64, bool) {
	vals := make([]float64, 0, len(op.operands))
	for _, o := range op.operands {
		if o.kind != operandNumber {
			return nil, false
		}
		vals = append(vals, o.num)
	}
	return vals, true
}

func numsN(op contentOp, n int) ([]float64, bool) {
	vals, ok := nums(op)
	if !ok || len(vals) != n {
		return nil, false
	}
	return vals, true
}

// step applies op to the state and returns the text it shows, if any
func (in *interpreter) step(op contentOp) (textShow, bool) {
	switch op.operator {
	case "q":
		in.stack = append(in.stack, in.gs)
	case "Q":
		if n := len(in.stack); n > 0 {
			in.gs = in.stack[n-1]
			in.stack = in.stack[:n-1]
		}
	case "cm":
		if v, ok := numsN(op, 6); ok {
			in.gs.ctm = matrix{v[0], v[1], v[2], v[3], v[4], v[5]}.mul(in.gs.ctm)
		}
	case "BT":
		in.tm, in.tlm = identity, identity
	case "Tf":
		if len(op.operands) == 2 && op.operands[0].kind == operandName && op.operands[1].kind == operandNumber {
			in.gs.font = string(op.operands[0].str)
			in.gs.size = op.operands[1].num
		}
	case "Tc":
		if v, ok := numsN(op, 1); ok {
			in.gs.tc = v[0]
		}
	case "Tw":
		if v, ok := numsN(op, 1); ok {
			in.gs.tw = v[0]
		}
	case "Tz":
		if v, ok := numsN(op, 1); ok {
			in.gs.tz = v[0]
		}
	case "TL":
		if v, ok := numsN(op, 1); ok {
			in.gs.tl = v[0]
		}
	case "Ts":
		if v, ok := numsN(op, 1); ok {
			in.gs.ts = v[0]
		}
	case "Td":
		if v, ok := numsN(op, 2); ok {
			in.moveLine(v[0], v[1])
		}
	case "TD":
		if v, ok := numsN(op, 2); ok {
			in.gs.tl = -v[1]
			in.moveLine(v[0], v[1])
		}
	case "Tm":
		if v, ok := numsN(op, 6); ok {
			in.tm = matrix{v[0], v[1], v[2], v[3], v[4], v[5]}
			in.tlm = in.tm
		}
	case "T*":
		in.moveLine(0, -in.gs.tl)
	case "Tj":
		if len(op.operands) == 1 && op.operands[0].kind == operandString {
			return textShow{elems: op.operands}, true
		}
	case "TJ":
		if len(op.operands) == 1 && op.operands[0].kind == operandArray {
			return textShow{elems: op.operands[0].elems}, true
		}
	case "'":
		if len(op.operands) == 1 && op.operands[0].kind == operandString {
			in.moveLine(0, -in.gs.tl)
			return textShow{elems: op.operands, prefix: "T* "}, true
		}
	case "\"":
		if len(op.operands) == 3 && op.operands[2].kind == operandString &&
			op.operands[0].kind == operandNumber && op.operands[1].kind == operandNumber {
			aw, ac := op.operands[0].num, op.operands[1].num
			in.gs.tw, in.gs.tc = aw, ac
			in.moveLine(0, -in.gs.tl)
			prefix := formatNumber(aw) + " Tw " + formatNumber(ac) + " Tc T* "
			return textShow{elems: op.operands[2:], prefix: prefix}, true
		}
	}
	return textShow{}, false
}

func (in *interpreter) moveLine(tx, ty float64) {
	in.tlm = translate(tx, ty).mul(in.tlm)
	in.tm = in.tlm
}

func (in *interpreter) metrics() *FontMetrics {
	if in.fonts != nil {
		if fm := in.fonts(in.gs.font); fm != nil {
			return fm
		}
	}
	return defaultMetrics
}

// show walks the elements of a text showing operator. onAdjust receives each
// TJ number and onGlyph each glyph before the text matrix moves past it.
func (in *interpreter) show(elems []operand, onAdjust func(float64), onGlyph func(glyph)) {
	fm := in.metrics()
	fs := in.gs.size
	th := in.gs.tz / 100

	for _, el := range elems {
		switch el.kind {
		case operandNumber:
			in.tm = translate(-el.num/1000*fs*th, 0).mul(in.tm)
			if onAdjust != nil {
				onAdjust(el.num)
			}
		case operandString:
			step := 1
			if fm.TwoByte {
				step = 2
			}
			for i := 0; i < len(el.str); i += step {
				end := min(i+step, len(el.str))
				raw := el.str[i:end]
				code := 0
				for _, b := range raw {
					code = code<<8 | int(b)
				}

				w0 := fm.width(code) / 1000
				tw := 0.0
				if !fm.TwoByte && len(raw) == 1 && raw[0] == ' ' {
					tw = in.gs.tw
				}
				g := glyph{
					raw:     raw,
					code:    code,
					font:    in.gs.font,
					w0:      w0,
					advance: w0*fs + in.gs.tc + tw,
					trm:     matrix{fs * th, 0, 0, fs, 0, in.gs.ts}.mul(in.tm).mul(in.gs.ctm),
				}
				if onGlyph != nil {
					onGlyph(g)
				}
				in.tm = translate(g.advance*th, 0).mul(in.tm)
			}
		}
	}
}
