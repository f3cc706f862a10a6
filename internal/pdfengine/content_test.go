// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package pdfengine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseContent(t *testing.T) {
	src := []byte("BT /F1 12 Tf 72 700 Td (Hello \\(x\\)) Tj [(A) -120 <4243>] TJ ET % trailing\n")
	ops, err := parseContent(src)
	require.NoError(t, err)

	var names []string
	for _, op := range ops {
		names = append(names, op.operator)
	}
	assert.Equal(t, []string{"BT", "Tf", "Td", "Tj", "TJ", "ET"}, names)

	tf := ops[1]
	require.Len(t, tf.operands, 2)
	assert.Equal(t, operandName, tf.operands[0].kind)
	assert.Equal(t, "F1", string(tf.operands[0].str))
	assert.Equal(t, 12.0, tf.operands[1].num)

	tj := ops[3]
	assert.Equal(t, "Hello (x)", string(tj.operands[0].str))
	assert.Equal(t, "(Hello \\(x\\)) Tj", string(src[tj.start:tj.end]))

	arr := ops[4].operands[0]
	require.Equal(t, operandArray, arr.kind)
	require.Len(t, arr.elems, 3)
	assert.Equal(t, "A", string(arr.elems[0].str))
	assert.Equal(t, -120.0, arr.elems[1].num)
	assert.Equal(t, "BC", string(arr.elems[2].str))
}

func TestParseContent_Escapes(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"octal", `(\101\102) Tj`, "AB"},
		{"newline escape", `(a\nb) Tj`, "a\nb"},
		{"nested parens", `(a(b)c) Tj`, "a(b)c"},
		{"hex odd digits", `<41424> Tj`, "AB@"},
		{"hex with spaces", `<41 42> Tj`, "AB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ops, err := parseContent([]byte(tt.src))
			require.NoError(t, err)
			require.Len(t, ops, 1)
			assert.Equal(t, tt.want, string(ops[0].operands[0].str))
		})
	}
}

func TestParseContent_InlineImage(t *testing.T) {
	src := []byte("q BI /W 1 /H 1 /BPC 8 /CS /G ID \x01\x02 EI Q")
	ops, err := parseContent(src)
	require.NoError(t, err)
	require.Len(t, ops, 3)
	assert.Equal(t, "BI", ops[1].operator)
	assert.Equal(t, "Q", ops[2].operator)
}

func TestParseContent_InlineImageDictMentionsID(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"string value", "BI /W 1 /H 1 /Title (ID EI 7) ID \x01 EI BT (x) Tj ET"},
		{"name value", "BI /W 1 /H 1 /F /IDX ID \x01 EI BT (x) Tj ET"},
		{"array value", "BI /W 1 /H 1 /Decode [/ID 0] ID \x01 EI BT (x) Tj ET"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ops, err := parseContent([]byte(tt.src))
			require.NoError(t, err)
			require.Len(t, ops, 4)
			assert.Equal(t, []string{"BI", "BT", "Tj", "ET"}, []string{ops[0].operator, ops[1].operator, ops[2].operator, ops[3].operator})
			assert.Equal(t, "x", string(ops[2].operands[0].str))
			assert.Equal(t, strings.Index(tt.src, " BT"), ops[0].end)
		})
	}
}

func TestParseContent_InlineImageWithoutID(t *testing.T) {
	_, err := parseContent([]byte("BI /W 1 /Title (ID) /H 1"))
	assert.Error(t, err)
}

func TestParseContent_Errors(t *testing.T) {
	for _, src := range []string{"1 2", "(unterminated Tj", "[1 2 TJ"} {
		_, err := parseContent([]byte(src))
		assert.Error(t, err, src)
	}
}

func TestFormatNumber(t *testing.T) {
	tests := map[float64]string{
		0:        "0",
		1:        "1",
		-2.5:     "-2.5",
		0.123456: "0.1235",
		-0.00001: "0",
		100.10:   "100.1",
	}
	for in, want := range tests {
		assert.Equal(t, want, formatNumber(in), "%v", in)
	}
}

func TestHexString(t *testing.T) {
	assert.Equal(t, "<00AFFF>", hexString([]byte{0x00, 0xaf, 0xff}))
	assert.Equal(t, "<>", hexString(nil))
}
