// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package pdf

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reasonable-redactor/internal/config"
	"reasonable-redactor/internal/geometry"
	"reasonable-redactor/internal/pdfengine"
	"reasonable-redactor/internal/policy"
)

func TestRegexGrammar_Match(t *testing.T) {
	g := NewRegexGrammar()
	tests := []struct {
		token  string
		ok     bool
		want   EmailMatch
		masked string
	}{
		{"alice@example.com", true, EmailMatch{Email: "alice@example.com"}, "[redacted]@example.com"},
		{"<bob@test.org>,", true, EmailMatch{Prefix: "<", Email: "bob@test.org", Suffix: ">", Trail: ","}, "<[redacted]@test.org>,"},
		{"Carol.Smith+news@Mail.Example.CO.uk;", true, EmailMatch{Email: "Carol.Smith+news@Mail.Example.CO.uk", Trail: ";"}, "[redacted]@Mail.Example.CO.uk;"},
		{"(dave@x.io)", true, EmailMatch{Email: "dave@x.io"}, "[redacted]@x.io"},
		{"mailto:erin@y.net.", true, EmailMatch{Email: "erin@y.net", Trail: "."}, "[redacted]@y.net."},
		{"user@localhost", false, EmailMatch{}, ""},
		{"@example.com", false, EmailMatch{}, ""},
		{"frank@", false, EmailMatch{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			m, ok := g.Match(tt.token)
			require.Equal(t, tt.ok, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.want, m)
			assert.Equal(t, tt.masked, m.Masked("[redacted]"))
		})
	}
}

func classifierFor(s config.Settings) *Classifier {
	return &Classifier{Grammar: NewRegexGrammar(), Policy: policy.New(s), MaskUser: s.MaskUser}
}

func word(text string, x float64) pdfengine.Word {
	return pdfengine.Word{Text: text, Rect: geometry.NewRect(x, 100, x+float64(len(text))*5, 110)}
}

func TestClassifier_Classify(t *testing.T) {
	s := config.Defaults()
	s.KeepDomains = []string{"keep.org"}
	c := classifierFor(s)

	words := []pdfengine.Word{
		word("To:", 0),
		word("alice@example.com", 20),
		word("<bob@test.org>,", 120),
		word("me@keep.org", 220),
		word("not-an-email@", 300),
		word("inside@bcc.com", 400),
	}
	exclusions := []geometry.Rect{geometry.NewRect(395, 95, 500, 115)}

	hits := c.Classify(words, exclusions)
	require.Len(t, hits, 2)

	assert.Equal(t, "[redacted]@example.com", hits[0].Replacement)
	assert.Equal(t, words[1].Rect.Expand(EmailPadding), hits[0].Rect)
	assert.Equal(t, "<[redacted]@test.org>,", hits[1].Replacement)
	assert.Equal(t, "bob@test.org", hits[1].Match.Email)
}

func TestClassifier_TouchingExclusionDoesNotSkip(t *testing.T) {
	c := classifierFor(config.Defaults())
	w := word("alice@example.com", 100)
	// shares only an edge with the word box
	edge := geometry.NewRect(0, 100, 100, 110)
	assert.Len(t, c.Classify([]pdfengine.Word{w}, []geometry.Rect{edge}), 1)
}

func TestClassifier_PersonalScope(t *testing.T) {
	s := config.Defaults()
	s.MaskScope = config.ScopePersonal
	s.PersonalEmails = []string{"Me@Home.org"}
	s.MaskUser = "xxx"
	c := classifierFor(s)

	hits := c.Classify([]pdfengine.Word{word("me@home.org", 0), word("other@home.org", 100)}, nil)
	require.Len(t, hits, 1)
	assert.Equal(t, "xxx@home.org", hits[0].Replacement)
}

// upperGrammar only accepts tokens written in capitals
type upperGrammar struct{}

func (upperGrammar) Match(token string) (EmailMatch, bool) {
	if strings.ToUpper(token) != token {
		return EmailMatch{}, false
	}
	return EmailMatch{Email: token}, true
}

func TestClassifier_CustomGrammar(t *testing.T) {
	c := classifierFor(config.Defaults())
	c.Grammar = upperGrammar{}

	hits := c.Classify([]pdfengine.Word{word("A@B", 0), word("a@b.com", 100)}, nil)
	require.Len(t, hits, 1)
	assert.Equal(t, "[redacted]@B", hits[0].Replacement)
}
