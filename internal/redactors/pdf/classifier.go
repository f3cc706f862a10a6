// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package pdf

import (
	"regexp"
	"strings"

	"reasonable-redactor/internal/geometry"
	"reasonable-redactor/internal/pdfengine"
	"reasonable-redactor/internal/policy"
)

// EmailPadding grows a token box so anti-aliased glyph edges are covered
const EmailPadding = 0.6

// EmailMatch is an email found in a word together with its framing
type EmailMatch struct {
	Prefix string // "<" or ""
	Email  string
	Suffix string // ">" or ""
	Trail  string // one of ",.;:" or ""
}

// Domain returns the part of the email after the last "@"
func (m EmailMatch) Domain() string {
	return policy.Domain(m.Email)
}

// Masked returns the token with the local part replaced by maskUser
func (m EmailMatch) Masked(maskUser string) string {
	return m.Prefix + maskUser + "@" + m.Domain() + m.Suffix + m.Trail
}

// EmailGrammar extracts an email from a single word
type EmailGrammar interface {
	Match(token string) (EmailMatch, bool)
}

const emailPattern = `(?i)(?P<prefix><)?(?P<email>[A-Za-z0-9._%+-]+@(?:[A-Za-z0-9-]+\.)+[A-Za-z]{2,})(?P<suffix>>)?(?P<trail>[,.;:]?)`

// RegexGrammar matches the first email-shaped run anywhere in a token
type RegexGrammar struct {
	re *regexp.Regexp
}

var defaultGrammar = &RegexGrammar{re: regexp.MustCompile(emailPattern)}

// NewRegexGrammar returns the default email grammar
func NewRegexGrammar() *RegexGrammar {
	return defaultGrammar
}

// Match implements EmailGrammar
func (g *RegexGrammar) Match(token string) (EmailMatch, bool) {
	sub := g.re.FindStringSubmatch(token)
	if sub == nil {
		return EmailMatch{}, false
	}
	return EmailMatch{
		Prefix: sub[g.re.SubexpIndex("prefix")],
		Email:  sub[g.re.SubexpIndex("email")],
		Suffix: sub[g.re.SubexpIndex("suffix")],
		Trail:  sub[g.re.SubexpIndex("trail")],
	}, true
}

// TokenHit is a word that must be masked
type TokenHit struct {
	Word        pdfengine.Word
	Match       EmailMatch
	Rect        geometry.Rect
	Replacement string
}

// Classifier decides which words of a page are maskable emails
type Classifier struct {
	Grammar  EmailGrammar
	Policy   *policy.Policy
	MaskUser string
}

// Classify returns the words to mask, in word order. Words overlapping an
// exclusion rect are skipped before the grammar runs.
func (c *Classifier) Classify(words []pdfengine.Word, exclusions []geometry.Rect) []TokenHit {
	grammar := c.Grammar
	if grammar == nil {
		grammar = defaultGrammar
	}

	var hits []TokenHit
	for _, w := range words {
		if w.Text == "" || !strings.Contains(w.Text, "@") {
			continue
		}
		if w.Rect.IntersectsAny(exclusions) {
			continue
		}
		m, ok := grammar.Match(w.Text)
		if !ok {
			continue
		}
		if !c.Policy.ShouldMask(m.Email) {
			continue
		}
		hits = append(hits, TokenHit{
			Word:        w,
			Match:       m,
			Rect:        w.Rect.Expand(EmailPadding),
			Replacement: m.Masked(c.MaskUser),
		})
	}
	return hits
}
