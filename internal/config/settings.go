// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import "strings"

// Scope selects which email addresses are candidates for masking
type Scope string

const (
	// ScopeAll masks every email address that is not exempted
	ScopeAll Scope = "all"
	// ScopePersonal masks only the addresses listed in PersonalEmails
	ScopePersonal Scope = "personal"
)

// Style selects the fill and text colours of redaction marks
type Style string

const (
	// StyleClean draws white boxes with black replacement text
	StyleClean Style = "clean"
	// StyleBlackout draws black boxes with white replacement text
	StyleBlackout Style = "blackout"
)

// Settings is the per-run redaction configuration. A Settings value is built
// once at startup and shared read-only by every document in the batch.
type Settings struct {
	MaskScope              Scope    `json:"mask_scope" yaml:"mask_scope"`
	PersonalEmails         []string `json:"personal_emails" yaml:"personal_emails"`
	KeepEmails             []string `json:"keep_emails" yaml:"keep_emails"`
	KeepDomains            []string `json:"keep_domains" yaml:"keep_domains"`
	MaskUser               string   `json:"mask_user" yaml:"mask_user"`
	Style                  Style    `json:"style" yaml:"style"`
	SkipEmailMaskInsideBcc bool     `json:"skip_email_mask_inside_bcc" yaml:"skip_email_mask_inside_bcc"`
	BccReplacement         string   `json:"bcc_replacement" yaml:"bcc_replacement"`
}

// Defaults returns the built-in settings. Every call returns a fresh value so
// callers can never modify the defaults seen by others.
func Defaults() Settings {
	return Settings{
		MaskScope:              ScopeAll,
		PersonalEmails:         []string{},
		KeepEmails:             []string{},
		KeepDomains:            []string{},
		MaskUser:               "[redacted]",
		Style:                  StyleClean,
		SkipEmailMaskInsideBcc: true,
		BccReplacement:         "Bcc: [redacted]",
	}
}

// Overrides holds the keys present in a settings file. A nil field means the
// key was absent and the base value is kept.
type Overrides struct {
	MaskScope              *string   `json:"mask_scope" yaml:"mask_scope"`
	PersonalEmails         *[]string `json:"personal_emails" yaml:"personal_emails"`
	KeepEmails             *[]string `json:"keep_emails" yaml:"keep_emails"`
	KeepDomains            *[]string `json:"keep_domains" yaml:"keep_domains"`
	MaskUser               *string   `json:"mask_user" yaml:"mask_user"`
	Style                  *string   `json:"style" yaml:"style"`
	SkipEmailMaskInsideBcc *bool     `json:"skip_email_mask_inside_bcc" yaml:"skip_email_mask_inside_bcc"`
	BccReplacement         *string   `json:"bcc_replacement" yaml:"bcc_replacement"`
}

// Merge returns a copy of s with every present override applied.
func (s Settings) Merge(o Overrides) Settings {
	out := s.Clone()
	if o.MaskScope != nil {
		out.MaskScope = Scope(*o.MaskScope)
	}
	if o.PersonalEmails != nil {
		out.PersonalEmails = cloneList(*o.PersonalEmails)
	}
	if o.KeepEmails != nil {
		out.KeepEmails = cloneList(*o.KeepEmails)
	}
	if o.KeepDomains != nil {
		out.KeepDomains = cloneList(*o.KeepDomains)
	}
	if o.MaskUser != nil {
		out.MaskUser = *o.MaskUser
	}
	if o.Style != nil {
		out.Style = Style(*o.Style)
	}
	if o.SkipEmailMaskInsideBcc != nil {
		out.SkipEmailMaskInsideBcc = *o.SkipEmailMaskInsideBcc
	}
	if o.BccReplacement != nil {
		out.BccReplacement = *o.BccReplacement
	}
	return out.Normalize()
}

// Normalize maps unrecognised scope and style values onto their defaults and
// replaces nil lists with empty ones.
func (s Settings) Normalize() Settings {
	if Scope(strings.ToLower(string(s.MaskScope))) == ScopePersonal {
		s.MaskScope = ScopePersonal
	} else {
		s.MaskScope = ScopeAll
	}
	if Style(strings.ToLower(string(s.Style))) == StyleBlackout {
		s.Style = StyleBlackout
	} else {
		s.Style = StyleClean
	}
	if s.PersonalEmails == nil {
		s.PersonalEmails = []string{}
	}
	if s.KeepEmails == nil {
		s.KeepEmails = []string{}
	}
	if s.KeepDomains == nil {
		s.KeepDomains = []string{}
	}
	return s
}

// Clone returns a deep copy of s.
func (s Settings) Clone() Settings {
	s.PersonalEmails = cloneList(s.PersonalEmails)
	s.KeepEmails = cloneList(s.KeepEmails)
	s.KeepDomains = cloneList(s.KeepDomains)
	return s
}

func cloneList(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
