// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package policy decides whether an email address found on a page is masked.
package policy

import (
	"strings"

	"reasonable-redactor/internal/config"
)

// Policy is a compiled, read-only view of the masking rules in a Settings value.
// It is safe for concurrent use.
type Policy struct {
	scope       config.Scope
	personal    map[string]struct{}
	keepEmails  map[string]struct{}
	keepDomains map[string]struct{}
}

// New compiles the masking rules of s.
func New(s config.Settings) *Policy {
	s = s.Normalize()
	return &Policy{
		scope:       s.MaskScope,
		personal:    lowerSet(s.PersonalEmails),
		keepEmails:  lowerSet(s.KeepEmails),
		keepDomains: lowerSet(s.KeepDomains),
	}
}

// ShouldMask applies the rules of s to email without keeping a compiled policy.
func ShouldMask(s config.Settings, email string) bool {
	return New(s).ShouldMask(email)
}

// ShouldMask reports whether email must be masked. Keep-lists are checked
// first and always win over the scope.
func (p *Policy) ShouldMask(email string) bool {
	e := strings.ToLower(email)
	if _, ok := p.keepEmails[e]; ok {
		return false
	}
	if _, ok := p.keepDomains[Domain(e)]; ok {
		return false
	}
	if p.scope == config.ScopePersonal {
		_, ok := p.personal[e]
		return ok
	}
	return true
}

// Domain returns the part of email after the last "@", or "" when there is none.
func Domain(email string) string {
	i := strings.LastIndex(email, "@")
	if i < 0 {
		return ""
	}
	return email[i+1:]
}

func lowerSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[strings.ToLower(strings.TrimSpace(item))] = struct{}{}
	}
	return set
}
