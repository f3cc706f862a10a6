// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Prompter asks the interactive setup questions on a pair of streams.
// Answers are read line by line; end of input counts as an empty answer.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPrompter creates a Prompter reading from in and writing questions to out
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// Ask prints label and returns the trimmed answer.
func (p *Prompter) Ask(label string) string {
	fmt.Fprint(p.out, label)
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(p.out)
		return ""
	}
	return strings.TrimSpace(line)
}

// AskList asks for a comma-separated list. Blank entries are dropped.
func (p *Prompter) AskList(label string) []string {
	return SplitList(p.Ask(label))
}

// Confirm asks a yes/no question and returns def on an empty answer.
func (p *Prompter) Confirm(label string, def bool) bool {
	switch strings.ToLower(p.Ask(label)) {
	case "y", "yes":
		return true
	case "n", "no":
		return false
	default:
		return def
	}
}

// Setup walks through every setting, starting from current, and returns the
// edited copy. current itself is not modified.
func (p *Prompter) Setup(appName string, current Settings) Settings {
	s := current.Clone()

	fmt.Fprintf(p.out, "\n=== %s setup ===\n", appName)
	fmt.Fprintln(p.out, "This tool runs locally on your machine. It does not upload files anywhere.")
	fmt.Fprintln(p.out)

	if p.Ask("Style (1 = clean, 2 = blackout) [1]: ") == "2" {
		s.Style = StyleBlackout
	} else {
		s.Style = StyleClean
	}

	if p.Ask("Mask scope (1 = all emails, 2 = personal list only) [1]: ") == "2" {
		s.MaskScope = ScopePersonal
		s.PersonalEmails = p.AskList("Enter personal emails to mask (comma-separated): ")
	} else {
		s.MaskScope = ScopeAll
		s.PersonalEmails = []string{}
	}

	if user := p.Ask(fmt.Sprintf("Username replacement [%s]: ", s.MaskUser)); user != "" {
		s.MaskUser = user
	}

	s.KeepEmails = p.AskList("Emails to keep visible (comma-separated, optional): ")
	s.KeepDomains = p.AskList("Domains to keep visible (comma-separated, optional): ")

	if rep := p.Ask(fmt.Sprintf("Bcc replacement text [%s]: ", s.BccReplacement)); rep != "" {
		s.BccReplacement = rep
	}

	// Only an explicit "n" turns the exclusion off.
	s.SkipEmailMaskInsideBcc = strings.ToLower(p.Ask("Skip masking inside Bcc area? (Y/n) [Y]: ")) != "n"

	fmt.Fprintln(p.out)
	fmt.Fprintln(p.out, "Saved settings will be reused next time.")
	fmt.Fprintln(p.out)
	return s.Normalize()
}

// SplitList splits a comma-separated answer into trimmed, non-empty entries.
func SplitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
