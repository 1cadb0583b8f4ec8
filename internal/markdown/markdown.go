// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package markdown renders the restricted inline markdown subset the
// backend emits: **bold**, *italic*, _italic_, `code`, plus newlines.
//
// Resolution order is fixed and significant: bold first, then both
// italic forms, then code, each applied left-to-right with non-greedy
// matching. There is no escaping syntax and no deliberate nesting
// support; whatever structure sequential application yields is the
// structure rendered. Patterns do not match across newlines.
package markdown

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/anichat/anichat-tui/internal/util"
)

// =============================================================================
// SPAN MODEL
// =============================================================================

// Span is a run of text with uniform styling.
type Span struct {
	Text   string
	Bold   bool
	Italic bool
	Code   bool
}

// Plain reports whether the span carries no styling.
func (s Span) Plain() bool {
	return !s.Bold && !s.Italic && !s.Code
}

// =============================================================================
// PARSING
// =============================================================================

// Marker pairs are rewritten to private-use sentinel runes in pattern
// order, then a single scan converts sentinels into span boundaries.
// This reproduces sequential regex replacement exactly, including a
// later pattern matching inside the capture of an earlier one.
const (
	boldOpen    = ''
	boldClose   = ''
	italicOpen  = ''
	italicClose = ''
	codeOpen    = ''
	codeClose   = ''
)

var (
	boldRe       = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicStarRe = regexp.MustCompile(`\*(.*?)\*`)
	italicUndRe  = regexp.MustCompile(`_(.*?)_`)
	codeRe       = regexp.MustCompile("`(.*?)`")

	// Input could carry our sentinels; drop them up front.
	sentinelRe = regexp.MustCompile("[-]")
)

// Parse splits text into styled spans. Newlines are preserved inside
// span text. Unpaired markers are left verbatim.
func Parse(text string) []Span {
	work := sentinelRe.ReplaceAllString(text, "")

	work = boldRe.ReplaceAllString(work, string(boldOpen)+"$1"+string(boldClose))
	work = italicStarRe.ReplaceAllString(work, string(italicOpen)+"$1"+string(italicClose))
	work = italicUndRe.ReplaceAllString(work, string(italicOpen)+"$1"+string(italicClose))
	work = codeRe.ReplaceAllString(work, string(codeOpen)+"$1"+string(codeClose))

	var spans []Span
	var buf strings.Builder
	cur := Span{}

	flush := func() {
		if buf.Len() > 0 {
			cur.Text = buf.String()
			spans = append(spans, cur)
			buf.Reset()
		}
	}

	for _, r := range work {
		switch r {
		case boldOpen, boldClose:
			flush()
			cur.Bold = r == boldOpen
		case italicOpen, italicClose:
			flush()
			cur.Italic = r == italicOpen
		case codeOpen, codeClose:
			flush()
			cur.Code = r == codeOpen
		default:
			buf.WriteRune(r)
		}
	}
	flush()

	return spans
}

// =============================================================================
// TERMINAL RENDERING
// =============================================================================

// Renderer turns parsed spans into ANSI-styled terminal text.
type Renderer struct {
	Bold   lipgloss.Style
	Italic lipgloss.Style
	Code   lipgloss.Style
}

// NewRenderer returns a renderer with the given code span style; bold
// and italic use the terminal's own attributes.
func NewRenderer(code lipgloss.Style) *Renderer {
	return &Renderer{
		Bold:   lipgloss.NewStyle().Bold(true),
		Italic: lipgloss.NewStyle().Italic(true),
		Code:   code,
	}
}

// Render parses and styles text for the terminal. Control characters
// other than newline and tab are stripped first, so message content
// cannot smuggle escape sequences past the styling layer.
func (r *Renderer) Render(text string) string {
	var b strings.Builder
	for _, span := range Parse(util.StripControl(text)) {
		b.WriteString(r.renderSpan(span))
	}
	return b.String()
}

func (r *Renderer) renderSpan(span Span) string {
	if span.Plain() {
		return span.Text
	}

	style := lipgloss.NewStyle()
	if span.Bold {
		style = style.Bold(true)
	}
	if span.Italic {
		style = style.Italic(true)
	}
	if span.Code {
		style = style.Inherit(r.Code)
	}

	// Style each line separately so attributes do not bleed across
	// line breaks inside the viewport.
	lines := strings.Split(span.Text, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = style.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}

// PlainText returns the display text with all markers resolved and
// styling discarded. The directory filter searches over this form.
func PlainText(text string) string {
	var b strings.Builder
	for _, span := range Parse(text) {
		b.WriteString(span.Text)
	}
	return b.String()
}
