// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package reformat normalizes a chapter body before it is stored.

A reformatted body always opens with a single canonical heading line, carries
no forum-injected lines, and has no runs of blank lines. Running the
[Reformatter] twice with the same title yields the same text.
*/
package reformat

import (
	"log/slog"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/taibuivan/novelvault/internal/detect"
	"github.com/taibuivan/novelvault/internal/platform/apperr"
	"github.com/taibuivan/novelvault/pkg/textutil"
)

// # Site Noise

// noiseLinePatterns match whole lines injected by the forum software.
var noiseLinePatterns = []*regexp.Regexp{
	regexp.MustCompile(`本帖最[後后]由.*[編编][輯辑]`),
	regexp.MustCompile(`禁忌[書书]屋`),
	regexp.MustCompile(`(?i)powered by discuz`),
	regexp.MustCompile(`(?i)(下[載载]|安[裝装]).{0,10}app`),
	regexp.MustCompile(`(?i)^\s*(©|copyright).{0,40}(comsenz|discuz)`),
}

// # Reformatter

// Reformatter rewrites chapter bodies into the stored layout.
type Reformatter struct {
	converter Converter
	logger    *slog.Logger
}

// New constructs a [Reformatter]. A nil converter disables script conversion.
func New(converter Converter, logger *slog.Logger) *Reformatter {
	if converter == nil {
		converter = identityConverter{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Reformatter{converter: converter, logger: logger}
}

/*
Reformat normalizes a raw chapter body.

Parameters:
  - rawBody: string (Scraped or uploaded chapter text)
  - canonicalTitle: string (Heading placed on the first line, truncated to 20 characters)
  - toTraditional: bool (Convert body and title to Traditional script)
  - verbose: bool (Emit debug entries for every stripped line)

Returns:
  - string: The normalized body
  - error: apperr.InvalidInput when the body or title is not valid UTF-8
*/
func (r *Reformatter) Reformat(rawBody, canonicalTitle string, toTraditional, verbose bool) (string, error) {
	if !utf8.ValidString(rawBody) {
		return "", apperr.InvalidInput("Chapter body is not valid UTF-8")
	}
	if !utf8.ValidString(canonicalTitle) {
		return "", apperr.InvalidInput("Chapter title is not valid UTF-8")
	}

	body := textutil.NormalizeNewlines(rawBody)
	title := canonicalTitle

	if toTraditional {
		var err error
		if body, err = r.converter.ToTraditional(body); err != nil {
			return "", apperr.Internal(err)
		}
		if title, err = r.converter.ToTraditional(title); err != nil {
			return "", apperr.Internal(err)
		}
	}

	heading := textutil.Truncate(textutil.CollapseSpaces(title), textutil.MaxTitleRunes)

	lines := r.stripNoise(strings.Split(body, "\n"), verbose)
	if heading != "" {
		lines = dropLeadingHeadings(lines, heading, title)
		lines = append([]string{heading}, lines...)
	}

	result := strings.Join(collapseBlankLines(lines), "\n")

	if verbose {
		r.logger.Debug("chapter_reformatted",
			slog.String("heading", heading),
			slog.Int("input_runes", utf8.RuneCountInString(rawBody)),
			slog.Int("output_runes", utf8.RuneCountInString(result)),
			slog.Bool("to_traditional", toTraditional),
		)
	}

	return result, nil
}

// Simplify converts a title to Simplified script for search and display.
func (r *Reformatter) Simplify(text string) (string, error) {
	simplified, err := r.converter.ToSimplified(text)
	if err != nil {
		return "", apperr.Internal(err)
	}
	return simplified, nil
}

// StripHeadings removes the leading heading lines of a body so it can be
// appended to another chapter.
func StripHeadings(body string) string {
	lines := dropLeadingHeadings(strings.Split(textutil.NormalizeNewlines(body), "\n"), "", "")
	return strings.Join(lines, "\n")
}

// stripNoise trims trailing spaces and removes site-injected lines.
func (r *Reformatter) stripNoise(lines []string, verbose bool) []string {
	kept := make([]string, 0, len(lines))
	for index, line := range lines {
		line = strings.TrimRightFunc(line, unicode.IsSpace)
		if isNoise(line) {
			if verbose {
				r.logger.Debug("reformat_line_stripped",
					slog.Int("line", index+1),
					slog.String("text", textutil.Truncate(line, 40)),
				)
			}
			continue
		}
		kept = append(kept, line)
	}
	return kept
}

// # Helpers

func isNoise(line string) bool {
	for _, pattern := range noiseLinePatterns {
		if pattern.MatchString(line) {
			return true
		}
	}
	return false
}

// dropLeadingHeadings removes blank lines and every heading-like line before
// the first line of prose.
func dropLeadingHeadings(lines []string, heading, title string) []string {
	for len(lines) > 0 {
		first := strings.TrimSpace(lines[0])
		switch {
		case first == "":
		case first == heading, first == strings.TrimSpace(title):
		case textutil.CollapseSpaces(first) == heading:
		case detect.IsHeading(first):
		default:
			return lines
		}
		lines = lines[1:]
	}
	return lines
}

// collapseBlankLines keeps at most one blank line between paragraphs and
// none at the end.
func collapseBlankLines(lines []string) []string {
	result := make([]string, 0, len(lines))
	previousBlank := false

	for _, line := range lines {
		blank := strings.TrimSpace(line) == ""
		if blank && previousBlank {
			continue
		}
		if blank {
			line = ""
		}
		result = append(result, line)
		previousBlank = blank
	}

	for len(result) > 0 && result[len(result)-1] == "" {
		result = result[:len(result)-1]
	}
	return result
}
