// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package textutil provides rune-safe string helpers shared by the chapter
// pipeline.
package textutil

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/width"
)

// MaxTitleRunes is the cap applied to chapter titles and names.
const MaxTitleRunes = 20

var spaceRun = regexp.MustCompile(`\s+`)

// NormalizeToHalfWidth folds full-width Latin letters, digits, punctuation
// and the ideographic space to their ASCII equivalents. CJK ideographs are
// left untouched.
func NormalizeToHalfWidth(s string) string {
	return width.Narrow.String(s)
}

// CollapseSpaces replaces every whitespace run with one ASCII space and trims
// both ends.
func CollapseSpaces(s string) string {
	return strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
}

// Truncate shortens s to at most max characters. It counts runes, so a
// multi-byte character is never split.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}

	runes := []rune(s)
	return string(runes[:max])
}

// RuneLen returns the number of characters in s.
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}

// NormalizeNewlines converts CRLF and lone CR line endings to LF.
func NormalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
