// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package slug builds URL slugs for book names.
//
// Book names are mostly Chinese, so letters from every script are kept.
// Latin accents are folded and everything else becomes a hyphen.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

var (
	// separatorRun matches any run of characters that are not letters, digits or hyphens.
	separatorRun = regexp.MustCompile(`[^\p{L}\p{N}-]+`)
	// multiHyphen collapses consecutive hyphens.
	multiHyphen = regexp.MustCompile(`-{2,}`)
)

// From converts a book name into a slug.
//
// # Pipeline
//
//  1. Folds full-width Latin and digits to ASCII.
//  2. Decomposes to NFD and drops combining marks (é → e).
//  3. Lowercases.
//  4. Replaces separator runs with a hyphen and trims hyphens at both ends.
//
// CJK ideographs pass through unchanged: "星海歸途 Ｖ２" → "星海歸途-v2".
func From(s string) string {
	folded := width.Narrow.String(s)

	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn), norm.NFC)
	result, _, _ := transform.String(t, folded)

	result = strings.ToLower(result)
	result = separatorRun.ReplaceAllString(result, "-")
	result = multiHyphen.ReplaceAllString(result, "-")

	return strings.Trim(result, "-")
}

// isMn reports whether r is a non-spacing mark.
func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}
