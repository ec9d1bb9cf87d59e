// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package detect

import (
	"regexp"
	"strings"

	"github.com/taibuivan/novelvault/pkg/cnnum"
	"github.com/taibuivan/novelvault/pkg/textutil"
)

// # Title Metadata

// Metadata is the information derived from a thread or document title.
type Metadata struct {
	BookName      string `json:"book_name"`
	ChapterNumber int    `json:"chapter_number"` // 0 when no marker was found
	ChapterName   string `json:"chapter_name"`
	Series        string `json:"series"`
	IsFinal       bool   `json:"is_final"`
}

var (
	// siteNoisePatterns strip suffixes appended by the forum to page titles.
	siteNoisePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\s*[-－_|｜]\s*禁忌[書书]屋.*$`),
		regexp.MustCompile(`(?i)\s*[-－_|｜]\s*Powered by Discuz!.*$`),
		regexp.MustCompile(`\s*[-－_|｜]\s*手[機机]版.*$`),
		regexp.MustCompile(`\s*[-－_|｜]\s*[^-－_|｜]*[論论]壇\s*$`),
	}

	// bookNameParenPattern is "bookname(N)chaptername", optionally with a series label.
	bookNameParenPattern = regexp.MustCompile(
		`^(.+?)\s*[(（【]\s*(?:([^()（）【】]*?)\s*)?(` + numeralClass + `|` + finalClass + `)\s*[)）】]\s*(.*)$`,
	)

	// bookNameSpacedPattern is "bookname 第N章 chaptername".
	bookNameSpacedPattern = regexp.MustCompile(
		`^(.+?)\s+第\s*(` + numeralClass + `)\s*[章回集話话篇部卷]?\s*(.*)$`,
	)

	// tagPrefixPattern matches leading forum tags such as 【原創】 or [連載].
	tagPrefixPattern = regexp.MustCompile(`^(?:【[^】]*】|\[[^\]]*\]\s*)+`)

	// guillemetPattern captures a 《book name》 anywhere in the title.
	guillemetPattern = regexp.MustCompile(`《([^》]+)》`)

	// nameSeparators are trimmed from the edges of derived names.
	nameSeparators = " \t:：-－—_|｜,，.。、"
)

// titleSplit is a book/chapter name pair produced by one split strategy.
type titleSplit struct {
	bookName    string
	chapterName string
}

// ParseTitleMetadata derives book name, chapter number, chapter name, series
// and final flag from a raw title.
//
// # Returns
//   - nil when neither a chapter number nor any name could be derived.
func ParseTitleMetadata(rawTitle string) *Metadata {
	title := CleanTitle(rawTitle)
	if title == "" {
		return nil
	}

	meta := &Metadata{Series: DefaultSeries}

	match := ExtractChapterNumber(title)
	if match != nil {
		meta.ChapterNumber = match.Number
		meta.Series = match.Series
		meta.IsFinal = match.IsFinal
	}

	// Split strategies in priority order; the first one yielding a name wins.
	splitters := []func() *titleSplit{
		func() *titleSplit { return splitBookNameParen(title, match) },
		func() *titleSplit { return splitAroundMatch(title, match) },
		func() *titleSplit { return splitBookNameSpaced(title) },
	}

	for _, split := range splitters {
		result := split()
		if result == nil || (result.bookName == "" && result.chapterName == "") {
			continue
		}
		meta.BookName = result.bookName
		meta.ChapterName = result.chapterName
		break
	}

	// 《》 is an explicit book-name marker and wins over positional guesses.
	if groups := guillemetPattern.FindStringSubmatch(title); groups != nil {
		meta.BookName = strings.TrimSpace(groups[1])
		if meta.ChapterName != "" {
			meta.ChapterName = trimName(strings.ReplaceAll(meta.ChapterName, groups[0], ""))
		}
	}

	if match == nil && meta.BookName == "" && meta.ChapterName == "" {
		return nil
	}

	return meta
}

// CleanTitle normalizes width, strips site suffix noise and collapses spaces.
func CleanTitle(rawTitle string) string {
	title := textutil.NormalizeToHalfWidth(rawTitle)
	for _, pattern := range siteNoisePatterns {
		title = pattern.ReplaceAllString(title, "")
	}
	return textutil.CollapseSpaces(title)
}

// # Split Strategies

// splitBookNameParen handles "bookname(N)chaptername".
func splitBookNameParen(title string, match *Match) *titleSplit {
	groups := bookNameParenPattern.FindStringSubmatch(title)
	if groups == nil {
		return nil
	}
	if !isFinalLiteral(groups[3]) && cnnum.ToInt(groups[3]) <= 0 {
		return nil
	}

	// A unit marker before the bracket means the bracket is part of the chapter name
	if match != nil && match.Format != FormatBracket && strings.Contains(groups[1], match.FullMatch) {
		return nil
	}

	return &titleSplit{
		bookName:    trimBookName(groups[1]),
		chapterName: trimName(groups[4]),
	}
}

// splitAroundMatch treats text before the marker as the book name and text
// after it as the chapter name.
func splitAroundMatch(title string, match *Match) *titleSplit {
	if match == nil {
		return nil
	}

	index := strings.Index(title, match.FullMatch)
	if index < 0 {
		return nil
	}

	return &titleSplit{
		bookName:    trimBookName(title[:index]),
		chapterName: trimName(title[index+len(match.FullMatch):]),
	}
}

// splitBookNameSpaced handles "bookname 第N章 chaptername".
func splitBookNameSpaced(title string) *titleSplit {
	groups := bookNameSpacedPattern.FindStringSubmatch(title)
	if groups == nil || cnnum.ToInt(groups[2]) <= 0 {
		return nil
	}

	return &titleSplit{
		bookName:    trimBookName(groups[1]),
		chapterName: trimName(groups[3]),
	}
}

// # Helpers

func trimName(s string) string {
	return strings.Trim(strings.TrimSpace(s), nameSeparators)
}

func trimBookName(s string) string {
	s = tagPrefixPattern.ReplaceAllString(strings.TrimSpace(s), "")
	s = trimName(s)
	s = strings.TrimPrefix(s, "《")
	s = strings.TrimSuffix(s, "》")
	return strings.TrimSpace(s)
}
