// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package detect turns raw forum text into numbered chapter candidates.

It hosts the three pure stages of the import pipeline:

  - Number extraction: [ExtractChapterNumber] finds a chapter marker in a title.
  - Title parsing: [ParseTitleMetadata] derives book and chapter names from a thread title.
  - Segmentation: [DetectChapters] scans a whole document and emits [Candidate] spans.

Nothing in this package performs I/O or keeps state between calls, so every
function is safe to call from concurrent download workers.
*/
package detect

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/taibuivan/novelvault/pkg/cnnum"
)

// # Constants

const (
	// DefaultSeries is the main numbering track.
	DefaultSeries = "official"

	// FinalNumber is the sentinel number carried by terminal chapters.
	FinalNumber = -1

	// FinalMarker replaces the number in keys and titles of terminal chapters.
	FinalMarker = "終"

	// FormatBracket and FormatBare identify matches without a unit word.
	FormatBracket = "bracket"
	FormatBare    = "第"
)

// numeralClass matches one Arabic, full-width or Chinese numeral run.
const numeralClass = `[0-9０-９零〇一二两兩三四五六七八九十百千万萬]+`

// finalClass matches the terminal-chapter literal in either script.
const finalClass = `[終终]`

// Bracket characters accepted around a numeral, ASCII and CJK forms.
const (
	openBrackets  = `(（{｛【〔〖〝「『`
	closeBrackets = `)）}｝】〕〗〞」』`
)

var (
	unitPattern = regexp.MustCompile(`第\s*(` + numeralClass + `)\s*([章回集話话篇部卷])`)

	bracketPattern = regexp.MustCompile(
		`[` + openBrackets + `]\s*([^` + openBrackets + closeBrackets + `]*?)\s*(` + numeralClass + `|` + finalClass + `)\s*[` + closeBrackets + `]`,
	)

	barePattern = regexp.MustCompile(`第\s*(` + numeralClass + `)`)
)

// # Match Result

// Match is the result of a successful chapter-number extraction.
type Match struct {
	Number    int    `json:"number"` // FinalNumber when IsFinal
	Format    string `json:"format"` // Unit word, FormatBracket or FormatBare
	Series    string `json:"series"` // DefaultSeries unless a bracket label was present
	IsFinal   bool   `json:"is_final"`
	FullMatch string `json:"full_match"` // Exact matched substring of the input
}

// Key returns the "series:number" identity used for clash detection.
func (m *Match) Key() string {
	return ChapterKey(m.Series, m.Number, m.IsFinal)
}

// # Strategies

// Strategy is one named heuristic in the extraction cascade.
type Strategy struct {
	Name  string
	Match func(title string) *Match
}

// Strategies lists the extraction heuristics in priority order.
var Strategies = []Strategy{
	{Name: "unit", Match: MatchUnit},
	{Name: "bracket", Match: MatchBracket},
	{Name: "bare", Match: MatchBare},
}

// ExtractChapterNumber runs [Strategies] in order and returns the first match.
// It returns nil when no strategy yields a positive number or a final marker.
func ExtractChapterNumber(title string) *Match {
	for _, strategy := range Strategies {
		if match := strategy.Match(title); match != nil {
			return match
		}
	}
	return nil
}

// MatchUnit matches the standard "第N章" marker and its unit variants.
func MatchUnit(title string) *Match {
	groups := unitPattern.FindStringSubmatch(title)
	if groups == nil {
		return nil
	}

	number := cnnum.ToInt(groups[1])
	if number <= 0 {
		return nil
	}

	return &Match{
		Number:    number,
		Format:    groups[2],
		Series:    DefaultSeries,
		FullMatch: groups[0],
	}
}

// MatchBracket matches a numeral or 終 wrapped in brackets, e.g. "（3）" or
// "【黑暗 4】". Text before the numeral inside the bracket names the series.
func MatchBracket(title string) *Match {
	for _, groups := range bracketPattern.FindAllStringSubmatch(title, -1) {
		match := &Match{
			Format:    FormatBracket,
			Series:    seriesLabel(groups[1]),
			FullMatch: groups[0],
		}

		if isFinalLiteral(groups[2]) {
			match.IsFinal = true
			match.Number = FinalNumber
			return match
		}

		match.Number = cnnum.ToInt(groups[2])
		if match.Number > 0 {
			return match
		}
	}
	return nil
}

// MatchBare matches "第N" without a trailing unit word.
func MatchBare(title string) *Match {
	for _, groups := range barePattern.FindAllStringSubmatch(title, -1) {
		number := cnnum.ToInt(groups[1])
		if number <= 0 {
			continue
		}

		return &Match{
			Number:    number,
			Format:    FormatBare,
			Series:    DefaultSeries,
			FullMatch: groups[0],
		}
	}
	return nil
}

// # Helpers

// ChapterKey builds the clash-detection key for a series and number.
func ChapterKey(series string, number int, isFinal bool) string {
	if series == "" {
		series = DefaultSeries
	}
	if isFinal {
		return series + ":" + FinalMarker
	}
	return series + ":" + strconv.Itoa(number)
}

// seriesLabel normalizes a bracket label into a series name.
func seriesLabel(label string) string {
	label = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(label), "第"))
	if label == "" {
		return DefaultSeries
	}
	return label
}

func isFinalLiteral(s string) bool {
	return s == "終" || s == "终"
}
