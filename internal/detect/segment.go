// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package detect

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/taibuivan/novelvault/pkg/cnnum"
	"github.com/taibuivan/novelvault/pkg/textutil"
)

// # Candidate

// Candidate is one chapter span found by [DetectChapters].
type Candidate struct {
	Number            int    `json:"number"` // FinalNumber when IsFinal
	Series            string `json:"series"`
	IsFinal           bool   `json:"is_final"`
	Title             string `json:"title"`
	TitleSimplified   string `json:"title_simplified"`
	Name              string `json:"name"`
	ExtractedBookName string `json:"extracted_book_name,omitempty"`
	LineStart         int    `json:"line_start"` // 1-indexed, inclusive
	LineEnd           int    `json:"line_end"`   // 1-indexed, inclusive
	Content           string `json:"content"`
}

// Key returns the "series:number" identity of the candidate.
func (c *Candidate) Key() string {
	return ChapterKey(c.Series, c.Number, c.IsFinal)
}

// Options tunes a segmentation pass.
type Options struct {
	// FirstChapterMetadata is usually parsed once from the thread title.
	// It fills gaps on the first candidate only.
	FirstChapterMetadata *Metadata
}

// # Heading Patterns

// headingMaxRunes bounds heading lines; longer lines are prose even when they
// mention a chapter marker.
const headingMaxRunes = 60

// Quote marks open dialogue in body text, so the segmenter only treats the
// remaining bracket forms as heading brackets.
const (
	headingOpenBrackets  = `(（{｛【〔〖`
	headingCloseBrackets = `)）}｝】〕〗`
)

var (
	// headingBracketPattern is the segmenter's bracket family. Titles still go
	// through the wider [MatchBracket].
	headingBracketPattern = regexp.MustCompile(
		`[` + headingOpenBrackets + `]\s*([^` + openBrackets + closeBrackets + `]*?)\s*(` + numeralClass + `|` + finalClass + `)\s*[` + headingCloseBrackets + `]`,
	)

	// bookNameHeadingPattern is the "bookname（N）chaptername" heading form.
	bookNameHeadingPattern = regexp.MustCompile(
		`^(.+?)\s*[(（]\s*(?:[^()（）]*?\s*)?(` + numeralClass + `|` + finalClass + `)\s*[)）]\s*(.*)$`,
	)

	// leadingBracketPattern captures the name after a heading that opens with a bracket.
	leadingBracketPattern = regexp.MustCompile(
		`^[` + openBrackets + `][^` + closeBrackets + `]*[` + closeBrackets + `]\s*(.+)$`,
	)

	// unitNamePattern captures the name after a "第N章" marker.
	unitNamePattern = regexp.MustCompile(`第\s*` + numeralClass + `\s*[章回集話话篇部卷]\s*(.+)$`)
)

// heading is a line recognized as a chapter boundary.
type heading struct {
	number   int
	isFinal  bool
	name     string
	bookName string
}

// parseHeading classifies a line. It reports false for body text.
func parseHeading(line string) (*heading, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || textutil.RuneLen(trimmed) > headingMaxRunes {
		return nil, false
	}

	// Family (a): explicit unit marker
	unitGroups := unitPattern.FindStringSubmatch(trimmed)

	// Family (b): a numeral in brackets anywhere in the line
	bracketGroups := headingBracketPattern.FindStringSubmatch(trimmed)

	// Balanced brackets around plain words ("（上）", "「好」") fall through here
	// and stay with the current chapter's body.
	if unitGroups == nil && bracketGroups == nil {
		return nil, false
	}

	h := &heading{}
	switch {
	case unitGroups != nil:
		h.number = cnnum.ToInt(unitGroups[1])
		if groups := unitNamePattern.FindStringSubmatch(trimmed); groups != nil {
			h.name = groups[1]
		}

	case isFinalLiteral(bracketGroups[2]):
		h.isFinal = true
		h.number = FinalNumber
		h.name, h.bookName = bracketHeadingNames(trimmed)

	default:
		h.number = cnnum.ToInt(bracketGroups[2])
		h.name, h.bookName = bracketHeadingNames(trimmed)
	}

	if h.number <= 0 && !h.isFinal {
		return nil, false
	}

	h.name = textutil.Truncate(trimName(h.name), textutil.MaxTitleRunes)
	h.bookName = trimBookName(h.bookName)
	return h, true
}

// IsHeading reports whether line would open a chapter during segmentation.
func IsHeading(line string) bool {
	_, ok := parseHeading(line)
	return ok
}

// bracketHeadingNames extracts the chapter name and, for the bookname form,
// the book name of a bracket heading.
func bracketHeadingNames(line string) (name, bookName string) {
	if groups := bookNameHeadingPattern.FindStringSubmatch(line); groups != nil && strings.TrimSpace(groups[1]) != "" {
		return groups[3], groups[1]
	}
	if groups := leadingBracketPattern.FindStringSubmatch(line); groups != nil {
		return groups[1], ""
	}
	return "", ""
}

// candidate builds the chapter record for a heading line.
func (h *heading) candidate(line string) *Candidate {
	candidate := &Candidate{
		Number:            h.number,
		Series:            DefaultSeries,
		IsFinal:           h.isFinal,
		Name:              h.name,
		ExtractedBookName: h.bookName,
	}

	// Run the full extractor so a series label inside brackets is captured
	if match := ExtractChapterNumber(strings.TrimSpace(line)); match != nil {
		candidate.Number = match.Number
		candidate.Series = match.Series
		candidate.IsFinal = match.IsFinal
	}

	return candidate
}

// # Segmentation

// accumulator collects the lines of one open chapter.
type accumulator struct {
	chapter *Candidate
	lines   []string
	start   int
	end     int
}

func (a *accumulator) add(lineNumber int, line string) {
	a.lines = append(a.lines, line)
	a.end = lineNumber
}

// seal copies the accumulated span into the candidate.
func (a *accumulator) seal() *Candidate {
	a.chapter.LineStart = a.start
	a.chapter.LineEnd = a.end
	a.chapter.Content = strings.TrimSpace(strings.Join(a.lines, "\n"))
	return a.chapter
}

// scanner holds the state of one segmentation pass.
type scanner struct {
	output   []*Candidate
	byKey    map[string]int
	seenKeys map[string]bool
	current  *accumulator
	pending  *accumulator
	preamble []string
	headings int
}

// DetectChapters splits fullText into chapter candidates.
//
// # Clash Policy
//
// A repeated "official" key keeps whichever span has the longer content.
// A repeated key in any other series is renumbered to the next free number.
//
// # Returns
//   - An empty slice for blank input.
//   - A single chapter numbered 1 when no heading is found.
func DetectChapters(fullText string, options Options) []Candidate {
	if strings.TrimSpace(fullText) == "" {
		return []Candidate{}
	}

	lines := strings.Split(textutil.NormalizeNewlines(fullText), "\n")
	state := &scanner{
		byKey:    make(map[string]int),
		seenKeys: make(map[string]bool),
	}

	for index, line := range lines {
		lineNumber := index + 1

		h, ok := parseHeading(line)
		if !ok {
			state.appendBody(lineNumber, line)
			continue
		}

		state.headings++
		state.onHeading(lineNumber, line, h.candidate(line))
	}

	state.finishPending()
	state.finishCurrent()
	state.attachPreamble()

	fallback := state.headings == 0
	if fallback {
		state.output = []*Candidate{wholeDocument(fullText, len(lines))}
	}

	results := make([]Candidate, 0, len(state.output))
	for _, candidate := range state.output {
		results = append(results, *candidate)
	}

	if options.FirstChapterMetadata != nil && len(results) > 0 {
		applyMetadata(&results[0], options.FirstChapterMetadata, fallback)
	}

	return results
}

// onHeading routes a detected heading through the clash policy.
func (s *scanner) onHeading(lineNumber int, line string, candidate *Candidate) {
	if s.seenKeys[candidate.Key()] {
		if candidate.Series == DefaultSeries || candidate.IsFinal {
			// Repost of an existing chapter: compete on length when it ends
			s.finishPending()
			s.finishCurrent()
			s.pending = &accumulator{chapter: candidate, start: lineNumber}
			s.pending.add(lineNumber, line)
			return
		}

		candidate.Number = s.nextFreeNumber(candidate.Series, candidate.Number)
	}

	s.finishPending()
	s.finishCurrent()
	s.open(lineNumber, line, candidate)
}

// open starts a new current chapter.
func (s *scanner) open(lineNumber int, line string, candidate *Candidate) {
	setTitles(candidate)
	s.seenKeys[candidate.Key()] = true

	s.current = &accumulator{chapter: candidate, start: lineNumber}
	s.current.add(lineNumber, line)
}

// attachPreamble prepends the text before the first heading to the first
// chapter. It runs after the scan so reposts compete on chapter text alone.
func (s *scanner) attachPreamble() {
	if len(s.output) == 0 || !hasText(s.preamble) {
		return
	}

	first := s.output[0]
	first.LineStart = 1
	first.Content = strings.TrimSpace(strings.Join(append(s.preamble, first.Content), "\n"))
}

// appendBody adds a non-heading line to whichever accumulator is open.
func (s *scanner) appendBody(lineNumber int, line string) {
	switch {
	case s.pending != nil:
		s.pending.add(lineNumber, line)
	case s.current != nil:
		s.current.add(lineNumber, line)
	default:
		s.preamble = append(s.preamble, line)
	}
}

// finishCurrent moves the open chapter to the output.
func (s *scanner) finishCurrent() {
	if s.current == nil {
		return
	}

	candidate := s.current.seal()
	s.byKey[candidate.Key()] = len(s.output)
	s.output = append(s.output, candidate)
	s.current = nil
}

// finishPending settles a repost against the chapter it clashed with.
// The longer content wins; ties keep the earlier chapter.
func (s *scanner) finishPending() {
	if s.pending == nil {
		return
	}

	candidate := s.pending.seal()
	setTitles(candidate)
	s.pending = nil

	index, exists := s.byKey[candidate.Key()]
	if !exists {
		s.byKey[candidate.Key()] = len(s.output)
		s.output = append(s.output, candidate)
		return
	}

	if textutil.RuneLen(candidate.Content) > textutil.RuneLen(s.output[index].Content) {
		s.output[index] = candidate
	}
}

// nextFreeNumber searches upward from number for an unused key in series.
func (s *scanner) nextFreeNumber(series string, number int) int {
	for n := number; ; n++ {
		if !s.seenKeys[ChapterKey(series, n, false)] {
			return n
		}
	}
}

// # Helpers

// wholeDocument is the fallback chapter used when no heading was found.
func wholeDocument(fullText string, lineCount int) *Candidate {
	candidate := &Candidate{
		Number:    1,
		Series:    DefaultSeries,
		LineStart: 1,
		LineEnd:   lineCount,
		Content:   strings.TrimSpace(fullText),
	}
	setTitles(candidate)
	return candidate
}

// applyMetadata merges title metadata onto the first candidate. Number,
// series and final flag are only taken when no heading was detected.
func applyMetadata(candidate *Candidate, meta *Metadata, fallback bool) {
	if candidate.ExtractedBookName == "" {
		candidate.ExtractedBookName = meta.BookName
	}
	if candidate.Name == "" {
		candidate.Name = textutil.Truncate(meta.ChapterName, textutil.MaxTitleRunes)
	}

	if !fallback {
		return
	}

	switch {
	case meta.IsFinal:
		candidate.IsFinal = true
		candidate.Number = FinalNumber
	case meta.ChapterNumber > 0:
		candidate.Number = meta.ChapterNumber
	}
	if meta.Series != "" {
		candidate.Series = meta.Series
	}

	setTitles(candidate)
}

// setTitles derives the display titles from the number.
func setTitles(candidate *Candidate) {
	candidate.Title = FormatTitle(candidate.Number, candidate.IsFinal)
	candidate.TitleSimplified = strings.ReplaceAll(candidate.Title, "終", "终")
}

// FormatTitle renders the canonical chapter title ("第12章" or "終章").
func FormatTitle(number int, isFinal bool) string {
	if isFinal {
		return FinalMarker + "章"
	}
	return "第" + strconv.Itoa(number) + "章"
}

func hasText(lines []string) bool {
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			return true
		}
	}
	return false
}
