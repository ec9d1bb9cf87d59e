// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package cnnum converts between Chinese numerals and integers.

It is fault-tolerant in the same way as [convert]: malformed input yields 0
instead of an error, because chapter headings scraped from forums are rarely
clean and the callers always have a safe fallback.

Supported characters:

  - Digits: 0-9, full-width ０-９, 零 〇 一 二 两 兩 三 四 五 六 七 八 九
  - Powers: 十 (10), 百 (100), 千 (1000), 万 / 萬 (10000)
*/
package cnnum

import (
	"math"
	"strconv"
	"strings"
)

// # Lookup Tables

var digitValues = map[rune]int{
	'零': 0, '〇': 0, '一': 1, '二': 2, '两': 2, '兩': 2, '三': 3, '四': 4,
	'五': 5, '六': 6, '七': 7, '八': 8, '九': 9,
}

var powerValues = map[rune]int{
	'十': 10, '百': 100, '千': 1000,
}

// myriad is the section separator (万).
const myriad = 10000

// MaxValue is the largest number [ToInt] returns. Anything above it parses
// as 0 so it fits a 32-bit chapter number column.
const MaxValue = math.MaxInt32

// maxRendered is the exclusive upper bound rendered with Chinese numerals.
// Larger values fall back to Arabic digits.
const maxRendered = myriad * myriad

// # Parsing

// ToInt converts a numeral string to an integer.
// It returns 0 if the string is empty, contains no numeral characters, or
// exceeds [MaxValue].
func ToInt(s string) int {
	if s == "" {
		return 0
	}

	// Pure Arabic input is the common case on modern forums
	if n, err := strconv.Atoi(s); err == nil && n >= 0 {
		if n > MaxValue {
			return 0
		}
		return n
	}

	total := 0   // sections already closed by 万
	section := 0 // value accumulated below 万
	unit := 0    // pending digit run

	for _, r := range s {
		if v, ok := digitValue(r); ok {
			// Consecutive digits read positionally ("二〇二三", "12")
			if unit > (MaxValue-v)/10 {
				return 0
			}
			unit = unit*10 + v
			continue
		}

		if p, ok := powerValues[r]; ok {
			// A bare power means one of it ("十二" == 12)
			if unit == 0 {
				unit = 1
			}
			if unit > (MaxValue-section)/p {
				return 0
			}
			section += unit * p
			unit = 0
			continue
		}

		if r == '万' || r == '萬' {
			sum := total + section + unit
			if sum > MaxValue/myriad {
				return 0
			}
			total = sum * myriad
			section, unit = 0, 0
		}

		// Anything else is noise
	}

	if section+unit > MaxValue-total {
		return 0
	}
	return total + section + unit
}

// digitValue resolves ASCII, full-width and Chinese digit characters.
func digitValue(r rune) (int, bool) {
	switch {
	case r >= '0' && r <= '9':
		return int(r - '0'), true
	case r >= '０' && r <= '９':
		return int(r - '０'), true
	}

	v, ok := digitValues[r]
	return v, ok
}

// # Rendering

var digitGlyphs = []string{"零", "一", "二", "三", "四", "五", "六", "七", "八", "九"}

// FromInt renders n using Chinese numerals ("十二", "一百零五", "一万零一十").
//
// Negative values and values of 10^8 or more are rendered with Arabic digits,
// which [ToInt] parses back unchanged.
func FromInt(n int) string {
	if n < 0 || n >= maxRendered {
		return strconv.Itoa(n)
	}
	if n == 0 {
		return digitGlyphs[0]
	}

	var builder strings.Builder
	high, low := n/myriad, n%myriad

	if high > 0 {
		builder.WriteString(renderSection(high, true))
		builder.WriteString("万")

		if low == 0 {
			return builder.String()
		}

		// "一万零五百" keeps the gap explicit
		if low < 1000 {
			builder.WriteString(digitGlyphs[0])
		}
		builder.WriteString(renderSection(low, false))
		return builder.String()
	}

	builder.WriteString(renderSection(low, true))
	return builder.String()
}

// renderSection renders 1..9999. When leading is true, 10..19 are written
// colloquially without the leading 一 ("十二").
func renderSection(n int, leading bool) string {
	if leading && n >= 10 && n < 20 {
		if n == 10 {
			return "十"
		}
		return "十" + digitGlyphs[n-10]
	}

	var builder strings.Builder
	places := []struct {
		value int
		glyph string
	}{{1000, "千"}, {100, "百"}, {10, "十"}, {1, ""}}

	pendingZero := false
	for _, place := range places {
		digit := (n / place.value) % 10

		if digit == 0 {
			// Only a gap between written digits needs 零
			if builder.Len() > 0 {
				pendingZero = true
			}
			continue
		}

		if pendingZero {
			builder.WriteString(digitGlyphs[0])
			pendingZero = false
		}

		builder.WriteString(digitGlyphs[digit])
		builder.WriteString(place.glyph)
	}

	return builder.String()
}
