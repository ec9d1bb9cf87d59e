// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package textutil_test

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/novelvault/pkg/textutil"
)

func TestNormalizeToHalfWidth(t *testing.T) {
	assert.Equal(t, "ABC 123(4)", textutil.NormalizeToHalfWidth("ＡＢＣ　１２３（４）"))
	assert.Equal(t, "第三章", textutil.NormalizeToHalfWidth("第三章"))
}

func TestCollapseSpaces(t *testing.T) {
	assert.Equal(t, "a b c", textutil.CollapseSpaces("  a \t b\n\nc "))
}

/*
TestTruncate verifies that truncation is rune based.
*/
func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		max   int
		want  string
	}{
		{"short", "第一章", 20, "第一章"},
		{"exact", "一二三四五", 5, "一二三四五"},
		{"cjk", "一二三四五六七八九十一二三四五六七八九十多出來的", 20, "一二三四五六七八九十一二三四五六七八九十"},
		{"mixed", "ab第cd", 3, "ab第"},
		{"zero", "abc", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := textutil.Truncate(tt.input, tt.max)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}

func TestNormalizeNewlines(t *testing.T) {
	assert.Equal(t, "a\nb\nc", textutil.NormalizeNewlines("a\r\nb\rc"))
}
