// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package slug_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/novelvault/pkg/slug"
)

func TestFrom(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"cjk_kept", "星海歸途", "星海歸途"},
		{"cjk_with_spaces", "星海歸途 第二部", "星海歸途-第二部"},
		{"full_width_latin", "星海歸途 Ｖ２", "星海歸途-v2"},
		{"punctuation", "《星海歸途》：外傳！", "星海歸途-外傳"},
		{"accents", "Café Déjà Vu", "cafe-deja-vu"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, slug.From(tt.input))
		})
	}
}
