// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/novelvault/internal/platform/apperr"
	"github.com/taibuivan/novelvault/internal/platform/validate"
)

/*
TestValidator_Required tests the mandatory field rule.
*/
func TestValidator_Required(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		hasError bool
	}{
		{"valid_string", "星海歸途", false},
		{"empty_string", "", true},
		{"whitespace_only", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Required("name", tt.value)

			if !tt.hasError {
				assert.False(t, v.HasErrors())
				assert.Nil(t, v.Err())
				return
			}

			ae := apperr.As(v.Err())
			require.NotNil(t, ae)
			assert.Equal(t, "VALIDATION_ERROR", ae.Code)
			assert.Equal(t, "name", ae.Details[0].Field)
		})
	}
}

/*
TestValidator_MaxLen verifies that lengths are counted in characters.
*/
func TestValidator_MaxLen(t *testing.T) {
	v := &validate.Validator{}
	v.MaxLen("name", "一二三四五六七八九十一二三四五六七八九十", 20)
	assert.False(t, v.HasErrors())

	v.MaxLen("name", "一二三四五六七八九十一二三四五六七八九十一", 20)
	assert.True(t, v.HasErrors())
}

func TestValidator_HTTPURL(t *testing.T) {
	tests := []struct {
		value string
		valid bool
	}{
		{"https://forum.example/thread-1-1-1.html", true},
		{"http://forum.example/viewthread.php?tid=9", true},
		{"ftp://forum.example/file", false},
		{"/relative/path", false},
		{"", false},
	}

	for _, tt := range tests {
		v := &validate.Validator{}
		v.HTTPURL("url", tt.value)
		assert.Equal(t, !tt.valid, v.HasErrors(), tt.value)
	}
}

/*
TestValidator_Chain_Failure tests error accumulation in the chain.
*/
func TestValidator_Chain_Failure(t *testing.T) {
	v := &validate.Validator{}

	err := v.
		Required("name", "").
		Min("number", 0, 1).
		OneOf("status", "lost", "pending", "completed").
		UUID("book_id", "not-a-uuid").
		Custom("series", true, "Invalid series").
		Err()

	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Len(t, ae.Details, 5)
}

func TestValidator_Chain_Success(t *testing.T) {
	err := (&validate.Validator{}).
		Required("name", "重逢").
		Range("number", 3, 1, 10).
		UUID("book_id", "0190A5B8-4C1E-7D3A-9B2F-1E2D3C4B5A69").
		Err()

	assert.NoError(t, err)
}
