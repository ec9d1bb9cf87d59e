// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package convert parses query string values without surfacing errors.

Malformed values collapse to a default. Do not use it where a malformed value
must be rejected.
*/
package convert

import (
	"strconv"
	"strings"
)

// ToInt parses s, returning 0 when it is empty or malformed.
func ToInt(s string) int {
	return ToIntD(s, 0)
}

// ToIntD parses s, returning def when it is empty or malformed.
func ToIntD(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
		return v
	}
	return def
}

// ToBool parses "true", "1", "false", "0" and friends. Anything else is false.
func ToBool(s string) bool {
	if s == "" {
		return false
	}
	v, _ := strconv.ParseBool(strings.TrimSpace(s))
	return v
}
