// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package query parses list-style query parameters.
package query

import "strings"

// StringSlice splits a comma-separated value into trimmed, non-empty parts.
//
// Example:
//
//	query.StringSlice("pending, failed,,") // []string{"pending", "failed"}
func StringSlice(val string) []string {
	if val == "" {
		return nil
	}

	var result []string
	for _, part := range strings.Split(val, ",") {
		if clean := strings.TrimSpace(part); clean != "" {
			result = append(result, clean)
		}
	}
	return result
}
