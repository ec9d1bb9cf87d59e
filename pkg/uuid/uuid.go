// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package uuid generates the primary keys of books and chapters.

Keys are UUIDv7 so rows sort by creation time in the B-tree index.
*/
package uuid

import "github.com/google/uuid"

// New generates a new UUIDv7 string.
// It panics only when the OS entropy source fails.
func New() string {
	id, err := uuid.NewV7()
	if err != nil {
		panic("uuid: failed to generate UUIDv7: " + err.Error())
	}
	return id.String()
}

// Valid reports whether s parses as a UUID of any version.
func Valid(s string) bool {
	return uuid.Validate(s) == nil
}
