// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package dberr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/novelvault/internal/platform/apperr"
	"github.com/taibuivan/novelvault/internal/platform/dberr"
)

func TestWrap(t *testing.T) {
	assert.NoError(t, dberr.Wrap(nil, "Chapter", "find chapter"))

	notFound := apperr.As(dberr.Wrap(fmt.Errorf("scan: %w", pgx.ErrNoRows), "Chapter", "find chapter"))
	assert.Equal(t, "NOT_FOUND", notFound.Code)

	conflict := apperr.As(dberr.Wrap(&pgconn.PgError{Code: "23505"}, "Book", "create book"))
	assert.Equal(t, "CONFLICT", conflict.Code)

	cause := errors.New("connection reset")
	wrapped := dberr.Wrap(cause, "Chapter", "update chapter")
	assert.ErrorIs(t, wrapped, cause)
	assert.Equal(t, "postgres: update chapter: connection reset", wrapped.Error())
}
