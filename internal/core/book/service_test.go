// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book_test

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/novelvault/internal/core/book"
	"github.com/taibuivan/novelvault/internal/platform/apperr"
)

// memoryRepository is an in-memory [book.Repository].
type memoryRepository struct {
	mu    sync.Mutex
	books map[string]*book.Book

	// createHook runs before Create stores a book.
	createHook func(*book.Book)
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{books: map[string]*book.Book{}}
}

func (r *memoryRepository) List(_ context.Context, filter book.Filter, limit, offset int) ([]*book.Book, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	matched := []*book.Book{}
	for _, b := range r.books {
		if strings.Contains(b.Name, filter.Query) {
			matched = append(matched, b)
		}
	}
	total := len(matched)
	if offset >= total {
		return []*book.Book{}, total, nil
	}
	end := min(offset+limit, total)
	return matched[offset:end], total, nil
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (*book.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if b, ok := r.books[id]; ok {
		return b, nil
	}
	return nil, apperr.NotFound("Book")
}

func (r *memoryRepository) FindByName(_ context.Context, name string) (*book.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, b := range r.books {
		if b.Name == name {
			return b, nil
		}
	}
	return nil, apperr.NotFound("Book")
}

func (r *memoryRepository) Create(_ context.Context, b *book.Book) error {
	if r.createHook != nil {
		r.createHook(b)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.books {
		if existing.Name == b.Name {
			return apperr.Conflict("Book already exists")
		}
	}
	r.books[b.ID] = b
	return nil
}

func newService(repo book.Repository) *book.Service {
	return book.NewService(repo, slog.New(slog.NewJSONHandler(io.Discard, nil)))
}

func TestCreateBook(t *testing.T) {
	tests := []struct {
		name      string
		input     book.Book
		wantCode  string
		wantSlug  string
		wantError bool
	}{
		{name: "cjk_name", input: book.Book{Name: "  劍來  "}, wantSlug: "劍來"},
		{name: "latin_name", input: book.Book{Name: "Night Watch"}, wantSlug: "night-watch"},
		{name: "empty_name", input: book.Book{Name: "   "}, wantError: true, wantCode: "VALIDATION_ERROR"},
		{name: "bad_url", input: book.Book{Name: "劍來", SourceURL: "ftp://x"}, wantError: true, wantCode: "VALIDATION_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := newService(newMemoryRepository())
			input := tt.input

			err := service.CreateBook(context.Background(), &input)
			if tt.wantError {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, apperr.As(err).Code)
				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, input.ID)
			assert.Equal(t, tt.wantSlug, input.Slug)
			assert.Equal(t, strings.TrimSpace(tt.input.Name), input.Name)
		})
	}
}

func TestFindOrCreate(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepository()
	service := newService(repo)

	first, err := service.FindOrCreate(ctx, "劍來", "https://forum.example/t/1")
	require.NoError(t, err)

	second, err := service.FindOrCreate(ctx, " 劍來 ", "https://forum.example/t/2")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "https://forum.example/t/1", second.SourceURL)
	assert.Len(t, repo.books, 1)
}

/*
TestFindOrCreate_LostRace simulates another import creating the book between
the lookup and the insert.
*/
func TestFindOrCreate_LostRace(t *testing.T) {
	repo := newMemoryRepository()
	winner := &book.Book{ID: "winner", Name: "劍來"}

	repo.createHook = func(*book.Book) {
		repo.mu.Lock()
		repo.books[winner.ID] = winner
		repo.mu.Unlock()
		repo.createHook = nil
	}

	got, err := newService(repo).FindOrCreate(context.Background(), "劍來", "")
	require.NoError(t, err)
	assert.Equal(t, "winner", got.ID)
}

func TestListBooks(t *testing.T) {
	ctx := context.Background()
	service := newService(newMemoryRepository())

	for _, name := range []string{"劍來", "雪中悍刀行", "劍王朝"} {
		require.NoError(t, service.CreateBook(ctx, &book.Book{Name: name}))
	}

	books, total, err := service.ListBooks(ctx, book.Filter{Query: "劍"}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, books, 2)
}
