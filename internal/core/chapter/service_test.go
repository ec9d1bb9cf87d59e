// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"maps"
	"slices"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/novelvault/internal/core/book"
	"github.com/taibuivan/novelvault/internal/core/chapter"
	"github.com/taibuivan/novelvault/internal/merge"
	"github.com/taibuivan/novelvault/internal/platform/apperr"
	"github.com/taibuivan/novelvault/internal/reformat"
	"github.com/taibuivan/novelvault/pkg/pointer"
	"github.com/taibuivan/novelvault/pkg/uuid"
)

// # Fakes

// memoryRepository is an in-memory [chapter.Repository] that hands out copies.
type memoryRepository struct {
	mu       sync.Mutex
	chapters map[string]*chapter.Chapter

	// failWrite, when set, rejects matching chapters inside SaveAll.
	failWrite func(c *chapter.Chapter) error
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{chapters: map[string]*chapter.Chapter{}}
}

func clone(c *chapter.Chapter) *chapter.Chapter {
	copied := *c
	return &copied
}

func (r *memoryRepository) live() []*chapter.Chapter {
	var result []*chapter.Chapter
	for _, c := range r.chapters {
		if c.DeletedAt == nil {
			result = append(result, c)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.Series != b.Series {
			return a.Series < b.Series
		}
		if a.IsFinal != b.IsFinal {
			return !a.IsFinal
		}
		return a.Number < b.Number
	})
	return result
}

func (r *memoryRepository) keyTaken(c *chapter.Chapter) bool {
	for _, other := range r.live() {
		if other.ID != c.ID && other.BookID == c.BookID && other.Series == c.Series && other.Number == c.Number {
			return true
		}
	}
	return false
}

func (r *memoryRepository) List(_ context.Context, bookID string, filter chapter.Filter, limit, offset int) ([]*chapter.Chapter, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []*chapter.Chapter
	for _, c := range r.live() {
		if c.BookID != bookID {
			continue
		}
		if len(filter.Series) > 0 && !slices.Contains(filter.Series, c.Series) {
			continue
		}
		if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, string(c.Status)) {
			continue
		}
		matched = append(matched, clone(c))
	}

	total := len(matched)
	if offset >= total {
		return []*chapter.Chapter{}, total, nil
	}
	return matched[offset:min(offset+limit, total)], total, nil
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (*chapter.Chapter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.chapters[id]
	if !ok || c.DeletedAt != nil {
		return nil, apperr.NotFound("Chapter")
	}
	return clone(c), nil
}

func (r *memoryRepository) FindByKey(_ context.Context, bookID, series string, number int) (*chapter.Chapter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.live() {
		if c.BookID == bookID && c.Series == series && c.Number == number {
			return clone(c), nil
		}
	}
	return nil, apperr.NotFound("Chapter")
}

// Create seeds a chapter directly.
func (r *memoryRepository) Create(_ context.Context, c *chapter.Chapter) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.create(c)
}

func (r *memoryRepository) create(c *chapter.Chapter) error {
	if r.keyTaken(c) {
		return apperr.Conflict("Chapter already exists")
	}
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	r.chapters[c.ID] = clone(c)
	return nil
}

func (r *memoryRepository) Update(_ context.Context, c *chapter.Chapter) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.update(c)
}

func (r *memoryRepository) update(c *chapter.Chapter) error {
	stored, ok := r.chapters[c.ID]
	if !ok || stored.DeletedAt != nil {
		return apperr.NotFound("Chapter")
	}
	if r.keyTaken(c) {
		return apperr.Conflict("Chapter already exists")
	}
	c.UpdatedAt = time.Now()
	r.chapters[c.ID] = clone(c)
	return nil
}

// SaveAll restores the previous chapters when any write fails.
func (r *memoryRepository) SaveAll(_ context.Context, updates, creates []*chapter.Chapter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	saved := maps.Clone(r.chapters)
	write := func(c *chapter.Chapter, fn func(*chapter.Chapter) error) error {
		if r.failWrite != nil {
			if err := r.failWrite(c); err != nil {
				return err
			}
		}
		return fn(c)
	}

	for _, c := range updates {
		if err := write(c, r.update); err != nil {
			r.chapters = saved
			return err
		}
	}
	for _, c := range creates {
		if err := write(c, r.create); err != nil {
			r.chapters = saved
			return err
		}
	}
	return nil
}

func (r *memoryRepository) UpdateStatus(_ context.Context, id string, status chapter.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.chapters[id]
	if !ok || stored.DeletedAt != nil {
		return apperr.NotFound("Chapter")
	}
	stored.Status = status
	return nil
}

func (r *memoryRepository) SoftDelete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.chapters[id]
	if !ok || stored.DeletedAt != nil {
		return apperr.NotFound("Chapter")
	}
	stored.DeletedAt = pointer.To(time.Now())
	return nil
}

func (r *memoryRepository) MergeInto(_ context.Context, target *chapter.Chapter, sourceIDs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range sourceIDs {
		stored, ok := r.chapters[id]
		if !ok || stored.DeletedAt != nil || stored.BookID != target.BookID {
			return apperr.NotFound("Chapter")
		}
	}
	now := time.Now()
	for _, id := range sourceIDs {
		r.chapters[id].DeletedAt = &now
	}
	r.chapters[target.ID] = clone(target)
	return nil
}

// snapshot copies every stored chapter for before/after comparisons.
func (r *memoryRepository) snapshot() map[string]chapter.Chapter {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make(map[string]chapter.Chapter, len(r.chapters))
	for id, c := range r.chapters {
		result[id] = *c
	}
	return result
}

// memoryBooks resolves books by name.
type memoryBooks struct {
	mu    sync.Mutex
	books map[string]*book.Book
}

func (b *memoryBooks) GetBook(_ context.Context, id string) (*book.Book, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, existing := range b.books {
		if existing.ID == id {
			return existing, nil
		}
	}
	return nil, apperr.NotFound("Book")
}

func (b *memoryBooks) FindOrCreate(_ context.Context, name, sourceURL string) (*book.Book, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if existing, ok := b.books[name]; ok {
		return existing, nil
	}
	created := &book.Book{ID: uuid.New(), Name: name, SourceURL: sourceURL}
	b.books[name] = created
	return created, nil
}

// # Fixtures

type fixture struct {
	repo    *memoryRepository
	books   *memoryBooks
	service *chapter.Service
}

func newFixture() *fixture {
	repo := newMemoryRepository()
	books := &memoryBooks{books: map[string]*book.Book{}}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	return &fixture{
		repo:    repo,
		books:   books,
		service: chapter.NewService(repo, books, reformat.New(nil, logger), false, logger),
	}
}

const bookName = "星海歸途"

const threeChapters = "第1章 啟程\n清晨的港口。\n第2章 風暴\n海上起風了，浪很高。\n第3章 歸航\n回到港口。"

func (f *fixture) importText(t *testing.T, text string, mutate ...func(*chapter.ImportRequest)) *chapter.ImportResult {
	t.Helper()

	request := chapter.ImportRequest{BookName: bookName, Text: text}
	for _, fn := range mutate {
		fn(&request)
	}

	result, err := f.service.Import(context.Background(), request)
	require.NoError(t, err)
	return result
}

func (f *fixture) mustFindKey(t *testing.T, bookID, series string, number int) *chapter.Chapter {
	t.Helper()

	found, err := f.repo.FindByKey(context.Background(), bookID, series, number)
	require.NoError(t, err)
	return found
}

func outcomesOf(result *chapter.ImportResult) []merge.Outcome {
	outcomes := make([]merge.Outcome, 0, len(result.Outcomes))
	for _, outcome := range result.Outcomes {
		outcomes = append(outcomes, outcome.Outcome)
	}
	return outcomes
}

// # Import

func TestImport_CreatesChapters(t *testing.T) {
	f := newFixture()

	result := f.importText(t, threeChapters, func(r *chapter.ImportRequest) {
		r.SourceURL = "https://forum.example/thread-1.html"
	})

	assert.Equal(t, []merge.Outcome{merge.OutcomeCreate, merge.OutcomeCreate, merge.OutcomeCreate}, outcomesOf(result))
	assert.Equal(t, "official:1", result.Outcomes[0].Key)

	first := f.mustFindKey(t, result.BookID, "official", 1)
	assert.Equal(t, "第1章", first.Title)
	assert.Equal(t, "啟程", first.Name)
	assert.Equal(t, "第1章 啟程\n清晨的港口。", first.Content)
	assert.Equal(t, chapter.StatusDownloaded, first.Status)
	assert.Equal(t, "https://forum.example/thread-1.html", first.SourceURL)
	assert.Equal(t, result.Outcomes[0].ChapterID, first.ID)
}

/*
TestImport_DiscardLeavesStoreUnchanged checks that a discarded clash writes nothing.
*/
func TestImport_DiscardLeavesStoreUnchanged(t *testing.T) {
	f := newFixture()
	f.importText(t, "第1章 啟程\n短。")
	before := f.repo.snapshot()

	result := f.importText(t, "第1章 啟程\n這一版的內容明顯更長更完整。", func(r *chapter.ImportRequest) {
		r.Action = merge.ActionDiscard
	})

	require.Len(t, result.Outcomes, 1)
	assert.Equal(t, merge.OutcomeSkip, result.Outcomes[0].Outcome)
	assert.Empty(t, result.Outcomes[0].ChapterID)
	assert.Equal(t, before, f.repo.snapshot())
}

func TestImport_DefaultActionOverwrites(t *testing.T) {
	f := newFixture()
	created := f.importText(t, "第1章 啟程\n短。")

	result := f.importText(t, "第1章 新名\n替換後的內容。")
	require.Len(t, result.Outcomes, 1)
	assert.Equal(t, merge.OutcomeUpdate, result.Outcomes[0].Outcome)

	stored := f.mustFindKey(t, created.BookID, "official", 1)
	assert.Equal(t, created.Outcomes[0].ChapterID, stored.ID)
	assert.Equal(t, "新名", stored.Name)
	assert.Equal(t, "第1章 新名\n替換後的內容。", stored.Content)
}

func TestImport_KeepLongest(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		outcome merge.Outcome
		content string
	}{
		{"longer_wins", "第1章 啟程\n這一版更長的內容。", merge.OutcomeUpdate, "第1章 啟程\n這一版更長的內容。"},
		{"shorter_skipped", "第1章 啟程\n短", merge.OutcomeSkip, "第1章 啟程\n中等長度。"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			created := f.importText(t, "第1章 啟程\n中等長度。")

			result := f.importText(t, tt.text, func(r *chapter.ImportRequest) {
				r.Actions = map[string]merge.Action{"official:1": merge.ActionKeepLongest}
			})

			assert.Equal(t, tt.outcome, result.Outcomes[0].Outcome)
			assert.Equal(t, tt.content, f.mustFindKey(t, created.BookID, "official", 1).Content)
		})
	}
}

func TestImport_NewNumber(t *testing.T) {
	f := newFixture()
	created := f.importText(t, "第1章 啟程\n原本的內容。")

	result := f.importText(t, "第1章 另一版本\n另一個故事。", func(r *chapter.ImportRequest) {
		r.Actions = map[string]merge.Action{"official:1": merge.ActionNewNumber}
		r.NewNumbers = map[string]int{"official:1": 7}
	})

	require.Len(t, result.Outcomes, 1)
	assert.Equal(t, merge.OutcomeRenumber, result.Outcomes[0].Outcome)
	assert.Equal(t, 7, result.Outcomes[0].EffectiveNumber)
	assert.Equal(t, "official:1", result.Outcomes[0].Key)

	renumbered := f.mustFindKey(t, created.BookID, "official", 7)
	assert.Equal(t, "第7章", renumbered.Title)
	assert.Equal(t, "第7章 另一版本\n另一個故事。", renumbered.Content)

	original := f.mustFindKey(t, created.BookID, "official", 1)
	assert.Equal(t, "第1章 啟程\n原本的內容。", original.Content)
}

func TestImport_NewNumberTaken(t *testing.T) {
	f := newFixture()
	f.importText(t, "第1章 甲\n甲。\n第2章 乙\n乙。")
	before := f.repo.snapshot()

	_, err := f.service.Import(context.Background(), chapter.ImportRequest{
		BookName:   bookName,
		Text:       "第1章 丙\n丙。",
		Actions:    map[string]merge.Action{"official:1": merge.ActionNewNumber},
		NewNumbers: map[string]int{"official:1": 2},
	})

	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperr.As(err).Code)
	assert.Equal(t, before, f.repo.snapshot())
}

/*
TestImport_InvalidActionWritesNothing verifies that resolution runs for every
chapter before the first write.
*/
func TestImport_InvalidActionWritesNothing(t *testing.T) {
	f := newFixture()

	_, err := f.service.Import(context.Background(), chapter.ImportRequest{
		BookName: bookName,
		Text:     threeChapters,
		Actions:  map[string]merge.Action{"official:3": "rename"},
	})

	require.Error(t, err)
	assert.Equal(t, "INVALID_ARGUMENT", apperr.As(err).Code)
	assert.Empty(t, f.repo.snapshot())
}

/*
TestImport_FailedWriteLeavesStoreUnchanged checks that a write failing midway
rolls back the chapters written before it.
*/
func TestImport_FailedWriteLeavesStoreUnchanged(t *testing.T) {
	tests := []struct {
		name   string
		seed   string
		failOn int
	}{
		{"second_create", "", 2},
		{"create_after_update", "第1章 啟程\n短。", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			if tt.seed != "" {
				f.importText(t, tt.seed)
			}
			before := f.repo.snapshot()

			f.repo.failWrite = func(c *chapter.Chapter) error {
				if c.Number == tt.failOn {
					return errors.New("connection reset")
				}
				return nil
			}

			result, err := f.service.Import(context.Background(), chapter.ImportRequest{
				BookName: bookName,
				Text:     threeChapters,
				Action:   merge.ActionOverwrite,
			})
			require.Error(t, err)
			assert.Nil(t, result)
			assert.Equal(t, before, f.repo.snapshot())
		})
	}
}

func TestImport_Validation(t *testing.T) {
	tests := []struct {
		name    string
		request chapter.ImportRequest
		code    string
	}{
		{"blank_text", chapter.ImportRequest{BookName: bookName, Text: "  \n "}, "VALIDATION_ERROR"},
		{"unknown_default_action", chapter.ImportRequest{BookName: bookName, Text: "x", Action: "rename"}, "VALIDATION_ERROR"},
		{"bad_book_id", chapter.ImportRequest{BookID: "42", Text: "x"}, "VALIDATION_ERROR"},
		{"bad_source_url", chapter.ImportRequest{BookName: bookName, Text: "x", SourceURL: "forum"}, "VALIDATION_ERROR"},
		{"no_book", chapter.ImportRequest{Text: "只有正文。"}, "INVALID_ARGUMENT"},
		{"unknown_book_id", chapter.ImportRequest{BookID: uuid.New(), Text: "x"}, "NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newFixture().service.Import(context.Background(), tt.request)
			require.Error(t, err)
			assert.Equal(t, tt.code, apperr.As(err).Code)
		})
	}
}

func TestImport_DryRun(t *testing.T) {
	f := newFixture()

	result := f.importText(t, threeChapters, func(r *chapter.ImportRequest) {
		r.DryRun = true
	})

	assert.Len(t, result.Outcomes, 3)
	for _, outcome := range result.Outcomes {
		assert.Equal(t, merge.OutcomeCreate, outcome.Outcome)
		assert.Empty(t, outcome.ChapterID)
	}
	assert.Empty(t, f.repo.snapshot())
}

/*
TestImport_BookFromTitle checks that the thread title names the book and fills
the number of a document without headings.
*/
func TestImport_BookFromTitle(t *testing.T) {
	f := newFixture()

	result, err := f.service.Import(context.Background(), chapter.ImportRequest{
		Title: "星海歸途 第5章 夜行－禁忌書屋",
		Text:  "夜裡的街道很安靜。",
	})
	require.NoError(t, err)

	assert.Equal(t, bookName, result.BookName)
	require.Len(t, result.Outcomes, 1)
	assert.Equal(t, "official:5", result.Outcomes[0].Key)

	stored := f.mustFindKey(t, result.BookID, "official", 5)
	assert.Equal(t, "夜行", stored.Name)
	assert.Equal(t, "第5章 夜行\n夜裡的街道很安靜。", stored.Content)
}

func TestImport_ExplicitBookID(t *testing.T) {
	f := newFixture()
	existing, err := f.books.FindOrCreate(context.Background(), "另一本書", "")
	require.NoError(t, err)

	result, err := f.service.Import(context.Background(), chapter.ImportRequest{
		BookID:   existing.ID,
		BookName: bookName,
		Text:     "第1章\n內容。",
	})
	require.NoError(t, err)
	assert.Equal(t, existing.ID, result.BookID)
}

// # Rescan

func TestRescan_SplitsEmbeddedChapter(t *testing.T) {
	f := newFixture()
	bookID := uuid.New()
	id := uuid.New()

	require.NoError(t, f.repo.Create(context.Background(), &chapter.Chapter{
		ID: id, BookID: bookID, Series: "official", Number: 3, Title: "第3章",
		Content: "第3章 甲\n甲的內容。\n第4章 乙\n乙的內容。",
		Status:  chapter.StatusDownloaded,
	}))

	result, err := f.service.Rescan(context.Background(), id, nil)
	require.NoError(t, err)

	assert.Equal(t, "第3章 甲\n甲的內容。", result.Chapter.Content)
	assert.Equal(t, "甲", result.Chapter.Name)
	require.Len(t, result.Outcomes, 1)
	assert.Equal(t, merge.OutcomeCreate, result.Outcomes[0].Outcome)

	extra := f.mustFindKey(t, bookID, "official", 4)
	assert.Equal(t, "第4章 乙\n乙的內容。", extra.Content)
}

/*
TestRescan_ChapterMovesOffItsKey covers a body whose second chapter carries
the stored number; it must not be compared against the record being rescanned.
*/
func TestRescan_ChapterMovesOffItsKey(t *testing.T) {
	f := newFixture()
	bookID := uuid.New()
	id := uuid.New()

	require.NoError(t, f.repo.Create(context.Background(), &chapter.Chapter{
		ID: id, BookID: bookID, Series: "official", Number: 5, Title: "第5章",
		Content: "第4章 前\n前面的內容。\n第5章 後\n後面的內容。",
	}))

	result, err := f.service.Rescan(context.Background(), id, nil)
	require.NoError(t, err)

	assert.Equal(t, 4, result.Chapter.Number)
	assert.Equal(t, "第4章", result.Chapter.Title)
	require.Len(t, result.Outcomes, 1)
	assert.Equal(t, merge.OutcomeCreate, result.Outcomes[0].Outcome)
	assert.Equal(t, "第5章 後\n後面的內容。", f.mustFindKey(t, bookID, "official", 5).Content)
}

func TestRescan_SingleChapterKeepsIdentity(t *testing.T) {
	f := newFixture()
	id := uuid.New()

	require.NoError(t, f.repo.Create(context.Background(), &chapter.Chapter{
		ID: id, BookID: uuid.New(), Series: "official", Number: 9, Title: "第9章",
		Content: "只有正文。\n\n\n第二段。",
	}))

	result, err := f.service.Rescan(context.Background(), id, nil)
	require.NoError(t, err)

	assert.Equal(t, 9, result.Chapter.Number)
	assert.Equal(t, "第9章\n只有正文。\n\n第二段。", result.Chapter.Content)
	assert.Empty(t, result.Outcomes)
}

func TestRescan_FailedWriteLeavesChapterUnchanged(t *testing.T) {
	f := newFixture()
	bookID := uuid.New()
	id := uuid.New()

	require.NoError(t, f.repo.Create(context.Background(), &chapter.Chapter{
		ID: id, BookID: bookID, Series: "official", Number: 3, Title: "第3章",
		Content: "第3章 甲\n甲的內容。\n第4章 乙\n乙的內容。",
	}))
	before := f.repo.snapshot()

	f.repo.failWrite = func(c *chapter.Chapter) error {
		if c.Number == 4 {
			return errors.New("connection reset")
		}
		return nil
	}

	_, err := f.service.Rescan(context.Background(), id, nil)
	require.Error(t, err)
	assert.Equal(t, before, f.repo.snapshot())
}

// # Maintenance

func TestReformatChapter(t *testing.T) {
	f := newFixture()
	id := uuid.New()

	require.NoError(t, f.repo.Create(context.Background(), &chapter.Chapter{
		ID: id, BookID: uuid.New(), Series: "official", Number: 2, Title: "第2章", Name: "夜",
		Content: "第二章\n\n\n本帖最後由 admin 於 2020-01-01 編輯\n內容。   ",
	}))

	updated, err := f.service.ReformatChapter(context.Background(), id, nil)
	require.NoError(t, err)
	assert.Equal(t, "第2章 夜\n內容。", updated.Content)

	stored, err := f.repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, updated.Content, stored.Content)
}

func TestMergeChapters(t *testing.T) {
	f := newFixture()
	result := f.importText(t, threeChapters)
	ids := []string{result.Outcomes[0].ChapterID, result.Outcomes[1].ChapterID, result.Outcomes[2].ChapterID}

	merged, err := f.service.MergeChapters(context.Background(), ids[0], ids[1:])
	require.NoError(t, err)

	assert.Equal(t, "第1章 啟程\n清晨的港口。\n\n海上起風了，浪很高。\n\n回到港口。", merged.Content)

	for _, id := range ids[1:] {
		_, err := f.repo.FindByID(context.Background(), id)
		assert.True(t, apperr.IsNotFound(err))
	}

	// The freed keys accept a fresh import
	again := f.importText(t, "第2章 新風暴\n新的內容。")
	assert.Equal(t, merge.OutcomeCreate, again.Outcomes[0].Outcome)
}

func TestMergeChapters_Invalid(t *testing.T) {
	f := newFixture()
	result := f.importText(t, threeChapters)
	first, second := result.Outcomes[0].ChapterID, result.Outcomes[1].ChapterID

	otherBook := f.importText(t, "第1章\n別的書。", func(r *chapter.ImportRequest) { r.BookName = "另一本書" })
	foreign := otherBook.Outcomes[0].ChapterID

	tests := []struct {
		name    string
		target  string
		sources []string
		code    string
	}{
		{"no_sources", first, nil, "VALIDATION_ERROR"},
		{"bad_source_id", first, []string{"x"}, "VALIDATION_ERROR"},
		{"self_merge", first, []string{first}, "INVALID_ARGUMENT"},
		{"duplicate_source", first, []string{second, second}, "INVALID_ARGUMENT"},
		{"cross_book", first, []string{foreign}, "INVALID_ARGUMENT"},
		{"missing_source", first, []string{uuid.New()}, "NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := f.repo.snapshot()

			_, err := f.service.MergeChapters(context.Background(), tt.target, tt.sources)
			require.Error(t, err)
			assert.Equal(t, tt.code, apperr.As(err).Code)
			assert.Equal(t, before, f.repo.snapshot())
		})
	}
}

// # Editing

func TestUpdateChapter(t *testing.T) {
	tests := []struct {
		name  string
		patch chapter.Patch
		check func(t *testing.T, c *chapter.Chapter)
		code  string
	}{
		{
			name:  "renumber_regenerates_title",
			patch: chapter.Patch{Number: pointer.To(5)},
			check: func(t *testing.T, c *chapter.Chapter) {
				assert.Equal(t, 5, c.Number)
				assert.Equal(t, "第5章", c.Title)
				assert.Equal(t, "第5章", c.TitleSimplified)
			},
		},
		{
			name:  "mark_final",
			patch: chapter.Patch{IsFinal: pointer.To(true)},
			check: func(t *testing.T, c *chapter.Chapter) {
				assert.True(t, c.IsFinal)
				assert.Equal(t, -1, c.Number)
				assert.Equal(t, "終章", c.Title)
			},
		},
		{
			name:  "explicit_title_kept",
			patch: chapter.Patch{Number: pointer.To(6), Title: pointer.To("番外 第六話")},
			check: func(t *testing.T, c *chapter.Chapter) {
				assert.Equal(t, "番外 第六話", c.Title)
			},
		},
		{
			name:  "rename",
			patch: chapter.Patch{Name: pointer.To("新的名字"), Series: pointer.To("外傳")},
			check: func(t *testing.T, c *chapter.Chapter) {
				assert.Equal(t, "新的名字", c.Name)
				assert.Equal(t, "外傳", c.Series)
				assert.Equal(t, "第1章", c.Title)
			},
		},
		{name: "zero_number", patch: chapter.Patch{Number: pointer.To(0)}, code: "VALIDATION_ERROR"},
		{name: "negative_number", patch: chapter.Patch{Number: pointer.To(-1)}, code: "VALIDATION_ERROR"},
		{name: "long_name", patch: chapter.Patch{Name: pointer.To(strings.Repeat("長", 21))}, code: "VALIDATION_ERROR"},
		{name: "empty_series", patch: chapter.Patch{Series: pointer.To(" ")}, code: "VALIDATION_ERROR"},
		{name: "taken_number", patch: chapter.Patch{Number: pointer.To(2)}, code: "CONFLICT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			result := f.importText(t, "第1章 甲\n甲。\n第2章 乙\n乙。")
			id := result.Outcomes[0].ChapterID
			before := f.repo.snapshot()

			updated, err := f.service.UpdateChapter(context.Background(), id, tt.patch)
			if tt.code != "" {
				require.Error(t, err)
				assert.Equal(t, tt.code, apperr.As(err).Code)
				assert.Equal(t, before, f.repo.snapshot())
				return
			}

			require.NoError(t, err)
			tt.check(t, updated)

			stored, err := f.repo.FindByID(context.Background(), id)
			require.NoError(t, err)
			tt.check(t, stored)
		})
	}
}

func TestSetStatus(t *testing.T) {
	f := newFixture()
	id := f.importText(t, "第1章\n內容。").Outcomes[0].ChapterID

	require.NoError(t, f.service.SetStatus(context.Background(), id, chapter.StatusCompleted))
	stored, err := f.repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, chapter.StatusCompleted, stored.Status)

	err = f.service.SetStatus(context.Background(), id, "archived")
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)

	err = f.service.SetStatus(context.Background(), uuid.New(), chapter.StatusFailed)
	assert.True(t, apperr.IsNotFound(err))
}

func TestListChapters(t *testing.T) {
	f := newFixture()
	result := f.importText(t, threeChapters+"\n（外傳 1）\n外傳內容。")

	chapters, total, err := f.service.ListChapters(context.Background(), result.BookID, chapter.Filter{}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	for _, c := range chapters {
		assert.Empty(t, c.Content)
	}

	chapters, total, err = f.service.ListChapters(context.Background(), result.BookID,
		chapter.Filter{Series: []string{"外傳"}, IncludeContent: true}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.NotEmpty(t, chapters[0].Content)

	require.NoError(t, f.service.DeleteChapter(context.Background(), chapters[0].ID))
	_, total, err = f.service.ListChapters(context.Background(), result.BookID, chapter.Filter{}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
}
