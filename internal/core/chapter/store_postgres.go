// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/novelvault/internal/platform/apperr"
	"github.com/taibuivan/novelvault/internal/platform/database/schema"
	"github.com/taibuivan/novelvault/internal/platform/dberr"
)

const resourceChapter = "Chapter"

// # PostgreSQL Repository

// chapterRepository implements [Repository] using pgx.
type chapterRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed chapter store.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &chapterRepository{pool: pool}
}

var (
	selectColumns = strings.Join(schema.NovelChapter.Columns(), ", ")

	// orderClause sorts numbered chapters before the final one in each series.
	orderClause = fmt.Sprintf(" ORDER BY %s ASC, %s ASC, %s ASC",
		schema.NovelChapter.Series, schema.NovelChapter.IsFinal, schema.NovelChapter.ChapterNumber)
)

// scanTargets returns the destinations for [schema.NovelChapterTable.Columns].
func scanTargets(chapter *Chapter) []any {
	return []any{
		&chapter.ID, &chapter.BookID, &chapter.Series, &chapter.Number, &chapter.IsFinal,
		&chapter.Title, &chapter.TitleSimplified, &chapter.Name, &chapter.Content, &chapter.Status,
		&chapter.SourceURL, &chapter.LineStart, &chapter.LineEnd,
		&chapter.CreatedAt, &chapter.UpdatedAt, &chapter.DeletedAt,
	}
}

func scanChapter(row pgx.Row) (*Chapter, error) {
	var chapter Chapter
	if err := row.Scan(scanTargets(&chapter)...); err != nil {
		return nil, err
	}
	return &chapter, nil
}

/*
List retrieves the live chapters of a book.

Description: Series and status filters become ANY($n) predicates. A window
count returns the total alongside the page.
*/
func (repository *chapterRepository) List(context context.Context, bookID string, filter Filter, limit, offset int) ([]*Chapter, int, error) {
	var queryBuilder strings.Builder
	args := []any{bookID}

	queryBuilder.WriteString(fmt.Sprintf(`SELECT %s, COUNT(*) OVER() AS total_count FROM %s WHERE %s = $1 AND %s IS NULL`,
		selectColumns, schema.NovelChapter.Table, schema.NovelChapter.BookID, schema.NovelChapter.DeletedAt))

	if len(filter.Series) > 0 {
		args = append(args, filter.Series)
		queryBuilder.WriteString(fmt.Sprintf(" AND %s = ANY($%d)", schema.NovelChapter.Series, len(args)))
	}

	if len(filter.Statuses) > 0 {
		args = append(args, filter.Statuses)
		queryBuilder.WriteString(fmt.Sprintf(" AND %s = ANY($%d)", schema.NovelChapter.Status, len(args)))
	}

	args = append(args, limit, offset)
	queryBuilder.WriteString(orderClause)
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args)))

	rows, err := repository.pool.Query(context, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres: failed to list chapters: %w", err)
	}
	defer rows.Close()

	chapters := []*Chapter{}
	total := 0
	for rows.Next() {
		var chapter Chapter
		if err := rows.Scan(append(scanTargets(&chapter), &total)...); err != nil {
			return nil, 0, fmt.Errorf("postgres: failed to scan chapter: %w", err)
		}
		chapters = append(chapters, &chapter)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres: failed to iterate chapters: %w", err)
	}

	return chapters, total, nil
}

// FindByID returns a live chapter by primary key.
func (repository *chapterRepository) FindByID(context context.Context, id string) (*Chapter, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s IS NULL`,
		selectColumns, schema.NovelChapter.Table, schema.NovelChapter.ID, schema.NovelChapter.DeletedAt)

	chapter, err := scanChapter(repository.pool.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, resourceChapter, "failed to find chapter by id")
	}
	return chapter, nil
}

// FindByKey returns the live chapter under a series and number.
func (repository *chapterRepository) FindByKey(context context.Context, bookID, series string, number int) (*Chapter, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s = $2 AND %s = $3 AND %s IS NULL`,
		selectColumns, schema.NovelChapter.Table,
		schema.NovelChapter.BookID, schema.NovelChapter.Series, schema.NovelChapter.ChapterNumber,
		schema.NovelChapter.DeletedAt)

	chapter, err := scanChapter(repository.pool.QueryRow(context, query, bookID, series, number))
	if err != nil {
		return nil, dberr.Wrap(err, resourceChapter, "failed to find chapter by key")
	}
	return chapter, nil
}

// insertQuery adds a chapter and returns its timestamps.
var insertQuery = fmt.Sprintf(`
	INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	RETURNING %s, %s
`,
	schema.NovelChapter.Table,
	schema.NovelChapter.ID, schema.NovelChapter.BookID, schema.NovelChapter.Series,
	schema.NovelChapter.ChapterNumber, schema.NovelChapter.IsFinal, schema.NovelChapter.Title,
	schema.NovelChapter.TitleSimplified, schema.NovelChapter.Name, schema.NovelChapter.Content,
	schema.NovelChapter.Status, schema.NovelChapter.SourceURL, schema.NovelChapter.LineStart,
	schema.NovelChapter.LineEnd,
	schema.NovelChapter.CreatedAt, schema.NovelChapter.UpdatedAt,
)

func insertArgs(chapter *Chapter) []any {
	return []any{
		chapter.ID, chapter.BookID, chapter.Series,
		chapter.Number, chapter.IsFinal, chapter.Title,
		chapter.TitleSimplified, chapter.Name, chapter.Content,
		chapter.Status, chapter.SourceURL, chapter.LineStart,
		chapter.LineEnd,
	}
}

// updateQuery rewrites every mutable column of a live chapter.
var updateQuery = fmt.Sprintf(`
	UPDATE %s SET
		%s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = $7,
		%s = $8, %s = $9, %s = $10, %s = $11, %s = $12, %s = NOW()
	WHERE %s = $1 AND %s IS NULL
	RETURNING %s
`,
	schema.NovelChapter.Table,
	schema.NovelChapter.Series, schema.NovelChapter.ChapterNumber, schema.NovelChapter.IsFinal,
	schema.NovelChapter.Title, schema.NovelChapter.TitleSimplified, schema.NovelChapter.Name,
	schema.NovelChapter.Content, schema.NovelChapter.Status, schema.NovelChapter.SourceURL,
	schema.NovelChapter.LineStart, schema.NovelChapter.LineEnd, schema.NovelChapter.UpdatedAt,
	schema.NovelChapter.ID, schema.NovelChapter.DeletedAt,
	schema.NovelChapter.UpdatedAt,
)

func updateArgs(chapter *Chapter) []any {
	return []any{
		chapter.ID,
		chapter.Series, chapter.Number, chapter.IsFinal,
		chapter.Title, chapter.TitleSimplified, chapter.Name,
		chapter.Content, chapter.Status, chapter.SourceURL,
		chapter.LineStart, chapter.LineEnd,
	}
}

// Update persists every mutable field of a live chapter.
func (repository *chapterRepository) Update(context context.Context, chapter *Chapter) error {
	err := repository.pool.QueryRow(context, updateQuery, updateArgs(chapter)...).Scan(&chapter.UpdatedAt)
	if err != nil {
		return dberr.Wrap(err, resourceChapter, "failed to update chapter")
	}
	return nil
}

/*
SaveAll applies an import plan in one transaction. Updates run first so a
chapter moving off its key frees it for a create.
*/
func (repository *chapterRepository) SaveAll(context context.Context, updates, creates []*Chapter) error {
	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return fmt.Errorf("postgres: failed to begin transaction: %w", err)
	}
	defer transaction.Rollback(context)

	for _, chapter := range updates {
		if err := transaction.QueryRow(context, updateQuery, updateArgs(chapter)...).Scan(&chapter.UpdatedAt); err != nil {
			return dberr.Wrap(err, resourceChapter, "failed to update chapter")
		}
	}

	for _, chapter := range creates {
		if err := transaction.QueryRow(context, insertQuery, insertArgs(chapter)...).Scan(&chapter.CreatedAt, &chapter.UpdatedAt); err != nil {
			return dberr.Wrap(err, resourceChapter, "failed to create chapter")
		}
	}

	if err := transaction.Commit(context); err != nil {
		return fmt.Errorf("postgres: failed to commit chapters: %w", err)
	}
	return nil
}

// UpdateStatus sets the status of a live chapter.
func (repository *chapterRepository) UpdateStatus(context context.Context, id string, status Status) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = NOW() WHERE %s = $1 AND %s IS NULL`,
		schema.NovelChapter.Table, schema.NovelChapter.Status, schema.NovelChapter.UpdatedAt,
		schema.NovelChapter.ID, schema.NovelChapter.DeletedAt)

	response, err := repository.pool.Exec(context, query, id, status)
	if err != nil {
		return fmt.Errorf("postgres: failed to update chapter status: %w", err)
	}
	if response.RowsAffected() == 0 {
		return apperr.NotFound(resourceChapter)
	}
	return nil
}

// SoftDelete stamps deletedat on a live chapter.
func (repository *chapterRepository) SoftDelete(context context.Context, id string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = NOW() WHERE %s = $1 AND %s IS NULL`,
		schema.NovelChapter.Table, schema.NovelChapter.DeletedAt,
		schema.NovelChapter.ID, schema.NovelChapter.DeletedAt)

	response, err := repository.pool.Exec(context, query, id)
	if err != nil {
		return fmt.Errorf("postgres: failed to delete chapter: %w", err)
	}
	if response.RowsAffected() == 0 {
		return apperr.NotFound(resourceChapter)
	}
	return nil
}

/*
MergeInto writes the merged target and retires the sources in one transaction.
*/
func (repository *chapterRepository) MergeInto(context context.Context, target *Chapter, sourceIDs []string) error {
	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return fmt.Errorf("postgres: failed to begin transaction: %w", err)
	}
	defer transaction.Rollback(context)

	// Sources go first so their keys are free if the target moves onto one
	deleteQuery := fmt.Sprintf(`UPDATE %s SET %s = NOW() WHERE %s = ANY($1) AND %s = $2 AND %s IS NULL`,
		schema.NovelChapter.Table, schema.NovelChapter.DeletedAt,
		schema.NovelChapter.ID, schema.NovelChapter.BookID, schema.NovelChapter.DeletedAt)

	response, err := transaction.Exec(context, deleteQuery, sourceIDs, target.BookID)
	if err != nil {
		return fmt.Errorf("postgres: failed to retire merged chapters: %w", err)
	}
	if response.RowsAffected() != int64(len(sourceIDs)) {
		return apperr.NotFound(resourceChapter)
	}

	if err := transaction.QueryRow(context, updateQuery, updateArgs(target)...).Scan(&target.UpdatedAt); err != nil {
		return dberr.Wrap(err, resourceChapter, "failed to update merge target")
	}

	if err := transaction.Commit(context); err != nil {
		return fmt.Errorf("postgres: failed to commit merge: %w", err)
	}
	return nil
}
