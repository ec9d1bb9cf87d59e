// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/novelvault/internal/platform/database/schema"
	"github.com/taibuivan/novelvault/internal/platform/dberr"
)

const resourceBook = "Book"

// # PostgreSQL Repository

// bookRepository implements [Repository] using pgx.
type bookRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed book store.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &bookRepository{pool: pool}
}

// selectColumns is the projection shared by every read query.
var selectColumns = strings.Join(schema.NovelBook.Columns(), ", ")

func scanBook(row pgx.Row) (*Book, error) {
	var book Book
	err := row.Scan(&book.ID, &book.Name, &book.Slug, &book.SourceURL, &book.CreatedAt, &book.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &book, nil
}

/*
List retrieves books ordered by name, with a window count for pagination.
*/
func (repository *bookRepository) List(ctx context.Context, filter Filter, limit, offset int) ([]*Book, int, error) {
	var queryBuilder strings.Builder
	var args []any

	queryBuilder.WriteString(fmt.Sprintf(`SELECT %s, COUNT(*) OVER() AS total_count FROM %s WHERE TRUE`,
		selectColumns, schema.NovelBook.Table))

	if filter.Query != "" {
		args = append(args, "%"+filter.Query+"%")
		queryBuilder.WriteString(fmt.Sprintf(" AND %s ILIKE $%d", schema.NovelBook.Name, len(args)))
	}

	args = append(args, limit, offset)
	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY %s ASC LIMIT $%d OFFSET $%d",
		schema.NovelBook.Name, len(args)-1, len(args)))

	rows, err := repository.pool.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres: failed to list books: %w", err)
	}
	defer rows.Close()

	books := []*Book{}
	total := 0
	for rows.Next() {
		var book Book
		if err := rows.Scan(&book.ID, &book.Name, &book.Slug, &book.SourceURL, &book.CreatedAt, &book.UpdatedAt, &total); err != nil {
			return nil, 0, fmt.Errorf("postgres: failed to scan book: %w", err)
		}
		books = append(books, &book)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres: failed to iterate books: %w", err)
	}

	return books, total, nil
}

/*
FindByID returns a book by primary key.
*/
func (repository *bookRepository) FindByID(ctx context.Context, id string) (*Book, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		selectColumns, schema.NovelBook.Table, schema.NovelBook.ID)

	book, err := scanBook(repository.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, resourceBook, "failed to find book by id")
	}
	return book, nil
}

/*
FindByName returns a book by its unique name.
*/
func (repository *bookRepository) FindByName(ctx context.Context, name string) (*Book, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		selectColumns, schema.NovelBook.Table, schema.NovelBook.Name)

	book, err := scanBook(repository.pool.QueryRow(ctx, query, name))
	if err != nil {
		return nil, dberr.Wrap(err, resourceBook, "failed to find book by name")
	}
	return book, nil
}

/*
Create inserts a book and fills its timestamps from the database.
*/
func (repository *bookRepository) Create(ctx context.Context, book *Book) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		VALUES ($1, $2, $3, $4)
		RETURNING %s, %s
	`,
		schema.NovelBook.Table,
		schema.NovelBook.ID, schema.NovelBook.Name, schema.NovelBook.Slug, schema.NovelBook.SourceURL,
		schema.NovelBook.CreatedAt, schema.NovelBook.UpdatedAt,
	)

	err := repository.pool.QueryRow(ctx, query, book.ID, book.Name, book.Slug, book.SourceURL).
		Scan(&book.CreatedAt, &book.UpdatedAt)
	if err != nil {
		return dberr.Wrap(err, resourceBook, "failed to create book")
	}
	return nil
}
