package bookrepo

import (
	"context"
	"database/sql"

	"librarymanagement/model"
)

type Repo interface {
	List(ctx context.Context, limit, offset int64) ([]model.Book, error)
	Count(ctx context.Context) (int64, error)
	ByID(ctx context.Context, id int64) (*model.Book, error)
	Insert(ctx context.Context, b *model.Book) error
	Update(ctx context.Context, b *model.Book) error
	Delete(ctx context.Context, id int64) (int64, error)
	CategoryExists(ctx context.Context, id int64) (bool, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) List(ctx context.Context, limit, offset int64) ([]model.Book, error) {
	const q = `
		SELECT b.id, b.title, b.author, b.description, b.category_id, c.name,
		       b.quantity, b.available
		FROM books b
		LEFT JOIN categories c ON c.id = b.category_id
		ORDER BY b.id
		LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, q, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Book
	for rows.Next() {
		var b model.Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.Description, &b.CategoryID, &b.CategoryName, &b.Quantity, &b.Available); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *repo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM books`).Scan(&n)
	return n, err
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.Book, error) {
	const q = `
		SELECT b.id, b.title, b.author, b.description, b.category_id, c.name,
		       b.quantity, b.available
		FROM books b
		LEFT JOIN categories c ON c.id = b.category_id
		WHERE b.id = $1`
	var b model.Book
	err := r.db.QueryRowContext(ctx, q, id).Scan(&b.ID, &b.Title, &b.Author, &b.Description, &b.CategoryID, &b.CategoryName, &b.Quantity, &b.Available)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repo) Insert(ctx context.Context, b *model.Book) error {
	const q = `
		INSERT INTO books (title, author, description, category_id, quantity, available)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id`
	return r.db.QueryRowContext(ctx, q, b.Title, b.Author, b.Description, b.CategoryID, b.Quantity, b.Available).Scan(&b.ID)
}

func (r *repo) Update(ctx context.Context, b *model.Book) error {
	const q = `
		UPDATE books
		SET title = $2, author = $3, description = $4, category_id = $5,
		    quantity = $6, available = $7
		WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, b.ID, b.Title, b.Author, b.Description, b.CategoryID, b.Quantity, b.Available)
	return err
}

func (r *repo) Delete(ctx context.Context, id int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *repo) CategoryExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}
