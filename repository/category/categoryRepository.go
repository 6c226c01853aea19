package categoryrepo

import (
	"context"
	"database/sql"

	"librarymanagement/model"
)

type Repo interface {
	List(ctx context.Context, search string, limit, offset int64) ([]model.Category, error)
	Count(ctx context.Context, search string) (int64, error)
	ByID(ctx context.Context, id int64) (*model.Category, error)
	Insert(ctx context.Context, name string) (int64, error)
	Update(ctx context.Context, id int64, name string) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) List(ctx context.Context, search string, limit, offset int64) ([]model.Category, error) {
	const q = `
		SELECT c.id, c.name, COUNT(b.id)
		FROM categories c
		LEFT JOIN books b ON b.category_id = c.id
		WHERE $1 = '' OR c.name ILIKE '%' || $1 || '%'
		GROUP BY c.id
		ORDER BY c.id
		LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, q, search, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.BookCount); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *repo) Count(ctx context.Context, search string) (int64, error) {
	const q = `
		SELECT COUNT(*)
		FROM categories
		WHERE $1 = '' OR name ILIKE '%' || $1 || '%'`
	var n int64
	err := r.db.QueryRowContext(ctx, q, search).Scan(&n)
	return n, err
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.Category, error) {
	const q = `
		SELECT c.id, c.name, COUNT(b.id)
		FROM categories c
		LEFT JOIN books b ON b.category_id = c.id
		WHERE c.id = $1
		GROUP BY c.id`
	var c model.Category
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&c.ID, &c.Name, &c.BookCount); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repo) Insert(ctx context.Context, name string) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `INSERT INTO categories (name) VALUES ($1) RETURNING id`, name).Scan(&id)
	return id, err
}

func (r *repo) Update(ctx context.Context, id int64, name string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE categories SET name = $2 WHERE id = $1`, id, name)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *repo) Delete(ctx context.Context, id int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
