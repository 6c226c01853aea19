package database

import (
	"context"
	"database/sql"

	"librarymanagement/model"
	"librarymanagement/util/hash"
)

// Seed inserts a small development dataset. Safe to run repeatedly.
func Seed(ctx context.Context, db *sql.DB) error {
	superHash, err := hash.HashPassword("super123")
	if err != nil {
		return err
	}
	normalHash, err := hash.HashPassword("normal123")
	if err != nil {
		return err
	}

	const insUser = `
		INSERT INTO users (first_name, last_name, email, password_hash, role)
		SELECT $1, $2, $3, $4, $5
		WHERE NOT EXISTS (SELECT 1 FROM users WHERE lower(email) = lower($3))`

	if _, err := db.ExecContext(ctx, insUser, "Ada", "Admin", "admin@library.local", superHash, model.RoleSuperUser); err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, insUser, "Norman", "Reader", "reader@library.local", normalHash, model.RoleNormalUser); err != nil {
		return err
	}

	const insCat = `INSERT INTO categories (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`
	for _, name := range []string{"Fiction", "Science", "History"} {
		if _, err := db.ExecContext(ctx, insCat, name); err != nil {
			return err
		}
	}

	var bookCount int64
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM books`).Scan(&bookCount); err != nil {
		return err
	}
	if bookCount > 0 {
		return nil
	}

	const insBook = `
		INSERT INTO books (title, author, description, category_id, quantity, available)
		VALUES ($1, $2, $3, (SELECT id FROM categories WHERE name = $4), $5, $5)`
	books := []struct {
		title, author, desc, cat string
		qty                      int64
	}{
		{"The Left Hand of Darkness", "Ursula K. Le Guin", "A Hainish novel.", "Fiction", 3},
		{"A Brief History of Time", "Stephen Hawking", "From the Big Bang to black holes.", "Science", 2},
		{"SPQR", "Mary Beard", "A history of ancient Rome.", "History", 1},
	}
	for _, b := range books {
		if _, err := db.ExecContext(ctx, insBook, b.title, b.author, b.desc, b.cat, b.qty); err != nil {
			return err
		}
	}
	return nil
}
