package tokenrepo

import (
	"context"
	"database/sql"
	"time"

	"librarymanagement/model"
)

type Repo interface {
	// Rotate drops every token the user holds and stores a fresh
	// access/refresh pair, in one transaction.
	Rotate(ctx context.Context, userID int64, pair model.AuthTokens, accessExp, refreshExp time.Time) error

	// FindValidRefresh resolves an unexpired refresh token to its owner.
	FindValidRefresh(ctx context.Context, tokenValue string, now time.Time) (int64, error)

	DeleteForUser(ctx context.Context, userID int64) error
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) Rotate(ctx context.Context, userID int64, pair model.AuthTokens, accessExp, refreshExp time.Time) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM tokens WHERE user_id = $1`, userID); err != nil {
		return err
	}

	const ins = `INSERT INTO tokens (user_id, token_value, token_type, expires) VALUES ($1,$2,$3,$4)`
	if _, err = tx.ExecContext(ctx, ins, userID, pair.AccessToken, model.TokenAccess, accessExp); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, ins, userID, pair.RefreshToken, model.TokenRefresh, refreshExp); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *repo) FindValidRefresh(ctx context.Context, tokenValue string, now time.Time) (int64, error) {
	const q = `
		SELECT user_id
		FROM tokens
		WHERE token_value = $1
		AND token_type = $2
		AND expires > $3`
	var userID int64
	err := r.db.QueryRowContext(ctx, q, tokenValue, model.TokenRefresh, now).Scan(&userID)
	return userID, err
}

func (r *repo) DeleteForUser(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM tokens WHERE user_id = $1`, userID)
	return err
}
