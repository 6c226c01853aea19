package requestrepo

import (
	"context"
	"database/sql"
	"time"

	"librarymanagement/model"
)

// LockedBook is a book row pinned with FOR UPDATE during request creation.
type LockedBook struct {
	ID        int64
	Available int64
}

type Repo interface {
	// Transactional pieces of the create/approve/reject flows. Every
	// method taking a *sql.Tx must run inside the caller's transaction.

	// LockRequestor pins the requestor's user row so that concurrent
	// creations by the same user serialize on the quota check.
	LockRequestor(ctx context.Context, tx *sql.Tx, userID int64) (bool, error)
	UserExists(ctx context.Context, tx *sql.Tx, userID int64) (bool, error)
	CountMonthTx(ctx context.Context, tx *sql.Tx, userID int64, from, to time.Time) (int64, error)

	// LockBooks pins the requested book rows in id order, so two
	// creators contending for the same books lock them in the same
	// sequence. Missing ids are simply absent from the result.
	LockBooks(ctx context.Context, tx *sql.Tx, bookIDs []int64) ([]LockedBook, error)

	InsertRequest(ctx context.Context, tx *sql.Tx, requestorID int64, at time.Time) (int64, error)
	InsertRequestBooks(ctx context.Context, tx *sql.Tx, requestID int64, bookIDs []int64) error
	DecrementAvailability(ctx context.Context, tx *sql.Tx, bookIDs []int64) error

	StatusForUpdate(ctx context.Context, tx *sql.Tx, requestID int64) (model.RequestStatus, error)
	SetApproved(ctx context.Context, tx *sql.Tx, requestID, approverID int64) error
	SetRejected(ctx context.Context, tx *sql.Tx, requestID int64) error
	RestoreAvailability(ctx context.Context, tx *sql.Tx, requestID int64) error

	// Read projections.
	View(ctx context.Context, requestID int64) (*model.RequestView, error)
	ListForUser(ctx context.Context, userID, limit, offset int64) ([]model.RequestView, error)
	ListAll(ctx context.Context, limit, offset int64) ([]model.RequestView, error)
	CountForUser(ctx context.Context, userID int64) (int64, error)
	CountAll(ctx context.Context) (int64, error)
	CountMonth(ctx context.Context, userID int64, from, to time.Time) (int64, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) LockRequestor(ctx context.Context, tx *sql.Tx, userID int64) (bool, error) {
	const q = `
		SELECT id
		FROM users
		WHERE id = $1
		FOR UPDATE`
	var id int64
	err := tx.QueryRowContext(ctx, q, userID).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *repo) UserExists(ctx context.Context, tx *sql.Tx, userID int64) (bool, error) {
	var exists bool
	err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists)
	return exists, err
}

const countMonthQuery = `
		SELECT COUNT(*)
		FROM requests
		WHERE requestor_id = $1
		AND date_requested >= $2
		AND date_requested < $3`

func (r *repo) CountMonthTx(ctx context.Context, tx *sql.Tx, userID int64, from, to time.Time) (int64, error) {
	var n int64
	err := tx.QueryRowContext(ctx, countMonthQuery, userID, from, to).Scan(&n)
	return n, err
}

func (r *repo) CountMonth(ctx context.Context, userID int64, from, to time.Time) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, countMonthQuery, userID, from, to).Scan(&n)
	return n, err
}

func (r *repo) LockBooks(ctx context.Context, tx *sql.Tx, bookIDs []int64) ([]LockedBook, error) {
	const q = `
		SELECT id, available
		FROM books
		WHERE id = ANY($1)
		ORDER BY id
		FOR UPDATE`
	rows, err := tx.QueryContext(ctx, q, bookIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LockedBook
	for rows.Next() {
		var b LockedBook
		if err := rows.Scan(&b.ID, &b.Available); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *repo) InsertRequest(ctx context.Context, tx *sql.Tx, requestorID int64, at time.Time) (int64, error) {
	const q = `
		INSERT INTO requests (date_requested, status, requestor_id)
		VALUES ($1, $2, $3)
		RETURNING id`
	var id int64
	err := tx.QueryRowContext(ctx, q, at, model.StatusWaiting, requestorID).Scan(&id)
	return id, err
}

func (r *repo) InsertRequestBooks(ctx context.Context, tx *sql.Tx, requestID int64, bookIDs []int64) error {
	const q = `INSERT INTO request_books (request_id, book_id) VALUES ($1, $2)`
	for _, bookID := range bookIDs {
		if _, err := tx.ExecContext(ctx, q, requestID, bookID); err != nil {
			return err
		}
	}
	return nil
}

func (r *repo) DecrementAvailability(ctx context.Context, tx *sql.Tx, bookIDs []int64) error {
	const q = `
		UPDATE books
		SET available = available - 1
		WHERE id = ANY($1)`
	_, err := tx.ExecContext(ctx, q, bookIDs)
	return err
}

func (r *repo) StatusForUpdate(ctx context.Context, tx *sql.Tx, requestID int64) (model.RequestStatus, error) {
	const q = `
		SELECT status
		FROM requests
		WHERE id = $1
		FOR UPDATE`
	var status model.RequestStatus
	err := tx.QueryRowContext(ctx, q, requestID).Scan(&status)
	return status, err
}

func (r *repo) SetApproved(ctx context.Context, tx *sql.Tx, requestID, approverID int64) error {
	const q = `
		UPDATE requests
		SET status = $2, approver_id = $3
		WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, requestID, model.StatusApproved, approverID)
	return err
}

func (r *repo) SetRejected(ctx context.Context, tx *sql.Tx, requestID int64) error {
	const q = `
		UPDATE requests
		SET status = $2
		WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, requestID, model.StatusRejected)
	return err
}

func (r *repo) RestoreAvailability(ctx context.Context, tx *sql.Tx, requestID int64) error {
	const q = `
		UPDATE books
		SET available = available + 1
		FROM request_books rb
		WHERE rb.request_id = $1
		AND rb.book_id = books.id`
	_, err := tx.ExecContext(ctx, q, requestID)
	return err
}

// Read projections

const viewSelect = `
		SELECT r.id, r.date_requested, r.status, r.requestor_id,
		       u.first_name, u.last_name, u.email,
		       a.first_name, a.last_name, a.email
		FROM requests r
		JOIN users u ON u.id = r.requestor_id
		LEFT JOIN users a ON a.id = r.approver_id`

func scanView(scan func(dest ...any) error) (*model.RequestView, error) {
	var v model.RequestView
	var aFirst, aLast, aEmail sql.NullString
	err := scan(
		&v.ID, &v.DateRequested, &v.Status, &v.RequestorID,
		&v.Requestor.FirstName, &v.Requestor.LastName, &v.Requestor.Email,
		&aFirst, &aLast, &aEmail,
	)
	if err != nil {
		return nil, err
	}
	if aEmail.Valid {
		v.Approver = &model.RequestUser{
			FirstName: aFirst.String,
			LastName:  aLast.String,
			Email:     aEmail.String,
		}
	}
	v.Books = []model.RequestBook{}
	return &v, nil
}

func (r *repo) View(ctx context.Context, requestID int64) (*model.RequestView, error) {
	row := r.db.QueryRowContext(ctx, viewSelect+` WHERE r.id = $1`, requestID)
	v, err := scanView(row.Scan)
	if err != nil {
		return nil, err
	}
	views := []model.RequestView{*v}
	if err := r.attachBooks(ctx, views); err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (r *repo) ListForUser(ctx context.Context, userID, limit, offset int64) ([]model.RequestView, error) {
	const q = `
		WHERE r.requestor_id = $1
		ORDER BY r.date_requested DESC, r.id DESC
		LIMIT $2 OFFSET $3`
	return r.list(ctx, viewSelect+q, userID, limit, offset)
}

func (r *repo) ListAll(ctx context.Context, limit, offset int64) ([]model.RequestView, error) {
	const q = `
		ORDER BY r.date_requested DESC, r.id DESC
		LIMIT $1 OFFSET $2`
	return r.list(ctx, viewSelect+q, limit, offset)
}

func (r *repo) list(ctx context.Context, q string, args ...any) ([]model.RequestView, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.RequestView
	for rows.Next() {
		v, err := scanView(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachBooks(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repo) attachBooks(ctx context.Context, views []model.RequestView) error {
	if len(views) == 0 {
		return nil
	}
	ids := make([]int64, len(views))
	index := make(map[int64]int, len(views))
	for i, v := range views {
		ids[i] = v.ID
		index[v.ID] = i
	}

	const q = `
		SELECT rb.request_id, b.id, b.title, b.author, rb.returned
		FROM request_books rb
		JOIN books b ON b.id = rb.book_id
		WHERE rb.request_id = ANY($1)
		ORDER BY rb.request_id, b.id`
	rows, err := r.db.QueryContext(ctx, q, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var requestID int64
		var b model.RequestBook
		if err := rows.Scan(&requestID, &b.ID, &b.Title, &b.Author, &b.Returned); err != nil {
			return err
		}
		i := index[requestID]
		views[i].Books = append(views[i].Books, b)
	}
	return rows.Err()
}

func (r *repo) CountForUser(ctx context.Context, userID int64) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM requests WHERE requestor_id = $1`, userID).Scan(&n)
	return n, err
}

func (r *repo) CountAll(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM requests`).Scan(&n)
	return n, err
}
