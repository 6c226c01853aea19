package request

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"librarymanagement/model"
	requestrepo "librarymanagement/repository/request"
)

// errors used by controllers

type ErrCode string

const (
	ErrNotFound         ErrCode = "NOT_FOUND"
	ErrForbidden        ErrCode = "FORBIDDEN"
	ErrNonExistentUser  ErrCode = "NON_EXISTENT_USER"
	ErrNonExistentBook  ErrCode = "NON_EXISTENT_BOOK"
	ErrNoBooksProvided  ErrCode = "NO_BOOKS_PROVIDED"
	ErrTooManyBooks     ErrCode = "TOO_MANY_BOOKS"
	ErrMonthlyLimit     ErrCode = "MONTHLY_LIMIT_REACHED"
	ErrBookNotAvailable ErrCode = "BOOK_NOT_AVAILABLE"
	ErrAlreadySettled   ErrCode = "REQUEST_ALREADY_SETTLED"
)

type codedError struct {
	code ErrCode
	msg  string
}

func (e codedError) Error() string {
	if e.msg != "" {
		return e.msg
	}
	return string(e.code)
}
func (e codedError) Code() ErrCode { return e.code }

func makeErr(c ErrCode) error { return codedError{code: c} }
func makeErrf(c ErrCode, format string, args ...any) error {
	return codedError{code: c, msg: fmt.Sprintf(format, args...)}
}

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// Limits are the borrowing business constants. Injected so tests can
// shrink them.
type Limits struct {
	MaxRequestsPerMonth int64
	MaxBooksPerRequest  int64
}

var DefaultLimits = Limits{
	MaxRequestsPerMonth: 3,
	MaxBooksPerRequest:  5,
}

type Repo = requestrepo.Repo

type Service interface {
	// Create validates and persists a new Waiting request, reserving
	// one copy of each requested book.
	Create(ctx context.Context, requestorID int64, bookIDs []int64) (*model.RequestView, error)

	// Approve and Reject settle a Waiting request. Both fail with
	// ErrAlreadySettled once a request has left Waiting. Reject puts
	// the reserved copies back.
	Approve(ctx context.Context, requestID, approverID int64) error
	Reject(ctx context.Context, requestID int64) error

	GetByID(ctx context.Context, requestID int64) (*model.RequestView, error)
	GetMyByID(ctx context.Context, requestID, userID int64) (*model.RequestView, error)
	ListForUser(ctx context.Context, userID, pageNumber, pageSize int64) (*model.PagedResult[model.RequestView], error)
	ListAll(ctx context.Context, pageNumber, pageSize int64) (*model.PagedResult[model.RequestView], error)
	MyAllowance(ctx context.Context, userID int64) (*model.Allowance, error)
}

type service struct {
	db     *sql.DB
	r      Repo
	limits Limits
	now    func() time.Time
}

func New(db *sql.DB, r Repo) Service { return NewWithLimits(db, r, DefaultLimits) }

func NewWithLimits(db *sql.DB, r Repo, limits Limits) Service {
	return &service{db: db, r: r, limits: limits, now: time.Now}
}

// Create runs the whole validation chain and the write in one
// transaction. The requestor's user row and the requested book rows are
// locked FOR UPDATE, so a concurrent creation by the same user (quota)
// or for the same books (availability) waits and then re-reads settled
// state.
func (s *service) Create(ctx context.Context, requestorID int64, bookIDs []int64) (_ *model.RequestView, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	ok, err := s.r.LockRequestor(ctx, tx, requestorID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, makeErrf(ErrNonExistentUser, "requestor %d does not exist", requestorID)
	}

	now := s.now().UTC()
	from, to := monthRange(now)
	count, err := s.r.CountMonthTx(ctx, tx, requestorID, from, to)
	if err != nil {
		return nil, err
	}
	if count >= s.limits.MaxRequestsPerMonth {
		return nil, makeErr(ErrMonthlyLimit)
	}

	if len(bookIDs) == 0 {
		return nil, makeErr(ErrNoBooksProvided)
	}

	unique := dedupe(bookIDs)
	if int64(len(unique)) > s.limits.MaxBooksPerRequest {
		return nil, makeErr(ErrTooManyBooks)
	}

	locked, err := s.r.LockBooks(ctx, tx, unique)
	if err != nil {
		return nil, err
	}

	found := make(map[int64]bool, len(locked))
	var unavailable []int64
	for _, b := range locked {
		found[b.ID] = true
		if b.Available < 1 {
			unavailable = append(unavailable, b.ID)
		}
	}
	var missing []int64
	for _, id := range unique {
		if !found[id] {
			missing = append(missing, id)
		}
	}
	if len(missing) != 0 {
		return nil, makeErrf(ErrNonExistentBook, "books with IDs %s do not exist", joinIDs(missing))
	}
	if len(unavailable) != 0 {
		return nil, makeErrf(ErrBookNotAvailable, "books with IDs %s are not available", joinIDs(unavailable))
	}

	requestID, err := s.r.InsertRequest(ctx, tx, requestorID, now)
	if err != nil {
		return nil, err
	}
	if err = s.r.InsertRequestBooks(ctx, tx, requestID, unique); err != nil {
		return nil, err
	}
	if err = s.r.DecrementAvailability(ctx, tx, unique); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	return s.r.View(ctx, requestID)
}

func (s *service) Approve(ctx context.Context, requestID, approverID int64) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	exists, err := s.r.UserExists(ctx, tx, approverID)
	if err != nil {
		return err
	}
	if !exists {
		return makeErrf(ErrNonExistentUser, "approver %d does not exist", approverID)
	}

	status, err := s.r.StatusForUpdate(ctx, tx, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrNotFound)
		}
		return err
	}
	if status != model.StatusWaiting {
		return makeErr(ErrAlreadySettled)
	}

	if err = s.r.SetApproved(ctx, tx, requestID, approverID); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *service) Reject(ctx context.Context, requestID int64) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	status, err := s.r.StatusForUpdate(ctx, tx, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrNotFound)
		}
		return err
	}
	if status != model.StatusWaiting {
		return makeErr(ErrAlreadySettled)
	}

	if err = s.r.SetRejected(ctx, tx, requestID); err != nil {
		return err
	}
	if err = s.r.RestoreAvailability(ctx, tx, requestID); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *service) GetByID(ctx context.Context, requestID int64) (*model.RequestView, error) {
	v, err := s.r.View(ctx, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	return v, nil
}

func (s *service) GetMyByID(ctx context.Context, requestID, userID int64) (*model.RequestView, error) {
	v, err := s.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if v.RequestorID != userID {
		return nil, makeErr(ErrForbidden)
	}
	return v, nil
}

func (s *service) ListForUser(ctx context.Context, userID, pageNumber, pageSize int64) (*model.PagedResult[model.RequestView], error) {
	offset := (pageNumber - 1) * pageSize
	items, err := s.r.ListForUser(ctx, userID, pageSize, offset)
	if err != nil {
		return nil, err
	}
	total, err := s.r.CountForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.RequestView{}
	}
	return &model.PagedResult[model.RequestView]{Results: items, TotalRecordCount: total}, nil
}

func (s *service) ListAll(ctx context.Context, pageNumber, pageSize int64) (*model.PagedResult[model.RequestView], error) {
	offset := (pageNumber - 1) * pageSize
	items, err := s.r.ListAll(ctx, pageSize, offset)
	if err != nil {
		return nil, err
	}
	total, err := s.r.CountAll(ctx)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.RequestView{}
	}
	return &model.PagedResult[model.RequestView]{Results: items, TotalRecordCount: total}, nil
}

func (s *service) MyAllowance(ctx context.Context, userID int64) (*model.Allowance, error) {
	from, to := monthRange(s.now().UTC())
	count, err := s.r.CountMonth(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	available := s.limits.MaxRequestsPerMonth - count
	// The count can overshoot the limit if rows predate a limit change;
	// never report a negative allowance.
	if available < 0 {
		available = 0
	}
	return &model.Allowance{
		RequestsAvailable: available,
		RequestLimit:      s.limits.MaxRequestsPerMonth,
	}, nil
}

// monthRange returns [start of month, start of next month) in UTC.
func monthRange(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// dedupe returns the distinct ids in ascending order. Sorted so that
// concurrent creators lock book rows in the same sequence.
func dedupe(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ", ")
}
