package booksvc

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"librarymanagement/model"
	bookrepo "librarymanagement/repository/book"
)

type ErrCode string

const (
	ErrNotFound            ErrCode = "NOT_FOUND"
	ErrNonExistentCategory ErrCode = "NON_EXISTENT_CATEGORY"
	ErrInvalidQuantity     ErrCode = "INVALID_QUANTITY"
	ErrBookReferenced      ErrCode = "BOOK_REFERENCED"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

type Repo interface {
	List(ctx context.Context, limit, offset int64) ([]model.Book, error)
	Count(ctx context.Context) (int64, error)
	ByID(ctx context.Context, id int64) (*model.Book, error)
	Insert(ctx context.Context, b *model.Book) error
	Update(ctx context.Context, b *model.Book) error
	Delete(ctx context.Context, id int64) (int64, error)
	CategoryExists(ctx context.Context, id int64) (bool, error)
}

var _ Repo = (bookrepo.Repo)(nil)

type Service interface {
	List(ctx context.Context, pageNumber, pageSize int64) (*model.PagedResult[model.Book], error)
	Get(ctx context.Context, id int64) (*model.Book, error)
	Create(ctx context.Context, req model.CreateBookReq) (*model.Book, error)
	Update(ctx context.Context, id int64, req model.UpdateBookReq) (*model.Book, error)
	Delete(ctx context.Context, id int64) error
}

type service struct{ r Repo }

func New(r Repo) Service { return &service{r: r} }

func (s *service) List(ctx context.Context, pageNumber, pageSize int64) (*model.PagedResult[model.Book], error) {
	offset := (pageNumber - 1) * pageSize
	items, err := s.r.List(ctx, pageSize, offset)
	if err != nil {
		return nil, err
	}
	total, err := s.r.Count(ctx)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.Book{}
	}
	return &model.PagedResult[model.Book]{Results: items, TotalRecordCount: total}, nil
}

func (s *service) Get(ctx context.Context, id int64) (*model.Book, error) {
	b, err := s.r.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	return b, nil
}

func (s *service) Create(ctx context.Context, req model.CreateBookReq) (*model.Book, error) {
	if req.CategoryID != nil {
		exists, err := s.r.CategoryExists(ctx, *req.CategoryID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, makeErr(ErrNonExistentCategory)
		}
	}

	b := &model.Book{
		Title:       req.Title,
		Author:      req.Author,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Quantity:    req.Quantity,
		Available:   req.Quantity,
	}
	if err := s.r.Insert(ctx, b); err != nil {
		return nil, err
	}
	return s.r.ByID(ctx, b.ID)
}

func (s *service) Update(ctx context.Context, id int64, req model.UpdateBookReq) (*model.Book, error) {
	b, err := s.r.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}

	if req.CategoryID != nil {
		exists, err := s.r.CategoryExists(ctx, *req.CategoryID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, makeErr(ErrNonExistentCategory)
		}
		b.CategoryID = req.CategoryID
	}

	if req.Quantity != nil {
		// Shrinking the total adjusts the lendable count by the same
		// delta; the change is refused if that would drive it negative.
		delta := *req.Quantity - b.Quantity
		if b.Available+delta < 0 {
			return nil, makeErr(ErrInvalidQuantity)
		}
		b.Quantity = *req.Quantity
		b.Available += delta
	}

	if req.Title != nil {
		b.Title = *req.Title
	}
	if req.Author != nil {
		b.Author = *req.Author
	}
	if req.Description != nil {
		b.Description = *req.Description
	}

	if err := s.r.Update(ctx, b); err != nil {
		return nil, err
	}
	return s.r.ByID(ctx, id)
}

func (s *service) Delete(ctx context.Context, id int64) error {
	affected, err := s.r.Delete(ctx, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return makeErr(ErrBookReferenced)
		}
		return err
	}
	if affected == 0 {
		return makeErr(ErrNotFound)
	}
	return nil
}
