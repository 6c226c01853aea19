package categorysvc

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"librarymanagement/model"
	categoryrepo "librarymanagement/repository/category"
)

type ErrCode string

const (
	ErrNotFound  ErrCode = "NOT_FOUND"
	ErrNameTaken ErrCode = "NAME_TAKEN"
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

type Repo = categoryrepo.Repo

type Service interface {
	List(ctx context.Context, search string, pageNumber, pageSize int64) (*model.PagedResult[model.Category], error)
	Get(ctx context.Context, id int64) (*model.Category, error)
	Create(ctx context.Context, name string) (*model.Category, error)
	Update(ctx context.Context, id int64, name string) (*model.Category, error)
	Delete(ctx context.Context, id int64) error
}

type service struct{ r Repo }

func New(r Repo) Service { return &service{r: r} }

func (s *service) List(ctx context.Context, search string, pageNumber, pageSize int64) (*model.PagedResult[model.Category], error) {
	offset := (pageNumber - 1) * pageSize
	items, err := s.r.List(ctx, search, pageSize, offset)
	if err != nil {
		return nil, err
	}
	total, err := s.r.Count(ctx, search)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.Category{}
	}
	return &model.PagedResult[model.Category]{Results: items, TotalRecordCount: total}, nil
}

func (s *service) Get(ctx context.Context, id int64) (*model.Category, error) {
	c, err := s.r.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	return c, nil
}

func (s *service) Create(ctx context.Context, name string) (*model.Category, error) {
	id, err := s.r.Insert(ctx, name)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, makeErr(ErrNameTaken)
		}
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *service) Update(ctx context.Context, id int64, name string) (*model.Category, error) {
	affected, err := s.r.Update(ctx, id, name)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, makeErr(ErrNameTaken)
		}
		return nil, err
	}
	if affected == 0 {
		return nil, makeErr(ErrNotFound)
	}
	return s.Get(ctx, id)
}

func (s *service) Delete(ctx context.Context, id int64) error {
	affected, err := s.r.Delete(ctx, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return makeErr(ErrNotFound)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
