package categorysvc

import (
	"context"
	"database/sql"
	"testing"

	"librarymanagement/model"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

type repoMock struct {
	listFn   func(search string, limit, offset int64) ([]model.Category, error)
	countFn  func(search string) (int64, error)
	byIDFn   func(id int64) (*model.Category, error)
	insertFn func(name string) (int64, error)
	updateFn func(id int64, name string) (int64, error)
	deleteFn func(id int64) (int64, error)
}

var _ Repo = (*repoMock)(nil)

func (m *repoMock) List(ctx context.Context, search string, limit, offset int64) ([]model.Category, error) {
	if m.listFn == nil {
		return nil, nil
	}
	return m.listFn(search, limit, offset)
}

func (m *repoMock) Count(ctx context.Context, search string) (int64, error) {
	if m.countFn == nil {
		return 0, nil
	}
	return m.countFn(search)
}

func (m *repoMock) ByID(ctx context.Context, id int64) (*model.Category, error) {
	if m.byIDFn == nil {
		return &model.Category{ID: id}, nil
	}
	return m.byIDFn(id)
}

func (m *repoMock) Insert(ctx context.Context, name string) (int64, error) {
	if m.insertFn == nil {
		return 1, nil
	}
	return m.insertFn(name)
}

func (m *repoMock) Update(ctx context.Context, id int64, name string) (int64, error) {
	if m.updateFn == nil {
		return 1, nil
	}
	return m.updateFn(id, name)
}

func (m *repoMock) Delete(ctx context.Context, id int64) (int64, error) {
	if m.deleteFn == nil {
		return 1, nil
	}
	return m.deleteFn(id)
}

func TestCreate_NameTaken(t *testing.T) {
	m := &repoMock{
		insertFn: func(name string) (int64, error) {
			return 0, &pgconn.PgError{Code: pgerrcode.UniqueViolation}
		},
	}
	s := New(m)

	_, err := s.Create(context.Background(), "Fiction")
	require.Equal(t, ErrNameTaken, Code(err))
}

func TestUpdate_NotFound(t *testing.T) {
	m := &repoMock{
		updateFn: func(id int64, name string) (int64, error) { return 0, nil },
	}
	s := New(m)

	_, err := s.Update(context.Background(), 99, "Fiction")
	require.Equal(t, ErrNotFound, Code(err))
}

func TestGet_NotFound(t *testing.T) {
	m := &repoMock{
		byIDFn: func(id int64) (*model.Category, error) { return nil, sql.ErrNoRows },
	}
	s := New(m)

	_, err := s.Get(context.Background(), 99)
	require.Equal(t, ErrNotFound, Code(err))
}

func TestDelete_NotFound(t *testing.T) {
	m := &repoMock{
		deleteFn: func(id int64) (int64, error) { return 0, nil },
	}
	s := New(m)

	err := s.Delete(context.Background(), 99)
	require.Equal(t, ErrNotFound, Code(err))
}

func TestList_PassesSearchAndPaging(t *testing.T) {
	m := &repoMock{
		listFn: func(search string, limit, offset int64) ([]model.Category, error) {
			require.Equal(t, "fic", search)
			require.Equal(t, int64(5), limit)
			require.Equal(t, int64(5), offset)
			return []model.Category{{ID: 1, Name: "Fiction", BookCount: 3}}, nil
		},
		countFn: func(search string) (int64, error) { return 6, nil },
	}
	s := New(m)

	out, err := s.List(context.Background(), "fic", 2, 5)
	require.NoError(t, err)
	require.Len(t, out.Results, 1)
	require.Equal(t, int64(6), out.TotalRecordCount)
}
