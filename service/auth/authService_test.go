package authsvc

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"librarymanagement/model"
	"librarymanagement/util/hash"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

type userRepoMock struct {
	createFn  func(u *model.User) error
	byEmailFn func(email string) (*model.User, error)
	byIDFn    func(id int64) (*model.User, error)
}

func (m *userRepoMock) Create(ctx context.Context, u *model.User) error {
	if m.createFn == nil {
		u.ID = 1
		return nil
	}
	return m.createFn(u)
}

func (m *userRepoMock) ByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.byEmailFn == nil {
		return nil, sql.ErrNoRows
	}
	return m.byEmailFn(email)
}

func (m *userRepoMock) ByID(ctx context.Context, id int64) (*model.User, error) {
	if m.byIDFn == nil {
		return nil, sql.ErrNoRows
	}
	return m.byIDFn(id)
}

type tokenRepoMock struct {
	rotateFn func(userID int64, pair model.AuthTokens) error
	findFn   func(tokenValue string) (int64, error)
	deleteFn func(userID int64) error
}

func (m *tokenRepoMock) Rotate(ctx context.Context, userID int64, pair model.AuthTokens, accessExp, refreshExp time.Time) error {
	if m.rotateFn == nil {
		return nil
	}
	return m.rotateFn(userID, pair)
}

func (m *tokenRepoMock) FindValidRefresh(ctx context.Context, tokenValue string, now time.Time) (int64, error) {
	if m.findFn == nil {
		return 0, sql.ErrNoRows
	}
	return m.findFn(tokenValue)
}

func (m *tokenRepoMock) DeleteForUser(ctx context.Context, userID int64) error {
	if m.deleteFn == nil {
		return nil
	}
	return m.deleteFn(userID)
}

const secret = "test-secret"

func TestRegister_Success(t *testing.T) {
	var created *model.User
	var rotatedFor int64
	users := &userRepoMock{
		createFn: func(u *model.User) error {
			u.ID = 7
			created = u
			return nil
		},
	}
	tokens := &tokenRepoMock{
		rotateFn: func(userID int64, pair model.AuthTokens) error {
			rotatedFor = userID
			require.NotEmpty(t, pair.AccessToken)
			require.NotEmpty(t, pair.RefreshToken)
			return nil
		},
	}
	s := New(users, tokens, secret)

	u, pair, err := s.Register(context.Background(), model.RegisterReq{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "  Ada@Example.COM ",
		Password:  "s3cret",
	})
	require.NoError(t, err)
	require.Equal(t, "ada@example.com", created.Email)
	require.Equal(t, model.RoleNormalUser, created.Role)
	require.True(t, hash.Check(created.PasswordHash, "s3cret"))
	require.Equal(t, int64(7), u.ID)
	require.Equal(t, int64(7), rotatedFor)
	require.NotEmpty(t, pair.AccessToken)
}

func TestRegister_EmailTaken(t *testing.T) {
	users := &userRepoMock{
		createFn: func(u *model.User) error {
			return &pgconn.PgError{Code: pgerrcode.UniqueViolation}
		},
	}
	s := New(users, &tokenRepoMock{}, secret)

	_, _, err := s.Register(context.Background(), model.RegisterReq{
		FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Password: "s3cret",
	})
	require.Equal(t, ErrEmailTaken, Code(err))
}

func TestRegister_BadInput(t *testing.T) {
	s := New(&userRepoMock{}, &tokenRepoMock{}, secret)

	_, _, err := s.Register(context.Background(), model.RegisterReq{Email: "ada@example.com"})
	require.Equal(t, ErrBadInput, Code(err))
}

func TestLogin_WrongPassword(t *testing.T) {
	hashed, err := hash.HashPassword("right")
	require.NoError(t, err)
	users := &userRepoMock{
		byEmailFn: func(email string) (*model.User, error) {
			return &model.User{ID: 1, Email: email, PasswordHash: hashed}, nil
		},
	}
	s := New(users, &tokenRepoMock{}, secret)

	_, _, err = s.Login(context.Background(), model.LoginReq{Email: "ada@example.com", Password: "wrong"})
	require.Equal(t, ErrInvalidCreds, Code(err))
}

func TestLogin_UnknownEmail(t *testing.T) {
	s := New(&userRepoMock{}, &tokenRepoMock{}, secret)

	_, _, err := s.Login(context.Background(), model.LoginReq{Email: "nobody@example.com", Password: "x"})
	require.Equal(t, ErrInvalidCreds, Code(err))
}

func TestLogin_Success(t *testing.T) {
	hashed, err := hash.HashPassword("right")
	require.NoError(t, err)
	users := &userRepoMock{
		byEmailFn: func(email string) (*model.User, error) {
			require.Equal(t, "ada@example.com", email)
			return &model.User{ID: 1, Email: email, PasswordHash: hashed, Role: model.RoleSuperUser}, nil
		},
	}
	s := New(users, &tokenRepoMock{}, secret)

	u, pair, err := s.Login(context.Background(), model.LoginReq{Email: "ADA@example.com", Password: "right"})
	require.NoError(t, err)
	require.Equal(t, int64(1), u.ID)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
}

func TestRefresh_InvalidToken(t *testing.T) {
	s := New(&userRepoMock{}, &tokenRepoMock{}, secret)

	_, err := s.Refresh(context.Background(), "bogus")
	require.Equal(t, ErrInvalidRefresh, Code(err))
}

func TestRefresh_Rotates(t *testing.T) {
	users := &userRepoMock{
		byIDFn: func(id int64) (*model.User, error) {
			return &model.User{ID: id, Role: model.RoleNormalUser}, nil
		},
	}
	var rotated bool
	tokens := &tokenRepoMock{
		findFn:   func(tokenValue string) (int64, error) { return 3, nil },
		rotateFn: func(userID int64, pair model.AuthTokens) error { rotated = true; return nil },
	}
	s := New(users, tokens, secret)

	pair, err := s.Refresh(context.Background(), "stored-refresh")
	require.NoError(t, err)
	require.True(t, rotated)
	require.NotEmpty(t, pair.RefreshToken)
}

func TestProfile_NotFound(t *testing.T) {
	s := New(&userRepoMock{}, &tokenRepoMock{}, secret)

	_, err := s.Profile(context.Background(), 99)
	require.Equal(t, ErrNotFound, Code(err))
}
