package authsvc

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"librarymanagement/model"
	tokenrepo "librarymanagement/repository/token"
	userrepo "librarymanagement/repository/user"
	"librarymanagement/util/hash"
	jwtutil "librarymanagement/util/jwt"
)

type ErrCode string

const (
	ErrEmailTaken     ErrCode = "EMAIL_TAKEN"
	ErrInvalidCreds   ErrCode = "INVALID_CREDENTIALS"
	ErrBadInput       ErrCode = "BAD_INPUT"
	ErrInvalidRefresh ErrCode = "INVALID_REFRESH"
	ErrNotFound       ErrCode = "NOT_FOUND"
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
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

const (
	accessTTL  = 30 * time.Minute
	refreshTTL = 7 * 24 * time.Hour
)

type Service interface {
	Register(ctx context.Context, req model.RegisterReq) (*model.User, *model.AuthTokens, error)
	Login(ctx context.Context, req model.LoginReq) (*model.User, *model.AuthTokens, error)

	// Refresh rotates the stored token pair after validating the
	// presented refresh token against the tokens table.
	Refresh(ctx context.Context, refreshToken string) (*model.AuthTokens, error)
	Logout(ctx context.Context, userID int64) error
	Profile(ctx context.Context, userID int64) (*model.User, error)
}

type service struct {
	users  userrepo.Repo
	tokens tokenrepo.Repo
	secret string
}

func New(users userrepo.Repo, tokens tokenrepo.Repo, secret string) Service {
	return &service{users: users, tokens: tokens, secret: secret}
}

func (s *service) Register(ctx context.Context, req model.RegisterReq) (*model.User, *model.AuthTokens, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" || req.FirstName == "" || req.LastName == "" {
		return nil, nil, makeErr(ErrBadInput)
	}

	role := req.Role
	if role == "" {
		role = model.RoleNormalUser
	}

	hashed, err := hash.HashPassword(req.Password)
	if err != nil {
		return nil, nil, err
	}

	u := &model.User{
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        email,
		PasswordHash: hashed,
		Role:         role,
	}

	if err := s.users.Create(ctx, u); err != nil {
		if isUniqueViolation(err) {
			return nil, nil, codedError{code: ErrEmailTaken, msg: fmt.Sprintf("email %s already registered", email)}
		}
		return nil, nil, err
	}

	pair, err := s.issuePair(ctx, u)
	if err != nil {
		return nil, nil, err
	}
	return u, pair, nil
}

func (s *service) Login(ctx context.Context, req model.LoginReq) (*model.User, *model.AuthTokens, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, nil, makeErr(ErrBadInput)
	}

	u, err := s.users.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, makeErr(ErrInvalidCreds)
		}
		return nil, nil, err
	}
	if !hash.Check(u.PasswordHash, req.Password) {
		return nil, nil, makeErr(ErrInvalidCreds)
	}

	pair, err := s.issuePair(ctx, u)
	if err != nil {
		return nil, nil, err
	}
	return u, pair, nil
}

func (s *service) Refresh(ctx context.Context, refreshToken string) (*model.AuthTokens, error) {
	userID, err := s.tokens.FindValidRefresh(ctx, refreshToken, time.Now().UTC())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrInvalidRefresh)
		}
		return nil, err
	}

	u, err := s.users.ByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrInvalidRefresh)
		}
		return nil, err
	}

	return s.issuePair(ctx, u)
}

func (s *service) Logout(ctx context.Context, userID int64) error {
	return s.tokens.DeleteForUser(ctx, userID)
}

func (s *service) Profile(ctx context.Context, userID int64) (*model.User, error) {
	u, err := s.users.ByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	return u, nil
}

// issuePair mints an access/refresh pair and replaces whatever the user
// held before.
func (s *service) issuePair(ctx context.Context, u *model.User) (*model.AuthTokens, error) {
	access, err := jwtutil.Issue(s.secret, u.ID, string(u.Role), accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := jwtutil.Issue(s.secret, u.ID, string(u.Role), refreshTTL)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	pair := model.AuthTokens{AccessToken: access, RefreshToken: refresh}
	if err := s.tokens.Rotate(ctx, u.ID, pair, now.Add(accessTTL), now.Add(refreshTTL)); err != nil {
		return nil, err
	}
	return &pair, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
