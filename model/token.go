package model

import "time"

type TokenType string

const (
	TokenAccess  TokenType = "ACCESS"
	TokenRefresh TokenType = "REFRESH"
)

type Token struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	TokenValue string    `json:"-"`
	TokenType  TokenType `json:"token_type"`
	Expires    time.Time `json:"expires"`
}

// AuthTokens is the pair returned by register/login/refresh.
type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
