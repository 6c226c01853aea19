package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	tok, err := Issue("secret", 42, "NORMAL_USER", time.Minute)
	require.NoError(t, err)

	claims, err := ParseAuth("Bearer "+tok, "secret")
	require.NoError(t, err)
	require.Equal(t, float64(42), claims["sub"])
	require.Equal(t, "NORMAL_USER", claims["role"])
}

func TestParseAuth_NoBearerPrefix(t *testing.T) {
	tok, err := Issue("secret", 1, "SUPER_USER", time.Minute)
	require.NoError(t, err)

	claims, err := ParseAuth(tok, "secret")
	require.NoError(t, err)
	require.Equal(t, "SUPER_USER", claims["role"])
}

func TestParseAuth_WrongSecret(t *testing.T) {
	tok, err := Issue("secret", 1, "NORMAL_USER", time.Minute)
	require.NoError(t, err)

	_, err = ParseAuth("Bearer "+tok, "other")
	require.Error(t, err)
}

func TestParseAuth_Expired(t *testing.T) {
	tok, err := Issue("secret", 1, "NORMAL_USER", -time.Minute)
	require.NoError(t, err)

	_, err = ParseAuth("Bearer "+tok, "secret")
	require.Error(t, err)
}

func TestParseAuth_Empty(t *testing.T) {
	_, err := ParseAuth("", "secret")
	require.Error(t, err)

	_, err = ParseAuth("Bearer ", "secret")
	require.Error(t, err)
}
