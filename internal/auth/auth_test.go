package auth_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lexihop/lexihop/internal/auth"
)

func TestIssueAndParse(t *testing.T) {
	svc := auth.NewService("test-secret")

	tok, err := svc.Issue("parent-1", "parent")
	require.NoError(t, err)

	claims, err := svc.Parse(tok)
	require.NoError(t, err)
	require.Equal(t, "parent-1", claims.Sub)
	require.Equal(t, "parent", claims.Role)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	tok, err := auth.NewService("secret-a").Issue("parent-1", "parent")
	require.NoError(t, err)

	_, err = auth.NewService("secret-b").Parse(tok)
	require.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := auth.NewService("secret").Parse("not-a-token")
	require.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := auth.HashPassword("correct horse battery")
	require.NoError(t, err)
	require.True(t, auth.CheckPassword(hash, "correct horse battery"))
	require.False(t, auth.CheckPassword(hash, "wrong password"))
}
