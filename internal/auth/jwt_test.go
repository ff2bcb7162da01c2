package auth

import (
	"testing"
	"time"

	"github.com/rogerio-castellano/pixel-canvas/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func TestGenerateAndParseToken(t *testing.T) {
	user := models.User{ID: 7, Username: "alice"}

	token, issued, err := GenerateToken(user, testSecret, time.Now(), time.Hour, false)
	require.NoError(t, err)
	require.NotEmpty(t, issued.ID)

	claims, err := ParseToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, 7, claims.UserID())
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, issued.ID, claims.ID)
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, _, err := GenerateToken(models.User{ID: 1}, testSecret, time.Now(), time.Hour, false)
	require.NoError(t, err)

	_, err = ParseToken(token, []byte("other"))
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseToken_Expired(t *testing.T) {
	token, _, err := GenerateToken(models.User{ID: 1}, testSecret, time.Now().Add(-2*time.Hour), time.Hour, false)
	require.NoError(t, err)

	_, err = ParseToken(token, testSecret)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseToken_Garbage(t *testing.T) {
	_, err := ParseToken("not.a.token", testSecret)
	require.ErrorIs(t, err, ErrInvalidToken)
}
