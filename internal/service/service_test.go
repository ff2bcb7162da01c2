package service

import (
	"context"
	"testing"
	"time"

	"github.com/rogerio-castellano/pixel-canvas/internal/access"
	"github.com/rogerio-castellano/pixel-canvas/internal/auth"
	"github.com/rogerio-castellano/pixel-canvas/internal/repo"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fixture struct {
	users    *repo.InMemoryUserRepository
	canvases *repo.InMemoryCanvasRepository
	tokens   *auth.MemoryStore
	accounts *AccountService
	canvas   *CanvasService
	clock    *fakeClock
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func newFixture(t *testing.T) *fixture {
	t.Helper()

	users := repo.NewInMemoryUserRepository()
	canvases := repo.NewInMemoryCanvasRepository(users)
	tokens := auth.NewMemoryStore()
	clock := &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}

	accounts := NewAccountService(users, tokens, time.Hour)
	accounts.SetHashCost(bcrypt.MinCost)
	accounts.now = clock.Now

	canvasSvc := NewCanvasService(canvases, 64, 32)
	canvasSvc.SetClock(clock.Now)

	return &fixture{
		users:    users,
		canvases: canvases,
		tokens:   tokens,
		accounts: accounts,
		canvas:   canvasSvc,
		clock:    clock,
	}
}

func (f *fixture) register(t *testing.T, username string) access.Viewer {
	t.Helper()
	u, err := f.accounts.Register(context.Background(), RegisterInput{
		Username:  username,
		Email:     username + "@example.com",
		Password:  "secret123",
		Password2: "secret123",
	})
	require.NoError(t, err)
	return access.Viewer{UserID: u.ID, Username: u.Username}
}
