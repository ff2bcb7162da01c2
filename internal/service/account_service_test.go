package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rogerio-castellano/pixel-canvas/internal/access"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.accounts.Register(ctx, RegisterInput{
		Username:  "alice",
		Email:     "alice@example.com",
		Password:  "secret123",
		Password2: "secret123",
	})
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", u.PasswordHash)

	got, err := f.accounts.Authenticate(ctx, "alice", "secret123")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = f.accounts.Authenticate(ctx, "alice", "wrong-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.accounts.Authenticate(ctx, "nobody", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegister_Validation(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		name  string
		in    RegisterInput
		field string
	}{
		{"short username", RegisterInput{"ab", "a@example.com", "secret123", "secret123"}, "username"},
		{"bad characters", RegisterInput{"al ice!", "a@example.com", "secret123", "secret123"}, "username"},
		{"bad email", RegisterInput{"alice", "not-an-email", "secret123", "secret123"}, "email"},
		{"short password", RegisterInput{"alice", "a@example.com", "123", "123"}, "password"},
		{"mismatch", RegisterInput{"alice", "a@example.com", "secret123", "secret124"}, "password2"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.accounts.Register(context.Background(), tc.in)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.NotEmpty(t, verr.Errors.Get(tc.field))
		})
	}
}

func TestRegister_Duplicates(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice")
	ctx := context.Background()

	_, err := f.accounts.Register(ctx, RegisterInput{"alice", "other@example.com", "secret123", "secret123"})
	var dup *DuplicateError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "username", dup.Field)

	_, err = f.accounts.Register(ctx, RegisterInput{"alice2", "alice@example.com", "secret123", "secret123"})
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "email", dup.Field)

	users := f.users.All()
	require.Len(t, users, 1)
	assert.Equal(t, "alice", users[0].Username)
}

func TestRegister_PasswordOverBcryptLimit(t *testing.T) {
	cases := []struct {
		name     string
		password string
	}{
		{"80 ascii characters", strings.Repeat("a", 80)},
		{"25 four-byte runes", strings.Repeat("😀", 25)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)

			_, err := f.accounts.Register(context.Background(), RegisterInput{
				Username:  "alice",
				Email:     "alice@example.com",
				Password:  tc.password,
				Password2: tc.password,
			})
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, "Password must be at most 72 bytes", verr.Errors.Get("password"))
			assert.Empty(t, f.users.All())
		})
	}
}

func TestRegister_PasswordAtBcryptLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	password := strings.Repeat("😀", 18)

	_, err := f.accounts.Register(ctx, RegisterInput{"alice", "alice@example.com", password, password})
	require.NoError(t, err)

	_, err = f.accounts.Authenticate(ctx, "alice", password)
	assert.NoError(t, err)
}

func TestPasswordReset_OversizePasswordKeepsToken(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice")
	ctx := context.Background()

	_, token, err := f.accounts.RequestPasswordReset(ctx, "alice")
	require.NoError(t, err)

	long := strings.Repeat("b", 80)
	err = f.accounts.ResetPassword(ctx, token, ResetPasswordInput{long, long})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.NotEmpty(t, verr.Errors.Get("password"))

	require.NoError(t, f.accounts.ResetPassword(ctx, token, ResetPasswordInput{"newpass1", "newpass1"}))
	_, err = f.accounts.Authenticate(ctx, "alice", "newpass1")
	assert.NoError(t, err)
}

func TestPasswordReset_SingleUse(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice")
	ctx := context.Background()

	u, token, err := f.accounts.RequestPasswordReset(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	require.NotEmpty(t, token)

	// A form error does not burn the token.
	err = f.accounts.ResetPassword(ctx, token, ResetPasswordInput{"newpass1", "different"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	require.NoError(t, f.accounts.ResetPassword(ctx, token, ResetPasswordInput{"newpass1", "newpass1"}))

	_, err = f.accounts.Authenticate(ctx, "alice", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.accounts.Authenticate(ctx, "alice", "newpass1")
	assert.NoError(t, err)

	err = f.accounts.ResetPassword(ctx, token, ResetPasswordInput{"another1", "another1"})
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordReset_UnknownUserAndExpiredToken(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice")
	ctx := context.Background()

	_, _, err := f.accounts.RequestPasswordReset(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)

	now := time.Now()
	f.tokens.SetClock(func() time.Time { return now })
	_, token, err := f.accounts.RequestPasswordReset(ctx, "alice")
	require.NoError(t, err)

	f.tokens.SetClock(func() time.Time { return now.Add(2 * time.Hour) })
	err = f.accounts.ResetPassword(ctx, token, ResetPasswordInput{"newpass1", "newpass1"})
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")
	ctx := context.Background()

	err := f.accounts.ChangePassword(ctx, alice, ChangePasswordInput{"wrong-old", "newpass1", "newpass1"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.NotEmpty(t, verr.Errors.Get("old_password"))

	require.NoError(t, f.accounts.ChangePassword(ctx, alice, ChangePasswordInput{"secret123", "newpass1", "newpass1"}))
	_, err = f.accounts.Authenticate(ctx, "alice", "newpass1")
	assert.NoError(t, err)

	long := strings.Repeat("c", 80)
	err = f.accounts.ChangePassword(ctx, alice, ChangePasswordInput{"newpass1", long, long})
	require.ErrorAs(t, err, &verr)
	assert.NotEmpty(t, verr.Errors.Get("new_password"))

	err = f.accounts.ChangePassword(ctx, access.Anonymous, ChangePasswordInput{"a", "b", "c"})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")
	f.register(t, "bob")
	ctx := context.Background()

	u, err := f.accounts.UpdateProfile(ctx, alice, ProfileInput{Username: "alice_2", Email: "alice@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "alice_2", u.Username)

	_, err = f.accounts.UpdateProfile(ctx, alice, ProfileInput{Username: "bob", Email: "alice@example.com"})
	var dup *DuplicateError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "username", dup.Field)
}

func TestSetPassword(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice")
	ctx := context.Background()

	require.NoError(t, f.accounts.SetPassword(ctx, "alice", "adminset1"))
	_, err := f.accounts.Authenticate(ctx, "alice", "adminset1")
	assert.NoError(t, err)

	assert.ErrorIs(t, f.accounts.SetPassword(ctx, "ghost", "adminset1"), ErrNotFound)

	err = f.accounts.SetPassword(ctx, "alice", strings.Repeat("d", 73))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.NotEmpty(t, verr.Errors.Get("password"))
}
