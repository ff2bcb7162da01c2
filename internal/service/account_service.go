package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rogerio-castellano/pixel-canvas/internal/access"
	"github.com/rogerio-castellano/pixel-canvas/internal/auth"
	"github.com/rogerio-castellano/pixel-canvas/internal/models"
	"github.com/rogerio-castellano/pixel-canvas/internal/repo"
	"github.com/rogerio-castellano/pixel-canvas/internal/validation"
	"golang.org/x/crypto/bcrypt"
)

const DefaultResetTTL = 30 * time.Minute

type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	Password2 string
}

type ResetPasswordInput struct {
	Password  string
	Password2 string
}

type ChangePasswordInput struct {
	OldPassword  string
	NewPassword  string
	NewPassword2 string
}

type ProfileInput struct {
	Username string
	Email    string
}

// AccountService registers users, checks credentials and manages passwords.
type AccountService struct {
	users    repo.UserRepository
	resets   auth.ResetTokenStore
	resetTTL time.Duration
	hashCost int
	now      func() time.Time
}

func NewAccountService(users repo.UserRepository, resets auth.ResetTokenStore, resetTTL time.Duration) *AccountService {
	if resetTTL <= 0 {
		resetTTL = DefaultResetTTL
	}
	return &AccountService{
		users:    users,
		resets:   resets,
		resetTTL: resetTTL,
		hashCost: bcrypt.DefaultCost,
		now:      time.Now,
	}
}

// SetHashCost changes the bcrypt cost for new hashes.
func (s *AccountService) SetHashCost(cost int) {
	s.hashCost = cost
}

func (s *AccountService) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)

	errs := RegisterSchema.Validate(validation.Values{
		"username":  in.Username,
		"email":     in.Email,
		"password":  in.Password,
		"password2": in.Password2,
	})
	if err := invalid(errs); err != nil {
		return models.User{}, err
	}

	hash, err := s.hash(in.Password)
	if err != nil {
		return models.User{}, err
	}

	now := timestamp(s.now())
	u, err := s.users.CreateUser(ctx, models.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return models.User{}, userError(err)
	}
	return u, nil
}

// Authenticate returns the user when password matches. Unknown users and
// wrong passwords are indistinguishable to the caller.
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (models.User, error) {
	u, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, fmt.Errorf("find user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return models.User{}, ErrInvalidCredentials
	}
	return u, nil
}

// RequestPasswordReset issues a single-use reset token for username.
func (s *AccountService) RequestPasswordReset(ctx context.Context, username string) (models.User, string, error) {
	username = strings.TrimSpace(username)
	if err := invalid(ResetRequestSchema.Validate(validation.Values{"username": username})); err != nil {
		return models.User{}, "", err
	}

	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return models.User{}, "", userError(err)
	}

	token, err := s.resets.Issue(ctx, u.ID, s.resetTTL)
	if err != nil {
		return models.User{}, "", fmt.Errorf("issue reset token: %w", err)
	}
	return u, token, nil
}

// ResetPassword sets a new password for the user bound to token. The token
// is consumed only once the new password passes validation.
func (s *AccountService) ResetPassword(ctx context.Context, token string, in ResetPasswordInput) error {
	errs := ResetPasswordSchema.Validate(validation.Values{
		"password":  in.Password,
		"password2": in.Password2,
	})
	if err := invalid(errs); err != nil {
		return err
	}

	userID, err := s.resets.Consume(ctx, token)
	if err != nil {
		if errors.Is(err, auth.ErrTokenNotFound) {
			return ErrInvalidToken
		}
		return fmt.Errorf("consume reset token: %w", err)
	}

	if err := s.setPassword(ctx, userID, in.Password); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrInvalidToken
		}
		return err
	}
	return nil
}

// ChangePassword replaces the actor's password after checking the current one.
func (s *AccountService) ChangePassword(ctx context.Context, actor access.Viewer, in ChangePasswordInput) error {
	if !actor.Authenticated() {
		return ErrForbidden
	}

	errs := ChangePasswordSchema.Validate(validation.Values{
		"old_password":  in.OldPassword,
		"new_password":  in.NewPassword,
		"new_password2": in.NewPassword2,
	})
	if err := invalid(errs); err != nil {
		return err
	}

	u, err := s.User(ctx, actor.UserID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.OldPassword)) != nil {
		return &ValidationError{Errors: validation.Errors{
			{Field: "old_password", Description: "Current password is incorrect"},
		}}
	}
	return s.setPassword(ctx, u.ID, in.NewPassword)
}

// SetPassword stores a new password for username without any further check.
// It backs the admin tool.
func (s *AccountService) SetPassword(ctx context.Context, username, password string) error {
	if err := invalid(SetPasswordSchema.Validate(validation.Values{"password": password})); err != nil {
		return err
	}

	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return userError(err)
	}
	return s.setPassword(ctx, u.ID, password)
}

// UpdateProfile changes the actor's username and email.
func (s *AccountService) UpdateProfile(ctx context.Context, actor access.Viewer, in ProfileInput) (models.User, error) {
	if !actor.Authenticated() {
		return models.User{}, ErrForbidden
	}

	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	errs := ProfileSchema.Validate(validation.Values{
		"username": in.Username,
		"email":    in.Email,
	})
	if err := invalid(errs); err != nil {
		return models.User{}, err
	}

	u, err := s.users.UpdateProfile(ctx, actor.UserID, in.Username, in.Email, timestamp(s.now()))
	if err != nil {
		return models.User{}, userError(err)
	}
	return u, nil
}

// User looks up an account by id.
func (s *AccountService) User(ctx context.Context, id int) (models.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return models.User{}, userError(err)
	}
	return u, nil
}

func (s *AccountService) setPassword(ctx context.Context, userID int, password string) error {
	hash, err := s.hash(password)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, userID, hash, timestamp(s.now())); err != nil {
		return userError(err)
	}
	return nil
}

func (s *AccountService) hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

func userError(err error) error {
	var unique *repo.UniqueViolationError
	switch {
	case errors.Is(err, repo.ErrUserNotFound):
		return ErrNotFound
	case errors.As(err, &unique):
		return &DuplicateError{Field: unique.Field}
	default:
		return fmt.Errorf("user store: %w", err)
	}
}
