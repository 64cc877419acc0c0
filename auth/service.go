// Package auth handles registration, login, and the session-backed guard
// that protects the rest of the application. Authentication state lives
// server-side in the session store; the browser only ever holds an opaque
// token.
package auth

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/user/taskman-go/apperror"
	"github.com/user/taskman-go/session"
)

// User-facing messages. Login failures share one message regardless of
// cause, so a caller cannot probe which emails are registered.
const (
	MsgInvalidCredentials = "Invalid email or password"
	MsgFieldsRequired     = "All fields are required"
	MsgPasswordMismatch   = "Passwords do not match"
	MsgPasswordTooShort   = "Password must be at least 6 characters"
	MsgEmailExists        = "Email already exists"
)

// minPasswordLength is the minimum accepted password length.
const minPasswordLength = 6

// RegisterForm carries the fields of the registration form.
type RegisterForm struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
}

// Service implements the authentication flow on top of a CredentialStore.
type Service struct {
	store CredentialStore
}

// NewService creates a Service.
func NewService(store CredentialStore) *Service {
	return &Service{store: store}
}

// Login authenticates an email/password pair and returns the principal for
// the new session. "No such email" and "wrong password" both produce the
// same AuthError.
func (s *Service) Login(ctx context.Context, email, password string) (*session.Principal, error) {
	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, apperror.NewAuthError(MsgInvalidCredentials, nil)
		}
		return nil, apperror.NewDatabaseError("failed to look up user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		return nil, apperror.NewAuthError(MsgInvalidCredentials, nil)
	}

	return user.Principal(), nil
}

// Register validates the form, creates the user, and returns the principal
// so the caller can log the new user in immediately. Validation stops at the
// first failure; no partial record is ever persisted.
func (s *Service) Register(ctx context.Context, form RegisterForm) (*session.Principal, error) {
	if form.Username == "" || form.Email == "" || form.Password == "" {
		return nil, apperror.NewValidationError(MsgFieldsRequired, nil)
	}
	if form.Password != form.ConfirmPassword {
		return nil, apperror.NewValidationError(MsgPasswordMismatch, nil)
	}
	if len(form.Password) < minPasswordLength {
		return nil, apperror.NewValidationError(MsgPasswordTooShort, nil)
	}

	// Pre-check gives the common duplicate its message without burning a
	// bcrypt hash; the store's uniqueness guarantee still decides races.
	_, err := s.store.FindByEmail(ctx, form.Email)
	switch {
	case err == nil:
		return nil, apperror.NewConflictError(MsgEmailExists, nil)
	case !errors.Is(err, ErrUserNotFound):
		return nil, apperror.NewDatabaseError("failed to check existing user", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(form.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.NewInternalError("failed to hash password", err)
	}

	user, err := s.store.Create(ctx, form.Username, form.Email, string(hashed))
	if err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return nil, apperror.NewConflictError(MsgEmailExists, nil)
		}
		return nil, apperror.NewDatabaseError("failed to create user", err)
	}

	return user.Principal(), nil
}

// CountUsers reports the total number of registered users.
func (s *Service) CountUsers(ctx context.Context) (int64, error) {
	count, err := s.store.Count(ctx)
	if err != nil {
		return 0, apperror.NewDatabaseError("failed to count users", err)
	}
	return count, nil
}
