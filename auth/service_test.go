package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/user/taskman-go/apperror"
)

func registeredService(t *testing.T, email, password string) (*Service, *MemoryCredentialStore) {
	t.Helper()
	store := NewMemoryCredentialStore()
	svc := NewService(store)

	_, err := svc.Register(context.Background(), RegisterForm{
		Username:        "existing",
		Email:           email,
		Password:        password,
		ConfirmPassword: password,
	})
	require.NoError(t, err)
	return svc, store
}

func TestRegister_ValidationOrder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		form    RegisterForm
		wantMsg string
	}{
		{
			name:    "missing username",
			form:    RegisterForm{Email: "a@x.com", Password: "secret1", ConfirmPassword: "secret1"},
			wantMsg: MsgFieldsRequired,
		},
		{
			name:    "missing email",
			form:    RegisterForm{Username: "alice", Password: "secret1", ConfirmPassword: "secret1"},
			wantMsg: MsgFieldsRequired,
		},
		{
			name:    "missing password",
			form:    RegisterForm{Username: "alice", Email: "a@x.com"},
			wantMsg: MsgFieldsRequired,
		},
		{
			name:    "confirmation mismatch",
			form:    RegisterForm{Username: "alice", Email: "a@x.com", Password: "secret1", ConfirmPassword: "secret2"},
			wantMsg: MsgPasswordMismatch,
		},
		{
			name:    "password too short",
			form:    RegisterForm{Username: "alice", Email: "a@x.com", Password: "abc", ConfirmPassword: "abc"},
			wantMsg: MsgPasswordTooShort,
		},
		{
			// A short password with a mismatched confirmation reports the
			// mismatch: validation stops at the first failure.
			name:    "mismatch reported before length",
			form:    RegisterForm{Username: "alice", Email: "a@x.com", Password: "abc", ConfirmPassword: "abd"},
			wantMsg: MsgPasswordMismatch,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := NewMemoryCredentialStore()
			svc := NewService(store)

			principal, err := svc.Register(context.Background(), tt.form)
			require.Error(t, err)
			assert.Nil(t, principal)
			assert.True(t, apperror.IsValidationError(err))

			appErr, ok := apperror.FromError(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantMsg, appErr.Message)

			// No partial record may survive a failed registration.
			if tt.form.Email != "" {
				_, err := store.FindByEmail(context.Background(), tt.form.Email)
				assert.ErrorIs(t, err, ErrUserNotFound)
			}
		})
	}
}

func TestRegister_Success(t *testing.T) {
	t.Parallel()

	store := NewMemoryCredentialStore()
	svc := NewService(store)

	principal, err := svc.Register(context.Background(), RegisterForm{
		Username:        "alice",
		Email:           "A@X.com",
		Password:        "secret1",
		ConfirmPassword: "secret1",
	})
	require.NoError(t, err)

	// The returned principal is ready for auto-login and carries no secret.
	assert.Equal(t, "alice", principal.Username)
	assert.Equal(t, "a@x.com", principal.Email)
	assert.NotEmpty(t, principal.UserID)

	user, err := store.FindByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", user.HashedPassword)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte("secret1")))
}

func TestRegister_DuplicateEmail(t *testing.T) {
	t.Parallel()

	svc, _ := registeredService(t, "a@x.com", "secret1")

	principal, err := svc.Register(context.Background(), RegisterForm{
		Username:        "impostor",
		Email:           "a@x.com",
		Password:        "other123",
		ConfirmPassword: "other123",
	})
	require.Error(t, err)
	assert.Nil(t, principal)
	assert.True(t, apperror.IsConflictError(err))

	appErr, ok := apperror.FromError(err)
	require.True(t, ok)
	assert.Equal(t, MsgEmailExists, appErr.Message)
}

func TestLogin_FailureCausesAreIndistinguishable(t *testing.T) {
	t.Parallel()

	svc, _ := registeredService(t, "a@x.com", "secret1")

	_, errWrongPassword := svc.Login(context.Background(), "a@x.com", "not-the-password")
	_, errNoSuchEmail := svc.Login(context.Background(), "nobody@x.com", "whatever")

	require.Error(t, errWrongPassword)
	require.Error(t, errNoSuchEmail)
	assert.True(t, apperror.IsAuthError(errWrongPassword))
	assert.True(t, apperror.IsAuthError(errNoSuchEmail))

	wrongErr, _ := apperror.FromError(errWrongPassword)
	missErr, _ := apperror.FromError(errNoSuchEmail)
	assert.Equal(t, MsgInvalidCredentials, wrongErr.Message)
	assert.Equal(t, wrongErr.Message, missErr.Message)
}

func TestLogin_EmptyPasswordRejected(t *testing.T) {
	t.Parallel()

	svc, _ := registeredService(t, "a@x.com", "secret1")

	principal, err := svc.Login(context.Background(), "a@x.com", "")
	require.Error(t, err)
	assert.Nil(t, principal)
	assert.True(t, apperror.IsAuthError(err))

	appErr, _ := apperror.FromError(err)
	assert.Equal(t, MsgInvalidCredentials, appErr.Message)
}

func TestLogin_Success(t *testing.T) {
	t.Parallel()

	svc, _ := registeredService(t, "a@x.com", "secret1")

	principal, err := svc.Login(context.Background(), "a@x.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "existing", principal.Username)
	assert.Equal(t, "a@x.com", principal.Email)
}

func TestLogin_EmailCaseInsensitive(t *testing.T) {
	t.Parallel()

	svc, _ := registeredService(t, "a@x.com", "secret1")

	principal, err := svc.Login(context.Background(), "A@X.COM", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", principal.Email)
}

func TestCountUsers(t *testing.T) {
	t.Parallel()

	store := NewMemoryCredentialStore()
	svc := NewService(store)

	count, err := svc.CountUsers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	for _, email := range []string{"a@x.com", "b@x.com"} {
		_, err := svc.Register(context.Background(), RegisterForm{
			Username: "u", Email: email, Password: "secret1", ConfirmPassword: "secret1",
		})
		require.NoError(t, err)
	}

	count, err = svc.CountUsers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestMemoryCredentialStore_CreateDuplicate(t *testing.T) {
	t.Parallel()

	store := NewMemoryCredentialStore()

	_, err := store.Create(context.Background(), "alice", "a@x.com", "hash")
	require.NoError(t, err)

	_, err = store.Create(context.Background(), "bob", "A@X.com", "hash")
	assert.True(t, errors.Is(err, ErrDuplicateEmail))
}
