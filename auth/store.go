package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Sentinel errors returned by CredentialStore implementations. A missing
// user is a normal outcome for lookups, not a fault.
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

// pgUniqueViolation is the PostgreSQL error code for unique constraint
// violations.
const pgUniqueViolation = "23505"

// CredentialStore persists user identity and password-hash records. The
// service layer depends on this interface so the same logic runs against
// Postgres in production and the in-memory store in tests.
type CredentialStore interface {
	// FindByEmail looks a user up by email, returning ErrUserNotFound on a
	// miss.
	FindByEmail(ctx context.Context, email string) (*User, error)
	// Create inserts a new user record. Two concurrent creates with the same
	// email never both succeed; the loser gets ErrDuplicateEmail.
	Create(ctx context.Context, username, email, passwordHash string) (*User, error)
	// Count returns the total number of registered users.
	Count(ctx context.Context) (int64, error)
}

// PostgresCredentialStore implements CredentialStore against the users
// table. Email uniqueness is enforced by the unique index, so the
// concurrent-registration race resolves inside the database.
type PostgresCredentialStore struct {
	db *pgxpool.Pool
}

// NewPostgresCredentialStore creates a PostgresCredentialStore.
func NewPostgresCredentialStore(db *pgxpool.Pool) *PostgresCredentialStore {
	return &PostgresCredentialStore{db: db}
}

func (s *PostgresCredentialStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT id, username, email, password, created_at FROM users WHERE email = $1`

	var user User
	err := s.db.QueryRow(ctx, query, strings.ToLower(email)).Scan(
		&user.ID, &user.Username, &user.Email, &user.HashedPassword, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *PostgresCredentialStore) Create(ctx context.Context, username, email, passwordHash string) (*User, error) {
	user := &User{
		ID:             uuid.NewString(),
		Username:       username,
		Email:          strings.ToLower(email),
		HashedPassword: passwordHash,
	}

	query := `INSERT INTO users (id, username, email, password)
	          VALUES ($1, $2, $3, $4)
	          RETURNING created_at`
	err := s.db.QueryRow(ctx, query, user.ID, user.Username, user.Email, user.HashedPassword).Scan(&user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	return user, nil
}

func (s *PostgresCredentialStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// MemoryCredentialStore implements CredentialStore in process memory. The
// mutex spans the duplicate check and the insert, which is what makes
// concurrent same-email registrations mutually exclusive here.
type MemoryCredentialStore struct {
	mu      sync.Mutex
	byEmail map[string]*User
}

// NewMemoryCredentialStore creates an empty MemoryCredentialStore.
func NewMemoryCredentialStore() *MemoryCredentialStore {
	return &MemoryCredentialStore{byEmail: make(map[string]*User)}
}

func (s *MemoryCredentialStore) FindByEmail(_ context.Context, email string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (s *MemoryCredentialStore) Create(_ context.Context, username, email, passwordHash string) (*User, error) {
	key := strings.ToLower(email)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[key]; exists {
		return nil, ErrDuplicateEmail
	}

	user := &User{
		ID:             uuid.NewString(),
		Username:       username,
		Email:          key,
		HashedPassword: passwordHash,
		CreatedAt:      time.Now(),
	}
	s.byEmail[key] = user

	copied := *user
	return &copied, nil
}

func (s *MemoryCredentialStore) Count(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.byEmail)), nil
}
