package accounts

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Error(format string, args ...any)
}

// Config holds service options. Assembled once at startup and injected;
// business logic never reads the environment directly.
type Config interface {
	GetActivationSigningKey() string
	GetAccessSigningKey() string
	GetRefreshSigningKey() string
	GetActivationTokenTTL() time.Duration
	GetAccessTokenTTL() time.Duration
	GetRefreshTokenTTL() time.Duration
	GetOTPTTL() time.Duration
	GetOTPMaxAttempts() int
	GetPasswordMinLength() int
	GetBaseURL() string
	GetIssuer() string
	GetAudience() []string
}

// Notifier delivers a rendered message to an address. Implementations
// must capture transport failures and report them as false, never panic
// or propagate.
type Notifier interface {
	Send(ctx context.Context, to, subject, body string) bool
}

// AccountStore is the durable account repository contract. Create must
// surface duplicate emails as a conflict backed by a storage-level
// uniqueness constraint.
type AccountStore interface {
	Create(ctx context.Context, account *Account) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)
	Update(ctx context.Context, account *Account) (*Account, error)
	Delete(ctx context.Context, id uuid.UUID) error
	SetActivated(ctx context.Context, id uuid.UUID) (*Account, error)
	ResetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error
}

// OneTimeCodeStore persists live codes, one per email. RecordAttempt is
// an atomic compound increment so two concurrent wrong guesses cannot
// both miss the exhaustion ceiling.
type OneTimeCodeStore interface {
	Replace(ctx context.Context, code *OneTimeCode) (*OneTimeCode, error)
	GetByEmail(ctx context.Context, email string) (*OneTimeCode, error)
	RecordAttempt(ctx context.Context, email string) (int, error)
	Delete(ctx context.Context, email string) error
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

// TokenService signs and verifies short-lived tokens. Each TokenClass
// uses an independent signing key so one compromised secret cannot
// forge another class.
type TokenService interface {
	Issue(account *Account, class TokenClass) (string, error)
	IssueWithTTL(account *Account, class TokenClass, ttl time.Duration) (string, error)
	Validate(token string, class TokenClass) (*TokenClaims, error)
}

// PasswordAuthenticator authenticates passwords
type PasswordAuthenticator interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] ACCOUNTS "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] ACCOUNTS "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] ACCOUNTS "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
