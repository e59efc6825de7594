package accounts

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// TokenClaims is the claim set carried by every signed token: the
// account id and email as subject identity plus the class tag that
// Validate checks against the expected secret class.
type TokenClaims struct {
	jwt.RegisteredClaims
	UID   string `json:"uid,omitempty"`
	Email string `json:"email,omitempty"`
	Use   string `json:"use,omitempty"`
}

// AccountID parses the embedded account id
func (c *TokenClaims) AccountID() (uuid.UUID, error) {
	raw := c.UID
	if raw == "" {
		raw = c.RegisteredClaims.Subject
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, goerrors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
			WithTextCode(ErrTokenMalformed.TextCode)
	}

	return id, nil
}

// UserID returns the embedded account id as a string
func (c *TokenClaims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.RegisteredClaims.Subject
}

// Expires returns the expiry timestamp, zero when absent
func (c *TokenClaims) Expires() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

func newTokenID() string {
	return uuid.NewString()
}

func parseUUID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, goerrors.Wrap(err, goerrors.CategoryValidation, "value is not a valid identifier")
	}
	return id, nil
}
