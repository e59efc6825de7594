package accounts

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// TokenClass names a token category. Every class signs with its own key
// so compromise of one class's secret does not forge another.
type TokenClass string

const (
	// TokenClassActivation single-purpose email activation tokens
	TokenClassActivation TokenClass = "activation"
	// TokenClassAccess short-lived API credentials
	TokenClassAccess TokenClass = "access"
	// TokenClassRefresh longer-lived tokens exchangeable for access tokens
	TokenClassRefresh TokenClass = "refresh"
)

// TokenServiceImpl implements the TokenService interface
type TokenServiceImpl struct {
	keys     map[TokenClass][]byte
	ttls     map[TokenClass]time.Duration
	issuer   string
	audience jwt.ClaimStrings
	logger   Logger
}

// NewTokenService creates a TokenService from the injected configuration
func NewTokenService(cfg Config, logger Logger) *TokenServiceImpl {
	if logger == nil {
		logger = defLogger{}
	}
	return &TokenServiceImpl{
		keys: map[TokenClass][]byte{
			TokenClassActivation: []byte(cfg.GetActivationSigningKey()),
			TokenClassAccess:     []byte(cfg.GetAccessSigningKey()),
			TokenClassRefresh:    []byte(cfg.GetRefreshSigningKey()),
		},
		ttls: map[TokenClass]time.Duration{
			TokenClassActivation: cfg.GetActivationTokenTTL(),
			TokenClassAccess:     cfg.GetAccessTokenTTL(),
			TokenClassRefresh:    cfg.GetRefreshTokenTTL(),
		},
		issuer:   cfg.GetIssuer(),
		audience: cfg.GetAudience(),
		logger:   logger,
	}
}

// Issue creates a signed token for the account using the class default TTL
func (ts *TokenServiceImpl) Issue(account *Account, class TokenClass) (string, error) {
	return ts.IssueWithTTL(account, class, ts.ttls[class])
}

// IssueWithTTL creates a signed token with an explicit expiry
func (ts *TokenServiceImpl) IssueWithTTL(account *Account, class TokenClass, ttl time.Duration) (string, error) {
	if account == nil {
		return "", errors.New("account must not be nil", errors.CategoryInternal)
	}

	key, ok := ts.keys[class]
	if !ok || len(key) == 0 {
		return "", errors.New(
			fmt.Sprintf("no signing key configured for token class %q", class),
			errors.CategoryInternal,
		)
	}

	now := time.Now()
	claims := &TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   account.ID.String(),
			Audience:  ts.audience,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UID:   account.ID.String(),
		Email: account.Email,
		Use:   string(class),
	}

	ensureTokenID(&claims.RegisteredClaims)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedString, err := token.SignedString(key)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign JWT")
	}

	return signedString, nil
}

// Validate parses and verifies a token string against the class's key.
// Expiry surfaces as ErrTokenExpired; every other failure, including a
// secret class mismatch, collapses into ErrTokenMalformed so callers
// never learn which check rejected the token.
func (ts *TokenServiceImpl) Validate(tokenString string, class TokenClass) (*TokenClaims, error) {
	key, ok := ts.keys[class]
	if !ok || len(key) == 0 {
		return nil, errors.New(
			fmt.Sprintf("no signing key configured for token class %q", class),
			errors.CategoryInternal,
		)
	}

	parserOptions := make([]jwt.ParserOption, 0, 2)
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}
	if len(ts.audience) > 0 {
		parserOptions = append(parserOptions, jwt.WithAudience(ts.audience...))
	}

	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("TokenService validate encountered unexpected signing method: %v", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return key, nil
	}, parserOptions...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}

		kind := "structural"
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			kind = "signature"
		}

		return nil, errors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
			WithTextCode(ErrTokenMalformed.TextCode).
			WithMetadata(map[string]any{"kind": kind})
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		ts.logger.Error("TokenService validate could not decode claims")
		return nil, ErrTokenMalformed
	}

	if claims.Use != string(class) {
		ts.logger.Error("TokenService validate token class mismatch: want %s got %s", class, claims.Use)
		return nil, ErrTokenMalformed
	}

	return claims, nil
}

func ensureTokenID(claims *jwt.RegisteredClaims) {
	if claims.ID == "" {
		claims.ID = newTokenID()
	}
}
