package accounts

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"math/big"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// OTPVerifyResult reports the outcome of a code comparison
type OTPVerifyResult struct {
	Matched   bool
	Exhausted bool
}

// OTPStore issues and verifies one time codes. It owns the
// single-live-code-per-email and attempt ceiling invariants; persistence
// goes through a OneTimeCodeStore.
type OTPStore struct {
	store       OneTimeCodeStore
	ttl         time.Duration
	maxAttempts int
	logger      Logger
}

// NewOTPStore creates an OTPStore with limits taken from the configuration
func NewOTPStore(store OneTimeCodeStore, cfg Config) *OTPStore {
	return &OTPStore{
		store:       store,
		ttl:         cfg.GetOTPTTL(),
		maxAttempts: cfg.GetOTPMaxAttempts(),
		logger:      defLogger{},
	}
}

// WithLogger overrides the logger used by the store
func (o *OTPStore) WithLogger(logger Logger) *OTPStore {
	if logger != nil {
		o.logger = logger
	}
	return o
}

// Issue generates a fresh 6 digit code for the email, replacing any live
// code the address already had. A non-positive ttl uses the configured
// default.
func (o *OTPStore) Issue(ctx context.Context, email string, purpose OTPPurpose, ttl time.Duration) (*OneTimeCode, error) {
	if ttl <= 0 {
		ttl = o.ttl
	}

	value, err := generateNumericCode(6)
	if err != nil {
		return nil, internalError(err, "could not generate one time code")
	}

	code := &OneTimeCode{
		Email:     email,
		Code:      value,
		Purpose:   purpose,
		ExpiresAt: time.Now().Add(ttl),
	}

	return o.store.Replace(ctx, code)
}

// Verify compares the candidate against the live code for the email.
// Expired codes are deleted and reported expired; a mismatch increments
// the attempt counter and deletes the record once the ceiling is hit; a
// match deletes the record so the code is single-use by construction.
func (o *OTPStore) Verify(ctx context.Context, email, candidate string) (OTPVerifyResult, error) {
	code, err := o.store.GetByEmail(ctx, email)
	if err != nil {
		return OTPVerifyResult{}, err
	}

	if code.Expired(time.Now()) {
		if err := o.store.Delete(ctx, email); err != nil {
			o.logger.Error("failed to delete expired code for %s: %v", email, err)
		}
		return OTPVerifyResult{}, ErrOTPExpired
	}

	if subtle.ConstantTimeCompare([]byte(code.Code), []byte(candidate)) != 1 {
		attempts, err := o.store.RecordAttempt(ctx, email)
		if err != nil {
			if goerrors.Is(err, ErrOTPNotFound) {
				// purged concurrently, treat as gone
				return OTPVerifyResult{}, ErrOTPNotFound
			}
			return OTPVerifyResult{}, err
		}

		if attempts >= o.maxAttempts {
			if err := o.store.Delete(ctx, email); err != nil {
				o.logger.Error("failed to delete exhausted code for %s: %v", email, err)
			}
			return OTPVerifyResult{Exhausted: true}, ErrOTPExhausted
		}

		return OTPVerifyResult{}, ErrOTPInvalid
	}

	if err := o.store.Delete(ctx, email); err != nil {
		return OTPVerifyResult{}, internalError(err, "could not consume one time code")
	}

	return OTPVerifyResult{Matched: true}, nil
}

// Purge removes the live code for the email, if any
func (o *OTPStore) Purge(ctx context.Context, email string) error {
	return o.store.Delete(ctx, email)
}

// StartReaper runs a background sweep that reclaims expired codes until
// the context is cancelled. Verify checks expiry actively as well, so
// the reaper is a hygiene loop, not a correctness requirement.
func (o *OTPStore) StartReaper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n, err := o.store.DeleteExpired(ctx, time.Now()); err != nil {
					o.logger.Error("otp reaper sweep failed: %v", err)
				} else if n > 0 {
					o.logger.Debug("otp reaper reclaimed %d codes", n)
				}
			}
		}
	}()
}

// generateNumericCode returns a random numeric string of the given
// length, left-padded with zeros, from crypto/rand.
func generateNumericCode(length int) (string, error) {
	const digits = "0123456789"

	out := make([]byte, length)
	max := big.NewInt(int64(len(digits)))

	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = digits[n.Int64()]
	}

	return string(out), nil
}
