package accounts

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type otpCodesRepo struct {
	repo repository.Repository[*OneTimeCode]
	db   *bun.DB
}

var _ OneTimeCodeStore = (*otpCodesRepo)(nil)

// NewOneTimeCodesRepository builds the bun backed OneTimeCodeStore. The
// unique index on email makes the single-live-code invariant a storage
// property rather than an application promise.
func NewOneTimeCodesRepository(db *bun.DB) OneTimeCodeStore {
	repo := repository.NewRepository[*OneTimeCode](db, repository.ModelHandlers[*OneTimeCode]{
		NewRecord: func() *OneTimeCode { return &OneTimeCode{} },
		GetID: func(c *OneTimeCode) uuid.UUID {
			if c == nil {
				return uuid.Nil
			}
			return c.ID
		},
		SetID: func(c *OneTimeCode, id uuid.UUID) {
			if c != nil {
				c.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &otpCodesRepo{repo: repo, db: db}
}

// Replace upserts on the email key so issuing a code atomically
// invalidates whatever live code the address had before.
func (s *otpCodesRepo) Replace(ctx context.Context, code *OneTimeCode) (*OneTimeCode, error) {
	if code.ID == uuid.Nil {
		code.ID = uuid.New()
	}

	code.Email = NormalizeEmail(code.Email)
	code.Attempts = 0

	_, err := s.db.NewInsert().
		Model(code).
		On("CONFLICT (email) DO UPDATE").
		Set("code = EXCLUDED.code").
		Set("purpose = EXCLUDED.purpose").
		Set("attempts = 0").
		Set("expires_at = EXCLUDED.expires_at").
		Set("updated_at = CURRENT_TIMESTAMP").
		Exec(ctx)
	if err != nil {
		return nil, internalError(err, "could not store one time code")
	}

	return code, nil
}

func (s *otpCodesRepo) GetByEmail(ctx context.Context, email string) (*OneTimeCode, error) {
	code, err := s.repo.GetByIdentifier(ctx, NormalizeEmail(email))
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrOTPNotFound
		}
		return nil, internalError(err, "could not retrieve one time code")
	}
	return code, nil
}

// RecordAttempt increments the attempt counter as a single conditional
// update and returns the new count. Two concurrent wrong guesses each
// observe their own increment, so the exhaustion ceiling cannot be
// skipped.
func (s *otpCodesRepo) RecordAttempt(ctx context.Context, email string) (int, error) {
	code := &OneTimeCode{}
	res, err := s.db.NewUpdate().
		Model(code).
		Set("attempts = attempts + 1").
		Set("updated_at = CURRENT_TIMESTAMP").
		Where("email = ?", NormalizeEmail(email)).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return 0, internalError(err, "could not record verification attempt")
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return 0, ErrOTPNotFound
	}

	return code.Attempts, nil
}

func (s *otpCodesRepo) Delete(ctx context.Context, email string) error {
	_, err := s.db.NewDelete().
		Model((*OneTimeCode)(nil)).
		Where("email = ?", NormalizeEmail(email)).
		Exec(ctx)
	if err != nil {
		return internalError(err, "could not delete one time code")
	}
	return nil
}

// DeleteExpired reclaims codes past their TTL. The OTP store's reaper
// calls this on an interval; Verify also checks expiry actively so a
// code is unusable past its TTL even between sweeps.
func (s *otpCodesRepo) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	res, err := s.db.NewDelete().
		Model((*OneTimeCode)(nil)).
		Where("expires_at <= ?", now).
		Exec(ctx)
	if err != nil {
		return 0, internalError(err, "could not reclaim expired codes")
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return int(rows), nil
}
