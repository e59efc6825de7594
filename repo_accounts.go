package accounts

import (
	"context"
	"strings"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var resetAccountPasswordSQL = `UPDATE "accounts" AS "acc"
SET
	"password_hash" = ?,
	"updated_at" = CURRENT_TIMESTAMP
WHERE
	"acc"."id" = ?
RETURNING *;`

type accountsRepo struct {
	repo repository.Repository[*Account]
	db   *bun.DB
}

var _ AccountStore = (*accountsRepo)(nil)

// NewAccountsRepository builds the bun backed AccountStore. The schema
// enforces email uniqueness so concurrent signups for the same address
// race at the storage layer, not in application logic.
func NewAccountsRepository(db *bun.DB) AccountStore {
	repo := repository.NewRepository[*Account](db, repository.ModelHandlers[*Account]{
		NewRecord: func() *Account { return &Account{} },
		GetID: func(a *Account) uuid.UUID {
			if a == nil {
				return uuid.Nil
			}
			return a.ID
		},
		SetID: func(a *Account, id uuid.UUID) {
			if a != nil {
				a.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &accountsRepo{repo: repo, db: db}
}

func (a *accountsRepo) Create(ctx context.Context, account *Account) (*Account, error) {
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}

	account.Email = NormalizeEmail(account.Email)

	created, err := a.repo.Create(ctx, account)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, internalError(err, "could not create account")
	}

	return created, nil
}

func (a *accountsRepo) GetByEmail(ctx context.Context, email string) (*Account, error) {
	account, err := a.repo.GetByIdentifier(ctx, NormalizeEmail(email))
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrAccountNotFound
		}
		return nil, internalError(err, "could not retrieve account by email")
	}
	return account, nil
}

func (a *accountsRepo) GetByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	account, err := a.repo.GetByID(ctx, id.String())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrAccountNotFound
		}
		return nil, internalError(err, "could not retrieve account by id")
	}
	return account, nil
}

func (a *accountsRepo) Update(ctx context.Context, account *Account) (*Account, error) {
	updated, err := a.repo.Update(ctx, account)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrAccountNotFound
		}
		return nil, internalError(err, "could not update account")
	}
	return updated, nil
}

// Delete hard-deletes the row. Signup uses it as the compensating action
// when notification delivery fails, so no soft-delete semantics here.
func (a *accountsRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := a.db.NewDelete().
		Model((*Account)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return internalError(err, "could not delete account")
	}
	return nil
}

// SetActivated flips isActivated exactly once. Re-running it is a no-op
// at the storage level, which keeps activation idempotent.
func (a *accountsRepo) SetActivated(ctx context.Context, id uuid.UUID) (*Account, error) {
	account := &Account{}
	res, err := a.db.NewUpdate().
		Model(account).
		Set("is_activated = TRUE").
		Set("updated_at = CURRENT_TIMESTAMP").
		Where("id = ?", id).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, internalError(err, "could not activate account")
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return nil, ErrAccountNotFound
	}

	return account, nil
}

func (a *accountsRepo) ResetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	if _, err := a.repo.Raw(ctx, resetAccountPasswordSQL, passwordHash, id.String()); err != nil {
		return internalError(err, "failed to update account password in database")
	}
	return nil
}

// NormalizeEmail lowercases and trims the address; emails are
// case-insensitive identity.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
