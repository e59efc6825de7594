package accounts

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
)

type ActivateMessage struct {
	Token      string         `json:"token"`
	OnResponse func(*Account) `json:"-"`
}

func (m ActivateMessage) Type() string { return "account.activate" }

// Validate will run validation rules
func (m ActivateMessage) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Token, validation.Required),
	)
}

type ActivateHandler struct {
	repo   RepositoryManager
	tokens TokenService
	logger Logger
}

func NewActivateHandler(repo RepositoryManager, tokens TokenService) *ActivateHandler {
	return &ActivateHandler{
		repo:   repo,
		tokens: tokens,
		logger: defLogger{},
	}
}

func (h *ActivateHandler) WithLogger(logger Logger) *ActivateHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *ActivateHandler) Execute(ctx context.Context, event ActivateMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during activation")
	default:
		return h.execute(ctx, event)
	}
}

func (h *ActivateHandler) execute(ctx context.Context, event ActivateMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	if err := event.Validate(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid activation payload")
	}

	claims, err := h.tokens.Validate(event.Token, TokenClassActivation)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryAuth, "activation token rejected")
	}

	// The account is resolved by email rather than by the id claim so a
	// token minted before an account merge still lands on the live row.
	account, err := h.repo.Accounts().GetByEmail(ctx, claims.Email)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "activation lookup failed")
	}

	// Re-activating an already active account is a no-op, not an error.
	// The row is left untouched so repeat calls never churn timestamps.
	if !account.IsActivated {
		account, err = h.repo.Accounts().SetActivated(ctx, account.ID)
		if err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return richErr
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "activation update failed")
		}
	}

	if event.OnResponse != nil {
		event.OnResponse(account.Sanitized())
	}

	return nil
}
