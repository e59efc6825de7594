package accounts

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
)

type RefreshMessage struct {
	RefreshToken string                 `json:"refresh_token"`
	OnResponse   func(*RefreshResponse) `json:"-"`
}

func (m RefreshMessage) Type() string { return "account.refresh" }

// Validate will run validation rules
func (m RefreshMessage) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.RefreshToken, validation.Required),
	)
}

// RefreshResponse carries a fresh access token. The refresh token is
// not rotated; clients keep presenting the one they hold until it
// expires.
type RefreshResponse struct {
	AccessToken string `json:"access_token"`
}

type RefreshHandler struct {
	repo   RepositoryManager
	tokens TokenService
	logger Logger
}

func NewRefreshHandler(repo RepositoryManager, tokens TokenService) *RefreshHandler {
	return &RefreshHandler{
		repo:   repo,
		tokens: tokens,
		logger: defLogger{},
	}
}

func (h *RefreshHandler) WithLogger(logger Logger) *RefreshHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *RefreshHandler) Execute(ctx context.Context, event RefreshMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during token refresh")
	default:
		return h.execute(ctx, event)
	}
}

func (h *RefreshHandler) execute(ctx context.Context, event RefreshMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	if err := event.Validate(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid refresh payload")
	}

	claims, err := h.tokens.Validate(event.RefreshToken, TokenClassRefresh)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryAuth, "refresh token rejected")
	}

	id, err := claims.AccountID()
	if err != nil {
		return err
	}

	// The account is re-read on every refresh so a deleted or
	// deactivated account stops minting the moment the row changes.
	account, err := h.repo.Accounts().GetByID(ctx, id)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "refresh lookup failed")
	}

	if !account.IsActivated {
		return ErrNotActivated
	}

	access, err := h.tokens.Issue(account, TokenClassAccess)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to mint access token")
	}

	if event.OnResponse != nil {
		event.OnResponse(&RefreshResponse{AccessToken: access})
	}

	return nil
}
