package accounts

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
)

type ProfileMessage struct {
	AccountID  string         `json:"account_id"`
	OnResponse func(*Account) `json:"-"`
}

func (m ProfileMessage) Type() string { return "account.profile" }

// Validate will run validation rules
func (m ProfileMessage) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.AccountID, validation.Required, is.UUIDv4),
	)
}

type ProfileHandler struct {
	repo   RepositoryManager
	logger Logger
}

func NewProfileHandler(repo RepositoryManager) *ProfileHandler {
	return &ProfileHandler{
		repo:   repo,
		logger: defLogger{},
	}
}

func (h *ProfileHandler) WithLogger(logger Logger) *ProfileHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *ProfileHandler) Execute(ctx context.Context, event ProfileMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during profile read")
	default:
		return h.execute(ctx, event)
	}
}

func (h *ProfileHandler) execute(ctx context.Context, event ProfileMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	if err := event.Validate(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid profile payload")
	}

	id, err := parseUUID(event.AccountID)
	if err != nil {
		return err
	}

	account, err := h.repo.Accounts().GetByID(ctx, id)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "profile lookup failed")
	}

	if event.OnResponse != nil {
		event.OnResponse(account.Sanitized())
	}

	return nil
}
