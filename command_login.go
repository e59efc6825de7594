package accounts

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
)

type LoginMessage struct {
	Email      string               `json:"email"`
	Password   string               `json:"password"`
	OnResponse func(*LoginResponse) `json:"-"`
}

func (m LoginMessage) Type() string { return "account.login" }

// Validate will run validation rules
func (m LoginMessage) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Email, validation.Required, is.Email),
		validation.Field(&m.Password, validation.Required),
	)
}

type LoginResponse struct {
	Account      *Account `json:"account"`
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
}

type LoginHandler struct {
	repo      RepositoryManager
	tokens    TokenService
	passwords PasswordAuthenticator
	logger    Logger
}

func NewLoginHandler(repo RepositoryManager, tokens TokenService) *LoginHandler {
	return &LoginHandler{
		repo:      repo,
		tokens:    tokens,
		passwords: NewPasswordAuthenticator(),
		logger:    defLogger{},
	}
}

func (h *LoginHandler) WithLogger(logger Logger) *LoginHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *LoginHandler) WithPasswordAuthenticator(auth PasswordAuthenticator) *LoginHandler {
	if auth != nil {
		h.passwords = auth
	}
	return h
}

func (h *LoginHandler) Execute(ctx context.Context, event LoginMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during login")
	default:
		return h.execute(ctx, event)
	}
}

func (h *LoginHandler) execute(ctx context.Context, event LoginMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	if err := event.Validate(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid login payload")
	}

	account, err := h.repo.Accounts().GetByEmail(ctx, NormalizeEmail(event.Email))
	if err != nil {
		if goerrors.IsNotFound(err) {
			// Burn a comparison so a missing account costs the same as a
			// wrong password.
			_ = h.passwords.ComparePasswordAndHash(event.Password, RandomPasswordHash())
			return ErrAccountNotFound
		}
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "login lookup failed")
	}

	// Activation state is checked before the credential so a dormant
	// account gets the actionable error even with the right password.
	if !account.IsActivated {
		return ErrNotActivated
	}

	if err := h.passwords.ComparePasswordAndHash(event.Password, account.PasswordHash); err != nil {
		return ErrInvalidCredentials
	}

	access, err := h.tokens.Issue(account, TokenClassAccess)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to mint access token")
	}

	refresh, err := h.tokens.Issue(account, TokenClassRefresh)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to mint refresh token")
	}

	if event.OnResponse != nil {
		event.OnResponse(&LoginResponse{
			Account:      account.Sanitized(),
			AccessToken:  access,
			RefreshToken: refresh,
		})
	}

	return nil
}
