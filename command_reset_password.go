package accounts

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
)

type ResetPasswordMessage struct {
	Email              string         `json:"email"`
	OTP                string         `json:"otp"`
	NewPassword        string         `json:"new_password"`
	ConfirmNewPassword string         `json:"confirm_new_password"`
	OnResponse         func(*Account) `json:"-"`
}

func (m ResetPasswordMessage) Type() string { return "account.reset_password" }

// Validate will run validation rules
func (m ResetPasswordMessage) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Email, validation.Required, is.Email),
		validation.Field(&m.OTP, validation.Required, validation.Length(6, 6), is.Digit),
		validation.Field(&m.NewPassword, validation.Required, validation.Length(MinPasswordLength, 100)),
		validation.Field(
			&m.ConfirmNewPassword,
			validation.Required,
			validation.By(ValidateStringEquals(m.NewPassword)),
		),
	)
}

type ResetPasswordHandler struct {
	repo   RepositoryManager
	otp    *OTPStore
	logger Logger
}

func NewResetPasswordHandler(repo RepositoryManager, otp *OTPStore) *ResetPasswordHandler {
	return &ResetPasswordHandler{
		repo:   repo,
		otp:    otp,
		logger: defLogger{},
	}
}

func (h *ResetPasswordHandler) WithLogger(logger Logger) *ResetPasswordHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *ResetPasswordHandler) Execute(ctx context.Context, event ResetPasswordMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during password reset")
	default:
		return h.execute(ctx, event)
	}
}

func (h *ResetPasswordHandler) execute(ctx context.Context, event ResetPasswordMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	// Validation runs before any store access so a short password never
	// burns an attempt or mutates anything.
	if err := event.Validate(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid password reset payload")
	}

	email := NormalizeEmail(event.Email)

	account, err := h.repo.Accounts().GetByEmail(ctx, email)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "password reset lookup failed")
	}

	if _, err := h.otp.Verify(ctx, email, event.OTP); err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "one time code verification failed")
	}

	hash, err := HashPassword(event.NewPassword)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash new password")
	}

	if err := h.repo.Accounts().ResetPassword(ctx, account.ID, hash); err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to store new password")
	}

	if event.OnResponse != nil {
		account.PasswordHash = hash
		event.OnResponse(account.Sanitized())
	}

	return nil
}
