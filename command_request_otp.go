package accounts

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
)

type RequestOTPMessage struct {
	Email      string                    `json:"email"`
	Purpose    string                    `json:"purpose"`
	OnResponse func(*RequestOTPResponse) `json:"-"`
}

func (m RequestOTPMessage) Type() string { return "account.request_otp" }

// Validate will run validation rules
func (m RequestOTPMessage) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Email, validation.Required, is.Email),
		validation.Field(&m.Purpose, validation.Required, validation.In(OTPPurposes...)),
	)
}

type RequestOTPResponse struct {
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

type RequestOTPHandler struct {
	otp      *OTPStore
	notifier Notifier
	logger   Logger
}

func NewRequestOTPHandler(otp *OTPStore, notifier Notifier) *RequestOTPHandler {
	return &RequestOTPHandler{
		otp:      otp,
		notifier: notifier,
		logger:   defLogger{},
	}
}

func (h *RequestOTPHandler) WithLogger(logger Logger) *RequestOTPHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *RequestOTPHandler) Execute(ctx context.Context, event RequestOTPMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during otp request")
	default:
		return h.execute(ctx, event)
	}
}

func (h *RequestOTPHandler) execute(ctx context.Context, event RequestOTPMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	if err := event.Validate(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid otp request payload")
	}

	email := NormalizeEmail(event.Email)

	code, err := h.otp.Issue(ctx, email, event.Purpose, 0)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "could not issue one time code")
	}

	subject, body := OTPEmail(code.Code, code.Purpose)

	if !h.notifier.Send(ctx, email, subject, body) {
		// The undeliverable code is purged so a later request starts
		// from a clean slate.
		if err := h.otp.Purge(ctx, email); err != nil {
			h.logger.Error("failed to purge undelivered code for %s: %v", email, err)
		}
		return ErrDeliveryFailed
	}

	if event.OnResponse != nil {
		event.OnResponse(&RequestOTPResponse{
			Email:     email,
			ExpiresAt: code.ExpiresAt,
		})
	}

	return nil
}
