package accounts

import (
	goerrors "github.com/goliatone/go-errors"
)

// Text codes surfaced to transport adapters alongside the category. The
// pair (category, text code) drives status mapping; messages stay
// user-facing and never leak internals.
const (
	TextCodeEmailTaken         = "EMAIL_TAKEN"
	TextCodeNotActivated       = "ACCOUNT_NOT_ACTIVATED"
	TextCodeInvalidCredentials = "INVALID_CREDENTIALS"
	TextCodeTokenExpired       = "TOKEN_EXPIRED"
	TextCodeTokenMalformed     = "TOKEN_MALFORMED"
	TextCodeAccountNotFound    = "ACCOUNT_NOT_FOUND"
	TextCodeOTPNotFound        = "OTP_NOT_FOUND"
	TextCodeOTPExpired         = "OTP_EXPIRED"
	TextCodeOTPInvalid         = "OTP_INVALID"
	TextCodeOTPExhausted       = "OTP_EXHAUSTED"
	TextCodeDeliveryFailed     = "DELIVERY_FAILED"
)

// ErrEmailTaken is returned when signup hits the email uniqueness constraint
var ErrEmailTaken = goerrors.New("an account with this email already exists", goerrors.CategoryConflict).
	WithTextCode(TextCodeEmailTaken)

// ErrAccountNotFound is returned when no account matches the email or id
var ErrAccountNotFound = goerrors.New("account not found", goerrors.CategoryNotFound).
	WithCode(goerrors.CodeNotFound).
	WithTextCode(TextCodeAccountNotFound)

// ErrNotActivated is returned on login before the account flipped isActivated
var ErrNotActivated = goerrors.New("account is not activated, check your email for the activation link", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode(TextCodeNotActivated)

// ErrInvalidCredentials is returned on a failed password comparison
var ErrInvalidCredentials = goerrors.New("invalid credentials", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode(TextCodeInvalidCredentials)

// ErrTokenExpired is returned for signed tokens past their expiry
var ErrTokenExpired = goerrors.New("token has expired", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode(TextCodeTokenExpired)

// ErrTokenMalformed covers structurally or cryptographically invalid
// tokens, including secret class mismatches. Callers only learn the
// user-facing category, never which check failed.
var ErrTokenMalformed = goerrors.New("invalid token", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode(TextCodeTokenMalformed)

// ErrOTPNotFound is returned when no live code exists for the email
var ErrOTPNotFound = goerrors.New("no verification code found, request a new one", goerrors.CategoryNotFound).
	WithCode(goerrors.CodeNotFound).
	WithTextCode(TextCodeOTPNotFound)

// ErrOTPExpired is returned when the code's TTL has passed
var ErrOTPExpired = goerrors.New("verification code has expired, request a new one", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode(TextCodeOTPExpired)

// ErrOTPInvalid is returned on a code mismatch with attempts remaining
var ErrOTPInvalid = goerrors.New("invalid verification code", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode(TextCodeOTPInvalid)

// ErrOTPExhausted is returned when the attempt ceiling deletes the code
var ErrOTPExhausted = goerrors.New("too many invalid attempts, request a new code", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode(TextCodeOTPExhausted)

// ErrDeliveryFailed is returned when the notifier rejects a message
var ErrDeliveryFailed = goerrors.New("could not deliver notification email", goerrors.CategoryOperation).
	WithTextCode(TextCodeDeliveryFailed)

// HasTextCode checks whether any rich error in the chain carries the
// given text code. Wrapping clears the outer TextCode, so the walk has
// to follow Source down to the originating error.
func HasTextCode(err error, textCode string) bool {
	for err != nil {
		var richErr *goerrors.Error
		if !goerrors.As(err, &richErr) {
			return false
		}
		if richErr.TextCode == textCode {
			return true
		}
		err = richErr.Source
	}
	return false
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	return HasTextCode(err, TextCodeTokenExpired)
}

// IsMalformedError will check for malformed or forged tokens
func IsMalformedError(err error) bool {
	return HasTextCode(err, TextCodeTokenMalformed)
}

// IsConflictError will check for uniqueness violations
func IsConflictError(err error) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return false
	}
	return richErr.Category == goerrors.CategoryConflict
}

// IsValidationError will check for malformed or missing input
func IsValidationError(err error) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return false
	}
	return richErr.Category == goerrors.CategoryValidation
}

// internalError hides unexpected failures behind an opaque message. The
// wrapped cause stays attached for logging at the boundary.
func internalError(err error, msg string) *goerrors.Error {
	return goerrors.Wrap(err, goerrors.CategoryInternal, msg)
}
