package accounts_test

import (
	"context"
	"testing"
	"time"

	accounts "github.com/goliatone/go-accounts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func resetFixture(t *testing.T, email string) (*accounts.OTPStore, *memCodeStore, string) {
	t.Helper()

	codes := newMemCodeStore()
	otp := accounts.NewOTPStore(codes, newTestConfig())

	code, err := otp.Issue(context.Background(), email, accounts.OTPPurposePasswordReset, 0)
	require.NoError(t, err)

	return otp, codes, code.Code
}

func TestResetPassword_Success(t *testing.T) {
	otp, codes, code := resetFixture(t, "ana@x.com")
	account := testAccount("ana@x.com", true)

	store := new(MockAccountStore)
	store.On("GetByEmail", mock.Anything, "ana@x.com").Return(account, nil)
	store.On("ResetPassword", mock.Anything, account.ID, mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) {
			hash := args.Get(2).(string)
			assert.NoError(t, accounts.ComparePasswordAndHash("brand-new-pass", hash))
		}).
		Return(nil)

	handler := accounts.NewResetPasswordHandler(newMockRepositoryManager(store, codes), otp)

	err := handler.Execute(context.Background(), accounts.ResetPasswordMessage{
		Email:              "ana@x.com",
		OTP:                code,
		NewPassword:        "brand-new-pass",
		ConfirmNewPassword: "brand-new-pass",
	})

	require.NoError(t, err)
	store.AssertExpectations(t)

	// the code is consumed, a second reset with it fails
	_, err = codes.GetByEmail(context.Background(), "ana@x.com")
	assert.True(t, accounts.HasTextCode(err, accounts.TextCodeOTPNotFound))
}

func TestResetPassword_ShortPasswordNoMutation(t *testing.T) {
	otp, codes, code := resetFixture(t, "ana@x.com")

	store := new(MockAccountStore)
	handler := accounts.NewResetPasswordHandler(newMockRepositoryManager(store, codes), otp)

	err := handler.Execute(context.Background(), accounts.ResetPasswordMessage{
		Email:              "ana@x.com",
		OTP:                code,
		NewPassword:        "short",
		ConfirmNewPassword: "short",
	})

	require.Error(t, err)
	assert.True(t, accounts.IsValidationError(err))

	// nothing touched: no lookup, no attempt burned, code still live
	store.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "ResetPassword", mock.Anything, mock.Anything, mock.Anything)

	live, err := codes.GetByEmail(context.Background(), "ana@x.com")
	require.NoError(t, err)
	assert.Equal(t, 0, live.Attempts)
}

func TestResetPassword_ExhaustionAfterThreeWrongGuesses(t *testing.T) {
	otp, codes, _ := resetFixture(t, "ana@x.com")
	account := testAccount("ana@x.com", true)

	store := new(MockAccountStore)
	store.On("GetByEmail", mock.Anything, "ana@x.com").Return(account, nil)

	handler := accounts.NewResetPasswordHandler(newMockRepositoryManager(store, codes), otp)

	msg := accounts.ResetPasswordMessage{
		Email:              "ana@x.com",
		OTP:                "000000",
		NewPassword:        "brand-new-pass",
		ConfirmNewPassword: "brand-new-pass",
	}

	for i, want := range []string{
		accounts.TextCodeOTPInvalid,
		accounts.TextCodeOTPInvalid,
		accounts.TextCodeOTPExhausted,
		accounts.TextCodeOTPNotFound,
	} {
		err := handler.Execute(context.Background(), msg)
		require.Error(t, err, "attempt %d", i+1)
		assert.True(t, accounts.HasTextCode(err, want), "attempt %d expected %s, got %v", i+1, want, err)
	}

	store.AssertNotCalled(t, "ResetPassword", mock.Anything, mock.Anything, mock.Anything)
}

func TestResetPassword_ExpiredCode(t *testing.T) {
	codes := newMemCodeStore()
	otp := accounts.NewOTPStore(codes, newTestConfig())
	account := testAccount("ana@x.com", true)

	_, err := codes.Replace(context.Background(), &accounts.OneTimeCode{
		Email:     "ana@x.com",
		Code:      "123456",
		Purpose:   accounts.OTPPurposePasswordReset,
		ExpiresAt: time.Now().Add(-time.Minute),
	})
	require.NoError(t, err)

	store := new(MockAccountStore)
	store.On("GetByEmail", mock.Anything, "ana@x.com").Return(account, nil)

	handler := accounts.NewResetPasswordHandler(newMockRepositoryManager(store, codes), otp)

	err = handler.Execute(context.Background(), accounts.ResetPasswordMessage{
		Email:              "ana@x.com",
		OTP:                "123456",
		NewPassword:        "brand-new-pass",
		ConfirmNewPassword: "brand-new-pass",
	})

	require.Error(t, err)
	assert.True(t, accounts.HasTextCode(err, accounts.TextCodeOTPExpired))

	// expiry deletes the record as a side effect
	_, err = codes.GetByEmail(context.Background(), "ana@x.com")
	assert.True(t, accounts.HasTextCode(err, accounts.TextCodeOTPNotFound))
}

func TestResetPassword_UnknownAccount(t *testing.T) {
	otp, codes, code := resetFixture(t, "ghost@x.com")

	store := new(MockAccountStore)
	store.On("GetByEmail", mock.Anything, "ghost@x.com").Return(nil, accounts.ErrAccountNotFound)

	handler := accounts.NewResetPasswordHandler(newMockRepositoryManager(store, codes), otp)

	err := handler.Execute(context.Background(), accounts.ResetPasswordMessage{
		Email:              "ghost@x.com",
		OTP:                code,
		NewPassword:        "brand-new-pass",
		ConfirmNewPassword: "brand-new-pass",
	})

	require.Error(t, err)
	assert.True(t, accounts.HasTextCode(err, accounts.TextCodeAccountNotFound))
}

func TestResetPassword_ConfirmMismatch(t *testing.T) {
	otp, codes, code := resetFixture(t, "ana@x.com")

	handler := accounts.NewResetPasswordHandler(
		newMockRepositoryManager(new(MockAccountStore), codes), otp)

	err := handler.Execute(context.Background(), accounts.ResetPasswordMessage{
		Email:              "ana@x.com",
		OTP:                code,
		NewPassword:        "brand-new-pass",
		ConfirmNewPassword: "other-new-pass",
	})

	require.Error(t, err)
	assert.True(t, accounts.IsValidationError(err))
}
