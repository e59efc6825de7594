package accounts_test

import (
	"context"
	"strings"
	"testing"

	accounts "github.com/goliatone/go-accounts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func signupMessage() accounts.SignupMessage {
	return accounts.SignupMessage{
		Name:            "Ana",
		Email:           "ana@x.com",
		Password:        "secret1",
		ConfirmPassword: "secret1",
		Gender:          accounts.GenderFemale,
	}
}

func TestSignup_Success(t *testing.T) {
	cfg := newTestConfig()
	tokens := accounts.NewTokenService(cfg, nil)
	notifier := newRecordingNotifier(true)

	store := new(MockAccountStore)
	store.On("Create", mock.Anything, mock.AnythingOfType("*accounts.Account")).
		Return(testAccount("ana@x.com", false), nil)

	repo := newMockRepositoryManager(store, nil)
	handler := accounts.NewSignupHandler(repo, tokens, notifier, cfg.GetBaseURL())

	var res *accounts.SignupResponse
	msg := signupMessage()
	msg.OnResponse = func(r *accounts.SignupResponse) { res = r }

	err := handler.Execute(context.Background(), msg)
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, "ana@x.com", res.Account.Email)
	assert.False(t, res.Account.IsActivated)
	assert.Empty(t, res.Account.PasswordHash)

	assert.True(t, strings.HasPrefix(res.ActivationLink, cfg.GetBaseURL()+"/auth/activate/"))

	claims, err := tokens.Validate(res.ActivationToken, accounts.TokenClassActivation)
	require.NoError(t, err)
	assert.Equal(t, "ana@x.com", claims.Email)

	sent := notifier.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "ana@x.com", sent[0].To)
	assert.Contains(t, sent[0].Body, res.ActivationLink)

	store.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestSignup_HashesPassword(t *testing.T) {
	cfg := newTestConfig()
	tokens := accounts.NewTokenService(cfg, nil)
	notifier := newRecordingNotifier(true)

	store := new(MockAccountStore)
	store.On("Create", mock.Anything, mock.AnythingOfType("*accounts.Account")).
		Run(func(args mock.Arguments) {
			account := args.Get(1).(*accounts.Account)
			assert.NotEqual(t, "secret1", account.PasswordHash)
			assert.NoError(t, accounts.ComparePasswordAndHash("secret1", account.PasswordHash))
			assert.Equal(t, accounts.RoleUser, account.Role)
		}).
		Return(testAccount("ana@x.com", false), nil)

	repo := newMockRepositoryManager(store, nil)
	handler := accounts.NewSignupHandler(repo, tokens, notifier, cfg.GetBaseURL())

	err := handler.Execute(context.Background(), signupMessage())
	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestSignup_DeliveryFailureRollsBack(t *testing.T) {
	cfg := newTestConfig()
	tokens := accounts.NewTokenService(cfg, nil)
	notifier := newRecordingNotifier(false)

	created := testAccount("ana@x.com", false)

	store := new(MockAccountStore)
	store.On("Create", mock.Anything, mock.AnythingOfType("*accounts.Account")).
		Return(created, nil)
	store.On("Delete", mock.Anything, created.ID).Return(nil)

	repo := newMockRepositoryManager(store, nil)
	handler := accounts.NewSignupHandler(repo, tokens, notifier, cfg.GetBaseURL())

	err := handler.Execute(context.Background(), signupMessage())
	require.Error(t, err)
	assert.True(t, accounts.HasTextCode(err, accounts.TextCodeDeliveryFailed))

	store.AssertCalled(t, "Delete", mock.Anything, created.ID)
}

func TestSignup_DuplicateEmail(t *testing.T) {
	cfg := newTestConfig()
	tokens := accounts.NewTokenService(cfg, nil)
	notifier := newRecordingNotifier(true)

	store := new(MockAccountStore)
	store.On("Create", mock.Anything, mock.AnythingOfType("*accounts.Account")).
		Return(nil, accounts.ErrEmailTaken)

	repo := newMockRepositoryManager(store, nil)
	handler := accounts.NewSignupHandler(repo, tokens, notifier, cfg.GetBaseURL())

	err := handler.Execute(context.Background(), signupMessage())
	require.Error(t, err)
	assert.True(t, accounts.HasTextCode(err, accounts.TextCodeEmailTaken))
	assert.True(t, accounts.IsConflictError(err))

	assert.Empty(t, notifier.Sent())
}

func TestSignup_ValidationFailures(t *testing.T) {
	cfg := newTestConfig()
	tokens := accounts.NewTokenService(cfg, nil)
	notifier := newRecordingNotifier(true)
	store := new(MockAccountStore)
	repo := newMockRepositoryManager(store, nil)
	handler := accounts.NewSignupHandler(repo, tokens, notifier, cfg.GetBaseURL())

	testCases := []struct {
		name   string
		mutate func(*accounts.SignupMessage)
	}{
		{"short password", func(m *accounts.SignupMessage) {
			m.Password = "nope"
			m.ConfirmPassword = "nope"
		}},
		{"password mismatch", func(m *accounts.SignupMessage) {
			m.ConfirmPassword = "different1"
		}},
		{"bad email", func(m *accounts.SignupMessage) {
			m.Email = "not-an-email"
		}},
		{"unknown gender", func(m *accounts.SignupMessage) {
			m.Gender = "robot"
		}},
		{"missing name", func(m *accounts.SignupMessage) {
			m.Name = ""
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			msg := signupMessage()
			tc.mutate(&msg)

			err := handler.Execute(context.Background(), msg)
			require.Error(t, err)
			assert.True(t, accounts.IsValidationError(err))
		})
	}

	store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	assert.Empty(t, notifier.Sent())
}

func TestSignup_CancelledContext(t *testing.T) {
	cfg := newTestConfig()
	handler := accounts.NewSignupHandler(
		newMockRepositoryManager(new(MockAccountStore), nil),
		accounts.NewTokenService(cfg, nil),
		newRecordingNotifier(true),
		cfg.GetBaseURL(),
	)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := handler.Execute(ctx, signupMessage())
	require.Error(t, err)
}
