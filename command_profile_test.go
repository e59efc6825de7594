package accounts_test

import (
	"context"
	"testing"

	accounts "github.com/goliatone/go-accounts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestProfile_Success(t *testing.T) {
	account := testAccount("ana@x.com", true)
	account.PasswordHash = "secret-hash"

	store := new(MockAccountStore)
	store.On("GetByID", mock.Anything, account.ID).Return(account, nil)

	handler := accounts.NewProfileHandler(newMockRepositoryManager(store, nil))

	var res *accounts.Account
	err := handler.Execute(context.Background(), accounts.ProfileMessage{
		AccountID:  account.ID.String(),
		OnResponse: func(a *accounts.Account) { res = a },
	})

	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "ana@x.com", res.Email)
	assert.Empty(t, res.PasswordHash)
}

func TestProfile_NotFound(t *testing.T) {
	account := testAccount("gone@x.com", true)

	store := new(MockAccountStore)
	store.On("GetByID", mock.Anything, account.ID).Return(nil, accounts.ErrAccountNotFound)

	handler := accounts.NewProfileHandler(newMockRepositoryManager(store, nil))

	err := handler.Execute(context.Background(), accounts.ProfileMessage{
		AccountID: account.ID.String(),
	})

	require.Error(t, err)
	assert.True(t, accounts.HasTextCode(err, accounts.TextCodeAccountNotFound))
}

func TestProfile_InvalidID(t *testing.T) {
	store := new(MockAccountStore)
	handler := accounts.NewProfileHandler(newMockRepositoryManager(store, nil))

	for _, id := range []string{"", "not-a-uuid"} {
		err := handler.Execute(context.Background(), accounts.ProfileMessage{AccountID: id})
		require.Error(t, err)
		assert.True(t, accounts.IsValidationError(err))
	}

	store.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}
