package account_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/nhle/smartnote/internal/account"
	"github.com/nhle/smartnote/internal/model"
	"github.com/nhle/smartnote/tests/testutil"
)

func newService(t *testing.T) *account.Service {
	t.Helper()
	return account.NewService(testutil.NewTestRepository(t), account.WithCost(bcrypt.MinCost))
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	u, err := svc.Register(ctx, "", "ada@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "ada", u.Username)
	assert.True(t, u.IsAuthenticated)
	assert.Equal(t, model.TierFree, u.SubscriptionTier)

	_, err = svc.Register(ctx, "other", "ADA@example.com", "secret2")
	assert.ErrorIs(t, err, account.ErrAccountExists)

	got, err := svc.Login(ctx, " ada@EXAMPLE.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "ada", got.Username)

	_, err = svc.Login(ctx, "ada@example.com", "wrong-pw")
	assert.ErrorIs(t, err, account.ErrInvalidCredentials)
	_, err = svc.Login(ctx, "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, account.ErrInvalidCredentials)
}

func TestRegister_Validation(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	_, err := svc.Register(ctx, "x", "not-an-email", "secret1")
	assert.ErrorIs(t, err, account.ErrInvalidEmail)

	_, err = svc.Register(ctx, "x", "x@example.com", "123")
	assert.ErrorIs(t, err, account.ErrWeakPassword)
}

func TestAccountsHidesHashes(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	_, err := svc.Register(ctx, "grace", "grace@example.com", "secret1")
	require.NoError(t, err)

	list, err := svc.Accounts(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "grace", list[0].Username)
	assert.Empty(t, list[0].PasswordHash)
}

func TestUpgrade(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	u, err := svc.Register(ctx, "", "lin@example.com", "secret1")
	require.NoError(t, err)

	u, err = svc.Upgrade(ctx, u)
	require.NoError(t, err)
	assert.True(t, u.IsPremium())

	again, err := svc.Login(ctx, "lin@example.com", "secret1")
	require.NoError(t, err)
	assert.True(t, again.IsPremium(), "tier is persisted")

	guest, err := svc.Upgrade(ctx, model.User{Username: "guest", IsAuthenticated: true})
	require.NoError(t, err)
	assert.True(t, guest.IsPremium())
}

func TestRequestReset(t *testing.T) {
	svc := newService(t)

	notice, err := svc.RequestReset("ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Reset link sent to ada@example.com", notice)

	_, err = svc.RequestReset("")
	assert.ErrorIs(t, err, account.ErrInvalidEmail)
}

func TestUsernameFromEmail(t *testing.T) {
	assert.Equal(t, "ada", account.UsernameFromEmail("ada@example.com"))
	assert.Equal(t, "User", account.UsernameFromEmail("@example.com"))
	assert.Equal(t, "User", account.UsernameFromEmail(""))
}
