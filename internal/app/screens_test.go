package app

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"mebe/internal/domain"
)

func TestNavigatorStartsOnWelcome(t *testing.T) {
	n := NewNavigator()
	assert.Equal(t, ScreenWelcome, n.Current())
	assert.Equal(t, domain.TxDeposit, n.TxType())
}

func TestGuardRedirectsWithoutSession(t *testing.T) {
	n := NewNavigator()

	// Guarded targets bounce to Welcome
	assert.Equal(t, ScreenWelcome, n.Go(ScreenHome))
	assert.Equal(t, ScreenWelcome, n.Go(ScreenAdminDashboard))

	// Public targets pass
	assert.Equal(t, ScreenLogin, n.Go(ScreenLogin))
	assert.Equal(t, ScreenRegister, n.Go(ScreenRegister))
}

func TestGuardAllowsWithSession(t *testing.T) {
	n := NewNavigator()
	n.SetAuthenticated(true)

	assert.Equal(t, ScreenHome, n.Go(ScreenHome))
	assert.Equal(t, ScreenNotifications, n.Go(ScreenNotifications))
	assert.Equal(t, ScreenAdminDashboard, n.Go(ScreenAdminDashboard))
}

func TestLogoutBouncesToWelcome(t *testing.T) {
	n := NewNavigator()
	n.SetAuthenticated(true)
	n.Go(ScreenProfile)

	n.SetAuthenticated(false)
	assert.Equal(t, ScreenWelcome, n.Current())
}

func TestGoTransactionCarriesType(t *testing.T) {
	n := NewNavigator()
	n.SetAuthenticated(true)

	assert.Equal(t, ScreenTransaction, n.GoTransaction(domain.TxWithdraw))
	assert.Equal(t, domain.TxWithdraw, n.TxType())

	// Anything unrecognized falls back to deposit
	n.GoTransaction("SOMETHING")
	assert.Equal(t, domain.TxDeposit, n.TxType())
}

func TestQuickAmounts(t *testing.T) {
	assert.Equal(t, []int64{100000, 200000, 500000, 1000000, 2000000, 5000000}, QuickAmounts)
}
