// Package app holds the screen set and the navigation rules of the client.
package app

import "mebe/internal/domain"

// Screen is one of the finite named screens.
type Screen string

// The full screen set. Welcome is the unauthenticated entry screen.
const (
	ScreenWelcome        Screen = "WELCOME"
	ScreenRegister       Screen = "REGISTER"
	ScreenLogin          Screen = "LOGIN"
	ScreenHome           Screen = "HOME"
	ScreenGifts          Screen = "GIFTS"
	ScreenProfile        Screen = "PROFILE"
	ScreenBanking        Screen = "BANKING"
	ScreenSecurity       Screen = "SECURITY"
	ScreenTransaction    Screen = "TRANSACTION"
	ScreenNotifications  Screen = "NOTIFICATIONS"
	ScreenAdminDashboard Screen = "ADMIN_DASHBOARD"
)

// public are the screens reachable without an active session.
var public = map[Screen]bool{
	ScreenWelcome:  true,
	ScreenRegister: true,
	ScreenLogin:    true,
}

// QuickAmounts are the preset amounts offered on the Transaction screen.
var QuickAmounts = []int64{100000, 200000, 500000, 1000000, 2000000, 5000000}

// Navigator tracks the current screen and applies the session guard. There
// is no history stack: "back" is an explicit transition to a named screen.
type Navigator struct {
	current Screen // Current-screen pointer
	authed  bool   // Whether a session is active
	txType  string // DEPOSIT or WITHDRAW, set when entering Transaction
}

// NewNavigator starts on the Welcome screen with no session.
func NewNavigator() *Navigator {
	return &Navigator{current: ScreenWelcome, txType: domain.TxDeposit}
}

// Current returns the current screen.
func (n *Navigator) Current() Screen { return n.current }

// TxType returns the mode the Transaction screen was entered with.
func (n *Navigator) TxType() string { return n.txType }

// SetAuthenticated records whether a session is active. Ending the session
// on a guarded screen bounces back to Welcome.
func (n *Navigator) SetAuthenticated(authed bool) {
	n.authed = authed
	if !authed && !public[n.current] {
		n.current = ScreenWelcome
	}
}

// Go transitions to the target screen. Without a session, any guarded
// target is redirected back to Welcome.
func (n *Navigator) Go(target Screen) Screen {
	if !n.authed && !public[target] {
		n.current = ScreenWelcome
		return n.current
	}
	n.current = target
	return n.current
}

// GoTransaction enters the Transaction screen in deposit or withdraw mode.
func (n *Navigator) GoTransaction(txType string) Screen {
	if txType != domain.TxWithdraw {
		txType = domain.TxDeposit
	}
	n.txType = txType
	return n.Go(ScreenTransaction)
}
