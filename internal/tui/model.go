// Package tui renders the member screens as a terminal application. Every
// record store call runs as a tea.Cmd, so input stays live while a call is
// outstanding and the spinner doubles as the syncing indicator.
package tui

import (
	"context"
	"errors"
	"strconv"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"mebe/internal/app"
	"mebe/internal/config"
	"mebe/internal/domain"
	"mebe/internal/session"
	"mebe/internal/store"
	syncer "mebe/internal/sync"
	"mebe/internal/workflow"
)

// Model is the top-level Bubbletea model. The navigator owns which screen is
// visible; the rest is per-screen state.
type Model struct {
	nav      *app.Navigator
	store    store.Store
	sessions *session.Manager
	wf       *workflow.Service
	watcher  *syncer.Watcher
	cfg      *config.Config

	user    *domain.User
	syncing bool
	spin    spinner.Model
	errMsg  string
	infoMsg string

	// Form state shared by the input screens
	inputs []textinput.Model
	focus  int

	// List state
	cursor  int
	notifs  []domain.AppNotification
	pending []domain.TransactionRecord
	users   []domain.User
	gifts   []domain.GiftItem

	// Transaction screen
	bankIdx int

	// Admin reject dialog
	rejecting  bool
	rejectTxID string

	// Background sync, cancelled on logout so no poller outlives its owner
	syncCancel context.CancelFunc
	userCh     <-chan domain.User
	pendingCh  <-chan []domain.TransactionRecord
	usersCh    <-chan []domain.User

	adminTab int // 0 = pending queue, 1 = member list
}

// New builds the client over the given store backend.
func New(cfg *config.Config, st store.Store) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipglossSpinner()
	return Model{
		nav:      app.NewNavigator(),
		store:    st,
		sessions: session.NewManager(st, cfg.MasterAdminPhone, cfg.DataDir),
		wf:       workflow.NewService(st),
		watcher:  syncer.NewWatcher(st, cfg.SyncInterval),
		cfg:      cfg,
		spin:     sp,
		gifts:    domain.GiftCatalog("https://picsum.photos/seed/"),
	}
}

// Init resolves the persisted session before showing anything.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, resolveSessionCmd(m.sessions))
}

// Messages

type sessionResolvedMsg struct{ user *domain.User }
type authedMsg struct{ user domain.User }
type userSyncMsg struct{ user domain.User }
type pendingSyncMsg struct{ pending []domain.TransactionRecord }
type usersSyncMsg struct{ users []domain.User }
type watcherClosedMsg struct{}
type notifsLoadedMsg struct{ notifs []domain.AppNotification }
type actionDoneMsg struct{ info string }
type errorMsg struct{ err error }

// Commands

func resolveSessionCmd(sessions *session.Manager) tea.Cmd {
	return func() tea.Msg {
		user, err := sessions.ResolveSession(context.Background())
		if err != nil {
			return errorMsg{err: err}
		}
		return sessionResolvedMsg{user: user}
	}
}

func loginCmd(wf *workflow.Service, sessions *session.Manager, phone, password string) tea.Cmd {
	return func() tea.Msg {
		user, err := wf.Login(context.Background(), phone, password)
		if err != nil {
			return errorMsg{err: err}
		}
		if err := sessions.StartSession(user.Phone); err != nil {
			return errorMsg{err: err}
		}
		return authedMsg{user: sessions.WithOverride(user)}
	}
}

func registerCmd(wf *workflow.Service, sessions *session.Manager, avatarBase string, name, phone, password, confirm string) tea.Cmd {
	return func() tea.Msg {
		user, err := wf.Register(context.Background(), name, phone, password, confirm, avatarBase)
		if err != nil {
			return errorMsg{err: err}
		}
		if err := sessions.StartSession(user.Phone); err != nil {
			return errorMsg{err: err}
		}
		return authedMsg{user: sessions.WithOverride(user)}
	}
}

func loadNotifsCmd(st store.Store, phone string) tea.Cmd {
	return func() tea.Msg {
		notifs, err := st.ListNotifications(context.Background(), phone)
		if err != nil {
			return errorMsg{err: err}
		}
		return notifsLoadedMsg{notifs: notifs}
	}
}

// waitUser bridges one watcher emission into the update loop; it is
// re-issued after every received value.
func waitUser(ch <-chan domain.User) tea.Cmd {
	return func() tea.Msg {
		user, ok := <-ch
		if !ok {
			return watcherClosedMsg{}
		}
		return userSyncMsg{user: user}
	}
}

func waitPending(ch <-chan []domain.TransactionRecord) tea.Cmd {
	return func() tea.Msg {
		pending, ok := <-ch
		if !ok {
			return watcherClosedMsg{}
		}
		return pendingSyncMsg{pending: pending}
	}
}

func waitUsers(ch <-chan []domain.User) tea.Cmd {
	return func() tea.Msg {
		users, ok := <-ch
		if !ok {
			return watcherClosedMsg{}
		}
		return usersSyncMsg{users: users}
	}
}

// startSync opens the background watchers for the logged-in user. Admins
// also watch the pending queue and the member list for the dashboard.
func (m *Model) startSync() tea.Cmd {
	ctx, cancel := context.WithCancel(context.Background())
	m.syncCancel = cancel
	m.userCh = m.watcher.WatchUser(ctx, m.user.Phone)
	cmds := []tea.Cmd{waitUser(m.userCh)}
	if m.user.IsAdmin {
		m.pendingCh = m.watcher.WatchPendingTransactions(ctx)
		m.usersCh = m.watcher.WatchUsers(ctx)
		cmds = append(cmds, waitPending(m.pendingCh), waitUsers(m.usersCh))
	}
	return tea.Batch(cmds...)
}

// stopSync tears down the watchers; called on logout.
func (m *Model) stopSync() {
	if m.syncCancel != nil {
		m.syncCancel()
		m.syncCancel = nil
	}
}

// logout ends the session and returns to the Welcome screen.
func (m *Model) logout() {
	m.stopSync()
	_ = m.sessions.EndSession()
	m.user = nil
	m.nav.SetAuthenticated(false)
	m.errMsg = ""
	m.infoMsg = ""
}

// Update routes messages to the visible screen.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case sessionResolvedMsg:
		m.syncing = false
		if msg.user != nil {
			m.user = msg.user
			m.nav.SetAuthenticated(true)
			m.nav.Go(app.ScreenHome)
			return m, m.startSync()
		}
		return m, nil

	case authedMsg:
		user := msg.user
		m.user = &user
		m.syncing = false
		m.errMsg = ""
		m.resetInputs()
		m.nav.SetAuthenticated(true)
		m.nav.Go(app.ScreenHome)
		return m, m.startSync()

	case userSyncMsg:
		// Externally applied change (admin edit, approval) picked up by the
		// poller; the override holds on every refresh.
		user := m.sessions.WithOverride(msg.user)
		m.user = &user
		return m, waitUser(m.userCh)

	case pendingSyncMsg:
		m.pending = msg.pending
		if m.cursor >= len(m.pending) {
			m.cursor = 0
		}
		return m, waitPending(m.pendingCh)

	case usersSyncMsg:
		m.users = msg.users
		return m, waitUsers(m.usersCh)

	case watcherClosedMsg:
		return m, nil

	case notifsLoadedMsg:
		m.notifs = msg.notifs
		m.syncing = false
		return m, nil

	case txSubmittedMsg:
		m.syncing = false
		m.errMsg = ""
		m.resetInputs()
		m.infoMsg = "Yêu cầu đã được gửi, vui lòng đợi phê duyệt"
		m.nav.Go(app.ScreenHome)
		return m, nil

	case bankAddedMsg:
		user := msg.user
		m.user = &user
		m.syncing = false
		m.errMsg = ""
		m.infoMsg = "Đã liên kết ngân hàng"
		m.inputs = newInputs([]string{"Tên ngân hàng", "Số tài khoản"}, -1)
		m.focus = 0
		return m, nil

	case actionDoneMsg:
		m.syncing = false
		m.errMsg = ""
		m.infoMsg = msg.info
		return m, nil

	case errorMsg:
		m.syncing = false
		m.errMsg = errorText(msg.err)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.stopSync()
			return m, tea.Quit
		}
		return m.updateScreen(msg)
	}
	return m, nil
}

// updateScreen dispatches a key press to the visible screen's handler.
func (m Model) updateScreen(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.nav.Current() {
	case app.ScreenWelcome:
		return m.updateWelcome(msg)
	case app.ScreenLogin:
		return m.updateLogin(msg)
	case app.ScreenRegister:
		return m.updateRegister(msg)
	case app.ScreenHome:
		return m.updateHome(msg)
	case app.ScreenGifts:
		return m.updateGifts(msg)
	case app.ScreenProfile:
		return m.updateProfile(msg)
	case app.ScreenBanking:
		return m.updateBanking(msg)
	case app.ScreenSecurity:
		return m.updateSecurity(msg)
	case app.ScreenTransaction:
		return m.updateTransaction(msg)
	case app.ScreenNotifications:
		return m.updateNotifications(msg)
	case app.ScreenAdminDashboard:
		return m.updateAdmin(msg)
	}
	return m, nil
}

// View renders the visible screen plus the shared syncing indicator.
func (m Model) View() string {
	var body string
	switch m.nav.Current() {
	case app.ScreenWelcome:
		body = m.viewWelcome()
	case app.ScreenLogin:
		body = m.viewLogin()
	case app.ScreenRegister:
		body = m.viewRegister()
	case app.ScreenHome:
		body = m.viewHome()
	case app.ScreenGifts:
		body = m.viewGifts()
	case app.ScreenProfile:
		body = m.viewProfile()
	case app.ScreenBanking:
		body = m.viewBanking()
	case app.ScreenSecurity:
		body = m.viewSecurity()
	case app.ScreenTransaction:
		body = m.viewTransaction()
	case app.ScreenNotifications:
		body = m.viewNotifications()
	case app.ScreenAdminDashboard:
		body = m.viewAdmin()
	}
	if m.syncing {
		body = m.spin.View() + " " + subtitleStyle.Render("Syncing") + "\n\n" + body
	}
	return body + "\n"
}

// resetInputs clears the shared form state between screens.
func (m *Model) resetInputs() {
	m.inputs = nil
	m.focus = 0
	m.cursor = 0
	m.bankIdx = 0
	m.rejecting = false
	m.rejectTxID = ""
}

// newInputs builds a focused input row per placeholder.
func newInputs(placeholders []string, passwordFrom int) []textinput.Model {
	inputs := make([]textinput.Model, len(placeholders))
	for i, p := range placeholders {
		ti := textinput.New()
		ti.Placeholder = p
		ti.CharLimit = 64
		if passwordFrom >= 0 && i >= passwordFrom {
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '•'
		}
		if i == 0 {
			ti.Focus()
		}
		inputs[i] = ti
	}
	return inputs
}

// cycleFocus moves the focus between form inputs.
func (m *Model) cycleFocus(delta int) {
	if len(m.inputs) == 0 {
		return
	}
	m.inputs[m.focus].Blur()
	m.focus = (m.focus + delta + len(m.inputs)) % len(m.inputs)
	m.inputs[m.focus].Focus()
}

// updateInputs forwards a key press to the focused input.
func (m *Model) updateInputs(msg tea.Msg) tea.Cmd {
	cmds := make([]tea.Cmd, len(m.inputs))
	for i := range m.inputs {
		m.inputs[i], cmds[i] = m.inputs[i].Update(msg)
	}
	return tea.Batch(cmds...)
}

// formatAmount renders an amount with the currency suffix.
func formatAmount(v int64) string {
	return strconv.FormatInt(v, 10) + "đ"
}

// errorText maps workflow errors to the inline message shown on screen.
func errorText(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, workflow.ErrBadCredentials) {
		return "Số điện thoại hoặc mật khẩu không đúng"
	}
	if errors.Is(err, store.ErrDuplicateKey) {
		return "Số điện thoại đã được đăng ký"
	}
	if workflow.IsValidation(err) {
		return err.Error()
	}
	return "Không thể kết nối, vui lòng thử lại"
}
