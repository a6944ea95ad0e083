package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"mebe/internal/app"
	"mebe/internal/domain"
	"mebe/internal/store"
)

// Home screen: balance card plus the main menu.

var homeMenu = []struct {
	label  string
	screen app.Screen
	txType string
}{
	{label: "Nạp tiền", screen: app.ScreenTransaction, txType: domain.TxDeposit},
	{label: "Rút tiền", screen: app.ScreenTransaction, txType: domain.TxWithdraw},
	{label: "Quà tặng", screen: app.ScreenGifts},
	{label: "Thông báo", screen: app.ScreenNotifications},
	{label: "Hồ sơ", screen: app.ScreenProfile},
}

func (m Model) updateHome(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	menu := homeMenu
	extra := 1 // logout entry
	if m.user != nil && m.user.IsAdmin {
		extra = 2 // admin dashboard + logout
	}
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(menu)+extra-1 {
			m.cursor++
		}
	case "enter":
		m.errMsg = ""
		m.infoMsg = ""
		switch {
		case m.cursor < len(menu):
			item := menu[m.cursor]
			m.resetInputs()
			if item.screen == app.ScreenTransaction {
				m.inputs = newInputs([]string{"Số tiền (đ)"}, -1)
				m.nav.GoTransaction(item.txType)
				return m, nil
			}
			m.nav.Go(item.screen)
			if item.screen == app.ScreenNotifications {
				m.syncing = true
				return m, loadNotifsCmd(m.store, m.user.Phone)
			}
			return m, nil
		case m.user.IsAdmin && m.cursor == len(menu):
			m.resetInputs()
			m.adminTab = 0
			m.nav.Go(app.ScreenAdminDashboard)
			return m, nil
		default:
			m.logout()
			return m, nil
		}
	}
	return m, nil
}

func (m Model) viewHome() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Mẹ & Bé"))
	b.WriteString("\n")
	card := "Xin chào, " + m.user.Name + "\nSố dư: " + successStyle.Render(formatAmount(m.user.Balance))
	b.WriteString(cardStyle.Render(card))
	b.WriteString("\n\n")
	labels := make([]string, 0, len(homeMenu)+2)
	for _, item := range homeMenu {
		labels = append(labels, item.label)
	}
	if m.user.IsAdmin {
		labels = append(labels, "Quản trị")
	}
	labels = append(labels, "Đăng xuất")
	for i, label := range labels {
		if i == m.cursor {
			b.WriteString(selectedItemStyle.Render("› " + label))
		} else {
			b.WriteString(unselectedItemStyle.Render(label))
		}
		b.WriteString("\n")
	}
	if m.infoMsg != "" {
		b.WriteString("\n" + successStyle.Render(m.infoMsg))
	}
	if m.errMsg != "" {
		b.WriteString("\n" + dangerStyle.Render(m.errMsg))
	}
	b.WriteString(helpStyle.Render("\n↑/↓ chọn · enter xác nhận · ctrl+c thoát"))
	return b.String()
}

// Gifts screen: the fixed catalog. Claiming routes to the support contact.

func (m Model) updateGifts(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.resetInputs()
		m.nav.Go(app.ScreenHome)
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.gifts)-1 {
			m.cursor++
		}
	case "enter":
		m.infoMsg = "Liên hệ " + m.cfg.ContactLink + " để nhận quà"
	}
	return m, nil
}

func (m Model) viewGifts() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Quà tặng thành viên"))
	b.WriteString("\n\n")
	for i, gift := range m.gifts {
		line := gift.Name
		if i == m.cursor {
			b.WriteString(selectedItemStyle.Render("› " + line))
		} else {
			b.WriteString(unselectedItemStyle.Render(line))
		}
		b.WriteString("\n")
	}
	if m.infoMsg != "" {
		b.WriteString("\n" + infoStyle.Render(m.infoMsg))
	}
	b.WriteString(helpStyle.Render("\nenter nhận quà · esc quay lại"))
	return b.String()
}

// Profile screen: account details plus the settings menu.

var profileMenu = []struct {
	label  string
	screen app.Screen
}{
	{label: "Ngân hàng liên kết", screen: app.ScreenBanking},
	{label: "Đổi mật khẩu", screen: app.ScreenSecurity},
}

func (m Model) updateProfile(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.resetInputs()
		m.nav.Go(app.ScreenHome)
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(profileMenu)-1 {
			m.cursor++
		}
	case "enter":
		item := profileMenu[m.cursor]
		m.resetInputs()
		m.errMsg = ""
		m.infoMsg = ""
		switch item.screen {
		case app.ScreenBanking:
			m.inputs = newInputs([]string{"Tên ngân hàng", "Số tài khoản"}, -1)
		case app.ScreenSecurity:
			m.inputs = newInputs([]string{"Mật khẩu hiện tại", "Mật khẩu mới", "Xác nhận mật khẩu mới"}, 0)
		}
		m.nav.Go(item.screen)
	}
	return m, nil
}

func (m Model) viewProfile() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Hồ sơ của mẹ"))
	b.WriteString("\n")
	info := m.user.Name + "\n" + mutedStyle.Render(m.user.Phone)
	b.WriteString(boxStyle.Render(info))
	b.WriteString("\n\n")
	for i, item := range profileMenu {
		if i == m.cursor {
			b.WriteString(selectedItemStyle.Render("› " + item.label))
		} else {
			b.WriteString(unselectedItemStyle.Render(item.label))
		}
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("\nenter chọn · esc quay lại"))
	return b.String()
}

// Notifications screen. Opening the screen loads the list; r marks all read,
// x clears everything.

func markAllReadCmd(st store.Store, phone string) tea.Cmd {
	return func() tea.Msg {
		if err := st.MarkAllNotificationsRead(context.Background(), phone); err != nil {
			return errorMsg{err: err}
		}
		notifs, err := st.ListNotifications(context.Background(), phone)
		if err != nil {
			return errorMsg{err: err}
		}
		return notifsLoadedMsg{notifs: notifs}
	}
}

func clearNotifsCmd(st store.Store, phone string) tea.Cmd {
	return func() tea.Msg {
		if err := st.ClearNotifications(context.Background(), phone); err != nil {
			return errorMsg{err: err}
		}
		return notifsLoadedMsg{notifs: nil}
	}
}

func (m Model) updateNotifications(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.resetInputs()
		m.nav.Go(app.ScreenHome)
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.notifs)-1 {
			m.cursor++
		}
	case "r":
		return m, markAllReadCmd(m.store, m.user.Phone)
	case "x":
		return m, clearNotifsCmd(m.store, m.user.Phone)
	}
	return m, nil
}

func notifBadge(n domain.AppNotification) string {
	switch n.Type {
	case domain.NotifSuccess:
		return successStyle.Render("●")
	case domain.NotifError:
		return dangerStyle.Render("●")
	case domain.NotifPending:
		return warningStyle.Render("●")
	default:
		return infoStyle.Render("●")
	}
}

func (m Model) viewNotifications() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Thông báo"))
	b.WriteString("\n\n")
	if len(m.notifs) == 0 {
		b.WriteString(mutedStyle.Render("Chưa có thông báo nào"))
		b.WriteString("\n")
	}
	for i, n := range m.notifs {
		title := n.Title
		if !n.IsRead {
			title = title + " *"
		}
		line := notifBadge(n) + " " + title + "\n  " + mutedStyle.Render(n.Content)
		if i == m.cursor {
			b.WriteString(selectedItemStyle.Render(line))
		} else {
			b.WriteString(unselectedItemStyle.Render(line))
		}
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("\nr đã đọc tất cả · x xoá tất cả · esc quay lại"))
	return b.String()
}
