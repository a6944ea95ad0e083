package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"mebe/internal/app"
)

// Welcome screen: entry point with the two auth choices.

func (m Model) updateWelcome(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < 1 {
			m.cursor++
		}
	case "enter":
		m.errMsg = ""
		m.infoMsg = ""
		if m.cursor == 0 {
			m.resetInputs()
			m.inputs = newInputs([]string{"Số điện thoại", "Mật khẩu"}, 1)
			m.nav.Go(app.ScreenLogin)
		} else {
			m.resetInputs()
			m.inputs = newInputs([]string{"Họ và tên", "Số điện thoại", "Mật khẩu", "Xác nhận mật khẩu"}, 2)
			m.nav.Go(app.ScreenRegister)
		}
	case "q":
		m.stopSync()
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) viewWelcome() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Mẹ & Bé"))
	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render("Cộng đồng của mẹ, quà tặng cho bé"))
	b.WriteString("\n\n")
	options := []string{"Đăng nhập", "Đăng ký tài khoản"}
	for i, opt := range options {
		if i == m.cursor {
			b.WriteString(selectedItemStyle.Render("› " + opt))
		} else {
			b.WriteString(unselectedItemStyle.Render(opt))
		}
		b.WriteString("\n")
	}
	if m.errMsg != "" {
		b.WriteString("\n" + dangerStyle.Render(m.errMsg))
	}
	b.WriteString(helpStyle.Render("\n↑/↓ chọn · enter xác nhận · q thoát"))
	return b.String()
}

// Login screen: phone + password form.

func (m Model) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.resetInputs()
		m.errMsg = ""
		m.nav.Go(app.ScreenWelcome)
		return m, nil
	case "tab", "down":
		m.cycleFocus(1)
		return m, nil
	case "shift+tab", "up":
		m.cycleFocus(-1)
		return m, nil
	case "enter":
		if m.focus < len(m.inputs)-1 {
			m.cycleFocus(1)
			return m, nil
		}
		m.syncing = true
		phone := strings.TrimSpace(m.inputs[0].Value())
		password := m.inputs[1].Value()
		return m, loginCmd(m.wf, m.sessions, phone, password)
	}
	return m, m.updateInputs(msg)
}

func (m Model) viewLogin() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Đăng nhập"))
	b.WriteString("\n\n")
	for i := range m.inputs {
		b.WriteString(m.inputs[i].View())
		b.WriteString("\n")
	}
	if m.errMsg != "" {
		b.WriteString("\n" + dangerStyle.Render(m.errMsg))
	}
	b.WriteString(helpStyle.Render("\ntab chuyển ô · enter đăng nhập · esc quay lại"))
	return b.String()
}

// Register screen: the sign-up form. Validation errors come back from the
// workflow in the same Vietnamese wording the form shows inline.

func (m Model) updateRegister(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.resetInputs()
		m.errMsg = ""
		m.nav.Go(app.ScreenWelcome)
		return m, nil
	case "tab", "down":
		m.cycleFocus(1)
		return m, nil
	case "shift+tab", "up":
		m.cycleFocus(-1)
		return m, nil
	case "enter":
		if m.focus < len(m.inputs)-1 {
			m.cycleFocus(1)
			return m, nil
		}
		m.syncing = true
		name := m.inputs[0].Value()
		phone := strings.TrimSpace(m.inputs[1].Value())
		password := m.inputs[2].Value()
		confirm := m.inputs[3].Value()
		return m, registerCmd(m.wf, m.sessions, m.cfg.AvatarBase, name, phone, password, confirm)
	}
	return m, m.updateInputs(msg)
}

func (m Model) viewRegister() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Đăng ký tài khoản"))
	b.WriteString("\n\n")
	for i := range m.inputs {
		b.WriteString(m.inputs[i].View())
		b.WriteString("\n")
	}
	if m.errMsg != "" {
		b.WriteString("\n" + dangerStyle.Render(m.errMsg))
	}
	b.WriteString(helpStyle.Render("\ntab chuyển ô · enter đăng ký · esc quay lại"))
	return b.String()
}
