package tui

import (
	"context"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"mebe/internal/app"
	"mebe/internal/domain"
	"mebe/internal/session"
	"mebe/internal/workflow"
)

type txSubmittedMsg struct{ tx domain.TransactionRecord }
type bankAddedMsg struct{ user domain.User }

func submitTxCmd(wf *workflow.Service, user domain.User, txType string, amount int64, bank domain.BankAccount) tea.Cmd {
	return func() tea.Msg {
		tx, err := wf.Submit(context.Background(), user, txType, amount, bank)
		if err != nil {
			return errorMsg{err: err}
		}
		return txSubmittedMsg{tx: tx}
	}
}

func addBankCmd(wf *workflow.Service, sessions *session.Manager, user domain.User, bankName, accountNumber string) tea.Cmd {
	return func() tea.Msg {
		updated, err := wf.AddBank(context.Background(), user, bankName, accountNumber)
		if err != nil {
			return errorMsg{err: err}
		}
		return bankAddedMsg{user: sessions.WithOverride(updated)}
	}
}

func changePasswordCmd(wf *workflow.Service, user domain.User, current, next, confirm string) tea.Cmd {
	return func() tea.Msg {
		if err := wf.ChangePassword(context.Background(), user, current, next, confirm); err != nil {
			return errorMsg{err: err}
		}
		return actionDoneMsg{info: "Đổi mật khẩu thành công"}
	}
}

// Transaction screen: amount entry with quick presets and the linked-bank
// picker. The amount input stays focused; arrows cycle presets and banks.

func (m Model) updateTransaction(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.resetInputs()
		m.errMsg = ""
		m.nav.Go(app.ScreenHome)
		return m, nil
	case "up", "down":
		m.cycleQuickAmount(msg.String() == "down")
		return m, nil
	case "left":
		if m.bankIdx > 0 {
			m.bankIdx--
		}
		return m, nil
	case "right":
		if m.bankIdx < len(m.user.Banks)-1 {
			m.bankIdx++
		}
		return m, nil
	case "enter":
		amount, err := strconv.ParseInt(strings.TrimSpace(m.inputs[0].Value()), 10, 64)
		if err != nil {
			m.errMsg = "Vui lòng nhập số tiền hợp lệ"
			return m, nil
		}
		var bank domain.BankAccount
		if m.bankIdx < len(m.user.Banks) {
			bank = m.user.Banks[m.bankIdx]
		}
		m.syncing = true
		return m, submitTxCmd(m.wf, *m.user, m.nav.TxType(), amount, bank)
	}
	return m, m.updateInputs(msg)
}

// cycleQuickAmount steps the amount input through the preset list.
func (m *Model) cycleQuickAmount(forward bool) {
	current, _ := strconv.ParseInt(strings.TrimSpace(m.inputs[0].Value()), 10, 64)
	idx := -1
	for i, v := range app.QuickAmounts {
		if v == current {
			idx = i
			break
		}
	}
	if forward {
		idx = (idx + 1) % len(app.QuickAmounts)
	} else if idx <= 0 {
		idx = len(app.QuickAmounts) - 1
	} else {
		idx--
	}
	m.inputs[0].SetValue(strconv.FormatInt(app.QuickAmounts[idx], 10))
	m.inputs[0].CursorEnd()
}

func (m Model) viewTransaction() string {
	var b strings.Builder
	if m.nav.TxType() == domain.TxWithdraw {
		b.WriteString(titleStyle.Render("Rút tiền"))
		b.WriteString("\n")
		b.WriteString(subtitleStyle.Render("Số dư: " + formatAmount(m.user.Balance)))
	} else {
		b.WriteString(titleStyle.Render("Nạp tiền"))
	}
	b.WriteString("\n\n")
	b.WriteString(m.inputs[0].View())
	b.WriteString("\n\n")
	b.WriteString(mutedStyle.Render("Chọn nhanh:"))
	b.WriteString("\n")
	for _, v := range app.QuickAmounts {
		b.WriteString(unselectedItemStyle.Render(formatAmount(v)))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	if len(m.user.Banks) == 0 {
		b.WriteString(warningStyle.Render("Chưa có ngân hàng liên kết"))
	} else {
		b.WriteString(mutedStyle.Render("Ngân hàng:"))
		b.WriteString("\n")
		for i, bank := range m.user.Banks {
			line := bank.BankName + " - " + bank.AccountNumber
			if i == m.bankIdx {
				b.WriteString(selectedItemStyle.Render("› " + line))
			} else {
				b.WriteString(unselectedItemStyle.Render(line))
			}
			b.WriteString("\n")
		}
	}
	if m.errMsg != "" {
		b.WriteString("\n" + dangerStyle.Render(m.errMsg))
	}
	b.WriteString(helpStyle.Render("\n↑/↓ chọn nhanh · ←/→ chọn ngân hàng · enter gửi · esc quay lại"))
	return b.String()
}

// Banking screen: linked accounts plus the add form.

func (m Model) updateBanking(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.resetInputs()
		m.errMsg = ""
		m.nav.Go(app.ScreenProfile)
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
		return m, addBankCmd(m.wf, m.sessions, *m.user, m.inputs[0].Value(), m.inputs[1].Value())
	}
	return m, m.updateInputs(msg)
}

func (m Model) viewBanking() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Ngân hàng liên kết"))
	b.WriteString("\n\n")
	if len(m.user.Banks) == 0 {
		b.WriteString(mutedStyle.Render("Chưa có tài khoản nào"))
		b.WriteString("\n")
	}
	for _, bank := range m.user.Banks {
		b.WriteString(boxStyle.Render(bank.BankName + "\n" + bank.AccountNumber + "\n" + mutedStyle.Render(bank.AccountHolder)))
		b.WriteString("\n")
	}
	b.WriteString("\n" + mutedStyle.Render("Thêm tài khoản:"))
	b.WriteString("\n")
	for i := range m.inputs {
		b.WriteString(m.inputs[i].View())
		b.WriteString("\n")
	}
	if m.infoMsg != "" {
		b.WriteString("\n" + successStyle.Render(m.infoMsg))
	}
	if m.errMsg != "" {
		b.WriteString("\n" + dangerStyle.Render(m.errMsg))
	}
	b.WriteString(helpStyle.Render("\ntab chuyển ô · enter thêm · esc quay lại"))
	return b.String()
}

// Security screen: change-password form.

func (m Model) updateSecurity(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.resetInputs()
		m.errMsg = ""
		m.nav.Go(app.ScreenProfile)
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
		return m, changePasswordCmd(m.wf, *m.user, m.inputs[0].Value(), m.inputs[1].Value(), m.inputs[2].Value())
	}
	return m, m.updateInputs(msg)
}

func (m Model) viewSecurity() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Đổi mật khẩu"))
	b.WriteString("\n\n")
	for i := range m.inputs {
		b.WriteString(m.inputs[i].View())
		b.WriteString("\n")
	}
	if m.infoMsg != "" {
		b.WriteString("\n" + successStyle.Render(m.infoMsg))
	}
	if m.errMsg != "" {
		b.WriteString("\n" + dangerStyle.Render(m.errMsg))
	}
	b.WriteString(helpStyle.Render("\ntab chuyển ô · enter lưu · esc quay lại"))
	return b.String()
}
