package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"mebe/internal/app"
	"mebe/internal/domain"
	"mebe/internal/workflow"
)

func approveCmd(wf *workflow.Service, txID string) tea.Cmd {
	return func() tea.Msg {
		if err := wf.Approve(context.Background(), txID); err != nil {
			return errorMsg{err: err}
		}
		return actionDoneMsg{info: "Đã duyệt giao dịch"}
	}
}

func rejectCmd(wf *workflow.Service, txID, reason string) tea.Cmd {
	return func() tea.Msg {
		if err := wf.Reject(context.Background(), txID, reason); err != nil {
			return errorMsg{err: err}
		}
		return actionDoneMsg{info: "Đã từ chối giao dịch"}
	}
}

// Admin dashboard: the pending queue and the member list, fed by the
// background watchers so both refresh without manual reloads.

func (m Model) updateAdmin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.rejecting {
		switch msg.String() {
		case "esc":
			m.rejecting = false
			m.rejectTxID = ""
			m.inputs = nil
			return m, nil
		case "enter":
			reason := m.inputs[0].Value()
			txID := m.rejectTxID
			m.rejecting = false
			m.rejectTxID = ""
			m.inputs = nil
			m.syncing = true
			return m, rejectCmd(m.wf, txID, reason)
		}
		return m, m.updateInputs(msg)
	}

	switch msg.String() {
	case "esc":
		m.resetInputs()
		m.errMsg = ""
		m.infoMsg = ""
		m.nav.Go(app.ScreenHome)
		return m, nil
	case "tab":
		m.adminTab = (m.adminTab + 1) % 2
		m.cursor = 0
		return m, nil
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case "down", "j":
		max := len(m.pending)
		if m.adminTab == 1 {
			max = len(m.users)
		}
		if m.cursor < max-1 {
			m.cursor++
		}
		return m, nil
	case "a":
		if m.adminTab == 0 && m.cursor < len(m.pending) {
			m.syncing = true
			return m, approveCmd(m.wf, m.pending[m.cursor].ID)
		}
		return m, nil
	case "r":
		if m.adminTab == 0 && m.cursor < len(m.pending) {
			m.rejecting = true
			m.rejectTxID = m.pending[m.cursor].ID
			m.inputs = newInputs([]string{"Lý do từ chối"}, -1)
			m.focus = 0
		}
		return m, nil
	}
	return m, nil
}

func (m Model) viewAdmin() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Quản trị"))
	b.WriteString("\n")
	tabs := []string{"Yêu cầu chờ duyệt", "Thành viên"}
	for i, tab := range tabs {
		if i == m.adminTab {
			b.WriteString(selectedItemStyle.Render("[" + tab + "]"))
		} else {
			b.WriteString(unselectedItemStyle.Render(tab))
		}
	}
	b.WriteString("\n\n")

	if m.rejecting {
		b.WriteString(warningStyle.Render("Từ chối giao dịch " + m.rejectTxID))
		b.WriteString("\n\n")
		b.WriteString(m.inputs[0].View())
		if m.errMsg != "" {
			b.WriteString("\n" + dangerStyle.Render(m.errMsg))
		}
		b.WriteString(helpStyle.Render("\nenter xác nhận · esc huỷ"))
		return b.String()
	}

	if m.adminTab == 0 {
		if len(m.pending) == 0 {
			b.WriteString(mutedStyle.Render("Không có yêu cầu nào đang chờ"))
			b.WriteString("\n")
		}
		for i, tx := range m.pending {
			label := "Nạp"
			if tx.Type == domain.TxWithdraw {
				label = "Rút"
			}
			line := label + " " + formatAmount(tx.Amount) + " · " + tx.UserName + " (" + tx.UserPhone + ")"
			if tx.BankInfo != "" {
				line += "\n  " + mutedStyle.Render(tx.BankInfo)
			}
			if i == m.cursor {
				b.WriteString(selectedItemStyle.Render("› " + line))
			} else {
				b.WriteString(unselectedItemStyle.Render(line))
			}
			b.WriteString("\n")
		}
	} else {
		for i, u := range m.users {
			line := u.Name + " (" + u.Phone + ") · " + formatAmount(u.Balance)
			if u.IsAdmin {
				line += " " + infoStyle.Render("admin")
			}
			if i == m.cursor {
				b.WriteString(selectedItemStyle.Render("› " + line))
			} else {
				b.WriteString(unselectedItemStyle.Render(line))
			}
			b.WriteString("\n")
		}
	}

	if m.infoMsg != "" {
		b.WriteString("\n" + successStyle.Render(m.infoMsg))
	}
	if m.errMsg != "" {
		b.WriteString("\n" + dangerStyle.Render(m.errMsg))
	}
	b.WriteString(helpStyle.Render("\ntab đổi mục · a duyệt · r từ chối · esc quay lại"))
	return b.String()
}
