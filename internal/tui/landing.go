package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/studio-mia/mia/internal/session"
)

type landingMode int

const (
	landingLogin landingMode = iota
	landingRegister
)

type landingField int

const (
	fieldEmail landingField = iota
	fieldPassword
	fieldConfirm
)

// landingModel is the sign-in / sign-up screen.
type landingModel struct {
	mode       landingMode
	email      string
	password   string
	confirm    string
	focus      landingField
	submitting bool
	errMsg     string
	statusMsg  string
}

func newLandingModel() landingModel {
	return landingModel{}
}

func (m landingModel) numFields() landingField {
	if m.mode == landingRegister {
		return fieldConfirm + 1
	}
	return fieldPassword + 1
}

func (m landingModel) Update(msg tea.Msg, sess *session.Manager) (landingModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok || m.submitting {
		return m, nil
	}

	switch key.String() {
	case "tab", "down":
		m.focus = (m.focus + 1) % m.numFields()
		return m, nil
	case "shift+tab", "up":
		m.focus = (m.focus - 1 + m.numFields()) % m.numFields()
		return m, nil
	case "ctrl+t":
		if m.mode == landingLogin {
			m.mode = landingRegister
		} else {
			m.mode = landingLogin
		}
		m.focus = fieldEmail
		m.confirm = ""
		m.errMsg = ""
		m.statusMsg = ""
		return m, nil
	case "enter":
		return m.submit(sess)
	default:
		m.errMsg = ""
		m.statusMsg = ""
		switch m.focus {
		case fieldEmail:
			m.email = editRune(m.email, key.String())
		case fieldPassword:
			m.password = editRune(m.password, key.String())
		case fieldConfirm:
			m.confirm = editRune(m.confirm, key.String())
		}
		return m, nil
	}
}

func (m landingModel) submit(sess *session.Manager) (landingModel, tea.Cmd) {
	email := strings.TrimSpace(m.email)
	if email == "" || m.password == "" {
		m.errMsg = "Informe e-mail e senha."
		return m, nil
	}
	if m.mode == landingRegister && m.password != m.confirm {
		m.errMsg = "As senhas não coincidem."
		return m, nil
	}

	m.submitting = true
	m.errMsg = ""
	password := m.password

	if m.mode == landingRegister {
		return m, func() tea.Msg {
			if err := sess.Register(context.Background(), email, password); err != nil {
				return registerDoneMsg{errMsg: err.Error()}
			}
			return registerDoneMsg{}
		}
	}
	return m, func() tea.Msg {
		route, err := sess.Login(context.Background(), email, password)
		if err != nil {
			return loginDoneMsg{errMsg: err.Error()}
		}
		return loginDoneMsg{route: route}
	}
}

func (m landingModel) View(width, height int) string {
	var b strings.Builder

	b.WriteString("\n " + renderLogo() + "\n")
	b.WriteString(" " + metaStyle.Render("planos de aula padronizados para a sua escola") + "\n\n")

	if m.mode == landingLogin {
		b.WriteString(" " + selectedStyle.Render("Entrar") + "  " + dimStyle.Render("Cadastrar (ctrl+t)") + "\n\n")
	} else {
		b.WriteString(" " + dimStyle.Render("Entrar (ctrl+t)") + "  " + selectedStyle.Render("Cadastrar") + "\n\n")
	}

	type fieldRow struct {
		f     landingField
		label string
		value string
	}
	rows := []fieldRow{
		{fieldEmail, "e-mail", m.email},
		{fieldPassword, "senha", maskPassword(m.password)},
	}
	if m.mode == landingRegister {
		rows = append(rows, fieldRow{fieldConfirm, "confirmar senha", maskPassword(m.confirm)})
	}

	for _, row := range rows {
		cursor := " "
		style := metaStyle
		value := row.value
		if row.f == m.focus {
			cursor = ">"
			style = selectedStyle
			value += "█"
		}
		if row.value == "" && row.f != m.focus {
			value = inputPlaceholderStyle.Render("...")
		}
		fmt.Fprintf(&b, " %s %s: %s\n", cursor, style.Render(fmt.Sprintf("%-16s", row.label)), value)
	}

	b.WriteString("\n")
	switch {
	case m.submitting:
		b.WriteString(" " + dimStyle.Render("enviando...") + "\n")
	case m.errMsg != "":
		b.WriteString(" " + errorStyle.Render(m.errMsg) + "\n")
	case m.statusMsg != "":
		b.WriteString(" " + successStyle.Render(m.statusMsg) + "\n")
	}

	b.WriteString("\n " + helpEntry("tab", "campo") + "  " + helpEntry("enter", "enviar") + "  " + helpEntry("ctrl+t", "alternar") + "  " + helpEntry("ctrl+c", "sair") + "\n")

	return truncateToHeight(b.String(), height)
}
