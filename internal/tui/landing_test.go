package tui

import (
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/studio-mia/mia/internal/session"
	"github.com/studio-mia/mia/pkg/client"
)

func newTestSession(t *testing.T) *session.Manager {
	t.Helper()
	store := session.NewFileStoreAt(filepath.Join(t.TempDir(), "token"))
	c := client.New("http://127.0.0.1:1", "", store, nil)
	return session.NewManager(store, c)
}

func typeString(m landingModel, sess *session.Manager, s string) landingModel {
	for _, r := range s {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}, sess)
	}
	return m
}

func TestLandingRequiresCredentials(t *testing.T) {
	sess := newTestSession(t)
	m := newLandingModel()

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter}, sess)
	if cmd != nil {
		t.Fatal("empty form must not submit")
	}
	if m.errMsg != "Informe e-mail e senha." {
		t.Fatalf("errMsg = %q", m.errMsg)
	}
}

func TestLandingRegisterPasswordMismatch(t *testing.T) {
	sess := newTestSession(t)
	m := newLandingModel()

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlT}, sess)
	if m.mode != landingRegister {
		t.Fatalf("mode = %v, want register", m.mode)
	}

	m = typeString(m, sess, "user@test.com")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab}, sess)
	m = typeString(m, sess, "secret1")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab}, sess)
	m = typeString(m, sess, "secret2")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter}, sess)
	if cmd != nil {
		t.Fatal("mismatched passwords must not submit")
	}
	if m.errMsg != "As senhas não coincidem." {
		t.Fatalf("errMsg = %q", m.errMsg)
	}
}

func TestLandingSubmitIssuesCommand(t *testing.T) {
	sess := newTestSession(t)
	m := newLandingModel()

	m = typeString(m, sess, "user@test.com")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab}, sess)
	m = typeString(m, sess, "secret1")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter}, sess)
	if cmd == nil {
		t.Fatal("expected a login command")
	}
	if !m.submitting {
		t.Fatal("expected submitting state")
	}
}

func TestLandingViewMasksPassword(t *testing.T) {
	sess := newTestSession(t)
	m := newLandingModel()
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab}, sess)
	m = typeString(m, sess, "secret1")

	view := m.View(80, 24)
	if strings.Contains(view, "secret1") {
		t.Fatal("password must not appear in the view")
	}
	if !strings.Contains(view, "•••••••") {
		t.Fatal("expected masked password bullets")
	}
}
