package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/studio-mia/mia/pkg/client"
	"github.com/studio-mia/mia/pkg/domain"
)

// archiveModel archives the pending file as a standalone document, with a
// text preview before confirming and the resulting document id after.
type archiveModel struct {
	client      *client.Client
	userID      string
	up          *domain.PendingUpload
	previewText string
	previewErr  string
	doc         *domain.Document
	submitting  bool
	errMsg      string
}

type archivedMsg struct {
	doc *domain.Document
	err error
}

func newArchiveModel(c *client.Client, userID string, up *domain.PendingUpload) archiveModel {
	return archiveModel{client: c, userID: userID, up: up}
}

func (m archiveModel) init(ctx context.Context) tea.Cmd {
	if m.up == nil {
		return nil
	}
	return previewCmd(ctx, m.up)
}

func (m archiveModel) Update(msg tea.Msg) (archiveModel, tea.Cmd) {
	switch msg := msg.(type) {
	case previewReadyMsg:
		if msg.err != nil {
			m.previewErr = "Não foi possível extrair o texto: " + msg.err.Error()
			return m, nil
		}
		m.previewText = msg.text
		return m, nil

	case archivedMsg:
		m.submitting = false
		if msg.err != nil {
			m.errMsg = client.Detail(msg.err, client.MsgUploadFailed)
			return m, nil
		}
		m.errMsg = ""
		m.doc = msg.doc
		return m, nil

	case tea.KeyMsg:
		if m.submitting || m.doc != nil {
			return m, nil
		}
		switch msg.String() {
		case "enter", "ctrl+s":
			return m.submit()
		}
	}
	return m, nil
}

func (m archiveModel) submit() (archiveModel, tea.Cmd) {
	if m.up == nil {
		m.errMsg = msgSelectFileArchive
		return m, nil
	}
	m.submitting = true
	m.errMsg = ""
	c, userID, up := m.client, m.userID, m.up
	return m, func() tea.Msg {
		doc, err := c.UploadDocument(context.Background(), userID, up)
		return archivedMsg{doc: doc, err: err}
	}
}

func (m archiveModel) View() string {
	var b strings.Builder
	b.WriteString(" " + labelStyle.Render("ARQUIVAR DOCUMENTO") + "\n\n")

	if m.up != nil {
		b.WriteString(" " + normalStyle.Render(m.up.Name) + "  " + metaStyle.Render(string(m.up.Type)+" · "+formatSize(m.up.Size)) + "\n\n")
	}

	switch {
	case m.previewErr != "":
		b.WriteString(" " + warnStyle.Render(m.previewErr) + "\n")
	case m.previewText == "":
		b.WriteString(" " + dimStyle.Render("extraindo texto do documento...") + "\n")
	default:
		lines := strings.Split(m.previewText, "\n")
		if len(lines) > 8 {
			lines = lines[:8]
		}
		for _, line := range lines {
			b.WriteString(" " + dimStyle.Render(truncStr(line, 90)) + "\n")
		}
	}

	b.WriteString("\n")
	switch {
	case m.submitting:
		b.WriteString(" " + dimStyle.Render("arquivando...") + "\n")
	case m.doc != nil:
		b.WriteString(" " + successStyle.Render("Documento arquivado (id "+m.doc.ID+").") + "\n")
	case m.errMsg != "":
		b.WriteString(" " + errorStyle.Render(m.errMsg) + "\n")
	default:
		b.WriteString(" " + normalStyle.Render("enter confirma o arquivamento") + "\n")
	}

	return b.String()
}
