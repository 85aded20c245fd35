package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/studio-mia/mia/internal/preview"
	"github.com/studio-mia/mia/pkg/client"
	"github.com/studio-mia/mia/pkg/domain"
)

// uploadModel is the confirmation step: the filled form next to an
// extracted-text preview of the pending file. Confirming performs the
// multipart lesson-plan create.
type uploadModel struct {
	client      *client.Client
	userID      string
	form        planForm
	up          *domain.PendingUpload
	previewText string
	previewErr  string
	submitting  bool
	errMsg      string
}

type previewReadyMsg struct {
	text string
	err  error
}

func newUploadModel(c *client.Client, userID string, form planForm, up *domain.PendingUpload) uploadModel {
	return uploadModel{client: c, userID: userID, form: form, up: up}
}

func (m uploadModel) init(ctx context.Context) tea.Cmd {
	if m.up == nil {
		return nil
	}
	return previewCmd(ctx, m.up)
}

// previewCmd extracts the pending file's text off the UI goroutine. The
// context is the section's; a section switch abandons the result.
func previewCmd(ctx context.Context, up *domain.PendingUpload) tea.Cmd {
	path, typ := up.Path, up.Type
	return func() tea.Msg {
		if ctx.Err() != nil {
			return nil
		}
		text, err := preview.Extract(path, typ)
		return previewReadyMsg{text: text, err: err}
	}
}

func (m uploadModel) Update(msg tea.Msg) (uploadModel, tea.Cmd) {
	switch msg := msg.(type) {
	case previewReadyMsg:
		if msg.err != nil {
			m.previewErr = "Não foi possível extrair o texto: " + msg.err.Error()
			return m, nil
		}
		m.previewText = msg.text
		return m, nil

	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}
		switch msg.String() {
		case "ctrl+s", "enter":
			return m.submit()
		}
	}
	return m, nil
}

func (m uploadModel) submit() (uploadModel, tea.Cmd) {
	if m.up == nil {
		m.errMsg = msgSelectFileUpload
		return m, nil
	}
	m.submitting = true
	m.errMsg = ""

	req := client.CreateLessonPlanRequest{
		UserID:           m.userID,
		Objectives:       m.form.objectives,
		Activities:       m.form.activities,
		Assessment:       m.form.assessment,
		OriginalDocument: m.up,
	}
	c := m.client
	return m, func() tea.Msg {
		plan, err := c.CreateLessonPlan(context.Background(), req)
		return planCreatedMsg{plan: plan, err: err}
	}
}

func (m uploadModel) View() string {
	var b strings.Builder
	b.WriteString(" " + labelStyle.Render("CARREGAR DOCUMENTO") + "\n\n")

	if m.up != nil {
		b.WriteString(" " + normalStyle.Render(m.up.Name) + "  " + metaStyle.Render(string(m.up.Type)+" · "+formatSize(m.up.Size)) + "\n\n")
	}

	b.WriteString(" " + labelStyle.Render("objetivos") + "  " + normalStyle.Render(truncStr(m.form.objectives, 70)) + "\n")
	b.WriteString(" " + labelStyle.Render("atividades") + " " + normalStyle.Render(truncStr(m.form.activities, 70)) + "\n")
	b.WriteString(" " + labelStyle.Render("avaliação") + "  " + normalStyle.Render(truncStr(m.form.assessment, 70)) + "\n\n")

	switch {
	case m.previewErr != "":
		b.WriteString(" " + warnStyle.Render(m.previewErr) + "\n")
	case m.previewText == "":
		b.WriteString(" " + dimStyle.Render("extraindo texto do documento...") + "\n")
	default:
		b.WriteString(" " + labelStyle.Render("PRÉVIA DO DOCUMENTO") + "\n")
		lines := strings.Split(m.previewText, "\n")
		if len(lines) > 10 {
			lines = lines[:10]
		}
		for _, line := range lines {
			b.WriteString(" " + dimStyle.Render(truncStr(line, 90)) + "\n")
		}
	}

	b.WriteString("\n")
	if m.submitting {
		b.WriteString(" " + dimStyle.Render("criando plano de aula...") + "\n")
	} else if m.errMsg != "" {
		b.WriteString(" " + errorStyle.Render(m.errMsg) + "\n")
	} else {
		b.WriteString(" " + normalStyle.Render("ctrl+s confirma o envio") + "\n")
	}

	return b.String()
}
