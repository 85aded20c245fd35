package tui

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mdp/qrterminal/v3"

	"github.com/studio-mia/mia/internal/browser"
	"github.com/studio-mia/mia/internal/preview"
	"github.com/studio-mia/mia/pkg/client"
	"github.com/studio-mia/mia/pkg/domain"
)

// pdfModel shows a single plan and its generated PDF: open in the system
// browser, download to disk, copy the URL, in-terminal text preview and a
// QR code for opening on a phone.
type pdfModel struct {
	client      *client.Client
	planID      string
	plan        *domain.LessonPlan
	loading     bool
	errMsg      string
	statusMsg   string
	previewText string
	qr          string
	width       int
	height      int
}

type planLoadedMsg struct {
	plan *domain.LessonPlan
	err  error
}

type copyResultMsg struct{ err error }

type textPreviewMsg struct {
	text string
	err  error
}

func newPDFModel(c *client.Client, planID string) pdfModel {
	return pdfModel{client: c, planID: planID, loading: true}
}

func (m pdfModel) load(ctx context.Context) tea.Cmd {
	c, id := m.client, m.planID
	return func() tea.Msg {
		plan, err := c.GetLessonPlan(ctx, id)
		return planLoadedMsg{plan: plan, err: err}
	}
}

func (m pdfModel) Update(msg tea.Msg) (pdfModel, tea.Cmd) {
	switch msg := msg.(type) {
	case planLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.errMsg = client.Detail(msg.err, client.MsgFetchFailed)
			return m, nil
		}
		m.errMsg = ""
		m.plan = msg.plan
		return m, nil

	case openResultMsg:
		if msg.err != nil {
			m.statusMsg = "Não foi possível abrir o navegador."
		}
		return m, nil

	case downloadResultMsg:
		if msg.err != nil {
			m.statusMsg = client.Detail(msg.err, client.MsgFetchFailed)
		} else {
			m.statusMsg = "Salvo em " + msg.path
		}
		return m, nil

	case copyResultMsg:
		if msg.err != nil {
			m.statusMsg = "Não foi possível copiar a URL."
		} else {
			m.statusMsg = "URL copiada."
		}
		return m, nil

	case textPreviewMsg:
		if msg.err != nil {
			m.statusMsg = "Não foi possível extrair o texto do PDF."
			return m, nil
		}
		m.previewText = msg.text
		m.qr = ""
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		m.statusMsg = ""
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m pdfModel) updateKeys(msg tea.KeyMsg) (pdfModel, tea.Cmd) {
	if m.plan == nil {
		return m, nil
	}
	hasPDF := m.plan.HasGeneratedPDF()

	switch msg.String() {
	case "o":
		if !hasPDF {
			m.statusMsg = "Este plano ainda não possui PDF gerado."
			return m, nil
		}
		url := m.client.DocumentURL(m.plan.GeneratedDocumentID)
		return m, func() tea.Msg { return openResultMsg{err: browser.Open(url)} }
	case "d":
		if !hasPDF {
			m.statusMsg = "Este plano ainda não possui PDF gerado."
			return m, nil
		}
		return m, downloadPlanCmd(m.client, *m.plan)
	case "c":
		if !hasPDF {
			m.statusMsg = "Este plano ainda não possui PDF gerado."
			return m, nil
		}
		url := m.client.DocumentURL(m.plan.GeneratedDocumentID)
		return m, func() tea.Msg { return copyResultMsg{err: clipboard.WriteAll(url)} }
	case "t":
		if !hasPDF {
			m.statusMsg = "Este plano ainda não possui PDF gerado."
			return m, nil
		}
		c, id := m.client, m.plan.GeneratedDocumentID
		return m, func() tea.Msg {
			data, err := c.DownloadDocument(context.Background(), id)
			if err != nil {
				return textPreviewMsg{err: err}
			}
			text, err := preview.ExtractBytes(data, domain.UploadPDF)
			return textPreviewMsg{text: text, err: err}
		}
	case "g":
		if !hasPDF {
			m.statusMsg = "Este plano ainda não possui PDF gerado."
			return m, nil
		}
		if m.qr != "" {
			m.qr = ""
			return m, nil
		}
		var buf bytes.Buffer
		qrterminal.GenerateHalfBlock(m.client.DocumentURL(m.plan.GeneratedDocumentID), qrterminal.L, &buf)
		m.qr = buf.String()
		m.previewText = ""
		return m, nil
	case "r":
		m.loading = true
		return m, m.load(context.Background())
	}
	return m, nil
}

func (m pdfModel) View() string {
	var b strings.Builder
	b.WriteString(" " + labelStyle.Render("PDF DO PLANO DE AULA") + "\n\n")

	if m.loading {
		b.WriteString(" " + dimStyle.Render("carregando...") + "\n")
		return b.String()
	}
	if m.errMsg != "" {
		b.WriteString(" " + errorStyle.Render(m.errMsg) + "\n")
		return b.String()
	}
	if m.plan == nil {
		return b.String()
	}

	b.WriteString(" " + selectedStyle.Render("Plano "+m.plan.ID) + "  " + metaStyle.Render(formatDate(m.plan.CreatedAt)) + "\n\n")
	b.WriteString(" " + labelStyle.Render("objetivos") + "  " + normalStyle.Render(truncStr(m.plan.Objectives, 80)) + "\n")
	b.WriteString(" " + labelStyle.Render("atividades") + " " + normalStyle.Render(truncStr(m.plan.Activities, 80)) + "\n")
	b.WriteString(" " + labelStyle.Render("avaliação") + "  " + normalStyle.Render(truncStr(m.plan.Assessment, 80)) + "\n\n")

	if m.plan.HasGeneratedPDF() {
		b.WriteString(" " + successStyle.Render("PDF gerado") + "  " + metaStyle.Render(m.client.DocumentURL(m.plan.GeneratedDocumentID)) + "\n")
	} else {
		b.WriteString(" " + warnStyle.Render("Este plano ainda não possui PDF gerado.") + "\n")
	}

	if m.qr != "" {
		b.WriteString("\n")
		for _, line := range strings.Split(strings.TrimRight(m.qr, "\n"), "\n") {
			b.WriteString(" " + line + "\n")
		}
	}

	if m.previewText != "" {
		b.WriteString("\n " + labelStyle.Render("TEXTO DO PDF") + "\n")
		lines := strings.Split(m.previewText, "\n")
		maxLines := m.height - 14
		if maxLines < 5 {
			maxLines = 5
		}
		if len(lines) > maxLines {
			lines = append(lines[:maxLines], fmt.Sprintf("… %d linhas omitidas", len(lines)-maxLines))
		}
		for _, line := range lines {
			b.WriteString(" " + dimStyle.Render(truncStr(line, 90)) + "\n")
		}
	}

	if m.statusMsg != "" {
		b.WriteString("\n " + warnStyle.Render(m.statusMsg) + "\n")
	}

	return truncateToHeight(b.String(), m.height)
}
