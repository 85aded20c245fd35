package tui

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/studio-mia/mia/internal/browser"
	"github.com/studio-mia/mia/pkg/client"
	"github.com/studio-mia/mia/pkg/domain"
)

// listModel is the dashboard's plan list: the user's lesson plans with
// selection, browser open and download of the generated PDF.
type listModel struct {
	client    *client.Client
	userID    string
	plans     []domain.LessonPlan
	cursor    int
	loading   bool
	errMsg    string
	statusMsg string
	width     int
	height    int
}

type plansLoadedMsg struct {
	plans []domain.LessonPlan
	err   error
}

type openResultMsg struct{ err error }

type downloadResultMsg struct {
	path string
	err  error
}

func newListModel(c *client.Client, userID string) listModel {
	return listModel{client: c, userID: userID, loading: true}
}

func (m listModel) load(ctx context.Context) tea.Cmd {
	c, userID := m.client, m.userID
	return func() tea.Msg {
		plans, err := c.ListUserLessonPlans(ctx, userID)
		return plansLoadedMsg{plans: plans, err: err}
	}
}

func (m listModel) Update(msg tea.Msg) (listModel, tea.Cmd) {
	switch msg := msg.(type) {
	case plansLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.errMsg = client.Detail(msg.err, client.MsgFetchFailed)
			return m, nil
		}
		m.errMsg = ""
		m.plans = msg.plans
		if m.cursor >= len(m.plans) {
			m.cursor = 0
		}
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

func (m listModel) updateKeys(msg tea.KeyMsg) (listModel, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.cursor < len(m.plans)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "enter":
		if m.cursor < len(m.plans) {
			id := m.plans[m.cursor].ID
			if !domain.ValidPlanID(id) {
				m.statusMsg = "ID do plano de aula inválido."
				return m, nil
			}
			return m, func() tea.Msg { return selectPlanMsg{id: id} }
		}
	case "o":
		if m.cursor < len(m.plans) {
			plan := m.plans[m.cursor]
			if !plan.HasGeneratedPDF() {
				m.statusMsg = "Este plano ainda não possui PDF gerado."
				return m, nil
			}
			url := m.client.DocumentURL(plan.GeneratedDocumentID)
			return m, func() tea.Msg {
				return openResultMsg{err: browser.Open(url)}
			}
		}
	case "d":
		if m.cursor < len(m.plans) {
			plan := m.plans[m.cursor]
			if !plan.HasGeneratedPDF() {
				m.statusMsg = "Este plano ainda não possui PDF gerado."
				return m, nil
			}
			return m, downloadPlanCmd(m.client, plan)
		}
	case "r":
		m.loading = true
		return m, m.load(context.Background())
	}
	return m, nil
}

// downloadPlanCmd saves a plan's generated PDF to the working directory.
func downloadPlanCmd(c *client.Client, plan domain.LessonPlan) tea.Cmd {
	return func() tea.Msg {
		data, err := c.DownloadDocument(context.Background(), plan.GeneratedDocumentID)
		if err != nil {
			return downloadResultMsg{err: err}
		}
		path := fmt.Sprintf("plano-de-aula-%s.pdf", plan.ID)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return downloadResultMsg{err: err}
		}
		return downloadResultMsg{path: path}
	}
}

func (m listModel) View() string {
	var b strings.Builder
	b.WriteString(" " + labelStyle.Render("MEUS PLANOS DE AULA") + "\n\n")

	if m.loading {
		b.WriteString(" " + dimStyle.Render("carregando...") + "\n")
		return b.String()
	}
	if m.errMsg != "" {
		b.WriteString(" " + errorStyle.Render(m.errMsg) + "\n")
		return b.String()
	}
	if len(m.plans) == 0 {
		b.WriteString(" " + dimStyle.Render("Nenhum plano de aula ainda. Use a seção Criar.") + "\n")
		return b.String()
	}

	maxVisible := m.height - 6
	if maxVisible < 3 {
		maxVisible = 3
	}
	start := 0
	if m.cursor >= maxVisible {
		start = m.cursor - maxVisible + 1
	}

	for i := start; i < len(m.plans) && i < start+maxVisible; i++ {
		plan := m.plans[i]

		cursor := "  "
		style := dimStyle
		if i == m.cursor {
			cursor = accentStyle.Render("▸") + " "
			style = normalStyle.Bold(true)
		}

		pdfCol := metaStyle.Render("  -  ")
		if plan.HasGeneratedPDF() {
			pdfCol = successStyle.Render(" PDF ")
		}

		titleWidth := m.width - 30
		if titleWidth < 20 {
			titleWidth = 20
		}
		title := truncStr(strings.ReplaceAll(plan.Objectives, "\n", " "), titleWidth)
		line := cursor + style.Render(fmt.Sprintf("%-*s", titleWidth, title)) + " " + pdfCol + " " + metaStyle.Render(formatDate(plan.CreatedAt))

		if i == m.cursor {
			b.WriteString(selectedRowBg.Render(line) + "\n")
		} else {
			b.WriteString(line + "\n")
		}
	}

	// Detail preview of the selected plan
	if m.cursor < len(m.plans) {
		plan := m.plans[m.cursor]
		b.WriteString("\n")
		b.WriteString(" " + labelStyle.Render("objetivos") + "  " + normalStyle.Render(truncStr(plan.Objectives, 70)) + "\n")
		b.WriteString(" " + labelStyle.Render("atividades") + " " + normalStyle.Render(truncStr(plan.Activities, 70)) + "\n")
		b.WriteString(" " + labelStyle.Render("avaliação") + "  " + normalStyle.Render(truncStr(plan.Assessment, 70)) + "\n")
	}

	if m.statusMsg != "" {
		b.WriteString("\n " + warnStyle.Render(m.statusMsg) + "\n")
	}

	return truncateToHeight(b.String(), m.height)
}
