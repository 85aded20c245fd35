package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/studio-mia/mia/pkg/client"
	"github.com/studio-mia/mia/pkg/domain"
)

type manageMode int

const (
	manageModeList manageMode = iota
	manageModeDetail
	manageModeEdit
)

const (
	previewOriginal = iota
	previewGenerated
)

// manageModel is the plan manager: a list tab and a detail tab with
// document previews and an edit form. Saving an edit posts a new plan
// through the create endpoint (the API has no update route).
type manageModel struct {
	client *client.Client
	userID string

	mode   manageMode
	plans  []domain.LessonPlan
	cursor int

	plan     *domain.LessonPlan
	origText string
	genText  string

	editFields [3]string
	editFocus  int
	saving     bool

	loading   bool
	errMsg    string
	statusMsg string
	width     int
	height    int
}

type managePlansMsg struct {
	plans []domain.LessonPlan
	err   error
}

type manageDetailMsg struct {
	plan *domain.LessonPlan
	err  error
}

type docPreviewMsg struct {
	which int
	text  string
	err   error
}

type manageSavedMsg struct {
	plan *domain.LessonPlan
	err  error
}

func newManageModel(c *client.Client, userID string) manageModel {
	return manageModel{client: c, userID: userID, loading: true}
}

func (m manageModel) load(ctx context.Context) tea.Cmd {
	c, userID := m.client, m.userID
	return func() tea.Msg {
		plans, err := c.ListUserLessonPlans(ctx, userID)
		return managePlansMsg{plans: plans, err: err}
	}
}

// loadDetail re-fetches the plan and kicks off the document previews.
func (m manageModel) loadDetail(id string) tea.Cmd {
	c := m.client
	return func() tea.Msg {
		plan, err := c.GetLessonPlan(context.Background(), id)
		return manageDetailMsg{plan: plan, err: err}
	}
}

// docPreviewCmd downloads a stored document and extracts its text for the
// detail tab.
func docPreviewCmd(c *client.Client, docID string, which int) tea.Cmd {
	return func() tea.Msg {
		text, err := fetchDocumentText(context.Background(), c, docID)
		return docPreviewMsg{which: which, text: text, err: err}
	}
}

func (m manageModel) Update(msg tea.Msg) (manageModel, tea.Cmd) {
	switch msg := msg.(type) {
	case managePlansMsg:
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

	case manageDetailMsg:
		m.loading = false
		if msg.err != nil {
			m.errMsg = client.Detail(msg.err, client.MsgFetchFailed)
			m.mode = manageModeList
			return m, nil
		}
		m.errMsg = ""
		m.plan = msg.plan
		m.mode = manageModeDetail
		var cmds []tea.Cmd
		if msg.plan.OriginalDocumentID != "" {
			cmds = append(cmds, docPreviewCmd(m.client, msg.plan.OriginalDocumentID, previewOriginal))
		}
		if msg.plan.HasGeneratedPDF() {
			cmds = append(cmds, docPreviewCmd(m.client, msg.plan.GeneratedDocumentID, previewGenerated))
		}
		return m, tea.Batch(cmds...)

	case docPreviewMsg:
		text := msg.text
		if msg.err != nil {
			text = "(prévia indisponível)"
		}
		if msg.which == previewOriginal {
			m.origText = text
		} else {
			m.genText = text
		}
		return m, nil

	case manageSavedMsg:
		m.saving = false
		if msg.err != nil {
			m.errMsg = client.Detail(msg.err, client.MsgCreateFailed)
			return m, nil
		}
		m.errMsg = ""
		m.statusMsg = "Plano salvo como novo registro (id " + msg.plan.ID + ")."
		m.mode = manageModeDetail
		m.plan = msg.plan
		m.origText = ""
		m.genText = ""
		return m, m.load(context.Background())

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		m.statusMsg = ""
		switch m.mode {
		case manageModeList:
			return m.updateList(msg)
		case manageModeDetail:
			return m.updateDetail(msg)
		case manageModeEdit:
			return m.updateEdit(msg)
		}
	}
	return m, nil
}

func (m manageModel) updateList(msg tea.KeyMsg) (manageModel, tea.Cmd) {
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
			m.loading = true
			m.origText = ""
			m.genText = ""
			return m, m.loadDetail(id)
		}
	case "v":
		if m.cursor < len(m.plans) {
			id := m.plans[m.cursor].ID
			if !domain.ValidPlanID(id) {
				m.statusMsg = "ID do plano de aula inválido."
				return m, nil
			}
			return m, func() tea.Msg { return selectPlanMsg{id: id} }
		}
	case "r":
		m.loading = true
		return m, m.load(context.Background())
	}
	return m, nil
}

func (m manageModel) updateDetail(msg tea.KeyMsg) (manageModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = manageModeList
		m.plan = nil
	case "e":
		if m.plan != nil {
			m.editFields = [3]string{m.plan.Objectives, m.plan.Activities, m.plan.Assessment}
			m.editFocus = 0
			m.mode = manageModeEdit
		}
	case "v":
		if m.plan != nil {
			id := m.plan.ID
			return m, func() tea.Msg { return selectPlanMsg{id: id} }
		}
	}
	return m, nil
}

func (m manageModel) updateEdit(msg tea.KeyMsg) (manageModel, tea.Cmd) {
	if m.saving {
		return m, nil
	}
	switch msg.String() {
	case "esc":
		m.mode = manageModeDetail
	case "tab", "down":
		m.editFocus = (m.editFocus + 1) % len(m.editFields)
	case "shift+tab", "up":
		m.editFocus = (m.editFocus - 1 + len(m.editFields)) % len(m.editFields)
	case "ctrl+s":
		return m.saveEdit()
	case "enter":
		m.editFields[m.editFocus] += "\n"
	case "backspace":
		m.editFields[m.editFocus] = editRune(m.editFields[m.editFocus], "backspace")
	default:
		if len(msg.String()) == 1 {
			m.editFields[m.editFocus] = editRune(m.editFields[m.editFocus], msg.String())
		}
	}
	return m, nil
}

func (m manageModel) saveEdit() (manageModel, tea.Cmd) {
	req := client.CreateLessonPlanRequest{
		UserID:     m.userID,
		Objectives: strings.TrimSpace(m.editFields[0]),
		Activities: strings.TrimSpace(m.editFields[1]),
		Assessment: strings.TrimSpace(m.editFields[2]),
	}
	if req.Objectives == "" || req.Activities == "" || req.Assessment == "" {
		m.errMsg = "Preencha objetivos, atividades e avaliação."
		return m, nil
	}
	m.saving = true
	c := m.client
	return m, func() tea.Msg {
		plan, err := c.CreateLessonPlan(context.Background(), req)
		return manageSavedMsg{plan: plan, err: err}
	}
}

func (m manageModel) helpKeys() string {
	switch m.mode {
	case manageModeDetail:
		return helpEntry("e", "editar") + "  " + helpEntry("v", "PDF") + "  " + helpEntry("esc", "voltar")
	case manageModeEdit:
		return helpEntry("tab", "campo") + "  " + helpEntry("ctrl+s", "salvar") + "  " + helpEntry("esc", "cancelar")
	default:
		return helpEntry("j/k", "navegar") + "  " + helpEntry("enter", "detalhes") + "  " + helpEntry("v", "PDF") + "  " + helpEntry("r", "atualizar")
	}
}

func (m manageModel) View() string {
	switch m.mode {
	case manageModeDetail:
		return m.viewDetail()
	case manageModeEdit:
		return m.viewEdit()
	default:
		return m.viewList()
	}
}

func (m manageModel) viewList() string {
	var b strings.Builder
	b.WriteString(" " + labelStyle.Render("GERENCIAR PLANOS DE AULA") + "\n\n")

	if m.loading {
		b.WriteString(" " + dimStyle.Render("carregando...") + "\n")
		return b.String()
	}
	if m.errMsg != "" {
		b.WriteString(" " + errorStyle.Render(m.errMsg) + "\n")
		return b.String()
	}
	if len(m.plans) == 0 {
		b.WriteString(" " + dimStyle.Render("Nenhum plano de aula para gerenciar.") + "\n")
		return b.String()
	}

	maxVisible := m.height - 4
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
		title := truncStr(strings.ReplaceAll(plan.Objectives, "\n", " "), 60)
		line := cursor + metaStyle.Render(fmt.Sprintf("%-5s", plan.ID)) + " " + style.Render(title)
		b.WriteString(line + "\n")
	}

	if m.statusMsg != "" {
		b.WriteString("\n " + warnStyle.Render(m.statusMsg) + "\n")
	}
	return truncateToHeight(b.String(), m.height)
}

func (m manageModel) viewDetail() string {
	var b strings.Builder
	b.WriteString(" " + dimStyle.Render("← voltar (esc)") + "\n")

	if m.loading || m.plan == nil {
		b.WriteString(" " + dimStyle.Render("carregando...") + "\n")
		return b.String()
	}
	plan := m.plan

	b.WriteString(" " + selectedStyle.Render("Plano "+plan.ID) + "  " + metaStyle.Render(formatDate(plan.CreatedAt)) + "\n\n")
	b.WriteString(" " + labelStyle.Render("objetivos") + "  " + normalStyle.Render(truncStr(plan.Objectives, 80)) + "\n")
	b.WriteString(" " + labelStyle.Render("atividades") + " " + normalStyle.Render(truncStr(plan.Activities, 80)) + "\n")
	b.WriteString(" " + labelStyle.Render("avaliação") + "  " + normalStyle.Render(truncStr(plan.Assessment, 80)) + "\n")

	writePreview := func(title, text string) {
		b.WriteString("\n " + labelStyle.Render(title) + "\n")
		if text == "" {
			b.WriteString(" " + dimStyle.Render("carregando prévia...") + "\n")
			return
		}
		lines := strings.Split(text, "\n")
		if len(lines) > 5 {
			lines = lines[:5]
		}
		for _, line := range lines {
			b.WriteString(" " + dimStyle.Render(truncStr(line, 90)) + "\n")
		}
	}

	if plan.OriginalDocumentID != "" {
		writePreview("DOCUMENTO ORIGINAL", m.origText)
	}
	if plan.HasGeneratedPDF() {
		writePreview("PDF GERADO", m.genText)
	}

	if m.errMsg != "" {
		b.WriteString("\n " + errorStyle.Render(m.errMsg) + "\n")
	} else if m.statusMsg != "" {
		b.WriteString("\n " + successStyle.Render(m.statusMsg) + "\n")
	}
	return truncateToHeight(b.String(), m.height)
}

func (m manageModel) viewEdit() string {
	var b strings.Builder
	b.WriteString(" " + labelStyle.Render("EDITAR PLANO DE AULA") + "  " + metaStyle.Render("(salva como um novo registro)") + "\n\n")

	labels := [3]string{"objetivos", "atividades", "avaliação"}
	for i := range m.editFields {
		cursor := " "
		style := metaStyle
		value := strings.ReplaceAll(m.editFields[i], "\n", dimStyle.Render("⏎"))
		if i == m.editFocus {
			cursor = ">"
			style = selectedStyle
			value += "█"
		}
		fmt.Fprintf(&b, " %s %s: %s\n", cursor, style.Render(fmt.Sprintf("%-10s", labels[i])), value)
	}

	b.WriteString("\n")
	if m.saving {
		b.WriteString(" " + dimStyle.Render("salvando...") + "\n")
	} else if m.errMsg != "" {
		b.WriteString(" " + errorStyle.Render(m.errMsg) + "\n")
	}
	return truncateToHeight(b.String(), m.height)
}
