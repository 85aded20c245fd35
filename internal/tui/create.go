package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/studio-mia/mia/pkg/domain"
)

type createField int

const (
	createObjectives createField = iota
	createActivities
	createAssessment
	createFile
	numCreateFields
)

// createModel is the lesson-plan form: three multiline text fields plus a
// file picker (a path typed in and validated on enter). Submitting with a
// selected file hands the form to the upload confirmation.
type createModel struct {
	fields      [numCreateFields]string
	focus       createField
	pendingName string
	statusMsg   string
	errMsg      string
}

func newCreateModel(form planForm, pending *domain.PendingUpload) createModel {
	m := createModel{}
	m.fields[createObjectives] = form.objectives
	m.fields[createActivities] = form.activities
	m.fields[createAssessment] = form.assessment
	if pending != nil {
		m.pendingName = pending.Name
	}
	return m
}

func (m createModel) Update(msg tea.Msg) (createModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	m.statusMsg = ""
	m.errMsg = ""

	switch key.String() {
	case "ctrl+s":
		return m.submit()
	case "tab", "down":
		m.focus = (m.focus + 1) % numCreateFields
	case "shift+tab", "up":
		m.focus = (m.focus - 1 + numCreateFields) % numCreateFields
	case "enter":
		if m.focus == createFile {
			return m.pickFile()
		}
		m.fields[m.focus] += "\n"
	case "backspace":
		f := &m.fields[m.focus]
		*f = editRune(*f, "backspace")
	default:
		if len(key.String()) == 1 {
			m.fields[m.focus] = editRune(m.fields[m.focus], key.String())
		}
	}
	return m, nil
}

// pickFile validates the typed path as an upload candidate (extension and
// size are checked before anything leaves the machine).
func (m createModel) pickFile() (createModel, tea.Cmd) {
	path := strings.TrimSpace(m.fields[createFile])
	if path == "" {
		m.errMsg = msgSelectFileUpload
		return m, nil
	}
	up, err := domain.SelectUpload(path)
	if err != nil {
		m.errMsg = err.Error()
		return m, nil
	}
	return m, func() tea.Msg { return filePickedMsg{up: up} }
}

func (m createModel) submit() (createModel, tea.Cmd) {
	form := planForm{
		objectives: strings.TrimSpace(m.fields[createObjectives]),
		activities: strings.TrimSpace(m.fields[createActivities]),
		assessment: strings.TrimSpace(m.fields[createAssessment]),
	}
	if form.objectives == "" || form.activities == "" || form.assessment == "" {
		m.errMsg = "Preencha objetivos, atividades e avaliação."
		return m, nil
	}
	return m, func() tea.Msg { return submitFormMsg{form: form} }
}

func (m createModel) View() string {
	var b strings.Builder
	b.WriteString(" " + labelStyle.Render("CRIAR PLANO DE AULA") + "\n\n")

	labels := [numCreateFields]string{"objetivos", "atividades", "avaliação", "arquivo"}

	for i := createField(0); i < numCreateFields; i++ {
		cursor := " "
		style := metaStyle
		if i == m.focus {
			cursor = ">"
			style = selectedStyle
		}

		value := m.fields[i]
		if i == createFile && value == "" && i != m.focus {
			value = inputPlaceholderStyle.Render("caminho do PDF ou DOCX...")
		} else {
			value = strings.ReplaceAll(value, "\n", dimStyle.Render("⏎"))
			if i == m.focus {
				value += "█"
			}
		}
		fmt.Fprintf(&b, " %s %s: %s\n", cursor, style.Render(fmt.Sprintf("%-10s", labels[i])), value)
	}

	b.WriteString("\n")
	if m.pendingName != "" {
		b.WriteString(" " + successStyle.Render("arquivo: "+m.pendingName) + "\n")
	} else {
		b.WriteString(" " + dimStyle.Render("nenhum arquivo selecionado (digite o caminho e pressione enter)") + "\n")
	}

	if m.errMsg != "" {
		b.WriteString("\n " + errorStyle.Render(m.errMsg) + "\n")
	} else if m.statusMsg != "" {
		b.WriteString("\n " + successStyle.Render(m.statusMsg) + "\n")
	}

	return b.String()
}
