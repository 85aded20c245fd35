// Package tui is the terminal UI: a landing (auth) screen and a dashboard
// whose sections mirror the lesson-plan workflow. The App model is the
// workflow coordinator; it owns the selection state and the transition
// guards, while the section models own their data and network calls.
package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/studio-mia/mia/internal/session"
	"github.com/studio-mia/mia/pkg/client"
	"github.com/studio-mia/mia/pkg/domain"
)

type screen int

const (
	screenLoading screen = iota
	screenLanding
	screenDashboard
)

type section int

const (
	sectionList section = iota
	sectionCreate
	sectionPDF
	sectionUpload
	sectionManage
	sectionArchive
)

// Guard and refusal messages, mirrored from the product's dashboard.
const (
	msgSelectPlanFirst   = "Selecione um plano de aula antes de visualizar o PDF."
	msgSelectFileUpload  = "Selecione um arquivo para carregar."
	msgSelectFileArchive = "Selecione um arquivo para arquivar."
	msgSelectFileFirst   = "Selecione um arquivo antes de prosseguir."
)

// sessionInitMsg carries the result of session recovery on startup.
type sessionInitMsg struct {
	route session.Route
}

// loginDoneMsg carries the result of a login attempt.
type loginDoneMsg struct {
	route  session.Route
	errMsg string
}

// registerDoneMsg carries the result of a registration attempt.
type registerDoneMsg struct {
	errMsg string
}

type profileRefreshedMsg struct{}

// selectPlanMsg asks the coordinator to open the PDF view for a plan.
type selectPlanMsg struct {
	id string
}

// filePickedMsg carries a validated pending upload from the create form.
type filePickedMsg struct {
	up *domain.PendingUpload
}

// submitFormMsg moves a filled create form to the upload confirmation.
type submitFormMsg struct {
	form planForm
}

// planCreatedMsg carries the result of the multipart lesson-plan create.
type planCreatedMsg struct {
	plan *domain.LessonPlan
	err  error
}

// planForm is the text content of the lesson-plan form, passed between the
// create and upload sections.
type planForm struct {
	objectives string
	activities string
	assessment string
}

// App is the root Bubbletea model.
type App struct {
	client *client.Client
	sess   *session.Manager
	log    *zap.Logger

	screen  screen
	landing landingModel

	section section
	list    listModel
	create  createModel
	upload  uploadModel
	pdfView pdfModel
	manage  manageModel
	archive archiveModel

	// Workflow selection state
	selectedPlanID string
	pending        *domain.PendingUpload
	uploadedPlanID string
	lastForm       planForm

	sectionCtx    context.Context
	sectionCancel context.CancelFunc

	statusMsg string
	width     int
	height    int
}

// NewApp creates the TUI application.
func NewApp(c *client.Client, sess *session.Manager, log *zap.Logger) App {
	if log == nil {
		log = zap.NewNop()
	}
	return App{
		client:  c,
		sess:    sess,
		log:     log,
		screen:  screenLoading,
		landing: newLandingModel(),
	}
}

func (a App) Init() tea.Cmd {
	sess := a.sess
	return func() tea.Msg {
		return sessionInitMsg{route: sess.Initialize(context.Background())}
	}
}

func (a App) userID() string {
	if s := a.sess.State(); s.User != nil {
		return s.User.ID
	}
	return ""
}

// switchSection is the single entry point for section transitions: the
// up-front refusal for file-dependent sections, then the transition, then
// the corrective guards.
func (a App) switchSection(next section) (App, tea.Cmd) {
	if (next == sectionUpload || next == sectionArchive) && a.pending == nil {
		a.statusMsg = msgSelectFileFirst
		return a, nil
	}
	var cmd tea.Cmd
	a, cmd = a.enterSection(next)
	a, guardCmd := a.guard()
	if guardCmd != nil {
		return a, guardCmd
	}
	return a, cmd
}

// enterSection performs the transition: cancels the outgoing section's
// context, applies the leave rules, and builds the incoming section's
// model so it re-fetches on entry.
func (a App) enterSection(next section) (App, tea.Cmd) {
	prev := a.section
	if a.sectionCancel != nil {
		a.sectionCancel()
	}

	// Leave rules from the dashboard: the pdf context drops the plan
	// selection, the file sections drop the pending file and prefill.
	if prev == sectionPDF && next != sectionPDF {
		a.selectedPlanID = ""
	}
	if (prev == sectionUpload || prev == sectionArchive) && next != prev {
		a.pending = nil
		a.uploadedPlanID = ""
	}

	a.sectionCtx, a.sectionCancel = context.WithCancel(context.Background())
	a.section = next
	a.statusMsg = ""

	a.log.Debug("section transition",
		zap.Int("from", int(prev)),
		zap.Int("to", int(next)))

	var cmd tea.Cmd
	switch next {
	case sectionList:
		a.list = newListModel(a.client, a.userID())
		cmd = a.list.load(a.sectionCtx)
	case sectionCreate:
		a.create = newCreateModel(a.lastForm, a.pending)
	case sectionPDF:
		a.pdfView = newPDFModel(a.client, a.selectedPlanID)
		cmd = a.pdfView.load(a.sectionCtx)
	case sectionUpload:
		a.upload = newUploadModel(a.client, a.userID(), a.lastForm, a.pending)
		cmd = a.upload.init(a.sectionCtx)
	case sectionManage:
		a.manage = newManageModel(a.client, a.userID())
		cmd = a.manage.load(a.sectionCtx)
	case sectionArchive:
		a.archive = newArchiveModel(a.client, a.userID(), a.pending)
		cmd = a.archive.init(a.sectionCtx)
	}
	return a, cmd
}

// guard snaps the dashboard out of sections whose preconditions no longer
// hold, leaving a warning in place of the section.
func (a App) guard() (App, tea.Cmd) {
	switch a.section {
	case sectionPDF:
		if !domain.ValidPlanID(a.selectedPlanID) {
			a2, cmd := a.enterSection(sectionList)
			a2.statusMsg = msgSelectPlanFirst
			return a2, cmd
		}
	case sectionUpload:
		if a.pending == nil {
			a2, cmd := a.enterSection(sectionCreate)
			a2.statusMsg = msgSelectFileUpload
			return a2, cmd
		}
	case sectionArchive:
		if a.pending == nil {
			a2, cmd := a.enterSection(sectionCreate)
			a2.statusMsg = msgSelectFileArchive
			return a2, cmd
		}
	}
	return a, nil
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Chrome: header(2) + tabs(1) + status(1) + help(1) = 5 lines
		bodyMsg := tea.WindowSizeMsg{Width: msg.Width, Height: msg.Height - 5}
		a.list, _ = a.list.Update(bodyMsg)
		a.pdfView, _ = a.pdfView.Update(bodyMsg)
		a.manage, _ = a.manage.Update(bodyMsg)
		return a, nil

	case sessionInitMsg:
		switch msg.route {
		case session.RouteDashboard:
			a.screen = screenDashboard
			return toModel(a.enterSection(sectionList))
		default:
			a.screen = screenLanding
			a.landing.errMsg = a.sess.State().Err
			return a, nil
		}

	case loginDoneMsg:
		a.landing.submitting = false
		if msg.errMsg != "" {
			a.landing.errMsg = msg.errMsg
			return a, nil
		}
		if msg.route == session.RouteDashboard {
			a.screen = screenDashboard
			return toModel(a.enterSection(sectionList))
		}
		return a, nil

	case registerDoneMsg:
		a.landing.submitting = false
		if msg.errMsg != "" {
			a.landing.errMsg = msg.errMsg
			return a, nil
		}
		a.landing = newLandingModel()
		a.landing.statusMsg = "Cadastro realizado. Faça login."
		return a, nil

	case profileRefreshedMsg:
		return a, nil

	case selectPlanMsg:
		if !domain.ValidPlanID(msg.id) {
			a.statusMsg = "ID do plano de aula inválido."
			return a, nil
		}
		a.selectedPlanID = strings.TrimSpace(msg.id)
		return toModel(a.switchSection(sectionPDF))

	case filePickedMsg:
		a.pending = msg.up
		a.create.pendingName = msg.up.Name
		a.create.statusMsg = "Arquivo selecionado: " + msg.up.Name
		return a, nil

	case submitFormMsg:
		if a.pending == nil {
			a.statusMsg = msgSelectFileUpload
			return a, nil
		}
		a.lastForm = msg.form
		return toModel(a.switchSection(sectionUpload))

	case planCreatedMsg:
		if a.section != sectionUpload {
			return a, nil
		}
		if msg.err != nil {
			a.upload.submitting = false
			a.upload.errMsg = client.Detail(msg.err, client.MsgCreateFailed)
			return a, nil
		}
		// Back to create carrying the new id; ctrl+p promotes it to the
		// pdf view.
		a.lastForm = planForm{}
		var cmd tea.Cmd
		a, cmd = a.enterSection(sectionCreate)
		a.uploadedPlanID = msg.plan.ID
		a.statusMsg = "Plano de aula criado (id " + msg.plan.ID + "). ctrl+p abre o PDF."
		return a, cmd
	}

	if a.screen == screenLanding {
		return a.updateLanding(msg)
	}
	if a.screen == screenDashboard {
		return a.updateDashboard(msg)
	}

	// Loading screen: only quit keys are live.
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "q", "ctrl+c":
			return a, tea.Quit
		}
	}
	return a, nil
}

func (a App) updateLanding(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "ctrl+c" {
		return a, tea.Quit
	}
	var cmd tea.Cmd
	a.landing, cmd = a.landing.Update(msg, a.sess)
	return a, cmd
}

func (a App) updateDashboard(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		a.statusMsg = ""
		if handled, model, cmd := a.handleDashboardKey(key); handled {
			return model, cmd
		}
	}

	var cmd tea.Cmd
	switch a.section {
	case sectionList:
		a.list, cmd = a.list.Update(msg)
	case sectionCreate:
		a.create, cmd = a.create.Update(msg)
	case sectionPDF:
		a.pdfView, cmd = a.pdfView.Update(msg)
	case sectionUpload:
		a.upload, cmd = a.upload.Update(msg)
	case sectionManage:
		a.manage, cmd = a.manage.Update(msg)
	case sectionArchive:
		a.archive, cmd = a.archive.Update(msg)
	}

	a, guardCmd := a.guard()
	if guardCmd != nil {
		return a, guardCmd
	}
	return a, cmd
}

// handleDashboardKey intercepts global dashboard keys before they reach
// the active section. Returns handled=false to forward the key.
func (a App) handleDashboardKey(key tea.KeyMsg) (bool, tea.Model, tea.Cmd) {
	s := key.String()

	// Always live, editing or not.
	switch s {
	case "ctrl+c":
		return true, a, tea.Quit
	case "ctrl+l":
		a.sess.Logout()
		if a.sectionCancel != nil {
			a.sectionCancel()
		}
		a.screen = screenLanding
		a.landing = newLandingModel()
		a.selectedPlanID = ""
		a.pending = nil
		a.uploadedPlanID = ""
		a.lastForm = planForm{}
		return true, a, nil
	case "ctrl+r":
		sess := a.sess
		return true, a, func() tea.Msg {
			sess.RefreshProfile(context.Background())
			return profileRefreshedMsg{}
		}
	case "ctrl+p":
		if domain.ValidPlanID(a.uploadedPlanID) {
			a.selectedPlanID = a.uploadedPlanID
			model, cmd := a.switchSection(sectionPDF)
			return true, model, cmd
		}
		return true, a, nil
	case "esc":
		model, cmd := a.escapeSection()
		return true, model, cmd
	}

	if a.isEditing() {
		return false, a, nil
	}

	switch s {
	case "q":
		return true, a, tea.Quit
	case "1":
		model, cmd := a.switchSection(sectionList)
		return true, model, cmd
	case "2":
		model, cmd := a.switchSection(sectionCreate)
		return true, model, cmd
	case "3":
		model, cmd := a.switchSection(sectionPDF)
		return true, model, cmd
	case "4":
		model, cmd := a.switchSection(sectionUpload)
		return true, model, cmd
	case "5":
		model, cmd := a.switchSection(sectionManage)
		return true, model, cmd
	case "6":
		model, cmd := a.switchSection(sectionArchive)
		return true, model, cmd
	}
	return false, a, nil
}

// escapeSection routes esc to "one step back": manage handles its own
// inner modes, file sections fall back to create, everything else to the
// list.
func (a App) escapeSection() (App, tea.Cmd) {
	if a.section == sectionManage && a.manage.mode != manageModeList {
		var cmd tea.Cmd
		a.manage, cmd = a.manage.Update(tea.KeyMsg{Type: tea.KeyEsc})
		return a, cmd
	}
	switch a.section {
	case sectionUpload, sectionArchive:
		return a.switchSection(sectionCreate)
	case sectionList:
		return a, nil
	default:
		return a.switchSection(sectionList)
	}
}

func (a App) isEditing() bool {
	switch a.section {
	case sectionCreate:
		return true
	case sectionManage:
		return a.manage.mode == manageModeEdit
	}
	return false
}

func (a App) View() string {
	if a.screen == screenLoading {
		return "\n " + renderLogo() + "\n\n " + dimStyle.Render("carregando sessão...") + "\n"
	}
	if a.screen == screenLanding {
		return a.landing.View(a.width, a.height)
	}

	// Header: logo + signed-in user
	header := " " + renderLogo()
	if s := a.sess.State(); s.User != nil {
		header += "   " + metaStyle.Render(s.User.Email)
	}
	header += "\n"

	// Section tab bar
	type tabEntry struct {
		key  string
		name string
		s    section
	}
	tabs := []tabEntry{
		{"1", "Planos", sectionList},
		{"2", "Criar", sectionCreate},
		{"3", "PDF", sectionPDF},
		{"4", "Carregar", sectionUpload},
		{"5", "Gerenciar", sectionManage},
		{"6", "Arquivar", sectionArchive},
	}
	var tabBar strings.Builder
	tabBar.WriteString(" ")
	for i, t := range tabs {
		if i > 0 {
			tabBar.WriteString("  ")
		}
		if t.s == a.section {
			tabBar.WriteString(accentStyle.Render(t.key) + " " + selectedStyle.Underline(true).Render(t.name))
		} else {
			tabBar.WriteString(metaStyle.Render(t.key) + " " + dimStyle.Render(t.name))
		}
	}

	var body, help string
	switch a.section {
	case sectionList:
		body = a.list.View()
		help = " " + helpEntry("1-6", "seções") + "  " + helpEntry("j/k", "navegar") + "  " + helpEntry("enter", "PDF") + "  " + helpEntry("o", "abrir") + "  " + helpEntry("d", "baixar") + "  " + helpEntry("r", "atualizar") + "  " + helpEntry("q", "sair")
	case sectionCreate:
		body = a.create.View()
		help = " " + helpEntry("tab", "campo") + "  " + helpEntry("enter", "arquivo") + "  " + helpEntry("ctrl+s", "enviar") + "  " + helpEntry("esc", "voltar")
	case sectionPDF:
		body = a.pdfView.View()
		help = " " + helpEntry("o", "abrir") + "  " + helpEntry("d", "baixar") + "  " + helpEntry("c", "copiar url") + "  " + helpEntry("t", "texto") + "  " + helpEntry("g", "qr") + "  " + helpEntry("esc", "voltar")
	case sectionUpload:
		body = a.upload.View()
		help = " " + helpEntry("ctrl+s", "confirmar") + "  " + helpEntry("esc", "cancelar")
	case sectionManage:
		body = a.manage.View()
		help = " " + a.manage.helpKeys()
	case sectionArchive:
		body = a.archive.View()
		help = " " + helpEntry("enter", "arquivar") + "  " + helpEntry("esc", "cancelar")
	}

	status := ""
	if a.statusMsg != "" {
		status = " " + warnStyle.Render(a.statusMsg)
	}

	chrome := 5
	body = strings.TrimRight(truncateToHeight(body, a.height-chrome), "\n")

	return fmt.Sprintf("%s%s\n%s\n%s\n%s", header, tabBar.String(), body, status, help)
}

// toModel adapts an (App, tea.Cmd) pair to the tea.Model interface.
func toModel(a App, cmd tea.Cmd) (tea.Model, tea.Cmd) {
	return a, cmd
}
