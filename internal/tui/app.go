// internal/tui/app.go
//
// This is the terminal front end for warehouse intake. It uses bubbletea,
// which follows The Elm Architecture:
//
// 1. Model: the App and whichever workflow screen is mounted
// 2. Update: messages (keys, scans, backend results) change that state
// 3. View: the state is rendered to a string
//
// Every backend call runs as a tea.Cmd and comes back as a typed message, so
// Update never blocks. Intake screens delegate their state machine to a
// workflow.Controller. Only one controller is mounted at a time.

package tui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Hernesto-SRL/management-front/internal/auth"
	"github.com/Hernesto-SRL/management-front/internal/handoff"
	"github.com/Hernesto-SRL/management-front/internal/inventory"
	"github.com/Hernesto-SRL/management-front/internal/journal"
	"github.com/Hernesto-SRL/management-front/internal/locale"
	"github.com/Hernesto-SRL/management-front/internal/logbook"
	"github.com/Hernesto-SRL/management-front/internal/notify"
	"github.com/Hernesto-SRL/management-front/internal/refdata"
	"github.com/Hernesto-SRL/management-front/internal/scan"
	"github.com/Hernesto-SRL/management-front/internal/submission"
	"github.com/Hernesto-SRL/management-front/internal/workflow"
)

// appState represents which "screen" we're on
type appState int

const (
	stateAuthorizing appState = iota // Waiting for the role check
	stateDenied                      // Operator lacks the required role
	stateMainMenu                    // Control menu
	stateIntake                      // A scan-driven workflow is mounted
	stateReference                   // Warehouse or category form
)

const logPanelLines = 6

// Services are the collaborators the App wires into every screen.
type Services struct {
	Resolver workflow.Resolver
	Gateway  workflow.Gateway
	RefData  *refdata.Loader
	Handoff  *handoff.Context
	Journal  *journal.Journal
	Logbook  *logbook.Logbook

	// Notifier receives every operator notification in addition to the
	// status line.
	Notifier     notify.Notifier
	Authorizer   auth.Authorizer
	RequiredRole auth.Role
	Debouncer    *scan.Debouncer
	Translator   *locale.Translator
	Logger       workflow.Logger
}

// AppOption customizes App construction for tests and alternate runtimes.
type AppOption func(*App)

// WithScanner feeds captures from a device adapter into the mounted workflow.
func WithScanner(ch <-chan scan.Capture) AppOption {
	return func(a *App) {
		a.scanner = ch
	}
}

// WithManualOnly ignores keyboard-wedge scans. Codes are typed through manual
// entry instead.
func WithManualOnly() AppOption {
	return func(a *App) {
		a.manualOnly = true
	}
}

// WithStartKind opens kind right after authorization instead of the menu.
func WithStartKind(kind inventory.WorkflowKind) AppOption {
	return func(a *App) {
		if kind.Valid() {
			a.startKind = kind
		}
	}
}

type menuAction int

const (
	actionIntake menuAction = iota
	actionReference
	actionExport
	actionExit
)

// menuItem implements list.Item interface for our menu items
type menuItem struct {
	title     string
	desc      string
	action    menuAction
	kind      inventory.WorkflowKind
	reference submission.Kind
}

func (i menuItem) Title() string       { return i.title }
func (i menuItem) Description() string { return i.desc }
func (i menuItem) FilterValue() string { return i.title }

type authorizedMsg struct {
	profile auth.Profile
	allowed bool
	err     error
}

type journalExportedMsg struct {
	path string
	err  error
}

type status struct {
	level   notify.Level
	message string
}

// App is the main application model. In bubbletea, this holds ALL your state.
type App struct {
	state    appState
	svc      Services
	tr       *locale.Translator
	notifier notify.Notifier

	ctx    context.Context
	cancel context.CancelFunc

	scanner    <-chan scan.Capture
	debouncer  *scan.Debouncer
	startKind  inventory.WorkflowKind
	manualOnly bool

	profile auth.Profile
	authErr error

	mainMenu  list.Model
	intake    *intakeView
	reference *referenceView

	status status
	width  int
	height int
}

// NewApp creates a new App instance
func NewApp(svc Services, opts ...AppOption) (*App, error) {
	if svc.Resolver == nil || svc.Gateway == nil || svc.RefData == nil {
		return nil, errors.New("tui: resolver, gateway and reference data are required")
	}
	if svc.Handoff == nil {
		svc.Handoff = handoff.New(nil)
	}
	if svc.Translator == nil {
		svc.Translator = locale.Default()
	}
	if svc.Notifier == nil {
		svc.Notifier = notify.Nop
	}
	if svc.Authorizer == nil {
		svc.Authorizer = auth.NewStatic(auth.RoleUser | auth.RoleAdmin)
	}
	if svc.RequiredRole == 0 {
		svc.RequiredRole = auth.RoleAdmin
	}

	mainMenu := list.New(buildMainMenu(), list.NewDefaultDelegate(), 0, 0)
	mainMenu.Title = "⬡ CONTROL"
	mainMenu.SetShowStatusBar(false)
	mainMenu.SetFilteringEnabled(false)

	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		state:     stateAuthorizing,
		svc:       svc,
		tr:        svc.Translator,
		ctx:       ctx,
		cancel:    cancel,
		debouncer: svc.Debouncer,
		mainMenu:  mainMenu,
	}
	app.notifier = notify.Fanout{svc.Notifier, notify.Func(app.setStatus)}
	for _, opt := range opts {
		if opt != nil {
			opt(app)
		}
	}
	return app, nil
}

// buildMainMenu lists the intake workflows in menu order followed by the
// reference forms.
func buildMainMenu() []list.Item {
	descs := map[inventory.WorkflowKind]string{
		inventory.KindStockEntry:      "Escanear un producto y sumar unidades a un lote",
		inventory.KindStockExit:       "Escanear un producto y descontar unidades de un lote",
		inventory.KindRegisterProduct: "Dar de alta un producto en el catalogo",
		inventory.KindRegisterBatch:   "Abrir un lote vacio en un deposito",
	}
	items := []list.Item{}
	for _, kind := range inventory.WorkflowKinds {
		items = append(items, menuItem{title: intakeTitles[kind], desc: descs[kind], action: actionIntake, kind: kind})
	}
	items = append(items,
		menuItem{title: "Nuevo deposito", desc: "Registrar un deposito", action: actionReference, reference: submission.KindWarehouse},
		menuItem{title: "Nueva categoria", desc: "Registrar una categoria de productos", action: actionReference, reference: submission.KindCategory},
		menuItem{title: "Exportar registro", desc: "Guardar los movimientos de la sesion en una planilla", action: actionExport},
		menuItem{title: "Salir", desc: "Cerrar la terminal", action: actionExit},
	)
	return items
}

func (a *App) setStatus(level notify.Level, message string) {
	a.status = status{level: level, message: message}
}

func (a *App) logInfo(format string, args ...any) {
	if a.svc.Logbook == nil {
		return
	}
	a.svc.Logbook.Info(format, args...)
}

func (a *App) logWarn(format string, args ...any) {
	if a.svc.Logbook == nil {
		return
	}
	a.svc.Logbook.Warn(format, args...)
}

func (a *App) logError(format string, args ...any) {
	if a.svc.Logbook == nil {
		return
	}
	a.svc.Logbook.Error(format, args...)
}

// references snapshots the reference collections for a record form.
func (a *App) references() references {
	return references{
		warehouses: a.svc.RefData.Warehouses.Snapshot().Data,
		categories: a.svc.RefData.Categories.Snapshot().Data,
	}
}

// Close unmounts the active workflow and cancels outstanding requests.
func (a *App) Close() {
	if a.intake != nil {
		a.intake.close()
		a.intake = nil
	}
	a.cancel()
}

// Init is called once when the program starts.
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.authorize(), waitForCapture(a.scanner))
}

func (a *App) authorize() tea.Cmd {
	authorizer, required, ctx := a.svc.Authorizer, a.svc.RequiredRole, a.ctx
	return func() tea.Msg {
		profile, err := authorizer.Profile(ctx)
		if err != nil {
			return authorizedMsg{err: err}
		}
		return authorizedMsg{profile: profile, allowed: profile.Roles.Has(required)}
	}
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.mainMenu.SetSize(max(0, msg.Width-6), max(0, msg.Height-12))
		return a, nil

	case authorizedMsg:
		return a.handleAuthorized(msg)

	case captureMsg:
		next := waitForCapture(a.scanner)
		if msg.capture.Err != nil {
			a.logWarn("scanner: %v", msg.capture.Err)
			a.notifier.Notify(notify.LevelWarning, a.tr.T(locale.ScannerStopped))
			return a, nil
		}
		if a.state == stateIntake && a.intake != nil {
			return a, tea.Batch(a.intake.capture(msg.capture.Code), next)
		}
		return a, next

	case scannerClosedMsg:
		return a, nil

	case workflow.LookupDoneMsg, workflow.SubmitDoneMsg, workflow.RefDataMsg, workflow.HandoffMsg, workflow.CompletedMsg, spinner.TickMsg:
		if a.intake == nil {
			return a, nil
		}
		return a, a.intake.handleMsg(msg)

	case workflow.RedirectMsg:
		a.logInfo("Redirect to %s with code %s", msg.Target, msg.Code.Value)
		return a.openIntake(msg.Target, true)

	case referenceDoneMsg:
		if a.reference == nil || msg.view != a.reference {
			return a, nil
		}
		if a.reference.handleDone(msg) {
			return a.returnToMainMenu()
		}
		return a, nil

	case journalExportedMsg:
		switch {
		case errors.Is(msg.err, journal.ErrEmpty):
			a.notifier.Notify(notify.LevelInfo, a.tr.T(locale.JournalEmpty))
		case msg.err != nil:
			a.logError("journal export: %v", msg.err)
			a.notifier.Notify(notify.LevelError, a.tr.T(locale.JournalFailed))
		default:
			a.notifier.Notify(notify.LevelSuccess, a.tr.T(locale.JournalSaved, msg.path))
		}
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			a.Close()
			return a, tea.Quit
		}
		return a.handleKey(msg)
	}
	return a, nil
}

func (a *App) handleAuthorized(msg authorizedMsg) (tea.Model, tea.Cmd) {
	a.profile = msg.profile
	a.authErr = msg.err
	if msg.err != nil || !msg.allowed {
		if msg.err != nil {
			a.logWarn("Authorization failed: %v", msg.err)
		} else {
			a.logWarn("Access denied for %s (roles %s)", msg.profile.FullName(), msg.profile.Roles)
		}
		a.state = stateDenied
		return a, nil
	}
	a.logInfo("Session opened by %s", msg.profile.FullName())
	if a.startKind.Valid() {
		return a.openIntake(a.startKind, false)
	}
	a.state = stateMainMenu
	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch a.state {
	case stateAuthorizing:
		if msg.String() == "q" {
			a.Close()
			return a, tea.Quit
		}
		return a, nil
	case stateDenied:
		switch msg.String() {
		case "r":
			a.state = stateAuthorizing
			return a, a.authorize()
		case "q", "esc", "enter":
			a.Close()
			return a, tea.Quit
		}
		return a, nil
	case stateMainMenu:
		switch msg.String() {
		case "q":
			a.Close()
			return a, tea.Quit
		case "enter":
			return a.handleMainMenuSelection()
		}
		var cmd tea.Cmd
		a.mainMenu, cmd = a.mainMenu.Update(msg)
		return a, cmd
	case stateIntake:
		if a.intake == nil {
			return a.returnToMainMenu()
		}
		cmd, leave := a.intake.handleKey(msg)
		if leave {
			return a.returnToMainMenu()
		}
		return a, cmd
	case stateReference:
		if a.reference == nil {
			return a.returnToMainMenu()
		}
		cmd, leave := a.reference.handleKey(msg)
		if leave {
			return a.returnToMainMenu()
		}
		return a, cmd
	}
	return a, nil
}

func (a *App) handleMainMenuSelection() (tea.Model, tea.Cmd) {
	item, ok := a.mainMenu.SelectedItem().(menuItem)
	if !ok {
		return a, nil
	}
	switch item.action {
	case actionIntake:
		return a.openIntake(item.kind, false)
	case actionReference:
		a.reference = newReferenceView(a, item.reference)
		a.state = stateReference
		return a, a.reference.form.move(0)
	case actionExport:
		return a, a.exportJournal()
	case actionExit:
		a.Close()
		return a, tea.Quit
	}
	return a, nil
}

// openIntake unmounts the current workflow and mounts kind. A redirect
// target starts from the code left in the shared intake context.
func (a *App) openIntake(kind inventory.WorkflowKind, redirect bool) (tea.Model, tea.Cmd) {
	if a.intake != nil {
		a.intake.close()
		a.intake = nil
	}
	deps := workflow.Deps{
		Resolver:   a.svc.Resolver,
		Gateway:    a.svc.Gateway,
		RefData:    a.svc.RefData.For(kind),
		Handoff:    a.svc.Handoff,
		Notifier:   a.notifier,
		Translator: a.tr,
		Logger:     a.svc.Logger,
	}
	if a.svc.Journal != nil {
		deps.Journal = a.svc.Journal
	}
	var opts []workflow.Option
	if redirect {
		opts = append(opts, workflow.AsRedirectTarget())
	}
	ctrl, err := workflow.New(kind, deps, opts...)
	if err != nil {
		a.logError("open %s: %v", kind, err)
		a.notifier.Notify(notify.LevelError, err.Error())
		return a.returnToMainMenu()
	}
	a.reference = nil
	a.intake = newIntakeView(a, ctrl)
	a.state = stateIntake
	cmd := ctrl.Init()
	a.intake.sync()
	return a, cmd
}

func (a *App) returnToMainMenu() (tea.Model, tea.Cmd) {
	if a.intake != nil {
		a.intake.close()
		a.intake = nil
	}
	a.reference = nil
	a.state = stateMainMenu
	return a, nil
}

func (a *App) exportJournal() tea.Cmd {
	book := a.svc.Journal
	return func() tea.Msg {
		if book == nil {
			return journalExportedMsg{err: journal.ErrEmpty}
		}
		path, err := book.Export()
		return journalExportedMsg{path: path, err: err}
	}
}

// View renders the current state
func (a *App) View() string {
	width := a.width
	if width <= 0 {
		width = 100
	}
	var content string
	switch a.state {
	case stateAuthorizing:
		content = mutedStyle.Render("Verificando permisos...")
	case stateDenied:
		content = a.renderDenied()
	case stateMainMenu:
		content = a.mainMenu.View()
	case stateIntake:
		if a.intake != nil {
			content = a.intake.View()
		}
	case stateReference:
		if a.reference != nil {
			content = a.reference.View()
		}
	}

	header := headerStyle.Render("⬡ INTAKE")
	if name := a.profile.FullName(); name != "" {
		header = lipgloss.JoinHorizontal(lipgloss.Top, header, mutedStyle.Render("  "+name))
	}
	parts := []string{header, boxStyle.Width(max(20, width-4)).Render(content)}
	if a.status.message != "" {
		parts = append(parts, levelStyle(a.status.level).Render(a.status.message))
	}
	if panel := a.renderLogPanel(width - 4); panel != "" {
		parts = append(parts, panel)
	}
	parts = append(parts, hintStyle.Render(a.footer()))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (a *App) renderDenied() string {
	lines := []string{errorBoxStyle.Render(a.tr.T(locale.AuthDenied))}
	if a.authErr != nil {
		lines = append(lines, mutedStyle.Render(a.authErr.Error()))
	}
	lines = append(lines, "", hintStyle.Render("[r] reintentar · [q] salir"))
	return strings.Join(lines, "\n")
}

func (a *App) footer() string {
	switch a.state {
	case stateMainMenu:
		return "[enter] abrir · [q] salir"
	case stateIntake, stateReference:
		return "[esc] volver · [ctrl+c] salir"
	default:
		return "[ctrl+c] salir"
	}
}

func (a *App) renderLogPanel(width int) string {
	if a.svc.Logbook == nil {
		return ""
	}
	lines, total := a.svc.Logbook.Tail(logPanelLines)
	if len(lines) == 0 {
		return ""
	}
	fileName := filepath.Base(a.svc.Logbook.Path())
	if fileName == "." || fileName == "" {
		fileName = "log"
	}
	head := titleStyle.Render(fmt.Sprintf("LOG · %s (%d)", fileName, total))
	body := hintStyle.Render(strings.Join(lines, "\n"))
	return boxStyle.Width(max(20, width)).Render(fmt.Sprintf("%s\n%s", head, body))
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
