package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Hernesto-SRL/management-front/internal/inventory"
	"github.com/Hernesto-SRL/management-front/internal/workflow"
)

var intakeTitles = map[inventory.WorkflowKind]string{
	inventory.KindStockEntry:      "Ingreso de stock",
	inventory.KindStockExit:       "Egreso de stock",
	inventory.KindRegisterProduct: "Registrar producto",
	inventory.KindRegisterBatch:   "Registrar lote",
}

// intakeView renders one workflow controller and turns keys into controller
// calls. The controller owns every state transition.
type intakeView struct {
	app     *App
	ctrl    *workflow.Controller
	manual  textinput.Model
	spinner spinner.Model
	wedge   wedge

	form       *form
	draft      *workflow.Draft
	refsLoaded bool
}

func newIntakeView(app *App, ctrl *workflow.Controller) *intakeView {
	manual := textinput.New()
	manual.Placeholder = "codigo de barras"
	manual.Width = 40
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = promptStyle
	return &intakeView{app: app, ctrl: ctrl, manual: manual, spinner: sp}
}

func (v *intakeView) title() string {
	if title, ok := intakeTitles[v.ctrl.Kind()]; ok {
		return title
	}
	return v.ctrl.Kind().String()
}

// capture hands a code to the controller. Codes outside a capturing state
// are dropped by the controller itself.
func (v *intakeView) capture(code inventory.ScannedCode) tea.Cmd {
	cmd := v.ctrl.Capture(code)
	if cmd == nil {
		return nil
	}
	v.sync()
	return tea.Batch(cmd, v.spinner.Tick)
}

func (v *intakeView) handleMsg(msg tea.Msg) tea.Cmd {
	switch m := msg.(type) {
	case spinner.TickMsg:
		if v.ctrl.State() != workflow.Loading {
			return nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(m)
		return cmd
	case workflow.CompletedMsg:
		v.form = nil
		v.draft = nil
		v.sync()
		return nil
	}
	cmd := v.ctrl.Update(msg)
	v.sync()
	return cmd
}

// handleKey applies one key press. leave is true when the operator backs out
// of the workflow.
func (v *intakeView) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	defer v.sync()
	switch v.ctrl.State() {
	case workflow.Scanning, workflow.Loading:
		return v.scanningKey(msg)
	case workflow.ManualEntry:
		switch msg.String() {
		case "enter":
			cmd := v.ctrl.SubmitManual(v.manual.Value())
			if cmd == nil {
				return nil, false
			}
			v.manual.Reset()
			v.manual.Blur()
			return tea.Batch(cmd, v.spinner.Tick), false
		case "esc":
			v.ctrl.CancelManual()
			v.manual.Reset()
			v.manual.Blur()
			return nil, false
		}
		var cmd tea.Cmd
		v.manual, cmd = v.manual.Update(msg)
		return cmd, false
	case workflow.Disambiguation:
		switch msg.String() {
		case "s", "y", "enter":
			return v.ctrl.Accept(), false
		case "n", "esc":
			v.ctrl.Decline()
		}
		return nil, false
	case workflow.ErrorDisplay:
		switch msg.String() {
		case "enter", "esc", " ":
			return v.ctrl.Acknowledge(), false
		}
		return nil, false
	case workflow.RecordForm:
		if v.form == nil {
			return nil, false
		}
		cmd, action := v.form.Update(msg)
		switch action {
		case formSubmit:
			return v.ctrl.Submit(recordPayload(v.ctrl.Kind(), v.ctrl.Draft(), v.form)), false
		case formCancel:
			v.ctrl.Cancel()
		}
		return cmd, false
	}
	return nil, false
}

func (v *intakeView) scanningKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.String() {
	case "esc":
		v.wedge.reset()
		return nil, true
	case "enter":
		if v.app.manualOnly {
			return nil, false
		}
		code, ok := v.wedge.flush()
		if !ok || !v.app.debouncer.Allow(v.app.ctx, code) {
			return nil, false
		}
		return v.capture(code), false
	case "f2":
		if v.ctrl.State() == workflow.Scanning {
			v.wedge.reset()
			v.ctrl.EnterManual()
			return v.manual.Focus(), false
		}
	case "f3":
		if workflow.SupportsBlankForm(v.ctrl.Kind()) {
			v.wedge.reset()
			v.ctrl.OpenBlankForm()
		}
	case "backspace":
		pending := []rune(v.wedge.pending())
		v.wedge.reset()
		if len(pending) > 0 {
			v.wedge.add(pending[:len(pending)-1])
		}
	default:
		if msg.Type == tea.KeyRunes && !v.app.manualOnly {
			v.wedge.add(msg.Runes)
		}
	}
	return nil, false
}

// sync rebuilds the record form whenever the controller hands out a new
// draft, and once more when the reference collection finishes loading.
func (v *intakeView) sync() {
	draft := v.ctrl.Draft()
	if v.ctrl.State() != workflow.RecordForm || draft == nil {
		v.form = nil
		v.draft = nil
		return
	}
	loaded := v.ctrl.RefData().Loaded
	if draft != v.draft || v.form == nil || (loaded && !v.refsLoaded) {
		v.form = buildRecordForm(v.ctrl.Kind(), draft, v.app.references())
		v.draft = draft
		v.refsLoaded = loaded
	}
}

func (v *intakeView) close() {
	v.ctrl.Unmount()
}

func (v *intakeView) View() string {
	lines := []string{titleStyle.Render(v.title()), ""}
	switch v.ctrl.State() {
	case workflow.Scanning:
		if v.app.manualOnly {
			lines = append(lines, "Lector deshabilitado, ingrese el codigo manualmente.")
		} else {
			lines = append(lines, "Escanee un codigo de barras o QR.")
		}
		if pending := v.wedge.pending(); pending != "" {
			lines = append(lines, promptStyle.Render("› "+pending))
		}
		hint := "[f2] ingresar manualmente · [esc] volver"
		if workflow.SupportsBlankForm(v.ctrl.Kind()) {
			hint = "[f2] ingresar codigo · [f3] formulario vacio · [esc] volver"
		}
		lines = append(lines, "", hintStyle.Render(hint))
	case workflow.ManualEntry:
		lines = append(lines, "Ingrese el codigo de barras:", v.manual.View())
		if msg := v.ctrl.ManualError(); msg != "" {
			lines = append(lines, fieldErr.Render(msg))
		}
		lines = append(lines, "", hintStyle.Render("[enter] buscar · [esc] cancelar"))
	case workflow.Loading:
		lines = append(lines, v.spinner.View()+" Buscando "+v.ctrl.Code().Value+"...")
	case workflow.Disambiguation:
		message, question := v.ctrl.DisambiguationPrompt()
		lines = append(lines, message, promptStyle.Render(question), "", hintStyle.Render("[s] si · [n] no"))
	case workflow.ErrorDisplay:
		lines = append(lines, errorBoxStyle.Render(v.ctrl.ErrorMessage()), "", hintStyle.Render("[enter] continuar"))
	case workflow.RecordForm:
		if v.form != nil {
			draft := v.ctrl.Draft()
			lines = append(lines, v.form.View(draft.FieldError, v.ctrl.Pending()))
		}
	}
	return lipgloss.NewStyle().Render(strings.Join(lines, "\n"))
}
