package tui

import (
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Hernesto-SRL/management-front/internal/journal"
	"github.com/Hernesto-SRL/management-front/internal/locale"
	"github.com/Hernesto-SRL/management-front/internal/notify"
	"github.com/Hernesto-SRL/management-front/internal/submission"
)

type referenceText struct {
	title   string
	success string
	failure string
}

var referenceTexts = map[submission.Kind]referenceText{
	submission.KindWarehouse: {title: "Nuevo deposito", success: locale.SuccessWarehouse, failure: locale.ErrorWarehouse},
	submission.KindCategory:  {title: "Nueva categoria", success: locale.SuccessCategory, failure: locale.ErrorCategory},
}

// referenceDoneMsg carries a warehouse or category submission result back to
// the view that sent it.
type referenceDoneMsg struct {
	view    *referenceView
	payload submission.Payload
	err     error
}

// referenceView is the create form for warehouses and categories. These
// records have no scan step so they talk to the gateway directly.
type referenceView struct {
	app     *App
	kind    submission.Kind
	form    *form
	errs    map[string]string
	pending bool
}

func newReferenceView(app *App, kind submission.Kind) *referenceView {
	text := referenceTexts[kind]
	var f *form
	switch kind {
	case submission.KindWarehouse:
		f = newForm(text.title,
			newTextField("name", "Nombre", ""),
			newTextField("address", "Direccion", ""),
		)
	default:
		f = newForm(text.title, newTextField("name", "Nombre", ""))
	}
	return &referenceView{app: app, kind: kind, form: f, errs: map[string]string{}}
}

func (v *referenceView) payload() submission.Payload {
	name := v.form.field("name").value()
	if v.kind == submission.KindWarehouse {
		return submission.WarehousePayload{Name: name, Address: v.form.field("address").value()}
	}
	return submission.CategoryPayload{Name: name}
}

func (v *referenceView) fieldError(key string) string {
	return v.errs[key]
}

// handleKey returns leave when the operator cancels the form.
func (v *referenceView) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	cmd, action := v.form.Update(msg)
	switch action {
	case formCancel:
		return nil, !v.pending
	case formSubmit:
		return v.submit(), false
	}
	return cmd, false
}

func (v *referenceView) submit() tea.Cmd {
	if v.pending {
		return nil
	}
	p := v.payload()
	if err := v.app.svc.Gateway.Validate(p); err != nil {
		var verr *submission.ValidationError
		if errors.As(err, &verr) {
			v.errs = verr.Fields
			return nil
		}
		v.app.notifier.Notify(notify.LevelError, v.app.tr.T(referenceTexts[v.kind].failure))
		return nil
	}
	v.errs = map[string]string{}
	v.pending = true
	gateway, ctx := v.app.svc.Gateway, v.app.ctx
	return func() tea.Msg {
		_, err := gateway.Submit(ctx, p)
		return referenceDoneMsg{view: v, payload: p, err: err}
	}
}

// handleDone applies a submission result. done is true after a success.
func (v *referenceView) handleDone(msg referenceDoneMsg) bool {
	v.pending = false
	text := referenceTexts[v.kind]
	if msg.err == nil {
		v.app.notifier.Notify(notify.LevelSuccess, v.app.tr.T(text.success))
		v.record(msg.payload)
		return true
	}
	var (
		verr   *submission.ValidationError
		subErr *submission.Error
	)
	switch {
	case errors.As(msg.err, &verr):
		v.errs = verr.Fields
	case errors.As(msg.err, &subErr):
		switch subErr.Kind {
		case submission.Conflict:
			v.errs = map[string]string{subErr.Field: subErr.Message}
			v.app.notifier.Notify(notify.LevelWarning, subErr.Message)
		case submission.Rejected:
			v.errs = map[string]string{subErr.Field: subErr.Message}
		default:
			v.app.notifier.Notify(notify.LevelError, subErr.Message)
		}
	default:
		v.app.logError("%s: %v", v.kind, msg.err)
		v.app.notifier.Notify(notify.LevelError, v.app.tr.T(text.failure))
	}
	return false
}

func (v *referenceView) record(p submission.Payload) {
	if v.app.svc.Journal == nil {
		return
	}
	entry := journal.Entry{At: time.Now(), Kind: v.kind.String()}
	switch r := p.(type) {
	case submission.WarehousePayload:
		entry.Subject = r.Name
		entry.Detail = r.Address
	case submission.CategoryPayload:
		entry.Subject = r.Name
	}
	v.app.svc.Journal.Record(entry)
}

func (v *referenceView) View() string {
	return v.form.View(v.fieldError, v.pending)
}
