// internal/workflow/controller.go
//
// One intake controller drives every scan-to-record flow. The workflow kind
// picks the lookup, whether an unknown code offers product registration, the
// reference collection the form needs and the payload it submits.
//
// The controller mutates state only from the bubbletea event loop. The
// lookup (with its hand-off write), the hand-off read of a redirect target,
// the submission and the reference fetch run as tea.Cmds and report back as
// typed messages tagged with a request ticket. A result whose ticket
// no longer matches, or that arrives after Unmount, is dropped.

package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/Hernesto-SRL/management-front/internal/handoff"
	"github.com/Hernesto-SRL/management-front/internal/inventory"
	"github.com/Hernesto-SRL/management-front/internal/journal"
	"github.com/Hernesto-SRL/management-front/internal/locale"
	"github.com/Hernesto-SRL/management-front/internal/lookup"
	"github.com/Hernesto-SRL/management-front/internal/metrics"
	"github.com/Hernesto-SRL/management-front/internal/notify"
	"github.com/Hernesto-SRL/management-front/internal/refdata"
	"github.com/Hernesto-SRL/management-front/internal/scan"
	"github.com/Hernesto-SRL/management-front/internal/submission"
)

// Resolver classifies a scanned code.
type Resolver interface {
	Resolve(ctx context.Context, code inventory.ScannedCode, kind inventory.WorkflowKind) lookup.Outcome
}

// Gateway validates and submits completed forms.
type Gateway interface {
	Validate(p submission.Payload) error
	Submit(ctx context.Context, p submission.Payload) (submission.Ack, error)
}

// Recorder keeps accepted submissions.
type Recorder interface {
	Record(e journal.Entry)
}

// Logger receives diagnostic lines.
type Logger interface {
	Printf(format string, args ...any)
}

// Deps are the collaborators shared by every controller instance.
type Deps struct {
	Resolver   Resolver
	Gateway    Gateway
	RefData    refdata.Source
	Handoff    *handoff.Context
	Notifier   notify.Notifier
	Journal    Recorder
	Translator *locale.Translator
	Logger     Logger
}

// Controller is the intake state machine for one mounted workflow.
type Controller struct {
	kind    inventory.WorkflowKind
	profile profile

	resolver Resolver
	gateway  Gateway
	refdata  refdata.Source
	handle   *handoff.Handle
	notifier notify.Notifier
	journal  Recorder
	tr       *locale.Translator
	logger   Logger

	ctx       context.Context
	cancel    context.CancelFunc
	newTicket func() string
	asTarget  bool
	unmounted bool
	writes    handoffWriter

	restoreTicket string

	state      State
	code       inventory.ScannedCode
	ticket     string
	stopLookup context.CancelFunc
	manualErr  string
	errMsg     string
	errRefData bool
	draft      *Draft

	pending      bool
	submitTicket string
}

// Option customizes a Controller.
type Option func(*Controller)

// AsRedirectTarget starts the controller from the code left in the shared
// intake context, when there is one.
func AsRedirectTarget() Option {
	return func(c *Controller) {
		c.asTarget = true
	}
}

// WithTicketSource overrides uuid request tickets.
func WithTicketSource(next func() string) Option {
	return func(c *Controller) {
		if next != nil {
			c.newTicket = next
		}
	}
}

// New builds a controller for kind. It binds the shared intake context, which
// revokes the previous instance's write access.
func New(kind inventory.WorkflowKind, deps Deps, opts ...Option) (*Controller, error) {
	prof, ok := profiles[kind]
	if !ok {
		return nil, fmt.Errorf("workflow: unsupported kind %s", kind)
	}
	if deps.Resolver == nil || deps.Gateway == nil || deps.RefData == nil {
		return nil, errors.New("workflow: resolver, gateway and reference data are required")
	}
	if deps.Handoff == nil {
		deps.Handoff = handoff.New(nil)
	}
	if deps.Notifier == nil {
		deps.Notifier = notify.Nop
	}
	if deps.Translator == nil {
		deps.Translator = locale.Default()
	}
	if deps.Logger == nil {
		deps.Logger = nopLogger{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		kind:      kind,
		profile:   prof,
		resolver:  deps.Resolver,
		gateway:   deps.Gateway,
		refdata:   deps.RefData,
		handle:    deps.Handoff.Bind(kind.String()),
		notifier:  deps.Notifier,
		journal:   deps.Journal,
		tr:        deps.Translator,
		logger:    deps.Logger,
		ctx:       ctx,
		cancel:    cancel,
		newTicket: uuid.NewString,
		state:     Scanning,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// Kind returns the workflow kind.
func (c *Controller) Kind() inventory.WorkflowKind { return c.kind }

// State returns the current state.
func (c *Controller) State() State { return c.state }

// Code returns the current scanning target.
func (c *Controller) Code() inventory.ScannedCode { return c.code }

// Draft returns the record form seed, nil outside RecordForm.
func (c *Controller) Draft() *Draft { return c.draft }

// ErrorMessage is the text shown in ErrorDisplay.
func (c *Controller) ErrorMessage() string { return c.errMsg }

// ManualError is the input error shown in ManualEntry.
func (c *Controller) ManualError() string { return c.manualErr }

// Pending reports whether a submission is in flight.
func (c *Controller) Pending() bool { return c.pending }

// DisambiguationPrompt returns the two lines shown in Disambiguation.
func (c *Controller) DisambiguationPrompt() (string, string) {
	return c.tr.T(locale.DisambiguationMessage, c.code.Value), c.tr.T(locale.DisambiguationQuestion)
}

// RefData reports the load state of the collection the form needs.
func (c *Controller) RefData() refdata.Status { return c.refdata.Status() }

// Init requests the reference collection. A redirect target also reads the
// shared intake context and opens RecordForm when it holds a code.
func (c *Controller) Init() tea.Cmd {
	refs := c.ensureRefData()
	if !c.asTarget {
		return refs
	}
	ticket := c.newTicket()
	c.restoreTicket = ticket
	handle, ctx := c.handle, c.ctx
	return tea.Batch(refs, func() tea.Msg {
		code, ok, err := handle.Read(ctx)
		return HandoffMsg{Ticket: ticket, Code: code, Found: ok, Err: err}
	})
}

// Update applies async results. Messages for other instances are ignored.
func (c *Controller) Update(msg tea.Msg) tea.Cmd {
	switch m := msg.(type) {
	case LookupDoneMsg:
		return c.handleLookup(m)
	case SubmitDoneMsg:
		return c.handleSubmit(m)
	case HandoffMsg:
		c.handleRestore(m)
		return nil
	case RefDataMsg:
		if m.Collection != c.refdata.Name() {
			return nil
		}
		return c.handleRefData(m)
	}
	return nil
}

// Capture starts a lookup for code. A capture while Loading supersedes the
// lookup in flight.
func (c *Controller) Capture(code inventory.ScannedCode) tea.Cmd {
	if c.unmounted || !c.state.acceptsCapture() || code.IsZero() {
		return nil
	}
	c.abandonLookup()
	c.code = code
	c.manualErr = ""
	c.restoreTicket = ""
	c.state = Loading

	ticket := c.newTicket()
	ctx, stop := context.WithCancel(c.ctx)
	c.ticket = ticket
	c.stopLookup = stop
	seq := c.writes.next()
	resolver, kind, handle, writes := c.resolver, c.kind, c.handle, &c.writes
	return func() tea.Msg {
		written := writes.write(ctx, handle, seq, code)
		outcome := resolver.Resolve(ctx, code, kind)
		return LookupDoneMsg{Ticket: ticket, Code: code, Outcome: outcome, HandoffErr: written}
	}
}

// EnterManual switches from Scanning to typed input.
func (c *Controller) EnterManual() {
	if c.state == Scanning {
		c.state = ManualEntry
		c.manualErr = ""
	}
}

// SubmitManual validates typed text and captures it. Invalid text stays in
// ManualEntry with an input error.
func (c *Controller) SubmitManual(text string) tea.Cmd {
	if c.state != ManualEntry {
		return nil
	}
	code, err := scan.Manual(text)
	if err != nil {
		if errors.Is(err, inventory.ErrCodeTooLong) {
			c.manualErr = c.tr.T(locale.ValidationMaxLength, inventory.MaxCodeLength)
		} else {
			c.manualErr = c.tr.T(locale.ValidationRequired)
		}
		return nil
	}
	return c.Capture(code)
}

// CancelManual returns from ManualEntry to Scanning.
func (c *Controller) CancelManual() {
	if c.state == ManualEntry {
		c.state = Scanning
		c.manualErr = ""
	}
}

// Acknowledge dismisses ErrorDisplay. After a reference data failure the
// collection is requested again.
func (c *Controller) Acknowledge() tea.Cmd {
	if c.state != ErrorDisplay {
		return nil
	}
	retry := c.errRefData
	c.state = Scanning
	c.errMsg = ""
	c.errRefData = false
	c.draft = nil
	if retry {
		return c.ensureRefData()
	}
	return nil
}

// Decline answers no to product registration.
func (c *Controller) Decline() {
	if c.state == Disambiguation {
		c.state = Scanning
	}
}

// Accept answers yes to product registration and asks the host to redirect.
func (c *Controller) Accept() tea.Cmd {
	if c.state != Disambiguation {
		return nil
	}
	c.state = Scanning
	code := c.code
	return func() tea.Msg {
		return RedirectMsg{Target: inventory.KindRegisterProduct, Code: code}
	}
}

// OpenBlankForm opens an empty record form for kinds that allow it.
func (c *Controller) OpenBlankForm() {
	if c.state != Scanning || !c.profile.blankForm {
		return
	}
	c.draft = &Draft{}
	c.state = RecordForm
}

// Cancel discards the form and returns to Scanning. It is ignored while a
// submission is pending.
func (c *Controller) Cancel() {
	if c.state != RecordForm || c.pending {
		return
	}
	c.draft = nil
	c.state = Scanning
}

// Submit validates p locally and sends it. A second submit while one is
// pending is ignored.
func (c *Controller) Submit(p submission.Payload) tea.Cmd {
	if c.state != RecordForm || c.pending || p == nil {
		return nil
	}
	if p.Kind() != c.profile.payload {
		c.logger.Printf("workflow %s: ignoring %s payload", c.kind, p.Kind())
		return nil
	}
	if st := c.refdata.Status(); !st.Loaded {
		c.notifier.Notify(notify.LevelInfo, c.tr.T(locale.RefDataPending))
		return nil
	}
	if err := c.gateway.Validate(p); err != nil {
		var verr *submission.ValidationError
		if errors.As(err, &verr) {
			c.draft.setFieldErrors(verr.Fields)
			metrics.RecordSubmission(p.Kind().String(), "validation")
			return nil
		}
		c.notifier.Notify(notify.LevelError, c.tr.T(c.profile.failure))
		return nil
	}
	c.draft.FieldErrors = nil
	c.pending = true
	ticket := c.newTicket()
	c.submitTicket = ticket
	gateway, ctx := c.gateway, c.ctx
	return func() tea.Msg {
		ack, err := gateway.Submit(ctx, p)
		return SubmitDoneMsg{Ticket: ticket, Payload: p, Ack: ack, Err: err}
	}
}

// Unmount cancels in-flight work, releases the shared intake context and
// makes every later result stale.
func (c *Controller) Unmount() {
	if c.unmounted {
		return
	}
	c.unmounted = true
	c.cancel()
	c.ticket = ""
	c.submitTicket = ""
	c.restoreTicket = ""
	c.stopLookup = nil
	c.draft = nil
	c.handle.Release()
}

func (c *Controller) handleLookup(m LookupDoneMsg) tea.Cmd {
	if c.unmounted || m.Ticket == "" || m.Ticket != c.ticket || c.state != Loading {
		metrics.RecordStaleOutcome(c.kind.String())
		return nil
	}
	c.ticket = ""
	if c.stopLookup != nil {
		c.stopLookup()
		c.stopLookup = nil
	}
	if m.HandoffErr != nil {
		c.logger.Printf("workflow %s: write hand-off: %v", c.kind, m.HandoffErr)
		if !errors.Is(m.HandoffErr, handoff.ErrNotHolder) {
			c.notifier.Notify(notify.LevelWarning, c.tr.T(locale.HandoffFailed))
		}
	}

	switch m.Outcome.Kind {
	case lookup.Found:
		if c.refdata.Status().Failed() {
			c.showRefDataFailure()
			return nil
		}
		c.draft = &Draft{Code: m.Code, Product: m.Outcome.Product, Batches: m.Outcome.Batches}
		c.state = RecordForm
		if st := c.refdata.Status(); !st.Loaded && !st.Loading {
			return c.ensureRefData()
		}
		return nil
	case lookup.NotFound:
		if c.profile.disambiguate {
			c.state = Disambiguation
			return nil
		}
		c.notifier.Notify(notify.LevelWarning, c.tr.T(locale.LookupNotFound))
		c.state = Scanning
		return nil
	default:
		msg := m.Outcome.Message
		if msg == "" {
			msg = c.tr.T(locale.LookupFailed)
		}
		c.errMsg = msg
		c.errRefData = false
		c.state = ErrorDisplay
		return nil
	}
}

// handleRestore opens the form from the code a redirect left behind. It is
// dropped once the operator has moved on from Scanning.
func (c *Controller) handleRestore(m HandoffMsg) {
	if c.unmounted || m.Ticket == "" || m.Ticket != c.restoreTicket {
		return
	}
	c.restoreTicket = ""
	if m.Err != nil {
		c.logger.Printf("workflow %s: read hand-off: %v", c.kind, m.Err)
		c.notifier.Notify(notify.LevelWarning, c.tr.T(locale.HandoffLost))
		return
	}
	if !m.Found || c.state != Scanning {
		return
	}
	c.code = m.Code
	c.draft = &Draft{Code: m.Code}
	c.state = RecordForm
}

func (c *Controller) handleSubmit(m SubmitDoneMsg) tea.Cmd {
	if c.unmounted || m.Ticket == "" || m.Ticket != c.submitTicket {
		metrics.RecordStaleOutcome(c.kind.String())
		return nil
	}
	c.pending = false
	c.submitTicket = ""
	inForm := c.state == RecordForm && c.draft != nil

	if m.Err == nil {
		c.notifier.Notify(notify.LevelSuccess, c.tr.T(c.profile.success))
		c.record(m.Payload)
		if inForm {
			c.draft = nil
			c.state = Scanning
		}
		kind, payload := c.kind, m.Payload
		return func() tea.Msg {
			return CompletedMsg{Kind: kind, Payload: payload}
		}
	}

	var (
		verr   *submission.ValidationError
		subErr *submission.Error
	)
	switch {
	case errors.As(m.Err, &verr):
		if inForm {
			c.draft.setFieldErrors(verr.Fields)
		}
	case errors.As(m.Err, &subErr):
		switch subErr.Kind {
		case submission.Conflict:
			if inForm {
				c.draft.setFieldError(subErr.Field, subErr.Message)
			}
			c.notifier.Notify(notify.LevelWarning, subErr.Message)
		case submission.Rejected:
			if inForm {
				c.draft.setFieldError(subErr.Field, subErr.Message)
			} else {
				c.notifier.Notify(notify.LevelWarning, subErr.Message)
			}
		default:
			c.notifier.Notify(notify.LevelError, subErr.Message)
		}
	default:
		c.logger.Printf("workflow %s: submit: %v", c.kind, m.Err)
		c.notifier.Notify(notify.LevelError, c.tr.T(c.profile.failure))
	}
	return nil
}

func (c *Controller) handleRefData(m RefDataMsg) tea.Cmd {
	if c.unmounted || m.Err == nil {
		return nil
	}
	c.logger.Printf("workflow %s: %s: %v", c.kind, m.Collection, m.Err)
	// a retry that is already running elsewhere may still succeed
	if !c.refdata.Status().Failed() {
		return nil
	}
	c.showRefDataFailure()
	return nil
}

func (c *Controller) showRefDataFailure() {
	c.abandonLookup()
	c.draft = nil
	c.errMsg = c.tr.T(locale.RefDataFailed)
	c.errRefData = true
	c.state = ErrorDisplay
}

func (c *Controller) abandonLookup() {
	if c.stopLookup != nil {
		c.stopLookup()
		c.stopLookup = nil
	}
	c.ticket = ""
}

func (c *Controller) ensureRefData() tea.Cmd {
	src, ctx := c.refdata, c.ctx
	return func() tea.Msg {
		return RefDataMsg{Collection: src.Name(), Err: src.Ensure(ctx)}
	}
}

func (c *Controller) record(p submission.Payload) {
	if c.journal == nil {
		return
	}
	entry := journal.Entry{At: time.Now(), Kind: c.kind.String(), Code: c.code.Value}
	if c.draft != nil {
		entry.Code = c.draft.Barcode()
		entry.Subject = c.draft.ProductName()
	}
	switch v := p.(type) {
	case submission.ProductPayload:
		entry.Code = v.Barcode
		entry.Subject = v.Name
		entry.Detail = v.ShelfLife.String()
	case submission.BatchPayload:
		entry.Detail = fmt.Sprintf("deposito %d", v.WarehouseID)
	case submission.StockEntryPayload:
		if v.NewBatch {
			entry.Detail = fmt.Sprintf("+%d lote nuevo en deposito %d", v.Amount, v.WarehouseID)
		} else {
			entry.Detail = fmt.Sprintf("+%d lote %d", v.Amount, v.BatchID)
		}
	case submission.StockExitPayload:
		entry.Detail = fmt.Sprintf("-%d lote %d", v.Amount, v.BatchID)
	}
	c.journal.Record(entry)
}

// handoffWriter orders the hand-off writes of lookup commands. Only the
// newest capture writes, so a superseded command never overwrites a later
// code.
type handoffWriter struct {
	mu     sync.Mutex
	latest atomic.Uint64
}

func (w *handoffWriter) next() uint64 {
	return w.latest.Add(1)
}

func (w *handoffWriter) write(ctx context.Context, h *handoff.Handle, seq uint64, code inventory.ScannedCode) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if seq != w.latest.Load() || ctx.Err() != nil {
		return nil
	}
	return h.Write(ctx, code)
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}
