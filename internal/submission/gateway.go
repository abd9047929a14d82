// internal/submission/gateway.go
//
// The gateway validates a completed form locally, sends it to the inventory
// API and classifies the response. Local validation failures never reach the
// network. Every non-success response becomes a *Error the workflow can map
// onto a field or a notification.

package submission

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/Hernesto-SRL/management-front/internal/backend"
	"github.com/Hernesto-SRL/management-front/internal/locale"
	"github.com/Hernesto-SRL/management-front/internal/metrics"
	"github.com/Hernesto-SRL/management-front/internal/refdata"
)

// ErrorKind classifies a rejected submission.
type ErrorKind int

const (
	Conflict ErrorKind = iota + 1
	Rejected
	Unknown
)

func (k ErrorKind) String() string {
	switch k {
	case Conflict:
		return "conflict"
	case Rejected:
		return "rejected"
	case Unknown:
		return "unknown"
	default:
		return "invalid"
	}
}

// Error is a classified backend rejection. Field is empty for Unknown.
type Error struct {
	Kind    ErrorKind
	Field   string
	Message string
	Status  int
	Err     error
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("submission: %s on %s: %s", e.Kind, e.Field, e.Message)
	}
	return fmt.Sprintf("submission: %s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Ack confirms an accepted submission.
type Ack struct {
	Kind   Kind
	Status int
}

// Doer is the slice of the backend client the gateway uses.
type Doer interface {
	Do(ctx context.Context, method, path string, query url.Values, payload any) (*backend.Response, error)
}

// Invalidator refreshes a reference collection after a create.
type Invalidator interface {
	Invalidate(ctx context.Context, name string) error
}

// Logger receives details that never reach the operator.
type Logger interface {
	Printf(format string, args ...any)
}

type route struct {
	method  string
	path    string
	success []int
	// classifyFields enables Conflict/Rejected mapping; otherwise every
	// non-success status is Unknown.
	classifyFields bool
	defaultField   string
	conflictKey    string
	unknownKey     string
	collection     string
}

var routes = map[Kind]route{
	KindProduct: {
		method: http.MethodPost, path: backend.PathProduct,
		success:        []int{http.StatusOK},
		classifyFields: true, defaultField: "barcode",
		conflictKey: locale.ConflictBarcode, unknownKey: locale.ErrorProduct,
	},
	KindBatch: {
		method: http.MethodPost, path: backend.PathBatch,
		success:    []int{http.StatusOK, http.StatusCreated},
		unknownKey: locale.ErrorBatch,
	},
	KindStockEntry: {
		method: http.MethodPut, path: backend.PathStock,
		success:    []int{http.StatusOK, http.StatusCreated},
		unknownKey: locale.ErrorStock,
	},
	KindStockExit: {
		method: http.MethodPut, path: backend.PathStock,
		success:    []int{http.StatusOK, http.StatusCreated},
		unknownKey: locale.ErrorStock,
	},
	KindWarehouse: {
		method: http.MethodPost, path: backend.PathWarehouse,
		success:        []int{http.StatusOK},
		classifyFields: true, defaultField: "name",
		conflictKey: locale.ConflictWarehouse, unknownKey: locale.ErrorWarehouse,
		collection: refdata.Warehouses,
	},
	KindCategory: {
		method: http.MethodPost, path: backend.PathCategories,
		success:        []int{http.StatusOK},
		classifyFields: true, defaultField: "name",
		conflictKey: locale.ConflictCategory, unknownKey: locale.ErrorCategory,
		collection: refdata.Categories,
	},
}

// Gateway submits payloads to the inventory API.
type Gateway struct {
	api         Doer
	invalidator Invalidator
	schema      *Schema
	tr          *locale.Translator
	logger      Logger
}

// Option customizes a Gateway.
type Option func(*Gateway)

// WithInvalidator refreshes reference data after warehouse and category creates.
func WithInvalidator(inv Invalidator) Option {
	return func(g *Gateway) {
		g.invalidator = inv
	}
}

// WithTranslator sets the language of field and failure messages.
func WithTranslator(tr *locale.Translator) Option {
	return func(g *Gateway) {
		if tr != nil {
			g.tr = tr
		}
	}
}

// WithLogger overrides the default no-op logger.
func WithLogger(l Logger) Option {
	return func(g *Gateway) {
		if l != nil {
			g.logger = l
		}
	}
}

// New returns a gateway over api.
func New(api Doer, opts ...Option) *Gateway {
	g := &Gateway{
		api:    api,
		tr:     locale.Default(),
		logger: nopLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	g.schema = NewSchema(g.tr)
	return g
}

// Validate runs the local schema for p. It returns a *ValidationError or nil.
func (g *Gateway) Validate(p Payload) error {
	return g.schema.Validate(p)
}

// Submit validates p and sends it. Validation failures return a
// *ValidationError without a request; backend rejections return a *Error.
func (g *Gateway) Submit(ctx context.Context, p Payload) (Ack, error) {
	if p == nil {
		return Ack{}, errors.New("submission: nil payload")
	}
	kind := p.Kind()
	rt, ok := routes[kind]
	if !ok {
		return Ack{}, fmt.Errorf("submission: unsupported payload %T", p)
	}
	if err := g.schema.Validate(p); err != nil {
		metrics.RecordSubmission(kind.String(), "validation")
		return Ack{}, err
	}

	resp, err := g.api.Do(ctx, rt.method, rt.path, nil, body(p))
	if err != nil {
		g.logger.Printf("submission: %s: %v", kind, err)
		metrics.RecordSubmission(kind.String(), Unknown.String())
		return Ack{}, &Error{Kind: Unknown, Message: g.tr.T(rt.unknownKey), Err: err}
	}
	if contains(rt.success, resp.Status) {
		metrics.RecordSubmission(kind.String(), "ok")
		if rt.collection != "" && g.invalidator != nil {
			if err := g.invalidator.Invalidate(ctx, rt.collection); err != nil {
				g.logger.Printf("submission: refresh %s: %v", rt.collection, err)
			}
		}
		return Ack{Kind: kind, Status: resp.Status}, nil
	}

	subErr := g.classify(rt, resp)
	g.logger.Printf("submission: %s: status %d classified as %s", kind, resp.Status, subErr.Kind)
	metrics.RecordSubmission(kind.String(), subErr.Kind.String())
	return Ack{}, subErr
}

type fieldBody struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (g *Gateway) classify(rt route, resp *backend.Response) *Error {
	unknown := &Error{Kind: Unknown, Message: g.tr.T(rt.unknownKey), Status: resp.Status}
	if !rt.classifyFields {
		return unknown
	}
	var fb fieldBody
	_ = resp.Decode(&fb)
	field := fb.Field
	if field == "" {
		field = rt.defaultField
	}
	switch resp.Status {
	case http.StatusConflict:
		return &Error{Kind: Conflict, Field: field, Message: g.tr.T(rt.conflictKey), Status: resp.Status}
	case http.StatusBadRequest:
		msg := fb.Message
		if msg == "" {
			msg = g.tr.T(locale.RejectedGeneric)
			if field == "name" {
				msg = g.tr.T(locale.RejectedName)
			}
		}
		return &Error{Kind: Rejected, Field: field, Message: msg, Status: resp.Status}
	default:
		return unknown
	}
}

func contains(codes []int, status int) bool {
	for _, c := range codes {
		if c == status {
			return true
		}
	}
	return false
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}
