package lookup

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/Hernesto-SRL/management-front/internal/backend"
	"github.com/Hernesto-SRL/management-front/internal/inventory"
	"github.com/Hernesto-SRL/management-front/internal/locale"
	"github.com/Hernesto-SRL/management-front/internal/metrics"
)

// OutcomeKind tags a lookup outcome.
type OutcomeKind int

const (
	Found OutcomeKind = iota + 1
	NotFound
	TransientError
)

func (k OutcomeKind) String() string {
	switch k {
	case Found:
		return "found"
	case NotFound:
		return "not_found"
	case TransientError:
		return "transient_error"
	default:
		return "unknown"
	}
}

// Outcome is the classified result of one resolver call. Product is set for
// product lookups, Batches for batch lookups, Message for TransientError.
type Outcome struct {
	Kind    OutcomeKind
	Product *inventory.Product
	Batches *inventory.ProductBatches
	Message string
}

// Query is which backend lookup a workflow kind needs.
type Query int

const (
	QueryProduct Query = iota
	QueryBatches
)

// QueryFor maps a workflow kind to its lookup.
func QueryFor(kind inventory.WorkflowKind) Query {
	switch kind {
	case inventory.KindStockEntry, inventory.KindStockExit:
		return QueryBatches
	default:
		return QueryProduct
	}
}

// Getter is the slice of the backend client the resolver uses.
type Getter interface {
	Get(ctx context.Context, path string, query url.Values) (*backend.Response, error)
}

// Logger receives transport details that never reach the operator.
type Logger interface {
	Printf(format string, args ...any)
}

// Resolver turns a scanned code into a LookupOutcome.
type Resolver struct {
	api    Getter
	tr     *locale.Translator
	logger Logger
	clock  func() time.Time
}

// Option customizes a Resolver.
type Option func(*Resolver)

// WithTranslator sets the language of the generic failure message.
func WithTranslator(tr *locale.Translator) Option {
	return func(r *Resolver) {
		if tr != nil {
			r.tr = tr
		}
	}
}

// WithLogger overrides the default no-op logger.
func WithLogger(l Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// New returns a resolver over api.
func New(api Getter, opts ...Option) *Resolver {
	r := &Resolver{
		api:    api,
		tr:     locale.Default(),
		logger: nopLogger{},
		clock:  time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Resolve issues exactly one query for code and classifies the response.
func (r *Resolver) Resolve(ctx context.Context, code inventory.ScannedCode, kind inventory.WorkflowKind) Outcome {
	started := r.clock()
	outcome := r.resolve(ctx, code, QueryFor(kind))
	metrics.RecordLookup(kind.String(), outcome.Kind.String(), r.clock().Sub(started))
	return outcome
}

func (r *Resolver) resolve(ctx context.Context, code inventory.ScannedCode, query Query) Outcome {
	var (
		resp *backend.Response
		err  error
	)
	switch query {
	case QueryBatches:
		resp, err = r.api.Get(ctx, backend.PathBatch, url.Values{"barcode": {code.Value}})
	default:
		resp, err = r.api.Get(ctx, backend.ProductPath(code.Value), nil)
	}
	if err != nil {
		r.logger.Printf("lookup: code %s: %v", code.Value, err)
		return r.transient()
	}
	switch resp.Status {
	case http.StatusOK:
		return r.decode(code, query, resp)
	case http.StatusNoContent:
		return Outcome{Kind: NotFound}
	default:
		r.logger.Printf("lookup: code %s: unexpected status %d", code.Value, resp.Status)
		return r.transient()
	}
}

func (r *Resolver) decode(code inventory.ScannedCode, query Query, resp *backend.Response) Outcome {
	if query == QueryBatches {
		var batches inventory.ProductBatches
		if err := resp.Decode(&batches); err != nil {
			r.logger.Printf("lookup: code %s: %v", code.Value, err)
			return r.transient()
		}
		if batches.Batches == nil {
			batches.Batches = []inventory.Batch{}
		}
		return Outcome{Kind: Found, Batches: &batches}
	}
	var product inventory.Product
	if err := resp.Decode(&product); err != nil {
		r.logger.Printf("lookup: code %s: %v", code.Value, err)
		return r.transient()
	}
	return Outcome{Kind: Found, Product: &product}
}

func (r *Resolver) transient() Outcome {
	return Outcome{Kind: TransientError, Message: r.tr.T(locale.LookupFailed)}
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}
