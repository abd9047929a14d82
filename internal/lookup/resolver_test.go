package lookup

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Hernesto-SRL/management-front/internal/backend"
	"github.com/Hernesto-SRL/management-front/internal/inventory"
	"github.com/Hernesto-SRL/management-front/internal/locale"
	"github.com/Hernesto-SRL/management-front/internal/stubapi"
)

type logRecorder struct{ lines []string }

func (l *logRecorder) Printf(format string, args ...any) {
	l.lines = append(l.lines, format)
}

func newStubResolver(t *testing.T) (*Resolver, *stubapi.Server) {
	t.Helper()
	stub := stubapi.New()
	srv := httptest.NewServer(stub.Handler())
	t.Cleanup(srv.Close)
	return New(backend.New(srv.URL, time.Second)), stub
}

func mustCode(t *testing.T, value string) inventory.ScannedCode {
	t.Helper()
	code, err := inventory.NewScannedCode(value, inventory.TagBarcode)
	if err != nil {
		t.Fatalf("code: %v", err)
	}
	return code
}

func TestResolveProductFoundAndNotFound(t *testing.T) {
	resolver, stub := newStubResolver(t)
	stub.AddProduct(inventory.Product{Name: "Fideos", Barcode: "7790070318114"})

	out := resolver.Resolve(context.Background(), mustCode(t, "7790070318114"), inventory.KindRegisterBatch)
	if out.Kind != Found || out.Product == nil || out.Product.Name != "Fideos" {
		t.Fatalf("unexpected outcome %+v", out)
	}
	out = resolver.Resolve(context.Background(), mustCode(t, "0000"), inventory.KindRegisterProduct)
	if out.Kind != NotFound {
		t.Fatalf("expected NotFound, got %s", out.Kind)
	}
	if got := stub.Calls("GET /api/Product/:barcode"); got != 2 {
		t.Fatalf("expected exactly one call per resolve, got %d", got)
	}
}

func TestResolveBatchesUsesBatchQuery(t *testing.T) {
	resolver, stub := newStubResolver(t)
	p := stub.AddProduct(inventory.Product{Name: "Arroz", Barcode: "55"})
	w := stub.AddWarehouse("Central", "Calle 1")
	stub.AddBatch(p.ID, w.ID, 9)

	out := resolver.Resolve(context.Background(), mustCode(t, "55"), inventory.KindStockExit)
	if out.Kind != Found || out.Batches == nil || len(out.Batches.Batches) != 1 {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if stub.Calls("GET /api/Batch") != 1 || stub.Calls("GET /api/Product/:barcode") != 0 {
		t.Fatalf("stock kinds must use the batch lookup only")
	}

	stub.AddProduct(inventory.Product{Name: "Nuevo", Barcode: "66"})
	out = resolver.Resolve(context.Background(), mustCode(t, "66"), inventory.KindStockEntry)
	if out.Kind != Found || out.Batches.Batches == nil || len(out.Batches.Batches) != 0 {
		t.Fatalf("product without batches must be Found with an empty list, got %+v", out)
	}
}

func TestResolveClassifiesFailuresAsTransient(t *testing.T) {
	resolver, stub := newStubResolver(t)
	stub.Fail("GET /api/Batch", http.StatusInternalServerError)
	out := resolver.Resolve(context.Background(), mustCode(t, "55"), inventory.KindStockEntry)
	if out.Kind != TransientError || out.Message != locale.Default().T(locale.LookupFailed) {
		t.Fatalf("unexpected outcome %+v", out)
	}

	// transport failure must not leak raw error text
	dead := httptest.NewServer(http.NotFoundHandler())
	base := dead.URL
	dead.Close()
	logs := &logRecorder{}
	offline := New(backend.New(base, 200*time.Millisecond), WithLogger(logs), WithTranslator(locale.New("en")))
	out = offline.Resolve(context.Background(), mustCode(t, "55"), inventory.KindRegisterProduct)
	if out.Kind != TransientError {
		t.Fatalf("expected TransientError, got %s", out.Kind)
	}
	if strings.Contains(out.Message, "connect") || out.Message != "There was an error loading the product" {
		t.Fatalf("message leaked transport details: %q", out.Message)
	}
	if len(logs.lines) == 0 {
		t.Fatalf("transport failure should be logged")
	}
}

func TestResolveUndecodableBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<html>"))
	}))
	t.Cleanup(srv.Close)
	out := New(backend.New(srv.URL, time.Second)).Resolve(context.Background(), mustCode(t, "1"), inventory.KindRegisterProduct)
	if out.Kind != TransientError {
		t.Fatalf("expected TransientError for bad body, got %s", out.Kind)
	}
}
