package refdata

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/Hernesto-SRL/management-front/internal/backend"
	"github.com/Hernesto-SRL/management-front/internal/inventory"
	"github.com/Hernesto-SRL/management-front/internal/stubapi"
)

func TestCollectionCachesAndInvalidates(t *testing.T) {
	stub := stubapi.New()
	stub.AddWarehouse("Central", "Calle 1")
	srv := httptest.NewServer(stub.Handler())
	t.Cleanup(srv.Close)
	loader := NewLoader(backend.New(srv.URL, time.Second))

	first, err := loader.Warehouses.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := loader.Warehouses.Load(context.Background()); err != nil {
		t.Fatalf("second load: %v", err)
	}
	if got := stub.Calls("GET /api/Warehouse"); got != 1 {
		t.Fatalf("expected one fetch for the process, got %d", got)
	}

	stub.AddWarehouse("Norte", "Ruta 8")
	if err := loader.Invalidate(context.Background(), Warehouses); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	snap := loader.Warehouses.Snapshot()
	want := append(first, inventory.Warehouse{ID: snap.Data[1].ID, Name: "Norte", Address: "Ruta 8"})
	if diff := cmp.Diff(want, snap.Data); diff != "" {
		t.Fatalf("snapshot after invalidate (-want +got):\n%s", diff)
	}
	if got := stub.Calls("GET /api/Warehouse"); got != 2 {
		t.Fatalf("invalidate should refetch once, got %d calls", got)
	}
	if err := loader.Invalidate(context.Background(), "suppliers"); err == nil {
		t.Fatalf("expected error for unknown collection")
	}
}

func TestFailuresAreNotCached(t *testing.T) {
	stub := stubapi.New()
	srv := httptest.NewServer(stub.Handler())
	t.Cleanup(srv.Close)
	loader := NewLoader(backend.New(srv.URL, time.Second))

	stub.Fail("GET /api/Product/Categories", http.StatusServiceUnavailable)
	if err := loader.Categories.Ensure(context.Background()); err == nil {
		t.Fatalf("expected fetch error")
	}
	if !loader.Categories.Status().Failed() {
		t.Fatalf("status should report failure: %+v", loader.Categories.Status())
	}
	stub.Fail("GET /api/Product/Categories", 0)
	stub.AddCategory("Limpieza")
	if err := loader.Categories.Ensure(context.Background()); err != nil {
		t.Fatalf("retry after failure: %v", err)
	}
	st := loader.Categories.Status()
	if !st.Loaded || st.Err != nil || st.Failed() {
		t.Fatalf("unexpected status %+v", st)
	}
	if loader.For(inventory.KindRegisterProduct).Name() != Categories || loader.For(inventory.KindStockExit).Name() != Warehouses {
		t.Fatalf("For maps kinds to the wrong collections")
	}
}

func TestConcurrentLoadsShareOneFetch(t *testing.T) {
	var calls int32
	release := make(chan struct{})
	coll := NewCollection("warehouses", func(ctx context.Context) ([]inventory.Warehouse, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return []inventory.Warehouse{{ID: 1, Name: "A"}}, nil
	})
	var wg sync.WaitGroup
	errs := make(chan error, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := coll.Load(context.Background()); err != nil {
				errs <- err
			}
		}()
	}
	for !coll.Status().Loading {
		time.Sleep(time.Millisecond)
	}
	close(release)
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("load: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got < 1 || got > 5 {
		t.Fatalf("unexpected fetch count %d", got)
	}
	if _, err := coll.Load(context.Background()); err != nil {
		t.Fatalf("cached load: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got > 5 {
		t.Fatalf("cached load must not fetch again")
	}
}

func TestSnapshotCarriesError(t *testing.T) {
	boom := errors.New("boom")
	coll := NewCollection("categories", func(context.Context) ([]inventory.Category, error) { return nil, boom })
	_ = coll.Ensure(context.Background())
	snap := coll.Snapshot()
	if !errors.Is(snap.Err, boom) || len(snap.Data) != 0 || snap.Loading {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}
