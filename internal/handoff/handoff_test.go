package handoff

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Hernesto-SRL/management-front/internal/config"
	"github.com/Hernesto-SRL/management-front/internal/inventory"
)

func code(t *testing.T, value string) inventory.ScannedCode {
	t.Helper()
	c, err := inventory.NewScannedCode(value, inventory.TagBarcode)
	if err != nil {
		t.Fatalf("code: %v", err)
	}
	return c
}

func TestRebindRevokesPreviousWriter(t *testing.T) {
	hc := New(nil)
	ctx := context.Background()

	entry := hc.Bind("stock-entry")
	if err := entry.Write(ctx, code(t, "7790070318114")); err != nil {
		t.Fatalf("write: %v", err)
	}
	product := hc.Bind("register-product")
	if entry.Holds() {
		t.Fatalf("old handle must lose the lease")
	}
	if err := entry.Write(ctx, code(t, "999")); !errors.Is(err, ErrNotHolder) {
		t.Fatalf("expected ErrNotHolder, got %v", err)
	}
	got, ok, err := product.Read(ctx)
	if err != nil || !ok || got.Value != "7790070318114" {
		t.Fatalf("successor read %+v ok=%v err=%v", got, ok, err)
	}

	entry.Release()
	if hc.Holder() != "register-product" {
		t.Fatalf("stale release must not drop the current lease, holder=%q", hc.Holder())
	}
	product.Release()
	if err := product.Clear(ctx); !errors.Is(err, ErrNotHolder) {
		t.Fatalf("released handle cleared the code: %v", err)
	}
}

func TestEmptyContext(t *testing.T) {
	hc := New(NewMemoryStore())
	_, ok, err := hc.Peek(context.Background())
	if err != nil || ok {
		t.Fatalf("fresh context should be empty, ok=%v err=%v", ok, err)
	}
	h := hc.Bind("register-product")
	_ = h.Write(context.Background(), code(t, "1"))
	if err := h.Clear(context.Background()); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok, _ := hc.Peek(context.Background()); ok {
		t.Fatalf("clear left a code behind")
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "handoff.json")
	store := NewFileStore(path)
	ctx := context.Background()

	if _, err := store.Load(ctx); !errors.Is(err, ErrNoCode) {
		t.Fatalf("missing file should be ErrNoCode, got %v", err)
	}
	qr, _ := inventory.NewScannedCode("lote-44", inventory.TagQR)
	if err := store.Save(ctx, qr); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := NewFileStore(path).Load(ctx)
	if err != nil || got != qr {
		t.Fatalf("reload %+v err=%v", got, err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("clear should remove the file")
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clearing twice: %v", err)
	}
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "handoff.json")
	if err := os.WriteFile(path, []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := New(NewFileStore(path)).Peek(context.Background()); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestOpenSelectsStore(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{ProjectDir: dir, StateRoot: filepath.Join(dir, config.StateDirName)}
	cfg.Project.Handoff.Store = "file"
	store, err := Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	fs, ok := store.(*FileStore)
	if !ok || fs.Path() != cfg.HandoffPath() {
		t.Fatalf("unexpected store %T", store)
	}
	cfg.Project.Handoff.Store = "memory"
	if store, _ := Open(context.Background(), cfg); store == nil {
		t.Fatalf("memory store missing")
	}
	cfg.Project.Handoff.Store = "carrier-pigeon"
	if _, err := Open(context.Background(), cfg); err == nil {
		t.Fatalf("expected error for unknown store")
	}
}

func TestRedisStoreDefaultsKey(t *testing.T) {
	client := NewRedisClient(config.RedisConfig{Addr: "127.0.0.1:1"})
	t.Cleanup(func() { _ = client.Close() })
	store := NewRedisStore(client, "")
	if store.key != config.DefaultRedisKey {
		t.Fatalf("unexpected key %q", store.key)
	}
	if client.Options().MaxRetries != 3 {
		t.Fatalf("unexpected client options %+v", client.Options())
	}
}
