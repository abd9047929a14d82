package handoff

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/Hernesto-SRL/management-front/internal/config"
	"github.com/Hernesto-SRL/management-front/internal/inventory"
)

// record is the persisted form shared by the file and redis stores.
type record struct {
	Value   string    `json:"value"`
	Tag     string    `json:"tag"`
	SavedAt time.Time `json:"saved_at"`
}

func encode(code inventory.ScannedCode, now time.Time) ([]byte, error) {
	return json.Marshal(record{Value: code.Value, Tag: code.Tag.String(), SavedAt: now.UTC()})
}

func decode(data []byte) (inventory.ScannedCode, error) {
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return inventory.ScannedCode{}, err
	}
	if rec.Value == "" {
		return inventory.ScannedCode{}, ErrNoCode
	}
	return inventory.NewScannedCode(rec.Value, inventory.ParseCodeTag(rec.Tag))
}

// MemoryStore keeps the code for the lifetime of the process.
type MemoryStore struct {
	mu   sync.Mutex
	code inventory.ScannedCode
}

// NewMemoryStore returns an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load(context.Context) (inventory.ScannedCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.code.IsZero() {
		return inventory.ScannedCode{}, ErrNoCode
	}
	return m.code, nil
}

func (m *MemoryStore) Save(_ context.Context, code inventory.ScannedCode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.code = code
	return nil
}

func (m *MemoryStore) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.code = inventory.ScannedCode{}
	return nil
}

// FileStore keeps the code in a JSON file under the state directory so a
// restarted terminal resumes the pending registration.
type FileStore struct {
	path  string
	clock func() time.Time
}

// NewFileStore stores the code at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, clock: time.Now}
}

// Path returns the backing file.
func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) Load(context.Context) (inventory.ScannedCode, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return inventory.ScannedCode{}, ErrNoCode
		}
		return inventory.ScannedCode{}, err
	}
	return decode(data)
}

// Save writes the code with best-effort atomicity.
func (f *FileStore) Save(_ context.Context, code inventory.ScannedCode) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return err
	}
	encoded, err := encode(code, f.clock())
	if err != nil {
		return err
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, append(encoded, '\n'), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}

func (f *FileStore) Clear(context.Context) error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// RedisStore shares the code between terminals through one redis key.
type RedisStore struct {
	client *redis.Client
	key    string
	clock  func() time.Time
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client *redis.Client, key string) *RedisStore {
	if key == "" {
		key = config.DefaultRedisKey
	}
	return &RedisStore{client: client, key: key, clock: time.Now}
}

// NewRedisClient builds a client with the pool settings used for the
// hand-off key. It does not dial.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     4,
		MinIdleConns: 1,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
}

// Ping checks connectivity.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisStore) Load(ctx context.Context) (inventory.ScannedCode, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return inventory.ScannedCode{}, ErrNoCode
	}
	if err != nil {
		return inventory.ScannedCode{}, err
	}
	return decode(data)
}

func (r *RedisStore) Save(ctx context.Context, code inventory.ScannedCode) error {
	encoded, err := encode(code, r.clock())
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key, encoded, 0).Err()
}

func (r *RedisStore) Clear(ctx context.Context) error {
	return r.client.Del(ctx, r.key).Err()
}

// Close releases the client.
func (r *RedisStore) Close() error {
	return r.client.Close()
}

// Open builds the store selected by cfg. Redis stores are pinged so a bad
// address fails at startup.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.Project.Handoff.Store {
	case "", "memory":
		return NewMemoryStore(), nil
	case "file":
		return NewFileStore(cfg.HandoffPath()), nil
	case "redis":
		store := NewRedisStore(NewRedisClient(cfg.Project.Handoff.Redis), cfg.Project.Handoff.Redis.Key)
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("handoff: redis %s: %w", cfg.Project.Handoff.Redis.Addr, err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("handoff: unknown store %q", cfg.Project.Handoff.Store)
	}
}
