// internal/config/config.go
//
// This package handles configuration and the .intake directory structure.
// Every terminal that runs the intake front end gets a .intake/ folder in its
// working directory holding logs, hand-off state and journal exports.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// StateDirName is the name of the directory we create in each project
	StateDirName = ".intake"

	DefaultBackendURL     = "http://127.0.0.1:5000"
	DefaultBackendTimeout = 10 * time.Second
	DefaultLocale         = "es"
	DefaultRedisKey       = "intake:handoff:code"
	DefaultDebounce       = "1-S"
)

const defaultProjectConfigYAML = `# intake terminal configuration
version: 1

# Language for user-facing messages: es or en.
locale: es

backend:
  base_url: http://127.0.0.1:5000
  timeout: 10s
  # token: bearer token sent with every request

# Where the last scanned code is kept between workflows: memory, file or redis.
handoff:
  store: file
  # redis:
  #   addr: 127.0.0.1:6379
  #   db: 0

scanner:
  # stdin takes keyboard-wedge scans typed into the terminal, device reads one
  # code per line from a serial scanner at device, none leaves manual entry only.
  source: stdin
  # device: /dev/ttyACM0
  # Repeats of the same code inside this window are dropped (limiter rate format).
  debounce: 1-S

auth:
  # userinfo asks the backend, token reads a signed JWT, none allows everything.
  mode: userinfo
  required_role: admin

status_server:
  enabled: false
  host: 127.0.0.1
  port: 9464
`

// BackendConfig points the terminal at the inventory API.
type BackendConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
	Token   string        `yaml:"token,omitempty"`
}

// RedisConfig configures the redis hand-off store.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db"`
	Key      string `yaml:"key,omitempty"`
}

// HandoffConfig selects the Shared Intake Context backend.
type HandoffConfig struct {
	Store string      `yaml:"store"`
	Redis RedisConfig `yaml:"redis,omitempty"`
}

// ScannerConfig controls the capture source.
type ScannerConfig struct {
	Source   string `yaml:"source"`
	Device   string `yaml:"device,omitempty"`
	Debounce string `yaml:"debounce"`
}

// AuthConfig selects how the role check is answered.
type AuthConfig struct {
	Mode         string `yaml:"mode"`
	Token        string `yaml:"token,omitempty"`
	Secret       string `yaml:"secret,omitempty"`
	RequiredRole string `yaml:"required_role"`
}

// StatusServerConfig mirrors the optional health/metrics listener.
type StatusServerConfig struct {
	Enabled *bool  `yaml:"enabled,omitempty"`
	Host    string `yaml:"host,omitempty"`
	Port    int    `yaml:"port,omitempty"`
}

// ProjectConfig models .intake/config.yaml.
type ProjectConfig struct {
	Version      int                `yaml:"version"`
	Locale       string             `yaml:"locale"`
	Backend      BackendConfig      `yaml:"backend"`
	Handoff      HandoffConfig      `yaml:"handoff"`
	Scanner      ScannerConfig      `yaml:"scanner"`
	Auth         AuthConfig         `yaml:"auth"`
	StatusServer StatusServerConfig `yaml:"status_server"`
}

// Config holds the runtime configuration for the intake terminal.
type Config struct {
	// ProjectDir is the directory the terminal was started from
	ProjectDir string

	// StateRoot is ProjectDir/.intake
	StateRoot string

	Project ProjectConfig
}

// InitStateDir creates the .intake directory structure in the given project directory.
//
// Structure created:
// .intake/
// ├── config.yaml
// ├── logs/     <- intake.log (structured) and journey.log (notifications)
// ├── state/    <- hand-off code when the file store is selected
// └── exports/  <- journal spreadsheets
func InitStateDir(projectDir string) error {
	root := filepath.Join(projectDir, StateDirName)
	dirs := []string{
		filepath.Join(root, "logs"),
		filepath.Join(root, "state"),
		filepath.Join(root, "exports"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("config: ensure %s: %w", dir, err)
		}
	}
	return ensureProjectConfig(filepath.Join(root, "config.yaml"))
}

// NewConfig loads .env, config.yaml and INTAKE_* overrides for projectDir.
func NewConfig(projectDir string) (*Config, error) {
	cfg := &Config{
		ProjectDir: projectDir,
		StateRoot:  filepath.Join(projectDir, StateDirName),
		Project:    defaultProjectConfig(),
	}
	if err := loadDotEnv(projectDir); err != nil {
		return nil, err
	}
	if err := cfg.loadProjectConfig(); err != nil {
		return nil, err
	}
	cfg.Project.applyEnvOverrides()
	if err := cfg.Finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Finalize normalizes and validates the project config. Call it again after
// applying command line overrides.
func (c *Config) Finalize() error {
	c.Project.applyDefaults()
	c.Project.normalize()
	if err := c.Project.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// LogsDir returns the path to the logs directory
func (c *Config) LogsDir() string {
	return filepath.Join(c.StateRoot, "logs")
}

// StateDir returns the path to the state directory
func (c *Config) StateDir() string {
	return filepath.Join(c.StateRoot, "state")
}

// ExportsDir returns where journal spreadsheets are written
func (c *Config) ExportsDir() string {
	return filepath.Join(c.StateRoot, "exports")
}

// HandoffPath returns the file used by the file hand-off store.
func (c *Config) HandoffPath() string {
	return filepath.Join(c.StateDir(), "handoff.json")
}

// ProjectConfigPath returns the on-disk location for the project config file.
func (c *Config) ProjectConfigPath() string {
	return filepath.Join(c.StateRoot, "config.yaml")
}

func (c *Config) loadProjectConfig() error {
	path := c.ProjectConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	parsed := defaultProjectConfig()
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	c.Project = parsed
	return nil
}

func loadDotEnv(projectDir string) error {
	path := filepath.Join(projectDir, ".env")
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: stat %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("config: load %s: %w", path, err)
	}
	return nil
}

func defaultProjectConfig() ProjectConfig {
	return ProjectConfig{
		Version: 1,
		Locale:  DefaultLocale,
		Backend: BackendConfig{
			BaseURL: DefaultBackendURL,
			Timeout: DefaultBackendTimeout,
		},
		Handoff: HandoffConfig{Store: "memory"},
		Scanner: ScannerConfig{Source: "stdin", Debounce: DefaultDebounce},
		Auth:    AuthConfig{Mode: "userinfo", RequiredRole: "admin"},
	}
}

func (pc *ProjectConfig) applyDefaults() {
	if pc.Version == 0 {
		pc.Version = 1
	}
	if pc.Backend.Timeout <= 0 {
		pc.Backend.Timeout = DefaultBackendTimeout
	}
	if strings.TrimSpace(pc.Backend.BaseURL) == "" {
		pc.Backend.BaseURL = DefaultBackendURL
	}
	if strings.TrimSpace(pc.Scanner.Debounce) == "" {
		pc.Scanner.Debounce = DefaultDebounce
	}
	if pc.Handoff.Redis.Key == "" {
		pc.Handoff.Redis.Key = DefaultRedisKey
	}
}

func (pc *ProjectConfig) normalize() {
	pc.Locale = lower(pc.Locale)
	if pc.Locale == "" {
		pc.Locale = DefaultLocale
	}
	pc.Backend.BaseURL = strings.TrimRight(strings.TrimSpace(pc.Backend.BaseURL), "/")
	pc.Backend.Token = strings.TrimSpace(pc.Backend.Token)
	pc.Handoff.Store = lower(pc.Handoff.Store)
	if pc.Handoff.Store == "" {
		pc.Handoff.Store = "memory"
	}
	pc.Handoff.Redis.Addr = strings.TrimSpace(pc.Handoff.Redis.Addr)
	pc.Scanner.Source = lower(pc.Scanner.Source)
	if pc.Scanner.Source == "" {
		pc.Scanner.Source = "stdin"
	}
	pc.Scanner.Device = strings.TrimSpace(pc.Scanner.Device)
	pc.Scanner.Debounce = strings.ToUpper(strings.TrimSpace(pc.Scanner.Debounce))
	pc.Auth.Mode = lower(pc.Auth.Mode)
	if pc.Auth.Mode == "" {
		pc.Auth.Mode = "userinfo"
	}
	pc.Auth.RequiredRole = lower(pc.Auth.RequiredRole)
	if pc.Auth.RequiredRole == "" {
		pc.Auth.RequiredRole = "admin"
	}
}

func (pc *ProjectConfig) validate() error {
	if pc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	switch pc.Locale {
	case "es", "en":
	default:
		return fmt.Errorf("locale must be 'es' or 'en'")
	}
	parsed, err := url.Parse(pc.Backend.BaseURL)
	if err != nil {
		return fmt.Errorf("backend.base_url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("backend.base_url must use http or https")
	}
	if parsed.Host == "" {
		return fmt.Errorf("backend.base_url must include a host")
	}
	switch pc.Handoff.Store {
	case "memory", "file":
	case "redis":
		if pc.Handoff.Redis.Addr == "" {
			return fmt.Errorf("handoff.redis.addr is required for the redis store")
		}
	default:
		return fmt.Errorf("handoff.store must be 'memory', 'file' or 'redis'")
	}
	switch pc.Scanner.Source {
	case "stdin", "none":
	case "device":
		if pc.Scanner.Device == "" {
			return fmt.Errorf("scanner.device is required for the device source")
		}
	default:
		return fmt.Errorf("scanner.source must be 'stdin', 'device' or 'none'")
	}
	switch pc.Auth.Mode {
	case "userinfo", "none":
	case "token":
		if strings.TrimSpace(pc.Auth.Token) == "" || strings.TrimSpace(pc.Auth.Secret) == "" {
			return fmt.Errorf("auth.token and auth.secret are required for token mode")
		}
	default:
		return fmt.Errorf("auth.mode must be 'userinfo', 'token' or 'none'")
	}
	switch pc.Auth.RequiredRole {
	case "user", "admin":
	default:
		return fmt.Errorf("auth.required_role must be 'user' or 'admin'")
	}
	return nil
}

func lower(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func ensureProjectConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultProjectConfigYAML), 0o644)
}
