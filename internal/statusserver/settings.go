package statusserver

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/Hernesto-SRL/management-front/internal/config"
)

const (
	// DefaultHost is bound when the config or flag names only a port.
	DefaultHost = "127.0.0.1"
	// DefaultPort is used when status_server.enabled is set without a port.
	DefaultPort = 9464
	// DefaultTimeout bounds reading a request and writing its response,
	// a full metrics scrape included.
	DefaultTimeout = 10 * time.Second

	idleTimeout = time.Minute
)

// Settings configure the status listener. The zero value keeps it off.
type Settings struct {
	// Addr is the host:port to bind. Empty disables the listener.
	Addr    string
	Timeout time.Duration
}

// SettingsFromConfig reads status_server from the project config, including
// its INTAKE_STATUS_* overrides. The listener stays off unless enabled.
func SettingsFromConfig(cfg *config.Config) Settings {
	if cfg == nil {
		return Settings{}
	}
	raw := cfg.Project.StatusServer
	if raw.Enabled == nil || !*raw.Enabled {
		return Settings{}
	}
	host := strings.TrimSpace(raw.Host)
	if host == "" {
		host = DefaultHost
	}
	port := raw.Port
	if !validPort(port) {
		port = DefaultPort
	}
	return Settings{Addr: net.JoinHostPort(host, strconv.Itoa(port))}
}

// Override binds addr instead, which also turns the listener on. An address
// without a host binds DefaultHost. s is returned unchanged on error.
func (s Settings) Override(addr string) (Settings, error) {
	host, port, err := net.SplitHostPort(strings.TrimSpace(addr))
	if err != nil {
		return s, fmt.Errorf("statusserver: address %q: %w", addr, err)
	}
	if n, err := strconv.Atoi(port); err != nil || !validPort(n) {
		return s, fmt.Errorf("statusserver: address %q: port must be 1-65535", addr)
	}
	if host == "" {
		host = DefaultHost
	}
	s.Addr = net.JoinHostPort(host, port)
	return s, nil
}

// Enabled reports whether Start will bind a listener.
func (s Settings) Enabled() bool {
	return s.Addr != ""
}

func (s Settings) timeout() time.Duration {
	if s.Timeout > 0 {
		return s.Timeout
	}
	return DefaultTimeout
}

func validPort(port int) bool {
	return port > 0 && port <= 65535
}
