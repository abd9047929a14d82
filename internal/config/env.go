package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// applyEnvOverrides layers INTAKE_* variables over the parsed file. Values
// that fail to parse are ignored so a typo never hides the file setting.
func (pc *ProjectConfig) applyEnvOverrides() {
	if pc == nil {
		return
	}
	if value := env("INTAKE_LOCALE"); value != "" {
		pc.Locale = value
	}
	if value := env("INTAKE_BACKEND_URL"); value != "" {
		pc.Backend.BaseURL = value
	}
	if value := env("INTAKE_BACKEND_TOKEN"); value != "" {
		pc.Backend.Token = value
	}
	if value := env("INTAKE_BACKEND_TIMEOUT"); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			pc.Backend.Timeout = parsed
		}
	}
	if value := env("INTAKE_HANDOFF_STORE"); value != "" {
		pc.Handoff.Store = value
	}
	if value := env("INTAKE_REDIS_ADDR"); value != "" {
		pc.Handoff.Redis.Addr = value
	}
	if value := env("INTAKE_REDIS_PASSWORD"); value != "" {
		pc.Handoff.Redis.Password = value
	}
	if value := env("INTAKE_REDIS_DB"); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			pc.Handoff.Redis.DB = parsed
		}
	}
	if value := env("INTAKE_SCANNER_SOURCE"); value != "" {
		pc.Scanner.Source = value
	}
	if value := env("INTAKE_SCANNER_DEVICE"); value != "" {
		pc.Scanner.Device = value
	}
	if value := env("INTAKE_SCANNER_DEBOUNCE"); value != "" {
		pc.Scanner.Debounce = value
	}
	if value := env("INTAKE_AUTH_MODE"); value != "" {
		pc.Auth.Mode = value
	}
	if value := env("INTAKE_AUTH_TOKEN"); value != "" {
		pc.Auth.Token = value
	}
	if value := env("INTAKE_AUTH_SECRET"); value != "" {
		pc.Auth.Secret = value
	}
	if value := env("INTAKE_STATUS_ENABLED"); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			pc.StatusServer.Enabled = &parsed
		}
	}
	if value := env("INTAKE_STATUS_HOST"); value != "" {
		pc.StatusServer.Host = value
	}
	if value := env("INTAKE_STATUS_PORT"); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			pc.StatusServer.Port = parsed
		}
	}
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
