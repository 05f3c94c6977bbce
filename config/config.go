// Package config builds engine.Config values from flat key/value sources:
// in-memory maps, prefixed environment variables and YAML files.
//
// Recognised keys: driver, username, password, db (or database), host, port,
// connect_timeout, log_sql, log_args, slow_query, max_log_sql_len,
// max_log_args_items, max_log_args_len.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nikola-chen/dbutils/engine"
)

// Source is a flat key/value view over configuration.
type Source interface {
	Lookup(key string) (string, bool)
}

// MapSource serves values from a map, formatting non-string values.
type MapSource map[string]any

func (m MapSource) Lookup(key string) (string, bool) {
	v, ok := m[key]
	if !ok || v == nil {
		return "", false
	}
	if s, ok := v.(string); ok {
		return s, true
	}
	return fmt.Sprint(v), true
}

// EnvSource reads PREFIX + upper-cased key from the environment.
type EnvSource struct {
	Prefix string
}

func (e EnvSource) Lookup(key string) (string, bool) {
	return os.LookupEnv(e.Prefix + strings.ToUpper(key))
}

// Sources consults each source in order; the first hit wins.
type Sources []Source

func (s Sources) Lookup(key string) (string, bool) {
	for _, src := range s {
		if src == nil {
			continue
		}
		if v, ok := src.Lookup(key); ok {
			return v, true
		}
	}
	return "", false
}

// LoadFile reads a YAML mapping of the recognised keys.
func LoadFile(path string) (MapSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	m := MapSource{}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return m, nil
}

// Loader provides typed access to settings with default values
type Loader struct {
	src Source
}

// NewLoader creates a new settings loader
func NewLoader(src Source) *Loader {
	return &Loader{src: src}
}

func (l *Loader) lookup(key string) string {
	if l.src == nil {
		return ""
	}
	v, _ := l.src.Lookup(key)
	return strings.TrimSpace(v)
}

// Int retrieves an integer setting, returning defaultVal if not found or invalid
func (l *Loader) Int(key string, defaultVal int) int {
	if val := l.lookup(key); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			return v
		}
	}
	return defaultVal
}

// Bool retrieves a boolean setting, returning defaultVal if not found or invalid
func (l *Loader) Bool(key string, defaultVal bool) bool {
	if val := l.lookup(key); val != "" {
		if v, err := strconv.ParseBool(val); err == nil {
			return v
		}
	}
	return defaultVal
}

// String retrieves a string setting, returning defaultVal if not found or empty
func (l *Loader) String(key, defaultVal string) string {
	if val := l.lookup(key); val != "" {
		return val
	}
	return defaultVal
}

// Duration retrieves a duration setting, returning defaultVal if not found or invalid.
// Expects Go duration format (e.g. "1h30m", "5s").
func (l *Loader) Duration(key string, defaultVal time.Duration) time.Duration {
	if val := l.lookup(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

// Load assembles an engine.Config. db is always required; username is
// required unless the driver is sqlite.
func (l *Loader) Load() (engine.Config, error) {
	cfg := engine.Config{
		Driver:         strings.ToLower(l.String("driver", engine.DefaultDriver)),
		Username:       l.String("username", ""),
		Password:       l.String("password", ""),
		Database:       l.String("db", l.String("database", "")),
		Host:           l.String("host", engine.DefaultHost),
		ConnectTimeout: l.Duration("connect_timeout", 0),
		LogSQL:         l.Bool("log_sql", false),
		LogArgs:        l.Bool("log_args", false),
		SlowQuery:      l.Duration("slow_query", 0),

		MaxLogSQLLen:    l.Int("max_log_sql_len", 0),
		MaxLogArgsItems: l.Int("max_log_args_items", 0),
		MaxLogArgsLen:   l.Int("max_log_args_len", 0),
	}

	if raw := l.lookup("port"); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil || port <= 0 || port > 65535 {
			return engine.Config{}, fmt.Errorf("invalid port %q", raw)
		}
		cfg.Port = port
	}

	if cfg.Database == "" {
		return engine.Config{}, errors.New("db is required")
	}
	if cfg.Username == "" && cfg.Driver != "sqlite" {
		return engine.Config{}, errors.New("username is required")
	}
	return cfg, nil
}
