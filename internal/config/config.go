package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/persistence/middleware"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// FileName is the configuration file looked up next to the menu source.
const FileName = "arbor.yaml"

// EnvFile names an explicit configuration file.
const EnvFile = "ARBOR_CONFIG"

// Config holds the settings shared by the CLI commands.
type Config struct {
	Root       string        `yaml:"root"`
	LogLevel   string        `yaml:"log_level"`
	LogFormat  string        `yaml:"log_format"` // text or json
	CacheTTL   time.Duration `yaml:"cache_ttl"`
	HTTP       HTTP          `yaml:"http"`
	MCP        MCP           `yaml:"mcp"`
	Redis      Redis         `yaml:"redis"`
	Encryption Encryption    `yaml:"encryption"`
}

// HTTP configures the REST server.
type HTTP struct {
	Port        int      `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// MCP configures the Model Context Protocol server.
type MCP struct {
	Transport string `yaml:"transport"` // stdio or sse
	Port      int    `yaml:"port"`
}

// Redis configures the traversal store. An empty Addr keeps traversals in memory.
type Redis struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
	Prefix   string        `yaml:"prefix"`
}

// Encryption seals persisted traversals. Keys are base64 AES-256 keys;
// an empty Key stores cursors in the clear.
type Encryption struct {
	Key          string   `yaml:"key"`
	FallbackKeys []string `yaml:"fallback_keys"`
}

// Keys decodes the configured keys. It returns nil when encryption is off.
func (e Encryption) Keys() (*middleware.EncryptionConfig, error) {
	if e.Key == "" {
		return nil, nil
	}
	active, err := middleware.DecodeKey(e.Key)
	if err != nil {
		return nil, fmt.Errorf("encryption.key: %w", err)
	}
	cfg := &middleware.EncryptionConfig{ActiveKey: active}
	for i, k := range e.FallbackKeys {
		key, err := middleware.DecodeKey(k)
		if err != nil {
			return nil, fmt.Errorf("encryption.fallback_keys[%d]: %w", i, err)
		}
		cfg.FallbackKeys = append(cfg.FallbackKeys, key)
	}
	return cfg, nil
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Root:      "menu",
		LogLevel:  "info",
		LogFormat: "text",
		CacheTTL:  30 * time.Second,
		HTTP:      HTTP{Port: 8080, CORSOrigins: []string{"*"}},
		MCP:       MCP{Transport: "stdio", Port: 8081},
		Redis:     Redis{Prefix: "arbor:traversal:"},
	}
}

// Load resolves the configuration for the menu source at dir.
// The file is, in order: explicit, $ARBOR_CONFIG, or arbor.yaml next to the
// source. Only the last one may be absent. Environment overrides are applied.
func Load(dir, explicit string) (*Config, error) {
	cfg := Default()

	path, required := explicit, true
	if path == "" {
		path = os.Getenv(EnvFile)
	}
	if path == "" {
		path, required = defaultPath(dir), false
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := cfg.Decode(bytes.NewReader(data)); err != nil {
				return nil, fmt.Errorf("invalid config %s: %w", path, err)
			}
		case errors.Is(err, fs.ErrNotExist) && !required:
		default:
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func defaultPath(dir string) string {
	if dir == "" {
		return ""
	}
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	return filepath.Join(dir, FileName)
}

// Decode merges YAML from r into c. Unknown keys are rejected.
func (c *Config) Decode(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ApplyEnv overrides fields from ARBOR_* variables.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}
	integer := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok {
			return nil
		}
		n, err := cast.ToIntE(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = n
		return nil
	}
	duration := func(key string, dst *time.Duration) error {
		v, ok := lookup(key)
		if !ok {
			return nil
		}
		d, err := cast.ToDurationE(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = d
		return nil
	}

	str("ARBOR_ROOT", &c.Root)
	str("ARBOR_LOG_LEVEL", &c.LogLevel)
	str("ARBOR_LOG_FORMAT", &c.LogFormat)
	str("ARBOR_MCP_TRANSPORT", &c.MCP.Transport)
	str("ARBOR_REDIS_ADDR", &c.Redis.Addr)
	str("ARBOR_REDIS_PASSWORD", &c.Redis.Password)
	str("ARBOR_REDIS_PREFIX", &c.Redis.Prefix)
	str("ARBOR_ENCRYPTION_KEY", &c.Encryption.Key)
	return errors.Join(
		duration("ARBOR_CACHE_TTL", &c.CacheTTL),
		integer("ARBOR_HTTP_PORT", &c.HTTP.Port),
		integer("ARBOR_MCP_PORT", &c.MCP.Port),
		integer("ARBOR_REDIS_DB", &c.Redis.DB),
		duration("ARBOR_REDIS_TTL", &c.Redis.TTL),
	)
}

// Validate checks the settings that cannot be caught by decoding.
func (c *Config) Validate() error {
	var errs []error
	if c.Root == "" {
		errs = append(errs, errors.New("root must not be empty"))
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("unknown log format %q", c.LogFormat))
	}
	if c.CacheTTL < 0 || c.Redis.TTL < 0 {
		errs = append(errs, errors.New("durations must not be negative"))
	}
	if c.HTTP.Port < 0 || c.HTTP.Port > 65535 {
		errs = append(errs, fmt.Errorf("http.port out of range: %d", c.HTTP.Port))
	}
	if c.MCP.Port < 0 || c.MCP.Port > 65535 {
		errs = append(errs, fmt.Errorf("mcp.port out of range: %d", c.MCP.Port))
	}
	if c.MCP.Transport != "stdio" && c.MCP.Transport != "sse" {
		errs = append(errs, fmt.Errorf("unknown mcp transport %q", c.MCP.Transport))
	}
	if _, err := c.Encryption.Keys(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
