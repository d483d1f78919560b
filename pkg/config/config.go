// Package config provides configuration types for the realtime backend
// Supports dependency injection for customizable behavior
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// GatewayConfig holds all configurable gateway parameters
type GatewayConfig struct {
	Host         string        `yaml:"host"`         // Host to bind (default: "0.0.0.0")
	Port         int           `yaml:"port"`         // Port to listen (default: 8000)
	StaticDir    string        `yaml:"staticDir"`    // Static frontend directory (optional)
	MaxWSConns   int32         `yaml:"maxWSConns"`   // Max concurrent WebSocket connections
	ReadLimit    int64         `yaml:"readLimit"`    // Max inbound WS message size
	WriteTimeout time.Duration `yaml:"writeTimeout"` // Per-write timeout for WS frames
	PingInterval time.Duration `yaml:"pingInterval"` // Keepalive ping interval
}

// DefaultGatewayConfig returns the default gateway configuration
func DefaultGatewayConfig() *GatewayConfig {
	return &GatewayConfig{
		Host:         "0.0.0.0",
		Port:         8000,
		MaxWSConns:   256,
		ReadLimit:    1 * 1024 * 1024, // 1MB
		WriteTimeout: 5 * time.Second,
		PingInterval: 30 * time.Second,
	}
}

// StorageConfig holds storage configuration
type StorageConfig struct {
	DBPath          string        `yaml:"dbPath"`          // Database path
	MaxOpenConns    int           `yaml:"maxOpenConns"`    // Max open connections (default: 4)
	MaxIdleConns    int           `yaml:"maxIdleConns"`    // Max idle connections (default: 4)
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"` // Connection max lifetime (default: 5m)
	WalMode         bool          `yaml:"walMode"`         // Enable WAL mode (default: true)
	SyncMode        string        `yaml:"syncMode"`        // Sync mode (default: "NORMAL")
}

// DefaultStorageConfig returns the default storage configuration
func DefaultStorageConfig() *StorageConfig {
	return &StorageConfig{
		DBPath:          "sessions.db",
		MaxOpenConns:    4,
		MaxIdleConns:    4,
		ConnMaxLifetime: 5 * time.Minute,
		WalMode:         true,
		SyncMode:        "NORMAL",
	}
}

// DispatcherConfig holds the async persistence dispatcher configuration
type DispatcherConfig struct {
	QueueSize int `yaml:"queueSize"` // Bounded job queue size (default: 256)
	Workers   int `yaml:"workers"`   // Worker goroutines (default: 1, preserves rough write order)
}

// DefaultDispatcherConfig returns the default dispatcher configuration
func DefaultDispatcherConfig() *DispatcherConfig {
	return &DispatcherConfig{
		QueueSize: 256,
		Workers:   1,
	}
}

// ResponderConfig holds streaming responder configuration
type ResponderConfig struct {
	Backend    string        `yaml:"backend"`    // "mock" or "openai" (default: "mock")
	TokenDelay time.Duration `yaml:"tokenDelay"` // Pacing delay between tokens (default: 30ms)
	Model      string        `yaml:"model"`      // Model name for the openai backend
	APIKey     string        `yaml:"apiKey"`     // API key for the openai backend
	BaseURL    string        `yaml:"baseUrl"`    // Base URL override for the openai backend
}

// DefaultResponderConfig returns the default responder configuration
func DefaultResponderConfig() *ResponderConfig {
	return &ResponderConfig{
		Backend:    "mock",
		TokenDelay: 30 * time.Millisecond,
		Model:      "gpt-4o-mini",
	}
}

// KVConfig holds the live-session KV store configuration
type KVConfig struct {
	Dir        string `yaml:"dir"`        // Data directory (default: "kv")
	MemoryMode bool   `yaml:"memoryMode"` // In-memory only (no persistence)
}

// DefaultKVConfig returns the default KV configuration
func DefaultKVConfig() *KVConfig {
	return &KVConfig{
		Dir: "kv",
	}
}

// ServerConfig combines all service configurations
type ServerConfig struct {
	Gateway    *GatewayConfig    `yaml:"gateway"`
	Storage    *StorageConfig    `yaml:"storage"`
	Dispatcher *DispatcherConfig `yaml:"dispatcher"`
	Responder  *ResponderConfig  `yaml:"responder"`
	KV         *KVConfig         `yaml:"kv"`
}

// DefaultServerConfig returns a complete default configuration
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Gateway:    DefaultGatewayConfig(),
		Storage:    DefaultStorageConfig(),
		Dispatcher: DefaultDispatcherConfig(),
		Responder:  DefaultResponderConfig(),
		KV:         DefaultKVConfig(),
	}
}

// LoadFile overlays a YAML config file onto the configuration.
// A missing file is not an error; defaults stay in effect.
func (c *ServerConfig) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// LoadFromEnv overrides configuration with environment variables
func (c *ServerConfig) LoadFromEnv(prefix string) {
	if v := getEnv(prefix + "HOST"); v != "" {
		c.Gateway.Host = v
	}
	if v := getEnv(prefix + "PORT"); v != "" {
		c.Gateway.Port = parseInt(v, c.Gateway.Port)
	}
	if v := getEnv(prefix + "STATIC_DIR"); v != "" {
		c.Gateway.StaticDir = v
	}
	if v := getEnv(prefix + "DB_PATH"); v != "" {
		c.Storage.DBPath = v
	}
	if v := getEnv(prefix + "KV_DIR"); v != "" {
		c.KV.Dir = v
	}
	if v := getEnv(prefix + "RESPONDER_BACKEND"); v != "" {
		c.Responder.Backend = v
	}
	if v := getEnv(prefix + "MODEL"); v != "" {
		c.Responder.Model = v
	}
	if v := getEnv(prefix + "API_KEY"); v != "" {
		c.Responder.APIKey = v
	}
	if v := getEnv(prefix + "BASE_URL"); v != "" {
		c.Responder.BaseURL = v
	}
}

// Helper functions
func getEnv(key string) string {
	return os.Getenv(key)
}

func parseInt(s string, defaultVal int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return n
}
