// config/settings.go
package config

import (
	"fmt"
	"net"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Settings is the parsed settings.yaml document: the service block owned
// by operators, as opposed to the query/mapping/integration contracts
// owned by the integration partner.
type Settings struct {
	Service  ServiceSettings  `yaml:"service"`
	Security SecuritySettings `yaml:"security"`
	Database DatabaseSettings `yaml:"database"`
}

type ServiceSettings struct {
	ListenAddr     string   `yaml:"listenAddr"`
	AllowedOrigins []string `yaml:"allowedOrigins"`
	ValidateRows   bool     `yaml:"validateRows"`
}

type SecuritySettings struct {
	RequireAPIKey     bool     `yaml:"requireApiKey"`
	APIKeyEncrypted   string   `yaml:"apiKeyEncrypted"`
	IPAllowList       []string `yaml:"ipAllowList"`
	RateLimit         int      `yaml:"rateLimit"`
	RateWindowSeconds int      `yaml:"rateWindowSeconds"`
}

type DatabaseSettings struct {
	Driver                string `yaml:"driver"`
	DSN                   string `yaml:"dsn"`
	CommandTimeoutSeconds int    `yaml:"commandTimeoutSeconds"`
}

// CommandTimeout returns the configured per-query timeout.
func (d DatabaseSettings) CommandTimeout() time.Duration {
	return time.Duration(d.CommandTimeoutSeconds) * time.Second
}

// RateWindow returns the rate limiter window.
func (s SecuritySettings) RateWindow() time.Duration {
	return time.Duration(s.RateWindowSeconds) * time.Second
}

// DefaultSettings returns the settings applied when fields are omitted.
func DefaultSettings() *Settings {
	return &Settings{
		Service: ServiceSettings{
			ListenAddr: "127.0.0.1:8443",
		},
		Security: SecuritySettings{
			RequireAPIKey:     true,
			RateLimit:         120,
			RateWindowSeconds: 60,
		},
		Database: DatabaseSettings{
			Driver:                "sqlite3",
			CommandTimeoutSeconds: 60,
		},
	}
}

// LoadSettings reads settings.yaml from the given path, applying defaults
// for omitted fields. A missing file yields pure defaults.
func LoadSettings(path string) (*Settings, error) {
	settings := DefaultSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			customLog.Warnf("Settings file %s not found, using defaults", path)
			return settings, nil
		}
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	if err := yaml.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings file: %w", err)
	}

	customLog.Printf("Loaded settings from %s", path)
	return settings, nil
}

// IsLoopbackListen reports whether a listen address binds only a loopback
// interface. The IP allow-list may be empty only in that case.
func IsLoopbackListen(listenAddr string) bool {
	host, _, err := net.SplitHostPort(listenAddr)
	if err != nil {
		host = listenAddr
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
