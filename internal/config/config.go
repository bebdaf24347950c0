// Package config reads the echo client's defaults from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sanverite/echo-client/internal/transport"
)

// Environment variables read by Load.
const (
	EnvHost         = "ECHO_HOST"
	EnvPort         = "ECHO_PORT"
	EnvDialTimeout  = "ECHO_DIAL_TIMEOUT"
	EnvStatusListen = "ECHO_STATUS_LISTEN"
	EnvAutoConnect  = "ECHO_AUTOCONNECT"
)

// ErrInvalid is returned when an environment value cannot be parsed.
var ErrInvalid = errors.New("invalid configuration")

// Config holds the client defaults. Command-line flags override each field.
type Config struct {
	Host string
	// Port 0 means not configured yet.
	Port        int
	DialTimeout time.Duration

	// StatusListen is the address of the HTTP status API; empty disables it.
	StatusListen string
	AutoConnect  bool
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getBoolEnv accepts on/off, true/false, yes/no and 1/0; anything else is
// reported as ErrInvalid.
func getBoolEnv(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	switch strings.ToLower(v) {
	case "1", "true", "on", "yes":
		return true, nil
	case "0", "false", "off", "no":
		return false, nil
	default:
		return def, fmt.Errorf("%w: %s: %q is not on or off", ErrInvalid, key, v)
	}
}

// Load reads all env vars and builds the config.
func Load() (*Config, error) {
	cfg := &Config{
		Host:         getEnv(EnvHost, "127.0.0.1"),
		DialTimeout:  transport.DefaultDialTimeout,
		StatusListen: getEnv(EnvStatusListen, ""),
	}

	var errs []error
	autoConnect, err := getBoolEnv(EnvAutoConnect, false)
	if err != nil {
		errs = append(errs, err)
	}
	cfg.AutoConnect = autoConnect
	if v := getEnv(EnvPort, ""); v != "" {
		port, err := transport.ParsePort(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %s: %v", ErrInvalid, EnvPort, err))
		}
		cfg.Port = port
	}
	if v := getEnv(EnvDialTimeout, ""); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			errs = append(errs, fmt.Errorf("%w: %s: %q is not a positive duration", ErrInvalid, EnvDialTimeout, v))
		} else {
			cfg.DialTimeout = d
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}
