/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Seednode/scorebox/kv"
)

func validConfig() Config {
	return Config{
		port:           8080,
		sessionTimeout: time.Hour,
		storage:        kv.BackendFile,
		storageKey:     "scoreData",
	}
}

func TestValidate(t *testing.T) {
	for _, tc := range []struct {
		name   string
		modify func(c *Config)
		err    string
	}{
		{"defaults", func(*Config) {}, ""},
		{"cert without key", func(c *Config) { c.tlsCert = "cert.pem" }, "--tls-key"},
		{"key without cert", func(c *Config) { c.tlsKey = "key.pem" }, "--tls-key"},
		{"tls pair", func(c *Config) { c.tlsCert, c.tlsKey = "cert.pem", "key.pem" }, ""},
		{"port zero", func(c *Config) { c.port = 0 }, "invalid port"},
		{"port too high", func(c *Config) { c.port = 65536 }, "invalid port"},
		{"negative timeout", func(c *Config) { c.sessionTimeout = -time.Second }, "invalid session timeout"},
		{"disabled timeout", func(c *Config) { c.sessionTimeout = 0 }, ""},
		{"nanosecond timeout", func(c *Config) { c.sessionTimeout = time.Nanosecond }, "invalid session timeout"},
		{"sub-second timeout", func(c *Config) { c.sessionTimeout = 999 * time.Millisecond }, "invalid session timeout"},
		{"one second timeout", func(c *Config) { c.sessionTimeout = time.Second }, ""},
		{"memory storage", func(c *Config) { c.storage = kv.BackendMemory }, ""},
		{"sqlite storage", func(c *Config) { c.storage = kv.BackendSQLite }, ""},
		{"unknown storage", func(c *Config) { c.storage = "redis" }, "invalid storage backend"},
		{"blank key", func(c *Config) { c.storageKey = "  " }, "--storage-key"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.modify(&cfg)

			err := cfg.validate()
			if tc.err == "" {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.err)
		})
	}
}

func TestScheme(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, "http", cfg.scheme())

	cfg.tlsCert, cfg.tlsKey = "cert.pem", "key.pem"
	assert.Equal(t, "https", cfg.scheme())
}

func TestStoragePath(t *testing.T) {
	cfg := validConfig()
	cfg.data = "scorebox-data"
	assert.Equal(t, "scorebox-data", cfg.storagePath())

	cfg.storage = kv.BackendSQLite
	assert.Equal(t, filepath.Join("scorebox-data", "scorebox.db"), cfg.storagePath())

	cfg.data = "sheets.sqlite"
	assert.Equal(t, "sheets.sqlite", cfg.storagePath())
}

func TestGameKey(t *testing.T) {
	cfg := validConfig()

	assert.Equal(t, "scoreData/abc123", cfg.gameKey("abc123"))
}

func TestOpenStore(t *testing.T) {
	for _, backend := range []string{kv.BackendMemory, kv.BackendFile, kv.BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			cfg := validConfig()
			cfg.storage = backend
			cfg.data = filepath.Join(t.TempDir(), "data")

			store, err := cfg.openStore()
			require.NoError(t, err)
			assert.NoError(t, store.Close())
		})
	}
}

func TestEnvironmentOverridesFlags(t *testing.T) {
	t.Setenv("SCOREBOX_PORT", "70000")

	cfg := &Config{}
	cmd := newCmd(cfg)
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid port")
	assert.Equal(t, 70000, cfg.port)
}

func TestSubSecondTimeoutFlagIsRejected(t *testing.T) {
	cfg := &Config{}
	cmd := newCmd(cfg)
	cmd.SetArgs([]string{"--session-timeout", "1ns"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid session timeout")
}

func TestEnvironmentStorageKey(t *testing.T) {
	t.Setenv("SCOREBOX_STORAGE", "redis")
	t.Setenv("SCOREBOX_STORAGE_KEY", "league")

	cfg := &Config{}
	cmd := newCmd(cfg)
	cmd.SetArgs([]string{"play"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid storage backend")
	assert.Equal(t, "league", cfg.storageKey)
}
