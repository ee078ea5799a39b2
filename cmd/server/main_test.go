package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-resource/pkg/simpleresource/config"
)

func TestLoadConfigFlagsOverrideEnv(t *testing.T) {
	t.Setenv("PORT", "7000")
	t.Setenv("STORAGE_URL", "memfs://")

	cfg, err := loadConfig("", "9000", "memory://")
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "memory://", cfg.StorageURL)

	cfg, err = loadConfig("", "", "")
	require.NoError(t, err)
	assert.Equal(t, "7000", cfg.Port)
	assert.Equal(t, "memfs://", cfg.StorageURL)
}

func TestNewLogger(t *testing.T) {
	t.Run("production writes JSON", func(t *testing.T) {
		cfg, err := config.Load(config.WithEnvironment(config.EnvProduction), config.WithLogLevel("warn"))
		require.NoError(t, err)

		var buf bytes.Buffer
		logger := newLogger(&buf, cfg)
		logger.Info("hidden")
		logger.Warn("shown", "k", "v")

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 1)

		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
		assert.Equal(t, "shown", entry["msg"])
		assert.Equal(t, "v", entry["k"])
	})

	t.Run("development writes text", func(t *testing.T) {
		cfg, err := config.Load(config.WithEnvironment(config.EnvDevelopment))
		require.NoError(t, err)

		var buf bytes.Buffer
		newLogger(&buf, cfg).Info("hello", "k", "v")
		assert.Contains(t, buf.String(), "hello")
		assert.False(t, json.Valid(buf.Bytes()))
	})
}

func TestNewHandler(t *testing.T) {
	cfg, err := config.Load(config.WithStorageURL("memory://"), config.WithEnvironment(config.EnvTesting))
	require.NoError(t, err)

	var buf bytes.Buffer
	logger := newLogger(&buf, cfg)
	svc, cleanup, err := cfg.BuildService(t.Context(), logger)
	require.NoError(t, err)
	defer cleanup()

	h := newHandler(svc, cfg, logger)

	req := httptest.NewRequest(http.MethodPost, "/api/json", strings.NewReader(`{"filename":"x.json","content":"{\"k\":\"v\"}"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/json/x.json", nil)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message":"file read successfully","content":{"k":"v"}}`, rr.Body.String())
}
