package app

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"example.com/wordle-server/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()

	dir := t.TempDir()
	validPath := filepath.Join(dir, "valid.txt")
	answersPath := filepath.Join(dir, "answers.txt")
	require.NoError(t, os.WriteFile(validPath, []byte("SLATE\nFLUSH\n"), 0o600))
	require.NoError(t, os.WriteFile(answersPath, []byte("CRANE\n"), 0o600))

	var c config.Config
	c.Env = "dev"
	c.Log.Format = "text"
	c.HTTP.Addr = "127.0.0.1:0"
	c.HTTP.ShutdownTimeout = time.Second
	c.Storage.Backend = "memory"
	c.Corpus.Source = "file"
	c.Corpus.ValidPath = validPath
	c.Corpus.AnswersPath = answersPath
	c.Auth.Secret = "test"
	c.Auth.IdentityTTL = time.Hour
	c.RateLimit.RPS = 100
	c.RateLimit.Burst = 100
	require.NoError(t, c.Validate())
	return c
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNew_MemoryBackend(t *testing.T) {
	a, err := New(context.Background(), testConfig(t), discard())
	require.NoError(t, err)

	ts := httptest.NewServer(a.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(body))

	resp, err = http.Post(ts.URL+"/api/session", "application/json",
		strings.NewReader(`{"email":"alice","sessionToken":"s1"}`))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Post(ts.URL+"/api/answer", "application/json",
		strings.NewReader(`{"email":"alice","sessionToken":"s1"}`))
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.JSONEq(t, `{"word":"CRANE"}`, string(body))
}

func TestNew_MissingCorpus(t *testing.T) {
	cfg := testConfig(t)
	cfg.Corpus.AnswersPath = filepath.Join(t.TempDir(), "missing.txt")

	_, err := New(context.Background(), cfg, discard())
	require.Error(t, err)
}

func TestNew_RedisUnreachable(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	cfg := testConfig(t)
	cfg.Storage.Backend = "redis"
	cfg.Redis.Addr = addr

	_, err = New(context.Background(), cfg, discard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis ping")
}

func TestRun_StopsOnCancel(t *testing.T) {
	a, err := New(context.Background(), testConfig(t), discard())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
