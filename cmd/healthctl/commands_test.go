package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, serverURL string, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{"--url", serverURL}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestStatusCommand(t *testing.T) {
	status := http.StatusOK
	body := `{"status":"degraded","timestamp":"2026-01-02T03:04:05Z","checks":{
		"disk_usage":{"status":"degraded","value":{"total":100,"used":85,"percent":85}},
		"cpu_usage":{"status":"healthy","value":12}}}`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/healthz", r.URL.Path)
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	defer srv.Close()

	out, err := runCLI(t, srv.URL, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Overall: ⚠ degraded")
	assert.Regexp(t, `(?s)cpu_usage.*disk_usage`, out)
	assert.Contains(t, out, `"percent":85`)

	status = http.StatusServiceUnavailable
	body = `{"status":"unhealthy","timestamp":"2026-01-02T03:04:05Z","checks":{
		"cpu_usage":{"status":"error","error":"cpu percent: no data returned"}}}`
	out, err = runCLI(t, srv.URL, "status")
	assert.ErrorIs(t, err, errUnhealthy)
	assert.Contains(t, out, "no data returned")
}

func TestRecordCommand(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/events", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	out, err := runCLI(t, srv.URL, "record", "--duration", "250ms", "--failed", "--format", "PDF")
	require.NoError(t, err)
	assert.Contains(t, out, "success=false")
	assert.Equal(t, 0.25, got["duration_seconds"])
	assert.Equal(t, false, got["success"])
	assert.Equal(t, "PDF", got["format"])
	assert.NotContains(t, got, "intent")
}

func TestRecordCommandRequiresDuration(t *testing.T) {
	_, err := runCLI(t, "http://127.0.0.1:1", "record")
	assert.ErrorContains(t, err, "duration")
}

func TestSnapshotCommandWritesFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"id":"abc"}`)
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "snap.json")
	out, err := runCLI(t, srv.URL, "snapshot", "--out", path)
	require.NoError(t, err)
	assert.Contains(t, out, "snapshot written to")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"abc"}`, string(data))
}

func TestExportCommandSurfacesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tmp/x.json", r.URL.Query().Get("path"))
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"error":"collector.export: rename: permission denied"}`)
	}))
	defer srv.Close()

	_, err := runCLI(t, srv.URL, "export", "--path", "/tmp/x.json")
	assert.ErrorContains(t, err, "permission denied")
}

func TestMetricsAndResetCommands(t *testing.T) {
	var resets int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/metrics/text":
			_, _ = io.WriteString(w, "requests_total 3\n")
		case "/admin/reset":
			resets++
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	out, err := runCLI(t, srv.URL, "metrics")
	require.NoError(t, err)
	assert.Equal(t, "requests_total 3\n", out)

	out, err = runCLI(t, srv.URL, "reset")
	require.NoError(t, err)
	assert.Contains(t, out, "recorder reset")
	assert.Equal(t, 1, resets)
}
