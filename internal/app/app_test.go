package app

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/declpipe/internal/ctxlog"
)

const validSource = `
pipeline {
    agent any
    stages {
        stage('Build') {
            steps {
                echo 'hi'
            }
        }
    }
}
`

const invalidSource = `
pipeline {
    agent any
    stages {
        stage('Build') {
            steps {
                sh(scripd: 'make')
            }
        }
    }
}
`

func newTestApp(t *testing.T) (*App, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var out, errOut bytes.Buffer
	cfg, err := NewConfig(Config{InputPath: ".", Output: OutputNone, LogLevel: "error"})
	require.NoError(t, err)
	return NewApp(&out, &errOut, cfg, nil), &out, &errOut
}

func TestAnalyzeVerdicts(t *testing.T) {
	a, _, _ := newTestApp(t)

	t.Run("valid pipeline", func(t *testing.T) {
		out := a.Analyze("Jenkinsfile", []byte(validSource))
		assert.True(t, out.Valid)
		assert.NotNil(t, out.Pipeline)
		assert.False(t, out.NoPipeline)
		assert.Empty(t, out.Diags)
	})

	t.Run("invalid pipeline", func(t *testing.T) {
		out := a.Analyze("Jenkinsfile", []byte(invalidSource))
		assert.False(t, out.Valid)
		assert.NotNil(t, out.Pipeline)
		assert.NotEmpty(t, out.Diags)
	})

	t.Run("no pipeline block", func(t *testing.T) {
		out := a.Analyze("Jenkinsfile", []byte("node {\n  checkout(scm)\n}\n"))
		assert.True(t, out.NoPipeline)
		assert.False(t, out.Valid)
		assert.Nil(t, out.Pipeline)
	})

	t.Run("syntax error", func(t *testing.T) {
		out := a.Analyze("Jenkinsfile", []byte("pipeline {\n  agent any\n"))
		assert.False(t, out.Valid)
		assert.NotEmpty(t, out.Diags)
	})
}

func TestRunWritesJSONOutput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Jenkinsfile")
	require.NoError(t, os.WriteFile(path, []byte(validSource), 0o644))

	var out, errOut bytes.Buffer
	cfg, err := NewConfig(Config{InputPath: dir, Output: OutputJSON, LogLevel: "error"})
	require.NoError(t, err)

	a := NewApp(&out, &errOut, cfg, nil)
	require.NoError(t, a.Run(context.Background(), cfg))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &doc))
	require.Contains(t, doc, "pipeline")
}

func TestRunWritesSourceOutput(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Jenkinsfile"), []byte(validSource), 0o644))

	var out, errOut bytes.Buffer
	cfg, err := NewConfig(Config{InputPath: dir, Output: OutputSource, LogLevel: "error"})
	require.NoError(t, err)

	a := NewApp(&out, &errOut, cfg, nil)
	require.NoError(t, a.Run(context.Background(), cfg))

	assert.True(t, strings.HasPrefix(out.String(), "pipeline {"))
	assert.Contains(t, out.String(), "stage('Build')")
}

func TestRunFailsOnInvalidDefinition(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Jenkinsfile"), []byte(invalidSource), 0o644))

	var out, errOut bytes.Buffer
	cfg, err := NewConfig(Config{InputPath: dir, Output: OutputNone, LogLevel: "error"})
	require.NoError(t, err)

	a := NewApp(&out, &errOut, cfg, nil)
	err = a.Run(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed validation")
	// Diagnostics are rendered for the user with source context.
	assert.Contains(t, errOut.String(), "Invalid parameter 'scripd'")
}

func TestRunErrorsWhenNothingFound(t *testing.T) {
	dir := t.TempDir()
	var out, errOut bytes.Buffer
	cfg, err := NewConfig(Config{InputPath: dir, Output: OutputNone, LogLevel: "error"})
	require.NoError(t, err)

	a := NewApp(&out, &errOut, cfg, nil)
	err = a.Run(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no pipeline files found")
}

func TestHandleConvertEndpoints(t *testing.T) {
	a, _, _ := newTestApp(t)

	post := func(t *testing.T, mode convertMode, body string) Result {
		t.Helper()
		req := httptest.NewRequest("POST", "/", strings.NewReader(body))
		rec := httptest.NewRecorder()
		a.handleConvert(mode)(rec, req)
		require.Equal(t, 200, rec.Code)
		require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var res Result
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		return res
	}

	t.Run("validate success", func(t *testing.T) {
		res := post(t, modeValidate, validSource)
		assert.Equal(t, ResultSuccess, res.Result)
		assert.Empty(t, res.Errors)
		assert.Empty(t, res.JSON)
		assert.Empty(t, res.Source)
	})

	t.Run("validate failure carries positions", func(t *testing.T) {
		res := post(t, modeValidate, invalidSource)
		assert.Equal(t, ResultFailure, res.Result)
		require.NotEmpty(t, res.Errors)
		found := false
		for _, f := range res.Errors {
			if strings.Contains(f.Message, "Invalid parameter 'scripd'") {
				found = true
				assert.Equal(t, 7, f.Line)
			}
		}
		assert.True(t, found, "missing expected finding: %+v", res.Errors)
	})

	t.Run("to-json returns the model", func(t *testing.T) {
		res := post(t, modeJSON, validSource)
		require.Equal(t, ResultSuccess, res.Result)

		var doc map[string]any
		require.NoError(t, json.Unmarshal(res.JSON, &doc))
		assert.Contains(t, doc, "pipeline")
	})

	t.Run("to-source returns canonical source", func(t *testing.T) {
		res := post(t, modeSource, validSource)
		require.Equal(t, ResultSuccess, res.Result)
		assert.True(t, strings.HasPrefix(res.Source, "pipeline {"))
	})

	t.Run("no pipeline block", func(t *testing.T) {
		res := post(t, modeValidate, "node {\n  checkout(scm)\n}\n")
		assert.Equal(t, ResultFailure, res.Result)
		require.Len(t, res.Errors, 1)
		assert.Contains(t, res.Errors[0].Message, "No pipeline block found")
	})
}

func TestRequestLoggerUsesContextLogger(t *testing.T) {
	a, _, _ := newTestApp(t)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	h := a.requestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest("GET", "/health", nil)
	req = req.WithContext(ctxlog.WithLogger(req.Context(), logger))

	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Contains(t, buf.String(), "Request handled.")
	assert.Contains(t, buf.String(), "path=/health")
}

func TestNewLoggerLevelAndFormat(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger("warn", "json", &buf)
	l.Info("quiet")
	l.Warn("loud")

	assert.NotContains(t, buf.String(), "quiet")
	assert.Contains(t, buf.String(), `"msg":"loud"`)

	buf.Reset()
	newLogger("bogus", "text", &buf).Debug("hidden")
	assert.Empty(t, buf.String(), "unknown levels fall back to info")
}

func TestHandleHealth(t *testing.T) {
	a, _, _ := newTestApp(t)
	rec := httptest.NewRecorder()
	a.handleHealth(rec, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, 200, rec.Code)
	assert.Equal(t, "OK\n", rec.Body.String())
}

func TestNewConfigValidation(t *testing.T) {
	_, err := NewConfig(Config{})
	assert.Error(t, err)

	_, err = NewConfig(Config{ServerPort: 8080})
	assert.NoError(t, err)

	_, err = NewConfig(Config{InputPath: ".", Output: "yaml"})
	assert.Error(t, err)
}

func TestApplyConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "declpipe.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
output: json
log:
  level: debug
  format: text
server:
  port: 9090
`), 0o644))

	t.Run("fills unset fields", func(t *testing.T) {
		cfg := Config{InputPath: "."}
		require.NoError(t, ApplyConfigFile(&cfg, path))
		assert.Equal(t, "json", cfg.Output)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, "text", cfg.LogFormat)
		assert.Equal(t, 9090, cfg.ServerPort)
	})

	t.Run("flags win", func(t *testing.T) {
		cfg := Config{InputPath: ".", Output: "source", LogLevel: "warn"}
		require.NoError(t, ApplyConfigFile(&cfg, path))
		assert.Equal(t, "source", cfg.Output)
		assert.Equal(t, "warn", cfg.LogLevel)
		assert.Equal(t, 9090, cfg.ServerPort)
	})

	t.Run("bad yaml", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(bad, []byte("output: [unclosed"), 0o644))
		cfg := Config{}
		assert.Error(t, ApplyConfigFile(&cfg, bad))
	})

	t.Run("missing file", func(t *testing.T) {
		cfg := Config{}
		assert.Error(t, ApplyConfigFile(&cfg, filepath.Join(dir, "nope.yaml")))
	})
}
