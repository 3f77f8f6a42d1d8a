package debug_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/beanls/pkg/debug"
)

func TestGetPackageAndFuncFromFuncName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantPkg  string
		wantFunc string
	}{
		{
			name:     "method",
			input:    "github.com/walteh/beanls/pkg/lsp.(*Server).DidSave",
			wantPkg:  "github.com/walteh/beanls/pkg/lsp",
			wantFunc: "(*Server).DidSave",
		},
		{
			name:     "function",
			input:    "github.com/walteh/beanls/pkg/semtok.EncodeData",
			wantPkg:  "github.com/walteh/beanls/pkg/semtok",
			wantFunc: "EncodeData",
		},
		{
			name:     "closure",
			input:    "github.com/walteh/beanls/pkg/lsp.(*Server).validate.func1",
			wantPkg:  "github.com/walteh/beanls/pkg/lsp",
			wantFunc: "(*Server).validate.func1",
		},
		{
			name:     "stdlib",
			input:    "main.main",
			wantPkg:  "main",
			wantFunc: "main",
		},
		{
			name:     "no_dot",
			input:    "weird",
			wantPkg:  "weird",
			wantFunc: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pkg, fn := debug.GetPackageAndFuncFromFuncName(tt.input)
			assert.Equal(t, tt.wantPkg, pkg)
			assert.Equal(t, tt.wantFunc, fn)
		})
	}
}

func TestFormatCaller(t *testing.T) {
	got := debug.FormatCaller("github.com/walteh/beanls/pkg/lsp", "/src/beanls/pkg/lsp/server.go", 42, false)
	assert.Equal(t, "github.com/walteh/beanls/pkg/lsp:server.go:42", got)

	assert.Equal(t, "main.go", debug.FileNameOfPath("main.go"))
}

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := debug.NewLogger(&buf, debug.LoggerOpts{Level: zerolog.InfoLevel, JSON: true})

	logger.Debug().Msg("hidden")
	logger.Info().Str("uri", "file:///main.bean").Msg("document opened")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var event map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &event))
	assert.Equal(t, "document opened", event["message"])
	assert.Equal(t, "file:///main.bean", event["uri"])
	assert.NotEmpty(t, event["time"])
	assert.Contains(t, event["caller"], "debug_test.go")
}

func TestNewLoggerConsole(t *testing.T) {
	var buf bytes.Buffer
	logger := debug.NewLogger(&buf, debug.LoggerOpts{Level: zerolog.TraceLevel})

	logger.Warn().Msg("validator run failed")

	out := buf.String()
	assert.Contains(t, out, "validator run failed")
	assert.Contains(t, out, "WRN")
	assert.NotContains(t, out, "\x1b[")
}
