package logger_test

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/zerr"

	"github.com/carve-build/carve/internal/adapters/logger"
)

// newTestLogger creates a logger with an injected bytes.Buffer for isolated
// testing. NO_COLOR=1 keeps the output free of ANSI escape codes.
func newTestLogger(t *testing.T) (*logger.Logger, *bytes.Buffer) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	lg := logger.New().(*logger.Logger)
	lg.SetOutput(buf)
	return lg, buf
}

func TestLogger_InfoAndWarn(t *testing.T) {
	tests := []struct {
		name       string
		log        func(l *logger.Logger)
		goldenName string
	}{
		{
			name:       "info",
			log:        func(l *logger.Logger) { l.Info("planned 3 chunks") },
			goldenName: "info_basic",
		},
		{
			name:       "warn",
			log:        func(l *logger.Logger) { l.Warn("cyclic import detected") },
			goldenName: "warn_basic",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lg, buf := newTestLogger(t)
			tt.log(lg)

			g := goldie.New(t)
			g.Assert(t, tt.goldenName, buf.Bytes())
		})
	}
}

func TestLogger_Error(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.Error(errors.New("could not resolve"))

	g := goldie.New(t)
	g.Assert(t, "error_simple", buf.Bytes())
}

func TestLogger_Error_ChainRendering(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want []string
	}{
		{
			name: "zerr chain",
			err: zerr.Wrap(
				errors.New("file does not exist"),
				"failed to read config file",
			),
			want: []string{"Error: failed to read config file", "Caused by:", "→ file does not exist"},
		},
		{
			name: "stdlib chain stays flat",
			err:  fmt.Errorf("planning failed: %w", errors.New("unresolved module")),
			want: []string{"Error: planning failed: unresolved module"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lg, buf := newTestLogger(t)
			lg.Error(tt.err)

			for _, w := range tt.want {
				assert.Contains(t, buf.String(), w)
			}
		})
	}
}

func TestLogger_Error_Nil(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.Error(nil)

	assert.Empty(t, buf.String(), "expected no output for nil error")
}

func TestLogger_SetJSON(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.SetJSON(true)
	lg.Error(errors.New("test error message"))

	output := buf.String()
	assert.Contains(t, output, `"error"`)
	assert.Contains(t, output, `"level":"ERROR"`)
	assert.NotContains(t, output, "✗")

	buf.Reset()
	lg.SetJSON(false)
	lg.Error(errors.New("back to pretty"))
	assert.Contains(t, buf.String(), "✗")
	assert.NotContains(t, buf.String(), `"error"`)
}

func TestLogger_SetOutput_Nil(t *testing.T) {
	require.NotPanics(t, func() {
		lg := logger.New().(*logger.Logger)
		lg.SetOutput(nil)
	})
}

func TestLogger_ConcurrentAccess(t *testing.T) {
	lg, _ := newTestLogger(t)

	done := make(chan bool, 5)
	go func() { lg.Info("concurrent info"); done <- true }()
	go func() { lg.Warn("concurrent warn"); done <- true }()
	go func() { lg.Error(errors.New("concurrent error")); done <- true }()
	go func() { lg.SetJSON(true); done <- true }()
	go func() { lg.SetOutput(&bytes.Buffer{}); done <- true }()

	for i := 0; i < 5; i++ {
		<-done
	}
}
