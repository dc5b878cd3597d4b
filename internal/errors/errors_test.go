package errors

import (
	"bytes"
	stdErrors "errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *PostError
		expected string
	}{
		{
			name:     "error without cause",
			err:      New(CategoryConfig, SeverityFatal, "configuration invalid"),
			expected: "config (fatal): configuration invalid",
		},
		{
			name:     "error with cause",
			err:      Wrap(fmt.Errorf("file not found"), CategoryConfig, SeverityFatal, "failed to load config"),
			expected: "config (fatal): failed to load config: file not found",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, test.err.Error())
		})
	}
}

func TestPostError_WithContext(t *testing.T) {
	err := UnknownSetting("PauseAtTopAndBottom", "pause_sideways")

	require.NotNil(t, err.Context)
	assert.Equal(t, "PauseAtTopAndBottom", err.Context["script"])
	assert.Equal(t, "pause_sideways", err.Context["setting"])
	assert.Equal(t, CategoryValidation, err.Category)
}

func TestCategoryThroughWrapping(t *testing.T) {
	base := FileError("read", "part.gcode", stdErrors.New("permission denied"))
	wrapped := fmt.Errorf("process job: %w", base)

	assert.True(t, IsCategory(wrapped, CategoryFileSystem))
	assert.False(t, IsCategory(wrapped, CategoryConfig))
	assert.Equal(t, CategoryFileSystem, GetCategory(wrapped))
	assert.Equal(t, CategoryInternal, GetCategory(stdErrors.New("plain")))
	assert.ErrorContains(t, wrapped, "permission denied")
}

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, nil)

	tests := []struct {
		name string
		err  error
		code int
	}{
		{"nil", nil, 0},
		{"plain", stdErrors.New("boom"), 1},
		{"validation", ValidationFailed("scripts[0].name", "must not be empty"), 2},
		{"config", ConfigNotFound("gcodepost.yaml"), 7},
		{"filesystem", FileError("write", "out.gcode", stdErrors.New("disk full")), 11},
		{"parse", ParseError("in.gcode", stdErrors.New("empty")), 11},
		{"plugin", ScriptFailed("PauseAtTopAndBottom", stdErrors.New("bad")), 12},
		{"internal", InternalError("unexpected", nil), 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, adapter.ExitCodeFor(tt.err))
		})
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	quiet := NewCLIErrorAdapter(false, nil)
	verbose := NewCLIErrorAdapter(true, nil)

	err := ValidationFailed("watch.inbox", "inbox and outbox must differ")
	assert.Equal(t, "validation failed: inbox and outbox must differ", quiet.FormatError(err))
	assert.Equal(t, err.Error(), verbose.FormatError(err))

	scriptErr := ScriptFailed("PauseAtTopAndBottom", stdErrors.New("bad"))
	assert.Equal(t, "plugin: script failed", quiet.FormatError(scriptErr))
	assert.Equal(t, "Error: boom", quiet.FormatError(stdErrors.New("boom")))
	assert.Empty(t, quiet.FormatError(nil))
}

func TestCLIErrorAdapter_HandleError(t *testing.T) {
	var logs, out bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	adapter := NewCLIErrorAdapter(false, logger)
	adapter.out = &out
	code := -1
	adapter.exit = func(c int) { code = c }

	adapter.HandleError(ScriptFailed("PauseAtTopAndBottom", stdErrors.New("bad layer")))

	assert.Equal(t, 12, code)
	assert.Contains(t, out.String(), "plugin: script failed")
	assert.Contains(t, logs.String(), "script=PauseAtTopAndBottom")
	assert.Contains(t, logs.String(), "cause=\"bad layer\"")
}
