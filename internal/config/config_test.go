package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	perrors "git.home.luguber.info/inful/gcodepost/internal/errors"
	"git.home.luguber.info/inful/gcodepost/internal/retry"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gcodepost.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	t.Setenv("GCODEPOST_TEST_NATS", "nats://broker:4222")

	path := writeConfig(t, `
logging:
  level: DEBUG
  format: json
scripts:
  - name: PauseAtTopAndBottom
    settings:
      pause_in_bottom_layer: true
      head_park_x: 180.5
output:
  suffix: _paused
watch:
  inbox: ./in
  outbox: ./out
  sweep_interval: 30s
  debounce: 250ms
  metrics_addr: ":9464"
history:
  path: ./history.db
notify:
  nats_url: ${GCODEPOST_TEST_NATS}
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, LogLevelDebug, cfg.Logging.Level)
	assert.Equal(t, LogFormatJSON, cfg.Logging.Format)
	require.Len(t, cfg.Scripts, 1)
	assert.Equal(t, "PauseAtTopAndBottom", cfg.Scripts[0].Name)
	assert.Equal(t, true, cfg.Scripts[0].Settings["pause_in_bottom_layer"])
	assert.Equal(t, 180.5, cfg.Scripts[0].Settings["head_park_x"])
	assert.Equal(t, "_paused", cfg.Output.Suffix)
	assert.True(t, cfg.Output.Mark, "mark defaults to true")
	assert.Equal(t, 30*time.Second, cfg.Watch.SweepInterval.Std())
	assert.Equal(t, 250*time.Millisecond, cfg.Watch.Debounce.Std())
	assert.Equal(t, "nats://broker:4222", cfg.Notify.NATSURL)
	assert.Equal(t, "gcodepost.jobs", cfg.Notify.Subject)
}

func TestLoad_Empty(t *testing.T) {
	cfg, err := Load(writeConfig(t, "# nothing yet\n"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_NotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, perrors.IsCategory(err, perrors.CategoryConfig))
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		category perrors.ErrorCategory
	}{
		{"unknown key", "outputs:\n  suffix: x\n", perrors.CategoryConfig},
		{"bad duration", "watch:\n  debounce: soon\n", perrors.CategoryConfig},
		{"empty script name", "scripts:\n  - name: ' '\n", perrors.CategoryValidation},
		{"inbox is outbox", "watch:\n  inbox: ./box\n  outbox: box/\n", perrors.CategoryValidation},
		{"negative sweep", "watch:\n  sweep_interval: -1m\n", perrors.CategoryValidation},
		{"no suffix", "output:\n  suffix: ''\n", perrors.CategoryValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Equal(t, tt.category, perrors.GetCategory(err))
		})
	}
}

func TestLoadOrDefault(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	_, err = LoadOrDefault("other.yaml")
	assert.Error(t, err, "an explicitly named file must exist")
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("GCODEPOST_TEST_SUBJECT", "")
	require.NoError(t, os.Unsetenv("GCODEPOST_TEST_SUBJECT"))

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("GCODEPOST_TEST_SUBJECT=prints.done\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultPath), []byte("notify:\n  subject: ${GCODEPOST_TEST_SUBJECT}\n"), 0o644))

	cfg, err := Load(DefaultPath)
	require.NoError(t, err)
	assert.Equal(t, "prints.done", cfg.Notify.Subject)
}

func TestNormalize(t *testing.T) {
	cfg := Default()
	cfg.Logging.Level = "Warning"
	cfg.Logging.Format = "xml"
	cfg.Scripts = []ScriptConfig{{Name: "  PauseAtTopAndBottom "}}

	res := Normalize(cfg)

	assert.Equal(t, LogLevelWarn, cfg.Logging.Level)
	assert.Equal(t, LogFormatText, cfg.Logging.Format)
	assert.Equal(t, "PauseAtTopAndBottom", cfg.Scripts[0].Name)
	assert.Len(t, res.Warnings, 2)
}

func TestRetryConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
notify:
  retry:
    backoff: Fixed
    initial: 2s
    max: 1s
    max_retries: 5
`))
	require.NoError(t, err)

	assert.Equal(t, retry.ModeFixed, cfg.Notify.Retry.Backoff)
	p := cfg.Notify.Retry.Policy()
	assert.Equal(t, time.Second, p.Initial, "initial is capped by max")
	assert.Equal(t, 5, p.MaxRetries)

	_, err = Load(writeConfig(t, "notify:\n  retry:\n    max_retries: -1\n"))
	assert.True(t, perrors.IsCategory(err, perrors.CategoryValidation))

	def := Default().Notify.Retry.Policy()
	assert.Equal(t, retry.ModeExponential, def.Mode)
	assert.Equal(t, 3, def.MaxRetries)
}

func TestLogLevelSlog(t *testing.T) {
	assert.Equal(t, "DEBUG", LogLevelDebug.SlogLevel().String())
	assert.Equal(t, "INFO", LogLevel("").SlogLevel().String())
	assert.Equal(t, "ERROR", LogLevelError.SlogLevel().String())
}

func TestValidateWatch(t *testing.T) {
	cfg := Default()
	assert.Error(t, cfg.ValidateWatch())
	cfg.Watch.Inbox = "./in"
	assert.NoError(t, cfg.ValidateWatch())
}

func TestInit(t *testing.T) {
	t.Setenv("NATS_URL", "")
	path := filepath.Join(t.TempDir(), "gcodepost.yaml")

	require.NoError(t, Init(path, false))
	assert.Error(t, Init(path, false), "existing file needs force")
	require.NoError(t, Init(path, true))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Scripts, 1)
	assert.Equal(t, "./inbox", cfg.Watch.Inbox)
	assert.Equal(t, time.Minute, cfg.Watch.SweepInterval.Std())
}
