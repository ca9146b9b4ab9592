package hooks

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/stepwise/internal/wizard"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadConfig(dir, "")
	require.NoError(t, err)
	require.Nil(t, cfg, "missing file means no hooks")

	content := `version: 1
hooks:
  on_finish:
    - command: echo done
      timeout: 5
  on_cancel:
    - command: echo cancelled
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0o644))

	cfg, err = LoadConfig(dir, "")
	require.NoError(t, err)
	require.Equal(t, 1, cfg.Version)
	require.Len(t, cfg.For(wizard.StateFinished), 1)
	require.Equal(t, "echo cancelled", cfg.For(wizard.StateCancelled)[0].Command)
	require.Empty(t, cfg.For(wizard.StateActive))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yml"), []byte("hooks: [\n"), 0o644))
	_, err = LoadConfig(dir, "bad.yml")
	require.Error(t, err)
}

func TestConfig_ForNil(t *testing.T) {
	var cfg *Config
	require.Nil(t, cfg.For(wizard.StateFinished))
}

func TestExpandVariables(t *testing.T) {
	vars := Variables{
		RunID: "r1",
		Page:  "finish",
		State: "finished",
		Context: map[string]any{
			"username":       "o'brien",
			"terms_accepted": true,
		},
	}

	tests := []struct {
		name    string
		command string
		want    string
	}{
		{"fixed variables", "echo {{run_id}} {{page}} {{state}}", "echo r1 finish finished"},
		{"context value is quoted", "echo {{ctx.username}}", `echo 'o'\''brien'`},
		{"non-string context value", "test {{ctx.terms_accepted}} = true", "test 'true' = true"},
		{"unknown context key", "echo {{ctx.missing}}", "echo ''"},
		{"no placeholders", "true", "true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, expandVariables(tt.command, vars))
		})
	}
}

func TestExecute(t *testing.T) {
	ctx := context.Background()
	workDir := t.TempDir()
	vars := Variables{RunID: "r1", Page: "login", State: "cancelled", Context: map[string]any{"username": "alice"}}

	tests := []struct {
		name     string
		hook     *HookConfig
		expected string
	}{
		{"nil hook", nil, ""},
		{"empty command", &HookConfig{}, ""},
		{"expands context", &HookConfig{Command: "echo {{ctx.username}}", Timeout: 5}, "alice\n"},
		{"exports environment", &HookConfig{Command: `echo "$STEPWISE_RUN_ID $STEPWISE_STATE"`, Timeout: 5}, "r1 cancelled\n"},
		{"failure degrades", &HookConfig{Command: "echo partial; exit 3", Timeout: 5}, "[Hook command failed: exit status 3]\npartial\n"},
		{"timeout degrades", &HookConfig{Command: "echo early; exec sleep 5", Timeout: 1}, "[Hook timed out after 1s]\nPartial output:\nearly\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Execute(ctx, tt.hook, workDir, vars)
			require.NoError(t, err)
			require.Equal(t, tt.expected, out)
		})
	}
}

func TestExecuteAll(t *testing.T) {
	hooks := []*HookConfig{
		{Command: "echo first", Timeout: 5},
		{Command: "true", Timeout: 5},
		{Command: "echo second", Timeout: 5},
	}
	out, err := ExecuteAll(context.Background(), hooks, t.TempDir(), Variables{})
	require.NoError(t, err)
	require.Equal(t, "first\n\nsecond\n", out)
}

func TestExecute_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Execute(ctx, &HookConfig{Command: "echo hi", Timeout: 5}, t.TempDir(), Variables{})
	require.ErrorIs(t, err, context.Canceled)
}
