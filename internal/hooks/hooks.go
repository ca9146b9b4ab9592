// Package hooks runs user-configured shell commands when a wizard run
// finishes or is cancelled.
package hooks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/mark3labs/stepwise/internal/logger"
	"github.com/mark3labs/stepwise/internal/wizard"
	"gopkg.in/yaml.v3"
)

// ConfigFileName is the default name of the hooks configuration file.
const ConfigFileName = ".stepwise.hooks.yml"

var log = logger.Named("hooks")

// LoadConfig loads the hooks configuration. path is resolved against
// workDir when relative. A missing file is not an error: it returns nil.
func LoadConfig(workDir, path string) (*Config, error) {
	if path == "" {
		path = ConfigFileName
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(workDir, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Debug("no hooks config at %s", path)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read hooks config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse hooks config: %w", err)
	}

	log.Debug("loaded hooks config from %s (version: %d)", path, cfg.Version)
	return &cfg, nil
}

// For returns the hooks that apply to a terminal state.
func (c *Config) For(state wizard.State) []*HookConfig {
	if c == nil {
		return nil
	}
	switch state {
	case wizard.StateFinished:
		return c.Hooks.OnFinish
	case wizard.StateCancelled:
		return c.Hooks.OnCancel
	default:
		return nil
	}
}

// Variables are expanded in hook commands and exported to the hook's
// environment.
type Variables struct {
	RunID   string
	Page    string
	State   string
	Context map[string]any // Shared context snapshot, {{ctx.<key>}}
}

// VariablesFor captures the variables of a run.
func VariablesFor(w *wizard.Wizard) Variables {
	id, _, _ := w.Current()
	if id == "" {
		if ids := w.Loader().Pages(); len(ids) > 0 {
			id = ids[min(w.Index(), len(ids)-1)]
		}
	}
	return Variables{
		RunID:   w.RunID(),
		Page:    string(id),
		State:   w.State().String(),
		Context: w.Shared().Snapshot(),
	}
}

// Execute runs a hook command and returns its output. Failures and timeouts
// are reported in the output with a nil error; only cancellation of ctx is
// returned as an error.
func Execute(ctx context.Context, hook *HookConfig, workDir string, vars Variables) (string, error) {
	if hook == nil || hook.Command == "" {
		return "", nil
	}

	command := expandVariables(hook.Command, vars)
	log.Debug("executing: %s", command)

	timeout := hook.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	execCtx, cancel := context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
	defer cancel()

	cmd := exec.CommandContext(execCtx, "sh", "-c", command)
	cmd.Dir = workDir
	cmd.Env = append(os.Environ(),
		"STEPWISE_RUN_ID="+vars.RunID,
		"STEPWISE_PAGE="+vars.Page,
		"STEPWISE_STATE="+vars.State,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	if errors.Is(execCtx.Err(), context.DeadlineExceeded) {
		log.Warn("hook timed out after %ds: %s", timeout, command)
		return fmt.Sprintf("[Hook timed out after %ds]\nPartial output:\n%s", timeout, stdout.String()), nil
	}

	if err != nil {
		log.Warn("hook failed: %v", err)
		output := stdout.String()
		if stderr.Len() > 0 {
			output += "\n[stderr]\n" + stderr.String()
		}
		return fmt.Sprintf("[Hook command failed: %v]\n%s", err, output), nil
	}

	output := stdout.String()
	if stderr.Len() > 0 {
		output += "\n[stderr]\n" + stderr.String()
	}
	return output, nil
}

// ExecuteAll runs hooks in order and joins their non-empty outputs with a
// blank line.
func ExecuteAll(ctx context.Context, hooks []*HookConfig, workDir string, vars Variables) (string, error) {
	var outputs []string
	for _, h := range hooks {
		out, err := Execute(ctx, h, workDir, vars)
		if err != nil {
			return strings.Join(outputs, "\n"), err
		}
		if out != "" {
			outputs = append(outputs, out)
		}
	}
	return strings.Join(outputs, "\n"), nil
}

var ctxVar = regexp.MustCompile(`\{\{ctx\.([A-Za-z0-9_.()-]+)\}\}`)

// expandVariables replaces {{variable}} placeholders. Context values come
// from user input and are shell-quoted; unknown keys expand to ''.
func expandVariables(command string, vars Variables) string {
	r := strings.NewReplacer(
		"{{run_id}}", vars.RunID,
		"{{page}}", vars.Page,
		"{{state}}", vars.State,
	)
	command = r.Replace(command)

	return ctxVar.ReplaceAllStringFunc(command, func(m string) string {
		key := ctxVar.FindStringSubmatch(m)[1]
		v, ok := vars.Context[key]
		if !ok {
			return "''"
		}
		return shellQuote(fmt.Sprint(v))
	})
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
