package hooks

// Config is the top-level configuration loaded from .stepwise.hooks.yml.
//
//	version: 1
//	hooks:
//	  on_finish:
//	    - command: notify-send "welcome {{ctx.username}}"
//	      timeout: 10
//	  on_cancel:
//	    - command: echo "run {{run_id}} cancelled on {{page}}"
type Config struct {
	Version int         `yaml:"version"`
	Hooks   HooksConfig `yaml:"hooks"`
}

// HooksConfig lists the commands run when a wizard reaches a terminal state.
type HooksConfig struct {
	OnFinish []*HookConfig `yaml:"on_finish"`
	OnCancel []*HookConfig `yaml:"on_cancel"`
}

// HookConfig defines a single hook's configuration.
type HookConfig struct {
	Command string `yaml:"command"`
	Timeout int    `yaml:"timeout"` // seconds, default 30
}

// DefaultTimeout is the default timeout for hook execution in seconds.
const DefaultTimeout = 30
