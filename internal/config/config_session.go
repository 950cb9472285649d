package config

import "time"

// SessionConfig controls default session behavior and the context-pruning
// strategy the orchestrator falls back on between auto-compactions.
type SessionConfig struct {
	DefaultAgentID string               `yaml:"default_agent_id"`
	WorkingDir     string               `yaml:"working_dir"`
	MaxTurns       int                  `yaml:"max_turns"`
	ContextPruning ContextPruningConfig `yaml:"context_pruning"`
	Reset          ResetConfig          `yaml:"reset"`
	Retry          *RetryConfig         `yaml:"retry"`
}

// RetryConfig configures the retry harness: the
// success checks and on_failure hook that wrap a reply turn ending with no
// tool calls.
type RetryConfig struct {
	// MaxRetries must be >= 1.
	MaxRetries int `yaml:"max_retries"`

	// Checks run, in order, at the end of a turn. All must exit 0 to pass.
	Checks []SuccessCheckConfig `yaml:"checks"`

	// OnFailure is an optional shell command run after a failing check
	// round; its exit code is ignored.
	OnFailure string `yaml:"on_failure"`

	// Timeout bounds each check run.
	Timeout time.Duration `yaml:"timeout"`

	// OnFailureTimeout bounds the on_failure command.
	OnFailureTimeout time.Duration `yaml:"on_failure_timeout"`
}

// SuccessCheckConfig is a single shell success check.
type SuccessCheckConfig struct {
	Name    string `yaml:"name"`
	Command string `yaml:"command"`
	Dir     string `yaml:"dir"`
}

// ResetConfig controls when sessions are automatically reset.
type ResetConfig struct {
	// Mode is the reset mode: "daily", "idle", "daily+idle", or "never" (default).
	Mode string `yaml:"mode"`

	// AtHour is the hour (0-23) to reset sessions when mode includes "daily".
	AtHour int `yaml:"at_hour"`

	// IdleMinutes is the number of minutes of inactivity before reset when mode includes "idle".
	IdleMinutes int `yaml:"idle_minutes"`
}

// ContextPruningConfig controls in-memory tool result pruning for sessions,
// and the auto-compaction trigger the reply orchestrator checks before
// every turn.
type ContextPruningConfig struct {
	Mode                 string                  `yaml:"mode"`
	TTL                  *time.Duration          `yaml:"ttl"`
	KeepLastAssistants   *int                    `yaml:"keep_last_assistants"`
	SoftTrimRatio        *float64                `yaml:"soft_trim_ratio"`
	HardClearRatio       *float64                `yaml:"hard_clear_ratio"`
	MinPrunableToolChars *int                    `yaml:"min_prunable_tool_chars"`
	Tools                ContextPruningToolMatch `yaml:"tools"`
	SoftTrim             ContextPruningSoftTrim  `yaml:"soft_trim"`
	HardClear            ContextPruningHardClear `yaml:"hard_clear"`

	// AutoCompactThreshold is the fraction of context_limit at which
	// auto-compaction triggers before a turn. Default: 0.8.
	AutoCompactThreshold float64 `yaml:"auto_compact_threshold"`
}

// ContextPruningToolMatch selects which tool results can be trimmed.
type ContextPruningToolMatch struct {
	Allow []string `yaml:"allow"`
	Deny  []string `yaml:"deny"`
}

// ContextPruningSoftTrim configures soft trimming of tool result content.
type ContextPruningSoftTrim struct {
	MaxChars  *int `yaml:"max_chars"`
	HeadChars *int `yaml:"head_chars"`
	TailChars *int `yaml:"tail_chars"`
}

// ContextPruningHardClear configures hard clearing of tool result content.
type ContextPruningHardClear struct {
	Enabled     *bool  `yaml:"enabled"`
	Placeholder string `yaml:"placeholder"`
}
