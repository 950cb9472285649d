package config

import "time"

// ToolsConfig configures the extension manager and the tool inspection
// pipeline.
type ToolsConfig struct {
	Execution ToolExecutionConfig `yaml:"execution"`
	Notes     string              `yaml:"notes"`
	NotesFile string              `yaml:"notes_file"`
}

// ToolExecutionConfig controls runtime tool execution behavior: turn/tool
// budgets and the permission + repetition inspectors.
type ToolExecutionConfig struct {
	MaxIterations   int                   `yaml:"max_iterations"`
	Parallelism     int                   `yaml:"parallelism"`
	Timeout         time.Duration         `yaml:"timeout"`
	MaxAttempts     int                   `yaml:"max_attempts"`
	RetryBackoff    time.Duration         `yaml:"retry_backoff"`
	DisableEvents   bool                  `yaml:"disable_events"`
	MaxToolCalls    int                   `yaml:"max_tool_calls"`
	RequireApproval []string              `yaml:"require_approval"`
	Approval        ApprovalConfig        `yaml:"approval"`
	ResultGuard     ToolResultGuardConfig `yaml:"result_guard"`
	Repetition      RepetitionConfig      `yaml:"repetition"`
}

// ApprovalConfig configures the permission inspector. Mode selects
// one of "auto", "approve", "smart_approve", "chat".
type ApprovalConfig struct {
	// Mode is the permission mode: "auto", "approve", "smart_approve", "chat".
	Mode string `yaml:"mode"`

	// Allowlist contains tools that are always allowed (no approval needed).
	// Supports patterns like "mcp:*", "read_*", "*" (all), or group
	// references like "group:fs", "group:runtime".
	Allowlist []string `yaml:"allowlist"`

	// Denylist contains tools that are always denied.
	Denylist []string `yaml:"denylist"`

	// SafeBins are stdin-only tools treated as read-only regardless of the
	// extension manager's classification.
	SafeBins []string `yaml:"safe_bins"`

	// AskFallback queues approval when no confirmation channel is attached
	// instead of denying outright.
	AskFallback bool `yaml:"ask_fallback"`

	// DefaultDecision when no rule matches: "allowed", "denied", or "pending".
	DefaultDecision string `yaml:"default_decision"`

	// RequestTTL is how long a confirmation request remains valid.
	RequestTTL time.Duration `yaml:"request_ttl"`
}

// RepetitionConfig configures the repetition inspector.
type RepetitionConfig struct {
	// MaxConsecutive is how many consecutive identical (same tool, same
	// arguments) calls are tolerated before the inspector denies the call
	// to break an infinite loop. Default: 3.
	MaxConsecutive int `yaml:"max_consecutive"`

	// NormalizeArguments controls whether argument equality ignores
	// insignificant whitespace. Defaults to normalized (see DESIGN.md).
	NormalizeArguments bool `yaml:"normalize_arguments"`
}

// ToolResultGuardConfig controls redaction of tool results before persistence.
type ToolResultGuardConfig struct {
	Enabled         bool     `yaml:"enabled"`
	MaxChars        int      `yaml:"max_chars"`
	Denylist        []string `yaml:"denylist"`
	RedactPatterns  []string `yaml:"redact_patterns"`
	RedactionText   string   `yaml:"redaction_text"`
	TruncateSuffix  string   `yaml:"truncate_suffix"`
	SanitizeSecrets bool     `yaml:"sanitize_secrets"`
}
