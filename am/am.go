// Package am holds dex configuration ("I am").
//
// Two layers:
//   - core settings (vault location, dedup thresholds, watcher timing) read with
//     Viper from am.toml files and DEX_* environment variables
//   - the strategy document System/pillars.yaml (pillars and WIP limits), read
//     with yaml.v3 and falling back to documented defaults
package am

// Config represents the core dex configuration
type Config struct {
	Vault    VaultConfig    `mapstructure:"vault" json:"vault" yaml:"vault" toml:"vault"`
	Dedup    DedupConfig    `mapstructure:"dedup" json:"dedup" yaml:"dedup" toml:"dedup"`
	Tasks    TasksConfig    `mapstructure:"tasks" json:"tasks" yaml:"tasks" toml:"tasks"`
	Meetings MeetingsConfig `mapstructure:"meetings" json:"meetings" yaml:"meetings" toml:"meetings"`
	Watch    WatchConfig    `mapstructure:"watch" json:"watch" yaml:"watch" toml:"watch"`
	Log      LogConfig      `mapstructure:"log" json:"log" yaml:"log" toml:"log"`
}

// VaultConfig locates the Markdown vault
type VaultConfig struct {
	Path string `mapstructure:"path" json:"path" yaml:"path" toml:"path"`
	// DemoMode overrides System/user-profile.yaml when set (nil = read the profile per operation)
	DemoMode *bool `mapstructure:"demo_mode" json:"demo_mode,omitempty" yaml:"demo_mode,omitempty" toml:"demo_mode,omitempty"`
}

// DedupConfig tunes duplicate detection
type DedupConfig struct {
	SimilarityThreshold float64 `mapstructure:"similarity_threshold" json:"similarity_threshold" yaml:"similarity_threshold" toml:"similarity_threshold"` // match at or above (default: 0.6)
	MergeThreshold      float64 `mapstructure:"merge_threshold" json:"merge_threshold" yaml:"merge_threshold" toml:"merge_threshold"`                // "merge" above, "review" otherwise (default: 0.8)
	MaxMatches          int     `mapstructure:"max_matches" json:"max_matches" yaml:"max_matches" toml:"max_matches"`                            // candidates returned (default: 3)
}

// TasksConfig configures task admission
type TasksConfig struct {
	DefaultSection string `mapstructure:"default_section" json:"default_section" yaml:"default_section" toml:"default_section"`
}

// MeetingsConfig configures meeting history aggregation
type MeetingsConfig struct {
	HistoryLimit int `mapstructure:"history_limit" json:"history_limit" yaml:"history_limit" toml:"history_limit"` // newest N meetings on a company page (default: 10)
}

// WatchConfig configures `dex watch`
type WatchConfig struct {
	DebounceMS int `mapstructure:"debounce_ms" json:"debounce_ms" yaml:"debounce_ms" toml:"debounce_ms"`
}

// LogConfig configures the logger
type LogConfig struct {
	JSON bool `mapstructure:"json" json:"json" yaml:"json" toml:"json"`
}

// DefaultDirPermissions is used when creating ~/.dex
const DefaultDirPermissions = 0o755
