package am

import (
	"os"

	"github.com/spf13/viper"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("vault.path", defaultVaultPath())

	v.SetDefault("dedup.similarity_threshold", 0.6)
	v.SetDefault("dedup.merge_threshold", 0.8)
	v.SetDefault("dedup.max_matches", 3)

	v.SetDefault("tasks.default_section", "Next Week")

	v.SetDefault("meetings.history_limit", 10)

	v.SetDefault("watch.debounce_ms", 500)

	v.SetDefault("log.json", false)
}

// BindEnvVars binds keys whose environment names do not follow the DEX_ prefix scheme
func BindEnvVars(v *viper.Viper) {
	_ = v.BindEnv("vault.path", "DEX_VAULT_PATH", "VAULT_PATH")
	_ = v.BindEnv("vault.demo_mode", "DEX_DEMO_MODE")
}

// defaultVaultPath mirrors the environment the vault tooling has always used:
// VAULT_PATH when set, the working directory otherwise.
func defaultVaultPath() string {
	if p := os.Getenv("VAULT_PATH"); p != "" {
		return p
	}
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}

// Defaults returns the default configuration for the vault at vaultPath without
// reading any config file or environment variable.
func Defaults(vaultPath string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	v.Set("vault.path", vaultPath)
	return LoadWithViper(v)
}
