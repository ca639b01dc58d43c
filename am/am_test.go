package am

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	// Isolated viper instance without user/project config
	v := viper.New()
	SetDefaults(v)

	cfg, err := LoadWithViper(v)
	require.NoError(t, err)

	assert.NotEmpty(t, cfg.Vault.Path)
	assert.Nil(t, cfg.Vault.DemoMode)
	assert.Equal(t, 0.6, cfg.Dedup.SimilarityThreshold)
	assert.Equal(t, 0.8, cfg.Dedup.MergeThreshold)
	assert.Equal(t, 3, cfg.Dedup.MaxMatches)
	assert.Equal(t, "Next Week", cfg.Tasks.DefaultSection)
	assert.Equal(t, 10, cfg.Meetings.HistoryLimit)
	assert.Equal(t, 500, cfg.Watch.DebounceMS)
	assert.False(t, cfg.Log.JSON)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("VAULT_PATH", "/vaults/personal")
	t.Setenv("DEX_DEMO_MODE", "true")

	v := viper.New()
	BindEnvVars(v)
	SetDefaults(v)

	cfg, err := LoadWithViper(v)
	require.NoError(t, err)

	assert.Equal(t, "/vaults/personal", cfg.Vault.Path)
	require.NotNil(t, cfg.Vault.DemoMode)
	assert.True(t, *cfg.Vault.DemoMode)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "am.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[vault]
path = "/srv/vault"

[dedup]
similarity_threshold = 0.7
merge_threshold = 0.9
`), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/vault", cfg.Vault.Path)
	assert.Equal(t, 0.7, cfg.Dedup.SimilarityThreshold)
	assert.Equal(t, 0.9, cfg.Dedup.MergeThreshold)
	assert.Equal(t, 3, cfg.Dedup.MaxMatches, "unset keys keep defaults")
}

func TestMergeConfigFiles_LaterWins(t *testing.T) {
	dir := t.TempDir()
	user := filepath.Join(dir, "user.toml")
	project := filepath.Join(dir, "project.toml")
	require.NoError(t, os.WriteFile(user, []byte("[meetings]\nhistory_limit = 5\n[watch]\ndebounce_ms = 100\n"), 0o644))
	require.NoError(t, os.WriteFile(project, []byte("[meetings]\nhistory_limit = 20\n"), 0o644))

	v := viper.New()
	SetDefaults(v)
	mergeConfigFiles(v, []string{user, filepath.Join(dir, "missing.toml"), project})

	cfg, err := LoadWithViper(v)
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.Meetings.HistoryLimit)
	assert.Equal(t, 100, cfg.Watch.DebounceMS)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		v := viper.New()
		SetDefaults(v)
		cfg, err := LoadWithViper(v)
		require.NoError(t, err)
		return *cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "empty vault path", mutate: func(c *Config) { c.Vault.Path = "" }, wantErr: true},
		{name: "zero similarity", mutate: func(c *Config) { c.Dedup.SimilarityThreshold = 0 }, wantErr: true},
		{name: "similarity above one", mutate: func(c *Config) { c.Dedup.SimilarityThreshold = 1.2 }, wantErr: true},
		{name: "merge below similarity", mutate: func(c *Config) { c.Dedup.MergeThreshold = 0.5 }, wantErr: true},
		{name: "merge equal to similarity", mutate: func(c *Config) { c.Dedup.MergeThreshold = 0.6 }},
		{name: "zero max matches", mutate: func(c *Config) { c.Dedup.MaxMatches = 0 }, wantErr: true},
		{name: "empty default section", mutate: func(c *Config) { c.Tasks.DefaultSection = "" }, wantErr: true},
		{name: "zero history", mutate: func(c *Config) { c.Meetings.HistoryLimit = 0 }, wantErr: true},
		{name: "zero debounce is valid", mutate: func(c *Config) { c.Watch.DebounceMS = 0 }},
		{name: "negative debounce", mutate: func(c *Config) { c.Watch.DebounceMS = -1 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFindProjectConfig(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "am.toml"), []byte(""), 0o644))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(nested))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	found := findProjectConfig()
	// macOS temp dirs resolve through /private
	resolved, err := filepath.EvalSymlinks(filepath.Join(root, "am.toml"))
	require.NoError(t, err)
	foundResolved, err := filepath.EvalSymlinks(found)
	require.NoError(t, err)
	assert.Equal(t, resolved, foundResolved)
}
