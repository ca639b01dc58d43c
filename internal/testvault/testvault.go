// Package testvault builds throwaway Markdown vaults for tests.
package testvault

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/teranos/dex/vault"
)

// Clock is the fixed time tests run at: 2026-01-15 10:30 local time.
var Clock = time.Date(2026, 1, 15, 10, 30, 0, 0, time.Local)

// Now returns Clock; pass it where a func() time.Time is expected.
func Now() time.Time { return Clock }

// Vault is a vault rooted in a test temp dir
type Vault struct {
	t    testing.TB
	Root string
}

// New creates an empty vault
func New(t testing.TB) *Vault {
	t.Helper()
	return &Vault{t: t, Root: t.TempDir()}
}

// Path returns the absolute path of a vault-relative file
func (v *Vault) Path(rel string) string {
	return filepath.Join(v.Root, filepath.FromSlash(rel))
}

// Write creates rel with content, making parent directories
func (v *Vault) Write(rel, content string) string {
	v.t.Helper()
	path := v.Path(rel)
	require.NoError(v.t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(v.t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// Lines writes rel as the given lines joined with newlines plus a final newline
func (v *Vault) Lines(rel string, lines ...string) string {
	v.t.Helper()
	return v.Write(rel, strings.Join(lines, "\n")+"\n")
}

// Read returns the content of rel
func (v *Vault) Read(rel string) string {
	v.t.Helper()
	data, err := os.ReadFile(v.Path(rel))
	require.NoError(v.t, err)
	return string(data)
}

// Exists reports whether rel exists
func (v *Vault) Exists(rel string) bool {
	_, err := os.Stat(v.Path(rel))
	return err == nil
}

// Layout returns the non-demo layout of the vault
func (v *Vault) Layout() vault.Layout {
	return vault.NewLayout(v.Root, false)
}

// Person writes a person page under People/External
func (v *Vault) Person(name, company, role string) string {
	v.t.Helper()
	rel := "People/External/" + strings.ReplaceAll(name, " ", "_") + ".md"
	v.Lines(rel,
		"# "+name,
		"",
		"| Field | Value |",
		"|-------|-------|",
		"| **Company** | "+company+" |",
		"| **Role** | "+role+" |",
		"| **Email** | "+strings.ToLower(strings.Fields(name)[0])+"@example.com |",
		"",
		"**Last interaction:** 2026-01-10",
	)
	return rel
}
