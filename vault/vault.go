package vault

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/natefinch/atomic"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/teranos/dex/errors"
	"github.com/teranos/dex/logger"
)

const (
	filePerms = 0o644
	dirPerms  = 0o755
)

// Vault gives access to a Markdown vault on disk.
//
// Nothing is cached: the demo flag and every document are read fresh for each
// operation, since the files may be edited between calls.
type Vault struct {
	root         string
	demoOverride *bool
	log          *zap.SugaredLogger
}

// New returns a vault rooted at root. demoOverride, when non-nil, takes
// precedence over demo_mode in System/user-profile.yaml.
func New(root string, demoOverride *bool) *Vault {
	return &Vault{
		root:         filepath.Clean(root),
		demoOverride: demoOverride,
		log:          logger.ComponentLogger("vault"),
	}
}

// Root returns the vault root directory
func (v *Vault) Root() string { return v.root }

// DemoMode reports whether demo mode is on right now.
func (v *Vault) DemoMode() bool {
	if v.demoOverride != nil {
		return *v.demoOverride
	}

	path := filepath.Join(v.root, filepath.FromSlash(ProfileFile))
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			v.log.Warnw("Cannot read user profile", logger.FieldFile, path, logger.FieldError, err)
		}
		return false
	}

	var profile struct {
		DemoMode bool `yaml:"demo_mode"`
	}
	if err := yaml.Unmarshal(data, &profile); err != nil {
		v.log.Warnw("Cannot parse user profile", logger.FieldFile, path, logger.FieldError, err)
		return false
	}
	return profile.DemoMode
}

// Layout resolves demo mode once and returns the paths for one operation.
func (v *Vault) Layout() Layout {
	return NewLayout(v.root, v.DemoMode())
}

// Scan lists every Markdown document under the layout base, sorted.
// Hidden directories are skipped, and outside demo mode so is the demo tree,
// so anchors never leak between the two.
func (l Layout) Scan() ([]string, error) {
	if _, err := os.Stat(l.Base); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.WrapIO(err, l.Base)
	}

	matches, err := doublestar.Glob(os.DirFS(l.Base), "**/*.md", doublestar.WithFilesOnly())
	if err != nil {
		return nil, errors.Wrapf(err, "scan %s", l.Base)
	}

	files := make([]string, 0, len(matches))
	for _, m := range matches {
		if hidden(m) {
			continue
		}
		if !l.Demo && (m == DemoDir || strings.HasPrefix(m, DemoDir+"/")) {
			continue
		}
		files = append(files, filepath.Join(l.Base, filepath.FromSlash(m)))
	}
	sort.Strings(files)
	return files, nil
}

// Glob lists the documents matching pattern relative to dir, sorted.
// A missing dir yields no documents.
func Glob(dir, pattern string) ([]string, error) {
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.WrapIO(err, dir)
	}
	matches, err := doublestar.Glob(os.DirFS(dir), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, errors.Wrapf(err, "glob %s in %s", pattern, dir)
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, filepath.Join(dir, filepath.FromSlash(m)))
	}
	sort.Strings(out)
	return out, nil
}

func hidden(rel string) bool {
	for _, part := range strings.Split(rel, "/") {
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}

// Read returns the whole document. A missing file is a NotFound error.
func Read(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", errors.Mark(errors.WrapIO(err, path), errors.ErrNotFound)
		}
		return "", errors.WrapIO(err, path)
	}
	return string(data), nil
}

// Write replaces the whole document atomically, creating parent directories.
func Write(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), dirPerms); err != nil {
		return errors.WrapIO(err, filepath.Dir(path))
	}

	_, statErr := os.Stat(path)
	created := os.IsNotExist(statErr)

	if err := atomic.WriteFile(path, strings.NewReader(content)); err != nil {
		return errors.WrapIO(err, path)
	}

	// atomic.WriteFile leaves new files with the temp file's 0600
	if created {
		if err := os.Chmod(path, filePerms); err != nil {
			return errors.WrapIO(err, path)
		}
	}
	return nil
}

// Exists reports whether path is an existing regular file
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
