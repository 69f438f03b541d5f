// Package site turns human-supplied site names into safe, unique
// filesystem namespaces and seeds them with starter content.
package site

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Sentinel errors raised during namespace provisioning.
var (
	// ErrEmptyName indicates the site name normalized to an empty string.
	ErrEmptyName = errors.New("site name is empty after normalization")
	// ErrAlreadyExists indicates the normalized site directory is taken.
	ErrAlreadyExists = errors.New("site directory already exists")
)

// Subdirectories created under every site root.
const (
	ContentDir = "content"
	DataDir    = "data"
	UploadsDir = "uploads"
	LogsDir    = "logs"
)

// Seeded file names.
const (
	LandingPageFile = "index.html"
	ReadmeFile      = "README.md"
)

// Provisioner creates and removes per-tenant site directory trees under a
// fixed sites root.
type Provisioner struct {
	root     string
	renderer Renderer

	transportHost string
	transportPort int
}

// NewProvisioner constructs a Provisioner rooted at root. The transport
// host and port are baked into the seeded README.
func NewProvisioner(root string, renderer Renderer, transportHost string, transportPort int) *Provisioner {
	return &Provisioner{
		root:          root,
		renderer:      renderer,
		transportHost: transportHost,
		transportPort: transportPort,
	}
}

// Root returns the sites root directory.
func (p *Provisioner) Root() string {
	return p.root
}

// NormalizeName reduces a site name to its directory name: ASCII
// alphanumerics plus '-' and '_' are retained, everything else is dropped,
// and the result is lower-cased.
func NormalizeName(siteName string) string {
	var b strings.Builder
	for _, r := range siteName {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		}
	}
	return b.String()
}

// SitePath resolves the absolute namespace root for a site name. It has no
// side effects and fails with ErrEmptyName when normalization yields
// nothing usable.
func (p *Provisioner) SitePath(siteName string) (string, error) {
	name := NormalizeName(siteName)
	if name == "" {
		return "", ErrEmptyName
	}
	return filepath.Join(p.root, name), nil
}

// Exists reports whether the site directory is already present. Stat
// failures other than absence are returned, not treated as "free".
func (p *Provisioner) Exists(sitePath string) (bool, error) {
	_, errStat := os.Stat(sitePath)
	if errStat == nil {
		return true, nil
	}
	if os.IsNotExist(errStat) {
		return false, nil
	}
	return false, fmt.Errorf("site: stat %s: %w", sitePath, errStat)
}

// Create builds the site directory tree and seeds it with the landing page
// and README. If any step after directory creation fails, the whole tree
// is removed before the error propagates; no orphan directories survive.
func (p *Provisioner) Create(siteName string, features []string) (string, error) {
	sitePath, errPath := p.SitePath(siteName)
	if errPath != nil {
		return "", errPath
	}
	exists, errExists := p.Exists(sitePath)
	if errExists != nil {
		return "", errExists
	}
	if exists {
		return "", fmt.Errorf("%w: %s", ErrAlreadyExists, filepath.Base(sitePath))
	}

	if errMkdir := os.MkdirAll(p.root, 0o755); errMkdir != nil {
		return "", fmt.Errorf("site: create sites root: %w", errMkdir)
	}
	if errMkdir := os.Mkdir(sitePath, 0o755); errMkdir != nil {
		if os.IsExist(errMkdir) {
			return "", fmt.Errorf("%w: %s", ErrAlreadyExists, filepath.Base(sitePath))
		}
		return "", fmt.Errorf("site: create site root: %w", errMkdir)
	}

	if errSeed := p.seed(sitePath, siteName, features); errSeed != nil {
		if errRemove := p.Remove(sitePath); errRemove != nil {
			return "", fmt.Errorf("site: rollback after seed failure: %w (seed error: %v)", errRemove, errSeed)
		}
		return "", errSeed
	}
	return sitePath, nil
}

// seed creates the subdirectories and writes the starter files.
func (p *Provisioner) seed(sitePath, siteName string, features []string) error {
	for _, dir := range []string{ContentDir, DataDir, UploadsDir, LogsDir} {
		if errMkdir := os.MkdirAll(filepath.Join(sitePath, dir), 0o755); errMkdir != nil {
			return fmt.Errorf("site: create %s dir: %w", dir, errMkdir)
		}
	}

	landing, errRender := p.renderer.RenderLandingPage(siteName, features)
	if errRender != nil {
		return errRender
	}
	if errWrite := os.WriteFile(filepath.Join(sitePath, ContentDir, LandingPageFile), landing, 0o644); errWrite != nil {
		return fmt.Errorf("site: write landing page: %w", errWrite)
	}

	readme, errRender := p.renderer.RenderReadme(siteName, features, p.transportHost, p.transportPort)
	if errRender != nil {
		return errRender
	}
	if errWrite := os.WriteFile(filepath.Join(sitePath, ReadmeFile), readme, 0o644); errWrite != nil {
		return fmt.Errorf("site: write readme: %w", errWrite)
	}
	return nil
}

// Remove deletes a site directory tree. The path must sit directly under
// the sites root.
func (p *Provisioner) Remove(sitePath string) error {
	cleaned := filepath.Clean(sitePath)
	if filepath.Dir(cleaned) != filepath.Clean(p.root) {
		return fmt.Errorf("site: refusing to remove path outside sites root: %s", sitePath)
	}
	if errRemove := os.RemoveAll(cleaned); errRemove != nil {
		return fmt.Errorf("site: remove site tree: %w", errRemove)
	}
	return nil
}
