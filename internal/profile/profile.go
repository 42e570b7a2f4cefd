package profile

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/tox-wtf/lfstage/internal/downloader"
	"github.com/tox-wtf/lfstage/internal/manifest"
)

// Layout holds the root directories profiles live under. The zero value is
// not usable; call DefaultLayout, or point the fields at a temp dir in
// tests.
type Layout struct {
	// LibDir holds profile definitions (manifests, scripts, envs).
	LibDir string

	// CacheDir holds downloaded sources and built stages.
	CacheDir string

	// RunDir holds per-build scratch state.
	RunDir string
}

// DefaultLayout returns the system-wide directory layout.
func DefaultLayout() Layout {
	return Layout{
		LibDir:   "/var/lib/lfstage",
		CacheDir: "/var/cache/lfstage",
		RunDir:   "/tmp/lfstage",
	}
}

// MountSourcesDir is where build scripts expect sources inside the build
// mount.
func (l Layout) MountSourcesDir() string {
	return filepath.Join(l.LibDir, "mount", "sources")
}

// Profile is a named build profile: a sources manifest plus an ordered set
// of build scripts.
type Profile struct {
	Name   string
	Layout Layout
}

// New creates a profile handle. It does not touch the filesystem.
func New(name string, layout Layout) *Profile {
	return &Profile{Name: name, Layout: layout}
}

func (p *Profile) String() string { return p.Name }

func (p *Profile) libDir() string   { return filepath.Join(p.Layout.LibDir, "profiles", p.Name) }
func (p *Profile) cacheDir() string { return filepath.Join(p.Layout.CacheDir, "profiles", p.Name) }

// SourcesList is the path to the profile's sources manifest.
func (p *Profile) SourcesList() string { return filepath.Join(p.libDir(), "sources") }

// SourcesDir is where downloaded sources are cached.
func (p *Profile) SourcesDir() string { return filepath.Join(p.cacheDir(), "sources") }

// ScriptsDir holds the profile's numbered build scripts.
func (p *Profile) ScriptsDir() string { return filepath.Join(p.libDir(), "scripts") }

// EnvsDir holds the profile's environment files.
func (p *Profile) EnvsDir() string { return filepath.Join(p.libDir(), "envs") }

// StagesDir is where built stage files are stored.
func (p *Profile) StagesDir() string { return filepath.Join(p.cacheDir(), "stages") }

// TmpDir is the profile's per-build scratch directory.
func (p *Profile) TmpDir() string { return filepath.Join(p.Layout.RunDir, p.Name) }

// TimestampFile records the build timestamp for the scripts to read.
func (p *Profile) TimestampFile() string { return filepath.Join(p.TmpDir(), "timestamp") }

// StageFileNameFile records the output path for the save script.
func (p *Profile) StageFileNameFile() string { return filepath.Join(p.TmpDir(), "stagefilename") }

// RegisteredSources returns the destination file names declared in the
// profile's manifest.
func (p *Profile) RegisteredSources() ([]string, error) {
	dls, err := manifest.ParseFile(p.SourcesList())
	if err != nil {
		return nil, err
	}

	names := make([]string, len(dls))
	for i, dl := range dls {
		names[i] = dl.Dest
	}
	return names, nil
}

// CollectBuildScripts returns the profile's build scripts in execution
// order. A build script is an executable regular file whose name starts
// with a two-digit numeric prefix ("40-chapter5.sh"); anything else in the
// scripts directory is ignored. Scripts are ordered by prefix value.
func (p *Profile) CollectBuildScripts() ([]string, error) {
	entries, err := os.ReadDir(p.ScriptsDir())
	if err != nil {
		return nil, fmt.Errorf("read scripts dir: %w", err)
	}

	type script struct {
		path  string
		order int
	}

	var scripts []script
	for _, e := range entries {
		if e.IsDir() {
			continue
		}

		name := e.Name()
		order, ok := scriptOrder(name)
		if !ok {
			continue
		}

		path := filepath.Join(p.ScriptsDir(), name)
		fi, err := e.Info()
		if err != nil || fi.Mode()&0o111 == 0 {
			continue
		}

		scripts = append(scripts, script{path: path, order: order})
	}

	sort.SliceStable(scripts, func(i, j int) bool { return scripts[i].order < scripts[j].order })

	paths := make([]string, len(scripts))
	for i, s := range scripts {
		paths[i] = s.path
	}
	return paths, nil
}

// scriptOrder extracts the numeric prefix of a script name.
func scriptOrder(name string) (int, bool) {
	if len(name) < 2 {
		return 0, false
	}
	prefix, _, _ := strings.Cut(name, "-")
	if len(prefix) < 2 {
		return 0, false
	}
	n, err := strconv.Atoi(prefix)
	if err != nil {
		return 0, false
	}
	return n, true
}

// DownloadSources fetches the profile's sources into its sources directory.
func (p *Profile) DownloadSources(ctx context.Context, force bool, opts downloader.Options) error {
	opts.Force = force
	return downloader.DownloadSources(ctx, p.SourcesList(), p.SourcesDir(), opts)
}

// SetupSources copies the registered, materialized sources into mountDir,
// where the build scripts expect them.
func (p *Profile) SetupSources(mountDir string, log *slog.Logger) error {
	registered, err := p.RegisteredSources()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(mountDir, 0o755); err != nil {
		return fmt.Errorf("create mount sources dir: %w", err)
	}

	for _, name := range registered {
		src := filepath.Join(p.SourcesDir(), name)
		if _, err := os.Stat(src); err != nil {
			log.Warn("registered source is not materialized", "source", name)
			continue
		}

		if err := copyFile(src, filepath.Join(mountDir, name)); err != nil {
			return fmt.Errorf("copy source %s: %w", name, err)
		}
		log.Debug("staged source", "source", name)
	}

	return nil
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
