package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tox-wtf/lfstage/internal/config"
	"github.com/tox-wtf/lfstage/internal/downloader"
	lfhttp "github.com/tox-wtf/lfstage/internal/http"
	"github.com/tox-wtf/lfstage/internal/profile"
	"github.com/tox-wtf/lfstage/internal/script"
)

func runBuild(args []string) int {
	fs := flag.NewFlagSet("build", flag.ExitOnError)

	profileName := fs.String("profile", "", "Profile to build (default: from config)")
	stageFile := fs.String("stagefile", "", "Path to save the stage file to (default: under the profile's stages dir)")
	dry := fs.Bool("dry", false, "Show what would be done without building")
	skipStrip := fs.Bool("skip-strip", false, "Don't strip binaries")
	skipReqs := fs.Bool("skip-reqs", false, "Don't check system requirements")
	configPath := fs.String("config", config.DefaultPath, "Path to the config file")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: lfstage build [options]

Build a stage file: download the profile's sources, stage them into the
build mount, and run the profile's numbered build scripts in order.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}

	cfg, log, closeLog, err := loadRuntime(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitConfigError
	}
	defer closeLog()

	name := *profileName
	if name == "" {
		name = cfg.DefaultProfile
	}
	layout := profile.DefaultLayout()
	p := profile.New(name, layout)

	timestamp := time.Now().UTC().Format("20060102-150405")
	out := *stageFile
	if out == "" {
		out = filepath.Join(p.StagesDir(), fmt.Sprintf("lfstage-%s-%s.tar.xz", name, timestamp))
	}

	if *dry {
		fmt.Printf("Would build profile '%s' and save it to '%s' by executing scripts in '%s'\n",
			name, out, p.ScriptsDir())
		return ExitSuccess
	}

	// Scratch state the build scripts read back: the timestamp, the
	// stage file name, and the strip marker.
	if err := os.MkdirAll(p.TmpDir(), 0o755); err != nil {
		log.Error("failed to create profile tmpdir", "error", err)
		return ExitGeneralError
	}
	if err := os.WriteFile(p.TimestampFile(), []byte(timestamp), 0o644); err != nil {
		log.Error("failed to write timestamp", "error", err)
		return ExitGeneralError
	}
	if err := os.WriteFile(p.StageFileNameFile(), []byte(out), 0o644); err != nil {
		log.Error("failed to write stage file name", "error", err)
		return ExitGeneralError
	}
	if cfg.Strip && !*skipStrip {
		if err := os.WriteFile(filepath.Join(p.TmpDir(), "strip"), nil, 0o644); err != nil {
			log.Error("failed to write strip marker", "error", err)
			return ExitGeneralError
		}
	}

	// The save script writes the stage file here.
	if err := os.MkdirAll(p.StagesDir(), 0o755); err != nil {
		log.Error("failed to create stages dir", "error", err)
		return ExitGeneralError
	}

	ctx, cancel := signalContext()
	defer cancel()

	runner := &script.Runner{Logger: log, Jobs: cfg.Jobs}

	if !*skipReqs {
		if err := checkReqs(ctx, runner, p); err != nil {
			log.Error("system does not meet requirements", "error", err)
			return ExitScriptFailed
		}
	}

	opts := downloader.Options{
		Workers: cfg.Download.Workers,
		HTTP: lfhttp.Options{
			ConnectTimeout: cfg.Download.ConnectTimeout,
			RedirectLimit:  cfg.Download.RedirectLimit,
		},
		Logger: log,
	}

	if err := p.DownloadSources(ctx, false, opts); err != nil {
		log.Error("source download failed", "profile", name, "error", err)
		return ExitDownloadFailed
	}

	if err := p.SetupSources(layout.MountSourcesDir(), log); err != nil {
		log.Error("failed to stage sources into the build mount", "error", err)
		return ExitGeneralError
	}

	if err := runner.RunAll(ctx, p); err != nil {
		log.Error("build failed", "profile", name, "error", err)
		return ExitScriptFailed
	}

	if err := confirmStageFile(out); err != nil {
		log.Error("build finished without saving a stage file", "profile", name, "error", err)
		return ExitScriptFailed
	}

	log.Info("built stage file", "profile", name, "stagefile", out)
	return ExitSuccess
}

// checkReqs runs the profile's requirements script, if it has one. The
// script has no numeric prefix, so the build-script collection never picks
// it up.
func checkReqs(ctx context.Context, r *script.Runner, p *profile.Profile) error {
	reqs := filepath.Join(p.ScriptsDir(), "reqs.sh")
	if _, err := os.Stat(reqs); err != nil {
		return nil
	}
	return r.Exec(ctx, p, reqs)
}

// confirmStageFile verifies that the build scripts produced the stage file.
func confirmStageFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("stage file was not produced at %s: %w", path, err)
	}
	return nil
}
