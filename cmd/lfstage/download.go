package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tox-wtf/lfstage/internal/config"
	"github.com/tox-wtf/lfstage/internal/downloader"
	lfhttp "github.com/tox-wtf/lfstage/internal/http"
	"github.com/tox-wtf/lfstage/internal/manifest"
	"github.com/tox-wtf/lfstage/internal/profile"
	"github.com/tox-wtf/lfstage/internal/progress"
)

func runDownload(args []string) int {
	fs := flag.NewFlagSet("download", flag.ExitOnError)

	profileName := fs.String("profile", "", "Profile to download sources for (default: from config)")
	force := fs.Bool("force", false, "Re-download sources whose destinations already exist")
	dry := fs.Bool("dry", false, "List what would be downloaded without fetching")
	showProgress := fs.Bool("progress", false, "Show progress output")
	configPath := fs.String("config", config.DefaultPath, "Path to the config file")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: lfstage download [options]

Download the sources declared in a profile's manifest into its sources
cache. Already-present sources are skipped unless -force is given.

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
	p := profile.New(name, profile.DefaultLayout())

	if _, err := os.Stat(p.SourcesList()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: sources list for profile '%s' does not exist\n", name)
		return ExitInvalidArgs
	}

	if *dry {
		dls, err := manifest.ParseFile(p.SourcesList())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return ExitGeneralError
		}

		fmt.Printf("Would download the following to '%s':\n", p.SourcesDir())
		for _, dl := range dls {
			fmt.Printf(" - %s\n", dl)
		}
		return ExitSuccess
	}

	ctx, cancel := signalContext()
	defer cancel()

	opts := downloader.Options{
		Workers: cfg.Download.Workers,
		HTTP: lfhttp.Options{
			ConnectTimeout: cfg.Download.ConnectTimeout,
			RedirectLimit:  cfg.Download.RedirectLimit,
		},
		Logger: log,
	}

	if *showProgress {
		dls, err := manifest.ParseFile(p.SourcesList())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return ExitGeneralError
		}
		opts.Progress = progress.NewReporter(progress.Options{TotalSources: len(dls)})
	}

	log.Info("downloading sources", "profile", name)
	if err := p.DownloadSources(ctx, *force, opts); err != nil {
		log.Error("source download failed", "profile", name, "error", err)
		return ExitDownloadFailed
	}
	log.Info("downloaded sources", "profile", name)

	return ExitSuccess
}
