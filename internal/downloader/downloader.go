package downloader

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	lfhttp "github.com/tox-wtf/lfstage/internal/http"
	"github.com/tox-wtf/lfstage/internal/manifest"
	"github.com/tox-wtf/lfstage/internal/progress"
)

// Outcome classifies the result of a single source fetch.
type Outcome int

const (
	// OutcomeMaterialized means new content was written and promoted to
	// its final name.
	OutcomeMaterialized Outcome = iota

	// OutcomeSkipped means the destination already existed and was not
	// re-fetched.
	OutcomeSkipped

	// OutcomeFailed means the fetch failed; Result.Err carries the cause.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeMaterialized:
		return "materialized"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is the outcome of one descriptor's fetch.
type Result struct {
	Download manifest.Download
	Outcome  Outcome
	Err      error
}

// AggregateError reports that one or more sources in a run failed. The
// successfully fetched files stay on disk; per-source causes are logged,
// not carried here.
type AggregateError struct {
	Failed int
	Total  int
}

func (e *AggregateError) Error() string {
	return fmt.Sprintf("failed to download %d of %d sources", e.Failed, e.Total)
}

// Options configures a download run.
type Options struct {
	// Workers bounds the number of in-flight fetches.
	// Default: 16
	Workers int

	// Force re-downloads sources whose destinations already exist.
	Force bool

	// HTTP configures the shared client.
	HTTP lfhttp.Options

	// Logger receives per-source progress and failure logs.
	// Default: slog.Default()
	Logger *slog.Logger

	// Progress is an optional progress reporter.
	Progress *progress.Reporter
}

// Run fetches every download into destDir and returns one Result per
// descriptor, in completion order.
//
// The destination directory is created if absent. One HTTP client is
// constructed for the whole run and shared by a bounded pool of workers; a
// client construction or directory creation error is fatal and returns
// before any fetch starts. Individual fetch failures are not: every
// descriptor is attempted regardless of how its siblings fare, and the
// failures are reported in the returned results. A cancelled context stops
// dispatch and returns the context error alongside the results collected so
// far.
func Run(ctx context.Context, dls []manifest.Download, destDir string, opts Options) ([]Result, error) {
	if opts.Workers <= 0 {
		opts.Workers = 16
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, fmt.Errorf("create sources dir: %w", err)
	}

	client, err := lfhttp.NewClient(opts.HTTP)
	if err != nil {
		return nil, fmt.Errorf("create http client: %w", err)
	}

	jobs := make(chan manifest.Download)
	resultCh := make(chan Result)

	var wg sync.WaitGroup
	for i := 0; i < opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for dl := range jobs {
				dest := filepath.Join(destDir, dl.Dest)
				outcome, err := fetch(ctx, client, dl.URL, dest, opts)
				resultCh <- Result{Download: dl, Outcome: outcome, Err: err}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, dl := range dls {
			select {
			case jobs <- dl:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	// Reduce after all workers join; no shared failure flag.
	results := make([]Result, 0, len(dls))
	for res := range resultCh {
		results = append(results, res)
	}

	// Cancellation stops the feeder mid-manifest; a short result set must
	// not read as success.
	if len(results) < len(dls) {
		return results, ctx.Err()
	}

	return results, nil
}

// DownloadSources is the entry point consumed by the profile layer: parse
// the manifest at manifestPath, fetch everything into destDir, and collapse
// the per-source outcomes into a single verdict.
func DownloadSources(ctx context.Context, manifestPath, destDir string, opts Options) error {
	dls, err := manifest.ParseFile(manifestPath)
	if err != nil {
		return err
	}

	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	if opts.Progress != nil {
		opts.Progress.Start()
		defer opts.Progress.Stop()
	}

	results, err := Run(ctx, dls, destDir, opts)
	if err != nil {
		return err
	}

	failed := 0
	for _, res := range results {
		if res.Outcome == OutcomeFailed {
			failed++
			opts.Logger.Error("failed to download source",
				"url", res.Download.URL,
				"dest", res.Download.Dest,
				"error", res.Err,
			)
		}
	}

	if failed > 0 {
		return &AggregateError{Failed: failed, Total: len(dls)}
	}

	return nil
}

// fetch downloads one source to dest.
//
// The request is always issued; an existing destination is skipped (unless
// forced) after the headers arrive, so the upstream modtime is available
// for the freshness diagnostic. The body streams into dest + ".part" and
// the staging file is renamed into place only once fully written, so a
// partial transfer is never observable under the final name.
func fetch(ctx context.Context, client *lfhttp.Client, url, dest string, opts Options) (Outcome, error) {
	log := opts.Logger
	if opts.Progress != nil {
		opts.Progress.SourceStarted()
	}

	log.Debug("fetching", "url", url)
	resp, err := client.Get(ctx, url)
	if err != nil {
		if opts.Progress != nil {
			opts.Progress.SourceFailed()
		}
		return OutcomeFailed, err
	}
	defer resp.Body.Close()

	if !opts.Force {
		if fi, err := os.Stat(dest); err == nil {
			// Freshness is diagnostic only: an extant destination is
			// always skipped unless -force.
			if upstream, ok := lfhttp.LastModified(resp); ok && upstream.After(fi.ModTime()) {
				log.Debug("local copy is older than upstream", "dest", dest, "upstream", upstream, "local", fi.ModTime())
			}
			log.Debug("skipping extant file", "dest", dest)
			if opts.Progress != nil {
				opts.Progress.SourceSkipped()
			}
			return OutcomeSkipped, nil
		}
	}

	log.Info("downloading", "url", url)
	part := dest + ".part"
	f, err := os.Create(part)
	if err != nil {
		if opts.Progress != nil {
			opts.Progress.SourceFailed()
		}
		return OutcomeFailed, fmt.Errorf("create staging file: %w", err)
	}

	n, err := io.Copy(f, resp.Body)
	if err != nil {
		f.Close()
		os.Remove(part)
		if opts.Progress != nil {
			opts.Progress.SourceFailed()
		}
		return OutcomeFailed, fmt.Errorf("write staging file: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(part)
		if opts.Progress != nil {
			opts.Progress.SourceFailed()
		}
		return OutcomeFailed, fmt.Errorf("close staging file: %w", err)
	}

	// Staging file lives next to dest, so the rename is same-filesystem
	// and atomic.
	if err := os.Rename(part, dest); err != nil {
		os.Remove(part)
		if opts.Progress != nil {
			opts.Progress.SourceFailed()
		}
		return OutcomeFailed, fmt.Errorf("promote staging file: %w", err)
	}

	log.Info("downloaded", "url", url, "dest", dest, "bytes", n)
	if opts.Progress != nil {
		opts.Progress.SourceDownloaded(n)
	}
	return OutcomeMaterialized, nil
}
