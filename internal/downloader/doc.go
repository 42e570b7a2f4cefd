// Package downloader fetches profile sources concurrently into a local
// sources directory.
//
// A run parses a sources manifest, constructs one shared HTTP client, and
// fans the descriptors out over a bounded pool of workers. Each worker
// streams its source into a ".part" staging file and atomically renames it
// into place, so a partially transferred file is never observable under its
// final name. Destinations that already exist are skipped unless the run is
// forced.
//
// Failures are contained: a failing source never cancels its siblings. All
// per-source outcomes are collected after the workers join and collapsed
// into a single aggregate verdict.
//
// # Usage
//
//	err := downloader.DownloadSources(ctx, sourcesList, sourcesDir, downloader.Options{
//	    Workers: cfg.Download.Workers,
//	    Force:   force,
//	    Logger:  log,
//	})
package downloader
