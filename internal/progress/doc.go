// Package progress provides progress reporting for source download runs.
//
// The reporter prints a periodic one-line status and a final summary to
// stderr. It also provides byte-size parsing and formatting shared with the
// configuration layer.
//
// # Usage
//
//	reporter := progress.NewReporter(progress.Options{TotalSources: len(dls)})
//	reporter.Start()
//	defer reporter.Stop()
//
//	// from the download workers
//	reporter.SourceStarted()
//	reporter.SourceDownloaded(n)
//
// # Output Format
//
//	[lfstage] Downloading 87 sources
//	[lfstage] Sources: 42/87 | In flight: 16 | Fetched: 1.13 GB
//	[lfstage] Done: 40 downloaded | 2 skipped | 0 failed | 1.13 GB in 3m 12s
package progress
