package main

import (
	"flag"
	"fmt"
	"os"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/s3blob"

	"github.com/tox-wtf/lfstage/internal/config"
	"github.com/tox-wtf/lfstage/internal/stage"
)

func runImport(args []string) int {
	fs := flag.NewFlagSet("import", flag.ExitOnError)

	bucketURL := fs.String("bucket", "", "Source bucket URL (required; file://, s3://, gs://)")
	object := fs.String("object", "", "Source object key (required)")
	dest := fs.String("dest", "", "Local destination path (required)")
	dry := fs.Bool("dry", false, "Show what would be imported without downloading")
	configPath := fs.String("config", config.DefaultPath, "Path to the config file")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: lfstage import [options]

Import a stage file from object storage to a local path. The file is
staged with a ".part" suffix and renamed into place once fully written.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}

	if *bucketURL == "" || *object == "" || *dest == "" {
		fmt.Fprintln(os.Stderr, "Error: -bucket, -object, and -dest are required")
		fs.Usage()
		return ExitInvalidArgs
	}

	_, log, closeLog, err := loadRuntime(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitConfigError
	}
	defer closeLog()

	if *dry {
		fmt.Printf("Would import '%s' from '%s' to '%s'\n", *object, *bucketURL, *dest)
		return ExitSuccess
	}

	ctx, cancel := signalContext()
	defer cancel()

	bucket, err := blob.OpenBucket(ctx, *bucketURL)
	if err != nil {
		log.Error("failed to open bucket", "bucket", *bucketURL, "error", err)
		return ExitStorageError
	}
	defer bucket.Close()

	if err := stage.Import(ctx, bucket, *object, *dest); err != nil {
		log.Error("import failed", "object", *object, "error", err)
		return ExitStorageError
	}

	log.Info("imported stage file", "object", *object, "dest", *dest)
	fmt.Printf("Imported '%s' to '%s'\n", *object, *dest)
	return ExitSuccess
}
