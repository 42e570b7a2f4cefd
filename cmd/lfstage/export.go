package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/s3blob"

	"github.com/tox-wtf/lfstage/internal/config"
	"github.com/tox-wtf/lfstage/internal/profile"
	"github.com/tox-wtf/lfstage/internal/stage"
)

func runExport(args []string) int {
	fs := flag.NewFlagSet("export", flag.ExitOnError)

	profileName := fs.String("profile", "", "Profile whose stage file to export (default: from config)")
	bucketURL := fs.String("bucket", "", "Destination bucket URL (required; file://, s3://, gs://)")
	object := fs.String("object", "", "Destination object key (default: stages/<stage file name>)")
	stageFile := fs.String("stagefile", "", "Stage file to export (default: newest in the profile's stages dir)")
	dry := fs.Bool("dry", false, "Show what would be exported without uploading")
	configPath := fs.String("config", config.DefaultPath, "Path to the config file")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: lfstage export [options]

Export a built stage file to object storage.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}

	if *bucketURL == "" {
		fmt.Fprintln(os.Stderr, "Error: -bucket is required")
		fs.Usage()
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

	src := *stageFile
	if src == "" {
		src, err = newestStageFile(p.StagesDir())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return ExitGeneralError
		}
	}

	key := *object
	if key == "" {
		key = "stages/" + filepath.Base(src)
	}

	if *dry {
		fmt.Printf("Would export '%s' to '%s' as '%s'\n", src, *bucketURL, key)
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

	if err := stage.Export(ctx, bucket, key, src); err != nil {
		log.Error("export failed", "stagefile", src, "error", err)
		return ExitStorageError
	}

	log.Info("exported stage file", "profile", name, "stagefile", src, "object", key)
	fmt.Printf("Exported '%s' to '%s'\n", src, *bucketURL)
	return ExitSuccess
}

// newestStageFile picks the most recently modified stage file in dir.
func newestStageFile(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read stages dir: %w", err)
	}

	var (
		newest     string
		newestTime int64
	)
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".xz" {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		if mt := fi.ModTime().UnixNano(); newest == "" || mt > newestTime {
			newest = filepath.Join(dir, e.Name())
			newestTime = mt
		}
	}

	if newest == "" {
		return "", fmt.Errorf("no stage files in %s", dir)
	}
	return newest, nil
}
