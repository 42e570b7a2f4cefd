package stage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gocloud.dev/blob"
)

// Export streams a built stage file into object storage under key.
func Export(ctx context.Context, bucket *blob.Bucket, key, stageFile string) error {
	f, err := os.Open(stageFile)
	if err != nil {
		return fmt.Errorf("open stage file: %w", err)
	}
	defer f.Close()

	w, err := bucket.NewWriter(ctx, key, nil)
	if err != nil {
		return fmt.Errorf("open bucket writer: %w", err)
	}

	if _, err := io.Copy(w, f); err != nil {
		w.Close()
		return fmt.Errorf("write stage object: %w", err)
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize stage object: %w", err)
	}

	return nil
}

// Import streams an object from storage to a local file. Like source
// downloads, the object lands in a ".part" staging file and is renamed
// into place only once fully written.
func Import(ctx context.Context, bucket *blob.Bucket, key, dest string) error {
	r, err := bucket.NewReader(ctx, key, nil)
	if err != nil {
		return fmt.Errorf("open bucket reader: %w", err)
	}
	defer r.Close()

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create destination dir: %w", err)
	}

	part := dest + ".part"
	f, err := os.Create(part)
	if err != nil {
		return fmt.Errorf("create staging file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(part)
		return fmt.Errorf("write staging file: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(part)
		return fmt.Errorf("close staging file: %w", err)
	}

	if err := os.Rename(part, dest); err != nil {
		os.Remove(part)
		return fmt.Errorf("promote staging file: %w", err)
	}

	return nil
}
