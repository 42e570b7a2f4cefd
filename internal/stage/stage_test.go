package stage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/memblob"
)

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	bucket, err := blob.OpenBucket(ctx, "mem://")
	require.NoError(t, err)
	defer bucket.Close()

	stageFile := filepath.Join(t.TempDir(), "lfstage-test-20260831.tar.xz")
	content := []byte("pretend this is a stage tarball")
	require.NoError(t, os.WriteFile(stageFile, content, 0o644))

	require.NoError(t, Export(ctx, bucket, "stages/test.tar.xz", stageFile))

	dest := filepath.Join(t.TempDir(), "imported", "test.tar.xz")
	require.NoError(t, Import(ctx, bucket, "stages/test.tar.xz", dest))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	require.Equal(t, content, data)

	_, err = os.Stat(dest + ".part")
	require.True(t, os.IsNotExist(err), "staging file must not survive a successful import")
}

func TestExportMissingStageFile(t *testing.T) {
	ctx := context.Background()
	bucket, err := blob.OpenBucket(ctx, "mem://")
	require.NoError(t, err)
	defer bucket.Close()

	err = Export(ctx, bucket, "stages/missing.tar.xz", filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}

func TestImportMissingObject(t *testing.T) {
	ctx := context.Background()
	bucket, err := blob.OpenBucket(ctx, "mem://")
	require.NoError(t, err)
	defer bucket.Close()

	dest := filepath.Join(t.TempDir(), "out.tar.xz")
	err = Import(ctx, bucket, "stages/missing.tar.xz", dest)
	require.Error(t, err)

	_, statErr := os.Stat(dest)
	require.True(t, os.IsNotExist(statErr), "failed import must not leave a destination file")
}
