package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := NewLocalStore()

	path := filepath.Join(dir, "plots", "mags.png")
	require.NoError(t, store.Put(ctx, path, []byte("png-bytes"), "image/png"))

	rc, err := store.Open(ctx, path)
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
}

func TestLocalStoreOpenMissing(t *testing.T) {
	_, err := NewLocalStore().Open(context.Background(), filepath.Join(t.TempDir(), "nope.txt"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStoreListSkipsDirectories(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.dat"), nil, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.dat"), nil, 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0755))

	paths, err := NewLocalStore().List(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.dat"), filepath.Join(dir, "b.dat")}, paths)

	_, err = NewLocalStore().List(context.Background(), filepath.Join(dir, "missing"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRouterWithoutS3(t *testing.T) {
	ctx := context.Background()
	r := NewRouter(NewLocalStore(), nil)

	_, err := r.Open(ctx, "s3://bucket/filters/J.dat")
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "x.txt")
	require.NoError(t, r.Put(ctx, path, []byte("x"), "text/plain"))
	paths, err := r.List(ctx, filepath.Dir(path))
	require.NoError(t, err)
	assert.Equal(t, []string{path}, paths)
}

func TestSplitPath(t *testing.T) {
	bucket, key, err := SplitPath("s3://grids/filters/2MASS_J.dat")
	require.NoError(t, err)
	assert.Equal(t, "grids", bucket)
	assert.Equal(t, "filters/2MASS_J.dat", key)

	_, _, err = SplitPath("s3:///key")
	assert.Error(t, err)

	_, _, err = SplitPath("/local/path")
	assert.Error(t, err)

	assert.True(t, IsS3("s3://b/k"))
	assert.False(t, IsS3("models/sp_t500.txt"))
}
