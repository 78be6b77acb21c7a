package storage

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/minio"
)

// TestS3Store_Integration runs the S3 store against a MinIO container
func TestS3Store_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	minioContainer, err := minio.Run(ctx,
		"minio/minio:RELEASE.2024-10-29T16-01-48Z",
		minio.WithUsername("minioadmin"),
		minio.WithPassword("minioadmin"),
	)
	testcontainers.CleanupContainer(t, minioContainer)
	require.NoError(t, err)

	endpoint, err := minioContainer.ConnectionString(ctx)
	require.NoError(t, err)

	store, err := NewS3Store(S3Config{
		Endpoint:  endpoint,
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
	})
	require.NoError(t, err)

	bucket := "dwarfmag-test-" + uuid.New().String()[:8]
	require.NoError(t, store.EnsureBucket(ctx, bucket))
	require.NoError(t, store.EnsureBucket(ctx, bucket))

	base := "s3://" + bucket + "/filters"
	require.NoError(t, store.Put(ctx, base+"/2MASS_J.dat", []byte("12000 0.5\n"), "text/plain"))
	require.NoError(t, store.Put(ctx, base+"/2MASS_H.dat", []byte("16000 0.5\n"), "text/plain"))
	require.NoError(t, store.Put(ctx, base+"/nested/skip.dat", []byte("x"), "text/plain"))

	paths, err := store.List(ctx, base)
	require.NoError(t, err)
	assert.Equal(t, []string{base + "/2MASS_H.dat", base + "/2MASS_J.dat"}, paths)

	rc, err := store.Open(ctx, base+"/2MASS_J.dat")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, "12000 0.5\n", string(data))

	_, err = store.Open(ctx, base+"/missing.dat")
	assert.ErrorIs(t, err, ErrNotFound)

	url, err := store.DownloadURL(ctx, base+"/2MASS_J.dat")
	require.NoError(t, err)
	assert.Contains(t, url, bucket)
}
