package blob

import (
	"context"
	"testing"

	"medchain/internal/domain/entity"
	domainerrors "medchain/internal/domain/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageStore_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, "mem://")
	require.NoError(t, err)
	defer store.Close()

	image := &entity.UploadedImage{Filename: "lot.png", ContentType: "image/png", Data: []byte{0x89, 0x50, 0x4E, 0x47}}
	require.NoError(t, store.Put(ctx, "orphans/1/image", image))

	got, err := store.Get(ctx, "orphans/1/image")
	require.NoError(t, err)
	assert.Equal(t, image.Filename, got.Filename)
	assert.Equal(t, image.ContentType, got.ContentType)
	assert.Equal(t, image.Data, got.Data)

	require.NoError(t, store.Delete(ctx, "orphans/1/image"))
	require.NoError(t, store.Delete(ctx, "orphans/1/image"))

	_, err = store.Get(ctx, "orphans/1/image")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestImageStore_FileBucket(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, "file://"+t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Put(ctx, "equipment", &entity.UploadedImage{Filename: "x.jpg", Data: []byte("jpeg")}))

	got, err := store.Get(ctx, "equipment")
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg"), got.Data)
	assert.Equal(t, "x.jpg", got.Filename)
}
