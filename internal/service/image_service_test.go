package service

import (
	"bytes"
	"context"
	"testing"

	"yatube/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageService_StoreDecodable(t *testing.T) {
	e := newEnv(t, 10, "")
	ctx := context.Background()
	data := pngBytes(t, 4, 3)

	img, err := e.images.Store(ctx, ImageUpload{Filename: "a.png", ContentType: "application/octet-stream", Data: data})
	require.NoError(t, err)
	assert.Equal(t, ContentHash(data), img.Hash)
	assert.Equal(t, "image/png", img.ContentType)
	assert.Equal(t, 4, img.Width)
	assert.Equal(t, 3, img.Height)
	assert.Equal(t, int64(len(data)), img.SizeBytes)

	again, err := e.images.Store(ctx, ImageUpload{Data: data})
	require.NoError(t, err)
	assert.Equal(t, img.Hash, again.Hash)
	assert.Equal(t, int64(1), e.countRows(t, &models.Image{}))

	fetched, err := e.images.Get(ctx, img.Hash)
	require.NoError(t, err)
	assert.Equal(t, data, fetched.Data)
}

func TestImageService_StoreOpaque(t *testing.T) {
	e := newEnv(t, 10, "")
	data := []byte{0x00, 0x01, 0x02, 0xfe, 0xff}

	img, err := e.images.Store(context.Background(), ImageUpload{Filename: "blob.heic", ContentType: "image/heic", Data: data})
	require.NoError(t, err)
	assert.Equal(t, "image/heic", img.ContentType)
	assert.Zero(t, img.Width)
	assert.Zero(t, img.Height)
}

func TestImageService_StoreRejects(t *testing.T) {
	e := newEnv(t, 10, "")
	ctx := context.Background()

	_, err := e.images.Store(ctx, ImageUpload{})
	assert.True(t, models.HasCode(err, models.CodeValidation))

	tooLarge := bytes.Repeat([]byte{1}, 1024*1024+1)
	_, err = e.images.Store(ctx, ImageUpload{Data: tooLarge})
	appErr := models.AsAppError(err)
	assert.Equal(t, models.CodeValidation, appErr.Code)
	assert.Equal(t, "File too large (max 1MB)", appErr.Fields["image"])
}

func TestImageService_GetUnknown(t *testing.T) {
	e := newEnv(t, 10, "")
	ctx := context.Background()

	_, err := e.images.Get(ctx, "not-a-hash")
	assert.True(t, models.HasCode(err, models.CodeNotFound))

	_, err = e.images.Get(ctx, ContentHash([]byte("missing")))
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

func TestDetectContentType(t *testing.T) {
	assert.Equal(t, "image/png", detectContentType(ImageUpload{Data: pngBytes(t, 1, 1)}))
	assert.Equal(t, "image/heic", detectContentType(ImageUpload{ContentType: "Image/HEIC; q=1", Data: []byte{0, 1}}))
	assert.Equal(t, "application/octet-stream", detectContentType(ImageUpload{Data: []byte{0, 1}}))
}
