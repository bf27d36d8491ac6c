package media_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripdesk/tripdesk/internal/media"
)

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestService_Upload(t *testing.T) {
	storage := media.NewInMemoryStorage()
	svc := media.NewService(storage, zerolog.Nop())
	ctx := context.Background()

	stored, err := svc.Upload(ctx, "zdjecie.png", bytes.NewReader(testPNG(t, 600, 400)))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(stored.Key, "media/"))
	assert.True(t, strings.HasSuffix(stored.Key, ".jpg"))
	assert.Equal(t, "image/jpeg", stored.ContentType)
	assert.Equal(t, media.ThumbnailKey(stored.Key), stored.ThumbnailKey)

	// Both objects exist and the original re-encoded as JPEG.
	full, err := storage.Get(ctx, stored.Key)
	require.NoError(t, err)
	img, err := imaging.Decode(bytes.NewReader(full))
	require.NoError(t, err)
	assert.Equal(t, 600, img.Bounds().Dx())

	thumbBytes, err := storage.Get(ctx, stored.ThumbnailKey)
	require.NoError(t, err)
	thumb, err := imaging.Decode(bytes.NewReader(thumbBytes))
	require.NoError(t, err)
	assert.Equal(t, 300, thumb.Bounds().Dx())
	assert.Equal(t, 200, thumb.Bounds().Dy())
}

func TestService_Upload_RejectsNonImage(t *testing.T) {
	svc := media.NewService(media.NewInMemoryStorage(), zerolog.Nop())

	_, err := svc.Upload(context.Background(), "dokument.pdf", strings.NewReader("%PDF-1.4 not an image"))
	assert.ErrorIs(t, err, media.ErrUnsupportedImage)
}

func TestService_Delete_RemovesThumbnail(t *testing.T) {
	storage := media.NewInMemoryStorage()
	svc := media.NewService(storage, zerolog.Nop())
	ctx := context.Background()

	stored, err := svc.Upload(ctx, "zdjecie.png", bytes.NewReader(testPNG(t, 100, 100)))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, stored.Key))

	_, err = storage.Get(ctx, stored.Key)
	assert.ErrorIs(t, err, media.ErrObjectNotFound)
	_, err = storage.Get(ctx, stored.ThumbnailKey)
	assert.ErrorIs(t, err, media.ErrObjectNotFound)
}

func TestThumbnailKey(t *testing.T) {
	assert.Equal(t, "media/thumb/abc.jpg", media.ThumbnailKey("media/abc.jpg"))
	assert.Equal(t, "", media.ThumbnailKey("media/thumb/abc.jpg"))
	assert.Equal(t, "", media.ThumbnailKey("other/abc.jpg"))
}
