package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrUnsupportedImage is returned for uploads that do not decode as a
// supported image format.
var ErrUnsupportedImage = errors.New("unsupported image format")

// MaxUploadBytes caps a single image upload at 10 MB.
const MaxUploadBytes = 10 << 20

// thumbnailWidth is the fixed width of generated thumbnails; height
// follows the aspect ratio.
const thumbnailWidth = 300

// Image describes one stored upload.
type Image struct {
	Key          string `json:"key"`
	ThumbnailKey string `json:"thumbnailKey"`
	ContentType  string `json:"contentType"`
	Size         int    `json:"size"`
}

// Service processes and stores image uploads.
type Service struct {
	storage Storage
	logger  zerolog.Logger
}

// NewService creates a new media service.
func NewService(storage Storage, logger zerolog.Logger) *Service {
	return &Service{storage: storage, logger: logger}
}

// Upload decodes an uploaded image, re-encodes it as JPEG, renders a
// thumbnail and stores both. Re-encoding normalizes formats and strips
// whatever metadata the original carried.
func (s *Service) Upload(ctx context.Context, filename string, r io.Reader) (*Image, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	if len(data) > MaxUploadBytes {
		return nil, fmt.Errorf("upload exceeds %d bytes", MaxUploadBytes)
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedImage, filename)
	}

	id := uuid.New().String()
	key := "media/" + id + ".jpg"
	thumbKey := "media/thumb/" + id + ".jpg"

	var full bytes.Buffer
	if err := imaging.Encode(&full, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, fmt.Errorf("encoding image: %w", err)
	}
	if err := s.storage.Put(ctx, key, "image/jpeg", full.Bytes()); err != nil {
		return nil, err
	}

	thumb := imaging.Resize(img, thumbnailWidth, 0, imaging.Lanczos)
	var thumbBuf bytes.Buffer
	if err := imaging.Encode(&thumbBuf, thumb, imaging.JPEG, imaging.JPEGQuality(80)); err != nil {
		return nil, fmt.Errorf("encoding thumbnail: %w", err)
	}
	if err := s.storage.Put(ctx, thumbKey, "image/jpeg", thumbBuf.Bytes()); err != nil {
		// The full image is already stored, clean it up so nothing
		// dangles without a thumbnail.
		if delErr := s.storage.Delete(ctx, key); delErr != nil {
			s.logger.Warn().Err(delErr).Str("key", key).Msg("failed to clean up image after thumbnail error")
		}
		return nil, err
	}

	s.logger.Debug().
		Str("key", key).
		Int("size", full.Len()).
		Msg("stored image upload")

	return &Image{
		Key:          key,
		ThumbnailKey: thumbKey,
		ContentType:  "image/jpeg",
		Size:         full.Len(),
	}, nil
}

// Get retrieves a stored object's bytes.
func (s *Service) Get(ctx context.Context, key string) ([]byte, error) {
	return s.storage.Get(ctx, key)
}

// ListKeys returns every stored image key, thumbnails excluded.
func (s *Service) ListKeys(ctx context.Context) ([]string, error) {
	keys, err := s.storage.List(ctx, "media/")
	if err != nil {
		return nil, err
	}
	out := keys[:0]
	for _, key := range keys {
		if !strings.HasPrefix(key, "media/thumb/") {
			out = append(out, key)
		}
	}
	return out, nil
}

// Delete removes an image and its thumbnail.
func (s *Service) Delete(ctx context.Context, key string) error {
	if err := s.storage.Delete(ctx, key); err != nil {
		return err
	}

	if thumbKey := ThumbnailKey(key); thumbKey != "" {
		if err := s.storage.Delete(ctx, thumbKey); err != nil && !errors.Is(err, ErrObjectNotFound) {
			s.logger.Warn().Err(err).Str("key", thumbKey).Msg("failed to delete thumbnail")
		}
	}
	return nil
}

// ThumbnailKey derives the thumbnail key for a stored image key, or
// returns empty for keys outside the media prefix.
func ThumbnailKey(key string) string {
	name, ok := strings.CutPrefix(key, "media/")
	if !ok || strings.HasPrefix(name, "thumb/") {
		return ""
	}
	return "media/thumb/" + name
}
