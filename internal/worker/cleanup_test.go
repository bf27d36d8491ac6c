package worker_test

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripdesk/tripdesk/internal/content"
	"github.com/tripdesk/tripdesk/internal/extrafields"
	"github.com/tripdesk/tripdesk/internal/media"
	"github.com/tripdesk/tripdesk/internal/trip"
	"github.com/tripdesk/tripdesk/internal/worker"
)

func workerTestPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 20, 20))
	for x := 0; x < 20; x++ {
		for y := 0; y < 20; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 10), G: uint8(y * 10), B: 50, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func uploadTestImage(t *testing.T, svc *media.Service) *media.Image {
	t.Helper()
	img, err := svc.Upload(context.Background(), "test.png", bytes.NewReader(workerTestPNG(t)))
	require.NoError(t, err)
	return img
}

func TestCleanupJob_DeletesOrphans(t *testing.T) {
	ctx := context.Background()

	storage := media.NewInMemoryStorage()
	mediaService := media.NewService(storage, zerolog.Nop())
	tripService := trip.NewService(trip.NewInMemoryRepository())
	pageService := content.NewService(content.NewInMemoryRepository())

	kept := uploadTestImage(t, mediaService)
	orphan := uploadTestImage(t, mediaService)

	_, err := tripService.Create(ctx, trip.Trip{
		Name:         "Obóz z galerią",
		Status:       trip.StatusDraft,
		TripType:     trip.TypeSchool,
		CategoryID:   1,
		MainImageURL: "/v1/files/" + kept.Key,
	})
	require.NoError(t, err)

	job := worker.NewCleanupJob(worker.CleanupJobConfig{
		Logger:       zerolog.Nop(),
		TripService:  tripService,
		PageService:  pageService,
		MediaService: mediaService,
	})

	result := job.Run(ctx)

	assert.Equal(t, 1, result.Deleted)
	assert.Zero(t, result.Failed)

	_, err = mediaService.Get(ctx, kept.Key)
	assert.NoError(t, err)
	_, err = mediaService.Get(ctx, orphan.Key)
	assert.ErrorIs(t, err, media.ErrObjectNotFound)
	_, err = mediaService.Get(ctx, orphan.ThumbnailKey)
	assert.ErrorIs(t, err, media.ErrObjectNotFound)
}

func TestCleanupJob_KeepsExtraFieldImages(t *testing.T) {
	ctx := context.Background()

	storage := media.NewInMemoryStorage()
	mediaService := media.NewService(storage, zerolog.Nop())
	tripService := trip.NewService(trip.NewInMemoryRepository())

	img := uploadTestImage(t, mediaService)

	url := "/v1/files/" + img.Key
	nodes := []extrafields.Node{{
		Key:        "hero",
		Label:      "Hero",
		Type:       extrafields.TypeImage,
		ImageValue: &url,
	}}
	raw, err := json.Marshal(nodes)
	require.NoError(t, err)

	_, err = tripService.Create(ctx, trip.Trip{
		Name:        "Z polem obrazkowym",
		Status:      trip.StatusDraft,
		TripType:    trip.TypePilgrimage,
		CategoryID:  1,
		ExtraFields: raw,
	})
	require.NoError(t, err)

	job := worker.NewCleanupJob(worker.CleanupJobConfig{
		Logger:       zerolog.Nop(),
		TripService:  tripService,
		MediaService: mediaService,
	})

	result := job.Run(ctx)

	assert.Zero(t, result.Deleted)
	_, err = mediaService.Get(ctx, img.Key)
	assert.NoError(t, err)
}

func TestCleanupJob_DryRunDeletesNothing(t *testing.T) {
	ctx := context.Background()

	storage := media.NewInMemoryStorage()
	mediaService := media.NewService(storage, zerolog.Nop())
	tripService := trip.NewService(trip.NewInMemoryRepository())

	orphan := uploadTestImage(t, mediaService)

	job := worker.NewCleanupJob(worker.CleanupJobConfig{
		Config:       worker.CleanupConfig{DryRun: true},
		Logger:       zerolog.Nop(),
		TripService:  tripService,
		MediaService: mediaService,
	})

	result := job.Run(ctx)

	assert.Zero(t, result.Deleted)
	_, err := mediaService.Get(ctx, orphan.Key)
	assert.NoError(t, err)
}

func TestCleanupJob_TracksMetrics(t *testing.T) {
	ctx := context.Background()

	mediaService := media.NewService(media.NewInMemoryStorage(), zerolog.Nop())
	tripService := trip.NewService(trip.NewInMemoryRepository())

	uploadTestImage(t, mediaService)

	job := worker.NewCleanupJob(worker.CleanupJobConfig{
		Logger:       zerolog.Nop(),
		TripService:  tripService,
		MediaService: mediaService,
	})

	job.Run(ctx)

	metrics := job.GetMetrics()
	assert.Equal(t, int64(1), metrics.TotalRuns)
	assert.Equal(t, int64(1), metrics.DeletedObjects)
	assert.False(t, metrics.LastRunAt.IsZero())

	snapshot := job.MetricsSnapshot()
	assert.Equal(t, int64(1), snapshot["total_runs"])
}
