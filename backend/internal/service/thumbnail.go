package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"time"

	"github.com/disintegration/imaging"
	"github.com/itchan-dev/filesmanager/shared/domain"
	internal_errors "github.com/itchan-dev/filesmanager/shared/errors"
	"github.com/itchan-dev/filesmanager/shared/logger"
	"github.com/itchan-dev/filesmanager/shared/middleware/metrics"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"
)

type ThumbnailService interface {
	Process(ctx context.Context, job domain.ThumbnailJob) error
}

type ThumbnailStorage interface {
	FileById(ctx context.Context, id domain.FileId) (*domain.File, error)
}

// Thumbnailer renders the fixed set of width variants for uploaded images.
type Thumbnailer struct {
	storage        ThumbnailStorage
	mediaStorage   MediaStorage
	widths         []int
	// upper bound of the RGBA buffer a source may decode into
	maxDecodedSize int64
}

func NewThumbnailer(storage ThumbnailStorage, mediaStorage MediaStorage, maxDecodedSize int64) *Thumbnailer {
	return &Thumbnailer{
		storage:        storage,
		mediaStorage:   mediaStorage,
		widths:         domain.ThumbnailWidths,
		maxDecodedSize: maxDecodedSize,
	}
}

// Process generates every variant of the job's image. Jobs that can never succeed,
// including sources too large to decode, return ErrJobRejected and write nothing. Variants are overwritten, so
// running the same job twice is harmless.
func (t *Thumbnailer) Process(ctx context.Context, job domain.ThumbnailJob) error {
	start := time.Now()
	log := logger.Log.With("file_id", job.FileId.Hex(), "user_id", job.UserId.Hex())

	err := t.process(ctx, job)
	switch {
	case err == nil:
		metrics.ThumbnailJobsTotal.WithLabelValues("ok").Inc()
		metrics.ThumbnailDuration.Observe(time.Since(start).Seconds())
		log.Info("thumbnails generated", "duration", time.Since(start))
	case errors.Is(err, internal_errors.ErrJobRejected):
		metrics.ThumbnailJobsTotal.WithLabelValues("rejected").Inc()
		log.Warn("thumbnail job rejected", "error", err)
	default:
		metrics.ThumbnailJobsTotal.WithLabelValues("failed").Inc()
		log.Error("thumbnail job failed", "error", err)
	}
	return err
}

func (t *Thumbnailer) process(ctx context.Context, job domain.ThumbnailJob) error {
	file, err := t.storage.FileById(ctx, job.FileId)
	if err != nil {
		if internal_errors.IsNotFound(err) {
			return fmt.Errorf("%w: file not found", internal_errors.ErrJobRejected)
		}
		return err
	}
	if file.UserId != job.UserId {
		return fmt.Errorf("%w: owner mismatch", internal_errors.ErrJobRejected)
	}
	if file.Type != domain.FileTypeImage {
		return fmt.Errorf("%w: not an image", internal_errors.ErrJobRejected)
	}

	src, format, err := t.decode(file.LocalPath)
	if err != nil {
		return err
	}

	errs := make([]error, len(t.widths))
	var g errgroup.Group
	for i, width := range t.widths {
		g.Go(func() error {
			if err := t.writeVariant(ctx, src, format, file.VariantPath(width), width); err != nil {
				logger.Log.Error("failed to generate thumbnail",
					"file_id", file.Id.Hex(), "width", width, "error", err)
				errs[i] = fmt.Errorf("width %d: %w", width, err)
			}
			return nil
		})
	}
	g.Wait()
	return errors.Join(errs...)
}

func (t *Thumbnailer) decode(path string) (image.Image, imaging.Format, error) {
	rc, err := t.mediaStorage.Read(path)
	if err != nil {
		return nil, 0, fmt.Errorf("read source: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, 0, fmt.Errorf("read source: %w", err)
	}
	// A crafted header can claim 65535x65535 and make image.Decode allocate ~16GB.
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, 0, fmt.Errorf("decode source: %w", err)
	}
	if size := int64(cfg.Width) * int64(cfg.Height) * 4; size > t.maxDecodedSize {
		return nil, 0, fmt.Errorf("%w: image too large: %dx%d pixels, decoded size would exceed %d bytes limit",
			internal_errors.ErrJobRejected, cfg.Width, cfg.Height, t.maxDecodedSize)
	}

	img, name, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, 0, fmt.Errorf("decode source: %w", err)
	}
	return img, outputFormat(name), nil
}

// outputFormat keeps png, jpeg and gif as they are; anything else is written as png.
func outputFormat(decodedAs string) imaging.Format {
	switch decodedAs {
	case "jpeg":
		return imaging.JPEG
	case "gif":
		return imaging.GIF
	default:
		return imaging.PNG
	}
}

func (t *Thumbnailer) writeVariant(ctx context.Context, src image.Image, format imaging.Format, path string, width int) error {
	resized := imaging.Resize(src, width, 0, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, format); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return t.mediaStorage.Write(path, &buf)
}
