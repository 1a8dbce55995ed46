package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/daniswara/kumpul-api/internal/dto"
	"github.com/daniswara/kumpul-api/internal/observability"
)

var (
	// ErrMediaTooLarge indicates the payload exceeded the configured limit.
	ErrMediaTooLarge = errors.New("media exceeds maximum allowed size")
	// ErrMediaTypeNotAllowed indicates the sniffed MIME type is not permitted.
	ErrMediaTypeNotAllowed = errors.New("media type not allowed")
)

// MediaStorage abstracts the asset store behind uploads.
type MediaStorage interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// MediaService validates and stores user media. Only image and video types
// are accepted; the type is sniffed from content, never trusted from the
// request.
type MediaService interface {
	Upload(ctx context.Context, userID uint, file *multipart.FileHeader) (dto.UploadResponse, error)
}

type mediaService struct {
	storage MediaStorage
	logger  zerolog.Logger
	maxSize int64
	tracer  trace.Tracer
}

// NewMediaService constructs the media service.
func NewMediaService(storage MediaStorage, maxSizeMB int, logger zerolog.Logger) MediaService {
	if maxSizeMB <= 0 {
		maxSizeMB = 10
	}
	return &mediaService{
		storage: storage,
		logger:  logger.With().Str("component", "media_service").Logger(),
		maxSize: int64(maxSizeMB) * 1024 * 1024,
		tracer:  otel.Tracer("kumpul.media"),
	}
}

func (s *mediaService) Upload(ctx context.Context, userID uint, file *multipart.FileHeader) (dto.UploadResponse, error) {
	ctx, span := s.tracer.Start(ctx, "MediaService.Upload")
	defer span.End()

	if file == nil {
		err := errors.New("file is required")
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation failed")
		return dto.UploadResponse{}, err
	}

	span.SetAttributes(
		attribute.Int("media.user_id", int(userID)),
		attribute.Int64("media.request_size", file.Size),
	)

	if file.Size > s.maxSize {
		observability.UploadsRejectedTotal().WithLabelValues("size").Inc()
		span.RecordError(ErrMediaTooLarge)
		span.SetStatus(codes.Error, "payload too large")
		return dto.UploadResponse{}, ErrMediaTooLarge
	}

	handle, err := file.Open()
	if err != nil {
		span.RecordError(err)
		return dto.UploadResponse{}, err
	}
	defer handle.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(handle, s.maxSize+1)); err != nil {
		span.RecordError(err)
		return dto.UploadResponse{}, err
	}
	if int64(buf.Len()) > s.maxSize {
		observability.UploadsRejectedTotal().WithLabelValues("size").Inc()
		span.RecordError(ErrMediaTooLarge)
		span.SetStatus(codes.Error, "payload too large")
		return dto.UploadResponse{}, ErrMediaTooLarge
	}

	detected := mimetype.Detect(buf.Bytes())
	kind := mediaKind(detected.String())
	span.SetAttributes(attribute.String("media.detected_mime", detected.String()))
	if kind == "" {
		observability.UploadsRejectedTotal().WithLabelValues("type").Inc()
		span.RecordError(ErrMediaTypeNotAllowed)
		span.SetStatus(codes.Error, "type not allowed")
		return dto.UploadResponse{}, ErrMediaTypeNotAllowed
	}

	name := mediaObjectName(userID, file.Filename, detected.Extension())
	url, err := s.storage.Upload(ctx, name, bytes.NewReader(buf.Bytes()))
	if err != nil {
		observability.UploadsRejectedTotal().WithLabelValues("storage").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "storage failed")
		return dto.UploadResponse{}, err
	}

	observability.UploadsTotal().WithLabelValues(kind).Inc()
	span.SetStatus(codes.Ok, "stored")

	s.logger.Info().
		Uint("user_id", userID).
		Str("kind", kind).
		Int("size_bytes", buf.Len()).
		Msg("media stored")

	return dto.UploadResponse{URL: url, ContentType: detected.String()}, nil
}

func mediaKind(mime string) string {
	lower := strings.ToLower(strings.TrimSpace(mime))
	switch {
	case strings.HasPrefix(lower, "image/"):
		return "image"
	case strings.HasPrefix(lower, "video/"):
		return "video"
	default:
		return ""
	}
}

func mediaObjectName(userID uint, original, ext string) string {
	base := strings.TrimSuffix(original, ext)
	base = strings.ToLower(base)
	base = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, base)
	base = strings.Trim(base, "-")
	if base == "" {
		base = "media"
	}
	return fmt.Sprintf("u%d-%s%s", userID, base, ext)
}
