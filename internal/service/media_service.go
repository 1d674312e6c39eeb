package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const presignExpiry = 15 * time.Minute

// ErrUnsupportedImageType is returned for file extensions outside the cover
// image whitelist.
var ErrUnsupportedImageType = errors.New("unsupported image type")

// MediaService issues presigned URLs so clients upload blog cover images
// directly to object storage.
type MediaService interface {
	// PresignCoverUpload returns the upload URL and the storage key the
	// client should reference once the upload completes.
	PresignCoverUpload(ctx context.Context, userID, filename string) (uploadURL, storageKey string, err error)
}

type mediaService struct {
	presignClient *s3.PresignClient
	bucketName    string
	logger        zerolog.Logger
}

// NewMediaService creates a new MediaService with a scoped logger.
func NewMediaService(s3Client *s3.Client, bucketName string, logger zerolog.Logger) MediaService {
	return &mediaService{
		presignClient: s3.NewPresignClient(s3Client),
		bucketName:    bucketName,
		logger:        logger.With().Str("service", "MediaService").Logger(),
	}
}

func (s *mediaService) PresignCoverUpload(ctx context.Context, userID, filename string) (string, string, error) {
	ext := strings.ToLower(path.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
	default:
		return "", "", fmt.Errorf("%w: %s", ErrUnsupportedImageType, ext)
	}

	storageKey := fmt.Sprintf("covers/%s/%s%s", userID, uuid.NewString(), ext)
	req, err := s.presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(storageKey),
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to presign cover upload")
		return "", "", fmt.Errorf("presign cover upload: %w", err)
	}
	return req.URL, storageKey, nil
}
