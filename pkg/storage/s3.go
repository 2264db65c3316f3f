package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"
)

const (
	// MaxImageFileSize is the maximum allowed file size for promo image uploads (10MB).
	MaxImageFileSize = 10 * 1024 * 1024
	// FolderPromoImages is the S3 prefix for event promo images.
	FolderPromoImages = "promo-images"
)

// Allowed promo image MIME types and extensions.
var (
	AllowedImageTypes = map[string]string{
		"image/jpeg": ".jpg",
		"image/jpg":  ".jpg",
		"image/png":  ".png",
		"image/webp": ".webp",
		"image/gif":  ".gif",
	}
	AllowedImageExtensions = map[string]string{
		".jpg":  "image/jpeg",
		".jpeg": "image/jpeg",
		".png":  "image/png",
		".webp": "image/webp",
		".gif":  "image/gif",
	}
)

// S3Config holds S3 client configuration.
type S3Config struct {
	Region               string
	AccessKeyID          string
	SecretAccessKey      string
	MediaBucket          string
	PresignExpireMinutes int
}

// S3 provides S3 operations with validation and pre-signed URLs.
type S3 struct {
	client   *s3.Client
	uploader *manager.Uploader
	cfg      S3Config
	logger   *zap.Logger
}

// NewS3 creates an S3 client using credentials from config or .env (AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY).
func NewS3(ctx context.Context, cfg S3Config, logger *zap.Logger) (*S3, error) {
	accessKey := cfg.AccessKeyID
	secretKey := cfg.SecretAccessKey
	if accessKey == "" || secretKey == "" {
		accessKey = os.Getenv("AWS_ACCESS_KEY_ID")
		secretKey = os.Getenv("AWS_SECRET_ACCESS_KEY")
	}
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if accessKey != "" && secretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKey, secretKey, "",
		)))
		if logger != nil {
			logger.Info("S3 client using credentials from .env/config", zap.String("region", cfg.Region), zap.String("media_bucket", cfg.MediaBucket))
		}
	} else if logger != nil {
		logger.Warn("S3 client using default credential chain (AWS_ACCESS_KEY_ID/AWS_SECRET_ACCESS_KEY not set)")
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg)
	uploader := manager.NewUploader(client, func(u *manager.Uploader) {
		u.PartSize = 5 * 1024 * 1024 // 5MB parts for streaming
	})
	return &S3{
		client:   client,
		uploader: uploader,
		cfg:      cfg,
		logger:   logger,
	}, nil
}

// ValidateImageFileType returns true if the content type and/or extension are allowed for promo images.
func ValidateImageFileType(contentType, filename string) bool {
	ext := strings.ToLower(path.Ext(filename))
	if contentType != "" {
		if _, ok := AllowedImageTypes[strings.ToLower(contentType)]; ok {
			return true
		}
	}
	if ext != "" {
		if _, ok := AllowedImageExtensions[ext]; ok {
			return true
		}
	}
	return false
}

// ContentTypeForFilename returns the MIME type for a promo image filename extension.
func ContentTypeForFilename(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if ct, ok := AllowedImageExtensions[ext]; ok {
		return ct
	}
	return "application/octet-stream"
}

// PromoImageKey returns the S3 object key: promo-images/{event_id}/{filename}.
func PromoImageKey(eventID, filename string) string {
	return path.Join(FolderPromoImages, eventID, path.Base(filename))
}

// GeneratePresignedUploadURL returns a pre-signed PUT URL for direct upload.
func (s *S3) GeneratePresignedUploadURL(ctx context.Context, bucket, key, contentType string, expires time.Duration) (string, error) {
	presignClient := s3.NewPresignClient(s.client)
	req, err := presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = expires
	})
	if err != nil {
		return "", fmt.Errorf("presign put: %w", err)
	}
	return req.URL, nil
}

// GeneratePresignedDownloadURL returns a pre-signed GET URL for download.
func (s *S3) GeneratePresignedDownloadURL(ctx context.Context, bucket, key string, expires time.Duration) (string, error) {
	presignClient := s3.NewPresignClient(s.client)
	req, err := presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = expires
	})
	if err != nil {
		return "", fmt.Errorf("presign get: %w", err)
	}
	return req.URL, nil
}

// PresignExpire returns the configured presign duration.
func (s *S3) PresignExpire() time.Duration {
	if s.cfg.PresignExpireMinutes <= 0 {
		return 15 * time.Minute
	}
	return time.Duration(s.cfg.PresignExpireMinutes) * time.Minute
}

// MediaBucket returns the promo image bucket name.
func (s *S3) MediaBucket() string { return s.cfg.MediaBucket }

// PublicObjectURL returns the public URL for an object (no signing; use when bucket is public).
func (s *S3) PublicObjectURL(bucket, key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucket, s.cfg.Region, key)
}

// Upload streams a reader to S3 (server-side upload path for promo images).
// Set publicRead true so the object is readable via direct URL when the bucket is intended to be public.
func (s *S3) Upload(ctx context.Context, bucket, key, contentType string, body io.Reader, contentLength int64, publicRead bool) (string, error) {
	var contentLengthPtr *int64
	if contentLength > 0 {
		contentLengthPtr = &contentLength
	}
	input := &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: contentLengthPtr,
	}
	if publicRead {
		input.ACL = types.ObjectCannedACLPublicRead
	}
	_, err := s.uploader.Upload(ctx, input)
	if err != nil {
		return "", fmt.Errorf("upload: %w", err)
	}
	url := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucket, s.cfg.Region, key)
	return url, nil
}

// DeleteObject removes an object from S3.
func (s *S3) DeleteObject(ctx context.Context, bucket, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

// DeletePromoImage removes a promo image object from the media bucket.
func (s *S3) DeletePromoImage(ctx context.Context, key string) error {
	return s.DeleteObject(ctx, s.cfg.MediaBucket, key)
}
