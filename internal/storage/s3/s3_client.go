package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"litrecord/internal/config"
	"litrecord/internal/domain"
	"litrecord/internal/port"
)

// artifactStore keeps page PDFs in one bucket under the keys the splitter
// assigns. Transport failures surface as domain.ErrStorageFailure so the
// ingest executor retries them; a missing object is domain.ErrNotFound.
type artifactStore struct {
	bucket    string
	client    *s3.Client
	presigner *s3.PresignClient
	uploader  *manager.Uploader
}

// NewS3Client creates an S3-backed artifact store. A custom endpoint (MinIO,
// localstack) switches to path-style addressing.
func NewS3Client(cfg *config.S3Config) (port.ObjectStorage, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 artifact store: bucket is required")
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &artifactStore{
		bucket:    cfg.Bucket,
		client:    client,
		presigner: s3.NewPresignClient(client),
		uploader: manager.NewUploader(client, func(u *manager.Uploader) {
			// Page artifacts fit in a single part.
			u.PartSize = manager.MinUploadPartSize
			u.Concurrency = 1
		}),
	}, nil
}

func (s *artifactStore) Upload(ctx context.Context, input port.UploadInput) (*port.UploadOutput, error) {
	result, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:             aws.String(s.bucket),
		Key:                aws.String(input.Key),
		Body:               input.Body,
		ContentType:        aws.String(contentTypeOf(input.ContentType)),
		ContentDisposition: aws.String(inlineDisposition(input.Key)),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: s3 upload %s: %w", domain.ErrStorageFailure, input.Key, err)
	}
	return &port.UploadOutput{
		Location: result.Location,
		ETag:     aws.ToString(result.ETag),
	}, nil
}

func (s *artifactStore) Download(ctx context.Context, key string) ([]byte, error) {
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, classify("download", key, err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: s3 download read %s: %w", domain.ErrStorageFailure, key, err)
	}
	return data, nil
}

// Delete is idempotent: S3 reports success for a missing key.
func (s *artifactStore) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return classify("delete", key, err)
	}
	return nil
}

// GetPresignedURL signs a GET that renders the page inline as a PDF.
func (s *artifactStore) GetPresignedURL(ctx context.Context, key string, expirySeconds int64) (string, error) {
	result, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket:                     aws.String(s.bucket),
		Key:                        aws.String(key),
		ResponseContentType:        aws.String(domain.ContentTypePDF),
		ResponseContentDisposition: aws.String(inlineDisposition(key)),
	}, s3.WithPresignExpires(time.Duration(expirySeconds)*time.Second))
	if err != nil {
		return "", fmt.Errorf("s3 presign %s: %w", key, err)
	}
	return result.URL, nil
}

func contentTypeOf(ct string) string {
	if ct == "" {
		return domain.ContentTypePDF
	}
	return ct
}

// inlineDisposition names the artifact after its key's last element, e.g.
// "00003.pdf" for the third page of a document.
func inlineDisposition(key string) string {
	return fmt.Sprintf("inline; filename=%q", path.Base(key))
}

func classify(op, key string, err error) error {
	var noSuchKey *types.NoSuchKey
	var notFound *types.NotFound
	if errors.As(err, &noSuchKey) || errors.As(err, &notFound) {
		return fmt.Errorf("%w: s3 %s %s", domain.ErrNotFound, op, key)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: s3 %s %s: %w", domain.ErrStorageFailure, op, key, err)
}
