// -----------------------------------------------------------------------
// S3 artifact store - object storage backend for multi-node deployments
// -----------------------------------------------------------------------

package artifacts

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docsmart/internal/common"
	"github.com/ternarybob/docsmart/internal/interfaces"
)

// S3Store implements interfaces.ArtifactStore on S3 (or any S3-compatible
// endpoint such as MinIO). Credentials come from the standard AWS chain.
type S3Store struct {
	client *s3.Client
	region string
	logger arbor.ILogger
}

// Compile-time interface assertion
var _ interfaces.ArtifactStore = (*S3Store)(nil)

// NewS3Store creates an S3-backed artifact store.
func NewS3Store(ctx context.Context, cfg *common.ArtifactsS3, logger arbor.ILogger) (*S3Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			// Path-style addressing for MinIO-compatible endpoints.
			o.UsePathStyle = true
		}
	})

	return &S3Store{
		client: client,
		region: cfg.Region,
		logger: logger,
	}, nil
}

// Upload stores data and returns a public URL for it.
func (s *S3Store) Upload(ctx context.Context, bucket, path string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(path),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload artifact %s/%s: %w", bucket, path, err)
	}

	s.logger.Debug().
		Str("bucket", bucket).
		Str("path", path).
		Int("size", len(data)).
		Msg("Artifact uploaded to S3")

	return s.PublicURL(bucket, path), nil
}

// Download returns the object bytes.
func (s *S3Store) Download(ctx context.Context, bucket, path string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download artifact %s/%s: %w", bucket, path, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact body: %w", err)
	}
	return data, nil
}

// Delete removes a single object. Deletes are idempotent.
func (s *S3Store) Delete(ctx context.Context, bucket, path string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil
		}
		return fmt.Errorf("failed to delete artifact %s/%s: %w", bucket, path, err)
	}
	return nil
}

// DeletePrefix removes every object under the given prefix.
func (s *S3Store) DeletePrefix(ctx context.Context, bucket, prefix string) error {
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("failed to list artifacts under %s/%s: %w", bucket, prefix, err)
		}
		for _, obj := range page.Contents {
			if obj.Key == nil {
				continue
			}
			if err := s.Delete(ctx, bucket, *obj.Key); err != nil {
				return err
			}
		}
	}
	return nil
}

// PublicURL returns the virtual-hosted URL for an object.
func (s *S3Store) PublicURL(bucket, path string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucket, s.region, strings.TrimLeft(path, "/"))
}
