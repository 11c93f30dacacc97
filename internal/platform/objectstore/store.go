// Package objectstore is the Artifact Store Adapter (C2): a thin typed
// wrapper over an S3-compatible object store. It is the only component
// that talks to the object store; it carries no mutable state beyond the
// client handle, following the teacher's typed-adapter-interface shape
// (one method per verb, context-scoped calls) even though the underlying
// SDK here is aws-sdk-go-v2 rather than the teacher's GCS client.
package objectstore

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	smithyhttp "github.com/aws/smithy-go/transport/http"

	"github.com/rakshabesafe/ppttovideo/internal/platform/config"
	"github.com/rakshabesafe/ppttovideo/internal/platform/logger"
)

// ErrNotFound is returned by Stat and Get when the object does not exist.
var ErrNotFound = errors.New("objectstore: not found")

// ObjectAttrs is the result of Stat.
type ObjectAttrs struct {
	Size        int64
	ContentType string
}

// Store is the sanctioned interface for every object-store operation the
// engine performs. put/get/stat/list/delete/delete_prefix/parse_canonical
// map 1:1 onto §4.2.
type Store interface {
	Put(ctx context.Context, bucket, key string, r io.Reader, size int64) (canonicalPath string, err error)
	Get(ctx context.Context, bucket, key string) (io.ReadCloser, error)
	Stat(ctx context.Context, bucket, key string) (*ObjectAttrs, error)
	List(ctx context.Context, bucket, prefix string) ([]string, error)
	Delete(ctx context.Context, bucket, key string) error
	DeletePrefix(ctx context.Context, bucket, prefix string) (count int, err error)
	ParseCanonical(path string) (bucket, key string, err error)
}

type store struct {
	client     *s3.Client
	uploader   *manager.Uploader
	downloader *manager.Downloader
	log        *logger.Logger
}

// New builds a Store from cfg, using static credentials and path-style
// addressing by default (the common shape for self-hosted S3-compatible
// deployments such as MinIO).
func New(ctx context.Context, cfg config.ObjectStore, log *logger.Logger) (Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.URL != "" {
			o.BaseEndpoint = aws.String(cfg.URL)
		}
		o.UsePathStyle = cfg.ForcePathStyle
	})
	return &store{
		client:     client,
		uploader:   manager.NewUploader(client),
		downloader: manager.NewDownloader(client),
		log:        log.With("component", "objectstore"),
	}, nil
}

func (s *store) Put(ctx context.Context, bucket, key string, r io.Reader, size int64) (string, error) {
	input := &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   r,
	}
	if ct := contentTypeForKey(key); ct != "" {
		input.ContentType = aws.String(ct)
	}
	if _, err := s.uploader.Upload(ctx, input); err != nil {
		return "", err
	}
	return canonicalPath(bucket, key), nil
}

func (s *store) Get(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return out.Body, nil
}

func (s *store) Stat(ctx context.Context, bucket, key string) (*ObjectAttrs, error) {
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	attrs := &ObjectAttrs{}
	if out.ContentLength != nil {
		attrs.Size = *out.ContentLength
	}
	if out.ContentType != nil {
		attrs.ContentType = *out.ContentType
	}
	return attrs, nil
}

func (s *store) List(ctx context.Context, bucket, prefix string) ([]string, error) {
	var keys []string
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			if obj.Key != nil {
				keys = append(keys, *obj.Key)
			}
		}
	}
	return keys, nil
}

func (s *store) Delete(ctx context.Context, bucket, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil && !isNotFound(err) {
		return err
	}
	return nil
}

func (s *store) DeletePrefix(ctx context.Context, bucket, prefix string) (int, error) {
	keys, err := s.List(ctx, bucket, prefix)
	if err != nil {
		return 0, err
	}
	deleted := 0
	for _, k := range keys {
		if err := s.Delete(ctx, bucket, k); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

func (s *store) ParseCanonical(path string) (string, string, error) {
	return parseCanonical(path)
}

func parseCanonical(path string) (string, string, error) {
	trimmed := strings.TrimPrefix(path, "/")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", errors.New("objectstore: malformed canonical path " + path)
	}
	return parts[0], parts[1], nil
}

func canonicalPath(bucket, key string) string {
	return "/" + bucket + "/" + key
}

func isNotFound(err error) bool {
	var re *smithyhttp.ResponseError
	if errors.As(err, &re) {
		return re.HTTPStatusCode() == 404
	}
	return false
}

func contentTypeForKey(key string) string {
	switch {
	case strings.HasSuffix(key, ".png"):
		return "image/png"
	case strings.HasSuffix(key, ".jpg"), strings.HasSuffix(key, ".jpeg"):
		return "image/jpeg"
	case strings.HasSuffix(key, ".wav"):
		return "audio/wav"
	case strings.HasSuffix(key, ".mp3"):
		return "audio/mpeg"
	case strings.HasSuffix(key, ".mp4"):
		return "video/mp4"
	case strings.HasSuffix(key, ".txt"):
		return "text/plain"
	case strings.HasSuffix(key, ".pptx"):
		return "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	default:
		return ""
	}
}
