package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

var ErrEmptyKey = errors.New("s3 object key is empty")

type ItfS3 interface {
	Download(ctx context.Context, key string) ([]byte, error)
}

type Config struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	// Endpoint overrides the AWS endpoint, for S3 compatible stores.
	Endpoint string
}

type s3Client struct {
	client     *s3.S3
	bucketName string
}

func New(cfg Config) (ItfS3, error) {
	sess, err := newSession(cfg)
	if err != nil {
		return nil, err
	}

	return &s3Client{
		client:     s3.New(sess),
		bucketName: cfg.Bucket,
	}, nil
}

// Download reads a whole object. key may be a bare key in the configured
// bucket or an s3://bucket/key URI.
func (s *s3Client) Download(ctx context.Context, key string) ([]byte, error) {
	bucket, objectKey, err := s.resolve(key)
	if err != nil {
		return nil, err
	}

	out, err := s.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		return nil, fmt.Errorf("get s3://%s/%s: %w", bucket, objectKey, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read s3://%s/%s: %w", bucket, objectKey, err)
	}

	return data, nil
}

func (s *s3Client) resolve(key string) (string, string, error) {
	if strings.HasPrefix(key, "s3://") {
		u, err := url.Parse(key)
		if err != nil {
			return "", "", fmt.Errorf("parse %s: %w", key, err)
		}
		objectKey := strings.TrimPrefix(u.Path, "/")
		if objectKey == "" {
			return "", "", ErrEmptyKey
		}
		return u.Host, objectKey, nil
	}

	decodedKey, err := url.QueryUnescape(strings.TrimPrefix(key, "/"))
	if err != nil {
		return "", "", fmt.Errorf("failed to decode S3 key: %w", err)
	}
	if decodedKey == "" {
		return "", "", ErrEmptyKey
	}
	return s.bucketName, decodedKey, nil
}

func newSession(cfg Config) (*session.Session, error) {
	awsCfg := &aws.Config{
		Region: aws.String(cfg.Region),
		Credentials: credentials.NewStaticCredentials(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		),
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, err
	}

	return sess, nil
}
