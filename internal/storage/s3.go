package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Service keeps attachments in a single Amazon S3 (or compatible) bucket.
type S3Service struct {
	bucket   string
	client   *s3.Client
	uploader *manager.Uploader
	presign  *s3.PresignClient
}

func NewS3Service(client *s3.Client, bucket string) (*S3Service, error) {
	if strings.TrimSpace(bucket) == "" {
		return nil, fmt.Errorf("storage bucket is required")
	}
	return &S3Service{
		bucket:   bucket,
		client:   client,
		uploader: manager.NewUploader(client),
		presign:  s3.NewPresignClient(client),
	}, nil
}

func (s *S3Service) Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	key = strings.TrimLeft(key, "/")
	if key == "" {
		return "", fmt.Errorf("object key is required")
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   body,
		ACL:    types.ObjectCannedACLPrivate,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s.uploader.Upload(ctx, input); err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	return key, nil
}

func (s *S3Service) PresignGet(ctx context.Context, key string, expires time.Duration) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("object key is required")
	}
	if expires <= 0 {
		expires = 15 * time.Minute
	}

	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expires))
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", key, err)
	}
	return req.URL, nil
}

// maxPrefixObjects bounds how many objects DeletePrefix expects under one prefix.
// Each summary keeps a single attachment, so one listing page covers it.
const maxPrefixObjects = 100

// DeletePrefix removes the objects stored under a directory-style prefix ending in
// "/". A listing that does not fit in one page is reported after the listed objects
// are removed.
func (s *S3Service) DeletePrefix(ctx context.Context, prefix string) error {
	prefix = strings.TrimLeft(strings.TrimSpace(prefix), "/")
	if prefix == "" || !strings.HasSuffix(prefix, "/") {
		return fmt.Errorf("prefix %q must end with /", prefix)
	}

	listed, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(s.bucket),
		Prefix:  aws.String(prefix),
		MaxKeys: aws.Int32(maxPrefixObjects),
	})
	if err != nil {
		return fmt.Errorf("list %s: %w", prefix, err)
	}

	for _, obj := range listed.Contents {
		if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    obj.Key,
		}); err != nil {
			return fmt.Errorf("delete %s: %w", aws.ToString(obj.Key), err)
		}
	}
	if aws.ToBool(listed.IsTruncated) {
		return fmt.Errorf("prefix %s holds more than %d objects", prefix, maxPrefixObjects)
	}
	return nil
}

var _ Service = (*S3Service)(nil)
