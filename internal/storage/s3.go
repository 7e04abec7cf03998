package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"

	"github.com/pageza/recetario/backend/config"
	"github.com/pageza/recetario/backend/internal/apperr"
)

// ObjectAPI is the part of the S3 client the store uses.
type ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store keeps images in an S3 bucket and hands out their public URLs.
type S3Store struct {
	client  ObjectAPI
	bucket  string
	baseURL string
}

func NewS3Store(cfg *config.S3Config) *S3Store {
	return NewS3StoreWithClient(cfg.Client, cfg.BucketName, PublicBaseURL(cfg))
}

func NewS3StoreWithClient(client ObjectAPI, bucket, baseURL string) *S3Store {
	return &S3Store{client: client, bucket: bucket, baseURL: strings.TrimSuffix(baseURL, "/")}
}

// PublicBaseURL is the URL prefix of objects in the configured bucket.
func PublicBaseURL(cfg *config.S3Config) string {
	if cfg.Endpoint != "" {
		return strings.TrimSuffix(cfg.Endpoint, "/") + "/" + cfg.BucketName
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com", cfg.BucketName)
}

// Upload uploads image data to S3 and returns the public URL
func (s *S3Store) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", apperr.Write("upload image", err)
	}

	url := s.baseURL + "/" + key
	logrus.WithFields(logrus.Fields{
		"key":  key,
		"size": len(data),
	}).Info("Uploaded image to S3")
	return url, nil
}

// Delete removes the object behind url. An empty url is a no-op.
func (s *S3Store) Delete(ctx context.Context, url string) error {
	if url == "" {
		return nil
	}
	key, err := s.KeyOf(url)
	if err != nil {
		return apperr.Write("delete image", err)
	}
	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return apperr.Write("delete image", err)
	}
	logrus.WithField("key", key).Info("Deleted image from S3")
	return nil
}

// KeyOf maps a public URL back to its object key.
func (s *S3Store) KeyOf(url string) (string, error) {
	key, ok := strings.CutPrefix(url, s.baseURL+"/")
	if !ok || key == "" {
		return "", fmt.Errorf("%s is not an object of bucket %s", url, s.bucket)
	}
	return key, nil
}
