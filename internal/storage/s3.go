// Package storage keeps uploaded images in S3.
package storage

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/foodlink/foodlink-api/internal/service"
)

const (
	keyAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	keySize     = 21
)

// allowedTypes maps accepted image content types to the extension used in object keys.
var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// putObjectAPI is satisfied by *s3.Client.
type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3ImageStore uploads images under a random key and returns their public URL.
type S3ImageStore struct {
	client    putObjectAPI
	bucket    string
	keyPrefix string
	publicURL string
}

// NewS3ImageStore builds a store from the default AWS credential chain.
func NewS3ImageStore(ctx context.Context, bucket, region, keyPrefix, publicURL string) (*S3ImageStore, error) {
	opts := []func(*config.LoadOptions) error{}
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}

	awsConfig, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	return newS3ImageStoreWithClient(s3.NewFromConfig(awsConfig), bucket, keyPrefix, publicURL), nil
}

func newS3ImageStoreWithClient(client putObjectAPI, bucket, keyPrefix, publicURL string) *S3ImageStore {
	return &S3ImageStore{
		client:    client,
		bucket:    bucket,
		keyPrefix: strings.Trim(keyPrefix, "/"),
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

// Upload stores img and returns the URL it can be fetched from.
func (s *S3ImageStore) Upload(ctx context.Context, img *service.ImageUpload) (string, error) {
	ext, ok := allowedTypes[strings.ToLower(img.ContentType)]
	if !ok {
		return "", fmt.Errorf("unsupported image type %q", img.ContentType)
	}

	id, err := gonanoid.Generate(keyAlphabet, keySize)
	if err != nil {
		return "", fmt.Errorf("generate object key: %w", err)
	}
	key := path.Join(s.keyPrefix, id+ext)

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        img.Body,
		ContentType: aws.String(img.ContentType),
	}
	if img.Size > 0 {
		input.ContentLength = aws.Int64(img.Size)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return s.publicURL + "/" + key, nil
}
