package storage

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/viper"
)

type S3Storage struct {
	C      *s3.Client
	Bucket *string
}

// NewS3 builds the S3-backed avatar storage and checks the bucket exists
// before the server starts taking uploads
func NewS3() (*S3Storage, error) {
	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			viper.GetString("aws.access_key"),
			viper.GetString("aws.secret_access_key"),
			"",
		)),
	)
	if err != nil {
		return nil, err
	}

	bucket := aws.String(viper.GetString("aws.bucket"))

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.Region = viper.GetString("aws.region")
	})

	_, err = client.HeadBucket(context.TODO(), &s3.HeadBucketInput{
		Bucket: bucket,
	})
	if err != nil {
		var apiErr smithy.APIError

		if errors.As(err, &apiErr) {
			if apiErr.ErrorCode() == "NotFound" {
				return nil, fmt.Errorf("bucket '%s' does not exist", *bucket)
			}
		}

		return nil, fmt.Errorf("failed to check if bucket exists, %w", err)
	}

	return &S3Storage{
		C:      client,
		Bucket: bucket,
	}, nil
}

// Store uploads the staged avatar under avatars/<name> and removes the
// staging file. Avatars cap at 1 MiB so a single PutObject is enough
func (s *S3Storage) Store(ctx context.Context, src, name string) (string, error) {
	f, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("failed to open staged avatar, %w", err)
	}
	defer f.Close()

	mime, err := mimetype.DetectFile(src)
	if err != nil {
		return "", fmt.Errorf("failed to detect avatar type, %w", err)
	}

	if _, err := f.Seek(0, 0); err != nil {
		return "", err
	}

	key := "avatars/" + name

	_, err = s.C.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       s.Bucket,
		Key:          aws.String(key),
		Body:         f,
		ContentType:  aws.String(mime.String()),
		CacheControl: aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload avatar to s3, %w", err)
	}

	f.Close()
	if err := os.Remove(src); err != nil {
		return "", fmt.Errorf("failed to drain staging file, %w", err)
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s",
		*s.Bucket, viper.GetString("aws.region"), key), nil
}
