package storage

import (
	"bytes"
	"context"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/customeros/mailadmin/config"
	"github.com/customeros/mailadmin/interfaces"
	"github.com/customeros/mailadmin/internal/tracing"
	"github.com/customeros/mailadmin/services/storage/aws_client"
)

// ObjectStorageService implements StorageService on an S3 compatible bucket.
type ObjectStorageService struct {
	client     aws_client.S3Client
	bucketName string
}

func NewObjectStorageService(client aws_client.S3Client, bucketName string) *ObjectStorageService {
	return &ObjectStorageService{
		client:     client,
		bucketName: bucketName,
	}
}

// NewStorageService picks the signature image backend named by cfg.SignatureStorage.
func NewStorageService(cfg *config.Config) (interfaces.StorageService, error) {
	switch cfg.ProfileConfig.SignatureStorage {
	case config.SignatureStorageS3:
		client, err := aws_client.NewS3Client(&aws.Config{
			Region:      aws.String(cfg.S3StorageConfig.Region),
			Credentials: credentials.NewStaticCredentials(cfg.S3StorageConfig.AccessKeyID, cfg.S3StorageConfig.AccessKeySecret, ""),
		})
		if err != nil {
			return nil, err
		}
		return NewObjectStorageService(client, cfg.S3StorageConfig.Bucket), nil
	case config.SignatureStorageR2:
		client, err := aws_client.NewR2Client(aws_client.R2Config{
			AccountID:       cfg.R2StorageConfig.AccountID,
			AccessKeyID:     cfg.R2StorageConfig.AccessKeyID,
			AccessKeySecret: cfg.R2StorageConfig.AccessKeySecret,
		})
		if err != nil {
			return nil, err
		}
		return NewObjectStorageService(client, cfg.R2StorageConfig.Bucket), nil
	default:
		return NewLocalStorageService(cfg.ProfileConfig.SignatureDir)
	}
}

func (s *ObjectStorageService) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "ObjectStorageService.Upload")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.SetTag("key", key)

	err := s.client.Upload(ctx, s3manager.UploadInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		tracing.TraceErr(span, err)
		return errors.Wrapf(err, "failed to upload %s", key)
	}
	return nil
}

func (s *ObjectStorageService) Download(ctx context.Context, key string) ([]byte, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "ObjectStorageService.Download")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.SetTag("key", key)

	content, err := s.client.Download(ctx, s.bucketName, key)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	return content, nil
}

func (s *ObjectStorageService) Delete(ctx context.Context, key string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "ObjectStorageService.Delete")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.SetTag("key", key)

	if err := s.client.Delete(ctx, s.bucketName, key); err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	return nil
}
