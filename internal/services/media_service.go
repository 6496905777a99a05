package services

import (
	"context"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MediaService stores product images in object storage.
type MediaService interface {
	UploadImage(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, contentType string) error
	GetPresignedURL(bucketName, objectName string, expiry time.Duration) (string, error)
	DeleteImage(ctx context.Context, bucketName, objectName string) error
	EnsureBucketExists(ctx context.Context, bucketName string) error
}

type minioMedia struct {
	client *minio.Client
}

func NewMediaService(endpoint, accessKey, secretKey string, useSSL bool) (MediaService, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}
	return &minioMedia{client: client}, nil
}

func (m *minioMedia) UploadImage(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, contentType string) error {
	if contentType == "" {
		contentType = "image/jpeg"
	}
	_, err := m.client.PutObject(ctx, bucketName, objectName, reader, objectSize, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

func (m *minioMedia) GetPresignedURL(bucketName, objectName string, expiry time.Duration) (string, error) {
	url, err := m.client.PresignedGetObject(context.Background(), bucketName, objectName, expiry, nil)
	if err != nil {
		return "", err
	}
	return url.String(), nil
}

func (m *minioMedia) DeleteImage(ctx context.Context, bucketName, objectName string) error {
	return m.client.RemoveObject(ctx, bucketName, objectName, minio.RemoveObjectOptions{})
}

func (m *minioMedia) EnsureBucketExists(ctx context.Context, bucketName string) error {
	found, err := m.client.BucketExists(ctx, bucketName)
	if err != nil {
		return err
	}
	if !found {
		return m.client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{})
	}
	return nil
}
