package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stagelink/backend/config"
)

// SignatureArchive stores captured signature images in object storage.
// Signatures are legal records: the archive is write-once, read-many, and
// nothing here deletes objects.
type SignatureArchive struct {
	client *minio.Client
	bucket string
	config *config.ArchiveConfig
}

func NewSignatureArchive(cfg *config.ArchiveConfig) (*SignatureArchive, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &SignatureArchive{
		client: client,
		bucket: cfg.Bucket,
		config: cfg,
	}, nil
}

// EnsureBucket creates the bucket if it doesn't exist
func (a *SignatureArchive) EnsureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}

	if !exists {
		err = a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{})
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return nil
}

// StoreSignatureImage uploads the base64 signature payload under the
// certificate number
func (a *SignatureArchive) StoreSignatureImage(ctx context.Context, certificateNumber, imageBase64 string) error {
	objectName := signatureObjectName(certificateNumber)
	reader := strings.NewReader(imageBase64)

	_, err := a.client.PutObject(ctx, a.bucket, objectName, reader, int64(len(imageBase64)), minio.PutObjectOptions{
		ContentType: "text/plain",
	})
	if err != nil {
		return fmt.Errorf("failed to archive signature image: %w", err)
	}

	return nil
}

// SignatureImageURL generates a presigned URL for the archived image with
// the configured expiration
func (a *SignatureArchive) SignatureImageURL(ctx context.Context, certificateNumber string) (string, error) {
	objectName := signatureObjectName(certificateNumber)
	expiry := time.Duration(a.config.ExpireDays) * 24 * time.Hour

	url, err := a.client.PresignedGetObject(ctx, a.bucket, objectName, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	return url.String(), nil
}

func signatureObjectName(certificateNumber string) string {
	return fmt.Sprintf("signatures/%s.b64", certificateNumber)
}
