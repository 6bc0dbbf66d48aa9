package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const onboardingBucket = "onboarding-documents"

// DocumentService stores onboarding supporting documents (tax
// certificates, bank proofs) in object storage, keyed per organization.
type DocumentService interface {
	UploadOnboardingDocument(ctx context.Context, orgID, onboardingID uuid.UUID, filename, contentType string, reader io.Reader, size int64) (string, error)
	GetDocumentURL(ctx context.Context, objectName string, expiry time.Duration) (string, error)
	DeleteDocument(ctx context.Context, objectName string) error
}

type documentService struct {
	client *minio.Client
}

func NewDocumentService(endpoint, accessKey, secretKey string, useSSL bool) (DocumentService, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}
	return &documentService{client: client}, nil
}

func (s *documentService) ensureBucket(ctx context.Context) error {
	found, err := s.client.BucketExists(ctx, onboardingBucket)
	if err != nil {
		return err
	}
	if !found {
		return s.client.MakeBucket(ctx, onboardingBucket, minio.MakeBucketOptions{})
	}
	return nil
}

func (s *documentService) UploadOnboardingDocument(ctx context.Context, orgID, onboardingID uuid.UUID, filename, contentType string, reader io.Reader, size int64) (string, error) {
	if err := s.ensureBucket(ctx); err != nil {
		return "", err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	objectName := fmt.Sprintf("%s/%s/%s", orgID, onboardingID, filename)
	_, err := s.client.PutObject(ctx, onboardingBucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return objectName, nil
}

func (s *documentService) GetDocumentURL(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	url, err := s.client.PresignedGetObject(ctx, onboardingBucket, objectName, expiry, nil)
	if err != nil {
		return "", err
	}
	return url.String(), nil
}

func (s *documentService) DeleteDocument(ctx context.Context, objectName string) error {
	return s.client.RemoveObject(ctx, onboardingBucket, objectName, minio.RemoveObjectOptions{})
}
