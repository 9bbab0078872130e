// Package storage archives call recordings to S3-compatible object storage.
package storage

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"leadpilot_backend/platform/config"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const (
	// PresignedURLTTL is the expiration time for recording download links.
	PresignedURLTTL = 15 * time.Minute

	downloadTimeout = 2 * time.Minute
)

// RecordingStore stores call recordings in a MinIO bucket. Provider-hosted
// recording URLs expire; archiving keeps recordings available for review.
type RecordingStore struct {
	client *minio.Client
	bucket string
	http   *http.Client
}

// NewRecordingStore creates the store. Returns an error when MinIO is not
// configured; callers treat a nil store as "archival disabled".
func NewRecordingStore(cfg config.StorageConfig) (*RecordingStore, error) {
	if !cfg.IsMinIOEnabled() {
		return nil, fmt.Errorf("MinIO is not configured")
	}

	client, err := minio.New(cfg.GetMinIOEndpoint(), &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.GetMinIOAccessKey(), cfg.GetMinIOSecretKey(), ""),
		Secure: cfg.GetMinIOUseSSL(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	return &RecordingStore{
		client: client,
		bucket: cfg.GetMinioBucketCallRecordings(),
		http:   &http.Client{Timeout: downloadTimeout},
	}, nil
}

// EnsureBucketExists creates the recordings bucket if it doesn't exist.
func (s *RecordingStore) EnsureBucketExists(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
		}
	}

	return nil
}

// ArchiveRecording downloads the provider-hosted recording and stores it
// under a stable key, returning the object key.
func (s *RecordingStore) ArchiveRecording(ctx context.Context, callID uuid.UUID, recordingURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, recordingURL, nil)
	if err != nil {
		return "", fmt.Errorf("invalid recording URL: %w", err)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download recording: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("recording download returned status %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "audio/wav"
	}

	objectKey := fmt.Sprintf("calls/%s/recording.wav", callID)
	_, err = s.client.PutObject(ctx, s.bucket, objectKey, resp.Body, resp.ContentLength, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to store recording %s: %w", objectKey, err)
	}

	return objectKey, nil
}

// DownloadURL creates a presigned URL for a stored recording.
func (s *RecordingStore) DownloadURL(ctx context.Context, objectKey string) (string, time.Time, error) {
	expiresAt := time.Now().Add(PresignedURLTTL)

	presigned, err := s.client.PresignedGetObject(ctx, s.bucket, objectKey, PresignedURLTTL, make(url.Values))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate recording download URL: %w", err)
	}

	return presigned.String(), expiresAt, nil
}
