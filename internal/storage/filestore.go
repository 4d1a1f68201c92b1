package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
)

// NoteFileStore keeps note PDFs in an S3-compatible bucket and hands out
// publicly fetchable download URLs.
type NoteFileStore struct {
	client        *minio.Client
	bucket        string
	publicBaseURL string
	useSSL        bool
}

func NewNoteFileStore(client *minio.Client, bucket, publicBaseURL string, useSSL bool) *NoteFileStore {
	return &NoteFileStore{
		client:        client,
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		useSSL:        useSSL,
	}
}

// Upload stores data under key and returns the download URL. The bucket is
// expected to allow anonymous reads; URL signing is out of scope.
func (s *NoteFileStore) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(
		ctx,
		s.bucket,
		key,
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType},
	)
	if err != nil {
		return "", fmt.Errorf("put object failed: %w", err)
	}
	return s.ObjectURL(key), nil
}

func (s *NoteFileStore) Remove(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object failed: %w", err)
	}
	return nil
}

func (s *NoteFileStore) ObjectURL(key string) string {
	if s.publicBaseURL != "" {
		return fmt.Sprintf("%s/%s/%s", s.publicBaseURL, s.bucket, key)
	}
	scheme := "http"
	if s.useSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.client.EndpointURL().Host, s.bucket, key)
}
