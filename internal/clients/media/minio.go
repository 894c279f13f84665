package media

import (
	"context"
	"fmt"
	"io"
	"time"

	"vid-pulse/internal/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Store is a thin wrapper around the MinIO client used as the external
// media-storage collaborator for avatar and cover uploads.
type Store struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

// NewStore creates a MinIO-backed media store and ensures the bucket exists.
func NewStore(cfg config.Config) (*Store, error) {
	mc, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio new: %w", err)
	}

	s := &Store{
		client:  mc,
		bucket:  cfg.MinioBucket,
		baseURL: publicBaseURL(cfg),
	}

	// Ensure the bucket exists (idempotent)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := mc.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		exists, checkErr := mc.BucketExists(ctx, s.bucket)
		if checkErr != nil || !exists {
			return nil, fmt.Errorf("minio bucket ensure: %w", err)
		}
	}

	return s, nil
}

// Upload stores the object and returns its public URL.
func (s *Store) Upload(ctx context.Context, objectName string, r io.Reader, size int64, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, objectName, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return s.baseURL + "/" + objectName, nil
}

func publicBaseURL(cfg config.Config) string {
	scheme := "http"
	if cfg.MinioUseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s", scheme, cfg.MinioEndpoint, cfg.MinioBucket)
}
