package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/Aleph-Alpha/blocksearch/v1/logger"
)

// Store reads and writes pipeline files on local disk or in S3-compatible
// storage. The MinIO client is created on the first remote access.
type Store struct {
	cfg Config
	log logger.Logger

	once      sync.Once
	client    *minio.Client
	clientErr error
}

// NewStore creates a Store. It never dials; local-only runs need no MinIO settings.
func NewStore(cfg Config, log logger.Logger) *Store {
	return &Store{cfg: cfg, log: log}
}

// Open returns a reader for the location. The caller closes it.
func (s *Store) Open(ctx context.Context, loc Location) (io.ReadCloser, error) {
	if !loc.IsRemote() {
		f, err := os.Open(loc.Path)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", loc, ErrNotFound)
		}
		return f, err
	}

	client, err := s.minio()
	if err != nil {
		return nil, err
	}

	obj, err := client.GetObject(ctx, loc.Bucket, loc.Key, minio.GetObjectOptions{})
	if err != nil {
		return nil, translateError(loc, err)
	}
	// GetObject is lazy; Stat surfaces a missing object before reading.
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()
		return nil, translateError(loc, err)
	}

	s.log.Debug("Opened object", nil, map[string]interface{}{"location": loc.String()})
	return obj, nil
}

// Create writes data to the location, replacing existing content.
func (s *Store) Create(ctx context.Context, loc Location, data []byte) error {
	if !loc.IsRemote() {
		if err := os.WriteFile(loc.Path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", loc, err)
		}
		return nil
	}

	client, err := s.minio()
	if err != nil {
		return err
	}

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	info, err := client.PutObject(ctx, loc.Bucket, loc.Key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return translateError(loc, err)
	}

	s.log.Debug("Uploaded object", nil, map[string]interface{}{
		"location": loc.String(),
		"size":     info.Size,
		"etag":     info.ETag,
	})
	return nil
}

func (s *Store) minio() (*minio.Client, error) {
	s.once.Do(func() {
		s.client, s.clientErr = connectToMinio(s.cfg)
	})
	return s.client, s.clientErr
}

// connectToMinio creates a new standard MinIO client.
func connectToMinio(cfg Config) (*minio.Client, error) {
	if cfg.Endpoint == "" {
		return nil, ErrNotConfigured
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("objectstore: create minio client: %w", err)
	}
	return client, nil
}
