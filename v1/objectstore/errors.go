package objectstore

import (
	"errors"
	"fmt"

	"github.com/minio/minio-go/v7"
)

var (
	// ErrNotFound is returned when the file or object does not exist.
	ErrNotFound = errors.New("objectstore: not found")

	// ErrNotConfigured is returned for s3:// locations without MINIO_ENDPOINT.
	ErrNotConfigured = errors.New("objectstore: MINIO_ENDPOINT is not set")
)

// translateError maps S3 error codes onto package errors.
func translateError(loc Location, err error) error {
	if err == nil {
		return nil
	}
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket", "NoSuchObject":
		return fmt.Errorf("%s: %w", loc, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", loc, err)
}
