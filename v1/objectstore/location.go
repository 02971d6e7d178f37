package objectstore

import (
	"fmt"
	"strings"
)

const s3Scheme = "s3://"

// Location is either a local file path or an object in a bucket.
type Location struct {
	Bucket string
	Key    string
	Path   string
}

// ParseLocation accepts "s3://bucket/key" or a local path.
func ParseLocation(s string) (Location, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Location{}, fmt.Errorf("objectstore: empty location")
	}
	if !strings.HasPrefix(s, s3Scheme) {
		return Location{Path: s}, nil
	}

	bucket, key, ok := strings.Cut(strings.TrimPrefix(s, s3Scheme), "/")
	if !ok || bucket == "" || strings.TrimLeft(key, "/") == "" {
		return Location{}, fmt.Errorf("objectstore: %q must look like s3://bucket/key", s)
	}
	return Location{Bucket: bucket, Key: strings.TrimLeft(key, "/")}, nil
}

// IsRemote reports whether the location refers to object storage.
func (l Location) IsRemote() bool {
	return l.Bucket != ""
}

func (l Location) String() string {
	if l.IsRemote() {
		return s3Scheme + l.Bucket + "/" + l.Key
	}
	return l.Path
}
