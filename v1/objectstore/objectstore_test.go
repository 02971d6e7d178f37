package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aleph-Alpha/blocksearch/v1/logger"
)

func TestParseLocation(t *testing.T) {
	tests := []struct {
		in      string
		want    Location
		wantErr bool
	}{
		{in: "block_data.json", want: Location{Path: "block_data.json"}},
		{in: "/tmp/x.json", want: Location{Path: "/tmp/x.json"}},
		{in: "s3://blocks/exports/a.json", want: Location{Bucket: "blocks", Key: "exports/a.json"}},
		{in: "s3://blocks//a.json", want: Location{Bucket: "blocks", Key: "a.json"}},
		{in: "s3://blocks", wantErr: true},
		{in: "s3://blocks/", wantErr: true},
		{in: "s3:///a.json", wantErr: true},
		{in: "  ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLocation(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLocationString(t *testing.T) {
	assert.Equal(t, "s3://b/k.json", Location{Bucket: "b", Key: "k.json"}.String())
	assert.Equal(t, "local.json", Location{Path: "local.json"}.String())
	assert.True(t, Location{Bucket: "b", Key: "k"}.IsRemote())
	assert.False(t, Location{Path: "p"}.IsRemote())
}

func TestLocalCreateAndOpen(t *testing.T) {
	s := NewStore(Config{}, logger.NewNopLogger())
	ctx := context.Background()
	loc := Location{Path: filepath.Join(t.TempDir(), "out.json")}

	require.NoError(t, s.Create(ctx, loc, []byte(`[]`)))

	rc, err := s.Open(ctx, loc)
	require.NoError(t, err)
	defer rc.Close()
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(b))
}

func TestLocalNotFound(t *testing.T) {
	s := NewStore(Config{}, logger.NewNopLogger())

	_, err := s.Open(context.Background(), Location{Path: filepath.Join(t.TempDir(), "missing.json")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalCreateIntoMissingDir(t *testing.T) {
	s := NewStore(Config{}, logger.NewNopLogger())

	err := s.Create(context.Background(), Location{Path: filepath.Join(t.TempDir(), "no", "such", "x.json")}, nil)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRemoteWithoutEndpoint(t *testing.T) {
	s := NewStore(Config{}, logger.NewNopLogger())

	_, err := s.Open(context.Background(), Location{Bucket: "b", Key: "k"})
	assert.ErrorIs(t, err, ErrNotConfigured)

	err = s.Create(context.Background(), Location{Bucket: "b", Key: "k"}, []byte("x"))
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestTranslateError(t *testing.T) {
	loc := Location{Bucket: "b", Key: "k"}

	err := translateError(loc, minio.ErrorResponse{Code: "NoSuchKey", Message: "The specified key does not exist"})
	assert.ErrorIs(t, err, ErrNotFound)

	err = translateError(loc, minio.ErrorResponse{Code: "NoSuchBucket"})
	assert.ErrorIs(t, err, ErrNotFound)

	other := errors.New("connection refused")
	err = translateError(loc, fmt.Errorf("dial: %w", other))
	assert.ErrorIs(t, err, other)
	assert.NotErrorIs(t, err, ErrNotFound)

	assert.NoError(t, translateError(loc, nil))
}
