package storage

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/require"

	"github.com/BerylCAtieno/docvault-api/internal/config"
)

func testS3Config() *config.Config {
	return &config.Config{
		S3Endpoint:        "localhost:9000",
		S3AccessKeyID:     "minioadmin",
		S3SecretAccessKey: "minioadmin",
		S3BucketName:      "documents",
		S3Region:          "us-east-1",
	}
}

func TestS3Storage_SignedURL(t *testing.T) {
	s, err := newS3Storage(testS3Config())
	require.NoError(t, err)

	raw, err := s.SignedURL(context.Background(), "user-1/1714642200000-abcd1234.jpg", time.Hour)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	require.Equal(t, "http", u.Scheme)
	require.Equal(t, "localhost:9000", u.Host)
	require.True(t, strings.HasSuffix(u.Path, "/documents/user-1/1714642200000-abcd1234.jpg"))
	require.Equal(t, "3600", u.Query().Get("X-Amz-Expires"))
	require.Equal(t, "inline", u.Query().Get("response-content-disposition"))
	require.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
}

func TestIsNoSuchKey(t *testing.T) {
	require.True(t, isNoSuchKey(minio.ErrorResponse{Code: "NoSuchKey"}))
	require.False(t, isNoSuchKey(minio.ErrorResponse{Code: "AccessDenied"}))
	require.False(t, isNoSuchKey(errors.New("connection reset")))
}
