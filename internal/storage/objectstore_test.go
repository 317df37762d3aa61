package storage

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vidtrack/internal/config"
	"vidtrack/pkg/log"
)

func newTestObjectStore(t *testing.T) *ObjectStore {
	t.Helper()
	s, err := NewObjectStore(&config.S3Config{
		Bucket:          "videos",
		Endpoint:        "127.0.0.1:9000",
		AccessKeyID:     "minio",
		SecretAccessKey: "minio123",
		Region:          "us-east-1",
		UploadTTL:       3600,
		ViewTTL:         900,
	}, log.NewLogger())
	require.NoError(t, err)
	return s
}

func TestContentTypeOf(t *testing.T) {
	tests := map[string]string{
		"clip.mp4":     "video/mp4",
		"CLIP.MOV":     "video/quicktime",
		"a.b.webm":     "video/webm",
		"results.json": "application/json",
		"noext":        "application/octet-stream",
	}
	for name, want := range tests {
		assert.Equal(t, want, ContentTypeOf(name), name)
	}
}

func TestPresignedGetURLIsCached(t *testing.T) {
	s := newTestObjectStore(t)

	first, err := s.PresignedGetURL(context.Background(), "folder/clip.mp4")
	require.NoError(t, err)
	second, err := s.PresignedGetURL(context.Background(), "folder/clip.mp4")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	u, err := url.Parse(first)
	require.NoError(t, err)
	assert.Equal(t, "/videos/folder/clip.mp4", u.Path)
	assert.Equal(t, "900", u.Query().Get("X-Amz-Expires"))

	other, err := s.PresignedGetURL(context.Background(), "folder/results.json")
	require.NoError(t, err)
	assert.NotEqual(t, first, other)
}

func TestPresignedPutURLSignsContentType(t *testing.T) {
	s := newTestObjectStore(t)

	raw, err := s.PresignedPutURL(context.Background(), "folder/clip.mp4", "video/mp4")
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "3600", u.Query().Get("X-Amz-Expires"))
	assert.True(t, strings.Contains(u.Query().Get("X-Amz-SignedHeaders"), "content-type"))
}

func TestDeleteFolderRejectsEmpty(t *testing.T) {
	s := newTestObjectStore(t)
	assert.Error(t, s.DeleteFolder(context.Background(), "/"))
}
