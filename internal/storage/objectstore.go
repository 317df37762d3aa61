package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"vidtrack/internal/config"
)

type ObjectStore struct {
	conf     *config.S3Config
	minioCli *minio.Client
	// presigned view urls, reused for half their lifetime
	viewUrls *cache.Cache
	logger   *logrus.Entry
}

func NewObjectStore(conf *config.S3Config, logger *logrus.Entry) (*ObjectStore, error) {
	region := conf.Region
	if region == "" {
		region = "us-east-1"
	}
	minioCli, err := minio.New(conf.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(conf.AccessKeyID, conf.SecretAccessKey, ""),
		Secure: conf.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client failed: %w", err)
	}

	reuse := conf.ViewExpiry() / 2
	return &ObjectStore{
		conf:     conf,
		minioCli: minioCli,
		viewUrls: cache.New(reuse, reuse*2),
		logger:   logger.WithField("component", "storage"),
	}, nil
}

func (s *ObjectStore) Bucket() string {
	return s.conf.Bucket
}

// ContentTypeOf guesses a content type from the file extension.
func ContentTypeOf(filename string) string {
	switch strings.ToLower(strings.TrimPrefix(path.Ext(filename), ".")) {
	case "mp4", "m4v":
		return "video/mp4"
	case "mov":
		return "video/quicktime"
	case "avi":
		return "video/avi"
	case "mkv":
		return "video/x-matroska"
	case "webm":
		return "video/webm"
	case "mpg", "mpeg":
		return "video/mpeg"
	case "json":
		return "application/json"
	case "jpg", "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	}
	return "application/octet-stream"
}

func (s *ObjectStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.minioCli.PutObject(
		ctx,
		s.conf.Bucket,
		strings.TrimPrefix(key, "/"),
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{
			ContentType: contentType,
		},
	)
	if err != nil {
		return fmt.Errorf("put object %s failed: %w", key, err)
	}
	s.viewUrls.Delete(key)
	return nil
}

// DeleteFolder removes every object stored under folder/.
func (s *ObjectStore) DeleteFolder(ctx context.Context, folder string) error {
	folder = strings.Trim(folder, "/")
	if folder == "" {
		return fmt.Errorf("refusing to delete empty folder")
	}

	listCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var keys []string
	for obj := range s.minioCli.ListObjects(listCtx, s.conf.Bucket, minio.ListObjectsOptions{
		Prefix:    folder + "/",
		Recursive: true,
	}) {
		if obj.Err != nil {
			return fmt.Errorf("list objects under %s failed: %w", folder, obj.Err)
		}
		keys = append(keys, obj.Key)
	}

	for _, key := range keys {
		if err := s.minioCli.RemoveObject(ctx, s.conf.Bucket, key, minio.RemoveObjectOptions{}); err != nil {
			return fmt.Errorf("remove object %s failed: %w", key, err)
		}
		s.viewUrls.Delete(key)
	}
	s.logger.Debugf("removed %d objects under %s", len(keys), folder)
	return nil
}

// PresignedPutURL lets a client upload key directly, pinned to contentType.
func (s *ObjectStore) PresignedPutURL(ctx context.Context, key, contentType string) (string, error) {
	headers := http.Header{}
	headers.Set("Content-Type", contentType)
	u, err := s.minioCli.PresignHeader(ctx, http.MethodPut, s.conf.Bucket, key, s.conf.UploadExpiry(), nil, headers)
	if err != nil {
		return "", fmt.Errorf("presign put %s failed: %w", key, err)
	}
	return u.String(), nil
}

func (s *ObjectStore) PresignedGetURL(ctx context.Context, key string) (string, error) {
	if cached, found := s.viewUrls.Get(key); found {
		if u, ok := cached.(string); ok {
			return u, nil
		}
	}

	u, err := s.minioCli.PresignedGetObject(ctx, s.conf.Bucket, key, s.conf.ViewExpiry(), nil)
	if err != nil {
		return "", fmt.Errorf("presign get %s failed: %w", key, err)
	}
	s.viewUrls.Set(key, u.String(), cache.DefaultExpiration)
	return u.String(), nil
}

func (s *ObjectStore) UploadExpiry() time.Duration {
	return s.conf.UploadExpiry()
}

func (s *ObjectStore) ViewExpiry() time.Duration {
	return s.conf.ViewExpiry()
}
