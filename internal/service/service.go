package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"vidtrack/internal/analysis"
	"vidtrack/internal/config"
	"vidtrack/internal/metrics"
	"vidtrack/internal/model"
)

var (
	ErrInvalidState    = errors.New("invalid job state")
	ErrUpstream        = errors.New("upstream failure")
	ErrInvalidArgument = errors.New("invalid argument")
)

type ObjectStore interface {
	Bucket() string
	Put(ctx context.Context, key string, data []byte, contentType string) error
	DeleteFolder(ctx context.Context, folder string) error
	PresignedPutURL(ctx context.Context, key, contentType string) (string, error)
	PresignedGetURL(ctx context.Context, key string) (string, error)
	UploadExpiry() time.Duration
	ViewExpiry() time.Duration
}

type JobStore interface {
	Put(job *model.JobRecord) error
	Get(jobId string) (*model.JobRecord, error)
	UpdateStatus(jobId string, status model.JobStatus) (model.JobStatus, error)
	UpdateSummary(jobId string, summary model.TrackingSummary) error
	UpdateMetadata(jobId string, metadata model.VideoMetadata) error
	Delete(jobId string) error
	QueryByUser(userId string, cursor *model.PaginationCursor) ([]*model.JobRecord, *model.PaginationCursor, error)
}

type Analyzer interface {
	analysis.PageFetcher
	StartTracking(ctx context.Context, bucket, key string) (string, error)
}

type Service struct {
	conf     *config.Config
	objects  ObjectStore
	jobs     JobStore
	analyzer Analyzer
	metrics  *metrics.JobMetrics
	logger   *logrus.Entry
}

func New(conf *config.Config, objects ObjectStore, jobs JobStore, analyzer Analyzer,
	m *metrics.JobMetrics, logger *logrus.Entry) *Service {
	return &Service{
		conf:     conf,
		objects:  objects,
		jobs:     jobs,
		analyzer: analyzer,
		metrics:  m,
		logger:   logger.WithField("component", "service"),
	}
}

// upstream tags collaborator failures, leaving not-found errors recognisable.
func upstream(op string, err error) error {
	if errors.Is(err, model.ErrNotFound) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrUpstream, op, err)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

func requireSucceeded(job *model.JobRecord) error {
	if job.Status != model.JobStatusSucceeded {
		return fmt.Errorf("%w: cannot get results for %s jobs", ErrInvalidState, job.Status)
	}
	return nil
}
