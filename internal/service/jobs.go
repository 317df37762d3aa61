package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"vidtrack/internal/analysis"
	"vidtrack/internal/metrics"
	"vidtrack/internal/model"
	"vidtrack/internal/tracking"
	"vidtrack/pkg/log"
)

type UploadTicket struct {
	URL          string
	ObjectFolder string
	Filename     string
	ExpiresIn    time.Duration
}

type PresignedURL struct {
	URL       string
	ExpiresIn time.Duration
}

// RequestUpload reserves a fresh folder for filename and presigns an upload into it.
func (s *Service) RequestUpload(ctx context.Context, filename, contentType string) (*UploadTicket, error) {
	if filename == "" || contentType == "" {
		return nil, invalid("filename and content type are required")
	}
	folder := uuid.New().String()
	url, err := s.objects.PresignedPutURL(ctx, folder+"/"+filename, contentType)
	if err != nil {
		return nil, upstream("presign upload", err)
	}
	return &UploadTicket{
		URL:          url,
		ObjectFolder: folder,
		Filename:     filename,
		ExpiresIn:    s.objects.UploadExpiry(),
	}, nil
}

// SubmitJob starts the analysis of an uploaded video and records the job as in progress.
func (s *Service) SubmitJob(ctx context.Context, userId, folder, filename string) (*model.JobRecord, error) {
	if userId == "" || folder == "" || filename == "" {
		return nil, invalid("user id, folder and filename are required")
	}

	jobId, err := s.analyzer.StartTracking(ctx, s.objects.Bucket(), folder+"/"+filename)
	if err != nil {
		return nil, upstream("start tracking", err)
	}

	job := model.NewJobRecord(jobId, userId, folder, filename)
	if err := s.jobs.Put(job); err != nil {
		return nil, upstream("register job", err)
	}
	s.metrics.JobSubmitted()
	log.GetLogger(ctx).Infof("job %s submitted for user %s", jobId, userId)
	return job, nil
}

func (s *Service) GetJob(_ context.Context, jobId string) (*model.JobRecord, error) {
	if jobId == "" {
		return nil, invalid("job id is required")
	}
	job, err := s.jobs.Get(jobId)
	if err != nil {
		return nil, upstream("get job", err)
	}
	return job, nil
}

func (s *Service) VideoURL(ctx context.Context, jobId string) (*PresignedURL, error) {
	job, err := s.GetJob(ctx, jobId)
	if err != nil {
		return nil, err
	}
	url, err := s.objects.PresignedGetURL(ctx, job.VideoKey())
	if err != nil {
		return nil, upstream("presign video", err)
	}
	return &PresignedURL{URL: url, ExpiresIn: s.objects.ViewExpiry()}, nil
}

// ResultsURL presigns the stored results document. Only succeeded jobs have one.
func (s *Service) ResultsURL(ctx context.Context, jobId string) (*PresignedURL, error) {
	job, err := s.GetJob(ctx, jobId)
	if err != nil {
		return nil, err
	}
	if err := requireSucceeded(job); err != nil {
		return nil, err
	}
	url, err := s.objects.PresignedGetURL(ctx, job.ResultsKey())
	if err != nil {
		return nil, upstream("presign results", err)
	}
	return &PresignedURL{URL: url, ExpiresIn: s.objects.ViewExpiry()}, nil
}

// Results recomputes the results of a succeeded job from the analysis service
// and persists the derived summary.
func (s *Service) Results(ctx context.Context, jobId string) (*model.ResultsDocument, error) {
	job, err := s.GetJob(ctx, jobId)
	if err != nil {
		return nil, err
	}
	if err := requireSucceeded(job); err != nil {
		return nil, err
	}
	return s.processResults(ctx, job)
}

// OnCompletion records the status reported by the analysis service. A succeeded
// job then has its results fetched, aggregated and stored.
func (s *Service) OnCompletion(ctx context.Context, jobId string, status model.JobStatus) error {
	logger := log.GetLogger(ctx).WithField("jobId", jobId)

	previous, err := s.jobs.UpdateStatus(jobId, status)
	if err != nil {
		return upstream("update status", err)
	}
	if previous.Terminal() && previous != status {
		logger.Warnf("status of finished job overwritten: %s -> %s", previous, status)
	}
	if status.Known() {
		s.metrics.Completion(string(status))
	} else {
		logger.Warnf("unrecognised job status %q", string(status))
		s.metrics.Completion("UNKNOWN")
	}

	if status != model.JobStatusSucceeded {
		return nil
	}

	job, err := s.jobs.Get(jobId)
	if err != nil {
		return upstream("get job", err)
	}
	_, err = s.processResults(ctx, job)
	return err
}

func (s *Service) processResults(ctx context.Context, job *model.JobRecord) (doc *model.ResultsDocument, err error) {
	logger := log.GetLogger(ctx).WithField("jobId", job.JobId)
	start := time.Now()
	defer func() {
		outcome := metrics.OutcomeSuccess
		if err != nil {
			outcome = metrics.OutcomeError
		}
		s.metrics.ResultsProcessed(outcome, time.Since(start))
	}()

	detections, metadata, err := analysis.FetchAll(ctx, s.analyzer, job.JobId, s.metrics.DetectionPage)
	if err != nil {
		return nil, upstream("fetch detections", err)
	}
	if metadata != nil && metadata.FrameRate <= 0 {
		logger.Warnf("analysis service reported frame rate %v, using %v", metadata.FrameRate, model.DefaultFrameRate)
		fixed := *metadata
		fixed.FrameRate = model.DefaultFrameRate
		metadata = &fixed
	}

	doc, err = tracking.Aggregate(detections, metadata)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	if err := s.objects.Put(ctx, job.ResultsKey(), data, "application/json"); err != nil {
		return nil, upstream("store results", err)
	}
	if err := s.jobs.UpdateSummary(job.JobId, doc.TrackingSummary); err != nil {
		return nil, upstream("update summary", err)
	}
	if metadata != nil {
		if err := s.jobs.UpdateMetadata(job.JobId, *metadata); err != nil {
			return nil, upstream("update metadata", err)
		}
	}

	logger.Infof("aggregated %d detections into %d frames, %d persons",
		len(detections), len(doc.TrackingResults), doc.TrackingSummary.TotalDetectionCount)
	return doc, nil
}

// ListJobs returns one page of the user's jobs, newest first.
func (s *Service) ListJobs(_ context.Context, userId string, cursor *model.PaginationCursor) ([]*model.JobRecord, *model.PaginationCursor, error) {
	if userId == "" {
		return nil, nil, invalid("user id is required")
	}
	if err := cursor.CheckOwner(userId); err != nil {
		return nil, nil, err
	}
	jobs, next, err := s.jobs.QueryByUser(userId, cursor)
	if err != nil {
		return nil, nil, upstream("query jobs", err)
	}
	return jobs, next, nil
}

// DeleteJob removes the job's stored video and results, then the record itself.
func (s *Service) DeleteJob(ctx context.Context, jobId string) error {
	job, err := s.GetJob(ctx, jobId)
	if err != nil {
		return err
	}
	if err := s.objects.DeleteFolder(ctx, job.StorageFolder); err != nil {
		return upstream("delete objects", err)
	}
	if err := s.jobs.Delete(jobId); err != nil {
		return upstream("delete job", err)
	}
	log.GetLogger(ctx).Infof("job %s deleted", jobId)
	return nil
}
