package model

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

var ErrNotFound = errors.New("job not found")

// JobStatus is one of the known lifecycle states or, for anything the analysis
// service reports that we do not recognise, the raw status text.
type JobStatus string

const (
	JobStatusInProgress JobStatus = "IN_PROGRESS"
	JobStatusSucceeded  JobStatus = "SUCCEEDED"
	JobStatusFailed     JobStatus = "FAILED"
)

// ParseJobStatus never fails: unrecognised values are kept verbatim.
func ParseJobStatus(raw string) JobStatus {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "IN_PROGRESS", "INPROGRESS":
		return JobStatusInProgress
	case "SUCCEEDED":
		return JobStatusSucceeded
	case "FAILED":
		return JobStatusFailed
	}
	return JobStatus(raw)
}

func (s JobStatus) Known() bool {
	switch s {
	case JobStatusInProgress, JobStatusSucceeded, JobStatusFailed:
		return true
	}
	return false
}

func (s JobStatus) Terminal() bool {
	return s == JobStatusSucceeded || s == JobStatusFailed
}

func (s JobStatus) String() string {
	if s.Known() {
		return string(s)
	}
	return "UNKNOWN(" + string(s) + ")"
}

func (s *JobStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = ParseJobStatus(raw)
	return nil
}

type TrackingSummary struct {
	// number of distinct persons
	TotalDetectionCount int `json:"total_detection_count"`
	// in seconds
	AverageTrackingTime float64 `json:"average_tracking_time"`
}

const (
	DefaultFrameRate   = 30.0
	DefaultFrameHeight = 9 * 400
	DefaultFrameWidth  = 16 * 400
)

type VideoMetadata struct {
	// in milliseconds
	Duration    int64   `json:"duration"`
	FrameRate   float64 `json:"frame_rate"`
	FrameHeight int64   `json:"frame_height"`
	FrameWidth  int64   `json:"frame_width"`
}

// NewVideoMetadata fills any field the analysis service omitted with its default.
func NewVideoMetadata(duration *int64, frameRate *float64, height, width *int64) *VideoMetadata {
	m := &VideoMetadata{
		Duration:    0,
		FrameRate:   DefaultFrameRate,
		FrameHeight: DefaultFrameHeight,
		FrameWidth:  DefaultFrameWidth,
	}
	if duration != nil {
		m.Duration = *duration
	}
	if frameRate != nil {
		m.FrameRate = *frameRate
	}
	if height != nil {
		m.FrameHeight = *height
	}
	if width != nil {
		m.FrameWidth = *width
	}
	return m
}

type JobRecord struct {
	JobId         string `json:"job_id"`
	UserId        string `json:"user_id"`
	StorageFolder string `json:"s3_folder_name"`
	Filename      string `json:"filename"`
	// unix seconds
	RequestTimestamp uint64           `json:"request_timestamp"`
	Status           JobStatus        `json:"job_status"`
	TrackingSummary  *TrackingSummary `json:"tracking_summary,omitempty"`
	VideoMetadata    *VideoMetadata   `json:"video_metadata,omitempty"`
}

func NewJobRecord(jobId, userId, storageFolder, filename string) *JobRecord {
	return &JobRecord{
		JobId:            jobId,
		UserId:           userId,
		StorageFolder:    storageFolder,
		Filename:         filename,
		RequestTimestamp: uint64(time.Now().Unix()),
		Status:           JobStatusInProgress,
	}
}

func (j *JobRecord) VideoKey() string {
	return j.StorageFolder + "/" + j.Filename
}

const ResultsObjectName = "results.json"

func (j *JobRecord) ResultsKey() string {
	return j.StorageFolder + "/" + ResultsObjectName
}

func (j *JobRecord) Cursor() *PaginationCursor {
	return &PaginationCursor{
		JobId:            j.JobId,
		UserId:           j.UserId,
		RequestTimestamp: j.RequestTimestamp,
	}
}
