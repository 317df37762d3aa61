package dao

import (
	"time"

	"vidtrack/internal/model"
)

type UploadURLRequest struct {
	// 视频文件名
	Filename string `form:"filename" binding:"required,filename"`
	// MIME type, guessed from the extension when empty
	ContentType string `form:"content_type" binding:"omitempty,videotype"`
}

type UploadURLResponse struct {
	URL          string `json:"url"`
	ObjectFolder string `json:"object_folder"`
	Filename     string `json:"filename"`
	// seconds
	ExpiredIn int64 `json:"expired_in"`
}

type StartAnalysisRequest struct {
	UserId        string `json:"user_id" binding:"required"`
	StorageFolder string `json:"s3_folder_name" binding:"required,filename"`
	Filename      string `json:"filename" binding:"required,filename"`
}

type StartAnalysisResponse struct {
	JobId string `json:"job_id"`
}

type JobResponse struct {
	Job *model.JobRecord `json:"job"`
}

type URLResponse struct {
	URL string `json:"url"`
	// seconds
	ExpiredIn int64 `json:"expired_in"`
}

func NewURLResponse(url string, expiresIn time.Duration) *URLResponse {
	return &URLResponse{URL: url, ExpiredIn: int64(expiresIn / time.Second)}
}

// ListJobsRequest carries the cursor of the previous page. Both fields are
// empty on the first request.
type ListJobsRequest struct {
	JobId            string `form:"job_id"`
	RequestTimestamp uint64 `form:"request_timestamp"`
}

func (r *ListJobsRequest) Cursor(userId string) *model.PaginationCursor {
	if r.JobId == "" {
		return nil
	}
	return &model.PaginationCursor{
		JobId:            r.JobId,
		UserId:           userId,
		RequestTimestamp: r.RequestTimestamp,
	}
}

type ListJobsResponse struct {
	Jobs []*model.JobRecord `json:"jobs"`
	// null on the last page
	LastEvaluatedKey *model.PaginationCursor `json:"last_evaluated_key"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}
