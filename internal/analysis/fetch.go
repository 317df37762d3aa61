package analysis

import (
	"context"
	"errors"
	"fmt"

	"vidtrack/internal/model"
)

type Page struct {
	Detections    []model.DetectionRecord
	VideoMetadata *model.VideoMetadata
	NextToken     string
}

type PageFetcher interface {
	FetchPage(ctx context.Context, jobId, token string) (*Page, error)
}

// FetchAll drains every page of a job's detections in service order.
// Pages are requested one after another since each needs the previous token.
// Any failed page discards everything fetched so far.
// A token the service already returned once ends the fetch with an error.
// onPage, if not nil, is called after each page arrives.
func FetchAll(ctx context.Context, f PageFetcher, jobId string, onPage func(n int)) ([]model.DetectionRecord, *model.VideoMetadata, error) {
	if jobId == "" {
		return nil, nil, errors.New("job id is empty")
	}

	var (
		detections []model.DetectionRecord
		metadata   *model.VideoMetadata
		token      string
		seen       = make(map[string]struct{})
	)
	for pageNo := 1; ; pageNo++ {
		page, err := f.FetchPage(ctx, jobId, token)
		if err != nil {
			return nil, nil, fmt.Errorf("fetch page %d: %w", pageNo, err)
		}
		if onPage != nil {
			onPage(len(page.Detections))
		}
		detections = append(detections, page.Detections...)
		if metadata == nil {
			metadata = page.VideoMetadata
		}
		if page.NextToken == "" {
			break
		}
		if _, ok := seen[page.NextToken]; ok {
			return nil, nil, fmt.Errorf("fetch page %d: analysis service repeated continuation token %q", pageNo, page.NextToken)
		}
		seen[page.NextToken] = struct{}{}
		token = page.NextToken
	}
	return detections, metadata, nil
}
