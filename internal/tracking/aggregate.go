// Package tracking turns the raw per-frame person detections of an analysis job
// into a scalar summary and a frame-grouped timeline.
package tracking

import (
	"fmt"
	"math"
	"sort"

	"vidtrack/internal/model"
)

type window struct {
	first int64
	last  int64
}

// Summarize counts distinct persons and averages how long each was tracked.
// Records without a person are ignored; a missing bounding box does not matter here.
func Summarize(detections []model.DetectionRecord) model.TrackingSummary {
	windows := make(map[int64]*window)
	for _, d := range detections {
		if d.Person == nil {
			continue
		}
		w, ok := windows[d.Person.Index]
		if !ok {
			windows[d.Person.Index] = &window{first: d.Timestamp, last: d.Timestamp}
			continue
		}
		w.first = min(w.first, d.Timestamp)
		w.last = max(w.last, d.Timestamp)
	}

	summary := model.TrackingSummary{TotalDetectionCount: len(windows)}
	if len(windows) == 0 {
		return summary
	}

	var total float64
	for _, w := range windows {
		total += float64(w.last-w.first) / 1000.0
	}
	summary.AverageTrackingTime = total / float64(len(windows))
	return summary
}

// FrameOf maps a video offset to a frame number. Halves round away from zero.
func FrameOf(timestampMs int64, frameRate float64) int64 {
	frameDuration := 1000.0 / frameRate
	return int64(math.Round(float64(timestampMs) / frameDuration))
}

// Timeline groups localised detections by frame, sorted by frame ascending.
// Persons within a frame keep input order and are not de-duplicated.
func Timeline(detections []model.DetectionRecord, frameRate float64) ([]model.TrackingResult, error) {
	if frameRate <= 0 || math.IsNaN(frameRate) || math.IsInf(frameRate, 0) {
		return nil, fmt.Errorf("frame rate must be positive, got %v", frameRate)
	}

	byFrame := make(map[int64][]model.PersonDetectionResult)
	for _, d := range detections {
		if d.Person == nil || d.Person.BoundingBox == nil {
			continue
		}
		frame := FrameOf(d.Timestamp, frameRate)
		byFrame[frame] = append(byFrame[frame], model.PersonDetectionResult{
			Index:       d.Person.Index,
			BoundingBox: *d.Person.BoundingBox,
		})
	}

	results := make([]model.TrackingResult, 0, len(byFrame))
	for frame, persons := range byFrame {
		results = append(results, model.TrackingResult{Frame: frame, Persons: persons})
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].Frame < results[j].Frame
	})
	return results, nil
}

// Aggregate builds the full results document for one job.
// A nil metadata falls back to the default frame rate.
func Aggregate(detections []model.DetectionRecord, metadata *model.VideoMetadata) (*model.ResultsDocument, error) {
	frameRate := model.DefaultFrameRate
	if metadata != nil {
		frameRate = metadata.FrameRate
	}

	timeline, err := Timeline(detections, frameRate)
	if err != nil {
		return nil, err
	}

	return &model.ResultsDocument{
		VideoMetadata:   metadata,
		TrackingSummary: Summarize(detections),
		TrackingResults: timeline,
	}, nil
}
