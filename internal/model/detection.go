package model

// BoundingBox coordinates are ratios of the frame dimensions.
type BoundingBox struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
}

type Person struct {
	Index int64 `json:"index"`
	// nil when the person is known to be present but was not localised
	BoundingBox *BoundingBox `json:"bounding_box,omitempty"`
}

type DetectionRecord struct {
	// offset from the start of the video, in milliseconds
	Timestamp int64   `json:"timestamp"`
	Person    *Person `json:"person,omitempty"`
}

type PersonDetectionResult struct {
	Index       int64       `json:"index"`
	BoundingBox BoundingBox `json:"bounding_box"`
}

type TrackingResult struct {
	Frame   int64                   `json:"frame"`
	Persons []PersonDetectionResult `json:"persons"`
}

// ResultsDocument is what gets written next to the video as results.json.
type ResultsDocument struct {
	VideoMetadata   *VideoMetadata   `json:"video_metadata"`
	TrackingSummary TrackingSummary  `json:"tracking_summary"`
	TrackingResults []TrackingResult `json:"tracking_results"`
}
