package tracking

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vidtrack/internal/model"
)

func box(left, top float64) *model.BoundingBox {
	return &model.BoundingBox{Width: 0.1, Height: 0.2, Left: left, Top: top}
}

func seen(index, ts int64, b *model.BoundingBox) model.DetectionRecord {
	return model.DetectionRecord{Timestamp: ts, Person: &model.Person{Index: index, BoundingBox: b}}
}

func TestSummarizeEmpty(t *testing.T) {
	assert.Equal(t, model.TrackingSummary{}, Summarize(nil))

	timeline, err := Timeline(nil, 30)
	require.NoError(t, err)
	assert.Empty(t, timeline)
}

func TestSummarizeSinglePerson(t *testing.T) {
	s := Summarize([]model.DetectionRecord{
		seen(0, 1000, box(0, 0)),
		seen(0, 4000, box(0, 0)),
	})
	assert.Equal(t, 1, s.TotalDetectionCount)
	assert.InDelta(t, 3.0, s.AverageTrackingTime, 1e-9)
}

func TestSummarizeCountsUnlocalisedDetections(t *testing.T) {
	s := Summarize([]model.DetectionRecord{
		seen(0, 0, box(0, 0)),
		seen(0, 2000, nil),
		seen(1, 500, nil),
		{Timestamp: 9000},
	})
	assert.Equal(t, 2, s.TotalDetectionCount)
	// person 0: 2s, person 1: 0s
	assert.InDelta(t, 1.0, s.AverageTrackingTime, 1e-9)
}

func TestSummarizeIsOrderIndependent(t *testing.T) {
	detections := []model.DetectionRecord{
		seen(0, 100, box(0, 0)),
		seen(1, 300, nil),
		seen(0, 5100, box(0, 0)),
		seen(2, 700, box(0, 0)),
		seen(1, 2300, box(0, 0)),
		seen(0, 2600, nil),
	}
	want := Summarize(detections)

	r := rand.New(rand.NewSource(7))
	for i := 0; i < 10; i++ {
		shuffled := append([]model.DetectionRecord(nil), detections...)
		r.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		got := Summarize(shuffled)
		assert.Equal(t, want.TotalDetectionCount, got.TotalDetectionCount)
		assert.InDelta(t, want.AverageTrackingTime, got.AverageTrackingTime, 1e-9)
	}
	assert.Equal(t, 3, want.TotalDetectionCount)
	assert.InDelta(t, (5.0+2.0+0.0)/3.0, want.AverageTrackingTime, 1e-9)
}

func TestFrameOf(t *testing.T) {
	assert.Equal(t, int64(3), FrameOf(100, 30.0))
	assert.Equal(t, int64(0), FrameOf(0, 30.0))
	assert.Equal(t, int64(30), FrameOf(1000, 30.0))
	// 20ms at 25fps is exactly half a frame
	assert.Equal(t, int64(1), FrameOf(20, 25.0))
}

func TestTimelineGroupsByFrame(t *testing.T) {
	detections := []model.DetectionRecord{
		seen(1, 100, box(0.5, 0.5)),
		seen(0, 100, box(0.1, 0.1)),
		// 101ms and 100ms both land on frame 3
		seen(0, 101, box(0.2, 0.1)),
		seen(2, 1000, box(0.3, 0.3)),
		seen(3, 100, nil),
		{Timestamp: 100},
	}

	timeline, err := Timeline(detections, 30.0)
	require.NoError(t, err)
	require.Len(t, timeline, 2)

	assert.Equal(t, int64(3), timeline[0].Frame)
	assert.ElementsMatch(t, []model.PersonDetectionResult{
		{Index: 1, BoundingBox: *box(0.5, 0.5)},
		{Index: 0, BoundingBox: *box(0.1, 0.1)},
		{Index: 0, BoundingBox: *box(0.2, 0.1)},
	}, timeline[0].Persons)

	assert.Equal(t, int64(30), timeline[1].Frame)
	assert.Equal(t, []model.PersonDetectionResult{{Index: 2, BoundingBox: *box(0.3, 0.3)}}, timeline[1].Persons)
}

func TestTimelineSortedByFrame(t *testing.T) {
	var detections []model.DetectionRecord
	for ts := int64(5000); ts >= 0; ts -= 250 {
		detections = append(detections, seen(ts%3, ts, box(0, 0)))
	}

	timeline, err := Timeline(detections, 24.0)
	require.NoError(t, err)
	require.NotEmpty(t, timeline)
	for i := 1; i < len(timeline); i++ {
		assert.Less(t, timeline[i-1].Frame, timeline[i].Frame)
	}
}

func TestTimelineRejectsBadFrameRate(t *testing.T) {
	for _, rate := range []float64{0, -30} {
		_, err := Timeline([]model.DetectionRecord{seen(0, 0, box(0, 0))}, rate)
		assert.Error(t, err)
	}
}

func TestAggregate(t *testing.T) {
	detections := []model.DetectionRecord{
		seen(0, 0, box(0, 0)),
		seen(0, 1000, box(0, 0)),
	}

	doc, err := Aggregate(detections, nil)
	require.NoError(t, err)
	assert.Nil(t, doc.VideoMetadata)
	assert.Equal(t, 1, doc.TrackingSummary.TotalDetectionCount)
	require.Len(t, doc.TrackingResults, 2)
	assert.Equal(t, int64(30), doc.TrackingResults[1].Frame)

	meta := &model.VideoMetadata{FrameRate: 10}
	doc, err = Aggregate(detections, meta)
	require.NoError(t, err)
	assert.Same(t, meta, doc.VideoMetadata)
	assert.Equal(t, int64(10), doc.TrackingResults[1].Frame)
}
