package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vidtrack/internal/config"
	"vidtrack/internal/model"
	"vidtrack/pkg/log"
)

func testConfig() *config.AnalysisConfig {
	return &config.AnalysisConfig{
		Region:             "us-east-1",
		Endpoint:           "http://analysis.test",
		Role:               "arn:aws:iam::1:role/analysis",
		NotificationTarget: "arn:aws:sns:us-east-1:1:done",
		MaxResults:         2,
	}
}

type fakeRekognition struct {
	started  []*rekognition.StartPersonTrackingInput
	startOut *rekognition.StartPersonTrackingOutput
	requests []*rekognition.GetPersonTrackingInput
	pages    map[string]*rekognition.GetPersonTrackingOutput
	err      error
}

func (f *fakeRekognition) StartPersonTracking(_ context.Context, in *rekognition.StartPersonTrackingInput,
	_ ...func(*rekognition.Options)) (*rekognition.StartPersonTrackingOutput, error) {
	f.started = append(f.started, in)
	if f.err != nil {
		return nil, f.err
	}
	return f.startOut, nil
}

func (f *fakeRekognition) GetPersonTracking(_ context.Context, in *rekognition.GetPersonTrackingInput,
	_ ...func(*rekognition.Options)) (*rekognition.GetPersonTrackingOutput, error) {
	f.requests = append(f.requests, in)
	if f.err != nil {
		return nil, f.err
	}
	return f.pages[aws.ToString(in.NextToken)], nil
}

func box(w, h, l, t float32) *types.BoundingBox {
	return &types.BoundingBox{Width: aws.Float32(w), Height: aws.Float32(h), Left: aws.Float32(l), Top: aws.Float32(t)}
}

func TestStartTracking(t *testing.T) {
	api := &fakeRekognition{startOut: &rekognition.StartPersonTrackingOutput{JobId: aws.String("job-42")}}
	c := NewClientWithAPI(testConfig(), api, log.NewLogger())

	jobId, err := c.StartTracking(context.Background(), "bucket", "folder/clip.mp4")
	require.NoError(t, err)
	assert.Equal(t, "job-42", jobId)

	require.Len(t, api.started, 1)
	in := api.started[0]
	assert.Equal(t, "bucket", aws.ToString(in.Video.S3Object.Bucket))
	assert.Equal(t, "folder/clip.mp4", aws.ToString(in.Video.S3Object.Name))
	assert.Equal(t, "arn:aws:iam::1:role/analysis", aws.ToString(in.NotificationChannel.RoleArn))
	assert.Equal(t, "arn:aws:sns:us-east-1:1:done", aws.ToString(in.NotificationChannel.SNSTopicArn))
}

func TestStartTrackingErrors(t *testing.T) {
	api := &fakeRekognition{err: errors.New("throttled")}
	c := NewClientWithAPI(testConfig(), api, log.NewLogger())
	_, err := c.StartTracking(context.Background(), "bucket", "k")
	assert.ErrorContains(t, err, "throttled")

	api = &fakeRekognition{startOut: &rekognition.StartPersonTrackingOutput{}}
	c = NewClientWithAPI(testConfig(), api, log.NewLogger())
	_, err = c.StartTracking(context.Background(), "bucket", "k")
	assert.ErrorContains(t, err, "job id not available")
}

func TestFetchPagesThroughClient(t *testing.T) {
	api := &fakeRekognition{pages: map[string]*rekognition.GetPersonTrackingOutput{
		"": {
			JobStatus: types.VideoJobStatusSucceeded,
			VideoMetadata: &types.VideoMetadata{
				DurationMillis: aws.Int64(5000),
				FrameRate:      aws.Float32(25),
			},
			Persons: []types.PersonDetection{
				{Timestamp: 0, Person: &types.PersonDetail{Index: 0, BoundingBox: box(0.5, 0.25, 0.125, 0.75)}},
				{Timestamp: 40, Person: &types.PersonDetail{Index: 1}},
			},
			NextToken: aws.String("tok-2"),
		},
		"tok-2": {
			JobStatus: types.VideoJobStatusSucceeded,
			Persons: []types.PersonDetection{
				{Timestamp: 80, Person: &types.PersonDetail{Index: 1, BoundingBox: &types.BoundingBox{Width: aws.Float32(0.1)}}},
				{Timestamp: 120},
			},
		},
	}}
	c := NewClientWithAPI(testConfig(), api, log.NewLogger())

	detections, meta, err := FetchAll(context.Background(), c, "job-1", nil)
	require.NoError(t, err)

	require.Len(t, api.requests, 2)
	for _, in := range api.requests {
		assert.Equal(t, "job-1", aws.ToString(in.JobId))
		assert.Equal(t, types.PersonTrackingSortByTimestamp, in.SortBy)
		assert.Equal(t, int32(2), aws.ToInt32(in.MaxResults))
	}
	assert.Nil(t, api.requests[0].NextToken)
	assert.Equal(t, "tok-2", aws.ToString(api.requests[1].NextToken))

	require.Len(t, detections, 4)
	assert.Equal(t, &model.BoundingBox{Width: 0.5, Height: 0.25, Left: 0.125, Top: 0.75}, detections[0].Person.BoundingBox)
	assert.Nil(t, detections[1].Person.BoundingBox)
	// partial box is dropped, the person is kept
	assert.Equal(t, int64(1), detections[2].Person.Index)
	assert.Nil(t, detections[2].Person.BoundingBox)
	assert.Nil(t, detections[3].Person)

	require.NotNil(t, meta)
	assert.Equal(t, int64(5000), meta.Duration)
	assert.InDelta(t, 25.0, meta.FrameRate, 1e-9)
	assert.Equal(t, int64(model.DefaultFrameHeight), meta.FrameHeight)
	assert.Equal(t, int64(model.DefaultFrameWidth), meta.FrameWidth)
}

func TestFetchPageWithoutPersons(t *testing.T) {
	api := &fakeRekognition{pages: map[string]*rekognition.GetPersonTrackingOutput{
		"": {JobStatus: types.VideoJobStatusSucceeded},
	}}
	c := NewClientWithAPI(testConfig(), api, log.NewLogger())

	_, err := c.FetchPage(context.Background(), "job-1", "")
	assert.ErrorIs(t, err, ErrNoPersons)

	api.pages[""].Persons = []types.PersonDetection{}
	page, err := c.FetchPage(context.Background(), "job-1", "")
	require.NoError(t, err)
	assert.Empty(t, page.Detections)
}

func TestFetchPageUpstreamFailure(t *testing.T) {
	c := NewClientWithAPI(testConfig(), &fakeRekognition{err: errors.New("boom")}, log.NewLogger())

	_, err := c.FetchPage(context.Background(), "job-1", "")
	assert.ErrorContains(t, err, "boom")
}

// newWireClient talks to httpmock through the real rekognition client.
func newWireClient(t *testing.T) *Client {
	t.Helper()
	conf := testConfig()
	httpCli := newHTTPClient(conf)
	httpmock.ActivateNonDefault(httpCli)
	t.Cleanup(httpmock.DeactivateAndReset)

	awsConf := aws.Config{
		Region:      conf.Region,
		Credentials: credentials.NewStaticCredentialsProvider("AKID", "SECRET", ""),
	}
	return NewClientWithAPI(conf, newRekognition(awsConf, conf, httpCli), log.NewLogger())
}

var analysisURL = regexp.MustCompile(`^http://analysis\.test/?$`)

func amzJSON(status int, body string) *http.Response {
	resp := httpmock.NewStringResponse(status, body)
	resp.Header.Set("Content-Type", "application/x-amz-json-1.1")
	return resp
}

func TestWireProtocol(t *testing.T) {
	c := newWireClient(t)

	httpmock.RegisterRegexpResponder(http.MethodPost, analysisURL,
		func(req *http.Request) (*http.Response, error) {
			var body map[string]any
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				return amzJSON(http.StatusBadRequest, `{"__type":"InvalidParameterException","message":"bad body"}`), nil
			}
			switch req.Header.Get("X-Amz-Target") {
			case "RekognitionService.StartPersonTracking":
				video := body["Video"].(map[string]any)["S3Object"].(map[string]any)
				assert.Equal(t, "bucket", video["Bucket"])
				assert.Equal(t, "folder/clip.mp4", video["Name"])
				return amzJSON(http.StatusOK, `{"JobId":"job-42"}`), nil
			case "RekognitionService.GetPersonTracking":
				assert.Equal(t, "job-42", body["JobId"])
				assert.Equal(t, "TIMESTAMP", body["SortBy"])
				return amzJSON(http.StatusOK, `{
  "JobStatus": "SUCCEEDED",
  "VideoMetadata": {"DurationMillis": 5000, "FrameRate": 25.0},
  "Persons": [{"Timestamp": 40, "Person": {"Index": 3, "BoundingBox": {"Width": 0.5, "Height": 0.5, "Left": 0.25, "Top": 0.25}}}]
}`), nil
			}
			return amzJSON(http.StatusBadRequest, `{"__type":"InvalidParameterException","message":"unknown target"}`), nil
		})

	jobId, err := c.StartTracking(context.Background(), "bucket", "folder/clip.mp4")
	require.NoError(t, err)
	assert.Equal(t, "job-42", jobId)

	page, err := c.FetchPage(context.Background(), jobId, "")
	require.NoError(t, err)
	assert.Empty(t, page.NextToken)
	require.Len(t, page.Detections, 1)
	assert.Equal(t, int64(40), page.Detections[0].Timestamp)
	assert.Equal(t, int64(3), page.Detections[0].Person.Index)
	assert.Equal(t, &model.BoundingBox{Width: 0.5, Height: 0.5, Left: 0.25, Top: 0.25}, page.Detections[0].Person.BoundingBox)
	assert.InDelta(t, 25.0, page.VideoMetadata.FrameRate, 1e-9)
}

func TestWireProtocolError(t *testing.T) {
	c := newWireClient(t)

	httpmock.RegisterRegexpResponder(http.MethodPost, analysisURL,
		httpmock.ResponderFromResponse(amzJSON(http.StatusBadRequest,
			`{"__type":"AccessDeniedException","message":"access denied"}`)))

	_, err := c.StartTracking(context.Background(), "bucket", "k")
	require.Error(t, err)
	var denied *types.AccessDeniedException
	assert.ErrorAs(t, err, &denied)
	assert.Contains(t, err.Error(), "access denied")
}
