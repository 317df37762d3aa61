package analysis

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/sirupsen/logrus"

	"vidtrack/internal/config"
	"vidtrack/internal/model"
)

var ErrNoPersons = errors.New("persons detection not available")

// Rekognition is the part of the rekognition client used for person tracking.
type Rekognition interface {
	StartPersonTracking(ctx context.Context, params *rekognition.StartPersonTrackingInput,
		optFns ...func(*rekognition.Options)) (*rekognition.StartPersonTrackingOutput, error)
	GetPersonTracking(ctx context.Context, params *rekognition.GetPersonTrackingInput,
		optFns ...func(*rekognition.Options)) (*rekognition.GetPersonTrackingOutput, error)
}

type Client struct {
	conf   *config.AnalysisConfig
	api    Rekognition
	logger *logrus.Entry
}

// NewClient resolves AWS credentials (static keys when configured, the default
// chain otherwise) and builds a rekognition client.
func NewClient(ctx context.Context, conf *config.AnalysisConfig, logger *logrus.Entry) (*Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(conf.Region)}
	if conf.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(conf.AccessKeyID, conf.SecretAccessKey, "")))
	}
	awsConf, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewClientWithAPI(conf, newRekognition(awsConf, conf, newHTTPClient(conf)), logger), nil
}

func NewClientWithAPI(conf *config.AnalysisConfig, api Rekognition, logger *logrus.Entry) *Client {
	return &Client{
		conf:   conf,
		api:    api,
		logger: logger.WithField("component", "analysis"),
	}
}

func newHTTPClient(conf *config.AnalysisConfig) *http.Client {
	timeout := time.Duration(conf.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 100,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

func newRekognition(awsConf aws.Config, conf *config.AnalysisConfig, httpCli *http.Client) *rekognition.Client {
	return rekognition.NewFromConfig(awsConf, func(o *rekognition.Options) {
		if conf.Endpoint != "" {
			o.BaseEndpoint = aws.String(conf.Endpoint)
		}
		o.HTTPClient = httpCli
	})
}

// StartTracking submits the video at bucket/key and returns the job id assigned by the service.
// Completion is announced on the configured notification target.
func (c *Client) StartTracking(ctx context.Context, bucket, key string) (string, error) {
	out, err := c.api.StartPersonTracking(ctx, &rekognition.StartPersonTrackingInput{
		Video: &types.Video{
			S3Object: &types.S3Object{Bucket: aws.String(bucket), Name: aws.String(key)},
		},
		NotificationChannel: &types.NotificationChannel{
			RoleArn:     aws.String(c.conf.Role),
			SNSTopicArn: aws.String(c.conf.NotificationTarget),
		},
	})
	if err != nil {
		return "", fmt.Errorf("start tracking: %w", err)
	}
	jobId := aws.ToString(out.JobId)
	if jobId == "" {
		return "", errors.New("start tracking: job id not available")
	}

	c.logger.Infof("started tracking job %s for %s/%s", jobId, bucket, key)
	return jobId, nil
}

// FetchPage returns one page of detections sorted by timestamp.
// An empty token requests the first page.
func (c *Client) FetchPage(ctx context.Context, jobId, token string) (*Page, error) {
	in := &rekognition.GetPersonTrackingInput{
		JobId:  aws.String(jobId),
		SortBy: types.PersonTrackingSortByTimestamp,
	}
	if c.conf.MaxResults > 0 {
		in.MaxResults = aws.Int32(int32(c.conf.MaxResults))
	}
	if token != "" {
		in.NextToken = aws.String(token)
	}

	out, err := c.api.GetPersonTracking(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("get tracking %s: %w", jobId, err)
	}
	if out.Persons == nil {
		return nil, fmt.Errorf("get tracking %s: %w", jobId, ErrNoPersons)
	}

	page := &Page{
		Detections: make([]model.DetectionRecord, 0, len(out.Persons)),
		NextToken:  aws.ToString(out.NextToken),
	}
	if m := out.VideoMetadata; m != nil {
		var frameRate *float64
		if m.FrameRate != nil {
			frameRate = aws.Float64(float64(*m.FrameRate))
		}
		page.VideoMetadata = model.NewVideoMetadata(m.DurationMillis, frameRate, m.FrameHeight, m.FrameWidth)
	}
	for _, p := range out.Persons {
		page.Detections = append(page.Detections, toDetection(p))
	}
	return page, nil
}

func toDetection(p types.PersonDetection) model.DetectionRecord {
	d := model.DetectionRecord{Timestamp: p.Timestamp}
	if p.Person == nil {
		return d
	}
	d.Person = &model.Person{Index: p.Person.Index}
	// a box missing any coordinate cannot be drawn
	if b := p.Person.BoundingBox; b != nil && b.Width != nil && b.Height != nil && b.Left != nil && b.Top != nil {
		d.Person.BoundingBox = &model.BoundingBox{
			Width:  float64(*b.Width),
			Height: float64(*b.Height),
			Left:   float64(*b.Left),
			Top:    float64(*b.Top),
		}
	}
	return d
}
