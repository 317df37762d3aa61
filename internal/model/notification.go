package model

import (
	"encoding/json"
	"errors"
	"fmt"
)

type VideoObject struct {
	S3ObjectName string `json:"S3ObjectName"`
	S3Bucket     string `json:"S3Bucket"`
}

// CompletionNotification is published by the analysis service when a job finishes.
type CompletionNotification struct {
	JobId  string      `json:"JobId"`
	Status JobStatus   `json:"Status"`
	API    string      `json:"API"`
	Video  VideoObject `json:"Video"`
}

// ParseCompletionNotification decodes a notification body. The job id is mandatory.
func ParseCompletionNotification(data []byte) (*CompletionNotification, error) {
	var n CompletionNotification
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("decode completion notification: %w", err)
	}
	if n.JobId == "" {
		return nil, errors.New("completion notification without job id")
	}
	return &n, nil
}
