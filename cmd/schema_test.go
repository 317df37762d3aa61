package cmd

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runSchema(t *testing.T, args ...string) (map[string]any, error) {
	t.Helper()
	var out bytes.Buffer
	schemaCommand.SetOut(&out)
	if err := schemaCommand.RunE(schemaCommand, args); err != nil {
		return nil, err
	}
	var doc map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &doc))
	return doc, nil
}

func TestSchemaResults(t *testing.T) {
	doc, err := runSchema(t)
	require.NoError(t, err)
	props, ok := doc["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "tracking_summary")
	assert.Contains(t, props, "tracking_results")
	assert.Contains(t, props, "video_metadata")
}

func TestSchemaNotification(t *testing.T) {
	doc, err := runSchema(t, "notification")
	require.NoError(t, err)
	props := doc["properties"].(map[string]any)
	assert.Contains(t, props, "JobId")
	assert.Contains(t, props, "Video")
}

func TestSchemaUnknown(t *testing.T) {
	_, err := runSchema(t, "camera")
	assert.Error(t, err)
}
