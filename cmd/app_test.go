package cmd

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vidtrack/internal/config"
)

func testAppConfig(t *testing.T) *config.Config {
	t.Helper()
	conf := config.DefaultConfig()
	conf.Store.Dir = t.TempDir()
	conf.Analysis.AccessKeyID = "AKID"
	conf.Analysis.SecretAccessKey = "SECRET"
	conf.Analysis.Role = "arn:aws:iam::1:role/analysis"
	conf.Analysis.NotificationTarget = "arn:aws:sns:us-east-1:1:done"
	return conf
}

func TestAppRunsConsumerOnSharedStore(t *testing.T) {
	conf := testAppConfig(t)
	conf.NSQ.Enabled = true

	a, err := newApp(context.Background(), conf)
	require.NoError(t, err)
	require.NotNil(t, a.server)
	require.NotNil(t, a.consumer)

	// a second owner of the same store directory cannot open it
	_, err = newApp(context.Background(), conf)
	assert.Error(t, err)

	a.close()
	assert.Nil(t, a.consumer)

	reopened, err := newApp(context.Background(), conf)
	require.NoError(t, err)
	reopened.close()
}

func TestAppWithoutConsumer(t *testing.T) {
	conf := testAppConfig(t)

	a, err := newApp(context.Background(), conf)
	require.NoError(t, err)
	defer a.close()
	assert.Nil(t, a.consumer)
}
