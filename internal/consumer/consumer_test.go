package consumer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nsqio/go-nsq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"vidtrack/internal/config"
	"vidtrack/internal/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type completion struct {
	jobId  string
	status model.JobStatus
}

type fakeHandler struct {
	mu    sync.Mutex
	calls []completion
	err   error
}

func (f *fakeHandler) OnCompletion(_ context.Context, jobId string, status model.JobStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, completion{jobId, status})
	return f.err
}

type fakeDelegate struct {
	finished int
	requeued int
}

func (d *fakeDelegate) OnFinish(*nsq.Message)                       { d.finished++ }
func (d *fakeDelegate) OnRequeue(*nsq.Message, time.Duration, bool) { d.requeued++ }
func (d *fakeDelegate) OnTouch(*nsq.Message)                        {}

func newMessage(body string, attempts uint16) (*nsq.Message, *fakeDelegate) {
	var id nsq.MessageID
	copy(id[:], "0123456789abcdef")
	msg := nsq.NewMessage(id, []byte(body))
	msg.Attempts = attempts
	d := &fakeDelegate{}
	msg.Delegate = d
	return msg, d
}

func newTestConsumer(t *testing.T, h CompletionHandler) *Consumer {
	t.Helper()
	conf := config.DefaultConfig().NSQ
	c, err := NewConsumer(&conf, h)
	require.NoError(t, err)
	t.Cleanup(c.Stop)
	return c
}

const succeeded = `{"JobId":"job-1","Status":"SUCCEEDED","API":"StartPersonTracking",` +
	`"Video":{"S3ObjectName":"f/clip.mp4","S3Bucket":"videos"}}`

func TestHandleMessage(t *testing.T) {
	h := &fakeHandler{}
	c := newTestConsumer(t, h)

	msg, d := newMessage(succeeded, 1)
	require.NoError(t, c.HandleMessage(msg))

	assert.Equal(t, []completion{{"job-1", model.JobStatusSucceeded}}, h.calls)
	assert.Equal(t, 1, d.finished)
	assert.Equal(t, 0, d.requeued)
}

func TestHandleMessageMalformed(t *testing.T) {
	h := &fakeHandler{}
	c := newTestConsumer(t, h)

	msg, d := newMessage(`{"Status":"SUCCEEDED"}`, 1)
	require.NoError(t, c.HandleMessage(msg))

	assert.Empty(t, h.calls)
	assert.Equal(t, 1, d.finished)
}

func TestHandleMessageRequeue(t *testing.T) {
	h := &fakeHandler{err: errors.New("analysis service unavailable")}
	c := newTestConsumer(t, h)

	msg, d := newMessage(succeeded, 1)
	assert.Error(t, c.HandleMessage(msg))
	assert.Equal(t, 1, d.requeued)
	assert.Equal(t, 0, d.finished)

	// last attempt is finished rather than requeued
	msg, d = newMessage(succeeded, 2)
	assert.Error(t, c.HandleMessage(msg))
	assert.Equal(t, 0, d.requeued)
	assert.Equal(t, 1, d.finished)
}

func TestHandleMessageUnknownJob(t *testing.T) {
	h := &fakeHandler{err: model.ErrNotFound}
	c := newTestConsumer(t, h)

	msg, d := newMessage(succeeded, 1)
	assert.ErrorIs(t, c.HandleMessage(msg), model.ErrNotFound)
	assert.Equal(t, 1, d.finished)
	assert.Equal(t, 0, d.requeued)
}

func TestHandleMessageUnknownStatus(t *testing.T) {
	h := &fakeHandler{}
	c := newTestConsumer(t, h)

	msg, _ := newMessage(`{"JobId":"job-1","Status":"PARTIAL_SUCCESS"}`, 1)
	require.NoError(t, c.HandleMessage(msg))
	require.Len(t, h.calls, 1)
	assert.Equal(t, model.JobStatus("PARTIAL_SUCCESS"), h.calls[0].status)
	assert.False(t, h.calls[0].status.Known())
}
