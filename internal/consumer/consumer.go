package consumer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nsqio/go-nsq"
	"github.com/sirupsen/logrus"

	"vidtrack/internal/config"
	"vidtrack/internal/model"
	"vidtrack/pkg/log"
)

const processTimeout = 5 * time.Minute

type CompletionHandler interface {
	OnCompletion(ctx context.Context, jobId string, status model.JobStatus) error
}

// Consumer receives job completion notifications from nsq and hands them to the job service.
type Consumer struct {
	conf     *config.NSQConfig
	ctx      context.Context
	cancel   context.CancelFunc
	consumer *nsq.Consumer
	handler  CompletionHandler
	logger   *logrus.Entry
}

func NewConsumer(conf *config.NSQConfig, handler CompletionHandler) (*Consumer, error) {
	ctx, cancel := context.WithCancel(context.Background())

	logger := log.GetLogger(ctx).WithField("component", "consumer")

	nsqConf := nsq.NewConfig()
	nsqConf.MsgTimeout = processTimeout + time.Minute
	nsqConf.MaxInFlight = 10
	nsqConf.MaxAttempts = conf.MaxAttempts

	consumer, err := nsq.NewConsumer(conf.Topic, conf.Channel, nsqConf)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create NSQ consumer: %w", err)
	}
	consumer.SetLogger(&nsqLogger{logger: logger}, nsq.LogLevelWarning)

	c := &Consumer{
		conf:     conf,
		ctx:      ctx,
		cancel:   cancel,
		consumer: consumer,
		handler:  handler,
		logger:   logger,
	}

	consumer.AddHandler(c)

	return c, nil
}

func (c *Consumer) HandleMessage(message *nsq.Message) error {
	c.logger.Debugf("Received NSQ message: %s", string(message.Body))
	message.DisableAutoResponse()

	n, err := model.ParseCompletionNotification(message.Body)
	if err != nil {
		// redelivery cannot fix a malformed body
		c.logger.WithError(err).Error("Dropping malformed completion notification")
		message.Finish()
		return nil
	}

	ctx, cancel := context.WithTimeout(log.WithRequestId(c.ctx, string(message.ID[:])), processTimeout)
	defer cancel()

	logger := log.GetLogger(ctx).WithFields(logrus.Fields{
		"jobId":    n.JobId,
		"status":   n.Status.String(),
		"attempts": message.Attempts,
	})
	logger.Info("Processing completion notification")

	if err := c.handler.OnCompletion(ctx, n.JobId, n.Status); err != nil {
		if errors.Is(err, model.ErrNotFound) || c.exhausted(message) {
			logger.WithError(err).Error("Giving up on completion notification")
			message.Finish()
			return err
		}
		logger.WithError(err).Warn("Completion processing failed, requeueing")
		message.Requeue(-1)
		return err
	}

	message.Finish()
	logger.Debug("Completion notification processed")
	return nil
}

func (c *Consumer) exhausted(message *nsq.Message) bool {
	return c.conf.MaxAttempts > 0 && message.Attempts >= c.conf.MaxAttempts
}

func (c *Consumer) Start() error {
	c.logger.Info("Starting NSQ consumer...")

	err := c.consumer.ConnectToNSQDs(c.conf.NSQDAddrs)
	if err != nil {
		return fmt.Errorf("failed to connect to NSQs: %w", err)
	}

	return nil
}

// Stop cancels in-flight processing and waits for the nsq handlers to exit.
func (c *Consumer) Stop() {
	c.cancel()
	c.consumer.Stop()
	<-c.consumer.StopChan
}

type nsqLogger struct {
	logger *logrus.Entry
}

func (l *nsqLogger) Output(_ int, s string) error {
	l.logger.Info(s)
	return nil
}
