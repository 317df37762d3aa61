package cmd

import (
	"encoding/json"

	"github.com/nsqio/go-nsq"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"vidtrack/internal/config"
	"vidtrack/internal/model"
)

var (
	notifyJobId  string
	notifyStatus string
	notifyObject string
)

// notifyCommand replays a completion notification, e.g. after the consumer gave up on it.
var notifyCommand = &cobra.Command{
	Use:   "notify",
	Short: "Publish a job completion notification to NSQ",
	Run: func(cmd *cobra.Command, args []string) {
		conf, err := config.InitConfig(configFile)
		if err != nil {
			logrus.Fatal("initConfig error, ", err.Error())
		}
		if notifyJobId == "" {
			logrus.Fatal("--job-id is required")
		}
		if len(conf.NSQ.NSQDAddrs) == 0 {
			logrus.Fatal("nsq.nsqdAddrs is empty")
		}

		body, err := json.Marshal(model.CompletionNotification{
			JobId:  notifyJobId,
			Status: model.ParseJobStatus(notifyStatus),
			API:    "StartPersonTracking",
			Video: model.VideoObject{
				S3ObjectName: notifyObject,
				S3Bucket:     conf.S3.Bucket,
			},
		})
		if err != nil {
			logrus.Fatal(err)
		}

		producer, err := nsq.NewProducer(conf.NSQ.NSQDAddrs[0], nsq.NewConfig())
		if err != nil {
			logrus.Fatalf("Failed to create NSQ producer: %v", err)
		}
		defer producer.Stop()

		if err := producer.Publish(conf.NSQ.Topic, body); err != nil {
			logrus.Fatalf("Failed to publish notification: %v", err)
		}
		logrus.Infof("published %s to %s", string(body), conf.NSQ.Topic)
	},
}

func init() {
	notifyCommand.Flags().StringVarP(&notifyJobId, "job-id", "j", "", "Analysis job id")
	notifyCommand.Flags().StringVarP(&notifyStatus, "status", "s", string(model.JobStatusSucceeded), "Job status (IN_PROGRESS, SUCCEEDED, FAILED)")
	notifyCommand.Flags().StringVar(&notifyObject, "object", "", "Video object key")
}
