package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"vidtrack/internal/config"
)

var serveCommand = &cobra.Command{
	Use:   "serve",
	Short: "Start vidtrack API server",
	Long: `Start vidtrack API server.
With nsq.enabled set, completion notifications are also consumed from NSQ in this process.`,
	Run: func(cmd *cobra.Command, args []string) {
		runServe()
	},
}

func runServe() {
	conf, err := config.InitConfig(configFile)
	if err != nil {
		logrus.Fatal("initConfig error, ", err.Error())
	}

	logrus.Infof("listen: %s, bucket: %s, store: %s, nsq: %v", conf.Addr, conf.S3.Bucket, conf.Store.Dir, conf.NSQ.Enabled)

	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	a, err := newApp(ctx, conf)
	if err != nil {
		logrus.Fatalf("failed to init vidtrack: %v", err)
	}
	if err := a.start(); err != nil {
		a.close()
		logrus.Fatalf("failed to start: %v", err)
	}

	termChan := make(chan os.Signal, 1)
	signal.Notify(termChan, syscall.SIGINT, syscall.SIGTERM)

	<-termChan
	logrus.Infof("server is shutting down...")
	a.shutdown()
}
