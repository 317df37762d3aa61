package cmd

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"vidtrack/internal/analysis"
	"vidtrack/internal/config"
	"vidtrack/internal/consumer"
	"vidtrack/internal/metrics"
	"vidtrack/internal/server"
	"vidtrack/internal/service"
	"vidtrack/internal/storage"
	"vidtrack/internal/store"
	"vidtrack/pkg/log"
)

// app is everything the serve process runs. The job store directory is locked
// by its owner, so the http server and the nsq consumer share one store here.
type app struct {
	server   *server.Server
	consumer *consumer.Consumer
	jobs     *store.JobStore
	logger   *logrus.Entry
}

func newApp(ctx context.Context, conf *config.Config) (*app, error) {
	logger := log.NewLogger()

	jobs, err := store.NewJobStore(&conf.Store, logger)
	if err != nil {
		return nil, err
	}
	a := &app{jobs: jobs, logger: logger}

	objects, err := storage.NewObjectStore(&conf.S3, logger)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("init object store: %w", err)
	}

	analyzer, err := analysis.NewClient(ctx, &conf.Analysis, logger)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("init analysis client: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.NewJobMetrics(registry)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	svc := service.New(conf, objects, jobs, analyzer, m, logger)
	a.server = server.NewServer(ctx, conf, svc, registry)

	if conf.NSQ.Enabled {
		a.consumer, err = consumer.NewConsumer(&conf.NSQ, svc)
		if err != nil {
			a.close()
			return nil, err
		}
	}
	return a, nil
}

func (a *app) start() error {
	if a.consumer != nil {
		if err := a.consumer.Start(); err != nil {
			return err
		}
	}
	go a.server.Start()
	return nil
}

// shutdown stops intake before releasing the store.
func (a *app) shutdown() {
	a.server.Shutdown()
	a.close()
}

func (a *app) close() {
	if a.consumer != nil {
		a.consumer.Stop()
		a.consumer = nil
	}
	if err := a.jobs.Close(); err != nil {
		a.logger.WithError(err).Error("close job store")
	}
}
