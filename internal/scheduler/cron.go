package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/kyvra-tech/shard-node-dashboard/internal/models"
	"github.com/kyvra-tech/shard-node-dashboard/pkg/metrics"
)

// StatusSource is what the sweep needs from the aggregator
type StatusSource interface {
	StatusOfAll(ctx context.Context) ([]*models.NodeStatus, error)
}

// StatusScheduler periodically sweeps all registered nodes and refreshes
// the per-node Prometheus gauges. It never caches request data; the
// gauges are its only output.
type StatusScheduler struct {
	cron           *cron.Cron
	source         StatusSource
	logger         *logrus.Logger
	metrics        *metrics.Metrics
	schedule       string
	jobTimeout     time.Duration
	activeJobs     sync.WaitGroup
	shutdownCtx    context.Context
	shutdownCancel context.CancelFunc
}

func NewStatusScheduler(
	source StatusSource,
	schedule string,
	jobTimeout time.Duration,
	logger *logrus.Logger,
) *StatusScheduler {
	ctx, cancel := context.WithCancel(context.Background())

	if jobTimeout <= 0 {
		jobTimeout = 5 * time.Minute
	}

	return &StatusScheduler{
		cron:           cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
		source:         source,
		logger:         logger,
		metrics:        metrics.NewMetrics(),
		schedule:       schedule,
		jobTimeout:     jobTimeout,
		shutdownCtx:    ctx,
		shutdownCancel: cancel,
	}
}

func (s *StatusScheduler) Start() {
	_, err := s.cron.AddFunc(s.schedule, s.createJobWrapper("Status Sweep", s.sweep))
	if err != nil {
		s.logger.WithError(err).Error("Failed to schedule status sweep")
		return
	}

	s.cron.Start()
	s.logger.WithField("schedule", s.schedule).Info("Status scheduler started")
}

// sweep refreshes the per-node status gauges
func (s *StatusScheduler) sweep(ctx context.Context) error {
	statuses, err := s.source.StatusOfAll(ctx)
	if err != nil {
		return err
	}

	for _, status := range statuses {
		online := status.Status == models.StatusOnline
		var height uint64
		if status.BeaconHeight != nil {
			height = *status.BeaconHeight
		}
		s.metrics.UpdateNodeStatus(status.Name, online, height)
	}

	s.logger.WithField("nodes", len(statuses)).Info("Status sweep completed")
	return nil
}

// createJobWrapper wraps a job with context, timeout, logging, and panic recovery
func (s *StatusScheduler) createJobWrapper(jobName string, jobFunc func(context.Context) error) func() {
	return func() {
		s.activeJobs.Add(1)
		defer s.activeJobs.Done()

		ctx, cancel := context.WithTimeout(s.shutdownCtx, s.jobTimeout)
		defer cancel()

		startTime := time.Now()

		s.logger.WithFields(logrus.Fields{
			"job":       jobName,
			"timestamp": startTime.UTC(),
		}).Info("Starting scheduled job")

		defer func() {
			if r := recover(); r != nil {
				s.logger.WithFields(logrus.Fields{
					"job":   jobName,
					"panic": r,
				}).Error("Job panicked")
			}
		}()

		err := jobFunc(ctx)
		duration := time.Since(startTime)

		s.metrics.RecordSchedulerJob(jobName, err == nil, duration)

		if err != nil {
			s.logger.WithFields(logrus.Fields{
				"job":      jobName,
				"duration": duration.String(),
				"error":    err.Error(),
			}).Error("Job failed")
		} else {
			s.logger.WithFields(logrus.Fields{
				"job":      jobName,
				"duration": duration.String(),
			}).Info("Job completed successfully")
		}

		if ctx.Err() == context.DeadlineExceeded {
			s.logger.WithFields(logrus.Fields{
				"job":     jobName,
				"timeout": s.jobTimeout.String(),
			}).Warn("Job timed out")
		}
	}
}

func (s *StatusScheduler) Stop() {
	s.logger.Info("Stopping status scheduler...")

	ctx := s.cron.Stop()
	s.shutdownCancel()

	done := make(chan struct{})
	go func() {
		s.activeJobs.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("All jobs completed, status scheduler stopped")
	case <-ctx.Done():
		s.logger.Info("Status scheduler stopped")
	case <-time.After(1 * time.Minute):
		s.logger.Warn("Timeout waiting for jobs to complete, forcing shutdown")
	}
}

// GetSchedulerStatus returns the current status of the scheduler
func (s *StatusScheduler) GetSchedulerStatus() map[string]interface{} {
	entries := s.cron.Entries()

	jobs := make([]map[string]interface{}, 0, len(entries))
	for _, entry := range entries {
		jobs = append(jobs, map[string]interface{}{
			"next_run": entry.Next,
			"prev_run": entry.Prev,
		})
	}

	return map[string]interface{}{
		"running":   len(entries) > 0,
		"job_count": len(entries),
		"jobs":      jobs,
	}
}
