package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kyvra-tech/shard-node-dashboard/internal/models"
)

type stubSource struct {
	statuses []*models.NodeStatus
	calls    int
}

func (s *stubSource) StatusOfAll(ctx context.Context) ([]*models.NodeStatus, error) {
	s.calls++
	return s.statuses, nil
}

func TestNewStatusScheduler(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	scheduler := NewStatusScheduler(&stubSource{}, "*/5 * * * *", 0, logger)

	if scheduler == nil {
		t.Fatal("Expected non-nil scheduler")
	}

	if scheduler.jobTimeout != 5*time.Minute {
		t.Errorf("Expected default job timeout of 5 minutes, got %v", scheduler.jobTimeout)
	}

	if scheduler.cron == nil {
		t.Error("Expected non-nil cron instance")
	}
}

func TestStatusScheduler_GetSchedulerStatus(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	scheduler := NewStatusScheduler(&stubSource{}, "*/5 * * * *", time.Minute, logger)
	status := scheduler.GetSchedulerStatus()

	if status == nil {
		t.Fatal("Expected non-nil status")
	}

	if _, ok := status["running"]; !ok {
		t.Error("Expected 'running' key in status")
	}

	if _, ok := status["job_count"]; !ok {
		t.Error("Expected 'job_count' key in status")
	}
}

func TestStatusScheduler_SweepUpdatesGauges(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	height := uint64(123)
	source := &stubSource{
		statuses: []*models.NodeStatus{
			{Name: "a", Status: models.StatusOnline, BeaconHeight: &height},
			{Name: "b", Status: models.StatusOffline},
		},
	}

	scheduler := NewStatusScheduler(source, "*/5 * * * *", time.Minute, logger)

	if err := scheduler.sweep(context.Background()); err != nil {
		t.Fatalf("Unexpected sweep error: %v", err)
	}

	if source.calls != 1 {
		t.Errorf("Expected one status query, got %d", source.calls)
	}
}
