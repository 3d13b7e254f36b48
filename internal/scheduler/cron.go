package scheduler

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/amaumene/mewatch/internal/controllers"
)

// Scheduler manages scheduled maintenance tasks
type Scheduler struct {
	cron        *cron.Cron
	cleanupCtrl *controllers.CleanupController
	logger      *logrus.Logger
}

// NewScheduler creates a new scheduler
func NewScheduler(cleanupCtrl *controllers.CleanupController, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:        cron.New(),
		cleanupCtrl: cleanupCtrl,
		logger:      logger,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.logger.Info("Starting scheduler")

	// Nightly: prune duplicate watch statuses
	_, err := s.cron.AddFunc("0 3 * * *", func() {
		s.runCleanup()
	})
	if err != nil {
		return fmt.Errorf("failed to add cleanup job: %w", err)
	}

	s.cron.Start()
	s.logger.Info("Scheduler started")

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler")
	s.cron.Stop()
}

// runCleanup executes the watch status pruning job
func (s *Scheduler) runCleanup() {
	s.logger.Info("Running scheduled watch status cleanup")

	if err := s.cleanupCtrl.PruneWatchStatuses(); err != nil {
		s.logger.WithError(err).Error("Cleanup job failed")
	} else {
		s.logger.Info("Cleanup job completed successfully")
	}
}
