package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/crono/flox/internal/catalog"
)

// Scheduler triggers the catalog-wide refresh on a cron schedule. The
// heavy lifting happens in the job queue; this only kicks off dispatch.
type Scheduler struct {
	cron    *cron.Cron
	service *catalog.Service
	spec    string
	logger  *logrus.Logger
}

func New(service *catalog.Service, spec string, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		service: service,
		spec:    spec,
		logger:  logger,
	}
}

func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.logger.Info("running scheduled catalog refresh")
		if err := s.service.RefreshAll(context.Background()); err != nil {
			s.logger.WithError(err).Error("scheduled refresh failed")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to add refresh job: %w", err)
	}
	s.cron.Start()
	s.logger.WithField("schedule", s.spec).Info("scheduler started")
	return nil
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.logger.Info("scheduler stopped")
}
