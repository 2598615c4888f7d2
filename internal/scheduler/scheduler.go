package scheduler

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"
)

// Scheduler re-runs the analysis pipeline on a cron schedule in watch mode.
type Scheduler struct {
	Cron *cron.Cron
	Ctx  context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context) *Scheduler {
	return &Scheduler{
		Cron: cron.New(cron.WithSeconds()),
		Ctx:  ctx,
	}
}

// Register adds the analysis job under the given cron expression.
func (s *Scheduler) Register(spec string, job func() error) error {
	_, err := s.Cron.AddFunc(spec, func() {
		select {
		case <-s.Ctx.Done():
			return
		default:
		}
		log.Println("[INFO] running scheduled analysis")
		if err := job(); err != nil {
			log.Printf("[ERROR] scheduled analysis: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("register analysis job: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}
