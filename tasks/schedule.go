package tasks

import (
	"errors"

	"github.com/robfig/cron/v3"

	"studbook/config"
	"studbook/gop"
	"studbook/log"
	"studbook/mail"
	"studbook/revert"
	"studbook/tx"
)

// Scheduler opens and closes batches on cron expressions, calling as the administrator.
type Scheduler struct {
	cron    *cron.Cron
	creator *gop.Creator
}

// NewScheduler registers a job for every open and close expression.
func NewScheduler(creator *gop.Creator, schedules []config.BatchSchedule) (*Scheduler, error) {
	s := &Scheduler{
		cron:    cron.New(),
		creator: creator,
	}

	for _, sched := range schedules {
		if _, err := s.cron.AddFunc(sched.Open, s.openJob(sched.Batch)); err != nil {
			return nil, err
		}

		if sched.Close == "" {
			continue
		}
		if _, err := s.cron.AddFunc(sched.Close, s.closeJob(sched.Batch)); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Start runs the jobs in their own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// Len returns the number of registered jobs.
func (s *Scheduler) Len() int {
	return len(s.cron.Entries())
}

func (s *Scheduler) openJob(id uint64) func() {
	return func() {
		defer mail.AlertIfErr()

		err := s.creator.OpenBatch(tx.From(s.creator.Admin()), id)
		switch {
		case err == nil:
			log.Printf("Batch %d opened\n", id)
		case errors.Is(err, revert.ErrBatchConflict):
			log.Printf("Batch %d stays closed: %v\n", id, err)
		default:
			log.Error.Printf("Failed to open batch %d: %v\n", id, err)
		}
	}
}

func (s *Scheduler) closeJob(id uint64) func() {
	return func() {
		defer mail.AlertIfErr()

		if err := s.creator.CloseBatch(tx.From(s.creator.Admin()), id); err != nil {
			log.Error.Printf("Failed to close batch %d: %v\n", id, err)
			return
		}
		log.Printf("Batch %d closed\n", id)
	}
}
