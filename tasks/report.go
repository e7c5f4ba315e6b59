package tasks

import (
	"fmt"
	"time"

	"studbook/batch"
	"studbook/gop"
	"studbook/log"
	"studbook/mail"
)

var notify = mail.SendNotify

// capacityReport follows the most recently active batch.
type capacityReport struct {
	creator  *gop.Creator
	batchID  uint64
	progress Progress
}

func startReportTask(creator *gop.Creator, interval time.Duration) {
	defer mail.AlertIfErr()

	r := &capacityReport{creator: creator}
	for {
		r.report()
		time.Sleep(interval)
	}
}

func (r *capacityReport) report() {
	active, err := r.creator.ActiveBatch()
	if err != nil {
		log.Error.Printf("Failed to read active batch: %v\n", err)
		return
	}

	if active != 0 && active != r.batchID {
		r.batchID = active
		r.progress = Progress{}
	}
	if r.batchID == 0 {
		return
	}

	b, _, err := r.creator.Batch(r.batchID)
	if err != nil {
		log.Error.Printf("Failed to read batch %d: %v\n", r.batchID, err)
		return
	}

	if !b.IsOpen {
		r.closed(b)
		return
	}

	// Reopened after closing, count toward exhaustion from here on.
	if r.progress.MailSent {
		r.progress = Progress{}
	}

	target := int64(batch.Ceiling - batch.LowWaterMark)
	if b.Remaining <= batch.LowWaterMark {
		target = batch.Ceiling
	}

	GetEstimatedRemainingTime(int64(b.Sold()), target, &r.progress)

	log.Printf("%sProgress of batch %d: %d/%d, %.4f%%\n",
		r.progress.RemainingTimeStr,
		b.ID,
		b.Sold(),
		target,
		r.progress.Percentage)
}

// closed sends the notify mail once per closing.
func (r *capacityReport) closed(b batch.Batch) {
	r.progress.Finished = true
	if r.progress.MailSent {
		return
	}
	r.progress.MailSent = true

	msg := fmt.Sprintf("Horses sold: %d\nHorses remaining: %d\n", b.Sold(), b.Remaining)
	if !r.progress.InitTime.IsZero() {
		msg += fmt.Sprintf("First report: %v\nClosed before: %v\n", r.progress.InitTime, now())
	}

	log.Printf("Batch %d closed with %d horses sold\n", b.ID, b.Sold())
	notify(fmt.Sprintf("Batch %d Closed", b.ID), msg)
}
