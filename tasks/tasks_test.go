package tasks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studbook/config"
	"studbook/gop"
	"studbook/ledger"
	"studbook/state"
	"studbook/tx"
	"studbook/util"
)

var (
	admin = util.GetAddressFromSeed("owner")
	buyer = util.GetAddressFromSeed("acc2")
)

func newCreator() *gop.Creator {
	return gop.NewCreator(admin, state.NewMemory(), ledger.NewMemory())
}

func admit(t *testing.T, c *gop.Creator, n int) {
	call := tx.From(buyer).WithValue(gop.Price)
	for i := 0; i < n; i++ {
		_, err := c.CreateGOP(call, buyer, "")
		require.NoError(t, err)
	}
}

func activeBatch(t *testing.T, c *gop.Creator) uint64 {
	id, err := c.ActiveBatch()
	require.NoError(t, err)
	return id
}

func TestNewScheduler(t *testing.T) {
	s, err := NewScheduler(newCreator(), []config.BatchSchedule{
		{Batch: 3, Open: "0 12 * * 1", Close: "0 12 * * 3"},
		{Batch: 5, Open: "0 12 * * 5"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, s.Len())

	_, err = NewScheduler(newCreator(), []config.BatchSchedule{
		{Batch: 3, Open: "every monday"},
	})
	assert.Error(t, err)
}

func TestSchedulerJobs(t *testing.T) {
	c := newCreator()
	s, err := NewScheduler(c, nil)
	require.NoError(t, err)

	s.openJob(3)()
	assert.Equal(t, uint64(3), activeBatch(t, c))

	// A second batch cannot open while 3 is active.
	s.openJob(5)()
	assert.Equal(t, uint64(3), activeBatch(t, c))

	s.closeJob(3)()
	assert.Zero(t, activeBatch(t, c))

	s.openJob(5)()
	assert.Equal(t, uint64(5), activeBatch(t, c))

	s.Start()
	s.Stop()
}

func TestGetEstimatedRemainingTime(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	defer func() { now = time.Now }()

	p := Progress{}

	now = func() time.Time { return start }
	GetEstimatedRemainingTime(100, 500, &p)
	assert.Equal(t, start, p.InitTime)
	assert.Equal(t, 20.0, p.Percentage)
	assert.Empty(t, p.RemainingTimeStr)

	// 100 more sold in an hour, 300 left.
	now = func() time.Time { return start.Add(time.Hour) }
	GetEstimatedRemainingTime(200, 500, &p)
	assert.Equal(t, 40.0, p.Percentage)
	assert.Equal(t, "(03h 00m 00s left)", p.RemainingTimeStr)

	GetEstimatedRemainingTime(500, 500, &p)
	assert.Equal(t, 100.0, p.Percentage)
	assert.Empty(t, p.RemainingTimeStr)
}

func TestCapacityReport(t *testing.T) {
	mails := []string{}
	defer func(prev func(string, string)) { notify = prev }(notify)
	notify = func(subject string, content string) {
		mails = append(mails, subject)
	}

	c := newCreator()
	r := &capacityReport{creator: c}

	r.report()
	assert.Zero(t, r.batchID)

	require.NoError(t, c.OpenBatch(tx.From(admin), 3))
	admit(t, c, 100)

	r.report()
	assert.Equal(t, uint64(3), r.batchID)
	assert.Equal(t, 20.0, r.progress.Percentage)

	// The 500th admission reaches the low-water mark and closes the batch.
	admit(t, c, 400)
	assert.Zero(t, activeBatch(t, c))

	r.report()
	r.report()
	assert.True(t, r.progress.Finished)
	assert.Equal(t, []string{"Batch 3 Closed"}, mails)

	require.NoError(t, c.OpenBatch(tx.From(admin), 3))
	r.report()
	assert.False(t, r.progress.MailSent)
	assert.Equal(t, 50.0, r.progress.Percentage)

	admit(t, c, 500)
	r.report()
	assert.Equal(t, []string{"Batch 3 Closed", "Batch 3 Closed"}, mails)
}
