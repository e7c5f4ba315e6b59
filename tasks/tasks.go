package tasks

import (
	"studbook/config"
	"studbook/gop"
	"studbook/log"
	"studbook/rpc"
)

// Run starts the batch scheduler, the capacity reporter and ledger node tracing.
// ledgerClient is nil when the asset ledger runs in process.
func Run(creator *gop.Creator, ledgerClient *rpc.Client) *Scheduler {
	if ledgerClient != nil {
		rpcs := config.GetRPCs()
		alive := ledgerClient.RefreshServers(rpcs)
		log.Printf("Ledger nodes reachable: %d/%d\n", alive, len(rpcs))

		go ledgerClient.TraceServers()
	}

	scheduler, err := NewScheduler(creator, config.GetSchedules())
	if err != nil {
		panic(err)
	}
	scheduler.Start()
	log.Printf("Scheduled %d batch jobs\n", scheduler.Len())

	if interval := config.GetReportInterval(); interval > 0 {
		go startReportTask(creator, interval)
	}

	return scheduler
}
