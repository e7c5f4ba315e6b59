package main

import (
	"flag"
	"time"

	"studbook/cache"
	"studbook/config"
	"studbook/db"
	"studbook/gop"
	"studbook/ledger"
	"studbook/log"
	"studbook/mail"
	"studbook/rpc"
	"studbook/state"
	"studbook/stud"
	"studbook/tasks"
	"studbook/util"
)

var enableMail bool

func init() {
	flag.BoolVar(&enableMail, "mail", false, "If mail alert is enabled")
}

func main() {
	flag.Parse()

	log.Init()
	config.Load(true)
	mail.Init(enableMail)

	defer mail.AlertIfErr()

	var store state.Store
	if config.UseDatabase() {
		store = db.Init()
	} else {
		log.Printf("No database configured, ledger state is kept in memory\n")
		store = state.NewMemory()
	}

	var assets ledger.AssetLedger
	var ledgerClient *rpc.Client
	if rpcs := config.GetRPCs(); len(rpcs) > 0 {
		ledgerClient = rpc.NewClient(rpcs)
		assets = ledgerClient
	} else {
		log.Printf("No ledger node configured, running an in-process asset ledger\n")
		assets = ledger.NewMemory()
	}
	assets = cache.NewTraitCache(assets, config.GetTraitCacheExpiry(), 10*time.Minute)

	admin := config.GetAdmin()
	creator := gop.NewCreator(admin, store, assets)
	studs := stud.NewService(admin, store, assets)

	log.Printf("Administrator: %s\n", admin)
	log.Printf("Admission price: %s, stud query price: %s, default stud duration: %s\n",
		gop.Price, studs.GetQueryPrice(), util.DurationToHuman(stud.DefaultDuration))

	tasks.Run(creator, ledgerClient)

	select {}
}
