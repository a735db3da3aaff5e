// Command forward sends one ERP customer change to the sync service, signed
// the same way the ERP hook signs it.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"salesrep_sync/internal/adapters"
	"salesrep_sync/internal/erp"
	"salesrep_sync/internal/signer"
	"salesrep_sync/platform/config"
	"salesrep_sync/platform/db"
	"salesrep_sync/platform/logger"
	"salesrep_sync/platform/secrets"
)

func main() {
	email := flag.String("email", "", "customer email")
	oldValue := flag.String("old", "", "previous sales rep value")
	newValue := flag.String("new", "", "new sales rep value (name, or employee id with ERP_SOURCE=directory)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fail("failed to load config: %v", err)
	}
	if err := cfg.RequireForwarding(); err != nil {
		fail("invalid config: %v", err)
	}

	log := logger.New(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var directory erp.DirectorySource
	if cfg.IsDatabaseEnabled() {
		pool, err := db.NewPool(ctx, cfg)
		if err != nil {
			fail("failed to connect to database: %v", err)
		}
		defer pool.Close()
		directory = erp.NewPostgresDirectory(pool)
	} else if cfg.ERPDirectoryFile != "" {
		static, err := erp.LoadStaticDirectory(cfg.ERPDirectoryFile)
		if err != nil {
			fail("%v", err)
		}
		directory = static
	}

	source, err := erp.NewSource(cfg, directory, log)
	if err != nil {
		fail("%v", err)
	}

	// Same secret lookup as the receiving service: env first, then redis.
	var store secrets.Store
	if cfg.IsSchedulerEnabled() {
		rdb, err := adapters.NewRedisClient(cfg)
		if err != nil {
			fail("failed to initialize redis client: %v", err)
		}
		defer func() { _ = rdb.Close() }()
		store = adapters.NewSecretStore(rdb)
	} else {
		store = adapters.NewSecretStore(nil)
	}
	sig := signer.New(store, cfg.GetSigningSecretRef())
	forwarder, err := erp.NewForwarder(cfg, sig, log)
	if err != nil {
		fail("%v", err)
	}

	reply, err := erp.NewRelay(source, forwarder).Handle(ctx, erp.ChangeEvent{
		CustomerEmail: *email,
		OldValue:      *oldValue,
		NewValue:      *newValue,
	})
	if reply != nil {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(reply)
	} else if err == nil {
		log.Info("nothing to forward", "customer_email", *email)
	}
	if err != nil {
		fail("%v", err)
	}
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
