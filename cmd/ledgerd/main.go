// Command ledgerd runs a confidential solvency ledger node.
//
// The node hosts the ledger core behind an HTTP API, a local decryption
// oracle that answers its own requests, and an optional PostgreSQL
// recorder for the audit log. Ciphertexts live in an in-process engine;
// the /demo/encrypt endpoint mints handles for driving the node without
// an external encryption client.
//
// # Usage
//
//	go run ./cmd/ledgerd --config=ledger.yaml
//
// Flags override the config file for the listen address and owner.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/brandon-salgado205n/DeFi-Builder-Game/api/httpserver"
	"github.com/brandon-salgado205n/DeFi-Builder-Game/cmd/common"
	"github.com/brandon-salgado205n/DeFi-Builder-Game/crypto"
	"github.com/brandon-salgado205n/DeFi-Builder-Game/protocol"
	"github.com/brandon-salgado205n/DeFi-Builder-Game/services"
)

func main() {
	var (
		configPath  = flag.String("config", "", "YAML config file path")
		listenAddr  = flag.String("addr", "", "HTTP listen address (overrides config)")
		metricsAddr = flag.String("metrics-addr", "", "Metrics listen address (overrides config)")
		ownerHex    = flag.String("owner", "", "Owner address (overrides config, generates if empty)")
		autoOracle  = flag.Bool("auto-oracle", true, "Answer decryption requests with the local oracle")
	)
	flag.Parse()

	cfg, err := common.LoadConfig(*configPath)
	if err != nil {
		fmt.Printf("Config error: %v\n", err)
		os.Exit(1)
	}
	if *listenAddr != "" {
		cfg.ListenAddr = *listenAddr
	}
	if *metricsAddr != "" {
		cfg.MetricsAddr = *metricsAddr
	}
	if *ownerHex != "" {
		cfg.Owner = *ownerHex
	}

	log := common.NewLogger(cfg.LogJSON, cfg.LogDebug)

	owner, err := common.LoadOrGenerateAddress(cfg.Owner)
	if err != nil {
		log.Error("Owner address error", "err", err)
		os.Exit(1)
	}
	identity := crypto.DeriveIdentity([]byte(cfg.IdentitySeed))
	log.Info("Ledger identity derived", "identity", identity.String(), "owner", owner.String())

	engine := protocol.NewInMemoryCipherEngine()
	oracle, err := protocol.NewLocalOracle(engine)
	if err != nil {
		log.Error("Oracle setup failed", "err", err)
		os.Exit(1)
	}

	ledgerCfg := &protocol.LedgerConfig{Cooldown: cfg.Cooldown()}
	ledger, err := protocol.NewService(ledgerCfg, identity, owner,
		engine, oracle, protocol.NewOracleAttestor(oracle.PublicKey()), nil)
	if err != nil {
		log.Error("Ledger setup failed", "err", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var recorder *services.EventRecorder
	if cfg.Postgres.Host != "" {
		store, err := services.NewPostgresEventStore(&cfg.Postgres)
		if err != nil {
			log.Error("Postgres setup failed", "err", err)
			os.Exit(1)
		}
		defer store.Close()

		recorder = services.NewEventRecorder(ledger, store, log)
		go recorder.Run(ctx)
		log.Info("Audit events persisted to PostgreSQL", "host", cfg.Postgres.Host)
	}

	if *autoOracle {
		go runOracleLoop(ctx, log, oracle, ledger)
	}

	ledgerHandler := services.NewLedgerHandler(ledger, log)
	srv, err := httpserver.New(&httpserver.HTTPServerConfig{
		ServiceName:              "solvency_ledger",
		ListenAddr:               cfg.ListenAddr,
		MetricsAddr:              cfg.MetricsAddr,
		RequestsPerSecond:        cfg.RequestsPerSecond,
		EnablePprof:              cfg.EnablePprof,
		Log:                      log,
		DrainDuration:            cfg.DrainDuration(),
		GracefulShutdownDuration: 10 * time.Second,
		ReadTimeout:              15 * time.Second,
		WriteTimeout:             15 * time.Second,
	},
		ledgerHandler,
		services.NewDemoHandler(engine),
	)
	if err != nil {
		log.Error("Server setup failed", "err", err)
		os.Exit(1)
	}
	ledgerHandler.UseMetrics(srv.Metrics())

	srv.RunInBackground()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Info("Shutting down ledger node")
	cancel()
	srv.Shutdown()
	if recorder != nil {
		select {
		case <-recorder.Done():
		case <-time.After(5 * time.Second):
			log.Warn("Recorder did not stop in time")
		}
	}
}

// runOracleLoop answers pending decryption requests with the local
// oracle and posts the attested results back into the ledger.
func runOracleLoop(ctx context.Context, log *slog.Logger, oracle *protocol.LocalOracle, ledger *protocol.Service) {
	for {
		select {
		case <-ctx.Done():
			return
		case id := <-oracle.Notifications():
			cleartext, proof, err := oracle.Respond(id)
			if err != nil {
				log.Error("Oracle response failed", "request", id, "err", err)
				continue
			}
			solvent, err := ledger.FulfillDecryption(id, cleartext, proof)
			if err != nil {
				log.Error("Fulfillment rejected", "request", id, "err", err)
				continue
			}
			log.Info("Decryption fulfilled", "request", id, "solvent", solvent)
		}
	}
}
