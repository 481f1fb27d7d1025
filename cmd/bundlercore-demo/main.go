// Command bundlercore-demo is the operational surface for the validation
// and pricing core: it wires a real ethclient-backed chain client to a
// configured Validator and Gas Price Manager, exposing only /healthz and
// /metrics.
package main

import (
	"context"
	"log"
	"time"

	"github.com/aa-bundler/bundler-core/chainclient"
	"github.com/aa-bundler/bundler-core/gasprice"
	"github.com/aa-bundler/bundler-core/internal/config"
	"github.com/aa-bundler/bundler-core/internal/server"
	"github.com/aa-bundler/bundler-core/internal/telemetry"
	"github.com/aa-bundler/bundler-core/pvg"
	"github.com/aa-bundler/bundler-core/simulation"
	"github.com/aa-bundler/bundler-core/validator"
)

func main() {
	cfg := config.Load()

	log.Printf("Starting bundler-core")
	log.Printf("Environment: %s", cfg.Environment)
	log.Printf("Port: %d", cfg.Port)
	log.Printf("RPC: %s", cfg.RPCURL)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := chainclient.Dial(ctx, cfg.RPCURL)
	if err != nil {
		log.Fatalf("Failed to dial RPC endpoint: %v", err)
	}

	chainID, err := client.ChainID(ctx)
	if err != nil {
		log.Fatalf("Failed to fetch chain id: %v", err)
	}
	log.Printf("Connected to chain %s", chainID)

	sink := telemetry.New()

	adapter := simulation.NewAdapter(client, cfg.EntryPointSimulationsAddress, cfg.UtilityWalletAddress, sink)
	estimator := pvg.NewEstimator(client)

	vcfg := validator.Config{
		APIVersion:             cfg.APIVersion,
		DisableExpirationCheck: cfg.DisableExpirationCheck,
		BalanceOverrideEnabled: cfg.BalanceOverrideEnabled,
	}
	v := validator.New(adapter, estimator, vcfg, chainID.Int64(), sink)

	gm := gasprice.NewManager(client, chainID.Int64(), cfg.GasPriceTimeValiditySeconds, sink)

	srv := server.New(v, gm, sink, cfg)
	srv.Start()
}
