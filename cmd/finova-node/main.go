package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"finova/chain/api"
	"finova/chain/config"
	"finova/chain/core"
	"finova/chain/monitoring"
	"finova/chain/nft"
	"finova/chain/runtime"
	"finova/chain/tma"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	Commit    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "finova-node",
	Short: "Finova reward-core node",
	Long:  "Runs the CORE/TMA/NFT reward programs behind an HTTP/websocket front door",
	Run:   runNode,
}

var (
	configFile  string
	dataDir     string
	httpAddr    string
	metricsAddr string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "./config/network.json", "network genesis config file")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "./data", "data directory")
	rootCmd.PersistentFlags().StringVar(&httpAddr, "http-addr", ":8899", "HTTP/websocket listen address")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", ":9100", "Prometheus metrics listen address")

	viper.BindPFlags(rootCmd.PersistentFlags())
}

// snapshotAccountID is the fixed key cmd/finova-node's periodic
// snapshot is written under in the account store, distinct from any
// real user or program account.
var snapshotAccountID = runtime.Pda(runtime.ProgramCore, []byte("node_snapshot"))

const snapshotNamespace = "snapshots"

func runNode(cmd *cobra.Command, args []string) {
	fmt.Printf("Starting Finova node v%s\n", Version)
	fmt.Printf("Build: %s (commit: %s)\n", BuildTime, Commit)

	netCfg, err := config.LoadNetworkConfig(configFile)
	if err != nil {
		log.Fatalf("failed to load network config: %v", err)
	}
	params, err := netCfg.NetworkParams()
	if err != nil {
		log.Fatalf("invalid network config: %v", err)
	}

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Fatalf("failed to create data directory: %v", err)
	}
	store, err := runtime.OpenStore(filepath.Join(dataDir, "finova.db"))
	if err != nil {
		log.Fatalf("failed to open account store: %v", err)
	}
	defer store.Close()

	metricsServer := monitoring.NewServer(monitoring.Config{
		ListenAddr:  metricsAddr,
		MetricsPath: "/metrics",
		HealthPath:  "/health",
	})

	feed := api.NewFeed()
	mint := tma.NewMint(params.MaxSupply, runtime.CoreMintAuthority())
	c := core.New(mint, feed, metricsServer)

	if snapBytes, ok := store.Get(snapshotNamespace, snapshotAccountID); ok {
		if err := c.Restore(snapBytes); err != nil {
			log.Fatalf("failed to restore snapshot: %v", err)
		}
		fmt.Println("Restored reward-core state from the last snapshot")
	} else if err := c.InitializeNetwork(params); err != nil {
		log.Fatalf("failed to initialize network: %v", err)
	}

	cardAuthority := runtime.Pda(runtime.ProgramNFT, []byte("card_authority"))
	nftProgram := nft.NewProgram(c, cardAuthority)

	apiServer := api.NewServer(httpAddr, c, nftProgram, feed)

	if err := metricsServer.Start(); err != nil {
		log.Fatalf("failed to start metrics server: %v", err)
	}

	go func() {
		if err := apiServer.ListenAndServe(); err != nil {
			log.Printf("API server stopped: %v", err)
		}
	}()

	stopSnapshots := make(chan struct{})
	go periodicSnapshot(c, store, 30*time.Second, stopSnapshots)

	fmt.Printf("HTTP/websocket listening on %s\n", httpAddr)
	fmt.Printf("Metrics listening on %s\n", metricsAddr)
	fmt.Printf("Data directory: %s\n", dataDir)
	fmt.Printf("Card authority PDA: %s\n", cardAuthority.Hex())
	fmt.Println("Finova node is running")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	fmt.Println("Shutting down Finova node...")
	close(stopSnapshots)
	writeSnapshot(c, store)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := metricsServer.Stop(ctx); err != nil {
		log.Printf("metrics server shutdown error: %v", err)
	}

	fmt.Println("Finova node stopped")
}

// periodicSnapshot writes c's state to store every interval until
// stop is closed, so a crash loses at most one interval of accruals.
func periodicSnapshot(c *core.Core, store *runtime.Store, interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			writeSnapshot(c, store)
		case <-stop:
			return
		}
	}
}

func writeSnapshot(c *core.Core, store *runtime.Store) {
	data, err := c.Snapshot()
	if err != nil {
		log.Printf("snapshot encode error: %v", err)
		return
	}
	if err := store.Put(snapshotNamespace, snapshotAccountID, data); err != nil {
		log.Printf("snapshot write error: %v", err)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
