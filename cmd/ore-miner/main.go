package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/drillforge/ore-cpu-miner/internal/config"
	"github.com/drillforge/ore-cpu-miner/internal/ledger"
	logpkg "github.com/drillforge/ore-cpu-miner/internal/logger"
	minerpkg "github.com/drillforge/ore-cpu-miner/pkg/miner"
)

var (
	cfg    = config.NewConfig()
	logger *logpkg.Logger
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "ore-miner",
		Short: "Parallel proof-of-work CPU miner",
		Long: `A command line utility for mining ORE on all available CPU cores.
Each round fetches the current challenge from the ledger, searches the nonce
space in parallel for a hash meeting the target difficulty, and submits the
best solution found.`,
	}

	rootCmd.PersistentFlags().StringVarP(&cfg.RPCURL, "rpc", "r", cfg.RPCURL, "Ledger RPC endpoint URL")
	rootCmd.PersistentFlags().StringVarP(&cfg.KeypairPath, "keypair", "k", cfg.KeypairPath, "Path to the signer keypair file")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringVarP(&cfg.LogFile, "log-file", "l", "", "Log file for progress tracking (default: stdout)")

	var mineCmd = &cobra.Command{
		Use:   "mine",
		Short: "Run the mining loop",
		Run:   runMine,
	}
	mineCmd.Flags().IntVarP(&cfg.Cores, "cores", "c", cfg.Cores, "Number of CPU cores to mine with")
	mineCmd.Flags().Uint32VarP(&cfg.MinDifficulty, "min-difficulty", "d", 0, "Minimum difficulty to stop the search at")
	mineCmd.Flags().Int64VarP(&cfg.BufferTime, "buffer-time", "b", cfg.BufferTime, "Seconds shaved off the round deadline")
	mineCmd.Flags().IntVarP(&cfg.LogInterval, "log-interval", "i", cfg.LogInterval, "Progress logging interval in seconds")

	var balanceCmd = &cobra.Command{
		Use:   "balance",
		Short: "Show the staked balance and wallet lamports",
		Run:   runBalance,
	}

	var openCmd = &cobra.Command{
		Use:   "open",
		Short: "Create the proof account if it does not exist",
		Run:   runOpen,
	}

	rootCmd.AddCommand(mineCmd, balanceCmd, openCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runMine(cmd *cobra.Command, args []string) {
	_, _, miner := setup()

	// Cancel the round loop on Ctrl+C
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Printf("Starting miner with %d cores (min difficulty %d)...", cfg.Cores, cfg.MinDifficulty)
	if err := miner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Printf("Mining stopped: %v", err)
		os.Exit(1)
	}
	logger.Println("Mining stopped by user.")
}

func runBalance(cmd *cobra.Command, args []string) {
	client, signer, _ := setup()
	ctx := context.Background()

	proof, err := client.GetProof(ctx, signer.Pubkey())
	switch {
	case errors.Is(err, ledger.ErrAccountNotFound):
		logger.Printf("Stake: 0 ORE (no proof account, run `ore-miner open`)")
	case err != nil:
		fatal(err)
	default:
		logger.Printf("Stake: %s ORE", ledger.FormatAmount(proof.Balance))
		logger.Printf("Lifetime hashes: %d", proof.TotalHashes)
		logger.Printf("Lifetime rewards: %s ORE", ledger.FormatAmount(proof.TotalRewards))
	}

	lamports, err := client.GetBalance(ctx, signer.Pubkey())
	if err != nil {
		fatal(err)
	}
	logger.Printf("Wallet: %d lamports (%s)", lamports, signer.Pubkey())
}

func runOpen(cmd *cobra.Command, args []string) {
	_, _, miner := setup()
	if err := miner.Open(context.Background()); err != nil {
		fatal(err)
	}
}

// setup validates the configuration, wires logging, and builds the ledger
// client, signer, and miner.
func setup() (*ledger.Client, *ledger.Keypair, *minerpkg.Miner) {
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	setupLogging()

	client := ledger.NewClient(cfg.RPCURL)
	signer, err := ledger.LoadKeypair(cfg.KeypairPath)
	if err != nil {
		fatal(err)
	}
	return client, signer, minerpkg.NewMiner(cfg, logger, client, signer)
}

func setupLogging() {
	if cfg.LogFile != "" {
		// Log to file
		file, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
			os.Exit(1)
		}
		logger = logpkg.NewWriter(file)
		logger.SetFlags(log.LstdFlags | log.Lmicroseconds)
	} else {
		// Log to stdout
		logger = logpkg.New()
		logger.SetFlags(log.LstdFlags)
	}
	logger.SetVerbose(cfg.Verbose)
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
