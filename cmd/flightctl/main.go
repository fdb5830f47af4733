package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/surgefare/config"
	"github.com/Domenick1991/surgefare/internal/bootstrap"
	"github.com/Domenick1991/surgefare/internal/repository"
	"github.com/Domenick1991/surgefare/internal/seed"
	"github.com/Domenick1991/surgefare/internal/service/pricing"
	"github.com/Domenick1991/surgefare/internal/service/wallet"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var Version = "dev"

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:     "flightctl",
		Short:   "Operational commands for the surgefare store",
		Version: Version,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", envOr("CONFIG_PATH", "config.yaml"), "path to config file")

	rootCmd.AddCommand(schemaCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(pruneCmd())
	rootCmd.AddCommand(sweepCmd())
	rootCmd.AddCommand(topUpCmd())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

// openStores loads the config and connects the configured backends. Opening
// a postgres store also applies the schema.
func openStores(ctx context.Context) (*config.Config, *bootstrap.Stores, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, nil, err
	}
	stores, err := bootstrap.OpenStores(ctx, cfg, zap.NewNop())
	if err != nil {
		return nil, nil, err
	}
	return cfg, stores, nil
}

func schemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), repository.Schema())
			return nil
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, stores, err := openStores(cmd.Context())
			if err != nil {
				return err
			}
			defer stores.Close()
			fmt.Fprintln(cmd.OutOrStdout(), "schema applied")
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	var (
		count int
		seedN uint64
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert a generated flight catalogue at base prices",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, stores, err := openStores(cmd.Context())
			if err != nil {
				return err
			}
			defer stores.Close()

			if seedN == 0 {
				seedN = uint64(time.Now().UnixNano())
			}
			flights := seed.Flights(rand.New(rand.NewPCG(seedN, 0)), count, time.Now().UTC())
			if err := stores.Flights.Upsert(cmd.Context(), flights); err != nil {
				return fmt.Errorf("seed flights: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d flights\n", len(flights))
			return nil
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", seed.DefaultFlightCount, "number of flights to generate")
	cmd.Flags().Uint64Var(&seedN, "seed", 0, "random seed, 0 picks one from the clock")
	return cmd
}

func pruneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Delete search events older than the retention period",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, stores, err := openStores(cmd.Context())
			if err != nil {
				return err
			}
			defer stores.Close()

			tracker := pricing.NewTracker(stores.Searches, cfg.Pricing.SearchWindow(), cfg.Pricing.SearchRetention())
			removed, err := tracker.Prune(cmd.Context(), time.Now().UTC())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d search events\n", removed)
			return nil
		},
	}
}

func sweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Reset surged flights idle longer than the reset period",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, stores, err := openStores(cmd.Context())
			if err != nil {
				return err
			}
			defer stores.Close()

			tracker := pricing.NewTracker(stores.Searches, cfg.Pricing.SearchWindow(), cfg.Pricing.SearchRetention())
			engine := pricing.NewEngine(stores.Flights, tracker, pricing.SettingsFromConfig(cfg.Pricing))
			reset, err := engine.SweepExpired(cmd.Context(), time.Now().UTC())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "reset %d flights\n", len(reset))
			return nil
		},
	}
}

func topUpCmd() *cobra.Command {
	var (
		userID string
		amount int64
	)
	cmd := &cobra.Command{
		Use:   "topup",
		Short: "Credit a user's wallet",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, stores, err := openStores(cmd.Context())
			if err != nil {
				return err
			}
			defer stores.Close()

			ledger := wallet.NewLedger(stores.Wallets, cfg.Wallet.StartingBalance, zap.NewNop())
			balance, err := ledger.Credit(cmd.Context(), userID, amount, "topup:"+time.Now().UTC().Format(time.RFC3339))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "balance of %s is now %d\n", userID, balance)
			return nil
		},
	}
	cmd.Flags().StringVarP(&userID, "user", "u", "", "user id")
	cmd.Flags().Int64VarP(&amount, "amount", "a", 0, "amount to credit")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}
