// Command festival operates a festival ticket ledger from the shell.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/xraph/festival"
	"github.com/xraph/festival/store"
	badgerstore "github.com/xraph/festival/store/badger"
	"github.com/xraph/festival/store/memory"
	mongostore "github.com/xraph/festival/store/mongo"
	pgstore "github.com/xraph/festival/store/postgres"
	redisstore "github.com/xraph/festival/store/redis"
	sqlitestore "github.com/xraph/festival/store/sqlite"
	"github.com/xraph/festival/types"
)

// GlobalFlags are accepted by every command.
type GlobalFlags struct {
	ConfigPath   string
	Caller       string
	OutputFormat string
}

var (
	globalFlags GlobalFlags
	cfg         *Config
	logger      *slog.Logger
	out         *printer
)

var rootCmd = &cobra.Command{
	Use:   "festival",
	Short: "Festival ticket ledger",
	Long: `festival runs the FTK ledger, the FNFT ticket registry, the primary
sale and the resale marketplace against a local or shared store.

Every command acts as the address given by --as, or as the owner when
--as is omitted.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		var err error
		cfg, err = LoadAndValidate(globalFlags.ConfigPath)
		if err != nil {
			return err
		}

		level, _ := cfg.level()
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

		out, err = newPrinter(globalFlags.OutputFormat, cmd.OutOrStdout())
		return err
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&globalFlags.ConfigPath, "config", "c", os.Getenv("FESTIVAL_CONFIG"), "config file (env FESTIVAL_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&globalFlags.Caller, "as", "", "acting address (default: owner)")
	rootCmd.PersistentFlags().StringVarP(&globalFlags.OutputFormat, "output", "o", "table", "output format: table|json")

	rootCmd.AddCommand(saleCmd)
	rootCmd.AddCommand(ftkCmd)
	rootCmd.AddCommand(unitCmd)
	rootCmd.AddCommand(marketCmd)
	rootCmd.AddCommand(addressCmd)
	rootCmd.AddCommand(demoCmd)
}

var addressCmd = &cobra.Command{
	Use:   "address",
	Short: "Show the owner and engine addresses",
	Long:  "Buyers approve the engine address as FTK spender before minting or purchasing.",
	RunE: run(func(_ context.Context, f *festival.Festival, _ []string) error {
		return out.pairs("Addresses", [][2]string{
			{"owner", f.Owner().Hex()},
			{"engine", f.Address().Hex()},
		})
	}),
}

// run opens the configured store, starts the engine, calls fn and shuts
// the engine down again.
func run(fn func(ctx context.Context, f *festival.Festival, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		s, err := openStore(ctx, cfg.Store)
		if err != nil {
			return err
		}

		f := festival.New(s, common.HexToAddress(cfg.Owner), engineOptions(cfg)...)
		if err := f.Start(ctx); err != nil {
			_ = s.Close()
			return err
		}
		defer func() {
			if err := f.Stop(context.WithoutCancel(ctx)); err != nil {
				logger.Warn("festival: stop failed", "error", err)
			}
		}()

		return fn(ctx, f, args)
	}
}

func engineOptions(c *Config) []festival.Option {
	supply, _ := types.ParseFTK(c.InitialSupply)
	opts := []festival.Option{
		festival.WithLogger(logger),
		festival.WithSaleConfig(c.SaleConfig()),
		festival.WithInitialSupply(supply),
	}
	if c.FeeRecipient != "" {
		opts = append(opts, festival.WithFeeRecipient(common.HexToAddress(c.FeeRecipient)))
	}
	return opts
}

func openStore(ctx context.Context, c StoreConfig) (store.Store, error) {
	switch c.Driver {
	case "memory":
		return memory.New(), nil
	case "badger":
		return badgerstore.Open(c.Dir, logger)
	case "redis":
		s, err := redisstore.Dial(ctx, c.Addr, c.Password, c.DB)
		if err != nil {
			return nil, err
		}
		if c.Prefix != "" {
			s = redisstore.New(s.Client(), c.Prefix)
		}
		return s, nil
	case "sqlite":
		return sqlitestore.Open(ctx, c.DSN)
	case "postgres":
		return pgstore.Open(ctx, c.DSN)
	case "mongo":
		return mongostore.Open(ctx, c.DSN)
	default:
		return nil, fmt.Errorf("unknown store driver %q", c.Driver)
	}
}

// caller returns the acting address.
func caller(f *festival.Festival) (common.Address, error) {
	if globalFlags.Caller == "" {
		return f.Owner(), nil
	}
	return parseAddress(f, globalFlags.Caller)
}

// parseAddress accepts a hex address, or "owner" and "engine" as aliases.
func parseAddress(f *festival.Festival, s string) (common.Address, error) {
	switch s {
	case "owner":
		return f.Owner(), nil
	case "engine", "festival":
		return f.Address(), nil
	}
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("%q is not a hex address", s)
	}
	return common.HexToAddress(s), nil
}
