// fundline — Fundamentals reconciliation and synthetic ratio engine.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/seenimoa/fundline/api"
	"github.com/seenimoa/fundline/internal/config"
	"github.com/seenimoa/fundline/internal/engine"
	"github.com/seenimoa/fundline/internal/fx"
	"github.com/seenimoa/fundline/internal/logging"
	"github.com/seenimoa/fundline/internal/store"
	"github.com/seenimoa/fundline/pkg/timeutil"
	"golang.org/x/time/rate"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config
var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "fundline",
	Short: "fundline — fundamentals reconciliation and synthetic ratio engine",
	Long: `fundline reconciles mismatched quarterly and annual financial
disclosures into trailing-twelve-month figures, normalizes currencies,
resolves shares outstanding and materializes daily ratio time series.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if level, _ := cmd.Flags().GetString("log-level"); level != "" {
			cfg.Logging.Level = level
		}
		logging.Setup(cfg.Logging)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(ratiosCmd)
	rootCmd.AddCommand(fxCmd)
}

// newEngine wires the store and FX resolver into a ratio engine.
func newEngine(cmd *cobra.Command) (*engine.Engine, func(), error) {
	pg, err := store.Connect(cmd.Context(), cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		return nil, nil, fmt.Errorf("database connect failed: %w", err)
	}

	source := fx.NewYahooSource(cfg.FX.QuoteURL, cfg.FX.RequestTimeout)
	resolver := fx.NewResolver(source,
		fx.WithTTL(cfg.FX.CacheTTL),
		fx.WithLimiter(rate.NewLimiter(rate.Limit(cfg.FX.RatePerSecond), 1)),
	)

	return engine.New(pg, resolver), pg.Close, nil
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("fundline %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Serve Command ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, closeStore, err := newEngine(cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		srv := api.NewServer(cfg, eng, version)
		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		return srv.ListenAndServe(addr)
	},
}

// --- Query Command ---

var queryCmd = &cobra.Command{
	Use:   "query [ticker] [ratio]",
	Short: "Compute a fundamental ratio series for a ticker",
	Long: `Compute the materialized daily series of one catalogue ratio and
print it as date/value lines. The range defaults to year-to-date.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ticker := args[0]
		ratio := args[1]

		start, end, err := parseRangeFlags(cmd)
		if err != nil {
			return err
		}

		eng, closeStore, err := newEngine(cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		service := engine.NewService(eng, 1)
		series, err := service.FundamentalSeries(cmd.Context(), []string{ticker}, ratio, start, end)
		if err != nil {
			return err
		}

		for _, p := range series[ticker] {
			if p.Value == nil {
				fmt.Printf("%s\t-\n", timeutil.FormatDate(p.Date))
				continue
			}
			fmt.Printf("%s\t%.4f\n", timeutil.FormatDate(p.Date), *p.Value)
		}
		return nil
	},
}

func init() {
	queryCmd.Flags().String("start", "", "range start (YYYY-MM-DD, default: Jan 1)")
	queryCmd.Flags().String("end", "", "range end (YYYY-MM-DD, default: today)")
}

func parseRangeFlags(cmd *cobra.Command) (start, end time.Time, err error) {
	if v, _ := cmd.Flags().GetString("start"); v != "" {
		if start, err = timeutil.ParseDate(v); err != nil {
			return start, end, fmt.Errorf("invalid start: %w", err)
		}
	}
	if v, _ := cmd.Flags().GetString("end"); v != "" {
		if end, err = timeutil.ParseDate(v); err != nil {
			return start, end, fmt.Errorf("invalid end: %w", err)
		}
	}
	return start, end, nil
}

// --- Ratios Command ---

var ratiosCmd = &cobra.Command{
	Use:   "ratios",
	Short: "List the fundamental ratio catalogue",
	Run: func(cmd *cobra.Command, args []string) {
		for _, def := range engine.Catalogue() {
			unit := ""
			if def.Percent {
				unit = " (%)"
			}
			fmt.Printf("%-36s %s%s\n", def.Name, def.Description, unit)
		}
	},
}

// --- FX Command ---

var fxCmd = &cobra.Command{
	Use:   "fx [from] [to]",
	Short: "Resolve an exchange rate",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		source := fx.NewYahooSource(cfg.FX.QuoteURL, cfg.FX.RequestTimeout)
		resolver := fx.NewResolver(source, fx.WithTTL(cfg.FX.CacheTTL))

		rateValue := resolver.Rate(cmd.Context(), args[0], args[1])
		if rateValue == nil {
			return fmt.Errorf("no rate available for %s/%s", args[0], args[1])
		}
		fmt.Printf("%s/%s = %.6f\n", args[0], args[1], *rateValue)
		return nil
	},
}
