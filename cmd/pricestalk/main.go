package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/okravets/pricestalk/internal/config"
	"github.com/okravets/pricestalk/internal/runner"
)

var (
	cfgFile     string
	verbose     bool
	inputFile   string
	outputFile  string
	full        bool
	delay       string
	fetcherType string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "pricestalk",
		Short: "PriceStalk — price and sale monitor for a cosmetics store",
		Long: `PriceStalk walks a list of product pages, matches configured sale
rules against each page's promo text, recomputes per-variant prices,
compares them with your reference prices, and writes a formatted XLSX
report with sale, regular, and error sections.`,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(scanCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// scanCmd creates the "scan" subcommand.
func scanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan the product list and write the report",
		Long:  "Read the product list, fetch every page, apply sale rules, and write the XLSX report.",
		RunE:  runScan,
	}

	cmd.Flags().StringVarP(&inputFile, "input", "i", "", "product list file (semicolon separated)")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "report file path")
	cmd.Flags().BoolVarP(&full, "full", "f", false, "emit every variant, skip the price and title filter")
	cmd.Flags().StringVar(&delay, "delay", "", "delay before each page request, e.g. 3s")
	cmd.Flags().StringVar(&fetcherType, "fetcher", "", "fetcher type: http or browser")

	return cmd
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyCLIOverrides(cfg)
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, cleanup, err := setupLogger(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	logger.Info("starting scan",
		"input", cfg.InputFile,
		"output", cfg.OutputFile,
		"fetcher", cfg.Fetcher.Type,
		"delay", cfg.RequestDelay,
		"full", full,
	)

	r, err := runner.New(cfg, runner.Options{Full: full}, logger)
	if err != nil {
		return err
	}
	defer r.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	if err := r.Run(ctx); err != nil {
		return err
	}

	fmt.Printf("Report written to %s in %s\n", cfg.OutputFile, time.Since(start).Round(time.Millisecond))
	return nil
}

// configCmd creates the "config" subcommand printing the effective
// configuration as JSON.
func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(cfg, "", "  ")
			if err != nil {
				return fmt.Errorf("encode config: %w", err)
			}
			fmt.Println(string(out))
			return nil
		},
	}
}

// versionCmd creates the "version" subcommand.
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("PriceStalk %s\n", config.Version)
		},
	}
}

// setupLogger creates the structured logger, optionally duplicated
// into the configured log file.
func setupLogger(cfg *config.Config) (*slog.Logger, func(), error) {
	level := parseLevel(cfg.Logging.Level)
	if verbose {
		level = slog.LevelDebug
	}

	var w io.Writer = os.Stderr
	cleanup := func() {}
	if cfg.Logging.File != "" {
		f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w = io.MultiWriter(os.Stderr, f)
		cleanup = func() { f.Close() }
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(handler), cleanup, nil
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// applyCLIOverrides applies command-line flag values to the config.
func applyCLIOverrides(cfg *config.Config) {
	if inputFile != "" {
		cfg.InputFile = inputFile
	}
	if outputFile != "" {
		cfg.OutputFile = outputFile
	}
	if delay != "" {
		if d, err := time.ParseDuration(delay); err == nil {
			cfg.RequestDelay = d
		}
	}
	if fetcherType != "" {
		cfg.Fetcher.Type = fetcherType
	}
}
