// Package main provides the trendlens CLI entry point.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"trendlens/internal/app"
	"trendlens/internal/config"
	"trendlens/internal/domain/analysis"
	"trendlens/internal/logging"
)

var version = "dev"

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd creates the root command for the trendlens CLI.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "trendlens",
		Short:        "Correlate trending topics with Telegram channels",
		Long:         "Trendlens aggregates Google, X and YouTube trends and correlates them with Telegram channel data.",
		Version:      version,
		SilenceUsage: true,
	}

	rootCmd.SetVersionTemplate("trendlens version {{.Version}}\n")

	rootCmd.AddCommand(newAnalyzeCmd())
	rootCmd.AddCommand(newServeCmd())

	return rootCmd
}

// newAnalyzeCmd creates the analyze subcommand. The flag given selects the mode.
func newAnalyzeCmd() *cobra.Command {
	var (
		keyword string
		channel string
		region  string
		pretty  bool
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run one analysis and print the JSON result",
		Long: "Run one analysis. --keyword searches Telegram for matching channels and ranks them;\n" +
			"--channel looks up a single channel by username or t.me link.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := modeFromFlags(keyword, channel)
			if err != nil {
				return err
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			cfg.Analysis.Mode = string(mode)

			log := logging.NewWithWriter(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Service)

			a, err := app.New(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.Analyzer.Analyze(cmd.Context(), analysis.Request{
				Keyword:         keyword,
				ChannelUsername: channel,
				Region:          region,
			})
			if err != nil {
				return err
			}

			return writeResult(cmd.OutOrStdout(), result, pretty)
		},
	}

	cmd.Flags().StringVarP(&keyword, "keyword", "k", "", "search Telegram for channels matching a keyword")
	cmd.Flags().StringVarP(&channel, "channel", "c", "", "analyze one channel (username, @username or t.me link)")
	cmd.Flags().StringVarP(&region, "region", "r", "", "trend region code (defaults to the configured regions)")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "indent the JSON output")

	return cmd
}

// newServeCmd creates the serve subcommand.
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			log := logging.New(cfg.Log.Level, cfg.Log.Service)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := app.New(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			return a.Serve(ctx)
		},
	}
}

// modeFromFlags requires exactly one of keyword and channel
func modeFromFlags(keyword, channel string) (analysis.Mode, error) {
	hasKeyword := strings.TrimSpace(keyword) != ""
	hasChannel := strings.TrimSpace(channel) != ""

	switch {
	case hasKeyword && hasChannel:
		return "", errors.New("use either --keyword or --channel, not both")
	case hasKeyword:
		return analysis.ModeSearch, nil
	case hasChannel:
		return analysis.ModeDirect, nil
	default:
		return "", errors.New("one of --keyword or --channel is required")
	}
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func writeResult(w io.Writer, result *analysis.Result, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(result)
}
