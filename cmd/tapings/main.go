package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/mfriesen/tapings/internal/calendar"
	"github.com/mfriesen/tapings/internal/config"
	"github.com/mfriesen/tapings/internal/fetcher"
	"github.com/mfriesen/tapings/internal/mcptools"
	"github.com/mfriesen/tapings/internal/scrape"
)

var (
	cfgFile string
	verbose bool

	availableOnly bool

	calShowName string
	calDate     string
	calTime     string
	calLocation string
	calICSOnly  bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tapings",
		Short: "Late-night taping tickets — MCP server and scraping CLI",
		Long: `tapings tracks ticket availability and guest lineups for recurring
late-night TV tapings.

It exposes three tools over the Model Context Protocol (stdio):
  • get_available_shows   — scrape ticket pages for upcoming taping dates
  • get_guest_lineups     — scrape the shared listings page for guest lineups
  • add_show_to_calendar  — build an iCal event for a taping

The same pipelines are available as one-shot subcommands for direct use.`,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(ticketsCmd())
	rootCmd.AddCommand(lineupsCmd())
	rootCmd.AddCommand(calendarCmd())
	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(configCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// serveCmd runs the MCP server on stdio.
func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server on stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfigAndLogger()
			if err != nil {
				return err
			}

			srv := server.NewMCPServer("tapings", config.Version)
			tools := mcptools.New(cfg, logger, newFactories(cfg, logger))
			tools.Register(srv)

			logger.Info("MCP server running on stdio", "version", config.Version)
			return server.ServeStdio(srv)
		},
	}
}

// ticketsCmd runs the ticket pipeline once and prints the summary.
func ticketsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tickets",
		Short: "Fetch ticket availability for all configured shows",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfigAndLogger()
			if err != nil {
				return err
			}

			f, err := fetcher.NewBrowserFetcher(&cfg.Fetcher, logger)
			if err != nil {
				return fmt.Errorf("open browser: %w", err)
			}
			defer f.Close()

			agg := scrape.NewAggregator(cfg, logger)
			tickets := agg.Collect(context.Background(), f)
			summary := scrape.Summarize(tickets, availableOnly)

			logger.Info("ticket fetch complete",
				"total", summary.TotalShows,
				"available", summary.AvailableShows,
				"sold_out", summary.SoldOutShows,
			)

			return printJSON(summary)
		},
	}

	cmd.Flags().BoolVar(&availableOnly, "available-only", false, "only include shows with available tickets")

	return cmd
}

// lineupsCmd runs the guest-lineup pipeline once and prints the result.
func lineupsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lineups",
		Short: "Fetch upcoming guest lineups",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfigAndLogger()
			if err != nil {
				return err
			}

			f, err := newLineupsFetcher(cfg, logger)
			if err != nil {
				return fmt.Errorf("open fetcher: %w", err)
			}
			defer f.Close()

			lineups, err := scrape.FetchLineups(context.Background(), f, cfg.Scrape)
			if err != nil {
				return fmt.Errorf("fetch lineups: %w", err)
			}

			return printJSON(lineups)
		},
	}
}

// calendarCmd builds one calendar event.
func calendarCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Build an iCal event for a taping",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _, err := loadConfigAndLogger()
			if err != nil {
				return err
			}

			event, err := calendar.BuildEvent(calShowName, calDate, calTime, calLocation, time.Now().UTC())
			if err != nil {
				return err
			}

			if calICSOnly {
				fmt.Print(event.ICalData)
				return nil
			}
			return printJSON(event)
		},
	}

	cmd.Flags().StringVar(&calShowName, "show", "", "show name")
	cmd.Flags().StringVar(&calDate, "date", "", "taping date, e.g. 2025-07-15 or 'July 15, 2025'")
	cmd.Flags().StringVar(&calTime, "time", "", "taping time, e.g. '4:30 PM ET'")
	cmd.Flags().StringVar(&calLocation, "location", "", "venue location")
	cmd.Flags().BoolVar(&calICSOnly, "ics", false, "print only the iCal document")
	_ = cmd.MarkFlagRequired("show")
	_ = cmd.MarkFlagRequired("date")
	_ = cmd.MarkFlagRequired("time")
	_ = cmd.MarkFlagRequired("location")

	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("tapings %s\n", config.Version)
		},
	}
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration helpers",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfigAndLogger()
			if err != nil {
				return err
			}
			return printJSON(cfg)
		},
	})

	return cmd
}

// loadConfigAndLogger loads config, validates it, and builds the
// logger it describes.
func loadConfigAndLogger() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, setupLogger(cfg.Logging), nil
}

// setupLogger creates a structured logger. Logs go to stderr so stdout
// stays clean for the MCP transport and JSON output.
func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	} else {
		switch cfg.Level {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		}
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

// newFactories builds the per-call fetcher constructors for the MCP
// tools. Each tool call opens its own fetcher and closes it when the
// call settles, so the browser's lifetime stays bounded to one call.
func newFactories(cfg *config.Config, logger *slog.Logger) mcptools.Factories {
	return mcptools.Factories{
		Tickets: func() (fetcher.Fetcher, error) {
			return fetcher.NewBrowserFetcher(&cfg.Fetcher, logger)
		},
		Lineups: func() (fetcher.Fetcher, error) {
			return newLineupsFetcher(cfg, logger)
		},
	}
}

// newLineupsFetcher selects the fetcher for the lineups page.
func newLineupsFetcher(cfg *config.Config, logger *slog.Logger) (fetcher.Fetcher, error) {
	if cfg.Fetcher.LineupsMode == "http" {
		return fetcher.NewHTTPFetcher(&cfg.Fetcher, logger), nil
	}
	return fetcher.NewBrowserFetcher(&cfg.Fetcher, logger)
}

func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}
