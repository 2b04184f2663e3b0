// Command tour is a terminal client for the hero API. Each subcommand
// drives one screen of the tour and prints the status log when it is done.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/dom/tour-of-heroes/internal/config"
	"github.com/dom/tour-of-heroes/internal/heroclient"
	"github.com/dom/tour-of-heroes/internal/logging"
	"github.com/dom/tour-of-heroes/internal/message"
	"github.com/dom/tour-of-heroes/internal/views"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	apiURL       string
	verbose      bool
	quiet        bool
	timeout      time.Duration
	debounce     time.Duration
	envFile      string
	remoteSearch bool
	clearLog     bool

	cfg      *config.Config
	logger   *zap.Logger
	messages *message.Service
	heroes   *heroclient.HeroService
)

var rootCmd = &cobra.Command{
	Use:   "tour",
	Short: "Tour of Heroes terminal client",
	Long: `tour talks to a hero API server and shows its heroes.

Every command reports what it did through the status log, which is
printed when the command finishes (use --quiet to hide it).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var envFiles []string
		if envFile != "" {
			envFiles = append(envFiles, envFile)
		}
		var err error
		cfg, err = config.Load(envFiles...)
		if err != nil {
			return err
		}
		applyFlags(cmd)

		level := cfg.LogLevel
		if verbose {
			level = "debug"
		}
		logger, err = logging.New(level, cfg.Environment)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		messages = message.NewService()
		httpClient := &http.Client{Timeout: cfg.HTTPClientTimeout}
		heroes = heroclient.NewHeroService(cfg.APIBaseURL, httpClient, messages, logger.Named("heroclient"))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if !quiet && cmd.Name() != messagesCmd.Name() {
			printMessages(cmd.OutOrStdout(), views.NewMessagesView(messages))
		}
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// applyFlags lets explicitly set flags win over the environment.
func applyFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("api-url") {
		cfg.APIBaseURL = apiURL
	}
	if flags.Changed("timeout") {
		cfg.HTTPClientTimeout = timeout
	}
	if flags.Changed("debounce") {
		cfg.SearchDebounce = debounce
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Hero API base URL (or set API_BASE_URL)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Do not print the status log")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "HTTP request timeout (or set HTTP_CLIENT_TIMEOUT)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Load settings from this .env file")

	searchCmd.Flags().DurationVar(&debounce, "debounce", 300*time.Millisecond, "Quiet interval before a term is searched (or set SEARCH_DEBOUNCE)")
	searchCmd.Flags().BoolVar(&remoteSearch, "remote", false, "Run the search pipeline on the server over a websocket")

	messagesCmd.Flags().BoolVar(&clearLog, "clear", false, "Clear the log after printing it")

	rootCmd.AddCommand(heroesCmd)
	rootCmd.AddCommand(heroCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(renameCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(messagesCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
