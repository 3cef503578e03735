package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/pharmadb/internal/api"
	"github.com/JonMunkholm/pharmadb/internal/config"
	"github.com/JonMunkholm/pharmadb/internal/core"
	"github.com/JonMunkholm/pharmadb/internal/logging"
)

// app is what every subcommand shares once the root has loaded config.
type app struct {
	cfg     *config.Config
	client  *api.Client
	service *core.Service
	tokens  *api.FileTokenStore

	apiURL   string
	actor    string
	asJSON   bool
	logLevel string
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:           "pharmadb",
		Short:         "Manage PharmaDB outreach lists from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&a.apiURL, "api-url", "", "Backend base URL (overrides PHARMADB_API_URL)")
	cmd.PersistentFlags().StringVar(&a.actor, "actor", "", "Name recorded on changes (overrides PHARMADB_ACTOR)")
	cmd.PersistentFlags().BoolVar(&a.asJSON, "json", false, "Print results as JSON")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	cmd.AddCommand(
		newDomainsCmd(a),
		newTemplateCmd(a),
		newSubdomainsCmd(a),
		newEntriesCmd(a),
		newAddCmd(a),
		newImportCmd(a),
		newDeleteCmd(a),
		newListsCmd(a),
		newListCmd(a),
		newCreateListCmd(a),
		newVersionsCmd(a),
		newWorkLogsCmd(a),
		newChatCmd(a),
		newIngestCmd(a),
		newWatchCmd(a),
		newTokenCmd(a),
	)
	return cmd
}

// setup loads .env and config, then builds the backend client. Logs go to
// stderr so stdout stays clean for tables and exports.
func (a *app) setup(cmd *cobra.Command) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if a.apiURL != "" {
		cfg.API.URL = a.apiURL
	}
	if a.actor != "" {
		cfg.API.Actor = a.actor
	}
	// Quiet unless asked: warnings only.
	level := "warn"
	if os.Getenv("LOG_LEVEL") != "" {
		level = cfg.Logging.Level
	}
	if a.logLevel != "" {
		level = a.logLevel
	}
	logging.Setup(level, cfg.Logging.Format)

	a.tokens = api.NewFileTokenStore(cfg.API.TokenFile)
	tokens := api.Chain{a.tokens}
	if cfg.API.Token != "" {
		tokens = api.Chain{api.StaticToken(cfg.API.Token), a.tokens}
	}

	client, err := api.New(cfg.API.URL,
		api.WithTimeout(cfg.API.Timeout),
		api.WithTokenSource(tokens),
	)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.client = client
	a.service = core.NewService(client,
		core.WithEntryLimit(cfg.Import.EntryLimit),
		core.WithMaxFileSize(cfg.Import.MaxFileSize),
	)

	cmd.SetContext(core.ContextWithActor(cmd.Context(), cfg.API.Actor))
	return nil
}

func execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		printError(err)
		stop()
		os.Exit(1)
	}
}

// printError writes the user-facing form of err to stderr. Errors with no
// mapped message print their technical text.
func printError(err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	if !core.IsUserFacing(err) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %s\n", core.FormatUserError(err))
	slog.Debug("command failed", "error", err)
}
