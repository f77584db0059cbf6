// Package cli is the cardhub command line. Commands run in-process against
// the local database as the user named by cli.email.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"cardhub/internal/app"
	"cardhub/internal/config"
	"cardhub/pkg/logging"
)

var (
	configPath string
	verbose    bool
)

func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cardhub",
		Short: "Search card catalogs and track your collection",
		Long: `cardhub searches both card catalogs for a character, stores the results
locally and tracks which cards you own, want and follow.

Examples:
  cardhub search Pikachu --lang ja
  cardhub own base1-58
  cardhub favorite add Eevee
  cardhub completion
  cardhub export collection --out collection.csv`,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(NewSearchCommand())
	rootCmd.AddCommand(NewOwnCommand())
	rootCmd.AddCommand(NewMissingCommand())
	rootCmd.AddCommand(NewCollectionCommand())
	rootCmd.AddCommand(NewFavoriteCommand())
	rootCmd.AddCommand(NewCompletionCommand())
	rootCmd.AddCommand(NewWishlistCommand())
	rootCmd.AddCommand(NewPrefetchCommand())
	rootCmd.AddCommand(NewExportCommand())
	rootCmd.AddCommand(NewImportCommand())
	rootCmd.AddCommand(NewCharactersCommand())

	return rootCmd
}

func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runner is the body of a command once the app and local user are ready.
type runner func(ctx context.Context, a *app.App, userID string) error

// withApp builds the app from configuration, resolves the local user and
// runs fn. Ctrl-C cancels ctx.
func withApp(fn runner) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logCfg := cfg.Logging.Logging()
	logCfg.Development = true
	if verbose {
		logCfg.Level = "debug"
	} else {
		logCfg.Level = "warn"
	}
	logger := logging.MustNew(logCfg)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	userID, err := a.LocalUser(ctx)
	if err != nil {
		return fmt.Errorf("local user: %w", err)
	}
	return fn(ctx, a, userID)
}
