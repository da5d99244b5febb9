package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"wedding-seating/internal/app"
	"wedding-seating/internal/config"
	"wedding-seating/internal/logging"
)

var configFile string

func main() {
	root := &cobra.Command{
		Use:           "weddingctl",
		Short:         "Guest list, RSVP and seating maintenance",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "path to a .env file (default ./.env)")

	root.AddCommand(
		importCmd(),
		backfillEmailsCmd(),
		syncSeatingCmd(),
		autoAssignCmd(),
		verifyCmd(),
		exportCmd(),
		notifySeatingCmd(),
		migrateCmd(),
		hashPasswordCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// openApp loads configuration and opens the datastore for one command.
func openApp(cmd *cobra.Command) (*app.App, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	log := logging.New(cfg.LogLevel, "console")
	return app.Open(cmd.Context(), cfg, log)
}

// withApp runs fn against a freshly opened App and closes it afterwards.
func withApp(fn func(cmd *cobra.Command, a *app.App, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(cmd, a, args)
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func dryRunBanner(dryRun bool) {
	if dryRun {
		fmt.Println("🔎 Dry run: nothing will be written")
	}
}
