package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"wedding-seating/internal/app"
	"wedding-seating/internal/auth"
	"wedding-seating/internal/export"
	"wedding-seating/internal/handler"
	"wedding-seating/internal/importer"
	"wedding-seating/internal/whatsapp"
)

func importCmd() *cobra.Command {
	var (
		policy string
		dryRun bool
		prune  bool
	)
	cmd := &cobra.Command{
		Use:   "import <guests.csv>",
		Short: "Reconcile the invited guest list with a master CSV",
		Long: "Reads a master guest list (Number,Full Name,Notes,Headcount,RSVP Status,KIDENTOURAGE\n" +
			"or the legacy guest_name,email format) and adds, updates and optionally prunes invited guests.",
		Args: cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, a *app.App, args []string) error {
			p, err := importer.ParsePolicy(policy)
			if err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open csv: %w", err)
			}
			defer f.Close()

			rows, err := importer.ParseCSV(f)
			if err != nil {
				return err
			}
			fmt.Printf("📄 Read %d guests from %s (policy %s)\n", len(rows), args[0], p)
			dryRunBanner(dryRun)

			rep, err := a.Importer.Import(cmd.Context(), rows, importer.Options{Policy: p, DryRun: dryRun, Prune: prune})
			if err != nil {
				return err
			}
			fmt.Printf("✅ Import: %s\n", rep)
			return nil
		}),
	}
	cmd.Flags().StringVar(&policy, "policy", "prefer-csv", "who wins on a match: prefer-csv or prefer-existing")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report changes without writing")
	cmd.Flags().BoolVar(&prune, "prune", false, "delete guests missing from the CSV and duplicate rows")
	return cmd
}

func backfillEmailsCmd() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "backfill-emails",
		Short: "Copy RSVP emails onto invited guests that have none",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app.App, _ []string) error {
			dryRunBanner(dryRun)
			rep, err := a.Importer.BackfillEmails(cmd.Context(), dryRun)
			if err != nil {
				return err
			}
			fmt.Printf("✅ Backfill emails: %s\n", rep)
			return nil
		}),
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report changes without writing")
	return cmd
}

func syncSeatingCmd() *cobra.Command {
	var opts importer.SyncOptions
	cmd := &cobra.Command{
		Use:   "sync-seating",
		Short: "Give every invited guest a seating row, keeping table numbers",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app.App, _ []string) error {
			dryRunBanner(opts.DryRun)
			rep, err := a.Importer.SyncSeating(cmd.Context(), opts)
			if err != nil {
				return err
			}
			fmt.Printf("✅ Sync seating: %s\n", rep)
			return nil
		}),
	}
	cmd.Flags().BoolVar(&opts.Cleanup, "cleanup", false, "delete seating rows that belong to no invited guest")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "report changes without writing")
	return cmd
}

func autoAssignCmd() *cobra.Command {
	var (
		dryRun bool
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "auto-assign",
		Short: "Seat attending guests who have no table yet",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app.App, _ []string) error {
			dryRunBanner(dryRun)
			res, err := a.Allocator.Run(cmd.Context(), dryRun)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(res)
			}

			fmt.Printf("🪑 Candidates: %d, assigned: %d, already seated: %d\n",
				res.CandidateCount, res.AssignedCount, res.AlreadySeated)
			for _, as := range res.Assignments {
				fmt.Printf("   Table %2d  %-30s (%d)\n", as.TableNumber, as.GuestName, as.GuestCount)
			}
			if res.Exhausted {
				fmt.Printf("⚠️  Out of tables at %q; %d guests still need a seat\n", res.StoppedAt, len(res.Unassigned))
				for _, name := range res.Unassigned {
					fmt.Printf("   - %s\n", name)
				}
			}
			return nil
		}),
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "plan without writing")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full result as JSON")
	return cmd
}

func verifyCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Cross-check invited guests, RSVPs and seating rows",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app.App, _ []string) error {
			audit, err := a.Importer.Verify(cmd.Context(), a.Config.SeatsPerTable)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(audit)
			}

			fmt.Printf("📊 Invited guests: %d, RSVPs: %d, seating rows: %d\n",
				audit.InvitedGuests, audit.RSVPs, audit.Seating)
			printList("RSVPs with no invited guest", audit.UnlinkedRSVPs)
			printList("Invited guests with no seating row", audit.MissingSeating)
			printList("Seating rows with no invited guest", audit.OrphanSeating)
			printList("Duplicate guest names", audit.DuplicateNames)
			printList("Confirmed more seats than invited", audit.OverAllowance)
			if len(audit.OverfullTables) > 0 {
				tables := make([]int, 0, len(audit.OverfullTables))
				for t := range audit.OverfullTables {
					tables = append(tables, t)
				}
				sort.Ints(tables)
				fmt.Printf("⚠️  Overfull tables (%d):\n", len(tables))
				for _, t := range tables {
					fmt.Printf("   - table %d: %d of %d\n", t, audit.OverfullTables[t], a.Config.SeatsPerTable)
				}
			}
			if audit.Clean() {
				fmt.Println("✅ Everything lines up")
			}
			return nil
		}),
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the audit as JSON")
	return cmd
}

func printList(title string, names []string) {
	if len(names) == 0 {
		return
	}
	fmt.Printf("⚠️  %s (%d):\n", title, len(names))
	for _, n := range names {
		fmt.Printf("   - %s\n", n)
	}
}

func exportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the seating chart to an xlsx file",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app.App, _ []string) error {
			listing, err := a.Service.Guests(cmd.Context())
			if err != nil {
				return err
			}
			data, err := export.SeatingWorkbook(listing.Guests, a.Layout())
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}
			fmt.Printf("✅ Wrote %d guests to %s\n", len(listing.Guests), out)
			return nil
		}),
	}
	cmd.Flags().StringVarP(&out, "output", "o", "seating.xlsx", "output file")
	return cmd
}

func notifySeatingCmd() *cobra.Command {
	var opts handler.NotifyOptions
	cmd := &cobra.Command{
		Use:   "notify-seating",
		Short: "Send each seated guest their table number over WhatsApp",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app.App, _ []string) error {
			cfg := a.Config
			details := whatsapp.WeddingDetails{
				Date:      cfg.WeddingDate,
				Location:  cfg.WeddingLocation,
				BrideName: cfg.BrideName,
				GroomName: cfg.GroomName,
			}

			var sender handler.NoticeSender
			if !opts.DryRun {
				wa, err := whatsapp.NewService(cmd.Context(), &whatsapp.Config{DataDir: cfg.WhatsAppDataDir}, a.Log)
				if err != nil {
					return err
				}
				fmt.Println("Connecting to WhatsApp...")
				if err := wa.Connect(cmd.Context()); err != nil {
					return err
				}
				defer wa.Disconnect()
				sender = wa
			}
			dryRunBanner(opts.DryRun)

			rep, err := handler.NewSeatingNotifier(sender, a.Store, details, a.Log).Notify(cmd.Context(), opts)
			if err != nil {
				return err
			}
			fmt.Printf("✅ Seating notices: sent=%d skipped=%d errors=%d\n", rep.Added, rep.Skipped, rep.Failed())
			for _, e := range rep.Errors {
				fmt.Printf("   - %s: %s\n", e.Guest, e.Message)
			}
			return nil
		}),
	}
	cmd.Flags().IntVar(&opts.Table, "table", 0, "only notify guests at this table")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "list who would be notified without connecting")
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		// app.Open migrates before returning
		RunE: withApp(func(cmd *cobra.Command, a *app.App, _ []string) error {
			counts, err := a.Store.Counts(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("✅ Schema up to date (%s): %+v\n", a.Store.Dialect(), counts)
			return nil
		}),
	}
}

func hashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print an ADMIN_PASSWORD_HASH value for password",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			hash, err := auth.HashPassword(args[0])
			if err != nil {
				return err
			}
			fmt.Println(hash)
			return nil
		},
	}
}
