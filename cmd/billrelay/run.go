package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/porticus-lab/billrelay/internal/browser"
	"github.com/porticus-lab/billrelay/internal/notify"
	"github.com/porticus-lab/billrelay/internal/runner"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fetch both bills and mail this month's statement",
	Long: "Skips the month if the statement was already sent. Otherwise fetches the gas and " +
		"water/trash bills, adds the rent, mails the statement and records the send.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		if err := cfg.Validate("run"); err != nil {
			return err
		}

		tr, err := openTracker(ctx, cfg)
		if err != nil {
			return err
		}
		defer tr.Close() //nolint:errcheck

		var fetchers []runner.Fetcher
		for _, name := range []string{"gas", "trash"} {
			p, _ := newPortal(cfg, name)
			fetchers = append(fetchers, newSession(cfg, p))
		}

		settings := runner.Settings{
			TenantName:   cfg.Tenant.Name,
			TenantEmail:  cfg.Tenant.Email,
			LandlordName: cfg.Mail.SenderName,
			SenderEmail:  cfg.Mail.Sender,
			RentAmount:   cfg.Rent.Amount,
			RentNotes:    cfg.Rent.Notes,
			DryRun:       dryRun,
		}

		var opts []runner.Option
		if cfg.Notify.AttachStatement {
			// Chrome starts only when the statement is printed, after
			// both portal sessions have closed theirs.
			opts = append(opts, runner.WithStatement(notify.StatementPrinter{
				Printer: browser.Printer{Options: browserOptions(cfg)},
				Dir:     cfg.Notify.StatementDir,
			}))
		}

		rep, err := runner.New(settings, fetchers, tr, newMailer(cfg), opts...).Run(ctx)
		if err != nil {
			return err
		}

		switch {
		case rep.AlreadySent:
			cmd.Printf("Statement for %s was already sent.\n", rep.Target.Format("January 2006"))
			if cfg.Tracker.Driver == "sqlite" {
				cmd.Printf("To resend, delete its row from the sent_emails table in %s and run again.\n", cfg.Tracker.Path)
			} else {
				cmd.Printf("To resend, delete its row from %s and run again.\n", cfg.Tracker.Path)
			}
		case rep.Sent:
			cmd.Printf("Sent %q to %s (total %s).\n", rep.Message.Subject, rep.Message.To, rep.Summary.TotalLine().Amount)
		default:
			cmd.Println(rep.Message.Body.Plain)
			zap.L().Info("dry run complete", zap.String("run_id", rep.RunID))
		}
		return nil
	},
}

func init() {
	runCmd.Flags().Bool("dry-run", false, "compose the statement without sending or recording it")
	rootCmd.AddCommand(runCmd)
}
