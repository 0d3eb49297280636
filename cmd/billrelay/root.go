package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/porticus-lab/billrelay/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "billrelay",
	Short: "Monthly rent and utility statement mailer",
	Long: "Logs into the gas and water/trash portals, downloads the latest bills, " +
		"extracts their amounts and mails the tenant a rent and utility statement once per month.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return eris.Wrap(err, "init logger")
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		zap.L().Error("billrelay failed", zap.Error(err))
		stop()
		os.Exit(1)
	}
}
