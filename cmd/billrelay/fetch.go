package main

import (
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var fetchCmd = &cobra.Command{
	Use:       "fetch gas|trash",
	Short:     "Download one portal's latest bill and print what was extracted",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"gas", "trash"},
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		p, ok := newPortal(cfg, name)
		if !ok {
			return eris.Errorf("unknown portal %q (want gas or trash)", name)
		}
		if err := cfg.Validate("fetch-" + p.Name); err != nil {
			return err
		}

		rec, err := newSession(cfg, p).Fetch(cmd.Context())
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}
