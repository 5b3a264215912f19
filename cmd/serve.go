package cmd

import (
	"github.com/spf13/cobra"

	"r0fit/adapters/postgres"
	"r0fit/internal/errors"
	"r0fit/ui"
)

func newServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve stored run results over HTTP",
		Long: `Serve exposes stored run manifests as JSON and rendered HTML reports.
Requires R0FIT_DATABASE_URL to point at the run ledger.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Database.URL == "" {
				return errors.ConfigInvalid("serve requires R0FIT_DATABASE_URL")
			}
			if port == "" {
				port = cfg.Server.Port
			}

			repo, err := postgres.Connect(cfg.Database.URL)
			if err != nil {
				return err
			}
			defer repo.Close()

			return ui.NewServer(repo, logger()).ListenAndServe(port)
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "listen port (default from R0FIT_PORT)")
	return cmd
}
