package cmd

import (
	"fmt"

	"github.com/devinsights/copilot-sync/pkg/sync"
	"github.com/spf13/cobra"
)

var usersNoUpload bool

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Synchronize the Copilot user and team directory",
	Long: `Fetches Copilot billing seats and enterprise team rosters, expands each
user into one row per team and replaces the users dataset with the
resulting snapshot. Directory runs are point-in-time and keep no
checkpoint.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		engine, err := a.newEngine()
		if err != nil {
			return err
		}

		opts := sync.Options{Mode: sync.ModeNormal}
		if usersNoUpload {
			opts.Mode = sync.ModeRerunNoUpload
		}

		status, err := engine.RunUsers(cmd.Context(), opts)
		if err != nil {
			return fmt.Errorf("user sync failed: %w", err)
		}

		fmt.Printf("user sync: %s\n", status)
		return nil
	},
}

func init() {
	usersCmd.Flags().BoolVar(&usersNoUpload, "no-upload", false, "Fetch and snapshot but skip the dataset upload")

	rootCmd.AddCommand(usersCmd)
}
