package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/devinsights/copilot-sync/pkg/github"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify connectivity and credentials for both APIs",
	Long: `Probes the GitHub API with the configured token and, when credentials are
present, acquires a Domo access token and lists datasets. Use this after
changing configuration and before scheduling sync runs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		ctx := cmd.Context()
		failed := false

		gh, err := github.NewClient(&a.cfg.GitHub, github.WithLogger(a.logger))
		if err != nil {
			return err
		}

		user, scopes, err := gh.AuthenticatedUser(ctx)
		if err != nil {
			failed = true
			var apiErr *github.APIError
			if errors.As(err, &apiErr) && apiErr.IsAuthFailure() {
				fmt.Printf("github: FAIL (token rejected, status %d)\n", apiErr.StatusCode)
			} else {
				fmt.Printf("github: FAIL (%v)\n", err)
			}
		} else {
			fmt.Printf("github: OK (user %s, scopes: %s)\n", user.Login, strings.Join(scopes, ", "))
		}

		dc, err := a.newDomoClient()
		if err != nil {
			return err
		}
		if dc == nil {
			fmt.Println("domo: SKIPPED (no credentials configured)")
		} else if datasets, err := dc.ListDatasets(ctx, 5); err != nil {
			failed = true
			fmt.Printf("domo: FAIL (%v)\n", err)
		} else {
			fmt.Printf("domo: OK (%d datasets visible)\n", len(datasets))
		}

		if failed {
			a.logger.Error("Connectivity check failed")
			return fmt.Errorf("connectivity check failed")
		}
		a.logger.Info("Connectivity check passed", zap.String("github_user", user.Login))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
