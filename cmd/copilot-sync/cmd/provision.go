package cmd

import (
	"fmt"

	"github.com/devinsights/copilot-sync/pkg/domo"
	"github.com/devinsights/copilot-sync/pkg/sync"
	"github.com/spf13/cobra"
)

var (
	provisionDataset     string
	provisionName        string
	provisionDescription string
)

var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Create a Domo dataset with the expected schema",
	Long: `Creates the metrics or users dataset in Domo with the column schema the
sync writes, and prints the new dataset ID for the configuration file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var schema domo.Schema
		switch provisionDataset {
		case "metrics":
			schema = sync.MetricsSchema()
		case "users":
			schema = sync.UsersSchema()
		default:
			return fmt.Errorf("unknown dataset %q: want metrics or users", provisionDataset)
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		dc, err := a.newDomoClient()
		if err != nil {
			return err
		}
		if dc == nil {
			return fmt.Errorf("domo credentials are not configured")
		}

		name := provisionName
		if name == "" {
			name = "Copilot " + provisionDataset
		}

		id, err := dc.CreateDataset(cmd.Context(), name, provisionDescription, schema)
		if err != nil {
			return fmt.Errorf("provision %s dataset: %w", provisionDataset, err)
		}

		fmt.Printf("created dataset %q: %s\n", name, id)
		return nil
	},
}

func init() {
	provisionCmd.Flags().StringVar(&provisionDataset, "dataset", "", "Which dataset to create: metrics or users")
	provisionCmd.Flags().StringVar(&provisionName, "name", "", "Dataset display name")
	provisionCmd.Flags().StringVar(&provisionDescription, "description", "", "Dataset description")
	_ = provisionCmd.MarkFlagRequired("dataset")

	rootCmd.AddCommand(provisionCmd)
}
