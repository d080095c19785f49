package main

import (
	"fmt"
	"os"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/esalituro/grafanarama/config"
)

// validateCmd validates dashboard documents without contacting a server.
var validateCmd = &cobra.Command{
	Use:   "validate <file>...",
	Short: "Validate dashboard documents",
	Long: `Validate dashboard documents without contacting a server.

Each file is parsed, merged into a canonical document, and checked. With
--show, the normalized payload that would be transmitted is printed to
stdout.

Exit codes:
  0 - All documents are valid
  1 - At least one document is invalid (error details printed to stderr)

Example:
  grafanarama validate dashboard.json
  grafanarama validate --show dashboards/*.yaml`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().Bool("show", false, "print the normalized payload")
}

func runValidate(cmd *cobra.Command, args []string) error {
	show, _ := cmd.Flags().GetBool("show")

	for _, path := range args {
		d, err := config.LoadDashboard(path)
		if err != nil {
			return err
		}
		if err := d.Validate(); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}

		fmt.Fprintf(os.Stderr, "%s: valid (title=%q, schemaVersion=%d)\n",
			path, d.Spec().Title(), d.Spec().SchemaVersion())

		if show {
			out, err := json.MarshalIndent(d.PublishedSpec(), "", "  ")
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			fmt.Println(string(out))
		}
	}
	return nil
}
