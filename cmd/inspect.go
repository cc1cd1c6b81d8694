package main

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/proposal-analyzer/internal/analysis"
	"github.com/sells-group/proposal-analyzer/internal/model"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print extracted records and scores as JSON",
	Long:  "Extracts and scores the given files without writing a report. Useful for checking what the extractors see in a vendor's documents.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		files, _ := cmd.Flags().GetStringSlice("file")
		vendorFlags, _ := cmd.Flags().GetStringSlice("vendor")

		uploads, err := uploadsFromFlags(files, vendorFlags)
		if err != nil {
			return err
		}

		p, err := analysis.New(cfg, nil)
		if err != nil {
			return err
		}
		vendors, skipped, err := p.Inspect(cmd.Context(), uploads)
		if err != nil {
			return eris.Wrap(err, "inspect")
		}

		return writeInspection(cmd.OutOrStdout(), vendors, skipped)
	},
}

func writeInspection(out io.Writer, vendors model.Vendors, skipped []model.SkippedInput) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Vendors model.Vendors        `json:"vendors"`
		Skipped []model.SkippedInput `json:"skipped,omitempty"`
	}{vendors, skipped})
}

func init() {
	inspectCmd.Flags().StringSlice("file", nil, "proposal file to inspect (repeatable)")
	inspectCmd.Flags().StringSlice("vendor", nil, "assign a file to a vendor as file=Vendor Name (repeatable)")
	rootCmd.AddCommand(inspectCmd)
}
