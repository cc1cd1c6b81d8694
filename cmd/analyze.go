package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/proposal-analyzer/internal/analysis"
	"github.com/sells-group/proposal-analyzer/internal/model"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze vendor proposal files and write the comparative report",
	Long:  "Groups the given files by vendor, extracts and scores their records, and writes the report as Markdown and PDF.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		files, _ := cmd.Flags().GetStringSlice("file")
		vendorFlags, _ := cmd.Flags().GetStringSlice("vendor")
		out, _ := cmd.Flags().GetString("out")

		if out != "" {
			cfg.Analysis.OutputDir = out
		}
		uploads, err := uploadsFromFlags(files, vendorFlags)
		if err != nil {
			return err
		}

		env, err := initAnalysis(cmd.Context(), "analysis")
		if err != nil {
			return err
		}
		defer env.Close()

		res, err := env.Pipeline.Run(cmd.Context(), uploads)
		if err != nil {
			return eris.Wrap(err, "analyze")
		}

		formatAnalysisResult(cmd.OutOrStdout(), res)
		return nil
	},
}

// uploadsFromFlags turns --file paths into uploads. --vendor entries take
// the form "file=Vendor Name" and match a file by path or base name.
func uploadsFromFlags(files, vendorFlags []string) ([]analysis.Upload, error) {
	if len(files) == 0 {
		return nil, eris.New("at least one --file is required")
	}

	vendors := make(map[string]string, len(vendorFlags))
	for _, v := range vendorFlags {
		file, name, ok := strings.Cut(v, "=")
		file, name = strings.TrimSpace(file), strings.TrimSpace(name)
		if !ok || file == "" || name == "" {
			return nil, eris.Errorf("invalid --vendor %q: want file=Vendor Name", v)
		}
		vendors[file] = name
	}

	uploads := make([]analysis.Upload, 0, len(files))
	for _, f := range files {
		base := filepath.Base(f)
		vendor, ok := vendors[f]
		if !ok {
			vendor = vendors[base]
		}
		uploads = append(uploads, analysis.Upload{Filename: base, Path: f, Vendor: vendor})
	}
	return uploads, nil
}

func formatAnalysisResult(out io.Writer, res *model.AnalysisResult) {
	_, _ = fmt.Fprintf(out, "Report:   %s\n", res.ReportID)
	_, _ = fmt.Fprintf(out, "Vendors:  %d (%s)\n", res.VendorCount, strings.Join(res.Vendors, ", "))
	if res.Meta != nil {
		_, _ = fmt.Fprintf(out, "Text:     %s\n", res.Meta.TextPath)
		_, _ = fmt.Fprintf(out, "PDF:      %s\n", res.Meta.PDFPath)
	}
	for _, s := range res.Skipped {
		_, _ = fmt.Fprintf(out, "Skipped:  %s (%s)\n", s.Filename, s.Reason)
	}
}

func init() {
	analyzeCmd.Flags().StringSlice("file", nil, "proposal file to analyze (repeatable)")
	analyzeCmd.Flags().StringSlice("vendor", nil, "assign a file to a vendor as file=Vendor Name (repeatable)")
	analyzeCmd.Flags().String("out", "", "output directory for report artifacts (default from config)")
	rootCmd.AddCommand(analyzeCmd)
}
