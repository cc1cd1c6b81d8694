package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/proposal-analyzer/internal/model"
	"github.com/sells-group/proposal-analyzer/internal/store"
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "List generated reports",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")

		reports, err := st.ListReports(ctx, store.ReportFilter{Limit: limit, Offset: offset})
		if err != nil {
			return eris.Wrap(err, "reports list")
		}

		if len(reports) == 0 {
			fmt.Fprintln(os.Stderr, "No reports found.")
			return nil
		}

		formatReportsList(cmd.OutOrStdout(), reports)
		return nil
	},
}

func formatReportsList(out io.Writer, reports []model.ReportMeta) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tVENDORS\tCREATED\tPDF")
	_, _ = fmt.Fprintln(w, "--\t-------\t-------\t---")

	for _, r := range reports {
		vendors := []rune(strings.Join(r.Vendors, ", "))
		if len(vendors) > 40 {
			vendors = append(vendors[:37], []rune("...")...)
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			r.ID,
			string(vendors),
			r.CreatedAt.Format("2006-01-02 15:04"),
			r.PDFPath,
		)
	}
	_ = w.Flush()
}

func init() {
	reportsCmd.Flags().Int("limit", 20, "maximum number of reports to list")
	reportsCmd.Flags().Int("offset", 0, "number of reports to skip")
	rootCmd.AddCommand(reportsCmd)
}
