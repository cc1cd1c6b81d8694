package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/proposal-analyzer/internal/render"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a report text file to PDF or HTML",
	RunE: func(cmd *cobra.Command, _ []string) error {
		in, _ := cmd.Flags().GetString("in")
		out, _ := cmd.Flags().GetString("out")
		if in == "" {
			return eris.New("--in is required")
		}

		dst, err := renderFile(in, out)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), dst)
		return nil
	},
}

// renderFile renders the report text at in. The output format follows the
// extension of out (".html" or ".pdf"); an empty out writes a PDF next to in.
func renderFile(in, out string) (string, error) {
	data, err := os.ReadFile(in)
	if err != nil {
		return "", eris.Wrapf(err, "render: read %s", in)
	}
	if out == "" {
		out = strings.TrimSuffix(in, filepath.Ext(in)) + ".pdf"
	}

	switch strings.ToLower(filepath.Ext(out)) {
	case ".html", ".htm":
		page, err := render.RenderHTML(string(data))
		if err != nil {
			return "", err
		}
		if err := os.WriteFile(out, page, 0o644); err != nil {
			return "", eris.Wrapf(err, "render: write %s", out)
		}
	default:
		if err := render.RenderPDFFile(string(data), out); err != nil {
			return "", err
		}
	}
	return out, nil
}

func init() {
	renderCmd.Flags().String("in", "", "report text file")
	renderCmd.Flags().String("out", "", "output file, .pdf or .html (default: input with .pdf)")
	rootCmd.AddCommand(renderCmd)
}
