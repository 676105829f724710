package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/leadscout/internal/detail"
	"github.com/sells-group/leadscout/internal/extract"
	"github.com/sells-group/leadscout/internal/model"
	"github.com/sells-group/leadscout/internal/search"
)

var detailsJSON bool

var detailsCmd = &cobra.Command{
	Use:   "details <company name>",
	Short: "Research a company on the web and print its detail record",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := model.NormalizeName(strings.Join(args, " "))

		env, err := initEnv(cmd.Context(), "details")
		if err != nil {
			return err
		}
		defer env.Close()

		report := env.Details.Run(cmd.Context(), name)
		if detailsJSON {
			return writeJSON(cmd.OutOrStdout(), report)
		}
		return printReport(cmd.OutOrStdout(), env.Details.Fields(), report)
	},
}

// printReport writes one line per field, then the news links.
func printReport(w io.Writer, fields []detail.Field, report *detail.Report) error {
	status := make(map[string]detail.FieldOutcome, len(report.Outcomes))
	for _, o := range report.Outcomes {
		status[o.Field] = o
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Company\t%s\n", report.CompanyName)
	for _, f := range fields {
		v, ok := report.Result[f.Name]
		if !ok {
			fmt.Fprintf(tw, "%s\t(%s)\n", f.Label, status[f.Name].Status)
			continue
		}
		text, ok := extract.Text(v)
		if !ok {
			text = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\n", f.Label, text)
	}
	if news, _ := report.Result["news"].([]search.NewsLink); len(news) > 0 {
		fmt.Fprintln(tw, "News\t")
		for _, n := range news {
			fmt.Fprintf(tw, "\t%s <%s>\n", n.Title, n.URL)
		}
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func init() {
	detailsCmd.Flags().BoolVar(&detailsJSON, "json", false, "print the full report as JSON")
	rootCmd.AddCommand(detailsCmd)
}
