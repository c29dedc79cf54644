package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/iliyamo/wedding-seating/internal/config"
	"github.com/iliyamo/wedding-seating/internal/model"
	"github.com/iliyamo/wedding-seating/internal/reconcile"
	"github.com/iliyamo/wedding-seating/internal/report"
	"github.com/iliyamo/wedding-seating/internal/sheets"
)

var (
	reportOutput      string
	reportSpreadsheet string
	reportSheet       string
	reportTimeout     time.Duration
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print table occupancy straight from the guest sheet",
	Args:  cobra.NoArgs,
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "table", "Output format: table, json or yaml")
	reportCmd.Flags().StringVar(&reportSpreadsheet, "spreadsheet", "", "Spreadsheet id (default $SPREADSHEET_ID)")
	reportCmd.Flags().StringVar(&reportSheet, "sheet", "", "Sheet name (default $SHEET_NAME or Invitados)")
	reportCmd.Flags().DurationVar(&reportTimeout, "timeout", 20*time.Second, "Overall read timeout")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	id := reportSpreadsheet
	if id == "" {
		id = os.Getenv("SPREADSHEET_ID")
	}
	if id == "" {
		return fmt.Errorf("no spreadsheet: pass --spreadsheet or set SPREADSHEET_ID")
	}
	sc := config.LoadSheetsConfig(id)
	if reportSheet != "" {
		sc.SheetName = reportSheet
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), reportTimeout)
	defer cancel()

	svc := reconcile.NewService(sheets.NewGvizReader(sc.GvizBaseURL, sc.SpreadsheetID, sc.SheetName, sc.FetchTimeout))
	defer svc.Close()
	res, err := svc.View(ctx, true)
	if err != nil {
		return err
	}
	return renderReport(cmd.OutOrStdout(), res.View, reportOutput)
}

func renderReport(w io.Writer, v report.View, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "table", "":
		return renderTable(w, v)
	default:
		return fmt.Errorf("unknown output format %q (want table, json or yaml)", format)
	}
}

var statusColor = map[model.Status]*color.Color{
	model.StatusOver:      color.New(color.FgRed, color.Bold),
	model.StatusFull:      color.New(color.FgRed),
	model.StatusNearFull:  color.New(color.FgYellow),
	model.StatusAvailable: color.New(color.FgGreen),
}

// renderTable prints one line per table.  Status goes last so colour codes
// do not disturb column alignment.
func renderTable(w io.Writer, v report.View) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TABLE\tUSED\tCAPACITY\tOCCUPANCY\tSTATUS")
	for _, t := range v.Tables {
		status := string(t.Status)
		if c, ok := statusColor[t.Status]; ok {
			status = c.Sprint(status)
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%.0f%%\t%s\n", t.Label, t.Used, t.Capacity, t.Ratio*100, status)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	m := v.Meta
	fmt.Fprintf(w, "\n%d guests (%d with +1, %d declined), %d/%d seats used (%.0f%%)\n",
		m.Guests, m.PlusOnes, m.Declined, m.TotalUsed, m.TotalCapacity, m.Occupancy*100)
	fmt.Fprintf(w, "full %d, near full %d, over %d, available %d\n", m.Full, m.NearFull, m.Over, m.Available)
	if len(v.Unassigned) > 0 {
		color.New(color.FgYellow).Fprintf(w, "unassigned: %d\n", len(v.Unassigned))
		for _, g := range v.Unassigned {
			if g.RawTable != "" {
				fmt.Fprintf(w, "  row %d  %s  (table %q)\n", g.ID, g.Name, g.RawTable)
			} else {
				fmt.Fprintf(w, "  row %d  %s\n", g.ID, g.Name)
			}
		}
	}
	return nil
}
