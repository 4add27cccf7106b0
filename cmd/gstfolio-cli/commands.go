package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/username/gstfolio/src/models"
	"github.com/username/gstfolio/src/parsers"
	"github.com/username/gstfolio/src/processors"
	"github.com/username/gstfolio/src/utils"
)

var reportCmd = &cobra.Command{
	Use:   "report FILE...",
	Short: "Write the transaction report CSV",
	Args:  requiredFiles(),
	RunE: withPipeline(func(ctx context.Context, p *pipeline, w io.Writer) error {
		rows, err := p.reports.TransactionReport(ctx, cliKey)
		if err != nil {
			return err
		}
		return processors.WriteTransactionReport(w, rows)
	}),
}

var journalCmd = &cobra.Command{
	Use:   "journal FILE...",
	Short: "Write the balanced journal CSV",
	Args:  requiredFiles(),
	RunE: withPipeline(func(ctx context.Context, p *pipeline, w io.Writer) error {
		rows, err := p.reports.JournalRows(ctx, cliKey)
		if err != nil {
			return err
		}
		return processors.WriteJournal(w, rows)
	}),
}

var gstReturnCmd = &cobra.Command{
	Use:   "gst-return FILE...",
	Short: "Print the GST return summary",
	Args:  requiredFiles(),
	RunE: withPipeline(func(ctx context.Context, p *pipeline, w io.Writer) error {
		ret, err := p.reports.GSTReturn(ctx, cliKey)
		if err != nil {
			return err
		}
		return printGSTReturn(w, ret)
	}),
}

var banksCmd = &cobra.Command{
	Use:   "banks",
	Short: "List supported banks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range parsers.BankNames() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

func printGSTReturn(w io.Writer, r models.GSTReturn) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	lines := []struct {
		label string
		value string
	}{
		{"Total sales and income", utils.FormatMoney(r.TotalSales)},
		{"Zero-rated supplies", utils.FormatMoney(r.ZeroRatedSales)},
		{"Net GST-able sales", utils.FormatMoney(r.NetGSTSales)},
		{"GST collected on sales", utils.FormatMoney(r.GSTCollected)},
		{"Adjusted purchases", utils.FormatMoney(r.AdjustedPurchases)},
		{"GST paid on purchases", utils.FormatMoney(r.GSTPaid)},
		{r.Label, utils.FormatMoney(r.DisplayAmount)},
	}
	for _, l := range lines {
		fmt.Fprintf(tw, "%s\t%s\t\n", l.label, l.value)
	}
	return tw.Flush()
}

func init() {
	rootCmd.AddCommand(reportCmd, journalCmd, gstReturnCmd, banksCmd)
}
