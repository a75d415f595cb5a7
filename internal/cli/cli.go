// Package cli implements the guidectl commands.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/ssmgcode/cargo-expreso-control/internal/domain"
	"github.com/ssmgcode/cargo-expreso-control/internal/models"
	"github.com/ssmgcode/cargo-expreso-control/internal/services/reconciliation"
	"github.com/ssmgcode/cargo-expreso-control/internal/services/report"
	"github.com/ssmgcode/cargo-expreso-control/internal/sheet"
)

// Exit codes.
const (
	ExitOK    = 0
	ExitFatal = 1
	ExitUsage = 2
)

type App struct {
	Service             *reconciliation.ReconciliationService
	SheetName           string
	SettlementHeaderRow int
	Out                 io.Writer
	Err                 io.Writer
}

const usage = `usage:
  guidectl import-guides <file.xlsx>
  guidectl reconcile <file.xlsx>
  guidectl paid [-id GUIDE]
`

// Run executes one command and returns the process exit code.
func (a *App) Run(ctx context.Context, args []string) int {
	if len(args) == 0 {
		fmt.Fprint(a.Err, usage)
		return ExitUsage
	}

	switch args[0] {
	case "import-guides":
		return a.importGuides(ctx, args[1:])
	case "reconcile":
		return a.reconcile(ctx, args[1:])
	case "paid":
		return a.paid(ctx, args[1:])
	case "help", "-h", "--help":
		fmt.Fprint(a.Out, usage)
		return ExitOK
	default:
		fmt.Fprintf(a.Err, "unknown command %q\n%s", args[0], usage)
		return ExitUsage
	}
}

func (a *App) importGuides(ctx context.Context, args []string) int {
	path, code := a.fileArg("import-guides", args)
	if code != ExitOK {
		return code
	}
	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(a.Err, "Error: %v\n", err)
		return ExitFatal
	}
	defer f.Close()

	rows, err := sheet.ReadGuides(f, a.SheetName)
	if err != nil {
		fmt.Fprintf(a.Err, "Error reading %s: %v\n", path, err)
		return ExitFatal
	}

	rep, err := a.Service.ImportGuides(ctx, filepath.Base(path), rows)
	return a.finish(rep, err)
}

func (a *App) reconcile(ctx context.Context, args []string) int {
	path, code := a.fileArg("reconcile", args)
	if code != ExitOK {
		return code
	}
	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(a.Err, "Error: %v\n", err)
		return ExitFatal
	}
	defer f.Close()

	parsed, err := sheet.ReadSettlements(f, a.SheetName, a.SettlementHeaderRow)
	if err != nil {
		fmt.Fprintf(a.Err, "Error reading %s: %v\n", path, err)
		return ExitFatal
	}

	rep, err := a.Service.ReconcileSettlements(ctx, filepath.Base(path), parsed.Meta, parsed.Rows)
	return a.finish(rep, err)
}

func (a *App) paid(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("paid", flag.ContinueOnError)
	fs.SetOutput(a.Err)
	id := fs.String("id", "", "only show the settlement for this guide")
	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}

	settlements, err := a.Service.ListSettlements(ctx, *id)
	if err != nil {
		fmt.Fprintf(a.Err, "Error: %v\n", err)
		return ExitFatal
	}
	if *id != "" && len(settlements) == 0 {
		fmt.Fprintf(a.Err, "no settlement for guide %s\n", *id)
		return ExitFatal
	}
	PrintSettlements(a.Out, settlements)
	return ExitOK
}

func (a *App) fileArg(cmd string, args []string) (string, int) {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(a.Err)
	if err := fs.Parse(args); err != nil {
		return "", ExitUsage
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(a.Err, "%s: expected exactly one file\n%s", cmd, usage)
		return "", ExitUsage
	}
	return fs.Arg(0), ExitOK
}

// finish prints whatever report exists and maps the run error to an exit code.
// Per-row problems never fail the command.
func (a *App) finish(rep *domain.BatchReport, err error) int {
	if rep != nil {
		PrintReport(a.Out, rep)
	}
	if err == nil {
		return ExitOK
	}

	switch {
	case domain.IsSchemaError(err):
		fmt.Fprintf(a.Err, "Aborted, the sheet does not match the expected layout: %v\n", err)
	case errors.Is(err, domain.ErrStoreUnavailable):
		fmt.Fprintf(a.Err, "Aborted, the store is unavailable (rows above were kept): %v\n", err)
	default:
		fmt.Fprintf(a.Err, "Aborted: %v\n", err)
	}
	return ExitFatal
}

func PrintReport(w io.Writer, rep *domain.BatchReport) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ROW\tGUIDE\tDISPOSITION\tCOMMISSION\tREASON\n")
	for _, o := range rep.Outcomes {
		commission := ""
		if o.Commission != nil {
			commission = fmt.Sprintf("%s (%s/%s)", o.Commission.Verdict,
				report.Amount(o.Commission.Recorded), report.Amount(o.Commission.Expected))
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", o.Row, o.GuideID, o.Disposition, commission, o.Reason)
	}
	tw.Flush()

	fmt.Fprintln(w)
	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Batch\t%s\n", rep.BatchID)
	fmt.Fprintf(tw, "Rows\t%d\n", rep.Counts.Total)
	fmt.Fprintf(tw, "Saved\t%d\n", rep.Counts.Saved)
	fmt.Fprintf(tw, "Duplicate\t%d\n", rep.Counts.Duplicate)
	fmt.Fprintf(tw, "Invalid\t%d\n", rep.Counts.Invalid)
	if rep.Kind == models.BatchKindSettlements {
		fmt.Fprintf(tw, "Unmatched\t%d\n", rep.Counts.Unmatched)
		fmt.Fprintf(tw, "Commission mismatch\t%d\n", rep.Counts.CommissionMismatch)
		fmt.Fprintf(tw, "COD amount\t%s\n", rep.Totals.CODAmount)
		fmt.Fprintf(tw, "Cash\t%s\n", rep.Totals.Cash)
		fmt.Fprintf(tw, "Commission value\t%s\n", rep.Totals.CommissionValue)
		fmt.Fprintf(tw, "Settled amount\t%s\n", rep.Totals.SettledAmount)
	}
	tw.Flush()
}

func PrintSettlements(w io.Writer, settlements []models.Settlement) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "GUIDE\tPIECES\tCOD\tCASH\tCOMMISSION\tVALUE\tSETTLED\tOPERATION\n")
	for _, s := range settlements {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			s.ID, s.Pieces,
			report.Amount(s.CODAmount), report.Amount(s.Cash),
			s.Commission, report.Amount(s.CommissionValue),
			report.Amount(s.SettledAmount), s.Operation)
	}
	tw.Flush()
}
