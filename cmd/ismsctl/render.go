package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/moag1000/Little-ISMS-Helper-sub006/internal/catalog/reconcile"
	"github.com/moag1000/Little-ISMS-Helper-sub006/internal/catalog/service"
	"github.com/moag1000/Little-ISMS-Helper-sub006/internal/retention"
)

const timeLayout = "2006-01-02 15:04:05"

func renderSync(w io.Writer, code string, opts reconcile.Options, res reconcile.Result) {
	if res.SkippedRun {
		fmt.Fprintf(w, "%s: already populated, nothing loaded (%d definitions)\n", code, res.Total)
		return
	}
	fmt.Fprintf(w, "%s: created=%d updated=%d skipped=%d total=%d batches=%d mode=%s transaction=%s",
		code, res.Created, res.Updated, res.Skipped, res.Total, res.Batches, opts.Mode, opts.Transaction)
	if res.FrameworkCreated {
		fmt.Fprint(w, " (framework created)")
	}
	fmt.Fprintln(w)
}

func renderFrameworks(w io.Writer, rows []service.FrameworkSummary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tNAME\tVERSION\tREQUIREMENTS\tMANDATORY\tUPDATED")
	for _, r := range rows {
		fw := r.Framework
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%t\t%s\n",
			fw.Code, fw.Name, fw.Version, r.Requirements, fw.Mandatory, fw.UpdatedAt.UTC().Format(timeLayout))
	}
	return tw.Flush()
}

func renderPreview(w io.Writer, p retention.Preview) {
	fmt.Fprintf(w, "Retention period: %d days (%d months)\n", p.Policy.RetentionDays, p.Policy.RetentionMonths())
	fmt.Fprintf(w, "Cutoff date:      %s\n", p.Cutoff.UTC().Format(timeLayout))
	fmt.Fprintf(w, "Found %d audit log entries older than the cutoff\n", p.Count)
	if len(p.Sample) == 0 {
		return
	}
	fmt.Fprintf(w, "\nSample of entries to be deleted (first %d):\n", retention.SampleSize)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tENTITY TYPE\tACTION\tUSER\tCREATED AT")
	for _, e := range p.Sample {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.ID, e.EntityType, e.Action, e.UserName, e.CreatedAt.UTC().Format(timeLayout))
	}
	_ = tw.Flush()
	fmt.Fprintln(w)
}

func renderPurge(w io.Writer, res retention.Result) {
	switch res.Outcome {
	case retention.OutcomeNothingToPurge:
		fmt.Fprintf(w, "No audit log entries older than %s\n", res.Cutoff.UTC().Format(timeLayout))
	case retention.OutcomeDryRun:
		renderPreview(w, res.Preview)
		fmt.Fprintf(w, "DRY RUN: no changes made. %d log entries would be deleted.\n", res.WouldDelete)
	case retention.OutcomeDeclined:
		fmt.Fprintln(w, "Operation cancelled by operator.")
	case retention.OutcomePurged:
		if res.Policy.AssumeYes {
			renderPreview(w, res.Preview)
		}
		fmt.Fprintf(w, "Deleted %d audit log entries in %s\n", res.Deleted, res.Elapsed.Round(10*time.Millisecond))
		fmt.Fprintf(w, "Retention policy: %d days (%d months)\n", res.Policy.RetentionDays, res.Policy.RetentionMonths())
	}
}
