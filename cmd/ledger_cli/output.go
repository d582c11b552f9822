package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/bbabel1/property-manager-sub016/internal/core/domain"
	"github.com/bbabel1/property-manager-sub016/pkg/database"
)

// printer writes command results to stdout: aligned text for an operator, or JSON with --json.
type printer struct {
	w    io.Writer
	json bool
}

func (p printer) migrate(direction database.MigrationDirection, changed bool) error {
	if p.json {
		return p.encode(map[string]any{"direction": direction, "changed": changed})
	}
	state := "already current"
	if changed {
		state = "applied"
	}
	_, err := fmt.Fprintf(p.w, "migrations %s: %s\n", direction, state)
	return err
}

func (p printer) backfill(s *domain.BackfillSummary) error {
	if p.json {
		return p.encode(s)
	}
	mode := "dry run (pass --apply to write)"
	if !s.DryRun {
		mode = "applied"
	}
	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "job:\t%s\n", s.Job)
	fmt.Fprintf(tw, "mode:\t%s\n", mode)
	fmt.Fprintf(tw, "scanned:\t%d\n", s.Scanned)
	fmt.Fprintf(tw, "changed:\t%d\n", s.Changed)
	fmt.Fprintf(tw, "skipped:\t%d\n", s.Skipped)
	fmt.Fprintf(tw, "failed:\t%d\n", s.Failed)
	fmt.Fprintf(tw, "total:\t%s\n", s.Total.StringFixed(2))
	return tw.Flush()
}

func (p printer) sync(s *domain.OrganizationSyncSummary) error {
	if p.json {
		return p.encode(s)
	}
	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "BANK ACCOUNT\tRECONCILIATIONS\tSYNCED\tUNMATCHED\tERRORS\tDRIFTED\tSTATUS")
	for _, a := range s.Accounts {
		status := "ok"
		if a.FatalError != "" {
			status = "failed: " + a.FatalError
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\t%s\n",
			a.BankGLAccountID, a.Reconciliations, a.Synced, a.Unmatched, a.Errors, a.Drifted, status)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(p.w, "\n%d bank account(s): %d synced, %d unmatched, %d errors, %d failed\n",
		len(s.Accounts), s.Synced, s.Unmatched, s.Errors, s.Failed)
	return err
}

func (p printer) encode(v any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
