package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/moag1000/Little-ISMS-Helper-sub006/internal/retention"
)

type cleanupFlags struct {
	retentionDays int
	dryRun        bool
	yes           bool
}

func newAuditLogCmd(s streams, root *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit-log",
		Short: "Maintain the audit log",
	}
	cmd.AddCommand(newCleanupCmd(s, root))
	return cmd
}

func newCleanupCmd(s streams, root *rootFlags) *cobra.Command {
	var flags cleanupFlags
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete audit-log entries older than the retention period",
		Long: `Delete audit-log entries older than the retention period.

Retention below 365 days is refused (NIS2 Art. 21.2). Matching entries are
counted and a sample is shown; nothing is deleted without confirmation
unless --yes is given. Non-interactive input declines.

Recommended cron (daily at 2 AM):
  0 2 * * * ismsctl audit-log cleanup --yes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(root.envFiles)
			if err != nil {
				return err
			}
			days := flags.retentionDays
			if !cmd.Flags().Changed("retention-days") {
				days = cfg.Audit.RetentionDays
			}
			policy := retention.Policy{RetentionDays: days, DryRun: flags.dryRun, AssumeYes: flags.yes}
			// The floor is enforced before any backend is contacted.
			if err := policy.Validate(); err != nil {
				return err
			}

			return runApp(cmd.Context(), s, cfg, func(a *app) error {
				confirmer := retention.ConfirmFunc(func(ctx context.Context, p retention.Preview) (bool, error) {
					renderPreview(s.out, p)
					return retention.NewPrompt(s.in, s.out).Confirm(ctx, p)
				})
				res, err := a.purger(confirmer).Purge(cmd.Context(), policy)
				if err != nil {
					return err
				}
				renderPurge(s.out, res)
				if res.Outcome == retention.OutcomeDeclined {
					return codeError(exitCancelled, "operation cancelled by operator")
				}
				return nil
			})
		},
	}
	f := cmd.Flags()
	f.IntVar(&flags.retentionDays, "retention-days", retention.MinimumRetentionDays, "Days to retain audit-log entries (default from ISMS_AUDIT_RETENTION_DAYS)")
	f.BoolVar(&flags.dryRun, "dry-run", false, "Show what would be deleted without deleting")
	f.BoolVar(&flags.yes, "yes", false, "Delete without asking for confirmation")
	return cmd
}
