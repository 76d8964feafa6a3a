package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/moag1000/Little-ISMS-Helper-sub006/internal/catalog/models"
	"github.com/moag1000/Little-ISMS-Helper-sub006/internal/catalog/reconcile"
	"github.com/moag1000/Little-ISMS-Helper-sub006/internal/catalog/sources"
	pstrings "github.com/moag1000/Little-ISMS-Helper-sub006/pkg/platform/strings"
)

type syncFlags struct {
	file            string
	update          bool
	allOrNothing    bool
	supplement      bool
	skipIfPopulated bool
	touch           bool
	batchSize       int
}

func (f syncFlags) options() reconcile.Options {
	opts := reconcile.Options{
		BatchSize:        f.batchSize,
		RefreshFramework: f.touch,
		SkipIfPopulated:  f.skipIfPopulated,
	}
	if f.update {
		opts.Mode = reconcile.ModeUpsert
	}
	if f.allOrNothing {
		opts.Transaction = reconcile.AllOrNothing
	}
	return opts
}

func newFrameworksCmd(s streams, root *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "frameworks",
		Short: "Manage the compliance framework catalogue",
	}
	cmd.AddCommand(newSyncCmd(s, root), newSyncAllCmd(s, root), newListCmd(s, root))
	return cmd
}

func newSyncCmd(s streams, root *rootFlags) *cobra.Command {
	var flags syncFlags
	cmd := &cobra.Command{
		Use:   "sync <code>",
		Short: "Load the requirements of one framework",
		Long: `Load the requirements of one framework into the catalogue.

Without --file the built-in data module for <code> is used. Existing
requirements are skipped unless --update is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mod, err := resolveModule(args[0], flags)
			if err != nil {
				return err
			}
			job, err := mod.Job(flags.options())
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), s, root, func(a *app) error {
				res, err := a.catalog().Sync(cmd.Context(), job)
				renderSync(s.out, models.NormalizeCode(job.Code), job.Options, res)
				return err
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&flags.file, "file", "", "Read definitions from a YAML or JSON file instead of the built-in module")
	f.BoolVar(&flags.update, "update", false, "Overwrite existing requirements instead of skipping them")
	f.BoolVar(&flags.allOrNothing, "all-or-nothing", false, "Run the whole sync in one transaction")
	f.BoolVar(&flags.supplement, "supplement", false, "Only add to an existing framework; fail if it is missing")
	f.BoolVar(&flags.skipIfPopulated, "skip-if-populated", false, "Do nothing when the framework already has requirements")
	f.BoolVar(&flags.touch, "touch", false, "Refresh the framework's updated timestamp")
	f.IntVar(&flags.batchSize, "batch-size", reconcile.DefaultBatchSize, "Definitions per committed batch")
	return cmd
}

func resolveModule(code string, flags syncFlags) (sources.Module, error) {
	if flags.file == "" {
		m, err := sources.Lookup(code)
		if err != nil {
			return sources.Module{}, err
		}
		m.Supplement = m.Supplement || flags.supplement
		return m, nil
	}
	m, err := sources.LoadFile(flags.file, code)
	if err != nil {
		return sources.Module{}, err
	}
	if !strings.EqualFold(models.NormalizeCode(m.Code), models.NormalizeCode(code)) {
		return sources.Module{}, codeError(exitInvalid, "file %s targets framework %s, not %s", flags.file, m.Code, code)
	}
	m.Supplement = m.Supplement || flags.supplement
	return m, nil
}

func newSyncAllCmd(s streams, root *rootFlags) *cobra.Command {
	var (
		update bool
		only   []string
	)
	cmd := &cobra.Command{
		Use:   "sync-all",
		Short: "Load every built-in framework module in order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mods, err := sources.Builtin()
			if err != nil {
				return err
			}
			mods = filterModules(mods, only)
			if len(mods) == 0 {
				return codeError(exitInvalid, "no built-in module matches --only %s", strings.Join(only, ","))
			}
			opts := syncFlags{update: update}.options()
			jobs := make([]reconcile.Job, 0, len(mods))
			for _, m := range mods {
				job, err := m.Job(opts)
				if err != nil {
					return err
				}
				jobs = append(jobs, job)
			}
			return withApp(cmd.Context(), s, root, func(a *app) error {
				reports, err := a.catalog().SyncAll(cmd.Context(), jobs)
				for i, r := range reports {
					renderSync(s.out, r.Code, jobs[i].Options, r.Result)
				}
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&update, "update", false, "Overwrite existing requirements instead of skipping them")
	cmd.Flags().StringSliceVar(&only, "only", nil, "Restrict to these module names or framework codes")
	return cmd
}

func filterModules(mods []sources.Module, only []string) []sources.Module {
	if len(only) == 0 {
		return mods
	}
	wanted := make(map[string]bool, len(only))
	for _, o := range pstrings.DedupeAndTrimLower(only) {
		wanted[o] = true
	}
	var out []sources.Module
	for _, m := range mods {
		if wanted[strings.ToLower(m.Name)] || wanted[strings.ToLower(m.Code)] {
			out = append(out, m)
		}
	}
	return out
}

func newListCmd(s streams, root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List catalogued frameworks with their requirement counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), s, root, func(a *app) error {
				rows, err := a.catalog().List(cmd.Context())
				if err != nil {
					return err
				}
				return renderFrameworks(s.out, rows)
			})
		},
	}
}
