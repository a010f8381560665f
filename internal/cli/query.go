package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/triplestream/internal/binding"
	"github.com/roach88/triplestream/internal/dataset"
	"github.com/roach88/triplestream/internal/eval"
	"github.com/roach88/triplestream/internal/plan"
	"github.com/roach88/triplestream/internal/store"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	Database  string
	Data      string
	Limit     int
	LHSWindow int
	RHSWindow int
	MaxWindow int
}

// QueryResult is the JSON payload of a query.
type QueryResult struct {
	Count     int              `json:"count"`
	Solutions []map[string]any `json:"solutions"`
	Warnings  []string         `json:"warnings,omitempty"`
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query (--db <path> | --data <triples.yaml>) <plan.cue>",
		Short: "Evaluate a plan against a dataset",
		Long: `Compile a CUE plan, validate it, and stream its solutions.

The dataset is either a SQLite store (--db) or a YAML triple file loaded
into memory (--data). Solutions are printed as they are produced, one per
line; with --format json they are collected into a single response whose
trace_id matches the query_id in the logs.

Example:
  triplestream query --db ./graph.db ./plans/friends.cue --limit 10
  triplestream query --data ./data/social.yaml ./plans/friends.cue --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database")
	cmd.Flags().StringVar(&opts.Data, "data", "", "path to YAML triple file")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum number of solutions (0 = all)")
	cmd.Flags().IntVar(&opts.LHSWindow, "lhs-window", eval.DefaultWindow, "initial left window for joins")
	cmd.Flags().IntVar(&opts.RHSWindow, "rhs-window", eval.DefaultWindow, "initial right window for joins")
	cmd.Flags().IntVar(&opts.MaxWindow, "max-window", eval.DefaultMaxWindow, "maximum join window")
	cmd.MarkFlagsMutuallyExclusive("db", "data")
	cmd.MarkFlagsOneRequired("db", "data")

	return cmd
}

func runQuery(opts *QueryOptions, planPath string, cmd *cobra.Command) error {
	queryID := opts.queryIDs().Generate()
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
		TraceID:   queryID,
	}
	ctx := cmd.Context()
	logger := slog.With("query_id", queryID)

	fail := func(exit int, code, message string, err error) error {
		return formatter.Fail(WrapExitError(exit, code, message, err), nil)
	}

	if opts.Limit < 0 {
		return fail(ExitCommandError, ErrCodeUsage, "invalid limit", fmt.Errorf("must be non-negative, got %d", opts.Limit))
	}

	node, err := LoadPlan(planPath)
	if err != nil {
		return fail(ExitCommandError, loadErrorCode(err), "failed to load plan", err)
	}
	res := plan.Validate(node)
	for _, w := range res.Warnings {
		logger.Warn("plan warning", "warning", w)
	}
	logger.Debug("plan compiled", "plan", plan.Describe(node))

	ds, closeDS, err := openQueryDataset(opts, logger)
	if err != nil {
		return fail(ExitCommandError, ErrCodeDataset, "failed to open dataset", err)
	}
	defer closeDS()

	block, err := plan.Build(node, ds,
		plan.WithDefaultWindows(opts.LHSWindow, opts.RHSWindow),
		plan.WithMaxWindow(opts.MaxWindow),
	)
	if err != nil {
		return fail(ExitFailure, ErrCodeInvalidPlan, "invalid plan", err)
	}

	logger.Info("query started", "plan", planPath, "limit", opts.Limit)
	stream := block.Evaluate(ctx, binding.Empty())
	defer stream.Close()

	var solutions []map[string]any
	count := 0
	for (opts.Limit == 0 || count < opts.Limit) && stream.Next() {
		b := stream.Bindings()
		count++
		if opts.Format == "json" {
			solutions = append(solutions, b.Canonical())
		} else {
			fmt.Fprintln(formatter.Writer, b)
		}
	}
	if err := stream.Err(); err != nil {
		logger.Error("query failed", "error", err, "solutions", count)
		return fail(ExitFailure, ErrCodeEvaluation, "evaluation failed", err)
	}
	logger.Info("query finished", "solutions", count)

	if opts.Format == "json" {
		if solutions == nil {
			solutions = []map[string]any{}
		}
		return formatter.Success(QueryResult{
			Count:     count,
			Solutions: solutions,
			Warnings:  res.Warnings,
		})
	}
	formatter.VerboseLog("%d solution(s)", count)
	return nil
}

// openQueryDataset opens the SQLite store or loads the triple file.
func openQueryDataset(opts *QueryOptions, logger *slog.Logger) (dataset.Dataset, func(), error) {
	if opts.Database != "" {
		if _, err := os.Stat(opts.Database); err != nil {
			return nil, nil, fmt.Errorf("database not found: %s", opts.Database)
		}
		st, err := store.Open(opts.Database)
		if err != nil {
			return nil, nil, err
		}
		return st, func() {
			if err := st.Close(); err != nil {
				logger.Error("error closing database", "error", err)
			}
		}, nil
	}

	triples, err := dataset.LoadYAMLFile(opts.Data)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("loaded triples", "file", opts.Data, "count", len(triples))
	return dataset.NewMemory(triples...), func() {}, nil
}
