package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/triplestream/internal/dataset"
	"github.com/roach88/triplestream/internal/store"
)

// LoadOptions holds flags for the load command.
type LoadOptions struct {
	*RootOptions
	Database string
}

// LoadResult summarizes a load.
type LoadResult struct {
	Files    int   `json:"files"`
	Read     int   `json:"read"`
	Inserted int   `json:"inserted"`
	Total    int64 `json:"total"`
}

func (r LoadResult) String() string {
	return fmt.Sprintf("Loaded %d file(s): %d triples read, %d inserted, %d in store",
		r.Files, r.Read, r.Inserted, r.Total)
}

// NewLoadCommand creates the load command.
func NewLoadCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LoadOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "load --db <path> <triples.yaml>...",
		Short: "Insert YAML triple files into a SQLite store",
		Long: `Insert triples from YAML files into a SQLite store, creating it if needed.

Triple files have the form:

  triples:
    - ["<alice>", "<knows>", "<bob>"]

Triples already in the store are skipped.

Example:
  triplestream load --db ./graph.db ./data/social.yaml`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runLoad(opts *LoadOptions, files []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	ctx := cmd.Context()

	st, err := store.Open(opts.Database)
	if err != nil {
		return formatter.Fail(WrapExitError(ExitCommandError, ErrCodeDataset, "failed to open database", err), nil)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	result := LoadResult{Files: len(files)}
	for _, path := range files {
		triples, err := dataset.LoadYAMLFile(path)
		if err != nil {
			return formatter.Fail(WrapExitError(ExitCommandError, ErrCodeDataset, "failed to read triples", err),
				map[string]string{"file": path})
		}
		n, err := st.Insert(ctx, triples...)
		if err != nil {
			return formatter.Fail(WrapExitError(ExitCommandError, ErrCodeDataset, "failed to insert triples", err),
				map[string]string{"file": path})
		}
		formatter.VerboseLog("%s: %d triples, %d new", path, len(triples), n)
		result.Read += len(triples)
		result.Inserted += n
	}

	total, err := st.Count(ctx)
	if err != nil {
		return formatter.Fail(WrapExitError(ExitCommandError, ErrCodeDataset, "failed to count triples", err), nil)
	}
	result.Total = total

	return formatter.Success(result)
}
