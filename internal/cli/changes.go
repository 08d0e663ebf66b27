package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/siltlabs/silt/internal/agent"
	"github.com/siltlabs/silt/internal/base"
	"github.com/siltlabs/silt/internal/booked"
	"github.com/siltlabs/silt/internal/clock"
	"github.com/siltlabs/silt/internal/store"
)

// ChangesOptions holds flags for the changes command.
type ChangesOptions struct {
	*RootOptions
	Database string
	Version  int64
	MaxBytes int
}

// ChangesResult is the payload printed by the changes command.
type ChangesResult struct {
	SiteID  string       `json:"site_id"`
	Version int64        `json:"version"`
	Chunks  []ChunkTrace `json:"chunks"`
}

// ChunkTrace is one chunk of a version's change log, flattened for
// output.
type ChunkTrace struct {
	Range   string        `json:"range"`
	Bytes   int           `json:"bytes"`
	Changes []ChangeTrace `json:"changes"`
}

// ChangeTrace is one change row, flattened for output.
type ChangeTrace struct {
	Seq        int64  `json:"seq"`
	Table      string `json:"table"`
	PK         string `json:"pk"`
	Column     string `json:"column"`
	Value      string `json:"value"`
	ColVersion int64  `json:"col_version"`
	CL         int64  `json:"cl"`
}

func (r ChangesResult) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "site %s version %d: %d chunks\n", r.SiteID, r.Version, len(r.Chunks))
	for _, c := range r.Chunks {
		fmt.Fprintf(&b, "chunk %s: %d changes, %d bytes\n", c.Range, len(c.Changes), c.Bytes)
		for _, ch := range c.Changes {
			fmt.Fprintf(&b, "  seq %d: %s[%s].%s = %s (col_version %d, cl %d)\n",
				ch.Seq, ch.Table, ch.PK, ch.Column, ch.Value, ch.ColVersion, ch.CL)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// traceChunks flattens agent chunks into the output shape.
func traceChunks(siteID base.SiteID, v base.DBVersion, chunks []agent.Chunk) ChangesResult {
	result := ChangesResult{
		SiteID:  siteID.String(),
		Version: int64(v),
		Chunks:  make([]ChunkTrace, 0, len(chunks)),
	}
	for _, c := range chunks {
		ct := ChunkTrace{
			Range:   c.Range.String(),
			Changes: make([]ChangeTrace, 0, len(c.Changes)),
		}
		for i := range c.Changes {
			ch := &c.Changes[i]
			ct.Bytes += ch.EstimatedByteSize()
			ct.Changes = append(ct.Changes, ChangeTrace{
				Seq:        int64(ch.Seq),
				Table:      ch.Table,
				PK:         fmt.Sprintf("%x", ch.PK),
				Column:     ch.Column,
				Value:      ch.Value.String(),
				ColVersion: ch.ColVersion,
				CL:         ch.CL,
			})
		}
		result.Chunks = append(result.Chunks, ct)
	}
	return result
}

// NewChangesCommand creates the changes command.
func NewChangesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ChangesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "changes",
		Short: "Dump one version's change log as byte-budgeted chunks",
		Long: `Read the change log captured for one registered version and print it
the way the node would hand it to a peer: split into chunks whose
estimated payload size stays under the byte budget, with each chunk
tagged by the sequence range it accounts for.

Example:
  silt changes --db ./node.db --version 3
  silt changes --db ./node.db --version 3 --max-bytes 1024 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChanges(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database")
	cmd.Flags().Int64Var(&opts.Version, "version", 0, "database version to dump (required)")
	cmd.Flags().IntVar(&opts.MaxBytes, "max-bytes", 0, "chunk byte budget (default from config)")
	_ = cmd.MarkFlagRequired("version")

	return cmd
}

func runChanges(opts *ChangesOptions, cmd *cobra.Command) error {
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}

	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		out.Error(ErrCodeConfig, err.Error(), nil)
		return WrapExitError(ExitCommandError, "loading config", err)
	}
	configureLogging(opts.RootOptions, cfg)

	dbPath, err := resolveDBPath(opts.Database, cfg)
	if err != nil {
		out.Error(ErrCodeConfig, err.Error(), nil)
		return err
	}

	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = cfg.MaxChangesByteSize
	}

	st, err := store.Open(dbPath)
	if err != nil {
		out.Error(ErrCodeStore, "failed to open database", err.Error())
		return WrapExitError(ExitCommandError, "opening database", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	a, err := buildAgent(ctx, st)
	if err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			out.Error(ErrCodeNotInitialized, exitErr.Message, nil)
			return exitErr
		}
		out.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "assembling node", err)
	}

	version := base.DBVersion(opts.Version)
	chunks, err := a.VersionChunks(ctx, version, maxBytes)
	if err != nil {
		out.Error(ErrCodeStore, "failed to read change log", err.Error())
		return WrapExitError(ExitCommandError, "reading change log", err)
	}
	if chunks == nil {
		out.Error(ErrCodeUnknownVersion, fmt.Sprintf("version %d has no captured changes", opts.Version), nil)
		return NewExitError(ExitFailure, "unknown version")
	}

	return out.Success(traceChunks(a.SiteID(), version, chunks))
}

// buildAgent assembles a read-side agent over an opened store.
func buildAgent(ctx context.Context, st *store.Store) (*agent.Agent, error) {
	siteID, ok, err := store.LocalSiteID(ctx, st.DB())
	if err != nil {
		return nil, fmt.Errorf("reading site identity: %w", err)
	}
	if !ok {
		return nil, NewExitError(ExitFailure, "node not initialized: run silt init first")
	}

	versions, err := booked.Load(ctx, st.DB(), siteID)
	if err != nil {
		return nil, fmt.Errorf("loading version ledger: %w", err)
	}

	return agent.New(siteID, clock.New(), st, booked.NewBooked(versions)), nil
}
