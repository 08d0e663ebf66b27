package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/siltlabs/silt/internal/store"
)

// StatusOptions holds flags for the status command.
type StatusOptions struct {
	*RootOptions
	Database string
}

// StatusResult is the payload printed by the status command.
type StatusResult struct {
	SiteID      string   `json:"site_id"`
	Database    string   `json:"database"`
	NextVersion int64    `json:"next_version"`
	Booked      []string `json:"booked,omitempty"`
}

func (r StatusResult) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "site:         %s\n", r.SiteID)
	fmt.Fprintf(&b, "database:     %s\n", r.Database)
	fmt.Fprintf(&b, "next version: %d\n", r.NextVersion)
	if len(r.Booked) == 0 {
		b.WriteString("booked:       (none)")
	} else {
		fmt.Fprintf(&b, "booked:       %s", strings.Join(r.Booked, " "))
	}
	return b.String()
}

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StatusOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the node identity and version ledger",
		Long: `Show the node's site id, the next database version it would assign,
and the committed version ranges in its ledger.

Example:
  silt status --db ./node.db
  silt status --db ./node.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database")

	return cmd
}

func runStatus(opts *StatusOptions, cmd *cobra.Command) error {
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

	st, err := store.Open(dbPath)
	if err != nil {
		out.Error(ErrCodeStore, "failed to open database", err.Error())
		return WrapExitError(ExitCommandError, "opening database", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	siteID, ok, err := store.LocalSiteID(ctx, st.DB())
	if err != nil {
		out.Error(ErrCodeStore, "failed to read site identity", err.Error())
		return WrapExitError(ExitCommandError, "reading site identity", err)
	}
	if !ok {
		out.Error(ErrCodeNotInitialized, "node not initialized: run silt init first", nil)
		return NewExitError(ExitFailure, "node not initialized")
	}

	next, err := store.PeekNextDBVersion(ctx, st.DB(), siteID)
	if err != nil {
		out.Error(ErrCodeStore, "failed to read version counter", err.Error())
		return WrapExitError(ExitCommandError, "reading version counter", err)
	}

	ranges, err := store.BookedRanges(ctx, st.DB(), siteID)
	if err != nil {
		out.Error(ErrCodeStore, "failed to read version ledger", err.Error())
		return WrapExitError(ExitCommandError, "reading version ledger", err)
	}

	result := StatusResult{
		SiteID:      siteID.String(),
		Database:    dbPath,
		NextVersion: int64(next),
	}
	for _, r := range ranges {
		result.Booked = append(result.Booked, r.String())
	}
	return out.Success(result)
}
