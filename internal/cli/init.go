package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/siltlabs/silt/internal/base"
	"github.com/siltlabs/silt/internal/store"
)

// InitOptions holds flags for the init command.
type InitOptions struct {
	*RootOptions
	Database string
	SiteID   string
}

// InitResult is the payload printed after a successful init.
type InitResult struct {
	SiteID   string `json:"site_id"`
	Database string `json:"database"`
	Created  bool   `json:"created"`
}

func (r InitResult) String() string {
	if r.Created {
		return fmt.Sprintf("initialized %s as site %s", r.Database, r.SiteID)
	}
	return fmt.Sprintf("%s already initialized as site %s", r.Database, r.SiteID)
}

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InitOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the database and assign the node identity",
		Long: `Create the node database, apply the schema, and persist the site id.

The site id is the node's stable writer identity. It is generated on first
init unless pinned with --site-id or the config file. Re-running init on an
initialized database is a no-op when the identity matches and an error when
it does not.

Example:
  silt init --db ./node.db
  silt init --db ./node.db --site-id 018f3b2a-7c44-7b1e-a2d3-9e8f6c5b4a31`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database")
	cmd.Flags().StringVar(&opts.SiteID, "site-id", "", "pin the node identity (UUID)")

	return cmd
}

func runInit(opts *InitOptions, cmd *cobra.Command) error {
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

	// The flag wins over the config file; both are optional.
	pinned := opts.SiteID
	if pinned == "" {
		pinned = cfg.SiteID
	}

	var siteID base.SiteID
	created := true
	if pinned != "" {
		siteID, err = base.ParseSiteID(pinned)
		if err != nil {
			out.Error(ErrCodeConfig, fmt.Sprintf("invalid site id %q", pinned), err.Error())
			return WrapExitError(ExitCommandError, "parsing site id", err)
		}
	} else {
		siteID = base.NewSiteID()
	}

	slog.Info("opening database", "path", dbPath)
	st, err := store.Open(dbPath)
	if err != nil {
		out.Error(ErrCodeStore, "failed to open database", err.Error())
		return WrapExitError(ExitCommandError, "opening database", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	existing, ok, err := store.LocalSiteID(ctx, st.DB())
	if err != nil {
		out.Error(ErrCodeStore, "failed to read site identity", err.Error())
		return WrapExitError(ExitCommandError, "reading site identity", err)
	}
	if ok {
		created = false
		if pinned == "" {
			siteID = existing
		}
	}

	if err := store.SetLocalSiteID(ctx, st.DB(), siteID); err != nil {
		out.Error(ErrCodeIdentity, "site identity conflict", err.Error())
		return WrapExitError(ExitFailure, "setting site identity", err)
	}

	slog.Info("node initialized", "site", siteID, "db", dbPath, "created", created)
	return out.Success(InitResult{SiteID: siteID.String(), Database: dbPath, Created: created})
}
