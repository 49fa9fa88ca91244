package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/sprintchef/internal/store"
)

// SavesOptions holds flags for the saves command.
type SavesOptions struct {
	*RootOptions
	Database string
	Delete   string
}

// SaveList is the output of the saves command.
type SaveList struct {
	Saves []store.SaveInfo `json:"saves"`
}

func (l SaveList) String() string {
	if len(l.Saves) == 0 {
		return "No saves."
	}
	var b strings.Builder
	for i, s := range l.Saves {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%-12s day %-2d  session=%s  saved=%s",
			s.Slot, s.Day, s.SessionID, s.SavedAt.Format("2006-01-02 15:04:05"))
	}
	return b.String()
}

// NewSavesCommand creates the saves command.
func NewSavesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SavesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "saves",
		Short: "List or delete save slots",
		Long: `List the save slots in a database, or delete one with --delete.

Examples:
  sprintchef saves --db ./sprintchef.db
  sprintchef saves --db ./sprintchef.db --delete autosave`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSaves(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Delete, "delete", "", "delete this save slot")

	return cmd
}

func runSaves(ctx context.Context, opts *SavesOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	st, err := openExistingStore(opts.Database)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeStoreFailed, "failed to open database", err)
	}
	defer st.Close()

	if opts.Delete != "" {
		deleted, err := st.DeleteSave(ctx, opts.Delete)
		if err != nil {
			return formatter.fail(ExitCommandError, ErrCodeStoreFailed, "failed to delete save", err)
		}
		if !deleted {
			return formatter.fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("save slot %q not found", opts.Delete), nil)
		}
		formatter.VerboseLog("Deleted %s", opts.Delete)
	}

	saves, err := st.ListSaves(ctx)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeStoreFailed, "failed to list saves", err)
	}
	return formatter.Success(SaveList{Saves: saves})
}

// openExistingStore opens a database that must already exist. Read-only
// commands never create an empty database as a side effect.
func openExistingStore(path string) (*store.Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	return store.Open(path)
}
