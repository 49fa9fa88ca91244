package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/sprintchef/internal/eventbus"
	"github.com/roach88/sprintchef/internal/store"
)

// JournalOptions holds flags for the journal command.
type JournalOptions struct {
	*RootOptions
	Database string
	Session  string
	Topics   []string
	Day      int
	After    int64
	Limit    int
}

// JournalResult is the journal of one session.
type JournalResult struct {
	Session store.Session        `json:"session"`
	Entries []store.JournalEntry `json:"entries"`
}

func (r JournalResult) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session %s (seed %d, started %s)\n",
		r.Session.ID, r.Session.Seed, r.Session.CreatedAt.Format("2006-01-02 15:04:05"))
	if len(r.Entries) == 0 {
		b.WriteString("  (no events)")
		return b.String()
	}
	for i, e := range r.Entries {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "  %6d  day %-2d  %-18s %s", e.Seq, e.Day, e.Topic, e.Payload)
	}
	return b.String()
}

// SessionList is the output of journal without --session.
type SessionList struct {
	Sessions []store.Session `json:"sessions"`
}

func (l SessionList) String() string {
	if len(l.Sessions) == 0 {
		return "No sessions recorded."
	}
	var b strings.Builder
	for i, s := range l.Sessions {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s  seed=%d  started=%s", s.ID, s.Seed, s.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return b.String()
}

// NewJournalCommand creates the journal command.
func NewJournalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &JournalOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Show the recorded events of a session",
		Long: `Show the event journal that play records for every session.

Without --session the recorded sessions are listed instead.

Examples:
  sprintchef journal --db ./sprintchef.db
  sprintchef journal --db ./sprintchef.db --session <id> --topic retrospective
  sprintchef journal --db ./sprintchef.db --session <id> --day 3 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJournal(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Session, "session", "", "session id")
	cmd.Flags().StringSliceVar(&opts.Topics, "topic", nil, "only these topics (repeatable)")
	cmd.Flags().IntVar(&opts.Day, "day", 0, "only events of this day")
	cmd.Flags().Int64Var(&opts.After, "after", 0, "only events after this sequence number")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum number of events")

	return cmd
}

func runJournal(ctx context.Context, opts *JournalOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	st, err := openExistingStore(opts.Database)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeStoreFailed, "failed to open database", err)
	}
	defer st.Close()

	if opts.Session == "" {
		sessions, err := st.ListSessions(ctx)
		if err != nil {
			return formatter.fail(ExitCommandError, ErrCodeStoreFailed, "failed to list sessions", err)
		}
		return formatter.Success(SessionList{Sessions: sessions})
	}

	sess, err := st.GetSession(ctx, opts.Session)
	if errors.Is(err, store.ErrNotFound) {
		return formatter.fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("session %q not found", opts.Session), nil)
	}
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeStoreFailed, "failed to read session", err)
	}

	filter := store.JournalFilter{Day: opts.Day, AfterSeq: opts.After, Limit: opts.Limit}
	for _, t := range opts.Topics {
		filter.Topics = append(filter.Topics, eventbus.Topic(t))
	}
	formatter.VerboseLog("Reading journal of %s", sess.ID)

	entries, err := st.ReadJournal(ctx, sess.ID, filter)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeStoreFailed, "failed to read journal", err)
	}
	return formatter.Success(JournalResult{Session: sess, Entries: entries})
}
