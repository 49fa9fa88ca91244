package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/sprintchef/internal/ceremony"
	"github.com/roach88/sprintchef/internal/config"
	"github.com/roach88/sprintchef/internal/engine"
	"github.com/roach88/sprintchef/internal/eventbus"
	"github.com/roach88/sprintchef/internal/rng"
	"github.com/roach88/sprintchef/internal/state"
	"github.com/roach88/sprintchef/internal/store"
)

// PlayOptions holds flags for the play command.
type PlayOptions struct {
	*RootOptions
	Database string
	Seed     int64
	Slot     string
	Resume   bool

	// Clock and Sleep drive the presentation delay. Tests replace both
	// with a fake clock; nil uses the wall clock and time.Sleep.
	Clock ceremony.Clock
	Sleep func(time.Duration)

	// IDs overrides session id generation (for testing).
	IDs store.IDGenerator
}

// PlaySummary is printed when a play session ends.
type PlaySummary struct {
	SessionID string               `json:"session_id,omitempty"`
	Seed      int64                `json:"seed"`
	Outcome   string               `json:"outcome"`
	Reason    state.GameOverReason `json:"reason,omitempty"`
	Events    int                  `json:"events_recorded,omitempty"`
	State     state.Snapshot       `json:"state"`
}

func (s PlaySummary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n%s after %d day(s): dish %d%%, debt %d, mood %d, stamina %d",
		s.Outcome, s.State.Day, s.State.DishProgress, s.State.TechnicalDebt, s.State.Mood, s.State.Stamina)
	if s.Reason != state.GameOverNone {
		fmt.Fprintf(&b, " (%s)", s.Reason)
	}
	if s.SessionID != "" {
		fmt.Fprintf(&b, "\nsession %s, %d event(s) journaled", s.SessionID, s.Events)
	}
	return b.String()
}

// NewPlayCommand creates the play command.
func NewPlayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play an interactive run",
		Long: `Play a run from the terminal.

Each morning pick a focus, then spend the day's actions. Night begins
once the day's actions are spent; after the night action type "next" to
sleep and start the following day. Type "help" for every command.

With --db every event is journaled and "next" autosaves to --slot;
--resume continues from that slot.

Exit codes:
  0 - Victory, or the player quit
  1 - Game over
  2 - Command error (bad config, database error, etc.)

Examples:
  sprintchef play
  sprintchef play --seed 42 --preset hard
  sprintchef play --db ./sprintchef.db --slot evening --resume`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database for journal and saves")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "random seed (0 picks one)")
	cmd.Flags().StringVar(&opts.Slot, "slot", "autosave", "save slot")
	cmd.Flags().BoolVar(&opts.Resume, "resume", false, "resume from the save slot (requires --db)")

	return cmd
}

// game is one wired play session.
type game struct {
	ctx     context.Context
	opts    *PlayOptions
	out     io.Writer
	logger  *slog.Logger
	clock   ceremony.Clock
	sleep   func(time.Duration)
	bus     *eventbus.Bus
	state   *state.GameState
	engine  *engine.Engine
	mgr     *ceremony.Manager
	st      *store.Store
	journal *store.Journal
	session store.Session
}

type wallClock struct{}

func (wallClock) Now() time.Time { return time.Now() }

func runPlay(ctx context.Context, opts *PlayOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	if opts.Resume && opts.Database == "" {
		return formatter.fail(ExitCommandError, ErrCodeGeneric, "--resume requires --db", nil)
	}

	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeLoadFailed, "failed to load configuration", err)
	}

	g := &game{
		ctx:    ctx,
		opts:   opts,
		out:    cmd.OutOrStdout(),
		logger: logger,
		clock:  opts.Clock,
		sleep:  opts.Sleep,
	}
	if g.clock == nil {
		g.clock = wallClock{}
	}
	if g.sleep == nil {
		g.sleep = time.Sleep
	}

	var (
		seed    = opts.Seed
		seq     int64
		resumed *store.Save
	)
	if opts.Database != "" {
		var storeOpts []store.Option
		if opts.IDs != nil {
			storeOpts = append(storeOpts, store.WithIDGenerator(opts.IDs))
		}
		g.st, err = store.Open(opts.Database, storeOpts...)
		if err != nil {
			return formatter.fail(ExitCommandError, ErrCodeStoreFailed, "failed to open database", err)
		}
		defer g.st.Close()
	}

	if opts.Resume {
		save, err := g.st.LoadSnapshot(ctx, opts.Slot)
		if errors.Is(err, store.ErrNotFound) {
			return formatter.fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("save slot %q not found", opts.Slot), nil)
		}
		if err != nil {
			return formatter.fail(ExitCommandError, ErrCodeStoreFailed, "failed to load save", err)
		}
		g.session, err = g.st.GetSession(ctx, save.SessionID)
		if err != nil {
			return formatter.fail(ExitCommandError, ErrCodeStoreFailed, "failed to load session", err)
		}
		cfg = g.session.Config
		// Offset by the saved seq so resuming the same slot twice
		// replays the same draws.
		seed = g.session.Seed + save.Seq
		seq, err = g.st.LastSeq(ctx, g.session.ID)
		if err != nil {
			return formatter.fail(ExitCommandError, ErrCodeStoreFailed, "failed to read journal", err)
		}
		resumed = &save
		logger.Info("resuming", "slot", save.Slot, "session", save.SessionID, "day", save.Day)
	}

	if errs := config.Validate(cfg); len(errs) > 0 {
		_ = formatter.Error(errs[0].Code, "invalid configuration", configErrors(errs))
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid configuration: %s", errs[0].Error()))
	}

	if seed == 0 {
		if seed, err = rng.NewSeed(); err != nil {
			return formatter.fail(ExitCommandError, ErrCodeGeneric, "failed to seed", err)
		}
	}

	if g.st != nil && resumed == nil {
		g.session, err = g.st.CreateSession(ctx, seed, cfg)
		if err != nil {
			return formatter.fail(ExitCommandError, ErrCodeStoreFailed, "failed to create session", err)
		}
	}

	if err := g.wire(cfg, seed, seq, resumed); err != nil {
		return formatter.fail(ExitCommandError, ErrCodeGeneric, "failed to start", err)
	}
	defer g.close()

	logger.Info("run started", "seed", seed, "session", g.session.ID)
	if err := g.begin(resumed); err != nil {
		return formatter.fail(ExitCommandError, ErrCodeGeneric, "failed to start day", err)
	}
	if err := g.loop(cmd.InOrStdin()); err != nil {
		return formatter.fail(ExitCommandError, ErrCodeGeneric, "play failed", err)
	}

	summary := g.summary(seed)
	if err := formatter.Success(summary); err != nil {
		return err
	}
	if summary.Outcome == "game over" {
		return NewExitError(ExitFailure, fmt.Sprintf("game over: %s", summary.Reason))
	}
	return nil
}

// wire builds the bus and every component. The narrator subscribes first
// so it prints nested emissions in the order they happen.
func (g *game) wire(cfg config.Config, seed, seq int64, resumed *store.Save) error {
	g.bus = eventbus.New(eventbus.WithLogger(g.logger), eventbus.WithClock(eventbus.NewClockAt(seq)))
	attachNarrator(g.bus, g.out, g.opts.Format == "json")

	src := rng.NewSeeded(seed)
	g.state = state.New(cfg, g.bus, src, state.WithLogger(g.logger))
	if resumed != nil {
		if _, err := g.state.Restore(resumed.Snapshot); err != nil {
			return fmt.Errorf("restore %s: %w", resumed.Slot, err)
		}
	}
	if g.st != nil {
		g.journal = g.st.AttachJournal(g.ctx, g.bus, g.session.ID, g.state, store.WithJournalLogger(g.logger))
	}

	var err error
	g.engine, err = engine.New(g.state, src, engine.WithLogger(g.logger))
	if err != nil {
		return err
	}
	g.mgr = ceremony.New(g.state, src, ceremony.WithClock(g.clock), ceremony.WithLogger(g.logger))
	return nil
}

func (g *game) close() {
	g.mgr.Close()
	if g.journal != nil {
		g.journal.Detach()
		if err := g.journal.Err(); err != nil {
			g.logger.Error("journal incomplete", "error", err)
		}
	}
}

// begin starts the first morning. A resumed save holds a finished night,
// so the day is advanced before the morning starts.
func (g *game) begin(resumed *store.Save) error {
	if resumed != nil {
		snap := g.state.Snapshot()
		if snap.Phase == state.PhaseNight && snap.Remaining() == 0 {
			g.state.AdvanceDay()
		}
	}
	opts, err := g.mgr.StartNewDay()
	if err != nil {
		return err
	}
	g.showFocus(opts)
	return nil
}

func (g *game) loop(in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for {
		if ended, _, _ := g.mgr.Outcome(); ended {
			return nil
		}
		g.prompt()
		if !scanner.Scan() {
			return scanner.Err()
		}
		quit, err := g.dispatch(strings.Fields(scanner.Text()))
		if err != nil {
			return err
		}
		if quit {
			return nil
		}
		g.drain()
	}
}

// drain waits out the presentation delay and runs whatever the ceremony
// deferred, such as the move to night.
func (g *game) drain() {
	for {
		due, ok := g.mgr.NextDue()
		if !ok {
			return
		}
		if d := due.Sub(g.clock.Now()); d > 0 {
			g.sleep(d)
		}
		if g.mgr.RunPending() == 0 {
			return
		}
	}
}

func (g *game) prompt() {
	if g.opts.Format == "json" {
		return
	}
	snap := g.state.Snapshot()
	fmt.Fprintf(g.out, "[day %d %s | %d left | stamina %d mood %d debt %d dish %d%%] > ",
		snap.Day, g.mgr.Stage(), snap.Remaining(), snap.Stamina, snap.Mood, snap.TechnicalDebt, snap.DishProgress)
}

func (g *game) say(format string, args ...any) {
	if g.opts.Format == "json" {
		return
	}
	fmt.Fprintf(g.out, format+"\n", args...)
}

// dispatch runs one player command. Ceremony errors are reported to the
// player and never end the session.
func (g *game) dispatch(fields []string) (quit bool, err error) {
	if len(fields) == 0 {
		return false, nil
	}
	cmd, arg := strings.ToLower(fields[0]), ""
	if len(fields) > 1 {
		arg = strings.Join(fields[1:], " ")
	}

	switch cmd {
	case "quit", "exit", "q":
		return true, nil
	case "help", "?":
		g.help()
	case "status":
		g.status()
	case "actions", "ls":
		g.showActions()
	case "focus":
		p := state.Policy(strings.ToLower(arg))
		if p == "none" {
			p = state.PolicyNone
		}
		g.report(g.mgr.SelectDailyFocus(p))
	case "do":
		g.act(arg)
	case "night":
		g.report(g.mgr.EnterNight())
	case "accept":
		g.report(g.mgr.AcceptPivot())
	case "decline":
		g.report(g.mgr.DeclinePivot())
	case "pivot":
		switch strings.ToLower(arg) {
		case "accept", "yes", "y":
			g.report(g.mgr.AcceptPivot())
		default:
			g.report(g.mgr.DeclinePivot())
		}
	case "save":
		if err := g.save(); err != nil {
			return false, err
		}
	case "next":
		return false, g.next()
	default:
		// A bare action name or index.
		g.act(strings.Join(fields, " "))
	}
	return false, nil
}

func (g *game) act(ref string) {
	if ref == "" {
		g.say("do what? (type \"actions\")")
		return
	}
	// Rejections are not published, so the narrator never sees them.
	res := g.engine.ExecuteAction(ref)
	switch {
	case res.Reason == engine.ReasonUnknownAction:
		g.say("  unknown action %q (type \"actions\")", ref)
	case res.Rejected():
		g.say("  %s", res.Message)
	}
}

func (g *game) next() error {
	snap := g.state.Snapshot()
	if g.mgr.Stage() == ceremony.StageNight && snap.Remaining() == 0 && g.st != nil {
		if err := g.save(); err != nil {
			return err
		}
	}
	opts, err := g.mgr.ProceedToNextDay()
	if err != nil {
		g.report(err)
		return nil
	}
	g.showFocus(opts)
	return nil
}

func (g *game) save() error {
	if g.st == nil {
		g.say("saving needs --db")
		return nil
	}
	seq := g.bus.Clock().Current()
	if err := g.st.SaveSnapshot(g.ctx, g.opts.Slot, g.session.ID, seq, g.state.Snapshot()); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	g.say("saved to %s", g.opts.Slot)
	return nil
}

func (g *game) report(err error) {
	if err == nil {
		return
	}
	var ce *ceremony.Error
	if errors.As(err, &ce) {
		g.say("  %s", ce.Message)
		return
	}
	g.say("  %v", err)
}

func (g *game) showFocus(opts []ceremony.FocusOption) {
	if len(opts) == 0 {
		return
	}
	g.say("Choose today's focus (focus <name>), or act right away:")
	for _, o := range opts {
		g.say("  %-10s %-14s exp x%.2f, success %+.0f%%, stamina x%.2f",
			o.Policy, o.Label, o.ExpMultiplier, o.SuccessRate*100, o.StaminaCostMultiplier)
	}
}

func (g *game) showActions() {
	for _, c := range g.engine.Available() {
		mark := " "
		if !c.Affordable {
			mark = "x"
		}
		g.say("%s %d. %-8s %-18s stamina %-3d success %3.0f%%", mark, c.Index, c.Name, c.Label, c.StaminaCost, c.SuccessRate*100)
	}
}

func (g *game) status() {
	snap := g.state.Snapshot()
	g.say("Day %d, %s (%s), %d action(s) left", snap.Day, snap.Phase, g.mgr.Stage(), snap.Remaining())
	g.say("Condition %s, focus %s", snap.Condition, policyName(snap.Policy))
	for _, id := range g.state.Config().Skills.IDs {
		g.say("  %-8s level %-2d exp %d", id, snap.Skills[id], snap.Experience[id])
	}
}

func (g *game) help() {
	g.say(`Commands:
  focus <quality|speed|challenge|none>   choose the morning focus
  do <action|number>, or just the name   take an action
  actions                                list actions of the current phase
  night                                  end the day once its actions are spent
  accept | decline                       answer a pivot offer
  next                                   sleep and start the next day
  status                                 show skills and condition
  save                                   save to the current slot (needs --db)
  quit                                   leave the game`)
}

func (g *game) summary(seed int64) PlaySummary {
	ended, victory, reason := g.mgr.Outcome()
	s := PlaySummary{
		SessionID: g.session.ID,
		Seed:      seed,
		Outcome:   "quit",
		Reason:    reason,
		State:     g.state.Snapshot(),
	}
	switch {
	case victory:
		s.Outcome = "victory"
	case ended:
		s.Outcome = "game over"
	}
	if g.journal != nil {
		s.Events = g.journal.Written()
	}
	return s
}

func policyName(p state.Policy) string {
	if p == state.PolicyNone {
		return "none"
	}
	return string(p)
}
