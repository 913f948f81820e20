// Package prune retires aged messages from an IMAP account in bounded
// batches, either by deleting them in place or by relocating them to the
// trash and purging them from there.
package prune

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/msgvault/mailprune/internal/mailboxes"
	"github.com/msgvault/mailprune/pkg/base"
	"github.com/pkg/errors"
)

// DefaultTrashMailbox is the literal name used when no listed mailbox
// carries the \Trash attribute.
const DefaultTrashMailbox = "[Gmail]/Trash"

// Policy selects the retirement variant.
type Policy int

const (
	// TrashThenPurge relabels aged messages into the trash, then permanently
	// deletes aged messages from the trash mailbox.
	TrashThenPurge Policy = iota
	// DirectDelete permanently deletes aged messages from the source mailbox.
	DirectDelete
)

func (p Policy) String() string {
	switch p {
	case TrashThenPurge:
		return "trash-then-purge"
	case DirectDelete:
		return "direct-delete"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// ParsePolicy parses the CLI spelling of a policy.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "trash-then-purge":
		return TrashThenPurge, nil
	case "direct-delete":
		return DirectDelete, nil
	default:
		return TrashThenPurge, errors.Errorf("unknown policy %q (want trash-then-purge or direct-delete)", s)
	}
}

// Request describes one prune run. Cutoff is a fixed calendar date computed
// at process start so every search in the run is consistent.
type Request struct {
	Email     string
	Password  string
	Mailbox   string
	Cutoff    time.Time
	BatchSize int
	DryRun    bool
	Policy    Policy
}

// Stats reports what a run matched and transitioned. On failure the counts
// cover the batches completed before the failing one; re-running the tool is
// the recovery path, since already-transitioned messages no longer match.
type Stats struct {
	Matched      int
	Moved        int
	TrashMatched int
	Purged       int
}

// Runner sequences the end-to-end retirement policy and owns the session
// lifecycle: login once, logout always, even on failure.
type Runner struct {
	session  base.Session
	resolver *mailboxes.Resolver
	operator *Operator
	logger   *slog.Logger
	out      io.Writer
}

type RunnerOption func(*Runner) error

func NewRunner(opts ...RunnerOption) (*Runner, error) {
	var r Runner
	for _, opt := range opts {
		if err := opt(&r); err != nil {
			return nil, err
		}
	}

	if r.session == nil {
		return nil, errors.New("requires session")
	}
	if r.logger == nil {
		return nil, errors.New("requires logger")
	}
	if r.out == nil {
		return nil, errors.New("requires progress writer")
	}

	r.resolver = mailboxes.NewResolver(r.session, r.logger)
	r.operator = NewOperator(r.session, r.logger)
	return &r, nil
}

func WithSession(session base.Session) RunnerOption {
	return func(r *Runner) error {
		r.session = session
		return nil
	}
}

func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) error {
		r.logger = logger
		return nil
	}
}

func WithOut(out io.Writer) RunnerOption {
	return func(r *Runner) error {
		r.out = out
		return nil
	}
}

// Run executes the prune state machine: login, select source, search,
// transition in batches, and for TrashThenPurge select the trash and repeat
// with a fresh search there. Any selection, search, or transition failure
// aborts the remaining steps. Logout is attempted on every exit path and its
// own failure is never allowed to mask the real outcome.
func (r *Runner) Run(req Request) (Stats, error) {
	var stats Stats

	defer func() {
		if err := r.session.Logout(); err != nil {
			r.logger.Warn("logout failed", "error", err)
		}
	}()

	if err := r.session.Login(req.Email, req.Password); err != nil {
		return stats, errors.Wrap(err, "login failed")
	}

	source := r.resolver.Resolve(req.Mailbox)
	if err := r.session.Select(source); err != nil {
		return stats, errors.Wrapf(err, "selecting mailbox %q", source)
	}

	found, err := r.operator.FindOlderThan(req.Cutoff)
	if err != nil {
		return stats, err
	}
	stats.Matched = len(found.UIDs)
	fmt.Fprintf(r.out, "Matched UIDs: %d\n", stats.Matched)

	if req.DryRun || stats.Matched == 0 {
		return stats, nil
	}

	if req.Policy == DirectDelete {
		stats.Purged, err = r.operator.Transition(found, MarkDeleted, req.BatchSize, r.progress("Deleted"))
		return stats, err
	}

	stats.Moved, err = r.operator.Transition(found, RelabelTrash, req.BatchSize, r.progress("MovedToTrash"))
	if err != nil {
		return stats, err
	}

	trash := r.resolver.ResolveByAttribute(mailboxes.AttrTrash, DefaultTrashMailbox)
	if err := r.session.Select(trash); err != nil {
		return stats, errors.Wrapf(err, "selecting trash mailbox %q", trash)
	}

	// UIDs are scoped to the mailbox they were fetched from; search again.
	inTrash, err := r.operator.FindOlderThan(req.Cutoff)
	if err != nil {
		return stats, err
	}
	stats.TrashMatched = len(inTrash.UIDs)
	fmt.Fprintf(r.out, "TrashPurgeCandidates: %d\n", stats.TrashMatched)

	stats.Purged, err = r.operator.Transition(inTrash, MarkDeleted, req.BatchSize, r.progress("PurgedFromTrash"))
	return stats, err
}

func (r *Runner) progress(stage string) ProgressFunc {
	return func(done, total int) {
		fmt.Fprintf(r.out, "%s %d/%d\n", stage, done, total)
	}
}
