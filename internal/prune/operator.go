package prune

import (
	"strings"
	"time"

	"log/slog"

	"github.com/msgvault/mailprune/pkg/base"
	"github.com/pkg/errors"
)

// Action is the bulk state-transition applied to a batch of messages.
type Action int

const (
	// MarkDeleted flags messages as deleted and commits each batch with an
	// expunge.
	MarkDeleted Action = iota
	// RelabelTrash relabels messages into the trash. Relabeling takes effect
	// without a commit, so no expunge is issued.
	RelabelTrash
)

const (
	storeFlagsItem  = "+FLAGS.SILENT"
	storeLabelsItem = "+X-GM-LABELS.SILENT"
	flagDeleted     = `\Deleted`
	labelTrash      = `\Trash`
)

// Result is a search snapshot: the UIDs matched, tagged with the mailbox
// they were fetched from. UIDs are not portable across mailbox selections.
type Result struct {
	Mailbox string
	UIDs    []string
}

// ProgressFunc receives a monotonically increasing (done, total) pair after
// each transitioned batch.
type ProgressFunc func(done, total int)

// Operator finds aged messages in the selected mailbox and transitions them
// in bounded batches.
type Operator struct {
	session base.Session
	logger  *slog.Logger
}

func NewOperator(session base.Session, logger *slog.Logger) *Operator {
	return &Operator{session: session, logger: logger}
}

// FindOlderThan returns the UIDs of messages dated before the cutoff in the
// currently selected mailbox, in server order.
func (o *Operator) FindOlderThan(cutoff time.Time) (Result, error) {
	mailbox := o.session.Mailbox()
	if mailbox == "" {
		return Result{}, errors.New("no mailbox selected")
	}

	uids, err := o.session.SearchBefore(cutoff.Format(base.SearchDateFormat))
	if err != nil {
		return Result{}, errors.Wrapf(err, "searching %q for aged messages", mailbox)
	}
	return Result{Mailbox: mailbox, UIDs: uids}, nil
}

// Transition applies the action to the result's UIDs in contiguous batches
// of at most batchSize, strictly in order, and reports cumulative progress
// after each batch. On the first batch whose mutating call fails it stops
// immediately and returns the count transitioned so far; it never skips a
// failed batch and continues. MarkDeleted commits per batch so a mid-run
// failure leaves at most one batch in a marked-but-uncommitted state.
func (o *Operator) Transition(result Result, action Action, batchSize int, progress ProgressFunc) (int, error) {
	if batchSize < 1 {
		return 0, errors.Errorf("batch size must be >= 1, got %d", batchSize)
	}
	if selected := o.session.Mailbox(); selected != result.Mailbox {
		return 0, errors.Errorf("uids were fetched from %q but %q is selected", result.Mailbox, selected)
	}

	total := len(result.UIDs)
	done := 0
	for start := 0; start < total; start += batchSize {
		end := start + batchSize
		if end > total {
			end = total
		}
		batch := result.UIDs[start:end]
		uidSet := strings.Join(batch, ",")

		var err error
		switch action {
		case MarkDeleted:
			err = o.session.Store(uidSet, storeFlagsItem, flagDeleted)
		case RelabelTrash:
			err = o.session.Store(uidSet, storeLabelsItem, labelTrash)
		default:
			return done, errors.Errorf("unknown action %d", action)
		}
		if err != nil {
			return done, errors.Wrapf(err, "storing batch starting at index %d", start)
		}

		if action == MarkDeleted {
			if err := o.session.Expunge(); err != nil {
				return done, errors.Wrapf(err, "expunging batch starting at index %d", start)
			}
		}

		done += len(batch)
		if progress != nil {
			progress(done, total)
		}
	}

	return done, nil
}
