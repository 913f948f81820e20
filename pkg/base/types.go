// Package base holds the interfaces shared between the prune driver and the
// IMAP transport behind it.
package base

import (
	"github.com/emersion/go-imap"
)

//go:generate mockgen -source=types.go -destination=../mock/session.go -package=mock

// SearchDateFormat is the fixed-width day-month-year token a date-range
// search expects on the wire, e.g. "05-Jan-2024".
const SearchDateFormat = "02-Jan-2006"

// Session is the stateful mail-access session the prune driver operates
// against. Exactly one mailbox is selected at any time; UIDs returned by
// SearchBefore are only valid operands while the mailbox they were fetched
// from stays selected. The session owns wire-level quoting of mailbox names.
type Session interface {
	Login(username string, password string) error
	// List returns the mailbox listing, one canonical line per mailbox in
	// the form `(attributes) "delimiter" name`.
	List() ([]string, error)
	Select(name string) error
	// Mailbox reports the currently selected mailbox, or "" before the
	// first successful Select.
	Mailbox() string
	// SearchBefore returns the UIDs of messages dated before the given
	// wire-form date, as opaque tokens in server order.
	SearchBefore(date string) ([]string, error)
	// Store applies a flag or label operation to a comma-separated UID set
	// in the selected mailbox.
	Store(uidSet string, item string, value string) error
	Expunge() error
	Logout() error
}

// IMAPClient is an interface to abstract the go-imap client.Client methods
// used by the production session.
type IMAPClient interface {
	Login(username string, password string) error
	List(ref, name string, ch chan *imap.MailboxInfo) error
	Select(name string, readOnly bool) (*imap.MailboxStatus, error)
	UidSearch(criteria *imap.SearchCriteria) (seqNums []uint32, err error)
	UidStore(seqset *imap.SeqSet, item imap.StoreItem, value interface{}, ch chan *imap.Message) error
	Expunge(ch chan uint32) error
	Logout() error
	State() imap.ConnState
}
