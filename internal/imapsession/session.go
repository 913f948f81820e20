// Package imapsession implements the prune session over a go-imap client.
package imapsession

import (
	"strconv"
	"time"

	"github.com/emersion/go-imap"
	imapclient "github.com/emersion/go-imap/client"
	"github.com/msgvault/mailprune/internal/mailboxes"
	"github.com/msgvault/mailprune/pkg/base"
	"github.com/pkg/errors"
)

// Session adapts a go-imap client to the base.Session contract. It keeps the
// selected-mailbox cursor so callers can assert that a UID set is applied
// against the mailbox it was fetched from.
type Session struct {
	client   base.IMAPClient
	selected string
}

type Option func(*Session)

func WithClient(c base.IMAPClient) Option {
	return func(s *Session) {
		s.client = c
	}
}

func New(opts ...Option) (*Session, error) {
	var s Session
	for _, opt := range opts {
		opt(&s)
	}

	if s.client == nil {
		return nil, errors.New("requires client")
	}
	return &s, nil
}

// Dial connects to the IMAP server over TLS. The timeout bounds each
// round trip, not the whole run.
func Dial(addr string, timeout time.Duration) (*Session, error) {
	c, err := imapclient.DialTLS(addr, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "dialing %s", addr)
	}
	c.Timeout = timeout
	return &Session{client: c}, nil
}

func (s *Session) Login(username, password string) error {
	return s.client.Login(username, password)
}

// List returns the mailbox listing normalized to one canonical line per
// mailbox, the textual form the resolver decodes.
func (s *Session) List() ([]string, error) {
	infos := make(chan *imap.MailboxInfo, 16)
	done := make(chan error, 1)
	go func() {
		done <- s.client.List("", "*", infos)
	}()

	var lines []string
	for info := range infos {
		lines = append(lines, mailboxes.FormatListLine(mailboxes.Descriptor{
			Attributes: info.Attributes,
			Name:       info.Name,
		}, info.Delimiter))
	}

	if err := <-done; err != nil {
		return nil, err
	}
	return lines, nil
}

func (s *Session) Select(name string) error {
	if _, err := s.client.Select(name, false); err != nil {
		return err
	}
	s.selected = name
	return nil
}

func (s *Session) Mailbox() string {
	return s.selected
}

func (s *Session) SearchBefore(date string) ([]string, error) {
	cutoff, err := time.Parse(base.SearchDateFormat, date)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid search date %q", date)
	}

	criteria := imap.NewSearchCriteria()
	criteria.Before = cutoff

	uids, err := s.client.UidSearch(criteria)
	if err != nil {
		return nil, err
	}

	tokens := make([]string, 0, len(uids))
	for _, uid := range uids {
		tokens = append(tokens, strconv.FormatUint(uint64(uid), 10))
	}
	return tokens, nil
}

func (s *Session) Store(uidSet, item, value string) error {
	set, err := imap.ParseSeqSet(uidSet)
	if err != nil {
		return errors.Wrapf(err, "invalid uid set %q", uidSet)
	}
	return s.client.UidStore(set, imap.StoreItem(item), []interface{}{imap.RawString(value)}, nil)
}

func (s *Session) Expunge() error {
	return s.client.Expunge(nil)
}

// Logout is a no-op when the connection already reached the logout state,
// so the deferred logout after a server-side disconnect stays quiet.
func (s *Session) Logout() error {
	if s.client.State() == imap.LogoutState {
		return nil
	}
	return s.client.Logout()
}
