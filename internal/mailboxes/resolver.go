// Package mailboxes resolves logical mailbox requests to the names the
// server actually reports.
package mailboxes

import (
	"log/slog"
	"strings"

	"github.com/msgvault/mailprune/pkg/base"
)

// Resolver maps requested mailbox names and special-use attributes to
// server-reported names by inspecting the mailbox listing. Display names are
// deployment- and locale-dependent; special-use attributes are the only
// dependable identifier, but name matches are tried first as the cheap
// common case.
type Resolver struct {
	session base.Session
	logger  *slog.Logger
}

func NewResolver(session base.Session, logger *slog.Logger) *Resolver {
	return &Resolver{session: session, logger: logger}
}

// Resolve returns the server-reported name for the requested mailbox. Match
// order: exact name, case-insensitive name, then the \All special-use
// attribute. When the listing is empty, unusable, or has no match, the
// requested name is returned unchanged and the caller's subsequent select
// surfaces any error.
func (r *Resolver) Resolve(requested string) string {
	parsed := r.listing()
	if len(parsed) == 0 {
		return requested
	}

	for _, d := range parsed {
		if d.Name == requested {
			return d.Name
		}
	}

	for _, d := range parsed {
		if strings.EqualFold(d.Name, requested) {
			return d.Name
		}
	}

	for _, d := range parsed {
		if d.HasAttribute(AttrAll) {
			return d.Name
		}
	}

	return requested
}

// ResolveByAttribute returns the name of the first listed mailbox carrying
// the given special-use attribute, or the fallback when none does.
func (r *Resolver) ResolveByAttribute(attr, fallback string) string {
	for _, d := range r.listing() {
		if d.HasAttribute(attr) {
			return d.Name
		}
	}
	return fallback
}

// listing fetches and decodes the mailbox listing, skipping unusable lines.
// A listing failure resolves to no entries: absence of metadata must not
// block the run.
func (r *Resolver) listing() []Descriptor {
	lines, err := r.session.List()
	if err != nil {
		r.logger.Warn("mailbox listing failed, falling back to requested names", "error", err)
		return nil
	}

	parsed := make([]Descriptor, 0, len(lines))
	for _, line := range lines {
		if d, ok := ParseListLine(line); ok {
			parsed = append(parsed, d)
		}
	}
	return parsed
}
