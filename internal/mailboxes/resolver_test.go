package mailboxes_test

import (
	"testing"

	"github.com/msgvault/mailprune/internal/mailboxes"
	"github.com/msgvault/mailprune/pkg/mock"
	"github.com/msgvault/mailprune/pkg/testutil"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func TestResolve(t *testing.T) {
	gmailListing := []string{
		`(\HasNoChildren) "/" INBOX`,
		`(\All \HasNoChildren) "/" "[Gmail]/All Mail"`,
		`(\HasNoChildren \Trash) "/" "[Gmail]/Trash"`,
	}

	tests := []struct {
		name      string
		listing   []string
		listErr   error
		requested string
		expected  string
	}{
		{
			name:      "exact match wins",
			listing:   gmailListing,
			requested: "[Gmail]/All Mail",
			expected:  "[Gmail]/All Mail",
		},
		{
			name:      "case-insensitive match",
			listing:   gmailListing,
			requested: "inbox",
			expected:  "INBOX",
		},
		{
			name:      "falls back to the all-mail attribute",
			listing:   gmailListing,
			requested: "All Mail",
			expected:  "[Gmail]/All Mail",
		},
		{
			name: "no match and no all-mail attribute",
			listing: []string{
				`(\HasNoChildren) "/" INBOX`,
			},
			requested: "Archive",
			expected:  "Archive",
		},
		{
			name:      "empty listing",
			listing:   nil,
			requested: "[Gmail]/All Mail",
			expected:  "[Gmail]/All Mail",
		},
		{
			name: "unusable lines are skipped",
			listing: []string{
				"* garbage",
				`(\All) "/" Everything`,
			},
			requested: "missing",
			expected:  "Everything",
		},
		{
			name:      "listing failure resolves to the requested name",
			listErr:   errors.New("connection reset"),
			requested: "[Gmail]/All Mail",
			expected:  "[Gmail]/All Mail",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := &testutil.FakeSession{
				ListFunc: func() ([]string, error) {
					return tt.listing, tt.listErr
				},
			}
			resolver := mailboxes.NewResolver(session, mock.SetupLogger(t))

			assert.Equal(t, tt.expected, resolver.Resolve(tt.requested))
		})
	}
}

func TestResolveFetchesAFreshListingPerCall(t *testing.T) {
	ctrl := gomock.NewController(t)
	session := mock.NewMockSession(ctrl)
	session.EXPECT().
		List().
		Return([]string{`(\All) "/" "[Gmail]/All Mail"`}, nil).
		Times(2)

	resolver := mailboxes.NewResolver(session, mock.SetupLogger(t))

	assert.Equal(t, "[Gmail]/All Mail", resolver.Resolve("anything"))
	assert.Equal(t, "[Gmail]/All Mail", resolver.ResolveByAttribute(mailboxes.AttrAll, "fallback"))
}

func TestResolveByAttribute(t *testing.T) {
	tests := []struct {
		name     string
		listing  []string
		listErr  error
		attr     string
		fallback string
		expected string
	}{
		{
			name: "localized trash found by attribute",
			listing: []string{
				`(\HasNoChildren) "/" INBOX`,
				`(\Trash) "/" "Papierkorb"`,
			},
			attr:     mailboxes.AttrTrash,
			fallback: "[Gmail]/Trash",
			expected: "Papierkorb",
		},
		{
			name: "no carrier falls back",
			listing: []string{
				`(\HasNoChildren) "/" INBOX`,
			},
			attr:     mailboxes.AttrTrash,
			fallback: "[Gmail]/Trash",
			expected: "[Gmail]/Trash",
		},
		{
			name:     "listing failure falls back",
			listErr:  errors.New("connection reset"),
			attr:     mailboxes.AttrTrash,
			fallback: "[Gmail]/Trash",
			expected: "[Gmail]/Trash",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := &testutil.FakeSession{
				ListFunc: func() ([]string, error) {
					return tt.listing, tt.listErr
				},
			}
			resolver := mailboxes.NewResolver(session, mock.SetupLogger(t))

			assert.Equal(t, tt.expected, resolver.ResolveByAttribute(tt.attr, tt.fallback))
		})
	}
}
