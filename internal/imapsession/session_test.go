package imapsession

import (
	"testing"
	"time"

	"github.com/emersion/go-imap"
	"github.com/msgvault/mailprune/pkg/mock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestNewRequiresClient(t *testing.T) {
	_, err := New()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires client")

	ctrl := gomock.NewController(t)
	session, err := New(WithClient(mock.NewMockIMAPClient(ctrl)))
	require.NoError(t, err)
	assert.NotNil(t, session)
}

func TestListNormalizesMailboxInfo(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mock.NewMockIMAPClient(ctrl)
	client.EXPECT().
		List("", "*", gomock.Any()).
		DoAndReturn(func(ref, name string, ch chan *imap.MailboxInfo) error {
			ch <- &imap.MailboxInfo{Attributes: []string{`\HasNoChildren`}, Delimiter: "/", Name: "INBOX"}
			ch <- &imap.MailboxInfo{Attributes: []string{`\All`, `\HasNoChildren`}, Delimiter: "/", Name: "[Gmail]/All Mail"}
			close(ch)
			return nil
		})

	session := &Session{client: client}
	lines, err := session.List()

	require.NoError(t, err)
	assert.Equal(t, []string{
		`(\HasNoChildren) "/" INBOX`,
		`(\All \HasNoChildren) "/" "[Gmail]/All Mail"`,
	}, lines)
}

func TestListFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mock.NewMockIMAPClient(ctrl)
	client.EXPECT().
		List("", "*", gomock.Any()).
		DoAndReturn(func(ref, name string, ch chan *imap.MailboxInfo) error {
			close(ch)
			return errors.New("listing rejected")
		})

	session := &Session{client: client}
	_, err := session.List()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "listing rejected")
}

func TestSelectTracksCursor(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mock.NewMockIMAPClient(ctrl)
	client.EXPECT().Select("[Gmail]/All Mail", false).Return(&imap.MailboxStatus{}, nil)
	client.EXPECT().Select("Papierkorb", false).Return(nil, errors.New("no such mailbox"))

	session := &Session{client: client}

	require.NoError(t, session.Select("[Gmail]/All Mail"))
	assert.Equal(t, "[Gmail]/All Mail", session.Mailbox())

	// A failed select must not move the cursor.
	require.Error(t, session.Select("Papierkorb"))
	assert.Equal(t, "[Gmail]/All Mail", session.Mailbox())
}

func TestSearchBefore(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mock.NewMockIMAPClient(ctrl)

	expected := imap.NewSearchCriteria()
	expected.Before = time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC)
	client.EXPECT().
		UidSearch(mock.NewSearchCriteriaMatcher(expected, time.Second)).
		Return([]uint32{7, 42, 1001}, nil)

	session := &Session{client: client}
	uids, err := session.SearchBefore("05-Jan-2024")

	require.NoError(t, err)
	assert.Equal(t, []string{"7", "42", "1001"}, uids)
}

func TestSearchBeforeRejectsBadDate(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mock.NewMockIMAPClient(ctrl)
	// No UidSearch expectation: a malformed date must fail before the wire.

	session := &Session{client: client}
	_, err := session.SearchBefore("2024-01-05")

	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid search date "2024-01-05"`)
}

func TestStore(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mock.NewMockIMAPClient(ctrl)

	expectedSet, err := imap.ParseSeqSet("7,42,1001")
	require.NoError(t, err)
	client.EXPECT().
		UidStore(expectedSet, imap.StoreItem("+FLAGS.SILENT"), []interface{}{imap.RawString(`\Deleted`)}, gomock.Nil()).
		Return(nil)

	session := &Session{client: client}
	require.NoError(t, session.Store("7,42,1001", "+FLAGS.SILENT", `\Deleted`))
}

func TestStoreRejectsBadUIDSet(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mock.NewMockIMAPClient(ctrl)

	session := &Session{client: client}
	err := session.Store("7,forty-two", "+FLAGS.SILENT", `\Deleted`)

	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid uid set "7,forty-two"`)
}

func TestPassthroughCalls(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mock.NewMockIMAPClient(ctrl)
	client.EXPECT().Login("user@example.com", "app-password").Return(nil)
	client.EXPECT().Expunge(gomock.Nil()).Return(nil)
	client.EXPECT().State().Return(imap.ConnState(imap.AuthenticatedState))
	client.EXPECT().Logout().Return(nil)

	session := &Session{client: client}
	require.NoError(t, session.Login("user@example.com", "app-password"))
	require.NoError(t, session.Expunge())
	require.NoError(t, session.Logout())
}

func TestLogoutAfterDisconnectIsQuiet(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mock.NewMockIMAPClient(ctrl)
	client.EXPECT().State().Return(imap.ConnState(imap.LogoutState))
	// No Logout expectation: the connection is already gone.

	session := &Session{client: client}
	require.NoError(t, session.Logout())
}
