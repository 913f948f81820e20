package mock

import (
	"bytes"
	"log/slog"
	"os"
	"testing"
	"time"

	imap "github.com/emersion/go-imap"
	gomock "go.uber.org/mock/gomock"
)

// SetupLogger sets up a logger that only outputs if the test fails
func SetupLogger(t *testing.T) *slog.Logger {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	t.Cleanup(func() {
		if t.Failed() {
			os.Stdout.Write(buf.Bytes()) //nolint:errcheck
		}
	})

	return logger
}

// Custom matcher to check if the Before field is within the tolerance
type searchCriteriaMatcher struct {
	criteria  *imap.SearchCriteria
	tolerance time.Duration
}

func (m searchCriteriaMatcher) Matches(x interface{}) bool {
	c, ok := x.(*imap.SearchCriteria)
	if !ok {
		return false
	}
	beforeDiff := c.Before.Sub(m.criteria.Before)
	return beforeDiff <= m.tolerance && beforeDiff >= -m.tolerance
}

func (m searchCriteriaMatcher) String() string {
	return "matches criteria within tolerance"
}

// NewSearchCriteriaMatcher returns a matcher for search criteria with a tolerance
func NewSearchCriteriaMatcher(criteria *imap.SearchCriteria, tolerance time.Duration) gomock.Matcher {
	return searchCriteriaMatcher{criteria: criteria, tolerance: tolerance}
}
