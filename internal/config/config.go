// Package config holds the prune run options and their validation.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	// PasswordEnvVar names the environment variable holding the account
	// secret. Its absence is a configuration error detected before any
	// network call.
	PasswordEnvVar = "GMAIL_APP_PASSWORD"

	// WebhookEnvVar optionally names a webhook base URL run results are
	// reported to.
	WebhookEnvVar = "MAILPRUNE_WEBHOOK_URL"
)

const (
	DefaultHost           = "imap.gmail.com:993"
	DefaultMailbox        = "[Gmail]/All Mail"
	DefaultOlderThanDays  = 30
	DefaultBatchSize      = 1000
	DefaultTimeoutSeconds = 60
)

// Options is the CLI surface of one prune run.
type Options struct {
	Email          string
	Host           string
	Mailbox        string
	OlderThanDays  int
	BatchSize      int
	DryRun         bool
	TimeoutSeconds int
}

// Validate checks the options before any network activity.
func (o Options) Validate() error {
	if strings.TrimSpace(o.Email) == "" {
		return errors.New("--email is required")
	}
	if strings.TrimSpace(o.Host) == "" {
		return errors.New("--host must not be empty")
	}
	if strings.TrimSpace(o.Mailbox) == "" {
		return errors.New("--mailbox must not be empty")
	}
	if o.OlderThanDays < 1 {
		return errors.New("--older-than-days must be >= 1")
	}
	if o.BatchSize < 1 {
		return errors.New("--batch-size must be >= 1")
	}
	if o.TimeoutSeconds < 1 {
		return errors.New("--timeout must be >= 1")
	}
	return nil
}

// Timeout returns the per-call socket timeout.
func (o Options) Timeout() time.Duration {
	return time.Duration(o.TimeoutSeconds) * time.Second
}

// Cutoff returns the calendar date bounding the run: now minus the
// configured age, at day granularity. It is computed once at process start
// so every search in the run is consistent.
func (o Options) Cutoff(now time.Time) time.Time {
	year, month, day := now.UTC().AddDate(0, 0, -o.OlderThanDays).Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// PasswordFromEnv reads the account secret from the environment.
func PasswordFromEnv() (string, error) {
	password := os.Getenv(PasswordEnvVar)
	if password == "" {
		return "", errors.Errorf("%s is required in environment", PasswordEnvVar)
	}
	return password, nil
}

// WebhookURL returns the configured reporting webhook, or "" when reporting
// is disabled.
func WebhookURL() string {
	return strings.TrimSpace(os.Getenv(WebhookEnvVar))
}
