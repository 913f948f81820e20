// Package report posts prune run results to an optional webhook.
package report

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

const webhookAnnouncePath = "/announcements"

type Option func(*pruneReporter)

type Service interface {
	Do(policy, mailbox string, matched, transitioned int) error
}

func WithWebhookURL(webhookURL string) Option {
	return func(pr *pruneReporter) {
		pr.baseURL = strings.TrimSpace(webhookURL)
	}
}

type pruneReporter struct {
	baseURL string
}

func New(opts ...Option) *pruneReporter {
	reporter := &pruneReporter{}
	for _, opt := range opts {
		opt(reporter)
	}
	return reporter
}

// Do reports one finished run. It is a no-op when no webhook is configured.
func (p *pruneReporter) Do(policy, mailbox string, matched, transitioned int) error {
	if p.baseURL == "" {
		return nil
	}
	baseURL := strings.TrimRight(p.baseURL, "/")
	message := fmt.Sprintf("prune (%s): mailbox %q matched %d messages, transitioned %d\n", policy, mailbox, matched, transitioned)
	payload := fmt.Sprintf("{\"message\": %q}", message)
	req, err := http.NewRequest("POST", baseURL+webhookAnnouncePath, strings.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("reporting webhook returned status %s", resp.Status)
	}
	return nil
}
