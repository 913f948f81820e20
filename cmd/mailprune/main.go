package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/msgvault/mailprune/internal/config"
	"github.com/msgvault/mailprune/internal/imapsession"
	"github.com/msgvault/mailprune/internal/prune"
	"github.com/msgvault/mailprune/internal/report"
	"github.com/msgvault/mailprune/internal/telemetry"
	"github.com/msgvault/mailprune/pkg/base"
	"github.com/urfave/cli/v2"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const defaultEnvFile = ".env"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		// Errors carrying an exit code have already been handled by Run;
		// whatever reaches here is a flag-parsing or usage problem.
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "mailprune",
		Usage: "delete messages older than N days from an IMAP mailbox in UID batches",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "email",
				Usage: "account email (required)",
			},
			&cli.StringFlag{
				Name:  "host",
				Value: config.DefaultHost,
				Usage: "IMAP host:port",
			},
			&cli.StringFlag{
				Name:  "mailbox",
				Value: config.DefaultMailbox,
				Usage: "IMAP mailbox name",
			},
			&cli.IntFlag{
				Name:  "older-than-days",
				Value: config.DefaultOlderThanDays,
				Usage: "prune mail older than this many days",
			},
			&cli.IntFlag{
				Name:  "batch-size",
				Value: config.DefaultBatchSize,
				Usage: "UID batch size per transition step",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "print candidate count without deleting",
			},
			&cli.IntFlag{
				Name:  "timeout",
				Value: config.DefaultTimeoutSeconds,
				Usage: "IMAP socket timeout in seconds",
			},
			&cli.StringFlag{
				Name:  "policy",
				Value: prune.TrashThenPurge.String(),
				Usage: "retirement policy: trash-then-purge or direct-delete",
			},
		},
		Before: func(*cli.Context) error {
			return loadEnvFile()
		},
		Action: run,
	}
}

func run(c *cli.Context) error {
	opts := config.Options{
		Email:          c.String("email"),
		Host:           c.String("host"),
		Mailbox:        c.String("mailbox"),
		OlderThanDays:  c.Int("older-than-days"),
		BatchSize:      c.Int("batch-size"),
		DryRun:         c.Bool("dry-run"),
		TimeoutSeconds: c.Int("timeout"),
	}
	if err := opts.Validate(); err != nil {
		return cli.Exit(err.Error(), 2)
	}

	policy, err := prune.ParsePolicy(c.String("policy"))
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	password, err := config.PasswordFromEnv()
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	if telemetry.Enabled() {
		shutdown, err := telemetry.Setup(ctx)
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}
		defer func() {
			_ = shutdown(context.Background())
		}()
		logger = otelslog.NewLogger("mailprune")
	}

	cutoff := opts.Cutoff(time.Now())
	fmt.Fprintf(c.App.Writer,
		"Prune target: mailbox=%s older_than_days=%d cutoff=%s batch_size=%d dry_run=%t policy=%s\n",
		opts.Mailbox, opts.OlderThanDays, cutoff.Format(base.SearchDateFormat),
		opts.BatchSize, opts.DryRun, policy)

	ctx, span := otel.Tracer("mailprune").Start(ctx, "prune")
	defer span.End()

	session, err := imapsession.Dial(opts.Host, opts.Timeout())
	if err != nil {
		logger.Error("dial failed", "host", opts.Host, "error", err)
		return cli.Exit(err.Error(), 1)
	}

	runner, err := prune.NewRunner(
		prune.WithSession(session),
		prune.WithLogger(logger),
		prune.WithOut(c.App.Writer),
	)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	stats, err := runner.Run(prune.Request{
		Email:     opts.Email,
		Password:  password,
		Mailbox:   opts.Mailbox,
		Cutoff:    cutoff,
		BatchSize: opts.BatchSize,
		DryRun:    opts.DryRun,
		Policy:    policy,
	})
	span.SetAttributes(
		attribute.Int("prune.matched", stats.Matched),
		attribute.Int("prune.moved", stats.Moved),
		attribute.Int("prune.purged", stats.Purged),
	)
	if err != nil {
		logger.Error("prune failed", "error", err)
		return cli.Exit(err.Error(), 1)
	}

	if counter, merr := otel.Meter("mailprune").Int64Counter("mailprune.messages.purged"); merr == nil {
		counter.Add(ctx, int64(stats.Purged))
	}

	if url := config.WebhookURL(); url != "" {
		reporter := report.New(report.WithWebhookURL(url))
		if rerr := reporter.Do(policy.String(), opts.Mailbox, stats.Matched, stats.Moved+stats.Purged); rerr != nil {
			logger.Warn("reporting failed", "error", rerr)
		}
	}

	return nil
}

func loadEnvFile() error {
	if _, err := os.Stat(defaultEnvFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(defaultEnvFile)
}
