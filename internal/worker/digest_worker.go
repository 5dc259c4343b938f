package worker

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/notifyhub/jobboard/internal/domain"
	"github.com/notifyhub/jobboard/internal/mail"
	"github.com/notifyhub/jobboard/internal/repository"
)

// DigestMailer is the slice of mail.Dispatcher the digest worker needs.
type DigestMailer interface {
	SendWithPriority(ctx context.Context, to, subject, html string, p domain.Priority) error
}

// digestPeriods maps each batched alert frequency to its send period.
// Instant alerts are pushed at job creation and never appear here.
var digestPeriods = []struct {
	freq   domain.Frequency
	period time.Duration
}{
	{domain.FrequencyDaily, 24 * time.Hour},
	{domain.FrequencyWeekly, 7 * 24 * time.Hour},
}

// DigestWorker periodically emails the owners of daily and weekly alerts a
// summary of active jobs posted since their last digest.
type DigestWorker struct {
	alerts    repository.AlertRepository
	jobs      repository.JobRepository
	users     repository.UserRepository
	mailer    DigestMailer
	clientURL string
	interval  time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

func NewDigestWorker(
	alerts repository.AlertRepository,
	jobs repository.JobRepository,
	users repository.UserRepository,
	mailer DigestMailer,
	clientURL string,
	interval time.Duration,
	logger *zap.Logger,
) *DigestWorker {
	return &DigestWorker{
		alerts: alerts, jobs: jobs, users: users, mailer: mailer,
		clientURL: strings.TrimRight(clientURL, "/"),
		interval:  interval, logger: logger, now: time.Now,
	}
}

// Run ticks every interval and sends any digests that are due.
// Stops cleanly when ctx is cancelled.
func (dw *DigestWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(dw.interval)
	defer ticker.Stop()

	dw.logger.Info("digest worker started", zap.Duration("interval", dw.interval))

	for {
		select {
		case <-ctx.Done():
			dw.logger.Info("digest worker stopping")
			return
		case <-ticker.C:
			dw.poll(ctx)
		}
	}
}

func (dw *DigestWorker) poll(ctx context.Context) {
	now := dw.now().UTC()
	sent := 0
	for _, p := range digestPeriods {
		alerts, err := dw.alerts.ListActiveByFrequency(ctx, p.freq)
		if err != nil {
			dw.logger.Error("digest poll error", zap.String("frequency", string(p.freq)), zap.Error(err))
			continue
		}
		for _, a := range alerts {
			since := a.CreatedAt
			if a.LastSent != nil {
				since = *a.LastSent
			}
			if now.Sub(since) < p.period {
				continue
			}
			ok, err := dw.sendDigest(ctx, a, since)
			if err != nil {
				// Leave LastSent alone so the next tick tries again.
				dw.logger.Warn("digest not sent", zap.String("alert_id", a.ID), zap.Error(err))
				continue
			}
			if ok {
				sent++
			}
			if err := dw.alerts.MarkSent(ctx, a.ID, now); err != nil {
				dw.logger.Error("failed to stamp alert", zap.String("alert_id", a.ID), zap.Error(err))
			}
		}
	}

	if sent > 0 {
		dw.logger.Info("alert digests queued", zap.Int("count", sent))
	}
}

// sendDigest emails the alert owner if any jobs matched. It reports false
// with a nil error when there was nothing to send.
func (dw *DigestWorker) sendDigest(ctx context.Context, a *domain.JobAlert, since time.Time) (bool, error) {
	jobs, err := dw.jobs.ListActiveSince(ctx, since)
	if err != nil {
		return false, err
	}
	var lines []mail.DigestJob
	for _, j := range jobs {
		if a.Matches(j) {
			lines = append(lines, mail.DigestJob{
				Title: j.Title,
				City:  j.Location.City,
				URL:   dw.clientURL + "/jobs/" + j.ID,
			})
		}
	}
	if len(lines) == 0 {
		return false, nil
	}

	user, err := dw.users.GetByID(ctx, a.User)
	if err != nil {
		return false, err
	}
	if user.Email == "" {
		dw.logger.Debug("digest skipped: recipient has no address", zap.String("alert_id", a.ID))
		return false, nil
	}
	subject, html, err := mail.AlertDigest(user.Name, string(a.Frequency), lines)
	if err != nil {
		return false, err
	}
	if err := dw.mailer.SendWithPriority(ctx, user.Email, subject, html, domain.PriorityLow); err != nil {
		return false, err
	}
	return true, nil
}
