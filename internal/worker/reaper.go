package worker

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"employee-management/backend/internal/logs"
)

// reapTimeout bounds one reaper pass.
const reapTimeout = time.Minute

// SessionReaper deletes refresh sessions that expired or were revoked before cutoff.
type SessionReaper interface {
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

// ResetTokenReaper clears password reset tokens that expired before now.
type ResetTokenReaper interface {
	ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error)
}

// Reaper removes expired credentials.
type Reaper struct {
	sessions SessionReaper
	tokens   ResetTokenReaper
	now      func() time.Time
}

// NewReaper returns a Reaper.
func NewReaper(sessions SessionReaper, tokens ResetTokenReaper) *Reaper {
	return &Reaper{sessions: sessions, tokens: tokens, now: time.Now}
}

// Result counts the rows removed by one pass.
type Result struct {
	Sessions    int64
	ResetTokens int64
}

// Reap runs one pass. Both steps run even when the first fails; the first error is returned.
func (r *Reaper) Reap(ctx context.Context) (Result, error) {
	now := r.now().UTC()
	var (
		res      Result
		firstErr error
	)
	n, err := r.sessions.DeleteExpired(ctx, now)
	if err != nil {
		firstErr = err
	}
	res.Sessions = n
	n, err = r.tokens.ClearExpiredResetTokens(ctx, now)
	if err != nil && firstErr == nil {
		firstErr = err
	}
	res.ResetTokens = n
	return res, firstErr
}

// Schedule registers Reap on c under the cron expression expr, e.g. "@hourly".
func (r *Reaper) Schedule(ctx context.Context, c *cron.Cron, expr string) (cron.EntryID, error) {
	return c.AddFunc(expr, func() {
		runCtx, cancel := context.WithTimeout(ctx, reapTimeout)
		defer cancel()
		res, err := r.Reap(runCtx)
		entry := logs.With("reaper").WithField("sessions", res.Sessions).WithField("reset_tokens", res.ResetTokens)
		if err != nil {
			entry.WithError(err).Error("reap failed")
			return
		}
		entry.Info("reaped expired credentials")
	})
}
