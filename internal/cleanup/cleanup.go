package cleanup

import (
	"context"
	"time"

	"github.com/promptpress/promptpress/internal/models"
	"github.com/promptpress/promptpress/internal/usage"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Default sweep intervals for the background runners.
const (
	defaultUsageInterval = 6 * time.Hour
	defaultTokenInterval = time.Hour
)

// Runner prunes aged records on fixed intervals, outside the request path.
type Runner struct {
	db            *gorm.DB
	ledger        *usage.Ledger
	usageInterval time.Duration
	tokenInterval time.Duration
}

// NewRunner constructs a Runner with default intervals.
func NewRunner(db *gorm.DB, ledger *usage.Ledger) *Runner {
	return &Runner{
		db:            db,
		ledger:        ledger,
		usageInterval: defaultUsageInterval,
		tokenInterval: defaultTokenInterval,
	}
}

// Start launches the sweep loops. They stop when ctx is cancelled.
func (r *Runner) Start(ctx context.Context) {
	go r.loop(ctx, r.usageInterval, r.sweepUsage)
	go r.loop(ctx, r.tokenInterval, r.sweepTokens)
}

func (r *Runner) loop(ctx context.Context, interval time.Duration, sweep func(context.Context)) {
	sweep(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweep(ctx)
		}
	}
}

// sweepUsage prunes usage ledger entries past the retention window.
func (r *Runner) sweepUsage(ctx context.Context) {
	if r.ledger == nil {
		return
	}
	if errCleanup := r.ledger.Cleanup(ctx); errCleanup != nil {
		log.WithError(errCleanup).Warn("usage cleanup failed")
	}
}

// sweepTokens removes expired email verification tokens.
func (r *Runner) sweepTokens(ctx context.Context) {
	if r.db == nil {
		return
	}
	res := r.db.WithContext(ctx).
		Where("expires_at < ?", time.Now().UTC()).
		Delete(&models.VerificationToken{})
	if res.Error != nil {
		log.WithError(res.Error).Warn("verification token cleanup failed")
		return
	}
	if res.RowsAffected > 0 {
		log.WithField("rows", res.RowsAffected).Info("cleaned up expired verification tokens")
	}
}
