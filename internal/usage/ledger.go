package usage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/promptpress/promptpress/internal/config"
	"github.com/promptpress/promptpress/internal/models"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// dayKeyLayout formats a calendar day as YYYY-MM-DD.
const dayKeyLayout = "2006-01-02"

// Stats summarizes a user's generation allowance for today.
type Stats struct {
	Used      int       `json:"used"`
	Remaining int       `json:"remaining"`
	Max       int       `json:"max"`
	LastReset time.Time `json:"lastReset"`
}

// Ledger tracks per-user, per-day blog generation counters with a fixed daily
// cap. Counter updates run in row-locked transactions so the cap holds under
// concurrent requests.
type Ledger struct {
	db            *gorm.DB
	dailyMax      int
	retentionDays int
	nowFn         func() time.Time
}

// NewLedger constructs a Ledger from generation configuration.
func NewLedger(db *gorm.DB, cfg config.GenerationConfig) *Ledger {
	dailyMax := cfg.DailyMax
	if dailyMax <= 0 {
		dailyMax = 4
	}
	retention := cfg.UsageRetentionDays
	if retention <= 0 {
		retention = 30
	}
	return &Ledger{
		db:            db,
		dailyMax:      dailyMax,
		retentionDays: retention,
		nowFn:         time.Now,
	}
}

// DailyMax returns the configured daily generation cap.
func (l *Ledger) DailyMax() int { return l.dailyMax }

// todayKey returns the day key for the server's local calendar date. Day
// boundaries follow server local time, matching the reset timing users see.
func (l *Ledger) todayKey() string {
	return l.nowFn().In(time.Local).Format(dayKeyLayout)
}

// GetDailyUsage returns today's usage record for a user, creating a
// zero-valued row on first access. Storage read failures degrade to a
// zero-valued in-memory record so request handling stays available.
func (l *Ledger) GetDailyUsage(ctx context.Context, userID uint64) models.UsageRecord {
	day := l.todayKey()

	var record models.UsageRecord
	errFind := l.db.WithContext(ctx).
		Where("user_id = ? AND day = ?", userID, day).
		First(&record).Error
	if errFind == nil {
		return record
	}

	fallback := models.UsageRecord{
		UserID:    userID,
		Day:       day,
		Count:     0,
		LastReset: l.nowFn().UTC(),
	}
	if !errors.Is(errFind, gorm.ErrRecordNotFound) {
		log.WithError(errFind).Warn("usage ledger: read failed, assuming zero usage")
		return fallback
	}

	if errCreate := l.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "day"}},
		DoNothing: true,
	}).Create(&fallback).Error; errCreate != nil {
		log.WithError(errCreate).Warn("usage ledger: create day record failed")
	}
	return fallback
}

// CanGenerate reports whether the user is under today's cap.
func (l *Ledger) CanGenerate(ctx context.Context, userID uint64) bool {
	return l.GetDailyUsage(ctx, userID).Count < l.dailyMax
}

// Remaining returns how many generations the user has left today.
func (l *Ledger) Remaining(ctx context.Context, userID uint64) int {
	remaining := l.dailyMax - l.GetDailyUsage(ctx, userID).Count
	if remaining < 0 {
		return 0
	}
	return remaining
}

// GetStats returns today's usage summary for a user.
func (l *Ledger) GetStats(ctx context.Context, userID uint64) Stats {
	record := l.GetDailyUsage(ctx, userID)
	remaining := l.dailyMax - record.Count
	if remaining < 0 {
		remaining = 0
	}
	return Stats{
		Used:      record.Count,
		Remaining: remaining,
		Max:       l.dailyMax,
		LastReset: record.LastReset,
	}
}

// Increment adds one generation to today's counter. It must be called exactly
// once per successful generation, after the generation itself succeeded. The
// row lock keeps concurrent increments from losing updates.
func (l *Ledger) Increment(ctx context.Context, userID uint64) (models.UsageRecord, error) {
	day := l.todayKey()
	now := l.nowFn().UTC()

	var record models.UsageRecord
	errTx := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		errFind := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND day = ?", userID, day).
			First(&record).Error
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			record = models.UsageRecord{
				UserID:    userID,
				Day:       day,
				Count:     1,
				LastReset: now,
			}
			return tx.Create(&record).Error
		}
		if errFind != nil {
			return errFind
		}

		record.Count++
		record.LastReset = now
		return tx.Model(&models.UsageRecord{}).
			Where("id = ?", record.ID).
			Updates(map[string]any{"count": record.Count, "last_reset": now}).Error
	})
	if errTx != nil {
		return models.UsageRecord{}, fmt.Errorf("usage ledger: increment: %w", errTx)
	}
	return record, nil
}

// Cleanup deletes day entries older than the retention window.
func (l *Ledger) Cleanup(ctx context.Context) error {
	cutoff := l.nowFn().In(time.Local).AddDate(0, 0, -l.retentionDays).Format(dayKeyLayout)
	res := l.db.WithContext(ctx).
		Where("day < ?", cutoff).
		Delete(&models.UsageRecord{})
	if res.Error != nil {
		return fmt.Errorf("usage ledger: cleanup: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		log.WithField("rows", res.RowsAffected).Info("cleaned up old usage records")
	}
	return nil
}
