package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sangkips/optica-api/internal/domain/entity"
	"github.com/sangkips/optica-api/internal/domain/repository"
	"github.com/sangkips/optica-api/internal/infrastructure/realtime"
	"github.com/sangkips/optica-api/pkg/email"
	"github.com/sangkips/optica-api/pkg/localtime"
)

const warningResendAfter = 24 * time.Hour

// ExpiryNotifier sends expiry warnings by mail
type ExpiryNotifier interface {
	Enabled() bool
	SendSubscriptionExpiring(n email.ExpiryNotice) error
}

// SubscriptionWatcher polls for subscriptions about to end or already ended
type SubscriptionWatcher struct {
	subRepo    repository.SubscriptionRepository
	notifier   ExpiryNotifier
	events     realtime.Publisher
	interval   time.Duration
	warnWithin time.Duration
	loc        *time.Location
	now        func() time.Time
}

// NewSubscriptionWatcher creates a watcher; interval defaults to 2 minutes
// and the warning window to 2 days.
func NewSubscriptionWatcher(
	subRepo repository.SubscriptionRepository,
	notifier ExpiryNotifier,
	events realtime.Publisher,
	interval, warnWithin time.Duration,
	loc *time.Location,
) *SubscriptionWatcher {
	if interval <= 0 {
		interval = 2 * time.Minute
	}
	if warnWithin <= 0 {
		warnWithin = 48 * time.Hour
	}
	if loc == nil {
		loc = time.UTC
	}
	return &SubscriptionWatcher{
		subRepo:    subRepo,
		notifier:   notifier,
		events:     events,
		interval:   interval,
		warnWithin: warnWithin,
		loc:        loc,
		now:        time.Now,
	}
}

// Run checks once immediately, then every interval until ctx is cancelled
func (w *SubscriptionWatcher) Run(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Msg("Subscription watcher started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		w.evaluate(ctx, w.now())

		select {
		case <-ctx.Done():
			log.Info().Msg("Subscription watcher stopped")
			return
		case <-ticker.C:
		}
	}
}

func (w *SubscriptionWatcher) evaluate(ctx context.Context, now time.Time) {
	if ctx.Err() != nil {
		return
	}

	subs, err := w.subRepo.ListActiveEndingBefore(ctx, now.Add(w.warnWithin))
	if err != nil {
		log.Error().Err(err).Msg("Subscription watcher query failed")
		return
	}

	for i := range subs {
		sub := &subs[i]
		if sub.IsExpired(now) {
			w.publish(sub, realtime.EventSubscriptionExpired, now)
			continue
		}
		w.warn(ctx, sub, now)
	}
}

func (w *SubscriptionWatcher) warn(ctx context.Context, sub *entity.Subscription, now time.Time) {
	w.publish(sub, realtime.EventSubscriptionExpiring, now)

	if sub.ExpiryWarningSentAt != nil && now.Sub(*sub.ExpiryWarningSentAt) < warningResendAfter {
		return
	}
	if w.notifier == nil || !w.notifier.Enabled() || sub.User == nil {
		return
	}

	days, hours := sub.Remaining(now)
	notice := email.ExpiryNotice{
		Email:          sub.User.Email,
		DaysRemaining:  days,
		HoursRemaining: hours,
		EndDate:        localtime.FormatDateTime(sub.EndDate, w.loc),
	}
	if err := w.notifier.SendSubscriptionExpiring(notice); err != nil {
		log.Warn().Err(err).Str("user_id", sub.UserID.String()).Msg("Failed to send expiry warning")
		return
	}

	if err := w.subRepo.MarkWarningSent(ctx, sub.ID, now); err != nil {
		log.Warn().Err(err).Str("subscription_id", sub.ID.String()).Msg("Failed to record expiry warning")
	}
}

func (w *SubscriptionWatcher) publish(sub *entity.Subscription, event string, now time.Time) {
	if w.events == nil {
		return
	}
	days, hours := sub.Remaining(now)
	w.events.Publish(sub.UserID, event, map[string]interface{}{
		"end_date":        sub.EndDate,
		"days_remaining":  days,
		"hours_remaining": hours,
	})
}
