package sweep

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/slotkeeper/slotbot/internal/domain/slots"
	"github.com/slotkeeper/slotbot/slotbot/config"
	"github.com/slotkeeper/slotbot/slotbot/database/models"
	"github.com/slotkeeper/slotbot/slotbot/logger"
)

// Lifecycle is the part of the slot engine the sweep drives.
type Lifecycle interface {
	Now() time.Time
	AllSlots(ctx context.Context) ([]*models.Slot, error)
	ExpiredClaims(ctx context.Context) ([]*models.ClaimSlot, error)
	ExpireClaim(ctx context.Context, channelID string) (bool, error)
	ExpireOrRefresh(ctx context.Context, channelID string) (bool, error)
	AutoLockInactive(ctx context.Context, channelID string) (bool, error)
	ReleaseSuspension(ctx context.Context, channelID string) (bool, error)
	SendReminder(ctx context.Context, channelID string) (bool, error)
	WeekendGuilds(ctx context.Context) ([]string, error)
	WeekendActive(ctx context.Context, guildID string) (bool, error)
	OpenWeekend(ctx context.Context, actor slots.Actor, guildID string) (slots.WeekendReport, error)
	CloseWeekend(ctx context.Context, actor slots.Actor, guildID string) (slots.WeekendReport, error)
}

type Options struct {
	Interval time.Duration
	Timeout  time.Duration
	Weekend  Window
}

// Report counts what one pass changed.
type Report struct {
	ClaimsExpired  int
	SlotsExpired   int
	Locked         int
	Released       int
	Reminded       int
	WeekendsOpened int
	WeekendsClosed int
}

type Sweeper struct {
	lifecycle Lifecycle
	opts      Options
	running   atomic.Bool
}

func New(lifecycle Lifecycle, opts Options) *Sweeper {
	if opts.Interval <= 0 {
		opts.Interval = 10 * time.Minute
	}
	if opts.Timeout <= 0 {
		opts.Timeout = config.SweepTimeout
	}
	return &Sweeper{lifecycle: lifecycle, opts: opts}
}

// Start runs a pass immediately and then on every tick until ctx is done.
func (s *Sweeper) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.opts.Interval)
		defer ticker.Stop()

		s.tick(ctx)
		for {
			select {
			case <-ticker.C:
				s.tick(ctx)
			case <-ctx.Done():
				logger.LogSystem("Sweeper stopped")
				return
			}
		}
	}()
}

func (s *Sweeper) tick(ctx context.Context) {
	// a slow pass must not overlap the next one
	if !s.running.CompareAndSwap(false, true) {
		slog.Warn("Skipping sweep, previous pass still running", slog.String("type", "sweep"))
		return
	}
	defer s.running.Store(false)

	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	start := time.Now()
	report, err := s.RunOnce(ctx)
	if err != nil {
		logger.LogError("Sweep finished with errors", err, slog.String("type", "sweep"))
	}
	logger.LogSweep("Sweep completed", time.Since(start),
		slog.Int("claims_expired", report.ClaimsExpired),
		slog.Int("slots_expired", report.SlotsExpired),
		slog.Int("locked", report.Locked),
		slog.Int("released", report.Released),
		slog.Int("reminded", report.Reminded),
		slog.Int("weekends_opened", report.WeekendsOpened),
		slog.Int("weekends_closed", report.WeekendsClosed),
	)
}

// RunOnce performs one full pass. A failure on one slot is collected and the
// pass moves on to the next.
func (s *Sweeper) RunOnce(ctx context.Context) (Report, error) {
	var report Report
	var errs []error
	collect := func(step, id string, err error) {
		errs = append(errs, fmt.Errorf("%s %s: %w", step, id, err))
	}

	claims, err := s.lifecycle.ExpiredClaims(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to list expired claims: %w", err)
	}
	for _, claim := range claims {
		expired, err := s.lifecycle.ExpireClaim(ctx, claim.ChannelID)
		if err != nil {
			collect("expire claim", claim.ChannelID, err)
		} else if expired {
			report.ClaimsExpired++
		}
	}

	all, err := s.lifecycle.AllSlots(ctx)
	if err != nil {
		return report, errors.Join(append(errs, fmt.Errorf("failed to list slots: %w", err))...)
	}

	steps := []struct {
		name    string
		applies func(*models.Slot) bool
		run     func(context.Context, string) (bool, error)
		count   *int
	}{
		{"expire", func(sl *models.Slot) bool { return sl.ExpiresAt != nil }, s.lifecycle.ExpireOrRefresh, &report.SlotsExpired},
		{"autolock", func(sl *models.Slot) bool { return !sl.Locked }, s.lifecycle.AutoLockInactive, &report.Locked},
		{"release", func(sl *models.Slot) bool { return sl.Suspended() }, s.lifecycle.ReleaseSuspension, &report.Released},
		{"remind", func(sl *models.Slot) bool { return sl.ExpiresAt != nil && sl.ReminderSentAt == nil }, s.lifecycle.SendReminder, &report.Reminded},
	}
	for _, step := range steps {
		for _, slot := range all {
			if err := ctx.Err(); err != nil {
				return report, errors.Join(append(errs, err)...)
			}
			if !step.applies(slot) {
				continue
			}
			done, err := step.run(ctx, slot.ChannelID)
			if err != nil {
				collect(step.name, slot.ChannelID, err)
			} else if done {
				*step.count++
			}
		}
	}

	if err := s.weekend(ctx, &report); err != nil {
		errs = append(errs, err)
	}
	return report, errors.Join(errs...)
}

func (s *Sweeper) weekend(ctx context.Context, report *Report) error {
	guilds, err := s.lifecycle.WeekendGuilds(ctx)
	if err != nil {
		return fmt.Errorf("failed to list weekend guilds: %w", err)
	}
	inside := s.opts.Weekend.Contains(s.lifecycle.Now())

	var errs []error
	for _, guildID := range guilds {
		active, err := s.lifecycle.WeekendActive(ctx, guildID)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		switch {
		case inside && !active:
			_, err = s.lifecycle.OpenWeekend(ctx, slots.System, guildID)
			if err == nil {
				report.WeekendsOpened++
			}
		case !inside && active:
			_, err = s.lifecycle.CloseWeekend(ctx, slots.System, guildID)
			if err == nil {
				report.WeekendsClosed++
			}
		}
		// a staff member may have flipped the state since we looked
		if err != nil && !errors.Is(err, slots.ErrAlreadyUsed) {
			errs = append(errs, fmt.Errorf("weekend %s: %w", guildID, err))
		}
	}
	return errors.Join(errs...)
}
