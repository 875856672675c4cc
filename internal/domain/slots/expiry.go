package slots

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/slotkeeper/slotbot/slotbot/config"
	"github.com/slotkeeper/slotbot/slotbot/database/models"
)

const day = 24 * time.Hour

type ExpiryLabel struct {
	Days  int
	Never bool
}

// ComputeExpiryLabel rounds the remaining time up to whole days. An expiry at
// or before now yields zero days.
func ComputeExpiryLabel(expiresAt *time.Time, now time.Time) ExpiryLabel {
	if expiresAt == nil {
		return ExpiryLabel{Never: true}
	}
	remaining := expiresAt.Sub(now)
	if remaining <= 0 {
		return ExpiryLabel{}
	}
	return ExpiryLabel{Days: int((remaining + day - 1) / day)}
}

func (l ExpiryLabel) String() string {
	switch {
	case l.Never:
		return "never"
	case l.Days == 0:
		return "expires today"
	}
	return plural(l.Days, "day") + " left"
}

// ChannelName builds "<emoji>-<name>s-slot" and appends "-<days>d" for slots that expire.
func ChannelName(emoji, ownerName string, label ExpiryLabel) string {
	base := fmt.Sprintf("%s-%ss-slot", emoji, sanitizeName(ownerName))
	if label.Never {
		return base
	}
	return fmt.Sprintf("%s-%dd", base, label.Days)
}

func sanitizeName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
		if b.Len() == 80 {
			break
		}
	}
	if b.Len() == 0 {
		return "member"
	}
	return b.String()
}

func (e *Engine) slotName(slot *models.Slot) string {
	return ChannelName(slot.Emoji, slot.OwnerName, ComputeExpiryLabel(slot.ExpiresAt, e.now()))
}

// RefreshName renames the channel only when the computed name differs from
// the last one applied.
func (e *Engine) RefreshName(ctx context.Context, channelID string) (bool, error) {
	var renamed bool
	err := e.exclusive(ctx, func() error {
		slot, err := e.loadSlot(ctx, channelID)
		if err != nil {
			return err
		}
		renamed, err = e.refreshName(ctx, e.dm, slot)
		return err
	})
	return renamed, err
}

func (e *Engine) refreshName(ctx context.Context, dm DataManager, slot *models.Slot) (bool, error) {
	name := e.slotName(slot)
	if name == slot.ChannelName {
		return false, nil
	}
	if err := e.gateway.RenameChannel(ctx, slot.ChannelID, name); err != nil {
		bestEffort(err, "rename channel", slog.String("channel_id", slot.ChannelID))
		return false, nil
	}
	slot.ChannelName = name
	slot.UpdatedAt = e.now()
	if err := dm.Slots().Update(ctx, slot); err != nil {
		return true, fmt.Errorf("failed to store channel name: %w", err)
	}
	return true, nil
}

// ExpireOrRefresh is the sweep step for one slot: rename while time is left,
// destroy once the expiry has passed. Claimed slots are only renamed. It reports whether the slot was destroyed.
func (e *Engine) ExpireOrRefresh(ctx context.Context, channelID string) (bool, error) {
	var expired bool
	err := e.exclusive(ctx, func() error {
		slot, err := e.dm.Slots().Get(ctx, channelID)
		if err != nil {
			return fmt.Errorf("failed to load slot: %w", err)
		}
		if slot == nil || slot.ExpiresAt == nil {
			return nil
		}
		if e.now().Before(*slot.ExpiresAt) {
			_, err = e.refreshName(ctx, e.dm, slot)
			return err
		}
		// ExpireClaim releases claimed slots without deleting the channel
		if slot.Category == models.CategoryClaimed {
			return nil
		}
		expired = true
		return e.destroy(ctx, System, slot, "expired")
	})
	return expired, err
}

func (e *Engine) Extend(ctx context.Context, actor Actor, channelID string, days int) (*models.Slot, error) {
	if err := RequireStaff(actor); err != nil {
		return nil, err
	}
	if days < 1 {
		return nil, fmt.Errorf("%w: days must be at least 1", ErrInvalidArgument)
	}
	return e.mutateExpiry(ctx, actor, channelID, "slot.extend", func(slot *models.Slot, now time.Time) (time.Time, error) {
		return slot.ExpiresAt.Add(time.Duration(days) * day), nil
	})
}

// Reduce never moves the expiry closer than a minute from now so a slot is not
// expired in the middle of the command.
func (e *Engine) Reduce(ctx context.Context, actor Actor, channelID string, days int) (*models.Slot, error) {
	if err := RequireStaff(actor); err != nil {
		return nil, err
	}
	if days < 1 {
		return nil, fmt.Errorf("%w: days must be at least 1", ErrInvalidArgument)
	}
	return e.mutateExpiry(ctx, actor, channelID, "slot.reduce", func(slot *models.Slot, now time.Time) (time.Time, error) {
		at := slot.ExpiresAt.Add(-time.Duration(days) * day)
		if floor := now.Add(config.ReduceFloor); at.Before(floor) {
			at = floor
		}
		return at, nil
	})
}

func (e *Engine) SetExpiry(ctx context.Context, actor Actor, channelID string, at time.Time) (*models.Slot, error) {
	if err := RequireStaff(actor); err != nil {
		return nil, err
	}
	return e.mutateExpiry(ctx, actor, channelID, "slot.setexpiry", func(_ *models.Slot, now time.Time) (time.Time, error) {
		if !at.After(now) {
			return time.Time{}, fmt.Errorf("%w: the new expiry must be in the future", ErrInvalidArgument)
		}
		return at, nil
	})
}

func (e *Engine) mutateExpiry(ctx context.Context, actor Actor, channelID, action string, next func(slot *models.Slot, now time.Time) (time.Time, error)) (*models.Slot, error) {
	var out *models.Slot
	err := e.exclusive(ctx, func() error {
		slot, err := e.loadSlot(ctx, channelID)
		if err != nil {
			return err
		}
		if slot.ExpiresAt == nil {
			return fmt.Errorf("%w: this slot never expires", ErrInvalidArgument)
		}

		now := e.now()
		at, err := next(slot, now)
		if err != nil {
			return err
		}

		slot.ExpiresAt = &at
		slot.ReminderSentAt = nil
		slot.UpdatedAt = now
		err = e.dm.WithTransaction(ctx, func(dm DataManager) error {
			if err := dm.Slots().Update(ctx, slot); err != nil {
				return err
			}
			if slot.Category == models.CategoryClaimed {
				if err := dm.Claims().UpdateExpiry(ctx, slot.ChannelID, &at); err != nil {
					return err
				}
			}
			return e.audit(ctx, dm, actor, slot.GuildID, action, slot.UserID, slot.ChannelID, at.UTC().Format(time.RFC3339))
		})
		if err != nil {
			return fmt.Errorf("failed to update expiry: %w", err)
		}

		if _, err := e.refreshName(ctx, e.dm, slot); err != nil {
			return err
		}
		out = slot
		return nil
	})
	return out, err
}
