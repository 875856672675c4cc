package slots

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/slotkeeper/slotbot/slotbot/database/models"
)

func ownerOverwrite(slot *models.Slot) Overwrite {
	ow := Overwrite{EntityID: slot.UserID, Kind: OverwriteMember, Allow: ownerPerms}
	if slot.Muted || slot.Locked {
		ow.Allow &^= PermSend
		ow.Deny = PermSend
	}
	return ow
}

func talkerOverwrite(slot *models.Slot, cfg *models.GuildConfig, userID string) Overwrite {
	perms := talkerPerms
	if cfg.TalkersInheritPermissions {
		perms = ownerPerms
	}
	ow := Overwrite{EntityID: userID, Kind: OverwriteMember, Allow: perms}
	if slot.Locked {
		ow.Allow &^= PermSend
		ow.Deny = PermSend
	}
	return ow
}

func (e *Engine) syncOwner(ctx context.Context, slot *models.Slot) {
	bestEffort(e.gateway.EditOverwrite(ctx, slot.ChannelID, ownerOverwrite(slot)), "sync owner permissions",
		slog.String("channel_id", slot.ChannelID))
}

func (e *Engine) syncTalkers(ctx context.Context, slot *models.Slot) error {
	cfg, err := e.Config(ctx, slot.GuildID)
	if err != nil {
		return err
	}
	talkers, err := e.dm.Talkers().List(ctx, slot.ChannelID)
	if err != nil {
		return fmt.Errorf("failed to list talkers: %w", err)
	}
	for _, userID := range talkers {
		bestEffort(e.gateway.EditOverwrite(ctx, slot.ChannelID, talkerOverwrite(slot, cfg, userID)), "sync talker permissions",
			slog.String("channel_id", slot.ChannelID), slog.String("user_id", userID))
	}
	return nil
}

// restrict loads a slot, applies change and persists it with an audit row.
func (e *Engine) restrict(ctx context.Context, actor Actor, channelID, action string, change func(slot *models.Slot, now time.Time) error) (*models.Slot, error) {
	var out *models.Slot
	err := e.exclusive(ctx, func() error {
		slot, err := e.loadSlot(ctx, channelID)
		if err != nil {
			return err
		}
		now := e.now()
		if err := change(slot, now); err != nil {
			return err
		}
		slot.UpdatedAt = now
		err = e.dm.WithTransaction(ctx, func(dm DataManager) error {
			if err := dm.Slots().Update(ctx, slot); err != nil {
				return err
			}
			return e.audit(ctx, dm, actor, slot.GuildID, action, slot.UserID, slot.ChannelID, "")
		})
		if err != nil {
			return fmt.Errorf("failed to update slot: %w", err)
		}
		out = slot
		return nil
	})
	return out, err
}

// Lock strips send from the owner and every talker.
func (e *Engine) Lock(ctx context.Context, actor Actor, channelID string) error {
	if err := RequireStaff(actor); err != nil {
		return err
	}
	slot, err := e.restrict(ctx, actor, channelID, "slot.lock", func(slot *models.Slot, _ time.Time) error {
		slot.Locked = true
		return nil
	})
	if err != nil {
		return err
	}
	e.syncOwner(ctx, slot)
	if err := e.syncTalkers(ctx, slot); err != nil {
		return err
	}
	bestEffort(e.gateway.SendMessage(ctx, slot.ChannelID, "🔒 This slot has been locked by staff."), "lock notice")
	return nil
}

// Unlock also lifts a running suspension and counts as fresh activity.
func (e *Engine) Unlock(ctx context.Context, actor Actor, channelID string) error {
	if err := RequireStaff(actor); err != nil {
		return err
	}
	slot, err := e.restrict(ctx, actor, channelID, "slot.unlock", func(slot *models.Slot, now time.Time) error {
		slot.Locked = false
		slot.SuspendedUntil = nil
		slot.LastActivityAt = now
		slot.ActivityCount = 0
		return nil
	})
	if err != nil {
		return err
	}
	e.syncOwner(ctx, slot)
	if err := e.syncTalkers(ctx, slot); err != nil {
		return err
	}
	bestEffort(e.gateway.SendMessage(ctx, slot.ChannelID, "🔓 This slot has been unlocked."), "unlock notice")
	return nil
}

// Mute only affects the owner; talkers keep their access.
func (e *Engine) Mute(ctx context.Context, actor Actor, channelID string) error {
	return e.setMuted(ctx, actor, channelID, true)
}

func (e *Engine) Unmute(ctx context.Context, actor Actor, channelID string) error {
	return e.setMuted(ctx, actor, channelID, false)
}

func (e *Engine) setMuted(ctx context.Context, actor Actor, channelID string, muted bool) error {
	if err := RequireStaff(actor); err != nil {
		return err
	}
	action := "slot.unmute"
	if muted {
		action = "slot.mute"
	}
	slot, err := e.restrict(ctx, actor, channelID, action, func(slot *models.Slot, _ time.Time) error {
		slot.Muted = muted
		return nil
	})
	if err != nil {
		return err
	}
	e.syncOwner(ctx, slot)
	return nil
}

func (e *Engine) Suspend(ctx context.Context, actor Actor, channelID string, days int) (*models.Slot, error) {
	if err := RequireStaff(actor); err != nil {
		return nil, err
	}
	if days < 1 {
		return nil, fmt.Errorf("%w: days must be at least 1", ErrInvalidArgument)
	}
	slot, err := e.restrict(ctx, actor, channelID, "slot.suspend", func(slot *models.Slot, now time.Time) error {
		until := now.Add(time.Duration(days) * day)
		slot.SuspendedUntil = &until
		slot.Locked = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.syncOwner(ctx, slot)
	if err := e.syncTalkers(ctx, slot); err != nil {
		return nil, err
	}
	e.notifier.DirectMessage(ctx, slot.UserID, fmt.Sprintf("⛔ Your slot <#%s> has been suspended until <t:%d:f>.",
		slot.ChannelID, slot.SuspendedUntil.Unix()))
	return slot, nil
}

// ReleaseSuspension is the sweep step that lifts a suspension once it has run out.
func (e *Engine) ReleaseSuspension(ctx context.Context, channelID string) (bool, error) {
	var released *models.Slot
	err := e.exclusive(ctx, func() error {
		slot, err := e.dm.Slots().Get(ctx, channelID)
		if err != nil {
			return fmt.Errorf("failed to load slot: %w", err)
		}
		now := e.now()
		if slot == nil || !slot.Suspended() || now.Before(*slot.SuspendedUntil) {
			return nil
		}
		slot.SuspendedUntil = nil
		slot.Locked = false
		slot.LastActivityAt = now
		slot.UpdatedAt = now
		err = e.dm.WithTransaction(ctx, func(dm DataManager) error {
			if err := dm.Slots().Update(ctx, slot); err != nil {
				return err
			}
			return e.audit(ctx, dm, System, slot.GuildID, "slot.suspension.release", slot.UserID, slot.ChannelID, "")
		})
		if err != nil {
			return fmt.Errorf("failed to release suspension: %w", err)
		}
		released = slot
		return nil
	})
	if err != nil || released == nil {
		return false, err
	}

	e.syncOwner(ctx, released)
	if err := e.syncTalkers(ctx, released); err != nil {
		return true, err
	}
	bestEffort(e.gateway.SendMessage(ctx, released.ChannelID, "✅ The suspension on this slot has ended."), "suspension notice")
	return true, nil
}

// AutoLockInactive is the sweep step that locks a slot whose owner has been
// quiet longer than the configured inactivity threshold.
func (e *Engine) AutoLockInactive(ctx context.Context, channelID string) (bool, error) {
	var locked *models.Slot
	var days int
	err := e.exclusive(ctx, func() error {
		slot, err := e.dm.Slots().Get(ctx, channelID)
		if err != nil {
			return fmt.Errorf("failed to load slot: %w", err)
		}
		if slot == nil || slot.Locked || slot.UnlimitedMentions || slot.Category.Staff() {
			return nil
		}
		cfg, err := e.Config(ctx, slot.GuildID)
		if err != nil {
			return err
		}
		if cfg.InactivityDays <= 0 {
			return nil
		}
		now := e.now()
		if now.Sub(slot.LastActivityAt) < time.Duration(cfg.InactivityDays)*day {
			return nil
		}

		slot.Locked = true
		slot.UpdatedAt = now
		err = e.dm.WithTransaction(ctx, func(dm DataManager) error {
			if err := dm.Slots().Update(ctx, slot); err != nil {
				return err
			}
			return e.audit(ctx, dm, System, slot.GuildID, "slot.autolock", slot.UserID, slot.ChannelID, "inactive")
		})
		if err != nil {
			return fmt.Errorf("failed to lock inactive slot: %w", err)
		}
		locked, days = slot, cfg.InactivityDays
		return nil
	})
	if err != nil || locked == nil {
		return false, err
	}

	e.syncOwner(ctx, locked)
	if err := e.syncTalkers(ctx, locked); err != nil {
		return true, err
	}
	bestEffort(e.gateway.SendMessage(ctx, locked.ChannelID,
		fmt.Sprintf("🔒 This slot was locked after %s without activity. Ask staff to unlock it.", plural(days, "day"))), "autolock notice")
	return true, nil
}

func (e *Engine) SetAppeal(ctx context.Context, actor Actor, channelID string, underAppeal bool) error {
	if err := RequireStaff(actor); err != nil {
		return err
	}
	_, err := e.restrict(ctx, actor, channelID, "slot.appeal", func(slot *models.Slot, _ time.Time) error {
		slot.UnderAppeal = underAppeal
		return nil
	})
	return err
}
