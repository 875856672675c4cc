package slots

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/slotkeeper/slotbot/slotbot/database/models"
)

// InviteTalker grants a member send access in the actor's slot. Inviting an
// existing talker is a no-op and reports false.
func (e *Engine) InviteTalker(ctx context.Context, actor Actor, channelID, targetID string) (bool, error) {
	var added bool
	var slot *models.Slot
	err := e.exclusive(ctx, func() error {
		var err error
		slot, err = e.loadSlot(ctx, channelID)
		if err != nil {
			return err
		}
		if actor.ID != slot.UserID {
			return fmt.Errorf("%w: only the slot owner can invite talkers", ErrNotPermitted)
		}
		if targetID == slot.UserID {
			return fmt.Errorf("%w: you already own this slot", ErrInvalidArgument)
		}

		return e.dm.WithTransaction(ctx, func(dm DataManager) error {
			talkers, err := dm.Talkers().List(ctx, channelID)
			if err != nil {
				return fmt.Errorf("failed to list talkers: %w", err)
			}
			if slices.Contains(talkers, targetID) {
				return nil
			}
			if slot.TalkLimit > 0 && len(talkers) >= slot.TalkLimit {
				return fmt.Errorf("%w: this slot allows %s", ErrLimitReached, plural(slot.TalkLimit, "talker"))
			}
			added, err = dm.Talkers().Add(ctx, channelID, targetID)
			if err != nil {
				return fmt.Errorf("failed to add talker: %w", err)
			}
			return nil
		})
	})
	if err != nil || !added {
		return false, err
	}

	cfg, err := e.Config(ctx, slot.GuildID)
	if err != nil {
		return true, err
	}
	bestEffort(e.gateway.EditOverwrite(ctx, channelID, talkerOverwrite(slot, cfg, targetID)), "grant talker",
		slog.String("channel_id", channelID), slog.String("user_id", targetID))
	return true, nil
}

func (e *Engine) canManageTalkers(actor Actor, slot *models.Slot) error {
	if actor.Staff || actor.ID == slot.UserID {
		return nil
	}
	return fmt.Errorf("%w: only the slot owner or staff can remove talkers", ErrNotPermitted)
}

func (e *Engine) RemoveTalker(ctx context.Context, actor Actor, channelID, targetID string) (bool, error) {
	var removed bool
	err := e.exclusive(ctx, func() error {
		slot, err := e.loadSlot(ctx, channelID)
		if err != nil {
			return err
		}
		if err := e.canManageTalkers(actor, slot); err != nil {
			return err
		}
		removed, err = e.dm.Talkers().Remove(ctx, channelID, targetID)
		if err != nil {
			return fmt.Errorf("failed to remove talker: %w", err)
		}
		return nil
	})
	if err != nil || !removed {
		return false, err
	}
	bestEffort(e.gateway.DeleteOverwrite(ctx, channelID, targetID), "revoke talker",
		slog.String("channel_id", channelID), slog.String("user_id", targetID))
	return true, nil
}

// RevokeAllTalkers empties the talker set and returns how many were removed.
func (e *Engine) RevokeAllTalkers(ctx context.Context, actor Actor, channelID string) (int, error) {
	var talkers []string
	err := e.exclusive(ctx, func() error {
		slot, err := e.loadSlot(ctx, channelID)
		if err != nil {
			return err
		}
		if err := e.canManageTalkers(actor, slot); err != nil {
			return err
		}
		return e.dm.WithTransaction(ctx, func(dm DataManager) error {
			talkers, err = dm.Talkers().List(ctx, channelID)
			if err != nil {
				return err
			}
			return dm.Talkers().DeleteAll(ctx, channelID)
		})
	})
	if err != nil {
		return 0, err
	}
	for _, userID := range talkers {
		bestEffort(e.gateway.DeleteOverwrite(ctx, channelID, userID), "revoke talker",
			slog.String("channel_id", channelID), slog.String("user_id", userID))
	}
	return len(talkers), nil
}

func (e *Engine) Talkers(ctx context.Context, channelID string) ([]string, error) {
	return e.dm.Talkers().List(ctx, channelID)
}

// SetTalkLimit caps future invites. Existing talkers above the new limit stay.
func (e *Engine) SetTalkLimit(ctx context.Context, actor Actor, channelID string, limit int) error {
	if err := RequireStaff(actor); err != nil {
		return err
	}
	if limit < 0 {
		return fmt.Errorf("%w: the talk limit cannot be negative", ErrInvalidArgument)
	}
	_, err := e.restrict(ctx, actor, channelID, "slot.talklimit", func(slot *models.Slot, _ time.Time) error {
		slot.TalkLimit = limit
		return nil
	})
	return err
}
