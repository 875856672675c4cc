package slots

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/slotkeeper/slotbot/slotbot/database/models"
)

type TransferRequest struct {
	GuildID    string
	FromUserID string
	ToUserID   string
	ToName     string
}

// Transfer hands a slot to another member. The slot keeps its expiry, flags,
// talkers and history entry.
func (e *Engine) Transfer(ctx context.Context, actor Actor, req TransferRequest) (*models.Slot, error) {
	if err := RequireStaff(actor); err != nil {
		return nil, err
	}
	if req.FromUserID == req.ToUserID {
		return nil, fmt.Errorf("%w: cannot transfer a slot to its owner", ErrInvalidArgument)
	}

	var out *models.Slot
	var previousOwner string
	err := e.exclusive(ctx, func() error {
		slot, err := e.dm.Slots().GetByUser(ctx, req.GuildID, req.FromUserID)
		if err != nil {
			return fmt.Errorf("failed to load slot: %w", err)
		}
		if slot == nil {
			return fmt.Errorf("%w: <@%s> has no slot", ErrNotFound, req.FromUserID)
		}
		if slot.Category == models.CategoryClaimed {
			return fmt.Errorf("%w: claim slots cannot be transferred", ErrInvalidArgument)
		}

		target, err := e.dm.Slots().GetByUser(ctx, req.GuildID, req.ToUserID)
		if err != nil {
			return fmt.Errorf("failed to load target slot: %w", err)
		}
		if target != nil {
			return fmt.Errorf("%w: %s already has a slot in <#%s>", ErrAlreadyUsed, req.ToName, target.ChannelID)
		}
		blacklisted, err := e.dm.Moderation().IsBlacklisted(ctx, req.GuildID, req.ToUserID)
		if err != nil {
			return fmt.Errorf("failed to check blacklist: %w", err)
		}
		if blacklisted {
			return fmt.Errorf("%w: %s is blacklisted from slots", ErrBlacklisted, req.ToName)
		}

		moved := *slot
		moved.UserID = req.ToUserID
		moved.OwnerName = req.ToName
		moved.UpdatedAt = e.now()
		err = e.dm.WithTransaction(ctx, func(dm DataManager) error {
			if err := dm.Slots().Update(ctx, &moved); err != nil {
				return err
			}
			// the new owner no longer needs a talker grant
			if _, err := dm.Talkers().Remove(ctx, moved.ChannelID, req.ToUserID); err != nil {
				return err
			}
			return e.audit(ctx, dm, actor, moved.GuildID, "slot.transfer", req.ToUserID, moved.ChannelID, "from "+req.FromUserID)
		})
		if err != nil {
			return fmt.Errorf("failed to transfer slot: %w", err)
		}

		previousOwner = slot.UserID
		out = &moved
		e.handOver(ctx, out, previousOwner)
		_, err = e.refreshName(ctx, e.dm, out)
		return err
	})
	if err != nil {
		return nil, err
	}

	e.announce(ctx, out.GuildID, fmt.Sprintf("🔁 Slot <#%s> transferred from <@%s> to <@%s>", out.ChannelID, previousOwner, out.UserID))
	return out, nil
}

// Swap exchanges the slots of two members. Both must hold one.
func (e *Engine) Swap(ctx context.Context, actor Actor, guildID, userA, nameA, userB, nameB string) (*models.Slot, *models.Slot, error) {
	if err := RequireStaff(actor); err != nil {
		return nil, nil, err
	}
	if userA == userB {
		return nil, nil, fmt.Errorf("%w: pick two different members", ErrInvalidArgument)
	}

	var slotA, slotB *models.Slot
	err := e.exclusive(ctx, func() error {
		a, err := e.dm.Slots().GetByUser(ctx, guildID, userA)
		if err != nil {
			return fmt.Errorf("failed to load slot: %w", err)
		}
		b, err := e.dm.Slots().GetByUser(ctx, guildID, userB)
		if err != nil {
			return fmt.Errorf("failed to load slot: %w", err)
		}
		if a == nil {
			return fmt.Errorf("%w: %s has no slot", ErrNotFound, nameA)
		}
		if b == nil {
			return fmt.Errorf("%w: %s has no slot", ErrNotFound, nameB)
		}
		if a.Category == models.CategoryClaimed || b.Category == models.CategoryClaimed {
			return fmt.Errorf("%w: claim slots cannot be swapped", ErrInvalidArgument)
		}

		now := e.now()
		// a's channel goes to b and b's channel goes to a
		toB, toA := *a, *b
		toB.UserID, toB.OwnerName, toB.UpdatedAt = userB, nameB, now
		toA.UserID, toA.OwnerName, toA.UpdatedAt = userA, nameA, now

		err = e.dm.WithTransaction(ctx, func(dm DataManager) error {
			if err := dm.Slots().Update(ctx, &toB); err != nil {
				return err
			}
			if err := dm.Slots().Update(ctx, &toA); err != nil {
				return err
			}
			if _, err := dm.Talkers().Remove(ctx, toB.ChannelID, userB); err != nil {
				return err
			}
			if _, err := dm.Talkers().Remove(ctx, toA.ChannelID, userA); err != nil {
				return err
			}
			return e.audit(ctx, dm, actor, guildID, "slot.swap", userA, toB.ChannelID, "with "+userB)
		})
		if err != nil {
			return fmt.Errorf("failed to swap slots: %w", err)
		}

		e.handOver(ctx, &toB, userA)
		e.handOver(ctx, &toA, userB)
		if _, err := e.refreshName(ctx, e.dm, &toB); err != nil {
			return err
		}
		if _, err := e.refreshName(ctx, e.dm, &toA); err != nil {
			return err
		}
		slotA, slotB = &toA, &toB
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return slotA, slotB, nil
}

// handOver moves the owner grant of a channel from the previous owner to the current one.
func (e *Engine) handOver(ctx context.Context, slot *models.Slot, previousOwner string) {
	bestEffort(e.gateway.DeleteOverwrite(ctx, slot.ChannelID, previousOwner), "revoke previous owner",
		slog.String("channel_id", slot.ChannelID), slog.String("user_id", previousOwner))
	e.syncOwner(ctx, slot)
}
