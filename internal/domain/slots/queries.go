package slots

import (
	"context"
	"fmt"
	"sort"

	"github.com/slotkeeper/slotbot/slotbot/database/models"
)

func (e *Engine) details(ctx context.Context, slot *models.Slot) (*SlotDetails, error) {
	talkers, err := e.dm.Talkers().List(ctx, slot.ChannelID)
	if err != nil {
		return nil, fmt.Errorf("failed to list talkers: %w", err)
	}
	return &SlotDetails{
		Slot:    slot,
		Talkers: talkers,
		Label:   ComputeExpiryLabel(slot.ExpiresAt, e.now()),
	}, nil
}

func (e *Engine) Slot(ctx context.Context, channelID string) (*SlotDetails, error) {
	slot, err := e.loadSlot(ctx, channelID)
	if err != nil {
		return nil, err
	}
	return e.details(ctx, slot)
}

func (e *Engine) UserSlot(ctx context.Context, guildID, userID string) (*SlotDetails, error) {
	slot, err := e.dm.Slots().GetByUser(ctx, guildID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load slot: %w", err)
	}
	if slot == nil {
		return nil, fmt.Errorf("%w: <@%s> has no slot", ErrNotFound, userID)
	}
	return e.details(ctx, slot)
}

// ListSlots returns the slots of a community, soonest expiry first and
// never-expiring slots last.
func (e *Engine) ListSlots(ctx context.Context, guildID string) ([]*models.Slot, error) {
	slots, err := e.dm.Slots().ListByGuild(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list slots: %w", err)
	}
	sort.SliceStable(slots, func(i, j int) bool {
		a, b := slots[i].ExpiresAt, slots[j].ExpiresAt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		}
		return a.Before(*b)
	})
	return slots, nil
}

// AllSlots feeds the sweep.
func (e *Engine) AllSlots(ctx context.Context) ([]*models.Slot, error) {
	return e.dm.Slots().ListAll(ctx)
}

func (e *Engine) ExpiredClaims(ctx context.Context) ([]*models.ClaimSlot, error) {
	return e.dm.Claims().ListExpired(ctx, e.now())
}

func (e *Engine) History(ctx context.Context, guildID, userID string) ([]*models.SlotHistory, error) {
	if userID == "" {
		return e.dm.History().ListByGuild(ctx, guildID)
	}
	return e.dm.History().ListByUser(ctx, guildID, userID)
}

func (e *Engine) AuditLog(ctx context.Context, guildID string, limit int) ([]*models.AuditEntry, error) {
	return e.dm.Audit().List(ctx, guildID, limit)
}
