package slots

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/slotkeeper/slotbot/slotbot/database/models"
)

func placeholderName(label string) string {
	return fmt.Sprintf("%s-%s-open", models.CategoryClaimed.Emoji(), sanitizeName(label))
}

// availableOverwrite lets members see an unclaimed channel without posting in it.
func availableOverwrite(cfg *models.GuildConfig) Overwrite {
	roleID := cfg.MemberRoleID
	if roleID == "" {
		roleID = cfg.GuildID
	}
	return Overwrite{EntityID: roleID, Kind: OverwriteRole, Allow: PermView | PermHistory, Deny: PermSend}
}

func (e *Engine) CreateClaimSlot(ctx context.Context, actor Actor, guildID, label string, days int) (*models.ClaimSlot, error) {
	if err := RequireStaff(actor); err != nil {
		return nil, err
	}
	if days < 1 {
		return nil, fmt.Errorf("%w: days must be at least 1", ErrInvalidArgument)
	}
	if label == "" {
		label = "claim"
	}

	var claim *models.ClaimSlot
	err := e.exclusive(ctx, func() error {
		cfg, err := e.Config(ctx, guildID)
		if err != nil {
			return err
		}
		parentID, err := e.gateway.EnsureCategory(ctx, guildID, cfg.SlotCategoryName)
		if err != nil {
			return fmt.Errorf("%w: could not find or create the slot category: %v", ErrExternalFailure, err)
		}

		overwrites := []Overwrite{
			{EntityID: e.gateway.BotID(), Kind: OverwriteMember, Allow: botPerms},
		}
		if cfg.MemberRoleID != "" {
			overwrites = append(overwrites, Overwrite{EntityID: guildID, Kind: OverwriteRole, Deny: PermView | PermSend})
		}
		overwrites = append(overwrites, availableOverwrite(cfg))

		channelID, err := e.gateway.CreateChannel(ctx, guildID, placeholderName(label), parentID, overwrites)
		if err != nil {
			return fmt.Errorf("%w: could not create the claim channel: %v", ErrExternalFailure, err)
		}

		claim = &models.ClaimSlot{
			ChannelID:    channelID,
			GuildID:      guildID,
			Label:        label,
			Emoji:        models.CategoryClaimed.Emoji(),
			DurationDays: days,
			CreatedBy:    actor.ID,
			CreatedAt:    e.now(),
		}
		err = e.dm.WithTransaction(ctx, func(dm DataManager) error {
			if err := dm.Claims().Insert(ctx, claim); err != nil {
				return err
			}
			return e.audit(ctx, dm, actor, guildID, "claim.create", "", channelID, label)
		})
		if err != nil {
			bestEffort(e.gateway.DeleteChannel(ctx, channelID), "delete orphaned channel", slog.String("channel_id", channelID))
			return fmt.Errorf("failed to save claim slot: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	bestEffort(e.gateway.SendMessage(ctx, claim.ChannelID,
		fmt.Sprintf("🎟️ This slot is up for grabs! Use `/claim` here to make it yours for **%s**.", plural(days, "day"))), "claim notice")
	return claim, nil
}

// Claim gives an unclaimed claim slot to the actor. Only the first caller wins.
func (e *Engine) Claim(ctx context.Context, actor Actor, channelID string) (*ClaimResult, error) {
	var result *ClaimResult
	err := e.exclusive(ctx, func() error {
		claim, err := e.dm.Claims().Get(ctx, channelID)
		if err != nil {
			return fmt.Errorf("failed to load claim slot: %w", err)
		}
		if claim == nil {
			return fmt.Errorf("%w: this channel is not a claim slot", ErrNotFound)
		}
		if claim.ClaimedBy != "" {
			return fmt.Errorf("%w: this slot has already been claimed", ErrAlreadyUsed)
		}

		cfg, err := e.Config(ctx, claim.GuildID)
		if err != nil {
			return err
		}
		now := e.now()
		req := CreateRequest{GuildID: claim.GuildID, UserID: actor.ID, UserName: actor.Name, Category: models.CategoryClaimed}
		if err := e.checkEligible(ctx, req, cfg, now); err != nil {
			return err
		}

		expiresAt := now.Add(time.Duration(claim.DurationDays) * day)
		slot := &models.Slot{
			ChannelID:      claim.ChannelID,
			GuildID:        claim.GuildID,
			UserID:         actor.ID,
			OwnerName:      actor.Name,
			Category:       models.CategoryClaimed,
			Emoji:          claim.Emoji,
			ChannelName:    placeholderName(claim.Label),
			ExpiresAt:      &expiresAt,
			TalkLimit:      cfg.DefaultTalkLimit,
			LastActivityAt: now,
			CreatedBy:      actor.ID,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		err = e.dm.WithTransaction(ctx, func(dm DataManager) error {
			ok, err := dm.Claims().TryClaim(ctx, claim.ChannelID, actor.ID, now, expiresAt)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: this slot has already been claimed", ErrAlreadyUsed)
			}
			if err := dm.Slots().Insert(ctx, slot); err != nil {
				return err
			}
			if err := dm.History().Open(ctx, &models.SlotHistory{
				GuildID:   slot.GuildID,
				UserID:    slot.UserID,
				ChannelID: slot.ChannelID,
				Category:  slot.Category,
				OpenedAt:  now,
			}); err != nil {
				return err
			}
			return e.audit(ctx, dm, actor, slot.GuildID, "claim.claim", actor.ID, slot.ChannelID, "")
		})
		if err != nil {
			return fmt.Errorf("failed to claim slot: %w", err)
		}

		e.syncOwner(ctx, slot)
		if _, err := e.refreshName(ctx, e.dm, slot); err != nil {
			return err
		}
		result = &ClaimResult{Slot: slot, ExpiresAt: expiresAt}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.announce(ctx, result.Slot.GuildID, fmt.Sprintf("🎟️ <@%s> claimed <#%s>", actor.ID, channelID))
	return result, nil
}

// Unclaim is the forced staff reset of a claimed slot.
func (e *Engine) Unclaim(ctx context.Context, actor Actor, channelID string) error {
	if err := RequireStaff(actor); err != nil {
		return err
	}
	return e.exclusive(ctx, func() error {
		claim, err := e.dm.Claims().Get(ctx, channelID)
		if err != nil {
			return fmt.Errorf("failed to load claim slot: %w", err)
		}
		if claim == nil {
			return fmt.Errorf("%w: this channel is not a claim slot", ErrNotFound)
		}
		if claim.ClaimedBy == "" {
			return fmt.Errorf("%w: this slot is not claimed", ErrInvalidArgument)
		}
		return e.releaseClaim(ctx, actor, claim, nil, "reset by staff")
	})
}

// ExpireClaim is the sweep step that returns an expired claim slot to the pool.
// The channel itself is kept.
func (e *Engine) ExpireClaim(ctx context.Context, channelID string) (bool, error) {
	var expired bool
	err := e.exclusive(ctx, func() error {
		claim, err := e.dm.Claims().Get(ctx, channelID)
		if err != nil {
			return fmt.Errorf("failed to load claim slot: %w", err)
		}
		if claim == nil || claim.Status(e.now()) != models.ClaimStatusExpired {
			return nil
		}
		expired = true
		return e.releaseClaim(ctx, System, claim, nil, "expired")
	})
	return expired, err
}

func (e *Engine) releaseClaim(ctx context.Context, actor Actor, claim *models.ClaimSlot, slot *models.Slot, reason string) error {
	var err error
	if slot == nil {
		if slot, err = e.dm.Slots().Get(ctx, claim.ChannelID); err != nil {
			return fmt.Errorf("failed to load slot: %w", err)
		}
	}
	cfg, err := e.Config(ctx, claim.GuildID)
	if err != nil {
		return err
	}

	claimant := claim.ClaimedBy
	now := e.now()
	var talkers []string
	err = e.dm.WithTransaction(ctx, func(dm DataManager) error {
		list, err := dm.Talkers().List(ctx, claim.ChannelID)
		if err != nil {
			return err
		}
		talkers = list
		if err := dm.Claims().Release(ctx, claim.ChannelID); err != nil {
			return err
		}
		if slot != nil {
			if _, err := dm.Slots().Delete(ctx, slot.ChannelID); err != nil {
				return err
			}
			if err := dm.History().Close(ctx, slot.ChannelID, now, reason); err != nil {
				return err
			}
		}
		if err := dm.Talkers().DeleteAll(ctx, claim.ChannelID); err != nil {
			return err
		}
		return e.audit(ctx, dm, actor, claim.GuildID, "claim.release", claimant, claim.ChannelID, reason)
	})
	if err != nil {
		return fmt.Errorf("failed to release claim slot: %w", err)
	}

	if claimant != "" {
		bestEffort(e.gateway.DeleteOverwrite(ctx, claim.ChannelID, claimant), "revoke claimant",
			slog.String("channel_id", claim.ChannelID), slog.String("user_id", claimant))
	}
	for _, userID := range talkers {
		bestEffort(e.gateway.DeleteOverwrite(ctx, claim.ChannelID, userID), "revoke talker",
			slog.String("channel_id", claim.ChannelID), slog.String("user_id", userID))
	}
	bestEffort(e.gateway.EditOverwrite(ctx, claim.ChannelID, availableOverwrite(cfg)), "restore member access",
		slog.String("channel_id", claim.ChannelID))
	bestEffort(e.gateway.RenameChannel(ctx, claim.ChannelID, placeholderName(claim.Label)), "rename claim slot",
		slog.String("channel_id", claim.ChannelID))
	bestEffort(e.gateway.SendMessage(ctx, claim.ChannelID, "🎟️ This slot is available again. Use `/claim` to grab it."), "claim notice")
	if claimant != "" {
		e.notifier.DirectMessage(ctx, claimant, fmt.Sprintf("🎟️ Your claim on <#%s> has ended (%s).", claim.ChannelID, reason))
	}
	return nil
}

func (e *Engine) ClaimSlots(ctx context.Context, guildID string) ([]*models.ClaimSlot, error) {
	return e.dm.Claims().ListByGuild(ctx, guildID)
}
