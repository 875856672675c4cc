package slots

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/slotkeeper/slotbot/slotbot/config"
	"github.com/slotkeeper/slotbot/slotbot/database/models"
)

const (
	reasonStrikeRevoke = "auto-revoked (3 strikes)"
	reasonBlacklisted  = "blacklisted"
)

func (e *Engine) Warn(ctx context.Context, actor Actor, guildID, userID, reason string) (*models.Warning, error) {
	if err := RequireStaff(actor); err != nil {
		return nil, err
	}
	if reason == "" {
		reason = "No reason given"
	}
	warning := &models.Warning{
		GuildID:   guildID,
		UserID:    userID,
		Reason:    reason,
		IssuedBy:  actor.ID,
		CreatedAt: e.now(),
	}
	err := e.exclusive(ctx, func() error {
		return e.dm.WithTransaction(ctx, func(dm DataManager) error {
			if err := dm.Moderation().AddWarning(ctx, warning); err != nil {
				return err
			}
			return e.audit(ctx, dm, actor, guildID, "user.warn", userID, "", reason)
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record warning: %w", err)
	}
	e.notifier.DirectMessage(ctx, userID, fmt.Sprintf("⚠️ You have been warned by staff: %s", reason))
	return warning, nil
}

func (e *Engine) Warnings(ctx context.Context, guildID, userID string) ([]*models.Warning, error) {
	return e.dm.Moderation().ListWarnings(ctx, guildID, userID)
}

func (e *Engine) Strikes(ctx context.Context, guildID, userID string) (int, error) {
	return e.dm.Moderation().Strikes(ctx, guildID, userID)
}

// Strike adds one strike. The third destroys the user's slot and starts the count over.
func (e *Engine) Strike(ctx context.Context, actor Actor, guildID, userID, reason string) (StrikeResult, error) {
	if err := RequireStaff(actor); err != nil {
		return StrikeResult{}, err
	}

	var result StrikeResult
	err := e.exclusive(ctx, func() error {
		err := e.dm.WithTransaction(ctx, func(dm DataManager) error {
			count, err := dm.Moderation().IncrementStrikes(ctx, guildID, userID)
			if err != nil {
				return err
			}
			result.Count = count
			return e.audit(ctx, dm, actor, guildID, "user.strike", userID, "", reason)
		})
		if err != nil {
			return fmt.Errorf("failed to record strike: %w", err)
		}
		if result.Count < config.StrikeLimit {
			return nil
		}

		slot, err := e.dm.Slots().GetByUser(ctx, guildID, userID)
		if err != nil {
			return fmt.Errorf("failed to load slot: %w", err)
		}
		if slot != nil {
			if err := e.destroy(ctx, actor, slot, reasonStrikeRevoke); err != nil {
				return err
			}
			result.Revoked = true
		}
		if err := e.dm.Moderation().ResetStrikes(ctx, guildID, userID); err != nil {
			return fmt.Errorf("failed to reset strikes: %w", err)
		}
		return nil
	})
	if err != nil {
		return result, err
	}

	msg := fmt.Sprintf("🟥 You received strike %d/%d.", result.Count, config.StrikeLimit)
	if reason != "" {
		msg += " Reason: " + reason
	}
	if result.Revoked {
		msg += "\nYour slot has been removed."
	}
	e.notifier.DirectMessage(ctx, userID, msg)

	slog.Info("Strike issued",
		slog.String("type", "sys"),
		slog.String("guild_id", guildID),
		slog.String("user_id", userID),
		slog.Int("count", result.Count),
		slog.Bool("revoked", result.Revoked),
	)
	return result, nil
}

// Blacklist blocks future slots for a user and removes the one they hold.
func (e *Engine) Blacklist(ctx context.Context, actor Actor, guildID, userID, reason string) (bool, error) {
	if err := RequireStaff(actor); err != nil {
		return false, err
	}

	var destroyed bool
	err := e.exclusive(ctx, func() error {
		err := e.dm.WithTransaction(ctx, func(dm DataManager) error {
			added, err := dm.Moderation().AddBlacklist(ctx, &models.BlacklistEntry{
				GuildID:   guildID,
				UserID:    userID,
				Reason:    reason,
				AddedBy:   actor.ID,
				CreatedAt: e.now(),
			})
			if err != nil {
				return fmt.Errorf("failed to blacklist user: %w", err)
			}
			if !added {
				return fmt.Errorf("%w: <@%s> is already blacklisted", ErrAlreadyUsed, userID)
			}
			return e.audit(ctx, dm, actor, guildID, "user.blacklist", userID, "", reason)
		})
		if err != nil {
			return err
		}

		slot, err := e.dm.Slots().GetByUser(ctx, guildID, userID)
		if err != nil {
			return fmt.Errorf("failed to load slot: %w", err)
		}
		if slot == nil {
			return nil
		}
		destroyed = true
		return e.destroy(ctx, actor, slot, reasonBlacklisted)
	})
	return destroyed, err
}

func (e *Engine) Unblacklist(ctx context.Context, actor Actor, guildID, userID string) error {
	if err := RequireStaff(actor); err != nil {
		return err
	}
	return e.exclusive(ctx, func() error {
		return e.dm.WithTransaction(ctx, func(dm DataManager) error {
			removed, err := dm.Moderation().RemoveBlacklist(ctx, guildID, userID)
			if err != nil {
				return fmt.Errorf("failed to remove blacklist entry: %w", err)
			}
			if !removed {
				return fmt.Errorf("%w: <@%s> is not blacklisted", ErrNotFound, userID)
			}
			return e.audit(ctx, dm, actor, guildID, "user.unblacklist", userID, "", "")
		})
	})
}

func (e *Engine) ListBlacklist(ctx context.Context, guildID string) ([]*models.BlacklistEntry, error) {
	return e.dm.Moderation().ListBlacklist(ctx, guildID)
}
