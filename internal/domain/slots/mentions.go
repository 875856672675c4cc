package slots

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/slotkeeper/slotbot/slotbot/database/models"
)

// RecordMentionUse spends the one-time allowance for kind. The two kinds are
// tracked independently and unlimited slots never violate.
func (e *Engine) RecordMentionUse(ctx context.Context, channelID string, kind models.MentionKind) (MentionResult, error) {
	result := MentionOK
	err := e.exclusive(ctx, func() error {
		slot, err := e.loadSlot(ctx, channelID)
		if err != nil {
			return err
		}
		result, err = e.recordMentionUse(ctx, e.dm, slot, kind)
		return err
	})
	return result, err
}

func (e *Engine) recordMentionUse(ctx context.Context, dm DataManager, slot *models.Slot, kind models.MentionKind) (MentionResult, error) {
	if slot.UnlimitedMentions {
		return MentionOK, nil
	}
	flipped, err := dm.Slots().ClaimMention(ctx, slot.ChannelID, kind)
	if err != nil {
		return MentionOK, fmt.Errorf("failed to record %s use: %w", kind, err)
	}
	if !flipped {
		return MentionViolation, nil
	}
	switch kind {
	case models.MentionHere:
		slot.HereUsed = true
	case models.MentionEveryone:
		slot.EveryoneUsed = true
	}
	return MentionOK, nil
}

func mentionKinds(content string) []models.MentionKind {
	var kinds []models.MentionKind
	if strings.Contains(content, "@here") {
		kinds = append(kinds, models.MentionHere)
	}
	if strings.Contains(content, "@everyone") {
		kinds = append(kinds, models.MentionEveryone)
	}
	return kinds
}

// ProcessMessage handles a message posted by anyone in any channel. Only
// messages from a slot's owner count toward activity and mention quotas.
func (e *Engine) ProcessMessage(ctx context.Context, msg MessageInfo) (MessageOutcome, error) {
	var outcome MessageOutcome
	err := e.exclusive(ctx, func() error {
		slot, err := e.dm.Slots().Get(ctx, msg.ChannelID)
		if err != nil {
			return fmt.Errorf("failed to load slot: %w", err)
		}
		if slot == nil || slot.UserID != msg.AuthorID {
			return nil
		}

		for _, kind := range mentionKinds(msg.Content) {
			result, err := e.recordMentionUse(ctx, e.dm, slot, kind)
			if err != nil {
				return err
			}
			if result == MentionViolation {
				outcome.Violations = append(outcome.Violations, kind)
			}
		}

		cfg, err := e.Config(ctx, slot.GuildID)
		if err != nil {
			return err
		}
		threshold := max(cfg.ActivityMessageThreshold, 1)
		slot.ActivityCount++
		if slot.ActivityCount >= threshold {
			slot.LastActivityAt = e.now()
			slot.ActivityCount = 0
		}
		if err := e.dm.Slots().Update(ctx, slot); err != nil {
			return fmt.Errorf("failed to record activity: %w", err)
		}
		return nil
	})
	if err != nil || len(outcome.Violations) == 0 {
		return outcome, err
	}

	if err := e.gateway.DeleteMessage(ctx, msg.ChannelID, msg.MessageID); err != nil {
		bestEffort(err, "delete message", slog.String("channel_id", msg.ChannelID))
	} else {
		outcome.Deleted = true
	}
	e.notifier.DirectMessage(ctx, msg.AuthorID, fmt.Sprintf(
		"⚠️ **Warning**: You've exceeded your @here/@everyone limit in your slot on **%s**.\n"+
			"Each slot allows exactly **1x `@here`** and **1x `@everyone`**. Further abuse may result in slot removal.",
		msg.GuildName,
	))

	slog.Info("Mention limit exceeded",
		slog.String("type", "sys"),
		slog.String("guild_id", msg.GuildID),
		slog.String("channel_id", msg.ChannelID),
		slog.String("user_id", msg.AuthorID),
	)
	return outcome, nil
}

func (e *Engine) ResetMentions(ctx context.Context, actor Actor, channelID string) error {
	if err := RequireStaff(actor); err != nil {
		return err
	}
	return e.exclusive(ctx, func() error {
		slot, err := e.loadSlot(ctx, channelID)
		if err != nil {
			return err
		}
		return e.dm.WithTransaction(ctx, func(dm DataManager) error {
			if err := dm.Slots().ResetMentions(ctx, slot.ChannelID); err != nil {
				return err
			}
			return e.audit(ctx, dm, actor, slot.GuildID, "slot.resetmentions", slot.UserID, slot.ChannelID, "")
		})
	})
}
