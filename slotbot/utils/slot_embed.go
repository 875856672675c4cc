package utils

import (
	"fmt"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/slotkeeper/slotbot/internal/domain/slots"
	"github.com/slotkeeper/slotbot/slotbot/config"
)

// SlotEmbed renders a slot with its talkers.
func SlotEmbed(details *slots.SlotDetails) discord.Embed {
	slot := details.Slot

	talkers := "none"
	if len(details.Talkers) > 0 {
		mentions := make([]string, len(details.Talkers))
		for i, id := range details.Talkers {
			mentions[i] = Mention(id)
		}
		talkers = strings.Join(mentions, " ")
	}
	limit := "no limit"
	if slot.TalkLimit > 0 {
		limit = fmt.Sprintf("%d/%d", len(details.Talkers), slot.TalkLimit)
	}

	return discord.NewEmbedBuilder().
		SetTitle(fmt.Sprintf("%s %s", slot.Emoji, slot.ChannelName)).
		SetColor(config.InfoColor).
		AddField("Owner", Mention(slot.UserID), true).
		AddField("Category", string(slot.Category), true).
		AddField("Channel", ChannelMention(slot.ChannelID), true).
		AddField("Expires", FormatExpiry(slot.ExpiresAt, details.Label), false).
		AddField("Mentions", FormatMentions(slot), true).
		AddField("Restrictions", FormatFlags(slot), true).
		AddField("Talkers", fmt.Sprintf("%s (%s)", talkers, limit), false).
		AddField("Last activity", Timestamp(slot.LastActivityAt, "R"), true).
		AddField("Opened", Timestamp(slot.CreatedAt, "f"), true).
		Build()
}
