package migration

import (
	"fmt"
	"time"

	"github.com/slotkeeper/slotbot/slotbot/database/models"
)

// ImportedBy is recorded as the creator of every imported slot.
const ImportedBy = "legacy-import"

// Records are the rows an import writes, already in the new schema.
type Records struct {
	Slots          []*models.Slot
	Talkers        []*models.SlotTalker
	UsedFreeSlots  []*models.UsedFreeSlot
	VerifyMessages []*models.VerifyMessage
}

func legacyCategory(kind string) (models.SlotCategory, bool) {
	switch kind {
	case "free":
		return models.CategoryFree, true
	case "week":
		return models.CategoryWeek, true
	case "month":
		return models.CategoryMonth, true
	case "perm", "permanent":
		return models.CategoryPermanent, true
	}
	return "", false
}

// Convert maps legacy rows onto the new models. Slots with an unknown type
// and talkers of slots that were not imported are skipped and reported.
// Channel names are left empty so the first sweep renames every channel.
func Convert(data *LegacyData, now time.Time) (*Records, []SkippedRecord) {
	var (
		out     Records
		skipped []SkippedRecord
	)

	imported := make(map[string]bool, len(data.Slots))
	for _, ls := range data.Slots {
		category, ok := legacyCategory(ls.Type)
		if !ok {
			skipped = append(skipped, SkippedRecord{
				Table:  "slots",
				Key:    ls.ChannelID,
				Reason: fmt.Sprintf("unknown slot type %q", ls.Type),
			})
			continue
		}
		if imported[ls.ChannelID] {
			skipped = append(skipped, SkippedRecord{Table: "slots", Key: ls.ChannelID, Reason: "duplicate channel"})
			continue
		}
		imported[ls.ChannelID] = true

		emoji := ls.Emoji
		if emoji == "" {
			emoji = category.Emoji()
		}

		var expiresAt *time.Time
		if ls.ExpiresAt.Valid && !category.NeverExpires() {
			t := time.UnixMilli(ls.ExpiresAt.Int64).UTC()
			expiresAt = &t
		}

		out.Slots = append(out.Slots, &models.Slot{
			ChannelID:      ls.ChannelID,
			GuildID:        ls.GuildID,
			UserID:         ls.UserID,
			Category:       category,
			Emoji:          emoji,
			ExpiresAt:      expiresAt,
			HereUsed:       ls.HereUsed,
			EveryoneUsed:   ls.EveryoneUsed,
			LastActivityAt: now,
			CreatedBy:      ImportedBy,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	}

	for _, lt := range data.Talkers {
		if !imported[lt.ChannelID] {
			skipped = append(skipped, SkippedRecord{
				Table:  "slot_talk",
				Key:    lt.ChannelID + "/" + lt.UserID,
				Reason: "slot was not imported",
			})
			continue
		}
		out.Talkers = append(out.Talkers, &models.SlotTalker{
			ChannelID: lt.ChannelID,
			UserID:    lt.UserID,
			AddedAt:   now,
		})
	}

	for _, lf := range data.UsedFreeSlots {
		out.UsedFreeSlots = append(out.UsedFreeSlots, &models.UsedFreeSlot{
			GuildID: lf.GuildID,
			UserID:  lf.UserID,
			UsedAt:  now,
		})
	}

	for _, lv := range data.VerifyMessages {
		out.VerifyMessages = append(out.VerifyMessages, &models.VerifyMessage{
			GuildID:   lv.GuildID,
			ChannelID: lv.ChannelID,
			MessageID: lv.MessageID,
		})
	}

	return &out, skipped
}
