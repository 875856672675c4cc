package utils

import (
	"fmt"
	"time"

	"github.com/slotkeeper/slotbot/internal/domain/slots"
	"github.com/slotkeeper/slotbot/slotbot/database/models"
)

func Ptr[T any](v T) *T {
	return &v
}

// Timestamp renders t as a Discord timestamp tag. style is one of the
// single letter formats, e.g. "R" for relative or "f" for short date/time.
func Timestamp(t time.Time, style string) string {
	return fmt.Sprintf("<t:%d:%s>", t.Unix(), style)
}

func Mention(userID string) string {
	return fmt.Sprintf("<@%s>", userID)
}

func ChannelMention(channelID string) string {
	return fmt.Sprintf("<#%s>", channelID)
}

// FormatExpiry describes when a slot expires.
func FormatExpiry(expiresAt *time.Time, label slots.ExpiryLabel) string {
	if expiresAt == nil {
		return "♾️ never"
	}
	return fmt.Sprintf("%s (%s)", Timestamp(*expiresAt, "f"), label)
}

// FormatFlags lists the restriction flags set on a slot, or "none".
func FormatFlags(slot *models.Slot) string {
	var flags []string
	if slot.Locked {
		flags = append(flags, "🔒 locked")
	}
	if slot.Muted {
		flags = append(flags, "🔇 muted")
	}
	if slot.Suspended() {
		flags = append(flags, "⛔ suspended until "+Timestamp(*slot.SuspendedUntil, "f"))
	}
	if slot.UnderAppeal {
		flags = append(flags, "⚖️ under appeal")
	}
	if len(flags) == 0 {
		return "none"
	}
	out := flags[0]
	for _, f := range flags[1:] {
		out += ", " + f
	}
	return out
}

// FormatMentions shows which broadcast mentions remain for a slot.
func FormatMentions(slot *models.Slot) string {
	if slot.UnlimitedMentions {
		return "unlimited"
	}
	mark := func(used bool) string {
		if used {
			return "❌"
		}
		return "✅"
	}
	return fmt.Sprintf("@here %s  @everyone %s", mark(slot.HereUsed), mark(slot.EveryoneUsed))
}

// PageBounds returns the slice bounds of page for a list of total items.
func PageBounds(page, perPage, total int) (int, int) {
	start := min(page*perPage, total)
	end := min(start+perPage, total)
	return start, end
}

// PageCount is the number of pages needed to show total items, at least one.
func PageCount(perPage, total int) int {
	if total == 0 {
		return 1
	}
	return (total + perPage - 1) / perPage
}
