package models

import (
	"time"

	"github.com/uptrace/bun"
)

// SlotHistory is append-only; only ClosedAt and CloseReason are ever stamped.
type SlotHistory struct {
	bun.BaseModel `bun:"table:slot_history,alias:sh"`

	ID          int64        `bun:"id,pk,autoincrement"`
	GuildID     string       `bun:"guild_id,notnull"`
	UserID      string       `bun:"user_id,notnull"`
	ChannelID   string       `bun:"channel_id,notnull"`
	Category    SlotCategory `bun:"category,notnull"`
	OpenedAt    time.Time    `bun:"opened_at,notnull"`
	ClosedAt    *time.Time   `bun:"closed_at,nullzero"`
	CloseReason string       `bun:"close_reason"`
}
