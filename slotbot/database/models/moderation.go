package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Warning struct {
	bun.BaseModel `bun:"table:warnings,alias:w"`

	ID        int64     `bun:"id,pk,autoincrement"`
	GuildID   string    `bun:"guild_id,notnull"`
	UserID    string    `bun:"user_id,notnull"`
	Reason    string    `bun:"reason,notnull"`
	IssuedBy  string    `bun:"issued_by,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

type StrikeCounter struct {
	bun.BaseModel `bun:"table:strikes,alias:sk"`

	GuildID   string    `bun:"guild_id,pk"`
	UserID    string    `bun:"user_id,pk"`
	Count     int       `bun:"count,notnull,default:0"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

type BlacklistEntry struct {
	bun.BaseModel `bun:"table:blacklist,alias:bl"`

	GuildID   string    `bun:"guild_id,pk"`
	UserID    string    `bun:"user_id,pk"`
	Reason    string    `bun:"reason"`
	AddedBy   string    `bun:"added_by,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

type UsedFreeSlot struct {
	bun.BaseModel `bun:"table:used_free_slots,alias:ufs"`

	GuildID string    `bun:"guild_id,pk"`
	UserID  string    `bun:"user_id,pk"`
	UsedAt  time.Time `bun:"used_at,notnull,default:current_timestamp"`
}

type SlotCooldown struct {
	bun.BaseModel `bun:"table:slot_cooldowns,alias:sc"`

	GuildID string    `bun:"guild_id,pk"`
	UserID  string    `bun:"user_id,pk"`
	Until   time.Time `bun:"until,notnull"`
}

type ReminderOptIn struct {
	bun.BaseModel `bun:"table:reminder_optins,alias:ro"`

	GuildID   string    `bun:"guild_id,pk"`
	UserID    string    `bun:"user_id,pk"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}
