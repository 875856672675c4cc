package models

import (
	"time"

	"github.com/uptrace/bun"
)

type ClaimStatus int

const (
	ClaimStatusAvailable ClaimStatus = iota
	ClaimStatusClaimed
	ClaimStatusExpired
)

type ClaimSlot struct {
	bun.BaseModel `bun:"table:claim_slots,alias:cs"`

	ChannelID    string     `bun:"channel_id,pk"`
	GuildID      string     `bun:"guild_id,notnull"`
	Label        string     `bun:"label,notnull"`
	Emoji        string     `bun:"emoji,notnull"`
	DurationDays int        `bun:"duration_days,notnull"`
	ClaimedBy    string     `bun:"claimed_by,nullzero"`
	ClaimedAt    *time.Time `bun:"claimed_at,nullzero"`
	ExpiresAt    *time.Time `bun:"expires_at,nullzero"`
	CreatedBy    string     `bun:"created_by,notnull"`
	CreatedAt    time.Time  `bun:"created_at,notnull,default:current_timestamp"`
}

func (c *ClaimSlot) Status(now time.Time) ClaimStatus {
	switch {
	case c.ClaimedBy == "":
		return ClaimStatusAvailable
	case c.ExpiresAt != nil && !now.Before(*c.ExpiresAt):
		return ClaimStatusExpired
	}
	return ClaimStatusClaimed
}
