package models

import (
	"time"

	"github.com/uptrace/bun"
)

type SlotCategory string

const (
	CategoryFree      SlotCategory = "free"
	CategoryWeek      SlotCategory = "week"
	CategoryMonth     SlotCategory = "month"
	CategoryPermanent SlotCategory = "permanent"
	CategoryOwner     SlotCategory = "owner"
	CategoryAdmin     SlotCategory = "admin"
	CategoryWeekend   SlotCategory = "weekend"
	CategoryClaimed   SlotCategory = "claimed"
)

var AllCategories = []SlotCategory{
	CategoryFree,
	CategoryWeek,
	CategoryMonth,
	CategoryPermanent,
	CategoryOwner,
	CategoryAdmin,
	CategoryWeekend,
	CategoryClaimed,
}

func (c SlotCategory) Valid() bool {
	for _, known := range AllCategories {
		if c == known {
			return true
		}
	}
	return false
}

func (c SlotCategory) Emoji() string {
	switch c {
	case CategoryFree:
		return "🎲"
	case CategoryWeek:
		return "🎰"
	case CategoryMonth:
		return "💎"
	case CategoryPermanent:
		return "⚜️"
	case CategoryOwner:
		return "👑"
	case CategoryAdmin:
		return "🛡️"
	case CategoryWeekend:
		return "🎉"
	case CategoryClaimed:
		return "🎟️"
	}
	return "📌"
}

// NeverExpires reports whether slots of this category are created without an expiry.
func (c SlotCategory) NeverExpires() bool {
	return c == CategoryPermanent || c == CategoryOwner || c == CategoryAdmin
}

// Staff categories get unlimited broadcast mentions and skip inactivity locks.
func (c SlotCategory) Staff() bool {
	return c == CategoryOwner || c == CategoryAdmin
}

type Slot struct {
	bun.BaseModel `bun:"table:slots,alias:s"`

	ChannelID         string       `bun:"channel_id,pk"`
	GuildID           string       `bun:"guild_id,notnull"`
	UserID            string       `bun:"user_id,notnull"`
	OwnerName         string       `bun:"owner_name,notnull"`
	Category          SlotCategory `bun:"category,notnull"`
	Emoji             string       `bun:"emoji,notnull"`
	ChannelName       string       `bun:"channel_name,notnull"`
	ExpiresAt         *time.Time   `bun:"expires_at,nullzero"`
	HereUsed          bool         `bun:"here_used,notnull,default:false"`
	EveryoneUsed      bool         `bun:"everyone_used,notnull,default:false"`
	UnlimitedMentions bool         `bun:"unlimited_mentions,notnull,default:false"`
	Muted             bool         `bun:"muted,notnull,default:false"`
	Locked            bool         `bun:"locked,notnull,default:false"`
	SuspendedUntil    *time.Time   `bun:"suspended_until,nullzero"`
	UnderAppeal       bool         `bun:"under_appeal,notnull,default:false"`
	TalkLimit         int          `bun:"talk_limit,notnull,default:0"`
	LastActivityAt    time.Time    `bun:"last_activity_at,notnull"`
	ActivityCount     int          `bun:"activity_count,notnull,default:0"`
	ReminderSentAt    *time.Time   `bun:"reminder_sent_at,nullzero"`
	CreatedBy         string       `bun:"created_by,notnull"`
	CreatedAt         time.Time    `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt         time.Time    `bun:"updated_at,notnull,default:current_timestamp"`
}

func (s *Slot) Suspended() bool {
	return s.SuspendedUntil != nil
}

type SlotTalker struct {
	bun.BaseModel `bun:"table:slot_talkers,alias:st"`

	ChannelID string    `bun:"channel_id,pk"`
	UserID    string    `bun:"user_id,pk"`
	AddedAt   time.Time `bun:"added_at,notnull,default:current_timestamp"`
}

type MentionKind int

const (
	MentionHere MentionKind = iota
	MentionEveryone
)

func (k MentionKind) String() string {
	if k == MentionEveryone {
		return "@everyone"
	}
	return "@here"
}

// Column returns the slots column holding the used flag for this kind.
func (k MentionKind) Column() string {
	if k == MentionEveryone {
		return "everyone_used"
	}
	return "here_used"
}
