package models

import (
	"time"

	"github.com/uptrace/bun"
)

type GuildConfig struct {
	bun.BaseModel `bun:"table:guild_configs,alias:gc"`

	GuildID                   string    `bun:"guild_id,pk"`
	SlotLimit                 int       `bun:"slot_limit,notnull,default:0"`
	DefaultDurationDays       int       `bun:"default_duration_days,notnull,default:7"`
	CooldownMinutes           int       `bun:"cooldown_minutes,notnull,default:0"`
	InactivityDays            int       `bun:"inactivity_days,notnull,default:0"`
	ActivityMessageThreshold  int       `bun:"activity_message_threshold,notnull,default:1"`
	TalkersInheritPermissions bool      `bun:"talkers_inherit_permissions,notnull,default:false"`
	DefaultTalkLimit          int       `bun:"default_talk_limit,notnull,default:0"`
	SlotCategoryName          string    `bun:"slot_category_name,notnull"`
	MemberRoleID              string    `bun:"member_role_id"`
	NewbieRoleID              string    `bun:"newbie_role_id"`
	VerifyChannelID           string    `bun:"verify_channel_id"`
	LogChannelID              string    `bun:"log_channel_id"`
	WeekendEnabled            bool      `bun:"weekend_enabled,notnull,default:false"`
	UpdatedAt                 time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

type WeekendState struct {
	bun.BaseModel `bun:"table:weekend_states,alias:ws"`

	GuildID  string     `bun:"guild_id,pk"`
	Active   bool       `bun:"active,notnull,default:false"`
	OpenedAt *time.Time `bun:"opened_at,nullzero"`
	ClosedAt *time.Time `bun:"closed_at,nullzero"`
}

type VerifyMessage struct {
	bun.BaseModel `bun:"table:verify_messages,alias:vm"`

	GuildID   string `bun:"guild_id,pk"`
	ChannelID string `bun:"channel_id,notnull"`
	MessageID string `bun:"message_id,notnull"`
}
