package models

import (
	"time"

	"github.com/uptrace/bun"
)

type AuditEntry struct {
	bun.BaseModel `bun:"table:audit_log,alias:al"`

	ID        int64     `bun:"id,pk,autoincrement"`
	GuildID   string    `bun:"guild_id,notnull"`
	ActorID   string    `bun:"actor_id,notnull"`
	Action    string    `bun:"action,notnull"`
	TargetID  string    `bun:"target_id"`
	ChannelID string    `bun:"channel_id"`
	Details   string    `bun:"details"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

type Backup struct {
	bun.BaseModel `bun:"table:backups,alias:bk"`

	ID        string    `bun:"id,pk"`
	GuildID   string    `bun:"guild_id,notnull"`
	ObjectKey string    `bun:"object_key,notnull"`
	Bytes     int64     `bun:"bytes,notnull"`
	CreatedBy string    `bun:"created_by,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}
