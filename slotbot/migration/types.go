package migration

import (
	"database/sql"
	"time"
)

// LegacySlot is one row of the previous bot's slots table. ExpiresAt is in
// unix milliseconds.
type LegacySlot struct {
	ChannelID    string
	UserID       string
	GuildID      string
	Type         string
	Emoji        string
	ExpiresAt    sql.NullInt64
	HereUsed     bool
	EveryoneUsed bool
}

type LegacyTalker struct {
	ChannelID string
	UserID    string
}

type LegacyFreeSlot struct {
	GuildID string
	UserID  string
}

type LegacyVerifyMessage struct {
	GuildID   string
	ChannelID string
	MessageID string
}

// LegacyData holds everything read from a data.db file.
type LegacyData struct {
	Slots          []LegacySlot
	Talkers        []LegacyTalker
	UsedFreeSlots  []LegacyFreeSlot
	VerifyMessages []LegacyVerifyMessage
}

// Stats counts what an import wrote and what it had to leave behind.
type Stats struct {
	StartTime time.Time
	EndTime   time.Time
	Slots     int
	Talkers   int
	FreeSlots int
	Verify    int
	Skipped   []SkippedRecord
}

// SkippedRecord tracks why a record was skipped
type SkippedRecord struct {
	Table  string
	Key    string
	Reason string
}
