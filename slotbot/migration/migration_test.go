package migration

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/slotkeeper/slotbot/slotbot/database/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const legacySchema = `
CREATE TABLE slots (
  channel_id    TEXT PRIMARY KEY,
  user_id       TEXT NOT NULL,
  guild_id      TEXT NOT NULL,
  type          TEXT NOT NULL,
  emoji         TEXT NOT NULL,
  expires_at    INTEGER,
  here_used     INTEGER DEFAULT 0,
  everyone_used INTEGER DEFAULT 0
);
CREATE TABLE slot_talk (
  channel_id TEXT NOT NULL,
  user_id    TEXT NOT NULL,
  PRIMARY KEY (channel_id, user_id)
);
CREATE TABLE used_free_slots (
  guild_id TEXT NOT NULL,
  user_id  TEXT NOT NULL,
  PRIMARY KEY (guild_id, user_id)
);
`

// setupLegacyDB writes a data.db with the given schema and statements and returns its path.
func setupLegacyDB(t *testing.T, schema string, stmts ...string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "data.db")
	conn, err := sql.Open("sqlite3", path)
	require.NoError(t, err, "Failed to create legacy database")
	defer conn.Close()

	_, err = conn.Exec(schema)
	require.NoError(t, err)
	for _, stmt := range stmts {
		_, err = conn.Exec(stmt)
		require.NoError(t, err, stmt)
	}
	return path
}

func TestReadLegacy(t *testing.T) {
	path := setupLegacyDB(t, legacySchema,
		`INSERT INTO slots VALUES ('c1', 'u1', 'g1', 'free', '🎲', 1700000000000, 1, 0)`,
		`INSERT INTO slots VALUES ('c2', 'u2', 'g1', 'perm', '⚜️', NULL, 0, 0)`,
		`INSERT INTO slot_talk VALUES ('c1', 'u9')`,
		`INSERT INTO used_free_slots VALUES ('g1', 'u1')`,
	)

	data, err := ReadLegacy(context.Background(), path)
	require.NoError(t, err)

	require.Len(t, data.Slots, 2)
	assert.Equal(t, "c1", data.Slots[0].ChannelID)
	assert.True(t, data.Slots[0].ExpiresAt.Valid)
	assert.Equal(t, int64(1700000000000), data.Slots[0].ExpiresAt.Int64)
	assert.True(t, data.Slots[0].HereUsed)
	assert.False(t, data.Slots[0].EveryoneUsed)
	assert.False(t, data.Slots[1].ExpiresAt.Valid)

	assert.Equal(t, []LegacyTalker{{ChannelID: "c1", UserID: "u9"}}, data.Talkers)
	assert.Equal(t, []LegacyFreeSlot{{GuildID: "g1", UserID: "u1"}}, data.UsedFreeSlots)
	// verify_messages is missing from this schema
	assert.Empty(t, data.VerifyMessages)
}

func TestReadLegacy_MissingFile(t *testing.T) {
	_, err := ReadLegacy(context.Background(), filepath.Join(t.TempDir(), "nope.db"))
	assert.Error(t, err)
}

func TestConvert(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	expiry := now.Add(72 * time.Hour)

	data := &LegacyData{
		Slots: []LegacySlot{
			{ChannelID: "c1", UserID: "u1", GuildID: "g1", Type: "week", Emoji: "🎰",
				ExpiresAt: sql.NullInt64{Int64: expiry.UnixMilli(), Valid: true}, EveryoneUsed: true},
			{ChannelID: "c2", UserID: "u2", GuildID: "g1", Type: "perm",
				ExpiresAt: sql.NullInt64{Int64: expiry.UnixMilli(), Valid: true}},
			{ChannelID: "c3", UserID: "u3", GuildID: "g1", Type: "vip"},
			{ChannelID: "c1", UserID: "u4", GuildID: "g1", Type: "free"},
		},
		Talkers: []LegacyTalker{
			{ChannelID: "c1", UserID: "u7"},
			{ChannelID: "c3", UserID: "u8"},
		},
		UsedFreeSlots:  []LegacyFreeSlot{{GuildID: "g1", UserID: "u1"}},
		VerifyMessages: []LegacyVerifyMessage{{GuildID: "g1", ChannelID: "v1", MessageID: "m1"}},
	}

	records, skipped := Convert(data, now)

	require.Len(t, records.Slots, 2)
	week := records.Slots[0]
	assert.Equal(t, models.CategoryWeek, week.Category)
	require.NotNil(t, week.ExpiresAt)
	assert.True(t, week.ExpiresAt.Equal(expiry))
	assert.True(t, week.EveryoneUsed)
	assert.Equal(t, ImportedBy, week.CreatedBy)
	assert.Equal(t, now, week.LastActivityAt)
	assert.Empty(t, week.ChannelName)

	perm := records.Slots[1]
	assert.Equal(t, models.CategoryPermanent, perm.Category)
	assert.Nil(t, perm.ExpiresAt, "permanent slots never expire")
	assert.Equal(t, models.CategoryPermanent.Emoji(), perm.Emoji)

	require.Len(t, records.Talkers, 1)
	assert.Equal(t, "u7", records.Talkers[0].UserID)
	require.Len(t, records.UsedFreeSlots, 1)
	require.Len(t, records.VerifyMessages, 1)
	assert.Equal(t, "m1", records.VerifyMessages[0].MessageID)

	reasons := make(map[string]string, len(skipped))
	for _, s := range skipped {
		reasons[s.Table+":"+s.Key] = s.Reason
	}
	assert.Len(t, skipped, 3)
	assert.Contains(t, reasons["slots:c3"], "unknown slot type")
	assert.Equal(t, "slot was not imported", reasons["slot_talk:c3/u8"])
}

func TestLegacyCategory(t *testing.T) {
	tests := []struct {
		in   string
		want models.SlotCategory
		ok   bool
	}{
		{"free", models.CategoryFree, true},
		{"week", models.CategoryWeek, true},
		{"month", models.CategoryMonth, true},
		{"perm", models.CategoryPermanent, true},
		{"permanent", models.CategoryPermanent, true},
		{"owner", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := legacyCategory(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
