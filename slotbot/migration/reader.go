package migration

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"
)

// ReadLegacy loads every table of the previous bot's SQLite database.
// Tables that do not exist are treated as empty.
func ReadLegacy(ctx context.Context, path string) (*LegacyData, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("legacy database: %w", err)
	}

	conn, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to open legacy database: %w", err)
	}
	defer conn.Close()

	data := &LegacyData{}
	steps := []struct {
		table string
		read  func(context.Context, *sql.DB, *LegacyData) error
	}{
		{"slots", readSlots},
		{"slot_talk", readTalkers},
		{"used_free_slots", readFreeSlots},
		{"verify_messages", readVerifyMessages},
	}
	for _, step := range steps {
		ok, err := tableExists(ctx, conn, step.table)
		if err != nil {
			return nil, err
		}
		if !ok {
			logProgress(fmt.Sprintf("Legacy table %s not found, skipping", step.table))
			continue
		}
		if err := step.read(ctx, conn, data); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", step.table, err)
		}
	}
	return data, nil
}

func tableExists(ctx context.Context, conn *sql.DB, table string) (bool, error) {
	var n int
	err := conn.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to inspect legacy schema: %w", err)
	}
	return n > 0, nil
}

func readSlots(ctx context.Context, conn *sql.DB, data *LegacyData) error {
	rows, err := conn.QueryContext(ctx,
		`SELECT channel_id, user_id, guild_id, type, emoji, expires_at,
		        COALESCE(here_used, 0), COALESCE(everyone_used, 0)
		   FROM slots`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var s LegacySlot
		if err := rows.Scan(&s.ChannelID, &s.UserID, &s.GuildID, &s.Type, &s.Emoji,
			&s.ExpiresAt, &s.HereUsed, &s.EveryoneUsed); err != nil {
			return err
		}
		data.Slots = append(data.Slots, s)
	}
	return rows.Err()
}

func readTalkers(ctx context.Context, conn *sql.DB, data *LegacyData) error {
	rows, err := conn.QueryContext(ctx, "SELECT channel_id, user_id FROM slot_talk")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var t LegacyTalker
		if err := rows.Scan(&t.ChannelID, &t.UserID); err != nil {
			return err
		}
		data.Talkers = append(data.Talkers, t)
	}
	return rows.Err()
}

func readFreeSlots(ctx context.Context, conn *sql.DB, data *LegacyData) error {
	rows, err := conn.QueryContext(ctx, "SELECT guild_id, user_id FROM used_free_slots")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var f LegacyFreeSlot
		if err := rows.Scan(&f.GuildID, &f.UserID); err != nil {
			return err
		}
		data.UsedFreeSlots = append(data.UsedFreeSlots, f)
	}
	return rows.Err()
}

func readVerifyMessages(ctx context.Context, conn *sql.DB, data *LegacyData) error {
	rows, err := conn.QueryContext(ctx, "SELECT guild_id, channel_id, message_id FROM verify_messages")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var v LegacyVerifyMessage
		if err := rows.Scan(&v.GuildID, &v.ChannelID, &v.MessageID); err != nil {
			return err
		}
		data.VerifyMessages = append(data.VerifyMessages, v)
	}
	return rows.Err()
}
