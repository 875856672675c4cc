package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/slotkeeper/slotbot/slotbot/database/models"
	"github.com/uptrace/bun"
)

type ModerationRepository struct {
	*BaseRepository
}

func NewModerationRepository(db bun.IDB) *ModerationRepository {
	return &ModerationRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *ModerationRepository) AddWarning(ctx context.Context, warning *models.Warning) error {
	_, err := r.ExecWithTimeout(ctx, "insert", "warning", func(ctx context.Context) (sql.Result, error) {
		return r.db.NewInsert().Model(warning).Returning("id").Exec(ctx)
	})
	return err
}

func (r *ModerationRepository) ListWarnings(ctx context.Context, guildID, userID string) ([]*models.Warning, error) {
	var warnings []*models.Warning
	err := r.SelectWithTimeout(ctx, "list", "warning", func(ctx context.Context) error {
		return r.db.NewSelect().
			Model(&warnings).
			Where("guild_id = ? AND user_id = ?", guildID, userID).
			Order("created_at DESC").
			Scan(ctx)
	})
	return warnings, err
}

func (r *ModerationRepository) IncrementStrikes(ctx context.Context, guildID, userID string) (int, error) {
	var count int
	err := r.SelectWithTimeout(ctx, "increment", "strike", func(ctx context.Context) error {
		return r.db.NewRaw(`INSERT INTO strikes (guild_id, user_id, count, updated_at)
			VALUES (?, ?, 1, ?)
			ON CONFLICT (guild_id, user_id) DO UPDATE
			SET count = strikes.count + 1, updated_at = EXCLUDED.updated_at
			RETURNING count`, guildID, userID, time.Now()).Scan(ctx, &count)
	})
	return count, err
}

func (r *ModerationRepository) ResetStrikes(ctx context.Context, guildID, userID string) error {
	_, err := r.ExecWithTimeout(ctx, "reset", "strike", func(ctx context.Context) (sql.Result, error) {
		return r.db.NewDelete().
			Model((*models.StrikeCounter)(nil)).
			Where("guild_id = ? AND user_id = ?", guildID, userID).
			Exec(ctx)
	})
	return err
}

func (r *ModerationRepository) Strikes(ctx context.Context, guildID, userID string) (int, error) {
	counter := new(models.StrikeCounter)
	err := r.SelectOneWithTimeout(ctx, "get", "strike", userID, func(ctx context.Context) error {
		return r.db.NewSelect().Model(counter).Where("guild_id = ? AND user_id = ?", guildID, userID).Scan(ctx)
	})
	if IsNotFound(err) {
		return 0, nil
	}
	return counter.Count, err
}

func (r *ModerationRepository) AddBlacklist(ctx context.Context, entry *models.BlacklistEntry) (bool, error) {
	return r.ExecAffected(ctx, "insert", "blacklist", func(ctx context.Context) (sql.Result, error) {
		return r.db.NewInsert().Model(entry).On("CONFLICT DO NOTHING").Exec(ctx)
	})
}

func (r *ModerationRepository) RemoveBlacklist(ctx context.Context, guildID, userID string) (bool, error) {
	return r.ExecAffected(ctx, "delete", "blacklist", func(ctx context.Context) (sql.Result, error) {
		return r.db.NewDelete().
			Model((*models.BlacklistEntry)(nil)).
			Where("guild_id = ? AND user_id = ?", guildID, userID).
			Exec(ctx)
	})
}

func (r *ModerationRepository) IsBlacklisted(ctx context.Context, guildID, userID string) (bool, error) {
	return r.Exists(ctx, "blacklist", r.db.NewSelect().
		Model((*models.BlacklistEntry)(nil)).
		Where("guild_id = ? AND user_id = ?", guildID, userID))
}

func (r *ModerationRepository) ListBlacklist(ctx context.Context, guildID string) ([]*models.BlacklistEntry, error) {
	var entries []*models.BlacklistEntry
	err := r.SelectWithTimeout(ctx, "list", "blacklist", func(ctx context.Context) error {
		return r.db.NewSelect().Model(&entries).Where("guild_id = ?", guildID).Order("created_at ASC").Scan(ctx)
	})
	return entries, err
}

func (r *ModerationRepository) MarkFreeUsed(ctx context.Context, guildID, userID string, at time.Time) error {
	_, err := r.ExecWithTimeout(ctx, "insert", "used_free_slot", func(ctx context.Context) (sql.Result, error) {
		return r.db.NewInsert().
			Model(&models.UsedFreeSlot{GuildID: guildID, UserID: userID, UsedAt: at}).
			On("CONFLICT DO NOTHING").
			Exec(ctx)
	})
	return err
}

func (r *ModerationRepository) FreeUsed(ctx context.Context, guildID, userID string) (bool, error) {
	return r.Exists(ctx, "used_free_slot", r.db.NewSelect().
		Model((*models.UsedFreeSlot)(nil)).
		Where("guild_id = ? AND user_id = ?", guildID, userID))
}

func (r *ModerationRepository) SetReminder(ctx context.Context, guildID, userID string, on bool) error {
	_, err := r.ExecWithTimeout(ctx, "set", "reminder_optin", func(ctx context.Context) (sql.Result, error) {
		if on {
			return r.db.NewInsert().
				Model(&models.ReminderOptIn{GuildID: guildID, UserID: userID, CreatedAt: time.Now()}).
				On("CONFLICT DO NOTHING").
				Exec(ctx)
		}
		return r.db.NewDelete().
			Model((*models.ReminderOptIn)(nil)).
			Where("guild_id = ? AND user_id = ?", guildID, userID).
			Exec(ctx)
	})
	return err
}

func (r *ModerationRepository) ReminderOptedIn(ctx context.Context, guildID, userID string) (bool, error) {
	return r.Exists(ctx, "reminder_optin", r.db.NewSelect().
		Model((*models.ReminderOptIn)(nil)).
		Where("guild_id = ? AND user_id = ?", guildID, userID))
}
