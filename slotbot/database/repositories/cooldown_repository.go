package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/slotkeeper/slotbot/slotbot/database/models"
	"github.com/uptrace/bun"
)

// CooldownRepository keeps cooldowns in postgres when redis is not configured.
type CooldownRepository struct {
	*BaseRepository
}

func NewCooldownRepository(db bun.IDB) *CooldownRepository {
	return &CooldownRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *CooldownRepository) Start(ctx context.Context, guildID, userID string, until time.Time) error {
	_, err := r.ExecWithTimeout(ctx, "upsert", "slot_cooldown", func(ctx context.Context) (sql.Result, error) {
		return r.db.NewInsert().
			Model(&models.SlotCooldown{GuildID: guildID, UserID: userID, Until: until}).
			On("CONFLICT (guild_id, user_id) DO UPDATE").
			Set("until = EXCLUDED.until").
			Exec(ctx)
	})
	return err
}

func (r *CooldownRepository) Until(ctx context.Context, guildID, userID string) (time.Time, error) {
	cooldown := new(models.SlotCooldown)
	err := r.SelectOneWithTimeout(ctx, "get", "slot_cooldown", userID, func(ctx context.Context) error {
		return r.db.NewSelect().Model(cooldown).Where("guild_id = ? AND user_id = ?", guildID, userID).Scan(ctx)
	})
	if IsNotFound(err) {
		return time.Time{}, nil
	}
	return cooldown.Until, err
}
