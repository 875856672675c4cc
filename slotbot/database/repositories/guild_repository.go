package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/slotkeeper/slotbot/slotbot/database/models"
	"github.com/uptrace/bun"
)

type GuildRepository struct {
	*BaseRepository
}

func NewGuildRepository(db bun.IDB) *GuildRepository {
	return &GuildRepository{BaseRepository: NewBaseRepository(db)}
}

// getOne scans a single row keyed by guild_id into dest and reports whether it existed.
func (r *GuildRepository) getOne(ctx context.Context, entity, guildID string, dest interface{}) (bool, error) {
	err := r.SelectOneWithTimeout(ctx, "get", entity, guildID, func(ctx context.Context) error {
		return r.db.NewSelect().Model(dest).Where("guild_id = ?", guildID).Scan(ctx)
	})
	if IsNotFound(err) {
		return false, nil
	}
	return err == nil, err
}

// upsert replaces every column of the row sharing the primary key.
func (r *GuildRepository) upsert(ctx context.Context, entity string, model interface{}) error {
	_, err := r.ExecWithTimeout(ctx, "upsert", entity, func(ctx context.Context) (sql.Result, error) {
		return r.db.NewInsert().Model(model).On("CONFLICT (guild_id) DO UPDATE").Exec(ctx)
	})
	return err
}

func (r *GuildRepository) Config(ctx context.Context, guildID string) (*models.GuildConfig, error) {
	cfg := new(models.GuildConfig)
	found, err := r.getOne(ctx, "guild_config", guildID, cfg)
	if !found {
		return nil, err
	}
	return cfg, nil
}

func (r *GuildRepository) SaveConfig(ctx context.Context, cfg *models.GuildConfig) error {
	cfg.UpdatedAt = time.Now()
	return r.upsert(ctx, "guild_config", cfg)
}

func (r *GuildRepository) ListConfigs(ctx context.Context) ([]*models.GuildConfig, error) {
	var configs []*models.GuildConfig
	err := r.SelectWithTimeout(ctx, "list", "guild_config", func(ctx context.Context) error {
		return r.db.NewSelect().Model(&configs).Order("guild_id ASC").Scan(ctx)
	})
	return configs, err
}

func (r *GuildRepository) WeekendState(ctx context.Context, guildID string) (*models.WeekendState, error) {
	state := new(models.WeekendState)
	found, err := r.getOne(ctx, "weekend_state", guildID, state)
	if !found {
		return nil, err
	}
	return state, nil
}

func (r *GuildRepository) SaveWeekendState(ctx context.Context, state *models.WeekendState) error {
	return r.upsert(ctx, "weekend_state", state)
}

func (r *GuildRepository) VerifyMessage(ctx context.Context, guildID string) (*models.VerifyMessage, error) {
	msg := new(models.VerifyMessage)
	found, err := r.getOne(ctx, "verify_message", guildID, msg)
	if !found {
		return nil, err
	}
	return msg, nil
}

func (r *GuildRepository) SaveVerifyMessage(ctx context.Context, msg *models.VerifyMessage) error {
	return r.upsert(ctx, "verify_message", msg)
}
