package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/slotkeeper/slotbot/slotbot/database/models"
	"github.com/uptrace/bun"
)

type SlotRepository struct {
	*BaseRepository
}

func NewSlotRepository(db bun.IDB) *SlotRepository {
	return &SlotRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *SlotRepository) Insert(ctx context.Context, slot *models.Slot) error {
	if err := r.ValidateRequired(map[string]interface{}{
		"channel_id": slot.ChannelID,
		"guild_id":   slot.GuildID,
		"user_id":    slot.UserID,
	}); err != nil {
		return err
	}
	_, err := r.ExecWithTimeout(ctx, "insert", "slot", func(ctx context.Context) (sql.Result, error) {
		return r.db.NewInsert().Model(slot).Exec(ctx)
	})
	return err
}

func (r *SlotRepository) Update(ctx context.Context, slot *models.Slot) error {
	_, err := r.ExecWithTimeout(ctx, "update", "slot", func(ctx context.Context) (sql.Result, error) {
		return r.db.NewUpdate().Model(slot).WherePK().Exec(ctx)
	})
	return err
}

func (r *SlotRepository) Delete(ctx context.Context, channelID string) (bool, error) {
	return r.ExecAffected(ctx, "delete", "slot", func(ctx context.Context) (sql.Result, error) {
		return r.db.NewDelete().Model((*models.Slot)(nil)).Where("channel_id = ?", channelID).Exec(ctx)
	})
}

func (r *SlotRepository) getWhere(ctx context.Context, id interface{}, where string, args ...interface{}) (*models.Slot, error) {
	slot := new(models.Slot)
	err := r.SelectOneWithTimeout(ctx, "get", "slot", id, func(ctx context.Context) error {
		return r.db.NewSelect().Model(slot).Where(where, args...).Limit(1).Scan(ctx)
	})
	if IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return slot, nil
}

func (r *SlotRepository) Get(ctx context.Context, channelID string) (*models.Slot, error) {
	return r.getWhere(ctx, channelID, "channel_id = ?", channelID)
}

func (r *SlotRepository) GetByUser(ctx context.Context, guildID, userID string) (*models.Slot, error) {
	return r.getWhere(ctx, userID, "guild_id = ? AND user_id = ?", guildID, userID)
}

func (r *SlotRepository) ListByGuild(ctx context.Context, guildID string) ([]*models.Slot, error) {
	var slots []*models.Slot
	err := r.SelectWithTimeout(ctx, "list", "slot", func(ctx context.Context) error {
		return r.db.NewSelect().Model(&slots).Where("guild_id = ?", guildID).Order("created_at ASC").Scan(ctx)
	})
	return slots, err
}

func (r *SlotRepository) ListAll(ctx context.Context) ([]*models.Slot, error) {
	var slots []*models.Slot
	err := r.SelectWithTimeout(ctx, "list_all", "slot", func(ctx context.Context) error {
		return r.db.NewSelect().Model(&slots).Order("created_at ASC").Scan(ctx)
	})
	return slots, err
}

func (r *SlotRepository) CountByGuild(ctx context.Context, guildID string) (int, error) {
	return r.Count(ctx, "slot", r.db.NewSelect().Model((*models.Slot)(nil)).Where("guild_id = ?", guildID))
}

// ClaimMention flips the flag only while it is still false, so two racing
// messages cannot both be allowed through.
func (r *SlotRepository) ClaimMention(ctx context.Context, channelID string, kind models.MentionKind) (bool, error) {
	column := bun.Ident(kind.Column())
	return r.ExecAffected(ctx, "claim_mention", "slot", func(ctx context.Context) (sql.Result, error) {
		return r.db.NewUpdate().
			Model((*models.Slot)(nil)).
			Set("? = TRUE", column).
			Set("updated_at = ?", time.Now()).
			Where("channel_id = ?", channelID).
			Where("? = FALSE", column).
			Exec(ctx)
	})
}

func (r *SlotRepository) ResetMentions(ctx context.Context, channelID string) error {
	_, err := r.ExecWithTimeout(ctx, "reset_mentions", "slot", func(ctx context.Context) (sql.Result, error) {
		return r.db.NewUpdate().
			Model((*models.Slot)(nil)).
			Set("here_used = FALSE").
			Set("everyone_used = FALSE").
			Where("channel_id = ?", channelID).
			Exec(ctx)
	})
	return err
}

type TalkerRepository struct {
	*BaseRepository
}

func NewTalkerRepository(db bun.IDB) *TalkerRepository {
	return &TalkerRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *TalkerRepository) Add(ctx context.Context, channelID, userID string) (bool, error) {
	talker := &models.SlotTalker{ChannelID: channelID, UserID: userID, AddedAt: time.Now()}
	return r.ExecAffected(ctx, "add", "slot_talker", func(ctx context.Context) (sql.Result, error) {
		return r.db.NewInsert().Model(talker).On("CONFLICT DO NOTHING").Exec(ctx)
	})
}

func (r *TalkerRepository) Remove(ctx context.Context, channelID, userID string) (bool, error) {
	return r.ExecAffected(ctx, "remove", "slot_talker", func(ctx context.Context) (sql.Result, error) {
		return r.db.NewDelete().
			Model((*models.SlotTalker)(nil)).
			Where("channel_id = ? AND user_id = ?", channelID, userID).
			Exec(ctx)
	})
}

func (r *TalkerRepository) List(ctx context.Context, channelID string) ([]string, error) {
	var ids []string
	err := r.SelectWithTimeout(ctx, "list", "slot_talker", func(ctx context.Context) error {
		return r.db.NewSelect().
			Model((*models.SlotTalker)(nil)).
			Column("user_id").
			Where("channel_id = ?", channelID).
			Order("added_at ASC").
			Scan(ctx, &ids)
	})
	return ids, err
}

func (r *TalkerRepository) Count(ctx context.Context, channelID string) (int, error) {
	return r.BaseRepository.Count(ctx, "slot_talker",
		r.db.NewSelect().Model((*models.SlotTalker)(nil)).Where("channel_id = ?", channelID))
}

func (r *TalkerRepository) DeleteAll(ctx context.Context, channelID string) error {
	_, err := r.ExecWithTimeout(ctx, "delete_all", "slot_talker", func(ctx context.Context) (sql.Result, error) {
		return r.db.NewDelete().Model((*models.SlotTalker)(nil)).Where("channel_id = ?", channelID).Exec(ctx)
	})
	return err
}

type HistoryRepository struct {
	*BaseRepository
}

func NewHistoryRepository(db bun.IDB) *HistoryRepository {
	return &HistoryRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *HistoryRepository) Open(ctx context.Context, entry *models.SlotHistory) error {
	_, err := r.ExecWithTimeout(ctx, "open", "slot_history", func(ctx context.Context) (sql.Result, error) {
		return r.db.NewInsert().Model(entry).Exec(ctx)
	})
	return err
}

func (r *HistoryRepository) Close(ctx context.Context, channelID string, closedAt time.Time, reason string) error {
	_, err := r.ExecWithTimeout(ctx, "close", "slot_history", func(ctx context.Context) (sql.Result, error) {
		return r.db.NewUpdate().
			Model((*models.SlotHistory)(nil)).
			Set("closed_at = ?", closedAt).
			Set("close_reason = ?", reason).
			Where("channel_id = ?", channelID).
			Where("closed_at IS NULL").
			Exec(ctx)
	})
	return err
}

func (r *HistoryRepository) list(ctx context.Context, apply func(*bun.SelectQuery) *bun.SelectQuery) ([]*models.SlotHistory, error) {
	var entries []*models.SlotHistory
	err := r.SelectWithTimeout(ctx, "list", "slot_history", func(ctx context.Context) error {
		return apply(r.db.NewSelect().Model(&entries)).Order("opened_at DESC").Scan(ctx)
	})
	return entries, err
}

func (r *HistoryRepository) ListByUser(ctx context.Context, guildID, userID string) ([]*models.SlotHistory, error) {
	return r.list(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("guild_id = ? AND user_id = ?", guildID, userID)
	})
}

func (r *HistoryRepository) ListByGuild(ctx context.Context, guildID string) ([]*models.SlotHistory, error) {
	return r.list(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("guild_id = ?", guildID)
	})
}
