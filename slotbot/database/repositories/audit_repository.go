package repositories

import (
	"context"
	"database/sql"

	"github.com/slotkeeper/slotbot/slotbot/database/models"
	"github.com/uptrace/bun"
)

type AuditRepository struct {
	*BaseRepository
}

func NewAuditRepository(db bun.IDB) *AuditRepository {
	return &AuditRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *AuditRepository) Append(ctx context.Context, entry *models.AuditEntry) error {
	_, err := r.ExecWithTimeout(ctx, "insert", "audit_entry", func(ctx context.Context) (sql.Result, error) {
		return r.db.NewInsert().Model(entry).Returning("id").Exec(ctx)
	})
	return err
}

func (r *AuditRepository) List(ctx context.Context, guildID string, limit int) ([]*models.AuditEntry, error) {
	var entries []*models.AuditEntry
	err := r.SelectWithTimeout(ctx, "list", "audit_entry", func(ctx context.Context) error {
		q := r.db.NewSelect().Model(&entries).Where("guild_id = ?", guildID).Order("created_at DESC", "id DESC")
		if limit > 0 {
			q = q.Limit(limit)
		}
		return q.Scan(ctx)
	})
	return entries, err
}
