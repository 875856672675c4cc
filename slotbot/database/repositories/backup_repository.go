package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/slotkeeper/slotbot/slotbot/database/models"
	"github.com/uptrace/bun"
	"golang.org/x/sync/errgroup"
)

// GuildSnapshot is every row the bot keeps for one community.
type GuildSnapshot struct {
	GuildID    string                   `json:"guild_id"`
	TakenAt    time.Time                `json:"taken_at"`
	Config     []*models.GuildConfig    `json:"config"`
	Slots      []*models.Slot           `json:"slots"`
	Talkers    []*models.SlotTalker     `json:"talkers"`
	History    []*models.SlotHistory    `json:"history"`
	Claims     []*models.ClaimSlot      `json:"claim_slots"`
	Warnings   []*models.Warning        `json:"warnings"`
	Strikes    []*models.StrikeCounter  `json:"strikes"`
	Blacklist  []*models.BlacklistEntry `json:"blacklist"`
	FreeUsed   []*models.UsedFreeSlot   `json:"used_free_slots"`
	Cooldowns  []*models.SlotCooldown   `json:"cooldowns"`
	Reminders  []*models.ReminderOptIn  `json:"reminders"`
	Weekend    []*models.WeekendState   `json:"weekend"`
	Verify     []*models.VerifyMessage  `json:"verify_messages"`
	AuditTrail []*models.AuditEntry     `json:"audit_log"`
}

type BackupRepository struct {
	*BaseRepository
}

func NewBackupRepository(db bun.IDB) *BackupRepository {
	return &BackupRepository{BaseRepository: NewBaseRepository(db)}
}

// Snapshot reads every guild table concurrently.
func (r *BackupRepository) Snapshot(ctx context.Context, guildID string) (*GuildSnapshot, error) {
	snap := &GuildSnapshot{GuildID: guildID, TakenAt: time.Now().UTC()}

	byGuild := map[string]interface{}{
		"guild_config":   &snap.Config,
		"slot":           &snap.Slots,
		"slot_history":   &snap.History,
		"claim_slot":     &snap.Claims,
		"warning":        &snap.Warnings,
		"strike":         &snap.Strikes,
		"blacklist":      &snap.Blacklist,
		"used_free_slot": &snap.FreeUsed,
		"slot_cooldown":  &snap.Cooldowns,
		"reminder_optin": &snap.Reminders,
		"weekend_state":  &snap.Weekend,
		"verify_message": &snap.Verify,
		"audit_entry":    &snap.AuditTrail,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for entity, dest := range byGuild {
		g.Go(func() error {
			return r.SelectWithTimeout(gctx, "snapshot", entity, func(ctx context.Context) error {
				return r.db.NewSelect().Model(dest).Where("guild_id = ?", guildID).Scan(ctx)
			})
		})
	}
	g.Go(func() error {
		return r.SelectWithTimeout(gctx, "snapshot", "slot_talker", func(ctx context.Context) error {
			return r.db.NewSelect().
				Model(&snap.Talkers).
				Where("channel_id IN (?)", r.db.NewSelect().
					Model((*models.Slot)(nil)).
					Column("channel_id").
					Where("guild_id = ?", guildID)).
				Scan(ctx)
		})
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}

func (r *BackupRepository) Record(ctx context.Context, backup *models.Backup) error {
	_, err := r.ExecWithTimeout(ctx, "insert", "backup", func(ctx context.Context) (sql.Result, error) {
		return r.db.NewInsert().Model(backup).Exec(ctx)
	})
	return err
}

func (r *BackupRepository) List(ctx context.Context, guildID string, limit int) ([]*models.Backup, error) {
	var backups []*models.Backup
	err := r.SelectWithTimeout(ctx, "list", "backup", func(ctx context.Context) error {
		return r.db.NewSelect().Model(&backups).Where("guild_id = ?", guildID).Order("created_at DESC").Limit(limit).Scan(ctx)
	})
	return backups, err
}
