package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/slotkeeper/slotbot/slotbot/database/models"
	"github.com/uptrace/bun"
)

type ClaimSlotRepository struct {
	*BaseRepository
}

func NewClaimSlotRepository(db bun.IDB) *ClaimSlotRepository {
	return &ClaimSlotRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *ClaimSlotRepository) Insert(ctx context.Context, claim *models.ClaimSlot) error {
	_, err := r.ExecWithTimeout(ctx, "insert", "claim_slot", func(ctx context.Context) (sql.Result, error) {
		return r.db.NewInsert().Model(claim).Exec(ctx)
	})
	return err
}

func (r *ClaimSlotRepository) Get(ctx context.Context, channelID string) (*models.ClaimSlot, error) {
	claim := new(models.ClaimSlot)
	err := r.SelectOneWithTimeout(ctx, "get", "claim_slot", channelID, func(ctx context.Context) error {
		return r.db.NewSelect().Model(claim).Where("channel_id = ?", channelID).Scan(ctx)
	})
	if IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return claim, nil
}

func (r *ClaimSlotRepository) ListByGuild(ctx context.Context, guildID string) ([]*models.ClaimSlot, error) {
	var claims []*models.ClaimSlot
	err := r.SelectWithTimeout(ctx, "list", "claim_slot", func(ctx context.Context) error {
		return r.db.NewSelect().Model(&claims).Where("guild_id = ?", guildID).Order("label ASC").Scan(ctx)
	})
	return claims, err
}

// TryClaim is a compare-and-set on claimed_by so only one member wins a race.
func (r *ClaimSlotRepository) TryClaim(ctx context.Context, channelID, userID string, claimedAt, expiresAt time.Time) (bool, error) {
	return r.ExecAffected(ctx, "claim", "claim_slot", func(ctx context.Context) (sql.Result, error) {
		return r.db.NewUpdate().
			Model((*models.ClaimSlot)(nil)).
			Set("claimed_by = ?", userID).
			Set("claimed_at = ?", claimedAt).
			Set("expires_at = ?", expiresAt).
			Where("channel_id = ?", channelID).
			Where("claimed_by IS NULL").
			Exec(ctx)
	})
}

func (r *ClaimSlotRepository) Release(ctx context.Context, channelID string) error {
	_, err := r.ExecWithTimeout(ctx, "release", "claim_slot", func(ctx context.Context) (sql.Result, error) {
		return r.db.NewUpdate().
			Model((*models.ClaimSlot)(nil)).
			Set("claimed_by = NULL").
			Set("claimed_at = NULL").
			Set("expires_at = NULL").
			Where("channel_id = ?", channelID).
			Exec(ctx)
	})
	return err
}

func (r *ClaimSlotRepository) UpdateExpiry(ctx context.Context, channelID string, expiresAt *time.Time) error {
	_, err := r.ExecWithTimeout(ctx, "update_expiry", "claim_slot", func(ctx context.Context) (sql.Result, error) {
		return r.db.NewUpdate().
			Model((*models.ClaimSlot)(nil)).
			Set("expires_at = ?", expiresAt).
			Where("channel_id = ?", channelID).
			Exec(ctx)
	})
	return err
}

func (r *ClaimSlotRepository) ListExpired(ctx context.Context, now time.Time) ([]*models.ClaimSlot, error) {
	var claims []*models.ClaimSlot
	err := r.SelectWithTimeout(ctx, "list_expired", "claim_slot", func(ctx context.Context) error {
		return r.db.NewSelect().
			Model(&claims).
			Where("claimed_by IS NOT NULL").
			Where("expires_at <= ?", now).
			Scan(ctx)
	})
	return claims, err
}
