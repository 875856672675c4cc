package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/slotkeeper/slotbot/slotbot/config"
	"github.com/slotkeeper/slotbot/slotbot/database/models"
	"github.com/slotkeeper/slotbot/slotbot/database/repositories"
)

type BackupStore interface {
	Snapshot(ctx context.Context, guildID string) (*repositories.GuildSnapshot, error)
	Record(ctx context.Context, backup *models.Backup) error
	List(ctx context.Context, guildID string, limit int) ([]*models.Backup, error)
}

type ObjectStore interface {
	Key(name string) string
	Upload(ctx context.Context, key string, body []byte, contentType string) error
}

type BackupService struct {
	store   BackupStore
	objects ObjectStore
	now     func() time.Time
}

func NewBackupService(store BackupStore, objects ObjectStore) *BackupService {
	return &BackupService{store: store, objects: objects, now: time.Now}
}

// Create exports every row of the guild as one JSON document and uploads it.
func (s *BackupService) Create(ctx context.Context, guildID, actorID string) (*models.Backup, error) {
	ctx, cancel := context.WithTimeout(ctx, config.BackupTimeout)
	defer cancel()

	snap, err := s.store.Snapshot(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot guild: %w", err)
	}
	body, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode backup: %w", err)
	}

	now := s.now().UTC()
	backup := &models.Backup{
		ID:        uuid.NewString(),
		GuildID:   guildID,
		Bytes:     int64(len(body)),
		CreatedBy: actorID,
		CreatedAt: now,
	}
	backup.ObjectKey = s.objects.Key(fmt.Sprintf("backups/%s/%s-%s.json", guildID, now.Format("20060102T150405Z"), backup.ID))

	if err := s.objects.Upload(ctx, backup.ObjectKey, body, "application/json"); err != nil {
		return nil, err
	}
	if err := s.store.Record(ctx, backup); err != nil {
		return nil, fmt.Errorf("backup uploaded but not recorded: %w", err)
	}

	slog.Info("Backup created",
		slog.String("type", "sys"),
		slog.String("guild_id", guildID),
		slog.String("key", backup.ObjectKey),
		slog.Int64("bytes", backup.Bytes),
		slog.Int("slots", len(snap.Slots)),
	)
	return backup, nil
}

func (s *BackupService) List(ctx context.Context, guildID string, limit int) ([]*models.Backup, error) {
	return s.store.List(ctx, guildID, limit)
}
