package migration

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/slotkeeper/slotbot/slotbot/database/repositories"
	"github.com/uptrace/bun"
)

const defaultBatchSize = 500

type Migrator struct {
	db        *bun.DB
	path      string
	batchSize int
	now       func() time.Time
}

func NewMigrator(db *bun.DB, legacyPath string) *Migrator {
	return &Migrator{
		db:        db,
		path:      legacyPath,
		batchSize: defaultBatchSize,
		now:       time.Now,
	}
}

// SetBatchSize overrides the default batch size for inserts
func (m *Migrator) SetBatchSize(size int) {
	if size > 0 {
		m.batchSize = size
	}
}

// MigrateAll reads the legacy database and writes it in a single transaction.
// Rows that already exist are left untouched.
func (m *Migrator) MigrateAll(ctx context.Context) (*Stats, error) {
	stats := &Stats{StartTime: m.now()}
	logProgress(fmt.Sprintf("Reading legacy database %s", m.path))

	data, err := ReadLegacy(ctx, m.path)
	if err != nil {
		return nil, err
	}

	records, skipped := Convert(data, stats.StartTime.UTC())
	stats.Skipped = skipped
	for _, s := range skipped {
		slog.Warn("Skipped legacy record",
			slog.String("service", "SlotBot Migration"),
			slog.String("table", s.Table),
			slog.String("key", s.Key),
			slog.String("reason", s.Reason),
		)
	}

	err = m.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		repo := repositories.NewBaseRepository(tx)

		if err := insertBatches(ctx, repo, "slot", records.Slots, m.batchSize); err != nil {
			return err
		}
		if err := insertBatches(ctx, repo, "slot_talker", records.Talkers, m.batchSize); err != nil {
			return err
		}
		if err := insertBatches(ctx, repo, "used_free_slot", records.UsedFreeSlots, m.batchSize); err != nil {
			return err
		}
		return insertBatches(ctx, repo, "verify_message", records.VerifyMessages, m.batchSize)
	})
	if err != nil {
		return nil, fmt.Errorf("import failed: %w", err)
	}

	stats.Slots = len(records.Slots)
	stats.Talkers = len(records.Talkers)
	stats.FreeSlots = len(records.UsedFreeSlots)
	stats.Verify = len(records.VerifyMessages)
	stats.EndTime = m.now()

	logProgress(fmt.Sprintf("Imported %d slots, %d talkers, %d used free slots, %d verify panels (%d skipped) in %s",
		stats.Slots, stats.Talkers, stats.FreeSlots, stats.Verify, len(stats.Skipped),
		stats.EndTime.Sub(stats.StartTime).Round(time.Millisecond)))
	return stats, nil
}

func insertBatches[T any](ctx context.Context, repo *repositories.BaseRepository, entity string, items []T, size int) error {
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		batch := items[start:end]
		if err := repo.BatchInsert(ctx, entity, &batch); err != nil {
			return fmt.Errorf("failed to import %s batch %d-%d: %w", entity, start, end, err)
		}
	}
	return nil
}

func logProgress(message string) {
	slog.Info(message, "service", "SlotBot Migration")
}
