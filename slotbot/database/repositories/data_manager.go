package repositories

import (
	"context"

	"github.com/slotkeeper/slotbot/internal/domain/slots"
	"github.com/uptrace/bun"
)

// DataManager hands out repositories bound to the pool or, inside
// WithTransaction, to the open transaction.
type DataManager struct {
	db        *bun.DB
	idb       bun.IDB
	inTx      bool
	cooldowns slots.CooldownRepo
}

var _ slots.DataManager = (*DataManager)(nil)

func NewDataManager(db *bun.DB) *DataManager {
	return &DataManager{db: db, idb: db}
}

// WithCooldowns swaps the postgres cooldown table for another store such as redis.
func (m *DataManager) WithCooldowns(repo slots.CooldownRepo) *DataManager {
	m.cooldowns = repo
	return m
}

func (m *DataManager) WithTransaction(ctx context.Context, fn func(dm slots.DataManager) error) error {
	if m.inTx {
		return fn(m)
	}
	return m.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return fn(&DataManager{db: m.db, idb: tx, inTx: true, cooldowns: m.cooldowns})
	})
}

func (m *DataManager) Slots() slots.SlotRepo { return NewSlotRepository(m.idb) }
func (m *DataManager) Talkers() slots.TalkerRepo { return NewTalkerRepository(m.idb) }
func (m *DataManager) History() slots.HistoryRepo { return NewHistoryRepository(m.idb) }
func (m *DataManager) Claims() slots.ClaimSlotRepo { return NewClaimSlotRepository(m.idb) }
func (m *DataManager) Moderation() slots.ModerationRepo { return NewModerationRepository(m.idb) }
func (m *DataManager) Guilds() slots.GuildRepo { return NewGuildRepository(m.idb) }
func (m *DataManager) Audit() slots.AuditRepo { return NewAuditRepository(m.idb) }

func (m *DataManager) Cooldowns() slots.CooldownRepo {
	if m.cooldowns != nil {
		return m.cooldowns
	}
	return NewCooldownRepository(m.idb)
}

func (m *DataManager) Backups() *BackupRepository {
	return NewBackupRepository(m.idb)
}
