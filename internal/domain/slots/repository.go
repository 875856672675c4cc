package slots

import (
	"context"
	"time"

	"github.com/slotkeeper/slotbot/slotbot/database/models"
)

// Repositories return (nil, nil) when a row does not exist.

type DataManager interface {
	WithTransaction(ctx context.Context, fn func(dm DataManager) error) error
	Slots() SlotRepo
	Talkers() TalkerRepo
	History() HistoryRepo
	Claims() ClaimSlotRepo
	Moderation() ModerationRepo
	Guilds() GuildRepo
	Cooldowns() CooldownRepo
	Audit() AuditRepo
}

type SlotRepo interface {
	Insert(ctx context.Context, slot *models.Slot) error
	Update(ctx context.Context, slot *models.Slot) error
	Delete(ctx context.Context, channelID string) (bool, error)
	Get(ctx context.Context, channelID string) (*models.Slot, error)
	GetByUser(ctx context.Context, guildID, userID string) (*models.Slot, error)
	ListByGuild(ctx context.Context, guildID string) ([]*models.Slot, error)
	ListAll(ctx context.Context) ([]*models.Slot, error)
	CountByGuild(ctx context.Context, guildID string) (int, error)
	// ClaimMention flips the used flag for kind and reports whether this call flipped it.
	ClaimMention(ctx context.Context, channelID string, kind models.MentionKind) (bool, error)
	ResetMentions(ctx context.Context, channelID string) error
}

type TalkerRepo interface {
	Add(ctx context.Context, channelID, userID string) (bool, error)
	Remove(ctx context.Context, channelID, userID string) (bool, error)
	List(ctx context.Context, channelID string) ([]string, error)
	Count(ctx context.Context, channelID string) (int, error)
	DeleteAll(ctx context.Context, channelID string) error
}

type HistoryRepo interface {
	Open(ctx context.Context, entry *models.SlotHistory) error
	// Close stamps the open entry of a channel. Closed entries are never touched.
	Close(ctx context.Context, channelID string, closedAt time.Time, reason string) error
	ListByUser(ctx context.Context, guildID, userID string) ([]*models.SlotHistory, error)
	ListByGuild(ctx context.Context, guildID string) ([]*models.SlotHistory, error)
}

type ClaimSlotRepo interface {
	Insert(ctx context.Context, claim *models.ClaimSlot) error
	Get(ctx context.Context, channelID string) (*models.ClaimSlot, error)
	ListByGuild(ctx context.Context, guildID string) ([]*models.ClaimSlot, error)
	// TryClaim only succeeds while claimed_by is null.
	TryClaim(ctx context.Context, channelID, userID string, claimedAt, expiresAt time.Time) (bool, error)
	Release(ctx context.Context, channelID string) error
	UpdateExpiry(ctx context.Context, channelID string, expiresAt *time.Time) error
	ListExpired(ctx context.Context, now time.Time) ([]*models.ClaimSlot, error)
}

type ModerationRepo interface {
	AddWarning(ctx context.Context, warning *models.Warning) error
	ListWarnings(ctx context.Context, guildID, userID string) ([]*models.Warning, error)
	IncrementStrikes(ctx context.Context, guildID, userID string) (int, error)
	ResetStrikes(ctx context.Context, guildID, userID string) error
	Strikes(ctx context.Context, guildID, userID string) (int, error)
	AddBlacklist(ctx context.Context, entry *models.BlacklistEntry) (bool, error)
	RemoveBlacklist(ctx context.Context, guildID, userID string) (bool, error)
	IsBlacklisted(ctx context.Context, guildID, userID string) (bool, error)
	ListBlacklist(ctx context.Context, guildID string) ([]*models.BlacklistEntry, error)
	MarkFreeUsed(ctx context.Context, guildID, userID string, at time.Time) error
	FreeUsed(ctx context.Context, guildID, userID string) (bool, error)
	SetReminder(ctx context.Context, guildID, userID string, on bool) error
	ReminderOptedIn(ctx context.Context, guildID, userID string) (bool, error)
}

type GuildRepo interface {
	Config(ctx context.Context, guildID string) (*models.GuildConfig, error)
	SaveConfig(ctx context.Context, cfg *models.GuildConfig) error
	ListConfigs(ctx context.Context) ([]*models.GuildConfig, error)
	WeekendState(ctx context.Context, guildID string) (*models.WeekendState, error)
	SaveWeekendState(ctx context.Context, state *models.WeekendState) error
	VerifyMessage(ctx context.Context, guildID string) (*models.VerifyMessage, error)
	SaveVerifyMessage(ctx context.Context, msg *models.VerifyMessage) error
}

type CooldownRepo interface {
	Start(ctx context.Context, guildID, userID string, until time.Time) error
	// Until returns the zero time when no cooldown is recorded.
	Until(ctx context.Context, guildID, userID string) (time.Time, error)
}

type AuditRepo interface {
	Append(ctx context.Context, entry *models.AuditEntry) error
	List(ctx context.Context, guildID string, limit int) ([]*models.AuditEntry, error)
}
