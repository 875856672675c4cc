package slots

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/slotkeeper/slotbot/slotbot/config"
	"github.com/slotkeeper/slotbot/slotbot/database/models"
	"golang.org/x/sync/semaphore"
)

type Options struct {
	CategoryName    string
	MemberRoleID    string
	NewbieRoleID    string
	VerifyChannelID string
	WeekendDays     int
	ConfigCacheSize int
	Now             func() time.Time
}

// Engine owns every slot state transition. Mutating operations run one at a
// time; methods taking a DataManager argument expect the caller to hold the lock.
type Engine struct {
	dm       DataManager
	gateway  Gateway
	notifier Notifier
	opts     Options
	configs  *lru.Cache
	sem      *semaphore.Weighted
	now      func() time.Time
}

func NewEngine(dm DataManager, gateway Gateway, notifier Notifier, opts Options) (*Engine, error) {
	if opts.CategoryName == "" {
		opts.CategoryName = config.DefaultSlotCategory
	}
	if opts.WeekendDays <= 0 {
		opts.WeekendDays = 3
	}
	if opts.ConfigCacheSize <= 0 {
		opts.ConfigCacheSize = config.GuildConfigCacheSize
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	cache, err := lru.New(opts.ConfigCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create config cache: %w", err)
	}

	return &Engine{
		dm:       dm,
		gateway:  gateway,
		notifier: notifier,
		opts:     opts,
		configs:  cache,
		sem:      semaphore.NewWeighted(1),
		now:      opts.Now,
	}, nil
}

func (e *Engine) Now() time.Time {
	return e.now()
}

func (e *Engine) exclusive(ctx context.Context, fn func() error) error {
	if err := e.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer e.sem.Release(1)
	return fn()
}

// RequireStaff fails with ErrNotPermitted unless the actor is an admin or the
// server owner.
func RequireStaff(actor Actor) error {
	if !actor.Staff {
		return fmt.Errorf("%w: only admins and the server owner can do that", ErrNotPermitted)
	}
	return nil
}

// bestEffort logs a failed gateway side effect and carries on.
func bestEffort(err error, op string, attrs ...any) {
	if err == nil {
		return
	}
	base := []any{
		slog.String("component", "gateway"),
		slog.String("op", op),
		slog.Any("error", err),
	}
	slog.Warn("Gateway call failed", append(base, attrs...)...)
}

func (e *Engine) defaultConfig(guildID string) *models.GuildConfig {
	return &models.GuildConfig{
		GuildID:                  guildID,
		DefaultDurationDays:      config.DefaultTimedSlotDays,
		ActivityMessageThreshold: config.DefaultActivityMessages,
		SlotCategoryName:         e.opts.CategoryName,
		MemberRoleID:             e.opts.MemberRoleID,
		NewbieRoleID:             e.opts.NewbieRoleID,
		VerifyChannelID:          e.opts.VerifyChannelID,
	}
}

// Config returns the community configuration, falling back to defaults for
// communities that never ran /config set.
func (e *Engine) Config(ctx context.Context, guildID string) (*models.GuildConfig, error) {
	if cached, ok := e.configs.Get(guildID); ok {
		cfg := *cached.(*models.GuildConfig)
		return &cfg, nil
	}

	cfg, err := e.dm.Guilds().Config(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to load guild config: %w", err)
	}
	if cfg == nil {
		cfg = e.defaultConfig(guildID)
	}
	e.configs.Add(guildID, cfg)

	out := *cfg
	return &out, nil
}

func (e *Engine) audit(ctx context.Context, dm DataManager, actor Actor, guildID, action, targetID, channelID, details string) error {
	return dm.Audit().Append(ctx, &models.AuditEntry{
		GuildID:   guildID,
		ActorID:   actor.ID,
		Action:    action,
		TargetID:  targetID,
		ChannelID: channelID,
		Details:   details,
		CreatedAt: e.now(),
	})
}

// announce mirrors an action into the community's log channel when one is set.
func (e *Engine) announce(ctx context.Context, guildID, text string) {
	cfg, err := e.Config(ctx, guildID)
	if err != nil || cfg.LogChannelID == "" {
		return
	}
	bestEffort(e.gateway.SendMessage(ctx, cfg.LogChannelID, text), "announce", slog.String("guild_id", guildID))
}

func (e *Engine) Create(ctx context.Context, actor Actor, req CreateRequest) (*models.Slot, error) {
	if err := RequireStaff(actor); err != nil {
		return nil, err
	}

	var slot *models.Slot
	err := e.exclusive(ctx, func() error {
		var err error
		slot, err = e.create(ctx, actor, req)
		return err
	})
	return slot, err
}

func (e *Engine) expiryFor(req CreateRequest, cfg *models.GuildConfig, now time.Time) (*time.Time, error) {
	var d time.Duration
	switch req.Category {
	case models.CategoryPermanent, models.CategoryOwner, models.CategoryAdmin:
		return nil, nil
	case models.CategoryFree:
		days := cfg.DefaultDurationDays
		if days <= 0 {
			days = config.DefaultTimedSlotDays
		}
		d = time.Duration(days) * 24 * time.Hour
	case models.CategoryWeek:
		if req.Units < 1 {
			return nil, fmt.Errorf("%w: weeks must be at least 1", ErrInvalidArgument)
		}
		d = time.Duration(req.Units) * config.WeekDuration
	case models.CategoryMonth:
		if req.Units < 1 {
			return nil, fmt.Errorf("%w: months must be at least 1", ErrInvalidArgument)
		}
		d = time.Duration(req.Units) * config.MonthDuration
	case models.CategoryWeekend, models.CategoryClaimed:
		if req.Units < 1 {
			return nil, fmt.Errorf("%w: days must be at least 1", ErrInvalidArgument)
		}
		d = time.Duration(req.Units) * 24 * time.Hour
	default:
		return nil, fmt.Errorf("%w: unknown slot type %q", ErrInvalidArgument, req.Category)
	}
	at := now.Add(d)
	return &at, nil
}

// checkEligible runs the creation guards in a fixed order: blacklist, existing
// slot, free reuse, slot limit, cooldown.
func (e *Engine) checkEligible(ctx context.Context, req CreateRequest, cfg *models.GuildConfig, now time.Time) error {
	blacklisted, err := e.dm.Moderation().IsBlacklisted(ctx, req.GuildID, req.UserID)
	if err != nil {
		return fmt.Errorf("failed to check blacklist: %w", err)
	}
	if blacklisted {
		return fmt.Errorf("%w: %s is blacklisted from slots", ErrBlacklisted, req.UserName)
	}

	existing, err := e.dm.Slots().GetByUser(ctx, req.GuildID, req.UserID)
	if err != nil {
		return fmt.Errorf("failed to check existing slot: %w", err)
	}
	if existing != nil {
		return fmt.Errorf("%w: %s already has a slot in <#%s>", ErrAlreadyUsed, req.UserName, existing.ChannelID)
	}

	if req.Category == models.CategoryFree {
		used, err := e.dm.Moderation().FreeUsed(ctx, req.GuildID, req.UserID)
		if err != nil {
			return fmt.Errorf("failed to check free slot usage: %w", err)
		}
		if used {
			return fmt.Errorf("%w: %s has already used their free slot", ErrAlreadyUsed, req.UserName)
		}
	}

	// staff slots are provisioned automatically and ignore limit and cooldown
	if req.Category.Staff() {
		return nil
	}

	// claim slots already exist before anyone claims them
	if cfg.SlotLimit > 0 && req.Category != models.CategoryClaimed {
		count, err := e.dm.Slots().CountByGuild(ctx, req.GuildID)
		if err != nil {
			return fmt.Errorf("failed to count slots: %w", err)
		}
		if count >= cfg.SlotLimit {
			return fmt.Errorf("%w: this server already has %d/%d slots", ErrLimitReached, count, cfg.SlotLimit)
		}
	}

	until, err := e.dm.Cooldowns().Until(ctx, req.GuildID, req.UserID)
	if err != nil {
		return fmt.Errorf("failed to check cooldown: %w", err)
	}
	if now.Before(until) {
		return fmt.Errorf("%w: %s can open a new slot <t:%d:R>", ErrOnCooldown, req.UserName, until.Unix())
	}
	return nil
}

func (e *Engine) slotOverwrites(guildID, ownerID string) []Overwrite {
	return []Overwrite{
		// the @everyone role shares the guild id
		{EntityID: guildID, Kind: OverwriteRole, Deny: PermView | PermSend},
		{EntityID: ownerID, Kind: OverwriteMember, Allow: ownerPerms},
		{EntityID: e.gateway.BotID(), Kind: OverwriteMember, Allow: botPerms},
	}
}

func (e *Engine) create(ctx context.Context, actor Actor, req CreateRequest) (*models.Slot, error) {
	if !req.Category.Valid() {
		return nil, fmt.Errorf("%w: unknown slot type %q", ErrInvalidArgument, req.Category)
	}
	if req.GuildID == "" || req.UserID == "" {
		return nil, fmt.Errorf("%w: missing community or user", ErrInvalidArgument)
	}

	cfg, err := e.Config(ctx, req.GuildID)
	if err != nil {
		return nil, err
	}

	now := e.now()
	expiresAt, err := e.expiryFor(req, cfg, now)
	if err != nil {
		return nil, err
	}
	if err := e.checkEligible(ctx, req, cfg, now); err != nil {
		return nil, err
	}

	parentID, err := e.gateway.EnsureCategory(ctx, req.GuildID, cfg.SlotCategoryName)
	if err != nil {
		return nil, fmt.Errorf("%w: could not find or create the slot category: %v", ErrExternalFailure, err)
	}

	emoji := req.Category.Emoji()
	name := ChannelName(emoji, req.UserName, ComputeExpiryLabel(expiresAt, now))
	channelID, err := e.gateway.CreateChannel(ctx, req.GuildID, name, parentID, e.slotOverwrites(req.GuildID, req.UserID))
	if err != nil {
		return nil, fmt.Errorf("%w: could not create the slot channel: %v", ErrExternalFailure, err)
	}

	slot := &models.Slot{
		ChannelID:         channelID,
		GuildID:           req.GuildID,
		UserID:            req.UserID,
		OwnerName:         req.UserName,
		Category:          req.Category,
		Emoji:             emoji,
		ChannelName:       name,
		ExpiresAt:         expiresAt,
		UnlimitedMentions: req.Category.Staff(),
		TalkLimit:         cfg.DefaultTalkLimit,
		LastActivityAt:    now,
		CreatedBy:         actor.ID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	err = e.dm.WithTransaction(ctx, func(dm DataManager) error {
		if err := dm.Slots().Insert(ctx, slot); err != nil {
			return err
		}
		if err := dm.History().Open(ctx, &models.SlotHistory{
			GuildID:   slot.GuildID,
			UserID:    slot.UserID,
			ChannelID: slot.ChannelID,
			Category:  slot.Category,
			OpenedAt:  now,
		}); err != nil {
			return err
		}
		if slot.Category == models.CategoryFree {
			if err := dm.Moderation().MarkFreeUsed(ctx, slot.GuildID, slot.UserID, now); err != nil {
				return err
			}
		}
		return e.audit(ctx, dm, actor, slot.GuildID, "slot.create", slot.UserID, slot.ChannelID, string(slot.Category))
	})
	if err != nil {
		bestEffort(e.gateway.DeleteChannel(ctx, channelID), "delete orphaned channel", slog.String("channel_id", channelID))
		return nil, fmt.Errorf("failed to save slot: %w", err)
	}

	bestEffort(e.gateway.SendMessage(ctx, channelID, welcomeMessage(slot, req.Units)), "welcome message", slog.String("channel_id", channelID))
	e.announce(ctx, slot.GuildID, fmt.Sprintf("📥 %s slot opened for <@%s> in <#%s> by <@%s>", slot.Category, slot.UserID, slot.ChannelID, actor.ID))

	slog.Info("Slot created",
		slog.String("type", "sys"),
		slog.String("guild_id", slot.GuildID),
		slog.String("user_id", slot.UserID),
		slog.String("channel_id", slot.ChannelID),
		slog.String("category", string(slot.Category)),
	)
	return slot, nil
}

func welcomeMessage(slot *models.Slot, units int) string {
	var lasts string
	switch slot.Category {
	case models.CategoryWeek:
		lasts = fmt.Sprintf("⏳ This slot lasts **%s**.", plural(units, "week"))
	case models.CategoryMonth:
		lasts = fmt.Sprintf("⏳ This slot lasts **%s**.", plural(units, "month"))
	case models.CategoryPermanent, models.CategoryOwner, models.CategoryAdmin:
		lasts = "♾️ This slot never expires."
	default:
		if slot.ExpiresAt != nil {
			days := int(slot.ExpiresAt.Sub(slot.CreatedAt).Round(time.Hour).Hours() / 24)
			lasts = fmt.Sprintf("⏳ This slot lasts **%s**.", plural(days, "day"))
		}
	}

	mentions := "📢 You have **1x `@here`** and **1x `@everyone`** to use."
	if slot.UnlimitedMentions {
		mentions = "📢 Your `@here` and `@everyone` mentions are unlimited."
	}

	return fmt.Sprintf("%s Welcome to your slot, <@%s>!\n\n%s\n%s\n👥 Use `/talk add` to invite people to chat here.",
		slot.Emoji, slot.UserID, lasts, mentions)
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// Destroy removes a slot on staff request.
func (e *Engine) Destroy(ctx context.Context, actor Actor, channelID, reason string) error {
	if err := RequireStaff(actor); err != nil {
		return err
	}
	if reason == "" {
		reason = "removed by staff"
	}
	return e.exclusive(ctx, func() error {
		slot, err := e.dm.Slots().Get(ctx, channelID)
		if err != nil {
			return fmt.Errorf("failed to load slot: %w", err)
		}
		if slot == nil {
			return fmt.Errorf("%w: <#%s> is not a slot", ErrNotFound, channelID)
		}
		return e.destroy(ctx, actor, slot, reason)
	})
}

// DestroyUserSlot removes the active slot of a user, if any.
func (e *Engine) DestroyUserSlot(ctx context.Context, actor Actor, guildID, userID, reason string) error {
	if err := RequireStaff(actor); err != nil {
		return err
	}
	return e.exclusive(ctx, func() error {
		slot, err := e.dm.Slots().GetByUser(ctx, guildID, userID)
		if err != nil {
			return fmt.Errorf("failed to load slot: %w", err)
		}
		if slot == nil {
			return fmt.Errorf("%w: <@%s> has no slot", ErrNotFound, userID)
		}
		return e.destroy(ctx, actor, slot, reason)
	})
}

func (e *Engine) destroy(ctx context.Context, actor Actor, slot *models.Slot, reason string) error {
	if slot.Category == models.CategoryClaimed {
		claim, err := e.dm.Claims().Get(ctx, slot.ChannelID)
		if err != nil {
			return fmt.Errorf("failed to load claim slot: %w", err)
		}
		if claim != nil {
			return e.releaseClaim(ctx, actor, claim, slot, reason)
		}
	}

	cfg, err := e.Config(ctx, slot.GuildID)
	if err != nil {
		return err
	}

	now := e.now()
	err = e.dm.WithTransaction(ctx, func(dm DataManager) error {
		if _, err := dm.Slots().Delete(ctx, slot.ChannelID); err != nil {
			return err
		}
		if err := dm.Talkers().DeleteAll(ctx, slot.ChannelID); err != nil {
			return err
		}
		if err := dm.History().Close(ctx, slot.ChannelID, now, reason); err != nil {
			return err
		}
		return e.audit(ctx, dm, actor, slot.GuildID, "slot.destroy", slot.UserID, slot.ChannelID, reason)
	})
	if err != nil {
		return fmt.Errorf("failed to remove slot: %w", err)
	}

	// weekend slots close in bulk and never gate the next create
	if cfg.CooldownMinutes > 0 && slot.Category != models.CategoryWeekend {
		until := now.Add(time.Duration(cfg.CooldownMinutes) * time.Minute)
		if err := e.dm.Cooldowns().Start(ctx, slot.GuildID, slot.UserID, until); err != nil {
			slog.Error("Failed to start cooldown",
				slog.String("type", "db"),
				slog.String("guild_id", slot.GuildID),
				slog.String("user_id", slot.UserID),
				slog.Any("error", err),
			)
		}
	}

	bestEffort(e.gateway.DeleteChannel(ctx, slot.ChannelID), "delete channel", slog.String("channel_id", slot.ChannelID))
	e.announce(ctx, slot.GuildID, fmt.Sprintf("📤 Slot of <@%s> removed (%s)", slot.UserID, reason))

	slog.Info("Slot destroyed",
		slog.String("type", "sys"),
		slog.String("guild_id", slot.GuildID),
		slog.String("user_id", slot.UserID),
		slog.String("channel_id", slot.ChannelID),
		slog.String("reason", reason),
	)
	return nil
}

func (e *Engine) loadSlot(ctx context.Context, channelID string) (*models.Slot, error) {
	slot, err := e.dm.Slots().Get(ctx, channelID)
	if err != nil {
		return nil, fmt.Errorf("failed to load slot: %w", err)
	}
	if slot == nil {
		return nil, fmt.Errorf("%w: <#%s> is not a slot", ErrNotFound, channelID)
	}
	return slot, nil
}
