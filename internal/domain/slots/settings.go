package slots

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/slotkeeper/slotbot/slotbot/config"
	"github.com/slotkeeper/slotbot/slotbot/database/models"
)

type configField struct {
	key  string
	help string
	get  func(cfg *models.GuildConfig) string
	set  func(cfg *models.GuildConfig, raw string) error
}

func intField(key, help string, minValue int, ptr func(cfg *models.GuildConfig) *int) configField {
	return configField{
		key:  key,
		help: help,
		get:  func(cfg *models.GuildConfig) string { return strconv.Itoa(*ptr(cfg)) },
		set: func(cfg *models.GuildConfig, raw string) error {
			n, err := strconv.Atoi(strings.TrimSpace(raw))
			if err != nil || n < minValue {
				return fmt.Errorf("%w: %s must be a whole number of at least %d", ErrInvalidArgument, key, minValue)
			}
			*ptr(cfg) = n
			return nil
		},
	}
}

func boolField(key, help string, ptr func(cfg *models.GuildConfig) *bool) configField {
	return configField{
		key:  key,
		help: help,
		get:  func(cfg *models.GuildConfig) string { return strconv.FormatBool(*ptr(cfg)) },
		set: func(cfg *models.GuildConfig, raw string) error {
			switch strings.ToLower(strings.TrimSpace(raw)) {
			case "true", "on", "yes", "1":
				*ptr(cfg) = true
			case "false", "off", "no", "0":
				*ptr(cfg) = false
			default:
				return fmt.Errorf("%w: %s must be on or off", ErrInvalidArgument, key)
			}
			return nil
		},
	}
}

// idField accepts a raw snowflake or a mention like <#123>, and "none" to clear it.
func idField(key, help string, ptr func(cfg *models.GuildConfig) *string) configField {
	return configField{
		key:  key,
		help: help,
		get: func(cfg *models.GuildConfig) string {
			if *ptr(cfg) == "" {
				return "none"
			}
			return *ptr(cfg)
		},
		set: func(cfg *models.GuildConfig, raw string) error {
			raw = strings.TrimSpace(raw)
			if strings.EqualFold(raw, "none") || raw == "" {
				*ptr(cfg) = ""
				return nil
			}
			id := strings.Trim(raw, "<#@&!>")
			if _, err := strconv.ParseUint(id, 10, 64); err != nil {
				return fmt.Errorf("%w: %s must be an id or a mention", ErrInvalidArgument, key)
			}
			*ptr(cfg) = id
			return nil
		},
	}
}

var configFields = []configField{
	intField("slot_limit", "Maximum number of slots in this server (0 = unlimited)", 0,
		func(c *models.GuildConfig) *int { return &c.SlotLimit }),
	intField("default_duration_days", "Length of a free slot in days", 1,
		func(c *models.GuildConfig) *int { return &c.DefaultDurationDays }),
	intField("cooldown_minutes", "Wait after a slot is removed before its owner can get a new one", 0,
		func(c *models.GuildConfig) *int { return &c.CooldownMinutes }),
	intField("inactivity_days", "Days without owner activity before a slot is locked (0 = never)", 0,
		func(c *models.GuildConfig) *int { return &c.InactivityDays }),
	intField("activity_message_threshold", "Owner messages needed to count as activity", 1,
		func(c *models.GuildConfig) *int { return &c.ActivityMessageThreshold }),
	boolField("talkers_inherit_permissions", "Give invited talkers the owner's attach and embed permissions",
		func(c *models.GuildConfig) *bool { return &c.TalkersInheritPermissions }),
	intField("default_talk_limit", "Talk limit given to new slots (0 = unlimited)", 0,
		func(c *models.GuildConfig) *int { return &c.DefaultTalkLimit }),
	{
		key:  "slot_category_name",
		help: "Name of the category new slot channels are created in",
		get:  func(c *models.GuildConfig) string { return c.SlotCategoryName },
		set: func(c *models.GuildConfig, raw string) error {
			raw = strings.TrimSpace(raw)
			if raw == "" || len(raw) > 100 {
				return fmt.Errorf("%w: slot_category_name must be 1 to 100 characters", ErrInvalidArgument)
			}
			c.SlotCategoryName = raw
			return nil
		},
	},
	idField("member_role_id", "Role granted by the verify button",
		func(c *models.GuildConfig) *string { return &c.MemberRoleID }),
	idField("newbie_role_id", "Role given to new members until they verify",
		func(c *models.GuildConfig) *string { return &c.NewbieRoleID }),
	idField("verify_channel_id", "Channel the verify panel is posted in",
		func(c *models.GuildConfig) *string { return &c.VerifyChannelID }),
	idField("log_channel_id", "Channel that receives slot audit lines",
		func(c *models.GuildConfig) *string { return &c.LogChannelID }),
	boolField("weekend_enabled", "Open and close the weekend event automatically",
		func(c *models.GuildConfig) *bool { return &c.WeekendEnabled }),
}

// ConfigKeys lists every key accepted by UpdateConfig.
func ConfigKeys() []string {
	keys := make([]string, len(configFields))
	for i, f := range configFields {
		keys[i] = f.key
	}
	return keys
}

type ConfigEntry struct {
	Key   string
	Value string
	Help  string
}

func DescribeConfig(cfg *models.GuildConfig) []ConfigEntry {
	entries := make([]ConfigEntry, len(configFields))
	for i, f := range configFields {
		entries[i] = ConfigEntry{Key: f.key, Value: f.get(cfg), Help: f.help}
	}
	return entries
}

func (e *Engine) UpdateConfig(ctx context.Context, actor Actor, guildID, key, value string) (*models.GuildConfig, error) {
	if err := RequireStaff(actor); err != nil {
		return nil, err
	}

	var field *configField
	for i := range configFields {
		if configFields[i].key == key {
			field = &configFields[i]
			break
		}
	}
	if field == nil {
		return nil, fmt.Errorf("%w: unknown setting %q", ErrInvalidArgument, key)
	}

	var out *models.GuildConfig
	err := e.exclusive(ctx, func() error {
		cfg, err := e.Config(ctx, guildID)
		if err != nil {
			return err
		}
		if err := field.set(cfg, value); err != nil {
			return err
		}
		cfg.UpdatedAt = e.now()

		err = e.dm.WithTransaction(ctx, func(dm DataManager) error {
			if err := dm.Guilds().SaveConfig(ctx, cfg); err != nil {
				return err
			}
			return e.audit(ctx, dm, actor, guildID, "config.set", "", "", key+"="+field.get(cfg))
		})
		if err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		e.configs.Remove(guildID)
		out = cfg
		return nil
	})
	return out, err
}

func (e *Engine) SetReminder(ctx context.Context, actor Actor, guildID string, on bool) error {
	if err := e.dm.Moderation().SetReminder(ctx, guildID, actor.ID, on); err != nil {
		return fmt.Errorf("failed to save reminder preference: %w", err)
	}
	return nil
}

// SendReminder is the sweep step for expiry reminders. A reminder goes out once
// per expiry when three days or less are left, so a missed tick is caught up
// on the next one.
func (e *Engine) SendReminder(ctx context.Context, channelID string) (bool, error) {
	var sent *models.Slot
	var label ExpiryLabel
	err := e.exclusive(ctx, func() error {
		slot, err := e.dm.Slots().Get(ctx, channelID)
		if err != nil {
			return fmt.Errorf("failed to load slot: %w", err)
		}
		if slot == nil || slot.ExpiresAt == nil || slot.ReminderSentAt != nil {
			return nil
		}
		now := e.now()
		label = ComputeExpiryLabel(slot.ExpiresAt, now)
		if label.Days == 0 || label.Days > config.ReminderDays {
			return nil
		}
		optedIn, err := e.dm.Moderation().ReminderOptedIn(ctx, slot.GuildID, slot.UserID)
		if err != nil {
			return fmt.Errorf("failed to check reminder opt-in: %w", err)
		}
		if !optedIn {
			return nil
		}

		slot.ReminderSentAt = &now
		if err := e.dm.Slots().Update(ctx, slot); err != nil {
			return fmt.Errorf("failed to mark reminder: %w", err)
		}
		sent = slot
		return nil
	})
	if err != nil || sent == nil {
		return false, err
	}

	e.notifier.DirectMessage(ctx, sent.UserID, fmt.Sprintf("⏳ Your slot <#%s> expires <t:%d:R> (%s).",
		sent.ChannelID, sent.ExpiresAt.Unix(), label))
	return true, nil
}

func (e *Engine) VerifyMessage(ctx context.Context, guildID string) (*models.VerifyMessage, error) {
	return e.dm.Guilds().VerifyMessage(ctx, guildID)
}

func (e *Engine) SaveVerifyMessage(ctx context.Context, msg *models.VerifyMessage) error {
	return e.dm.Guilds().SaveVerifyMessage(ctx, msg)
}

func (e *Engine) WeekendGuilds(ctx context.Context) ([]string, error) {
	configs, err := e.dm.Guilds().ListConfigs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list guild configs: %w", err)
	}
	var ids []string
	for _, cfg := range configs {
		if cfg.WeekendEnabled {
			ids = append(ids, cfg.GuildID)
		}
	}
	return ids, nil
}
