package handlers

import (
	"context"
	"log/slog"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/snowflake/v2"
	"github.com/slotkeeper/slotbot/internal/domain/slots"
	"github.com/slotkeeper/slotbot/slotbot"
	"github.com/slotkeeper/slotbot/slotbot/config"
	"github.com/slotkeeper/slotbot/slotbot/logger"
)

func guildID(id *snowflake.ID) string {
	if id == nil {
		return ""
	}
	return id.String()
}

// Listeners returns the gateway event listeners that feed the slot engine.
func Listeners(b *slotbot.Bot) []bot.EventListener {
	return []bot.EventListener{
		bot.NewListenerFunc(b.OnReady),
		bot.NewListenerFunc(OnGuildReady(b)),
		bot.NewListenerFunc(OnMessageCreate(b)),
		bot.NewListenerFunc(OnMemberJoin(b)),
	}
}

// OnMessageCreate counts owner activity and enforces the broadcast mention quota.
func OnMessageCreate(b *slotbot.Bot) func(*events.GuildMessageCreate) {
	return func(e *events.GuildMessageCreate) {
		if e.Message.Author.Bot || b.Engine == nil {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), config.GatewayCallTimeout)
		defer cancel()

		var guildName string
		if guild, ok := e.Guild(); ok {
			guildName = guild.Name
		}

		outcome, err := b.Engine.ProcessMessage(ctx, slots.MessageInfo{
			GuildID:   e.GuildID.String(),
			ChannelID: e.ChannelID.String(),
			MessageID: e.MessageID.String(),
			AuthorID:  e.Message.Author.ID.String(),
			GuildName: guildName,
			Content:   e.Message.Content,
		})
		if err != nil {
			logger.LogError("Failed to process slot message", err,
				slog.String("guild_id", e.GuildID.String()),
				slog.String("channel_id", e.ChannelID.String()),
			)
			return
		}
		if len(outcome.Violations) > 0 {
			slog.Debug("Mention violation handled",
				slog.String("type", "sys"),
				slog.String("channel_id", e.ChannelID.String()),
				slog.Bool("deleted", outcome.Deleted),
			)
		}
	}
}

// OnMemberJoin gives new members the newbie role until they verify.
func OnMemberJoin(b *slotbot.Bot) func(*events.GuildMemberJoin) {
	return func(e *events.GuildMemberJoin) {
		if e.Member.User.Bot || b.Engine == nil {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), config.GatewayCallTimeout)
		defer cancel()

		cfg, err := b.Engine.Config(ctx, e.GuildID.String())
		if err != nil {
			logger.LogError("Failed to load guild config", err, slog.String("guild_id", e.GuildID.String()))
			return
		}
		if cfg.NewbieRoleID == "" {
			return
		}
		if err := b.Gateway.AddRole(ctx, e.GuildID.String(), e.Member.User.ID.String(), cfg.NewbieRoleID); err != nil {
			slog.Warn("Failed to assign newbie role",
				slog.String("component", "gateway"),
				slog.String("guild_id", e.GuildID.String()),
				slog.String("user_id", e.Member.User.ID.String()),
				slog.Any("error", err),
			)
		}
	}
}

// OnGuildReady provisions staff slots and restores the verify panel for every
// guild the bot joins or reconnects to.
func OnGuildReady(b *slotbot.Bot) func(*events.GuildReady) {
	return func(e *events.GuildReady) {
		if b.Engine == nil {
			return
		}
		gid := e.GuildID.String()

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), config.SweepTimeout)
			defer cancel()

			created, err := b.Engine.ProvisionStaff(ctx, gid)
			if err != nil {
				logger.LogError("Failed to provision staff slots", err, slog.String("guild_id", gid))
			} else if created > 0 {
				logger.LogSystem("Provisioned staff slots", slog.String("guild_id", gid), slog.Int("created", created))
			}

			if err := RestoreVerifyPanel(ctx, b, gid); err != nil {
				logger.LogError("Failed to restore verify panel", err, slog.String("guild_id", gid))
			}
		}()
	}
}
