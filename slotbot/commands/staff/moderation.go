package staff

import (
	"context"
	"fmt"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/paginator"
	"github.com/slotkeeper/slotbot/internal/domain/slots"
	"github.com/slotkeeper/slotbot/slotbot"
	"github.com/slotkeeper/slotbot/slotbot/config"
	"github.com/slotkeeper/slotbot/slotbot/utils"
)

var (
	memberOption = discord.ApplicationCommandOptionUser{
		Name:        "user",
		Description: "Member",
		Required:    true,
	}
	reasonOption = discord.ApplicationCommandOptionString{
		Name:        "reason",
		Description: "Reason",
		Required:    false,
	}
)

var Warn = discord.SlashCommandCreate{
	Name:        "warn",
	Description: "Warn a member",
	Options:     []discord.ApplicationCommandOption{memberOption, reasonOption},
}

var Warnings = discord.SlashCommandCreate{
	Name:        "warnings",
	Description: "Show the warnings and strikes of a member",
	Options:     []discord.ApplicationCommandOption{memberOption},
}

var Strike = discord.SlashCommandCreate{
	Name:        "strike",
	Description: fmt.Sprintf("Strike a member, %d strikes remove their slot", config.StrikeLimit),
	Options:     []discord.ApplicationCommandOption{memberOption, reasonOption},
}

var Blacklist = discord.SlashCommandCreate{
	Name:        "blacklist",
	Description: "Block members from holding slots",
	Options: []discord.ApplicationCommandOption{
		subcommand("add", "Blacklist a member and remove their slot", memberOption, reasonOption),
		subcommand("remove", "Lift a blacklist entry", memberOption),
		subcommand("list", "Show every blacklisted member"),
	},
}

var History = discord.SlashCommandCreate{
	Name:        "history",
	Description: "Show slot history",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionUser{
			Name:        "user",
			Description: "Only show this member",
			Required:    false,
		},
	},
}

var AuditLog = discord.SlashCommandCreate{
	Name:        "auditlog",
	Description: "Show the latest staff actions",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionInt{
			Name:        "limit",
			Description: "How many entries to show",
			Required:    false,
			MinValue:    utils.Ptr(1),
			MaxValue:    utils.Ptr(50),
		},
	},
}

func WarnHandler(b *slotbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		return utils.Deferred(e, config.CommandExecutionTimeout, func(ctx context.Context) (string, error) {
			guildID, err := utils.GuildID(e)
			if err != nil {
				return "", err
			}
			data := e.SlashCommandInteractionData()
			userID, _, _ := utils.OptionMember(data, "user")

			warning, err := b.Engine.Warn(ctx, utils.ActorFrom(e), guildID, userID, data.String("reason"))
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("⚠️ Warned %s: %s", utils.Mention(userID), warning.Reason), nil
		})
	}
}

func WarningsHandler(b *slotbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		guildID, err := utils.GuildID(e)
		if err == nil {
			err = slots.RequireStaff(utils.ActorFrom(e))
		}
		if err != nil {
			return utils.EH.CreateDomainError(e, err)
		}
		userID, _, _ := utils.OptionMember(e.SlashCommandInteractionData(), "user")

		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		warnings, err := b.Engine.Warnings(ctx, guildID, userID)
		if err != nil {
			return utils.EH.CreateDomainError(e, err)
		}
		strikes, err := b.Engine.Strikes(ctx, guildID, userID)
		if err != nil {
			return utils.EH.CreateDomainError(e, err)
		}

		var description strings.Builder
		fmt.Fprintf(&description, "**Strikes:** %d/%d\n\n", strikes, config.StrikeLimit)
		if len(warnings) == 0 {
			description.WriteString("No warnings.")
		}
		for i, w := range warnings {
			if i == 15 {
				fmt.Fprintf(&description, "…and %d more", len(warnings)-i)
				break
			}
			fmt.Fprintf(&description, "%s by %s: %s\n", utils.Timestamp(w.CreatedAt, "d"), utils.Mention(w.IssuedBy), w.Reason)
		}

		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{
				discord.NewEmbedBuilder().
					SetTitle("⚠️ Warnings").
					SetDescription(fmt.Sprintf("%s\n\n%s", utils.Mention(userID), description.String())).
					SetColor(config.WarningColor).
					Build(),
			},
			Flags: discord.MessageFlagEphemeral,
		})
	}
}

func StrikeHandler(b *slotbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		return utils.Deferred(e, config.CommandExecutionTimeout, func(ctx context.Context) (string, error) {
			guildID, err := utils.GuildID(e)
			if err != nil {
				return "", err
			}
			data := e.SlashCommandInteractionData()
			userID, _, _ := utils.OptionMember(data, "user")

			result, err := b.Engine.Strike(ctx, utils.ActorFrom(e), guildID, userID, data.String("reason"))
			if err != nil {
				return "", err
			}
			if result.Revoked {
				return fmt.Sprintf("🚫 %s reached %d strikes, their slot was removed", utils.Mention(userID), config.StrikeLimit), nil
			}
			return fmt.Sprintf("❗ Strike %d/%d for %s", result.Count, config.StrikeLimit, utils.Mention(userID)), nil
		})
	}
}

func BlacklistAddHandler(b *slotbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		return utils.Deferred(e, config.CommandExecutionTimeout, func(ctx context.Context) (string, error) {
			guildID, err := utils.GuildID(e)
			if err != nil {
				return "", err
			}
			data := e.SlashCommandInteractionData()
			userID, _, _ := utils.OptionMember(data, "user")

			destroyed, err := b.Engine.Blacklist(ctx, utils.ActorFrom(e), guildID, userID, data.String("reason"))
			if err != nil {
				return "", err
			}
			if destroyed {
				return fmt.Sprintf("⛔ Blacklisted %s and removed their slot", utils.Mention(userID)), nil
			}
			return fmt.Sprintf("⛔ Blacklisted %s", utils.Mention(userID)), nil
		})
	}
}

func BlacklistRemoveHandler(b *slotbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		return utils.Deferred(e, config.CommandExecutionTimeout, func(ctx context.Context) (string, error) {
			guildID, err := utils.GuildID(e)
			if err != nil {
				return "", err
			}
			userID, _, _ := utils.OptionMember(e.SlashCommandInteractionData(), "user")
			if err := b.Engine.Unblacklist(ctx, utils.ActorFrom(e), guildID, userID); err != nil {
				return "", err
			}
			return fmt.Sprintf("✅ %s is no longer blacklisted", utils.Mention(userID)), nil
		})
	}
}

func BlacklistListHandler(b *slotbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		guildID, err := utils.GuildID(e)
		if err == nil {
			err = slots.RequireStaff(utils.ActorFrom(e))
		}
		if err != nil {
			return utils.EH.CreateDomainError(e, err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		entries, err := b.Engine.ListBlacklist(ctx, guildID)
		if err != nil {
			return utils.EH.CreateDomainError(e, err)
		}
		if len(entries) == 0 {
			return utils.EH.CreateInfoEmbed(e, "Nobody is blacklisted.")
		}

		lines := make([]string, len(entries))
		for i, entry := range entries {
			reason := entry.Reason
			if reason == "" {
				reason = "no reason"
			}
			lines[i] = fmt.Sprintf("%s • %s • %s", utils.Mention(entry.UserID), reason, utils.Timestamp(entry.CreatedAt, "d"))
		}
		return listPages(b, e, "⛔ Blacklist", lines, config.DefaultPageSize)
	}
}

func HistoryHandler(b *slotbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		guildID, err := utils.GuildID(e)
		if err != nil {
			return utils.EH.CreateDomainError(e, err)
		}
		actor := utils.ActorFrom(e)
		userID, _, _ := utils.OptionMember(e.SlashCommandInteractionData(), "user")
		// members may look up their own history
		if userID != actor.ID {
			if err := slots.RequireStaff(actor); err != nil {
				return utils.EH.CreateDomainError(e, err)
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		entries, err := b.Engine.History(ctx, guildID, userID)
		if err != nil {
			return utils.EH.CreateDomainError(e, err)
		}
		if len(entries) == 0 {
			return utils.EH.CreateInfoEmbed(e, "📭 No slot history yet.")
		}

		lines := make([]string, len(entries))
		for i, h := range entries {
			status := "open"
			if h.ClosedAt != nil {
				status = fmt.Sprintf("closed %s (%s)", utils.Timestamp(*h.ClosedAt, "d"), h.CloseReason)
			}
			lines[i] = fmt.Sprintf("%s %s • %s • opened %s • %s", h.Category.Emoji(), utils.Mention(h.UserID),
				h.Category, utils.Timestamp(h.OpenedAt, "d"), status)
		}
		return listPages(b, e, "📜 Slot history", lines, config.HistoryPerPage)
	}
}

func AuditLogHandler(b *slotbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		guildID, err := utils.GuildID(e)
		if err == nil {
			err = slots.RequireStaff(utils.ActorFrom(e))
		}
		if err != nil {
			return utils.EH.CreateDomainError(e, err)
		}
		limit, ok := e.SlashCommandInteractionData().OptInt("limit")
		if !ok {
			limit = 20
		}

		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		entries, err := b.Engine.AuditLog(ctx, guildID, limit)
		if err != nil {
			return utils.EH.CreateDomainError(e, err)
		}
		if len(entries) == 0 {
			return utils.EH.CreateInfoEmbed(e, "📭 No staff actions recorded yet.")
		}

		lines := make([]string, len(entries))
		for i, a := range entries {
			line := fmt.Sprintf("%s `%s` by %s", utils.Timestamp(a.CreatedAt, "f"), a.Action, utils.Mention(a.ActorID))
			if a.TargetID != "" {
				line += " → " + utils.Mention(a.TargetID)
			}
			if a.Details != "" {
				line += ": " + a.Details
			}
			lines[i] = line
		}
		return listPages(b, e, "🧾 Audit log", lines, config.DefaultPageSize)
	}
}

// listPages shows lines in a paginated embed.
func listPages(b *slotbot.Bot, e *handler.CommandEvent, title string, lines []string, perPage int) error {
	totalPages := utils.PageCount(perPage, len(lines))
	return b.Paginator.Create(e.Respond, paginator.Pages{
		ID:      e.ID().String(),
		Creator: e.User().ID,
		PageFunc: func(page int, embed *discord.EmbedBuilder) {
			start, end := utils.PageBounds(page, perPage, len(lines))
			embed.
				SetTitle(title).
				SetDescription(strings.Join(lines[start:end], "\n")).
				SetColor(config.EmbedDefaultColor).
				SetFooter(fmt.Sprintf("Page %d/%d • Total: %d", page+1, totalPages, len(lines)), "")
		},
		Pages:      totalPages,
		ExpireMode: paginator.ExpireModeAfterLastUsage,
	}, false)
}
