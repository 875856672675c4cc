package admin

import (
	"context"
	"fmt"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/slotkeeper/slotbot/internal/domain/slots"
	"github.com/slotkeeper/slotbot/slotbot"
	"github.com/slotkeeper/slotbot/slotbot/config"
	"github.com/slotkeeper/slotbot/slotbot/utils"
)

const backupListLimit = 10

var Backup = discord.SlashCommandCreate{
	Name:        "backup",
	Description: "Export the slot data of this server",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionSubCommand{
			Name:        "create",
			Description: "Upload a backup now",
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "list",
			Description: "Show the latest backups",
		},
	},
}

func backupsEnabled(b *slotbot.Bot) error {
	if b.Backups == nil {
		return fmt.Errorf("%w: backups are not configured for this bot", slots.ErrNotFound)
	}
	return nil
}

func BackupCreateHandler(b *slotbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		return utils.Deferred(e, config.BackupTimeout, func(ctx context.Context) (string, error) {
			guildID, err := utils.GuildID(e)
			if err != nil {
				return "", err
			}
			actor := utils.ActorFrom(e)
			if err := slots.RequireStaff(actor); err != nil {
				return "", err
			}
			if err := backupsEnabled(b); err != nil {
				return "", err
			}

			backup, err := b.Backups.Create(ctx, guildID, actor.ID)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("💾 Backup `%s` uploaded (%.1f KiB)", backup.ObjectKey, float64(backup.Bytes)/1024), nil
		})
	}
}

func BackupListHandler(b *slotbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		guildID, err := utils.GuildID(e)
		if err == nil {
			err = slots.RequireStaff(utils.ActorFrom(e))
		}
		if err == nil {
			err = backupsEnabled(b)
		}
		if err != nil {
			return utils.EH.CreateDomainError(e, err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		backups, err := b.Backups.List(ctx, guildID, backupListLimit)
		if err != nil {
			return utils.EH.CreateDomainError(e, err)
		}
		if len(backups) == 0 {
			return utils.EH.CreateInfoEmbed(e, "📭 No backups yet.")
		}

		var description strings.Builder
		for _, backup := range backups {
			fmt.Fprintf(&description, "%s • `%s` • by %s\n", utils.Timestamp(backup.CreatedAt, "f"),
				backup.ObjectKey, utils.Mention(backup.CreatedBy))
		}
		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{
				discord.NewEmbedBuilder().
					SetTitle("💾 Backups").
					SetDescription(description.String()).
					SetColor(config.InfoColor).
					Build(),
			},
			Flags: discord.MessageFlagEphemeral,
		})
	}
}
