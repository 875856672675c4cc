package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/sahilm/fuzzy"
	"github.com/slotkeeper/slotbot/internal/domain/slots"
	"github.com/slotkeeper/slotbot/slotbot"
	"github.com/slotkeeper/slotbot/slotbot/config"
	"github.com/slotkeeper/slotbot/slotbot/utils"
)

const maxAutocompleteChoices = 25

var Config = discord.SlashCommandCreate{
	Name:        "config",
	Description: "View or change the slot settings of this server",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionSubCommand{
			Name:        "view",
			Description: "Show every setting",
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "set",
			Description: "Change a setting",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionString{
					Name:         "key",
					Description:  "Setting to change",
					Required:     true,
					Autocomplete: true,
				},
				discord.ApplicationCommandOptionString{
					Name:        "value",
					Description: "New value (use none to clear ids)",
					Required:    true,
				},
			},
		},
	},
}

func ConfigViewHandler(b *slotbot.Bot) handler.CommandHandler {
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

		cfg, err := b.Engine.Config(ctx, guildID)
		if err != nil {
			return utils.EH.CreateDomainError(e, err)
		}

		embed := discord.NewEmbedBuilder().
			SetTitle("⚙️ Slot settings").
			SetColor(config.InfoColor)
		for _, entry := range slots.DescribeConfig(cfg) {
			embed.AddField(entry.Key, fmt.Sprintf("`%s`\n%s", entry.Value, entry.Help), false)
		}

		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{embed.Build()},
			Flags:  discord.MessageFlagEphemeral,
		})
	}
}

func ConfigSetHandler(b *slotbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		return utils.Deferred(e, config.CommandExecutionTimeout, func(ctx context.Context) (string, error) {
			guildID, err := utils.GuildID(e)
			if err != nil {
				return "", err
			}
			data := e.SlashCommandInteractionData()
			key := strings.TrimSpace(data.String("key"))

			cfg, err := b.Engine.UpdateConfig(ctx, utils.ActorFrom(e), guildID, key, data.String("value"))
			if err != nil {
				return "", err
			}
			for _, entry := range slots.DescribeConfig(cfg) {
				if entry.Key == key {
					return fmt.Sprintf("⚙️ `%s` is now `%s`", key, entry.Value), nil
				}
			}
			return fmt.Sprintf("⚙️ Updated `%s`", key), nil
		})
	}
}

// MatchConfigKeys returns the setting keys matching search, best match first.
// An empty search returns every key.
func MatchConfigKeys(search string) []string {
	keys := slots.ConfigKeys()
	if search == "" {
		return keys[:min(len(keys), maxAutocompleteChoices)]
	}

	matches := fuzzy.Find(search, keys)
	out := make([]string, 0, min(len(matches), maxAutocompleteChoices))
	for _, match := range matches {
		if len(out) == maxAutocompleteChoices {
			break
		}
		out = append(out, match.Str)
	}
	return out
}

func ConfigAutocomplete(_ *slotbot.Bot) handler.AutocompleteHandler {
	return func(e *handler.AutocompleteEvent) error {
		focused := e.Data.Focused()
		if focused.Name != "key" {
			return nil
		}

		searchTerm := ""
		if focused.Value != nil {
			var s string
			if err := json.Unmarshal(focused.Value, &s); err != nil {
				slog.Error("Failed to unmarshal focused.Value",
					slog.String("error", err.Error()))
				return e.AutocompleteResult([]discord.AutocompleteChoice{})
			}
			searchTerm = strings.TrimSpace(s)
		}

		keys := MatchConfigKeys(searchTerm)
		choices := make([]discord.AutocompleteChoice, len(keys))
		for i, key := range keys {
			choices[i] = discord.AutocompleteChoiceString{Name: key, Value: key}
		}
		return e.AutocompleteResult(choices)
	}
}
