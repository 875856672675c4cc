package system

import (
	"fmt"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/slotkeeper/slotbot/slotbot/config"
)

var Help = discord.SlashCommandCreate{
	Name:        "help",
	Description: "📖 Display all available commands and their descriptions",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:        "category",
			Description: "Filter commands by category",
			Required:    false,
			Choices: []discord.ApplicationCommandOptionChoiceString{
				{Name: "Members", Value: "members"},
				{Name: "Slots", Value: "slots"},
				{Name: "Moderation", Value: "moderation"},
				{Name: "Server", Value: "server"},
			},
		},
	},
}

type CommandInfo struct {
	Name        string
	Description string
}

type CategoryInfo struct {
	Key      string
	Name     string
	Emoji    string
	Commands []CommandInfo
}

var helpCategories = []CategoryInfo{
	{
		Key: "members", Name: "Members", Emoji: "👤",
		Commands: []CommandInfo{
			{"/myslot", "Show your slot"},
			{"/talk add|remove|clear", "Choose who can chat in your slot"},
			{"/remind on|off", "Get a direct message before your slot expires"},
			{"/claim", "Claim the free slot of the current channel"},
			{"/history", "Show your own slot history"},
			{"/help", "Show this help"},
			{"/version", "Show the bot version"},
		},
	},
	{
		Key: "slots", Name: "Slots", Emoji: "🎰",
		Commands: []CommandInfo{
			{"/slot create", "Open a slot for a member"},
			{"/slot remove", "Delete a slot"},
			{"/slot extend|reduce|setexpiry", "Change when a slot expires"},
			{"/slot transfer|swap", "Move slots between members"},
			{"/slot lock|unlock|mute|unmute|suspend|appeal", "Restrict a slot"},
			{"/slot resetmentions|talklimit", "Adjust mention and talker quotas"},
			{"/slot info|list", "Inspect slots"},
			{"/claimslot create|reset|list", "Manage first-come claim slots"},
		},
	},
	{
		Key: "moderation", Name: "Moderation", Emoji: "🛡️",
		Commands: []CommandInfo{
			{"/warn", "Warn a member"},
			{"/warnings", "Show warnings and strikes"},
			{"/strike", fmt.Sprintf("Strike a member, %d strikes remove their slot", config.StrikeLimit)},
			{"/blacklist add|remove|list", "Block members from holding slots"},
			{"/auditlog", "Show the latest staff actions"},
		},
	},
	{
		Key: "server", Name: "Server", Emoji: "⚙️",
		Commands: []CommandInfo{
			{"/config view|set", "View or change the slot settings"},
			{"/weekend open|close", "Run the weekend slot event by hand"},
			{"/staffslots", "Create slots for staff members that lack one"},
			{"/backup create|list", "Export the slot data of this server"},
			{"/sendverify", "Post the verify button"},
		},
	},
}

func formatCategory(category CategoryInfo) string {
	var b strings.Builder
	for _, cmd := range category.Commands {
		fmt.Fprintf(&b, "`%s` %s\n", cmd.Name, cmd.Description)
	}
	return b.String()
}

// HelpEmbed renders the help for one category, or every category when filter is empty.
func HelpEmbed(filter string) discord.Embed {
	embed := discord.NewEmbedBuilder().
		SetTitle("📖 SlotBot - Command Help").
		SetColor(0x7289DA)

	if filter == "" {
		embed.SetDescription("Slot channels for your community. Staff commands need the administrator permission.")
	}
	for _, category := range helpCategories {
		if filter != "" && category.Key != filter {
			continue
		}
		embed.AddField(fmt.Sprintf("%s %s", category.Emoji, category.Name), formatCategory(category), false)
	}
	return embed.Build()
}

func HelpHandler(e *handler.CommandEvent) error {
	filter, _ := e.SlashCommandInteractionData().OptString("category")
	return e.CreateMessage(discord.MessageCreate{
		Embeds: []discord.Embed{HelpEmbed(filter)},
		Flags:  discord.MessageFlagEphemeral,
	})
}
