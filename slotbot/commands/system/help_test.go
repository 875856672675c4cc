package system

import (
	"testing"

	"github.com/disgoorg/disgo/discord"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHelpEmbed(t *testing.T) {
	all := HelpEmbed("")
	assert.Len(t, all.Fields, len(helpCategories))
	assert.NotEmpty(t, all.Description)

	one := HelpEmbed("moderation")
	require.Len(t, one.Fields, 1)
	assert.Contains(t, one.Fields[0].Name, "Moderation")
	assert.Contains(t, one.Fields[0].Value, "`/strike`")
}

func TestHelpCoversEveryCategoryChoice(t *testing.T) {
	keys := make(map[string]bool)
	for _, c := range helpCategories {
		keys[c.Key] = true
	}
	option, ok := Help.Options[0].(discord.ApplicationCommandOptionString)
	require.True(t, ok)
	for _, choice := range option.Choices {
		assert.True(t, keys[choice.Value], choice.Value)
	}
}
