package handlers

import (
	"testing"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slotkeeper/slotbot/slotbot/config"
)

func TestHasRole(t *testing.T) {
	roles := []snowflake.ID{100, 200}
	assert.True(t, hasRole(roles, "200"))
	assert.False(t, hasRole(roles, "300"))
	assert.False(t, hasRole(nil, "100"))
}

func TestVerifyPanel(t *testing.T) {
	msg := verifyPanel()
	require.Len(t, msg.Embeds, 1)
	require.Len(t, msg.Components, 1)

	row, ok := msg.Components[0].(discord.ActionRowComponent)
	require.True(t, ok)
	buttons := row.Buttons()
	require.Len(t, buttons, 1)
	assert.Equal(t, config.VerifyButtonID, buttons[0].CustomID)
}

func TestGuildID(t *testing.T) {
	assert.Equal(t, "", guildID(nil))
	id := snowflake.ID(42)
	assert.Equal(t, "42", guildID(&id))
}
