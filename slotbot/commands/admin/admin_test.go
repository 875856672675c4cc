package admin

import (
	"fmt"
	"testing"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slotkeeper/slotbot/internal/domain/slots"
	"github.com/slotkeeper/slotbot/slotbot/config"
	"github.com/slotkeeper/slotbot/slotbot/database/models"
)

func TestMatchConfigKeys(t *testing.T) {
	all := MatchConfigKeys("")
	assert.ElementsMatch(t, slots.ConfigKeys(), all)

	matches := MatchConfigKeys("cooldown")
	require.NotEmpty(t, matches)
	assert.Equal(t, "cooldown_minutes", matches[0])

	matches = MatchConfigKeys("wknd")
	require.NotEmpty(t, matches)
	assert.Equal(t, "weekend_enabled", matches[0])

	assert.Empty(t, MatchConfigKeys("zzzz"))
}

func TestClaimStatusLine(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	expires := now.Add(48 * time.Hour)
	past := now.Add(-time.Hour)

	tests := []struct {
		name  string
		claim *models.ClaimSlot
		want  string
	}{
		{
			name:  "available",
			claim: &models.ClaimSlot{ChannelID: "1", DurationDays: 3},
			want:  "<#1> • available • 3 day(s)",
		},
		{
			name:  "claimed",
			claim: &models.ClaimSlot{ChannelID: "1", ClaimedBy: "7", ExpiresAt: &expires},
			want:  fmt.Sprintf("<#1> • claimed by <@7> until <t:%d:f>", expires.Unix()),
		},
		{
			name:  "expired",
			claim: &models.ClaimSlot{ChannelID: "1", ClaimedBy: "7", ExpiresAt: &past},
			want:  "<#1> • expired, waiting for the sweep",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClaimStatusLine(tt.claim, now))
		})
	}
}

func TestClaimPanel(t *testing.T) {
	msg := claimPanel(5)
	assert.Contains(t, msg.Content, "5 day(s)")
	require.Len(t, msg.Components, 1)

	row, ok := msg.Components[0].(discord.ActionRowComponent)
	require.True(t, ok)
	require.Len(t, row.Buttons(), 1)
	assert.Equal(t, config.ClaimButtonID, row.Buttons()[0].CustomID)
}

func TestWeekendOpenedReply(t *testing.T) {
	assert.Equal(t, "🎉 Weekend opened: 4 slot(s) created", weekendOpenedReply(slots.WeekendReport{Opened: 4}))

	reply := weekendOpenedReply(slots.WeekendReport{Opened: 2, Skipped: 3})
	assert.Equal(t, "🎉 Weekend opened: 2 slot(s) created, 3 member(s) skipped", reply)
	assert.NotContains(t, reply, "already had")
}
