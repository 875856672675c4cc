package slots_test

import (
	"context"
	"testing"

	"github.com/slotkeeper/slotbot/internal/domain/slots"
	"github.com/slotkeeper/slotbot/slotbot/database/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_TalkLimitScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	slot := f.create(alice, models.CategoryWeek, 1)
	require.NoError(t, f.engine.SetTalkLimit(ctx, staff, slot.ChannelID, 1))

	added, err := f.engine.InviteTalker(ctx, alice, slot.ChannelID, bob.ID)
	require.NoError(t, err)
	assert.True(t, added)

	_, err = f.engine.InviteTalker(ctx, alice, slot.ChannelID, carol.ID)
	require.ErrorIs(t, err, slots.ErrLimitReached)

	removed, err := f.engine.RemoveTalker(ctx, alice, slot.ChannelID, bob.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	added, err = f.engine.InviteTalker(ctx, alice, slot.ChannelID, carol.ID)
	require.NoError(t, err)
	assert.True(t, added)

	talkers, err := f.engine.Talkers(ctx, slot.ChannelID)
	require.NoError(t, err)
	assert.Equal(t, []string{carol.ID}, talkers)
	assert.Contains(t, f.calls.revoked, slot.ChannelID+"/"+bob.ID)
}

func TestEngine_InviteTalker(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	slot := f.create(alice, models.CategoryWeek, 1)

	tests := []struct {
		name      string
		actor     slots.Actor
		target    string
		channelID string
		wantAdded bool
		wantErr   error
	}{
		{name: "owner invites", actor: alice, target: bob.ID, channelID: slot.ChannelID, wantAdded: true},
		{name: "re-invite is a no-op", actor: alice, target: bob.ID, channelID: slot.ChannelID},
		{name: "owner cannot invite themselves", actor: alice, target: alice.ID, channelID: slot.ChannelID, wantErr: slots.ErrInvalidArgument},
		{name: "only the owner invites", actor: bob, target: carol.ID, channelID: slot.ChannelID, wantErr: slots.ErrNotPermitted},
		{name: "staff are not the owner", actor: staff, target: carol.ID, channelID: slot.ChannelID, wantErr: slots.ErrNotPermitted},
		{name: "not a slot", actor: alice, target: carol.ID, channelID: "404", wantErr: slots.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			added, err := f.engine.InviteTalker(ctx, tt.actor, tt.channelID, tt.target)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantAdded, added)
		})
	}

	grants := f.editsFor(bob.ID)
	require.Len(t, grants, 1)
	assert.True(t, grants[0].Allow.Has(slots.PermSend|slots.PermView|slots.PermHistory))
	assert.False(t, grants[0].Allow.Has(slots.PermAttach))
}

func TestEngine_InviteTalker_InheritPermissions(t *testing.T) {
	f := newFixture(t, nil)
	f.store.PutConfig(models.GuildConfig{GuildID: guildID, TalkersInheritPermissions: true})
	slot := f.create(alice, models.CategoryWeek, 1)

	_, err := f.engine.InviteTalker(context.Background(), alice, slot.ChannelID, bob.ID)
	require.NoError(t, err)

	grants := f.editsFor(bob.ID)
	require.Len(t, grants, 1)
	assert.True(t, grants[0].Allow.Has(slots.PermAttach|slots.PermEmbed))
}

func TestEngine_RevokeAllTalkers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	slot := f.create(alice, models.CategoryWeek, 1)
	for _, user := range []string{bob.ID, carol.ID, "500"} {
		_, err := f.engine.InviteTalker(ctx, alice, slot.ChannelID, user)
		require.NoError(t, err)
	}

	_, err := f.engine.RevokeAllTalkers(ctx, bob, slot.ChannelID)
	require.ErrorIs(t, err, slots.ErrNotPermitted)

	n, err := f.engine.RevokeAllTalkers(ctx, staff, slot.ChannelID)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	talkers, err := f.engine.Talkers(ctx, slot.ChannelID)
	require.NoError(t, err)
	assert.Empty(t, talkers)
	assert.ElementsMatch(t, []string{
		slot.ChannelID + "/" + bob.ID,
		slot.ChannelID + "/" + carol.ID,
		slot.ChannelID + "/500",
	}, f.calls.revoked)
}
