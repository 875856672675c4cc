package slots_test

import (
	"context"
	"testing"
	"time"

	"github.com/slotkeeper/slotbot/internal/domain/slots"
	"github.com/slotkeeper/slotbot/slotbot/database/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_ClaimLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	claim, err := f.engine.CreateClaimSlot(ctx, staff, guildID, "Lucky Seven", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"🎟️-luckyseven-open"}, f.calls.created)

	_, err = f.engine.Claim(ctx, alice, "404")
	require.ErrorIs(t, err, slots.ErrNotFound)

	res, err := f.engine.Claim(ctx, alice, claim.ChannelID)
	require.NoError(t, err)
	assert.Equal(t, t0.Add(48*time.Hour), res.ExpiresAt)
	assert.Equal(t, models.CategoryClaimed, res.Slot.Category)
	assert.Equal(t, "🎟️-alices-slot-2d", f.slot(claim.ChannelID).ChannelName)

	_, err = f.engine.Claim(ctx, bob, claim.ChannelID)
	require.ErrorIs(t, err, slots.ErrAlreadyUsed)

	stored, err := f.store.Claims().Get(ctx, claim.ChannelID)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, stored.ClaimedBy)

	f.advance(48 * time.Hour)
	expired, err := f.engine.ExpireClaim(ctx, claim.ChannelID)
	require.NoError(t, err)
	assert.True(t, expired)

	stored, err = f.store.Claims().Get(ctx, claim.ChannelID)
	require.NoError(t, err)
	assert.Empty(t, stored.ClaimedBy)
	assert.Nil(t, stored.ClaimedAt)
	assert.Nil(t, stored.ExpiresAt)
	assert.Nil(t, f.slot(claim.ChannelID))
	assert.Empty(t, f.calls.deleted, "the channel is kept")
	assert.Contains(t, f.calls.revoked, claim.ChannelID+"/"+alice.ID)

	history := f.store.HistoryEntries()
	require.Len(t, history, 1)
	assert.Equal(t, "expired", history[0].CloseReason)

	// a second sweep finds nothing to do
	expired, err = f.engine.ExpireClaim(ctx, claim.ChannelID)
	require.NoError(t, err)
	assert.False(t, expired)

	// available again for anyone eligible
	_, err = f.engine.Claim(ctx, bob, claim.ChannelID)
	require.NoError(t, err)
}

func TestEngine_Claim_Eligibility(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		setup   func(f *fixture)
		wantErr error
	}{
		{
			name: "blacklisted",
			setup: func(f *fixture) {
				_, err := f.engine.Blacklist(ctx, staff, guildID, alice.ID, "")
				require.NoError(f.t, err)
			},
			wantErr: slots.ErrBlacklisted,
		},
		{
			name: "already holds a slot",
			setup: func(f *fixture) {
				f.create(alice, models.CategoryWeek, 1)
			},
			wantErr: slots.ErrAlreadyUsed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)
			claim, err := f.engine.CreateClaimSlot(ctx, staff, guildID, "", 1)
			require.NoError(t, err)
			tt.setup(f)

			_, err = f.engine.Claim(ctx, alice, claim.ChannelID)
			require.ErrorIs(t, err, tt.wantErr)

			stored, err := f.store.Claims().Get(ctx, claim.ChannelID)
			require.NoError(t, err)
			assert.Empty(t, stored.ClaimedBy)
		})
	}
}

func TestEngine_Unclaim(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	claim, err := f.engine.CreateClaimSlot(ctx, staff, guildID, "vip", 7)
	require.NoError(t, err)

	require.ErrorIs(t, f.engine.Unclaim(ctx, staff, claim.ChannelID), slots.ErrInvalidArgument)

	_, err = f.engine.Claim(ctx, alice, claim.ChannelID)
	require.NoError(t, err)
	_, err = f.engine.InviteTalker(ctx, alice, claim.ChannelID, bob.ID)
	require.NoError(t, err)

	require.ErrorIs(t, f.engine.Unclaim(ctx, alice, claim.ChannelID), slots.ErrNotPermitted)
	require.NoError(t, f.engine.Unclaim(ctx, staff, claim.ChannelID))

	assert.Nil(t, f.slot(claim.ChannelID))
	talkers, err := f.engine.Talkers(ctx, claim.ChannelID)
	require.NoError(t, err)
	assert.Empty(t, talkers)
	assert.Contains(t, f.calls.renamed, claim.ChannelID+"=🎟️-vip-open")
	assert.Empty(t, f.calls.deleted)
}

func TestEngine_StrikeOnClaimedSlotReleasesClaim(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	claim, err := f.engine.CreateClaimSlot(ctx, staff, guildID, "vip", 7)
	require.NoError(t, err)
	_, err = f.engine.Claim(ctx, alice, claim.ChannelID)
	require.NoError(t, err)

	for range 3 {
		_, err = f.engine.Strike(ctx, staff, guildID, alice.ID, "")
		require.NoError(t, err)
	}

	assert.Nil(t, f.slot(claim.ChannelID))
	stored, err := f.store.Claims().Get(ctx, claim.ChannelID)
	require.NoError(t, err)
	assert.Empty(t, stored.ClaimedBy)
	assert.Empty(t, f.calls.deleted)
}
