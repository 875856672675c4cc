package slots_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/slotkeeper/slotbot/internal/domain/slots"
	"github.com/slotkeeper/slotbot/slotbot/database/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestEngine_Create(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name      string
		actor     slots.Actor
		req       slots.CreateRequest
		setup     func(f *fixture)
		wantErr   error
		wantExp   *time.Time
		unlimited bool
	}{
		{
			name:    "week slot",
			actor:   staff,
			req:     slots.CreateRequest{Category: models.CategoryWeek, Units: 2},
			wantExp: ptr(t0.Add(14 * 24 * time.Hour)),
		},
		{
			name:    "month slot",
			actor:   staff,
			req:     slots.CreateRequest{Category: models.CategoryMonth, Units: 1},
			wantExp: ptr(t0.Add(30 * 24 * time.Hour)),
		},
		{
			name:    "free slot uses the configured duration",
			actor:   staff,
			req:     slots.CreateRequest{Category: models.CategoryFree},
			setup:   func(f *fixture) { f.store.PutConfig(models.GuildConfig{GuildID: guildID, DefaultDurationDays: 5}) },
			wantExp: ptr(t0.Add(5 * 24 * time.Hour)),
		},
		{
			name:  "permanent slot never expires",
			actor: staff,
			req:   slots.CreateRequest{Category: models.CategoryPermanent},
		},
		{
			name:      "admin slot has unlimited mentions",
			actor:     staff,
			req:       slots.CreateRequest{Category: models.CategoryAdmin},
			unlimited: true,
		},
		{
			name:    "members cannot create slots",
			actor:   alice,
			req:     slots.CreateRequest{Category: models.CategoryWeek, Units: 1},
			wantErr: slots.ErrNotPermitted,
		},
		{
			name:    "zero weeks",
			actor:   staff,
			req:     slots.CreateRequest{Category: models.CategoryWeek},
			wantErr: slots.ErrInvalidArgument,
		},
		{
			name:    "unknown category",
			actor:   staff,
			req:     slots.CreateRequest{Category: "gold"},
			wantErr: slots.ErrInvalidArgument,
		},
		{
			name:  "blacklisted",
			actor: staff,
			req:   slots.CreateRequest{Category: models.CategoryPermanent},
			setup: func(f *fixture) {
				_, err := f.engine.Blacklist(ctx, staff, guildID, alice.ID, "spam")
				require.NoError(f.t, err)
			},
			wantErr: slots.ErrBlacklisted,
		},
		{
			name:  "already holds a slot",
			actor: staff,
			req:   slots.CreateRequest{Category: models.CategoryWeek, Units: 1},
			setup: func(f *fixture) {
				f.create(alice, models.CategoryPermanent, 0)
			},
			wantErr: slots.ErrAlreadyUsed,
		},
		{
			name:  "free slot already used",
			actor: staff,
			req:   slots.CreateRequest{Category: models.CategoryFree},
			setup: func(f *fixture) {
				slot := f.create(alice, models.CategoryFree, 0)
				require.NoError(f.t, f.engine.Destroy(ctx, staff, slot.ChannelID, ""))
			},
			wantErr: slots.ErrAlreadyUsed,
		},
		{
			name:  "slot limit reached",
			actor: staff,
			req:   slots.CreateRequest{Category: models.CategoryWeek, Units: 1},
			setup: func(f *fixture) {
				f.store.PutConfig(models.GuildConfig{GuildID: guildID, SlotLimit: 1})
				f.create(bob, models.CategoryWeek, 1)
			},
			wantErr: slots.ErrLimitReached,
		},
		{
			name:  "cooldown running",
			actor: staff,
			req:   slots.CreateRequest{Category: models.CategoryWeek, Units: 1},
			setup: func(f *fixture) {
				f.store.PutConfig(models.GuildConfig{GuildID: guildID, CooldownMinutes: 30})
				slot := f.create(alice, models.CategoryWeek, 1)
				require.NoError(f.t, f.engine.Destroy(ctx, staff, slot.ChannelID, ""))
				f.advance(29 * time.Minute)
			},
			wantErr: slots.ErrOnCooldown,
		},
		{
			name:  "cooldown elapsed",
			actor: staff,
			req:   slots.CreateRequest{Category: models.CategoryWeek, Units: 1},
			setup: func(f *fixture) {
				f.store.PutConfig(models.GuildConfig{GuildID: guildID, CooldownMinutes: 30})
				slot := f.create(alice, models.CategoryWeek, 1)
				require.NoError(f.t, f.engine.Destroy(ctx, staff, slot.ChannelID, ""))
				f.advance(30 * time.Minute)
			},
			wantExp: ptr(t0.Add(30*time.Minute + 7*24*time.Hour)),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)
			if tt.setup != nil {
				tt.setup(f)
			}
			req := tt.req
			req.GuildID, req.UserID, req.UserName = guildID, alice.ID, alice.Name

			before := f.store.SlotCount()
			got, err := f.engine.Create(ctx, tt.actor, req)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				assert.Equal(t, before, f.store.SlotCount())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantExp, got.ExpiresAt)
			assert.Equal(t, tt.unlimited, got.UnlimitedMentions)
			assert.False(t, got.HereUsed)
			assert.False(t, got.EveryoneUsed)
			assert.Equal(t, alice.ID, f.slot(got.ChannelID).UserID)
		})
	}
}

func TestEngine_Create_WritesHistoryAndWelcome(t *testing.T) {
	f := newFixture(t, nil)
	slot := f.create(alice, models.CategoryFree, 0)

	history := f.store.HistoryEntries()
	require.Len(t, history, 1)
	assert.Equal(t, slot.ChannelID, history[0].ChannelID)
	assert.Equal(t, models.CategoryFree, history[0].Category)
	assert.Nil(t, history[0].ClosedAt)

	require.Len(t, f.calls.messages, 1)
	assert.Contains(t, f.calls.messages[0], "Welcome to your slot, <@200>")
	assert.Contains(t, f.calls.messages[0], "**7 days**")
}

func TestEngine_Create_GatewayFailure(t *testing.T) {
	f := newFixture(t, func(m allMocks) {
		m.gateway.EXPECT().
			CreateChannel(gomock.Any(), guildID, gomock.Any(), "50", gomock.Any()).
			Return("", errors.New("missing access"))
	})

	_, err := f.engine.Create(context.Background(), staff, slots.CreateRequest{
		GuildID: guildID, UserID: alice.ID, UserName: alice.Name, Category: models.CategoryFree,
	})
	require.ErrorIs(t, err, slots.ErrExternalFailure)
	assert.Equal(t, 0, f.store.SlotCount())
	assert.Empty(t, f.store.HistoryEntries())

	used, err := f.store.Moderation().FreeUsed(context.Background(), guildID, alice.ID)
	require.NoError(t, err)
	assert.False(t, used)
}

func TestEngine_Create_StoreFailureRemovesChannel(t *testing.T) {
	f := newFixture(t, nil)
	f.store.FailSlotInsert = errors.New("connection reset")

	_, err := f.engine.Create(context.Background(), staff, slots.CreateRequest{
		GuildID: guildID, UserID: alice.ID, UserName: alice.Name, Category: models.CategoryWeek, Units: 1,
	})
	require.Error(t, err)
	assert.Equal(t, "internal", slots.Reason(err))
	assert.Equal(t, 0, f.store.SlotCount())
	assert.Equal(t, []string{"5001"}, f.calls.deleted)
}

func TestEngine_Destroy(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	f.store.PutConfig(models.GuildConfig{GuildID: guildID, CooldownMinutes: 60})
	slot := f.create(alice, models.CategoryWeek, 1)
	_, err := f.engine.InviteTalker(ctx, alice, slot.ChannelID, bob.ID)
	require.NoError(t, err)

	require.NoError(t, f.engine.Destroy(ctx, staff, slot.ChannelID, "rule break"))

	assert.Nil(t, f.slot(slot.ChannelID))
	talkers, err := f.store.Talkers().List(ctx, slot.ChannelID)
	require.NoError(t, err)
	assert.Empty(t, talkers)
	assert.Equal(t, []string{slot.ChannelID}, f.calls.deleted)

	history := f.store.HistoryEntries()
	require.Len(t, history, 1)
	require.NotNil(t, history[0].ClosedAt)
	assert.Equal(t, "rule break", history[0].CloseReason)

	until, err := f.store.Cooldowns().Until(ctx, guildID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, t0.Add(time.Hour), until)

	require.ErrorIs(t, f.engine.Destroy(ctx, staff, slot.ChannelID, ""), slots.ErrNotFound)
}

func TestEngine_Transfer(t *testing.T) {
	ctx := context.Background()

	t.Run("target already holds a slot", func(t *testing.T) {
		f := newFixture(t, nil)
		slot := f.create(alice, models.CategoryWeek, 2)
		f.create(bob, models.CategoryPermanent, 0)
		before := *f.slot(slot.ChannelID)

		_, err := f.engine.Transfer(ctx, staff, slots.TransferRequest{
			GuildID: guildID, FromUserID: alice.ID, ToUserID: bob.ID, ToName: bob.Name,
		})
		require.ErrorIs(t, err, slots.ErrAlreadyUsed)
		assert.Equal(t, before, *f.slot(slot.ChannelID))
		assert.Empty(t, f.calls.revoked)
	})

	t.Run("moves ownership and keeps state", func(t *testing.T) {
		f := newFixture(t, nil)
		slot := f.create(alice, models.CategoryWeek, 2)
		_, err := f.engine.InviteTalker(ctx, alice, slot.ChannelID, carol.ID)
		require.NoError(t, err)
		_, err = f.engine.RecordMentionUse(ctx, slot.ChannelID, models.MentionHere)
		require.NoError(t, err)

		moved, err := f.engine.Transfer(ctx, staff, slots.TransferRequest{
			GuildID: guildID, FromUserID: alice.ID, ToUserID: bob.ID, ToName: bob.Name,
		})
		require.NoError(t, err)

		stored := f.slot(slot.ChannelID)
		assert.Equal(t, bob.ID, stored.UserID)
		assert.Equal(t, slot.ExpiresAt, stored.ExpiresAt)
		assert.True(t, stored.HereUsed)
		assert.Equal(t, "🎰-bobs-slot-14d", moved.ChannelName)
		assert.Contains(t, f.calls.revoked, slot.ChannelID+"/"+alice.ID)
		assert.NotEmpty(t, f.editsFor(bob.ID))

		talkers, err := f.engine.Talkers(ctx, slot.ChannelID)
		require.NoError(t, err)
		assert.Equal(t, []string{carol.ID}, talkers)
		assert.Len(t, f.store.HistoryEntries(), 1)
	})

	t.Run("source has no slot", func(t *testing.T) {
		f := newFixture(t, nil)
		_, err := f.engine.Transfer(ctx, staff, slots.TransferRequest{
			GuildID: guildID, FromUserID: alice.ID, ToUserID: bob.ID, ToName: bob.Name,
		})
		require.ErrorIs(t, err, slots.ErrNotFound)
	})

	t.Run("members cannot transfer", func(t *testing.T) {
		f := newFixture(t, nil)
		f.create(alice, models.CategoryWeek, 2)
		_, err := f.engine.Transfer(ctx, alice, slots.TransferRequest{
			GuildID: guildID, FromUserID: alice.ID, ToUserID: bob.ID, ToName: bob.Name,
		})
		require.ErrorIs(t, err, slots.ErrNotPermitted)
	})
}

func TestEngine_Swap(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	a := f.create(alice, models.CategoryWeek, 1)
	b := f.create(bob, models.CategoryPermanent, 0)

	gotA, gotB, err := f.engine.Swap(ctx, staff, guildID, alice.ID, alice.Name, bob.ID, bob.Name)
	require.NoError(t, err)
	assert.Equal(t, b.ChannelID, gotA.ChannelID)
	assert.Equal(t, a.ChannelID, gotB.ChannelID)

	assert.Equal(t, bob.ID, f.slot(a.ChannelID).UserID)
	assert.Equal(t, alice.ID, f.slot(b.ChannelID).UserID)
	assert.Equal(t, "🎰-bobs-slot-7d", f.slot(a.ChannelID).ChannelName)
	assert.Equal(t, "⚜️-alices-slot", f.slot(b.ChannelID).ChannelName)

	_, _, err = f.engine.Swap(ctx, staff, guildID, alice.ID, alice.Name, carol.ID, carol.Name)
	require.ErrorIs(t, err, slots.ErrNotFound)
}

func TestEngine_Strike(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	slot := f.create(alice, models.CategoryWeek, 1)

	for i := 1; i <= 2; i++ {
		res, err := f.engine.Strike(ctx, staff, guildID, alice.ID, "spam")
		require.NoError(t, err)
		assert.Equal(t, i, res.Count)
		assert.False(t, res.Revoked)
		assert.NotNil(t, f.slot(slot.ChannelID))
	}

	res, err := f.engine.Strike(ctx, staff, guildID, alice.ID, "spam")
	require.NoError(t, err)
	assert.Equal(t, 3, res.Count)
	assert.True(t, res.Revoked)
	assert.Nil(t, f.slot(slot.ChannelID))

	count, err := f.engine.Strikes(ctx, guildID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	history := f.store.HistoryEntries()
	require.Len(t, history, 1)
	assert.Equal(t, "auto-revoked (3 strikes)", history[0].CloseReason)
}

func TestEngine_Blacklist(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	slot := f.create(alice, models.CategoryPermanent, 0)

	destroyed, err := f.engine.Blacklist(ctx, staff, guildID, alice.ID, "scam links")
	require.NoError(t, err)
	assert.True(t, destroyed)
	assert.Nil(t, f.slot(slot.ChannelID))

	_, err = f.engine.Blacklist(ctx, staff, guildID, alice.ID, "again")
	require.ErrorIs(t, err, slots.ErrAlreadyUsed)

	require.NoError(t, f.engine.Unblacklist(ctx, staff, guildID, alice.ID))
	require.ErrorIs(t, f.engine.Unblacklist(ctx, staff, guildID, alice.ID), slots.ErrNotFound)
	f.create(alice, models.CategoryPermanent, 0)
}

func TestEngine_Warn(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	_, err := f.engine.Warn(ctx, staff, guildID, alice.ID, "")
	require.NoError(t, err)
	_, err = f.engine.Warn(ctx, alice, guildID, bob.ID, "nope")
	require.ErrorIs(t, err, slots.ErrNotPermitted)

	warnings, err := f.engine.Warnings(ctx, guildID, alice.ID)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, "No reason given", warnings[0].Reason)
	assert.Equal(t, []string{alice.ID}, f.calls.dms)
}

func TestEngine_UpdateConfig(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	cfg, err := f.engine.Config(ctx, guildID)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.DefaultDurationDays)
	assert.Equal(t, "🎰 SLOTS", cfg.SlotCategoryName)

	_, err = f.engine.UpdateConfig(ctx, staff, guildID, "slot_limit", "12")
	require.NoError(t, err)
	_, err = f.engine.UpdateConfig(ctx, staff, guildID, "log_channel_id", "<#777>")
	require.NoError(t, err)

	cfg, err = f.engine.Config(ctx, guildID)
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.SlotLimit)
	assert.Equal(t, "777", cfg.LogChannelID)

	tests := []struct {
		key, value string
		actor      slots.Actor
		wantErr    error
	}{
		{key: "slot_limit", value: "-1", actor: staff, wantErr: slots.ErrInvalidArgument},
		{key: "activity_message_threshold", value: "0", actor: staff, wantErr: slots.ErrInvalidArgument},
		{key: "weekend_enabled", value: "maybe", actor: staff, wantErr: slots.ErrInvalidArgument},
		{key: "colour", value: "red", actor: staff, wantErr: slots.ErrInvalidArgument},
		{key: "slot_limit", value: "3", actor: alice, wantErr: slots.ErrNotPermitted},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			_, err := f.engine.UpdateConfig(ctx, tt.actor, guildID, tt.key, tt.value)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	assert.Len(t, slots.ConfigKeys(), len(slots.DescribeConfig(cfg)))
}

func TestRequireStaff(t *testing.T) {
	assert.NoError(t, slots.RequireStaff(slots.Actor{ID: "1", Staff: true}))
	err := slots.RequireStaff(slots.Actor{ID: "2"})
	assert.ErrorIs(t, err, slots.ErrNotPermitted)
	assert.Equal(t, "not-permitted", slots.Reason(err))
}

func TestReason(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{err: nil, want: ""},
		{err: slots.ErrNotFound, want: "not-found"},
		{err: slots.ErrInvalidArgument, want: "out-of-range"},
		{err: errors.Join(errors.New("wrapped"), slots.ErrOnCooldown), want: "on-cooldown"},
		{err: errors.New("disk full"), want: "internal"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, slots.Reason(tt.err))
	}
	assert.Equal(t, "❌ Something went wrong. Please contact an admin.", slots.UserMessage(errors.New("disk full")))
	assert.Equal(t, "❌ Limit reached", slots.UserMessage(slots.ErrLimitReached))
}
