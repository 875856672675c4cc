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

func TestEngine_RecordMentionUse(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	slot := f.create(alice, models.CategoryWeek, 1)

	got, err := f.engine.RecordMentionUse(ctx, slot.ChannelID, models.MentionHere)
	require.NoError(t, err)
	assert.Equal(t, slots.MentionOK, got)

	for range 3 {
		got, err = f.engine.RecordMentionUse(ctx, slot.ChannelID, models.MentionHere)
		require.NoError(t, err)
		assert.Equal(t, slots.MentionViolation, got)
	}

	// @everyone has its own allowance
	got, err = f.engine.RecordMentionUse(ctx, slot.ChannelID, models.MentionEveryone)
	require.NoError(t, err)
	assert.Equal(t, slots.MentionOK, got)
	got, err = f.engine.RecordMentionUse(ctx, slot.ChannelID, models.MentionEveryone)
	require.NoError(t, err)
	assert.Equal(t, slots.MentionViolation, got)

	require.NoError(t, f.engine.ResetMentions(ctx, staff, slot.ChannelID))
	got, err = f.engine.RecordMentionUse(ctx, slot.ChannelID, models.MentionHere)
	require.NoError(t, err)
	assert.Equal(t, slots.MentionOK, got)
}

func TestEngine_RecordMentionUse_Unlimited(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	slot := f.create(alice, models.CategoryOwner, 0)

	for range 10 {
		for _, kind := range []models.MentionKind{models.MentionHere, models.MentionEveryone} {
			got, err := f.engine.RecordMentionUse(ctx, slot.ChannelID, kind)
			require.NoError(t, err)
			assert.Equal(t, slots.MentionOK, got)
		}
	}
	assert.False(t, f.slot(slot.ChannelID).HereUsed)
}

func TestEngine_ProcessMessage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	slot := f.create(alice, models.CategoryWeek, 1)

	msg := func(id, author, content string) slots.MessageInfo {
		return slots.MessageInfo{
			GuildID:   guildID,
			ChannelID: slot.ChannelID,
			MessageID: id,
			AuthorID:  author,
			GuildName: "Casino",
			Content:   content,
		}
	}

	tests := []struct {
		name        string
		msg         slots.MessageInfo
		wantViolate []models.MentionKind
		wantDeleted bool
	}{
		{name: "first @here", msg: msg("1", alice.ID, "drop live @here")},
		{name: "talker mentions are not tracked", msg: msg("2", bob.ID, "@here @everyone")},
		{name: "second @here", msg: msg("3", alice.ID, "again @here"), wantViolate: []models.MentionKind{models.MentionHere}, wantDeleted: true},
		{name: "both kinds in one message", msg: msg("4", alice.ID, "@everyone and @here"), wantViolate: []models.MentionKind{models.MentionHere}, wantDeleted: true},
		{name: "@everyone spent", msg: msg("5", alice.ID, "@everyone"), wantViolate: []models.MentionKind{models.MentionEveryone}, wantDeleted: true},
		{name: "plain message", msg: msg("6", alice.ID, "hello")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.engine.ProcessMessage(ctx, tt.msg)
			require.NoError(t, err)
			assert.Equal(t, tt.wantViolate, got.Violations)
			assert.Equal(t, tt.wantDeleted, got.Deleted)
		})
	}

	assert.Equal(t, []string{slot.ChannelID + "/3", slot.ChannelID + "/4", slot.ChannelID + "/5"}, f.calls.removed)
	assert.Equal(t, []string{alice.ID, alice.ID, alice.ID}, f.calls.dms)
}

func TestEngine_ProcessMessage_Activity(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	f.store.PutConfig(models.GuildConfig{GuildID: guildID, ActivityMessageThreshold: 3})
	slot := f.create(alice, models.CategoryWeek, 1)

	post := func() {
		_, err := f.engine.ProcessMessage(ctx, slots.MessageInfo{GuildID: guildID, ChannelID: slot.ChannelID, AuthorID: alice.ID, Content: "hi"})
		require.NoError(t, err)
	}

	f.advance(48 * time.Hour)
	post()
	post()
	assert.Equal(t, t0, f.slot(slot.ChannelID).LastActivityAt)
	assert.Equal(t, 2, f.slot(slot.ChannelID).ActivityCount)

	post()
	assert.Equal(t, f.now, f.slot(slot.ChannelID).LastActivityAt)
	assert.Equal(t, 0, f.slot(slot.ChannelID).ActivityCount)
}

func TestEngine_ProcessMessage_NotASlot(t *testing.T) {
	f := newFixture(t, nil)
	got, err := f.engine.ProcessMessage(context.Background(), slots.MessageInfo{ChannelID: "42", AuthorID: alice.ID, Content: "@everyone"})
	require.NoError(t, err)
	assert.Empty(t, got.Violations)
	assert.Empty(t, f.calls.removed)
}
