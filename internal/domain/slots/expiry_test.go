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

func ptr(t time.Time) *time.Time { return &t }

func TestComputeExpiryLabel(t *testing.T) {
	tests := []struct {
		name      string
		expiresAt *time.Time
		want      slots.ExpiryLabel
		text      string
	}{
		{name: "never", expiresAt: nil, want: slots.ExpiryLabel{Never: true}, text: "never"},
		{name: "past", expiresAt: ptr(t0.Add(-time.Hour)), want: slots.ExpiryLabel{}, text: "expires today"},
		{name: "exactly now", expiresAt: ptr(t0), want: slots.ExpiryLabel{}, text: "expires today"},
		{name: "one millisecond", expiresAt: ptr(t0.Add(time.Millisecond)), want: slots.ExpiryLabel{Days: 1}, text: "1 day left"},
		{name: "exactly one day", expiresAt: ptr(t0.Add(24 * time.Hour)), want: slots.ExpiryLabel{Days: 1}, text: "1 day left"},
		{name: "rounds up", expiresAt: ptr(t0.Add(24*time.Hour + time.Millisecond)), want: slots.ExpiryLabel{Days: 2}, text: "2 days left"},
		{name: "two weeks", expiresAt: ptr(t0.Add(14 * 24 * time.Hour)), want: slots.ExpiryLabel{Days: 14}, text: "14 days left"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := slots.ComputeExpiryLabel(tt.expiresAt, t0)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.text, got.String())
		})
	}
}

func TestComputeExpiryLabel_NonIncreasing(t *testing.T) {
	expiresAt := t0.Add(14*24*time.Hour + 90*time.Minute)
	prev := slots.ComputeExpiryLabel(&expiresAt, t0).Days
	for now := t0; now.Before(expiresAt.Add(2 * time.Hour)); now = now.Add(37 * time.Minute) {
		days := slots.ComputeExpiryLabel(&expiresAt, now).Days
		require.LessOrEqual(t, days, prev, "at %s", now)
		prev = days
	}
	assert.Equal(t, 0, prev)
}

func TestChannelName(t *testing.T) {
	tests := []struct {
		name  string
		emoji string
		owner string
		label slots.ExpiryLabel
		want  string
	}{
		{name: "timed", emoji: "🎰", owner: "Alice_01", label: slots.ExpiryLabel{Days: 14}, want: "🎰-alice01s-slot-14d"},
		{name: "expiring today", emoji: "🎲", owner: "bob", label: slots.ExpiryLabel{}, want: "🎲-bobs-slot-0d"},
		{name: "permanent", emoji: "⚜️", owner: "Carol", label: slots.ExpiryLabel{Never: true}, want: "⚜️-carols-slot"},
		{name: "no usable characters", emoji: "💎", owner: "✨✨", label: slots.ExpiryLabel{Days: 3}, want: "💎-members-slot-3d"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, slots.ChannelName(tt.emoji, tt.owner, tt.label))
		})
	}
}

func TestEngine_RefreshName_Idempotent(t *testing.T) {
	f := newFixture(t, nil)
	slot := f.create(alice, models.CategoryWeek, 2)
	assert.Equal(t, "🎰-alices-slot-14d", slot.ChannelName)

	renamed, err := f.engine.RefreshName(context.Background(), slot.ChannelID)
	require.NoError(t, err)
	assert.False(t, renamed)

	f.advance(25 * time.Hour)
	renamed, err = f.engine.RefreshName(context.Background(), slot.ChannelID)
	require.NoError(t, err)
	assert.True(t, renamed)

	renamed, err = f.engine.RefreshName(context.Background(), slot.ChannelID)
	require.NoError(t, err)
	assert.False(t, renamed)

	assert.Equal(t, []string{slot.ChannelID + "=🎰-alices-slot-13d"}, f.calls.renamed)
	assert.Equal(t, "🎰-alices-slot-13d", f.slot(slot.ChannelID).ChannelName)
}

func TestEngine_ExtendReduceScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	slot := f.create(alice, models.CategoryWeek, 2)
	require.NotNil(t, slot.ExpiresAt)
	assert.Equal(t, t0.Add(14*24*time.Hour), *slot.ExpiresAt)

	slot, err := f.engine.Extend(ctx, staff, slot.ChannelID, 3)
	require.NoError(t, err)
	assert.Equal(t, t0.Add(17*24*time.Hour), *slot.ExpiresAt)

	f.advance(time.Hour)
	slot, err = f.engine.Reduce(ctx, staff, slot.ChannelID, 20)
	require.NoError(t, err)
	assert.Equal(t, f.now.Add(60*time.Second), *slot.ExpiresAt)
	assert.Equal(t, f.now.Add(60*time.Second), *f.slot(slot.ChannelID).ExpiresAt)
	assert.Equal(t, "🎰-alices-slot-1d", f.slot(slot.ChannelID).ChannelName)
}

func TestEngine_ReduceWithinRange(t *testing.T) {
	f := newFixture(t, nil)
	slot := f.create(alice, models.CategoryMonth, 1)

	slot, err := f.engine.Reduce(context.Background(), staff, slot.ChannelID, 10)
	require.NoError(t, err)
	assert.Equal(t, t0.Add(20*24*time.Hour), *slot.ExpiresAt)
}

func TestEngine_ExpiryMutationErrors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	timed := f.create(alice, models.CategoryWeek, 1)
	perm := f.create(bob, models.CategoryPermanent, 0)

	tests := []struct {
		name    string
		call    func() error
		wantErr error
	}{
		{
			name:    "extend permanent",
			call:    func() error { _, err := f.engine.Extend(ctx, staff, perm.ChannelID, 1); return err },
			wantErr: slots.ErrInvalidArgument,
		},
		{
			name:    "reduce permanent",
			call:    func() error { _, err := f.engine.Reduce(ctx, staff, perm.ChannelID, 1); return err },
			wantErr: slots.ErrInvalidArgument,
		},
		{
			name:    "extend by zero",
			call:    func() error { _, err := f.engine.Extend(ctx, staff, timed.ChannelID, 0); return err },
			wantErr: slots.ErrInvalidArgument,
		},
		{
			name:    "extend as member",
			call:    func() error { _, err := f.engine.Extend(ctx, alice, timed.ChannelID, 1); return err },
			wantErr: slots.ErrNotPermitted,
		},
		{
			name:    "extend unknown channel",
			call:    func() error { _, err := f.engine.Extend(ctx, staff, "404", 1); return err },
			wantErr: slots.ErrNotFound,
		},
		{
			name:    "set expiry to now",
			call:    func() error { _, err := f.engine.SetExpiry(ctx, staff, timed.ChannelID, t0); return err },
			wantErr: slots.ErrInvalidArgument,
		},
		{
			name:    "set expiry in the past",
			call:    func() error { _, err := f.engine.SetExpiry(ctx, staff, timed.ChannelID, t0.Add(-time.Hour)); return err },
			wantErr: slots.ErrInvalidArgument,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, tt.call(), tt.wantErr)
		})
	}

	assert.Equal(t, t0.Add(7*24*time.Hour), *f.slot(timed.ChannelID).ExpiresAt)
	assert.Nil(t, f.slot(perm.ChannelID).ExpiresAt)
}

func TestEngine_SetExpiry(t *testing.T) {
	f := newFixture(t, nil)
	slot := f.create(alice, models.CategoryWeek, 1)
	at := t0.Add(3 * 24 * time.Hour)

	slot, err := f.engine.SetExpiry(context.Background(), staff, slot.ChannelID, at)
	require.NoError(t, err)
	assert.Equal(t, at, *slot.ExpiresAt)
	assert.Equal(t, "🎰-alices-slot-3d", f.slot(slot.ChannelID).ChannelName)
}
