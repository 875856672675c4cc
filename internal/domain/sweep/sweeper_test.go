package sweep_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/slotkeeper/slotbot/internal/domain/slots"
	"github.com/slotkeeper/slotbot/internal/domain/slots/mock"
	"github.com/slotkeeper/slotbot/internal/domain/slots/slotstest"
	"github.com/slotkeeper/slotbot/internal/domain/sweep"
	"github.com/slotkeeper/slotbot/slotbot/database/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const guildID = "100"

var (
	// a Friday
	t0    = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	staff = slots.Actor{ID: "1", Name: "admin", Staff: true}
	alice = slots.Actor{ID: "200", Name: "Alice"}
	bob   = slots.Actor{ID: "300", Name: "Bob"}

	weekend = sweep.Window{OpenDay: time.Friday, OpenHour: 18, CloseDay: time.Monday, CloseHour: 0}
)

type fixture struct {
	t       *testing.T
	store   *slotstest.Store
	engine  *slots.Engine
	sweeper *sweep.Sweeper
	now     time.Time

	mu      sync.Mutex
	nextID  int
	deleted []string
	renamed []string
	dms     []string
}

func newFixture(t *testing.T, setup func(store *slotstest.Store)) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	gateway := mock.NewMockGateway(ctrl)
	notifier := mock.NewMockNotifier(ctrl)
	f := &fixture{t: t, store: slotstest.New(), now: t0, nextID: 7000}
	if setup != nil {
		setup(f.store)
	}

	gw := gateway.EXPECT()
	gw.BotID().Return("999").AnyTimes()
	gw.EnsureCategory(gomock.Any(), gomock.Any(), gomock.Any()).Return("50", nil).AnyTimes()
	gw.CreateChannel(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, _, _, _ string, _ []slots.Overwrite) (string, error) {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.nextID++
			return fmt.Sprint(f.nextID), nil
		}).AnyTimes()
	gw.DeleteChannel(gomock.Any(), gomock.Any()).DoAndReturn(func(_ any, channelID string) error {
		f.record(&f.deleted, channelID)
		return nil
	}).AnyTimes()
	gw.RenameChannel(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(func(_ any, channelID, name string) error {
		f.record(&f.renamed, name)
		return nil
	}).AnyTimes()
	gw.EditOverwrite(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	gw.DeleteOverwrite(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	gw.SendMessage(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	gw.ListMembers(gomock.Any(), guildID).Return([]slots.Member{
		{ID: alice.ID, Username: "alice"},
		{ID: bob.ID, Username: "bob"},
	}, nil).AnyTimes()
	notifier.EXPECT().DirectMessage(gomock.Any(), gomock.Any(), gomock.Any()).Do(func(_ any, userID, _ string) {
		f.record(&f.dms, userID)
	}).AnyTimes()

	engine, err := slots.NewEngine(f.store, gateway, notifier, slots.Options{
		Now: func() time.Time { return f.now },
	})
	require.NoError(t, err)
	f.engine = engine
	f.sweeper = sweep.New(engine, sweep.Options{Interval: time.Minute, Weekend: weekend})
	return f
}

func (f *fixture) record(list *[]string, v string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	*list = append(*list, v)
}

func (f *fixture) create(user slots.Actor, category models.SlotCategory, units int) *models.Slot {
	f.t.Helper()
	slot, err := f.engine.Create(context.Background(), staff, slots.CreateRequest{
		GuildID:  guildID,
		UserID:   user.ID,
		UserName: user.Name,
		Category: category,
		Units:    units,
	})
	require.NoError(f.t, err)
	return slot
}

func (f *fixture) run() sweep.Report {
	f.t.Helper()
	report, err := f.sweeper.RunOnce(context.Background())
	require.NoError(f.t, err)
	return report
}

func TestSweeper_ExpiresSlotOnce(t *testing.T) {
	f := newFixture(t, nil)
	slot := f.create(alice, models.CategoryWeek, 1)

	f.now = t0.Add(7 * 24 * time.Hour)
	assert.Equal(t, 1, f.run().SlotsExpired)
	assert.Equal(t, 0, f.store.SlotCount())
	assert.Equal(t, []string{slot.ChannelID}, f.deleted)

	assert.Equal(t, sweep.Report{}, f.run())
	assert.Equal(t, []string{slot.ChannelID}, f.deleted)

	history := f.store.HistoryEntries()
	require.Len(t, history, 1)
	assert.Equal(t, "expired", history[0].CloseReason)
}

func TestSweeper_RefreshesNamesWithoutRepeating(t *testing.T) {
	f := newFixture(t, nil)
	slot := f.create(alice, models.CategoryWeek, 2)
	assert.Contains(t, slot.ChannelName, "-14d")

	f.now = t0.Add(24 * time.Hour)
	f.run()
	f.run()
	require.Len(t, f.renamed, 1)
	assert.Contains(t, f.renamed[0], "-13d")
}

func TestSweeper_ExpiresClaimWithoutDeletingChannel(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	claim, err := f.engine.CreateClaimSlot(ctx, staff, guildID, "VIP", 2)
	require.NoError(t, err)
	_, err = f.engine.Claim(ctx, alice, claim.ChannelID)
	require.NoError(t, err)

	f.now = t0.Add(24 * time.Hour)
	report := f.run()
	assert.Equal(t, 0, report.ClaimsExpired)
	assert.Equal(t, 0, report.SlotsExpired)
	assert.Equal(t, 1, f.store.SlotCount())

	f.now = t0.Add(48 * time.Hour)
	assert.Equal(t, 1, f.run().ClaimsExpired)

	stored, err := f.store.Claims().Get(ctx, claim.ChannelID)
	require.NoError(t, err)
	assert.Empty(t, stored.ClaimedBy)
	assert.Nil(t, stored.ClaimedAt)
	assert.Nil(t, stored.ExpiresAt)
	assert.Equal(t, 0, f.store.SlotCount())
	assert.Empty(t, f.deleted)

	assert.Equal(t, sweep.Report{}, f.run())
}

func TestSweeper_RefreshesClaimedSlotName(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	claim, err := f.engine.CreateClaimSlot(ctx, staff, guildID, "VIP", 5)
	require.NoError(t, err)
	_, err = f.engine.Claim(ctx, alice, claim.ChannelID)
	require.NoError(t, err)

	slot, err := f.store.Slots().Get(ctx, claim.ChannelID)
	require.NoError(t, err)
	assert.Contains(t, slot.ChannelName, "-5d")

	f.now = t0.Add(72 * time.Hour)
	report := f.run()
	assert.Equal(t, 0, report.SlotsExpired)
	assert.Equal(t, 0, report.ClaimsExpired)

	slot, err = f.store.Slots().Get(ctx, claim.ChannelID)
	require.NoError(t, err)
	require.NotNil(t, slot)
	assert.Contains(t, slot.ChannelName, "-2d")
	require.NotEmpty(t, f.renamed)
	assert.Contains(t, f.renamed[len(f.renamed)-1], "-2d")
	assert.Empty(t, f.deleted)
}

func TestSweeper_RemindsOncePerExpiry(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	require.NoError(t, f.engine.SetReminder(ctx, alice, guildID, true))
	slot := f.create(alice, models.CategoryWeek, 1)
	f.create(bob, models.CategoryWeek, 1)

	f.now = t0.Add(3 * 24 * time.Hour)
	assert.Equal(t, 0, f.run().Reminded)

	f.now = t0.Add(4*24*time.Hour + time.Hour)
	assert.Equal(t, 1, f.run().Reminded)
	assert.Equal(t, 0, f.run().Reminded)
	assert.Equal(t, []string{alice.ID}, f.dms)

	_, err := f.engine.Reduce(ctx, staff, slot.ChannelID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, f.run().Reminded)
	assert.Equal(t, []string{alice.ID, alice.ID}, f.dms)
}

func TestSweeper_LocksInactiveAndReleasesSuspensions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, func(store *slotstest.Store) {
		store.PutConfig(models.GuildConfig{GuildID: guildID, InactivityDays: 3, SlotLimit: 10})
	})
	quiet := f.create(alice, models.CategoryPermanent, 0)
	suspended := f.create(bob, models.CategoryPermanent, 0)
	_, err := f.engine.Suspend(ctx, staff, suspended.ChannelID, 1)
	require.NoError(t, err)

	f.now = t0.Add(25 * time.Hour)
	report := f.run()
	assert.Equal(t, 1, report.Released)
	assert.Equal(t, 0, report.Locked)

	f.now = t0.Add(3 * 24 * time.Hour)
	report = f.run()
	assert.Equal(t, 1, report.Locked)

	stored, err := f.store.Slots().Get(ctx, quiet.ChannelID)
	require.NoError(t, err)
	assert.True(t, stored.Locked)

	// released slots count as fresh activity
	stored, err = f.store.Slots().Get(ctx, suspended.ChannelID)
	require.NoError(t, err)
	assert.False(t, stored.Locked)
	assert.Nil(t, stored.SuspendedUntil)

	assert.Equal(t, 0, f.run().Locked)
}

func TestSweeper_WeekendWindow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, func(store *slotstest.Store) {
		store.PutConfig(models.GuildConfig{GuildID: guildID, WeekendEnabled: true})
	})

	assert.Equal(t, 0, f.run().WeekendsOpened)

	f.now = time.Date(2024, 3, 1, 18, 5, 0, 0, time.UTC)
	assert.Equal(t, 1, f.run().WeekendsOpened)
	assert.Equal(t, 2, f.store.SlotCount())
	assert.Equal(t, 0, f.run().WeekendsOpened)

	active, err := f.engine.WeekendActive(ctx, guildID)
	require.NoError(t, err)
	assert.True(t, active)

	f.now = time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 1, f.run().WeekendsClosed)
	assert.Equal(t, 0, f.store.SlotCount())
	assert.Equal(t, sweep.Report{}, f.run())
}

func TestSweeper_StopsWithContext(t *testing.T) {
	f := newFixture(t, nil)
	f.create(alice, models.CategoryWeek, 1)
	f.now = t0.Add(8 * 24 * time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	f.sweeper.Start(ctx)
	require.Eventually(t, func() bool {
		f.mu.Lock()
		defer f.mu.Unlock()
		return len(f.deleted) == 1
	}, time.Second, 10*time.Millisecond)
	cancel()
}
