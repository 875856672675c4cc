package slots_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/slotkeeper/slotbot/internal/domain/slots"
	"github.com/slotkeeper/slotbot/internal/domain/slots/mock"
	"github.com/slotkeeper/slotbot/internal/domain/slots/slotstest"
	"github.com/slotkeeper/slotbot/slotbot/database/models"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const (
	guildID = "100"
	botID   = "999"
)

var (
	t0    = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	staff = slots.Actor{ID: "1", Name: "admin", Staff: true}
	alice = slots.Actor{ID: "200", Name: "Alice"}
	bob   = slots.Actor{ID: "300", Name: "Bob"}
	carol = slots.Actor{ID: "400", Name: "Carol"}
)

type allMocks struct {
	gateway  *mock.MockGateway
	notifier *mock.MockNotifier
}

type recorded struct {
	mu       sync.Mutex
	created  []string
	renamed  []string
	deleted  []string
	messages []string
	edits    []slots.Overwrite
	revoked  []string
	removed  []string
	dms      []string
}

func (r *recorded) add(list *[]string, v string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	*list = append(*list, v)
}

type fixture struct {
	t      *testing.T
	store  *slotstest.Store
	engine *slots.Engine
	mocks  allMocks
	calls  *recorded
	now    time.Time
	nextID int
}

// newFixture wires an engine to the in-memory store. Expectations set in
// buildMock take precedence over the permissive defaults added afterwards.
func newFixture(t *testing.T, buildMock func(m allMocks)) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &fixture{
		t:      t,
		store:  slotstest.New(),
		calls:  &recorded{},
		now:    t0,
		nextID: 5000,
		mocks: allMocks{
			gateway:  mock.NewMockGateway(ctrl),
			notifier: mock.NewMockNotifier(ctrl),
		},
	}
	if buildMock != nil {
		buildMock(f.mocks)
	}
	f.allowGateway()

	engine, err := slots.NewEngine(f.store, f.mocks.gateway, f.mocks.notifier, slots.Options{
		Now: func() time.Time { return f.now },
	})
	require.NoError(t, err)
	f.engine = engine
	return f
}

func (f *fixture) allowGateway() {
	gw, c := f.mocks.gateway.EXPECT(), f.calls
	gw.BotID().Return(botID).AnyTimes()
	gw.EnsureCategory(gomock.Any(), gomock.Any(), gomock.Any()).Return("50", nil).AnyTimes()
	gw.CreateChannel(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, _ string, name string, _ string, _ []slots.Overwrite) (string, error) {
			c.add(&c.created, name)
			c.mu.Lock()
			defer c.mu.Unlock()
			f.nextID++
			return fmt.Sprint(f.nextID), nil
		}).AnyTimes()
	gw.DeleteChannel(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, channelID string) error {
			c.add(&c.deleted, channelID)
			return nil
		}).AnyTimes()
	gw.RenameChannel(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, channelID, name string) error {
			c.add(&c.renamed, channelID+"="+name)
			return nil
		}).AnyTimes()
	gw.EditOverwrite(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, _ string, ow slots.Overwrite) error {
			c.mu.Lock()
			defer c.mu.Unlock()
			c.edits = append(c.edits, ow)
			return nil
		}).AnyTimes()
	gw.DeleteOverwrite(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, channelID, entityID string) error {
			c.add(&c.revoked, channelID+"/"+entityID)
			return nil
		}).AnyTimes()
	gw.SendMessage(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, channelID, content string) error {
			c.add(&c.messages, channelID+": "+content)
			return nil
		}).AnyTimes()
	gw.DeleteMessage(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, channelID, messageID string) error {
			c.add(&c.removed, channelID+"/"+messageID)
			return nil
		}).AnyTimes()
	f.mocks.notifier.EXPECT().DirectMessage(gomock.Any(), gomock.Any(), gomock.Any()).
		Do(func(_ any, userID, _ string) {
			c.add(&c.dms, userID)
		}).AnyTimes()
}

func (f *fixture) advance(d time.Duration) {
	f.now = f.now.Add(d)
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

func (f *fixture) slot(channelID string) *models.Slot {
	f.t.Helper()
	slot, err := f.store.Slots().Get(context.Background(), channelID)
	require.NoError(f.t, err)
	return slot
}

func (f *fixture) editsFor(userID string) []slots.Overwrite {
	f.calls.mu.Lock()
	defer f.calls.mu.Unlock()
	var out []slots.Overwrite
	for _, ow := range f.calls.edits {
		if ow.EntityID == userID {
			out = append(out, ow)
		}
	}
	return out
}
