// Package slotstest provides an in-memory DataManager for engine and sweep tests.
package slotstest

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/slotkeeper/slotbot/internal/domain/slots"
	"github.com/slotkeeper/slotbot/slotbot/database/models"
)

type pair struct{ a, b string }

type state struct {
	slots      map[string]models.Slot
	talkers    map[pair]time.Time
	history    []models.SlotHistory
	claims     map[string]models.ClaimSlot
	warnings   []models.Warning
	strikes    map[pair]int
	blacklist  map[pair]models.BlacklistEntry
	freeUsed   map[pair]time.Time
	cooldowns  map[pair]time.Time
	reminders  map[pair]bool
	configs    map[string]models.GuildConfig
	weekends   map[string]models.WeekendState
	verify     map[string]models.VerifyMessage
	audit      []models.AuditEntry
	historySeq int64
}

func (s *state) clone() *state {
	return &state{
		slots:      maps.Clone(s.slots),
		talkers:    maps.Clone(s.talkers),
		history:    slices.Clone(s.history),
		claims:     maps.Clone(s.claims),
		warnings:   slices.Clone(s.warnings),
		strikes:    maps.Clone(s.strikes),
		blacklist:  maps.Clone(s.blacklist),
		freeUsed:   maps.Clone(s.freeUsed),
		cooldowns:  maps.Clone(s.cooldowns),
		reminders:  maps.Clone(s.reminders),
		configs:    maps.Clone(s.configs),
		weekends:   maps.Clone(s.weekends),
		verify:     maps.Clone(s.verify),
		audit:      slices.Clone(s.audit),
		historySeq: s.historySeq,
	}
}

// Store keeps every table in maps. Transactions snapshot the whole state and
// restore it when the callback fails.
type Store struct {
	mu sync.Mutex
	st *state

	// FailSlotInsert makes the next slot insert fail with this error.
	FailSlotInsert error
}

var ErrDuplicate = errors.New("duplicate key")

func New() *Store {
	return &Store{st: &state{
		slots:     map[string]models.Slot{},
		talkers:   map[pair]time.Time{},
		claims:    map[string]models.ClaimSlot{},
		strikes:   map[pair]int{},
		blacklist: map[pair]models.BlacklistEntry{},
		freeUsed:  map[pair]time.Time{},
		cooldowns: map[pair]time.Time{},
		reminders: map[pair]bool{},
		configs:   map[string]models.GuildConfig{},
		weekends:  map[string]models.WeekendState{},
		verify:    map[string]models.VerifyMessage{},
	}}
}

func (s *Store) WithTransaction(ctx context.Context, fn func(dm slots.DataManager) error) error {
	s.mu.Lock()
	snapshot := s.st.clone()
	s.mu.Unlock()

	if err := fn(s); err != nil {
		s.mu.Lock()
		s.st = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) Slots() slots.SlotRepo { return slotRepo{s} }
func (s *Store) Talkers() slots.TalkerRepo { return talkerRepo{s} }
func (s *Store) History() slots.HistoryRepo { return historyRepo{s} }
func (s *Store) Claims() slots.ClaimSlotRepo { return claimRepo{s} }
func (s *Store) Moderation() slots.ModerationRepo { return moderationRepo{s} }
func (s *Store) Guilds() slots.GuildRepo { return guildRepo{s} }
func (s *Store) Cooldowns() slots.CooldownRepo { return cooldownRepo{s} }
func (s *Store) Audit() slots.AuditRepo { return auditRepo{s} }

func (s *Store) lock() func() {
	s.mu.Lock()
	return s.mu.Unlock
}

// PutSlot seeds a slot row directly.
func (s *Store) PutSlot(slot models.Slot) {
	defer s.lock()()
	s.st.slots[slot.ChannelID] = slot
}

// PutClaim seeds a claim slot row directly.
func (s *Store) PutClaim(claim models.ClaimSlot) {
	defer s.lock()()
	s.st.claims[claim.ChannelID] = claim
}

func (s *Store) PutConfig(cfg models.GuildConfig) {
	defer s.lock()()
	s.st.configs[cfg.GuildID] = cfg
}

func (s *Store) SlotCount() int {
	defer s.lock()()
	return len(s.st.slots)
}

func (s *Store) HistoryEntries() []models.SlotHistory {
	defer s.lock()()
	return slices.Clone(s.st.history)
}

func (s *Store) AuditEntries() []models.AuditEntry {
	defer s.lock()()
	return slices.Clone(s.st.audit)
}

type slotRepo struct{ s *Store }

func (r slotRepo) Insert(_ context.Context, slot *models.Slot) error {
	defer r.s.lock()()
	if err := r.s.FailSlotInsert; err != nil {
		r.s.FailSlotInsert = nil
		return err
	}
	if _, ok := r.s.st.slots[slot.ChannelID]; ok {
		return ErrDuplicate
	}
	for _, existing := range r.s.st.slots {
		if existing.GuildID == slot.GuildID && existing.UserID == slot.UserID {
			return ErrDuplicate
		}
	}
	r.s.st.slots[slot.ChannelID] = *slot
	return nil
}

func (r slotRepo) Update(_ context.Context, slot *models.Slot) error {
	defer r.s.lock()()
	if _, ok := r.s.st.slots[slot.ChannelID]; !ok {
		return nil
	}
	r.s.st.slots[slot.ChannelID] = *slot
	return nil
}

func (r slotRepo) Delete(_ context.Context, channelID string) (bool, error) {
	defer r.s.lock()()
	_, ok := r.s.st.slots[channelID]
	delete(r.s.st.slots, channelID)
	return ok, nil
}

func (r slotRepo) Get(_ context.Context, channelID string) (*models.Slot, error) {
	defer r.s.lock()()
	slot, ok := r.s.st.slots[channelID]
	if !ok {
		return nil, nil
	}
	return &slot, nil
}

func (r slotRepo) GetByUser(_ context.Context, guildID, userID string) (*models.Slot, error) {
	defer r.s.lock()()
	for _, slot := range r.s.st.slots {
		if slot.GuildID == guildID && slot.UserID == userID {
			return &slot, nil
		}
	}
	return nil, nil
}

func (r slotRepo) list(filter func(models.Slot) bool) []*models.Slot {
	defer r.s.lock()()
	var out []*models.Slot
	for _, slot := range r.s.st.slots {
		if filter(slot) {
			out = append(out, &slot)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChannelID < out[j].ChannelID })
	return out
}

func (r slotRepo) ListByGuild(_ context.Context, guildID string) ([]*models.Slot, error) {
	return r.list(func(s models.Slot) bool { return s.GuildID == guildID }), nil
}

func (r slotRepo) ListAll(_ context.Context) ([]*models.Slot, error) {
	return r.list(func(models.Slot) bool { return true }), nil
}

func (r slotRepo) CountByGuild(ctx context.Context, guildID string) (int, error) {
	list, _ := r.ListByGuild(ctx, guildID)
	return len(list), nil
}

func (r slotRepo) ClaimMention(_ context.Context, channelID string, kind models.MentionKind) (bool, error) {
	defer r.s.lock()()
	slot, ok := r.s.st.slots[channelID]
	if !ok {
		return false, nil
	}
	flag := &slot.HereUsed
	if kind == models.MentionEveryone {
		flag = &slot.EveryoneUsed
	}
	if *flag {
		return false, nil
	}
	*flag = true
	r.s.st.slots[channelID] = slot
	return true, nil
}

func (r slotRepo) ResetMentions(_ context.Context, channelID string) error {
	defer r.s.lock()()
	if slot, ok := r.s.st.slots[channelID]; ok {
		slot.HereUsed, slot.EveryoneUsed = false, false
		r.s.st.slots[channelID] = slot
	}
	return nil
}

type talkerRepo struct{ s *Store }

func (r talkerRepo) Add(_ context.Context, channelID, userID string) (bool, error) {
	defer r.s.lock()()
	key := pair{channelID, userID}
	if _, ok := r.s.st.talkers[key]; ok {
		return false, nil
	}
	r.s.st.talkers[key] = time.Now()
	return true, nil
}

func (r talkerRepo) Remove(_ context.Context, channelID, userID string) (bool, error) {
	defer r.s.lock()()
	key := pair{channelID, userID}
	_, ok := r.s.st.talkers[key]
	delete(r.s.st.talkers, key)
	return ok, nil
}

func (r talkerRepo) List(_ context.Context, channelID string) ([]string, error) {
	defer r.s.lock()()
	var out []string
	for key := range r.s.st.talkers {
		if key.a == channelID {
			out = append(out, key.b)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (r talkerRepo) Count(ctx context.Context, channelID string) (int, error) {
	list, _ := r.List(ctx, channelID)
	return len(list), nil
}

func (r talkerRepo) DeleteAll(_ context.Context, channelID string) error {
	defer r.s.lock()()
	for key := range r.s.st.talkers {
		if key.a == channelID {
			delete(r.s.st.talkers, key)
		}
	}
	return nil
}

type historyRepo struct{ s *Store }

func (r historyRepo) Open(_ context.Context, entry *models.SlotHistory) error {
	defer r.s.lock()()
	r.s.st.historySeq++
	entry.ID = r.s.st.historySeq
	r.s.st.history = append(r.s.st.history, *entry)
	return nil
}

func (r historyRepo) Close(_ context.Context, channelID string, closedAt time.Time, reason string) error {
	defer r.s.lock()()
	for i := range r.s.st.history {
		h := &r.s.st.history[i]
		if h.ChannelID == channelID && h.ClosedAt == nil {
			at := closedAt
			h.ClosedAt = &at
			h.CloseReason = reason
		}
	}
	return nil
}

func (r historyRepo) filter(keep func(models.SlotHistory) bool) []*models.SlotHistory {
	defer r.s.lock()()
	var out []*models.SlotHistory
	for i := len(r.s.st.history) - 1; i >= 0; i-- {
		if h := r.s.st.history[i]; keep(h) {
			out = append(out, &h)
		}
	}
	return out
}

func (r historyRepo) ListByUser(_ context.Context, guildID, userID string) ([]*models.SlotHistory, error) {
	return r.filter(func(h models.SlotHistory) bool { return h.GuildID == guildID && h.UserID == userID }), nil
}

func (r historyRepo) ListByGuild(_ context.Context, guildID string) ([]*models.SlotHistory, error) {
	return r.filter(func(h models.SlotHistory) bool { return h.GuildID == guildID }), nil
}

type claimRepo struct{ s *Store }

func (r claimRepo) Insert(_ context.Context, claim *models.ClaimSlot) error {
	defer r.s.lock()()
	if _, ok := r.s.st.claims[claim.ChannelID]; ok {
		return ErrDuplicate
	}
	r.s.st.claims[claim.ChannelID] = *claim
	return nil
}

func (r claimRepo) Get(_ context.Context, channelID string) (*models.ClaimSlot, error) {
	defer r.s.lock()()
	claim, ok := r.s.st.claims[channelID]
	if !ok {
		return nil, nil
	}
	return &claim, nil
}

func (r claimRepo) ListByGuild(_ context.Context, guildID string) ([]*models.ClaimSlot, error) {
	defer r.s.lock()()
	var out []*models.ClaimSlot
	for _, claim := range r.s.st.claims {
		if claim.GuildID == guildID {
			out = append(out, &claim)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChannelID < out[j].ChannelID })
	return out, nil
}

func (r claimRepo) TryClaim(_ context.Context, channelID, userID string, claimedAt, expiresAt time.Time) (bool, error) {
	defer r.s.lock()()
	claim, ok := r.s.st.claims[channelID]
	if !ok || claim.ClaimedBy != "" {
		return false, nil
	}
	claim.ClaimedBy = userID
	claim.ClaimedAt = &claimedAt
	claim.ExpiresAt = &expiresAt
	r.s.st.claims[channelID] = claim
	return true, nil
}

func (r claimRepo) Release(_ context.Context, channelID string) error {
	defer r.s.lock()()
	if claim, ok := r.s.st.claims[channelID]; ok {
		claim.ClaimedBy, claim.ClaimedAt, claim.ExpiresAt = "", nil, nil
		r.s.st.claims[channelID] = claim
	}
	return nil
}

func (r claimRepo) UpdateExpiry(_ context.Context, channelID string, expiresAt *time.Time) error {
	defer r.s.lock()()
	if claim, ok := r.s.st.claims[channelID]; ok {
		claim.ExpiresAt = expiresAt
		r.s.st.claims[channelID] = claim
	}
	return nil
}

func (r claimRepo) ListExpired(_ context.Context, now time.Time) ([]*models.ClaimSlot, error) {
	defer r.s.lock()()
	var out []*models.ClaimSlot
	for _, claim := range r.s.st.claims {
		if claim.Status(now) == models.ClaimStatusExpired {
			out = append(out, &claim)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChannelID < out[j].ChannelID })
	return out, nil
}

type moderationRepo struct{ s *Store }

func (r moderationRepo) AddWarning(_ context.Context, warning *models.Warning) error {
	defer r.s.lock()()
	warning.ID = int64(len(r.s.st.warnings) + 1)
	r.s.st.warnings = append(r.s.st.warnings, *warning)
	return nil
}

func (r moderationRepo) ListWarnings(_ context.Context, guildID, userID string) ([]*models.Warning, error) {
	defer r.s.lock()()
	var out []*models.Warning
	for _, w := range r.s.st.warnings {
		if w.GuildID == guildID && w.UserID == userID {
			out = append(out, &w)
		}
	}
	return out, nil
}

func (r moderationRepo) IncrementStrikes(_ context.Context, guildID, userID string) (int, error) {
	defer r.s.lock()()
	key := pair{guildID, userID}
	r.s.st.strikes[key]++
	return r.s.st.strikes[key], nil
}

func (r moderationRepo) ResetStrikes(_ context.Context, guildID, userID string) error {
	defer r.s.lock()()
	r.s.st.strikes[pair{guildID, userID}] = 0
	return nil
}

func (r moderationRepo) Strikes(_ context.Context, guildID, userID string) (int, error) {
	defer r.s.lock()()
	return r.s.st.strikes[pair{guildID, userID}], nil
}

func (r moderationRepo) AddBlacklist(_ context.Context, entry *models.BlacklistEntry) (bool, error) {
	defer r.s.lock()()
	key := pair{entry.GuildID, entry.UserID}
	if _, ok := r.s.st.blacklist[key]; ok {
		return false, nil
	}
	r.s.st.blacklist[key] = *entry
	return true, nil
}

func (r moderationRepo) RemoveBlacklist(_ context.Context, guildID, userID string) (bool, error) {
	defer r.s.lock()()
	key := pair{guildID, userID}
	_, ok := r.s.st.blacklist[key]
	delete(r.s.st.blacklist, key)
	return ok, nil
}

func (r moderationRepo) IsBlacklisted(_ context.Context, guildID, userID string) (bool, error) {
	defer r.s.lock()()
	_, ok := r.s.st.blacklist[pair{guildID, userID}]
	return ok, nil
}

func (r moderationRepo) ListBlacklist(_ context.Context, guildID string) ([]*models.BlacklistEntry, error) {
	defer r.s.lock()()
	var out []*models.BlacklistEntry
	for _, entry := range r.s.st.blacklist {
		if entry.GuildID == guildID {
			out = append(out, &entry)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (r moderationRepo) MarkFreeUsed(_ context.Context, guildID, userID string, at time.Time) error {
	defer r.s.lock()()
	key := pair{guildID, userID}
	if _, ok := r.s.st.freeUsed[key]; !ok {
		r.s.st.freeUsed[key] = at
	}
	return nil
}

func (r moderationRepo) FreeUsed(_ context.Context, guildID, userID string) (bool, error) {
	defer r.s.lock()()
	_, ok := r.s.st.freeUsed[pair{guildID, userID}]
	return ok, nil
}

func (r moderationRepo) SetReminder(_ context.Context, guildID, userID string, on bool) error {
	defer r.s.lock()()
	if on {
		r.s.st.reminders[pair{guildID, userID}] = true
	} else {
		delete(r.s.st.reminders, pair{guildID, userID})
	}
	return nil
}

func (r moderationRepo) ReminderOptedIn(_ context.Context, guildID, userID string) (bool, error) {
	defer r.s.lock()()
	return r.s.st.reminders[pair{guildID, userID}], nil
}

type guildRepo struct{ s *Store }

func (r guildRepo) Config(_ context.Context, guildID string) (*models.GuildConfig, error) {
	defer r.s.lock()()
	cfg, ok := r.s.st.configs[guildID]
	if !ok {
		return nil, nil
	}
	return &cfg, nil
}

func (r guildRepo) SaveConfig(_ context.Context, cfg *models.GuildConfig) error {
	defer r.s.lock()()
	r.s.st.configs[cfg.GuildID] = *cfg
	return nil
}

func (r guildRepo) ListConfigs(_ context.Context) ([]*models.GuildConfig, error) {
	defer r.s.lock()()
	var out []*models.GuildConfig
	for _, cfg := range r.s.st.configs {
		out = append(out, &cfg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GuildID < out[j].GuildID })
	return out, nil
}

func (r guildRepo) WeekendState(_ context.Context, guildID string) (*models.WeekendState, error) {
	defer r.s.lock()()
	state, ok := r.s.st.weekends[guildID]
	if !ok {
		return nil, nil
	}
	return &state, nil
}

func (r guildRepo) SaveWeekendState(_ context.Context, state *models.WeekendState) error {
	defer r.s.lock()()
	r.s.st.weekends[state.GuildID] = *state
	return nil
}

func (r guildRepo) VerifyMessage(_ context.Context, guildID string) (*models.VerifyMessage, error) {
	defer r.s.lock()()
	msg, ok := r.s.st.verify[guildID]
	if !ok {
		return nil, nil
	}
	return &msg, nil
}

func (r guildRepo) SaveVerifyMessage(_ context.Context, msg *models.VerifyMessage) error {
	defer r.s.lock()()
	r.s.st.verify[msg.GuildID] = *msg
	return nil
}

type cooldownRepo struct{ s *Store }

func (r cooldownRepo) Start(_ context.Context, guildID, userID string, until time.Time) error {
	defer r.s.lock()()
	r.s.st.cooldowns[pair{guildID, userID}] = until
	return nil
}

func (r cooldownRepo) Until(_ context.Context, guildID, userID string) (time.Time, error) {
	defer r.s.lock()()
	return r.s.st.cooldowns[pair{guildID, userID}], nil
}

type auditRepo struct{ s *Store }

func (r auditRepo) Append(_ context.Context, entry *models.AuditEntry) error {
	defer r.s.lock()()
	entry.ID = int64(len(r.s.st.audit) + 1)
	r.s.st.audit = append(r.s.st.audit, *entry)
	return nil
}

func (r auditRepo) List(_ context.Context, guildID string, limit int) ([]*models.AuditEntry, error) {
	defer r.s.lock()()
	var out []*models.AuditEntry
	for i := len(r.s.st.audit) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		if e := r.s.st.audit[i]; e.GuildID == guildID {
			out = append(out, &e)
		}
	}
	return out, nil
}
