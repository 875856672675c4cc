package slots

import (
	"time"

	"github.com/slotkeeper/slotbot/slotbot/database/models"
)

// Actor is whoever triggered an operation. Staff covers the community owner
// and members with the administrator permission.
type Actor struct {
	ID    string
	Name  string
	Staff bool
}

// System is the actor used for sweep driven transitions.
var System = Actor{ID: "system", Name: "sweep", Staff: true}

type CreateRequest struct {
	GuildID  string
	UserID   string
	UserName string
	Category models.SlotCategory
	// Units is weeks for week slots, months for month slots and days for
	// weekend and claimed slots. Ignored for the never-expiring categories.
	Units int
}

type MentionResult int

const (
	MentionOK MentionResult = iota
	MentionViolation
)

// MessageInfo is what the message listener knows about a post in a slot channel.
type MessageInfo struct {
	GuildID   string
	ChannelID string
	MessageID string
	AuthorID  string
	GuildName string
	Content   string
}

type MessageOutcome struct {
	Violations []models.MentionKind
	Deleted    bool
}

type SlotDetails struct {
	Slot    *models.Slot
	Talkers []string
	Label   ExpiryLabel
}

type WeekendReport struct {
	Opened  int
	Closed  int
	Skipped int
}

type StrikeResult struct {
	Count   int
	Revoked bool
}

type ClaimResult struct {
	Slot      *models.Slot
	ExpiresAt time.Time
}
