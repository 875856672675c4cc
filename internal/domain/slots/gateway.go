package slots

import "context"

type Permissions uint64

const (
	PermView Permissions = 1 << iota
	PermSend
	PermHistory
	PermAttach
	PermEmbed
	PermManageMessages
	PermManageChannels
)

const (
	ownerPerms  = PermView | PermSend | PermHistory | PermAttach | PermEmbed
	talkerPerms = PermView | PermSend | PermHistory
	botPerms    = PermView | PermSend | PermHistory | PermManageMessages | PermManageChannels
)

func (p Permissions) Has(perm Permissions) bool {
	return p&perm == perm
}

type OverwriteKind int

const (
	OverwriteRole OverwriteKind = iota
	OverwriteMember
)

type Overwrite struct {
	EntityID string
	Kind     OverwriteKind
	Allow    Permissions
	Deny     Permissions
}

type Member struct {
	ID          string
	Username    string
	DisplayName string
	Bot         bool
	Admin       bool
}

// Gateway is the chat platform. Every call may fail independently.
type Gateway interface {
	BotID() string
	EnsureCategory(ctx context.Context, guildID, name string) (string, error)
	CreateChannel(ctx context.Context, guildID, name, parentID string, overwrites []Overwrite) (string, error)
	DeleteChannel(ctx context.Context, channelID string) error
	RenameChannel(ctx context.Context, channelID, name string) error
	EditOverwrite(ctx context.Context, channelID string, overwrite Overwrite) error
	DeleteOverwrite(ctx context.Context, channelID, entityID string) error
	FetchMember(ctx context.Context, guildID, userID string) (*Member, error)
	FetchOwner(ctx context.Context, guildID string) (string, error)
	ListMembers(ctx context.Context, guildID string) ([]Member, error)
	SendMessage(ctx context.Context, channelID, content string) error
	DeleteMessage(ctx context.Context, channelID, messageID string) error
}

// Notifier delivers direct messages. Delivery failures stay inside the implementation.
type Notifier interface {
	DirectMessage(ctx context.Context, userID, content string)
}
