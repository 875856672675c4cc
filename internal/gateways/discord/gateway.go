package discord

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
	"github.com/slotkeeper/slotbot/internal/domain/slots"
)

const membersPageSize = 1000

var permissionMap = []struct {
	slot    slots.Permissions
	discord discord.Permissions
}{
	{slots.PermView, discord.PermissionViewChannel},
	{slots.PermSend, discord.PermissionSendMessages},
	{slots.PermHistory, discord.PermissionReadMessageHistory},
	{slots.PermAttach, discord.PermissionAttachFiles},
	{slots.PermEmbed, discord.PermissionEmbedLinks},
	{slots.PermManageMessages, discord.PermissionManageMessages},
	{slots.PermManageChannels, discord.PermissionManageChannels},
}

func toDiscordPermissions(p slots.Permissions) discord.Permissions {
	var out discord.Permissions
	for _, m := range permissionMap {
		if p.Has(m.slot) {
			out = out.Add(m.discord)
		}
	}
	return out
}

func parseID(kind, id string) (snowflake.ID, error) {
	parsed, err := snowflake.Parse(id)
	if err != nil {
		return 0, fmt.Errorf("invalid %s id %q: %w", kind, id, err)
	}
	return parsed, nil
}

// Gateway runs slot side effects against the Discord REST API.
type Gateway struct {
	client bot.Client
}

var _ slots.Gateway = (*Gateway)(nil)

func NewGateway(client bot.Client) *Gateway {
	return &Gateway{client: client}
}

func (g *Gateway) BotID() string {
	return g.client.ID().String()
}

func (g *Gateway) EnsureCategory(ctx context.Context, guildID, name string) (string, error) {
	gid, err := parseID("guild", guildID)
	if err != nil {
		return "", err
	}
	channels, err := g.client.Rest().GetGuildChannels(gid, rest.WithCtx(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to list channels: %w", err)
	}
	for _, ch := range channels {
		if ch.Type() == discord.ChannelTypeGuildCategory && strings.EqualFold(ch.Name(), name) {
			return ch.ID().String(), nil
		}
	}

	created, err := g.client.Rest().CreateGuildChannel(gid, discord.GuildCategoryChannelCreate{Name: name}, rest.WithCtx(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to create category %q: %w", name, err)
	}
	slog.Info("Created slot category",
		slog.String("type", "sys"),
		slog.String("guild_id", guildID),
		slog.String("category_id", created.ID().String()),
	)
	return created.ID().String(), nil
}

func (g *Gateway) CreateChannel(ctx context.Context, guildID, name, parentID string, overwrites []slots.Overwrite) (string, error) {
	gid, err := parseID("guild", guildID)
	if err != nil {
		return "", err
	}
	create := discord.GuildTextChannelCreate{Name: name}
	if parentID != "" {
		if create.ParentID, err = parseID("category", parentID); err != nil {
			return "", err
		}
	}
	for _, ow := range overwrites {
		converted, err := toPermissionOverwrite(ow)
		if err != nil {
			return "", err
		}
		create.PermissionOverwrites = append(create.PermissionOverwrites, converted)
	}

	ch, err := g.client.Rest().CreateGuildChannel(gid, create, rest.WithCtx(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to create channel %q: %w", name, err)
	}
	return ch.ID().String(), nil
}

func toPermissionOverwrite(ow slots.Overwrite) (discord.PermissionOverwrite, error) {
	id, err := parseID("overwrite", ow.EntityID)
	if err != nil {
		return nil, err
	}
	allow, deny := toDiscordPermissions(ow.Allow), toDiscordPermissions(ow.Deny)
	if ow.Kind == slots.OverwriteMember {
		return discord.MemberPermissionOverwrite{UserID: id, Allow: allow, Deny: deny}, nil
	}
	return discord.RolePermissionOverwrite{RoleID: id, Allow: allow, Deny: deny}, nil
}

func (g *Gateway) DeleteChannel(ctx context.Context, channelID string) error {
	cid, err := parseID("channel", channelID)
	if err != nil {
		return err
	}
	return g.client.Rest().DeleteChannel(cid, rest.WithCtx(ctx))
}

func (g *Gateway) RenameChannel(ctx context.Context, channelID, name string) error {
	cid, err := parseID("channel", channelID)
	if err != nil {
		return err
	}
	_, err = g.client.Rest().UpdateChannel(cid, discord.GuildTextChannelUpdate{Name: &name}, rest.WithCtx(ctx))
	return err
}

func (g *Gateway) EditOverwrite(ctx context.Context, channelID string, ow slots.Overwrite) error {
	cid, err := parseID("channel", channelID)
	if err != nil {
		return err
	}
	eid, err := parseID("overwrite", ow.EntityID)
	if err != nil {
		return err
	}
	allow, deny := toDiscordPermissions(ow.Allow), toDiscordPermissions(ow.Deny)

	var update discord.PermissionOverwriteUpdate = discord.RolePermissionOverwriteUpdate{Allow: &allow, Deny: &deny}
	if ow.Kind == slots.OverwriteMember {
		update = discord.MemberPermissionOverwriteUpdate{Allow: &allow, Deny: &deny}
	}
	return g.client.Rest().UpdatePermissionOverwrite(cid, eid, update, rest.WithCtx(ctx))
}

func (g *Gateway) DeleteOverwrite(ctx context.Context, channelID, entityID string) error {
	cid, err := parseID("channel", channelID)
	if err != nil {
		return err
	}
	eid, err := parseID("overwrite", entityID)
	if err != nil {
		return err
	}
	return g.client.Rest().DeletePermissionOverwrite(cid, eid, rest.WithCtx(ctx))
}

// adminRoles returns the roles carrying the administrator permission.
func (g *Gateway) adminRoles(ctx context.Context, gid snowflake.ID) (map[snowflake.ID]bool, error) {
	roles, err := g.client.Rest().GetRoles(gid, rest.WithCtx(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	admin := make(map[snowflake.ID]bool)
	for _, role := range roles {
		if role.Permissions.Has(discord.PermissionAdministrator) {
			admin[role.ID] = true
		}
	}
	return admin, nil
}

func toMember(m discord.Member, adminRoles map[snowflake.ID]bool) slots.Member {
	out := slots.Member{
		ID:          m.User.ID.String(),
		Username:    m.User.Username,
		DisplayName: m.User.Username,
		Bot:         m.User.Bot,
	}
	if m.User.GlobalName != nil {
		out.DisplayName = *m.User.GlobalName
	}
	if m.Nick != nil {
		out.DisplayName = *m.Nick
	}
	for _, roleID := range m.RoleIDs {
		if adminRoles[roleID] {
			out.Admin = true
			break
		}
	}
	return out
}

func (g *Gateway) FetchMember(ctx context.Context, guildID, userID string) (*slots.Member, error) {
	gid, err := parseID("guild", guildID)
	if err != nil {
		return nil, err
	}
	uid, err := parseID("user", userID)
	if err != nil {
		return nil, err
	}
	member, err := g.client.Rest().GetMember(gid, uid, rest.WithCtx(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch member: %w", err)
	}
	admins, err := g.adminRoles(ctx, gid)
	if err != nil {
		return nil, err
	}
	out := toMember(*member, admins)
	return &out, nil
}

func (g *Gateway) FetchOwner(ctx context.Context, guildID string) (string, error) {
	gid, err := parseID("guild", guildID)
	if err != nil {
		return "", err
	}
	guild, err := g.client.Rest().GetGuild(gid, false, rest.WithCtx(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to fetch guild: %w", err)
	}
	return guild.OwnerID.String(), nil
}

// ListMembers pages through the whole member list. It needs the guild members intent.
func (g *Gateway) ListMembers(ctx context.Context, guildID string) ([]slots.Member, error) {
	gid, err := parseID("guild", guildID)
	if err != nil {
		return nil, err
	}
	admins, err := g.adminRoles(ctx, gid)
	if err != nil {
		return nil, err
	}

	var out []slots.Member
	var after snowflake.ID
	for {
		page, err := g.client.Rest().GetMembers(gid, membersPageSize, after, rest.WithCtx(ctx))
		if err != nil {
			return nil, fmt.Errorf("failed to list members: %w", err)
		}
		for _, m := range page {
			out = append(out, toMember(m, admins))
			after = m.User.ID
		}
		if len(page) < membersPageSize {
			return out, nil
		}
	}
}

func (g *Gateway) SendMessage(ctx context.Context, channelID, content string) error {
	cid, err := parseID("channel", channelID)
	if err != nil {
		return err
	}
	_, err = g.client.Rest().CreateMessage(cid, discord.NewMessageCreateBuilder().
		SetContent(content).
		SetAllowedMentions(&discord.AllowedMentions{}).
		Build(), rest.WithCtx(ctx))
	return err
}

func (g *Gateway) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	cid, err := parseID("channel", channelID)
	if err != nil {
		return err
	}
	mid, err := parseID("message", messageID)
	if err != nil {
		return err
	}
	return g.client.Rest().DeleteMessage(cid, mid, rest.WithCtx(ctx))
}

func (g *Gateway) AddRole(ctx context.Context, guildID, userID, roleID string) error {
	return g.memberRole(ctx, guildID, userID, roleID, true)
}

func (g *Gateway) RemoveRole(ctx context.Context, guildID, userID, roleID string) error {
	return g.memberRole(ctx, guildID, userID, roleID, false)
}

func (g *Gateway) memberRole(ctx context.Context, guildID, userID, roleID string, add bool) error {
	gid, err := parseID("guild", guildID)
	if err != nil {
		return err
	}
	uid, err := parseID("user", userID)
	if err != nil {
		return err
	}
	rid, err := parseID("role", roleID)
	if err != nil {
		return err
	}
	if add {
		return g.client.Rest().AddMemberRole(gid, uid, rid, rest.WithCtx(ctx))
	}
	return g.client.Rest().RemoveMemberRole(gid, uid, rid, rest.WithCtx(ctx))
}
