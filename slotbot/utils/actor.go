package utils

import (
	"github.com/disgoorg/disgo/discord"
	"github.com/slotkeeper/slotbot/internal/domain/slots"
)

type interactionUser interface {
	User() discord.User
	Member() *discord.ResolvedMember
}

// ActorFrom builds the engine actor for whoever triggered an interaction.
// Discord grants the guild owner every permission, so owners count as staff.
func ActorFrom(e interactionUser) slots.Actor {
	user := e.User()
	actor := slots.Actor{
		ID:   user.ID.String(),
		Name: user.EffectiveName(),
	}
	if member := e.Member(); member != nil {
		actor.Name = member.EffectiveName()
		actor.Staff = member.Permissions.Has(discord.PermissionAdministrator)
	}
	return actor
}

// OptionMember returns the id and display name of a user option.
func OptionMember(data discord.SlashCommandInteractionData, name string) (string, string, bool) {
	if member, ok := data.OptMember(name); ok {
		return member.User.ID.String(), member.EffectiveName(), true
	}
	if user, ok := data.OptUser(name); ok {
		return user.ID.String(), user.EffectiveName(), true
	}
	return "", "", false
}
