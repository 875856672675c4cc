package admin

import "github.com/disgoorg/disgo/discord"

var Commands = []discord.ApplicationCommandCreate{
	Config,
	Weekend,
	StaffSlots,
	ClaimSlot,
	Backup,
	SendVerify,
}
