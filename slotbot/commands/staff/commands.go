package staff

import "github.com/disgoorg/disgo/discord"

var Commands = []discord.ApplicationCommandCreate{
	Slot,
	Warn,
	Warnings,
	Strike,
	Blacklist,
	History,
	AuditLog,
}
