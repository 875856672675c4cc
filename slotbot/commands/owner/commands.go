package owner

import "github.com/disgoorg/disgo/discord"

var Commands = []discord.ApplicationCommandCreate{
	Talk,
	MySlot,
	Remind,
	Claim,
}
