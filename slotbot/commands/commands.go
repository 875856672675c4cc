package commands

import (
	"github.com/disgoorg/disgo/discord"
	"github.com/slotkeeper/slotbot/slotbot/commands/admin"
	"github.com/slotkeeper/slotbot/slotbot/commands/owner"
	"github.com/slotkeeper/slotbot/slotbot/commands/staff"
	"github.com/slotkeeper/slotbot/slotbot/commands/system"
)

var Commands = []discord.ApplicationCommandCreate{}

func init() {
	Commands = append(Commands, admin.Commands...)
	Commands = append(Commands, owner.Commands...)
	Commands = append(Commands, staff.Commands...)
	Commands = append(Commands, system.Commands...)
}
