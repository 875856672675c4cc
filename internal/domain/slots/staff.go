package slots

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/slotkeeper/slotbot/slotbot/database/models"
)

// ProvisionStaff makes sure the community owner holds an owner slot and every
// administrator an admin slot. Members that already hold any slot are left alone.
func (e *Engine) ProvisionStaff(ctx context.Context, guildID string) (int, error) {
	ownerID, err := e.gateway.FetchOwner(ctx, guildID)
	if err != nil {
		return 0, fmt.Errorf("%w: could not fetch the server owner: %v", ErrExternalFailure, err)
	}
	members, err := e.gateway.ListMembers(ctx, guildID)
	if err != nil {
		return 0, fmt.Errorf("%w: could not list members: %v", ErrExternalFailure, err)
	}

	var created int
	err = e.exclusive(ctx, func() error {
		for _, member := range members {
			if member.Bot {
				continue
			}
			var category models.SlotCategory
			switch {
			case member.ID == ownerID:
				category = models.CategoryOwner
			case member.Admin:
				category = models.CategoryAdmin
			default:
				continue
			}

			_, err := e.create(ctx, System, CreateRequest{
				GuildID:  guildID,
				UserID:   member.ID,
				UserName: member.Username,
				Category: category,
			})
			switch {
			case err == nil:
				created++
			case Reason(err) == "internal":
				return err
			default:
				slog.Debug("Skipped staff slot",
					slog.String("guild_id", guildID),
					slog.String("user_id", member.ID),
					slog.String("reason", Reason(err)),
				)
			}
		}
		return nil
	})
	return created, err
}
