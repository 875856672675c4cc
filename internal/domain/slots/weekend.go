package slots

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/slotkeeper/slotbot/slotbot/database/models"
)

// OpenWeekend gives every member without a slot a temporary weekend slot.
// Opening an already open weekend fails with ErrAlreadyUsed.
func (e *Engine) OpenWeekend(ctx context.Context, actor Actor, guildID string) (WeekendReport, error) {
	if err := RequireStaff(actor); err != nil {
		return WeekendReport{}, err
	}

	var report WeekendReport
	err := e.exclusive(ctx, func() error {
		state, err := e.weekendState(ctx, guildID)
		if err != nil {
			return err
		}
		if state.Active {
			return fmt.Errorf("%w: the weekend event is already open", ErrAlreadyUsed)
		}

		members, err := e.gateway.ListMembers(ctx, guildID)
		if err != nil {
			return fmt.Errorf("%w: could not list members: %v", ErrExternalFailure, err)
		}

		now := e.now()
		state.Active = true
		state.OpenedAt = &now
		if err := e.saveWeekendState(ctx, actor, state, "weekend.open"); err != nil {
			return err
		}

		for _, member := range members {
			if member.Bot {
				continue
			}
			_, err := e.create(ctx, actor, CreateRequest{
				GuildID:  guildID,
				UserID:   member.ID,
				UserName: member.Username,
				Category: models.CategoryWeekend,
				Units:    e.opts.WeekendDays,
			})
			switch {
			case err == nil:
				report.Opened++
			case Reason(err) != "internal":
				report.Skipped++
			default:
				return err
			}
		}
		return nil
	})
	if err != nil {
		return report, err
	}

	slog.Info("Weekend opened",
		slog.String("type", "sys"),
		slog.String("guild_id", guildID),
		slog.Int("opened", report.Opened),
		slog.Int("skipped", report.Skipped),
	)
	e.announce(ctx, guildID, fmt.Sprintf("🎉 Weekend event opened: %s created", plural(report.Opened, "slot")))
	return report, nil
}

// CloseWeekend removes every weekend slot. Closing a weekend that is not open
// fails with ErrAlreadyUsed.
func (e *Engine) CloseWeekend(ctx context.Context, actor Actor, guildID string) (WeekendReport, error) {
	if err := RequireStaff(actor); err != nil {
		return WeekendReport{}, err
	}

	var report WeekendReport
	err := e.exclusive(ctx, func() error {
		state, err := e.weekendState(ctx, guildID)
		if err != nil {
			return err
		}
		if !state.Active {
			return fmt.Errorf("%w: the weekend event is not open", ErrAlreadyUsed)
		}

		now := e.now()
		state.Active = false
		state.ClosedAt = &now
		if err := e.saveWeekendState(ctx, actor, state, "weekend.close"); err != nil {
			return err
		}

		slots, err := e.dm.Slots().ListByGuild(ctx, guildID)
		if err != nil {
			return fmt.Errorf("failed to list slots: %w", err)
		}
		for _, slot := range slots {
			if slot.Category != models.CategoryWeekend {
				continue
			}
			if err := e.destroy(ctx, actor, slot, "weekend ended"); err != nil {
				return err
			}
			report.Closed++
		}
		return nil
	})
	if err != nil {
		return report, err
	}

	slog.Info("Weekend closed",
		slog.String("type", "sys"),
		slog.String("guild_id", guildID),
		slog.Int("closed", report.Closed),
	)
	return report, nil
}

func (e *Engine) WeekendActive(ctx context.Context, guildID string) (bool, error) {
	state, err := e.weekendState(ctx, guildID)
	if err != nil {
		return false, err
	}
	return state.Active, nil
}

func (e *Engine) weekendState(ctx context.Context, guildID string) (*models.WeekendState, error) {
	state, err := e.dm.Guilds().WeekendState(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to load weekend state: %w", err)
	}
	if state == nil {
		state = &models.WeekendState{GuildID: guildID}
	}
	return state, nil
}

func (e *Engine) saveWeekendState(ctx context.Context, actor Actor, state *models.WeekendState, action string) error {
	err := e.dm.WithTransaction(ctx, func(dm DataManager) error {
		if err := dm.Guilds().SaveWeekendState(ctx, state); err != nil {
			return err
		}
		return e.audit(ctx, dm, actor, state.GuildID, action, "", "", "")
	})
	if err != nil {
		return fmt.Errorf("failed to save weekend state: %w", err)
	}
	return nil
}
