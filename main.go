package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/disgoorg/disgo/handler"
	"github.com/slotkeeper/slotbot/internal/domain/slots"
	"github.com/slotkeeper/slotbot/internal/domain/sweep"
	discordgw "github.com/slotkeeper/slotbot/internal/gateways/discord"
	"github.com/slotkeeper/slotbot/slotbot"
	"github.com/slotkeeper/slotbot/slotbot/commands"
	"github.com/slotkeeper/slotbot/slotbot/commands/admin"
	"github.com/slotkeeper/slotbot/slotbot/commands/owner"
	"github.com/slotkeeper/slotbot/slotbot/commands/staff"
	"github.com/slotkeeper/slotbot/slotbot/commands/system"
	"github.com/slotkeeper/slotbot/slotbot/config"
	"github.com/slotkeeper/slotbot/slotbot/database"
	"github.com/slotkeeper/slotbot/slotbot/database/repositories"
	"github.com/slotkeeper/slotbot/slotbot/handlers"
	"github.com/slotkeeper/slotbot/slotbot/logger"
	"github.com/slotkeeper/slotbot/slotbot/services"
)

var (
	version = "dev"
	commit  = "unknown"
)

func setupLogger(cfg slotbot.LogConfig) {
	var h slog.Handler
	switch cfg.Format {
	case "json":
		h = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Level, AddSource: cfg.AddSource})
	default:
		h = logger.NewHandler(cfg.Level)
	}
	slog.SetDefault(slog.New(h))
}

func main() {
	shouldSyncCommands := flag.Bool("sync-commands", false, "Whether to sync commands to discord")
	path := flag.String("config", "config.toml", "path to config")
	flag.Parse()

	slog.SetDefault(slog.New(logger.NewHandler(slog.LevelInfo)))

	cfg, err := slotbot.LoadConfig(*path)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(-1)
	}
	setupLogger(cfg.Log)

	slog.Info("Starting SlotBot",
		slog.String("type", "sys"),
		slog.String("version", version),
		slog.String("commit", commit))

	slog.Info("Initializing database connection...")
	dbStartTime := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := database.New(ctx, database.DBConfig{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		Database: cfg.DB.Database,
		PoolSize: cfg.DB.PoolSize,
	})
	if err != nil {
		slog.Error("Database connection failed",
			slog.String("error", err.Error()),
			slog.Duration("attempted_for", time.Since(dbStartTime)))
		os.Exit(-1)
	}
	defer db.Close()

	slog.Info("Database connected successfully",
		slog.String("database", cfg.DB.Database),
		slog.Duration("took", time.Since(dbStartTime)))

	if err := db.MigrateSchema(ctx); err != nil {
		slog.Error("Failed to migrate database schema", slog.String("error", err.Error()))
		os.Exit(-1)
	}
	slog.Info("Database schema is up to date")

	dm := repositories.NewDataManager(db.BunDB())
	if cfg.Redis.Addr != "" {
		cooldowns, err := services.NewRedisCooldowns(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			slog.Error("Failed to connect to redis", slog.String("error", err.Error()))
			os.Exit(-1)
		}
		defer cooldowns.Close()
		dm = dm.WithCooldowns(cooldowns)
		slog.Info("Cooldown timers stored in redis", slog.String("addr", cfg.Redis.Addr))
	}

	b := slotbot.New(cfg, version, commit)
	b.DB = db

	if cfg.Spaces.Bucket != "" {
		spaces, err := services.NewSpacesService(ctx, cfg.Spaces.Key, cfg.Spaces.Secret, cfg.Spaces.Region, cfg.Spaces.Bucket, cfg.Spaces.Root)
		if err != nil {
			slog.Error("Failed to initialize Spaces", slog.String("error", err.Error()))
			os.Exit(-1)
		}
		b.Backups = services.NewBackupService(dm.Backups(), spaces)
		slog.Info("Backups enabled", slog.String("bucket", spaces.GetBucket()), slog.String("region", spaces.GetRegion()))
	}

	h := handler.New()

	h.Route("/slot", func(r handler.Router) {
		r.Command("/create", handlers.WrapWithLogging("slot create", staff.SlotCreateHandler(b)))
		r.Command("/remove", handlers.WrapWithLogging("slot remove", staff.SlotRemoveHandler(b)))
		r.Command("/extend", handlers.WrapWithLogging("slot extend", staff.SlotExtendHandler(b)))
		r.Command("/reduce", handlers.WrapWithLogging("slot reduce", staff.SlotReduceHandler(b)))
		r.Command("/setexpiry", handlers.WrapWithLogging("slot setexpiry", staff.SlotSetExpiryHandler(b)))
		r.Command("/transfer", handlers.WrapWithLogging("slot transfer", staff.SlotTransferHandler(b)))
		r.Command("/swap", handlers.WrapWithLogging("slot swap", staff.SlotSwapHandler(b)))
		r.Command("/lock", handlers.WrapWithLogging("slot lock", staff.SlotLockHandler(b)))
		r.Command("/unlock", handlers.WrapWithLogging("slot unlock", staff.SlotUnlockHandler(b)))
		r.Command("/mute", handlers.WrapWithLogging("slot mute", staff.SlotMuteHandler(b)))
		r.Command("/unmute", handlers.WrapWithLogging("slot unmute", staff.SlotUnmuteHandler(b)))
		r.Command("/suspend", handlers.WrapWithLogging("slot suspend", staff.SlotSuspendHandler(b)))
		r.Command("/appeal", handlers.WrapWithLogging("slot appeal", staff.SlotAppealHandler(b)))
		r.Command("/resetmentions", handlers.WrapWithLogging("slot resetmentions", staff.SlotResetMentionsHandler(b)))
		r.Command("/talklimit", handlers.WrapWithLogging("slot talklimit", staff.SlotTalkLimitHandler(b)))
		r.Command("/info", handlers.WrapWithLogging("slot info", staff.SlotInfoHandler(b)))
		r.Command("/list", handlers.WrapWithLogging("slot list", staff.SlotListHandler(b)))
	})

	// Moderation
	h.Command("/warn", handlers.WrapWithLogging("warn", staff.WarnHandler(b)))
	h.Command("/warnings", handlers.WrapWithLogging("warnings", staff.WarningsHandler(b)))
	h.Command("/strike", handlers.WrapWithLogging("strike", staff.StrikeHandler(b)))
	h.Route("/blacklist", func(r handler.Router) {
		r.Command("/add", handlers.WrapWithLogging("blacklist add", staff.BlacklistAddHandler(b)))
		r.Command("/remove", handlers.WrapWithLogging("blacklist remove", staff.BlacklistRemoveHandler(b)))
		r.Command("/list", handlers.WrapWithLogging("blacklist list", staff.BlacklistListHandler(b)))
	})
	h.Command("/history", handlers.WrapWithLogging("history", staff.HistoryHandler(b)))
	h.Command("/auditlog", handlers.WrapWithLogging("auditlog", staff.AuditLogHandler(b)))

	// Slot owners
	h.Route("/talk", func(r handler.Router) {
		r.Command("/add", handlers.WrapWithLogging("talk add", owner.TalkAddHandler(b)))
		r.Command("/remove", handlers.WrapWithLogging("talk remove", owner.TalkRemoveHandler(b)))
		r.Command("/clear", handlers.WrapWithLogging("talk clear", owner.TalkClearHandler(b)))
	})
	h.Command("/myslot", handlers.WrapWithLogging("myslot", owner.MySlotHandler(b)))
	h.Route("/remind", func(r handler.Router) {
		r.Command("/on", handlers.WrapWithLogging("remind on", owner.RemindHandler(b, true)))
		r.Command("/off", handlers.WrapWithLogging("remind off", owner.RemindHandler(b, false)))
	})
	h.Command("/claim", handlers.WrapWithLogging("claim", owner.ClaimHandler(b)))
	h.Component(config.ClaimButtonID, handlers.WrapComponentWithLogging("claim-button", owner.ClaimButtonHandler(b)))

	// Server administration
	h.Route("/claimslot", func(r handler.Router) {
		r.Command("/create", handlers.WrapWithLogging("claimslot create", admin.ClaimSlotCreateHandler(b)))
		r.Command("/reset", handlers.WrapWithLogging("claimslot reset", admin.ClaimSlotResetHandler(b)))
		r.Command("/list", handlers.WrapWithLogging("claimslot list", admin.ClaimSlotListHandler(b)))
	})
	h.Route("/config", func(r handler.Router) {
		r.Command("/view", handlers.WrapWithLogging("config view", admin.ConfigViewHandler(b)))
		r.Command("/set", handlers.WrapWithLogging("config set", admin.ConfigSetHandler(b)))
		r.Autocomplete("/set", admin.ConfigAutocomplete(b))
	})
	h.Route("/weekend", func(r handler.Router) {
		r.Command("/open", handlers.WrapWithLogging("weekend open", admin.WeekendOpenHandler(b)))
		r.Command("/close", handlers.WrapWithLogging("weekend close", admin.WeekendCloseHandler(b)))
	})
	h.Command("/staffslots", handlers.WrapWithLogging("staffslots", admin.StaffSlotsHandler(b)))
	h.Route("/backup", func(r handler.Router) {
		r.Command("/create", handlers.WrapWithLogging("backup create", admin.BackupCreateHandler(b)))
		r.Command("/list", handlers.WrapWithLogging("backup list", admin.BackupListHandler(b)))
	})
	h.Command("/sendverify", handlers.WrapWithLogging("sendverify", admin.SendVerifyHandler(b)))
	h.Component(config.VerifyButtonID, handlers.WrapComponentWithLogging("verify", handlers.VerifyButtonHandler(b)))

	// System
	h.Command("/version", system.VersionHandler(b))
	h.Command("/help", handlers.WrapWithLogging("help", system.HelpHandler))

	if err = b.SetupBot(append(handlers.Listeners(b), h)...); err != nil {
		slog.Error("Failed to setup bot",
			slog.String("type", "sys"),
			slog.Any("error", err),
			slog.String("error_details", fmt.Sprintf("%+v", err)),
			slog.String("component", "bot_setup"),
			slog.String("status", "failed"),
		)
		os.Exit(-1)
	}

	window := sweep.Window{
		OpenDay:   cfg.Weekend.OpenDay,
		OpenHour:  cfg.Weekend.OpenHour,
		CloseDay:  cfg.Weekend.CloseDay,
		CloseHour: cfg.Weekend.CloseHour,
	}
	weekendDays := cfg.Weekend.Days
	if weekendDays <= 0 {
		weekendDays = window.Days()
	}

	engine, err := slots.NewEngine(dm, b.Gateway, discordgw.NewNotifier(b.Client), slots.Options{
		CategoryName:    cfg.Slots.CategoryName,
		MemberRoleID:    cfg.Roles.Member,
		NewbieRoleID:    cfg.Roles.Newbie,
		VerifyChannelID: cfg.Roles.VerifyChannel,
		WeekendDays:     weekendDays,
	})
	if err != nil {
		slog.Error("Failed to create slot engine", slog.String("error", err.Error()))
		os.Exit(-1)
	}
	b.Engine = engine

	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		b.Client.Close(ctx)
	}()

	if *shouldSyncCommands {
		slog.Info("Syncing commands",
			slog.String("type", "sys"),
			slog.Any("guild_ids", cfg.Bot.DevGuilds),
		)
		if err = handler.SyncCommands(b.Client, commands.Commands, cfg.Bot.DevGuilds); err != nil {
			slog.Error("Failed to sync commands",
				slog.String("type", "sys"),
				slog.Any("error", err),
				slog.String("error_details", fmt.Sprintf("%+v", err)),
				slog.String("component", "command_sync"),
				slog.String("status", "failed"),
			)
		}
	}

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	sweep.New(engine, sweep.Options{
		Interval: cfg.Slots.SweepInterval.Duration,
		Weekend:  window,
	}).Start(sweepCtx)

	gatewayCtx, gatewayCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer gatewayCancel()
	if err = b.Client.OpenGateway(gatewayCtx); err != nil {
		slog.Error("Failed to open gateway",
			slog.String("type", "sys"),
			slog.Any("error", err),
			slog.String("error_details", fmt.Sprintf("%+v", err)),
			slog.String("component", "gateway"),
			slog.String("status", "failed"),
		)
		os.Exit(-1)
	}

	slog.Info("Bot is running. Press CTRL-C to exit.")
	s := make(chan os.Signal, 1)
	signal.Notify(s, syscall.SIGINT, syscall.SIGTERM)
	<-s
	slog.Info("Shutting down bot...")
}
