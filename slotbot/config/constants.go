package config

import "time"

// Application-wide constants organized by domain

// UI and Display Constants
const (
	// Pagination
	SlotsPerPage    = 10
	HistoryPerPage  = 8
	DefaultPageSize = 10

	// Colors
	ErrorColor   = 0xFF0000
	SuccessColor = 0x00FF00
	InfoColor    = 0x0099FF
	WarningColor = 0xFFAA00

	// Discord UI Colors
	EmbedDefaultColor = 0x2B2D31
)

// Database and Performance Constants
const (
	DefaultQueryTimeout     = 30 * time.Second
	BatchQueryTimeout       = 30 * time.Second
	CommandExecutionTimeout = 10 * time.Second
	SlowCommandThreshold    = 2 * time.Second
	NetworkDialTimeout      = 5 * time.Second

	// Cache settings
	GuildConfigCacheSize = 256

	// Sweep
	SweepTimeout       = 5 * time.Minute
	BackupTimeout      = 2 * time.Minute
	GatewayCallTimeout = 10 * time.Second
)

// Slot Constants
const (
	DefaultSlotCategory     = "🎰 SLOTS"
	DefaultTimedSlotDays    = 7
	DefaultActivityMessages = 1
	StrikeLimit             = 3
	ReminderDays            = 3
	ReduceFloor             = 60 * time.Second
	WeekDuration            = 7 * 24 * time.Hour
	MonthDuration           = 30 * 24 * time.Hour
)

// Component IDs
const (
	VerifyButtonID = "/verify"
	ClaimButtonID  = "/claim-slot"
)
