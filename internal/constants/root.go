package constants

import "time"

const (
	AppName            = "automute"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/automute/automute.db"
	DefaultConfigFile  = "~/.config/automute/config.toml"
	Version            = "v0.3.0"

	// ConnectionEnvVar overrides the keyring-stored PostgreSQL connection string
	ConnectionEnvVar = "AUTOMUTE_DB_CONNECTION"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// Edge action names; they feed alarm identifier derivation and must never change
	ActionSetSilent = "automute.SET_SILENT"
	ActionSetNormal = "automute.SET_NORMAL"

	// QuickTimerAlarmID is the fixed identifier of the one-shot quick timer alarm
	QuickTimerAlarmID int32 = 0

	// Geofence defaults
	DefaultRadiusMeters = 150.0
	DefaultTargetMode   = "SILENT"

	// Location sampling
	DefaultLocationInterval = 15 * time.Second
	MinLocationInterval     = 10 * time.Second

	// Daemon
	DefaultAlarmPollInterval = time.Second
	DaemonLockFileName       = "automuted.lock"
	EvaluationLockFileName   = "evaluation.lock"
	EvaluationLockRetry      = 50 * time.Millisecond

	// Notifier
	TrayAppIdentifier      = "com.automute.tray"
	TrayExecutablePrefix   = "automute-tray"
	NotifierLockfileName   = "automute-tray.lock"
	NotificationDurationMs = 5000
)
