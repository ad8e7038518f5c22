package config

const (
	defaultTimezone           = "Local"
	defaultLockDir            = "~/.config/automute"
	defaultAlarmPollInterval  = 1
	defaultLocationSource     = SourceNone
	defaultMinIntervalSeconds = 10
	defaultRadius             = 150.0
	defaultLogDir             = "~/.config/automute/logs"
	defaultLogLevel           = "warn"
)

// Default returns a Config populated with baseline defaults.
func Default() Config {
	return Config{
		Timezone: defaultTimezone,
		Daemon: Daemon{
			LockDir:           defaultLockDir,
			AlarmPollInterval: defaultAlarmPollInterval,
		},
		Location: Location{
			Source:             defaultLocationSource,
			MinIntervalSeconds: defaultMinIntervalSeconds,
		},
		Geofence: Geofence{
			DefaultRadius: defaultRadius,
		},
		Log: Log{
			Dir:   defaultLogDir,
			Level: defaultLogLevel,
		},
	}
}
