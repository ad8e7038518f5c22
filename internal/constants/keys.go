package constants

// Persisted state keys. Names are part of the on-disk format.
const (
	KeyLocations          = "locations"
	KeyDailyTimers        = "daily_timers"
	KeyDailyTimerPrefix   = "daily_timer:"
	KeyQuickTimerActive   = "quick_timer_active"
	KeyQuickTimerEndTime  = "quick_timer_end_time"
	KeyMutedByApp         = "muted_by_app"
	KeyAlarmPrefix        = "alarm:"
	KeyExactAlarmAllowed  = "exact_alarm_allowed"
	KeyDeviceRingerMode   = "device_ringer_mode"
	KeyDeviceFilter       = "device_interruption_filter"
	KeyDevicePolicyAccess = "device_policy_access"
)

// DailyTimerKey returns the single-object key a timer is mirrored under.
func DailyTimerKey(id string) string {
	return KeyDailyTimerPrefix + id
}
