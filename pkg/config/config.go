package config

import "time"

type Config interface {
	UpperThreshold() int
	LowerThreshold() int
	PollInterval() time.Duration
	VoiceRepeatInterval() time.Duration
	// QuietHours is a cron expression for the start of the daily mute
	// window. Empty means quiet hours are disabled.
	QuietHours() string
	QuietHoursDuration() time.Duration
	AllowNonRootAccess() bool

	SetUpperThreshold(int)
	SetLowerThreshold(int)

	// Validate checks the threshold and interval invariants. A failure
	// at startup is fatal; the daemon refuses to run on bad config.
	Validate() error

	// Load reads the configuration from the source.
	Load() error
	// Reload re-reads the configuration and commits it only if it
	// validates. On error the previous values stay in effect.
	Reload() error
	// Save saves the configuration to the source.
	Save() error
}
