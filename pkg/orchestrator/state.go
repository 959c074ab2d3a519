package orchestrator

// AppState is the Orchestrator's process-wide application state (spec
// §4.9). Every lifecycle event, push arrival, or alarm wake-up moves the
// orchestrator between these states and reschedules its jobs.
type AppState int

const (
	// Background is the default idle state: no host-visible activity,
	// nothing keeping the connection up.
	Background AppState = iota

	// BackgroundIdle is reached when the grace period of a BACKGROUND,
	// WAKEUP_PUSH or WAKEUP_ALARM run expires and the connection is
	// dropped.
	BackgroundIdle

	// Foreground is set while the host application is visible; the
	// connection must stay up and disconnect is suppressed.
	Foreground

	// WakeupPush is a push-notification-driven background run.
	WakeupPush

	// WakeupAlarm is a scheduler-driven background run (RECONNECT or
	// periodic CONNECT job).
	WakeupAlarm

	// Suspended means the host has torn the process down; no jobs run
	// and the connection is not reestablished until a lifecycle event
	// arrives.
	Suspended
)

var stateNames = map[AppState]string{
	Background:     "BACKGROUND",
	BackgroundIdle: "BACKGROUND_IDLE",
	Foreground:     "FOREGROUND",
	WakeupPush:     "WAKEUP_PUSH",
	WakeupAlarm:    "WAKEUP_ALARM",
	Suspended:      "SUSPENDED",
}

func (s AppState) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return "UNKNOWN"
}

// background reports whether s is one of the non-foreground states in
// which the connection may be dropped once its grace period elapses.
func (s AppState) background() bool {
	switch s {
	case Background, BackgroundIdle, WakeupPush, WakeupAlarm:
		return true
	default:
		return false
	}
}
