package orchestrator

// Priority classifies a job's urgency and governs which application
// states admit it (spec §4.9's admission table).
type Priority int

const (
	// PriorityConnect is admitted in any application state: it is the
	// orchestrator's own "bring the link up" job.
	PriorityConnect Priority = iota

	// PriorityForeground is admitted only while the application is
	// visibly active (FOREGROUND, WAKEUP_PUSH, WAKEUP_ALARM).
	PriorityForeground

	// PriorityUpdate is admitted only in FOREGROUND, and only while
	// online.
	PriorityUpdate

	// PriorityMessage is admitted in any state, but only while online.
	PriorityMessage

	// PriorityReport is admitted in FOREGROUND, WAKEUP_PUSH or
	// WAKEUP_ALARM, and only while online.
	PriorityReport
)

var priorityNames = map[Priority]string{
	PriorityConnect:    "CONNECT",
	PriorityForeground: "FOREGROUND",
	PriorityUpdate:     "UPDATE",
	PriorityMessage:    "MESSAGE",
	PriorityReport:     "REPORT",
}

func (p Priority) String() string {
	if n, ok := priorityNames[p]; ok {
		return n
	}
	return "UNKNOWN"
}

// admitted reports whether a job of priority p may run while the
// orchestrator is in state and online has the given value, per spec
// §4.9's admission table.
func (p Priority) admitted(state AppState, online bool) bool {
	switch p {
	case PriorityConnect:
		return true
	case PriorityForeground:
		return state == Foreground || state == WakeupPush || state == WakeupAlarm
	case PriorityUpdate:
		return state == Foreground && online
	case PriorityMessage:
		return online
	case PriorityReport:
		return (state == Foreground || state == WakeupPush || state == WakeupAlarm) && online
	default:
		return false
	}
}

// JobID names one of the two logical scheduler jobs (spec §4.9). The
// orchestrator schedules only RECONNECT.
type JobID int

const (
	// JobReconnect is the periodic reconnect alarm. Its delay depends
	// on push-notification availability, is brought forward to the
	// earliest pending message deadline when that is sooner, and never
	// drops below MinReconnectDelay.
	JobReconnect JobID = iota

	// JobConnect is the second logical job. The orchestrator cancels it
	// but never schedules it.
	JobConnect
)

func (j JobID) String() string {
	switch j {
	case JobReconnect:
		return "RECONNECT"
	case JobConnect:
		return "CONNECT"
	default:
		return "UNKNOWN"
	}
}
