package orchestrator

import "time"

// TwinlifeContext is the ingress collaborator the orchestrator drives
// (spec §6): it owns the actual connection lifecycle.
type TwinlifeContext interface {
	Connect()
	Disconnect()
	Suspend()
}

// Scheduler is the native alarm facility collaborator (spec §6):
// schedule_at(job_id, deadline), cancel(job_id).
type Scheduler interface {
	ScheduleAt(job JobID, deadline time.Time)
	Cancel(job JobID)
}

// ConnectivityService reports network reachability and is the source
// of onTwinlifeOnline/onTwinlifeOffline transitions (spec §6).
type ConnectivityService interface {
	IsConnectedNetwork() bool
}

// Lock is a reference-counted power-management resource lease (spec
// §4.9, §5): NetworkLock, ProcessingLock, InteractiveLock, VoIPLock.
type Lock int

const (
	NetworkLock Lock = iota
	ProcessingLock
	InteractiveLock
	VoIPLock
)

func (l Lock) String() string {
	switch l {
	case NetworkLock:
		return "NetworkLock"
	case ProcessingLock:
		return "ProcessingLock"
	case InteractiveLock:
		return "InteractiveLock"
	case VoIPLock:
		return "VoIPLock"
	default:
		return "UnknownLock"
	}
}
