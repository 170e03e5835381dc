// Package reset defines the system-reset primitive consumed by the
// fault-triage core and implemented by the boot-session simulator.
package reset

// Kind selects the reset class.
type Kind int

const (
	// Cold performs a full power-cycle-equivalent restart.
	Cold Kind = iota
	// Warm restarts execution from firmware entry without a power
	// cycle, preserving battery-backed storage.
	Warm
	// Shutdown halts the machine without restarting.
	Shutdown
)

// String returns the reset kind name.
func (k Kind) String() string {
	switch k {
	case Cold:
		return "cold"
	case Warm:
		return "warm"
	case Shutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

// Status is the status code a reset request carries.
type Status uint64

// StatusSuccess indicates the reset is not reporting a failure condition.
const StatusSuccess Status = 0

// Resetter performs a system reset.
//
// Reset never returns: implementations diverge (restart the session loop,
// halt the process) instead of handing control back to the caller. If the
// underlying mechanism fails to act, behavior is undefined; callers have
// no fallback after requesting a reset.
type Resetter interface {
	Reset(kind Kind, status Status, data []byte)
}
