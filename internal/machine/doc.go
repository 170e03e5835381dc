// Package machine simulates the firmware boot environment the
// fault-triage core runs inside.
//
// A Machine owns the platform pieces the core treats as external
// collaborators: a protocol registry with install notifications (the
// availability-notification provider), a CPU exception dispatch table, a
// persistent NVRAM bank, and a reset primitive. Boot runs a single boot
// session; Run chains sessions across warm resets, which is where the
// core's disable-and-reset behavior becomes observable end to end.
//
// Reset divergence is modeled with a panic carrying a private sentinel:
// the session resetter never returns to its caller, and the session loop
// recovers the sentinel at the top and restarts. An unhandled fatal
// exception halts the machine instead.
package machine
