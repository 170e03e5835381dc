// Package triage implements the one-shot page-fault triage core.
//
// When an enforced memory-protection policy causes a page fault, the
// installed handler durably records a "protections disabled for next
// boot" flag and forces a warm restart, trading enforcement for
// bootability. The next boot reads the flag and leaves protections off,
// so a protection-policy regression degrades to a reboot instead of a
// brick.
//
// The core is deliberately thin: Install reads the global protection
// toggle once, and if it is on, arms a one-shot notification that fires
// when the interrupt-dispatch subsystem appears. The notification
// callback locates the subsystem and registers the fault handler for the
// page-fault vector. Every failure on that path is absorbed and surfaced
// only through diagnostics; a missing triage capability must never block
// the rest of firmware boot.
//
// The fault handler itself has no error recovery at all. It emits a
// diagnostic record, dumps the processor context, writes the flag, and
// requests Reset(Warm, StatusSuccess, nil) — which never returns.
package triage
