// Package exception models the CPU exception dispatch subsystem.
//
// It provides the exception vector numbering, the saved processor context
// delivered alongside an exception, and Dispatch, the per-vector handler
// table that the fault-triage core registers against.
//
// The dispatch model is single-threaded and interrupt-driven: Deliver is
// invoked from exactly one execution context, handlers never run
// concurrently with each other, and a handler for a fatal exception class
// is expected to diverge (reset the machine) rather than return.
package exception
