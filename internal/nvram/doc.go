// Package nvram provides the persistent byte-addressed storage bank the
// fault-triage core records its protection flag in.
//
// The bank models CMOS-style battery-backed storage: individually
// addressed bytes that survive a warm reset. Store is the durable
// SQLite-backed bank used by the boot-session simulator; MemBank is the
// volatile in-memory bank used by tests.
//
// The protection flag byte layout and its fixed offset live here too, so
// that the fault handler (writer) and the startup enforcement decision
// (reader) agree on the encoding.
package nvram
