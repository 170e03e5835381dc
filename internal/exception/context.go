package exception

import (
	"fmt"
	"io"
	"log/slog"
)

// Context is the saved amd64 processor state delivered with an exception.
//
// The dispatch subsystem owns the context; handlers read it but must not
// retain it beyond the call. ErrorCode carries the vector-specific error
// code (for page faults: the P/W/U/R/I bits); Cr2 carries the faulting
// linear address.
type Context struct {
	Rax, Rbx, Rcx, Rdx uint64
	Rsi, Rdi           uint64
	Rbp, Rsp           uint64
	R8, R9, R10, R11   uint64
	R12, R13, R14, R15 uint64

	Rip    uint64
	Rflags uint64
	Cs, Ss uint64

	Cr2       uint64 // faulting linear address
	ErrorCode uint64 // vector-specific exception data
}

// DumpTo writes a full register dump to w in the conventional two-column
// layout. Write errors are ignored; the dump is diagnostic output emitted
// on a path that cannot recover from failure anyway.
func (c *Context) DumpTo(w io.Writer) {
	fmt.Fprintf(w, "RIP  - %016X, CS - %04X, SS - %04X\n", c.Rip, c.Cs, c.Ss)
	fmt.Fprintf(w, "RAX  - %016X, RCX - %016X, RDX - %016X\n", c.Rax, c.Rcx, c.Rdx)
	fmt.Fprintf(w, "RBX  - %016X, RSP - %016X, RBP - %016X\n", c.Rbx, c.Rsp, c.Rbp)
	fmt.Fprintf(w, "RSI  - %016X, RDI - %016X\n", c.Rsi, c.Rdi)
	fmt.Fprintf(w, "R8   - %016X, R9  - %016X, R10 - %016X\n", c.R8, c.R9, c.R10)
	fmt.Fprintf(w, "R11  - %016X, R12 - %016X, R13 - %016X\n", c.R11, c.R12, c.R13)
	fmt.Fprintf(w, "R14  - %016X, R15 - %016X\n", c.R14, c.R15)
	fmt.Fprintf(w, "RFLAGS - %016X\n", c.Rflags)
	fmt.Fprintf(w, "CR2  - %016X, ExceptionData - %016X\n", c.Cr2, c.ErrorCode)
}

// LogAttrs returns the structured fields a diagnostic record carries for
// this context. Register contents stay in DumpTo; these are the fields
// post-mortem tooling filters on.
func (c *Context) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("fault_address", fmt.Sprintf("0x%x", c.Cr2)),
		slog.String("exception_data", fmt.Sprintf("0x%x", c.ErrorCode)),
		slog.String("rip", fmt.Sprintf("0x%x", c.Rip)),
	}
}
