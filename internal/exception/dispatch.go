package exception

import (
	"errors"
	"fmt"
)

// Handler is an exception handler callback. For fatal exception classes
// the handler is expected to diverge (request a reset) instead of
// returning; Deliver treats a returning handler as "fault recovered,
// resume the interrupted context".
type Handler func(kind Kind, ctx *Context)

// Token is the opaque capability returned by Register. It witnesses that
// a particular handler is installed for a particular vector, and is the
// only way to remove it again.
type Token struct {
	vector Kind
	serial uint64
}

// Kind returns the vector the token was issued for.
func (t Token) Kind() Kind { return t.vector }

var (
	// ErrAlreadyRegistered is returned when the vector already has a
	// handler installed. Handlers never silently chain.
	ErrAlreadyRegistered = errors.New("exception: handler already registered for vector")

	// ErrNoHandler is returned by Deliver when no handler is installed
	// for the vector.
	ErrNoHandler = errors.New("exception: no handler registered for vector")

	// ErrInvalidVector is returned for vectors outside the architectural
	// range.
	ErrInvalidVector = errors.New("exception: invalid vector")
)

// Dispatch is the per-vector exception handler table.
//
// It is deliberately not safe for concurrent use: the modeled environment
// is single-threaded and interrupt-driven, with registration happening
// during boot and delivery happening by preemption of that same context.
type Dispatch struct {
	handlers [NumVectors]Handler
	serial   uint64
}

// NewDispatch creates an empty handler table.
func NewDispatch() *Dispatch {
	return &Dispatch{}
}

// Register installs handler for the given vector and returns a Token for
// it. A vector holds at most one handler: registering over a live handler
// fails with ErrAlreadyRegistered rather than chaining or replacing.
func (d *Dispatch) Register(kind Kind, handler Handler) (Token, error) {
	if !kind.Valid() {
		return Token{}, fmt.Errorf("%w: %d", ErrInvalidVector, int(kind))
	}
	if handler == nil {
		return Token{}, fmt.Errorf("exception: nil handler for vector %d", int(kind))
	}
	if d.handlers[kind] != nil {
		return Token{}, fmt.Errorf("%w: %d", ErrAlreadyRegistered, int(kind))
	}
	d.serial++
	d.handlers[kind] = handler
	return Token{vector: kind, serial: d.serial}, nil
}

// Unregister removes the handler the token was issued for. Removing an
// already-removed handler is a no-op.
func (d *Dispatch) Unregister(t Token) {
	if t.vector.Valid() {
		d.handlers[t.vector] = nil
	}
}

// Registered reports whether a handler is installed for the vector.
func (d *Dispatch) Registered(kind Kind) bool {
	return kind.Valid() && d.handlers[kind] != nil
}

// Deliver invokes the handler installed for the vector, simulating the
// processor raising the exception. If the handler returns, the fault is
// considered recovered and Deliver returns nil. With no handler installed
// the exception is unhandled and ErrNoHandler is returned; the caller
// decides what an unhandled fatal exception does to the machine.
func (d *Dispatch) Deliver(kind Kind, ctx *Context) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidVector, int(kind))
	}
	h := d.handlers[kind]
	if h == nil {
		return fmt.Errorf("%w: %d (%s)", ErrNoHandler, int(kind), kind)
	}
	h(kind, ctx)
	return nil
}
