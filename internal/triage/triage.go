package triage

import (
	"bytes"
	"context"
	"log/slog"

	"github.com/Javagedes/mu-plus/internal/exception"
	"github.com/Javagedes/mu-plus/internal/nvram"
	"github.com/Javagedes/mu-plus/internal/reset"
)

// Dispatcher is the slice of the interrupt-dispatch subsystem the core
// needs: handler registration for one exception vector.
// *exception.Dispatch satisfies it.
type Dispatcher interface {
	Register(kind exception.Kind, h exception.Handler) (exception.Token, error)
}

// DispatchLocator finds the interrupt-dispatch subsystem.
// Locate fails while the subsystem has not been produced yet.
type DispatchLocator interface {
	LocateDispatch() (Dispatcher, error)
}

// AvailabilityNotifier arms a one-shot callback that fires when the
// interrupt-dispatch subsystem becomes available. The subsystem may not
// exist at Install time; registering a handler before it is produced
// would have the handler silently overwritten by its defaults.
type AvailabilityNotifier interface {
	NotifyDispatchAvailable(fn func()) error
}

// Toggle is the global memory-protection configuration toggle. It is
// read exactly once, at Install.
type Toggle interface {
	ProtectionToggleEnabled() bool
}

// Deps are the injected collaborators. All fields except Log are
// required; a nil Log falls back to slog.Default.
type Deps struct {
	Toggle   Toggle
	Notifier AvailabilityNotifier
	Locator  DispatchLocator
	Flags    nvram.Bank
	Resetter reset.Resetter
	Log      *slog.Logger
}

// State tracks the core through its boot-session lifecycle.
type State int

const (
	// StateDormant: toggle off or registration permanently failed;
	// nothing installed, the core stays inert for the session.
	StateDormant State = iota
	// StateWaiting: notification armed, dispatch subsystem not yet seen.
	StateWaiting
	// StateArmed: fault handler installed, no fault yet.
	StateArmed
	// StateFaulted: flag written, reset requested. Terminal; the restart
	// ends the session, so Armed is never re-entered.
	StateFaulted
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateDormant:
		return "dormant"
	case StateWaiting:
		return "waiting"
	case StateArmed:
		return "armed"
	case StateFaulted:
		return "faulted"
	default:
		return "unknown"
	}
}

// Core is the installed fault-triage mechanism for one boot session.
type Core struct {
	deps  Deps
	log   *slog.Logger
	state State

	token    exception.Token
	hasToken bool
	lastErr  *Error
}

// Install is the entry point invoked by the firmware loader.
//
// It reads the protection toggle once. Toggle off: nothing is armed and
// the core is permanently dormant for the session. Toggle on: a one-shot
// availability notification is armed for the dispatch subsystem.
//
// The returned error is always nil — failures are absorbed and surfaced
// through diagnostics only, because a faulting registration must not
// block the rest of firmware boot. The Core is returned so callers and
// tests can observe its state.
func Install(deps Deps) (*Core, error) {
	log := deps.Log
	if log == nil {
		log = slog.Default()
	}

	c := &Core{deps: deps, log: log, state: StateDormant}

	// The only branch point in the core, evaluated exactly once.
	if !deps.Toggle.ProtectionToggleEnabled() {
		return c, nil
	}

	if err := deps.Notifier.NotifyDispatchAvailable(c.onDispatchAvailable); err != nil {
		c.fail(&Error{
			Code:    ErrCodeNotifyArmFailed,
			Message: "failed to arm dispatch availability notification; memory protections cannot be turned off via page fault handler",
			Err:     err,
		})
		return c, nil
	}

	c.state = StateWaiting
	return c, nil
}

// onDispatchAvailable is the deferred registrar: it runs when the
// availability notification fires, locates the dispatch subsystem and
// registers the fault handler for the page-fault vector.
//
// Registration is idempotent. The notification is one-shot by contract,
// but a second firing must never double-install the handler, so a live
// registration turns later firings into logged no-ops.
func (c *Core) onDispatchAvailable() {
	if c.state == StateArmed || c.state == StateFaulted {
		c.log.Debug("page fault handler already registered, ignoring notification")
		return
	}

	d, err := c.deps.Locator.LocateDispatch()
	if err != nil {
		c.fail(&Error{
			Code:    ErrCodeSubsystemUnavailable,
			Message: "failed to locate interrupt dispatch subsystem; memory protections cannot be turned off via page fault handler",
			Err:     err,
		})
		return
	}

	token, err := d.Register(exception.PageFault, c.handleFault)
	if err != nil {
		c.fail(&Error{
			Code:    ErrCodeRegistrationFailed,
			Message: "failed to register exception handler; memory protections cannot be turned off via page fault handler",
			Err:     err,
		})
		return
	}

	c.token = token
	c.hasToken = true
	c.state = StateArmed
	c.log.Debug("page fault handler registered", "vector", int(exception.PageFault))
}

// handleFault turns off memory protections for the next boot and
// requests a warm reset. It never returns to the faulting context: the
// final Reset call diverges.
//
// The sequence is strict and has no recovery path. All page faults are
// treated identically; there is no branching on the fault sub-type.
func (c *Core) handleFault(kind exception.Kind, ctx *exception.Context) {
	c.log.LogAttrs(context.Background(), slog.LevelError, "unrecoverable fault, disabling memory protections for next boot",
		append([]slog.Attr{slog.String("exception", kind.String())}, ctx.LogAttrs()...)...)

	var dump bytes.Buffer
	ctx.DumpTo(&dump)
	c.log.Error("processor context", "dump", dump.String())

	if err := nvram.WriteProtectionFlag(c.deps.Flags, nvram.ProtectionsOffPattern); err != nil {
		// Best-effort: nothing observes or recovers this; the reset
		// happens regardless.
		c.fail(&Error{
			Code:    ErrCodeStorageWriteFailed,
			Message: "failed to write protection flag",
			Err:     err,
		})
	}

	c.log.Info("resetting...")

	c.state = StateFaulted
	c.deps.Resetter.Reset(reset.Warm, reset.StatusSuccess, nil)
}

// State returns the core's current lifecycle state.
func (c *Core) State() State { return c.state }

// Err returns the most recent absorbed failure, or nil.
func (c *Core) Err() error {
	if c.lastErr == nil {
		return nil
	}
	return c.lastErr
}

// Token returns the live handler registration token.
// ok is false until registration has succeeded.
func (c *Core) Token() (tok exception.Token, ok bool) {
	return c.token, c.hasToken
}

func (c *Core) fail(err *Error) {
	c.lastErr = err
	c.log.Info(err.Message, "code", string(err.Code), "error", err.Err)
}
