package machine

import (
	"errors"
	"fmt"
)

// ProtocolCPUArch names the CPU architectural protocol: the exception
// dispatch table. It is installed mid-boot, after drivers that want to
// hook exceptions have already initialized, which is exactly why the
// triage core registers through a notification instead of at Install.
const ProtocolCPUArch = "cpu-arch"

// ErrProtocolNotFound is returned by Locate for protocols that have not
// been installed.
var ErrProtocolNotFound = errors.New("machine: protocol not found")

// ErrProtocolInstalled is returned when installing a protocol name twice
// in one session.
var ErrProtocolInstalled = errors.New("machine: protocol already installed")

// Registry is the boot-services-style protocol database for one boot
// session. Single-threaded, like everything else in the simulated
// environment.
type Registry struct {
	protocols map[string]any
	notifies  map[string][]func()
}

// NewRegistry creates an empty protocol registry.
func NewRegistry() *Registry {
	return &Registry{
		protocols: make(map[string]any),
		notifies:  make(map[string][]func()),
	}
}

// Install publishes a protocol instance under name and fires any pending
// install notifications for it, in arming order. Notifications are
// one-shot: firing consumes them.
func (r *Registry) Install(name string, iface any) error {
	if _, ok := r.protocols[name]; ok {
		return fmt.Errorf("%w: %s", ErrProtocolInstalled, name)
	}
	r.protocols[name] = iface

	pending := r.notifies[name]
	delete(r.notifies, name)
	for _, fn := range pending {
		fn()
	}
	return nil
}

// Locate returns the installed protocol instance for name.
func (r *Registry) Locate(name string) (any, error) {
	iface, ok := r.protocols[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProtocolNotFound, name)
	}
	return iface, nil
}

// NotifyOnInstall arms a one-shot callback that fires when name is
// installed. If the protocol is already present the callback fires
// immediately, matching the "notify for existing instances" contract a
// late subscriber relies on.
func (r *Registry) NotifyOnInstall(name string, fn func()) error {
	if fn == nil {
		return errors.New("machine: nil notify callback")
	}
	if _, ok := r.protocols[name]; ok {
		fn()
		return nil
	}
	r.notifies[name] = append(r.notifies[name], fn)
	return nil
}
