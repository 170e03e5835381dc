package machine

import (
	"fmt"
	"log/slog"

	"github.com/Javagedes/mu-plus/internal/exception"
	"github.com/Javagedes/mu-plus/internal/nvram"
	"github.com/Javagedes/mu-plus/internal/reset"
	"github.com/Javagedes/mu-plus/internal/settings"
	"github.com/Javagedes/mu-plus/internal/triage"
)

// FaultSpec describes a memory access the session payload performs that
// violates the active protection policy. With protections enforced it
// raises a page fault; with protections off the access just succeeds.
type FaultSpec struct {
	Address   uint64 `yaml:"address" json:"address"`
	ErrorCode uint64 `yaml:"error_code" json:"error_code"`
	Rip       uint64 `yaml:"rip" json:"rip"`
}

// Outcome is how a boot session ended.
type Outcome string

const (
	// OutcomeCompleted: the session payload ran to completion.
	OutcomeCompleted Outcome = "completed"
	// OutcomeReset: a reset was requested; the session ended there.
	OutcomeReset Outcome = "reset"
	// OutcomeHalted: an exception went unhandled and the machine hung.
	OutcomeHalted Outcome = "halted"
)

// ResetRecord captures a reset request's parameters.
type ResetRecord struct {
	Kind   reset.Kind   `json:"-"`
	Status reset.Status `json:"status"`

	KindName string `json:"kind"`
}

// SessionResult is the observable outcome of one boot session.
type SessionResult struct {
	Token        string               `json:"token"`
	Enforcing    bool                 `json:"enforcing"`
	HandlerArmed bool                 `json:"handler_armed"`
	CoreState    string               `json:"core_state"`
	Diagnostic   string               `json:"diagnostic,omitempty"`
	Outcome      Outcome              `json:"outcome"`
	Reset        *ResetRecord         `json:"reset,omitempty"`
	Flag         nvram.ProtectionFlag `json:"flag"`
}

// Machine simulates the platform across boot sessions. The NVRAM bank is
// the only state shared between sessions; everything else is rebuilt at
// each boot, the way a restart discards volatile state.
type Machine struct {
	settings *settings.Settings
	bank     nvram.Bank
	log      *slog.Logger
	tokens   TokenGenerator

	dispatchAvailable bool
}

// Option configures a Machine.
type Option func(*Machine)

// WithLogger sets the diagnostic sink. Default: slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(m *Machine) { m.log = l }
}

// WithTokenGenerator overrides session token generation (for tests and
// golden traces). Default: UUIDv7Generator.
func WithTokenGenerator(g TokenGenerator) Option {
	return func(m *Machine) { m.tokens = g }
}

// WithoutDispatch simulates a platform that never produces the CPU
// architectural protocol: the triage core's availability notification
// never fires.
func WithoutDispatch() Option {
	return func(m *Machine) { m.dispatchAvailable = false }
}

// New creates a machine over the given settings and NVRAM bank.
func New(cfg *settings.Settings, bank nvram.Bank, opts ...Option) *Machine {
	m := &Machine{
		settings:          cfg,
		bank:              bank,
		tokens:            UUIDv7Generator{},
		dispatchAvailable: true,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.log == nil {
		m.log = slog.Default()
	}
	return m
}

// resetSignal is the private sentinel a session resetter diverges with.
type resetSignal struct {
	record ResetRecord
}

// sessionResetter implements reset.Resetter for one session. Reset never
// returns: it unwinds the session via resetSignal, which Boot recovers.
type sessionResetter struct{}

func (sessionResetter) Reset(kind reset.Kind, status reset.Status, data []byte) {
	_ = data // reset data is accepted but carries nothing in this platform
	panic(resetSignal{record: ResetRecord{Kind: kind, Status: status, KindName: kind.String()}})
}

// sessionToggle is the global protection toggle value for one session,
// settled at boot from settings and the persisted flag.
type sessionToggle bool

func (t sessionToggle) ProtectionToggleEnabled() bool { return bool(t) }

// cpuArchAdapter bridges the triage core's collaborator interfaces onto
// the protocol registry.
type cpuArchAdapter struct {
	registry *Registry
}

func (a cpuArchAdapter) NotifyDispatchAvailable(fn func()) error {
	return a.registry.NotifyOnInstall(ProtocolCPUArch, fn)
}

func (a cpuArchAdapter) LocateDispatch() (triage.Dispatcher, error) {
	iface, err := a.registry.Locate(ProtocolCPUArch)
	if err != nil {
		return nil, err
	}
	d, ok := iface.(*exception.Dispatch)
	if !ok {
		return nil, fmt.Errorf("machine: %s protocol has unexpected type %T", ProtocolCPUArch, iface)
	}
	return d, nil
}

// Boot runs a single boot session.
//
// Order within the session mirrors a real boot: read the persisted flag
// and settle enforcement, run the triage core's constructor, produce the
// CPU architectural protocol (unless the platform withholds it), then
// run the payload. A reset request ends the session by divergence and is
// reported in the result; it is the caller's job (Run) to boot again.
func (m *Machine) Boot(fault *FaultSpec) (result SessionResult) {
	token := m.tokens.Generate()
	log := m.log.With("session", token)
	result.Token = token

	flag, err := nvram.ReadProtectionFlag(m.bank)
	if err != nil {
		log.Warn("failed to read protection flag, assuming unset", "error", err)
	}
	enforcing := m.settings.ProtectionToggleEnabled() && !flag.Disabled()
	result.Enforcing = enforcing
	log.Info("booting", "protections", enforcing, "flag", flag.String())

	registry := NewRegistry()
	dispatch := exception.NewDispatch()
	adapter := cpuArchAdapter{registry: registry}

	core, _ := triage.Install(triage.Deps{
		Toggle:   sessionToggle(enforcing),
		Notifier: adapter,
		Locator:  adapter,
		Flags:    m.bank,
		Resetter: sessionResetter{},
		Log:      log,
	})

	defer func() {
		if r := recover(); r != nil {
			sig, ok := r.(resetSignal)
			if !ok {
				panic(r)
			}
			result.Outcome = OutcomeReset
			rec := sig.record
			result.Reset = &rec
			log.Info("session ended by reset", "kind", rec.KindName, "status", uint64(rec.Status))
		}

		result.CoreState = core.State().String()
		if cerr := core.Err(); cerr != nil {
			result.Diagnostic = string(triage.CodeOf(cerr))
		}
		_, armed := core.Token()
		result.HandlerArmed = armed
		if endFlag, ferr := nvram.ReadProtectionFlag(m.bank); ferr == nil {
			result.Flag = endFlag
		}
	}()

	if m.dispatchAvailable {
		if err := registry.Install(ProtocolCPUArch, dispatch); err != nil {
			log.Error("failed to install CPU arch protocol", "error", err)
		}
	}

	if fault != nil && enforcing {
		ctx := &exception.Context{
			Cr2:       fault.Address,
			ErrorCode: fault.ErrorCode,
			Rip:       fault.Rip,
		}
		if err := dispatch.Deliver(exception.PageFault, ctx); err != nil {
			log.Error("unhandled exception, machine halted", "error", err)
			result.Outcome = OutcomeHalted
			return result
		}
		// A returning handler means the fault was recovered; execution
		// resumes.
	}

	result.Outcome = OutcomeCompleted
	return result
}

// Run boots the machine and follows warm resets until a session
// completes, halts, or ends with a non-warm reset. Returns the full
// session history. Exceeding the settings' restart ceiling returns the
// history so far along with an error.
func (m *Machine) Run(fault *FaultSpec) ([]SessionResult, error) {
	max := m.settings.Boot.MaxRestarts
	if max <= 0 {
		max = 4
	}

	var results []SessionResult
	for restarts := 0; ; restarts++ {
		res := m.Boot(fault)
		results = append(results, res)

		if res.Outcome != OutcomeReset || res.Reset.Kind != reset.Warm {
			return results, nil
		}
		if restarts+1 > max {
			return results, fmt.Errorf("machine: warm restart ceiling reached (%d)", max)
		}
	}
}
