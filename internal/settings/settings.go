// Package settings loads and validates the platform settings file.
//
// Settings are YAML on disk, validated against an embedded CUE schema
// before use. The schema is authoritative: unknown fields, wrong types
// and out-of-range values all fail the load, so the rest of the system
// only ever sees well-formed settings.
package settings

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE string

// Settings holds the decoded platform settings.
type Settings struct {
	Protections ProtectionSettings `yaml:"protections"`
	NVRAM       NVRAMSettings      `yaml:"nvram"`
	Boot        BootSettings       `yaml:"boot"`
}

// ProtectionSettings carries the global memory-protection toggle.
type ProtectionSettings struct {
	Enabled bool `yaml:"enabled"`
}

// NVRAMSettings selects the persistent storage bank.
type NVRAMSettings struct {
	// Path to the bank database; empty means volatile in-memory bank.
	Path string `yaml:"path"`
}

// BootSettings bounds the boot-session simulator.
type BootSettings struct {
	MaxRestarts int `yaml:"max_restarts"`
}

// ProtectionToggleEnabled reports the global toggle. This is the value
// the triage core's initialization gate reads exactly once.
func (s *Settings) ProtectionToggleEnabled() bool {
	return s.Protections.Enabled
}

// Default returns the settings used when no file is given: protections
// on, volatile bank, four warm restarts.
func Default() *Settings {
	return &Settings{
		Protections: ProtectionSettings{Enabled: true},
		Boot:        BootSettings{MaxRestarts: 4},
	}
}

// ValidationError is a single schema violation.
type ValidationError struct {
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

// Load reads, validates and decodes a settings file.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}
	return Parse(data)
}

// Parse validates and decodes settings YAML.
// Fields absent from the document take schema defaults.
func Parse(data []byte) (*Settings, error) {
	if errs := Validate(data); len(errs) > 0 {
		return nil, fmt.Errorf("invalid settings: %w", errs[0])
	}

	s := Default()
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	return s, nil
}

// Validate checks settings YAML against the embedded schema and returns
// all violations found.
func Validate(data []byte) []*ValidationError {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return []*ValidationError{{Message: fmt.Sprintf("not valid YAML: %v", err)}}
	}
	if raw == nil {
		raw = map[string]any{}
	}

	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE)
	if err := schema.Err(); err != nil {
		// The schema is embedded; failing to compile it is a bug.
		return []*ValidationError{{Message: fmt.Sprintf("internal schema error: %v", err)}}
	}
	def := schema.LookupPath(cue.ParsePath("#Settings"))
	if err := def.Err(); err != nil {
		return []*ValidationError{{Message: fmt.Sprintf("internal schema error: %v", err)}}
	}

	doc := ctx.Encode(raw)
	if err := doc.Err(); err != nil {
		return []*ValidationError{{Message: fmt.Sprintf("cannot encode settings: %v", err)}}
	}

	unified := def.Unify(doc)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return formatCUEErrors(err)
	}
	return nil
}

// formatCUEErrors flattens a CUE error list into validation errors with
// dotted field paths.
func formatCUEErrors(err error) []*ValidationError {
	var out []*ValidationError
	for _, e := range cueerrors.Errors(err) {
		ve := &ValidationError{Message: e.Error()}
		if p := e.Path(); len(p) > 0 {
			ve.Path = pathString(p)
		}
		out = append(out, ve)
	}
	if len(out) == 0 {
		out = append(out, &ValidationError{Message: err.Error()})
	}
	return out
}

func pathString(parts []string) string {
	path := ""
	for i, p := range parts {
		if i > 0 {
			path += "."
		}
		path += p
	}
	return path
}
