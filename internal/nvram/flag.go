package nvram

import "fmt"

// ProtectionFlagOffset is the fixed bank offset of the memory-protection
// flag byte. It sits in the OEM region of the bank, clear of the RTC and
// checksum cells.
const ProtectionFlagOffset uint8 = 0x30

// Protection flag bit layout. The byte is meaningful only when
// FlagValidMask is set; with the valid bit set, a clear FlagEnabledMask
// bit means "memory protections disabled for next boot".
const (
	FlagEnabledMask byte = 1 << 0
	FlagValidMask   byte = 1 << 1
)

// ProtectionsOffPattern is the exact byte the fault handler records:
// valid marker set, enabled bit clear.
const ProtectionsOffPattern = FlagValidMask

// ProtectionFlag is the decoded flag byte.
type ProtectionFlag struct {
	Valid   bool `json:"valid"`
	Enabled bool `json:"enabled"`
	Raw     byte `json:"raw"`
}

// Disabled reports whether the flag carries an authoritative
// "protections off" verdict for the next boot.
func (f ProtectionFlag) Disabled() bool {
	return f.Valid && !f.Enabled
}

// String renders the flag for diagnostics.
func (f ProtectionFlag) String() string {
	if !f.Valid {
		return fmt.Sprintf("not set (raw 0x%02x)", f.Raw)
	}
	if f.Enabled {
		return fmt.Sprintf("protections enabled (raw 0x%02x)", f.Raw)
	}
	return fmt.Sprintf("protections disabled (raw 0x%02x)", f.Raw)
}

// WriteProtectionFlag durably records value at the flag offset.
func WriteProtectionFlag(b Bank, value byte) error {
	return b.WriteByte(ProtectionFlagOffset, value)
}

// ReadProtectionFlag reads and decodes the flag byte.
func ReadProtectionFlag(b Bank) (ProtectionFlag, error) {
	raw, err := b.ReadByte(ProtectionFlagOffset)
	if err != nil {
		return ProtectionFlag{}, err
	}
	return ProtectionFlag{
		Valid:   raw&FlagValidMask != 0,
		Enabled: raw&FlagEnabledMask != 0,
		Raw:     raw,
	}, nil
}

// ClearProtectionFlag zeroes the flag byte. This is the reset-to-defaults
// path; the fault-triage core itself never clears the flag.
func ClearProtectionFlag(b Bank) error {
	return b.WriteByte(ProtectionFlagOffset, 0)
}
