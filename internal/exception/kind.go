package exception

import "fmt"

// Kind identifies a processor exception class by its x86 vector number.
type Kind int

// Architectural exception vectors (Intel SDM Vol. 3, Table 6-1).
const (
	DivideError        Kind = 0
	Debug              Kind = 1
	NMI                Kind = 2
	Breakpoint         Kind = 3
	Overflow           Kind = 4
	BoundRangeExceeded Kind = 5
	InvalidOpcode      Kind = 6
	DeviceNotAvailable Kind = 7
	DoubleFault        Kind = 8
	InvalidTSS         Kind = 10
	SegmentNotPresent  Kind = 11
	StackSegmentFault  Kind = 12
	GeneralProtection  Kind = 13
	PageFault          Kind = 14
	FloatingPointError Kind = 16
	AlignmentCheck     Kind = 17
	MachineCheck       Kind = 18
	SIMDException      Kind = 19
)

// NumVectors is the number of architectural exception vectors a Dispatch
// table reserves slots for.
const NumVectors = 32

var kindNames = map[Kind]string{
	DivideError:        "divide error",
	Debug:              "debug",
	NMI:                "non-maskable interrupt",
	Breakpoint:         "breakpoint",
	Overflow:           "overflow",
	BoundRangeExceeded: "bound range exceeded",
	InvalidOpcode:      "invalid opcode",
	DeviceNotAvailable: "device not available",
	DoubleFault:        "double fault",
	InvalidTSS:         "invalid TSS",
	SegmentNotPresent:  "segment not present",
	StackSegmentFault:  "stack-segment fault",
	GeneralProtection:  "general protection fault",
	PageFault:          "page fault",
	FloatingPointError: "x87 floating-point error",
	AlignmentCheck:     "alignment check",
	MachineCheck:       "machine check",
	SIMDException:      "SIMD floating-point exception",
}

// String returns the conventional name for the exception class.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("exception %d", int(k))
}

// Valid reports whether k is within the architectural vector range.
func (k Kind) Valid() bool {
	return k >= 0 && k < NumVectors
}
