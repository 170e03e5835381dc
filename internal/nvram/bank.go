package nvram

import "fmt"

// Size is the number of byte cells in a bank, matching the classic
// 128-byte CMOS bank.
const Size = 128

// Bank is a byte-addressed persistent storage region.
//
// Writes are best-effort-synchronous: when WriteByte returns, the value
// is as durable as the medium allows. A bank must remain writable right
// up to a reset; the fault handler's last action before requesting a
// restart is a bank write.
type Bank interface {
	ReadByte(offset uint8) (byte, error)
	WriteByte(offset uint8, value byte) error
}

// ErrOffsetOutOfRange is returned for offsets beyond the bank size.
var ErrOffsetOutOfRange = fmt.Errorf("nvram: offset out of range (bank size %d)", Size)

// MemBank is a volatile in-memory bank. It satisfies Bank for tests and
// for simulator runs that do not need state to survive the process.
type MemBank struct {
	cells [Size]byte
}

// NewMemBank creates a zeroed in-memory bank.
func NewMemBank() *MemBank {
	return &MemBank{}
}

// ReadByte returns the byte at offset.
func (b *MemBank) ReadByte(offset uint8) (byte, error) {
	if int(offset) >= Size {
		return 0, ErrOffsetOutOfRange
	}
	return b.cells[offset], nil
}

// WriteByte stores value at offset.
func (b *MemBank) WriteByte(offset uint8, value byte) error {
	if int(offset) >= Size {
		return ErrOffsetOutOfRange
	}
	b.cells[offset] = value
	return nil
}
