package nvram

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nvram.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

func TestStore_ReadUnwrittenOffset(t *testing.T) {
	s, _ := openTestStore(t)

	v, err := s.ReadByte(0x10)
	require.NoError(t, err)
	assert.Equal(t, byte(0), v)
}

func TestStore_WriteReadRoundTrip(t *testing.T) {
	s, _ := openTestStore(t)

	require.NoError(t, s.WriteByte(ProtectionFlagOffset, ProtectionsOffPattern))

	v, err := s.ReadByte(ProtectionFlagOffset)
	require.NoError(t, err)
	assert.Equal(t, ProtectionsOffPattern, v)
}

func TestStore_OverwriteOffset(t *testing.T) {
	s, _ := openTestStore(t)

	require.NoError(t, s.WriteByte(0x05, 0xaa))
	require.NoError(t, s.WriteByte(0x05, 0x55))

	v, err := s.ReadByte(0x05)
	require.NoError(t, err)
	assert.Equal(t, byte(0x55), v)
}

func TestStore_SurvivesReopen(t *testing.T) {
	s, path := openTestStore(t)

	require.NoError(t, WriteProtectionFlag(s, ProtectionsOffPattern))
	require.NoError(t, s.Close())

	// A warm restart reopens the same bank; the flag must still be there.
	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	flag, err := ReadProtectionFlag(reopened)
	require.NoError(t, err)
	assert.True(t, flag.Disabled())
}

func TestStore_OffsetOutOfRange(t *testing.T) {
	s, _ := openTestStore(t)

	_, err := s.ReadByte(Size)
	assert.ErrorIs(t, err, ErrOffsetOutOfRange)

	err = s.WriteByte(200, 1)
	assert.ErrorIs(t, err, ErrOffsetOutOfRange)
}
