package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	s, err := Parse([]byte(""))
	require.NoError(t, err)

	assert.True(t, s.ProtectionToggleEnabled())
	assert.Equal(t, "", s.NVRAM.Path)
	assert.Equal(t, 4, s.Boot.MaxRestarts)
}

func TestParse_FullDocument(t *testing.T) {
	doc := []byte(`
protections:
  enabled: false
nvram:
  path: /var/lib/memprot/nvram.db
boot:
  max_restarts: 8
`)

	s, err := Parse(doc)
	require.NoError(t, err)

	assert.False(t, s.ProtectionToggleEnabled())
	assert.Equal(t, "/var/lib/memprot/nvram.db", s.NVRAM.Path)
	assert.Equal(t, 8, s.Boot.MaxRestarts)
}

func TestParse_PartialDocumentKeepsDefaults(t *testing.T) {
	doc := []byte(`
protections:
  enabled: false
`)

	s, err := Parse(doc)
	require.NoError(t, err)

	assert.False(t, s.ProtectionToggleEnabled())
	assert.Equal(t, 4, s.Boot.MaxRestarts)
}

func TestValidate_UnknownField(t *testing.T) {
	doc := []byte(`
protections:
  enabled: true
  color: blue
`)

	errs := Validate(doc)
	require.NotEmpty(t, errs)
}

func TestValidate_WrongType(t *testing.T) {
	doc := []byte(`
protections:
  enabled: "yes please"
`)

	errs := Validate(doc)
	require.NotEmpty(t, errs)
}

func TestValidate_RestartCeilingOutOfRange(t *testing.T) {
	doc := []byte(`
boot:
  max_restarts: 500
`)

	errs := Validate(doc)
	require.NotEmpty(t, errs)
}

func TestValidate_NotYAML(t *testing.T) {
	errs := Validate([]byte("{{{"))
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Message, "not valid YAML")
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("protections:\n  enabled: false\n"), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.False(t, s.ProtectionToggleEnabled())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestParse_InvalidDocumentRejected(t *testing.T) {
	_, err := Parse([]byte("boot:\n  max_restarts: 0\n"))
	require.Error(t, err)
}
