package lookup

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	s := Defaults()
	roles, err := s.List(Roles)
	require.NoError(t, err)
	require.Len(t, roles, 3)
	require.Equal(t, "user", roles[0].Value)

	_, err = s.List("colors")
	require.ErrorIs(t, err, ErrUnknownList)
}

func TestList_ReturnsCopy(t *testing.T) {
	s := Defaults()
	roles, _ := s.List(Roles)
	roles[0].Value = "root"

	again, _ := s.List(Roles)
	require.Equal(t, "user", again[0].Value)
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lookups.yml")
	content := "roles:\n  - value: ops\n  - value: dev\n    label: Developer\ncolors:\n  - value: red\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	s, err := LoadYAML(path)
	require.NoError(t, err)

	roles, err := s.List(Roles)
	require.NoError(t, err)
	require.Equal(t, []Item{{Value: "ops", Label: "ops"}, {Value: "dev", Label: "Developer"}}, roles)
	require.Equal(t, []string{"colors", "roles"}, s.Names())
}

func TestLoadYAML_Errors(t *testing.T) {
	_, err := LoadYAML(filepath.Join(t.TempDir(), "missing.yml"))
	require.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(path, []byte("roles: [\n"), 0o644))
	_, err = LoadYAML(path)
	require.Error(t, err)
}
