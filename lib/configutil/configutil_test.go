package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Target string `json:"target"`
	Limit  int    `json:"limit"`
}

func TestReadConfigMergesLocalOverride(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "harvest.json5")

	err := os.WriteFile(base, []byte(`{target: "https://example.com", limit: 10}`), 0o644)
	require.NoError(t, err)
	err = os.WriteFile(filepath.Join(dir, "harvest.local.json5"), []byte(`{limit: 3}`), 0o644)
	require.NoError(t, err)

	cfg, err := ReadConfig[testConfig](base)
	require.NoError(t, err)
	require.Equal(t, "https://example.com", cfg.Target)
	require.Equal(t, 3, cfg.Limit)
}

func TestReadConfigLocalOnly(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "harvest.local.json5"), []byte(`{target: "https://local.example"}`), 0o644)
	require.NoError(t, err)

	cfg, err := ReadConfig[testConfig](filepath.Join(dir, "harvest.json5"))
	require.NoError(t, err)
	require.Equal(t, "https://local.example", cfg.Target)
}

func TestReadConfigMissing(t *testing.T) {
	_, err := ReadConfig[testConfig](filepath.Join(t.TempDir(), "none.json5"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
