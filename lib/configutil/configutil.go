package configutil

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

// ReadConfig loads <name> plus, when present, its sibling
// <stem>.local.<ext> merged on top. Local values win field by field;
// zero values in the local file leave the base value alone. When
// neither file exists the error wraps os.ErrNotExist.
func ReadConfig[T any](name string) (T, error) {
	var out T

	baseFound, err := readLayer(name, &out)
	if err != nil {
		return out, err
	}

	local := localPath(name)
	var override T
	localFound, err := readLayer(local, &override)
	if err != nil {
		return out, err
	}
	if localFound {
		if err := mergo.Merge(&out, override, mergo.WithOverride); err != nil {
			return out, err
		}
		slog.Info("applying local config overrides", "path", local)
	}

	if !baseFound && !localFound {
		return out, os.ErrNotExist
	}
	return out, nil
}

// ReadRecursively walks from the working directory up toward the
// filesystem root and loads the first config matching name.
func ReadRecursively[T any](name string) (T, error) {
	var zero T

	dir, err := os.Getwd()
	if err != nil {
		return zero, err
	}

	for {
		cfg, err := ReadConfig[T](filepath.Join(dir, name))
		if err == nil {
			return cfg, nil
		}
		if !os.IsNotExist(err) {
			return zero, err
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return zero, os.ErrNotExist
		}
		dir = parent
	}
}

// readLayer parses one json5 file into dst. A missing or empty file is
// not an error, it just reports found=false.
func readLayer[T any](path string, dst *T) (bool, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if len(raw) == 0 {
		return false, nil
	}
	return true, json5.Unmarshal(raw, dst)
}

// localPath turns "dir/harvest.json5" into "dir/harvest.local.json5".
func localPath(name string) string {
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + ".local" + ext
}
