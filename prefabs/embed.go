package prefabs

import (
	"embed"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

//go:embed scripts/*.tengo
var ScriptsFS embed.FS

//go:embed *.yaml
var PrefabsFS embed.FS

var (
	overrideMu  sync.RWMutex
	overrideDir = "prefabs"
)

// SetOverrideDir changes the directory checked for edited copies of the
// embedded prefabs. An empty dir disables disk overrides.
func SetOverrideDir(dir string) {
	overrideMu.Lock()
	defer overrideMu.Unlock()
	overrideDir = dir
}

// OverrideDir returns the directory the watcher should observe.
func OverrideDir() string {
	overrideMu.RLock()
	defer overrideMu.RUnlock()
	return overrideDir
}

// Load returns a prefab file, preferring the on-disk copy so edits are picked
// up without a rebuild.
func Load(name string) ([]byte, error) {
	clean := cleanPrefabPath(name)
	if data, ok := readOverride(clean); ok {
		return data, nil
	}
	return PrefabsFS.ReadFile(clean)
}

func LoadScript(name string) ([]byte, error) {
	clean := cleanScriptPath(name)
	if data, ok := readOverride(clean); ok {
		return data, nil
	}
	return ScriptsFS.ReadFile(clean)
}

func ModTime(name string) (time.Time, bool) {
	path, ok := diskPrefabPath(cleanPrefabPath(name))
	if !ok {
		return time.Time{}, false
	}
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}

func readOverride(clean string) ([]byte, bool) {
	path, ok := diskPrefabPath(clean)
	if !ok {
		return nil, false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	return data, true
}

func cleanPrefabPath(path string) string {
	if path == "" {
		return ""
	}
	s := filepath.ToSlash(path)
	s, _ = strings.CutPrefix(s, "prefabs/")
	return s
}

func cleanScriptPath(path string) string {
	if path == "" {
		return ""
	}
	s := cleanPrefabPath(path)
	s, _ = strings.CutPrefix(s, "scripts/")
	return "scripts/" + s
}

func diskPrefabPath(clean string) (string, bool) {
	dir := OverrideDir()
	if dir == "" || clean == "" {
		return "", false
	}
	return filepath.Join(dir, filepath.FromSlash(clean)), true
}
