// Package runtime wires together one program run: load a compiled
// code image, build a heap and built-in registry, drive the root task
// to completion through internal/scheduler, and report the result the
// way cmd/quillrun turns into a process exit code.
package runtime

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the quill.toml project configuration: GC thresholds and
// scheduler idle-sweep policy, plus the native module search path
// spec §6's module loading needs. Structurally this is
// manifest/manifest.go's maggie.toml shape narrowed to the knobs this
// runtime actually reads at launch, rather than a full project
// manifest (source dirs, dependencies, image output) — those describe
// how a program gets *compiled*, a concern entirely outside this
// runtime core's scope.
type Config struct {
	GC        GCConfig        `toml:"gc"`
	Scheduler SchedulerConfig `toml:"scheduler"`
	Native    NativeConfig    `toml:"native"`

	// Dir is the directory containing quill.toml (set at load time).
	Dir string `toml:"-"`
}

// GCConfig tunes the heap's mark-sweep trigger.
type GCConfig struct {
	InitialThreshold int `toml:"initial-threshold"`
}

// SchedulerConfig tunes the scheduler's safepoint policy.
type SchedulerConfig struct {
	IdleSweep bool `toml:"idle-sweep"`
}

// NativeConfig configures native-module loading, per spec §6's
// "native module search path."
type NativeConfig struct {
	ModulePaths []string `toml:"module-paths"`
}

// DefaultConfig returns the configuration a run with no quill.toml at
// all should use.
func DefaultConfig() *Config {
	return &Config{
		GC:        GCConfig{InitialThreshold: 0},
		Scheduler: SchedulerConfig{IdleSweep: true},
	}
}

// LoadConfig parses a quill.toml file from dir. A missing file is not
// an error: it returns DefaultConfig().
func LoadConfig(dir string) (*Config, error) {
	path := filepath.Join(dir, "quill.toml")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	cfg.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}
	return cfg, nil
}

// FindAndLoadConfig walks up from startDir looking for a quill.toml,
// the way manifest.FindAndLoad walks up looking for maggie.toml. A run
// with no quill.toml anywhere in the ancestry falls back to
// DefaultConfig() rather than failing — the manifest is optional here,
// unlike a maggie.toml project manifest.
func FindAndLoadConfig(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}
	for {
		path := filepath.Join(dir, "quill.toml")
		if _, statErr := os.Stat(path); statErr == nil {
			return LoadConfig(dir)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return DefaultConfig(), nil
		}
		dir = parent
	}
}
