package engineconfig

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// EngineConfigPath is the default config file, relative to the process working directory.
const EngineConfigPath = "config/engine.yaml"

// ErrInvalidArgument is returned for unsupported file types and out-of-range settings.
var ErrInvalidArgument = errors.New("invalid argument")

// EnginePrefs holds engine preferences (debug overlays, grid, frame timing) and the physics settings.
// Persisted across runs.
type EnginePrefs struct {
	ShowFPS      bool `yaml:"show_fps" toml:"show_fps"`
	ShowMemAlloc bool `yaml:"show_memalloc" toml:"show_memalloc"`
	ShowStats    bool `yaml:"show_stats" toml:"show_stats"`
	GridVisible  bool `yaml:"grid_visible" toml:"grid_visible"`
	// FixedStep is the simulation step in seconds. 0 steps by the frame time.
	FixedStep float32 `yaml:"fixed_step" toml:"fixed_step"`
	// MaxFrameDuration clamps long frames (window drags, breakpoints) before they reach the physics.
	MaxFrameDuration float32 `yaml:"max_frame_duration" toml:"max_frame_duration"`

	Physics Physics `yaml:"physics" toml:"physics"`
}

// Physics configures the rigid-body and particle worlds.
type Physics struct {
	MaxContacts int `yaml:"max_contacts" toml:"max_contacts"`
	// Iterations 0 lets the world pick four per contact every frame.
	Iterations int `yaml:"iterations" toml:"iterations"`
	CollectGap int `yaml:"collect_gap" toml:"collect_gap"`

	ParticleMaxContacts int `yaml:"particle_max_contacts" toml:"particle_max_contacts"`
	ParticleIterations  int `yaml:"particle_iterations" toml:"particle_iterations"`
	ParticleCollectGap  int `yaml:"particle_collect_gap" toml:"particle_collect_gap"`

	Friction     float32 `yaml:"friction" toml:"friction"`
	Restitution  float32 `yaml:"restitution" toml:"restitution"`
	Tolerance    float32 `yaml:"tolerance" toml:"tolerance"`
	SleepEpsilon float32 `yaml:"sleep_epsilon" toml:"sleep_epsilon"`
	// Gravity is the vertical acceleration given to spawned boxes.
	Gravity float32 `yaml:"gravity" toml:"gravity"`
}

// Default returns the default preferences (overlays off, grid on, 60 Hz fixed step).
func Default() EnginePrefs {
	return EnginePrefs{
		GridVisible:      true,
		FixedStep:        1.0 / 60,
		MaxFrameDuration: 0.05,
		Physics: Physics{
			MaxContacts:         256,
			Iterations:          0,
			CollectGap:          2,
			ParticleMaxContacts: 512,
			ParticleIterations:  0,
			ParticleCollectGap:  10,
			Friction:            0.9,
			Restitution:         0.2,
			Tolerance:           0.1,
			SleepEpsilon:        0.3,
			Gravity:             -9.81,
		},
	}
}

// Validate reports the first setting the worlds cannot run with.
func (p EnginePrefs) Validate() error {
	ph := p.Physics
	switch {
	case p.FixedStep < 0:
		return errors.Wrapf(ErrInvalidArgument, "fixed_step %v is negative", p.FixedStep)
	case p.MaxFrameDuration <= 0:
		return errors.Wrapf(ErrInvalidArgument, "max_frame_duration %v must be positive", p.MaxFrameDuration)
	case ph.MaxContacts <= 0:
		return errors.Wrapf(ErrInvalidArgument, "physics.max_contacts %d must be positive", ph.MaxContacts)
	case ph.ParticleMaxContacts <= 0:
		return errors.Wrapf(ErrInvalidArgument, "physics.particle_max_contacts %d must be positive", ph.ParticleMaxContacts)
	case ph.Iterations < 0 || ph.ParticleIterations < 0:
		return errors.Wrap(ErrInvalidArgument, "physics iterations must not be negative")
	case ph.CollectGap <= 0 || ph.ParticleCollectGap <= 0:
		return errors.Wrap(ErrInvalidArgument, "physics collect gaps must be positive")
	case ph.Friction < 0 || ph.Restitution < 0 || ph.Tolerance < 0:
		return errors.Wrap(ErrInvalidArgument, "physics contact defaults must not be negative")
	case ph.SleepEpsilon < 0:
		return errors.Wrapf(ErrInvalidArgument, "physics.sleep_epsilon %v is negative", ph.SleepEpsilon)
	}
	return nil
}

type codec struct {
	unmarshal func([]byte, any) error
	marshal   func(any) ([]byte, error)
}

func codecFor(path string) (codec, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return codec{yaml.Unmarshal, yaml.Marshal}, nil
	case ".toml":
		return codec{toml.Unmarshal, toml.Marshal}, nil
	}
	return codec{}, errors.Wrapf(ErrInvalidArgument, "unsupported config file %q", path)
}

// Load reads preferences from path (EngineConfigPath when empty). Keys present in the file override
// Default(). A missing file returns Default() and no error; an unreadable, undecodable or invalid file
// returns Default() and the error.
func Load(path string) (EnginePrefs, error) {
	if path == "" {
		path = EngineConfigPath
	}
	c, err := codecFor(path)
	if err != nil {
		return Default(), err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Default(), errors.Wrapf(err, "read %s", path)
	}

	p := Default()
	if err := c.unmarshal(data, &p); err != nil {
		return Default(), errors.Wrapf(err, "decode %s", path)
	}
	if err := p.Validate(); err != nil {
		return Default(), errors.Wrapf(err, "load %s", path)
	}
	return p, nil
}

// Save writes preferences to path (EngineConfigPath when empty), creating the directory if needed.
func Save(path string, p EnginePrefs) error {
	if path == "" {
		path = EngineConfigPath
	}
	c, err := codecFor(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, "create config dir for %s", path)
	}
	data, err := c.marshal(p)
	if err != nil {
		return errors.Wrapf(err, "encode %s", path)
	}
	return errors.Wrapf(os.WriteFile(path, data, 0644), "write %s", path)
}
