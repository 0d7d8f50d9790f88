package engine

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/tessera/engine/core"
	"github.com/spaghettifunk/tessera/engine/math"
)

type ApplicationConfig struct {
	// The application name used in windowing, if applicable.
	Name string `toml:"name"`
	// Window starting position, if applicable.
	StartPosX uint32 `toml:"start_pos_x"`
	StartPosY uint32 `toml:"start_pos_y"`
	// Window starting size.
	StartWidth  uint32 `toml:"start_width"`
	StartHeight uint32 `toml:"start_height"`

	LogLevel   string     `toml:"log_level"`
	ClearColor [4]float32 `toml:"clear_color"`

	// AssetsDir is the root every image, font and shader path is relative to.
	AssetsDir   string `toml:"assets_dir"`
	WatchAssets bool   `toml:"watch_assets"`

	// Goroutines decoding images passed to Engine.Preload.
	PreloadWorkers int `toml:"preload_workers"`

	Validation bool `toml:"validation"`
	VSync      bool `toml:"vsync"`

	Clock ClockConfig `toml:"clock"`
}

type ClockConfig struct {
	// Fixed physics updates per second.
	TickRate         float64 `toml:"tick_rate"`
	MaxTicksPerFrame int     `toml:"max_ticks_per_frame"`
	// Longest frame, in seconds, fed into the accumulator.
	MaxFrameDelta float64 `toml:"max_frame_delta"`
	StallPolicy   string  `toml:"stall_policy"`
}

func DefaultApplicationConfig() *ApplicationConfig {
	return &ApplicationConfig{
		Name:           "Tessera",
		StartPosX:      100,
		StartPosY:      100,
		StartWidth:     1280,
		StartHeight:    720,
		LogLevel:       "info",
		ClearColor:     [4]float32{0.05, 0.05, 0.1, 1},
		AssetsDir:      "assets",
		PreloadWorkers: 2,
		Clock: ClockConfig{
			TickRate:         1 / core.DefaultFixedStep,
			MaxTicksPerFrame: core.DefaultMaxTicks,
			MaxFrameDelta:    core.DefaultMaxFrameDelta,
			StallPolicy:      string(core.DefaultStallPolicy),
		},
	}
}

// LoadConfig reads a TOML file on top of the defaults. A missing file is not
// an error and yields the defaults.
func LoadConfig(path string) (*ApplicationConfig, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		core.LogInfo("no configuration at %s, using defaults", path)
		return DefaultApplicationConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes TOML on top of the defaults and validates the result.
func ParseConfig(data []byte) (*ApplicationConfig, error) {
	cfg := DefaultApplicationConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *ApplicationConfig) Validate() error {
	if c.StartWidth == 0 || c.StartHeight == 0 {
		return fmt.Errorf("invalid config: window size %dx%d", c.StartWidth, c.StartHeight)
	}
	if _, err := core.ParseLogLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid config: log_level: %w", err)
	}
	for i, v := range c.ClearColor {
		if v < 0 || v > 1 {
			return fmt.Errorf("invalid config: clear_color[%d] = %v is outside [0, 1]", i, v)
		}
	}
	if c.PreloadWorkers <= 0 {
		return fmt.Errorf("invalid config: preload_workers must be positive, got %d", c.PreloadWorkers)
	}
	if c.Clock.TickRate <= 0 {
		return fmt.Errorf("invalid config: clock.tick_rate must be positive, got %v", c.Clock.TickRate)
	}
	if c.Clock.MaxTicksPerFrame <= 0 {
		return fmt.Errorf("invalid config: clock.max_ticks_per_frame must be positive, got %d", c.Clock.MaxTicksPerFrame)
	}
	if c.Clock.MaxFrameDelta <= 0 {
		return fmt.Errorf("invalid config: clock.max_frame_delta must be positive, got %v", c.Clock.MaxFrameDelta)
	}
	if _, err := core.ParseStallPolicy(c.Clock.StallPolicy); err != nil {
		return fmt.Errorf("invalid config: clock.stall_policy: %w", err)
	}
	return nil
}

func (c *ApplicationConfig) clearColour() math.Vec4 {
	return math.Vec4{X: c.ClearColor[0], Y: c.ClearColor[1], Z: c.ClearColor[2], W: c.ClearColor[3]}
}

func (c *ApplicationConfig) newFrameClock() *core.FrameClock {
	policy, _ := core.ParseStallPolicy(c.Clock.StallPolicy)
	return core.NewFrameClock(1/c.Clock.TickRate, c.Clock.MaxTicksPerFrame, c.Clock.MaxFrameDelta, policy)
}
