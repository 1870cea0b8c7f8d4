// Package config loads the line follower's YAML configuration.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/tello-linetrace/internal/console"
	"github.com/ironsheep/tello-linetrace/internal/control"
	"github.com/ironsheep/tello-linetrace/internal/detection"
	"github.com/ironsheep/tello-linetrace/internal/follower"
	"github.com/ironsheep/tello-linetrace/internal/imaging"
	"github.com/ironsheep/tello-linetrace/internal/tello"
)

// EnvLogLevel overrides log.level when set.
const EnvLogLevel = "LINETRACE_LOG_LEVEL"

// Config is the root of the configuration file.
type Config struct {
	Tello      TelloConfig           `yaml:"tello"`
	Detection  DetectionConfig       `yaml:"detection"`
	Threshold  imaging.ThresholdBand `yaml:"threshold"`
	Controller control.Controller    `yaml:"controller"`
	Loop       LoopConfig            `yaml:"loop"`
	Console    ConsoleConfig         `yaml:"console"`
	Replay     ReplayConfig          `yaml:"replay"`
	Log        LogConfig             `yaml:"log"`
}

// TelloConfig locates the vehicle and its video stream.
type TelloConfig struct {
	Addr        string `yaml:"addr"`       // SDK command address
	LocalAddr   string `yaml:"local_addr"` // local UDP bind address
	VideoURL    string `yaml:"video_url"`  // ffmpeg input for the H.264 stream
	VideoWidth  int    `yaml:"video_width"`
	VideoHeight int    `yaml:"video_height"`
}

// DetectionConfig selects and tunes the detector.
type DetectionConfig struct {
	Backend    string  `yaml:"backend"` // native or opencv
	BlurRadius float64 `yaml:"blur_radius"`
	KernelSize int     `yaml:"kernel_size"`
}

// LoopConfig tunes the control loop cadence.
type LoopConfig struct {
	KeepAlive  Duration `yaml:"keep_alive"`
	PollWait   Duration `yaml:"poll_wait"`
	EventQueue int      `yaml:"event_queue"`
}

// ConsoleConfig configures the operator console.
type ConsoleConfig struct {
	Addr      string `yaml:"addr"` // HTTP listen address, empty disables it
	StreamFPS int    `yaml:"stream_fps"`
	Stdio     bool   `yaml:"stdio"` // serve JSON-RPC on stdin/stdout
}

// ReplayConfig replays recorded frames instead of the live stream.
type ReplayConfig struct {
	Dir      string   `yaml:"dir"`
	Interval Duration `yaml:"interval"`
	Loop     bool     `yaml:"loop"`
}

// LogConfig sets the log verbosity.
type LogConfig struct {
	Level string `yaml:"level"` // info or debug
}

// Duration is a time.Duration written as a string such as "4s" or "1ms".
type Duration time.Duration

// UnmarshalYAML parses a duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("line %d: invalid duration %q: %w", value.Line, s, err)
	}
	*d = Duration(v)
	return nil
}

// MarshalYAML writes the duration as a string.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// D returns d as a time.Duration.
func (d Duration) D() time.Duration { return time.Duration(d) }

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Tello: TelloConfig{
			Addr:        tello.DefaultAddr,
			LocalAddr:   tello.DefaultLocalAddr,
			VideoURL:    tello.DefaultVideoURL,
			VideoWidth:  tello.DefaultVideoWidth,
			VideoHeight: tello.DefaultVideoHeight,
		},
		Detection: DetectionConfig{
			Backend:    detection.BackendNative,
			KernelSize: imaging.DefaultKernelSize,
		},
		Threshold:  imaging.DefaultBand(),
		Controller: control.NewController(),
		Loop: LoopConfig{
			KeepAlive:  Duration(control.DefaultKeepAliveInterval),
			PollWait:   Duration(follower.DefaultPollWait),
			EventQueue: follower.DefaultEventQueue,
		},
		Console: ConsoleConfig{
			Addr:      "127.0.0.1:8090",
			StreamFPS: console.DefaultStreamFPS,
		},
		Replay: ReplayConfig{
			Interval: Duration(33 * time.Millisecond),
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads path over the defaults: keys missing from the file keep their
// default value. An empty path returns the defaults. The environment override
// is applied and the result validated.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}
	if lvl := os.Getenv(EnvLogLevel); lvl != "" {
		cfg.Log.Level = lvl
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	if c.Tello.Addr == "" {
		return fmt.Errorf("tello.addr is required")
	}
	if c.Tello.VideoWidth <= 0 || c.Tello.VideoHeight <= 0 {
		return fmt.Errorf("tello video size %dx%d is invalid", c.Tello.VideoWidth, c.Tello.VideoHeight)
	}
	switch strings.ToLower(c.Detection.Backend) {
	case "", detection.BackendNative, detection.BackendOpenCV:
	default:
		return fmt.Errorf("detection.backend %q is not native or opencv", c.Detection.Backend)
	}
	if c.Detection.BlurRadius < 0 {
		return fmt.Errorf("detection.blur_radius must not be negative")
	}
	if c.Detection.KernelSize < 0 {
		return fmt.Errorf("detection.kernel_size must not be negative")
	}
	if err := c.Threshold.Validate(); err != nil {
		return fmt.Errorf("threshold: %w", err)
	}
	if err := c.Controller.Validate(); err != nil {
		return fmt.Errorf("controller: %w", err)
	}
	if err := control.ValidateKeepAlive(c.Loop.KeepAlive.D()); err != nil {
		return fmt.Errorf("loop.keep_alive: %w", err)
	}
	if c.Loop.PollWait < 0 {
		return fmt.Errorf("loop.poll_wait must not be negative")
	}
	if c.Loop.EventQueue < 1 {
		return fmt.Errorf("loop.event_queue must be at least 1")
	}
	if c.Console.StreamFPS < 0 {
		return fmt.Errorf("console.stream_fps must not be negative")
	}
	if c.Replay.Interval < 0 {
		return fmt.Errorf("replay.interval must not be negative")
	}
	switch strings.ToLower(c.Log.Level) {
	case "info", "debug":
	default:
		return fmt.Errorf("log.level %q is not info or debug", c.Log.Level)
	}
	return nil
}

// Debug reports whether debug logging is requested.
func (c *Config) Debug() bool {
	return strings.EqualFold(c.Log.Level, "debug")
}

// LoopOptions converts the loop settings into follower options.
func (c *Config) LoopOptions() follower.Options {
	opts := follower.DefaultOptions()
	opts.Controller = c.Controller
	opts.KeepAlive = c.Loop.KeepAlive.D()
	opts.PollWait = c.Loop.PollWait.D()
	opts.EventQueue = c.Loop.EventQueue
	return opts
}

// Segmenter builds a segmenter with the configured detection tuning.
func (c *Config) Segmenter() *imaging.Segmenter {
	seg := imaging.NewSegmenter()
	seg.BlurRadius = c.Detection.BlurRadius
	seg.KernelSize = c.Detection.KernelSize
	return seg
}
