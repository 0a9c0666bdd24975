// Package config loads vrcapture settings from defaults, an optional YAML
// file and VRCAPTURE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/kevmo314/go-vrcapture/pkg/openvr"
)

const EnvPrefix = "VRCAPTURE"

type Config struct {
	LogLevel  string        `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	LogPretty bool          `mapstructure:"log_pretty" yaml:"log_pretty" json:"log_pretty"`
	OutputDir string        `mapstructure:"output_dir" yaml:"output_dir" json:"output_dir"`
	Capture   CaptureConfig `mapstructure:"capture" yaml:"capture" json:"capture"`
	Camera    CameraConfig  `mapstructure:"camera" yaml:"camera" json:"camera"`
	Steam     SteamConfig   `mapstructure:"steam" yaml:"steam" json:"steam"`
}

type CaptureConfig struct {
	// WarmUp is how long to wait after acquiring the mirror textures before
	// the camera stream is started.
	WarmUp       time.Duration `mapstructure:"warm_up" yaml:"warm_up" json:"warm_up"`
	FrameType    string        `mapstructure:"frame_type" yaml:"frame_type" json:"frame_type"`
	PollInterval time.Duration `mapstructure:"poll_interval" yaml:"poll_interval" json:"poll_interval"`
	PollDeadline time.Duration `mapstructure:"poll_deadline" yaml:"poll_deadline" json:"poll_deadline"`
}

type CameraConfig struct {
	// EnforceSettings turns the passthrough camera and room view on before
	// capturing.
	EnforceSettings bool    `mapstructure:"enforce_settings" yaml:"enforce_settings" json:"enforce_settings"`
	RoomView        int32   `mapstructure:"room_view" yaml:"room_view" json:"room_view"`
	RoomViewStyle   int32   `mapstructure:"room_view_style" yaml:"room_view_style" json:"room_view_style"`
	NearZ           float32 `mapstructure:"near_z" yaml:"near_z" json:"near_z"`
	FarZ            float32 `mapstructure:"far_z" yaml:"far_z" json:"far_z"`
}

type SteamConfig struct {
	// InstallPath overrides the registry lookup when set.
	InstallPath string `mapstructure:"install_path" yaml:"install_path" json:"install_path"`
}

// SetDefaults registers every key so that environment overrides are seen
// by Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("log_pretty", true)
	v.SetDefault("output_dir", "dumps")
	v.SetDefault("capture.warm_up", time.Second)
	v.SetDefault("capture.frame_type", openvr.FrameDistorted.String())
	v.SetDefault("capture.poll_interval", time.Second)
	v.SetDefault("capture.poll_deadline", 5*time.Second)
	v.SetDefault("camera.enforce_settings", true)
	v.SetDefault("camera.room_view", 1)
	v.SetDefault("camera.room_view_style", 4)
	v.SetDefault("camera.near_z", 0.01)
	v.SetDefault("camera.far_z", 100.01)
	v.SetDefault("steam.install_path", "")
}

// Load reads configuration into v. An empty file means defaults and
// environment only.
func Load(v *viper.Viper, file string) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", file, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	var errs []error
	if _, err := c.FrameType(); err != nil {
		errs = append(errs, fmt.Errorf("capture.frame_type: %w", err))
	}
	if c.Capture.WarmUp < 0 {
		errs = append(errs, errors.New("capture.warm_up must not be negative"))
	}
	if c.Capture.PollInterval <= 0 {
		errs = append(errs, errors.New("capture.poll_interval must be positive"))
	}
	if c.Capture.PollDeadline <= 0 {
		errs = append(errs, errors.New("capture.poll_deadline must be positive"))
	}
	if c.Camera.NearZ <= 0 || c.Camera.FarZ <= c.Camera.NearZ {
		errs = append(errs, fmt.Errorf("camera clip planes must satisfy 0 < near_z < far_z, got %g and %g", c.Camera.NearZ, c.Camera.FarZ))
	}
	if c.OutputDir == "" {
		errs = append(errs, errors.New("output_dir must be set"))
	}
	return errors.Join(errs...)
}

func (c *Config) FrameType() (openvr.FrameType, error) {
	return openvr.ParseFrameType(c.Capture.FrameType)
}
