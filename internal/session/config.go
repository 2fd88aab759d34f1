// Package session builds runtime session configuration.
//
// GPU options are an explicit value passed at load time rather than
// process-wide state: construct a Config (or start from DefaultConfig),
// marshal it, and hand the bytes to the runtime's session options.
package session

import (
	"fmt"
	"os"

	"github.com/hdu-hh/tensorflow/tensorflow/go/pbs"
	"google.golang.org/protobuf/proto"
	"gopkg.in/yaml.v3"
)

// Config carries the GPU-related session settings.
type Config struct {
	// AllowGrowth grows GPU memory usage on demand instead of reserving all
	// of it up front.
	AllowGrowth bool `yaml:"allow_growth"`

	// PerProcessGPUMemoryFraction caps the fraction of GPU memory the
	// process may use. Zero leaves the runtime default in place.
	PerProcessGPUMemoryFraction float64 `yaml:"per_process_gpu_memory_fraction"`

	// VisibleDeviceList restricts the GPUs to use, e.g. "0,1". Empty means
	// all devices.
	VisibleDeviceList string `yaml:"visible_device_list"`
}

// DefaultConfig returns the default session settings: grow GPU usage
// dynamically, no memory cap, all devices visible.
func DefaultConfig() Config {
	return Config{AllowGrowth: true}
}

// Proto converts the config into the runtime's session config message.
func (c Config) Proto() *pbs.ConfigProto {
	return &pbs.ConfigProto{
		GpuOptions: &pbs.GPUOptions{
			AllowGrowth:                 c.AllowGrowth,
			PerProcessGpuMemoryFraction: c.PerProcessGPUMemoryFraction,
			VisibleDeviceList:           c.VisibleDeviceList,
		},
	}
}

// Marshal serializes the config for the runtime's session options.
func (c Config) Marshal() ([]byte, error) {
	data, err := proto.Marshal(c.Proto())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session config: %w", err)
	}
	return data, nil
}

// LoadFile decodes a Config from a yaml file.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read session config: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode session config %s: %w", path, err)
	}
	if cfg.PerProcessGPUMemoryFraction < 0 || cfg.PerProcessGPUMemoryFraction > 1 {
		return Config{}, fmt.Errorf("per_process_gpu_memory_fraction %v out of range [0, 1]",
			cfg.PerProcessGPUMemoryFraction)
	}
	return cfg, nil
}
