package eval

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// fileOptions mirrors the subset of Options a host can express in a
// YAML options file: a serializable mirror struct converted into the
// real config type.
type fileOptions struct {
	FixpointLimit int    `yaml:"fixpointLimit"`
	LayerTimeout  string `yaml:"layerTimeout"`
	SignKeyID     string `yaml:"signKeyId"`
	SignSecret    string `yaml:"signSecret"`
}

// LoadOptionsFile reads a YAML options file and converts it into an
// Options value with spec defaults for anything left unset.
func LoadOptionsFile(path string) (Options, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Options{}, err
	}
	var fo fileOptions
	if err := yaml.Unmarshal(b, &fo); err != nil {
		return Options{}, err
	}

	var opts []Option
	if fo.FixpointLimit > 0 {
		opts = append(opts, WithFixpointLimit(fo.FixpointLimit))
	}
	if fo.LayerTimeout != "" {
		if d, err := time.ParseDuration(fo.LayerTimeout); err == nil {
			opts = append(opts, WithLayerTimeout(d))
		}
	}
	if fo.SignKeyID != "" || fo.SignSecret != "" {
		opts = append(opts, WithSigning(fo.SignKeyID, fo.SignSecret))
	}
	return NewOptions(opts...), nil
}
