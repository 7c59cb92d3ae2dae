package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"gridrender/internal/generate"
	"gridrender/internal/grid"
	"gridrender/internal/packets"
	"gridrender/internal/pipeline"
)

// FileName is the config file looked up in the working directory when no path is given.
const FileName = "gridrender.yaml"

// EnvPrefix prefixes every environment override, e.g. GRIDRENDER_RENDER_FPS.
const EnvPrefix = "GRIDRENDER"

// DotEnvPath is the .env file loaded before the config is read.
const DotEnvPath = ".env"

// Config holds both the launcher settings and the scene parameters. The render section's
// fps, duration and resolution also drive generation.
type Config struct {
	Render pipeline.Settings `yaml:"render" mapstructure:"render"`
	Scene  Scene             `yaml:"scene" mapstructure:"scene"`
}

// Scene is the generation-only part of the config.
type Scene struct {
	Grid    grid.Options    `yaml:"grid" mapstructure:"grid"`
	Packets packets.Options `yaml:"packets" mapstructure:"packets"`
	// Seed 0 picks a time-based seed.
	Seed int64 `yaml:"seed" mapstructure:"seed"`
}

// DefaultBlenderPath is where Blender usually lives on this platform.
func DefaultBlenderPath() string {
	switch runtime.GOOS {
	case "darwin":
		return "/Applications/Blender.app/Contents/MacOS/Blender"
	case "windows":
		return `C:\Program Files\Blender Foundation\Blender\blender.exe`
	}
	return "blender"
}

// Default returns the stock configuration: a 16^3 grid rendered to render/movie.mkv as
// 60 s of 4K AV1 at 60 fps.
func Default() Config {
	g := generate.DefaultOptions()
	return Config{
		Render: pipeline.Settings{
			BlenderPath: DefaultBlenderPath(),
			InputScript: "scene.py",
			OutputPath:  "render/movie.mkv",
			Width:       g.Width,
			Height:      g.Height,
			FPS:         g.FPS,
			Duration:    g.Duration,
			Container:   "MKV",
			Codec:       "AV1",
			CRF:         "20",
		},
		Scene: Scene{Grid: g.Grid, Packets: g.Packets},
	}
}

// GenerateOptions are the generator inputs this config describes.
func (c Config) GenerateOptions() generate.Options {
	return generate.Options{
		Grid:     c.Scene.Grid,
		Packets:  c.Scene.Packets,
		FPS:      c.Render.FPS,
		Duration: c.Render.Duration,
		Width:    c.Render.Width,
		Height:   c.Render.Height,
		Seed:     c.Scene.Seed,
	}
}

// LoadEnv loads KEY=VALUE pairs from path into the environment. Variables already set win.
// A missing file is not an error.
func LoadEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// SetDefaults registers every key of Default() on v so environment overrides and
// Unmarshal see the full key set.
func SetDefaults(v *viper.Viper) error {
	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	setDefaults(v, "", tree)
	return nil
}

func setDefaults(v *viper.Viper, prefix string, tree map[string]any) {
	for k, val := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := val.(map[string]any); ok {
			setDefaults(v, key, sub)
			continue
		}
		v.SetDefault(key, val)
	}
}

// Load reads the config into v and decodes it. Precedence is viper's: flags bound on v,
// then GRIDRENDER_* environment variables, then the file, then Default(). An empty path
// searches the working directory for gridrender.yaml and tolerates its absence; an
// explicit path must exist.
func Load(v *viper.Viper, path string) (Config, error) {
	if err := SetDefaults(v); err != nil {
		return Config{}, err
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(strings.TrimSuffix(FileName, filepath.Ext(FileName)))
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("config: read %s: %w", v.ConfigFileUsed(), err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return c, nil
}

// Save writes c to path as YAML, creating the parent directory if needed.
func Save(path string, c Config) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
