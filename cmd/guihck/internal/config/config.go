// Package config loads the optional guihck.yaml used by the guihck CLI.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/go-guihck/guihck/pkg/errors"
	"github.com/go-guihck/guihck/pkg/guihck"
)

const (
	fileName  = "guihck"
	fileType  = "yaml"
	envPrefix = "GUIHCK"

	keyMaxUpdatePasses = "runtime.max_update_passes"
	keyFrames          = "runtime.frames"
	keyVerbosity       = "log.verbosity"
	keyLogFile         = "log.file"
	keyPrelude         = "scripts.prelude"
	keyRequireAPI      = "scripts.require_api"
)

//go:embed schema.cue
var schemaSource string

// Config represents guihck.yaml.
type Config struct {
	Runtime RuntimeConfig `yaml:"runtime" json:"runtime" mapstructure:"runtime"`
	Log     LogConfig     `yaml:"log" json:"log" mapstructure:"log"`
	Scripts ScriptsConfig `yaml:"scripts" json:"scripts" mapstructure:"scripts"`
}

// RuntimeConfig contains scheduler settings.
type RuntimeConfig struct {
	MaxUpdatePasses int `yaml:"max_update_passes" json:"max_update_passes" mapstructure:"max_update_passes"`
	// Frames is how many frames run and dump execute after the script.
	Frames int `yaml:"frames" json:"frames" mapstructure:"frames"`
}

// LogConfig contains commonlog settings.
type LogConfig struct {
	Verbosity int    `yaml:"verbosity" json:"verbosity" mapstructure:"verbosity"`
	File      string `yaml:"file,omitempty" json:"file" mapstructure:"file"`
}

// ScriptsConfig lists script files evaluated before the user's script.
type ScriptsConfig struct {
	Prelude    []string `yaml:"prelude" json:"prelude" mapstructure:"prelude"`
	RequireAPI string   `yaml:"require_api,omitempty" json:"require_api" mapstructure:"require_api"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Runtime: RuntimeConfig{MaxUpdatePasses: 4, Frames: 1},
		Log:     LogConfig{Verbosity: 0},
		Scripts: ScriptsConfig{Prelude: []string{}},
	}
}

// Load reads the configuration. When path is empty guihck.yaml is looked up
// in dir, and a missing file yields the defaults. GUIHCK_* environment
// variables override file values, e.g. GUIHCK_RUNTIME_FRAMES.
func Load(path, dir string) (*Config, error) {
	def := Default()

	v := viper.New()
	v.SetDefault(keyMaxUpdatePasses, def.Runtime.MaxUpdatePasses)
	v.SetDefault(keyFrames, def.Runtime.Frames)
	v.SetDefault(keyVerbosity, def.Log.Verbosity)
	v.SetDefault(keyLogFile, def.Log.File)
	v.SetDefault(keyPrelude, def.Scripts.Prelude)
	v.SetDefault(keyRequireAPI, def.Scripts.RequireAPI)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, &errors.Error{Op: "config.Load", Kind: errors.KindConfig, Err: err}
		}
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(fileName)
		v.SetConfigType(fileType)
		v.AddConfigPath(dir)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, &errors.Error{Op: "config.Load", Kind: errors.KindConfig, Err: err}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &errors.Error{Op: "config.Load", Kind: errors.KindConfig, Err: err}
	}
	if cfg.Scripts.Prelude == nil {
		cfg.Scripts.Prelude = []string{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration against the embedded CUE schema.
func (c *Config) Validate() error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return &errors.Error{Op: "config.Validate", Kind: errors.KindConfig, Err: err}
	}

	cp := *c
	if cp.Scripts.Prelude == nil {
		cp.Scripts.Prelude = []string{}
	}
	value := schema.Unify(ctx.Encode(cp))
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return &errors.Error{Op: "config.Validate", Kind: errors.KindConfig, Err: err}
	}
	return nil
}

// YAML renders the configuration as guihck.yaml content.
func (c *Config) YAML() ([]byte, error) {
	var sb strings.Builder
	enc := yaml.NewEncoder(&sb)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return []byte(sb.String()), nil
}

// Options converts the configuration into guihck.New options.
func (c *Config) Options() guihck.Options {
	return guihck.Options{
		MaxUpdatePasses: c.Runtime.MaxUpdatePasses,
		Prelude:         c.Scripts.Prelude,
		RequireAPI:      c.Scripts.RequireAPI,
	}
}
