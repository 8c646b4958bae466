// Package config loads the settings of the command line tool. Values are
// layered: built-in defaults, then a TOML or YAML config file, then
// TABTEXT_* environment variables, then command line flags.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/bjaus/tabtext"
)

// EnvPrefix prefixes the environment variables read by Load.
const EnvPrefix = "TABTEXT_"

// ErrInvalidConfig reports a setting that cannot be used.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the settings of one run.
type Config struct {
	// Format is the output format; empty means by output file extension,
	// falling back to markdown.
	Format        string   `koanf:"format"`
	InputFormat   string   `koanf:"input"`
	Labels        []string `koanf:"labels"`
	MinWidth      int      `koanf:"minwidth"`
	NoRight       bool     `koanf:"noright"`
	NoHeaders     bool     `koanf:"noheaders"`
	Unique        bool     `koanf:"unique"`
	Border        string   `koanf:"border"`
	Currency      string   `koanf:"currency"`
	DateDelimiter string   `koanf:"datedelim"`
	Legend        []string `koanf:"legend"`
	Verbosity     int      `koanf:"verbosity"`
	LogFile       string   `koanf:"logfile"`
}

func defaults() map[string]any {
	return map[string]any{
		"format":    "",
		"input":     "",
		"labels":    []string{},
		"minwidth":  tabtext.DefaultMinWidth,
		"noright":   false,
		"noheaders": false,
		"unique":    false,
		"border":    "rounded",
		"currency":  tabtext.DefaultCurrency,
		"datedelim": "-",
		"legend":    []string{},
		"verbosity": 0,
		"logfile":   "",
	}
}

// Load builds the configuration. path names a config file; when empty, the
// XDG config directories are searched for tabtext/config.toml and
// tabtext/config.yaml. overrides holds flag values keyed like the config
// file and is applied last.
func Load(path string, overrides map[string]any) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		parser, err := parserFor(path)
		if err != nil {
			return nil, err
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
	}

	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if len(overrides) > 0 {
		if err := k.Load(confmap.Provider(overrides, "."), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook:       mapstructure.StringToSliceHookFunc(","),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if _, err := cfg.BorderStyle(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func findConfigFile() string {
	for _, name := range []string{"config.toml", "config.yaml", "config.yml"} {
		if p, err := xdg.SearchConfigFile(filepath.Join("tabtext", name)); err == nil {
			return p
		}
	}
	return ""
}

func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return toml.Parser(), nil
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	default:
		return nil, fmt.Errorf("%w: config file %s is neither TOML nor YAML", ErrInvalidConfig, path)
	}
}

var borders = map[string]tabtext.BorderStyle{
	"rounded": tabtext.BorderRounded,
	"none":    tabtext.BorderNone,
	"ascii":   tabtext.BorderASCII,
	"heavy":   tabtext.BorderHeavy,
	"double":  tabtext.BorderDouble,
}

// BorderStyle returns the box style named by Border.
func (c *Config) BorderStyle() (tabtext.BorderStyle, error) {
	b, ok := borders[strings.ToLower(c.Border)]
	if !ok {
		return 0, fmt.Errorf("%w: unknown border %q", ErrInvalidConfig, c.Border)
	}
	return b, nil
}

// Options returns the render options of the configuration for the given
// column selects.
func (c *Config) Options(selects []string) (tabtext.Options, error) {
	border, err := c.BorderStyle()
	if err != nil {
		return tabtext.Options{}, err
	}
	return tabtext.Options{
		Headers:       c.Labels,
		Selects:       selects,
		MinWidth:      c.MinWidth,
		NoRightAlign:  c.NoRight,
		NoHeaders:     c.NoHeaders,
		Unique:        c.Unique,
		DateDelimiter: c.DateDelimiter,
		Currency:      c.Currency,
		Legend:        tabtext.LegendLines(c.Legend...),
		Border:        border,
	}, nil
}
